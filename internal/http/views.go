package http

import (
	"ledger/internal/core"
)

type transactionView struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

func newTransactionView(tx core.Transaction) transactionView {
	return transactionView{
		ID:          tx.ID,
		Date:        tx.Date.Format(core.TimestampLayout),
		Description: tx.Description,
		Amount:      tx.Amount,
		Category:    tx.Category,
	}
}

func newTransactionViews(txs []core.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionView(tx))
	}
	return out
}

type subscriptionView struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	DayOfMonth int     `json:"day_of_month"`
	Active     bool    `json:"active"`
}

func newSubscriptionViews(subs []core.Subscription) []subscriptionView {
	out := make([]subscriptionView, 0, len(subs))
	for _, s := range subs {
		out = append(out, subscriptionView(s))
	}
	return out
}

type bucketView struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Goal        float64 `json:"goal"`
	Current     float64 `json:"current"`
	Status      string  `json:"status"`
	Meta        string  `json:"meta"`
	ProgressPct float64 `json:"progress_pct"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func newBucketView(v core.BucketView) bucketView {
	return bucketView{
		ID:          v.ID,
		Name:        v.Name,
		Category:    v.Category,
		Goal:        v.Goal,
		Current:     v.Current,
		Status:      string(v.Status),
		Meta:        string(v.Meta),
		ProgressPct: v.ProgressPct,
		CreatedAt:   v.CreatedAt.Format(core.TimestampLayout),
		UpdatedAt:   v.UpdatedAt.Format(core.TimestampLayout),
	}
}

func newBucketViews(views []core.BucketView) []bucketView {
	out := make([]bucketView, 0, len(views))
	for _, v := range views {
		out = append(out, newBucketView(v))
	}
	return out
}

type targetsView struct {
	Needs   float64 `json:"needs"`
	Wants   float64 `json:"wants"`
	Savings float64 `json:"savings"`
}

type payrollView struct {
	ID      int64   `json:"id"`
	PayDate string  `json:"pay_date"`
	Gross   float64 `json:"gross"`
	Tax     float64 `json:"tax"`
	K401    float64 `json:"k401"`
	HSA     float64 `json:"hsa"`
	ESPP    float64 `json:"espp"`
	Other   float64 `json:"other"`
	Net     float64 `json:"net"`
	Notes   string  `json:"notes,omitempty"`
}

func newPayrollView(e core.PayrollEntry) payrollView {
	return payrollView{
		ID:      e.ID,
		PayDate: e.PayDate.Format("2006-01-02"),
		Gross:   e.Gross,
		Tax:     e.Tax,
		K401:    e.K401,
		HSA:     e.HSA,
		ESPP:    e.ESPP,
		Other:   e.Other,
		Net:     e.Net(),
		Notes:   e.Notes,
	}
}

type categoryTotalView struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

func newCategoryTotals(totals []core.CategoryTotal) []categoryTotalView {
	out := make([]categoryTotalView, 0, len(totals))
	for _, t := range totals {
		out = append(out, categoryTotalView(t))
	}
	return out
}

type bucketTotalsView struct {
	Goal    float64                   `json:"goal"`
	Current float64                   `json:"current"`
	ByMeta  map[string]core.BucketSum `json:"by_meta"`
}

type summaryView struct {
	Month           string              `json:"month"`
	PrevMonth       string              `json:"prev_month"`
	NextMonth       string              `json:"next_month"`
	Transactions    []transactionView   `json:"transactions"`
	MonthTotal      float64             `json:"month_total"`
	NetByCategory   []categoryTotalView `json:"net_by_category"`
	SpendByCategory []categoryTotalView `json:"spend_by_category"`
	MetaTotals      map[string]float64  `json:"meta_totals"`
	MetaSummary     []core.BudgetLine   `json:"meta_summary"`
	PieMeta         core.ChartSeries    `json:"pie_meta"`
	PieSub          core.ChartSeries    `json:"pie_sub"`
	Income          *float64            `json:"income"`
	Targets         targetsView         `json:"targets"`
	Mappings        map[string]string   `json:"mappings"`
	Subscriptions   []subscriptionView  `json:"subscriptions"`
	Buckets         []bucketView        `json:"buckets"`
	BucketTotals    bucketTotalsView    `json:"bucket_totals"`
	PayrollSummary  core.PayrollSummary `json:"payroll_summary"`
}

func newSummaryView(s core.MonthlySummary) summaryView {
	metaTotals := make(map[string]float64, len(s.MetaTotals))
	for m, v := range s.MetaTotals {
		metaTotals[string(m)] = v
	}
	mappings := make(map[string]string, len(s.Mappings))
	for c, m := range s.Mappings {
		mappings[c] = string(m)
	}
	byMeta := make(map[string]core.BucketSum, len(s.BucketTotals.ByMeta))
	for m, sum := range s.BucketTotals.ByMeta {
		byMeta[string(m)] = sum
	}

	return summaryView{
		Month:           s.Month,
		PrevMonth:       s.PrevMonth,
		NextMonth:       s.NextMonth,
		Transactions:    newTransactionViews(s.Transactions),
		MonthTotal:      s.MonthTotal,
		NetByCategory:   newCategoryTotals(s.NetByCategory),
		SpendByCategory: newCategoryTotals(s.SpendByCategory),
		MetaTotals:      metaTotals,
		MetaSummary:     s.MetaSummary,
		PieMeta:         s.PieMeta,
		PieSub:          s.PieSub,
		Income:          s.Income,
		Targets:         targetsView(s.Targets),
		Mappings:        mappings,
		Subscriptions:   newSubscriptionViews(s.Subscriptions),
		Buckets:         newBucketViews(s.Buckets),
		BucketTotals: bucketTotalsView{
			Goal:    s.BucketTotals.Goal,
			Current: s.BucketTotals.Current,
			ByMeta:  byMeta,
		},
		PayrollSummary: s.PayrollSummary,
	}
}
