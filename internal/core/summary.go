package core

// MonthlySummary is everything shown for one month.
type MonthlySummary struct {
	Month           string
	PrevMonth       string
	NextMonth       string
	Transactions    []Transaction
	MonthTotal      float64
	NetByCategory   []CategoryTotal
	SpendByCategory []CategoryTotal
	MetaTotals      map[Meta]float64
	MetaSummary     []BudgetLine
	PieMeta         ChartSeries
	PieSub          ChartSeries
	Income          *float64
	Targets         Targets
	Mappings        map[string]Meta
	Subscriptions   []Subscription
	Buckets         []BucketView
	BucketTotals    BucketTotals
	PayrollSummary  PayrollSummary
}
