package services

import (
	"context"
	"fmt"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

var (
	payrollFloor   = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	payrollCeiling = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

// AddPayrollEntry parses raw fields (deductions accept "a+b+c") and stores the entry.
func (l *Ledger) AddPayrollEntry(ctx context.Context, in core.PayrollInput) (core.PayrollEntry, error) {
	entry, err := in.Parse()
	if err != nil {
		return core.PayrollEntry{}, err
	}
	if err := entry.Validate(); err != nil {
		return core.PayrollEntry{}, err
	}
	saved, err := l.store.CreatePayrollEntry(ctx, entry)
	if err != nil {
		return core.PayrollEntry{}, fmt.Errorf("save payroll entry: %w", err)
	}
	l.logger.InfoContext(ctx, "Payroll entry added",
		"id", saved.ID,
		"pay_date", saved.PayDate.Format("2006-01-02"),
		"net", saved.Net())
	return saved, nil
}

// ListPayroll returns entries paid in month, or every entry when month is empty.
func (l *Ledger) ListPayroll(ctx context.Context, month string) ([]core.PayrollEntry, error) {
	from, to := payrollFloor, payrollCeiling
	if month != "" {
		var err error
		if from, to, err = core.MonthBounds(month); err != nil {
			return nil, err
		}
	}
	entries, err := l.store.ListPayroll(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list payroll: %w", err)
	}
	return entries, nil
}

func (l *Ledger) DeletePayrollEntry(ctx context.Context, id int64) (bool, error) {
	ok, err := l.store.DeletePayrollEntry(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete payroll entry: %w", err)
	}
	return ok, nil
}

// ComputeMonthlySummary reads everything the month view needs from one
// consistent snapshot and derives totals, budget lines and chart series.
func (l *Ledger) ComputeMonthlySummary(ctx context.Context, month string) (core.MonthlySummary, error) {
	start, end, err := core.MonthBounds(month)
	if err != nil {
		return core.MonthlySummary{}, err
	}
	prev, next, err := core.AdjacentMonths(month)
	if err != nil {
		return core.MonthlySummary{}, err
	}

	var (
		txs     []core.Transaction
		mapping map[string]core.Meta
		income  *float64
		targets core.Targets
		subs    []core.Subscription
		buckets []core.Bucket
		payroll []core.PayrollEntry
	)
	err = l.store.InTx(ctx, func(s storage.Store) error {
		var err error
		if txs, err = s.ListTransactions(ctx, start, end); err != nil {
			return err
		}
		if mapping, err = s.CategoryMappings(ctx); err != nil {
			return err
		}
		if income, err = s.GetIncome(ctx, month); err != nil {
			return err
		}
		if targets, err = s.GetTargets(ctx); err != nil {
			return err
		}
		if subs, err = s.ListSubscriptions(ctx, false); err != nil {
			return err
		}
		if buckets, err = s.ListBuckets(ctx); err != nil {
			return err
		}
		payroll, err = s.ListPayroll(ctx, start, end)
		return err
	})
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to load monthly summary", log.FieldMonth, month, log.FieldError, err)
		return core.MonthlySummary{}, fmt.Errorf("load monthly summary: %w", err)
	}

	agg := core.Aggregate(txs, mapping)
	views := core.ViewBuckets(buckets, mapping)

	return core.MonthlySummary{
		Month:           month,
		PrevMonth:       prev,
		NextMonth:       next,
		Transactions:    txs,
		MonthTotal:      agg.MonthTotal,
		NetByCategory:   agg.NetByCategory,
		SpendByCategory: agg.SpendByCategory,
		MetaTotals:      agg.MetaTotals,
		MetaSummary:     core.PlanBudget(income, targets, agg.MetaTotals),
		PieMeta:         agg.MetaSeries(),
		PieSub:          agg.CategorySeries(),
		Income:          income,
		Targets:         targets,
		Mappings:        mapping,
		Subscriptions:   subs,
		Buckets:         views,
		BucketTotals:    core.TotalBuckets(views),
		PayrollSummary:  core.SummarizePayroll(payroll),
	}, nil
}
