package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// EventPublisher receives ledger events after a mutation commits.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.LedgerEvent) error
}

// Ledger is the service layer over the store. Compound operations run inside
// a single store transaction; events are published only after commit.
type Ledger struct {
	store  storage.Store
	events EventPublisher
	logger *log.Logger
	now    func() time.Time
}

// NewLedger wires a ledger. events may be nil, in which case nothing is published.
func NewLedger(store storage.Store, events EventPublisher) *Ledger {
	return &Ledger{
		store:  store,
		events: events,
		logger: log.Default().WithComponent(log.ComponentLedger),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// publish never fails the caller; the mutation is already committed.
func (l *Ledger) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if l.events == nil {
		return
	}
	if err := l.events.Publish(ctx, ev); err != nil {
		l.logger.ErrorContext(ctx, "Failed to publish ledger event",
			"type", ev.Type,
			"entity_id", ev.EntityID,
			log.FieldError, err)
	}
}

// AddTransaction records a manual expense at the current time. The stored
// amount is always -abs(rawAmount).
func (l *Ledger) AddTransaction(ctx context.Context, category string, rawAmount float64, description string) (core.Transaction, error) {
	return l.AddTransactionAt(ctx, l.now(), category, rawAmount, description)
}

// AddTransactionAt is AddTransaction with an explicit timestamp, used for imports.
func (l *Ledger) AddTransactionAt(ctx context.Context, date time.Time, category string, rawAmount float64, description string) (core.Transaction, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return core.Transaction{}, core.Invalid("category", core.ErrEmptyCategory)
	}
	if math.IsNaN(rawAmount) || math.IsInf(rawAmount, 0) {
		return core.Transaction{}, core.Invalid("amount", core.ErrInvalidAmount)
	}
	if date.IsZero() {
		return core.Transaction{}, core.Invalid("date", core.ErrInvalidDate)
	}

	tx, err := l.store.CreateTransaction(ctx, core.Transaction{
		Date:        date.UTC().Truncate(time.Second),
		Description: strings.TrimSpace(description),
		Amount:      core.NormalizeExpense(rawAmount),
		Category:    category,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	l.logger.InfoContext(ctx, "Transaction added",
		log.FieldOperation, log.OpCreate,
		"id", tx.ID,
		log.FieldCategory, tx.Category,
		log.FieldAmount, tx.Amount)
	l.publish(ctx, amqp.NewLedgerEvent(amqp.EventTransactionCreated, tx.ID))
	return tx, nil
}

func (l *Ledger) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return l.store.GetTransaction(ctx, id)
}

// DeleteTransaction reports whether a row was removed. Missing ids are a no-op.
func (l *Ledger) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	deleted, err := l.store.DeleteTransaction(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	if deleted {
		l.logger.InfoContext(ctx, "Transaction deleted", log.FieldOperation, log.OpDelete, "id", id)
		l.publish(ctx, amqp.NewLedgerEvent(amqp.EventTransactionDeleted, id))
	}
	return deleted, nil
}

// ListTransactions returns the month's transactions, newest first.
func (l *Ledger) ListTransactions(ctx context.Context, month string) ([]core.Transaction, error) {
	start, end, err := core.MonthBounds(month)
	if err != nil {
		return nil, err
	}
	txs, err := l.store.ListTransactions(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// SearchTransactions returns the transactions matching f, newest first.
func (l *Ledger) SearchTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	f, err := f.Normalize()
	if err != nil {
		return nil, err
	}
	txs, err := l.store.SearchTransactions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}
	l.logger.DebugContext(ctx, "Transactions searched",
		log.FieldOperation, log.OpList,
		"match_all", f.MatchAll,
		"results", len(txs))
	return txs, nil
}

// SetIncome upserts the income of month.
func (l *Ledger) SetIncome(ctx context.Context, month string, value float64) error {
	if _, err := core.ParseMonth(month); err != nil {
		return err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return core.Invalid("income", core.ErrInvalidIncome)
	}
	if err := l.store.SetIncome(ctx, month, value); err != nil {
		return fmt.Errorf("set income: %w", err)
	}
	l.logger.InfoContext(ctx, "Income set", log.FieldMonth, month, "income", value)
	return nil
}

// SetTargets replaces the budget split. Rejected targets leave the stored ones untouched.
func (l *Ledger) SetTargets(ctx context.Context, needs, wants, savings float64) (core.Targets, error) {
	t := core.Targets{Needs: needs, Wants: wants, Savings: savings}
	if err := core.ValidateTargets(t); err != nil {
		return core.Targets{}, err
	}
	if err := l.store.SetTargets(ctx, t); err != nil {
		return core.Targets{}, fmt.Errorf("set targets: %w", err)
	}
	l.logger.InfoContext(ctx, "Targets updated", "needs", needs, "wants", wants, "savings", savings)
	return t, nil
}

func (l *Ledger) GetTargets(ctx context.Context) (core.Targets, error) {
	t, err := l.store.GetTargets(ctx)
	if err != nil {
		return core.Targets{}, fmt.Errorf("get targets: %w", err)
	}
	return t, nil
}

// MapCategory assigns category to one of Needs, Wants or Savings.
func (l *Ledger) MapCategory(ctx context.Context, category, meta string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return core.Invalid("category", core.ErrEmptyCategory)
	}
	m, err := core.ParseMeta(meta)
	if err != nil {
		return err
	}
	if err := l.store.UpsertCategoryMeta(ctx, category, m); err != nil {
		return fmt.Errorf("map category: %w", err)
	}
	l.logger.InfoContext(ctx, "Category mapped", log.FieldCategory, category, "meta", m)
	return nil
}

// UnmapCategory removes the mapping; the category falls back to Uncategorized.
func (l *Ledger) UnmapCategory(ctx context.Context, category string) (bool, error) {
	removed, err := l.store.DeleteCategoryMeta(ctx, strings.TrimSpace(category))
	if err != nil {
		return false, fmt.Errorf("unmap category: %w", err)
	}
	return removed, nil
}

func (l *Ledger) CategoryMappings(ctx context.Context) (map[string]core.Meta, error) {
	mapping, err := l.store.CategoryMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load category mappings: %w", err)
	}
	return mapping, nil
}
