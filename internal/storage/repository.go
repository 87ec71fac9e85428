package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ledger/internal/core"

	_ "modernc.org/sqlite"
)

// Store is the persistence boundary of the ledger. Every method is safe to
// call inside InTx, where it runs on the open transaction.
type Store interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) (bool, error)
	ListTransactions(ctx context.Context, start, end time.Time) ([]core.Transaction, error)
	TransactionExists(ctx context.Context, day time.Time, description, category string, amount float64) (bool, error)
	SearchTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error)

	CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error)
	GetSubscription(ctx context.Context, id int64) (core.Subscription, error)
	UpdateSubscription(ctx context.Context, s core.Subscription) (bool, error)
	ToggleSubscription(ctx context.Context, id int64) (bool, error)
	DeleteSubscription(ctx context.Context, id int64) (bool, error)
	ListSubscriptions(ctx context.Context, activeOnly bool) ([]core.Subscription, error)

	UpsertCategoryMeta(ctx context.Context, category string, meta core.Meta) error
	DeleteCategoryMeta(ctx context.Context, category string) (bool, error)
	CategoryMappings(ctx context.Context) (map[string]core.Meta, error)

	SetIncome(ctx context.Context, month string, income float64) error
	GetIncome(ctx context.Context, month string) (*float64, error)
	GetTargets(ctx context.Context) (core.Targets, error)
	SetTargets(ctx context.Context, t core.Targets) error

	CreateBucket(ctx context.Context, b core.Bucket) (core.Bucket, error)
	GetBucket(ctx context.Context, id int64) (core.Bucket, error)
	UpdateBucket(ctx context.Context, b core.Bucket) error
	DeleteBucket(ctx context.Context, id int64) (bool, error)
	ListBuckets(ctx context.Context) ([]core.Bucket, error)

	CreatePayrollEntry(ctx context.Context, e core.PayrollEntry) (core.PayrollEntry, error)
	DeletePayrollEntry(ctx context.Context, id int64) (bool, error)
	ListPayroll(ctx context.Context, from, to time.Time) ([]core.PayrollEntry, error)

	InTx(ctx context.Context, fn func(Store) error) error
}

const payDateLayout = "2006-01-02"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	inTx    bool
}

var _ Store = (*SQLiteRepository)(nil)

// dsn enables WAL and foreign keys on every pooled connection.
func dsn(dbPath string) string {
	return dbPath + "?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection serializes writers, so check-then-insert inside InTx cannot interleave.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil && !r.inTx {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable. Used by readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InTx runs fn inside one database transaction. Nested calls reuse the
// outer transaction. Any error from fn rolls everything back.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(Store) error) error {
	if r.inTx {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&SQLiteRepository{db: r.db, queries: r.queries.WithTx(tx), inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	return t.Format(core.TimestampLayout)
}

// parseTimestamp accepts the stored layout plus the RFC3339 and date-only
// forms that older imports may contain.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{core.TimestampLayout, time.RFC3339, payDateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, core.ErrInvalidDate)
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		Date:        formatTimestamp(t.Date),
		Description: t.Description,
		Amount:      t.Amount,
		Category:    t.Category,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	slog.DebugContext(ctx, "Transaction saved to SQLite", "id", row.ID, "category", row.Category, "amount", row.Amount)
	return toTransaction(row)
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.NotFound("transaction", id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return toTransaction(row)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, start, end time.Time) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsBetween(ctx, formatTimestamp(start), formatTimestamp(end))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toTransaction(row)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, nil
}

// TransactionExists matches on calendar day, description, category and an
// amount within core.AmountTolerance.
func (r *SQLiteRepository) TransactionExists(ctx context.Context, day time.Time, description, category string, amount float64) (bool, error) {
	start, end := core.DayBounds(day)
	n, err := r.queries.CountMatchingTransactions(ctx, CountMatchingTransactionsParams{
		Start:       formatTimestamp(start),
		End:         formatTimestamp(end),
		Description: description,
		Category:    category,
		Amount:      amount,
		Tolerance:   core.AmountTolerance,
	})
	if err != nil {
		return false, fmt.Errorf("count matching transactions: %w", err)
	}
	return n > 0, nil
}

// SearchTransactions returns matches newest first. Text criteria are
// case-insensitive substrings; an empty filter returns every transaction.
func (r *SQLiteRepository) SearchTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	arg := SearchTransactionsParams{
		MatchAll:           boolToInt(f.MatchAll || f.IsEmpty()),
		DescriptionPattern: likePattern(f.Description),
		CategoryPattern:    likePattern(f.Category),
		Tolerance:          core.AmountTolerance,
	}
	if f.Amount != nil {
		arg.HasAmount = 1
		arg.Amount = *f.Amount
	}

	rows, err := r.queries.SearchTransactions(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}
	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toTransaction(row)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps term in % after escaping LIKE wildcards. Empty stays empty.
func likePattern(term string) string {
	if term == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(term) + "%"
}

func toTransaction(row TransactionRow) (core.Transaction, error) {
	date, err := parseTimestamp(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", row.ID, err)
	}
	return core.Transaction{
		ID:          row.ID,
		Date:        date,
		Description: row.Description,
		Amount:      row.Amount,
		Category:    row.Category,
	}, nil
}

func (r *SQLiteRepository) CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error) {
	row, err := r.queries.CreateSubscription(ctx, CreateSubscriptionParams{
		Name:       s.Name,
		Category:   s.Category,
		Amount:     s.Amount,
		DayOfMonth: int64(s.DayOfMonth),
		Active:     boolToInt(s.Active),
	})
	if err != nil {
		return core.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}
	return toSubscription(row), nil
}

func (r *SQLiteRepository) GetSubscription(ctx context.Context, id int64) (core.Subscription, error) {
	row, err := r.queries.GetSubscription(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subscription{}, core.NotFound("subscription", id)
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	return toSubscription(row), nil
}

func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, s core.Subscription) (bool, error) {
	n, err := r.queries.UpdateSubscription(ctx, UpdateSubscriptionParams{
		ID:         s.ID,
		Name:       s.Name,
		Category:   s.Category,
		Amount:     s.Amount,
		DayOfMonth: int64(s.DayOfMonth),
	})
	if err != nil {
		return false, fmt.Errorf("update subscription: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ToggleSubscription(ctx context.Context, id int64) (bool, error) {
	n, err := r.queries.ToggleSubscription(ctx, id)
	if err != nil {
		return false, fmt.Errorf("toggle subscription: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, id int64) (bool, error) {
	n, err := r.queries.DeleteSubscription(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ListSubscriptions(ctx context.Context, activeOnly bool) ([]core.Subscription, error) {
	list := r.queries.ListSubscriptions
	if activeOnly {
		list = r.queries.ListActiveSubscriptions
	}
	rows, err := list(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	subs := make([]core.Subscription, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, toSubscription(row))
	}
	return subs, nil
}

func toSubscription(row SubscriptionRow) core.Subscription {
	return core.Subscription{
		ID:         row.ID,
		Name:       row.Name,
		Category:   row.Category,
		Amount:     row.Amount,
		DayOfMonth: int(row.DayOfMonth),
		Active:     row.Active == 1,
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (r *SQLiteRepository) UpsertCategoryMeta(ctx context.Context, category string, meta core.Meta) error {
	if err := r.queries.UpsertCategoryMeta(ctx, category, string(meta)); err != nil {
		return fmt.Errorf("upsert category meta: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteCategoryMeta(ctx context.Context, category string) (bool, error) {
	n, err := r.queries.DeleteCategoryMeta(ctx, category)
	if err != nil {
		return false, fmt.Errorf("delete category meta: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) CategoryMappings(ctx context.Context) (map[string]core.Meta, error) {
	rows, err := r.queries.ListCategoryMeta(ctx)
	if err != nil {
		return nil, fmt.Errorf("list category meta: %w", err)
	}
	mapping := make(map[string]core.Meta, len(rows))
	for _, row := range rows {
		mapping[row.Category] = core.Meta(row.Meta)
	}
	return mapping, nil
}

func (r *SQLiteRepository) SetIncome(ctx context.Context, month string, income float64) error {
	if err := r.queries.UpsertIncome(ctx, month, income); err != nil {
		return fmt.Errorf("upsert income: %w", err)
	}
	return nil
}

// GetIncome returns nil when no income was recorded for month.
func (r *SQLiteRepository) GetIncome(ctx context.Context, month string) (*float64, error) {
	income, err := r.queries.GetIncome(ctx, month)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get income: %w", err)
	}
	return &income, nil
}

// GetTargets falls back to the 50/30/20 default if the seeded row is gone.
func (r *SQLiteRepository) GetTargets(ctx context.Context) (core.Targets, error) {
	row, err := r.queries.GetTargets(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultTargets(), nil
	}
	if err != nil {
		return core.Targets{}, fmt.Errorf("get targets: %w", err)
	}
	return core.Targets{Needs: row.Needs, Wants: row.Wants, Savings: row.Savings}, nil
}

func (r *SQLiteRepository) SetTargets(ctx context.Context, t core.Targets) error {
	if err := r.queries.UpsertTargets(ctx, TargetsRow{Needs: t.Needs, Wants: t.Wants, Savings: t.Savings}); err != nil {
		return fmt.Errorf("upsert targets: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateBucket(ctx context.Context, b core.Bucket) (core.Bucket, error) {
	row, err := r.queries.CreateBucket(ctx, CreateBucketParams{
		Name:      b.Name,
		Category:  b.Category,
		Goal:      b.Goal,
		Current:   b.Current,
		Status:    string(b.Status),
		CreatedAt: formatTimestamp(b.CreatedAt),
		UpdatedAt: formatTimestamp(b.UpdatedAt),
	})
	if err != nil {
		return core.Bucket{}, fmt.Errorf("create bucket: %w", err)
	}
	slog.DebugContext(ctx, "Bucket saved to SQLite", "id", row.ID, "name", row.Name, "goal", row.Goal)
	return toBucket(row)
}

func (r *SQLiteRepository) GetBucket(ctx context.Context, id int64) (core.Bucket, error) {
	row, err := r.queries.GetBucket(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bucket{}, core.NotFound("bucket", id)
	}
	if err != nil {
		return core.Bucket{}, fmt.Errorf("get bucket: %w", err)
	}
	return toBucket(row)
}

func (r *SQLiteRepository) UpdateBucket(ctx context.Context, b core.Bucket) error {
	n, err := r.queries.UpdateBucket(ctx, UpdateBucketParams{
		ID:        b.ID,
		Name:      b.Name,
		Category:  b.Category,
		Goal:      b.Goal,
		Current:   b.Current,
		Status:    string(b.Status),
		UpdatedAt: formatTimestamp(b.UpdatedAt),
	})
	if err != nil {
		return fmt.Errorf("update bucket: %w", err)
	}
	if n == 0 {
		return core.NotFound("bucket", b.ID)
	}
	return nil
}

func (r *SQLiteRepository) DeleteBucket(ctx context.Context, id int64) (bool, error) {
	n, err := r.queries.DeleteBucket(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete bucket: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ListBuckets(ctx context.Context) ([]core.Bucket, error) {
	rows, err := r.queries.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	buckets := make([]core.Bucket, 0, len(rows))
	for _, row := range rows {
		b, err := toBucket(row)
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, nil
}

func toBucket(row BucketRow) (core.Bucket, error) {
	created, err := parseTimestamp(row.CreatedAt)
	if err != nil {
		return core.Bucket{}, fmt.Errorf("bucket %d: %w", row.ID, err)
	}
	updated, err := parseTimestamp(row.UpdatedAt)
	if err != nil {
		return core.Bucket{}, fmt.Errorf("bucket %d: %w", row.ID, err)
	}
	return core.Bucket{
		ID:        row.ID,
		Name:      row.Name,
		Category:  row.Category,
		Goal:      row.Goal,
		Current:   row.Current,
		Status:    core.BucketStatus(row.Status),
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

func (r *SQLiteRepository) CreatePayrollEntry(ctx context.Context, e core.PayrollEntry) (core.PayrollEntry, error) {
	row, err := r.queries.CreatePayrollEntry(ctx, CreatePayrollEntryParams{
		PayDate: e.PayDate.Format(payDateLayout),
		Gross:   e.Gross,
		Tax:     e.Tax,
		K401:    e.K401,
		HSA:     e.HSA,
		ESPP:    e.ESPP,
		Other:   e.Other,
		Notes:   e.Notes,
	})
	if err != nil {
		return core.PayrollEntry{}, fmt.Errorf("create payroll entry: %w", err)
	}
	return toPayrollEntry(row)
}

func (r *SQLiteRepository) DeletePayrollEntry(ctx context.Context, id int64) (bool, error) {
	n, err := r.queries.DeletePayrollEntry(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete payroll entry: %w", err)
	}
	return n > 0, nil
}

// ListPayroll returns entries whose pay date falls in [from, to], newest first.
func (r *SQLiteRepository) ListPayroll(ctx context.Context, from, to time.Time) ([]core.PayrollEntry, error) {
	rows, err := r.queries.ListPayrollBetween(ctx, from.Format(payDateLayout), to.Format(payDateLayout))
	if err != nil {
		return nil, fmt.Errorf("list payroll: %w", err)
	}
	entries := make([]core.PayrollEntry, 0, len(rows))
	for _, row := range rows {
		e, err := toPayrollEntry(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func toPayrollEntry(row PayrollRow) (core.PayrollEntry, error) {
	payDate, err := parseTimestamp(row.PayDate)
	if err != nil {
		return core.PayrollEntry{}, fmt.Errorf("payroll entry %d: %w", row.ID, err)
	}
	return core.PayrollEntry{
		ID:      row.ID,
		PayDate: payDate,
		Gross:   row.Gross,
		Tax:     row.Tax,
		K401:    row.K401,
		HSA:     row.HSA,
		ESPP:    row.ESPP,
		Other:   row.Other,
		Notes:   row.Notes,
	}, nil
}
