package storage

import (
	"context"
)

const createTransaction = `
INSERT INTO transactions (date, description, amount, category)
VALUES (?, ?, ?, ?)
RETURNING id, date, description, amount, category
`

type CreateTransactionParams struct {
	Date        string
	Description string
	Amount      float64
	Category    string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, createTransaction, arg.Date, arg.Description, arg.Amount, arg.Category)
	var i TransactionRow
	err := row.Scan(&i.ID, &i.Date, &i.Description, &i.Amount, &i.Category)
	return i, err
}

const getTransaction = `
SELECT id, date, description, amount, category FROM transactions WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var i TransactionRow
	err := row.Scan(&i.ID, &i.Date, &i.Description, &i.Amount, &i.Category)
	return i, err
}

const deleteTransaction = `
DELETE FROM transactions WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listTransactionsBetween = `
SELECT id, date, description, amount, category FROM transactions
WHERE date BETWEEN ? AND ?
ORDER BY date DESC, id DESC
`

func (q *Queries) ListTransactionsBetween(ctx context.Context, start, end string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsBetween, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.ID, &i.Date, &i.Description, &i.Amount, &i.Category); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countMatchingTransactions = `
SELECT COUNT(*) FROM transactions
WHERE date BETWEEN ? AND ?
  AND description = ?
  AND category = ?
  AND ABS(amount - ?) < ?
`

type CountMatchingTransactionsParams struct {
	Start       string
	End         string
	Description string
	Category    string
	Amount      float64
	Tolerance   float64
}

func (q *Queries) CountMatchingTransactions(ctx context.Context, arg CountMatchingTransactionsParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countMatchingTransactions,
		arg.Start, arg.End, arg.Description, arg.Category, arg.Amount, arg.Tolerance)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const searchTransactions = `
SELECT id, date, description, amount, category FROM transactions
WHERE (?1 = 0 AND (
        (?2 <> '' AND description LIKE ?2 ESCAPE '\')
     OR (?3 <> '' AND category LIKE ?3 ESCAPE '\')
     OR (?4 = 1 AND ABS(amount - ?5) < ?6)))
   OR (?1 = 1
     AND (?2 = '' OR description LIKE ?2 ESCAPE '\')
     AND (?3 = '' OR category LIKE ?3 ESCAPE '\')
     AND (?4 = 0 OR ABS(amount - ?5) < ?6))
ORDER BY date DESC, id DESC
`

type SearchTransactionsParams struct {
	MatchAll           int64
	DescriptionPattern string
	CategoryPattern    string
	HasAmount          int64
	Amount             float64
	Tolerance          float64
}

func (q *Queries) SearchTransactions(ctx context.Context, arg SearchTransactionsParams) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, searchTransactions,
		arg.MatchAll,
		arg.DescriptionPattern,
		arg.CategoryPattern,
		arg.HasAmount,
		arg.Amount,
		arg.Tolerance,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.ID, &i.Date, &i.Description, &i.Amount, &i.Category); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createSubscription = `
INSERT INTO subscriptions (name, category, amount, day_of_month, active)
VALUES (?, ?, ?, ?, ?)
RETURNING id, name, category, amount, day_of_month, active
`

type CreateSubscriptionParams struct {
	Name       string
	Category   string
	Amount     float64
	DayOfMonth int64
	Active     int64
}

func (q *Queries) CreateSubscription(ctx context.Context, arg CreateSubscriptionParams) (SubscriptionRow, error) {
	row := q.db.QueryRowContext(ctx, createSubscription, arg.Name, arg.Category, arg.Amount, arg.DayOfMonth, arg.Active)
	var i SubscriptionRow
	err := row.Scan(&i.ID, &i.Name, &i.Category, &i.Amount, &i.DayOfMonth, &i.Active)
	return i, err
}

const getSubscription = `
SELECT id, name, category, amount, day_of_month, active FROM subscriptions WHERE id = ?
`

func (q *Queries) GetSubscription(ctx context.Context, id int64) (SubscriptionRow, error) {
	row := q.db.QueryRowContext(ctx, getSubscription, id)
	var i SubscriptionRow
	err := row.Scan(&i.ID, &i.Name, &i.Category, &i.Amount, &i.DayOfMonth, &i.Active)
	return i, err
}

const updateSubscription = `
UPDATE subscriptions SET name = ?, category = ?, amount = ?, day_of_month = ?
WHERE id = ?
`

type UpdateSubscriptionParams struct {
	ID         int64
	Name       string
	Category   string
	Amount     float64
	DayOfMonth int64
}

func (q *Queries) UpdateSubscription(ctx context.Context, arg UpdateSubscriptionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateSubscription, arg.Name, arg.Category, arg.Amount, arg.DayOfMonth, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const toggleSubscription = `
UPDATE subscriptions SET active = CASE active WHEN 1 THEN 0 ELSE 1 END WHERE id = ?
`

func (q *Queries) ToggleSubscription(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, toggleSubscription, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteSubscription = `
DELETE FROM subscriptions WHERE id = ?
`

func (q *Queries) DeleteSubscription(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteSubscription, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listSubscriptions = `
SELECT id, name, category, amount, day_of_month, active FROM subscriptions
ORDER BY name, id
`

const listActiveSubscriptions = `
SELECT id, name, category, amount, day_of_month, active FROM subscriptions
WHERE active = 1
ORDER BY name, id
`

func (q *Queries) ListSubscriptions(ctx context.Context) ([]SubscriptionRow, error) {
	return q.listSubscriptions(ctx, listSubscriptions)
}

func (q *Queries) ListActiveSubscriptions(ctx context.Context) ([]SubscriptionRow, error) {
	return q.listSubscriptions(ctx, listActiveSubscriptions)
}

func (q *Queries) listSubscriptions(ctx context.Context, query string) ([]SubscriptionRow, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SubscriptionRow
	for rows.Next() {
		var i SubscriptionRow
		if err := rows.Scan(&i.ID, &i.Name, &i.Category, &i.Amount, &i.DayOfMonth, &i.Active); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertCategoryMeta = `
INSERT INTO category_meta (category, meta) VALUES (?, ?)
ON CONFLICT(category) DO UPDATE SET meta = excluded.meta
`

func (q *Queries) UpsertCategoryMeta(ctx context.Context, category, meta string) error {
	_, err := q.db.ExecContext(ctx, upsertCategoryMeta, category, meta)
	return err
}

const deleteCategoryMeta = `
DELETE FROM category_meta WHERE category = ?
`

func (q *Queries) DeleteCategoryMeta(ctx context.Context, category string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCategoryMeta, category)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listCategoryMeta = `
SELECT category, meta FROM category_meta ORDER BY category
`

func (q *Queries) ListCategoryMeta(ctx context.Context) ([]CategoryMetaRow, error) {
	rows, err := q.db.QueryContext(ctx, listCategoryMeta)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategoryMetaRow
	for rows.Next() {
		var i CategoryMetaRow
		if err := rows.Scan(&i.Category, &i.Meta); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertIncome = `
INSERT INTO monthly_income (month, income) VALUES (?, ?)
ON CONFLICT(month) DO UPDATE SET income = excluded.income
`

func (q *Queries) UpsertIncome(ctx context.Context, month string, income float64) error {
	_, err := q.db.ExecContext(ctx, upsertIncome, month, income)
	return err
}

const getIncome = `
SELECT income FROM monthly_income WHERE month = ?
`

func (q *Queries) GetIncome(ctx context.Context, month string) (float64, error) {
	row := q.db.QueryRowContext(ctx, getIncome, month)
	var income float64
	err := row.Scan(&income)
	return income, err
}

const getTargets = `
SELECT needs, wants, savings FROM meta_targets WHERE id = 1
`

func (q *Queries) GetTargets(ctx context.Context) (TargetsRow, error) {
	row := q.db.QueryRowContext(ctx, getTargets)
	var i TargetsRow
	err := row.Scan(&i.Needs, &i.Wants, &i.Savings)
	return i, err
}

const upsertTargets = `
INSERT INTO meta_targets (id, needs, wants, savings) VALUES (1, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET needs = excluded.needs, wants = excluded.wants, savings = excluded.savings
`

func (q *Queries) UpsertTargets(ctx context.Context, arg TargetsRow) error {
	_, err := q.db.ExecContext(ctx, upsertTargets, arg.Needs, arg.Wants, arg.Savings)
	return err
}

const createBucket = `
INSERT INTO funding_buckets (name, category, goal, current, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, name, category, goal, current, status, created_at, updated_at
`

type CreateBucketParams struct {
	Name      string
	Category  string
	Goal      float64
	Current   float64
	Status    string
	CreatedAt string
	UpdatedAt string
}

func (q *Queries) CreateBucket(ctx context.Context, arg CreateBucketParams) (BucketRow, error) {
	row := q.db.QueryRowContext(ctx, createBucket,
		arg.Name, arg.Category, arg.Goal, arg.Current, arg.Status, arg.CreatedAt, arg.UpdatedAt)
	var i BucketRow
	err := row.Scan(&i.ID, &i.Name, &i.Category, &i.Goal, &i.Current, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getBucket = `
SELECT id, name, category, goal, current, status, created_at, updated_at
FROM funding_buckets WHERE id = ?
`

func (q *Queries) GetBucket(ctx context.Context, id int64) (BucketRow, error) {
	row := q.db.QueryRowContext(ctx, getBucket, id)
	var i BucketRow
	err := row.Scan(&i.ID, &i.Name, &i.Category, &i.Goal, &i.Current, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const updateBucket = `
UPDATE funding_buckets
SET name = ?, category = ?, goal = ?, current = ?, status = ?, updated_at = ?
WHERE id = ?
`

type UpdateBucketParams struct {
	ID        int64
	Name      string
	Category  string
	Goal      float64
	Current   float64
	Status    string
	UpdatedAt string
}

func (q *Queries) UpdateBucket(ctx context.Context, arg UpdateBucketParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateBucket,
		arg.Name, arg.Category, arg.Goal, arg.Current, arg.Status, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteBucket = `
DELETE FROM funding_buckets WHERE id = ?
`

func (q *Queries) DeleteBucket(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBucket, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listBuckets = `
SELECT id, name, category, goal, current, status, created_at, updated_at
FROM funding_buckets
ORDER BY id
`

func (q *Queries) ListBuckets(ctx context.Context) ([]BucketRow, error) {
	rows, err := q.db.QueryContext(ctx, listBuckets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BucketRow
	for rows.Next() {
		var i BucketRow
		if err := rows.Scan(&i.ID, &i.Name, &i.Category, &i.Goal, &i.Current, &i.Status, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createPayrollEntry = `
INSERT INTO payroll_entries (pay_date, gross, tax, k401, hsa, espp, other, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, pay_date, gross, tax, k401, hsa, espp, other, notes
`

type CreatePayrollEntryParams struct {
	PayDate string
	Gross   float64
	Tax     float64
	K401    float64
	HSA     float64
	ESPP    float64
	Other   float64
	Notes   string
}

func (q *Queries) CreatePayrollEntry(ctx context.Context, arg CreatePayrollEntryParams) (PayrollRow, error) {
	row := q.db.QueryRowContext(ctx, createPayrollEntry,
		arg.PayDate, arg.Gross, arg.Tax, arg.K401, arg.HSA, arg.ESPP, arg.Other, arg.Notes)
	var i PayrollRow
	err := row.Scan(&i.ID, &i.PayDate, &i.Gross, &i.Tax, &i.K401, &i.HSA, &i.ESPP, &i.Other, &i.Notes)
	return i, err
}

const deletePayrollEntry = `
DELETE FROM payroll_entries WHERE id = ?
`

func (q *Queries) DeletePayrollEntry(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePayrollEntry, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listPayrollBetween = `
SELECT id, pay_date, gross, tax, k401, hsa, espp, other, notes
FROM payroll_entries
WHERE pay_date BETWEEN ? AND ?
ORDER BY pay_date DESC, id DESC
`

func (q *Queries) ListPayrollBetween(ctx context.Context, start, end string) ([]PayrollRow, error) {
	rows, err := q.db.QueryContext(ctx, listPayrollBetween, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PayrollRow
	for rows.Next() {
		var i PayrollRow
		if err := rows.Scan(&i.ID, &i.PayDate, &i.Gross, &i.Tax, &i.K401, &i.HSA, &i.ESPP, &i.Other, &i.Notes); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
