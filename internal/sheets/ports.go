package sheets

import (
	"context"

	"ledger/internal/core"
)

// TransactionAppender exports one ledger transaction as a spreadsheet row.
type TransactionAppender interface {
	AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
}

// Row is the exported column order: date, description, category, amount.
func Row(tx core.Transaction) []any {
	return []any{
		tx.Date.UTC().Format(core.TimestampLayout),
		tx.Description,
		tx.Category,
		tx.Amount,
	}
}
