package worker

import (
	"context"
	"fmt"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/sheets"
)

// TransactionSource loads transactions for export.
type TransactionSource interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context, month string) ([]core.Transaction, error)
}

// ExportWorker copies newly created ledger transactions to a spreadsheet.
type ExportWorker struct {
	source TransactionSource
	sheets sheets.TransactionAppender
	logger *log.Logger
}

func NewExportWorker(source TransactionSource, appender sheets.TransactionAppender) *ExportWorker {
	return &ExportWorker{
		source: source,
		sheets: appender,
		logger: log.Default().WithComponent(log.ComponentWorker),
	}
}

// HandleEvent exports transaction.created events and acknowledges every other
// type. A returned error asks the broker to redeliver.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	if ev.Type != amqp.EventTransactionCreated {
		w.logger.DebugContext(ctx, "Ignoring ledger event",
			log.FieldEventType, ev.Type,
			"entity_id", ev.EntityID)
		return nil
	}

	tx, err := w.source.GetTransaction(ctx, ev.EntityID)
	if core.IsNotFound(err) {
		// Deleted before it could be exported; nothing to do.
		w.logger.InfoContext(ctx, "Transaction gone before export", "id", ev.EntityID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", ev.EntityID, err)
	}

	ref, err := w.sheets.AppendTransaction(ctx, tx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to export transaction",
			"id", tx.ID,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeNetwork)
		return fmt.Errorf("export transaction %d: %w", tx.ID, err)
	}

	w.logger.InfoContext(ctx, "Transaction exported",
		"id", tx.ID,
		log.FieldCategory, tx.Category,
		log.FieldAmount, tx.Amount,
		log.FieldSheetRange, ref)
	return nil
}

// ExportMonth appends every transaction of month, oldest first. It stops at
// the first failure and reports how many rows were written.
func (w *ExportWorker) ExportMonth(ctx context.Context, month string) (int, error) {
	txs, err := w.source.ListTransactions(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("list transactions for %s: %w", month, err)
	}

	exported := 0
	for i := len(txs) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		if _, err := w.sheets.AppendTransaction(ctx, txs[i]); err != nil {
			return exported, fmt.Errorf("export transaction %d: %w", txs[i].ID, err)
		}
		exported++
	}

	w.logger.InfoContext(ctx, "Month exported", log.FieldOperation, log.OpExport, log.FieldMonth, month, "count", exported)
	return exported, nil
}
