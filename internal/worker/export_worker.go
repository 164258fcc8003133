// Package worker consumes transaction sync messages and mirrors the rows
// to the configured spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/sarthakgup/personal-finance-copilot/internal/amqp"
	"github.com/sarthakgup/personal-finance-copilot/internal/export"
	"github.com/sarthakgup/personal-finance-copilot/internal/log"
	"github.com/sarthakgup/personal-finance-copilot/internal/store"
)

// ExportWorker handles mirroring of transactions from the store to the
// export sheet. It always reads the current row, so a message replayed
// after a recategorization writes the up-to-date category.
type ExportWorker struct {
	store  store.TransactionStore
	writer export.TransactionWriter
	logger *log.Logger
}

func NewExportWorker(s store.TransactionStore, writer export.TransactionWriter, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	}
	return &ExportWorker{store: s, writer: writer, logger: logger}
}

// HandleSyncMessage processes a single transaction sync message from AMQP.
// A transaction deleted since publish is skipped, not retried.
func (w *ExportWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	w.logger.InfoContext(ctx, "Processing sync message", log.FieldTxnID, msg.ID)

	tx, err := w.store.GetTransaction(ctx, msg.ID)
	if errors.Is(err, store.ErrNotFound) {
		w.logger.WarnContext(ctx, "Transaction no longer exists, skipping",
			log.FieldTxnID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction %d: %w", msg.ID, err)
	}

	categoryName := ""
	if tx.CategoryID != nil {
		categories, err := w.store.ListCategories(ctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		for _, c := range categories {
			if c.ID == *tx.CategoryID {
				categoryName = c.Name
				break
			}
		}
	}

	ref, err := w.writer.AppendTransaction(ctx, tx, categoryName)
	if err != nil {
		return fmt.Errorf("append transaction %d: %w", msg.ID, err)
	}

	w.logger.InfoContext(ctx, "Mirrored transaction to sheet",
		log.FieldTxnID, msg.ID,
		log.FieldSheetsRef, ref)
	return nil
}
