// Package services orchestrates transaction operations across the store,
// the classifier, and AMQP. Sheet mirroring is asynchronous: mutations
// publish a sync message and never block on the broker.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sarthakgup/personal-finance-copilot/internal/classify"
	"github.com/sarthakgup/personal-finance-copilot/internal/core"
	"github.com/sarthakgup/personal-finance-copilot/internal/ingest"
	"github.com/sarthakgup/personal-finance-copilot/internal/log"
	"github.com/sarthakgup/personal-finance-copilot/internal/store"
)

// SyncPublisher publishes transaction sync messages for the export worker.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id int64) error
	Close() error
}

// TransactionService is the application service behind the HTTP handlers.
type TransactionService struct {
	store     store.TransactionStore
	pipeline  *ingest.Pipeline
	publisher SyncPublisher
	logger    *log.Logger
}

func NewTransactionService(s store.TransactionStore, publisher SyncPublisher, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentApp)
	}
	return &TransactionService{
		store:     s,
		pipeline:  ingest.NewPipeline(s, logger.WithComponent(log.ComponentIngest)),
		publisher: publisher,
		logger:    logger,
	}
}

// IngestStatement runs the CSV pipeline and publishes a sync message for
// every inserted transaction. Publish failures are logged, not returned;
// the rows are already saved locally.
func (s *TransactionService) IngestStatement(ctx context.Context, r io.Reader) (ingest.Result, error) {
	res, err := s.pipeline.IngestCSV(ctx, r)
	if err != nil {
		return res, err
	}
	for _, id := range res.InsertedIDs {
		s.publishSync(ctx, id)
	}
	return res, nil
}

func (s *TransactionService) ListTransactions(ctx context.Context, opts store.ListOptions) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, opts)
}

func (s *TransactionService) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// UpdateCategory reassigns a transaction's category and publishes a sync
// message so the sheet mirror picks up the change.
func (s *TransactionService) UpdateCategory(ctx context.Context, id int64, categoryID *int64) (core.Transaction, error) {
	tx, err := s.store.UpdateTransactionCategory(ctx, id, categoryID)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publishSync(ctx, id)
	return tx, nil
}

func (s *TransactionService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *TransactionService) CreateCategory(ctx context.Context, name string, keywords []string) (core.Category, error) {
	return s.store.CreateCategory(ctx, name, keywords)
}

// ReclassifyAll reapplies the current keyword rules to every transaction
// and returns how many changed category. Manual assignments are overwritten
// only when a rule matches; rows with no matching keyword keep their
// current category.
func (s *TransactionService) ReclassifyAll(ctx context.Context) (int, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}
	txs, err := s.store.ListTransactions(ctx, store.ListOptions{})
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	updated := 0
	for _, tx := range txs {
		match := classify.CategoryID(tx.Description, categories)
		if match == nil || sameCategory(tx.CategoryID, match) {
			continue
		}
		if _, err := s.store.UpdateTransactionCategory(ctx, tx.ID, match); err != nil {
			return updated, fmt.Errorf("reclassify transaction %d: %w", tx.ID, err)
		}
		s.publishSync(ctx, tx.ID)
		updated++
	}

	s.logger.InfoContext(ctx, "Reclassification completed",
		"scanned", len(txs), "updated", updated)
	return updated, nil
}

// SeedDefaultCategories creates the starter rule set, skipping names that
// already exist. Returns how many categories were created.
func (s *TransactionService) SeedDefaultCategories(ctx context.Context) (int, error) {
	created := 0
	for _, seed := range classify.DefaultCategories() {
		_, err := s.store.CreateCategory(ctx, seed.Name, seed.Keywords)
		if errors.Is(err, store.ErrDuplicateName) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed category %q: %w", seed.Name, err)
		}
		created++
	}
	return created, nil
}

func (s *TransactionService) publishSync(ctx context.Context, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish sync message",
			log.FieldTxnID, id, log.FieldError, err)
	}
}

func sameCategory(current *int64, next *int64) bool {
	if current == nil || next == nil {
		return current == nil && next == nil
	}
	return *current == *next
}

// Close closes the store and the AMQP publisher.
func (s *TransactionService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}
