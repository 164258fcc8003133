// Package store defines the transaction store port the rest of the system
// depends on. Backends live in the memory and sqlite subpackages; both
// guarantee insertion-order iteration and serialized mutations.
package store

import (
	"context"
	"errors"

	"github.com/sarthakgup/personal-finance-copilot/internal/core"
)

var (
	// ErrNotFound is returned when a transaction or category id is unknown.
	ErrNotFound = errors.New("not found")
	// ErrInvalidReference is returned by UpdateTransactionCategory when the
	// target category does not exist. The transaction is left untouched.
	ErrInvalidReference = errors.New("category does not exist")
	// ErrDuplicateName is returned by CreateCategory when the name is taken.
	ErrDuplicateName = errors.New("category name already exists")
)

// ListOptions narrows ListTransactions. Zero values mean no restriction;
// Limit <= 0 returns everything after Skip.
type ListOptions struct {
	Skip       int
	Limit      int
	CategoryID *int64
}

// TransactionStore is the single source of truth for transactions and
// categories. Reads observe a consistent snapshot for the duration of one
// call; mutations on the same record never interleave.
type TransactionStore interface {
	// InsertTransaction assigns an id and persists the transaction.
	InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error)

	// GetTransaction returns the transaction or ErrNotFound.
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)

	// ListTransactions returns transactions in insertion order, optionally
	// paginated and filtered by category.
	ListTransactions(ctx context.Context, opts ListOptions) ([]core.Transaction, error)

	// UpdateTransactionCategory atomically sets (or clears, with nil) the
	// category of one transaction and returns the updated record. Fails
	// with ErrNotFound or ErrInvalidReference without partial mutation.
	UpdateTransactionCategory(ctx context.Context, id int64, categoryID *int64) (core.Transaction, error)

	// ListCategories returns all categories ordered by id.
	ListCategories(ctx context.Context) ([]core.Category, error)

	// CreateCategory persists a new category; name uniqueness is enforced
	// with ErrDuplicateName.
	CreateCategory(ctx context.Context, name string, keywords []string) (core.Category, error)

	Close() error
}
