// Package memory implements the transaction store in process memory.
// It backs tests and the default development backend; every instance is
// fully isolated, so tests can run against independent stores.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/sarthakgup/personal-finance-copilot/internal/core"
	"github.com/sarthakgup/personal-finance-copilot/internal/store"
)

// Store keeps transactions in insertion order behind a single RWMutex.
// Mutations take the write lock, so concurrent category updates on the
// same id serialize (last writer wins, never a lost update). Reads copy
// the data they return, giving callers a snapshot unaffected by later
// writes.
type Store struct {
	mu         sync.RWMutex
	txs        []core.Transaction
	categories []core.Category
	nextTxID   int64
	nextCatID  int64
}

var _ store.TransactionStore = (*Store)(nil)

func New() *Store {
	return &Store{nextTxID: 1, nextCatID: 1}
}

func (s *Store) InsertTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.CategoryID != nil && s.findCategoryLocked(*tx.CategoryID) == nil {
		return 0, store.ErrInvalidReference
	}
	tx.ID = s.nextTxID
	s.nextTxID++
	s.txs = append(s.txs, tx)
	return tx.ID, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.txs {
		if tx.ID == id {
			return copyTransaction(tx), nil
		}
	}
	return core.Transaction{}, store.ErrNotFound
}

func (s *Store) ListTransactions(_ context.Context, opts store.ListOptions) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		if opts.CategoryID != nil {
			if tx.CategoryID == nil || *tx.CategoryID != *opts.CategoryID {
				continue
			}
		}
		out = append(out, copyTransaction(tx))
	}

	if opts.Skip > 0 {
		if opts.Skip >= len(out) {
			return nil, nil
		}
		out = out[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *Store) UpdateTransactionCategory(_ context.Context, id int64, categoryID *int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if categoryID != nil && s.findCategoryLocked(*categoryID) == nil {
		return core.Transaction{}, store.ErrInvalidReference
	}
	for i := range s.txs {
		if s.txs[i].ID == id {
			if categoryID == nil {
				s.txs[i].CategoryID = nil
			} else {
				v := *categoryID
				s.txs[i].CategoryID = &v
			}
			return copyTransaction(s.txs[i]), nil
		}
	}
	return core.Transaction{}, store.ErrNotFound
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Category, len(s.categories))
	for i, c := range s.categories {
		out[i] = copyCategory(c)
	}
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, name string, keywords []string) (core.Category, error) {
	name = strings.TrimSpace(name)
	c := core.Category{Name: name, Keywords: normalizeKeywords(keywords)}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if strings.EqualFold(existing.Name, name) {
			return core.Category{}, store.ErrDuplicateName
		}
	}
	c.ID = s.nextCatID
	s.nextCatID++
	s.categories = append(s.categories, c)
	return copyCategory(c), nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) findCategoryLocked(id int64) *core.Category {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return &s.categories[i]
		}
	}
	return nil
}

func copyTransaction(tx core.Transaction) core.Transaction {
	if tx.CategoryID != nil {
		v := *tx.CategoryID
		tx.CategoryID = &v
	}
	return tx
}

func copyCategory(c core.Category) core.Category {
	c.Keywords = append([]string(nil), c.Keywords...)
	return c
}

func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
