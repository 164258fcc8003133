package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sarthakgup/personal-finance-copilot/internal/store"
	"github.com/sarthakgup/personal-finance-copilot/internal/store/memory"
)

type fakePublisher struct {
	mu        sync.Mutex
	published []int64
	closed    bool
}

func (f *fakePublisher) PublishTransactionSync(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, id)
	return nil
}

func (f *fakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestIngestStatementPublishesSyncMessages(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub, nil)
	defer svc.Close()

	csv := "2024-05-01,Coffee,-4.50\n2024-05-02,Lunch,-12.00\n"
	res, err := svc.IngestStatement(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("IngestStatement: %v", err)
	}
	if res.Inserted != 2 {
		t.Fatalf("inserted = %d, want 2", res.Inserted)
	}
	if len(pub.published) != 2 {
		t.Fatalf("published %d sync messages, want 2", len(pub.published))
	}
}

func TestUpdateCategoryPublishesSyncMessage(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub, nil)
	defer svc.Close()
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, "Dining", []string{"coffee"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	res, err := svc.IngestStatement(ctx, strings.NewReader("2024-05-01,Bookstore,-20.00\n"))
	if err != nil {
		t.Fatalf("IngestStatement: %v", err)
	}
	id := res.InsertedIDs[0]
	pub.published = nil

	tx, err := svc.UpdateCategory(ctx, id, &cat.ID)
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if tx.CategoryID == nil || *tx.CategoryID != cat.ID {
		t.Errorf("category not applied: %+v", tx)
	}
	if len(pub.published) != 1 || pub.published[0] != id {
		t.Errorf("published = %v, want [%d]", pub.published, id)
	}
}

func TestUpdateCategoryUnknownTransaction(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil, nil)
	defer svc.Close()

	_, err := svc.UpdateCategory(context.Background(), 999, nil)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReclassifyAll(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil, nil)
	defer svc.Close()
	ctx := context.Background()

	res, err := svc.IngestStatement(ctx, strings.NewReader(
		"2024-05-01,WHOLE FOODS,-30.00\n2024-05-02,Hardware Store,-15.00\n"))
	if err != nil {
		t.Fatalf("IngestStatement: %v", err)
	}
	if res.Inserted != 2 {
		t.Fatalf("inserted = %d, want 2", res.Inserted)
	}

	// Rules created after ingestion only take effect on reclassify.
	cat, err := svc.CreateCategory(ctx, "Groceries", []string{"whole foods"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	updated, err := svc.ReclassifyAll(ctx)
	if err != nil {
		t.Fatalf("ReclassifyAll: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}

	txs, err := svc.ListTransactions(ctx, store.ListOptions{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if txs[0].CategoryID == nil || *txs[0].CategoryID != cat.ID {
		t.Errorf("first row not reclassified: %+v", txs[0])
	}
	if txs[1].CategoryID != nil {
		t.Errorf("unmatched row gained category %d", *txs[1].CategoryID)
	}

	// A second pass with unchanged rules is a no-op.
	updated, err = svc.ReclassifyAll(ctx)
	if err != nil {
		t.Fatalf("second ReclassifyAll: %v", err)
	}
	if updated != 0 {
		t.Errorf("second pass updated = %d, want 0", updated)
	}
}

func TestSeedDefaultCategoriesIsIdempotent(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil, nil)
	defer svc.Close()
	ctx := context.Background()

	first, err := svc.SeedDefaultCategories(ctx)
	if err != nil {
		t.Fatalf("SeedDefaultCategories: %v", err)
	}
	if first == 0 {
		t.Fatal("expected seed to create categories")
	}

	second, err := svc.SeedDefaultCategories(ctx)
	if err != nil {
		t.Fatalf("second SeedDefaultCategories: %v", err)
	}
	if second != 0 {
		t.Errorf("second seed created %d categories, want 0", second)
	}

	cats, err := svc.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != first {
		t.Errorf("got %d categories, want %d", len(cats), first)
	}
}

func TestCloseClosesPublisher(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub, nil)

	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !pub.closed {
		t.Error("publisher not closed")
	}
}
