package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/sarthakgup/personal-finance-copilot/internal/store"
	"github.com/sarthakgup/personal-finance-copilot/internal/store/memory"
)

const sampleCSV = `Date,Description,Amount
2024-05-01,WHOLE FOODS MARKET,-54.12
2024-05-02,Shell Gas Station,-40.00
2024-05-03,Paycheck,2500.00
`

func TestIngestCSVCounts(t *testing.T) {
	s := memory.New()
	defer s.Close()
	p := NewPipeline(s, nil)

	res, err := p.IngestCSV(context.Background(), strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("IngestCSV: %v", err)
	}
	if res.Inserted != 3 || res.Duplicates != 0 || res.Errors != 0 {
		t.Fatalf("got inserted=%d duplicates=%d errors=%d, want 3/0/0",
			res.Inserted, res.Duplicates, res.Errors)
	}
	if len(res.InsertedIDs) != 3 {
		t.Fatalf("got %d inserted IDs, want 3", len(res.InsertedIDs))
	}

	txs, err := s.ListTransactions(context.Background(), store.ListOptions{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("store holds %d transactions, want 3", len(txs))
	}
	if txs[0].Description != "WHOLE FOODS MARKET" {
		t.Errorf("description = %q", txs[0].Description)
	}
	if txs[0].Amount.Cents != -5412 {
		t.Errorf("amount cents = %d, want -5412", txs[0].Amount.Cents)
	}
	if txs[2].Amount.Cents != 250000 {
		t.Errorf("income cents = %d, want 250000", txs[2].Amount.Cents)
	}
}

func TestIngestCSVReuploadIsAllDuplicates(t *testing.T) {
	s := memory.New()
	defer s.Close()
	p := NewPipeline(s, nil)

	first, err := p.IngestCSV(context.Background(), strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	second, err := p.IngestCSV(context.Background(), strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if second.Inserted != 0 {
		t.Errorf("second upload inserted = %d, want 0", second.Inserted)
	}
	if second.Duplicates != first.Inserted {
		t.Errorf("second upload duplicates = %d, want %d", second.Duplicates, first.Inserted)
	}
}

func TestIngestCSVDuplicateWithinBatch(t *testing.T) {
	csv := `2024-05-01,Coffee Shop,-4.50
2024-05-01,Coffee Shop,-4.50
2024-05-01,Coffee Shop,-9.00
`
	s := memory.New()
	defer s.Close()
	p := NewPipeline(s, nil)

	res, err := p.IngestCSV(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("IngestCSV: %v", err)
	}
	if res.Inserted != 2 || res.Duplicates != 1 {
		t.Fatalf("got inserted=%d duplicates=%d, want 2/1", res.Inserted, res.Duplicates)
	}
}

func TestIngestCSVRowErrorsAreCounted(t *testing.T) {
	csv := `Date,Description,Amount
not-a-date,Mystery,-5.00
2024-05-01,Valid Row,-5.00
2024-05-02,No Amount
2024-05-03,Bad Amount,abc
`
	s := memory.New()
	defer s.Close()
	p := NewPipeline(s, nil)

	res, err := p.IngestCSV(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("IngestCSV: %v", err)
	}
	if res.Inserted != 1 || res.Errors != 3 {
		t.Fatalf("got inserted=%d errors=%d, want 1/3", res.Inserted, res.Errors)
	}
	if res.Inserted+res.Duplicates+res.Errors != 4 {
		t.Errorf("tallies sum to %d, want 4 data rows",
			res.Inserted+res.Duplicates+res.Errors)
	}
}

func TestIngestCSVDateFormats(t *testing.T) {
	csv := `05/01/2024,Slash US,-1.00
2024/05/02,Slash ISO,-1.00
"May 3, 2024",Long Form,-1.00
4 May 2024,Day First,-1.00
`
	s := memory.New()
	defer s.Close()
	p := NewPipeline(s, nil)

	res, err := p.IngestCSV(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("IngestCSV: %v", err)
	}
	if res.Errors != 0 || res.Inserted != 4 {
		t.Fatalf("got inserted=%d errors=%d, want 4/0", res.Inserted, res.Errors)
	}

	txs, err := s.ListTransactions(context.Background(), store.ListOptions{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	want := []string{"2024-05-01", "2024-05-02", "2024-05-03", "2024-05-04"}
	for i, w := range want {
		if got := txs[i].Date.ISO(); got != w {
			t.Errorf("row %d date = %s, want %s", i, got, w)
		}
	}
}

func TestIngestCSVClassifiesRows(t *testing.T) {
	s := memory.New()
	defer s.Close()
	cat, err := s.CreateCategory(context.Background(), "Groceries", []string{"whole foods"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	p := NewPipeline(s, nil)

	if _, err := p.IngestCSV(context.Background(), strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("IngestCSV: %v", err)
	}

	txs, err := s.ListTransactions(context.Background(), store.ListOptions{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if txs[0].CategoryID == nil || *txs[0].CategoryID != cat.ID {
		t.Errorf("grocery row not classified, got %v", txs[0].CategoryID)
	}
	if txs[1].CategoryID != nil {
		t.Errorf("unmatched row got category %d", *txs[1].CategoryID)
	}
}

func TestIngestCSVNormalizesDescriptions(t *testing.T) {
	csv := "2024-05-01,  WHOLE   FOODS  ,-10.00\n2024-05-02,,-3.00\n"
	s := memory.New()
	defer s.Close()
	p := NewPipeline(s, nil)

	if _, err := p.IngestCSV(context.Background(), strings.NewReader(csv)); err != nil {
		t.Fatalf("IngestCSV: %v", err)
	}
	txs, err := s.ListTransactions(context.Background(), store.ListOptions{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if txs[0].Description != "WHOLE FOODS" {
		t.Errorf("description = %q, want %q", txs[0].Description, "WHOLE FOODS")
	}
	if txs[1].Description != "Unknown" {
		t.Errorf("empty description = %q, want %q", txs[1].Description, "Unknown")
	}
}
