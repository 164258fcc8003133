// Package ingest parses raw CSV statement rows into normalized
// transactions and writes them to the store. Failures are row-scoped: a
// malformed row is counted and skipped, never fatal to the batch.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sarthakgup/personal-finance-copilot/internal/classify"
	"github.com/sarthakgup/personal-finance-copilot/internal/core"
	"github.com/sarthakgup/personal-finance-copilot/internal/log"
	"github.com/sarthakgup/personal-finance-copilot/internal/store"
)

// dateFormats is the ordered list of accepted statement date layouts.
// The first layout that parses wins; a row matching none is rejected.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Result tallies one ingestion run. Inserted + Duplicates + Errors always
// equals the number of data rows in the file.
type Result struct {
	Inserted    int
	Duplicates  int
	Errors      int
	InsertedIDs []int64
}

// Pipeline ingests CSV statements into a transaction store, classifying
// each new row with the current category rule set.
type Pipeline struct {
	store  store.TransactionStore
	logger *log.Logger
}

func NewPipeline(s store.TransactionStore, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentIngest)
	}
	return &Pipeline{store: s, logger: logger}
}

// IngestCSV reads rows of (date, description, amount), normalizes them,
// deduplicates against the store and the current batch, classifies, and
// inserts. A header row is detected and skipped. The returned error covers
// only unreadable input; row-level problems land in Result.Errors.
func (p *Pipeline) IngestCSV(ctx context.Context, r io.Reader) (Result, error) {
	var res Result

	existing, err := p.store.ListTransactions(ctx, store.ListOptions{})
	if err != nil {
		return res, fmt.Errorf("snapshot existing transactions: %w", err)
	}
	seen := make(map[string]struct{}, len(existing))
	for _, tx := range existing {
		seen[dedupKey(tx.Date, tx.Description, tx.Amount)] = struct{}{}
	}

	categories, err := p.store.ListCategories(ctx)
	if err != nil {
		return res, fmt.Errorf("list categories: %w", err)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A structurally broken line is a row error, not a batch error.
			rowNum++
			res.Errors++
			p.logger.WarnContext(ctx, "Unreadable CSV row", "row", rowNum, "error", err)
			continue
		}
		rowNum++

		if rowNum == 1 && isHeader(record) {
			rowNum = 0
			continue
		}

		tx, err := parseRow(record)
		if err != nil {
			res.Errors++
			p.logger.DebugContext(ctx, "Rejected CSV row", "row", rowNum, "error", err)
			continue
		}

		key := dedupKey(tx.Date, tx.Description, tx.Amount)
		if _, dup := seen[key]; dup {
			res.Duplicates++
			continue
		}

		tx.CategoryID = classify.CategoryID(tx.Description, categories)
		id, err := p.store.InsertTransaction(ctx, tx)
		if err != nil {
			res.Errors++
			p.logger.WarnContext(ctx, "Insert failed for CSV row", "row", rowNum, "error", err)
			continue
		}
		seen[key] = struct{}{}
		res.Inserted++
		res.InsertedIDs = append(res.InsertedIDs, id)
	}

	p.logger.InfoContext(ctx, "Ingestion completed",
		"inserted", res.Inserted,
		"duplicates", res.Duplicates,
		"errors", res.Errors)
	return res, nil
}

func parseRow(record []string) (core.Transaction, error) {
	if len(record) < 3 {
		return core.Transaction{}, fmt.Errorf("expected 3 columns, got %d", len(record))
	}

	date, err := parseDate(strings.TrimSpace(record[0]))
	if err != nil {
		return core.Transaction{}, err
	}

	amount, err := core.ParseAmount(record[2])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", record[2], err)
	}

	return core.Transaction{
		Date:        date,
		Description: core.NormalizeDescription(record[1]),
		Amount:      amount,
	}, nil
}

func parseDate(s string) (core.Date, error) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t), nil
		}
	}
	return core.Date{}, fmt.Errorf("date %q: %w", s, core.ErrInvalidDate)
}

// isHeader decides whether the first row is a column header rather than
// data: its date column parses with no accepted layout and at least one
// cell names a known column.
func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	if _, err := parseDate(strings.TrimSpace(record[0])); err == nil {
		return false
	}
	for _, cell := range record {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "date", "description", "amount", "memo", "payee":
			return true
		}
	}
	return false
}

func dedupKey(date core.Date, description string, amount core.Money) string {
	return date.ISO() + "|" + description + "|" + strconv.FormatInt(amount.Cents, 10)
}
