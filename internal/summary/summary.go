// Package summary derives dashboard aggregates from the transaction store.
// Aggregates are computed on demand from a snapshot read, so they always
// reflect the latest categorization.
package summary

import (
	"context"
	"fmt"
	"sort"

	"github.com/sarthakgup/personal-finance-copilot/internal/core"
	"github.com/sarthakgup/personal-finance-copilot/internal/store"
)

// Uncategorized is the bucket name for transactions without a category.
const Uncategorized = "Uncategorized"

// Summarize builds the dashboard summary over all stored transactions.
// Only expenses (negative amounts) contribute to totals; income rows still
// count toward TotalTransactions.
func Summarize(ctx context.Context, s store.TransactionStore) (core.DashboardSummary, error) {
	txs, err := s.ListTransactions(ctx, store.ListOptions{})
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("list transactions: %w", err)
	}
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("list categories: %w", err)
	}

	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	type monthKey struct {
		year  int
		month int
	}
	byMonth := make(map[monthKey]int64)
	type catBucket struct {
		total int64
		count int
	}
	byCategory := make(map[string]*catBucket)

	out := core.DashboardSummary{TotalTransactions: len(txs)}
	for _, tx := range txs {
		if !tx.Amount.IsExpense() {
			continue
		}
		spent := tx.Amount.Magnitude().Cents
		out.TotalExpenses.Cents += spent

		mk := monthKey{year: tx.Date.Year(), month: tx.Date.Month()}
		byMonth[mk] += spent

		name := Uncategorized
		if tx.CategoryID != nil {
			if n, ok := names[*tx.CategoryID]; ok {
				name = n
			}
		}
		b := byCategory[name]
		if b == nil {
			b = &catBucket{}
			byCategory[name] = b
		}
		b.total += spent
		b.count++
	}

	out.MonthlyExpenses = make([]core.MonthlyExpense, 0, len(byMonth))
	for mk, total := range byMonth {
		out.MonthlyExpenses = append(out.MonthlyExpenses, core.MonthlyExpense{
			Year:  mk.year,
			Month: mk.month,
			Total: core.Money{Cents: total},
		})
	}
	sort.Slice(out.MonthlyExpenses, func(i, j int) bool {
		a, b := out.MonthlyExpenses[i], out.MonthlyExpenses[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})

	out.ExpensesByCategory = make([]core.CategoryExpense, 0, len(byCategory))
	for name, b := range byCategory {
		out.ExpensesByCategory = append(out.ExpensesByCategory, core.CategoryExpense{
			Category:         name,
			Total:            core.Money{Cents: b.total},
			TransactionCount: b.count,
		})
	}
	sort.Slice(out.ExpensesByCategory, func(i, j int) bool {
		a, b := out.ExpensesByCategory[i], out.ExpensesByCategory[j]
		if a.Total.Cents != b.Total.Cents {
			return a.Total.Cents > b.Total.Cents
		}
		return a.Category < b.Category
	})

	return out, nil
}
