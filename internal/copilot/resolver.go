// Package copilot answers free-text spending questions by extracting
// category, period, and intent facets from the question and aggregating
// over stored transactions. Resolution is deterministic; there is no
// language model behind it.
package copilot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sarthakgup/personal-finance-copilot/internal/core"
	"github.com/sarthakgup/personal-finance-copilot/internal/log"
	"github.com/sarthakgup/personal-finance-copilot/internal/store"
)

type intent int

const (
	intentSum intent = iota
	intentCount
	intentMax
)

// Facts carries the structured facts behind an answer. Optional fields are
// nil or empty when the corresponding facet did not apply.
type Facts struct {
	Category         string
	Period           string
	Amount           *core.Money
	TransactionCount *int
}

// Response is a resolved copilot answer. Answer is always a complete
// sentence, even when no facet matched or no transactions qualified.
type Response struct {
	Answer string
	Data   Facts
}

// Resolver answers questions against a transaction store.
type Resolver struct {
	store  store.TransactionStore
	logger *log.Logger
}

func NewResolver(s store.TransactionStore, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentCopilot)
	}
	return &Resolver{store: s, logger: logger}
}

// Resolve answers question. Relative periods such as "last month" resolve
// against now, which callers supply so answers are reproducible.
func (r *Resolver) Resolve(ctx context.Context, question string, now time.Time) (Response, error) {
	categories, err := r.store.ListCategories(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("list categories: %w", err)
	}
	txs, err := r.store.ListTransactions(ctx, store.ListOptions{})
	if err != nil {
		return Response{}, fmt.Errorf("list transactions: %w", err)
	}

	category := matchCategory(question, categories)
	period := parsePeriod(question, now)
	in := parseIntent(question)

	matched := filterTransactions(txs, category, period)

	resp := buildResponse(in, matched, category, period)

	r.logger.InfoContext(ctx, "Question resolved",
		log.FieldQuestion, question,
		"matched", len(matched))
	return resp, nil
}

// matchCategory finds the category whose name or keyword appears in the
// question. The longest matching term wins; on equal length the category
// with the lowest id wins.
func matchCategory(question string, categories []core.Category) *core.Category {
	q := strings.ToLower(question)

	ordered := make([]core.Category, len(categories))
	copy(ordered, categories)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var best *core.Category
	bestLen := 0
	for i := range ordered {
		c := &ordered[i]
		terms := append([]string{strings.ToLower(c.Name)}, c.Keywords...)
		for _, term := range terms {
			if term == "" || !strings.Contains(q, term) {
				continue
			}
			// Equal length keeps the earlier (lower id) match.
			if len(term) > bestLen {
				best = c
				bestLen = len(term)
			}
		}
	}
	return best
}

func parseIntent(question string) intent {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "how many") || strings.Contains(q, "count"):
		return intentCount
	case strings.Contains(q, "biggest") || strings.Contains(q, "largest") ||
		strings.Contains(q, "most expensive") || strings.Contains(q, "highest"):
		return intentMax
	default:
		return intentSum
	}
}

// filterTransactions keeps transactions matching the category and period
// facets. Income rows stay in; spending intents narrow to expenses when
// they aggregate.
func filterTransactions(txs []core.Transaction, category *core.Category, period *Period) []core.Transaction {
	var out []core.Transaction
	for _, tx := range txs {
		if category != nil && (tx.CategoryID == nil || *tx.CategoryID != category.ID) {
			continue
		}
		if period != nil && !period.Contains(tx.Date) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func expensesOnly(txs []core.Transaction) []core.Transaction {
	var out []core.Transaction
	for _, tx := range txs {
		if tx.Amount.IsExpense() {
			out = append(out, tx)
		}
	}
	return out
}

func buildResponse(in intent, matched []core.Transaction, category *core.Category, period *Period) Response {
	var resp Response
	if category != nil {
		resp.Data.Category = category.Name
	}
	if period != nil {
		resp.Data.Period = period.Label()
	}

	scope := describeScope(category, period)

	switch in {
	case intentCount:
		n := len(matched)
		resp.Data.TransactionCount = &n
		if n == 1 {
			resp.Answer = fmt.Sprintf("You had 1 transaction %s.", scope)
		} else {
			resp.Answer = fmt.Sprintf("You had %d transactions %s.", n, scope)
		}

	case intentMax:
		expenses := expensesOnly(matched)
		if len(expenses) == 0 {
			resp.Answer = fmt.Sprintf("You had no expenses %s.", scope)
			return resp
		}
		top := expenses[0]
		for _, tx := range expenses[1:] {
			if tx.Amount.Magnitude().Cents > top.Amount.Magnitude().Cents {
				top = tx
			}
		}
		amount := top.Amount.Magnitude()
		resp.Data.Amount = &amount
		resp.Answer = fmt.Sprintf("Your biggest expense %s was %s on %s.",
			scope, amount.Dollars(), top.Description)

	default:
		expenses := expensesOnly(matched)
		var total core.Money
		for _, tx := range expenses {
			total.Cents += tx.Amount.Magnitude().Cents
		}
		n := len(expenses)
		resp.Data.Amount = &total
		resp.Data.TransactionCount = &n
		if n == 0 {
			resp.Answer = fmt.Sprintf("You didn't spend anything %s.", scope)
		} else {
			resp.Answer = fmt.Sprintf("You spent %s %s.", total.Dollars(), scope)
		}
	}
	return resp
}

// describeScope phrases the matched facets so answers read naturally:
// "on Groceries in May 2024", "in May 2024", "on Groceries in total", or
// "in total" when no facet matched.
func describeScope(category *core.Category, period *Period) string {
	switch {
	case category != nil && period != nil:
		return fmt.Sprintf("on %s in %s", category.Name, period.Label())
	case category != nil:
		return fmt.Sprintf("on %s in total", category.Name)
	case period != nil:
		return fmt.Sprintf("in %s", period.Label())
	default:
		return "in total"
	}
}
