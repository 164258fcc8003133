package http

import (
	"net/http"

	"github.com/sarthakgup/personal-finance-copilot/internal/log"
	"github.com/sarthakgup/personal-finance-copilot/internal/summary"
)

type monthlyExpenseDTO struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	TotalAmount float64 `json:"total_amount"`
}

type categoryExpenseDTO struct {
	Category         string  `json:"category"`
	TotalAmount      float64 `json:"total_amount"`
	TransactionCount int     `json:"transaction_count"`
}

type dashboardSummaryDTO struct {
	TotalExpenses      float64              `json:"total_expenses"`
	TotalTransactions  int                  `json:"total_transactions"`
	MonthlyExpenses    []monthlyExpenseDTO  `json:"monthly_expenses"`
	ExpensesByCategory []categoryExpenseDTO `json:"expenses_by_category"`
}

// handleDashboardSummary computes the aggregates fresh on every request.
func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := summary.Summarize(r.Context(), s.store)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard summary failed", log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "summary failed")
		return
	}

	dto := dashboardSummaryDTO{
		TotalExpenses:      sum.TotalExpenses.Float64(),
		TotalTransactions:  sum.TotalTransactions,
		MonthlyExpenses:    make([]monthlyExpenseDTO, 0, len(sum.MonthlyExpenses)),
		ExpensesByCategory: make([]categoryExpenseDTO, 0, len(sum.ExpensesByCategory)),
	}
	for _, m := range sum.MonthlyExpenses {
		dto.MonthlyExpenses = append(dto.MonthlyExpenses, monthlyExpenseDTO{
			Year:        m.Year,
			Month:       m.Month,
			TotalAmount: m.Total.Float64(),
		})
	}
	for _, c := range sum.ExpensesByCategory {
		dto.ExpensesByCategory = append(dto.ExpensesByCategory, categoryExpenseDTO{
			Category:         c.Category,
			TotalAmount:      c.Total.Float64(),
			TransactionCount: c.TransactionCount,
		})
	}
	respondJSON(w, http.StatusOK, dto)
}
