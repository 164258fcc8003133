package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sarthakgup/personal-finance-copilot/internal/log"
)

type copilotQueryRequest struct {
	Question string `json:"question"`
}

type copilotDataDTO struct {
	Category         string   `json:"category,omitempty"`
	Period           string   `json:"period,omitempty"`
	Amount           *float64 `json:"amount,omitempty"`
	TransactionCount *int     `json:"transaction_count,omitempty"`
}

type copilotQueryResponse struct {
	Answer string         `json:"answer"`
	Data   copilotDataDTO `json:"data"`
}

func (s *Server) handleCopilotQuery(w http.ResponseWriter, r *http.Request) {
	var req copilotQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondError(w, http.StatusUnprocessableEntity, "question is required")
		return
	}

	resp, err := s.resolver.Resolve(r.Context(), req.Question, time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Copilot query failed",
			log.FieldQuestion, req.Question, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	dto := copilotQueryResponse{
		Answer: resp.Answer,
		Data: copilotDataDTO{
			Category:         resp.Data.Category,
			Period:           resp.Data.Period,
			TransactionCount: resp.Data.TransactionCount,
		},
	}
	if resp.Data.Amount != nil {
		amount := resp.Data.Amount.Float64()
		dto.Data.Amount = &amount
	}
	respondJSON(w, http.StatusOK, dto)
}
