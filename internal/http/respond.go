package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sarthakgup/personal-finance-copilot/internal/core"
	"github.com/sarthakgup/personal-finance-copilot/internal/store"
)

// categoryDTO mirrors a stored category on the wire.
type categoryDTO struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// transactionDTO is a transaction joined with its category. Amounts are
// decimal dollars on the wire; cents stay internal.
type transactionDTO struct {
	ID          int64        `json:"id"`
	Date        string       `json:"date"`
	Description string       `json:"description"`
	Amount      float64      `json:"amount"`
	CategoryID  *int64       `json:"category_id"`
	Category    *categoryDTO `json:"category_obj"`
}

func toCategoryDTO(c core.Category) categoryDTO {
	keywords := c.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return categoryDTO{ID: c.ID, Name: c.Name, Keywords: keywords}
}

func toTransactionDTO(tx core.Transaction, categories map[int64]core.Category) transactionDTO {
	dto := transactionDTO{
		ID:          tx.ID,
		Date:        tx.Date.ISO(),
		Description: tx.Description,
		Amount:      tx.Amount.Float64(),
		CategoryID:  tx.CategoryID,
	}
	if tx.CategoryID != nil {
		if c, ok := categories[*tx.CategoryID]; ok {
			cdto := toCategoryDTO(c)
			dto.Category = &cdto
		}
	}
	return dto
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps store sentinels to HTTP status codes.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrInvalidReference):
		respondError(w, http.StatusUnprocessableEntity, "referenced category does not exist")
	case errors.Is(err, store.ErrDuplicateName):
		respondError(w, http.StatusConflict, "category name already exists")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
