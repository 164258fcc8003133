package http

import (
	"encoding/json"
	"net/http"
	"strings"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.service.ListCategories(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}

	out := make([]categoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryDTO(c))
	}
	respondJSON(w, http.StatusOK, out)
}

type createCategoryRequest struct {
	Name     string `json:"name"`
	Keywords string `json:"keywords"`
}

// handleCreateCategory creates a category rule. Keywords arrive as a
// comma-separated string.
func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusUnprocessableEntity, "category name is required")
		return
	}

	category, err := s.service.CreateCategory(r.Context(), strings.TrimSpace(req.Name), parseKeywords(req.Keywords))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCategoryDTO(category))
}
