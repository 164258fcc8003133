package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sarthakgup/personal-finance-copilot/internal/core"
	"github.com/sarthakgup/personal-finance-copilot/internal/log"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type uploadResponse struct {
	InsertedCount  int `json:"inserted_count"`
	DuplicateCount int `json:"duplicate_count"`
	ErrorCount     int `json:"error_count"`
}

// handleUploadStatement ingests a CSV statement. It accepts either a
// multipart form with a "file" field or a raw CSV body.
func (s *Server) handleUploadStatement(w http.ResponseWriter, r *http.Request) {
	body, err := statementBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()

	res, err := s.service.IngestStatement(r.Context(), body)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Statement ingestion failed", log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}

	respondJSON(w, http.StatusOK, uploadResponse{
		InsertedCount:  res.Inserted,
		DuplicateCount: res.Duplicates,
		ErrorCount:     res.Errors,
	})
}

func statementBody(r *http.Request) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, errors.New("invalid multipart form")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("missing file field")
	}
	return file, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.service.ListTransactions(r.Context(), opts)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	categories, err := s.categoryIndex(r)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	out := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionDTO(tx, categories))
	}
	respondJSON(w, http.StatusOK, out)
}

type updateTransactionRequest struct {
	CategoryID *int64 `json:"category_id"`
}

// handleUpdateTransaction reassigns a transaction's category. A null
// category_id clears the assignment.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tx, err := s.service.UpdateCategory(r.Context(), id, req.CategoryID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	categories, err := s.categoryIndex(r)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionDTO(tx, categories))
}

type reclassifyResponse struct {
	UpdatedCount int `json:"updated_count"`
}

// handleReclassify reapplies the current keyword rules to every stored
// transaction.
func (s *Server) handleReclassify(w http.ResponseWriter, r *http.Request) {
	updated, err := s.service.ReclassifyAll(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Reclassification failed", log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "reclassification failed")
		return
	}
	respondJSON(w, http.StatusOK, reclassifyResponse{UpdatedCount: updated})
}

func (s *Server) categoryIndex(r *http.Request) (map[int64]core.Category, error) {
	categories, err := s.service.ListCategories(r.Context())
	if err != nil {
		return nil, err
	}
	index := make(map[int64]core.Category, len(categories))
	for _, c := range categories {
		index[c.ID] = c
	}
	return index, nil
}
