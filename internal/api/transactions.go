package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/service"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/store"
)

// TransactionsHandler handles transaction endpoints. All writes go
// through the orchestrator so rules run around every mutation.
type TransactionsHandler struct {
	orchestrator *service.Orchestrator
	store        *store.Store
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(o *service.Orchestrator, s *store.Store) *TransactionsHandler {
	return &TransactionsHandler{orchestrator: o, store: s}
}

// Create handles POST /api/transactions.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	transaction, err := h.orchestrator.CreateTransaction(&req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transaction)
}

// List handles GET /api/transactions.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.TransactionFilter{}

	if v := r.URL.Query().Get("source_account_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid source_account_id")
			return
		}
		filter.SourceAccountID = &id
	}
	if v := r.URL.Query().Get("category"); v != "" {
		filter.Category = &v
	}

	var err error
	if filter.StartDate, err = parseTimeParam(r, "start_date"); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid start_date")
		return
	}
	if filter.EndDate, err = parseTimeParam(r, "end_date"); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid end_date")
		return
	}
	if filter.Limit, err = parseIntParam(r, "limit"); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit")
		return
	}
	if filter.Offset, err = parseIntParam(r, "offset"); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid offset")
		return
	}

	transactions, err := h.store.ListTransactions(filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": transactions})
}

// Get handles GET /api/transactions/{id}.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	transaction, err := h.orchestrator.GetTransaction(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transaction)
}

// Update handles PUT /api/transactions/{id}.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req models.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	transaction, err := h.orchestrator.UpdateTransaction(id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transaction)
}

// Delete handles DELETE /api/transactions/{id}.
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	deleted, err := h.orchestrator.DeleteTransaction(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeJSONError(w, http.StatusNotFound, "not_found", "Transaction not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		// Accept bare dates as well.
		t, err = time.Parse("2006-01-02", v)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func parseIntParam(r *http.Request, name string) (*int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
