package api

import (
	"encoding/json"
	"net/http"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/store"
)

// BudgetsHandler handles budget CRUD endpoints.
type BudgetsHandler struct {
	store *store.Store
}

// NewBudgetsHandler creates a new BudgetsHandler.
func NewBudgetsHandler(s *store.Store) *BudgetsHandler {
	return &BudgetsHandler{store: s}
}

// List handles GET /api/budgets.
func (h *BudgetsHandler) List(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.store.ListBudgets()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"budgets": budgets})
}

// Get handles GET /api/budgets/{id}.
func (h *BudgetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	budget, err := h.store.GetBudget(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// Create handles POST /api/budgets.
func (h *BudgetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}
	if req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Name is required")
		return
	}

	budget, err := h.store.CreateBudget(&req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, budget)
}

// Update handles PUT /api/budgets/{id}.
func (h *BudgetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req models.UpdateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	budget, err := h.store.UpdateBudget(id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// Delete handles DELETE /api/budgets/{id}. Transactions referencing the
// budget are detached, not deleted.
func (h *BudgetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	deleted, err := h.store.DeleteBudget(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeJSONError(w, http.StatusNotFound, "not_found", "Budget not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
