package api

import (
	"encoding/json"
	"net/http"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/store"
)

// AccountsHandler handles account CRUD endpoints. Account balances are
// never writable here; they belong to the ledger engine.
type AccountsHandler struct {
	store *store.Store
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(s *store.Store) *AccountsHandler {
	return &AccountsHandler{store: s}
}

// List handles GET /api/accounts.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.ListAccounts()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": accounts})
}

// Get handles GET /api/accounts/{id}.
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	account, err := h.store.GetAccount(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// Create handles POST /api/accounts.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}
	if req.Name == "" || !req.AccountType.Valid() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Name and a valid account type are required")
		return
	}

	account, err := h.store.CreateAccount(&req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// Update handles PUT /api/accounts/{id}.
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req models.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}
	if req.AccountType != nil && !req.AccountType.Valid() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid account type")
		return
	}

	account, err := h.store.UpdateAccount(id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// Delete handles DELETE /api/accounts/{id}. Deleting an account that is
// still referenced by transactions returns 409.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	deleted, err := h.store.DeleteAccount(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeJSONError(w, http.StatusNotFound, "not_found", "Account not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Transactions handles GET /api/accounts/{id}/transactions.
func (h *AccountsHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	limit, err := parseIntParam(r, "limit")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit")
		return
	}
	offset, err := parseIntParam(r, "offset")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid offset")
		return
	}

	transactions, err := h.store.ListAccountTransactions(id, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": transactions})
}
