// Package api provides the JSON HTTP adapter over the ledger core.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/ledger"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/store"
)

// ErrorResponse is the error body returned by all endpoints.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// writeError maps core errors to HTTP statuses: NotFound is 404, an
// invalid transaction is 400, conflicts are 409, everything else is a
// 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", "Record not found")
	case errors.Is(err, ledger.ErrInvalidTransaction):
		writeJSONError(w, http.StatusBadRequest, "invalid_transaction", err.Error())
	case errors.Is(err, store.ErrAccountInUse):
		writeJSONError(w, http.StatusConflict, "account_in_use", "Account is referenced by transactions")
	case errors.Is(err, store.ErrDuplicateName):
		writeJSONError(w, http.StatusConflict, "duplicate_name", "Name already exists")
	default:
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Internal server error")
	}
}
