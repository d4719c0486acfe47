// Package models defines the data structures for the budget ledger.
package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountType classifies an account for budgeting purposes.
type AccountType string

// Account types.
const (
	AccountOnBudget  AccountType = "On Budget"
	AccountOffBudget AccountType = "Off Budget"
	// AccountExternal marks counterparty accounts synthesized by the
	// ledger when a transaction names an unknown destination.
	AccountExternal AccountType = "External"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountOnBudget, AccountOffBudget, AccountExternal:
		return true
	}
	return false
}

// Account represents a financial account.
//
// Balance is the sum of all signed deltas ever applied by the ledger
// engine. No other path may mutate it.
type Account struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	AccountType    AccountType `json:"account_type"`
	AccountSubType *string     `json:"account_sub_type,omitempty"`
	Balance        float64     `json:"balance"`
	Currency       string      `json:"currency"`
	IsDefault      bool        `json:"is_default"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// CreateAccountRequest is the payload for creating an account.
type CreateAccountRequest struct {
	Name           string      `json:"name"`
	AccountType    AccountType `json:"account_type"`
	AccountSubType *string     `json:"account_sub_type,omitempty"`
	Balance        float64     `json:"balance"`
	Currency       string      `json:"currency"`
	IsDefault      bool        `json:"is_default"`
}

// UpdateAccountRequest is the payload for updating an account.
// Balance is deliberately absent: balances change only through the
// ledger engine.
type UpdateAccountRequest struct {
	Name           *string      `json:"name,omitempty"`
	AccountType    *AccountType `json:"account_type,omitempty"`
	AccountSubType *string      `json:"account_sub_type,omitempty"`
	Currency       *string      `json:"currency,omitempty"`
	IsDefault      *bool        `json:"is_default,omitempty"`
}
