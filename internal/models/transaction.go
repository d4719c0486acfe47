package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction represents a double-entry transaction.
//
// Amount is signed: positive means value leaves the source account and
// arrives at the destination, negative means the reverse. The source and
// destination accounts always differ.
type Transaction struct {
	ID                   uuid.UUID  `json:"id"`
	SourceAccountID      uuid.UUID  `json:"source_account_id"`
	DestinationAccountID uuid.UUID  `json:"destination_account_id"`
	DestinationName      *string    `json:"destination_name,omitempty"`
	Description          string     `json:"description"`
	Amount               float64    `json:"amount"`
	Category             string     `json:"category"` // legacy free-text name
	CategoryID           *uuid.UUID `json:"category_id,omitempty"`
	BudgetID             *uuid.UUID `json:"budget_id,omitempty"`
	TransactionDate      time.Time  `json:"transaction_date"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// CreateTransactionRequest is the payload for creating a transaction.
// Either DestinationAccountID or DestinationName may be set; when both
// are absent the description doubles as the destination name.
type CreateTransactionRequest struct {
	SourceAccountID      uuid.UUID  `json:"source_account_id"`
	DestinationAccountID *uuid.UUID `json:"destination_account_id,omitempty"`
	DestinationName      *string    `json:"destination_name,omitempty"`
	Description          string     `json:"description"`
	Amount               float64    `json:"amount"`
	Category             string     `json:"category"`
	BudgetID             *uuid.UUID `json:"budget_id,omitempty"`
	TransactionDate      *time.Time `json:"transaction_date,omitempty"`
}

// UpdateTransactionRequest is a sparse patch for a transaction. The
// source account is immutable and therefore not part of the patch.
type UpdateTransactionRequest struct {
	DestinationAccountID *uuid.UUID `json:"destination_account_id,omitempty"`
	DestinationName      *string    `json:"destination_name,omitempty"`
	Description          *string    `json:"description,omitempty"`
	Amount               *float64   `json:"amount,omitempty"`
	Category             *string    `json:"category,omitempty"`
	BudgetID             *uuid.UUID `json:"budget_id,omitempty"`
	TransactionDate      *time.Time `json:"transaction_date,omitempty"`
}

// FieldPatch is the sparse set of field overrides produced by rule
// evaluation. It never carries amount or account ids, so applying it can
// never change account balances.
type FieldPatch struct {
	Category        *string    `json:"category,omitempty"`
	BudgetID        *uuid.UUID `json:"budget_id,omitempty"`
	Description     *string    `json:"description,omitempty"`
	DestinationName *string    `json:"destination_name,omitempty"`
}

// IsEmpty reports whether the patch sets no fields.
func (p *FieldPatch) IsEmpty() bool {
	return p.Category == nil && p.BudgetID == nil &&
		p.Description == nil && p.DestinationName == nil
}

// ToUpdateRequest converts the patch into a transaction update request.
func (p *FieldPatch) ToUpdateRequest() UpdateTransactionRequest {
	return UpdateTransactionRequest{
		Category:        p.Category,
		BudgetID:        p.BudgetID,
		Description:     p.Description,
		DestinationName: p.DestinationName,
	}
}
