package models

import (
	"time"

	"github.com/google/uuid"
)

// Budget is a named spending envelope transactions may be assigned to.
type Budget struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Amount      float64    `json:"amount"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateBudgetRequest is the payload for creating a budget.
type CreateBudgetRequest struct {
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Amount      float64    `json:"amount"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// UpdateBudgetRequest is the payload for updating a budget.
type UpdateBudgetRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Amount      *float64   `json:"amount,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}
