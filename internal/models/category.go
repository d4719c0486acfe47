package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a stable spending category. Names are unique; transactions
// reference categories by id and keep the legacy name for display.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateCategoryRequest is the payload for creating a category.
type CreateCategoryRequest struct {
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
}

// UpdateCategoryRequest is the payload for updating a category.
type UpdateCategoryRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
}
