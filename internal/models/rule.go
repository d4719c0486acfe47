package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConditionType tags a rule condition. The vocabulary is closed: the
// evaluator matches exhaustively and rejects unknown tags instead of
// silently ignoring them.
type ConditionType string

// Condition types.
const (
	ConditionDescriptionContains   ConditionType = "description_contains"
	ConditionDescriptionStartsWith ConditionType = "description_starts_with"
	ConditionDescriptionEquals     ConditionType = "description_equals"
	ConditionSourceAccountEquals   ConditionType = "source_account_equals"
	ConditionDestAccountEquals     ConditionType = "destination_account_equals"
	ConditionDestNameContains      ConditionType = "destination_name_contains"
	ConditionDestNameEquals        ConditionType = "destination_name_equals"
	ConditionAmountGreaterThan     ConditionType = "amount_greater_than"
	ConditionAmountLessThan        ConditionType = "amount_less_than"
	ConditionAmountEquals          ConditionType = "amount_equals"
)

// ActionType tags a rule action. Actions only ever touch non-balance
// fields; amount and account ids are not part of the vocabulary.
type ActionType string

// Action types.
const (
	ActionSetCategory        ActionType = "set_category"
	ActionSetBudget          ActionType = "set_budget"
	ActionSetDescription     ActionType = "set_description"
	ActionSetDestinationName ActionType = "set_destination_name"
)

// RuleCondition is one predicate of a rule. All conditions of a rule
// must hold for the rule to match (logical AND).
type RuleCondition struct {
	ConditionType ConditionType `json:"condition_type" yaml:"condition_type"`
	Value         string        `json:"value" yaml:"value"`
}

// RuleAction is one field override a matching rule applies.
type RuleAction struct {
	ActionType ActionType `json:"action_type" yaml:"action_type"`
	Value      string     `json:"value" yaml:"value"`
}

// Rule is a stored rule row. Conditions and actions are kept as ordered
// JSON lists in text columns.
type Rule struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Description    *string    `json:"description,omitempty"`
	IsActive       bool       `json:"is_active"`
	Priority       int        `json:"priority"` // lower runs first
	GroupID        *uuid.UUID `json:"group_id,omitempty"`
	ConditionsJSON string     `json:"-"`
	ActionsJSON    string     `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// RuleDetail is a rule with decoded conditions and actions, as exposed
// to callers.
type RuleDetail struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	IsActive    bool            `json:"is_active"`
	Priority    int             `json:"priority"`
	GroupID     *uuid.UUID      `json:"group_id,omitempty"`
	Conditions  []RuleCondition `json:"conditions"`
	Actions     []RuleAction    `json:"actions"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Decode deserializes the stored condition and action lists.
func (r *Rule) Decode() ([]RuleCondition, []RuleAction, error) {
	var conditions []RuleCondition
	if err := json.Unmarshal([]byte(r.ConditionsJSON), &conditions); err != nil {
		return nil, nil, fmt.Errorf("failed to decode conditions: %w", err)
	}

	var actions []RuleAction
	if err := json.Unmarshal([]byte(r.ActionsJSON), &actions); err != nil {
		return nil, nil, fmt.Errorf("failed to decode actions: %w", err)
	}

	return conditions, actions, nil
}

// ToDetail converts a stored rule into its decoded form.
func (r *Rule) ToDetail() (*RuleDetail, error) {
	conditions, actions, err := r.Decode()
	if err != nil {
		return nil, err
	}

	return &RuleDetail{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.IsActive,
		Priority:    r.Priority,
		GroupID:     r.GroupID,
		Conditions:  conditions,
		Actions:     actions,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

// CreateRuleRequest is the payload for creating a rule.
type CreateRuleRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	IsActive    bool            `json:"is_active"`
	Priority    *int            `json:"priority,omitempty"` // defaults to 100
	GroupID     *uuid.UUID      `json:"group_id,omitempty"`
	Conditions  []RuleCondition `json:"conditions"`
	Actions     []RuleAction    `json:"actions"`
}

// UpdateRuleRequest is the payload for updating a rule.
type UpdateRuleRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
	Priority    *int             `json:"priority,omitempty"`
	GroupID     *uuid.UUID       `json:"group_id,omitempty"`
	Conditions  *[]RuleCondition `json:"conditions,omitempty"`
	Actions     *[]RuleAction    `json:"actions,omitempty"`
}
