// Package rules implements the rule matching and application engine.
//
// Rules are evaluated against a transaction in ascending priority order
// (ties broken by name); every active rule is evaluated and matching
// rules fold their actions into one accumulating field patch, so a
// later rule may overwrite a field set by an earlier one. A rule with a
// malformed stored payload is skipped and logged; it never aborts the
// evaluation of the remaining rules.
package rules

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/store"
)

// testSampleLimit caps the sample returned by TestConditions.
const testSampleLimit = 100

// Engine evaluates stored rules against transactions.
type Engine struct {
	store *store.Store
	log   *slog.Logger
}

// New creates a rule engine over the given store.
func New(st *store.Store) *Engine {
	return &Engine{store: st, log: slog.Default()}
}

// decodedRule pairs a stored rule with its deserialized condition and
// action lists.
type decodedRule struct {
	rule       models.Rule
	conditions []models.RuleCondition
	actions    []models.RuleAction
}

// decode deserializes and validates a stored rule.
func decode(rule models.Rule) (decodedRule, error) {
	conditions, actions, err := rule.Decode()
	if err != nil {
		return decodedRule{}, err
	}
	if err := validateRule(conditions, actions); err != nil {
		return decodedRule{}, err
	}
	return decodedRule{rule: rule, conditions: conditions, actions: actions}, nil
}

// activeDecodedRules fetches active rules in evaluation order, skipping
// and logging malformed ones.
func (e *Engine) activeDecodedRules() ([]decodedRule, error) {
	rules, err := e.store.ActiveRules()
	if err != nil {
		return nil, err
	}

	decoded := make([]decodedRule, 0, len(rules))
	for _, rule := range rules {
		d, err := decode(rule)
		if err != nil {
			e.log.Error("skipping malformed rule", "rule_id", rule.ID, "rule_name", rule.Name, "error", err)
			continue
		}
		decoded = append(decoded, d)
	}
	return decoded, nil
}

// Evaluate folds every matching active rule into a field patch for the
// given transaction. It is a pure computation over the stored rule set:
// repeated calls with the same inputs produce identical patches. Returns
// nil when the folded patch sets no fields.
func (e *Engine) Evaluate(t *models.Transaction) (*models.FieldPatch, error) {
	decoded, err := e.activeDecodedRules()
	if err != nil {
		return nil, err
	}

	patch := &models.FieldPatch{}
	for _, d := range decoded {
		if !allConditionsMatch(d.conditions, t) {
			continue
		}
		e.log.Debug("rule matched", "rule_name", d.rule.Name, "transaction_id", t.ID)
		e.foldActions(patch, d)
	}

	if patch.IsEmpty() {
		return nil, nil
	}
	return patch, nil
}

// foldActions writes a matched rule's actions into the accumulating
// patch. An unparseable budget id is logged and skipped; the rule's
// remaining actions still apply.
func (e *Engine) foldActions(patch *models.FieldPatch, d decodedRule) {
	for _, action := range d.actions {
		value := action.Value
		switch action.ActionType {
		case models.ActionSetCategory:
			patch.Category = &value
		case models.ActionSetBudget:
			budgetID, err := uuid.Parse(value)
			if err != nil {
				e.log.Error("invalid budget id in rule action", "rule_id", d.rule.ID, "value", value, "error", err)
				continue
			}
			patch.BudgetID = &budgetID
		case models.ActionSetDescription:
			patch.Description = &value
		case models.ActionSetDestinationName:
			patch.DestinationName = &value
		}
	}
}

// TestConditions evaluates an arbitrary condition set against all stored
// transactions, most recent first. It returns the total match count and
// a sample of up to 100 matching transactions, for previewing a rule
// before saving it.
func (e *Engine) TestConditions(conditions []models.RuleCondition) (int, []models.Transaction, error) {
	if err := validateRule(conditions, nil); err != nil {
		return 0, nil, err
	}

	transactions, err := e.store.AllTransactionsByDateDesc()
	if err != nil {
		return 0, nil, err
	}

	total := 0
	sample := make([]models.Transaction, 0, testSampleLimit)
	for _, t := range transactions {
		if !allConditionsMatch(conditions, &t) {
			continue
		}
		total++
		if len(sample) < testSampleLimit {
			sample = append(sample, t)
		}
	}
	return total, sample, nil
}

// ApplyRule applies one rule to every stored transaction and returns the
// number of transactions changed. An inactive rule affects nothing.
// Each matched transaction is persisted as its own atomic write of
// non-balance fields; a failed write is logged and the batch continues.
func (e *Engine) ApplyRule(ruleID uuid.UUID) (int, error) {
	rule, err := e.store.GetRule(ruleID)
	if err != nil {
		return 0, err
	}

	if !rule.IsActive {
		e.log.Info("rule is not active, no transactions will be affected", "rule_name", rule.Name)
		return 0, nil
	}

	d, err := decode(*rule)
	if err != nil {
		return 0, fmt.Errorf("rule %s has a malformed payload: %w", rule.ID, err)
	}

	transactions, err := e.store.AllTransactionsByDateDesc()
	if err != nil {
		return 0, err
	}

	affected := 0
	for _, t := range transactions {
		if !allConditionsMatch(d.conditions, &t) {
			continue
		}

		patch := &models.FieldPatch{}
		e.foldActions(patch, d)
		if patch.IsEmpty() {
			continue
		}

		if err := e.persistPatch(t.ID, patch); err != nil {
			e.log.Error("failed to apply rule to transaction", "rule_name", rule.Name, "transaction_id", t.ID, "error", err)
			continue
		}
		affected++
	}
	return affected, nil
}

// ApplyAllActive re-runs the full evaluation fold over every stored
// transaction and persists the resulting patches. Returns the number of
// transactions changed. Partial application on mid-batch failure is
// accepted: each write is atomic on its own and re-running converges.
func (e *Engine) ApplyAllActive() (int, error) {
	decoded, err := e.activeDecodedRules()
	if err != nil {
		return 0, err
	}
	if len(decoded) == 0 {
		return 0, nil
	}

	transactions, err := e.store.AllTransactionsByDateDesc()
	if err != nil {
		return 0, err
	}

	affected := 0
	for _, t := range transactions {
		patch := &models.FieldPatch{}
		for _, d := range decoded {
			if !allConditionsMatch(d.conditions, &t) {
				continue
			}
			e.foldActions(patch, d)
		}
		if patch.IsEmpty() {
			continue
		}

		if err := e.persistPatch(t.ID, patch); err != nil {
			e.log.Error("failed to apply rules to transaction", "transaction_id", t.ID, "error", err)
			continue
		}
		affected++
	}
	return affected, nil
}

// persistPatch writes a folded patch to one transaction row, resolving
// the category name to its stable id first. Only non-balance fields are
// touched, so no balance bookkeeping runs.
func (e *Engine) persistPatch(transactionID uuid.UUID, patch *models.FieldPatch) error {
	var categoryID *uuid.UUID
	if patch.Category != nil {
		category, err := e.store.FindOrCreateCategory(*patch.Category)
		if err != nil {
			return err
		}
		categoryID = &category.ID
	}
	return e.store.ApplyFieldPatch(transactionID, patch, categoryID)
}
