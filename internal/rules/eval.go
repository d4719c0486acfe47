package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
)

// amountEpsilon absorbs float rounding in amount equality conditions.
// Greater-than and less-than compare exactly.
const amountEpsilon = 0.001

// Validate checks a condition and action set against the closed
// vocabulary. Useful for rejecting a malformed rule at the API boundary
// before it is stored.
func Validate(conditions []models.RuleCondition, actions []models.RuleAction) error {
	return validateRule(conditions, actions)
}

// validateRule checks every condition and action tag against the closed
// vocabulary, so a rule with an unknown tag is rejected as a whole
// instead of silently matching or no-opping.
func validateRule(conditions []models.RuleCondition, actions []models.RuleAction) error {
	for _, c := range conditions {
		switch c.ConditionType {
		case models.ConditionDescriptionContains, models.ConditionDescriptionStartsWith,
			models.ConditionDescriptionEquals, models.ConditionSourceAccountEquals,
			models.ConditionDestAccountEquals, models.ConditionDestNameContains,
			models.ConditionDestNameEquals, models.ConditionAmountGreaterThan,
			models.ConditionAmountLessThan, models.ConditionAmountEquals:
		default:
			return fmt.Errorf("unknown condition type %q", c.ConditionType)
		}
	}
	for _, a := range actions {
		switch a.ActionType {
		case models.ActionSetCategory, models.ActionSetBudget,
			models.ActionSetDescription, models.ActionSetDestinationName:
		default:
			return fmt.Errorf("unknown action type %q", a.ActionType)
		}
	}
	return nil
}

// conditionMatches evaluates one condition against a transaction. Text
// predicates compare case-insensitively; amount predicates parse the
// comparison value and never match when it is not a number.
func conditionMatches(c models.RuleCondition, t *models.Transaction) bool {
	switch c.ConditionType {
	case models.ConditionDescriptionContains:
		return strings.Contains(strings.ToLower(t.Description), strings.ToLower(c.Value))
	case models.ConditionDescriptionStartsWith:
		return strings.HasPrefix(strings.ToLower(t.Description), strings.ToLower(c.Value))
	case models.ConditionDescriptionEquals:
		return strings.EqualFold(t.Description, c.Value)
	case models.ConditionSourceAccountEquals:
		return t.SourceAccountID.String() == c.Value
	case models.ConditionDestAccountEquals:
		return t.DestinationAccountID.String() == c.Value
	case models.ConditionDestNameContains:
		if t.DestinationName == nil {
			return false
		}
		return strings.Contains(strings.ToLower(*t.DestinationName), strings.ToLower(c.Value))
	case models.ConditionDestNameEquals:
		if t.DestinationName == nil {
			return false
		}
		return strings.EqualFold(*t.DestinationName, c.Value)
	case models.ConditionAmountGreaterThan:
		value, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return false
		}
		return t.Amount > value
	case models.ConditionAmountLessThan:
		value, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return false
		}
		return t.Amount < value
	case models.ConditionAmountEquals:
		value, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return false
		}
		return math.Abs(t.Amount-value) < amountEpsilon
	}
	return false
}

// allConditionsMatch reports whether every condition holds (logical AND).
// An empty condition list matches everything.
func allConditionsMatch(conditions []models.RuleCondition, t *models.Transaction) bool {
	for _, c := range conditions {
		if !conditionMatches(c, t) {
			return false
		}
	}
	return true
}
