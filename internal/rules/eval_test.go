package rules

import (
	"testing"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
)

func str(s string) *string { return &s }

func TestConditionMatches(t *testing.T) {
	srcID := uuid.New()
	dstID := uuid.New()
	transaction := &models.Transaction{
		ID:                   uuid.New(),
		SourceAccountID:      srcID,
		DestinationAccountID: dstID,
		DestinationName:      str("Corner Grocer"),
		Description:          "Weekly Groceries",
		Amount:               42.50,
	}

	tests := []struct {
		name      string
		condition models.RuleCondition
		want      bool
	}{
		{
			name:      "description contains case-insensitive",
			condition: models.RuleCondition{ConditionType: models.ConditionDescriptionContains, Value: "GROCER"},
			want:      true,
		},
		{
			name:      "description contains miss",
			condition: models.RuleCondition{ConditionType: models.ConditionDescriptionContains, Value: "fuel"},
			want:      false,
		},
		{
			name:      "description starts with",
			condition: models.RuleCondition{ConditionType: models.ConditionDescriptionStartsWith, Value: "weekly"},
			want:      true,
		},
		{
			name:      "description starts with miss",
			condition: models.RuleCondition{ConditionType: models.ConditionDescriptionStartsWith, Value: "Groceries"},
			want:      false,
		},
		{
			name:      "description equals ignores case",
			condition: models.RuleCondition{ConditionType: models.ConditionDescriptionEquals, Value: "weekly groceries"},
			want:      true,
		},
		{
			name:      "source account equals",
			condition: models.RuleCondition{ConditionType: models.ConditionSourceAccountEquals, Value: srcID.String()},
			want:      true,
		},
		{
			name:      "destination account equals miss",
			condition: models.RuleCondition{ConditionType: models.ConditionDestAccountEquals, Value: srcID.String()},
			want:      false,
		},
		{
			name:      "destination name contains",
			condition: models.RuleCondition{ConditionType: models.ConditionDestNameContains, Value: "grocer"},
			want:      true,
		},
		{
			name:      "destination name equals",
			condition: models.RuleCondition{ConditionType: models.ConditionDestNameEquals, Value: "corner grocer"},
			want:      true,
		},
		{
			name:      "amount greater than",
			condition: models.RuleCondition{ConditionType: models.ConditionAmountGreaterThan, Value: "40"},
			want:      true,
		},
		{
			name:      "amount greater than is strict",
			condition: models.RuleCondition{ConditionType: models.ConditionAmountGreaterThan, Value: "42.50"},
			want:      false,
		},
		{
			name:      "amount less than",
			condition: models.RuleCondition{ConditionType: models.ConditionAmountLessThan, Value: "50"},
			want:      true,
		},
		{
			name:      "amount equals within epsilon",
			condition: models.RuleCondition{ConditionType: models.ConditionAmountEquals, Value: "42.5001"},
			want:      true,
		},
		{
			name:      "amount equals outside epsilon",
			condition: models.RuleCondition{ConditionType: models.ConditionAmountEquals, Value: "42.51"},
			want:      false,
		},
		{
			name:      "unparseable amount never matches",
			condition: models.RuleCondition{ConditionType: models.ConditionAmountEquals, Value: "lots"},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := conditionMatches(tt.condition, transaction); got != tt.want {
				t.Errorf("conditionMatches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConditionMatchesNilDestinationName(t *testing.T) {
	transaction := &models.Transaction{Description: "x", Amount: 1}

	for _, conditionType := range []models.ConditionType{
		models.ConditionDestNameContains,
		models.ConditionDestNameEquals,
	} {
		condition := models.RuleCondition{ConditionType: conditionType, Value: "anything"}
		if conditionMatches(condition, transaction) {
			t.Errorf("%s should not match with nil destination name", conditionType)
		}
	}
}

func TestAllConditionsMatch(t *testing.T) {
	transaction := &models.Transaction{Description: "Morning coffee", Amount: 4}

	both := []models.RuleCondition{
		{ConditionType: models.ConditionDescriptionContains, Value: "coffee"},
		{ConditionType: models.ConditionAmountLessThan, Value: "10"},
	}
	if !allConditionsMatch(both, transaction) {
		t.Error("Expected both conditions to match")
	}

	oneFails := []models.RuleCondition{
		{ConditionType: models.ConditionDescriptionContains, Value: "coffee"},
		{ConditionType: models.ConditionAmountGreaterThan, Value: "10"},
	}
	if allConditionsMatch(oneFails, transaction) {
		t.Error("A single failing condition must fail the whole set")
	}

	if !allConditionsMatch(nil, transaction) {
		t.Error("An empty condition list matches everything")
	}
}

func TestValidate(t *testing.T) {
	good := []models.RuleCondition{
		{ConditionType: models.ConditionDescriptionContains, Value: "x"},
	}
	if err := Validate(good, []models.RuleAction{{ActionType: models.ActionSetCategory, Value: "Food"}}); err != nil {
		t.Errorf("Expected valid rule, got %v", err)
	}

	badCondition := []models.RuleCondition{
		{ConditionType: "description_matches_regex", Value: "x"},
	}
	if err := Validate(badCondition, nil); err == nil {
		t.Error("Expected error for unknown condition type")
	}

	badAction := []models.RuleAction{{ActionType: "set_amount", Value: "100"}}
	if err := Validate(nil, badAction); err == nil {
		t.Error("Expected error for unknown action type")
	}
}
