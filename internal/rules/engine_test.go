package rules

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/store"
	"github.com/shunichi-ikebuchi/budget-ledger/pkg/db"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()

	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	if err := db.InitializeSchema(conn); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}

	st := store.New(conn)
	return New(st), st
}

func seedAccounts(t *testing.T, st *store.Store) (src, dst *models.Account) {
	t.Helper()

	src, err := st.CreateAccount(&models.CreateAccountRequest{
		Name:        "Checking",
		AccountType: models.AccountOnBudget,
		Balance:     1000,
	})
	if err != nil {
		t.Fatalf("Failed to create source account: %v", err)
	}
	dst, err = st.CreateAccount(&models.CreateAccountRequest{
		Name:        "Shop",
		AccountType: models.AccountExternal,
	})
	if err != nil {
		t.Fatalf("Failed to create destination account: %v", err)
	}
	return src, dst
}

func insertTransaction(t *testing.T, st *store.Store, src, dst uuid.UUID, amount float64, description string) *models.Transaction {
	t.Helper()

	now := time.Now().UTC()
	transaction := &models.Transaction{
		ID:                   uuid.New(),
		SourceAccountID:      src,
		DestinationAccountID: dst,
		Description:          description,
		Amount:               amount,
		TransactionDate:      now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	err := st.Conn().Transaction(func(tx *sql.Tx) error {
		return st.InsertTransactionTx(tx, transaction)
	})
	if err != nil {
		t.Fatalf("Failed to insert transaction: %v", err)
	}
	return transaction
}

func createRule(t *testing.T, st *store.Store, name string, priority int, active bool, conditions []models.RuleCondition, actions []models.RuleAction) *models.Rule {
	t.Helper()

	rule, err := st.CreateRule(&models.CreateRuleRequest{
		Name:       name,
		IsActive:   active,
		Priority:   &priority,
		Conditions: conditions,
		Actions:    actions,
	})
	if err != nil {
		t.Fatalf("Failed to create rule %q: %v", name, err)
	}
	return rule
}

func TestEvaluateProducesPatch(t *testing.T) {
	engine, st := newTestEngine(t)
	src, dst := seedAccounts(t, st)

	createRule(t, st, "Coffee", 10, true,
		[]models.RuleCondition{{ConditionType: models.ConditionDescriptionContains, Value: "coffee"}},
		[]models.RuleAction{{ActionType: models.ActionSetCategory, Value: "Dining"}})

	transaction := insertTransaction(t, st, src.ID, dst.ID, 4, "Morning coffee")

	patch, err := engine.Evaluate(transaction)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if patch == nil {
		t.Fatal("Expected a patch")
	}
	if patch.Category == nil || *patch.Category != "Dining" {
		t.Errorf("Expected category Dining, got %v", patch.Category)
	}
}

func TestEvaluateNoMatchReturnsNil(t *testing.T) {
	engine, st := newTestEngine(t)
	src, dst := seedAccounts(t, st)

	createRule(t, st, "Coffee", 10, true,
		[]models.RuleCondition{{ConditionType: models.ConditionDescriptionContains, Value: "coffee"}},
		[]models.RuleAction{{ActionType: models.ActionSetCategory, Value: "Dining"}})

	transaction := insertTransaction(t, st, src.ID, dst.ID, 4, "Bus ticket")

	patch, err := engine.Evaluate(transaction)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if patch != nil {
		t.Errorf("Expected nil patch, got %+v", patch)
	}
}

func TestEvaluateLaterRuleOverwrites(t *testing.T) {
	engine, st := newTestEngine(t)
	src, dst := seedAccounts(t, st)

	createRule(t, st, "Broad", 10, true,
		nil,
		[]models.RuleAction{{ActionType: models.ActionSetCategory, Value: "Misc"}})
	createRule(t, st, "Specific", 20, true,
		[]models.RuleCondition{{ConditionType: models.ConditionDescriptionContains, Value: "coffee"}},
		[]models.RuleAction{{ActionType: models.ActionSetCategory, Value: "Dining"}})

	transaction := insertTransaction(t, st, src.ID, dst.ID, 4, "Morning coffee")

	patch, err := engine.Evaluate(transaction)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if patch == nil || patch.Category == nil || *patch.Category != "Dining" {
		t.Errorf("Higher-priority-number rule should win the fold, got %+v", patch)
	}
}

func TestEvaluateInactiveRuleIgnored(t *testing.T) {
	engine, st := newTestEngine(t)
	src, dst := seedAccounts(t, st)

	createRule(t, st, "Dormant", 10, false,
		nil,
		[]models.RuleAction{{ActionType: models.ActionSetCategory, Value: "Misc"}})

	transaction := insertTransaction(t, st, src.ID, dst.ID, 4, "Anything")

	patch, err := engine.Evaluate(transaction)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if patch != nil {
		t.Errorf("Inactive rule must not produce a patch, got %+v", patch)
	}
}

func TestEvaluateSkipsMalformedRule(t *testing.T) {
	engine, st := newTestEngine(t)
	src, dst := seedAccounts(t, st)

	// A rule whose stored payload does not parse must not block others.
	rule := createRule(t, st, "Broken-to-be", 1, true,
		nil,
		[]models.RuleAction{{ActionType: models.ActionSetDescription, Value: "x"}})
	if _, err := st.Conn().Exec(`UPDATE rules SET conditions_json = 'not json' WHERE id = ?`, rule.ID); err != nil {
		t.Fatalf("Failed to corrupt rule: %v", err)
	}

	createRule(t, st, "Working", 10, true,
		nil,
		[]models.RuleAction{{ActionType: models.ActionSetCategory, Value: "Misc"}})

	transaction := insertTransaction(t, st, src.ID, dst.ID, 4, "Anything")

	patch, err := engine.Evaluate(transaction)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if patch == nil || patch.Category == nil || *patch.Category != "Misc" {
		t.Errorf("Working rule should still apply, got %+v", patch)
	}
	if patch != nil && patch.Description != nil {
		t.Error("Malformed rule's action must not apply")
	}
}

func TestEvaluateInvalidBudgetActionSkipped(t *testing.T) {
	engine, st := newTestEngine(t)
	src, dst := seedAccounts(t, st)

	createRule(t, st, "Bad budget", 10, true,
		nil,
		[]models.RuleAction{
			{ActionType: models.ActionSetBudget, Value: "not-a-uuid"},
			{ActionType: models.ActionSetCategory, Value: "Misc"},
		})

	transaction := insertTransaction(t, st, src.ID, dst.ID, 4, "Anything")

	patch, err := engine.Evaluate(transaction)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if patch == nil {
		t.Fatal("Expected a patch")
	}
	if patch.BudgetID != nil {
		t.Errorf("Unparseable budget id must be skipped, got %+v", patch)
	}
	if patch.Category == nil || *patch.Category != "Misc" {
		t.Error("Remaining actions of the rule must still apply")
	}
}

func TestTestConditions(t *testing.T) {
	engine, st := newTestEngine(t)
	src, dst := seedAccounts(t, st)

	insertTransaction(t, st, src.ID, dst.ID, 5, "Coffee one")
	insertTransaction(t, st, src.ID, dst.ID, 6, "Coffee two")
	insertTransaction(t, st, src.ID, dst.ID, 7, "Groceries")

	total, sample, err := engine.TestConditions([]models.RuleCondition{
		{ConditionType: models.ConditionDescriptionContains, Value: "coffee"},
	})
	if err != nil {
		t.Fatalf("TestConditions failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected 2 matches, got %d", total)
	}
	if len(sample) != 2 {
		t.Errorf("Expected sample of 2, got %d", len(sample))
	}
}

func TestTestConditionsRejectsUnknownType(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, _, err := engine.TestConditions([]models.RuleCondition{
		{ConditionType: "made_up", Value: "x"},
	})
	if err == nil {
		t.Fatal("Expected error for unknown condition type")
	}
}

func TestApplyRule(t *testing.T) {
	engine, st := newTestEngine(t)
	src, dst := seedAccounts(t, st)

	coffee1 := insertTransaction(t, st, src.ID, dst.ID, 5, "Coffee one")
	insertTransaction(t, st, src.ID, dst.ID, 6, "Coffee two")
	other := insertTransaction(t, st, src.ID, dst.ID, 7, "Groceries")

	rule := createRule(t, st, "Coffee", 10, true,
		[]models.RuleCondition{{ConditionType: models.ConditionDescriptionContains, Value: "coffee"}},
		[]models.RuleAction{{ActionType: models.ActionSetCategory, Value: "Dining"}})

	affected, err := engine.ApplyRule(rule.ID)
	if err != nil {
		t.Fatalf("ApplyRule failed: %v", err)
	}
	if affected != 2 {
		t.Errorf("Expected 2 affected transactions, got %d", affected)
	}

	got, err := st.GetTransaction(coffee1.ID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if got.Category != "Dining" {
		t.Errorf("Expected category Dining, got %q", got.Category)
	}
	if got.CategoryID == nil {
		t.Error("Expected resolved category id")
	}

	untouched, err := st.GetTransaction(other.ID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if untouched.Category == "Dining" {
		t.Error("Non-matching transaction must not be rewritten")
	}
}

func TestApplyRuleInactive(t *testing.T) {
	engine, st := newTestEngine(t)
	src, dst := seedAccounts(t, st)
	insertTransaction(t, st, src.ID, dst.ID, 5, "Coffee")

	rule := createRule(t, st, "Dormant", 10, false,
		nil,
		[]models.RuleAction{{ActionType: models.ActionSetCategory, Value: "Misc"}})

	affected, err := engine.ApplyRule(rule.ID)
	if err != nil {
		t.Fatalf("ApplyRule failed: %v", err)
	}
	if affected != 0 {
		t.Errorf("Inactive rule must affect nothing, got %d", affected)
	}
}

func TestApplyRuleNotFound(t *testing.T) {
	engine, _ := newTestEngine(t)

	if _, err := engine.ApplyRule(uuid.New()); err == nil {
		t.Fatal("Expected error for unknown rule")
	}
}

func TestApplyAllActive(t *testing.T) {
	engine, st := newTestEngine(t)
	src, dst := seedAccounts(t, st)

	coffee := insertTransaction(t, st, src.ID, dst.ID, 5, "Coffee")
	big := insertTransaction(t, st, src.ID, dst.ID, 500, "Rent payment")

	createRule(t, st, "Coffee", 10, true,
		[]models.RuleCondition{{ConditionType: models.ConditionDescriptionContains, Value: "coffee"}},
		[]models.RuleAction{{ActionType: models.ActionSetCategory, Value: "Dining"}})
	createRule(t, st, "Large amounts", 20, true,
		[]models.RuleCondition{{ConditionType: models.ConditionAmountGreaterThan, Value: "100"}},
		[]models.RuleAction{{ActionType: models.ActionSetCategory, Value: "Housing"}})

	affected, err := engine.ApplyAllActive()
	if err != nil {
		t.Fatalf("ApplyAllActive failed: %v", err)
	}
	if affected != 2 {
		t.Errorf("Expected 2 affected transactions, got %d", affected)
	}

	gotCoffee, _ := st.GetTransaction(coffee.ID)
	if gotCoffee.Category != "Dining" {
		t.Errorf("Expected Dining, got %q", gotCoffee.Category)
	}
	gotBig, _ := st.GetTransaction(big.ID)
	if gotBig.Category != "Housing" {
		t.Errorf("Expected Housing, got %q", gotBig.Category)
	}
}

func TestApplyAllActiveNoRules(t *testing.T) {
	engine, st := newTestEngine(t)
	src, dst := seedAccounts(t, st)
	insertTransaction(t, st, src.ID, dst.ID, 5, "Coffee")

	affected, err := engine.ApplyAllActive()
	if err != nil {
		t.Fatalf("ApplyAllActive failed: %v", err)
	}
	if affected != 0 {
		t.Errorf("Expected nothing affected without rules, got %d", affected)
	}
}
