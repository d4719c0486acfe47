package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/store"
	"github.com/shunichi-ikebuchi/budget-ledger/pkg/db"
)

const testSeed = `
accounts:
  - name: Checking
    type: On Budget
    sub_type: Checking
    balance: 1200.50
    is_default: true
  - name: Brokerage
    type: Off Budget
    currency: EUR

categories:
  - Groceries
  - Rent

rules:
  - name: Coffee shops
    priority: 10
    conditions:
      - condition_type: description_contains
        value: coffee
    actions:
      - action_type: set_category
        value: Dining
  - name: Disabled rule
    is_active: false
    actions:
      - action_type: set_category
        value: Misc
`

func newTestLoader(t *testing.T) (*Loader, *store.Store) {
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

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	file, err := LoadFile(writeSeedFile(t, testSeed))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if len(file.Accounts) != 2 {
		t.Errorf("Expected 2 accounts, got %d", len(file.Accounts))
	}
	if len(file.Categories) != 2 {
		t.Errorf("Expected 2 categories, got %d", len(file.Categories))
	}
	if len(file.Rules) != 2 {
		t.Errorf("Expected 2 rules, got %d", len(file.Rules))
	}
	if file.Rules[0].Conditions[0].ConditionType != models.ConditionDescriptionContains {
		t.Errorf("Unexpected condition type %q", file.Rules[0].Conditions[0].ConditionType)
	}
}

func TestApplyCreatesEverything(t *testing.T) {
	loader, st := newTestLoader(t)

	file, err := LoadFile(writeSeedFile(t, testSeed))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	result, err := loader.Apply(file)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if result.Accounts != 2 || result.Categories != 2 || result.Rules != 2 {
		t.Errorf("Unexpected counts: %+v", result)
	}

	checking, err := st.GetAccountByName("Checking")
	if err != nil {
		t.Fatalf("Expected Checking account: %v", err)
	}
	if checking.Balance != 1200.50 {
		t.Errorf("Expected seeded balance, got %f", checking.Balance)
	}
	if !checking.IsDefault {
		t.Error("Expected Checking to be the default account")
	}
	if checking.Currency != "USD" {
		t.Errorf("Expected USD fallback currency, got %q", checking.Currency)
	}

	brokerage, err := st.GetAccountByName("Brokerage")
	if err != nil {
		t.Fatalf("Expected Brokerage account: %v", err)
	}
	if brokerage.Currency != "EUR" {
		t.Errorf("Expected seeded currency EUR, got %q", brokerage.Currency)
	}

	rules, err := st.ListRules()
	if err != nil {
		t.Fatalf("ListRules failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(rules))
	}

	// Omitted is_active defaults to true; explicit false sticks.
	for _, rule := range rules {
		switch rule.Name {
		case "Coffee shops":
			if !rule.IsActive {
				t.Error("Coffee shops rule should default to active")
			}
			if rule.Priority != 10 {
				t.Errorf("Expected priority 10, got %d", rule.Priority)
			}
		case "Disabled rule":
			if rule.IsActive {
				t.Error("Disabled rule should stay inactive")
			}
		}
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	loader, st := newTestLoader(t)

	file, err := LoadFile(writeSeedFile(t, testSeed))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if _, err := loader.Apply(file); err != nil {
		t.Fatalf("First apply failed: %v", err)
	}

	result, err := loader.Apply(file)
	if err != nil {
		t.Fatalf("Second apply failed: %v", err)
	}
	if result.Accounts != 0 || result.Categories != 0 || result.Rules != 0 {
		t.Errorf("Second apply must create nothing, got %+v", result)
	}

	accounts, err := st.ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if len(accounts) != 2 {
		t.Errorf("Expected 2 accounts after re-run, got %d", len(accounts))
	}
}

func TestApplyRejectsUnknownAccountType(t *testing.T) {
	loader, _ := newTestLoader(t)

	file := &File{
		Accounts: []Account{{Name: "Weird", Type: "Imaginary"}},
	}
	if _, err := loader.Apply(file); err == nil {
		t.Fatal("Expected error for unknown account type")
	}
}
