package reports

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/ledger"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/store"
	"github.com/shunichi-ikebuchi/budget-ledger/pkg/db"
)

type fixture struct {
	reader *Reader
	store  *store.Store
	ledger *ledger.Engine
}

func newFixture(t *testing.T) *fixture {
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
	return &fixture{
		reader: New(conn),
		store:  st,
		ledger: ledger.New(conn, st),
	}
}

func (f *fixture) account(t *testing.T, name string, accountType models.AccountType, balance float64) *models.Account {
	t.Helper()

	account, err := f.store.CreateAccount(&models.CreateAccountRequest{
		Name:        name,
		AccountType: accountType,
		Balance:     balance,
	})
	if err != nil {
		t.Fatalf("Failed to create account %q: %v", name, err)
	}
	return account
}

func (f *fixture) spend(t *testing.T, src *models.Account, destination, category string, amount float64, date time.Time) {
	t.Helper()

	_, err := f.ledger.Create(&models.CreateTransactionRequest{
		SourceAccountID: src.ID,
		DestinationName: &destination,
		Description:     destination,
		Amount:          amount,
		Category:        category,
		TransactionDate: &date,
	})
	if err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}
}

func TestSpendingByCategory(t *testing.T) {
	f := newFixture(t)
	checking := f.account(t, "Checking", models.AccountOnBudget, 1000)
	now := time.Now().UTC()

	f.spend(t, checking, "Grocer", "Food", 40, now)
	f.spend(t, checking, "Grocer", "Food", 60, now)
	f.spend(t, checking, "Cinema", "Fun", 25, now)

	rows, err := f.reader.SpendingByCategory(nil, nil)
	if err != nil {
		t.Fatalf("SpendingByCategory failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(rows))
	}

	// Descending by total.
	if rows[0].Category != "Food" || rows[0].Total != 100 {
		t.Errorf("Expected Food=100 first, got %s=%f", rows[0].Category, rows[0].Total)
	}
	if rows[1].Category != "Fun" || rows[1].Total != 25 {
		t.Errorf("Expected Fun=25 second, got %s=%f", rows[1].Category, rows[1].Total)
	}
}

func TestSpendingByCategoryDateRange(t *testing.T) {
	f := newFixture(t)
	checking := f.account(t, "Checking", models.AccountOnBudget, 1000)

	old := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	f.spend(t, checking, "Grocer", "Food", 40, old)
	f.spend(t, checking, "Grocer", "Food", 60, recent)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows, err := f.reader.SpendingByCategory(&start, nil)
	if err != nil {
		t.Fatalf("SpendingByCategory failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Total != 60 {
		t.Errorf("Expected only the recent spend, got %+v", rows)
	}
}

func TestSpendingOverTimeExcludesTransfersAndOffBudget(t *testing.T) {
	f := newFixture(t)
	checking := f.account(t, "Checking", models.AccountOnBudget, 1000)
	brokerage := f.account(t, "Brokerage", models.AccountOffBudget, 5000)
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	f.spend(t, checking, "Grocer", "Food", 50, now)
	f.spend(t, checking, "Savings Move", "Transfer", 200, now)
	f.spend(t, brokerage, "Broker Fee", "Fees", 10, now)

	rows, err := f.reader.SpendingOverTime("month", nil, nil)
	if err != nil {
		t.Fatalf("SpendingOverTime failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 bucket row, got %d: %+v", len(rows), rows)
	}
	if rows[0].Category != "Food" || rows[0].Total != 50 {
		t.Errorf("Expected Food=50, got %s=%f", rows[0].Category, rows[0].Total)
	}
	if rows[0].Period != "2024-03-01" {
		t.Errorf("Expected month bucket 2024-03-01, got %q", rows[0].Period)
	}
}

func TestMonthlyIncoming(t *testing.T) {
	f := newFixture(t)
	checking := f.account(t, "Checking", models.AccountOnBudget, 0)
	savings := f.account(t, "Savings", models.AccountOnBudget, 0)
	employer := f.account(t, "Employer", models.AccountExternal, 0)

	payday := time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC)

	// Salary: external -> on-budget, counts.
	if _, err := f.ledger.Create(&models.CreateTransactionRequest{
		SourceAccountID:      employer.ID,
		DestinationAccountID: &checking.ID,
		Description:          "Salary",
		Amount:               3000,
		Category:             "Income",
		TransactionDate:      &payday,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Internal transfer: on-budget -> on-budget, excluded.
	if _, err := f.ledger.Create(&models.CreateTransactionRequest{
		SourceAccountID:      checking.ID,
		DestinationAccountID: &savings.ID,
		Description:          "Saving",
		Amount:               500,
		Category:             "Transfer",
		TransactionDate:      &payday,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	incoming, err := f.reader.MonthlyIncoming(2024, time.May)
	if err != nil {
		t.Fatalf("MonthlyIncoming failed: %v", err)
	}
	if len(incoming) != 1 {
		t.Fatalf("Expected 1 incoming transaction, got %d", len(incoming))
	}
	if incoming[0].Description != "Salary" {
		t.Errorf("Expected the salary row, got %q", incoming[0].Description)
	}

	// Outside the month window nothing matches.
	none, err := f.reader.MonthlyIncoming(2024, time.June)
	if err != nil {
		t.Fatalf("MonthlyIncoming failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no incoming transactions in June, got %d", len(none))
	}
}
