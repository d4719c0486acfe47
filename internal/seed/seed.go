// Package seed bootstraps a fresh database from a YAML file describing
// accounts, categories and rules. Applying a seed is idempotent:
// records that already exist by name are left untouched, so re-running
// against a populated database is safe.
package seed

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/store"
)

// Account is one seeded account definition.
type Account struct {
	Name      string  `yaml:"name"`
	Type      string  `yaml:"type"`
	SubType   *string `yaml:"sub_type"`
	Balance   float64 `yaml:"balance"`
	Currency  string  `yaml:"currency"`
	IsDefault bool    `yaml:"is_default"`
}

// Rule is one seeded rule definition.
type Rule struct {
	Name        string                 `yaml:"name"`
	Description *string                `yaml:"description"`
	IsActive    *bool                  `yaml:"is_active"`
	Priority    *int                   `yaml:"priority"`
	Conditions  []models.RuleCondition `yaml:"conditions"`
	Actions     []models.RuleAction    `yaml:"actions"`
}

// File is the complete seed file layout.
type File struct {
	Accounts   []Account `yaml:"accounts"`
	Categories []string  `yaml:"categories"`
	Rules      []Rule    `yaml:"rules"`
}

// Loader applies seed files to a store.
type Loader struct {
	store *store.Store
	log   *slog.Logger
}

// New creates a seed loader.
func New(st *store.Store) *Loader {
	return &Loader{store: st, log: slog.Default()}
}

// Result counts the records a seed run created.
type Result struct {
	Accounts   int
	Categories int
	Rules      int
}

// LoadFile parses a seed file from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &file, nil
}

// Apply creates the seed file's records, skipping any that already
// exist by name.
func (l *Loader) Apply(file *File) (*Result, error) {
	result := &Result{}

	for _, account := range file.Accounts {
		created, err := l.applyAccount(account)
		if err != nil {
			return result, err
		}
		if created {
			result.Accounts++
		}
	}

	for _, name := range file.Categories {
		created, err := l.applyCategory(name)
		if err != nil {
			return result, err
		}
		if created {
			result.Categories++
		}
	}

	existingRules, err := l.existingRuleNames()
	if err != nil {
		return result, err
	}
	for _, rule := range file.Rules {
		created, err := l.applyRule(rule, existingRules)
		if err != nil {
			return result, err
		}
		if created {
			result.Rules++
		}
	}

	l.log.Info("seed applied",
		"accounts", result.Accounts,
		"categories", result.Categories,
		"rules", result.Rules)
	return result, nil
}

func (l *Loader) applyAccount(account Account) (bool, error) {
	if account.Name == "" {
		return false, fmt.Errorf("seed account with empty name")
	}
	accountType := models.AccountType(account.Type)
	if !accountType.Valid() {
		return false, fmt.Errorf("seed account %q has unknown type %q", account.Name, account.Type)
	}

	if _, err := l.store.GetAccountByName(account.Name); err == nil {
		l.log.Debug("seed account already exists", "name", account.Name)
		return false, nil
	}

	currency := account.Currency
	if currency == "" {
		currency = "USD"
	}

	_, err := l.store.CreateAccount(&models.CreateAccountRequest{
		Name:           account.Name,
		AccountType:    accountType,
		AccountSubType: account.SubType,
		Balance:        account.Balance,
		Currency:       currency,
		IsDefault:      account.IsDefault,
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed account %q: %w", account.Name, err)
	}
	return true, nil
}

func (l *Loader) applyCategory(name string) (bool, error) {
	if name == "" {
		return false, fmt.Errorf("seed category with empty name")
	}

	if _, err := l.store.GetCategoryByName(name); err == nil {
		l.log.Debug("seed category already exists", "name", name)
		return false, nil
	}

	if _, err := l.store.CreateCategory(&models.CreateCategoryRequest{Name: name}); err != nil {
		return false, fmt.Errorf("failed to seed category %q: %w", name, err)
	}
	return true, nil
}

func (l *Loader) existingRuleNames() (map[string]bool, error) {
	rules, err := l.store.ListRules()
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(rules))
	for _, rule := range rules {
		names[rule.Name] = true
	}
	return names, nil
}

func (l *Loader) applyRule(rule Rule, existing map[string]bool) (bool, error) {
	if rule.Name == "" {
		return false, fmt.Errorf("seed rule with empty name")
	}
	if existing[rule.Name] {
		l.log.Debug("seed rule already exists", "name", rule.Name)
		return false, nil
	}

	isActive := true
	if rule.IsActive != nil {
		isActive = *rule.IsActive
	}

	_, err := l.store.CreateRule(&models.CreateRuleRequest{
		Name:        rule.Name,
		Description: rule.Description,
		IsActive:    isActive,
		Priority:    rule.Priority,
		Conditions:  rule.Conditions,
		Actions:     rule.Actions,
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed rule %q: %w", rule.Name, err)
	}
	return true, nil
}
