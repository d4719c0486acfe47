package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
)

const budgetColumns = `id, name, description, amount, start_date, end_date, created_at, updated_at`

func scanBudget(row rowScanner) (*models.Budget, error) {
	var b models.Budget
	var description sql.NullString
	var endDate sql.NullTime
	err := row.Scan(&b.ID, &b.Name, &description, &b.Amount, &b.StartDate,
		&endDate, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		b.Description = &description.String
	}
	if endDate.Valid {
		t := endDate.Time
		b.EndDate = &t
	}
	return &b, nil
}

// CreateBudget creates a new budget.
func (s *Store) CreateBudget(req *models.CreateBudgetRequest) (*models.Budget, error) {
	now := time.Now().UTC()
	budget := &models.Budget{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.conn.Exec(`
		INSERT INTO budgets (`+budgetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		budget.ID, budget.Name, budget.Description, budget.Amount,
		budget.StartDate, budget.EndDate, budget.CreatedAt, budget.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}
	return budget, nil
}

// GetBudget retrieves a budget by ID.
func (s *Store) GetBudget(id uuid.UUID) (*models.Budget, error) {
	b, err := scanBudget(s.conn.QueryRow(`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return b, nil
}

// ListBudgets returns all budgets ordered by start date, newest first.
func (s *Store) ListBudgets() ([]models.Budget, error) {
	rows, err := s.conn.Query(`SELECT ` + budgetColumns + ` FROM budgets ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

// UpdateBudget updates a budget. Returns ErrNotFound if absent.
func (s *Store) UpdateBudget(id uuid.UUID, req *models.UpdateBudgetRequest) (*models.Budget, error) {
	if _, err := s.GetBudget(id); err != nil {
		return nil, err
	}

	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}

	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *req.Description)
	}
	if req.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *req.Amount)
	}
	if req.StartDate != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, *req.StartDate)
	}
	if req.EndDate != nil {
		sets = append(sets, "end_date = ?")
		args = append(args, *req.EndDate)
	}
	args = append(args, id)

	_, err := s.conn.Exec(`UPDATE budgets SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}
	return s.GetBudget(id)
}

// DeleteBudget deletes a budget, detaching it from any transactions first.
func (s *Store) DeleteBudget(id uuid.UUID) (bool, error) {
	if _, err := s.GetBudget(id); err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}

	var affected int64
	err := s.conn.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`UPDATE transactions SET budget_id = NULL WHERE budget_id = ?`, id); err != nil {
			return fmt.Errorf("failed to detach budget: %w", err)
		}

		result, err := tx.Exec(`DELETE FROM budgets WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete budget: %w", err)
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
