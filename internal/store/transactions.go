package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
)

const transactionColumns = `id, source_account_id, destination_account_id, destination_name, description, amount, category, category_id, budget_id, transaction_date, created_at, updated_at`

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	var destName sql.NullString
	var categoryID, budgetID uuid.NullUUID
	err := row.Scan(&t.ID, &t.SourceAccountID, &t.DestinationAccountID, &destName,
		&t.Description, &t.Amount, &t.Category, &categoryID, &budgetID,
		&t.TransactionDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if destName.Valid {
		t.DestinationName = &destName.String
	}
	if categoryID.Valid {
		id := categoryID.UUID
		t.CategoryID = &id
	}
	if budgetID.Valid {
		id := budgetID.UUID
		t.BudgetID = &id
	}
	return &t, nil
}

// InsertTransactionTx inserts a transaction row inside the caller's
// transaction scope.
func (s *Store) InsertTransactionTx(tx *sql.Tx, t *models.Transaction) error {
	_, err := tx.Exec(`
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SourceAccountID, t.DestinationAccountID, t.DestinationName,
		t.Description, t.Amount, t.Category, t.CategoryID, t.BudgetID,
		t.TransactionDate, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// UpdateTransactionTx rewrites all mutable columns of a transaction row
// inside the caller's transaction scope. The source account column is
// immutable and deliberately excluded. Returns the rows affected.
func (s *Store) UpdateTransactionTx(tx *sql.Tx, t *models.Transaction) (int64, error) {
	result, err := tx.Exec(`
		UPDATE transactions
		SET destination_account_id = ?, destination_name = ?, description = ?,
		    amount = ?, category = ?, category_id = ?, budget_id = ?,
		    transaction_date = ?, updated_at = ?
		WHERE id = ?`,
		t.DestinationAccountID, t.DestinationName, t.Description,
		t.Amount, t.Category, t.CategoryID, t.BudgetID,
		t.TransactionDate, t.UpdatedAt, t.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update transaction: %w", err)
	}
	return result.RowsAffected()
}

// DeleteTransactionTx deletes a transaction row inside the caller's
// transaction scope. Returns the rows affected.
func (s *Store) DeleteTransactionTx(tx *sql.Tx, id uuid.UUID) (int64, error) {
	result, err := tx.Exec(`DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transaction: %w", err)
	}
	return result.RowsAffected()
}

// GetTransaction retrieves a transaction by ID.
func (s *Store) GetTransaction(id uuid.UUID) (*models.Transaction, error) {
	return getTransaction(s.conn, id)
}

// TransactionTx retrieves a transaction by ID inside a transaction scope.
func (s *Store) TransactionTx(tx *sql.Tx, id uuid.UUID) (*models.Transaction, error) {
	return getTransaction(tx, id)
}

func getTransaction(q queryer, id uuid.UUID) (*models.Transaction, error) {
	t, err := scanTransaction(q.QueryRow(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// TransactionFilter narrows ListTransactions results.
type TransactionFilter struct {
	SourceAccountID *uuid.UUID
	Category        *string // matches the resolved category name, falling back to the legacy field
	StartDate       *time.Time
	EndDate         *time.Time
	Limit           *int
	Offset          *int
}

// ListTransactions returns transactions most-recent-first, optionally
// filtered and paginated.
func (s *Store) ListTransactions(filter TransactionFilter) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	var args []interface{}

	if filter.SourceAccountID != nil {
		query += ` AND source_account_id = ?`
		args = append(args, *filter.SourceAccountID)
	}
	if filter.Category != nil {
		query += ` AND COALESCE((SELECT name FROM categories WHERE id = transactions.category_id), transactions.category) = ?`
		args = append(args, *filter.Category)
	}
	if filter.StartDate != nil {
		query += ` AND transaction_date >= ?`
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += ` AND transaction_date <= ?`
		args = append(args, *filter.EndDate)
	}

	query += ` ORDER BY transaction_date DESC`

	if filter.Limit != nil {
		query += ` LIMIT ?`
		args = append(args, *filter.Limit)
	}
	if filter.Offset != nil {
		query += ` OFFSET ?`
		args = append(args, *filter.Offset)
	}

	return s.queryTransactions(query, args...)
}

// ListAccountTransactions returns transactions where the account is
// either leg, most-recent-first.
func (s *Store) ListAccountTransactions(accountID uuid.UUID, limit, offset *int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + ` FROM transactions
		WHERE source_account_id = ? OR destination_account_id = ?
		ORDER BY transaction_date DESC`
	args := []interface{}{accountID, accountID}

	if limit != nil {
		query += ` LIMIT ?`
		args = append(args, *limit)
	}
	if offset != nil {
		query += ` OFFSET ?`
		args = append(args, *offset)
	}

	return s.queryTransactions(query, args...)
}

// AllTransactionsByDateDesc returns every transaction, most recent first.
// Used by the rule engine's full-table scans.
func (s *Store) AllTransactionsByDateDesc() ([]models.Transaction, error) {
	return s.queryTransactions(`SELECT ` + transactionColumns + ` FROM transactions ORDER BY transaction_date DESC`)
}

func (s *Store) queryTransactions(query string, args ...interface{}) ([]models.Transaction, error) {
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

// ApplyFieldPatch persists a rule-produced field patch as one atomic
// write. It touches only non-balance columns, so no balance bookkeeping
// is ever triggered. categoryID, when set, is the resolved id matching
// the patch's category name.
func (s *Store) ApplyFieldPatch(id uuid.UUID, patch *models.FieldPatch, categoryID *uuid.UUID) error {
	if patch.IsEmpty() {
		return nil
	}

	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}

	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
		if categoryID != nil {
			sets = append(sets, "category_id = ?")
			args = append(args, *categoryID)
		}
	}
	if patch.BudgetID != nil {
		sets = append(sets, "budget_id = ?")
		args = append(args, *patch.BudgetID)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.DestinationName != nil {
		sets = append(sets, "destination_name = ?")
		args = append(args, *patch.DestinationName)
	}
	args = append(args, id)

	_, err := s.conn.Exec(`UPDATE transactions SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to apply field patch: %w", err)
	}
	return nil
}
