package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
)

const accountColumns = `id, name, account_type, account_sub_type, balance, currency, is_default, created_at, updated_at`

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	var subType sql.NullString
	err := row.Scan(&a.ID, &a.Name, &a.AccountType, &subType, &a.Balance,
		&a.Currency, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if subType.Valid {
		a.AccountSubType = &subType.String
	}
	return &a, nil
}

// CreateAccount creates a new account. If the account is flagged as
// default, the previous default is cleared in the same atomic scope.
func (s *Store) CreateAccount(req *models.CreateAccountRequest) (*models.Account, error) {
	if !req.AccountType.Valid() {
		return nil, fmt.Errorf("invalid account type %q", req.AccountType)
	}

	now := time.Now().UTC()
	account := &models.Account{
		ID:             uuid.New(),
		Name:           req.Name,
		AccountType:    req.AccountType,
		AccountSubType: req.AccountSubType,
		Balance:        req.Balance,
		Currency:       req.Currency,
		IsDefault:      req.IsDefault,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if account.Currency == "" {
		account.Currency = "USD"
	}

	err := s.conn.Transaction(func(tx *sql.Tx) error {
		if account.IsDefault {
			if _, err := tx.Exec(`UPDATE accounts SET is_default = 0, updated_at = ? WHERE is_default = 1`, now); err != nil {
				return fmt.Errorf("failed to clear default account: %w", err)
			}
		}

		_, err := tx.Exec(`
			INSERT INTO accounts (`+accountColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			account.ID, account.Name, account.AccountType, account.AccountSubType,
			account.Balance, account.Currency, account.IsDefault,
			account.CreatedAt, account.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (s *Store) GetAccount(id uuid.UUID) (*models.Account, error) {
	return getAccount(s.conn, id)
}

func getAccount(q queryer, id uuid.UUID) (*models.Account, error) {
	account, err := scanAccount(q.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// GetAccountByName retrieves an account by exact name.
func (s *Store) GetAccountByName(name string) (*models.Account, error) {
	return accountByName(s.conn, name)
}

// AccountByNameTx retrieves an account by exact name inside a transaction.
func (s *Store) AccountByNameTx(tx *sql.Tx, name string) (*models.Account, error) {
	return accountByName(tx, name)
}

func accountByName(q queryer, name string) (*models.Account, error) {
	account, err := scanAccount(q.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE name = ?`, name))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by name: %w", err)
	}
	return account, nil
}

// AccountTx retrieves an account by ID inside a transaction.
func (s *Store) AccountTx(tx *sql.Tx, id uuid.UUID) (*models.Account, error) {
	return getAccount(tx, id)
}

// ListAccounts returns all accounts ordered by name.
func (s *Store) ListAccounts() ([]models.Account, error) {
	rows, err := s.conn.Query(`SELECT ` + accountColumns + ` FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// UpdateAccount updates the non-balance fields of an account. Returns
// ErrNotFound if the account does not exist.
func (s *Store) UpdateAccount(id uuid.UUID, req *models.UpdateAccountRequest) (*models.Account, error) {
	if req.AccountType != nil && !req.AccountType.Valid() {
		return nil, fmt.Errorf("invalid account type %q", *req.AccountType)
	}

	if _, err := s.GetAccount(id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sets := []string{"updated_at = ?"}
	args := []interface{}{now}

	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.AccountType != nil {
		sets = append(sets, "account_type = ?")
		args = append(args, *req.AccountType)
	}
	if req.AccountSubType != nil {
		sets = append(sets, "account_sub_type = ?")
		args = append(args, *req.AccountSubType)
	}
	if req.Currency != nil {
		sets = append(sets, "currency = ?")
		args = append(args, *req.Currency)
	}
	if req.IsDefault != nil {
		sets = append(sets, "is_default = ?")
		args = append(args, *req.IsDefault)
	}
	args = append(args, id)

	err := s.conn.Transaction(func(tx *sql.Tx) error {
		// At most one account may be default.
		if req.IsDefault != nil && *req.IsDefault {
			if _, err := tx.Exec(`UPDATE accounts SET is_default = 0, updated_at = ? WHERE is_default = 1 AND id != ?`, now, id); err != nil {
				return fmt.Errorf("failed to clear default account: %w", err)
			}
		}

		_, err := tx.Exec(`UPDATE accounts SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetAccount(id)
}

// DeleteAccount deletes an account. It refuses with ErrAccountInUse while
// any transaction references the account as source or destination.
func (s *Store) DeleteAccount(id uuid.UUID) (bool, error) {
	if _, err := s.GetAccount(id); err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}

	count, err := s.CountAccountTransactions(id)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, ErrAccountInUse
	}

	result, err := s.conn.Exec(`DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CountAccountTransactions counts transactions referencing the account
// as either leg.
func (s *Store) CountAccountTransactions(id uuid.UUID) (int64, error) {
	var count int64
	err := s.conn.QueryRow(`
		SELECT COUNT(*) FROM transactions
		WHERE source_account_id = ? OR destination_account_id = ?`, id, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count account transactions: %w", err)
	}
	return count, nil
}

// CreateExternalAccountTx synthesizes a zero-balance External account for
// an unknown counterparty name, inside the caller's transaction scope.
func (s *Store) CreateExternalAccountTx(tx *sql.Tx, name string, now time.Time) (*models.Account, error) {
	account := &models.Account{
		ID:          uuid.New(),
		Name:        name,
		AccountType: models.AccountExternal,
		Balance:     0,
		Currency:    "USD",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := tx.Exec(`
		INSERT INTO accounts (id, name, account_type, balance, currency, is_default, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, 0, ?, ?)`,
		account.ID, account.Name, account.AccountType, account.Currency,
		account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create external account: %w", err)
	}
	return account, nil
}

// AdjustBalanceTx applies a signed delta to one account's balance and
// returns the number of rows affected. Callers must verify that exactly
// one row changed.
func (s *Store) AdjustBalanceTx(tx *sql.Tx, id uuid.UUID, delta float64, now time.Time) (int64, error) {
	result, err := tx.Exec(`
		UPDATE accounts
		SET balance = balance + ?, updated_at = ?
		WHERE id = ?`, delta, now, id)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance: %w", err)
	}
	return result.RowsAffected()
}
