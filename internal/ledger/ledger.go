// Package ledger implements the double-entry transaction ledger engine.
//
// Every mutation runs inside one SQLite transaction scope: the row write
// and the two balance deltas it implies commit or roll back together.
// For any committed transaction the source delta plus the destination
// delta is exactly zero.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/store"
	"github.com/shunichi-ikebuchi/budget-ledger/pkg/db"
)

var (
	// ErrInvalidTransaction is returned for a zero or non-finite amount,
	// a missing destination, or identical source and destination. The
	// mutation is rejected before any write persists.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrInvariantViolation is returned when a balance update affected
	// an unexpected number of rows. The whole atomic unit is discarded.
	ErrInvariantViolation = errors.New("balance invariant violation")
)

// Engine creates, updates and deletes transactions while keeping account
// balances consistent.
type Engine struct {
	conn  *db.Connection
	store *store.Store
}

// New creates a ledger engine over the given connection and store.
func New(conn *db.Connection, st *store.Store) *Engine {
	return &Engine{conn: conn, store: st}
}

// Get retrieves a transaction by ID.
func (e *Engine) Get(id uuid.UUID) (*models.Transaction, error) {
	return e.store.GetTransaction(id)
}

// Create persists a new transaction and applies its balance effect.
//
// The category is resolved (create-if-absent) before the atomic unit;
// destination resolution, the row insert and both balance deltas commit
// or roll back as one.
func (e *Engine) Create(req *models.CreateTransactionRequest) (*models.Transaction, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	category, err := e.store.FindOrCreateCategory(req.Category)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transactionDate := now
	if req.TransactionDate != nil {
		transactionDate = *req.TransactionDate
	}

	transaction := &models.Transaction{
		ID:              uuid.New(),
		SourceAccountID: req.SourceAccountID,
		Description:     req.Description,
		Amount:          req.Amount,
		Category:        req.Category,
		CategoryID:      &category.ID,
		BudgetID:        req.BudgetID,
		TransactionDate: transactionDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = e.conn.Transaction(func(tx *sql.Tx) error {
		destID, destName, err := e.resolveDestinationTx(tx, req.DestinationAccountID, req.DestinationName, req.Description, now)
		if err != nil {
			return err
		}

		if req.SourceAccountID == destID {
			return fmt.Errorf("%w: source and destination accounts must differ", ErrInvalidTransaction)
		}

		transaction.DestinationAccountID = destID
		transaction.DestinationName = &destName

		if err := e.store.InsertTransactionTx(tx, transaction); err != nil {
			return err
		}

		return e.applyBalanceEffect(tx, transaction.SourceAccountID, transaction.DestinationAccountID, transaction.Amount, now)
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// Update applies a sparse patch to a transaction. The old balance effect
// is reversed and the new one applied inside the same atomic unit as the
// row update; the source account is immutable. Returns store.ErrNotFound
// if the transaction does not exist.
func (e *Engine) Update(id uuid.UUID, req *models.UpdateTransactionRequest) (*models.Transaction, error) {
	original, err := e.store.GetTransaction(id)
	if err != nil {
		return nil, err
	}

	if req.Amount != nil {
		if err := validateAmount(*req.Amount); err != nil {
			return nil, err
		}
	}

	var categoryID *uuid.UUID
	if req.Category != nil {
		category, err := e.store.FindOrCreateCategory(*req.Category)
		if err != nil {
			return nil, err
		}
		categoryID = &category.ID
	}

	now := time.Now().UTC()
	updated := *original
	updated.UpdatedAt = now
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Amount != nil {
		updated.Amount = *req.Amount
	}
	if req.Category != nil {
		updated.Category = *req.Category
		updated.CategoryID = categoryID
	}
	if req.BudgetID != nil {
		updated.BudgetID = req.BudgetID
	}
	if req.TransactionDate != nil {
		updated.TransactionDate = *req.TransactionDate
	}

	err = e.conn.Transaction(func(tx *sql.Tx) error {
		// Reverse the original effect, then apply the new one below.
		// Both are the same delta routine with opposite signs.
		if err := e.applyBalanceEffect(tx, original.SourceAccountID, original.DestinationAccountID, -original.Amount, now); err != nil {
			return err
		}

		if req.DestinationAccountID != nil || req.DestinationName != nil {
			destID, destName, err := e.resolveDestinationTx(tx, req.DestinationAccountID, req.DestinationName, "", now)
			if err != nil {
				return err
			}
			updated.DestinationAccountID = destID
			updated.DestinationName = &destName
		}

		if updated.SourceAccountID == updated.DestinationAccountID {
			return fmt.Errorf("%w: source and destination accounts must differ", ErrInvalidTransaction)
		}

		affected, err := e.store.UpdateTransactionTx(tx, &updated)
		if err != nil {
			return err
		}
		if affected != 1 {
			return fmt.Errorf("%w: transaction row update affected %d rows", ErrInvariantViolation, affected)
		}

		return e.applyBalanceEffect(tx, updated.SourceAccountID, updated.DestinationAccountID, updated.Amount, now)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes a transaction and reverses its balance effect. Returns
// false, not an error, when the transaction does not exist.
func (e *Engine) Delete(id uuid.UUID) (bool, error) {
	transaction, err := e.store.GetTransaction(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	now := time.Now().UTC()
	deleted := false
	err = e.conn.Transaction(func(tx *sql.Tx) error {
		affected, err := e.store.DeleteTransactionTx(tx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		deleted = true

		return e.applyBalanceEffect(tx, transaction.SourceAccountID, transaction.DestinationAccountID, -transaction.Amount, now)
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

// resolveDestinationTx resolves the destination account inside the
// atomic unit, creating an External account when the name is unseen. It
// returns the destination account id and the denormalized display name.
func (e *Engine) resolveDestinationTx(tx *sql.Tx, accountID *uuid.UUID, destinationName *string, description string, now time.Time) (uuid.UUID, string, error) {
	var lookupErr error
	lookup := func(name string) (uuid.UUID, bool) {
		account, err := e.store.AccountByNameTx(tx, name)
		if errors.Is(err, store.ErrNotFound) {
			return uuid.Nil, false
		}
		if err != nil {
			lookupErr = err
			return uuid.Nil, false
		}
		return account.ID, true
	}

	resolution := ResolveDestination(accountID, destinationName, description, lookup)
	if lookupErr != nil {
		return uuid.Nil, "", lookupErr
	}

	switch resolution.Kind {
	case ResolutionFound:
		name := resolution.Name
		if name == "" {
			// Explicit id: keep the caller's display name or fall back
			// to the account's own.
			if destinationName != nil {
				name = *destinationName
			} else if account, err := e.store.AccountTx(tx, resolution.AccountID); err == nil {
				name = account.Name
			} else if !errors.Is(err, store.ErrNotFound) {
				return uuid.Nil, "", err
			}
		}
		return resolution.AccountID, name, nil

	case ResolutionCreateNew:
		account, err := e.store.CreateExternalAccountTx(tx, resolution.Name, now)
		if err != nil {
			return uuid.Nil, "", err
		}
		return account.ID, resolution.Name, nil

	default:
		return uuid.Nil, "", fmt.Errorf("%w: a destination account or name is required", ErrInvalidTransaction)
	}
}

// applyBalanceEffect applies one transaction's two-sided balance effect:
// the source account moves by -amount and the destination by +amount, so
// the two deltas always sum to zero. Passing a negated amount reverses a
// previously applied effect.
func (e *Engine) applyBalanceEffect(tx *sql.Tx, sourceID, destinationID uuid.UUID, amount float64, now time.Time) error {
	if err := e.adjustBalance(tx, sourceID, -amount, now); err != nil {
		return err
	}
	return e.adjustBalance(tx, destinationID, amount, now)
}

func (e *Engine) adjustBalance(tx *sql.Tx, accountID uuid.UUID, delta float64, now time.Time) error {
	affected, err := e.store.AdjustBalanceTx(tx, accountID, delta, now)
	if err != nil {
		return err
	}
	if affected != 1 {
		return fmt.Errorf("%w: balance update for account %s affected %d rows", ErrInvariantViolation, accountID, affected)
	}
	return nil
}

func validateAmount(amount float64) error {
	if amount == 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: amount must be a finite, non-zero number", ErrInvalidTransaction)
	}
	return nil
}
