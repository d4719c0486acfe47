// Package service binds the ledger engine and the rule engine: every
// transaction create or update passes through the ledger's balance
// bookkeeping first, then through rule evaluation, and a produced patch
// is persisted with a second ledger update.
package service

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/ledger"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/rules"
)

// Orchestrator chains ledger writes with rule application. Rule
// application is best-effort relative to the ledger write: a failure in
// evaluation or in the follow-up patch write never surfaces for a
// mutation the ledger already committed.
type Orchestrator struct {
	ledger *ledger.Engine
	rules  *rules.Engine
	log    *slog.Logger
}

// New creates an orchestrator over the given engines.
func New(ledgerEngine *ledger.Engine, rulesEngine *rules.Engine) *Orchestrator {
	return &Orchestrator{
		ledger: ledgerEngine,
		rules:  rulesEngine,
		log:    slog.Default(),
	}
}

// CreateTransaction creates a transaction through the ledger, then
// applies any matching rules to it.
func (o *Orchestrator) CreateTransaction(req *models.CreateTransactionRequest) (*models.Transaction, error) {
	transaction, err := o.ledger.Create(req)
	if err != nil {
		return nil, err
	}

	return o.applyRules(transaction), nil
}

// UpdateTransaction updates a transaction through the ledger, then
// applies any matching rules to the result.
func (o *Orchestrator) UpdateTransaction(id uuid.UUID, req *models.UpdateTransactionRequest) (*models.Transaction, error) {
	transaction, err := o.ledger.Update(id, req)
	if err != nil {
		return nil, err
	}

	return o.applyRules(transaction), nil
}

// DeleteTransaction removes a transaction. Rules never run on delete.
func (o *Orchestrator) DeleteTransaction(id uuid.UUID) (bool, error) {
	return o.ledger.Delete(id)
}

// GetTransaction retrieves a transaction by ID.
func (o *Orchestrator) GetTransaction(id uuid.UUID) (*models.Transaction, error) {
	return o.ledger.Get(id)
}

// applyRules evaluates the rule set against a freshly written
// transaction and persists a produced patch via a second ledger update.
// The patch only carries non-balance fields, so the second write leaves
// every account balance unchanged.
func (o *Orchestrator) applyRules(transaction *models.Transaction) *models.Transaction {
	patch, err := o.rules.Evaluate(transaction)
	if err != nil {
		o.log.Error("rule evaluation failed", "transaction_id", transaction.ID, "error", err)
		return transaction
	}
	if patch == nil {
		return transaction
	}

	update := patch.ToUpdateRequest()
	updated, err := o.ledger.Update(transaction.ID, &update)
	if err != nil {
		o.log.Error("failed to persist rule patch", "transaction_id", transaction.ID, "error", err)
		return transaction
	}

	o.log.Info("applied rules to transaction", "transaction_id", transaction.ID)
	return updated
}
