// Package fakes provides an in-memory stand-in for the account and
// transaction services, with call recording and failure injection, for
// exercising the orchestrators without a network.
package fakes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eaglebank/ledger/shared/apperrors"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/shopspring/decimal"
)

// Call keys recorded by Ledger and accepted by FailOn.
func GetCall(accountID string) string { return "get:" + accountID }

func DeltaCall(accountID string) string { return "delta:" + accountID }

func LogCall(t models.TransactionType) string { return "log:" + string(t) }

// Ledger implements both orchestrator client interfaces.
type Ledger struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	txns     []models.Transaction
	nextID   int64
	calls    []string
	failures map[string]failure
}

type failure struct {
	err error
	// apply makes a failing delta still take effect, as when the response
	// is lost after the remote commit.
	apply bool
}

func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[string]*models.Account),
		failures: make(map[string]failure),
	}
}

func (l *Ledger) AddAccount(id, ownerID, balance string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[id] = &models.Account{
		ID:          id,
		OwnerID:     ownerID,
		Balance:     decimal.RequireFromString(balance),
		AccountType: models.AccountTypeChecking,
		CreatedAt:   time.Now().UTC(),
	}
}

// FailOn makes the named call return err without side effects.
func (l *Ledger) FailOn(call string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[call] = failure{err: err}
}

// FailAfterApplyOn makes a delta call commit and then return err.
func (l *Ledger) FailAfterApplyOn(call string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[call] = failure{err: err, apply: true}
}

func (l *Ledger) Balance(id string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	if acc, ok := l.accounts[id]; ok {
		return acc.Balance
	}
	return decimal.Zero
}

func (l *Ledger) Transactions() []models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Transaction, len(l.txns))
	copy(out, l.txns)
	return out
}

func (l *Ledger) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

func (l *Ledger) GetAccount(_ context.Context, accountID string) (*models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	call := GetCall(accountID)
	l.calls = append(l.calls, call)
	if f, ok := l.failures[call]; ok {
		return nil, f.err
	}
	acc, ok := l.accounts[accountID]
	if !ok {
		return nil, apperrors.NotFound("account", accountID)
	}
	cp := *acc
	return &cp, nil
}

func (l *Ledger) ApplyDelta(_ context.Context, accountID string, delta decimal.Decimal) (*models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	call := DeltaCall(accountID)
	l.calls = append(l.calls, call)
	f, failing := l.failures[call]
	if failing && !f.apply {
		return nil, f.err
	}
	acc, ok := l.accounts[accountID]
	if !ok {
		return nil, apperrors.NotFound("account", accountID)
	}
	nb := acc.Balance.Add(delta)
	if nb.IsNegative() {
		return nil, fmt.Errorf("account %s: %w", accountID, apperrors.ErrInsufficientFunds)
	}
	acc.Balance = nb
	if failing {
		return nil, f.err
	}
	cp := *acc
	return &cp, nil
}

func (l *Ledger) LogTransaction(_ context.Context, cmd cqrs.LogTransactionCommand) (*models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	call := LogCall(cmd.Type)
	l.calls = append(l.calls, call)
	if f, ok := l.failures[call]; ok {
		return nil, f.err
	}
	l.nextID++
	txn := models.Transaction{
		ID:               l.nextID,
		AccountID:        cmd.AccountID,
		Type:             cmd.Type,
		Amount:           cmd.Amount,
		RelatedAccountID: cmd.RelatedAccountID,
		Description:      cmd.Description,
		Timestamp:        time.Now().UTC(),
		Status:           models.StatusCompleted,
	}
	l.txns = append(l.txns, txn)
	return &txn, nil
}
