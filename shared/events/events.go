package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	AccountCreated     = "account.created"
	BalanceUpdated     = "balance.updated"
	TransactionCreated = "transaction.created"
)

// Stream names
const (
	AccountEventsStream     = "account.events"
	TransactionEventsStream = "transaction.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type AccountCreatedEvent struct {
	AccountID   string          `json:"accountId"`
	UserID      string          `json:"userId"`
	AccountType string          `json:"accountType"`
	Balance     decimal.Decimal `json:"balance"`
}

// BalanceUpdatedEvent is emitted after a delta has been committed.
type BalanceUpdatedEvent struct {
	AccountID  string          `json:"accountId"`
	NewBalance decimal.Decimal `json:"newBalance"`
	Change     decimal.Decimal `json:"change"`
}

type TransactionCreatedEvent struct {
	TransactionID    int64           `json:"transactionId"`
	AccountID        string          `json:"accountId"`
	Type             string          `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	RelatedAccountID string          `json:"relatedAccountId,omitempty"`
}
