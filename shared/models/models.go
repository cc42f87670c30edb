package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeSavings  AccountType = "SAVINGS"
	AccountTypeChecking AccountType = "CHECKING"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeChecking:
		return true
	}
	return false
}

// TransactionType carries the direction of a ledger movement; amounts are
// always stored positive.
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "DEPOSIT"
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
	TransactionTypeTransferIn  TransactionType = "TRANSFER_IN"
	TransactionTypeWithdrawal  TransactionType = "WITHDRAWAL"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeTransferOut, TransactionTypeTransferIn, TransactionTypeWithdrawal:
		return true
	}
	return false
}

type TransactionStatus string

// StatusCompleted is the only status: a logged entry is final.
const StatusCompleted TransactionStatus = "COMPLETED"

// Account is owned by the account service. Balance is only ever changed
// through a locked delta and is never negative.
type Account struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"userId"`
	Balance     decimal.Decimal `json:"balance"`
	AccountType AccountType     `json:"accountType"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Transaction is an immutable ledger entry owned by the transaction service.
type Transaction struct {
	ID               int64             `json:"id"`
	AccountID        string            `json:"accountId"`
	Type             TransactionType   `json:"type"`
	Amount           decimal.Decimal   `json:"amount"`
	RelatedAccountID string            `json:"relatedAccountId,omitempty"`
	Description      string            `json:"description,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
	Status           TransactionStatus `json:"status"`
}
