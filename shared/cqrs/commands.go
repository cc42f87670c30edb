package cqrs

import (
	"github.com/eaglebank/ledger/shared/models"
	"github.com/shopspring/decimal"
)

type CreateAccountCommand struct {
	UserID         string
	AccountType    models.AccountType
	InitialBalance decimal.Decimal
}

// ApplyDeltaCommand moves one account's balance by a signed amount.
type ApplyDeltaCommand struct {
	AccountID string
	Delta     decimal.Decimal
}

type LogTransactionCommand struct {
	AccountID        string
	Type             models.TransactionType
	Amount           decimal.Decimal
	RelatedAccountID string
	Description      string
}

type DepositCommand struct {
	AccountID   string
	Amount      decimal.Decimal
	TellerID    string
	Description string
}

// TransferCommand.CallerUserID must come from the authenticated context.
type TransferCommand struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Pin           string
	CallerUserID  string
	Description   string
}
