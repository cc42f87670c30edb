package models

import "github.com/shopspring/decimal"

// Wire payloads shared between the services and their HTTP clients.

type CreateAccountRequest struct {
	UserID         string           `json:"userId" validate:"required"`
	AccountType    AccountType      `json:"accountType" validate:"required,oneof=SAVINGS CHECKING"`
	InitialBalance *decimal.Decimal `json:"initialBalance,omitempty"`
}

// UpdateBalanceRequest carries a signed delta: negative debits, positive credits.
type UpdateBalanceRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

type LogTransactionRequest struct {
	AccountID        string          `json:"accountId" validate:"required"`
	TransactionType  TransactionType `json:"transactionType" validate:"required,oneof=DEPOSIT TRANSFER_OUT TRANSFER_IN WITHDRAWAL"`
	Amount           decimal.Decimal `json:"amount" validate:"dgt0"`
	RelatedAccountID string          `json:"relatedAccountId,omitempty"`
	Description      string          `json:"description,omitempty"`
}

type DepositRequest struct {
	AccountID   string          `json:"accountId" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"dgt0"`
	TellerID    string          `json:"tellerId,omitempty"`
	Description string          `json:"description,omitempty"`
}

type DepositResponse struct {
	TransactionID int64           `json:"transactionId"`
	AccountID     string          `json:"accountId"`
	Amount        decimal.Decimal `json:"amount"`
	NewBalance    decimal.Decimal `json:"newBalance"`
	Message       string          `json:"message"`
}

// TransferRequest deliberately has no user id: the caller is taken from the
// verified token, never from the body.
type TransferRequest struct {
	FromAccountID string          `json:"fromAccountId" validate:"required"`
	ToAccountID   string          `json:"toAccountId" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"dgt0"`
	Pin           string          `json:"pin" validate:"required"`
	Description   string          `json:"description,omitempty"`
}

type TransferResponse struct {
	TransactionID         int64           `json:"transactionId"`
	FromAccountID         string          `json:"fromAccountId"`
	ToAccountID           string          `json:"toAccountId"`
	Amount                decimal.Decimal `json:"amount"`
	FromAccountNewBalance decimal.Decimal `json:"fromAccountNewBalance"`
	ToAccountNewBalance   decimal.Decimal `json:"toAccountNewBalance"`
	Message               string          `json:"message"`
}

// ErrorResponse is the body of every non-2xx reply. Stage, Step and Effect
// are only set by the orchestrators; Stage is a pointer so stage 0 survives.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Stage   *int   `json:"stage,omitempty"`
	Step    string `json:"step,omitempty"`
	Effect  string `json:"effect,omitempty"`
}
