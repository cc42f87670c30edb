package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eaglebank/ledger/shared/apperrors"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/eaglebank/ledger/shared/utils"
	"github.com/shopspring/decimal"
)

const (
	defaultDepositDescription = "Deposit"
	depositSuccessMessage     = "Deposit successful"
)

// Deposit stages.
const (
	stageValidate = iota
	stageGetAccount
	stageCredit
	stageLog
)

type AccountClient interface {
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	ApplyDelta(ctx context.Context, accountID string, delta decimal.Decimal) (*models.Account, error)
}

type TransactionClient interface {
	LogTransaction(ctx context.Context, cmd cqrs.LogTransactionCommand) (*models.Transaction, error)
}

// DepositCommandService credits one account and then records the movement.
// There is no compensation: if logging fails after the credit, the balance
// stays moved and the error says so.
type DepositCommandService struct {
	accounts     AccountClient
	transactions TransactionClient
	logger       *slog.Logger
}

func NewDepositCommandService(accounts AccountClient, transactions TransactionClient, logger *slog.Logger) *DepositCommandService {
	return &DepositCommandService{accounts: accounts, transactions: transactions, logger: logger}
}

func (s *DepositCommandService) Deposit(ctx context.Context, cmd cqrs.DepositCommand) (*models.DepositResponse, error) {
	if !cmd.Amount.IsPositive() || !utils.HasCentPrecision(cmd.Amount) {
		return nil, s.fail(ctx, cmd, stageValidate, "validate request", apperrors.Validation("deposit amount must be a positive amount in cents"), false, false)
	}
	if !utils.ValidateAccountID(cmd.AccountID) {
		return nil, s.fail(ctx, cmd, stageValidate, "validate request", apperrors.Validation("invalid account id %q", cmd.AccountID), false, false)
	}

	if _, err := s.accounts.GetAccount(ctx, cmd.AccountID); err != nil {
		return nil, s.fail(ctx, cmd, stageGetAccount, "get account", err, false, false)
	}

	// From the credit on the caller can no longer abandon the deposit.
	ctx = context.WithoutCancel(ctx)

	account, err := s.accounts.ApplyDelta(ctx, cmd.AccountID, cmd.Amount)
	if err != nil {
		return nil, s.fail(ctx, cmd, stageCredit, "credit account", err, true, false)
	}

	txn, err := s.transactions.LogTransaction(ctx, cqrs.LogTransactionCommand{
		AccountID:   cmd.AccountID,
		Type:        models.TransactionTypeDeposit,
		Amount:      cmd.Amount,
		Description: depositDescription(cmd),
	})
	if err != nil {
		return nil, s.fail(ctx, cmd, stageLog, "log deposit", err, true, true)
	}

	s.logger.InfoContext(ctx, "deposit completed",
		"accountId", cmd.AccountID,
		"amount", cmd.Amount.String(),
		"transactionId", txn.ID,
		"newBalance", account.Balance.String(),
	)
	return &models.DepositResponse{
		TransactionID: txn.ID,
		AccountID:     cmd.AccountID,
		Amount:        cmd.Amount,
		NewBalance:    account.Balance,
		Message:       depositSuccessMessage,
	}, nil
}

func depositDescription(cmd cqrs.DepositCommand) string {
	if cmd.Description != "" {
		return cmd.Description
	}
	if cmd.TellerID != "" {
		return fmt.Sprintf("%s by teller %s", defaultDepositDescription, cmd.TellerID)
	}
	return defaultDepositDescription
}

func (s *DepositCommandService) fail(ctx context.Context, cmd cqrs.DepositCommand, stage int, step string, err error, mutating, committed bool) error {
	se := &apperrors.StageError{
		Operation: "deposit",
		Stage:     stage,
		Step:      step,
		Effect:    apperrors.ClassifyEffect(err, mutating, committed),
		Err:       err,
	}
	level := slog.LevelInfo
	if !se.Rejected() {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "deposit failed",
		"accountId", cmd.AccountID,
		"amount", cmd.Amount.String(),
		"stage", stage,
		"step", step,
		"effect", se.Effect,
		"error", err,
	)
	return se
}
