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

const transferSuccessMessage = "Transfer successful"

// Transfer stages. Every stage before stageDebit is a pure check; a failure
// there leaves nothing behind.
const (
	stageValidate = iota
	stageSameAccount
	stageGetSource
	stageOwnership
	stagePin
	stageFunds
	stageGetDestination
	stageDebit
	stageCredit
	stageLogOut
	stageLogIn
)

type AccountClient interface {
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	ApplyDelta(ctx context.Context, accountID string, delta decimal.Decimal) (*models.Account, error)
}

type TransactionClient interface {
	LogTransaction(ctx context.Context, cmd cqrs.LogTransactionCommand) (*models.Transaction, error)
}

// PinValidator answers whether pin belongs to userID.
type PinValidator interface {
	ValidatePin(ctx context.Context, userID, pin string) (bool, error)
}

// TransferCommandService moves money between two accounts as a strict
// sequence of calls: debit, credit, then one log entry per leg. Nothing is
// rolled back; a failure after the debit is reported with EffectPartial (or
// EffectUnknown for the debit itself) so callers can tell it apart from a
// clean rejection.
type TransferCommandService struct {
	accounts     AccountClient
	transactions TransactionClient
	pins         PinValidator
	logger       *slog.Logger
}

func NewTransferCommandService(accounts AccountClient, transactions TransactionClient, pins PinValidator, logger *slog.Logger) *TransferCommandService {
	return &TransferCommandService{
		accounts:     accounts,
		transactions: transactions,
		pins:         pins,
		logger:       logger,
	}
}

func (s *TransferCommandService) Transfer(ctx context.Context, cmd cqrs.TransferCommand) (*models.TransferResponse, error) {
	if err := validateTransfer(cmd); err != nil {
		return nil, s.fail(ctx, cmd, stageValidate, "validate request", err, false, false)
	}

	if cmd.FromAccountID == cmd.ToAccountID {
		return nil, s.fail(ctx, cmd, stageSameAccount, "check distinct accounts", apperrors.ErrSameAccountTransfer, false, false)
	}

	source, err := s.accounts.GetAccount(ctx, cmd.FromAccountID)
	if err != nil {
		return nil, s.fail(ctx, cmd, stageGetSource, "get source account", err, false, false)
	}

	if source.OwnerID != cmd.CallerUserID {
		err := fmt.Errorf("caller %s does not own account %s: %w", cmd.CallerUserID, cmd.FromAccountID, apperrors.ErrUnauthorized)
		return nil, s.fail(ctx, cmd, stageOwnership, "verify ownership", err, false, false)
	}

	if ok, err := s.pins.ValidatePin(ctx, cmd.CallerUserID, cmd.Pin); err != nil || !ok {
		pinErr := apperrors.ErrInvalidPin
		if err != nil {
			pinErr = fmt.Errorf("%w: %v", apperrors.ErrInvalidPin, err)
		}
		return nil, s.fail(ctx, cmd, stagePin, "verify pin", pinErr, false, false)
	}

	// Advisory only: the balance layer re-checks under its row lock at the
	// debit.
	if source.Balance.LessThan(cmd.Amount) {
		err := fmt.Errorf("account %s has %s, needs %s: %w",
			source.ID, source.Balance.StringFixed(2), cmd.Amount.StringFixed(2), apperrors.ErrInsufficientFunds)
		return nil, s.fail(ctx, cmd, stageFunds, "check funds", err, false, false)
	}

	if _, err := s.accounts.GetAccount(ctx, cmd.ToAccountID); err != nil {
		return nil, s.fail(ctx, cmd, stageGetDestination, "get destination account", err, false, false)
	}

	// Once the debit starts the transfer runs to completion or to its first
	// failure regardless of the caller going away.
	ctx = context.WithoutCancel(ctx)

	debited, err := s.accounts.ApplyDelta(ctx, cmd.FromAccountID, cmd.Amount.Neg())
	if err != nil {
		return nil, s.fail(ctx, cmd, stageDebit, "debit source", err, true, false)
	}

	credited, err := s.accounts.ApplyDelta(ctx, cmd.ToAccountID, cmd.Amount)
	if err != nil {
		return nil, s.fail(ctx, cmd, stageCredit, "credit destination", err, true, true)
	}

	out, err := s.transactions.LogTransaction(ctx, cqrs.LogTransactionCommand{
		AccountID:        cmd.FromAccountID,
		Type:             models.TransactionTypeTransferOut,
		Amount:           cmd.Amount,
		RelatedAccountID: cmd.ToAccountID,
		Description:      descriptionOr(cmd.Description, "Transfer to account "+cmd.ToAccountID),
	})
	if err != nil {
		return nil, s.fail(ctx, cmd, stageLogOut, "log sender leg", err, true, true)
	}

	if _, err := s.transactions.LogTransaction(ctx, cqrs.LogTransactionCommand{
		AccountID:        cmd.ToAccountID,
		Type:             models.TransactionTypeTransferIn,
		Amount:           cmd.Amount,
		RelatedAccountID: cmd.FromAccountID,
		Description:      descriptionOr(cmd.Description, "Transfer from account "+cmd.FromAccountID),
	}); err != nil {
		return nil, s.fail(ctx, cmd, stageLogIn, "log receiver leg", err, true, true)
	}

	s.logger.InfoContext(ctx, "transfer completed",
		"fromAccountId", cmd.FromAccountID,
		"toAccountId", cmd.ToAccountID,
		"amount", cmd.Amount.String(),
		"transactionId", out.ID,
	)
	return &models.TransferResponse{
		TransactionID:         out.ID,
		FromAccountID:         cmd.FromAccountID,
		ToAccountID:           cmd.ToAccountID,
		Amount:                cmd.Amount,
		FromAccountNewBalance: debited.Balance,
		ToAccountNewBalance:   credited.Balance,
		Message:               transferSuccessMessage,
	}, nil
}

func validateTransfer(cmd cqrs.TransferCommand) error {
	switch {
	case cmd.CallerUserID == "":
		return fmt.Errorf("no authenticated caller: %w", apperrors.ErrUnauthorized)
	case !cmd.Amount.IsPositive() || !utils.HasCentPrecision(cmd.Amount):
		return apperrors.Validation("transfer amount must be a positive amount in cents")
	case !utils.ValidateAccountID(cmd.FromAccountID):
		return apperrors.Validation("invalid source account id %q", cmd.FromAccountID)
	case !utils.ValidateAccountID(cmd.ToAccountID):
		return apperrors.Validation("invalid destination account id %q", cmd.ToAccountID)
	case cmd.Pin == "":
		return apperrors.Validation("pin is required")
	}
	return nil
}

func descriptionOr(description, fallback string) string {
	if description != "" {
		return description
	}
	return fallback
}

func (s *TransferCommandService) fail(ctx context.Context, cmd cqrs.TransferCommand, stage int, step string, err error, mutating, committed bool) error {
	se := &apperrors.StageError{
		Operation: "transfer",
		Stage:     stage,
		Step:      step,
		Effect:    apperrors.ClassifyEffect(err, mutating, committed),
		Err:       err,
	}
	level := slog.LevelInfo
	if !se.Rejected() {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "transfer failed",
		"fromAccountId", cmd.FromAccountID,
		"toAccountId", cmd.ToAccountID,
		"amount", cmd.Amount.String(),
		"stage", stage,
		"step", step,
		"effect", se.Effect,
		"error", err,
	)
	return se
}
