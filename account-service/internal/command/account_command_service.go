package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eaglebank/ledger/account-service/internal/repository"
	"github.com/eaglebank/ledger/shared/apperrors"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/events"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/eaglebank/ledger/shared/utils"
	"github.com/shopspring/decimal"
)

const maxCreateAttempts = 5

// EventPublisher is satisfied by *events.Publisher, including a nil one.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// AccountCommandService writes account state and keeps the read model in sync.
type AccountCommandService struct {
	store     repository.AccountStore
	readRepo  *repository.AccountReadRepository
	publisher EventPublisher
	logger    *slog.Logger
}

func NewAccountCommandService(
	store repository.AccountStore,
	readRepo *repository.AccountReadRepository,
	publisher EventPublisher,
	logger *slog.Logger,
) *AccountCommandService {
	if publisher == nil {
		publisher = (*events.Publisher)(nil)
	}
	return &AccountCommandService{
		store:     store,
		readRepo:  readRepo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	if cmd.UserID == "" {
		return nil, apperrors.Validation("userId is required")
	}
	if !cmd.AccountType.Valid() {
		return nil, apperrors.Validation("unknown account type %q", cmd.AccountType)
	}
	if cmd.InitialBalance.IsNegative() || !utils.HasCentPrecision(cmd.InitialBalance) {
		return nil, apperrors.Validation("initial balance must be a non-negative amount in cents")
	}

	account := &models.Account{
		OwnerID:     cmd.UserID,
		Balance:     cmd.InitialBalance,
		AccountType: cmd.AccountType,
		CreatedAt:   time.Now().UTC(),
	}
	var err error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		account.ID = utils.GenerateAccountNumber()
		err = s.store.Create(ctx, account)
		if !errors.Is(err, repository.ErrAccountExists) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.readRepo.CacheAccount(ctx, account)
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, events.AccountCreated, events.AccountCreatedEvent{
		AccountID:   account.ID,
		UserID:      account.OwnerID,
		AccountType: string(account.AccountType),
		Balance:     account.Balance,
	}); err != nil {
		s.logger.Warn("failed to publish account.created", "accountId", account.ID, "error", err)
	}
	s.logger.Info("account created", "accountId", account.ID, "userId", account.OwnerID)
	return account, nil
}

// ApplyDelta moves the balance by a signed amount under the account's row
// lock. A delta that would take the balance below zero is rejected with
// ErrInsufficientFunds and nothing is written.
func (s *AccountCommandService) ApplyDelta(ctx context.Context, cmd cqrs.ApplyDeltaCommand) (*models.Account, error) {
	if !utils.ValidateAccountID(cmd.AccountID) {
		return nil, apperrors.Validation("invalid account id %q", cmd.AccountID)
	}
	if !utils.HasCentPrecision(cmd.Delta) {
		return nil, apperrors.Validation("amount %s has more than two decimal places", cmd.Delta)
	}

	updated, err := s.store.UpdateBalance(ctx, cmd.AccountID, func(current *models.Account) (decimal.Decimal, error) {
		newBalance := current.Balance.Add(cmd.Delta)
		if newBalance.IsNegative() {
			return decimal.Zero, fmt.Errorf("account %s balance %s cannot absorb %s: %w",
				current.ID, current.Balance.StringFixed(2), cmd.Delta.StringFixed(2), apperrors.ErrInsufficientFunds)
		}
		return newBalance, nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			s.logger.Info("delta rejected", "accountId", cmd.AccountID, "delta", cmd.Delta.String())
		}
		return nil, err
	}

	s.readRepo.InvalidateAccount(ctx, updated.ID)
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, events.BalanceUpdated, events.BalanceUpdatedEvent{
		AccountID:  updated.ID,
		NewBalance: updated.Balance,
		Change:     cmd.Delta,
	}); err != nil {
		s.logger.Warn("failed to publish balance.updated", "accountId", updated.ID, "error", err)
	}
	s.logger.Info("balance updated", "accountId", updated.ID, "delta", cmd.Delta.String(), "balance", updated.Balance.String())
	return updated, nil
}
