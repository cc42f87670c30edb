package command

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/eaglebank/ledger/shared/apperrors"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/events"
	"github.com/eaglebank/ledger/shared/models"
	sharedredis "github.com/eaglebank/ledger/shared/redis"
	"github.com/eaglebank/ledger/shared/utils"
	"github.com/eaglebank/ledger/transaction-service/internal/repository"
	goredis "github.com/redis/go-redis/v9"
)

const transactionViewKeyPrefix = "transaction:view:"

// EventPublisher is satisfied by *events.Publisher, including a nil one.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// TransactionCommandService appends entries to the ledger log. It never
// looks at balances; it records movements that already happened.
type TransactionCommandService struct {
	store     repository.TransactionStore
	cache     *sharedredis.ViewCache[models.Transaction]
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewTransactionCommandService(
	store repository.TransactionStore,
	redisClient *goredis.Client,
	publisher EventPublisher,
	logger *slog.Logger,
) *TransactionCommandService {
	if publisher == nil {
		publisher = (*events.Publisher)(nil)
	}
	return &TransactionCommandService{
		store:     store,
		cache:     sharedredis.NewViewCache[models.Transaction](redisClient, 24*time.Hour),
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *TransactionCommandService) LogTransaction(ctx context.Context, cmd cqrs.LogTransactionCommand) (*models.Transaction, error) {
	if !utils.ValidateAccountID(cmd.AccountID) {
		return nil, apperrors.Validation("invalid account id %q", cmd.AccountID)
	}
	if !cmd.Type.Valid() {
		return nil, apperrors.Validation("unknown transaction type %q", cmd.Type)
	}
	if !cmd.Amount.IsPositive() || !utils.HasCentPrecision(cmd.Amount) {
		return nil, apperrors.Validation("amount must be a positive amount in cents")
	}

	txn := &models.Transaction{
		AccountID:        cmd.AccountID,
		Type:             cmd.Type,
		Amount:           cmd.Amount,
		RelatedAccountID: cmd.RelatedAccountID,
		Description:      cmd.Description,
		Timestamp:        s.now(),
		Status:           models.StatusCompleted,
	}
	if err := s.store.Insert(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to log transaction: %w", err)
	}

	s.cache.Set(ctx, transactionViewKeyPrefix+strconv.FormatInt(txn.ID, 10), txn)
	if err := s.publisher.Publish(ctx, events.TransactionEventsStream, events.TransactionCreated, events.TransactionCreatedEvent{
		TransactionID:    txn.ID,
		AccountID:        txn.AccountID,
		Type:             string(txn.Type),
		Amount:           txn.Amount,
		RelatedAccountID: txn.RelatedAccountID,
	}); err != nil {
		s.logger.Warn("failed to publish transaction.created", "transactionId", txn.ID, "error", err)
	}
	s.logger.Info("transaction logged", "transactionId", txn.ID, "accountId", txn.AccountID, "type", txn.Type, "amount", txn.Amount.String())
	return txn, nil
}
