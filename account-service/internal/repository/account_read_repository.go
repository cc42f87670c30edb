package repository

import (
	"context"
	"time"

	"github.com/eaglebank/ledger/shared/models"
	sharedredis "github.com/eaglebank/ledger/shared/redis"
	goredis "github.com/redis/go-redis/v9"
)

const (
	accountViewKeyPrefix = "account:view:"
	accountViewTTL       = 30 * time.Second
)

// AccountReadRepository serves reads from the Redis read model when one is
// configured and falls back to the store. Only account creation fills the
// cache and every delta clears it; a read that missed never writes back, so
// a value loaded before a delta cannot outlive that delta's invalidation.
// The cache is never consulted by UpdateBalance.
type AccountReadRepository struct {
	store AccountStore
	cache *sharedredis.ViewCache[models.Account]
}

func NewAccountReadRepository(store AccountStore, redisClient *goredis.Client) *AccountReadRepository {
	return &AccountReadRepository{
		store: store,
		cache: sharedredis.NewViewCache[models.Account](redisClient, accountViewTTL),
	}
}

func (r *AccountReadRepository) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	if acc, ok := r.cache.Get(ctx, accountViewKeyPrefix+accountID); ok {
		return acc, nil
	}
	return r.store.GetByID(ctx, accountID)
}

func (r *AccountReadRepository) ListByUserID(ctx context.Context, userID string) ([]models.Account, error) {
	return r.store.ListByUserID(ctx, userID)
}

func (r *AccountReadRepository) CacheAccount(ctx context.Context, acc *models.Account) {
	r.cache.Set(ctx, accountViewKeyPrefix+acc.ID, acc)
}

// InvalidateAccount drops the cached view after a balance change; the next
// read reloads from the store.
func (r *AccountReadRepository) InvalidateAccount(ctx context.Context, accountID string) {
	r.cache.Delete(ctx, accountViewKeyPrefix+accountID)
}
