package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/eaglebank/ledger/shared/apperrors"
	"github.com/eaglebank/ledger/shared/models"
)

// MemoryAccountStore keeps accounts in process. Each account has its own
// lock so updates to different accounts never wait on each other.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
	locks    *keyedMutex
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[string]*models.Account),
		locks:    newKeyedMutex(),
	}
}

func (s *MemoryAccountStore) Create(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; ok {
		return ErrAccountExists
	}
	cp := *account
	s.accounts[account.ID] = &cp
	return nil
}

func (s *MemoryAccountStore) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.NotFound("account", accountID)
	}
	cp := *acc
	return &cp, nil
}

func (s *MemoryAccountStore) ListByUserID(ctx context.Context, userID string) ([]models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Account{}
	for _, acc := range s.accounts {
		if acc.OwnerID == userID {
			out = append(out, *acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryAccountStore) UpdateBalance(ctx context.Context, accountID string, fn BalanceFunc) (*models.Account, error) {
	unlock := s.locks.Lock(accountID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	acc, ok := s.accounts[accountID]
	var current models.Account
	if ok {
		current = *acc
	}
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("account", accountID)
	}

	newBalance, err := fn(&current)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	acc.Balance = newBalance
	updated := *acc
	s.mu.Unlock()
	return &updated, nil
}
