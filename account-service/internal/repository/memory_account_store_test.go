package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eaglebank/ledger/shared/apperrors"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/shopspring/decimal"
)

func seedAccount(t *testing.T, s *MemoryAccountStore, id, owner, balance string) {
	t.Helper()
	err := s.Create(context.Background(), &models.Account{
		ID:          id,
		OwnerID:     owner,
		Balance:     decimal.RequireFromString(balance),
		AccountType: models.AccountTypeChecking,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func addDelta(delta decimal.Decimal) BalanceFunc {
	return func(cur *models.Account) (decimal.Decimal, error) {
		return cur.Balance.Add(delta), nil
	}
}

func TestMemoryStoreCreateDuplicate(t *testing.T) {
	s := NewMemoryAccountStore()
	seedAccount(t, s, "1000001", "7", "0")
	err := s.Create(context.Background(), &models.Account{ID: "1000001"})
	if !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryAccountStore()
	seedAccount(t, s, "1000001", "7", "10")
	acc, _ := s.GetByID(context.Background(), "1000001")
	acc.Balance = decimal.NewFromInt(999)

	again, _ := s.GetByID(context.Background(), "1000001")
	if !again.Balance.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("store was mutated through a returned copy: %s", again.Balance)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryAccountStore()
	if _, err := s.GetByID(context.Background(), "nope"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetByID: expected not found, got %v", err)
	}
	if _, err := s.UpdateBalance(context.Background(), "nope", addDelta(decimal.NewFromInt(1))); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("UpdateBalance: expected not found, got %v", err)
	}
}

func TestMemoryStoreRejectedUpdateLeavesBalance(t *testing.T) {
	s := NewMemoryAccountStore()
	seedAccount(t, s, "1000001", "7", "10")
	_, err := s.UpdateBalance(context.Background(), "1000001", func(*models.Account) (decimal.Decimal, error) {
		return decimal.Zero, apperrors.ErrInsufficientFunds
	})
	if !errors.Is(err, apperrors.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	acc, _ := s.GetByID(context.Background(), "1000001")
	if !acc.Balance.Equal(decimal.NewFromInt(10)) {
		t.Errorf("balance changed to %s", acc.Balance)
	}
}

func TestMemoryStoreConcurrentUpdatesAreSerialised(t *testing.T) {
	s := NewMemoryAccountStore()
	seedAccount(t, s, "1000001", "7", "0")

	const workers = 200
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.UpdateBalance(context.Background(), "1000001", addDelta(decimal.RequireFromString("0.01"))); err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	acc, _ := s.GetByID(context.Background(), "1000001")
	if !acc.Balance.Equal(decimal.RequireFromString("2.00")) {
		t.Fatalf("expected 2.00, got %s", acc.Balance)
	}
	if n := s.locks.size(); n != 0 {
		t.Errorf("expected lock table to drain, %d left", n)
	}
}

func TestMemoryStoreListByUser(t *testing.T) {
	s := NewMemoryAccountStore()
	seedAccount(t, s, "1000001", "7", "0")
	seedAccount(t, s, "1000002", "7", "0")
	seedAccount(t, s, "1000003", "8", "0")

	list, err := s.ListByUserID(context.Background(), "7")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(list))
	}
	empty, _ := s.ListByUserID(context.Background(), "nobody")
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", empty)
	}
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	s := NewMemoryAccountStore()
	seedAccount(t, s, "1000001", "7", "0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.UpdateBalance(ctx, "1000001", addDelta(decimal.NewFromInt(1))); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
