package repository

import (
	"context"
	"errors"

	"github.com/eaglebank/ledger/shared/models"
	"github.com/shopspring/decimal"
)

// ErrAccountExists is returned by Create when the id is already taken.
var ErrAccountExists = errors.New("account already exists")

// BalanceFunc computes a new balance from the current row. It runs while the
// row is locked; returning an error leaves the row untouched.
type BalanceFunc func(current *models.Account) (decimal.Decimal, error)

// AccountStore is the write store for accounts. UpdateBalance is the only way
// a balance changes and serialises all updates to the same account.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, accountID string) (*models.Account, error)
	ListByUserID(ctx context.Context, userID string) ([]models.Account, error)
	UpdateBalance(ctx context.Context, accountID string, fn BalanceFunc) (*models.Account, error)
}
