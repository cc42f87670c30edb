package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/eaglebank/ledger/shared/apperrors"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/shopspring/decimal"
)

const (
	lockQuery   = `SELECT \* FROM "accounts" WHERE id = \$1 ORDER BY .* FOR UPDATE`
	updateQuery = `UPDATE "accounts" SET "balance"=\$1,"updated_at"=\$2 WHERE .*"id" = \$3`
)

var accountColumns = []string{"id", "user_id", "balance", "account_type", "created_at", "updated_at"}

// decimalArg matches a numeric driver argument by value, so "1500" and
// "1500.00" are the same amount.
type decimalArg string

func (d decimalArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	got, err := decimal.NewFromString(s)
	return err == nil && got.Equal(decimal.RequireFromString(string(d)))
}

func newMockAccountStore(t *testing.T) (*PostgresAccountStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	db, err := NewGorm(sqlDB)
	if err != nil {
		t.Fatalf("gorm: %v", err)
	}
	return NewPostgresAccountStore(db), mock
}

func accountRows(id, owner, balance string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(accountColumns).AddRow(id, owner, balance, "SAVINGS", now, now)
}

func TestPostgresUpdateBalance(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(mock sqlmock.Sqlmock)
		fn          BalanceFunc
		wantBalance string
		wantErr     error
		wantFnCall  bool
	}{
		{
			name: "credit locks, updates, commits",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WillReturnRows(accountRows("1234567", "7", "1000.00"))
				mock.ExpectExec(updateQuery).
					WithArgs(decimalArg("1500.00"), sqlmock.AnyArg(), "1234567").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			fn:          addDelta(decimal.RequireFromString("500.00")),
			wantBalance: "1500.00",
			wantFnCall:  true,
		},
		{
			name: "overdraft rolls back without an update",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WillReturnRows(accountRows("1234567", "7", "1000.00"))
				mock.ExpectRollback()
			},
			fn: func(cur *models.Account) (decimal.Decimal, error) {
				return decimal.Zero, apperrors.ErrInsufficientFunds
			},
			wantErr:    apperrors.ErrInsufficientFunds,
			wantFnCall: true,
		},
		{
			name: "missing row is not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WillReturnRows(sqlmock.NewRows(accountColumns))
				mock.ExpectRollback()
			},
			wantErr: apperrors.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockAccountStore(t)
			tt.setup(mock)

			called := false
			fn := func(cur *models.Account) (decimal.Decimal, error) {
				called = true
				if tt.fn == nil {
					return cur.Balance, nil
				}
				return tt.fn(cur)
			}
			acc, err := store.UpdateBalance(context.Background(), "1234567", fn)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if acc.Balance.StringFixed(2) != tt.wantBalance {
					t.Errorf("expected balance %s, got %s", tt.wantBalance, acc.Balance.StringFixed(2))
				}
			}
			if called != tt.wantFnCall {
				t.Errorf("balance func called = %v, want %v", called, tt.wantFnCall)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestPostgresUpdateBalanceLockFailure(t *testing.T) {
	store, mock := newMockAccountStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := store.UpdateBalance(context.Background(), "1234567", addDelta(decimal.NewFromInt(1)))
	if err == nil || errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected a storage error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByID(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		wantErr error
	}{
		{name: "found", rows: accountRows("1234567", "7", "250.50")},
		{name: "record not found maps to not found", rows: sqlmock.NewRows(accountColumns), wantErr: apperrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockAccountStore(t)
			mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE id = \$1`).WillReturnRows(tt.rows)

			acc, err := store.GetByID(context.Background(), "1234567")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if acc.OwnerID != "7" || acc.Balance.StringFixed(2) != "250.50" || acc.AccountType != models.AccountTypeSavings {
					t.Errorf("unexpected account %+v", acc)
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestPostgresListByUserID(t *testing.T) {
	store, mock := newMockAccountStore(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE user_id = \$1 ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow("2000002", "7", "5.00", "CHECKING", now, now).
			AddRow("1000001", "7", "10.00", "SAVINGS", now.Add(-time.Hour), now))

	accounts, err := store.ListByUserID(context.Background(), "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 2 || accounts[0].ID != "2000002" {
		t.Errorf("unexpected accounts %+v", accounts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
