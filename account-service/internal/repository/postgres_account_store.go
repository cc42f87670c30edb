package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eaglebank/ledger/shared/apperrors"
	"github.com/eaglebank/ledger/shared/database"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type accountRow struct {
	ID          string          `gorm:"primaryKey;size:32"`
	UserID      string          `gorm:"index;size:64;not null"`
	Balance     decimal.Decimal `gorm:"type:numeric(19,2);not null"`
	AccountType string          `gorm:"size:16;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (accountRow) TableName() string { return "accounts" }

func toRow(a *models.Account) *accountRow {
	return &accountRow{
		ID:          a.ID,
		UserID:      a.OwnerID,
		Balance:     a.Balance,
		AccountType: string(a.AccountType),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.CreatedAt,
	}
}

func (r *accountRow) toModel() *models.Account {
	return &models.Account{
		ID:          r.ID,
		OwnerID:     r.UserID,
		Balance:     r.Balance,
		AccountType: models.AccountType(r.AccountType),
		CreatedAt:   r.CreatedAt,
	}
}

// PostgresAccountStore serialises balance updates with SELECT ... FOR UPDATE
// inside a transaction; the row lock is the per-account lock.
type PostgresAccountStore struct {
	db *gorm.DB
}

func NewPostgresAccountStore(db *gorm.DB) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

// OpenGorm wraps the shared lib/pq pool in gorm with the Postgres dialect.
func OpenGorm(dsn string, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	sqlDB, err := database.Open(dsn, maxRetries, retryInterval)
	if err != nil {
		return nil, err
	}
	db, err := NewGorm(sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// NewGorm builds a gorm handle over an existing pool.
func NewGorm(sqlDB *sql.DB) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise gorm: %w", err)
	}
	return db, nil
}

// RunMigrations creates the accounts table. The CHECK constraint backs up
// the non-negative balance rule enforced in UpdateBalance.
func RunMigrations(db *gorm.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id VARCHAR(32) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			balance NUMERIC(19,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
			account_type VARCHAR(16) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id)`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (s *PostgresAccountStore) Create(ctx context.Context, account *models.Account) error {
	err := s.db.WithContext(ctx).Create(toRow(account)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *PostgresAccountStore) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	var row accountRow
	err := s.db.WithContext(ctx).Where("id = ?", accountID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("account", accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return row.toModel(), nil
}

func (s *PostgresAccountStore) ListByUserID(ctx context.Context, userID string) ([]models.Account, error) {
	var rows []accountRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	out := make([]models.Account, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toModel())
	}
	return out, nil
}

func (s *PostgresAccountStore) UpdateBalance(ctx context.Context, accountID string, fn BalanceFunc) (*models.Account, error) {
	var updated *models.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row accountRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", accountID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("account", accountID)
		}
		if err != nil {
			return fmt.Errorf("failed to lock account: %w", err)
		}

		current := row.toModel()
		newBalance, err := fn(current)
		if err != nil {
			return err
		}

		if err := tx.Model(&row).Updates(map[string]any{
			"balance":    newBalance,
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}
		current.Balance = newBalance
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
