package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/eaglebank/ledger/shared/models"
)

// TransactionStore is append-only: entries are inserted once and never
// updated or deleted. Insert assigns the id.
type TransactionStore interface {
	Insert(ctx context.Context, txn *models.Transaction) error
}

// PostgresTransactionStore relies on a BIGSERIAL for monotonically unique ids.
type PostgresTransactionStore struct {
	db *sql.DB
}

func NewPostgresTransactionStore(db *sql.DB) *PostgresTransactionStore {
	return &PostgresTransactionStore{db: db}
}

func RunMigrations(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			account_id VARCHAR(32) NOT NULL,
			type VARCHAR(16) NOT NULL,
			amount NUMERIC(19,2) NOT NULL CHECK (amount > 0),
			related_account_id VARCHAR(32),
			description TEXT,
			status VARCHAR(16) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions(account_id)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (r *PostgresTransactionStore) Insert(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (account_id, type, amount, related_account_id, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		txn.AccountID, string(txn.Type), txn.Amount,
		nullString(txn.RelatedAccountID), nullString(txn.Description),
		string(txn.Status), txn.Timestamp,
	).Scan(&txn.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// MemoryTransactionStore keeps the log in process.
type MemoryTransactionStore struct {
	mu      sync.RWMutex
	nextID  int64
	entries []models.Transaction
}

func NewMemoryTransactionStore() *MemoryTransactionStore {
	return &MemoryTransactionStore{}
}

func (s *MemoryTransactionStore) Insert(ctx context.Context, txn *models.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	txn.ID = s.nextID
	s.entries = append(s.entries, *txn)
	return nil
}

// All returns a copy of the log in insertion order.
func (s *MemoryTransactionStore) All() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Transaction, len(s.entries))
	copy(out, s.entries)
	return out
}
