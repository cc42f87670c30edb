package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eaglebank/ledger/shared/security"
)

// PostgresPinValidator checks PINs against bcrypt hashes in user_pins. It
// shares the register service's database rather than calling it over HTTP.
type PostgresPinValidator struct {
	db     *sql.DB
	hasher security.PinHasher
}

func NewPostgresPinValidator(db *sql.DB, hasher security.PinHasher) *PostgresPinValidator {
	return &PostgresPinValidator{db: db, hasher: hasher}
}

func RunMigrations(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS user_pins (
		user_id VARCHAR(64) PRIMARY KEY,
		pin_hash VARCHAR(255) NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// ValidatePin reports false for an unknown user; only storage errors are
// returned as errors.
func (v *PostgresPinValidator) ValidatePin(ctx context.Context, userID, pin string) (bool, error) {
	var hash string
	err := v.db.QueryRowContext(ctx, `SELECT pin_hash FROM user_pins WHERE user_id = $1`, userID).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load pin: %w", err)
	}
	return v.hasher.Compare(hash, pin), nil
}

// SetPin stores or replaces a user's PIN.
func (v *PostgresPinValidator) SetPin(ctx context.Context, userID, pin string) error {
	hash, err := v.hasher.Hash(pin)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}
	_, err = v.db.ExecContext(ctx, `
		INSERT INTO user_pins (user_id, pin_hash, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET pin_hash = EXCLUDED.pin_hash, updated_at = NOW()
	`, userID, hash)
	if err != nil {
		return fmt.Errorf("failed to store pin: %w", err)
	}
	return nil
}
