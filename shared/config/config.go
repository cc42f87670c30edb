// Package config loads service configuration from an optional YAML file and
// then applies environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	LogLevel    string `yaml:"logLevel"`
	JWTSecret   string `yaml:"jwtSecret"`
	DatabaseURL string `yaml:"databaseUrl"`
	// LedgerStore selects the storage backend: "memory" or "postgres".
	LedgerStore string         `yaml:"ledgerStore"`
	Redis       RedisConfig    `yaml:"redis"`
	Upstreams   UpstreamConfig `yaml:"upstreams"`
	// PinValidator selects how transfer PINs are checked: "http" or "postgres".
	PinValidator string `yaml:"pinValidator"`
	BcryptCost   int    `yaml:"bcryptCost"`
}

// RedisConfig: an empty Addr disables the read cache and event publishing.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type UpstreamConfig struct {
	AccountServiceURL     string        `yaml:"accountServiceUrl"`
	TransactionServiceURL string        `yaml:"transactionServiceUrl"`
	DepositServiceURL     string        `yaml:"depositServiceUrl"`
	TransferServiceURL    string        `yaml:"transferServiceUrl"`
	PinServiceURL         string        `yaml:"pinServiceUrl"`
	Timeout               time.Duration `yaml:"timeout"`
}

// Load starts from defaults, overlays the YAML file at path if it exists and
// finally the environment.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Upstreams.Timeout == 0 {
		cfg.Upstreams.Timeout = 5 * time.Second
	}
	if cfg.LedgerStore == "" {
		cfg.LedgerStore = "postgres"
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LedgerStore = getEnv("LEDGER_STORE", cfg.LedgerStore)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Upstreams.AccountServiceURL = getEnv("ACCOUNT_SERVICE_URL", cfg.Upstreams.AccountServiceURL)
	cfg.Upstreams.TransactionServiceURL = getEnv("TRANSACTION_SERVICE_URL", cfg.Upstreams.TransactionServiceURL)
	cfg.Upstreams.DepositServiceURL = getEnv("DEPOSIT_SERVICE_URL", cfg.Upstreams.DepositServiceURL)
	cfg.Upstreams.TransferServiceURL = getEnv("TRANSFER_SERVICE_URL", cfg.Upstreams.TransferServiceURL)
	cfg.Upstreams.PinServiceURL = getEnv("PIN_SERVICE_URL", cfg.Upstreams.PinServiceURL)
	cfg.PinValidator = getEnv("PIN_VALIDATOR", cfg.PinValidator)

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		cfg.Redis.DB = db
	}
	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid UPSTREAM_TIMEOUT %q: %w", v, err)
		}
		cfg.Upstreams.Timeout = d
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST %q: %w", v, err)
		}
		cfg.BcryptCost = cost
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
