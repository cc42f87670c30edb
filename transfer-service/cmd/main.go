package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/eaglebank/ledger/shared/clients"
	"github.com/eaglebank/ledger/shared/config"
	"github.com/eaglebank/ledger/shared/database"
	"github.com/eaglebank/ledger/shared/logging"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/eaglebank/ledger/shared/security"
	"github.com/eaglebank/ledger/shared/server"
	transfercmd "github.com/eaglebank/ledger/transfer-service/internal/command"
	"github.com/eaglebank/ledger/transfer-service/internal/handler"
	"github.com/eaglebank/ledger/transfer-service/internal/repository"
)

// Usage:
//
//	transfer-service                     serve POST /transfer
//	transfer-service set-pin USER PIN    store a PIN hash (PIN_VALIDATOR=postgres)
func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("transfer-service exited", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(getEnv("CONFIG_FILE", "config.yaml"), config.Config{
		Port:         "8086",
		PinValidator: "http",
		Upstreams: config.UpstreamConfig{
			AccountServiceURL:     "http://localhost:8083",
			TransactionServiceURL: "http://localhost:8084",
			PinServiceURL:         "http://localhost:8082",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New("transfer-service", cfg.LogLevel)
	slog.SetDefault(logger)

	if len(args) > 0 && args[0] == "set-pin" {
		return setPin(cfg, args[1:])
	}

	middleware.MustInitJWTSecret(cfg.JWTSecret)

	var pins transfercmd.PinValidator
	switch cfg.PinValidator {
	case "postgres":
		db, err := database.Open(cfg.DatabaseURL, 10, 2*time.Second)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := repository.RunMigrations(db); err != nil {
			return err
		}
		pins = repository.NewPostgresPinValidator(db, security.NewBcryptHasher(cfg.BcryptCost))
	default:
		pins = clients.NewPinClient(cfg.Upstreams.PinServiceURL, cfg.Upstreams.Timeout)
	}

	accounts := clients.NewAccountClient(cfg.Upstreams.AccountServiceURL, cfg.Upstreams.Timeout)
	transactions := clients.NewTransactionClient(cfg.Upstreams.TransactionServiceURL, cfg.Upstreams.Timeout)
	commandSvc := transfercmd.NewTransferCommandService(accounts, transactions, pins, logger)

	router := server.NewRouter("transfer-service", logger)
	handler.NewTransferHandler(commandSvc).RegisterRoutes(router, middleware.AuthMiddleware())

	return server.Run(router, cfg.Port, logger)
}

func setPin(cfg config.Config, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set-pin USER PIN")
	}
	db, err := database.Open(cfg.DatabaseURL, 1, 0)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := repository.RunMigrations(db); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	validator := repository.NewPostgresPinValidator(db, security.NewBcryptHasher(cfg.BcryptCost))
	return validator.SetPin(ctx, args[0], args[1])
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
