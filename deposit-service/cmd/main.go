package main

import (
	"fmt"
	"log/slog"
	"os"

	depositcmd "github.com/eaglebank/ledger/deposit-service/internal/command"
	"github.com/eaglebank/ledger/deposit-service/internal/handler"
	"github.com/eaglebank/ledger/shared/clients"
	"github.com/eaglebank/ledger/shared/config"
	"github.com/eaglebank/ledger/shared/logging"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/eaglebank/ledger/shared/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("deposit-service exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(getEnv("CONFIG_FILE", "config.yaml"), config.Config{
		Port: "8085",
		Upstreams: config.UpstreamConfig{
			AccountServiceURL:     "http://localhost:8083",
			TransactionServiceURL: "http://localhost:8084",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New("deposit-service", cfg.LogLevel)
	slog.SetDefault(logger)
	middleware.MustInitJWTSecret(cfg.JWTSecret)

	accounts := clients.NewAccountClient(cfg.Upstreams.AccountServiceURL, cfg.Upstreams.Timeout)
	transactions := clients.NewTransactionClient(cfg.Upstreams.TransactionServiceURL, cfg.Upstreams.Timeout)
	commandSvc := depositcmd.NewDepositCommandService(accounts, transactions, logger)

	router := server.NewRouter("deposit-service", logger)
	handler.NewDepositHandler(commandSvc).RegisterRoutes(router, middleware.AuthMiddleware())

	return server.Run(router, cfg.Port, logger)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
