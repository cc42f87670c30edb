package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/eaglebank/ledger/api-gateway/internal/proxy"
	"github.com/eaglebank/ledger/shared/config"
	"github.com/eaglebank/ledger/shared/logging"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/eaglebank/ledger/shared/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api-gateway exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(getEnv("CONFIG_FILE", "config.yaml"), config.Config{
		Port: "8080",
		Upstreams: config.UpstreamConfig{
			AccountServiceURL:  "http://localhost:8083",
			DepositServiceURL:  "http://localhost:8085",
			TransferServiceURL: "http://localhost:8086",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New("api-gateway", cfg.LogLevel)
	slog.SetDefault(logger)
	middleware.MustInitJWTSecret(cfg.JWTSecret)

	router := server.NewRouter("api-gateway", logger)
	proxy.RegisterRoutes(router,
		proxy.New(cfg.Upstreams.Timeout, logger),
		middleware.AuthMiddleware(),
		cfg.Upstreams.AccountServiceURL,
		cfg.Upstreams.DepositServiceURL,
		cfg.Upstreams.TransferServiceURL,
	)

	return server.Run(router, cfg.Port, logger)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
