package main

import (
	"context"
	"os"

	"github.com/lyh9003/stock-report/internal/app"
	"github.com/lyh9003/stock-report/internal/config"
	"github.com/lyh9003/stock-report/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application := app.New(cfg, logger)

	if err := application.Run(ctx); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}
