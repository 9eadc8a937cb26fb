package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/oksasatya/user-lifecycle-api/config"
	"github.com/oksasatya/user-lifecycle-api/internal/client"
	"github.com/oksasatya/user-lifecycle-api/internal/console"
	"github.com/oksasatya/user-lifecycle-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// logs stay silent unless LOG_LEVEL is set, and then go to stderr
	logger := helpers.NewNopLogger()
	if cfg.LogLevel != "" {
		logger = helpers.NewLogger(cfg.AppName+"-console", cfg.Env, cfg.LogLevel)
		logger.SetOutput(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.APIBaseURL+cfg.APIBasePath, logger)
	if err := console.New(api, os.Stdin, os.Stdout).Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("console: %v", err)
	}
}
