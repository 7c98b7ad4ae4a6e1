// Command server runs the AgroCheck HTTP API.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JaimeStill/agrocheck/internal/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Variables already present in the environment take precedence over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fatal(logger, "env file load failed", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(logger, "config load failed", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		fatal(logger, "server init failed", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		stop()
		fatal(logger, "server stopped with error", err)
	}

	logger.Info("agrocheck stopped")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
