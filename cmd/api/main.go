package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/statloop/fplsync/internal/config"
	"github.com/statloop/fplsync/internal/logger"
	"github.com/statloop/fplsync/internal/router"
	"github.com/statloop/fplsync/internal/server"

	"github.com/rs/zerolog"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.New()
	if err != nil {
		// No config means no configured logger either; fail with a bare one.
		bare := zerolog.New(os.Stderr)
		bare.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(cfg.Primary.Env)

	s, err := server.New(cfg, &appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to initialize server")
	}

	s.SetupHTTPServer(router.New(s))

	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		appLogger.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}

	appLogger.Info().Msg("server stopped")
}
