package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"cipherkeeper/internal/app/server/api"
	"cipherkeeper/internal/app/server/config"
	"cipherkeeper/internal/infrastructure/storage/memory"
	"cipherkeeper/internal/infrastructure/storage/postgres"
	"cipherkeeper/internal/utils/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repos api.Repositories
	if cfg.DB.InMemory() {
		log.Warn("DATABASE_URI is not set, records are kept in memory")
		repos = api.MemoryRepositories(memory.New())
	} else {
		storage, err := postgres.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer storage.Close()
		repos = api.PostgresRepositories(storage, log)
	}

	srv := &http.Server{
		Addr:              cfg.Server.RunAddress,
		Handler:           api.New(repos, cfg.Session.TTL, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "address", cfg.Server.RunAddress, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
