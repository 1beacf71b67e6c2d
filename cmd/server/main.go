package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/ignite/newsletter/internal/api"
	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/postmark"
	"github.com/ignite/newsletter/internal/subscriptions"
)

func main() {
	logger.Init(logger.INFO)

	cfg, err := config.LoadFromEnv("configuration")
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := openPool(cfg.Database)
	if err != nil {
		logger.Error("failed to open database pool", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emailClient, err := postmark.NewClient(cfg.EmailClient)
	if err != nil {
		logger.Error("failed to build email client", "error", err)
		os.Exit(1)
	}

	store := subscriptions.NewStore(db)
	server := api.NewServer(cfg.Application, store, emailClient)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			"addr", cfg.Application.Addr(),
			"base_url", cfg.Application.BaseURL,
		)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// openPool builds the shared connection pool. Connections are established
// lazily; a handler that cannot get one within the pool's limits reports a
// store failure rather than crashing the process.
func openPool(cfg config.DatabaseSettings) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Fail fast on unreachable databases, but keep startup working when
	// the database comes up later (compose, ECS task ordering).
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Warn("database not reachable at startup, continuing with lazy connections", "error", err)
	}
	return db, nil
}
