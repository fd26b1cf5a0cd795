// Package main is the entry point for the gig board API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/qalakaar/gigboard/api"
	"github.com/qalakaar/gigboard/internal/config"
	"github.com/qalakaar/gigboard/internal/handler"
	"github.com/qalakaar/gigboard/internal/middleware"
	"github.com/qalakaar/gigboard/internal/query"
	"github.com/qalakaar/gigboard/internal/repo"
	"github.com/qalakaar/gigboard/internal/service"
	"github.com/qalakaar/gigboard/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Default logger until ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Storage ----------------------------------------------------------
	ctx := context.Background()
	slot, closeSlot, err := openSlot(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to open storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer closeSlot()
	slog.Info("storage ready", "backend", cfg.StorageBackend, "slot", cfg.SlotKey)

	// --- Services ---------------------------------------------------------
	// The collection is loaded once here and owned by EventService afterwards.
	store := repo.NewEventStore(slot, cfg.SlotKey, logger)
	events := service.NewEventService(ctx, store, service.NewIDGenerator(nil), query.New(cfg.Language()))

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	server := handler.NewServer(events, api.OpenAPI, logger)
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openSlot builds the persistence slot for the configured backend and
// returns a function releasing its resources.
func openSlot(ctx context.Context, cfg config.Config, logger *slog.Logger) (repo.Slot, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		logger.Warn("memory backend: events are lost on restart")
		return repo.NewMemorySlot(), func() {}, nil

	case config.BackendPostgres:
		// New() does not open connections immediately; Ping does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		if err := migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo.NewPgSlot(pool), pool.Close, nil

	default:
		return repo.NewFileSlot(cfg.DataDir), func() {}, nil
	}
}

// migrate applies the embedded goose migrations. goose needs a *sql.DB, so
// one is opened on top of the pool for the duration of the run.
func migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	for _, res := range results {
		logger.Info("migration applied", "version", res.Source.Version, "duration_ms", res.Duration.Milliseconds())
	}
	return nil
}
