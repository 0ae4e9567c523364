package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/ShelfLife/internal/config"
	"github.com/JonMunkholm/ShelfLife/internal/core"
	"github.com/JonMunkholm/ShelfLife/internal/logging"
	"github.com/JonMunkholm/ShelfLife/internal/store"
	"github.com/JonMunkholm/ShelfLife/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"database", cfg.Database.Enabled(),
		"upload_max_file_size", cfg.Upload.MaxFileSize,
		"metrics", cfg.Metrics.Enabled,
	)

	ctx := context.Background()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open reference store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	service := core.NewService(st, core.WithMaxUploadSize(cfg.Upload.MaxFileSize))
	service.Init(ctx)

	if status := service.Status(); status.Loaded {
		slog.Info("reference table restored",
			"source", status.SourceName,
			"rows", status.Rows,
			"imported_at", status.ImportedAt,
		)
	}

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		closeStore()
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore picks PostgreSQL when DATABASE_URL is set and the local
// snapshot file otherwise. The returned func releases the store.
func openStore(ctx context.Context, cfg *config.Config) (core.Store, func(), error) {
	if !cfg.Database.Enabled() {
		fs := store.NewFileStore(cfg.Storage.Path)
		slog.Info("using file store", "path", fs.Path())
		return fs, func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	if err := store.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return store.NewPostgresStore(pool), pool.Close, nil
}
