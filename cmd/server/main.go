package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/MYS158/shop-project/internal/catalog"
	"github.com/MYS158/shop-project/internal/config"
	"github.com/MYS158/shop-project/internal/csvio"
	"github.com/MYS158/shop-project/internal/logging"
	"github.com/MYS158/shop-project/internal/store"
	"github.com/MYS158/shop-project/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"import_max_file_size", cfg.Import.MaxFileSize,
	)

	ctx := context.Background()

	repo, closeStore := openStore(ctx, cfg)
	defer closeStore()

	service := catalog.NewService(repo, csvio.Transfer{})
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

	// Start server (uses addr from config internally)
	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// openStore connects to Postgres when a database URL is configured and
// reachable, and otherwise runs on the in-memory store so the catalog
// stays usable without a database. Changes made in that mode do not
// survive a restart.
func openStore(ctx context.Context, cfg *config.Config) (catalog.Repository, func()) {
	if cfg.Database.URL == "" {
		slog.Warn("no database URL configured, using in-memory store")
		return seededMemory()
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL, using in-memory store", "error", err)
		return seededMemory()
	}

	// Apply pool configuration from config
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database, using in-memory store", "error", err)
		return seededMemory()
	}

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database, using in-memory store", "error", err)
		pool.Close()
		return seededMemory()
	}

	pg := store.NewPostgres(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema, using in-memory store", "error", err)
		pool.Close()
		return seededMemory()
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		dbName := strings.TrimPrefix(u.Path, "/")
		slog.Info("connected to database", "name", dbName)
	} else {
		slog.Info("connected to database")
	}

	return pg, pool.Close
}

func seededMemory() (catalog.Repository, func()) {
	m := store.NewMemory()
	m.SeedDemo()
	return m, func() {}
}
