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
	"github.com/seedtools/shopseed/internal/config"
	"github.com/seedtools/shopseed/internal/logging"
	"github.com/seedtools/shopseed/internal/seed"
	"github.com/seedtools/shopseed/internal/web"
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
		"mode", cfg.Import.Mode,
		"csv_dir", cfg.Import.Dir,
		"db_max_conns", cfg.Database.MaxConns,
	)

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	// Apply pool configuration from config
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	// Connect to database
	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		dbName := strings.TrimPrefix(u.Path, "/")
		slog.Info("connected to database", "name", dbName)
	} else {
		slog.Info("connected to database")
	}

	service := seed.NewService(pool, os.DirFS(cfg.Import.Dir), cfg.Import.Timeout)

	switch cfg.Import.Mode {
	case config.ModeServe:
		runServer(service, pool, cfg)
	default:
		runOnce(ctx, service)
	}
}

// runOnce executes a single import run and exits non-zero on failure.
func runOnce(ctx context.Context, service *seed.Service) {
	report, err := service.Run(ctx)
	if err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}

	for _, res := range report.Entities {
		slog.Info("entity imported",
			"entity", res.Entity,
			"read", res.Read,
			"accepted", res.Accepted,
			"skipped", res.Skipped,
		)
	}
	slog.Info("import complete",
		"run_id", report.RunID,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
}

// runServer exposes the import API until interrupted.
func runServer(service *seed.Service, pool *pgxpool.Pool, cfg *config.Config) {
	server := web.NewServer(service, pool, cfg)

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
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
