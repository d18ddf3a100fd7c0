// Steamglass - Steam sales analytics served from flat CSV exports.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/steamlytics/steamglass/internal/api"
	"github.com/steamlytics/steamglass/internal/cache"
	"github.com/steamlytics/steamglass/internal/dataset"
	"github.com/steamlytics/steamglass/internal/domain"
	"github.com/steamlytics/steamglass/internal/report"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("STEAMGLASS_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Log startup
	slog.Info("starting steamglass",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()
	applyEnvOverrides(cfg)

	slog.Info("configuration loaded",
		"data_dir", cfg.Data.Dir,
		"cache", cfg.Cache.Type,
		"report_ttl", cfg.ReportTTL.String(),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Load the dataset. A missing file or column is fatal: a dashboard
	// with a partial dataset silently lies.
	store, err := dataset.New(cfg.Data, logger)
	if err != nil {
		if errors.Is(err, dataset.ErrMissingFile) || errors.Is(err, dataset.ErrMissingColumn) {
			slog.Error("dataset is incomplete", "dir", cfg.Data.Dir, "error", err)
		} else {
			slog.Error("failed to load dataset", "dir", cfg.Data.Dir, "error", err)
		}
		os.Exit(1)
	}
	defer store.Close()

	ds := store.Snapshot()
	slog.Info("dataset loaded",
		"transactions", len(ds.Transactions),
		"customers_clv", len(ds.CLV),
		"churn_predictions", len(ds.ChurnPredictions),
		"date_range", fmt.Sprintf("%s..%s",
			ds.MinDate.Format("2006-01-02"), ds.MaxDate.Format("2006-01-02")),
	)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize Report Builder
	builder := report.NewBuilder(store, cacheImpl, cfg.ReportTTL, logger)

	// Initialize Server
	srv := api.NewServer(cfg.Server, store, cacheImpl, builder, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("steamglass is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("steamglass shutdown complete")
}

// applyEnvOverrides layers STEAMGLASS_* environment variables over the
// default configuration.
func applyEnvOverrides(cfg *domain.Config) {
	if v := os.Getenv("STEAMGLASS_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("STEAMGLASS_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("STEAMGLASS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		} else {
			slog.Warn("ignoring invalid STEAMGLASS_PORT", "value", v)
		}
	}
	if v := os.Getenv("STEAMGLASS_CACHE"); v != "" {
		cfg.Cache.Type = v
	}
	if v := os.Getenv("STEAMGLASS_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("STEAMGLASS_REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("STEAMGLASS_REPORT_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.ReportTTL = ttl
		} else {
			slog.Warn("ignoring invalid STEAMGLASS_REPORT_TTL", "value", v)
		}
	}
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║             🎮 STEAMGLASS                 ║")
	fmt.Println("  ║      Steam Sales Analytics Service        ║")
	fmt.Println("  ║     Ten views over one clean dataset.     ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Data:     %s\n", cfg.Data.Dir)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    GET  /reports           - List report views")
	fmt.Println("    GET  /reports/{view}    - Render a report view")
	fmt.Println("    POST /simulate          - Run a what-if scenario")
	fmt.Println("    GET  /filters/options   - Filter bar values")
	fmt.Println("    GET  /export            - Download filtered CSV")
	fmt.Println("    POST /reload            - Re-read the CSV exports")
	fmt.Println("    GET  /health            - Health check")
	fmt.Println()
}
