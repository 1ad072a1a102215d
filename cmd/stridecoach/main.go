package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tailscale.com/tsnet"

	"github.com/claude/stridecoach/internal/adapt"
	"github.com/claude/stridecoach/internal/calsync"
	"github.com/claude/stridecoach/internal/config"
	"github.com/claude/stridecoach/internal/server"
	"github.com/claude/stridecoach/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("StrideCoach starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Build the adaptation engine from the configured policy
	adapter, scorer := buildAdapter(cfg)
	calendar := calsync.NewBuilder(cfg.Calendar.CalendarName, cfg.Calendar.DefaultTime)

	srv := server.New(db, adapter, scorer, calendar, cfg.Auth.APIKey, log)

	// Start the listener, tsnet when enabled, plain TCP otherwise.
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// buildAdapter translates the config knobs into the engine's policy and
// scorer, keeping the config package free of engine types.
func buildAdapter(cfg *config.Config) (*adapt.Adapter, *adapt.Scorer) {
	a := cfg.Adaptation

	policy := adapt.Policy{
		Thresholds: adapt.Thresholds{
			Excellent: a.Thresholds.Excellent,
			Good:      a.Thresholds.Good,
			Moderate:  a.Thresholds.Moderate,
			Poor:      a.Thresholds.Poor,
		},
		ACWR: adapt.ACWRBounds{
			OptimalMin: a.ACWR.OptimalMin,
			OptimalMax: a.ACWR.OptimalMax,
			CautionMax: a.ACWR.CautionMax,
		},
		KeySessionOffset: a.KeySessionOffset,
		Fallback:         adapt.LowScoreFallback(a.LowScoreFallback),
	}

	scorer := adapt.NewScorer()
	scorer.BaselineHRVMs = a.BaselineHRVMs
	scorer.BaselineRHRBPM = a.BaselineRHRBPM

	return adapt.New(policy, scorer), scorer
}
