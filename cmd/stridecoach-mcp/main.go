// Command stridecoach-mcp serves the MCP tool surface over stdio. It
// runs against the local database by default, or against a remote
// StrideCoach server with -url (useful over Tailscale).
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/stridecoach/internal/adapt"
	"github.com/claude/stridecoach/internal/config"
	"github.com/claude/stridecoach/internal/mcp"
	"github.com/claude/stridecoach/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	remoteURL := flag.String("url", "", "remote server base URL (default: local database)")
	flag.Parse()

	// Stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var ds mcp.DataSource
	if *remoteURL != "" {
		ds = mcp.NewHTTPClient(*remoteURL, cfg.Auth.APIKey)
		log.Info("using remote data source", "url", *remoteURL)
	} else {
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		log.Info("using local database")
	}

	adapter, scorer := buildAdapter(cfg)
	s := mcp.New(ds, adapter, scorer, Version, log)

	log.Info("MCP server listening on stdio", "version", Version)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
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
