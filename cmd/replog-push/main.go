package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/replog/internal/cloud"
	"github.com/claude/replog/internal/config"
	"github.com/claude/replog/internal/session"
	"github.com/claude/replog/internal/store"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("replog-push starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if !cfg.Remote.Enabled {
		log.Error("remote sync is not enabled in config")
		os.Exit(1)
	}

	local, err := store.Open(cfg.Data.Dir)
	if err != nil {
		log.Error("failed to open local store", "error", err)
		os.Exit(1)
	}
	defer local.Close()

	ctx := context.Background()

	remote, err := cloud.New(ctx, cfg.Remote.DSN())
	if err != nil {
		log.Error("failed to connect remote store", "error", err)
		os.Exit(1)
	}
	defer remote.Close()

	finisher := &session.Finisher{
		Log:      local,
		Remote:   remote,
		Identity: cloud.StaticIdentity{UserID: cfg.Auth.UserID},
		Timeout:  cfg.Remote.Timeout(),
		Logger:   log,
	}

	pusher := cloud.NewPusher(local, finisher, log)
	stats, err := pusher.Run(ctx)
	if err != nil {
		log.Error("push failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("push complete")
}

func printStats(log *slog.Logger, stats *cloud.Stats) {
	log.Info("push stats",
		"total", stats.Total,
		"pushed", stats.Pushed,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
}
