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

	"github.com/claude/replog/internal/cloud"
	"github.com/claude/replog/internal/config"
	"github.com/claude/replog/internal/server"
	"github.com/claude/replog/internal/session"
	"github.com/claude/replog/internal/store"
	"github.com/claude/replog/internal/workouts"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("RepLog starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Open the local store (migrations run on open)
	local, err := store.Open(cfg.Data.Dir)
	if err != nil {
		log.Error("failed to open local store", "error", err)
		os.Exit(1)
	}
	defer local.Close()
	log.Info("local store ready", "dir", cfg.Data.Dir)

	ctx := context.Background()

	ws, err := workouts.New(ctx, local)
	if err != nil {
		log.Error("failed to load workout definitions", "error", err)
		os.Exit(1)
	}

	// Remote sync is optional; without it sessions stay local only.
	finisher := &session.Finisher{
		Log:      local,
		Identity: cloud.StaticIdentity{UserID: cfg.Auth.UserID},
		Timeout:  cfg.Remote.Timeout(),
		Logger:   log,
	}
	if cfg.Remote.Enabled {
		remote, err := cloud.New(ctx, cfg.Remote.DSN())
		if err != nil {
			log.Warn("remote store unavailable, sessions will be saved locally only", "error", err)
		} else {
			defer remote.Close()
			finisher.Remote = remote
			log.Info("remote store connected", "host", cfg.Remote.Host)
		}
	}

	bounds := session.Bounds{Min: cfg.Session.MinReps, Max: cfg.Session.MaxReps}
	srv := server.New(ws, local, finisher, bounds, cfg.Auth.APIKey, log)

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
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
