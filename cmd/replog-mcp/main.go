package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/replog/internal/config"
	"github.com/claude/replog/internal/mcp"
	"github.com/claude/replog/internal/store"
	"github.com/claude/replog/internal/workouts"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	serverURL := flag.String("server", "", "RepLog server URL for remote mode (e.g. https://replog.tail1234.ts.net)")
	flag.Parse()

	// Logs go to stderr; stdout is the MCP transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *serverURL != "" {
		ds = mcp.NewHTTPClient(*serverURL)
		log.Info("MCP remote mode", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Usage: replog-mcp [-config config.yaml | -server <URL>]\n\n")
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		local, err := store.Open(cfg.Data.Dir)
		if err != nil {
			log.Error("failed to open local store", "error", err)
			os.Exit(1)
		}
		defer local.Close()

		ws, err := workouts.New(context.Background(), local)
		if err != nil {
			log.Error("failed to load workout definitions", "error", err)
			os.Exit(1)
		}

		ds = &mcp.LocalSource{Workouts: ws, Sessions: local}
		log.Info("MCP local mode", "dir", cfg.Data.Dir)
	}

	srv := mcp.New(ds, Version, log)
	if err := mcpserver.ServeStdio(srv); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
