package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/replog/internal/config"
	"github.com/claude/replog/internal/ident"
	"github.com/claude/replog/internal/ingest/aiplan"
	"github.com/claude/replog/internal/store"
	"github.com/claude/replog/internal/workouts"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	planPath := flag.String("plan", "", "path to AI plan JSON file (required)")
	dryRun := flag.Bool("dry-run", false, "parse and report without saving the template")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *planPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: replog-import -config config.yaml -plan /path/to/plan.json [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	data, err := os.ReadFile(*planPath)
	if err != nil {
		log.Error("failed to read plan file", "path", *planPath, "error", err)
		os.Exit(1)
	}

	var plan aiplan.Payload
	if err := json.Unmarshal(data, &plan); err != nil {
		log.Error("failed to parse plan JSON", "error", err)
		os.Exit(1)
	}

	def := aiplan.Definition(plan, ident.New)
	exercises := 0
	for _, day := range def.Days {
		exercises += len(day.Exercises)
	}
	log.Info("plan parsed", "name", def.Name, "days", len(def.Days), "exercises", exercises)

	if *dryRun {
		log.Info("DRY RUN mode, template not saved")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	local, err := store.Open(cfg.Data.Dir)
	if err != nil {
		log.Error("failed to open local store", "error", err)
		os.Exit(1)
	}
	defer local.Close()

	ctx := context.Background()
	ws, err := workouts.New(ctx, local)
	if err != nil {
		log.Error("failed to load workout definitions", "error", err)
		os.Exit(1)
	}

	saved, err := ws.Import(ctx, def)
	if err != nil {
		log.Error("failed to save template", "error", err)
		os.Exit(1)
	}

	log.Info("template imported", "id", saved.ID, "name", saved.Name)
}
