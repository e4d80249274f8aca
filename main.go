package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/warren/config"
	"github.com/pthm-cable/warren/game"
	"github.com/pthm-cable/warren/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for bookmark snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Uint64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	dt := flag.Float64("dt", 0.1, "Seconds advanced per update")
	snapshotIn := flag.String("snapshot-in", "", "Resume from a snapshot file")
	snapshotOut := flag.String("snapshot-out", "", "Write a snapshot file on exit")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	g, err := game.NewWithOptions(cfg, game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
	})
	if err != nil {
		slog.Error("failed to create game", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	if *snapshotIn != "" {
		s, err := telemetry.LoadSnapshot(*snapshotIn)
		if err != nil {
			slog.Error("failed to load snapshot", "path", *snapshotIn, "error", err)
			os.Exit(1)
		}
		if err := g.Import(*s); err != nil {
			slog.Error("failed to import snapshot", "path", *snapshotIn, "error", err)
			os.Exit(1)
		}
		slog.Info("snapshot loaded", "path", *snapshotIn, "tick", g.Tick(), "population", g.Population())
	}

	slog.Info("starting headless simulation",
		"seed", rngSeed,
		"max_ticks", *maxTicks,
		"dt", *dt,
		"population", g.Population(),
	)

	start := time.Now()
	for *maxTicks == 0 || g.Tick() < *maxTicks {
		g.Advance(*dt, cfg.Params)

		if g.Population() == 0 {
			slog.Info("warren extinct", "tick", g.Tick(), "sim_time", g.Elapsed())
			break
		}
	}

	totals := g.Totals()
	slog.Info("simulation finished",
		"tick", g.Tick(),
		"sim_time", g.Elapsed(),
		"wall_time", time.Since(start).String(),
		"population", g.Population(),
		"births", totals.Births,
		"deaths", totals.Deaths(),
		"max_generation", totals.MaxGeneration,
	)

	if *snapshotOut != "" {
		s := g.Export()
		if err := telemetry.SaveSnapshot(*snapshotOut, &s); err != nil {
			slog.Error("failed to save snapshot", "path", *snapshotOut, "error", err)
			os.Exit(1)
		}
		slog.Info("snapshot saved", "path", *snapshotOut, "tick", g.Tick())
	}
}
