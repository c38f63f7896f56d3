package main

import (
	"flag"
	"fmt"
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
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N generations (0 = until game over)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Generations per stats window (0 = use config)")
	bearDropEvery := flag.Int("bear-drop-every", 0, "Drop bear_spawn_count bears every N generations (0 = never)")
	checkInvariants := flag.Bool("check-invariants", false, "Verify grid/registry consistency after every generation")
	debug := flag.Bool("debug", false, "Log every birth, death, kill, escape and graze")
	dump := flag.Bool("dump", false, "Print the final grid to stdout")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	g, err := game.New(cfg, game.Options{
		Seed:        rngSeed,
		Logger:      logger,
		LogStats:    *logStats,
		StatsWindow: *statsWindow,
		Output:      output,
	})
	if err != nil {
		slog.Error("failed to create world", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"grid_size", cfg.World.GridSize,
		"max_ticks", *maxTicks,
		"bear_drop_every", *bearDropEvery,
	)

	start := time.Now()
	if err := run(g, *maxTicks, *bearDropEvery, *checkInvariants); err != nil {
		slog.Error("simulation aborted", "generation", g.Generation(), "error", err)
		output.Close()
		os.Exit(1)
	}

	slog.Info("simulation finished",
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	g.LogWorldState()
	if output != nil {
		slog.Info("output written", "dir", output.Dir())
	}

	if *dump {
		fmt.Print(g.String())
	}
}

// run steps g until the game is over or maxTicks generations have passed.
func run(g *game.Game, maxTicks, bearDropEvery int, checkInvariants bool) error {
	for !g.IsGameOver() {
		if maxTicks > 0 && g.Generation() >= maxTicks {
			slog.Info("max ticks reached", "generation", g.Generation())
			return nil
		}
		if bearDropEvery > 0 && g.Generation() > 0 && g.Generation()%bearDropEvery == 0 {
			g.SpawnRandomBears(g.Config().Population.BearSpawnCount)
		}
		if err := g.Step(); err != nil {
			return err
		}
		if checkInvariants {
			if err := g.CheckInvariant(); err != nil {
				return err
			}
		}
	}
	slog.Info("game over", "generation", g.Generation())
	return nil
}
