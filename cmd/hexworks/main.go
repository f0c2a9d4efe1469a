// Command hexworks runs the hex economy server: it loads or creates a world,
// serves the HTTP API, and ends turns on demand or on an autoplay interval.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/talgya/hexworks/internal/api"
	"github.com/talgya/hexworks/internal/config"
	"github.com/talgya/hexworks/internal/engine"
	"github.com/talgya/hexworks/internal/persistence"
	"github.com/talgya/hexworks/internal/render"
	"github.com/talgya/hexworks/internal/world"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or Generate World ───────────────────────────────────────
	// A saved world regenerates unrealized terrain from its own seed.
	genCfg := cfg.World
	seed, saved, err := db.SavedSeed()
	if err != nil {
		slog.Error("failed to read saved seed", "error", err)
		os.Exit(1)
	}
	if saved {
		genCfg.Seed = seed
	}
	gen := world.NewGenerator(genCfg)

	sim, err := db.LoadWorldState(gen, cfg.Rules)
	switch {
	case errors.Is(err, persistence.ErrNoSave):
		slog.Info("no saved world, starting a new game", "seed", gen.Seed())
		sim, err = engine.NewGame(gen, cfg.Rules)
		if err != nil {
			slog.Error("failed to start game", "error", err)
			os.Exit(1)
		}
		sim.Seed = gen.Seed()
		for _, c := range sim.Cells.Chunks() {
			slog.Info("starting terrain", "chunk", c.Key, "wood", world.WoodCounts(c))
		}
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	case err != nil:
		slog.Error("failed to load world", "error", err)
		os.Exit(1)
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine(sim)
	eng.Interval = cfg.TurnInterval
	eng.SaveEvery = cfg.SaveEvery
	eng.OnSave = db.SaveWorldState
	eng.OnTurn = func(r engine.TurnReport) {
		slog.Debug("turn ended", "turn", r.Turn, "visited", r.Visited, "refunded", r.Refunded, "duration", r.Duration)
		if len(r.Errors) > 0 {
			slog.Warn("turn had cell errors", "turn", r.Turn, "count", len(r.Errors))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Render Pipeline ──────────────────────────────────────────────
	pipeline, err := render.NewPipeline(cfg.AssetCache, cfg.AssetQueue)
	if err != nil {
		slog.Error("failed to create render pipeline", "error", err)
		os.Exit(1)
	}
	go pipeline.Run(ctx)

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("HEXWORKS_ADMIN_KEY not set; admin POST endpoints are disabled")
	}
	apiServer := &api.Server{
		Eng:      eng,
		DB:       db,
		Render:   pipeline,
		Port:     cfg.Port,
		AdminKey: cfg.AdminKey,

		ReadsPerMinute:    cfg.ReadsPerMinute,
		CommandsPerMinute: cfg.CommandsPerMinute,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	fmt.Printf("\nhexworks world %s at turn %d.\n", sim.ID, sim.Turn)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	if cfg.TurnInterval > 0 {
		fmt.Printf("Autoplay every %s (Ctrl+C to stop)\n", cfg.TurnInterval)
	} else {
		fmt.Println("Paused; end turns via POST /api/v1/end-turn (Ctrl+C to stop)")
	}

	eng.Run(ctx)

	// Final save on shutdown.
	slog.Info("final save...")
	err = eng.Do(func(sim *engine.Simulation) error {
		return db.SaveWorldState(sim)
	})
	if err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Server stopped. World state saved.")
}
