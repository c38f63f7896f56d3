// Package game is the rule engine: it owns the occupancy grid and the
// population registry and advances the ecosystem one generation at a time.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/config"
	"github.com/pthm-cable/warren/genetics"
	"github.com/pthm-cable/warren/grid"
	"github.com/pthm-cable/warren/population"
	"github.com/pthm-cable/warren/rng"
	"github.com/pthm-cable/warren/telemetry"
)

// Options configures a Game beyond the simulation parameters.
type Options struct {
	Seed   int64      // seeds the default source when Source is nil
	Source rng.Source // random source for every draw the engine makes

	Logger      *slog.Logger // defaults to slog.Default()
	LogStats    bool         // log window stats, perf and bookmarks at Info
	StatsWindow int          // generations per stats window; 0 uses the config value

	Output *telemetry.OutputManager // optional CSV output

	OnEvent func(telemetry.Event)       // called for every birth, death, kill, escape and graze
	OnStats func(telemetry.WindowStats) // called at the end of each stats window
}

// Game holds the complete simulation state.
type Game struct {
	cfg *config.Config
	rng rng.Source
	log *slog.Logger

	grid *grid.Grid
	pop  *population.Registry

	generation int

	// Telemetry
	collector *telemetry.Collector
	bookmarks *telemetry.BookmarkDetector
	lifetimes *telemetry.LifetimeTracker
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	logStats  bool
	onEvent   func(telemetry.Event)
	onStats   func(telemetry.WindowStats)
}

// New builds a world from cfg: impassable cells, then foxes, rabbits and
// bears on distinct random free cells, then the initial grass.
func New(cfg *config.Config, opts Options) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	src := opts.Source
	if src == nil {
		src = rng.New(opts.Seed)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	window := opts.StatsWindow
	if window <= 0 {
		window = cfg.Telemetry.StatsWindow
	}

	size := cfg.World.GridSize
	g := &Game{
		cfg:       cfg,
		rng:       src,
		log:       logger,
		grid:      grid.New(size),
		pop:       population.NewRegistry(size),
		collector: telemetry.NewCollector(window),
		bookmarks: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize),
		lifetimes: telemetry.NewLifetimeTracker(),
		perf:      telemetry.NewPerfCollector(window),
		output:    opts.Output,
		logStats:  opts.LogStats,
		onEvent:   opts.OnEvent,
		onStats:   opts.OnStats,
	}

	if err := g.placeImpassable(); err != nil {
		return nil, err
	}
	if err := g.spawnInitialPopulation(); err != nil {
		return nil, err
	}
	if err := g.seedGrass(); err != nil {
		return nil, err
	}

	g.log.Debug("world created",
		"size", size,
		"foxes", g.pop.Count(components.Fox),
		"rabbits", g.pop.Count(components.Rabbit),
		"bears", g.pop.Count(components.Bear),
		"grass", g.grid.CountTerrain(grid.Vegetated),
	)
	return g, nil
}

// Config returns the configuration the game runs with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Generation returns the number of completed ticks.
func (g *Game) Generation() int {
	return g.generation
}

// Size returns the side length of the grid.
func (g *Game) Size() int {
	return g.grid.Size()
}

// ID returns the id of the agent standing on c, or grid.NoAgent.
func (g *Game) ID(c grid.Coord) (int, error) {
	if !c.In(g.grid.Size()) {
		return grid.NoAgent, fmt.Errorf("%w: %v", grid.ErrInvalidCoordinate, c)
	}
	return g.grid.ID(c), nil
}

// Terrain returns the terrain at c.
func (g *Game) Terrain(c grid.Coord) (grid.Terrain, error) {
	if !c.In(g.grid.Size()) {
		return grid.Empty, fmt.Errorf("%w: %v", grid.ErrInvalidCoordinate, c)
	}
	return g.grid.Terrain(c), nil
}

// Agent returns a copy of the agent stored under id.
func (g *Game) Agent(id int) (components.Agent, bool) {
	a, ok := g.pop.Get(id)
	if !ok {
		return components.Agent{}, false
	}
	return *a, true
}

// IDs returns the ids of every live agent of species s in ascending order.
func (g *Game) IDs(s components.Species) []int {
	return g.pop.IDs(s)
}

// Coords returns the cells of every live agent of species s, in id order.
func (g *Game) Coords(s components.Species) []grid.Coord {
	return g.pop.Coords(s)
}

// Count returns the number of live agents of species s.
func (g *Game) Count(s components.Species) int {
	return g.pop.Count(s)
}

// FreeIDs returns the ids available for new agents, in hand-out order.
func (g *Game) FreeIDs() []int {
	return g.pop.FreeIDs()
}

// GrassCells returns the number of vegetated cells.
func (g *Game) GrassCells() int {
	return g.grid.CountTerrain(grid.Vegetated)
}

// AlleleFrequencies returns per-species, per-trait allele proportions for
// foxes and rabbits.
func (g *Game) AlleleFrequencies() map[components.Species]map[genetics.Trait]population.Frequencies {
	return g.pop.AlleleFrequencies()
}

// IsGameOver reports whether foxes or rabbits have died out. Bears do not count.
func (g *Game) IsGameOver() bool {
	return g.pop.Count(components.Fox) == 0 || g.pop.Count(components.Rabbit) == 0
}

// String returns the grid dump: one line per row, "| <id> <terrain> |" per cell.
func (g *Game) String() string {
	return g.grid.String()
}
