package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/config"
	"github.com/pthm-cable/warren/genetics"
	"github.com/pthm-cable/warren/grid"
	"github.com/pthm-cable/warren/population"
	"github.com/pthm-cable/warren/systems"
	"github.com/pthm-cable/warren/telemetry"
)

// emptyConfig returns the default parameters on a size×size grid with no
// initial agents and no grass.
func emptyConfig(size int) *config.Config {
	cfg := config.Default()
	cfg.World.GridSize = size
	cfg.World.GrassSpawnPercent = 0
	cfg.Population.InitialFoxes = 0
	cfg.Population.InitialRabbits = 0
	cfg.Population.InitialBears = 0
	return cfg
}

func newGame(t *testing.T, cfg *config.Config, opts Options) *Game {
	t.Helper()
	g, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

// place adds an agent and overrides its sex, energy and genome.
func place(t *testing.T, g *Game, s components.Species, c grid.Coord, sex components.Sex, energy float64, genome *genetics.Genome) int {
	t.Helper()
	id, err := g.AddAgent(s, c)
	if err != nil {
		t.Fatalf("AddAgent(%v, %v): %v", s, c, err)
	}
	a, _ := g.pop.Get(id)
	a.Sex = sex
	a.Energy = energy
	a.Genome = genome
	return id
}

func genome(appetite, evasion float64) *genetics.Genome {
	g := genetics.New(appetite, evasion)
	return &g
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewInitialPopulation(t *testing.T) {
	cfg := config.Default()
	cfg.World.GridSize = 20
	cfg.World.GrassSpawnPercent = 10
	cfg.Population.InitialFoxes = 100
	cfg.Population.InitialRabbits = 50
	cfg.Population.InitialBears = 0

	g := newGame(t, cfg, Options{Seed: 1})

	if got := g.IDs(components.Fox); !equalInts(got, seq(0, 100)) {
		t.Errorf("fox ids = %v, want 0..99", got)
	}
	if got := g.IDs(components.Rabbit); !equalInts(got, seq(100, 150)) {
		t.Errorf("rabbit ids = %v, want 100..149", got)
	}
	if got := g.Count(components.Bear); got != 0 {
		t.Errorf("bears = %d, want 0", got)
	}
	if got := g.FreeIDs(); !equalInts(got, seq(150, 400)) {
		t.Errorf("free ids = %v, want 150..399", got)
	}
	if got := g.GrassCells(); got != 40 {
		t.Errorf("grass cells = %d, want 40", got)
	}
	if g.Generation() != 0 {
		t.Errorf("generation = %d, want 0", g.Generation())
	}
	if err := g.CheckInvariant(); err != nil {
		t.Errorf("CheckInvariant: %v", err)
	}

	// Fox and rabbit coordinates must be distinct.
	seen := make(map[grid.Coord]bool)
	for _, s := range []components.Species{components.Fox, components.Rabbit} {
		for _, c := range g.Coords(s) {
			if seen[c] {
				t.Fatalf("two agents on %v", c)
			}
			seen[c] = true
		}
	}
}

func TestNewGenomes(t *testing.T) {
	cfg := config.Default()
	cfg.Population.InitialBears = 3
	g := newGame(t, cfg, Options{Seed: 7})

	for _, s := range components.PassOrder {
		for _, id := range g.IDs(s) {
			a, _ := g.Agent(id)
			if s.HasGenome() != (a.Genome != nil) {
				t.Errorf("%v %d: genome present = %v", s, id, a.Genome != nil)
			}
			if a.Energy != systems.Params(cfg, s).FoodInit {
				t.Errorf("%v %d: energy = %g, want food_init", s, id, a.Energy)
			}
		}
	}
	// Bears come after foxes and rabbits.
	if got := g.IDs(components.Bear); !equalInts(got, seq(150, 153)) {
		t.Errorf("bear ids = %v, want 150..152", got)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.World.GridSize = 5 // 150 agents on 25 cells
	if _, err := New(cfg, Options{}); err == nil {
		t.Fatal("New accepted a population larger than the grid")
	}
}

func TestImpassable(t *testing.T) {
	cfg := emptyConfig(10)
	cfg.World.ImpassablePercent = 30
	cfg.World.GrassSpawnPercent = 50
	cfg.Population.InitialFoxes = 10
	cfg.Population.InitialRabbits = 20
	g := newGame(t, cfg, Options{Seed: 3})

	if got := g.grid.CountTerrain(grid.Impassable); got != 30 {
		t.Fatalf("impassable cells = %d, want 30", got)
	}
	rock := make(map[grid.Coord]bool)
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			if tr, _ := g.Terrain(grid.C(x, y)); tr == grid.Impassable {
				rock[grid.C(x, y)] = true
			}
		}
	}

	for i := 0; i < 50; i++ {
		if err := g.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if err := g.CheckInvariant(); err != nil {
			t.Fatalf("generation %d: %v", g.Generation(), err)
		}
	}
	for c := range rock {
		if tr, _ := g.Terrain(c); tr != grid.Impassable {
			t.Errorf("%v changed from impassable to %v", c, tr)
		}
	}
	if got := g.grid.CountTerrain(grid.Impassable); got != 30 {
		t.Errorf("impassable cells after 50 steps = %d, want 30", got)
	}
}

func TestQueriesRejectInvalidCoordinates(t *testing.T) {
	g := newGame(t, emptyConfig(4), Options{Seed: 1})

	for _, c := range []grid.Coord{grid.C(-1, 0), grid.C(0, 4), grid.C(4, 4)} {
		if _, err := g.ID(c); !errors.Is(err, grid.ErrInvalidCoordinate) {
			t.Errorf("ID(%v) err = %v, want ErrInvalidCoordinate", c, err)
		}
		if _, err := g.Terrain(c); !errors.Is(err, grid.ErrInvalidCoordinate) {
			t.Errorf("Terrain(%v) err = %v, want ErrInvalidCoordinate", c, err)
		}
		if _, err := g.AddAgent(components.Fox, c); !errors.Is(err, grid.ErrInvalidCoordinate) {
			t.Errorf("AddAgent(%v) err = %v, want ErrInvalidCoordinate", c, err)
		}
	}

	id, err := g.ID(grid.C(3, 3))
	if err != nil || id != grid.NoAgent {
		t.Errorf("ID on empty cell = %d, %v", id, err)
	}
}

func TestAddAgentErrors(t *testing.T) {
	g := newGame(t, emptyConfig(3), Options{Seed: 1})

	if _, err := g.AddAgent(components.Fox, grid.C(1, 1)); err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	if _, err := g.AddAgent(components.Rabbit, grid.C(1, 1)); !errors.Is(err, ErrCellOccupied) {
		t.Errorf("occupied cell err = %v, want ErrCellOccupied", err)
	}
	if err := g.grid.SetTerrain(grid.C(0, 0), grid.Impassable); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddAgent(components.Rabbit, grid.C(0, 0)); !errors.Is(err, ErrCellOccupied) {
		t.Errorf("impassable cell err = %v, want ErrCellOccupied", err)
	}
	if _, err := g.AddAgent(components.Species(9), grid.C(2, 2)); !errors.Is(err, population.ErrUnknownSpecies) {
		t.Errorf("unknown species err = %v, want ErrUnknownSpecies", err)
	}
}

func TestSpawnRandomBears(t *testing.T) {
	g := newGame(t, emptyConfig(3), Options{Seed: 5})
	place(t, g, components.Fox, grid.C(0, 0), components.Female, 5, genome(0, 0))

	if got := g.SpawnRandomBears(4); got != 4 {
		t.Fatalf("SpawnRandomBears(4) = %d, want 4", got)
	}
	if got := g.Count(components.Bear); got != 4 {
		t.Errorf("bears = %d, want 4", got)
	}
	for _, id := range g.IDs(components.Bear) {
		a, _ := g.Agent(id)
		if a.Genome != nil {
			t.Errorf("bear %d has a genome", id)
		}
		if a.Coord == grid.C(0, 0) {
			t.Errorf("bear %d placed on the fox", id)
		}
	}

	// Only 4 cells remain.
	if got := g.SpawnRandomBears(10); got != 4 {
		t.Errorf("SpawnRandomBears(10) on 4 free cells = %d, want 4", got)
	}
	if got := g.SpawnRandomBears(1); got != 0 {
		t.Errorf("SpawnRandomBears on a full grid = %d, want 0", got)
	}
	if err := g.CheckInvariant(); err != nil {
		t.Errorf("CheckInvariant: %v", err)
	}
}

func TestIsGameOver(t *testing.T) {
	tests := []struct {
		name                  string
		foxes, rabbits, bears int
		want                  bool
	}{
		{"both present", 5, 5, 0, false},
		{"both present with bears", 5, 5, 3, false},
		{"no foxes", 0, 5, 3, true},
		{"no rabbits", 5, 0, 3, true},
		{"only bears", 0, 0, 3, true},
		{"empty", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := emptyConfig(6)
			cfg.Population.InitialFoxes = tt.foxes
			cfg.Population.InitialRabbits = tt.rabbits
			cfg.Population.InitialBears = tt.bears
			g := newGame(t, cfg, Options{Seed: 1})
			if got := g.IsGameOver(); got != tt.want {
				t.Errorf("IsGameOver() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGridDump(t *testing.T) {
	g := newGame(t, emptyConfig(2), Options{Seed: 1})
	place(t, g, components.Fox, grid.C(0, 1), components.Male, 5, genome(0, 0))
	if err := g.grid.SetTerrain(grid.C(1, 0), grid.Vegetated); err != nil {
		t.Fatal(err)
	}
	if err := g.grid.SetTerrain(grid.C(1, 1), grid.Impassable); err != nil {
		t.Fatal(err)
	}

	want := "| -1 V | 0 V |\n| -1 H | -1 M |\n"
	if got := g.String(); got != want {
		t.Errorf("String() =\n%q\nwant\n%q", got, want)
	}
}

func TestCheckInvariantDetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(g *Game)
	}{
		{"dead id on grid", func(g *Game) {
			_ = g.grid.SetOccupant(grid.C(2, 2), 7)
		}},
		{"agent missing from grid", func(g *Game) {
			_ = g.grid.ClearOccupant(grid.C(0, 0))
		}},
		{"coordinate mismatch", func(g *Game) {
			a, _ := g.pop.Get(0)
			a.Coord = grid.C(1, 2)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGame(t, emptyConfig(3), Options{Seed: 1})
			place(t, g, components.Rabbit, grid.C(0, 0), components.Female, 5, genome(0, 0))
			if err := g.CheckInvariant(); err != nil {
				t.Fatalf("clean world: %v", err)
			}
			tt.corrupt(g)
			if err := g.CheckInvariant(); !errors.Is(err, ErrInvariantViolation) {
				t.Errorf("CheckInvariant() = %v, want ErrInvariantViolation", err)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	g := newGame(t, emptyConfig(4), Options{Seed: 1})
	place(t, g, components.Fox, grid.C(0, 0), components.Male, 4, genome(0, 0))
	place(t, g, components.Fox, grid.C(3, 3), components.Female, 6, genome(0, 0))
	place(t, g, components.Rabbit, grid.C(1, 3), components.Female, 9, genome(0, 0))

	s := g.Summary()
	if s.Foxes != 2 || s.Rabbits != 1 || s.Bears != 0 {
		t.Errorf("counts = %d/%d/%d, want 2/1/0", s.Foxes, s.Rabbits, s.Bears)
	}
	if s.FreeIDs != 13 {
		t.Errorf("free ids = %d, want 13", s.FreeIDs)
	}
	if s.MeanEnergy[components.Fox] != 5 {
		t.Errorf("fox energy mean = %g, want 5", s.MeanEnergy[components.Fox])
	}
	if s.GameOver {
		t.Error("game over with foxes and rabbits alive")
	}
}

func TestLogWorldState(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	g := newGame(t, emptyConfig(4), Options{Seed: 1, Logger: logger})
	place(t, g, components.Fox, grid.C(0, 0), components.Male, 4, genome(0, 0))
	place(t, g, components.Rabbit, grid.C(1, 3), components.Female, 9, genome(0, 0))

	buf.Reset()
	g.LogWorldState()

	var rec struct {
		Msg     string
		Summary map[string]any
	}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decoding %q: %v", buf.String(), err)
	}
	if rec.Msg != "world" {
		t.Errorf("msg = %q, want world", rec.Msg)
	}
	if rec.Summary["foxes"] != float64(1) || rec.Summary["rabbits"] != float64(1) {
		t.Errorf("summary = %v, want one fox and one rabbit", rec.Summary)
	}
}

func TestOutputFiles(t *testing.T) {
	dir := t.TempDir()
	om, err := telemetry.NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Telemetry.StatsWindow = 5
	var windows []telemetry.WindowStats
	g := newGame(t, cfg, Options{
		Seed:    11,
		Output:  om,
		OnStats: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	for i := 0; i < 10; i++ {
		if err := g.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	if len(windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(windows))
	}
	if windows[0].WindowEnd != 5 || windows[1].WindowStart != 5 || windows[1].WindowEnd != 10 {
		t.Errorf("window bounds = [%d,%d] [%d,%d]",
			windows[0].WindowStart, windows[0].WindowEnd, windows[1].WindowStart, windows[1].WindowEnd)
	}

	data, err := os.ReadFile(filepath.Join(dir, telemetry.TelemetryFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("telemetry.csv has %d lines, want header + 2 rows", len(lines))
	}
	if !strings.Contains(lines[0], "window_end") {
		t.Errorf("header = %q", lines[0])
	}
}
