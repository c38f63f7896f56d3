package game

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/genetics"
	"github.com/pthm-cable/warren/grid"
	"github.com/pthm-cable/warren/population"
	"github.com/pthm-cable/warren/systems"
	"github.com/pthm-cable/warren/telemetry"
)

// ErrCellOccupied is returned by AddAgent for a cell an agent cannot enter.
var ErrCellOccupied = errors.New("cell not free")

// noParent marks founders and dropped-in bears in lifetime records.
const noParent = -1

// pickDistinct removes and returns n random cells from cells.
func (g *Game) pickDistinct(cells []grid.Coord, n int) []grid.Coord {
	if n > len(cells) {
		n = len(cells)
	}
	out := make([]grid.Coord, 0, n)
	for i := 0; i < n; i++ {
		j := g.rng.Intn(len(cells))
		out = append(out, cells[j])
		last := len(cells) - 1
		cells[j] = cells[last]
		cells = cells[:last]
	}
	return out
}

// placeImpassable turns impassable_percent of the cells to rock.
func (g *Game) placeImpassable() error {
	n := g.cfg.World.ImpassablePercent * g.grid.Cells() / 100
	for _, c := range g.pickDistinct(g.grid.FreeCells(), n) {
		if err := g.grid.SetTerrain(c, grid.Impassable); err != nil {
			return err
		}
	}
	return nil
}

// spawnInitialPopulation places foxes, then rabbits, then bears, so fox
// ids come first.
func (g *Game) spawnInitialPopulation() error {
	p := g.cfg.Population
	batches := []struct {
		species components.Species
		n       int
	}{
		{components.Fox, p.InitialFoxes},
		{components.Rabbit, p.InitialRabbits},
		{components.Bear, p.InitialBears},
	}
	for _, b := range batches {
		for i := 0; i < b.n; i++ {
			c, err := g.grid.RandomFree(g.rng)
			if err != nil {
				return fmt.Errorf("placing %v: %w", b.species, err)
			}
			if _, err := g.spawn(b.species, c, g.randomSex(), systems.NewbornGenome(b.species, g.rng), noParent); err != nil {
				return err
			}
		}
	}
	return nil
}

// seedGrass vegetates grass_spawn_percent of the grid, occupied or not.
func (g *Game) seedGrass() error {
	var cells []grid.Coord
	for x := 0; x < g.grid.Size(); x++ {
		for y := 0; y < g.grid.Size(); y++ {
			c := grid.C(x, y)
			if g.grid.Terrain(c) != grid.Impassable {
				cells = append(cells, c)
			}
		}
	}
	n := g.cfg.World.GrassSpawnPercent * g.grid.Cells() / 100
	for _, c := range g.pickDistinct(cells, n) {
		if err := g.grid.SetTerrain(c, grid.Vegetated); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) randomSex() components.Sex {
	return components.Sex(g.rng.Intn(2))
}

// spawn creates an agent of species s on c and records it on the grid.
// The caller guarantees c is free (or the vacated origin of a parent).
func (g *Game) spawn(s components.Species, c grid.Coord, sex components.Sex, genome *genetics.Genome, parentID int) (int, error) {
	id, err := g.pop.Add(components.Agent{
		Species:  s,
		Coord:    c,
		Sex:      sex,
		Energy:   systems.Params(g.cfg, s).FoodInit,
		Genome:   genome,
		BornTick: g.generation,
	})
	if err != nil {
		return 0, err
	}
	if err := g.grid.SetOccupant(c, id); err != nil {
		g.pop.Remove(id)
		return 0, err
	}
	a, _ := g.pop.Get(id)
	g.lifetimes.Register(a, parentID)
	return id, nil
}

// AddAgent places a new agent of species s on the free cell c with a
// random sex and, for gened species, a random genome.
func (g *Game) AddAgent(s components.Species, c grid.Coord) (int, error) {
	if !c.In(g.grid.Size()) {
		return 0, fmt.Errorf("adding %v: %w: %v", s, grid.ErrInvalidCoordinate, c)
	}
	if !g.grid.Free(c) {
		return 0, fmt.Errorf("adding %v at %v: %w", s, c, ErrCellOccupied)
	}
	if !s.Valid() {
		return 0, fmt.Errorf("%w: %d", population.ErrUnknownSpecies, s)
	}
	return g.spawn(s, c, g.randomSex(), systems.NewbornGenome(s, g.rng), noParent)
}

// SpawnRandomBears drops up to count bears on random free cells and returns
// how many were placed. It stops early once ids or free cells run out.
func (g *Game) SpawnRandomBears(count int) int {
	placed := 0
	for ; placed < count; placed++ {
		if !g.pop.HasFreeID() {
			break
		}
		c, err := g.grid.RandomFree(g.rng)
		if err != nil {
			break
		}
		if _, err := g.spawn(components.Bear, c, g.randomSex(), nil, noParent); err != nil {
			break
		}
	}
	if placed > 0 {
		g.log.Debug("bears dropped", "count", placed, "generation", g.generation)
	}
	return placed
}

// remove deletes agent id from the registry and the grid and closes its
// lifetime record.
func (g *Game) remove(id int, cause telemetry.DeathCause) error {
	a, ok := g.pop.Get(id)
	if !ok {
		return nil
	}
	c := a.Coord
	g.pop.Remove(id)
	if err := g.grid.ClearOccupant(c); err != nil {
		return err
	}
	g.retire(id, cause)
	return nil
}
