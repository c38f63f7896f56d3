package game

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/grid"
)

// ErrInvariantViolation reports that the grid and the registry disagree.
var ErrInvariantViolation = errors.New("invariant violation")

// CheckInvariant verifies that the grid and the registry describe the same
// world:
//   - every occupied cell names a live agent standing on that cell
//   - every live agent stands on its own cell, and no two share one
//   - an id is either live or in the free pool, never both
//   - per-species counts match the number of live agents
//
// It returns nil, or every violation joined into one error.
func (g *Game) CheckInvariant() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...)))
	}

	size := g.grid.Size()
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			c := grid.C(x, y)
			id, ok := g.grid.Occupant(c)
			if !ok {
				continue
			}
			a, live := g.pop.Get(id)
			if !live {
				fail("cell %v holds dead id %d", c, id)
				continue
			}
			if a.Coord != c {
				fail("cell %v holds id %d which stands on %v", c, id, a.Coord)
			}
		}
	}

	seen := make(map[grid.Coord]int)
	live := 0
	var counts [components.NumSpecies]int
	g.pop.ForEach(func(a *components.Agent) {
		live++
		counts[a.Species]++
		if prev, dup := seen[a.Coord]; dup {
			fail("ids %d and %d share cell %v", prev, a.ID, a.Coord)
		}
		seen[a.Coord] = a.ID
		if !a.Coord.In(size) {
			fail("id %d stands outside the grid at %v", a.ID, a.Coord)
			return
		}
		if got := g.grid.ID(a.Coord); got != a.ID {
			fail("id %d stands on %v but the cell holds %d", a.ID, a.Coord, got)
		}
		if g.grid.Terrain(a.Coord) == grid.Impassable {
			fail("id %d stands on impassable cell %v", a.ID, a.Coord)
		}
	})

	free := g.pop.FreeIDs()
	inPool := make(map[int]bool, len(free))
	for _, id := range free {
		if inPool[id] {
			fail("id %d is in the free pool twice", id)
		}
		inPool[id] = true
		if g.pop.Alive(id) {
			fail("id %d is both live and free", id)
		}
	}
	if all := g.pop.AllIDs(); len(all) != live {
		fail("registry lists %d live ids, walked %d agents", len(all), live)
	}
	if live+len(free) != g.pop.Cap() {
		fail("%d live and %d free ids do not cover %d slots", live, len(free), g.pop.Cap())
	}

	for _, s := range components.PassOrder {
		if got := g.pop.Count(s); got != counts[s] {
			fail("%v count is %d but %d are live", s, got, counts[s])
		}
	}
	if occ := g.grid.OccupiedCount(); occ != live {
		fail("%d occupied cells for %d live agents", occ, live)
	}

	return errors.Join(errs...)
}
