package game

import (
	"fmt"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/grid"
	"github.com/pthm-cable/warren/rng"
	"github.com/pthm-cable/warren/systems"
	"github.com/pthm-cable/warren/telemetry"
)

var passPhase = [components.NumSpecies]telemetry.Phase{
	components.Bear:   telemetry.PhaseBears,
	components.Fox:    telemetry.PhaseFoxes,
	components.Rabbit: telemetry.PhaseRabbits,
}

// turn is the scratch state of one agent's step.
type turn struct {
	id     int
	origin grid.Coord

	moved    bool // ate or walked this turn
	lostTurn bool // prey escaped, no free move
	regrow   bool // origin may sprout grass after the turn
	breed    bool
	mateID   int
}

// Step advances the simulation by one generation: every bear, then every
// fox, then every rabbit takes a turn, then each empty unoccupied cell may
// sprout grass. Each species pass acts on the ids alive when the pass starts.
func (g *Game) Step() error {
	g.generation++
	g.perf.StartTick()

	for _, s := range components.PassOrder {
		g.perf.StartPhase(passPhase[s])
		ids := g.pop.IDs(s)
		g.perf.CountTurns(len(ids))
		for _, id := range ids {
			if err := g.stepAgent(id, s); err != nil {
				return fmt.Errorf("generation %d: %v %d: %w", g.generation, s, id, err)
			}
		}
	}

	g.perf.StartPhase(telemetry.PhaseGrass)
	if err := g.growGrass(); err != nil {
		return fmt.Errorf("generation %d: grass: %w", g.generation, err)
	}

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.perf.EndTick()
	return nil
}

// stepAgent runs one agent's turn.
func (g *Game) stepAgent(id int, species components.Species) error {
	a, ok := g.pop.Get(id)
	// Eaten earlier this tick, or the id now belongs to a newborn.
	if !ok || a.Species != species || a.BornTick == g.generation {
		return nil
	}

	if systems.IsDead(a, g.cfg) {
		cause := telemetry.CauseStarvation
		if a.Age >= systems.Params(g.cfg, species).MaxAge {
			cause = telemetry.CauseOldAge
		}
		g.emit(telemetry.NewDeathEvent(g.generation, id, species, cause))
		return g.remove(id, cause)
	}

	t := &turn{
		id:     id,
		origin: a.Coord,
		regrow: species != components.Rabbit,
		mateID: noParent,
	}
	neighbors := t.origin.Neighbors(g.grid.Size())

	var err error
	if species == components.Rabbit {
		err = g.graze(t, neighbors)
	} else {
		err = g.hunt(t, species, neighbors)
	}
	if err != nil {
		return err
	}

	if t.breed && g.pop.HasFreeID() {
		if err := g.giveBirth(t, species); err != nil {
			return err
		}
		if species == components.Rabbit {
			t.regrow = false
		}
	}

	// Re-fetch: births and kills invalidate component pointers.
	a, _ = g.pop.Get(id)
	systems.EndTurn(a, g.cfg)

	// Grass only sprouts on an origin nobody stands on: not the agent that
	// stayed put, not its newborn.
	if t.regrow && g.grid.ID(t.origin) == grid.NoAgent && g.grassDraw() {
		return g.grid.SetTerrain(t.origin, grid.Vegetated)
	}
	return nil
}

// hunt is the predator turn: attack a random prey neighbor, otherwise walk;
// breed if the predator moved and has a mate nearby.
func (g *Game) hunt(t *turn, species components.Species, neighbors []grid.Coord) error {
	var prey []grid.Coord
	for _, c := range neighbors {
		if other, ok := g.occupant(c); ok && species.Eats(other.Species) {
			prey = append(prey, c)
		}
	}

	if len(prey) > 0 {
		target := prey[rng.Pick(g.rng, len(prey))]
		victim, _ := g.occupant(target)
		if rng.Bernoulli(g.rng, systems.EscapeChance(victim, g.cfg)) {
			g.emit(telemetry.NewEscapeEvent(g.generation, t.id, species, victim.ID, victim.Species))
			t.lostTurn = true
		} else {
			if err := g.kill(t, target); err != nil {
				return err
			}
			t.moved = true
		}
	}

	free := g.freeAmong(neighbors)
	mates := g.matesAmong(neighbors, t.id)

	if !t.moved && !t.lostTurn && len(free) > 0 {
		if err := g.move(t.id, t.origin, free[rng.Pick(g.rng, len(free))]); err != nil {
			return err
		}
		t.moved = true
	}

	if t.moved && len(mates) > 0 {
		a, _ := g.pop.Get(t.id)
		if systems.CanReproduce(a, g.cfg, g.rng) {
			t.breed = true
			if species.HasGenome() {
				t.mateID = g.grid.ID(mates[rng.Pick(g.rng, len(mates))])
			}
		}
	}
	return nil
}

// graze is the rabbit turn: eat a random grass neighbor, then breed if a
// mate and a free cell are nearby, then walk if it has not eaten.
func (g *Game) graze(t *turn, neighbors []grid.Coord) error {
	var grass []grid.Coord
	for _, c := range neighbors {
		if g.grid.Terrain(c) == grid.Vegetated && g.grid.ID(c) == grid.NoAgent {
			grass = append(grass, c)
		}
	}

	if len(grass) > 0 {
		target := grass[rng.Pick(g.rng, len(grass))]
		if err := g.grid.SetTerrain(target, grid.Empty); err != nil {
			return err
		}
		if err := g.move(t.id, t.origin, target); err != nil {
			return err
		}
		a, _ := g.pop.Get(t.id)
		gained := systems.Feed(a, components.Rabbit, g.cfg)
		g.emit(telemetry.NewGrazeEvent(g.generation, t.id, gained))
		t.moved = true
		t.regrow = true
	}

	free := g.freeAmong(neighbors)
	mates := g.matesAmong(neighbors, t.id)

	if len(mates) > 0 && len(free) > 0 {
		a, _ := g.pop.Get(t.id)
		if systems.CanReproduce(a, g.cfg, g.rng) {
			t.breed = true
			t.mateID = g.grid.ID(mates[rng.Pick(g.rng, len(mates))])
		}
	}

	if !t.moved && len(free) > 0 {
		if err := g.move(t.id, t.origin, free[rng.Pick(g.rng, len(free))]); err != nil {
			return err
		}
		t.moved = true
		t.regrow = true
	}
	return nil
}

// giveBirth places a newborn on the origin the parent just left.
func (g *Game) giveBirth(t *turn, species components.Species) error {
	parent, _ := g.pop.Get(t.id)
	var mate *components.Agent
	if t.mateID != noParent {
		mate, _ = g.pop.Get(t.mateID)
	}
	genome := systems.ChildGenome(parent, mate, g.rng)

	childID, err := g.spawn(species, t.origin, g.randomSex(), genome, t.id)
	if err != nil {
		return err
	}
	g.emit(telemetry.NewBirthEvent(g.generation, childID, t.id, t.mateID, species))
	return nil
}

// kill removes the prey on target and moves the predator onto its cell.
func (g *Game) kill(t *turn, target grid.Coord) error {
	preyID := g.grid.ID(target)
	prey, _ := g.pop.Get(preyID)
	preySpecies := prey.Species

	if err := g.remove(preyID, telemetry.CauseEaten); err != nil {
		return err
	}
	if err := g.move(t.id, t.origin, target); err != nil {
		return err
	}

	a, _ := g.pop.Get(t.id)
	gained := systems.Feed(a, preySpecies, g.cfg)
	g.emit(telemetry.NewKillEvent(g.generation, t.id, a.Species, preyID, preySpecies, gained))
	return nil
}

// move relocates agent id from one cell to another.
func (g *Game) move(id int, from, to grid.Coord) error {
	if err := g.grid.SetOccupant(to, id); err != nil {
		return err
	}
	if err := g.grid.ClearOccupant(from); err != nil {
		return err
	}
	a, _ := g.pop.Get(id)
	a.Coord = to
	return nil
}

// occupant returns the agent standing on c, if any.
func (g *Game) occupant(c grid.Coord) (*components.Agent, bool) {
	id, ok := g.grid.Occupant(c)
	if !ok {
		return nil, false
	}
	return g.pop.Get(id)
}

func (g *Game) freeAmong(cells []grid.Coord) []grid.Coord {
	var out []grid.Coord
	for _, c := range cells {
		if g.grid.Free(c) {
			out = append(out, c)
		}
	}
	return out
}

// matesAmong returns the cells holding an agent of id's species and the
// opposite sex.
func (g *Game) matesAmong(cells []grid.Coord, id int) []grid.Coord {
	self, _ := g.pop.Get(id)
	species, sex := self.Species, self.Sex
	var out []grid.Coord
	for _, c := range cells {
		if other, ok := g.occupant(c); ok && other.Species == species && other.Sex == sex.Opposite() {
			out = append(out, c)
		}
	}
	return out
}

// grassDraw reports whether a grass-appearance draw succeeds.
func (g *Game) grassDraw() bool {
	return g.rng.Intn(101) < g.cfg.World.GrassSpawnPercent
}

// growGrass gives every unoccupied Empty cell a chance to sprout.
func (g *Game) growGrass() error {
	for _, c := range g.grid.EmptyCells() {
		if g.grid.Terrain(c) != grid.Empty {
			continue
		}
		if g.grassDraw() {
			if err := g.grid.SetTerrain(c, grid.Vegetated); err != nil {
				return err
			}
		}
	}
	return nil
}
