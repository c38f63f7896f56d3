// Package population owns agent identity and lifecycle. Agents live as
// entities in an ark ECS world; a dense slot table maps each stable id
// (slot index) to its entity, and a free-id stack holds the empty slots.
package population

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/genetics"
	"github.com/pthm-cable/warren/grid"
)

var (
	// ErrCapacityExhausted is returned by Add when every id is in use.
	ErrCapacityExhausted = errors.New("population capacity exhausted")
	// ErrUnknownSpecies is returned by Add for an unrecognised species tag.
	ErrUnknownSpecies = errors.New("unknown species")
)

// slot is one entry of the id table. An empty slot has live == false.
type slot struct {
	entity ecs.Entity
	live   bool
}

// Registry stores every live agent, keyed by id.
type Registry struct {
	size  int
	world *ecs.World

	agents *ecs.Map1[components.Agent]
	filter *ecs.Filter1[components.Agent]

	slots  []slot
	free   []int // stack; the next id handed out is free[len(free)-1]
	counts [components.NumSpecies]int
}

// NewRegistry creates an empty registry for a size×size grid.
// Capacity is one agent per cell.
func NewRegistry(size int) *Registry {
	r := &Registry{
		size:  size,
		world: ecs.NewWorld(),
		slots: make([]slot, size*size),
		free:  make([]int, size*size),
	}
	r.agents = ecs.NewMap1[components.Agent](r.world)
	r.filter = ecs.NewFilter1[components.Agent](r.world)

	// Lowest id on top of the stack.
	for i := range r.free {
		r.free[i] = len(r.free) - 1 - i
	}
	return r
}

// Cap returns the number of ids the registry can hand out.
func (r *Registry) Cap() int {
	return len(r.slots)
}

// Len returns the number of live agents.
func (r *Registry) Len() int {
	return len(r.slots) - len(r.free)
}

// HasFreeID reports whether Add can succeed.
func (r *Registry) HasFreeID() bool {
	return len(r.free) > 0
}

// FreeIDs returns the unused ids in the order Add will hand them out.
func (r *Registry) FreeIDs() []int {
	out := make([]int, len(r.free))
	for i, id := range r.free {
		out[len(r.free)-1-i] = id
	}
	return out
}

// Add stores a copy of a under the next free id and returns that id.
// a.ID is overwritten.
func (r *Registry) Add(a components.Agent) (int, error) {
	if !a.Species.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownSpecies, a.Species)
	}
	if !a.Coord.In(r.size) {
		return 0, fmt.Errorf("adding %v: %w: %v outside %dx%d grid", a.Species, grid.ErrInvalidCoordinate, a.Coord, r.size, r.size)
	}
	if len(r.free) == 0 {
		return 0, fmt.Errorf("adding %v: %w", a.Species, ErrCapacityExhausted)
	}

	id := r.free[len(r.free)-1]
	r.free = r.free[:len(r.free)-1]

	a.ID = id
	e := r.agents.NewEntity(&a)
	r.slots[id] = slot{entity: e, live: true}
	r.counts[a.Species]++
	return id, nil
}

// Get returns the agent stored under id. The pointer is only valid until
// the next Add or Remove; re-fetch after either.
func (r *Registry) Get(id int) (*components.Agent, bool) {
	if id < 0 || id >= len(r.slots) || !r.slots[id].live {
		return nil, false
	}
	return r.agents.Get(r.slots[id].entity), true
}

// Alive reports whether id currently names a live agent.
func (r *Registry) Alive(id int) bool {
	return id >= 0 && id < len(r.slots) && r.slots[id].live
}

// Remove deletes the agent stored under id and frees the id.
// It reports whether an agent was removed.
func (r *Registry) Remove(id int) bool {
	if !r.Alive(id) {
		return false
	}
	s := r.slots[id]
	species := r.agents.Get(s.entity).Species
	r.world.RemoveEntity(s.entity)
	r.slots[id] = slot{}
	r.free = append(r.free, id)
	r.counts[species]--
	return true
}

// Count returns the number of live agents of species s.
func (r *Registry) Count(s components.Species) int {
	if !s.Valid() {
		return 0
	}
	return r.counts[s]
}

// IDs returns the ids of every live agent of species s in ascending order.
func (r *Registry) IDs(s components.Species) []int {
	out := make([]int, 0, r.Count(s))
	for id, sl := range r.slots {
		if sl.live && r.agents.Get(sl.entity).Species == s {
			out = append(out, id)
		}
	}
	return out
}

// AllIDs returns the ids of every live agent in ascending order.
func (r *Registry) AllIDs() []int {
	out := make([]int, 0, r.Len())
	for id, sl := range r.slots {
		if sl.live {
			out = append(out, id)
		}
	}
	return out
}

// Coords returns the cells of every live agent of species s, in id order.
func (r *Registry) Coords(s components.Species) []grid.Coord {
	out := make([]grid.Coord, 0, r.Count(s))
	for _, sl := range r.slots {
		if !sl.live {
			continue
		}
		if a := r.agents.Get(sl.entity); a.Species == s {
			out = append(out, a.Coord)
		}
	}
	return out
}

// ForEach calls fn for every live agent, in storage order. fn must not add
// or remove agents.
func (r *Registry) ForEach(fn func(a *components.Agent)) {
	query := r.filter.Query()
	for query.Next() {
		fn(query.Get())
	}
}

// Frequencies maps allele value to the share of a species carrying it.
type Frequencies map[float64]float64

// AlleleFrequencies returns, for foxes and rabbits, the proportion of each
// species carrying each allele of each trait. Only alleles present appear.
// Bears carry no genome and are left out.
func (r *Registry) AlleleFrequencies() map[components.Species]map[genetics.Trait]Frequencies {
	counts := make(map[components.Species]map[genetics.Trait]map[float64]int)
	for _, s := range components.Gened {
		counts[s] = make(map[genetics.Trait]map[float64]int)
	}

	r.ForEach(func(a *components.Agent) {
		if !a.Species.HasGenome() || a.Genome == nil {
			return
		}
		for _, t := range genetics.Traits {
			byAllele := counts[a.Species][t]
			if byAllele == nil {
				byAllele = make(map[float64]int)
				counts[a.Species][t] = byAllele
			}
			byAllele[a.Genome.Get(t)]++
		}
	})

	out := make(map[components.Species]map[genetics.Trait]Frequencies, len(counts))
	for s, byTrait := range counts {
		out[s] = make(map[genetics.Trait]Frequencies, len(byTrait))
		total := float64(r.counts[s])
		for t, byAllele := range byTrait {
			f := make(Frequencies, len(byAllele))
			for allele, n := range byAllele {
				f[allele] = float64(n) / total
			}
			out[s][t] = f
		}
	}
	return out
}

// Mean returns the population mean of the allele, or 0 for an empty map.
func (f Frequencies) Mean() float64 {
	var m float64
	for allele, p := range f {
		m += allele * p
	}
	return m
}
