// Package components defines the agent record stored in the population registry.
package components

import (
	"fmt"

	"github.com/pthm-cable/warren/genetics"
	"github.com/pthm-cable/warren/grid"
)

// Species tags the three agent variants.
type Species uint8

const (
	Bear   Species = iota // apex predator, eats foxes and rabbits, no genome
	Fox                   // meso predator, eats rabbits
	Rabbit                // grazer, eats grass
	NumSpecies
)

// PassOrder is the order in which species act during a tick.
var PassOrder = [NumSpecies]Species{Bear, Fox, Rabbit}

// Gened lists the species that carry a genome.
var Gened = []Species{Fox, Rabbit}

func (s Species) String() string {
	switch s {
	case Bear:
		return "bear"
	case Fox:
		return "fox"
	case Rabbit:
		return "rabbit"
	default:
		return fmt.Sprintf("species(%d)", uint8(s))
	}
}

// Valid reports whether s names a known species.
func (s Species) Valid() bool {
	return s < NumSpecies
}

// HasGenome reports whether agents of this species carry a genome.
func (s Species) HasGenome() bool {
	return s == Fox || s == Rabbit
}

// Eats reports whether s preys on other.
func (s Species) Eats(other Species) bool {
	switch s {
	case Bear:
		return other == Fox || other == Rabbit
	case Fox:
		return other == Rabbit
	default:
		return false
	}
}

// Sex is an agent's binary sex.
type Sex uint8

const (
	Female Sex = iota
	Male
)

func (s Sex) String() string {
	if s == Male {
		return "male"
	}
	return "female"
}

// Opposite returns the other sex.
func (s Sex) Opposite() Sex {
	if s == Male {
		return Female
	}
	return Male
}

// Agent is the per-animal state. Genome is nil for bears.
type Agent struct {
	ID       int
	Species  Species
	Coord    grid.Coord
	Sex      Sex
	Age      float64
	Energy   float64
	Genome   *genetics.Genome
	BornTick int // generation the agent was created in
}

// Appetite returns the appetite allele, or 0 without a genome.
func (a *Agent) Appetite() float64 {
	if a.Genome == nil {
		return 0
	}
	return a.Genome.Appetite()
}

// Evasion returns the evasion allele, or 0 without a genome.
func (a *Agent) Evasion() float64 {
	if a.Genome == nil {
		return 0
	}
	return a.Genome.Evasion()
}

func (a *Agent) String() string {
	if a.Genome == nil {
		return fmt.Sprintf("%s#%d@%v age=%.1f energy=%.1f", a.Species, a.ID, a.Coord, a.Age, a.Energy)
	}
	return fmt.Sprintf("%s#%d@%v age=%.1f energy=%.1f genome=%v", a.Species, a.ID, a.Coord, a.Age, a.Energy, *a.Genome)
}
