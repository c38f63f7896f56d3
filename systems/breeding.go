package systems

import (
	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/config"
	"github.com/pthm-cable/warren/genetics"
	"github.com/pthm-cable/warren/rng"
)

// CanReproduce reports whether a is fed enough to breed. Rabbits breed
// whenever they reach the threshold; predators also need a successful draw
// against their species' repro_probability. The draw is only made once the
// threshold is met.
func CanReproduce(a *components.Agent, cfg *config.Config, src rng.Source) bool {
	p := Params(cfg, a.Species)
	if a.Energy < p.ReproThreshold {
		return false
	}
	if a.Species == components.Rabbit {
		return true
	}
	return rng.Bernoulli(src, p.ReproProbability)
}

// ChildGenome returns the genome of a newborn of parent and mate, or nil for
// species that carry none.
func ChildGenome(parent, mate *components.Agent, src rng.Source) *genetics.Genome {
	if !parent.Species.HasGenome() || parent.Genome == nil || mate == nil || mate.Genome == nil {
		return nil
	}
	g := genetics.Inherit(*parent.Genome, *mate.Genome, src)
	return &g
}

// NewbornGenome returns a fresh random genome for species that carry one.
func NewbornGenome(s components.Species, src rng.Source) *genetics.Genome {
	if !s.HasGenome() {
		return nil
	}
	g := genetics.Random(src)
	return &g
}
