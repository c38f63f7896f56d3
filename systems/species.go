// Package systems holds the per-species behavior rules: feeding, energy
// decay, aging, death and reproduction eligibility.
package systems

import (
	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/config"
)

// Params returns the constants for species s.
func Params(cfg *config.Config, s components.Species) config.SpeciesConfig {
	switch s {
	case components.Bear:
		return cfg.Species.Bear
	case components.Fox:
		return cfg.Species.Fox
	default:
		return cfg.Species.Rabbit
	}
}

// appetiteBonus is the extra food a gened agent gets per meal.
func appetiteBonus(a *components.Agent, cfg *config.Config) float64 {
	return 5 * a.Appetite() / cfg.Genetics.AppetiteEffect
}

// EnergyCap returns the highest energy a's species can hold after a meal.
// Gened species get twice their appetite bonus on top of max_food.
func EnergyCap(a *components.Agent, cfg *config.Config) float64 {
	p := Params(cfg, a.Species)
	if a.Species == components.Bear {
		return p.MaxFood
	}
	return p.MaxFood + 2*appetiteBonus(a, cfg)
}
