package systems

import (
	"math"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/config"
)

// FoodValue returns the base energy eater gains from one meal of prey.
// Rabbits graze, so prey is ignored for them.
func FoodValue(eater, prey components.Species, cfg *config.Config) float64 {
	if eater == components.Rabbit {
		return cfg.Food.Grass
	}
	if prey == components.Fox {
		return cfg.Food.FoxPrey
	}
	return cfg.Food.RabbitPrey
}

// Feed credits a with one meal and returns the energy actually gained.
// For rabbits prey is ignored (they graze). Foxes always eat rabbits.
func Feed(a *components.Agent, prey components.Species, cfg *config.Config) float64 {
	before := a.Energy
	gain := FoodValue(a.Species, prey, cfg)
	if a.Species != components.Bear {
		gain += appetiteBonus(a, cfg)
	}
	a.Energy = math.Min(a.Energy+gain, EnergyCap(a, cfg))
	return a.Energy - before
}

// EscapeChance is the probability that prey slips away from an attack.
func EscapeChance(prey *components.Agent, cfg *config.Config) float64 {
	return prey.Evasion() / cfg.Genetics.EvasionEffect
}
