package systems

import (
	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/config"
)

// Decay removes one tick of upkeep from a's energy. Evasion costs energy;
// bears pay a flat 1.
func Decay(a *components.Agent, cfg *config.Config) {
	a.Energy -= 1 + a.Evasion()*cfg.Genetics.EvasionEffect/10
}

// Age advances a's age by one tick. Appetite speeds aging up.
func Age(a *components.Agent, cfg *config.Config) {
	a.Age += 1 + a.Appetite()*cfg.Genetics.AppetiteEffect/10
}

// IsDead reports whether a has reached its species' max age or starved.
func IsDead(a *components.Agent, cfg *config.Config) bool {
	return a.Age >= Params(cfg, a.Species).MaxAge || a.Energy <= 0
}

// EndTurn ages and decays a. Death is only checked at the start of a turn.
func EndTurn(a *components.Agent, cfg *config.Config) {
	Age(a, cfg)
	Decay(a, cfg)
}
