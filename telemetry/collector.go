package telemetry

import (
	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/genetics"
)

// Collector accumulates events within generation windows and produces WindowStats.
type Collector struct {
	window int

	// Current window tracking
	windowStart int

	// Event counters for current window
	births    [components.NumSpecies]int
	deaths    [components.NumSpecies]int
	foxKills  int
	bearKills int
	escapes   int
	grazes    int
	eaten     [components.NumSpecies]int
}

// NewCollector creates a collector that flushes every window generations.
func NewCollector(window int) *Collector {
	if window < 1 {
		window = 1
	}
	return &Collector{window: window}
}

// Record counts e in the current window.
func (c *Collector) Record(e Event) {
	switch e.Type {
	case EventBirth:
		c.births[e.Species]++
	case EventDeath:
		c.deaths[e.Species]++
	case EventKill:
		if e.Species == components.Bear {
			c.bearKills++
		} else {
			c.foxKills++
		}
		c.eaten[e.OtherSpecies]++
	case EventEscape:
		c.escapes++
	case EventGraze:
		c.grazes++
	}
}

// ShouldFlush returns true if enough generations have passed to flush the window.
func (c *Collector) ShouldFlush(generation int) bool {
	return generation-c.windowStart >= c.window
}

// Sample is the population state measured at the end of a window.
type Sample struct {
	Counts     [components.NumSpecies]int
	Energies   [components.NumSpecies][]float64
	Alleles    [components.NumSpecies][genetics.NumTraits][]float64
	GrassCells int
}

// Add records one agent in the sample.
func (s *Sample) Add(a *components.Agent) {
	s.Counts[a.Species]++
	s.Energies[a.Species] = append(s.Energies[a.Species], a.Energy)
	if a.Genome != nil {
		for _, t := range genetics.Traits {
			s.Alleles[a.Species][t] = append(s.Alleles[a.Species][t], a.Genome.Get(t))
		}
	}
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(generation int, s Sample) WindowStats {
	kills := c.foxKills + c.bearKills
	var huntSuccess float64
	if attempts := kills + c.escapes; attempts > 0 {
		huntSuccess = float64(kills) / float64(attempts)
	}

	stats := WindowStats{
		WindowStart: c.windowStart,
		WindowEnd:   generation,

		Foxes:      s.Counts[components.Fox],
		Rabbits:    s.Counts[components.Rabbit],
		Bears:      s.Counts[components.Bear],
		GrassCells: s.GrassCells,

		FoxBirths:    c.births[components.Fox],
		RabbitBirths: c.births[components.Rabbit],
		BearBirths:   c.births[components.Bear],
		FoxDeaths:    c.deaths[components.Fox],
		RabbitDeaths: c.deaths[components.Rabbit],
		BearDeaths:   c.deaths[components.Bear],

		FoxKills:     c.foxKills,
		BearKills:    c.bearKills,
		FoxesEaten:   c.eaten[components.Fox],
		RabbitsEaten: c.eaten[components.Rabbit],
		Escapes:      c.escapes,
		HuntSuccess:  huntSuccess,
		Grazes:       c.grazes,
	}

	stats.FoxEnergyMean, stats.FoxEnergyP10, stats.FoxEnergyP50, stats.FoxEnergyP90 = ComputeEnergyStats(s.Energies[components.Fox])
	stats.RabbitEnergyMean, stats.RabbitEnergyP10, stats.RabbitEnergyP50, stats.RabbitEnergyP90 = ComputeEnergyStats(s.Energies[components.Rabbit])
	stats.BearEnergyMean, stats.BearEnergyP10, stats.BearEnergyP50, stats.BearEnergyP90 = ComputeEnergyStats(s.Energies[components.Bear])

	stats.FoxAppetiteMean, stats.FoxAppetiteStd = ComputeAlleleStats(s.Alleles[components.Fox][genetics.Appetite])
	stats.FoxEvasionMean, stats.FoxEvasionStd = ComputeAlleleStats(s.Alleles[components.Fox][genetics.Evasion])
	stats.RabbitAppetiteMean, stats.RabbitAppetiteStd = ComputeAlleleStats(s.Alleles[components.Rabbit][genetics.Appetite])
	stats.RabbitEvasionMean, stats.RabbitEvasionStd = ComputeAlleleStats(s.Alleles[components.Rabbit][genetics.Evasion])

	// Reset for next window
	c.windowStart = generation
	c.births = [components.NumSpecies]int{}
	c.deaths = [components.NumSpecies]int{}
	c.eaten = [components.NumSpecies]int{}
	c.foxKills = 0
	c.bearKills = 0
	c.escapes = 0
	c.grazes = 0

	return stats
}

// Window returns the number of generations per window.
func (c *Collector) Window() int {
	return c.window
}
