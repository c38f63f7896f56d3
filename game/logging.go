package game

import (
	"log/slog"

	"github.com/pthm-cable/warren/components"
)

// Summary is a point-in-time census of the world.
type Summary struct {
	Generation int
	Foxes      int
	Rabbits    int
	Bears      int
	GrassCells int
	FreeIDs    int
	GameOver   bool

	MeanEnergy [components.NumSpecies]float64
	MeanAge    [components.NumSpecies]float64
}

// Summary takes a census of the current state.
func (g *Game) Summary() Summary {
	s := Summary{
		Generation: g.generation,
		Foxes:      g.pop.Count(components.Fox),
		Rabbits:    g.pop.Count(components.Rabbit),
		Bears:      g.pop.Count(components.Bear),
		GrassCells: g.GrassCells(),
		FreeIDs:    len(g.pop.FreeIDs()),
		GameOver:   g.IsGameOver(),
	}

	var n [components.NumSpecies]int
	g.pop.ForEach(func(a *components.Agent) {
		n[a.Species]++
		s.MeanEnergy[a.Species] += a.Energy
		s.MeanAge[a.Species] += a.Age
	})
	for i := range n {
		if n[i] > 0 {
			s.MeanEnergy[i] /= float64(n[i])
			s.MeanAge[i] /= float64(n[i])
		}
	}
	return s
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("generation", s.Generation),
		slog.Int("foxes", s.Foxes),
		slog.Int("rabbits", s.Rabbits),
		slog.Int("bears", s.Bears),
		slog.Int("grass_cells", s.GrassCells),
		slog.Int("free_ids", s.FreeIDs),
		slog.Bool("game_over", s.GameOver),
	}
	for _, sp := range components.PassOrder {
		attrs = append(attrs, slog.Group(sp.String(),
			slog.Float64("energy_mean", s.MeanEnergy[sp]),
			slog.Float64("age_mean", s.MeanAge[sp]),
		))
	}
	return slog.GroupValue(attrs...)
}

// LogWorldState logs the current census at Info.
func (g *Game) LogWorldState() {
	g.log.Info("world", "summary", g.Summary())
}
