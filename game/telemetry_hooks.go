package game

import (
	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/telemetry"
)

// emit feeds one event to the window collector, the lifetime tracker and the
// caller's hook.
func (g *Game) emit(e telemetry.Event) {
	g.collector.Record(e)
	g.lifetimes.Observe(e)
	if g.onEvent != nil {
		g.onEvent(e)
	}
	g.log.Debug(e.Type.String(), "event", e)
}

// retire closes the lifetime record of a departed agent.
func (g *Game) retire(id int, cause telemetry.DeathCause) {
	s := g.lifetimes.Remove(id, g.generation, cause.String())
	if s == nil || g.output == nil {
		return
	}
	if err := g.output.WriteLifetime(s); err != nil {
		g.log.Error("failed to write lifetime", "id", id, "error", err)
	}
}

// sample measures the population at the end of a window.
func (g *Game) sample() telemetry.Sample {
	var s telemetry.Sample
	g.pop.ForEach(func(a *components.Agent) {
		s.Add(a)
	})
	s.GrassCells = g.GrassCells()
	return s
}

// flushTelemetry closes the stats window when it is due and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.generation) {
		return
	}

	stats := g.collector.Flush(g.generation, g.sample())
	perfStats := g.perf.Stats()

	if g.onStats != nil {
		g.onStats(stats)
	}

	if g.logStats {
		stats.LogStats(g.log)
		perfStats.LogStats(g.log)
	}

	if g.output != nil {
		if err := g.output.WriteTelemetry(stats); err != nil {
			g.log.Error("failed to write telemetry", "error", err)
		}
		if err := g.output.WritePerf(perfStats, stats.WindowEnd); err != nil {
			g.log.Error("failed to write perf", "error", err)
		}
		records := telemetry.AlleleRecords(g.generation, g.pop.AlleleFrequencies())
		if err := g.output.WriteAlleles(records); err != nil {
			g.log.Error("failed to write alleles", "error", err)
		}
	}

	for _, bm := range g.bookmarks.Check(stats) {
		if g.logStats {
			bm.LogBookmark(g.log)
		}
		if g.output != nil {
			if err := g.output.WriteBookmark(bm); err != nil {
				g.log.Error("failed to write bookmark", "error", err)
			}
		}
	}
}
