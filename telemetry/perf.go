package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase is one stage of a generation, in execution order.
type Phase uint8

const (
	PhaseBears Phase = iota
	PhaseFoxes
	PhaseRabbits
	PhaseGrass
	PhaseTelemetry
	NumPhases
)

func (p Phase) String() string {
	switch p {
	case PhaseBears:
		return "bears"
	case PhaseFoxes:
		return "foxes"
	case PhaseRabbits:
		return "rabbits"
	case PhaseGrass:
		return "grass"
	case PhaseTelemetry:
		return "telemetry"
	default:
		return "unknown"
	}
}

// tickSample is the timing of one generation.
type tickSample struct {
	total  time.Duration
	phases [NumPhases]time.Duration
	turns  int // agent turns started
}

// PerfCollector times generations and their phases over a ring of the most
// recent ticks. It is not safe for concurrent use.
type PerfCollector struct {
	ring []tickSample
	next int
	n    int

	cur        tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
}

// NewPerfCollector keeps the last window ticks.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 1
	}
	return &PerfCollector{ring: make([]tickSample, window)}
}

// StartTick begins timing a new generation.
func (p *PerfCollector) StartTick() {
	p.cur = tickSample{}
	p.tickStart = time.Now()
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// CountTurns adds n agent turns to the running tick.
func (p *PerfCollector) CountTurns(n int) {
	p.cur.turns += n
}

// EndTick records the running tick.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.inPhase = false
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.n < len(p.ring) {
		p.n++
	}
}

// PerfStats summarises the ticks currently held by a PerfCollector.
type PerfStats struct {
	Ticks int

	MeanTick time.Duration
	P50Tick  time.Duration
	P90Tick  time.Duration
	MaxTick  time.Duration

	// Share of total tick time spent in each phase, in [0,1].
	PhaseShare [NumPhases]float64

	TicksPerSecond float64
	TurnsPerSecond float64
}

// Stats aggregates the recorded ticks.
func (p *PerfCollector) Stats() PerfStats {
	if p.n == 0 {
		return PerfStats{}
	}

	totals := make([]float64, p.n)
	var phaseSum [NumPhases]time.Duration
	var elapsed time.Duration
	turns := 0
	for i, s := range p.ring[:p.n] {
		totals[i] = float64(s.total)
		elapsed += s.total
		turns += s.turns
		for ph, d := range s.phases {
			phaseSum[ph] += d
		}
	}
	sort.Float64s(totals)

	stats := PerfStats{
		Ticks:    p.n,
		MeanTick: time.Duration(stat.Mean(totals, nil)),
		P50Tick:  time.Duration(stat.Quantile(0.5, stat.Empirical, totals, nil)),
		P90Tick:  time.Duration(stat.Quantile(0.9, stat.Empirical, totals, nil)),
		MaxTick:  time.Duration(totals[len(totals)-1]),
	}
	if elapsed > 0 {
		for ph, d := range phaseSum {
			stats.PhaseShare[ph] = float64(d) / float64(elapsed)
		}
		stats.TicksPerSecond = float64(p.n) / elapsed.Seconds()
		stats.TurnsPerSecond = float64(turns) / elapsed.Seconds()
	}
	return stats
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Int64("mean_tick_us", s.MeanTick.Microseconds()),
		slog.Int64("p90_tick_us", s.P90Tick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
		slog.Float64("turns_per_sec", s.TurnsPerSecond),
	}
	for ph := Phase(0); ph < NumPhases; ph++ {
		attrs = append(attrs, slog.Float64(ph.String()+"_pct", 100*s.PhaseShare[ph]))
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the stats at Info.
func (s PerfStats) LogStats(l *slog.Logger) {
	l.Info("perf", "stats", s)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int     `csv:"window_end"`
	Ticks        int     `csv:"ticks"`
	MeanTickUS   int64   `csv:"mean_tick_us"`
	P50TickUS    int64   `csv:"p50_tick_us"`
	P90TickUS    int64   `csv:"p90_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	TurnsPerSec  float64 `csv:"turns_per_sec"`
	BearsPct     float64 `csv:"bears_pct"`
	FoxesPct     float64 `csv:"foxes_pct"`
	RabbitsPct   float64 `csv:"rabbits_pct"`
	GrassPct     float64 `csv:"grass_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens s into a perf.csv row for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		Ticks:        s.Ticks,
		MeanTickUS:   s.MeanTick.Microseconds(),
		P50TickUS:    s.P50Tick.Microseconds(),
		P90TickUS:    s.P90Tick.Microseconds(),
		MaxTickUS:    s.MaxTick.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		TurnsPerSec:  s.TurnsPerSecond,
		BearsPct:     100 * s.PhaseShare[PhaseBears],
		FoxesPct:     100 * s.PhaseShare[PhaseFoxes],
		RabbitsPct:   100 * s.PhaseShare[PhaseRabbits],
		GrassPct:     100 * s.PhaseShare[PhaseGrass],
		TelemetryPct: 100 * s.PhaseShare[PhaseTelemetry],
	}
}
