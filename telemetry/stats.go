package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of generations.
type WindowStats struct {
	WindowStart int `csv:"-"`
	WindowEnd   int `csv:"window_end"`

	// Population counts at window end
	Foxes      int `csv:"foxes"`
	Rabbits    int `csv:"rabbits"`
	Bears      int `csv:"bears"`
	GrassCells int `csv:"grass_cells"`

	// Events during window
	FoxBirths    int `csv:"fox_births"`
	RabbitBirths int `csv:"rabbit_births"`
	BearBirths   int `csv:"bear_births"`
	FoxDeaths    int `csv:"fox_deaths"`
	RabbitDeaths int `csv:"rabbit_deaths"`
	BearDeaths   int `csv:"bear_deaths"`

	// Hunting
	FoxKills     int     `csv:"fox_kills"`
	BearKills    int     `csv:"bear_kills"`
	FoxesEaten   int     `csv:"foxes_eaten"`
	RabbitsEaten int     `csv:"rabbits_eaten"`
	Escapes      int     `csv:"escapes"`
	HuntSuccess  float64 `csv:"hunt_success"`
	Grazes       int     `csv:"grazes"`

	// Energy distribution (sampled at window end)
	FoxEnergyMean float64 `csv:"fox_energy_mean"`
	FoxEnergyP10  float64 `csv:"fox_energy_p10"`
	FoxEnergyP50  float64 `csv:"fox_energy_p50"`
	FoxEnergyP90  float64 `csv:"fox_energy_p90"`

	RabbitEnergyMean float64 `csv:"rabbit_energy_mean"`
	RabbitEnergyP10  float64 `csv:"rabbit_energy_p10"`
	RabbitEnergyP50  float64 `csv:"rabbit_energy_p50"`
	RabbitEnergyP90  float64 `csv:"rabbit_energy_p90"`

	BearEnergyMean float64 `csv:"bear_energy_mean"`
	BearEnergyP10  float64 `csv:"bear_energy_p10"`
	BearEnergyP50  float64 `csv:"bear_energy_p50"`
	BearEnergyP90  float64 `csv:"bear_energy_p90"`

	// Allele distribution
	FoxAppetiteMean    float64 `csv:"fox_appetite_mean"`
	FoxAppetiteStd     float64 `csv:"fox_appetite_std"`
	FoxEvasionMean     float64 `csv:"fox_evasion_mean"`
	FoxEvasionStd      float64 `csv:"fox_evasion_std"`
	RabbitAppetiteMean float64 `csv:"rabbit_appetite_mean"`
	RabbitAppetiteStd  float64 `csv:"rabbit_appetite_std"`
	RabbitEvasionMean  float64 `csv:"rabbit_evasion_mean"`
	RabbitEvasionStd   float64 `csv:"rabbit_evasion_std"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// ComputeAlleleStats returns the mean and sample standard deviation of
// allele values. The deviation is 0 for fewer than two values.
func ComputeAlleleStats(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStart),
		slog.Int("window_end", s.WindowEnd),
		slog.Int("foxes", s.Foxes),
		slog.Int("rabbits", s.Rabbits),
		slog.Int("bears", s.Bears),
		slog.Int("grass_cells", s.GrassCells),
		slog.Int("fox_births", s.FoxBirths),
		slog.Int("rabbit_births", s.RabbitBirths),
		slog.Int("bear_births", s.BearBirths),
		slog.Int("fox_deaths", s.FoxDeaths),
		slog.Int("rabbit_deaths", s.RabbitDeaths),
		slog.Int("bear_deaths", s.BearDeaths),
		slog.Int("fox_kills", s.FoxKills),
		slog.Int("bear_kills", s.BearKills),
		slog.Int("escapes", s.Escapes),
		slog.Float64("hunt_success", s.HuntSuccess),
		slog.Int("grazes", s.Grazes),
		slog.Float64("fox_energy_mean", s.FoxEnergyMean),
		slog.Float64("rabbit_energy_mean", s.RabbitEnergyMean),
		slog.Float64("bear_energy_mean", s.BearEnergyMean),
		slog.Float64("fox_appetite_mean", s.FoxAppetiteMean),
		slog.Float64("fox_evasion_mean", s.FoxEvasionMean),
		slog.Float64("rabbit_appetite_mean", s.RabbitAppetiteMean),
		slog.Float64("rabbit_evasion_mean", s.RabbitEvasionMean),
	)
}

// LogStats logs the window stats using l.
func (s WindowStats) LogStats(l *slog.Logger) {
	l.Info("stats",
		"window_end", s.WindowEnd,
		"foxes", s.Foxes,
		"rabbits", s.Rabbits,
		"bears", s.Bears,
		"grass_cells", s.GrassCells,
		"fox_births", s.FoxBirths,
		"rabbit_births", s.RabbitBirths,
		"fox_deaths", s.FoxDeaths,
		"rabbit_deaths", s.RabbitDeaths,
		"kills", s.FoxKills+s.BearKills,
		"escapes", s.Escapes,
		"hunt_success", s.HuntSuccess,
		"fox_energy_p50", s.FoxEnergyP50,
		"rabbit_energy_p50", s.RabbitEnergyP50,
		"fox_appetite_mean", s.FoxAppetiteMean,
		"rabbit_evasion_mean", s.RabbitEvasionMean,
	)
}
