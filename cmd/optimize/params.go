package main

import (
	"math"

	"github.com/pthm-cable/warren/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	set func(cfg *config.Config, v float64)
	get func(cfg *config.Config) float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{
				Name: "fox_repro_probability", Path: "species.fox.repro_probability",
				Min: 0.02, Max: 0.6, Default: 0.15,
				set: func(c *config.Config, v float64) { c.Species.Fox.ReproProbability = v },
				get: func(c *config.Config) float64 { return c.Species.Fox.ReproProbability },
			},
			{
				Name: "bear_repro_probability", Path: "species.bear.repro_probability",
				Min: 0, Max: 0.5, Default: 0.1,
				set: func(c *config.Config, v float64) { c.Species.Bear.ReproProbability = v },
				get: func(c *config.Config) float64 { return c.Species.Bear.ReproProbability },
			},
			{
				Name: "grass_spawn_percent", Path: "world.grass_spawn_percent",
				Min: 1, Max: 60, Default: 10,
				set: func(c *config.Config, v float64) { c.World.GrassSpawnPercent = int(math.Round(v)) },
				get: func(c *config.Config) float64 { return float64(c.World.GrassSpawnPercent) },
			},
			{
				Name: "fox_repro_threshold", Path: "species.fox.repro_threshold",
				Min: 2, Max: 10, Default: 8,
				set: func(c *config.Config, v float64) { c.Species.Fox.ReproThreshold = v },
				get: func(c *config.Config) float64 { return c.Species.Fox.ReproThreshold },
			},
		},
	}
}

// unit maps v from [Min,Max] onto [0,1].
func (s ParamSpec) unit(v float64) float64 {
	return (v - s.Min) / (s.Max - s.Min)
}

// scale maps u from [0,1] back onto [Min,Max].
func (s ParamSpec) scale(u float64) float64 {
	return s.Min + u*(s.Max-s.Min)
}

func (s ParamSpec) clamp(v float64) float64 {
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// each applies fn to every spec and its value in v.
func (pv *ParamVector) each(v []float64, fn func(ParamSpec, float64) float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = fn(spec, v[i])
	}
	return out
}

// DefaultVector returns each parameter's default.
func (pv *ParamVector) DefaultVector() []float64 {
	return pv.each(make([]float64, len(pv.Specs)), func(s ParamSpec, _ float64) float64 { return s.Default })
}

// Normalize maps raw values into the unit cube CMA-ES searches.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	return pv.each(raw, ParamSpec.unit)
}

// Denormalize maps unit-cube values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	return pv.each(normalized, ParamSpec.scale)
}

// Clamp pulls every value into its parameter's bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	return pv.each(v, ParamSpec.clamp)
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.get(cfg)
	}
	return out
}
