// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Population PopulationConfig `yaml:"population"`
	Species    SpeciesTable     `yaml:"species"`
	Food       FoodConfig       `yaml:"food"`
	Genetics   GeneticsConfig   `yaml:"genetics"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// WorldConfig holds grid dimensions and terrain generation parameters.
type WorldConfig struct {
	GridSize          int `yaml:"grid_size"`
	GrassSpawnPercent int `yaml:"grass_spawn_percent"` // 0-100
	ImpassablePercent int `yaml:"impassable_percent"`  // 0-100, cells turned to rock at startup
}

// PopulationConfig holds starting populations.
type PopulationConfig struct {
	InitialFoxes   int `yaml:"initial_foxes"`
	InitialRabbits int `yaml:"initial_rabbits"`
	InitialBears   int `yaml:"initial_bears"`
	BearSpawnCount int `yaml:"bear_spawn_count"` // bears per spawn request
}

// SpeciesConfig holds the per-species constants.
type SpeciesConfig struct {
	FoodInit         float64 `yaml:"food_init"`         // energy at birth
	ReproThreshold   float64 `yaml:"repro_threshold"`   // min energy to breed
	MaxFood          float64 `yaml:"max_food"`          // energy cap (before appetite bonus)
	MaxAge           float64 `yaml:"max_age"`           // dies once age reaches this
	ReproProbability float64 `yaml:"repro_probability"` // chance a fed agent breeds
}

// SpeciesTable holds constants for each species.
type SpeciesTable struct {
	Fox    SpeciesConfig `yaml:"fox"`
	Rabbit SpeciesConfig `yaml:"rabbit"`
	Bear   SpeciesConfig `yaml:"bear"`
}

// FoodConfig holds energy gained per meal.
type FoodConfig struct {
	RabbitPrey float64 `yaml:"rabbit_prey"`
	FoxPrey    float64 `yaml:"fox_prey"`
	Grass      float64 `yaml:"grass"`
}

// GeneticsConfig holds the genetic effect coefficients.
type GeneticsConfig struct {
	EvasionEffect  float64 `yaml:"evasion_effect"`
	AppetiteEffect float64 `yaml:"appetite_effect"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // generations per window
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate reports every out-of-range parameter.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	w := c.World
	if w.GridSize <= 0 {
		bad("world.grid_size must be positive, got %d", w.GridSize)
	}
	if w.GrassSpawnPercent < 0 || w.GrassSpawnPercent > 100 {
		bad("world.grass_spawn_percent must be in [0,100], got %d", w.GrassSpawnPercent)
	}
	if w.ImpassablePercent < 0 || w.ImpassablePercent > 100 {
		bad("world.impassable_percent must be in [0,100], got %d", w.ImpassablePercent)
	}

	p := c.Population
	counts := []struct {
		name string
		n    int
	}{
		{"initial_foxes", p.InitialFoxes},
		{"initial_rabbits", p.InitialRabbits},
		{"initial_bears", p.InitialBears},
		{"bear_spawn_count", p.BearSpawnCount},
	}
	for _, cnt := range counts {
		if cnt.n < 0 {
			bad("population.%s must be >= 0, got %d", cnt.name, cnt.n)
		}
	}
	if w.GridSize > 0 {
		cells := w.GridSize * w.GridSize
		open := cells - w.ImpassablePercent*cells/100
		if total := p.InitialFoxes + p.InitialRabbits + p.InitialBears; total > open {
			bad("population: %d initial agents do not fit on %d open cells", total, open)
		}
	}

	species := []struct {
		name string
		s    SpeciesConfig
	}{
		{"fox", c.Species.Fox},
		{"rabbit", c.Species.Rabbit},
		{"bear", c.Species.Bear},
	}
	for _, sp := range species {
		name, s := sp.name, sp.s
		if s.FoodInit <= 0 {
			bad("species.%s.food_init must be positive, got %g", name, s.FoodInit)
		}
		if s.MaxFood <= 0 {
			bad("species.%s.max_food must be positive, got %g", name, s.MaxFood)
		}
		if s.MaxAge <= 0 {
			bad("species.%s.max_age must be positive, got %g", name, s.MaxAge)
		}
		if s.ReproThreshold < 0 {
			bad("species.%s.repro_threshold must be >= 0, got %g", name, s.ReproThreshold)
		}
		if s.ReproProbability < 0 || s.ReproProbability > 1 {
			bad("species.%s.repro_probability must be in [0,1], got %g", name, s.ReproProbability)
		}
	}

	if c.Food.RabbitPrey < 0 || c.Food.FoxPrey < 0 || c.Food.Grass < 0 {
		bad("food gains must be >= 0")
	}
	if c.Genetics.EvasionEffect <= 0 {
		bad("genetics.evasion_effect must be positive, got %g", c.Genetics.EvasionEffect)
	}
	if c.Genetics.AppetiteEffect <= 0 {
		bad("genetics.appetite_effect must be positive, got %g", c.Genetics.AppetiteEffect)
	}
	if c.Telemetry.StatsWindow < 1 {
		bad("telemetry.stats_window must be >= 1, got %d", c.Telemetry.StatsWindow)
	}

	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
