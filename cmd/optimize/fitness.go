package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/warren/config"
	"github.com/pthm-cable/warren/game"
	"github.com/pthm-cable/warren/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params        *ParamVector
	maxTicks      int
	bearDropEvery int
	seeds         []int64
	baseConfig    *config.Config

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks, bearDropEvery int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:        params,
		maxTicks:      maxTicks,
		bearDropEvery: bearDropEvery,
		seeds:         seeds,
		baseConfig:    baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survival    int                     // generations before game over, or maxTicks
	windowStats []telemetry.WindowStats // collected via OnStats each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival: longer coexistence = lower (better) fitness.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(cfg, s)
			quality := computeQuality(result.windowStats)
			results[idx] = seedResult{
				fitness: computeFitness(result.survival, quality),
				quality: quality,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until game over or maxTicks.
// cfg is only read, so concurrent runs may share it.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) *runResult {
	result := &runResult{}

	g, err := game.New(cfg, game.Options{
		Seed:   seed,
		Logger: discardLogger,
		OnStats: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		// An invalid parameter set never survives.
		return result
	}

	for !g.IsGameOver() && g.Generation() < fe.maxTicks {
		if fe.bearDropEvery > 0 && g.Generation() > 0 && g.Generation()%fe.bearDropEvery == 0 {
			g.SpawnRandomBears(cfg.Population.BearSpawnCount)
		}
		if err := g.Step(); err != nil {
			break
		}
	}
	result.survival = g.Generation()
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survival × (1.0 + 0.2 × quality))
func computeFitness(survival int, quality float64) float64 {
	return -(float64(survival) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.40
	qualityWeightStability = 0.40
	qualityWeightHunting   = 0.20

	qualityWarmupWindows = 2 // skip first N windows (warmup)
	qualityMinPop        = 3 // exclude windows where either species < this
	targetRabbitsPerFox  = 2.0
)

// computeQuality computes ecosystem quality ∈ [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var ratioSum, huntSum float64
	var ratioCount, huntCount int
	rabbits := make([]float64, 0, len(windows))
	foxes := make([]float64, 0, len(windows))

	for _, w := range windows[qualityWarmupWindows:] {
		if w.Rabbits < qualityMinPop || w.Foxes < qualityMinPop {
			continue
		}
		rabbits = append(rabbits, float64(w.Rabbits))
		foxes = append(foxes, float64(w.Foxes))

		// Population ratio score
		logErr := math.Log(float64(w.Rabbits) / float64(w.Foxes) / targetRabbitsPerFox)
		ratioSum += math.Exp(-logErr * logErr)
		ratioCount++

		// Hunting activity score
		if w.FoxKills+w.Escapes > 0 {
			killsPerFox := float64(w.FoxKills) / float64(w.Foxes)
			huntSum += 0.5*w.HuntSuccess + 0.5*(1-math.Exp(-killsPerFox))
			huntCount++
		}
	}

	if ratioCount == 0 {
		return 0
	}

	ratioScore := ratioSum / float64(ratioCount)

	stabilityScore := 0.0
	if len(rabbits) >= 2 {
		cvR, cvF := cv(rabbits), cv(foxes)
		stabilityScore = math.Exp(-(cvR*cvR + cvF*cvF))
	}

	huntScore := 0.0
	if huntCount > 0 {
		huntScore = huntSum / float64(huntCount)
	}

	return clamp01(qualityWeightRatio*ratioScore +
		qualityWeightStability*stabilityScore +
		qualityWeightHunting*huntScore)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
