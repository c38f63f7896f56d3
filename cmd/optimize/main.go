// Command optimize searches for simulation parameters that keep foxes and
// rabbits coexisting for as long as possible, using CMA-ES.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/warren/config"
)

// discardLogger silences per-run engine logging.
var discardLogger = slog.New(slog.DiscardHandler)

// Output file names inside the output directory.
const (
	logFileName    = "optimize_log.csv"
	configFileName = "best_config.yaml"
)

type options struct {
	configPath    string
	outputDir     string
	maxTicks      int
	bearDropEvery int
	seeds         int
	maxEvals      int
	population    int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.IntVar(&opts.maxTicks, "max-ticks", 2000, "Maximum generations per run (cap)")
	flag.IntVar(&opts.bearDropEvery, "bear-drop-every", 0, "Drop bear_spawn_count bears every N generations (0 = never)")
	flag.IntVar(&opts.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(opts); err != nil {
		slog.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.outputDir == "" {
		return errors.New("-output is required")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	params := NewParamVector()
	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, opts.maxTicks, opts.bearDropEvery, seeds, baseCfg)

	evalLog, err := newEvalLog(filepath.Join(opts.outputDir, logFileName), params)
	if err != nil {
		return err
	}
	defer evalLog.Close()

	popSize := opts.population
	if popSize == 0 {
		popSize = 4 + int(3*math.Log(float64(params.Dim())))
	}

	best := math.Inf(1)
	var bestParams []float64
	start := time.Now()

	// CMA-ES works in the unit cube; each parameter is mapped back to its range.
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			values := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(values)
			quality := evaluator.LastQuality()

			if fitness < best {
				best = fitness
				bestParams = values
			}
			n := evalLog.Record(fitness, quality, values)

			elapsed := time.Since(start)
			eta := time.Duration(opts.maxEvals-n) * (elapsed / time.Duration(n))
			slog.Info("evaluation",
				"eval", n,
				"of", opts.maxEvals,
				"survival", -fitness/(1+0.2*quality),
				"quality", quality,
				"best", best,
				"elapsed", formatDuration(elapsed),
				"eta", formatDuration(eta),
			)
			return fitness
		},
	}

	slog.Info("starting CMA-ES",
		"params", params.Dim(),
		"population", popSize,
		"max_evals", opts.maxEvals,
		"seeds", opts.seeds,
		"max_ticks", opts.maxTicks,
	)

	result, err := optimize.Minimize(problem,
		params.Normalize(params.ExtractFromConfig(baseCfg)),
		&optimize.Settings{FuncEvaluations: opts.maxEvals},
		&optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize},
	)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if bestParams == nil {
		if result == nil {
			return errors.New("no evaluation completed")
		}
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	attrs := []any{"evaluations", evalLog.Count(), "elapsed", formatDuration(time.Since(start)), "best", best}
	for i, spec := range params.Specs {
		attrs = append(attrs, spec.Name, bestParams[i])
	}
	slog.Info("optimization complete", attrs...)

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, bestParams)
	path := filepath.Join(opts.outputDir, configFileName)
	if err := bestCfg.WriteYAML(path); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	slog.Info("best config saved", "path", path)
	return nil
}

// evalLog appends one CSV row per evaluation. The columns depend on the
// parameter set, so rows are written field by field.
type evalLog struct {
	f *os.File
	w *csv.Writer
	n int
}

func newEvalLog(path string, params *ParamVector) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating eval log: %w", err)
	}
	l := &evalLog{f: f, w: csv.NewWriter(f)}

	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := l.w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing eval log header: %w", err)
	}
	return l, nil
}

// Record writes one evaluation and returns the evaluation count so far.
func (l *evalLog) Record(fitness, quality float64, values []float64) int {
	l.n++
	row := []string{
		strconv.Itoa(l.n),
		strconv.FormatFloat(fitness, 'f', 6, 64),
		strconv.FormatFloat(quality, 'f', 6, 64),
	}
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := l.w.Write(row); err != nil {
		slog.Error("failed to write eval log", "error", err)
	}
	l.w.Flush()
	return l.n
}

// Count returns the number of recorded evaluations.
func (l *evalLog) Count() int {
	return l.n
}

func (l *evalLog) Close() error {
	l.w.Flush()
	return l.f.Close()
}

// formatDuration formats a duration as 1h02m03s, or 2m03s when under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
