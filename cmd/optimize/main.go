package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/traits"
)

type options struct {
	configPath string
	maxTicks   int
	seeds      int
	maxEvals   int
	population int
	outputDir  string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.IntVar(&opts.maxTicks, "max-ticks", 36000, "Tick cap per battle")
	flag.IntVar(&opts.seeds, "seeds", 3, "Battles (seeds) per candidate")
	flag.IntVar(&opts.maxEvals, "max-evals", 100, "Maximum number of candidates to evaluate")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := run(opts); err != nil {
		slog.Error("optimize failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.outputDir == "" {
		return errors.New("--output is required")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := config.Init(opts.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector(baseCfg)
	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, int32(opts.maxTicks), seeds, baseCfg)

	evlog, err := newEvalLog(opts.outputDir)
	if err != nil {
		return err
	}
	defer evlog.Close()

	// The default settings are the baseline every candidate is compared to
	fmt.Println("Baseline (config defaults):")
	baseline := evaluator.Evaluate(params.DefaultVector())
	printSummary(0, opts.maxEvals, baseline, baseline.Fitness)
	printBreakdown(os.Stdout, baseline)
	if err := evlog.write(0, baseline, params); err != nil {
		return err
	}

	best := baseline
	evals := 0
	start := time.Now()
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			ev := evaluator.Evaluate(params.Denormalize(x))
			evals++
			if ev.Fitness < best.Fitness {
				best = ev
			}
			if err := evlog.write(evals, ev, params); err != nil {
				slog.Error("failed to log evaluation", "eval", evals, "error", err)
			}
			printSummary(evals, opts.maxEvals, ev, best.Fitness)
			if evals%10 == 0 {
				elapsed := time.Since(start)
				eta := time.Duration(opts.maxEvals-evals) * (elapsed / time.Duration(evals))
				fmt.Printf("  elapsed %s, eta %s\n", elapsed.Round(time.Second), eta.Round(time.Second))
			}
			return ev.Fitness
		},
	}

	dim := params.Dim()
	popSize := opts.population
	if popSize == 0 {
		popSize = 4 + int(3*math.Log(float64(dim)))
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}
	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}

	fmt.Printf("\nCMA-ES over %d parameters, population %d, %d candidates, %d battles each (cap %d ticks)\n",
		dim, popSize, opts.maxEvals, opts.seeds, opts.maxTicks)
	if _, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method); err != nil {
		slog.Warn("optimization ended early", "error", err)
	}

	fmt.Printf("\nDone: %d candidates in %s\n", evals, time.Since(start).Round(time.Second))
	fmt.Printf("Best fitness %.3f (baseline %.3f), blue wins %d/%d vs %d/%d, damage share %.2f vs %.2f\n",
		best.Fitness, baseline.Fitness,
		best.Wins(traits.Blue), len(best.Battles), baseline.Wins(traits.Blue), len(baseline.Battles),
		best.DamageShare(), baseline.DamageShare())
	printBreakdown(os.Stdout, best)
	fmt.Println("Best parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %-22s %10.4f  (default %.4f)\n", spec.Path, best.Params[i], spec.Default)
	}

	return saveBest(opts, params, best)
}

// printSummary prints one progress line for an evaluation.
func printSummary(eval, maxEvals int, ev Evaluation, bestFitness float64) {
	fmt.Printf("eval %d/%d fitness=%.3f best=%.3f blue_wins=%.0f%% (red %d) share=%.2f ticks=%.0f\n",
		eval, maxEvals, ev.Fitness, bestFitness,
		ev.WinRate()*100, ev.Wins(traits.Red), ev.DamageShare(), ev.MeanTicks())
}

// saveBest writes best_config.yaml and the hall of fame of the best battle.
func saveBest(opts options, params *ParamVector, best Evaluation) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	params.ApplyToConfig(cfg, best.Params)

	path := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	fmt.Printf("Best config saved to %s\n", path)

	if best.hof == nil {
		return nil
	}
	path = filepath.Join(opts.outputDir, "hall_of_fame.json")
	if err := best.hof.WriteFile(path); err != nil {
		return fmt.Errorf("writing hall of fame: %w", err)
	}
	fmt.Printf("Hall of fame saved to %s\n", path)
	return nil
}
