package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/genetics"
	"github.com/pthm-cable/arena/telemetry"
	"github.com/pthm-cable/arena/traits"
)

// FitnessEvaluator runs headless battles with Blue on candidate evolution
// settings and Red on the config defaults.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 1.0,
	}
}

// Evaluation is the outcome of one candidate over every seed.
type Evaluation struct {
	Fitness float64 // lower = better for Blue
	Params  []float64
	Battles []BattleReport
	hof     *telemetry.HallOfFame // leaders of the best-scoring battle
}

// battleSink keeps window stats and generation leaders in memory instead
// of writing files.
type battleSink struct {
	windows []telemetry.WindowStats
	hof     *telemetry.HallOfFame
}

func (s *battleSink) ObserveTick(int32, []telemetry.UnitSample) {}

func (s *battleSink) ObserveGeneration(rec telemetry.GenerationRecord) {
	s.hof.Consider(rec)
}

func (s *battleSink) ObserveWindow(stats telemetry.WindowStats, _ telemetry.PerfStats) {
	s.windows = append(s.windows, stats)
}

// Evaluate runs one battle per seed in parallel and scores the candidate.
// x holds raw (denormalized) parameter values.
func (fe *FitnessEvaluator) Evaluate(x []float64) Evaluation {
	clamped := fe.params.Clamp(x)
	battles := make([]BattleReport, len(fe.seeds))
	hofs := make([]*telemetry.HallOfFame, len(fe.seeds))

	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			battles[idx], hofs[idx] = fe.runBattle(clamped, s)
		}(i, seed)
	}
	wg.Wait()

	scores := make([]float64, len(battles))
	best := -1
	for i := range battles {
		scores[i] = battles[i].Score
		if battles[i].Err == "" && (best < 0 || scores[i] < scores[best]) {
			best = i
		}
	}

	// Penalise settings whose outcome depends heavily on the seed
	mean, std := stat.MeanStdDev(scores, nil)
	if math.IsNaN(std) {
		std = 0
	}

	ev := Evaluation{
		Fitness: mean + 0.1*std,
		Params:  clamped,
		Battles: battles,
	}
	if best >= 0 {
		ev.hof = hofs[best]
	}
	return ev
}

// runBattle executes a single headless battle until a base falls or
// maxTicks is reached.
func (fe *FitnessEvaluator) runBattle(x []float64, seed int64) (BattleReport, *telemetry.HallOfFame) {
	report := BattleReport{Seed: seed, Winner: "none"}

	cfg := fe.copyConfig()
	sink := &battleSink{hof: telemetry.NewHallOfFame(10)}
	blue := fe.params.ApplyToSettings(game.GeneticsSettings(cfg), x)

	g, err := game.NewGame(cfg, game.Options{
		Seed:           seed,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Sink:           sink,
		TeamSettings:   map[traits.Team]genetics.Settings{traits.Blue: blue},
	})
	if err != nil {
		report.Err = err.Error()
		report.Score = 1
		return report, nil
	}
	defer g.Unload()

	winner, decided := traits.Blue, false
	for g.Tick() < fe.maxTicks {
		g.Update()
		if winner, decided = g.Winner(); decided {
			report.Winner = winner.String()
			break
		}
	}

	report.Ticks = g.Tick()
	for _, w := range sink.windows {
		report.BlueDamage += w.BlueDamage + w.BlueBaseDamage
		report.RedDamage += w.RedDamage + w.RedBaseDamage
		report.BlueKills += w.BlueKills
		report.RedKills += w.RedKills
	}
	if pop, ok := g.Population(traits.Blue); ok {
		report.BlueGenerations = pop.Generation
	}
	if pop, ok := g.Population(traits.Red); ok {
		report.RedGenerations = pop.Generation
	}
	report.Score = fe.score(decided, winner, report.Ticks, report.DamageShare())
	return report, sink.hof
}

// copyConfig returns a copy of the base config safe to hand to one game.
// Map and slice fields are shared; games only read them.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	// Seeds already run in parallel
	cfg.Pathfinding.Workers = 1
	return &cfg
}

// score maps one battle to [-2, 1] (lower = better for Blue).
// A Blue win scores below -1 and is better the sooner it comes; a loss
// scores 1. Undecided battles fall back to the damage share.
func (fe *FitnessEvaluator) score(decided bool, winner traits.Team, ticks int32, share float64) float64 {
	if decided {
		if winner == traits.Blue {
			speed := 1 - float64(ticks)/float64(fe.maxTicks)
			return -(1 + speed)
		}
		return 1
	}
	return -(2*share - 1)
}
