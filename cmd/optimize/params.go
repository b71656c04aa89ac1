// Package main provides CMA-ES optimization of the evolution settings.
package main

import (
	"math"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/genetics"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Integer bool    // Rounded before use
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the evolution parameters, with defaults taken
// from cfg and clamped into each range.
func NewParamVector(cfg *config.Config) *ParamVector {
	g := cfg.Genetics
	pv := &ParamVector{
		Specs: []ParamSpec{
			{Name: "mutation_rate", Path: "genetics.mutation_rate", Min: 0.0, Max: 1.0, Default: g.MutationRate},
			{Name: "mutation_sigma", Path: "genetics.mutation_sigma", Min: 0.01, Max: 0.5, Default: g.MutationSigma},
			{Name: "crossover_rate", Path: "genetics.crossover_rate", Min: 0.0, Max: 1.0, Default: g.CrossoverRate},
			{Name: "tournament_size", Path: "genetics.tournament_size", Min: 1, Max: 6, Default: float64(g.TournamentSize), Integer: true},
			{Name: "elite_count", Path: "genetics.elite_count", Min: 0, Max: 3, Default: float64(g.EliteCount), Integer: true},
			{Name: "init_jitter", Path: "genetics.init_jitter", Min: 0.0, Max: 0.3, Default: g.InitJitter},
			// Fitness weights steer which behaviour the population rewards
			{Name: "fitness_kills", Path: "genetics.fitness.kills", Min: 0, Max: 50, Default: g.Fitness.Kills},
			{Name: "fitness_damage_taken", Path: "genetics.fitness.damage_taken", Min: 0, Max: 2, Default: g.Fitness.DamageTaken},
		},
	}
	for i := range pv.Specs {
		s := &pv.Specs[i]
		s.Default = min(max(s.Default, s.Min), s.Max)
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds and integer parameters are whole.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := min(max(v[i], spec.Min), spec.Max)
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToSettings returns s with the parameter values applied.
// Order must match Specs order.
func (pv *ParamVector) ApplyToSettings(s genetics.Settings, values []float64) genetics.Settings {
	c := pv.Clamp(values)
	s.MutationRate = c[0]
	s.MutationSigma = c[1]
	s.CrossoverRate = c[2]
	s.TournamentSize = int(c[3])
	s.EliteCount = min(int(c[4]), s.PopulationSize-1)
	s.InitJitter = c[5]
	s.Fitness.Kills = c[6]
	s.Fitness.DamageTaken = c[7]
	return s
}

// ApplyToConfig writes the parameter values into the genetics section.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.Genetics.MutationRate = c[0]
	cfg.Genetics.MutationSigma = c[1]
	cfg.Genetics.CrossoverRate = c[2]
	cfg.Genetics.TournamentSize = int(c[3])
	cfg.Genetics.EliteCount = min(int(c[4]), cfg.Genetics.PopulationSize-1)
	cfg.Genetics.InitJitter = c[5]
	cfg.Genetics.Fitness.Kills = c[6]
	cfg.Genetics.Fitness.DamageTaken = c[7]
}
