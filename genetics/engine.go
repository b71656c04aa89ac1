package genetics

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/pthm-cable/arena/traits"
)

// Settings holds the tunable evolution parameters.
type Settings struct {
	PopulationSize int
	MutationRate   float64
	MutationSigma  float64 // fraction of a trait's range width
	CrossoverRate  float64
	TournamentSize int
	EliteCount     int
	InitJitter     float64 // half-width of the uniform jitter around the baseline
	Fitness        FitnessWeights
}

// Validate checks the settings for values the engine cannot work with.
func (s Settings) Validate() error {
	switch {
	case s.PopulationSize < 1:
		return fmt.Errorf("population size must be >= 1, got %d", s.PopulationSize)
	case s.TournamentSize < 1:
		return fmt.Errorf("tournament size must be >= 1, got %d", s.TournamentSize)
	case s.EliteCount < 0 || s.EliteCount >= s.PopulationSize:
		return fmt.Errorf("elite count must be in [0, %d), got %d", s.PopulationSize, s.EliteCount)
	case s.MutationRate < 0 || s.MutationRate > 1:
		return fmt.Errorf("mutation rate must be in [0, 1], got %v", s.MutationRate)
	case s.CrossoverRate < 0 || s.CrossoverRate > 1:
		return fmt.Errorf("crossover rate must be in [0, 1], got %v", s.CrossoverRate)
	case s.MutationSigma < 0 || s.InitJitter < 0:
		return fmt.Errorf("mutation sigma and init jitter must be >= 0")
	}
	return nil
}

// Engine maintains one population per team and advances it on demand.
// It is not safe for concurrent use; the simulation step owns it.
type Engine struct {
	rng          *rand.Rand
	settings     Settings
	teamSettings map[traits.Team]Settings
	populations  map[traits.Team]*Population
	credits      map[traits.Team]map[uint64]*credit
	nextID       uint64
}

// NewEngine creates an engine with the given settings and random source.
func NewEngine(settings Settings, rng *rand.Rand) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("genetics settings: %w", err)
	}
	return &Engine{
		rng:          rng,
		settings:     settings,
		teamSettings: make(map[traits.Team]Settings),
		populations:  make(map[traits.Team]*Population),
		credits:      make(map[traits.Team]map[uint64]*credit),
		nextID:       1,
	}, nil
}

// SetTeamSettings overrides the settings used for one team.
func (e *Engine) SetTeamSettings(team traits.Team, s Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("genetics settings for %s: %w", team, err)
	}
	e.teamSettings[team] = s
	return nil
}

// Settings returns the effective settings for a team.
func (e *Engine) Settings(team traits.Team) Settings {
	if s, ok := e.teamSettings[team]; ok {
		return s
	}
	return e.settings
}

func (e *Engine) newID() uint64 {
	id := e.nextID
	e.nextID++
	return id
}

// InitializePopulation seeds a team's population from the template baseline,
// jittering every trait independently. Generation starts at 0.
func (e *Engine) InitializePopulation(team traits.Team, tmpl Template) error {
	if len(tmpl.Baseline) == 0 {
		return fmt.Errorf("initializing %s population from %s: %w", team, tmpl.Archetype, ErrEmptyTemplate)
	}
	s := e.Settings(team)

	var base Genes
	for _, t := range traits.AllTraits {
		v, ok := tmpl.Baseline[t]
		if !ok {
			v = neutralValue(t)
		}
		base.values[t] = v
	}

	pop := &Population{
		Team:        team,
		Archetype:   tmpl.Archetype,
		Bounds:      tmpl.Bounds,
		Individuals: make([]Individual, s.PopulationSize),
	}
	for i := range pop.Individuals {
		g := base
		for _, t := range traits.AllTraits {
			g.values[t] += (e.rng.Float64()*2 - 1) * s.InitJitter
		}
		pop.Individuals[i] = Individual{ID: e.newID(), Genes: tmpl.Bounds.Clamp(g)}
	}

	e.populations[team] = pop
	e.credits[team] = make(map[uint64]*credit)
	return nil
}

// RecordOutcome credits a unit's combat record to the individual it carried.
// Outcomes for individuals no longer in the population are dropped.
func (e *Engine) RecordOutcome(team traits.Team, individualID uint64, o Outcome) {
	pop, ok := e.populations[team]
	if !ok {
		return
	}
	found := false
	for i := range pop.Individuals {
		if pop.Individuals[i].ID == individualID {
			found = true
			break
		}
	}
	if !found {
		return
	}
	c := e.credits[team][individualID]
	if c == nil {
		c = &credit{}
		e.credits[team][individualID] = c
	}
	c.add(o)
}

// Leader returns the leading individual of a team's population.
func (e *Engine) Leader(team traits.Team) (Individual, error) {
	pop, ok := e.populations[team]
	if !ok {
		return Individual{}, fmt.Errorf("leader of %s: %w", team, ErrUnknownTeam)
	}
	leader, ok := pop.Leader()
	if !ok {
		return Individual{}, fmt.Errorf("leader of %s: %w", team, ErrEmptyPopulation)
	}
	return leader, nil
}

// Population returns a copy of a team's current population.
func (e *Engine) Population(team traits.Team) (Population, bool) {
	pop, ok := e.populations[team]
	if !ok {
		return Population{}, false
	}
	return pop.clone(), true
}

// EvolvePopulation scores the current individuals, breeds the next
// generation with tournament selection, uniform crossover and clamped
// mutation, and increments the generation counter. The returned population
// is a copy ordered by fitness estimate, leader first.
func (e *Engine) EvolvePopulation(team traits.Team) (Population, error) {
	pop, ok := e.populations[team]
	if !ok {
		return Population{}, fmt.Errorf("evolving %s: %w", team, ErrUnknownTeam)
	}
	if len(pop.Individuals) == 0 {
		return Population{}, fmt.Errorf("evolving %s: %w", team, ErrEmptyPopulation)
	}
	s := e.Settings(team)
	credits := e.credits[team]

	// Score: measured fitness where outcomes exist, inherited estimate otherwise
	scored := make([]Individual, len(pop.Individuals))
	copy(scored, pop.Individuals)
	for i := range scored {
		if c := credits[scored[i].ID]; c != nil && c.n > 0 {
			scored[i].Fitness = s.Fitness.meanScore(c)
			scored[i].Samples = c.n
		}
	}
	sortByFitness(scored)

	size := len(scored)
	next := make([]Individual, 0, size)
	for i := 0; i < s.EliteCount && i < size; i++ {
		next = append(next, scored[i])
	}

	for len(next) < size {
		p1 := scored[tournament(e.rng, scored, s.TournamentSize)]
		p2 := scored[tournament(e.rng, scored, s.TournamentSize)]

		child := p1.Genes
		estimate := p1.Fitness
		if e.rng.Float64() < s.CrossoverRate {
			child = crossoverUniform(e.rng, p1.Genes, p2.Genes)
			estimate = (p1.Fitness + p2.Fitness) / 2
		}
		child = mutate(e.rng, child, pop.Bounds, s.MutationRate, s.MutationSigma)

		next = append(next, Individual{ID: e.newID(), Genes: child, Fitness: estimate})
	}
	sortByFitness(next)

	// Drop credit for individuals that did not survive into the new generation
	alive := make(map[uint64]struct{}, size)
	for _, ind := range next {
		alive[ind.ID] = struct{}{}
	}
	for id := range credits {
		if _, ok := alive[id]; !ok {
			delete(credits, id)
		}
	}

	pop.Individuals = next
	pop.Generation++
	return pop.clone(), nil
}

// sortByFitness orders individuals by descending fitness, keeping the
// existing order for ties so results stay deterministic.
func sortByFitness(inds []Individual) {
	sort.SliceStable(inds, func(i, j int) bool {
		return inds[i].Fitness > inds[j].Fitness
	})
}
