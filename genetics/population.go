package genetics

import "github.com/pthm-cable/arena/traits"

// Individual is one gene vector in a population together with its fitness.
type Individual struct {
	ID    uint64
	Genes Genes

	// Fitness is the measured score when Samples > 0, otherwise the
	// estimate inherited from the parents.
	Fitness float64
	Samples int
}

// Evaluated reports whether any unit outcome was credited to the individual.
func (ind Individual) Evaluated() bool {
	return ind.Samples > 0
}

// Population is the per-team unit of evolution.
type Population struct {
	Team        traits.Team
	Archetype   traits.Archetype
	Bounds      Bounds
	Individuals []Individual
	Generation  int
}

// Size returns the number of individuals.
func (p *Population) Size() int {
	return len(p.Individuals)
}

// Leader returns the leading individual (index 0).
func (p *Population) Leader() (Individual, bool) {
	if len(p.Individuals) == 0 {
		return Individual{}, false
	}
	return p.Individuals[0], true
}

// clone returns a deep copy safe to hand outside the engine.
func (p *Population) clone() Population {
	out := *p
	out.Individuals = make([]Individual, len(p.Individuals))
	copy(out.Individuals, p.Individuals)
	return out
}

// Template supplies the baseline stats a population is seeded from.
type Template struct {
	Archetype traits.Archetype
	Baseline  map[traits.Trait]float64
	Bounds    Bounds
}

// Outcome is the cumulative combat record of one unit.
type Outcome struct {
	DamageDealt   float64
	DamageTaken   float64
	Kills         int
	TicksSurvived int
}

// credit accumulates outcomes of every unit that carried an individual.
type credit struct {
	n   int
	sum Outcome
}

func (c *credit) add(o Outcome) {
	c.n++
	c.sum.DamageDealt += o.DamageDealt
	c.sum.DamageTaken += o.DamageTaken
	c.sum.Kills += o.Kills
	c.sum.TicksSurvived += o.TicksSurvived
}
