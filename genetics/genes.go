// Package genetics evolves per-team gene vectors for combat units.
package genetics

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/arena/traits"
)

var (
	// ErrInvalidGeneVector is returned when a gene value lies outside its bounds.
	ErrInvalidGeneVector = errors.New("invalid gene vector")
	// ErrEmptyTemplate is returned when a template resolves no baseline traits.
	ErrEmptyTemplate = errors.New("empty template")
	// ErrEmptyPopulation is returned when a population holds no individuals.
	ErrEmptyPopulation = errors.New("empty population")
	// ErrUnknownTeam is returned for a team that was never initialized.
	ErrUnknownTeam = errors.New("unknown team")
)

// Genes is an immutable set of trait values. It is a value type: copies
// never share state, so a unit's snapshot cannot change after spawn.
type Genes struct {
	values [traits.NumTraits]float64
}

// NewGenes builds a gene vector from explicit values in trait order.
func NewGenes(values [traits.NumTraits]float64) Genes {
	return Genes{values: values}
}

// Neutral returns the gene vector that leaves archetype stats unscaled
// and never suppresses chasing.
func Neutral() Genes {
	var g Genes
	for _, t := range traits.AllTraits {
		g.values[t] = neutralValue(t)
	}
	return g
}

func neutralValue(t traits.Trait) float64 {
	if t == traits.Aggression {
		return 0
	}
	return 1
}

// Get returns the value of a trait.
func (g Genes) Get(t traits.Trait) float64 {
	if t >= traits.NumTraits {
		return 0
	}
	return g.values[t]
}

// Values returns a copy of the raw trait values.
func (g Genes) Values() [traits.NumTraits]float64 {
	return g.values
}

// ToMap returns trait name -> value, the form handed to persistence.
func (g Genes) ToMap() map[string]float64 {
	m := make(map[string]float64, traits.NumTraits)
	for _, t := range traits.AllTraits {
		m[t.String()] = g.values[t]
	}
	return m
}

// Range is an inclusive [Min, Max] window for one trait.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return !math.IsNaN(v) && v >= r.Min && v <= r.Max
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) || v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Width returns Max - Min.
func (r Range) Width() float64 {
	return r.Max - r.Min
}

// Bounds holds one range per trait for an archetype.
type Bounds [traits.NumTraits]Range

// Validate rejects any gene outside its range. Values are never clamped here.
func (b Bounds) Validate(g Genes) error {
	for _, t := range traits.AllTraits {
		if !b[t].Contains(g.values[t]) {
			return fmt.Errorf("%w: %s=%v outside [%v, %v]", ErrInvalidGeneVector, t, g.values[t], b[t].Min, b[t].Max)
		}
	}
	return nil
}

// Clamp returns a copy of g with every trait limited to its range.
func (b Bounds) Clamp(g Genes) Genes {
	out := g
	for _, t := range traits.AllTraits {
		out.values[t] = b[t].Clamp(g.values[t])
	}
	return out
}

// NeutralFor returns the neutral vector limited to these bounds.
func (b Bounds) NeutralFor() Genes {
	return b.Clamp(Neutral())
}
