package genetics

import (
	"math/rand"

	"github.com/pthm-cable/arena/traits"
)

// tournament picks size random contestants (with replacement) and returns
// the index of the fittest. Ties go to the lower index.
func tournament(rng *rand.Rand, pool []Individual, size int) int {
	best := rng.Intn(len(pool))
	for i := 1; i < size; i++ {
		c := rng.Intn(len(pool))
		if pool[c].Fitness > pool[best].Fitness || (pool[c].Fitness == pool[best].Fitness && c < best) {
			best = c
		}
	}
	return best
}

// crossoverUniform takes each trait from either parent with equal probability.
func crossoverUniform(rng *rand.Rand, a, b Genes) Genes {
	child := a
	for _, t := range traits.AllTraits {
		if rng.Float64() < 0.5 {
			child.values[t] = b.values[t]
		}
	}
	return child
}

// mutate perturbs each trait with probability rate by gaussian noise scaled
// to the trait's range width, then clamps to bounds.
func mutate(rng *rand.Rand, g Genes, bounds Bounds, rate, sigma float64) Genes {
	out := g
	for _, t := range traits.AllTraits {
		if rng.Float64() >= rate {
			continue
		}
		out.values[t] += rng.NormFloat64() * sigma * bounds[t].Width()
	}
	return bounds.Clamp(out)
}
