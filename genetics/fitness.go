package genetics

// FitnessWeights combines unit counters into a scalar score.
type FitnessWeights struct {
	DamageDealt float64
	Survival    float64 // per tick survived
	Kills       float64
	DamageTaken float64 // subtracted
}

// Score computes the weighted fitness of a single outcome.
func (w FitnessWeights) Score(o Outcome) float64 {
	fitness := o.DamageDealt * w.DamageDealt
	fitness += float64(o.TicksSurvived) * w.Survival
	fitness += float64(o.Kills) * w.Kills
	fitness -= o.DamageTaken * w.DamageTaken
	return fitness
}

// meanScore scores the averaged outcome of every unit credited to an individual.
func (w FitnessWeights) meanScore(c *credit) float64 {
	if c == nil || c.n == 0 {
		return 0
	}
	n := float64(c.n)
	fitness := c.sum.DamageDealt / n * w.DamageDealt
	fitness += float64(c.sum.TicksSurvived) / n * w.Survival
	fitness += float64(c.sum.Kills) / n * w.Kills
	fitness -= c.sum.DamageTaken / n * w.DamageTaken
	return fitness
}
