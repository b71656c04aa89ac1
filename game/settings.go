package game

import (
	"fmt"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/genetics"
	"github.com/pthm-cable/arena/systems"
	"github.com/pthm-cable/arena/traits"
)

// GeneticsSettings converts the genetics section to engine settings.
func GeneticsSettings(cfg *config.Config) genetics.Settings {
	g := cfg.Genetics
	return genetics.Settings{
		PopulationSize: g.PopulationSize,
		MutationRate:   g.MutationRate,
		MutationSigma:  g.MutationSigma,
		CrossoverRate:  g.CrossoverRate,
		TournamentSize: g.TournamentSize,
		EliteCount:     g.EliteCount,
		InitJitter:     g.InitJitter,
		Fitness: genetics.FitnessWeights{
			DamageDealt: g.Fitness.DamageDealt,
			Survival:    g.Fitness.Survival,
			Kills:       g.Fitness.Kills,
			DamageTaken: g.Fitness.DamageTaken,
		},
	}
}

// PathSettings converts the pathfinding section to PathFinder settings.
func PathSettings(cfg *config.Config) systems.PathSettings {
	return systems.PathSettings{
		WorldWidth:    cfg.Derived.WorldW32,
		WorldHeight:   cfg.Derived.WorldH32,
		CellSize:      float32(cfg.Pathfinding.CellSize),
		UnitRadius:    float32(cfg.Unit.Radius),
		SafetyMargin:  float32(cfg.Pathfinding.SafetyMargin),
		MaxExpansions: cfg.Pathfinding.MaxExpansions,
	}
}

// parseBounds converts trait name -> [min, max] pairs. Every trait needs a
// range.
func parseBounds(m map[string][2]float64) (genetics.Bounds, error) {
	var b genetics.Bounds
	var seen [traits.NumTraits]bool
	for name, r := range m {
		t, err := traits.ParseTrait(name)
		if err != nil {
			return b, fmt.Errorf("bounds: %w", err)
		}
		if r[0] > r[1] {
			return b, fmt.Errorf("bounds for %s: min %v > max %v", name, r[0], r[1])
		}
		b[t] = genetics.Range{Min: r[0], Max: r[1]}
		seen[t] = true
	}
	for _, t := range traits.AllTraits {
		if !seen[t] {
			return b, fmt.Errorf("bounds: no range for %s", t)
		}
	}
	return b, nil
}

// loadArchetypes resolves every built-in archetype from config.
func (g *Game) loadArchetypes() error {
	for _, a := range traits.Archetypes {
		ac, ok := g.cfg.Archetype(a.String())
		if !ok {
			return fmt.Errorf("archetype %q missing from config", a)
		}
		bounds, err := parseBounds(ac.Bounds)
		if err != nil {
			return fmt.Errorf("archetype %s: %w", a, err)
		}
		g.archetypes[a] = archetypeSpec{
			rangeMult:  float32(ac.Range),
			damageMult: float32(ac.Damage),
			speedMult:  float32(ac.Speed),
			healthMult: float32(ac.Health),
			bounds:     bounds,
		}
	}
	return nil
}

// populationTemplate builds the template both populations are seeded from.
func (g *Game) populationTemplate() (genetics.Template, error) {
	arch, err := traits.ParseArchetype(g.cfg.Genetics.TemplateArchetype)
	if err != nil {
		return genetics.Template{}, fmt.Errorf("template archetype: %w", err)
	}
	baseline := make(map[traits.Trait]float64, len(g.cfg.Genetics.Baseline))
	for name, v := range g.cfg.Genetics.Baseline {
		t, err := traits.ParseTrait(name)
		if err != nil {
			return genetics.Template{}, fmt.Errorf("baseline: %w", err)
		}
		baseline[t] = v
	}
	return genetics.Template{
		Archetype: arch,
		Baseline:  baseline,
		Bounds:    g.archetypes[arch].bounds,
	}, nil
}

// spawnOrder resolves the configured spawn rotation.
func spawnOrder(names []string) ([]traits.Archetype, error) {
	order := make([]traits.Archetype, 0, len(names))
	for _, n := range names {
		a, err := traits.ParseArchetype(n)
		if err != nil {
			return nil, fmt.Errorf("spawn order: %w", err)
		}
		order = append(order, a)
	}
	return order, nil
}
