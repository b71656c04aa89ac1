package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/genetics"
	"github.com/pthm-cable/arena/systems"
	"github.com/pthm-cable/arena/telemetry"
	"github.com/pthm-cable/arena/traits"
)

// spawnInitialRoster places one unit per archetype for each team.
// These spawns do not advance the evolution trigger.
func (g *Game) spawnInitialRoster() {
	for _, team := range traits.Teams {
		for _, arch := range traits.Archetypes {
			if g.active[team] >= g.cfg.Bases.MaxUnitsPerTeam {
				break
			}
			g.spawnUnit(team, arch)
		}
	}
}

// spawnFromBases lets every base spawn when its cooldown allows, then
// evolves the team's population once every EvolveEverySpawns spawns.
func (g *Game) spawnFromBases() {
	every := g.cfg.Genetics.EvolveEverySpawns
	for _, team := range traits.Teams {
		base := g.bases[team]
		if base.Destroyed() {
			continue
		}
		arch, ok := base.TrySpawn(g.tick, g.active[team], g.cfg.Bases.MaxUnitsPerTeam)
		if !ok {
			continue
		}
		g.spawnUnit(team, arch)

		if every <= 0 {
			continue
		}
		g.spawnsSinceEvolve[team]++
		if g.spawnsSinceEvolve[team] >= every {
			g.spawnsSinceEvolve[team] = 0
			g.evolve(team)
		}
	}
}

// spawnUnit creates a unit near its team's base carrying the leader's genes.
func (g *Game) spawnUnit(team traits.Team, arch traits.Archetype) ecs.Entity {
	cfg := g.cfg
	base := g.bases[team]
	radius := float32(cfg.Unit.Radius)

	jitter := float32(cfg.Bases.SpawnJitter)
	pos := components.Position{
		X: base.X + (g.rng.Float32()*2-1)*jitter,
		Y: base.Y + (g.rng.Float32()*2-1)*jitter,
	}
	systems.ResolveObstacleContact(&pos, radius, g.obstacles)
	systems.ClampToWorld(&pos, radius, cfg.Derived.WorldW32, cfg.Derived.WorldH32)

	genome := g.assignGenes(team, arch)
	stats := g.resolveStats(arch, genome.Genes)
	maxHealth := float32(cfg.Unit.MaxHealth) * g.archetypes[arch].healthMult

	unit := components.Unit{
		ID:        g.nextID,
		Team:      team,
		Archetype: arch,
		Health:    maxHealth,
		MaxHealth: maxHealth,
		Radius:    radius,
		State:     components.StateApproaching,
		BirthTick: g.tick,
	}
	g.nextID++

	entity := g.unitMapper.NewEntity(
		&pos,
		&unit,
		&stats,
		&genome,
		&components.Combat{},
		&components.Route{},
		&components.Counters{},
	)

	g.active[team]++
	g.collector.RecordSpawn(team)

	slog.Debug("unit_spawned",
		"tick", g.tick,
		"id", unit.ID,
		"team", team.String(),
		"archetype", arch.String(),
		"individual", genome.IndividualID,
		"generation", genome.Generation,
	)

	return entity
}

// assignGenes snapshots the team leader's genes for a new unit. Genes
// outside the archetype's bounds are refused and replaced by the neutral
// vector, as is a missing leader.
func (g *Game) assignGenes(team traits.Team, arch traits.Archetype) components.Genome {
	bounds := g.archetypes[arch].bounds
	neutral := components.Genome{Genes: bounds.NeutralFor()}

	leader, err := g.engine.Leader(team)
	if err != nil {
		slog.Warn("empty_population_fallback", "team", team.String(), "error", err)
		return neutral
	}
	if err := bounds.Validate(leader.Genes); err != nil {
		slog.Warn("invalid_gene_vector",
			"team", team.String(),
			"archetype", arch.String(),
			"individual", leader.ID,
			"error", err,
		)
		return neutral
	}

	generation := 0
	if pop, ok := g.engine.Population(team); ok {
		generation = pop.Generation
	}
	return components.Genome{
		IndividualID: leader.ID,
		Generation:   generation,
		Genes:        leader.Genes,
	}
}

// resolveStats scales the unit baseline by archetype and gene multipliers.
func (g *Game) resolveStats(arch traits.Archetype, genes genetics.Genes) components.Stats {
	u := g.cfg.Unit
	spec := g.archetypes[arch]

	attackRange := float32(u.AttackRange) * spec.rangeMult * float32(genes.Get(traits.AttackRange))
	detection := float32(u.Detection) * float32(genes.Get(traits.Detection))

	return components.Stats{
		Speed:          float32(u.Speed) * spec.speedMult * float32(genes.Get(traits.Speed)),
		Damage:         float32(u.Damage) * spec.damageMult * float32(genes.Get(traits.Damage)),
		AttackRange:    attackRange,
		Detection:      max(detection, attackRange),
		Aggression:     float32(genes.Get(traits.Aggression)),
		AttackCooldown: g.cfg.Derived.AttackCooldownTicks,
	}
}

// cleanupDead credits and removes units that died this tick.
func (g *Game) cleanupDead() {
	// Collect first; structural changes are not allowed during a query
	g.dead = g.dead[:0]
	query := g.unitFilter.Query()
	for query.Next() {
		_, unit, _, genome, _, _, counters := query.Get()
		if unit.Alive() {
			continue
		}
		g.engine.RecordOutcome(unit.Team, genome.IndividualID, counters.Settle())
		g.active[unit.Team]--
		g.collector.RecordDeath(unit.Team)
		g.dead = append(g.dead, query.Entity())
	}

	for _, e := range g.dead {
		g.world.RemoveEntity(e)
	}
}

// evolve credits the team's live units, advances its population one
// generation and reports the genes currently in play.
func (g *Game) evolve(team traits.Team) {
	query := g.unitFilter.Query()
	for query.Next() {
		_, unit, _, genome, _, _, counters := query.Get()
		if unit.Team != team || !unit.Alive() || counters.TicksSurvived == 0 {
			continue
		}
		g.engine.RecordOutcome(team, genome.IndividualID, counters.Settle())
	}

	pop, err := g.engine.EvolvePopulation(team)
	if err != nil {
		slog.Error("evolution failed", "team", team.String(), "error", err)
		return
	}
	g.collector.RecordEvolution()

	var genes []map[string]float64
	query = g.unitFilter.Query()
	for query.Next() {
		_, unit, _, genome, _, _, _ := query.Get()
		if unit.Team == team && unit.Alive() {
			genes = append(genes, genome.Genes.ToMap())
		}
	}

	leader, _ := pop.Leader()
	if g.logStats {
		slog.Info("generation_evolved",
			"team", team.String(),
			"generation", pop.Generation,
			"leader", leader.ID,
			"leader_fitness", leader.Fitness,
		)
	}

	if len(genes) == 0 {
		return
	}
	g.sink.ObserveGeneration(telemetry.GenerationRecord{
		Tick:          g.tick,
		Team:          team,
		Generation:    pop.Generation,
		LeaderID:      leader.ID,
		LeaderFitness: leader.Fitness,
		LeaderGenes:   leader.Genes.ToMap(),
		Genes:         genes,
	})
}
