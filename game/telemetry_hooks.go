package game

import (
	"log/slog"

	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/telemetry"
)

// Sink receives simulation observations. Implementations run on the
// simulation goroutine and must not retain the samples slice.
type Sink interface {
	ObserveTick(tick int32, samples []telemetry.UnitSample)
	ObserveGeneration(rec telemetry.GenerationRecord)
	ObserveWindow(stats telemetry.WindowStats, perf telemetry.PerfStats)
}

// UnitDamaged records a hit on a unit.
func (g *Game) UnitDamaged(attacker, victim *components.Unit, amount float32, killed bool) {
	g.collector.RecordHit(attacker.Team, amount)
	if killed {
		g.collector.RecordKill(attacker.Team)
		slog.Debug("unit_killed",
			"tick", g.tick,
			"attacker", attacker.ID,
			"victim", victim.ID,
			"team", victim.Team.String(),
			"archetype", victim.Archetype.String(),
		)
	}
}

// BaseDamaged records a hit on a base and the win when it falls.
func (g *Game) BaseDamaged(attacker *components.Unit, base *components.Base, amount float32, destroyed bool) {
	g.collector.RecordBaseHit(attacker.Team, amount)
	if !destroyed || g.hasWinner {
		return
	}
	g.winner = attacker.Team
	g.hasWinner = true
	slog.Info("base_destroyed",
		"tick", g.tick,
		"base", base.Team.String(),
		"winner", attacker.Team.String(),
		"unit", attacker.ID,
	)
}

// observeTick samples the live units, hands them to the sink and
// flushes the stats window when due.
func (g *Game) observeTick() {
	g.samples = g.samples[:0]
	query := g.unitFilter.Query()
	for query.Next() {
		pos, unit, _, genome, _, _, counters := query.Get()
		if !unit.Alive() {
			continue
		}
		g.samples = append(g.samples, telemetry.UnitSample{
			ID:            unit.ID,
			Team:          unit.Team,
			Archetype:     unit.Archetype,
			State:         unit.State,
			X:             pos.X,
			Y:             pos.Y,
			Health:        unit.Health,
			MaxHealth:     unit.MaxHealth,
			DamageDealt:   counters.DamageDealt,
			DamageTaken:   counters.DamageTaken,
			Kills:         counters.Kills,
			TicksSurvived: counters.TicksSurvived,
			IndividualID:  genome.IndividualID,
			Generation:    genome.Generation,
		})
	}

	g.sink.ObserveTick(g.tick, g.samples)

	if g.collector.ShouldFlush(g.tick) {
		stats := g.collector.Flush(g.tick, g.samples)
		g.sink.ObserveWindow(stats, g.perf.Flush())
	}
}

// logError reports a non-fatal error.
func (g *Game) logError(msg string, err error) {
	slog.Error(msg, "tick", g.tick, "error", err)
}
