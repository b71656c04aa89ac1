package game

import "github.com/pthm-cable/arena/telemetry"

// step advances the simulation by one tick.
func (g *Game) step() {
	g.perf.Begin()

	g.perf.Enter(telemetry.PhaseSpawn)
	g.spawnFromBases()

	// Routes for every unit whose goal moved, merged in request order
	g.perf.Enter(telemetry.PhasePlan)
	g.combat.Snapshot()
	g.planRequests = g.combat.CollectPlanRequests(g.planRequests[:0], g.bases)
	g.planRoutes(g.planRequests)
	g.combat.ApplyPlans(g.planRequests)

	g.perf.Enter(telemetry.PhaseAct)
	g.combat.Act(g.bases)

	g.perf.Enter(telemetry.PhaseCleanup)
	g.cleanupDead()

	g.perf.Enter(telemetry.PhaseTelemetry)
	g.observeTick()

	g.perf.End()
	g.tick++
}
