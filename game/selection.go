package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/arena/systems"
)

// UnitAt returns the unit whose body contains (x, y), preferring the one
// closest to the point.
func (g *Game) UnitAt(x, y float32) (ecs.Entity, bool) {
	var best ecs.Entity
	found := false
	bestSq := float32(0)

	query := g.unitFilter.Query()
	for query.Next() {
		pos, unit, _, _, _, _, _ := query.Get()
		dx, dy := pos.X-x, pos.Y-y
		dSq := dx*dx + dy*dy
		if dSq > unit.Radius*unit.Radius {
			continue
		}
		if !found || dSq < bestSq {
			best = query.Entity()
			bestSq = dSq
			found = true
		}
	}
	return best, found
}

// Unit returns a view of one unit, or false once it has been removed.
func (g *Game) Unit(e ecs.Entity) (UnitView, bool) {
	if !g.world.Alive(e) || !g.unitMapper.HasAll(e) {
		return UnitView{}, false
	}
	pos, unit, stats, genome, combat, route, counters := g.unitMapper.Get(e)
	v := UnitView{
		Entity:   e,
		Pos:      *pos,
		Unit:     *unit,
		Stats:    *stats,
		Genome:   *genome,
		Combat:   *combat,
		Counters: *counters,
	}
	if route.Index < len(route.Waypoints) {
		v.Waypoints = route.Waypoints[route.Index:]
	}
	return v, true
}

// NavGrid returns the grid the path finder searches, for debug overlays.
func (g *Game) NavGrid() *systems.NavGrid {
	return g.paths.Grid()
}
