package systems

import (
	"github.com/pthm-cable/arena/components"
)

// NeedsReplan reports whether a route must be recomputed for the goal:
// either nothing is planned yet or the goal drifted beyond tolerance.
func NeedsReplan(r *components.Route, goalX, goalY, tolerance float32) bool {
	if !r.Planned {
		return true
	}
	return distanceSq(r.GoalX, r.GoalY, goalX, goalY) > tolerance*tolerance
}

// ApplyPath stores a PathFinder result on a route. An error degrades to a
// direct single-waypoint route.
func ApplyPath(r *components.Route, goal components.Position, waypoints []components.Position, err error) {
	r.Waypoints = r.Waypoints[:0]
	if err != nil || len(waypoints) == 0 {
		r.Waypoints = append(r.Waypoints, goal)
		r.Direct = true
	} else {
		r.Waypoints = append(r.Waypoints, waypoints...)
		r.Direct = false
	}
	r.Index = 0
	r.GoalX = goal.X
	r.GoalY = goal.Y
	r.Planned = true
}

// Advance moves pos along the route by up to speed and returns the
// distance covered. Waypoints are consumed as they are reached; once the
// route is exhausted any remaining movement heads straight for goal.
func Advance(pos *components.Position, r *components.Route, goal components.Position, speed float32) float32 {
	remaining := speed
	for remaining > 0 {
		var tx, ty float32
		onRoute := r.Index < len(r.Waypoints)
		if onRoute {
			tx, ty = r.Waypoints[r.Index].X, r.Waypoints[r.Index].Y
		} else {
			tx, ty = goal.X, goal.Y
		}

		d := distance(pos.X, pos.Y, tx, ty)
		if d <= remaining {
			pos.X, pos.Y = tx, ty
			remaining -= d
			if !onRoute {
				break
			}
			r.Index++
			continue
		}

		pos.X += (tx - pos.X) / d * remaining
		pos.Y += (ty - pos.Y) / d * remaining
		remaining = 0
	}
	return speed - remaining
}

// ResolveObstacleContact pushes a circle of the given radius out of any
// obstacle it overlaps, onto the obstacle surface.
func ResolveObstacleContact(pos *components.Position, radius float32, obstacles []components.Obstacle) {
	for _, o := range obstacles {
		minDist := o.Radius + radius
		dSq := distanceSq(pos.X, pos.Y, o.X, o.Y)
		if dSq >= minDist*minDist {
			continue
		}
		d := distance(pos.X, pos.Y, o.X, o.Y)
		if d < 1e-4 {
			// Centred exactly: push along +X
			pos.X = o.X + minDist
			pos.Y = o.Y
			continue
		}
		scale := minDist / d
		pos.X = o.X + (pos.X-o.X)*scale
		pos.Y = o.Y + (pos.Y-o.Y)*scale
	}
}

// ClampToWorld keeps a circle of the given radius inside the world rectangle.
func ClampToWorld(pos *components.Position, radius, width, height float32) {
	pos.X = clampFloat(pos.X, radius, width-radius)
	pos.Y = clampFloat(pos.Y, radius, height-radius)
}
