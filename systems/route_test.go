package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/arena/components"
)

func TestNeedsReplan(t *testing.T) {
	r := &components.Route{}
	if !NeedsReplan(r, 10, 10, 5) {
		t.Error("unplanned route should need a plan")
	}

	ApplyPath(r, components.Position{X: 10, Y: 10}, []components.Position{{X: 10, Y: 10}}, nil)
	if NeedsReplan(r, 13, 13, 5) {
		t.Error("goal moved ~4.2 should stay within tolerance 5")
	}
	if !NeedsReplan(r, 20, 10, 5) {
		t.Error("goal moved 10 should exceed tolerance 5")
	}
}

func TestApplyPathUnreachableFallsBackToDirect(t *testing.T) {
	r := &components.Route{}
	goal := components.Position{X: 40, Y: 60}
	ApplyPath(r, goal, nil, ErrUnreachable)

	if !r.Direct {
		t.Error("expected Direct route after ErrUnreachable")
	}
	if len(r.Waypoints) != 1 || r.Waypoints[0] != goal {
		t.Errorf("Waypoints = %v, want [%v]", r.Waypoints, goal)
	}

	ApplyPath(r, goal, []components.Position{{X: 20, Y: 20}, goal}, nil)
	if r.Direct || len(r.Waypoints) != 2 || r.Index != 0 {
		t.Errorf("route not reset by a successful plan: %+v", r)
	}
}

func TestAdvance(t *testing.T) {
	goal := components.Position{X: 10, Y: 10}
	r := &components.Route{}
	ApplyPath(r, goal, []components.Position{{X: 10, Y: 0}, goal}, nil)

	pos := components.Position{}
	moved := Advance(&pos, r, goal, 4)
	if moved != 4 || pos != (components.Position{X: 4, Y: 0}) {
		t.Errorf("first step: moved=%v pos=%v, want 4 (4, 0)", moved, pos)
	}

	// Crossing a waypoint carries the leftover onto the next leg
	Advance(&pos, r, goal, 8)
	if r.Index != 1 {
		t.Errorf("Index = %d, want 1", r.Index)
	}
	if math.Abs(float64(pos.X-10)) > 1e-4 || math.Abs(float64(pos.Y-2)) > 1e-4 {
		t.Errorf("pos = %v, want (10, 2)", pos)
	}

	// Never overshoots the goal
	moved = Advance(&pos, r, goal, 100)
	if pos != goal {
		t.Errorf("pos = %v, want goal %v", pos, goal)
	}
	if math.Abs(float64(moved-8)) > 1e-4 {
		t.Errorf("moved = %v, want 8", moved)
	}
}

func TestResolveObstacleContact(t *testing.T) {
	obstacles := []components.Obstacle{{X: 50, Y: 50, Radius: 20}}

	pos := components.Position{X: 60, Y: 50}
	ResolveObstacleContact(&pos, 10, obstacles)
	if math.Abs(float64(pos.X-80)) > 1e-4 || pos.Y != 50 {
		t.Errorf("pos = %v, want pushed to (80, 50)", pos)
	}

	free := components.Position{X: 100, Y: 100}
	ResolveObstacleContact(&free, 10, obstacles)
	if free != (components.Position{X: 100, Y: 100}) {
		t.Errorf("free position moved to %v", free)
	}
}

func TestClampToWorld(t *testing.T) {
	pos := components.Position{X: -5, Y: 900}
	ClampToWorld(&pos, 10, 800, 600)
	if pos != (components.Position{X: 10, Y: 590}) {
		t.Errorf("pos = %v, want (10, 590)", pos)
	}
}

func TestApplyPathKeepsErrorVisible(t *testing.T) {
	// Wrapped errors still trigger the fallback
	r := &components.Route{}
	err := errors.Join(errors.New("search"), ErrUnreachable)
	ApplyPath(r, components.Position{X: 1, Y: 1}, nil, err)
	if !r.Direct {
		t.Error("expected Direct route for wrapped ErrUnreachable")
	}
}
