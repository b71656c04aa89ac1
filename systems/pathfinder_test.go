package systems

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pthm-cable/arena/components"
)

func testPathSettings() PathSettings {
	return PathSettings{
		WorldWidth:   200,
		WorldHeight:  200,
		CellSize:     10,
		UnitRadius:   10,
		SafetyMargin: 4,
	}
}

// TestFindPathDirect verifies an unobstructed request returns just the goal.
func TestFindPathDirect(t *testing.T) {
	pf := NewPathFinder(nil, testPathSettings())

	path, err := pf.FindPath(components.Position{X: 0, Y: 0}, components.Position{X: 100, Y: 0})
	if err != nil {
		t.Fatalf("FindPath error: %v", err)
	}
	if len(path) != 1 {
		t.Fatalf("Expected 1 waypoint, got %d: %v", len(path), path)
	}
	if path[0] != (components.Position{X: 100, Y: 0}) {
		t.Errorf("waypoint = %v, want (100, 0)", path[0])
	}
}

// TestFindPathAroundObstacle verifies the route detours around a blocking circle.
func TestFindPathAroundObstacle(t *testing.T) {
	obstacle := components.Obstacle{X: 50, Y: 0, Radius: 20}
	pf := NewPathFinder([]components.Obstacle{obstacle}, testPathSettings())

	start := components.Position{X: 0, Y: 0}
	goal := components.Position{X: 100, Y: 0}
	path, err := pf.FindPath(start, goal)
	if err != nil {
		t.Fatalf("FindPath error: %v", err)
	}
	if len(path) < 2 {
		t.Fatalf("Expected a detour with at least 2 waypoints, got %v", path)
	}
	if last := path[len(path)-1]; last != goal {
		t.Errorf("last waypoint = %v, want exactly %v", last, goal)
	}

	detour := false
	for _, wp := range path[:len(path)-1] {
		if distance(wp.X, wp.Y, obstacle.X, obstacle.Y) > obstacle.Radius+pf.Clearance() {
			detour = true
		}
	}
	if !detour {
		t.Errorf("no intermediate waypoint clears the obstacle: %v", path)
	}

	prev := start
	for i, wp := range path {
		if !pf.SegmentClear(prev, wp) {
			t.Errorf("leg %d %v -> %v enters the obstacle clearance", i, prev, wp)
		}
		prev = wp
	}
}

// TestFindPathLegsKeepClearance checks every leg of routes between clear
// endpoints over random layouts, including endpoints whose own cell is
// blocked by grid padding.
func TestFindPathLegsKeepClearance(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	s := testPathSettings()
	s.WorldWidth, s.WorldHeight = 400, 400

	randomClear := func(pf *PathFinder) components.Position {
		for {
			p := components.Position{X: rng.Float32() * 399, Y: rng.Float32() * 399}
			if pf.SegmentClear(p, p) {
				return p
			}
		}
	}

	routes, padded := 0, 0
	for layout := 0; layout < 100; layout++ {
		obstacles := make([]components.Obstacle, 8)
		for i := range obstacles {
			obstacles[i] = components.Obstacle{
				X:      rng.Float32() * 400,
				Y:      rng.Float32() * 400,
				Radius: 15 + rng.Float32()*5,
			}
		}
		pf := NewPathFinder(obstacles, s)

		for q := 0; q < 20; q++ {
			start, goal := randomClear(pf), randomClear(pf)
			path, err := pf.FindPath(start, goal)
			if errors.Is(err, ErrUnreachable) {
				continue
			}
			if err != nil {
				t.Fatalf("FindPath error: %v", err)
			}
			routes++
			if pf.Grid().IsBlocked(pf.Grid().WorldToGrid(start.X, start.Y)) {
				padded++
			}

			if last := path[len(path)-1]; last != goal {
				t.Errorf("layout %d: last waypoint = %v, want %v", layout, last, goal)
			}
			prev := start
			for i, wp := range path {
				if !pf.SegmentClear(prev, wp) {
					t.Errorf("layout %d: leg %d %v -> %v not clear; path %v", layout, i, prev, wp, path)
				}
				prev = wp
			}
		}
	}

	if routes == 0 {
		t.Fatal("no routes found")
	}
	t.Logf("routes=%d starting in a padded cell=%d", routes, padded)
}

// TestFindPathDeterministic verifies repeated calls return identical routes.
func TestFindPathDeterministic(t *testing.T) {
	obstacles := []components.Obstacle{
		{X: 60, Y: 60, Radius: 15},
		{X: 120, Y: 100, Radius: 20},
		{X: 80, Y: 150, Radius: 15},
	}
	pf := NewPathFinder(obstacles, testPathSettings())

	start := components.Position{X: 20, Y: 20}
	goal := components.Position{X: 180, Y: 180}
	first, err := pf.FindPath(start, goal)
	if err != nil {
		t.Fatalf("FindPath error: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := pf.FindPath(start, goal)
		if err != nil {
			t.Fatalf("FindPath error on run %d: %v", i, err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: %d waypoints, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Errorf("run %d waypoint %d = %v, want %v", i, j, again[j], first[j])
			}
		}
	}
}

// TestFindPathUnreachable verifies a sealed-off goal reports ErrUnreachable.
func TestFindPathUnreachable(t *testing.T) {
	// A column of overlapping circles splits the world in two
	var wall []components.Obstacle
	for y := float32(0); y <= 200; y += 20 {
		wall = append(wall, components.Obstacle{X: 100, Y: y, Radius: 15})
	}
	pf := NewPathFinder(wall, testPathSettings())

	_, err := pf.FindPath(components.Position{X: 20, Y: 100}, components.Position{X: 180, Y: 100})
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("err = %v, want ErrUnreachable", err)
	}
}

// TestFindPathExpansionLimit verifies the search gives up within its budget.
func TestFindPathExpansionLimit(t *testing.T) {
	s := testPathSettings()
	s.MaxExpansions = 3
	pf := NewPathFinder([]components.Obstacle{{X: 100, Y: 100, Radius: 40}}, s)

	_, err := pf.FindPath(components.Position{X: 20, Y: 100}, components.Position{X: 180, Y: 100})
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("err = %v, want ErrUnreachable with a 3 node budget", err)
	}
}

func TestSegmentClear(t *testing.T) {
	pf := NewPathFinder([]components.Obstacle{{X: 50, Y: 50, Radius: 10}}, testPathSettings())

	tests := []struct {
		name string
		a, b components.Position
		want bool
	}{
		{"through centre", components.Position{X: 0, Y: 50}, components.Position{X: 100, Y: 50}, false},
		{"inside clearance", components.Position{X: 0, Y: 70}, components.Position{X: 100, Y: 70}, false},
		{"outside clearance", components.Position{X: 0, Y: 80}, components.Position{X: 100, Y: 80}, true},
		{"ends before obstacle", components.Position{X: 0, Y: 50}, components.Position{X: 20, Y: 50}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pf.SegmentClear(tt.a, tt.b); got != tt.want {
				t.Errorf("SegmentClear(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNavGridBlocksInflatedObstacle(t *testing.T) {
	grid := NewNavGrid([]components.Obstacle{{X: 100, Y: 100, Radius: 20}}, 200, 200, 10, 14)

	gx, gy := grid.WorldToGrid(100, 100)
	if !grid.IsBlocked(gx, gy) {
		t.Error("cell at obstacle centre should be blocked")
	}
	gx, gy = grid.WorldToGrid(135, 100)
	if !grid.IsBlocked(gx, gy) {
		t.Error("cell inside clearance should be blocked")
	}
	gx, gy = grid.WorldToGrid(20, 20)
	if grid.IsBlocked(gx, gy) {
		t.Error("far cell should be open")
	}
	if !grid.IsBlocked(-1, 0) {
		t.Error("out of bounds should count as blocked")
	}
}
