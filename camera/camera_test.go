package camera

import (
	"math"
	"testing"
)

func TestNewFitsWorld(t *testing.T) {
	cam := New(800, 600, 800, 600)

	if cam.X != 400 || cam.Y != 300 {
		t.Errorf("expected camera at (400, 300), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 || cam.MinZoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f (min %f)", cam.Zoom, cam.MinZoom)
	}

	// Larger window than world: min zoom is limited by the tighter axis
	cam = New(1200, 600, 800, 600)
	if cam.MinZoom != 1.0 {
		t.Errorf("expected MinZoom 1.0, got %f", cam.MinZoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(800, 600, 800, 600)

	sx, sy := cam.WorldToScreen(0, 0)
	if math.Abs(float64(sx)) > 0.01 || math.Abs(float64(sy)) > 0.01 {
		t.Errorf("expected world origin at screen origin, got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(800, 600, 800, 600)
	cam.SetZoom(2)
	cam.Pan(100, -50)

	testCases := []struct{ sx, sy float32 }{
		{400, 300},
		{10, 10},
		{790, 590},
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanClampsToWorld(t *testing.T) {
	cam := New(800, 600, 800, 600)

	// Whole world visible: panning has no effect
	cam.Pan(-200, 100)
	if cam.X != 400 || cam.Y != 300 {
		t.Errorf("expected pan ignored at fit zoom, got (%f, %f)", cam.X, cam.Y)
	}

	// Zoomed 2x: the view is 400x300 and may not leave the world
	cam.SetZoom(2)
	cam.Pan(-10000, -10000)
	minX, minY, _, _ := cam.VisibleWorldBounds()
	if minX != 0 || minY != 0 {
		t.Errorf("expected view clamped to top-left corner, got (%f, %f)", minX, minY)
	}
	cam.Pan(10000, 10000)
	_, _, maxX, maxY := cam.VisibleWorldBounds()
	if maxX != 800 || maxY != 600 {
		t.Errorf("expected view clamped to bottom-right corner, got (%f, %f)", maxX, maxY)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(800, 600, 1600, 1200)

	if cam.MinZoom != 0.5 {
		t.Errorf("expected MinZoom 0.5, got %f", cam.MinZoom)
	}

	cam.SetZoom(0.1)
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom clamped to 0.5, got %f", cam.Zoom)
	}

	cam.SetZoom(10.0)
	if cam.Zoom != 4.0 {
		t.Errorf("expected zoom clamped to 4.0, got %f", cam.Zoom)
	}

	cam.Reset()
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected Reset to fit the world, got zoom %f", cam.Zoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(800, 600, 800, 600)
	cam.SetZoom(2)
	cam.Pan(-10000, -10000) // view (0,0)-(400,300)

	tests := []struct {
		name       string
		x, y, r    float32
		wantVisble bool
	}{
		{"inside", 200, 150, 10, true},
		{"edge overlap", 405, 150, 10, true},
		{"far right", 600, 150, 10, false},
		{"below", 200, 400, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cam.IsVisible(tt.x, tt.y, tt.r); got != tt.wantVisble {
				t.Errorf("IsVisible(%v, %v, %v) = %v, want %v", tt.x, tt.y, tt.r, got, tt.wantVisble)
			}
		})
	}
}

func TestResizeKeepsZoomValid(t *testing.T) {
	cam := New(800, 600, 800, 600)
	cam.Resize(1600, 1200)

	if cam.MinZoom != 2 {
		t.Errorf("expected MinZoom 2 after resize, got %f", cam.MinZoom)
	}
	if cam.Zoom < cam.MinZoom {
		t.Errorf("zoom %f below min %f after resize", cam.Zoom, cam.MinZoom)
	}
}
