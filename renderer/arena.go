// Package renderer draws the arena, its static layout and the debug overlays.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arena/camera"
	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/systems"
	"github.com/pthm-cable/arena/traits"
	"github.com/pthm-cable/arena/ui"
)

var (
	floorColor   = rl.Color{R: 28, G: 32, B: 26, A: 255}
	gridColor    = rl.Color{R: 40, G: 46, B: 38, A: 255}
	borderColor  = rl.Color{R: 90, G: 90, B: 80, A: 255}
	treeColor    = rl.Color{R: 46, G: 125, B: 50, A: 255}
	treeEdge     = rl.Color{R: 27, G: 80, B: 32, A: 255}
	rockColor    = rl.Color{R: 120, G: 120, B: 118, A: 255}
	rockEdge     = rl.Color{R: 80, G: 80, B: 78, A: 255}
	blockedColor = rl.Color{R: 200, G: 60, B: 60, A: 50}
)

// ArenaRenderer draws the floor, obstacles and bases.
type ArenaRenderer struct {
	gridSpacing float32
	theme       ui.Theme
}

// NewArenaRenderer creates an arena renderer with a floor grid of the
// given spacing in world units.
func NewArenaRenderer(gridSpacing float32) *ArenaRenderer {
	return &ArenaRenderer{
		gridSpacing: gridSpacing,
		theme:       ui.DefaultTheme(),
	}
}

// DrawFloor fills the world rectangle and draws the floor grid.
func (a *ArenaRenderer) DrawFloor(cam *camera.Camera) {
	x0, y0 := cam.WorldToScreen(0, 0)
	x1, y1 := cam.WorldToScreen(cam.WorldW, cam.WorldH)
	rl.DrawRectangleV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1 - x0, Y: y1 - y0}, floorColor)

	if a.gridSpacing > 0 && a.gridSpacing*cam.Zoom >= 8 {
		for wx := a.gridSpacing; wx < cam.WorldW; wx += a.gridSpacing {
			sx, _ := cam.WorldToScreen(wx, 0)
			rl.DrawLineV(rl.Vector2{X: sx, Y: y0}, rl.Vector2{X: sx, Y: y1}, gridColor)
		}
		for wy := a.gridSpacing; wy < cam.WorldH; wy += a.gridSpacing {
			_, sy := cam.WorldToScreen(0, wy)
			rl.DrawLineV(rl.Vector2{X: x0, Y: sy}, rl.Vector2{X: x1, Y: sy}, gridColor)
		}
	}

	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 2, borderColor)
}

// DrawObstacles draws every visible obstacle.
func (a *ArenaRenderer) DrawObstacles(cam *camera.Camera, obstacles []components.Obstacle) {
	for _, o := range obstacles {
		if !cam.IsVisible(o.X, o.Y, o.Radius) {
			continue
		}
		sx, sy := cam.WorldToScreen(o.X, o.Y)
		r := o.Radius * cam.Zoom
		fill, edge := treeColor, treeEdge
		if o.Kind == components.ObstacleRock {
			fill, edge = rockColor, rockEdge
		}
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r, fill)
		rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, r, edge)
	}
}

// DrawBases draws both bases with their health bars.
func (a *ArenaRenderer) DrawBases(cam *camera.Camera, bases [traits.NumTeams]*components.Base) {
	for _, b := range bases {
		if b == nil || !cam.IsVisible(b.X, b.Y, b.Radius+12) {
			continue
		}
		sx, sy := cam.WorldToScreen(b.X, b.Y)
		r := b.Radius * cam.Zoom
		color := ui.TeamColor(b.Team)
		if b.Destroyed() {
			color = rl.ColorAlpha(color, 0.25)
		}

		rect := rl.Rectangle{X: sx - r, Y: sy - r, Width: 2 * r, Height: 2 * r}
		rl.DrawRectangleRec(rect, rl.ColorAlpha(color, 0.35))
		rl.DrawRectangleLinesEx(rect, 2, color)

		ratio := float32(0)
		if b.MaxHealth > 0 {
			ratio = b.Health / b.MaxHealth
		}
		drawBar(sx-r, sy-r-10, 2*r, 5, ratio, a.theme.HealthColor(ratio))
	}
}

// DrawNavGrid shades the blocked cells of the planning grid.
func (a *ArenaRenderer) DrawNavGrid(cam *camera.Camera, grid *systems.NavGrid) {
	if grid == nil {
		return
	}
	w, h := grid.Size()
	cell := grid.CellSize()
	size := cell * cam.Zoom
	for gy := 0; gy < h; gy++ {
		for gx := 0; gx < w; gx++ {
			if !grid.IsBlocked(gx, gy) {
				continue
			}
			wx, wy := float32(gx)*cell, float32(gy)*cell
			if !cam.IsVisible(wx+cell/2, wy+cell/2, cell) {
				continue
			}
			sx, sy := cam.WorldToScreen(wx, wy)
			rl.DrawRectangleV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: size, Y: size}, blockedColor)
		}
	}
}

// drawBar draws a filled bar of the given ratio with a dark backing.
func drawBar(x, y, width, height, ratio float32, fill rl.Color) {
	ratio = min(max(ratio, 0), 1)
	rl.DrawRectangleV(rl.Vector2{X: x, Y: y}, rl.Vector2{X: width, Y: height}, rl.Color{R: 40, G: 40, B: 50, A: 220})
	rl.DrawRectangleV(rl.Vector2{X: x, Y: y}, rl.Vector2{X: width * ratio, Y: height}, fill)
}
