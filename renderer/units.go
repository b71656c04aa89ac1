package renderer

import (
	"github.com/mlange-42/ark/ecs"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arena/camera"
	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/traits"
	"github.com/pthm-cable/arena/ui"
)

var (
	rangeColor     = rl.Color{R: 255, G: 200, B: 80, A: 90}
	detectionColor = rl.Color{R: 140, G: 200, B: 255, A: 60}
	targetColor    = rl.Color{R: 255, G: 90, B: 90, A: 160}
	routeColor     = rl.Color{R: 220, G: 220, B: 220, A: 110}
	selectColor    = rl.Color{R: 255, G: 255, B: 255, A: 230}
)

// stateColor tints a unit's outline by decision state.
func stateColor(s components.UnitState) rl.Color {
	switch s {
	case components.StateEngaging:
		return rl.Color{R: 255, G: 210, B: 60, A: 255}
	case components.StateAttacking:
		return rl.Color{R: 255, G: 90, B: 40, A: 255}
	case components.StateDead:
		return rl.DarkGray
	}
	return rl.Color{R: 200, G: 200, B: 200, A: 255}
}

// UnitRenderer draws units and the per-unit overlays.
type UnitRenderer struct {
	theme     ui.Theme
	positions map[ecs.Entity]components.Position
	views     []game.UnitView
}

// NewUnitRenderer creates a unit renderer.
func NewUnitRenderer() *UnitRenderer {
	return &UnitRenderer{
		theme:     ui.DefaultTheme(),
		positions: make(map[ecs.Entity]components.Position),
	}
}

// Draw renders every unit of g. Overlays are drawn below the unit bodies.
func (u *UnitRenderer) Draw(cam *camera.Camera, g *game.Game, overlays *ui.OverlayRegistry, selected ecs.Entity, hasSelection bool) {
	u.collect(g)
	bases := g.Bases()

	for i := range u.views {
		v := &u.views[i]
		showAll := !hasSelection || v.Entity == selected
		if overlays.IsEnabled(ui.OverlayRoutes) && showAll {
			u.drawRoute(cam, v)
		}
		if overlays.IsEnabled(ui.OverlayDetection) && showAll {
			u.drawRadius(cam, v.Pos, v.Stats.Detection, detectionColor)
		}
		if overlays.IsEnabled(ui.OverlayAttackRange) && showAll {
			u.drawRadius(cam, v.Pos, v.Stats.AttackRange, rangeColor)
		}
		if overlays.IsEnabled(ui.OverlayTargets) && showAll {
			u.drawTarget(cam, v, bases)
		}
	}

	for i := range u.views {
		v := &u.views[i]
		if !cam.IsVisible(v.Pos.X, v.Pos.Y, v.Unit.Radius+8) {
			continue
		}
		u.drawBody(cam, v, overlays.IsEnabled(ui.OverlayTeamTint))
		if overlays.IsEnabled(ui.OverlayHealthBars) {
			u.drawHealth(cam, v)
		}
		if hasSelection && v.Entity == selected {
			sx, sy := cam.WorldToScreen(v.Pos.X, v.Pos.Y)
			rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, (v.Unit.Radius+4)*cam.Zoom, selectColor)
		}
	}
}

// collect snapshots the units so targets can be resolved to positions.
func (u *UnitRenderer) collect(g *game.Game) {
	u.views = u.views[:0]
	clear(u.positions)
	g.ForEachUnit(func(v *game.UnitView) {
		view := *v
		view.Waypoints = append([]components.Position(nil), v.Waypoints...)
		u.views = append(u.views, view)
		u.positions[v.Entity] = v.Pos
	})
}

func (u *UnitRenderer) drawBody(cam *camera.Camera, v *game.UnitView, stateTint bool) {
	sx, sy := cam.WorldToScreen(v.Pos.X, v.Pos.Y)
	r := v.Unit.Radius * cam.Zoom
	center := rl.Vector2{X: sx, Y: sy}
	fill := ui.TeamColor(v.Unit.Team)
	if !v.Unit.Alive() {
		fill = rl.ColorAlpha(fill, 0.3)
	}

	switch v.Unit.Archetype {
	case traits.Tank:
		rl.DrawRectangleV(rl.Vector2{X: sx - r, Y: sy - r}, rl.Vector2{X: 2 * r, Y: 2 * r}, fill)
	case traits.Ranged:
		rl.DrawCircleV(center, r, fill)
		rl.DrawCircleV(center, r*0.4, rl.RayWhite)
	default:
		rl.DrawCircleV(center, r, fill)
	}

	outline := rl.Black
	if stateTint {
		outline = stateColor(v.Unit.State)
	}
	rl.DrawCircleLinesV(center, r+1, outline)
}

func (u *UnitRenderer) drawHealth(cam *camera.Camera, v *game.UnitView) {
	ratio := v.Unit.HealthFraction()
	if ratio >= 1 {
		return
	}
	sx, sy := cam.WorldToScreen(v.Pos.X, v.Pos.Y)
	r := v.Unit.Radius * cam.Zoom
	drawBar(sx-r, sy-r-6, 2*r, 3, ratio, u.theme.HealthColor(ratio))
}

func (u *UnitRenderer) drawRadius(cam *camera.Camera, pos components.Position, radius float32, color rl.Color) {
	if radius <= 0 || !cam.IsVisible(pos.X, pos.Y, radius) {
		return
	}
	sx, sy := cam.WorldToScreen(pos.X, pos.Y)
	rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, radius*cam.Zoom, color)
}

func (u *UnitRenderer) drawTarget(cam *camera.Camera, v *game.UnitView, bases [traits.NumTeams]*components.Base) {
	var tx, ty float32
	switch v.Combat.TargetKind {
	case components.TargetUnit:
		p, ok := u.positions[v.Combat.Target]
		if !ok {
			return
		}
		tx, ty = p.X, p.Y
	case components.TargetBase:
		b := bases[v.Unit.Team.Opponent()]
		if b == nil {
			return
		}
		tx, ty = b.X, b.Y
	default:
		return
	}
	sx, sy := cam.WorldToScreen(v.Pos.X, v.Pos.Y)
	ex, ey := cam.WorldToScreen(tx, ty)
	rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, targetColor)
}

func (u *UnitRenderer) drawRoute(cam *camera.Camera, v *game.UnitView) {
	if len(v.Waypoints) == 0 {
		return
	}
	px, py := cam.WorldToScreen(v.Pos.X, v.Pos.Y)
	for _, wp := range v.Waypoints {
		sx, sy := cam.WorldToScreen(wp.X, wp.Y)
		rl.DrawLineV(rl.Vector2{X: px, Y: py}, rl.Vector2{X: sx, Y: sy}, routeColor)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, 2, routeColor)
		px, py = sx, sy
	}
}
