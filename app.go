package main

import (
	"github.com/mlange-42/ark/ecs"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arena/camera"
	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/renderer"
	"github.com/pthm-cable/arena/telemetry"
	"github.com/pthm-cable/arena/traits"
	"github.com/pthm-cable/arena/ui"
)

const controlsHelp = "Space: pause  N: step  +/-: speed  Tab: panels  P: perf  Arrows/RMB: pan  Wheel: zoom  C: reset view"

// app owns the graphical front end around a game.
type app struct {
	game   *game.Game
	cam    *camera.Camera
	arena  *renderer.ArenaRenderer
	units  *renderer.UnitRenderer
	phases []telemetry.Phase

	overlays  *ui.OverlayRegistry
	hud       *ui.HUD
	controls  *ui.ControlsPanel
	evolution *ui.EvolutionPanel
	perf      *ui.PerfPanel
	inspector *ui.Inspector

	selected    ecs.Entity
	hasSelected bool
	showPerf    bool
}

func newApp(g *game.Game) *app {
	cfg := g.Config()
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	return &app{
		game:      g,
		cam:       camera.New(w, h, cfg.Derived.WorldW32, cfg.Derived.WorldH32),
		arena:     renderer.NewArenaRenderer(float32(cfg.Pathfinding.CellSize) * 5),
		units:     renderer.NewUnitRenderer(),
		phases:    telemetry.Phases(),
		overlays:  ui.NewOverlayRegistry(),
		hud:       ui.NewHUD(),
		controls:  ui.NewControlsPanel(10, 10, 190),
		evolution: ui.NewEvolutionPanel(int32(w)-230, 80, 220),
		perf:      ui.NewPerfPanel(10, int32(h)-140),
		inspector: ui.NewInspector(210, 10, 220),
	}
}

func (a *app) handleInput() {
	if rl.IsWindowResized() {
		w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
		a.cam.Resize(float32(w), float32(h))
		a.evolution.SetPosition(int32(w)-230, 80)
		a.perf.SetPosition(10, int32(h)-140)
	}

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.game.SetPaused(!a.game.Paused())
	case rl.IsKeyPressed(rl.KeyN) && a.game.Paused():
		a.game.Step()
	case rl.IsKeyPressed(rl.KeyEqual), rl.IsKeyPressed(rl.KeyKpAdd):
		a.game.SetStepsPerUpdate(a.game.StepsPerUpdate() * 2)
	case rl.IsKeyPressed(rl.KeyMinus), rl.IsKeyPressed(rl.KeyKpSubtract):
		a.game.SetStepsPerUpdate(a.game.StepsPerUpdate() / 2)
	case rl.IsKeyPressed(rl.KeyTab):
		a.controls.Toggle()
	case rl.IsKeyPressed(rl.KeyP):
		a.showPerf = !a.showPerf
	case rl.IsKeyPressed(rl.KeyC):
		a.cam.Reset()
	}
	if key := rl.GetKeyPressed(); key != 0 {
		a.overlays.HandleKeyPress(key)
	}

	// Camera
	panSpeed := 400 * rl.GetFrameTime()
	if rl.IsKeyDown(rl.KeyLeft) {
		a.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		a.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		a.cam.Pan(0, -panSpeed)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		a.cam.Pan(0, panSpeed)
	}
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		d := rl.GetMouseDelta()
		a.cam.Pan(-d.X, -d.Y)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.cam.ZoomBy(1 + wheel*0.1)
	}

	// Selection
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		mouse := rl.GetMousePosition()
		if a.controls.Contains(int32(mouse.X), int32(mouse.Y), a.overlays) {
			return
		}
		wx, wy := a.cam.ScreenToWorld(mouse.X, mouse.Y)
		a.selected, a.hasSelected = a.game.UnitAt(wx, wy)
	}
}

func (a *app) draw() {
	a.game.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	a.arena.DrawFloor(a.cam)
	if a.overlays.IsEnabled(ui.OverlayNavGrid) {
		a.arena.DrawNavGrid(a.cam, a.game.NavGrid())
	}
	a.arena.DrawObstacles(a.cam, a.game.Obstacles())
	a.arena.DrawBases(a.cam, a.game.Bases())
	a.units.Draw(a.cam, a.game, a.overlays, a.selected, a.hasSelected)

	a.drawPanels()

	rl.EndDrawing()
}

func (a *app) drawPanels() {
	sw, sh := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())

	hud := ui.HUDData{
		Title:        a.game.Config().Screen.Title,
		Tick:         a.game.Tick(),
		Speed:        a.game.StepsPerUpdate(),
		FPS:          rl.GetFPS(),
		Paused:       a.game.Paused(),
		ScreenWidth:  sw,
		ScreenHeight: sh,
	}
	if winner, ok := a.game.Winner(); ok {
		hud.Winner = winner.String()
	}
	a.hud.Draw(hud)
	a.hud.DrawControls(sw, sh, controlsHelp)

	a.controls.Draw(a.game, a.overlays)
	a.evolution.Draw(a.teamPanels())

	if a.showPerf {
		stats := a.game.PerfStats()
		a.perf.Draw(stats, a.phases)
	}

	if a.hasSelected {
		v, ok := a.game.Unit(a.selected)
		if !ok {
			a.hasSelected = false
			return
		}
		a.inspector.Draw(&v)
	}
}

func (a *app) teamPanels() []ui.TeamPanelData {
	cfg := a.game.Config()
	bases := a.game.Bases()
	panels := make([]ui.TeamPanelData, 0, len(traits.Teams))
	for _, team := range traits.Teams {
		p := ui.TeamPanelData{
			Team:     team,
			Alive:    a.game.ActiveUnits(team),
			MaxUnits: cfg.Bases.MaxUnitsPerTeam,
		}
		if b := bases[team]; b != nil {
			p.BaseHealth, p.BaseMaxHealth = b.Health, b.MaxHealth
		}
		if pop, ok := a.game.Population(team); ok {
			p.Generation = pop.Generation
			if leader, ok := pop.Leader(); ok {
				p.LeaderFitness = leader.Fitness
				p.LeaderGenes = leader.Genes.ToMap()
			}
		}
		panels = append(panels, p)
	}
	return panels
}
