package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arena/telemetry"
	"github.com/pthm-cable/arena/traits"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Tick         int32
	Speed        int
	FPS          int32
	Paused       bool
	Winner       string // empty while both bases stand
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD along the top-right edge.
func (h *HUD) Draw(data HUDData) {
	x := data.ScreenWidth - 230

	rl.DrawText(data.Title, x, 10, 20, rl.White)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.Speed, data.FPS),
		x, 35, 14, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, x, 53, 14, rl.Yellow)

	if data.Winner != "" {
		msg := fmt.Sprintf("%s wins", data.Winner)
		w := rl.MeasureText(msg, 40)
		rl.DrawText(msg, data.ScreenWidth/2-w/2, data.ScreenHeight/2-20, 40, rl.White)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// TeamPanelData summarises one team for the evolution panel.
type TeamPanelData struct {
	Team          traits.Team
	Alive         int
	MaxUnits      int
	BaseHealth    float32
	BaseMaxHealth float32
	Generation    int
	LeaderFitness float64
	LeaderGenes   map[string]float64
}

// EvolutionPanel renders per-team population and base status.
type EvolutionPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewEvolutionPanel creates a new evolution panel.
func NewEvolutionPanel(x, y, width int32) *EvolutionPanel {
	return &EvolutionPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (e *EvolutionPanel) SetPosition(x, y int32) {
	e.x = x
	e.y = y
}

// Draw renders one block per team.
func (e *EvolutionPanel) Draw(teams []TeamPanelData) {
	r := e.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	contentWidth := e.width - padding*2

	blockHeight := lineHeight*(4+int32(traits.NumTraits)) + 8
	r.DrawPanel(e.x, e.y, e.width, padding*2+lineHeight+blockHeight*int32(len(teams)))

	y := e.y + padding
	rl.DrawText("Evolution", e.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, t := range teams {
		x := e.x + padding
		rl.DrawRectangle(x, y+2, 10, 10, TeamColor(t.Team))
		rl.DrawText(fmt.Sprintf("%s  gen %d", t.Team, t.Generation), x+16, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		y = r.DrawLabelValue(x, y, "Units", fmt.Sprintf("%d / %d", t.Alive, t.MaxUnits))
		y = r.DrawHealthBar(x, y, "Base", t.BaseHealth, t.BaseMaxHealth, contentWidth)
		y = r.DrawLabelValue(x, y, "Fitness", fmt.Sprintf("%.1f", t.LeaderFitness))
		for _, trait := range traits.AllTraits {
			y = r.DrawLabelValue(x, y, trait.String(), fmt.Sprintf("%.3f", t.LeaderGenes[trait.String()]))
		}
		y += 4
	}
}

// PerfPanel renders the per-phase tick timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel with phases in the given order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, phases []telemetry.Phase) {
	x := p.x
	y := p.y

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Mean: %s  p90: %s", stats.MeanTick.Round(time.Microsecond), stats.P90Tick.Round(time.Microsecond)),
		x, y, 14, rl.Yellow)
	y += 16

	for _, phase := range phases {
		pct := stats.Share(phase) * 100

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", phase, stats.PhaseMean[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
