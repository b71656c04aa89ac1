package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Controllable is the part of the simulation the controls panel drives.
type Controllable interface {
	Paused() bool
	SetPaused(paused bool)
	Stop()
	Step()
	StepsPerUpdate() int
	SetStepsPerUpdate(n int)
}

// ControlsPanel renders the left-side panel with simulation buttons and
// overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point lies over the panel, so clicks
// there are not treated as world selection.
func (c *ControlsPanel) Contains(px, py int32, overlays *OverlayRegistry) bool {
	if !c.visible {
		return false
	}
	return px >= c.x && px < c.x+c.width && py >= c.y && py < c.y+c.height(overlays)
}

func (c *ControlsPanel) height(overlays *OverlayRegistry) int32 {
	t := c.renderer.Theme
	buttons := int32(2)*(buttonHeight+4) + t.LineHeight + 4
	items := int32(0)
	for _, cat := range overlays.Categories() {
		items += int32(len(overlays.ByCategory(cat))) + 1
	}
	return t.Padding*3 + t.LineHeight + buttons + items*t.LineHeight
}

const buttonHeight = 22

// Draw renders the panel and applies any button presses to ctrl.
// Returns the Y coordinate below the panel.
func (c *ControlsPanel) Draw(ctrl Controllable, overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := float32(c.width - padding*2)

	r.DrawPanel(c.x, c.y, c.width, c.height(overlays))
	y := c.y + padding

	rl.DrawText("Simulation", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	// Pause / step / stop
	x := float32(c.x + padding)
	third := (inner - 8) / 3
	pauseLabel := "Pause"
	if ctrl.Paused() {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: third, Height: buttonHeight}, pauseLabel) {
		ctrl.SetPaused(!ctrl.Paused())
	}
	if gui.Button(rl.Rectangle{X: x + third + 4, Y: float32(y), Width: third, Height: buttonHeight}, "Step") && ctrl.Paused() {
		ctrl.Step()
	}
	if gui.Button(rl.Rectangle{X: x + 2*(third+4), Y: float32(y), Width: third, Height: buttonHeight}, "Stop") {
		ctrl.Stop()
	}
	y += buttonHeight + 4

	// Speed
	small := float32(28)
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: small, Height: buttonHeight}, "-") {
		ctrl.SetStepsPerUpdate(ctrl.StepsPerUpdate() / 2)
	}
	if gui.Button(rl.Rectangle{X: x + inner - small, Y: float32(y), Width: small, Height: buttonHeight}, "+") {
		ctrl.SetStepsPerUpdate(ctrl.StepsPerUpdate() * 2)
	}
	speedText := fmt.Sprintf("Speed %dx", ctrl.StepsPerUpdate())
	textW := rl.MeasureText(speedText, r.Theme.FontSize)
	rl.DrawText(speedText, c.x+c.width/2-textW/2, y+5, r.Theme.FontSize, r.Theme.ValueColor)
	y += buttonHeight + 4 + lineHeight + 4

	// Overlays by category
	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			enabled := overlays.IsEnabled(desc.ID)
			label := desc.Name
			if desc.KeyLabel != "" {
				label = fmt.Sprintf("%s [%s]", desc.Name, desc.KeyLabel)
			}
			box := rl.Rectangle{X: x, Y: float32(y + 2), Width: 10, Height: 10}
			if gui.CheckBox(box, label, enabled) != enabled {
				overlays.Toggle(desc.ID)
			}
			y += lineHeight
		}
	}

	return y + padding
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "combat":
		return "Combat"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
