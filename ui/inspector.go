package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/traits"
)

func unitView(data any) *game.UnitView {
	return data.(*game.UnitView)
}

// inspectorSections describes the selected-unit panel.
var inspectorSections = []SectionDescriptor{
	{
		ID:    "status",
		Title: "Status",
		Fields: []FieldDescriptor{
			{ID: "health", Label: "Health", Widget: WidgetHealth,
				Getter:    func(d any) float32 { return unitView(d).Unit.Health },
				MaxGetter: func(d any) float32 { return unitView(d).Unit.MaxHealth }},
			{ID: "state", Label: "State", Widget: WidgetText,
				TextGetter: func(d any) string { return unitView(d).Unit.State.String() }},
			{ID: "target", Label: "Target", Widget: WidgetText,
				TextGetter: func(d any) string { return unitView(d).Combat.TargetKind.String() }},
			{ID: "cooldown", Label: "Cooldown", Widget: WidgetText, Format: "%.0f",
				Getter: func(d any) float32 { return float32(unitView(d).Combat.Cooldown) }},
			{ID: "waypoints", Label: "Waypoints", Widget: WidgetText, Format: "%.0f",
				Getter: func(d any) float32 { return float32(len(unitView(d).Waypoints)) }},
		},
	},
	{
		ID:    "stats",
		Title: "Stats",
		Fields: []FieldDescriptor{
			{ID: "speed", Label: "Speed", Widget: WidgetText, Format: "%.2f",
				Getter: func(d any) float32 { return unitView(d).Stats.Speed }},
			{ID: "damage", Label: "Damage", Widget: WidgetText, Format: "%.1f",
				Getter: func(d any) float32 { return unitView(d).Stats.Damage }},
			{ID: "range", Label: "Range", Widget: WidgetText, Format: "%.0f px",
				Getter: func(d any) float32 { return unitView(d).Stats.AttackRange }},
			{ID: "detection", Label: "Detection", Widget: WidgetText, Format: "%.0f px",
				Getter: func(d any) float32 { return unitView(d).Stats.Detection }},
			{ID: "aggression", Label: "Aggression", Widget: WidgetBar, Range: DefaultRange(),
				Getter: func(d any) float32 { return unitView(d).Stats.Aggression }},
		},
	},
	{
		ID:    "record",
		Title: "Record",
		Fields: []FieldDescriptor{
			{ID: "dealt", Label: "Dealt", Widget: WidgetText, Format: "%.0f",
				Getter: func(d any) float32 { return unitView(d).Counters.DamageDealt }},
			{ID: "taken", Label: "Taken", Widget: WidgetText, Format: "%.0f",
				Getter: func(d any) float32 { return unitView(d).Counters.DamageTaken }},
			{ID: "kills", Label: "Kills", Widget: WidgetText, Format: "%.0f",
				Getter: func(d any) float32 { return float32(unitView(d).Counters.Kills) }},
			{ID: "survived", Label: "Survived", Widget: WidgetText, Format: "%.0f ticks",
				Getter: func(d any) float32 { return float32(unitView(d).Counters.TicksSurvived) }},
		},
	},
	{
		ID:     "genes",
		Title:  "Genes",
		Fields: geneFields(),
	},
}

func geneFields() []FieldDescriptor {
	fields := []FieldDescriptor{
		{ID: "individual", Label: "Individual", Widget: WidgetText,
			TextGetter: func(d any) string {
				g := unitView(d).Genome
				if g.IndividualID == 0 {
					return "neutral"
				}
				return fmt.Sprintf("#%d gen %d", g.IndividualID, g.Generation)
			}},
	}
	for _, t := range traits.AllTraits {
		fields = append(fields, FieldDescriptor{
			ID: "gene_" + t.String(), Label: t.String(), Widget: WidgetText, Format: "%.3f",
			Getter: func(d any) float32 { return float32(unitView(d).Genome.Genes.Get(t)) },
		})
	}
	return fields
}

// Inspector renders the selected unit panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel for the given unit.
func (ins *Inspector) Draw(v *game.UnitView) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	contentWidth := ins.width - padding*2

	height := padding*2 + r.Theme.LineHeight + 6
	for _, sd := range inspectorSections {
		height += r.SectionHeight(sd, v)
	}
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	y := ins.y + padding
	x := ins.x + padding
	rl.DrawCircle(x+6, y+7, 6, TeamColor(v.Unit.Team))
	rl.DrawText(fmt.Sprintf("%s %s #%d", v.Unit.Team, v.Unit.Archetype, v.Unit.ID), x+18, y, 16, rl.White)
	y += r.Theme.LineHeight + 6

	for _, sd := range inspectorSections {
		y = r.DrawSection(x, y, sd, v, contentWidth)
	}
	return y
}
