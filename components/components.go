// Package components defines ECS components for the simulation.
package components

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/arena/genetics"
)

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Stats holds a unit's combat stats after archetype and gene scaling.
// Resolved once at spawn; never changes afterwards.
type Stats struct {
	Speed          float32 // px per tick
	Damage         float32 // per attack
	AttackRange    float32 // px, centre to centre (to edge for bases)
	Detection      float32 // px
	Aggression     float32 // health fraction required to chase hostiles
	AttackCooldown int32   // ticks between attacks
}

// Genome is the read-only gene snapshot a unit was spawned with.
type Genome struct {
	IndividualID uint64 // 0 when the neutral fallback was used
	Generation   int
	Genes        genetics.Genes
}

// TargetKind says what a unit is currently after.
type TargetKind uint8

const (
	TargetNone TargetKind = iota
	TargetUnit
	TargetBase
)

func (k TargetKind) String() string {
	switch k {
	case TargetUnit:
		return "unit"
	case TargetBase:
		return "base"
	}
	return "none"
}

// Combat holds target selection and attack timing.
type Combat struct {
	TargetKind TargetKind
	Target     ecs.Entity // valid when TargetKind == TargetUnit
	Cooldown   int32      // ticks until the next attack is allowed
}

// ClearTarget drops the current target.
func (c *Combat) ClearTarget() {
	c.TargetKind = TargetNone
	c.Target = ecs.Entity{}
}

// Route is a cached PathFinder result and the unit's progress along it.
type Route struct {
	Waypoints []Position
	Index     int
	GoalX     float32 // goal the route was planned for
	GoalY     float32
	Planned   bool
	Direct    bool // fallback straight line after an unreachable search
}

// Counters are cumulative combat records read by the evolution engine.
type Counters struct {
	DamageDealt   float32
	DamageTaken   float32
	Kills         int
	TicksSurvived int32

	credited genetics.Outcome // portion already handed to the engine
}

// Outcome converts the counters to the evolution engine's form.
func (c Counters) Outcome() genetics.Outcome {
	return genetics.Outcome{
		DamageDealt:   float64(c.DamageDealt),
		DamageTaken:   float64(c.DamageTaken),
		Kills:         c.Kills,
		TicksSurvived: int(c.TicksSurvived),
	}
}

// Settle returns the record accumulated since the previous Settle and
// marks it as credited, so no part of a unit's record is counted twice.
func (c *Counters) Settle() genetics.Outcome {
	total := c.Outcome()
	delta := genetics.Outcome{
		DamageDealt:   total.DamageDealt - c.credited.DamageDealt,
		DamageTaken:   total.DamageTaken - c.credited.DamageTaken,
		Kills:         total.Kills - c.credited.Kills,
		TicksSurvived: total.TicksSurvived - c.credited.TicksSurvived,
	}
	c.credited = total
	return delta
}
