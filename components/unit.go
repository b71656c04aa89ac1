package components

import "github.com/pthm-cable/arena/traits"

// UnitState is the decision state of a unit.
type UnitState uint8

const (
	StateApproaching UnitState = iota // heading for the enemy base
	StateEngaging                     // closing on a detected hostile
	StateAttacking                    // target in range
	StateDead                         // terminal
)

func (s UnitState) String() string {
	switch s {
	case StateApproaching:
		return "approaching"
	case StateEngaging:
		return "engaging"
	case StateAttacking:
		return "attacking"
	case StateDead:
		return "dead"
	}
	return "unknown"
}

// Unit bundles identity, archetype and health.
type Unit struct {
	ID        uint32
	Team      traits.Team
	Archetype traits.Archetype
	Health    float32
	MaxHealth float32
	Radius    float32
	State     UnitState
	BirthTick int32
}

// Alive reports whether the unit can still act.
func (u *Unit) Alive() bool {
	return u.State != StateDead
}

// HealthFraction returns Health/MaxHealth in [0, 1].
func (u *Unit) HealthFraction() float32 {
	if u.MaxHealth <= 0 {
		return 0
	}
	return u.Health / u.MaxHealth
}

// TakeDamage removes health, never below zero. The transition to
// StateDead happens exactly once; hits on a dead unit are no-ops.
func (u *Unit) TakeDamage(amount float32) (applied float32, killed bool) {
	if u.State == StateDead || amount <= 0 {
		return 0, false
	}
	applied = amount
	if applied > u.Health {
		applied = u.Health
	}
	u.Health -= applied
	if u.Health <= 0 {
		u.Health = 0
		u.State = StateDead
		killed = true
	}
	return applied, killed
}
