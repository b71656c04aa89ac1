package components

import "github.com/pthm-cable/arena/traits"

// ObstacleKind only affects radius and colour.
type ObstacleKind uint8

const (
	ObstacleTree ObstacleKind = iota
	ObstacleRock
)

func (k ObstacleKind) String() string {
	if k == ObstacleRock {
		return "rock"
	}
	return "tree"
}

// Obstacle is a static circle that blocks movement.
type Obstacle struct {
	X, Y   float32
	Radius float32
	Kind   ObstacleKind
}

// Base is a team's spawn authority. Its position never changes.
type Base struct {
	Team      traits.Team
	X, Y      float32
	Radius    float32
	Health    float32
	MaxHealth float32

	SpawnCooldown int32 // ticks between spawns
	NextSpawnTick int32
	Order         []traits.Archetype // spawn rotation
	rotation      int
}

// NewBase creates a base whose first spawn is one cooldown away.
func NewBase(team traits.Team, x, y, radius, health float32, cooldown int32, order []traits.Archetype) *Base {
	if len(order) == 0 {
		order = traits.Archetypes[:]
	}
	return &Base{
		Team:          team,
		X:             x,
		Y:             y,
		Radius:        radius,
		Health:        health,
		MaxHealth:     health,
		SpawnCooldown: cooldown,
		NextSpawnTick: cooldown,
		Order:         order,
	}
}

// TrySpawn returns the archetype to spawn when the cooldown has elapsed
// and the team is below its cap. A refused spawn does not consume the
// cooldown or the rotation.
func (b *Base) TrySpawn(tick int32, active, maxUnits int) (traits.Archetype, bool) {
	if active >= maxUnits || tick < b.NextSpawnTick {
		return 0, false
	}
	arch := b.Order[b.rotation%len(b.Order)]
	b.rotation++
	b.NextSpawnTick = tick + b.SpawnCooldown
	return arch, true
}

// TakeDamage reduces health, never below zero.
func (b *Base) TakeDamage(amount float32) (applied float32, destroyed bool) {
	if b.Health <= 0 || amount <= 0 {
		return 0, false
	}
	applied = amount
	if applied > b.Health {
		applied = b.Health
	}
	b.Health -= applied
	if b.Health <= 0 {
		b.Health = 0
		destroyed = true
	}
	return applied, destroyed
}

// Destroyed reports whether the base has no health left.
func (b *Base) Destroyed() bool {
	return b.Health <= 0
}
