// Package telemetry provides battle statistics, event windows and CSV output.
package telemetry

import (
	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/traits"
)

// UnitSample is a per-tick snapshot of one live unit.
type UnitSample struct {
	ID            uint32
	Team          traits.Team
	Archetype     traits.Archetype
	State         components.UnitState
	X, Y          float32
	Health        float32
	MaxHealth     float32
	DamageDealt   float32
	DamageTaken   float32
	Kills         int
	TicksSurvived int32
	IndividualID  uint64
	Generation    int
}

// GenerationRecord is emitted each time a team's population evolves.
type GenerationRecord struct {
	Tick          int32
	Team          traits.Team
	Generation    int
	LeaderID      uint64
	LeaderFitness float64
	LeaderGenes   map[string]float64

	// Genes of the team's live units at the time of evolution.
	Genes []map[string]float64
}
