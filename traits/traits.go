// Package traits defines team, archetype and gene trait identifiers.
package traits

import "fmt"

// Team identifies one of the two opposing sides.
type Team uint8

const (
	Blue Team = iota
	Red
	NumTeams
)

// Teams lists both teams in update order.
var Teams = [NumTeams]Team{Blue, Red}

func (t Team) String() string {
	switch t {
	case Blue:
		return "blue"
	case Red:
		return "red"
	}
	return fmt.Sprintf("team(%d)", uint8(t))
}

// Opponent returns the opposing team.
func (t Team) Opponent() Team {
	if t == Blue {
		return Red
	}
	return Blue
}

// Archetype is a fixed combat role chosen at construction.
type Archetype uint8

const (
	Melee Archetype = iota
	Ranged
	Tank
	NumArchetypes
)

// Archetypes lists all archetypes in spawn rotation order.
var Archetypes = [NumArchetypes]Archetype{Melee, Ranged, Tank}

func (a Archetype) String() string {
	switch a {
	case Melee:
		return "melee"
	case Ranged:
		return "ranged"
	case Tank:
		return "tank"
	}
	return fmt.Sprintf("archetype(%d)", uint8(a))
}

// ParseArchetype resolves an archetype by its config name.
func ParseArchetype(name string) (Archetype, error) {
	for _, a := range Archetypes {
		if a.String() == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown archetype %q", name)
}

// Trait is one evolvable gene.
type Trait uint8

const (
	Speed       Trait = iota // movement speed multiplier
	AttackRange              // attack range multiplier
	Damage                   // damage multiplier
	Detection                // detection radius multiplier
	Aggression               // health fraction below which hostiles are not chased
	NumTraits
)

// AllTraits lists every trait in gene order.
var AllTraits = [NumTraits]Trait{Speed, AttackRange, Damage, Detection, Aggression}

var traitNames = [NumTraits]string{"speed", "attack_range", "damage", "detection", "aggression"}

func (t Trait) String() string {
	if t < NumTraits {
		return traitNames[t]
	}
	return fmt.Sprintf("trait(%d)", uint8(t))
}

// ParseTrait resolves a trait by its config name.
func ParseTrait(name string) (Trait, error) {
	for i, n := range traitNames {
		if n == name {
			return Trait(i), nil
		}
	}
	return 0, fmt.Errorf("unknown trait %q", name)
}
