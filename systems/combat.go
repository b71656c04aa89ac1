// Package systems provides the per-tick combat, movement and route
// planning systems.
package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/traits"
)

// Contact is a per-tick view of a unit as seen by its enemies.
type Contact struct {
	Entity ecs.Entity
	X, Y   float32
	Alive  bool
}

// Decision is the outcome of one evaluation of the unit state machine.
type Decision struct {
	State      components.UnitState
	TargetKind components.TargetKind
	Target     ecs.Entity
	Goal       components.Position
}

// EffectiveDetection returns the radius within which the unit will pick up
// hostiles. Below the aggression threshold it only reacts to what is
// already within attack range.
func EffectiveDetection(unit *components.Unit, stats *components.Stats) float32 {
	if unit.HealthFraction() < stats.Aggression && stats.AttackRange < stats.Detection {
		return stats.AttackRange
	}
	return stats.Detection
}

// Decide picks the unit's state, target and movement goal. The nearest
// live enemy within detection wins; otherwise the unit heads for the
// enemy base. Ties on distance keep the earlier contact.
func Decide(pos components.Position, unit *components.Unit, stats *components.Stats, enemies []Contact, enemyBase *components.Base) Decision {
	if !unit.Alive() {
		return Decision{State: components.StateDead, Goal: pos}
	}

	detect := EffectiveDetection(unit, stats)
	best := -1
	bestSq := detect * detect
	for i := range enemies {
		e := &enemies[i]
		if !e.Alive {
			continue
		}
		dSq := distanceSq(pos.X, pos.Y, e.X, e.Y)
		if dSq < bestSq || (best < 0 && dSq == bestSq) {
			best = i
			bestSq = dSq
		}
	}

	if best >= 0 {
		e := enemies[best]
		d := Decision{
			State:      components.StateEngaging,
			TargetKind: components.TargetUnit,
			Target:     e.Entity,
			Goal:       components.Position{X: e.X, Y: e.Y},
		}
		if bestSq <= stats.AttackRange*stats.AttackRange {
			d.State = components.StateAttacking
		}
		return d
	}

	if enemyBase == nil || enemyBase.Destroyed() {
		return Decision{State: components.StateApproaching, Goal: pos}
	}

	d := Decision{
		State:      components.StateApproaching,
		TargetKind: components.TargetBase,
		Goal:       components.Position{X: enemyBase.X, Y: enemyBase.Y},
	}
	if distance(pos.X, pos.Y, enemyBase.X, enemyBase.Y)-enemyBase.Radius <= stats.AttackRange {
		d.State = components.StateAttacking
	}
	return d
}

// CombatEvents receives damage notifications. Implementations must not
// change the ECS world structure.
type CombatEvents interface {
	UnitDamaged(attacker, victim *components.Unit, amount float32, killed bool)
	BaseDamaged(attacker *components.Unit, base *components.Base, amount float32, destroyed bool)
}

// MoveSettings holds the movement parameters shared by all units.
type MoveSettings struct {
	ReplanTolerance float32
	WorldWidth      float32
	WorldHeight     float32
}

// PlanRequest is a pending route computation. Waypoints and Err are
// filled by whoever runs the PathFinder.
type PlanRequest struct {
	Entity    ecs.Entity
	From      components.Position
	Goal      components.Position
	Waypoints []components.Position
	Err       error
}

// CombatSystem runs target selection, attacks and movement for all units.
type CombatSystem struct {
	filter      ecs.Filter7[components.Position, components.Unit, components.Stats, components.Genome, components.Combat, components.Route, components.Counters]
	unitMap     *ecs.Map[components.Unit]
	countersMap *ecs.Map[components.Counters]
	routeMap    *ecs.Map[components.Route]

	paths  *PathFinder
	move   MoveSettings
	events CombatEvents

	contacts [traits.NumTeams][]Contact
	index    map[ecs.Entity]int // entity -> slot in its team's contacts

	// Contact lookup
	grids        [traits.NumTeams]*ContactGrid
	maxStep      float32 // fastest live unit, bounds drift since Snapshot
	candidateIdx []int
	candidates   []Contact
}

// contactCellSize is the bucket edge of the contact grids in px.
const contactCellSize = 64

// NewCombatSystem creates a new combat system.
func NewCombatSystem(w *ecs.World, paths *PathFinder, move MoveSettings, events CombatEvents) *CombatSystem {
	s := &CombatSystem{
		filter:      *ecs.NewFilter7[components.Position, components.Unit, components.Stats, components.Genome, components.Combat, components.Route, components.Counters](w),
		unitMap:     ecs.NewMap[components.Unit](w),
		countersMap: ecs.NewMap[components.Counters](w),
		routeMap:    ecs.NewMap[components.Route](w),
		paths:       paths,
		move:        move,
		events:      events,
		index:       make(map[ecs.Entity]int),
	}
	for t := range s.grids {
		s.grids[t] = NewContactGrid(move.WorldWidth, move.WorldHeight, contactCellSize)
	}
	return s
}

// Snapshot rebuilds the per-team contact lists from the world.
func (s *CombatSystem) Snapshot() {
	for t := range s.contacts {
		s.contacts[t] = s.contacts[t][:0]
		s.grids[t].Clear()
	}
	clear(s.index)
	s.maxStep = 0

	query := s.filter.Query()
	for query.Next() {
		pos, unit, stats, _, _, _, _ := query.Get()
		entity := query.Entity()
		list := s.contacts[unit.Team]
		s.index[entity] = len(list)
		s.grids[unit.Team].Insert(len(list), pos.X, pos.Y)
		s.contacts[unit.Team] = append(list, Contact{Entity: entity, X: pos.X, Y: pos.Y, Alive: unit.Alive()})
		if unit.Alive() {
			s.maxStep = max(s.maxStep, stats.Speed)
		}
	}
}

// nearby returns the contacts of team that may lie within radius of pos,
// in snapshot order. Units move at most one step plus the obstacle
// push-out after Snapshot, so the query is widened by two steps.
func (s *CombatSystem) nearby(team traits.Team, pos components.Position, radius float32) []Contact {
	s.candidateIdx = s.grids[team].QueryInto(s.candidateIdx[:0], pos.X, pos.Y, radius+2*s.maxStep)
	s.candidates = s.candidates[:0]
	for _, i := range s.candidateIdx {
		s.candidates = append(s.candidates, s.contacts[team][i])
	}
	return s.candidates
}

// decide runs Decide against the enemy contacts near the unit.
func (s *CombatSystem) decide(pos components.Position, unit *components.Unit, stats *components.Stats, bases [traits.NumTeams]*components.Base) Decision {
	opp := unit.Team.Opponent()
	enemies := s.nearby(opp, pos, EffectiveDetection(unit, stats))
	return Decide(pos, unit, stats, enemies, bases[opp])
}

// Contacts returns the snapshot of a team's units.
func (s *CombatSystem) Contacts(team traits.Team) []Contact {
	return s.contacts[team]
}

// CollectPlanRequests appends a request for every live, moving unit whose
// route no longer matches its goal. Call after Snapshot.
func (s *CombatSystem) CollectPlanRequests(dst []PlanRequest, bases [traits.NumTeams]*components.Base) []PlanRequest {
	query := s.filter.Query()
	for query.Next() {
		pos, unit, stats, _, _, route, _ := query.Get()
		if !unit.Alive() {
			continue
		}
		d := s.decide(*pos, unit, stats, bases)
		if d.State == components.StateAttacking || d.TargetKind == components.TargetNone {
			continue
		}
		if !NeedsReplan(route, d.Goal.X, d.Goal.Y, s.move.ReplanTolerance) {
			continue
		}
		dst = append(dst, PlanRequest{Entity: query.Entity(), From: *pos, Goal: d.Goal})
	}
	return dst
}

// Plan runs the PathFinder for one request.
func (s *CombatSystem) Plan(req *PlanRequest) {
	req.Waypoints, req.Err = s.paths.FindPath(req.From, req.Goal)
}

// ApplyPlans stores computed routes, in request order.
func (s *CombatSystem) ApplyPlans(reqs []PlanRequest) {
	for i := range reqs {
		req := &reqs[i]
		if !s.routeMap.Has(req.Entity) {
			continue
		}
		if req.Err != nil {
			slog.Debug("path_unreachable",
				"entity", req.Entity.ID(),
				"from_x", req.From.X, "from_y", req.From.Y,
				"goal_x", req.Goal.X, "goal_y", req.Goal.Y,
				"error", req.Err,
			)
		}
		ApplyPath(s.routeMap.Get(req.Entity), req.Goal, req.Waypoints, req.Err)
	}
}

// Act evaluates and executes one tick of behaviour for every live unit.
// Units act in query order and see the effects of earlier units this tick.
func (s *CombatSystem) Act(bases [traits.NumTeams]*components.Base) {
	query := s.filter.Query()
	for query.Next() {
		pos, unit, stats, _, combat, route, counters := query.Get()
		if !unit.Alive() {
			continue
		}
		entity := query.Entity()

		counters.TicksSurvived++
		if combat.Cooldown > 0 {
			combat.Cooldown--
		}

		opp := unit.Team.Opponent()
		d := s.decide(*pos, unit, stats, bases)
		applyDecision(unit, combat, d)

		if d.State != components.StateAttacking {
			s.advance(pos, unit, stats, route, d.Goal)
			s.updateContact(entity, unit.Team, pos)
			continue
		}

		if combat.Cooldown > 0 {
			continue
		}

		killed := s.strike(unit, stats, counters, d, bases[opp])
		combat.Cooldown = stats.AttackCooldown
		if killed {
			// Target gone: pick the next one now, move next tick
			combat.ClearTarget()
			d = s.decide(*pos, unit, stats, bases)
			applyDecision(unit, combat, d)
		}
	}
}

func applyDecision(unit *components.Unit, combat *components.Combat, d Decision) {
	unit.State = d.State
	combat.TargetKind = d.TargetKind
	combat.Target = d.Target
}

// strike applies one attack. Returns true if the target died.
func (s *CombatSystem) strike(unit *components.Unit, stats *components.Stats, counters *components.Counters, d Decision, enemyBase *components.Base) bool {
	switch d.TargetKind {
	case components.TargetUnit:
		if !s.unitMap.Has(d.Target) {
			return true
		}
		victim := s.unitMap.Get(d.Target)
		applied, killed := victim.TakeDamage(stats.Damage)
		counters.DamageDealt += applied
		s.countersMap.Get(d.Target).DamageTaken += applied
		if killed {
			counters.Kills++
			if i, ok := s.index[d.Target]; ok {
				s.contacts[victim.Team][i].Alive = false
			}
		}
		if s.events != nil {
			s.events.UnitDamaged(unit, victim, applied, killed)
		}
		return killed

	case components.TargetBase:
		applied, destroyed := enemyBase.TakeDamage(stats.Damage)
		counters.DamageDealt += applied
		if s.events != nil {
			s.events.BaseDamaged(unit, enemyBase, applied, destroyed)
		}
		return destroyed
	}
	return false
}

// advance moves the unit toward goal along its route, replanning inline
// when the cached route is stale.
func (s *CombatSystem) advance(pos *components.Position, unit *components.Unit, stats *components.Stats, route *components.Route, goal components.Position) {
	if goal == *pos {
		return
	}
	if NeedsReplan(route, goal.X, goal.Y, s.move.ReplanTolerance) {
		waypoints, err := s.paths.FindPath(*pos, goal)
		ApplyPath(route, goal, waypoints, err)
	}

	Advance(pos, route, goal, stats.Speed)
	ResolveObstacleContact(pos, unit.Radius, s.paths.Obstacles())
	ClampToWorld(pos, unit.Radius, s.move.WorldWidth, s.move.WorldHeight)
}

func (s *CombatSystem) updateContact(entity ecs.Entity, team traits.Team, pos *components.Position) {
	if i, ok := s.index[entity]; ok {
		s.contacts[team][i].X = pos.X
		s.contacts[team][i].Y = pos.Y
	}
}
