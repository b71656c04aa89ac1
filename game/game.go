// Package game wires the ECS world, combat systems and evolution engine
// into a steppable battle simulation.
package game

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/genetics"
	"github.com/pthm-cable/arena/systems"
	"github.com/pthm-cable/arena/telemetry"
	"github.com/pthm-cable/arena/traits"
)

// Options configures a Game beyond the loaded config.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string  // CSV + config snapshot; empty disables
	StepsPerUpdate int

	// Sink overrides the default telemetry recorder.
	Sink Sink

	// Obstacles replaces the generated layout when non-nil.
	Obstacles []components.Obstacle

	// TeamSettings overrides the evolution settings of individual teams.
	TeamSettings map[traits.Team]genetics.Settings
}

// archetypeSpec is the resolved config of one archetype.
type archetypeSpec struct {
	rangeMult, damageMult, speedMult, healthMult float32
	bounds                                       genetics.Bounds
}

// Game holds the complete game state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand

	// Entity mapper and filter over the unit layout
	unitMapper *ecs.Map7[
		components.Position,
		components.Unit,
		components.Stats,
		components.Genome,
		components.Combat,
		components.Route,
		components.Counters,
	]
	unitFilter *ecs.Filter7[
		components.Position,
		components.Unit,
		components.Stats,
		components.Genome,
		components.Combat,
		components.Route,
		components.Counters,
	]

	combat     *systems.CombatSystem
	paths      *systems.PathFinder
	engine     *genetics.Engine
	archetypes [traits.NumArchetypes]archetypeSpec

	obstacles []components.Obstacle
	bases     [traits.NumTeams]*components.Base

	// Route planning
	parallel     *parallelState
	planRequests []systems.PlanRequest

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.TickTimer
	outputManager *telemetry.OutputManager
	sink          Sink
	samples       []telemetry.UnitSample

	// State
	dead              []ecs.Entity
	logStats          bool
	tick              int32
	nextID            uint32
	active            [traits.NumTeams]int
	spawnsSinceEvolve [traits.NumTeams]int
	winner            traits.Team
	hasWinner         bool
	paused            bool
	stepsPerUpdate    int
	stopped           atomic.Bool
}

// NewGame creates a new game from the given config.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	world := ecs.NewWorld()

	g := &Game{
		cfg:   cfg,
		world: world,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		unitMapper: ecs.NewMap7[
			components.Position,
			components.Unit,
			components.Stats,
			components.Genome,
			components.Combat,
			components.Route,
			components.Counters,
		](world),
		unitFilter: ecs.NewFilter7[
			components.Position,
			components.Unit,
			components.Stats,
			components.Genome,
			components.Combat,
			components.Route,
			components.Counters,
		](world),
		nextID:         1,
		logStats:       opts.LogStats,
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),
	}

	if err := g.loadArchetypes(); err != nil {
		return nil, err
	}

	// Obstacles and bases
	if opts.Obstacles != nil {
		g.obstacles = append([]components.Obstacle(nil), opts.Obstacles...)
	}
	bases, err := g.createBases()
	if err != nil {
		return nil, err
	}
	g.bases = bases
	if opts.Obstacles == nil {
		g.obstacles = g.generateObstacles()
	}

	// Evolution engine
	engine, err := genetics.NewEngine(GeneticsSettings(cfg), g.rng)
	if err != nil {
		return nil, err
	}
	for team, s := range opts.TeamSettings {
		if err := engine.SetTeamSettings(team, s); err != nil {
			return nil, err
		}
	}
	g.engine = engine
	tmpl, err := g.populationTemplate()
	if err != nil {
		return nil, err
	}
	for _, team := range traits.Teams {
		if err := engine.InitializePopulation(team, tmpl); err != nil {
			return nil, err
		}
	}

	// Pathfinding and combat
	g.paths = systems.NewPathFinder(g.obstacles, PathSettings(cfg))
	g.combat = systems.NewCombatSystem(world, g.paths, systems.MoveSettings{
		ReplanTolerance: float32(cfg.Pathfinding.ReplanTolerance),
		WorldWidth:      cfg.Derived.WorldW32,
		WorldHeight:     cfg.Derived.WorldH32,
	}, g)
	g.parallel = newParallelState(cfg.Pathfinding.Workers, cfg.Pathfinding.ParallelThreshold)

	// Telemetry
	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Derived.DT32)
	g.perf = telemetry.NewTickTimer()
	g.sink = opts.Sink
	if g.sink == nil {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, err
		}
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, fmt.Errorf("writing config snapshot: %w", err)
		}
		g.outputManager = om
		g.sink = telemetry.NewRecorder(om, cfg.Telemetry.SampleEvery, opts.LogStats)
	}

	if cfg.Bases.InitialRoster {
		g.spawnInitialRoster()
	}

	return g, nil
}

// Update runs StepsPerUpdate simulation ticks unless paused or stopped.
func (g *Game) Update() {
	if g.paused || g.Stopped() {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// Step runs exactly one tick regardless of the pause state.
func (g *Game) Step() {
	g.step()
}

// Unload releases workers and closes output files.
func (g *Game) Unload() {
	g.stopParallelWorkers()
	if err := g.outputManager.Close(); err != nil {
		g.logError("failed to close output", err)
	}
}

// Stop requests the simulation loop to end. Safe to call from any goroutine.
func (g *Game) Stop() {
	g.stopped.Store(true)
}

// Stopped reports whether Stop was called.
func (g *Game) Stopped() bool {
	return g.stopped.Load()
}

// SetPaused pauses or resumes Update.
func (g *Game) SetPaused(p bool) {
	g.paused = p
}

// Paused reports whether Update is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// SetStepsPerUpdate changes the simulation speed multiplier.
func (g *Game) SetStepsPerUpdate(n int) {
	g.stepsPerUpdate = min(max(n, 1), 64)
}

// StepsPerUpdate returns the simulation speed multiplier.
func (g *Game) StepsPerUpdate() int {
	return g.stepsPerUpdate
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// Config returns the config the game was built with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Obstacles returns the static obstacle layout.
func (g *Game) Obstacles() []components.Obstacle {
	return g.obstacles
}

// Bases returns both team bases, indexed by team.
func (g *Game) Bases() [traits.NumTeams]*components.Base {
	return g.bases
}

// ActiveUnits returns the number of units a team has in the world.
func (g *Game) ActiveUnits(team traits.Team) int {
	return g.active[team]
}

// Population returns a copy of a team's current population.
func (g *Game) Population(team traits.Team) (genetics.Population, bool) {
	return g.engine.Population(team)
}

// PerfStats returns tick timing over the current stats window.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perf.Current()
}

// RecordFrame marks a rendered frame for FPS reporting.
func (g *Game) RecordFrame() {
	g.perf.Frame()
}

// Winner returns the team that destroyed the opposing base, if any.
func (g *Game) Winner() (traits.Team, bool) {
	return g.winner, g.hasWinner
}

// UnitView is a read-only copy of one unit's state.
type UnitView struct {
	Entity   ecs.Entity
	Pos      components.Position
	Unit     components.Unit
	Stats    components.Stats
	Genome   components.Genome
	Combat   components.Combat
	Counters components.Counters

	// Remaining route, shared with the simulation; do not modify.
	Waypoints []components.Position
}

// ForEachUnit calls fn for every unit in the world, in storage order.
func (g *Game) ForEachUnit(fn func(v *UnitView)) {
	var v UnitView
	query := g.unitFilter.Query()
	for query.Next() {
		pos, unit, stats, genome, combat, route, counters := query.Get()
		v = UnitView{
			Entity:   query.Entity(),
			Pos:      *pos,
			Unit:     *unit,
			Stats:    *stats,
			Genome:   *genome,
			Combat:   *combat,
			Counters: *counters,
		}
		if route.Index < len(route.Waypoints) {
			v.Waypoints = route.Waypoints[route.Index:]
		}
		fn(&v)
	}
}
