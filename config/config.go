// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	World       WorldConfig       `yaml:"world"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Unit        UnitConfig        `yaml:"unit"`
	Archetypes  []ArchetypeConfig `yaml:"archetypes"`
	Bases       BasesConfig       `yaml:"bases"`
	Obstacles   ObstaclesConfig   `yaml:"obstacles"`
	Pathfinding PathfindingConfig `yaml:"pathfinding"`
	Genetics    GeneticsConfig    `yaml:"genetics"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// WorldConfig holds arena dimensions. Zero means use the screen size.
type WorldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// PhysicsConfig holds timing parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"` // seconds per tick
}

// UnitConfig holds the baseline stats every archetype multiplier scales.
type UnitConfig struct {
	Radius         float64 `yaml:"radius"`
	MaxHealth      float64 `yaml:"max_health"`
	Damage         float64 `yaml:"damage"`
	AttackRange    float64 `yaml:"attack_range"`    // px, centre to centre
	Detection      float64 `yaml:"detection"`       // px
	Speed          float64 `yaml:"speed"`           // px per tick
	AttackCooldown float64 `yaml:"attack_cooldown"` // seconds between attacks
}

// ArchetypeConfig defines the stat multipliers of a unit type.
type ArchetypeConfig struct {
	Name   string  `yaml:"name"`
	Range  float64 `yaml:"range"`
	Damage float64 `yaml:"damage"`
	Speed  float64 `yaml:"speed"`
	Health float64 `yaml:"health"`

	// Bounds overrides genetics.bounds for this archetype (trait -> [min, max]).
	Bounds map[string][2]float64 `yaml:"bounds,omitempty"`
}

// BasesConfig holds base and spawning parameters.
type BasesConfig struct {
	Inset           float64  `yaml:"inset"` // distance of each base from its corner
	Radius          float64  `yaml:"radius"`
	Health          float64  `yaml:"health"`
	SpawnCooldown   float64  `yaml:"spawn_cooldown"` // seconds
	SpawnJitter     float64  `yaml:"spawn_jitter"`   // px around the base centre
	MaxUnitsPerTeam int      `yaml:"max_units_per_team"`
	SpawnOrder      []string `yaml:"spawn_order"`
	InitialRoster   bool     `yaml:"initial_roster"` // one unit per archetype at start
}

// ObstacleKindConfig is one selectable obstacle type.
type ObstacleKindConfig struct {
	Name   string  `yaml:"name"`
	Radius float64 `yaml:"radius"`
	Weight int     `yaml:"weight"`
}

// ObstaclesConfig holds obstacle placement parameters.
type ObstaclesConfig struct {
	Count         int                  `yaml:"count"`
	Attempts      int                  `yaml:"attempts"`       // placement tries per obstacle
	EdgeMargin    float64              `yaml:"edge_margin"`    // keep-out from the map edge
	MinSpacing    float64              `yaml:"min_spacing"`    // centre to centre
	BaseClearance float64              `yaml:"base_clearance"` // centre to base centre
	Kinds         []ObstacleKindConfig `yaml:"kinds"`
}

// PathfindingConfig holds route planning parameters.
type PathfindingConfig struct {
	CellSize          float64 `yaml:"cell_size"`
	SafetyMargin      float64 `yaml:"safety_margin"`
	MaxExpansions     int     `yaml:"max_expansions"`
	ReplanTolerance   float64 `yaml:"replan_tolerance"`
	ParallelThreshold int     `yaml:"parallel_threshold"` // min requests before fanning out
	Workers           int     `yaml:"workers"`            // 0 = GOMAXPROCS
}

// FitnessConfig holds the outcome weights.
type FitnessConfig struct {
	DamageDealt float64 `yaml:"damage_dealt"`
	Survival    float64 `yaml:"survival"` // per tick survived
	Kills       float64 `yaml:"kills"`
	DamageTaken float64 `yaml:"damage_taken"`
}

// GeneticsConfig holds evolution parameters.
type GeneticsConfig struct {
	PopulationSize    int                   `yaml:"population_size"`
	MutationRate      float64               `yaml:"mutation_rate"`
	MutationSigma     float64               `yaml:"mutation_sigma"` // fraction of the bound range
	CrossoverRate     float64               `yaml:"crossover_rate"`
	TournamentSize    int                   `yaml:"tournament_size"`
	EliteCount        int                   `yaml:"elite_count"`
	InitJitter        float64               `yaml:"init_jitter"`
	EvolveEverySpawns int                   `yaml:"evolve_every_spawns"`
	TemplateArchetype string                `yaml:"template_archetype"`
	Baseline          map[string]float64    `yaml:"baseline"`
	Bounds            map[string][2]float64 `yaml:"bounds"`
	Fitness           FitnessConfig         `yaml:"fitness"`
}

// TelemetryConfig holds statistics parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds per event window
	SampleEvery int     `yaml:"sample_every"` // ticks between team/archetype rows
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32                float32        // Physics.DT as float32
	ScreenW32           float32        // Screen.Width as float32
	ScreenH32           float32        // Screen.Height as float32
	WorldW32            float32        // Effective world width as float32
	WorldH32            float32        // Effective world height as float32
	AttackCooldownTicks int32          // Unit.AttackCooldown in ticks
	SpawnCooldownTicks  int32          // Bases.SpawnCooldown in ticks
	StatsWindowTicks    int32          // Telemetry.StatsWindow in ticks
	ArchetypeIndex      map[string]int // name -> index for archetype lookup
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path (or defaults if empty)
// and sets it as the global config.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load reads configuration from a YAML file, using embedded defaults for
// any fields not specified in the file.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns a fresh copy of the embedded configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// toTicks converts seconds to whole ticks, at least one.
func toTicks(sec, dt float64) int32 {
	if dt <= 0 {
		return 1
	}
	return int32(max(1, math.Round(sec/dt)))
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW32 = float32(worldW)
	c.Derived.WorldH32 = float32(worldH)

	c.Derived.AttackCooldownTicks = toTicks(c.Unit.AttackCooldown, c.Physics.DT)
	c.Derived.SpawnCooldownTicks = toTicks(c.Bases.SpawnCooldown, c.Physics.DT)
	c.Derived.StatsWindowTicks = toTicks(c.Telemetry.StatsWindow, c.Physics.DT)

	// Synthesize default archetypes if none specified
	if len(c.Archetypes) == 0 {
		c.Archetypes = []ArchetypeConfig{
			{Name: "melee", Range: 0.5, Damage: 1.5, Speed: 1.0, Health: 1.0},
			{Name: "ranged", Range: 4.0, Damage: 1.0, Speed: 1.0, Health: 0.6},
			{Name: "tank", Range: 1.5, Damage: 0.6, Speed: 0.6, Health: 2.0},
		}
	}

	// Unset multipliers are neutral; unset bounds inherit the shared ones
	for i := range c.Archetypes {
		arch := &c.Archetypes[i]
		for _, m := range []*float64{&arch.Range, &arch.Damage, &arch.Speed, &arch.Health} {
			if *m == 0 {
				*m = 1.0
			}
		}
		merged := make(map[string][2]float64, len(c.Genetics.Bounds))
		for k, v := range c.Genetics.Bounds {
			merged[k] = v
		}
		for k, v := range arch.Bounds {
			merged[k] = v
		}
		arch.Bounds = merged
	}

	// Build archetype index for fast lookup
	c.Derived.ArchetypeIndex = make(map[string]int, len(c.Archetypes))
	for i, arch := range c.Archetypes {
		c.Derived.ArchetypeIndex[arch.Name] = i
	}
}

// Archetype returns the archetype config with the given name.
func (c *Config) Archetype(name string) (*ArchetypeConfig, bool) {
	i, ok := c.Derived.ArchetypeIndex[name]
	if !ok {
		return nil, false
	}
	return &c.Archetypes[i], true
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
