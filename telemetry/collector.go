package telemetry

import "github.com/pthm-cable/arena/traits"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window, indexed by team
	spawns     [traits.NumTeams]int
	deaths     [traits.NumTeams]int
	hits       [traits.NumTeams]int
	damage     [traits.NumTeams]float64
	kills      [traits.NumTeams]int
	baseDamage [traits.NumTeams]float64
	evolutions int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordSpawn records a unit entering the arena.
func (c *Collector) RecordSpawn(team traits.Team) {
	c.spawns[team]++
}

// RecordDeath records a unit being removed.
func (c *Collector) RecordDeath(team traits.Team) {
	c.deaths[team]++
}

// RecordHit records damage dealt to a unit by the attacking team.
func (c *Collector) RecordHit(attacker traits.Team, amount float32) {
	c.hits[attacker]++
	c.damage[attacker] += float64(amount)
}

// RecordKill records a kill by the attacking team.
func (c *Collector) RecordKill(attacker traits.Team) {
	c.kills[attacker]++
}

// RecordBaseHit records damage dealt to the enemy base.
func (c *Collector) RecordBaseHit(attacker traits.Team, amount float32) {
	c.baseDamage[attacker] += float64(amount)
}

// RecordEvolution records a population advancing a generation.
func (c *Collector) RecordEvolution() {
	c.evolutions++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// samples is the live unit state at currentTick.
func (c *Collector) Flush(currentTick int32, samples []UnitSample) WindowStats {
	var alive [traits.NumTeams]int
	var health [traits.NumTeams][]float64
	for i := range samples {
		alive[samples[i].Team]++
		health[samples[i].Team] = append(health[samples[i].Team], float64(samples[i].Health))
	}
	blueHealth := Summarize(health[traits.Blue])
	redHealth := Summarize(health[traits.Red])

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		BlueAlive: alive[traits.Blue],
		RedAlive:  alive[traits.Red],

		BlueSpawns: c.spawns[traits.Blue],
		RedSpawns:  c.spawns[traits.Red],
		BlueDeaths: c.deaths[traits.Blue],
		RedDeaths:  c.deaths[traits.Red],

		BlueHits:       c.hits[traits.Blue],
		RedHits:        c.hits[traits.Red],
		BlueDamage:     c.damage[traits.Blue],
		RedDamage:      c.damage[traits.Red],
		BlueKills:      c.kills[traits.Blue],
		RedKills:       c.kills[traits.Red],
		BlueBaseDamage: c.baseDamage[traits.Blue],
		RedBaseDamage:  c.baseDamage[traits.Red],

		Evolutions: c.evolutions,

		BlueHealthMean: blueHealth.Mean,
		BlueHealthP50:  blueHealth.P50,
		RedHealthMean:  redHealth.Mean,
		RedHealthP50:   redHealth.P50,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.spawns = [traits.NumTeams]int{}
	c.deaths = [traits.NumTeams]int{}
	c.hits = [traits.NumTeams]int{}
	c.damage = [traits.NumTeams]float64{}
	c.kills = [traits.NumTeams]int{}
	c.baseDamage = [traits.NumTeams]float64{}
	c.evolutions = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
