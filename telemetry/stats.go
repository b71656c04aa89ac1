package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/arena/traits"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Unit counts at window end
	BlueAlive int `csv:"blue_alive"`
	RedAlive  int `csv:"red_alive"`

	// Events during window
	BlueSpawns int `csv:"blue_spawns"`
	RedSpawns  int `csv:"red_spawns"`
	BlueDeaths int `csv:"blue_deaths"`
	RedDeaths  int `csv:"red_deaths"`

	// Combat, credited to the attacking team
	BlueHits       int     `csv:"blue_hits"`
	RedHits        int     `csv:"red_hits"`
	BlueDamage     float64 `csv:"blue_damage"`
	RedDamage      float64 `csv:"red_damage"`
	BlueKills      int     `csv:"blue_kills"`
	RedKills       int     `csv:"red_kills"`
	BlueBaseDamage float64 `csv:"blue_base_damage"`
	RedBaseDamage  float64 `csv:"red_base_damage"`

	Evolutions int `csv:"evolutions"`

	// Health distribution (sampled at window end)
	BlueHealthMean float64 `csv:"blue_health_mean"`
	BlueHealthP50  float64 `csv:"blue_health_p50"`
	RedHealthMean  float64 `csv:"red_health_mean"`
	RedHealthP50   float64 `csv:"red_health_p50"`
}

// TeamStats is one team-level row, sampled every few ticks.
type TeamStats struct {
	Tick          int32   `csv:"tick"`
	Team          string  `csv:"team"`
	Alive         int     `csv:"alive"`
	HealthMean    float64 `csv:"health_mean"`
	HealthStd     float64 `csv:"health_std"`
	HealthP10     float64 `csv:"health_p10"`
	HealthP50     float64 `csv:"health_p50"`
	HealthP90     float64 `csv:"health_p90"`
	DamageDealt   float64 `csv:"damage_dealt"`
	DamageTaken   float64 `csv:"damage_taken"`
	Kills         int     `csv:"kills"`
	MaxGeneration int     `csv:"generation"`
}

// ArchetypeStats is one team/archetype row, sampled every few ticks.
type ArchetypeStats struct {
	Tick            int32   `csv:"tick"`
	Team            string  `csv:"team"`
	Archetype       string  `csv:"archetype"`
	Alive           int     `csv:"alive"`
	HealthMean      float64 `csv:"health_mean"`
	HealthStd       float64 `csv:"health_std"`
	DamageDealtMean float64 `csv:"damage_dealt_mean"`
	Kills           int     `csv:"kills"`
	SurvivalMean    float64 `csv:"survival_ticks_mean"`
}

// Summary is the distribution of a sample.
type Summary struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Summarize computes mean, standard deviation and empirical quantiles.
// The input is not modified. An empty sample gives the zero Summary.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	var s Summary
	if n == 1 {
		s.Mean = values[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	s.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return s
}

// ComputeTeamStats aggregates samples into one row per team.
func ComputeTeamStats(tick int32, samples []UnitSample) []TeamStats {
	var health [traits.NumTeams][]float64
	rows := make([]TeamStats, traits.NumTeams)
	for _, team := range traits.Teams {
		rows[team] = TeamStats{Tick: tick, Team: team.String()}
	}

	for i := range samples {
		s := &samples[i]
		row := &rows[s.Team]
		row.Alive++
		row.DamageDealt += float64(s.DamageDealt)
		row.DamageTaken += float64(s.DamageTaken)
		row.Kills += s.Kills
		row.MaxGeneration = max(row.MaxGeneration, s.Generation)
		health[s.Team] = append(health[s.Team], float64(s.Health))
	}

	for _, team := range traits.Teams {
		sum := Summarize(health[team])
		row := &rows[team]
		row.HealthMean = sum.Mean
		row.HealthStd = sum.Std
		row.HealthP10 = sum.P10
		row.HealthP50 = sum.P50
		row.HealthP90 = sum.P90
	}
	return rows
}

// ComputeArchetypeStats aggregates samples into one row per team and archetype.
func ComputeArchetypeStats(tick int32, samples []UnitSample) []ArchetypeStats {
	type bucket struct {
		health, dealt, survival []float64
		kills                   int
	}
	var buckets [traits.NumTeams][traits.NumArchetypes]bucket

	for i := range samples {
		s := &samples[i]
		b := &buckets[s.Team][s.Archetype]
		b.health = append(b.health, float64(s.Health))
		b.dealt = append(b.dealt, float64(s.DamageDealt))
		b.survival = append(b.survival, float64(s.TicksSurvived))
		b.kills += s.Kills
	}

	rows := make([]ArchetypeStats, 0, int(traits.NumTeams)*int(traits.NumArchetypes))
	for _, team := range traits.Teams {
		for _, arch := range traits.Archetypes {
			b := &buckets[team][arch]
			health := Summarize(b.health)
			rows = append(rows, ArchetypeStats{
				Tick:            tick,
				Team:            team.String(),
				Archetype:       arch.String(),
				Alive:           len(b.health),
				HealthMean:      health.Mean,
				HealthStd:       health.Std,
				DamageDealtMean: Summarize(b.dealt).Mean,
				Kills:           b.kills,
				SurvivalMean:    Summarize(b.survival).Mean,
			})
		}
	}
	return rows
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("blue_alive", s.BlueAlive),
		slog.Int("red_alive", s.RedAlive),
		slog.Int("blue_spawns", s.BlueSpawns),
		slog.Int("red_spawns", s.RedSpawns),
		slog.Int("blue_deaths", s.BlueDeaths),
		slog.Int("red_deaths", s.RedDeaths),
		slog.Int("blue_hits", s.BlueHits),
		slog.Int("red_hits", s.RedHits),
		slog.Float64("blue_damage", s.BlueDamage),
		slog.Float64("red_damage", s.RedDamage),
		slog.Int("blue_kills", s.BlueKills),
		slog.Int("red_kills", s.RedKills),
		slog.Float64("blue_base_damage", s.BlueBaseDamage),
		slog.Float64("red_base_damage", s.RedBaseDamage),
		slog.Int("evolutions", s.Evolutions),
		slog.Float64("blue_health_mean", s.BlueHealthMean),
		slog.Float64("red_health_mean", s.RedHealthMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"blue_alive", s.BlueAlive,
		"red_alive", s.RedAlive,
		"blue_spawns", s.BlueSpawns,
		"red_spawns", s.RedSpawns,
		"blue_deaths", s.BlueDeaths,
		"red_deaths", s.RedDeaths,
		"blue_damage", s.BlueDamage,
		"red_damage", s.RedDamage,
		"blue_kills", s.BlueKills,
		"red_kills", s.RedKills,
		"blue_base_damage", s.BlueBaseDamage,
		"red_base_damage", s.RedBaseDamage,
		"evolutions", s.Evolutions,
	)
}
