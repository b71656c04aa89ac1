package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/arena/traits"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name          string
		values        []float64
		mean, std     float64
		p10, p50, p90 float64
	}{
		{"empty slice", nil, 0, 0, 0, 0, 0},
		{"single element", []float64{5}, 5, 0, 5, 5, 5},
		{"one to ten", []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, 5.5, 3.0277, 1, 5, 9},
		{"textbook", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 2.1381, 2, 4, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.values)
			if math.Abs(s.Mean-tt.mean) > 0.001 {
				t.Errorf("Mean = %v, want %v", s.Mean, tt.mean)
			}
			if math.Abs(s.Std-tt.std) > 0.001 {
				t.Errorf("Std = %v, want %v", s.Std, tt.std)
			}
			if s.P10 != tt.p10 || s.P50 != tt.p50 || s.P90 != tt.p90 {
				t.Errorf("quantiles = %v/%v/%v, want %v/%v/%v", s.P10, s.P50, s.P90, tt.p10, tt.p50, tt.p90)
			}
		})
	}
}

func TestSummarizeDoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Summarize(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered: %v", values)
	}
}

func TestComputeTeamStats(t *testing.T) {
	samples := []UnitSample{
		{Team: traits.Blue, Archetype: traits.Melee, Health: 100, DamageDealt: 30, Kills: 1, Generation: 2},
		{Team: traits.Blue, Archetype: traits.Tank, Health: 50, DamageTaken: 150, Generation: 3},
		{Team: traits.Red, Archetype: traits.Ranged, Health: 60, DamageDealt: 10},
	}

	rows := ComputeTeamStats(120, samples)
	if len(rows) != int(traits.NumTeams) {
		t.Fatalf("got %d rows, want %d", len(rows), traits.NumTeams)
	}

	blue := rows[traits.Blue]
	if blue.Team != "blue" || blue.Tick != 120 {
		t.Errorf("blue row header = %s/%d", blue.Team, blue.Tick)
	}
	if blue.Alive != 2 || blue.HealthMean != 75 {
		t.Errorf("blue alive=%d mean=%v, want 2 75", blue.Alive, blue.HealthMean)
	}
	if blue.DamageDealt != 30 || blue.DamageTaken != 150 || blue.Kills != 1 {
		t.Errorf("blue combat = %v/%v/%d", blue.DamageDealt, blue.DamageTaken, blue.Kills)
	}
	if blue.MaxGeneration != 3 {
		t.Errorf("blue generation = %d, want 3", blue.MaxGeneration)
	}

	red := rows[traits.Red]
	if red.Alive != 1 || red.HealthMean != 60 || red.HealthStd != 0 {
		t.Errorf("red alive=%d mean=%v std=%v, want 1 60 0", red.Alive, red.HealthMean, red.HealthStd)
	}
}

func TestComputeArchetypeStats(t *testing.T) {
	samples := []UnitSample{
		{Team: traits.Red, Archetype: traits.Tank, Health: 200, DamageDealt: 12, TicksSurvived: 100},
		{Team: traits.Red, Archetype: traits.Tank, Health: 100, DamageDealt: 6, TicksSurvived: 300, Kills: 2},
	}

	rows := ComputeArchetypeStats(60, samples)
	if len(rows) != int(traits.NumTeams)*int(traits.NumArchetypes) {
		t.Fatalf("got %d rows, want one per team and archetype", len(rows))
	}

	for _, row := range rows {
		if row.Team == "red" && row.Archetype == "tank" {
			if row.Alive != 2 || row.HealthMean != 150 || row.DamageDealtMean != 9 || row.SurvivalMean != 200 || row.Kills != 2 {
				t.Errorf("red tank row = %+v", row)
			}
			continue
		}
		if row.Alive != 0 {
			t.Errorf("%s %s alive = %d, want 0", row.Team, row.Archetype, row.Alive)
		}
	}
}
