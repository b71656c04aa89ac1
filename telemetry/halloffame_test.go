package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/arena/traits"
)

func leaderRecord(team traits.Team, gen int, id uint64, fitness float64) GenerationRecord {
	return GenerationRecord{
		Team:          team,
		Generation:    gen,
		LeaderID:      id,
		LeaderFitness: fitness,
		LeaderGenes:   map[string]float64{"speed": 1, "aggression": 0.2},
	}
}

func TestHallOfFameOrderAndCapacity(t *testing.T) {
	hof := NewHallOfFame(3)
	for i, f := range []float64{5, 9, 1, 7, 3} {
		hof.Consider(leaderRecord(traits.Blue, i+1, uint64(i+1), f))
	}

	entries := hof.Entries(traits.Blue)
	if len(entries) != 3 {
		t.Fatalf("size = %d, want 3", len(entries))
	}
	want := []float64{9, 7, 5}
	for i, e := range entries {
		if e.Fitness != want[i] {
			t.Errorf("entry %d fitness = %v, want %v", i, e.Fitness, want[i])
		}
	}
	if hof.TopFitness(traits.Blue) != 9 {
		t.Errorf("TopFitness = %v, want 9", hof.TopFitness(traits.Blue))
	}
	if hof.Size(traits.Red) != 0 {
		t.Errorf("red hall should be empty")
	}
}

func TestHallOfFameKeepsBestShowingPerLeader(t *testing.T) {
	hof := NewHallOfFame(5)
	if !hof.Consider(leaderRecord(traits.Red, 1, 42, 3)) {
		t.Fatal("first entry rejected")
	}
	if hof.Consider(leaderRecord(traits.Red, 2, 42, 2)) {
		t.Error("worse showing of the same leader accepted")
	}
	if !hof.Consider(leaderRecord(traits.Red, 3, 42, 6)) {
		t.Error("better showing of the same leader rejected")
	}
	entries := hof.Entries(traits.Red)
	if len(entries) != 1 || entries[0].Generation != 3 {
		t.Errorf("entries = %+v, want one entry from generation 3", entries)
	}
}

func TestHallOfFameIgnoresEmptyGenes(t *testing.T) {
	hof := NewHallOfFame(5)
	rec := leaderRecord(traits.Blue, 1, 1, 10)
	rec.LeaderGenes = nil
	if hof.Consider(rec) {
		t.Error("record without leader genes accepted")
	}
}

func TestHallOfFameWriteFile(t *testing.T) {
	hof := NewHallOfFame(2)
	hof.Consider(leaderRecord(traits.Blue, 4, 7, 12.5))

	path := filepath.Join(t.TempDir(), "hall_of_fame.json")
	if err := hof.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var got map[string][]hallEntryJSON
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	blue := got["blue"]
	if len(blue) != 1 || blue[0].LeaderID != 7 || blue[0].Genes["speed"] != 1 {
		t.Errorf("blue = %+v", blue)
	}
	if red, ok := got["red"]; !ok || len(red) != 0 {
		t.Errorf("red = %+v, want empty list", red)
	}
}

func TestRecorderWritesHallOfFame(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	r := NewRecorder(om, 1, false)
	rec := leaderRecord(traits.Blue, 1, 3, 4)
	rec.Genes = []map[string]float64{rec.LeaderGenes}
	r.ObserveGeneration(rec)

	if r.HallOfFame().Size(traits.Blue) != 1 {
		t.Errorf("hall size = %d, want 1", r.HallOfFame().Size(traits.Blue))
	}
	if _, err := os.Stat(filepath.Join(dir, "hall_of_fame.json")); err != nil {
		t.Errorf("hall_of_fame.json not written: %v", err)
	}
}
