package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pthm-cable/arena/traits"
)

// HallEntry is one generation leader worth keeping.
type HallEntry struct {
	Team       traits.Team
	Generation int
	Tick       int32
	LeaderID   uint64
	Fitness    float64
	Genes      map[string]float64
}

// HallOfFame keeps the best generation leaders seen per team.
type HallOfFame struct {
	halls   [traits.NumTeams][]HallEntry
	maxSize int
}

// NewHallOfFame creates a new hall of fame with the given capacity per team.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	hof := &HallOfFame{maxSize: maxSize}
	for i := range hof.halls {
		hof.halls[i] = make([]HallEntry, 0, maxSize)
	}
	return hof
}

// Consider offers a generation's leader to its team's hall.
// Returns true if the leader was added.
func (hof *HallOfFame) Consider(rec GenerationRecord) bool {
	if len(rec.LeaderGenes) == 0 {
		return false
	}
	hall := &hof.halls[rec.Team]
	if len(*hall) >= hof.maxSize && rec.LeaderFitness <= (*hall)[len(*hall)-1].Fitness {
		return false
	}
	// The same individual can lead several generations; keep its best showing.
	for i := range *hall {
		if (*hall)[i].LeaderID == rec.LeaderID {
			if rec.LeaderFitness <= (*hall)[i].Fitness {
				return false
			}
			*hall = append((*hall)[:i], (*hall)[i+1:]...)
			break
		}
	}

	genes := make(map[string]float64, len(rec.LeaderGenes))
	for k, v := range rec.LeaderGenes {
		genes[k] = v
	}
	*hall = hof.insertEntry(*hall, HallEntry{
		Team:       rec.Team,
		Generation: rec.Generation,
		Tick:       rec.Tick,
		LeaderID:   rec.LeaderID,
		Fitness:    rec.LeaderFitness,
		Genes:      genes,
	})
	return true
}

// insertEntry adds entry in descending fitness order, evicting the
// weakest when the hall is full. Equal fitness keeps the older entry first.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) []HallEntry {
	pos := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})
	hall = append(hall, HallEntry{})
	copy(hall[pos+1:], hall[pos:])
	hall[pos] = entry
	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}
	return hall
}

// Size returns the number of entries for a team.
func (hof *HallOfFame) Size(team traits.Team) int {
	return len(hof.halls[team])
}

// Entries returns a team's entries, best first.
func (hof *HallOfFame) Entries(team traits.Team) []HallEntry {
	return append([]HallEntry(nil), hof.halls[team]...)
}

// TopFitness returns the best fitness in a team's hall, or 0 if empty.
func (hof *HallOfFame) TopFitness(team traits.Team) float64 {
	if len(hof.halls[team]) == 0 {
		return 0
	}
	return hof.halls[team][0].Fitness
}

// hallEntryJSON is the JSON representation of a hall entry.
type hallEntryJSON struct {
	Generation int                `json:"generation"`
	Tick       int32              `json:"tick"`
	LeaderID   uint64             `json:"leader_id"`
	Fitness    float64            `json:"fitness"`
	Genes      map[string]float64 `json:"genes"`
}

// MarshalJSON serializes the hall of fame keyed by team name.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	export := make(map[string][]hallEntryJSON, len(traits.Teams))
	for _, team := range traits.Teams {
		hall := hof.halls[team]
		entries := make([]hallEntryJSON, len(hall))
		for i, e := range hall {
			entries[i] = hallEntryJSON{
				Generation: e.Generation,
				Tick:       e.Tick,
				LeaderID:   e.LeaderID,
				Fitness:    e.Fitness,
				Genes:      e.Genes,
			}
		}
		export[team.String()] = entries
	}
	return json.MarshalIndent(export, "", "  ")
}

// WriteFile saves the hall of fame as JSON.
func (hof *HallOfFame) WriteFile(path string) error {
	data, err := hof.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing hall of fame: %w", err)
	}
	return nil
}
