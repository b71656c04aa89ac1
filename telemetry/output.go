package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/traits"
)

// GenerationRow is one gene vector of a generation record in CSV form.
type GenerationRow struct {
	Tick        int32   `csv:"tick"`
	Team        string  `csv:"team"`
	Generation  int     `csv:"generation"`
	Unit        int     `csv:"unit"`
	LeaderID    uint64  `csv:"leader_id"`
	Fitness     float64 `csv:"leader_fitness"`
	Speed       float64 `csv:"speed"`
	AttackRange float64 `csv:"attack_range"`
	Damage      float64 `csv:"damage"`
	Detection   float64 `csv:"detection"`
	Aggression  float64 `csv:"aggression"`
}

// GenerationRows flattens a record into one row per unit.
func GenerationRows(rec GenerationRecord) []GenerationRow {
	rows := make([]GenerationRow, 0, len(rec.Genes))
	for i, genes := range rec.Genes {
		rows = append(rows, GenerationRow{
			Tick:        rec.Tick,
			Team:        rec.Team.String(),
			Generation:  rec.Generation,
			Unit:        i,
			LeaderID:    rec.LeaderID,
			Fitness:     rec.LeaderFitness,
			Speed:       genes[traits.Speed.String()],
			AttackRange: genes[traits.AttackRange.String()],
			Damage:      genes[traits.Damage.String()],
			Detection:   genes[traits.Detection.String()],
			Aggression:  genes[traits.Aggression.String()],
		})
	}
	return rows
}

// csvFile is an output CSV that writes its header with the first batch.
type csvFile struct {
	name          string
	f             *os.File
	headerWritten bool
}

func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, c.f); err != nil {
			return fmt.Errorf("writing %s: %w", c.name, err)
		}
		c.headerWritten = true
		return nil
	}
	// Subsequent writes skip headers
	if err := gocsv.MarshalWithoutHeaders(records, c.f); err != nil {
		return fmt.Errorf("writing %s: %w", c.name, err)
	}
	return nil
}

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir         string
	teams       *csvFile
	archetypes  *csvFile
	generations *csvFile
	windows     *csvFile
	perf        *csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	targets := []struct {
		name string
		dst  **csvFile
	}{
		{"team_stats.csv", &om.teams},
		{"archetype_stats.csv", &om.archetypes},
		{"generations.csv", &om.generations},
		{"windows.csv", &om.windows},
		{"perf.csv", &om.perf},
	}
	for _, t := range targets {
		f, err := os.Create(filepath.Join(dir, t.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", t.name, err)
		}
		*t.dst = &csvFile{name: t.name, f: f}
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTeamStats appends team rows to team_stats.csv.
func (om *OutputManager) WriteTeamStats(rows []TeamStats) error {
	if om == nil || len(rows) == 0 {
		return nil
	}
	return om.teams.write(rows)
}

// WriteArchetypeStats appends rows to archetype_stats.csv.
func (om *OutputManager) WriteArchetypeStats(rows []ArchetypeStats) error {
	if om == nil || len(rows) == 0 {
		return nil
	}
	return om.archetypes.write(rows)
}

// WriteGeneration appends a generation record to generations.csv.
func (om *OutputManager) WriteGeneration(rec GenerationRecord) error {
	if om == nil || len(rec.Genes) == 0 {
		return nil
	}
	return om.generations.write(GenerationRows(rec))
}

// WriteWindow writes a window stats record to windows.csv.
func (om *OutputManager) WriteWindow(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.windows.write([]WindowStats{stats})
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	return om.perf.write([]PerfRow{stats.Row(windowEnd)})
}

// WriteHallOfFame rewrites hall_of_fame.json.
func (om *OutputManager) WriteHallOfFame(hof *HallOfFame) error {
	if om == nil {
		return nil
	}
	return hof.WriteFile(filepath.Join(om.dir, "hall_of_fame.json"))
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.teams, om.archetypes, om.generations, om.windows, om.perf} {
		if c == nil || c.f == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
