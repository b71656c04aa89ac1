package genetics

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pthm-cable/arena/traits"
)

func testBounds() Bounds {
	var b Bounds
	for _, t := range traits.AllTraits {
		b[t] = Range{Min: 0.5, Max: 2.0}
	}
	b[traits.Aggression] = Range{Min: 0, Max: 0.9}
	return b
}

func testSettings() Settings {
	return Settings{
		PopulationSize: 10,
		MutationRate:   0.3,
		MutationSigma:  0.2,
		CrossoverRate:  0.7,
		TournamentSize: 3,
		EliteCount:     1,
		InitJitter:     0.1,
		Fitness: FitnessWeights{
			DamageDealt: 1,
			Survival:    0.01,
			Kills:       25,
			DamageTaken: 0.5,
		},
	}
}

func testTemplate() Template {
	return Template{
		Archetype: traits.Melee,
		Baseline: map[traits.Trait]float64{
			traits.Speed:       1.0,
			traits.AttackRange: 1.0,
			traits.Damage:      1.0,
			traits.Detection:   1.0,
			traits.Aggression:  0.2,
		},
		Bounds: testBounds(),
	}
}

func newTestEngine(t *testing.T, seed int64) *Engine {
	t.Helper()
	e, err := NewEngine(testSettings(), rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func TestInitializePopulationAroundBaseline(t *testing.T) {
	e := newTestEngine(t, 42)

	if err := e.InitializePopulation(traits.Blue, testTemplate()); err != nil {
		t.Fatalf("InitializePopulation failed: %v", err)
	}

	pop, ok := e.Population(traits.Blue)
	if !ok {
		t.Fatal("expected blue population to exist")
	}
	if pop.Size() != 10 {
		t.Fatalf("expected 10 individuals, got %d", pop.Size())
	}
	if pop.Generation != 0 {
		t.Errorf("expected generation 0, got %d", pop.Generation)
	}

	jitter := testSettings().InitJitter
	for i, ind := range pop.Individuals {
		speed := ind.Genes.Get(traits.Speed)
		if speed < 1.0-jitter || speed > 1.0+jitter {
			t.Errorf("individual %d speed %v outside [%v, %v]", i, speed, 1.0-jitter, 1.0+jitter)
		}
		if err := pop.Bounds.Validate(ind.Genes); err != nil {
			t.Errorf("individual %d out of bounds: %v", i, err)
		}
	}
}

func TestInitializePopulationEmptyTemplate(t *testing.T) {
	e := newTestEngine(t, 1)

	tmpl := testTemplate()
	tmpl.Baseline = nil

	err := e.InitializePopulation(traits.Red, tmpl)
	if !errors.Is(err, ErrEmptyTemplate) {
		t.Fatalf("expected ErrEmptyTemplate, got %v", err)
	}
	if _, ok := e.Population(traits.Red); ok {
		t.Error("population should not exist after failed initialization")
	}
}

func TestEvolvePopulationInvariants(t *testing.T) {
	e := newTestEngine(t, 7)
	if err := e.InitializePopulation(traits.Blue, testTemplate()); err != nil {
		t.Fatalf("InitializePopulation failed: %v", err)
	}

	for gen := 1; gen <= 25; gen++ {
		leader, err := e.Leader(traits.Blue)
		if err != nil {
			t.Fatalf("Leader failed: %v", err)
		}
		e.RecordOutcome(traits.Blue, leader.ID, Outcome{
			DamageDealt:   float64(gen * 3),
			DamageTaken:   10,
			Kills:         gen % 2,
			TicksSurvived: 300,
		})

		pop, err := e.EvolvePopulation(traits.Blue)
		if err != nil {
			t.Fatalf("EvolvePopulation failed: %v", err)
		}
		if pop.Size() != 10 {
			t.Fatalf("generation %d: expected 10 individuals, got %d", gen, pop.Size())
		}
		if pop.Generation != gen {
			t.Fatalf("expected generation %d, got %d", gen, pop.Generation)
		}
		for i, ind := range pop.Individuals {
			if err := pop.Bounds.Validate(ind.Genes); err != nil {
				t.Fatalf("generation %d individual %d out of bounds: %v", gen, i, err)
			}
		}
	}
}

func TestEvolveKeepsEliteAsLeader(t *testing.T) {
	e := newTestEngine(t, 3)
	if err := e.InitializePopulation(traits.Red, testTemplate()); err != nil {
		t.Fatalf("InitializePopulation failed: %v", err)
	}

	before, _ := e.Population(traits.Red)
	star := before.Individuals[4]
	e.RecordOutcome(traits.Red, star.ID, Outcome{DamageDealt: 500, Kills: 4, TicksSurvived: 1000})

	after, err := e.EvolvePopulation(traits.Red)
	if err != nil {
		t.Fatalf("EvolvePopulation failed: %v", err)
	}

	leader, _ := after.Leader()
	if leader.ID != star.ID {
		t.Errorf("expected elite %d to lead, got %d", star.ID, leader.ID)
	}
	if leader.Genes != star.Genes {
		t.Error("elite genes should be copied unchanged")
	}
	if !leader.Evaluated() {
		t.Error("elite should carry its measured fitness")
	}
}

func TestEvolveUnknownTeam(t *testing.T) {
	e := newTestEngine(t, 1)

	if _, err := e.EvolvePopulation(traits.Red); !errors.Is(err, ErrUnknownTeam) {
		t.Errorf("expected ErrUnknownTeam, got %v", err)
	}
	if _, err := e.Leader(traits.Blue); !errors.Is(err, ErrUnknownTeam) {
		t.Errorf("expected ErrUnknownTeam from Leader, got %v", err)
	}
}

func TestEmptyPopulation(t *testing.T) {
	e := newTestEngine(t, 1)
	e.populations[traits.Blue] = &Population{}

	if _, err := e.Leader(traits.Blue); !errors.Is(err, ErrEmptyPopulation) {
		t.Errorf("expected ErrEmptyPopulation from Leader, got %v", err)
	}
	if _, err := e.EvolvePopulation(traits.Blue); !errors.Is(err, ErrEmptyPopulation) {
		t.Errorf("expected ErrEmptyPopulation from EvolvePopulation, got %v", err)
	}
}

func TestEvolveDeterministic(t *testing.T) {
	run := func() Population {
		e := newTestEngine(t, 99)
		if err := e.InitializePopulation(traits.Blue, testTemplate()); err != nil {
			t.Fatalf("InitializePopulation failed: %v", err)
		}
		var pop Population
		for i := 0; i < 5; i++ {
			var err error
			pop, err = e.EvolvePopulation(traits.Blue)
			if err != nil {
				t.Fatalf("EvolvePopulation failed: %v", err)
			}
		}
		return pop
	}

	a, b := run(), run()
	for i := range a.Individuals {
		if a.Individuals[i].Genes != b.Individuals[i].Genes {
			t.Fatalf("individual %d differs between identical runs", i)
		}
	}
}

func TestRecordOutcomeIgnoresStaleIndividuals(t *testing.T) {
	e := newTestEngine(t, 5)
	if err := e.InitializePopulation(traits.Blue, testTemplate()); err != nil {
		t.Fatalf("InitializePopulation failed: %v", err)
	}

	// Unknown id: must not panic or create credit
	e.RecordOutcome(traits.Blue, 123456, Outcome{Kills: 10})
	if len(e.credits[traits.Blue]) != 0 {
		t.Errorf("expected no credit for unknown id, got %d entries", len(e.credits[traits.Blue]))
	}

	// Unknown team: ignored
	e.RecordOutcome(traits.Red, 1, Outcome{Kills: 1})
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
		ok     bool
	}{
		{"defaults", func(s *Settings) {}, true},
		{"zero population", func(s *Settings) { s.PopulationSize = 0 }, false},
		{"elite fills population", func(s *Settings) { s.EliteCount = s.PopulationSize }, false},
		{"negative mutation rate", func(s *Settings) { s.MutationRate = -0.1 }, false},
		{"crossover above one", func(s *Settings) { s.CrossoverRate = 1.5 }, false},
		{"zero tournament", func(s *Settings) { s.TournamentSize = 0 }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := testSettings()
			tc.modify(&s)
			err := s.Validate()
			if (err == nil) != tc.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tc.ok)
			}
		})
	}
}
