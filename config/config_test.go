package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Derived.WorldW32 != 800 || cfg.Derived.WorldH32 != 600 {
		t.Errorf("world = %vx%v, want 800x600", cfg.Derived.WorldW32, cfg.Derived.WorldH32)
	}
	if cfg.Bases.MaxUnitsPerTeam != 6 {
		t.Errorf("MaxUnitsPerTeam = %d, want 6", cfg.Bases.MaxUnitsPerTeam)
	}
	if cfg.Genetics.PopulationSize != 10 {
		t.Errorf("PopulationSize = %d, want 10", cfg.Genetics.PopulationSize)
	}
	if cfg.Derived.AttackCooldownTicks != 60 {
		t.Errorf("AttackCooldownTicks = %d, want 60", cfg.Derived.AttackCooldownTicks)
	}

	tests := []struct {
		name                       string
		rng, damage, speed, health float64
	}{
		{"melee", 0.5, 1.5, 1.0, 1.0},
		{"ranged", 4.0, 1.0, 1.0, 0.6},
		{"tank", 1.5, 0.6, 0.6, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arch, ok := cfg.Archetype(tt.name)
			if !ok {
				t.Fatalf("archetype %q missing", tt.name)
			}
			if arch.Range != tt.rng || arch.Damage != tt.damage || arch.Speed != tt.speed || arch.Health != tt.health {
				t.Errorf("%s multipliers = %v/%v/%v/%v", tt.name, arch.Range, arch.Damage, arch.Speed, arch.Health)
			}
			if b := arch.Bounds["aggression"]; b != [2]float64{0, 0.9} {
				t.Errorf("%s aggression bounds = %v, want inherited [0 0.9]", tt.name, b)
			}
		})
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.yaml")
	data := []byte(`
bases:
  max_units_per_team: 3
archetypes:
  - name: melee
    range: 0.8
    bounds:
      speed: [0.8, 1.2]
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bases.MaxUnitsPerTeam != 3 {
		t.Errorf("MaxUnitsPerTeam = %d, want 3", cfg.Bases.MaxUnitsPerTeam)
	}
	if cfg.Bases.Radius != 40 {
		t.Errorf("unset field lost its default: Radius = %v", cfg.Bases.Radius)
	}

	melee, ok := cfg.Archetype("melee")
	if !ok {
		t.Fatal("melee missing")
	}
	if melee.Damage != 1.0 {
		t.Errorf("unset multiplier = %v, want 1.0", melee.Damage)
	}
	if melee.Bounds["speed"] != [2]float64{0.8, 1.2} {
		t.Errorf("speed bounds = %v, want override", melee.Bounds["speed"])
	}
	if melee.Bounds["damage"] != [2]float64{0.5, 2.0} {
		t.Errorf("damage bounds = %v, want inherited", melee.Bounds["damage"])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestInitSetsGlobal(t *testing.T) {
	if err := Init(""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Cfg().Genetics.PopulationSize != 10 {
		t.Errorf("Cfg().Genetics.PopulationSize = %d, want 10", Cfg().Genetics.PopulationSize)
	}

	if err := Init(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if Cfg() == nil {
		t.Error("failed Init cleared the previous config")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Genetics.MutationRate = 0.25

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Genetics.MutationRate != 0.25 {
		t.Errorf("MutationRate = %v, want 0.25", loaded.Genetics.MutationRate)
	}
}
