package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsLoad(t *testing.T) {
	cfg := Default()
	if cfg.Population.Initial <= 0 || cfg.Population.Initial > cfg.Population.Max {
		t.Errorf("population initial=%d max=%d", cfg.Population.Initial, cfg.Population.Max)
	}
	if cfg.Clock.MaxStep != 0.1 {
		t.Errorf("max step = %v, want 0.1", cfg.Clock.MaxStep)
	}
	if cfg.Derived.HoursPerSecond != 24/cfg.Clock.DayLengthSec {
		t.Errorf("hours per second = %v", cfg.Derived.HoursPerSecond)
	}
	if cfg.Derived.AgentCellSize != cfg.Agent.SensorRadius {
		t.Errorf("agent cell size = %v, want sensor radius %v", cfg.Derived.AgentCellSize, cfg.Agent.SensorRadius)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := "population:\n  initial: 12\nparams:\n  food_value: 33\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.Population.Initial != 12 {
		t.Errorf("initial = %d, want 12", cfg.Population.Initial)
	}
	if cfg.Population.Max != def.Population.Max {
		t.Errorf("max = %d, want default %d", cfg.Population.Max, def.Population.Max)
	}
	if cfg.Params.FoodValue != 33 || cfg.Params.FoodSpawnRate != def.Params.FoodSpawnRate {
		t.Errorf("params = %+v", cfg.Params)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("population: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestSanitizeClamps(t *testing.T) {
	cfg := Default()
	cfg.Population.Max = 10
	cfg.Population.Initial = 50
	cfg.Reproduction.MinLitter = 0
	cfg.Reproduction.MaxLitter = -3
	cfg.Clock.MaxStep = 5
	cfg.Food.Max = 3
	cfg.Food.Initial = 10
	cfg.Params.FoodSpawnRate = -2
	cfg.Sanitize()

	if cfg.Population.Initial != 10 {
		t.Errorf("initial = %d, want clamped to cap 10", cfg.Population.Initial)
	}
	if cfg.Reproduction.MinLitter != 1 || cfg.Reproduction.MaxLitter != 1 {
		t.Errorf("litter = [%d, %d], want [1, 1]", cfg.Reproduction.MinLitter, cfg.Reproduction.MaxLitter)
	}
	if cfg.Clock.MaxStep != 1 {
		t.Errorf("max step = %v, want 1", cfg.Clock.MaxStep)
	}
	if cfg.Food.Initial != 3 {
		t.Errorf("food initial = %d, want 3", cfg.Food.Initial)
	}
	if cfg.Params.FoodSpawnRate != 0 {
		t.Errorf("spawn rate = %v, want 0", cfg.Params.FoodSpawnRate)
	}
}

func TestParamsSanitize(t *testing.T) {
	p := Params{
		FoodSpawnRate:         math.NaN(),
		FoodValue:             -1,
		MutationMagnitude:     50,
		MetabolicCost:         1,
		ReproductionThreshold: 70,
		MaxAge:                0,
		SimulationSpeed:       -3,
		TimeOfDay:             30,
	}.Sanitize()

	if p.FoodSpawnRate != 0 || p.FoodValue != 0 {
		t.Errorf("food params = %v, %v", p.FoodSpawnRate, p.FoodValue)
	}
	if p.MutationMagnitude != 10 {
		t.Errorf("mutation = %v, want 10", p.MutationMagnitude)
	}
	if p.MaxAge != 1 {
		t.Errorf("max age = %v, want 1", p.MaxAge)
	}
	if p.SimulationSpeed != 0 {
		t.Errorf("speed = %v, want 0", p.SimulationSpeed)
	}
	if p.TimeOfDay != 6 {
		t.Errorf("time of day = %v, want 6", p.TimeOfDay)
	}
}

func TestIsNight(t *testing.T) {
	cfg := Default()
	cfg.Clock.NightStart, cfg.Clock.NightEnd = 20, 6

	tests := []struct {
		hour float64
		want bool
	}{
		{0, true},
		{5.99, true},
		{6, false},
		{12, false},
		{19.99, false},
		{20, true},
		{23.5, true},
	}
	for _, tt := range tests {
		if got := cfg.IsNight(tt.hour); got != tt.want {
			t.Errorf("IsNight(%v) = %v, want %v", tt.hour, got, tt.want)
		}
	}

	// Non-wrapping window
	cfg.Clock.NightStart, cfg.Clock.NightEnd = 1, 4
	if !cfg.IsNight(2) || cfg.IsNight(5) {
		t.Error("non-wrapping night window misclassified")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Params.FoodValue = 42
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Params != cfg.Params || back.Population != cfg.Population {
		t.Errorf("round trip mismatch: %+v vs %+v", back.Params, cfg.Params)
	}
}
