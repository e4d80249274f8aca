package config

import "math"

// Params is the runtime parameter bundle handed to every tick.
// Unlike Config it may change between ticks (UI sliders, optimizer runs).
type Params struct {
	FoodSpawnRate         float64 `yaml:"food_spawn_rate"`        // expected clusters per second
	FoodValue             float64 `yaml:"food_value"`             // energy per food item
	MutationMagnitude     float64 `yaml:"mutation_magnitude"`     // offspring trait perturbation scale
	MetabolicCost         float64 `yaml:"metabolic_cost"`         // multiplier on all metabolic and movement costs
	ReproductionThreshold float64 `yaml:"reproduction_threshold"` // absolute energy both parents need
	MaxAge                float64 `yaml:"max_age"`                // seconds
	SimulationSpeed       float64 `yaml:"simulation_speed"`       // dt multiplier
	TimeOfDay             float64 `yaml:"time_of_day"`            // hour, 0-24
}

// Sanitize returns a copy of p with every field clamped to a usable range.
// NaN values fall back to the lower bound.
func (p Params) Sanitize() Params {
	p.FoodSpawnRate = clampParam(p.FoodSpawnRate, 0, 1000)
	p.FoodValue = clampParam(p.FoodValue, 0, 1000)
	p.MutationMagnitude = clampParam(p.MutationMagnitude, 0, 10)
	p.MetabolicCost = clampParam(p.MetabolicCost, 0, 100)
	p.ReproductionThreshold = clampParam(p.ReproductionThreshold, 0, 1e6)
	p.MaxAge = clampParam(p.MaxAge, 1, 1e9)
	p.SimulationSpeed = clampParam(p.SimulationSpeed, 0, 100)
	p.TimeOfDay = math.Mod(clampParam(p.TimeOfDay, 0, 1e9), 24)
	return p
}

func clampParam(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
