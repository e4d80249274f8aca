package main

import (
	"github.com/pthm-cable/warren/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // matches the params yaml key
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters,
// defaulting to the values in base.
func NewParamVector(base config.Params) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "food_spawn_rate", Min: 0.2, Max: 6, Default: base.FoodSpawnRate},
			{Name: "food_value", Min: 5, Max: 60, Default: base.FoodValue},
			{Name: "metabolic_cost", Min: 0.3, Max: 2.5, Default: base.MetabolicCost},
			{Name: "reproduction_threshold", Min: 30, Max: 140, Default: base.ReproductionThreshold},
			{Name: "mutation_magnitude", Min: 0, Max: 0.5, Default: base.MutationMagnitude},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// Apply returns base with the clamped parameter values substituted.
// Order must match Specs order.
func (pv *ParamVector) Apply(base config.Params, values []float64) config.Params {
	c := pv.Clamp(values)
	p := base
	p.FoodSpawnRate = c[0]
	p.FoodValue = c[1]
	p.MetabolicCost = c[2]
	p.ReproductionThreshold = c[3]
	p.MutationMagnitude = c[4]
	return p
}
