package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/genetics"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.0},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	values := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}
	d := Summarize(values)

	if math.Abs(d.Mean-0.55) > 1e-9 {
		t.Errorf("mean = %v, want 0.55", d.Mean)
	}
	if math.Abs(d.Std-math.Sqrt(0.0825)) > 1e-9 {
		t.Errorf("std = %v, want %v", d.Std, math.Sqrt(0.0825))
	}
	if math.Abs(d.P10-0.1) > 1e-9 || math.Abs(d.P50-0.5) > 1e-9 || math.Abs(d.P90-0.9) > 1e-9 {
		t.Errorf("percentiles = %v/%v/%v, want 0.1/0.5/0.9", d.P10, d.P50, d.P90)
	}
	if values[0] != 1.0 {
		t.Error("Summarize must not reorder its input")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if d := Summarize(nil); d != (Distribution{}) {
		t.Errorf("empty input = %+v, want zero", d)
	}
	if d := Summarize([]float64{0.4}); d.Std != 0 || d.Mean != 0.4 {
		t.Errorf("single value = %+v", d)
	}
}

func TestSampleResetKeepsCapacity(t *testing.T) {
	var s Sample
	a := &components.Agent{
		Genome:    genetics.Genome{Selfishness: 0.3, Speed: 1, Size: 1, Energy: 0.5},
		Energy:    50,
		MaxEnergy: 100,
		State:     components.StateSleeping,
	}
	s.Add(a)
	s.Add(a)
	if s.Population != 2 || s.States[components.StateSleeping] != 2 || len(s.EnergyRatios) != 2 {
		t.Fatalf("sample = %+v", s)
	}

	s.Reset()
	if s.Population != 0 || len(s.Selfishness) != 0 || cap(s.Selfishness) < 2 {
		t.Errorf("reset sample population=%d len=%d cap=%d", s.Population, len(s.Selfishness), cap(s.Selfishness))
	}
	if s.States[components.StateSleeping] != 0 {
		t.Error("state counts not cleared")
	}
}
