// Package genetics defines the heritable trait bundle of an agent and the
// operators that create, mutate and mix genomes.
package genetics

import (
	"math"
	"math/rand"
)

// Trait bounds. Random genomes are drawn from the narrower Init ranges;
// mutation and mixing clamp to the full ranges.
const (
	SelfishnessMin, SelfishnessMax   = 0.0, 1.0
	SpeedMin, SpeedMax               = 0.5, 3.0
	SizeMin, SizeMax                 = 0.5, 2.0
	MutationRateMin, MutationRateMax = 0.01, 0.2
	EnergyMin, EnergyMax             = 0.0, 1.0
	FertilityMin, FertilityMax       = 0.0, 1.0

	SpeedInitMin, SpeedInitMax               = 0.8, 1.5
	SizeInitMin, SizeInitMax                 = 0.8, 1.2
	MutationRateInitMin, MutationRateInitMax = 0.01, 0.1

	// HueJitter is the symmetric random offset applied to an inherited hue.
	HueJitter = 0.05

	// MaxEnergy range derived from the energy trait.
	MaxEnergyBase = 50.0
	MaxEnergySpan = 100.0
)

// Genome holds the continuous heritable traits of an agent.
// A genome is never modified after it is assigned; reproduction produces a new one.
type Genome struct {
	Selfishness  float64 `json:"selfishness"`
	Speed        float64 `json:"speed"`
	Size         float64 `json:"size"`
	MutationRate float64 `json:"mutation_rate"`
	Hue          float64 `json:"hue"`
	Energy       float64 `json:"energy"`
	Fertility    float64 `json:"fertility"`
}

// NewRandom draws a founder genome.
func NewRandom(rng *rand.Rand) Genome {
	return Genome{
		Selfishness:  rng.Float64(),
		Speed:        uniform(rng, SpeedInitMin, SpeedInitMax),
		Size:         uniform(rng, SizeInitMin, SizeInitMax),
		MutationRate: uniform(rng, MutationRateInitMin, MutationRateInitMax),
		Hue:          rng.Float64(),
		Energy:       rng.Float64(),
		Fertility:    rng.Float64(),
	}
}

// Mutate perturbs every trait by U(-0.5,0.5)*magnitude and clamps the result.
func Mutate(g Genome, magnitude float64, rng *rand.Rand) Genome {
	jitter := func() float64 { return (rng.Float64() - 0.5) * magnitude }
	g.Selfishness += jitter()
	g.Speed += jitter()
	g.Size += jitter()
	g.MutationRate += jitter()
	g.Hue += jitter()
	g.Energy += jitter()
	g.Fertility += jitter()
	return g.Clamped()
}

// Mix combines two parent genomes. Numeric traits are averaged with symmetric
// noise scaled by the parents' mean mutation rate; hue takes the circular
// mean of the parents with a ±HueJitter offset.
func Mix(a, b Genome, rng *rand.Rand) Genome {
	rate := (a.MutationRate + b.MutationRate) / 2
	noisy := func(x, y float64) float64 {
		return (x+y)/2 + (rng.Float64()*2-1)*rate
	}

	child := Genome{
		Selfishness:  noisy(a.Selfishness, b.Selfishness),
		Speed:        noisy(a.Speed, b.Speed),
		Size:         noisy(a.Size, b.Size),
		MutationRate: noisy(a.MutationRate, b.MutationRate),
		Energy:       noisy(a.Energy, b.Energy),
		Fertility:    noisy(a.Fertility, b.Fertility),
	}
	child.Hue = CircularMean(a.Hue, b.Hue) + (rng.Float64()*2-1)*HueJitter
	return child.Clamped()
}

// Offspring mixes two parents and applies mutation of the given magnitude.
func Offspring(a, b Genome, magnitude float64, rng *rand.Rand) Genome {
	return Mutate(Mix(a, b, rng), magnitude, rng)
}

// Clamped returns g with every trait in its valid range and hue wrapped into [0,1).
func (g Genome) Clamped() Genome {
	g.Selfishness = clamp(g.Selfishness, SelfishnessMin, SelfishnessMax)
	g.Speed = clamp(g.Speed, SpeedMin, SpeedMax)
	g.Size = clamp(g.Size, SizeMin, SizeMax)
	g.MutationRate = clamp(g.MutationRate, MutationRateMin, MutationRateMax)
	g.Energy = clamp(g.Energy, EnergyMin, EnergyMax)
	g.Fertility = clamp(g.Fertility, FertilityMin, FertilityMax)
	g.Hue = WrapHue(g.Hue)
	return g
}

// Valid reports whether every trait is finite and within range.
func (g Genome) Valid() bool {
	return inRange(g.Selfishness, SelfishnessMin, SelfishnessMax) &&
		inRange(g.Speed, SpeedMin, SpeedMax) &&
		inRange(g.Size, SizeMin, SizeMax) &&
		inRange(g.MutationRate, MutationRateMin, MutationRateMax) &&
		inRange(g.Energy, EnergyMin, EnergyMax) &&
		inRange(g.Fertility, FertilityMin, FertilityMax) &&
		g.Hue >= 0 && g.Hue < 1
}

// MaxEnergy is the energy capacity granted by the energy trait (50..150).
func (g Genome) MaxEnergy() float64 {
	return MaxEnergyBase + MaxEnergySpan*g.Energy
}

// Efficiency scales metabolic and locomotion costs.
// A higher energy trait gives a smaller factor (cheaper living).
func (g Genome) Efficiency() float64 {
	return 1 / (0.5 + g.Energy)
}

// WrapHue maps any finite hue into [0,1).
func WrapHue(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	// -tiny + 1 rounds to exactly 1
	if h >= 1 {
		h = 0
	}
	return h
}

// CircularMean averages two hues along the shorter arc of the unit circle.
func CircularMean(a, b float64) float64 {
	d := b - a
	if d > 0.5 {
		d -= 1
	} else if d < -0.5 {
		d += 1
	}
	return WrapHue(a + d/2)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
