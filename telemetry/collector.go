package telemetry

import "github.com/pthm-cable/warren/components"

// Collector accumulates events within time windows and produces WindowStats.
// It implements the behavior system's event recorder.
type Collector struct {
	windowSec   float64
	windowStart float64

	window EventCounts // current window
	total  EventCounts // since the last reset
}

// NewCollector creates a collector flushing every windowSec simulated seconds.
func NewCollector(windowSec float64) *Collector {
	if windowSec <= 0 {
		windowSec = 10
	}
	return &Collector{windowSec: windowSec}
}

// Reset clears all counters and starts a new window at simTime.
func (c *Collector) Reset(simTime float64) {
	c.windowStart = simTime
	c.window = EventCounts{}
	c.total = EventCounts{}
}

// RecordBirth records a birth of the given generation.
func (c *Collector) RecordBirth(generation int) {
	c.window.birth(generation)
	c.total.birth(generation)
}

// RecordDeath records a death and the agent's age.
func (c *Collector) RecordDeath(cause components.DeathCause, age float64) {
	c.window.death(cause, age)
	c.total.death(cause, age)
}

// RecordMating records a successful mating.
func (c *Collector) RecordMating(int) {
	c.window.Matings++
	c.total.Matings++
}

// RecordFoodEaten records a consumed food item.
func (c *Collector) RecordFoodEaten(value float64) {
	c.window.FoodEaten++
	c.window.EnergyEaten += value
	c.total.FoodEaten++
	c.total.EnergyEaten += value
}

// RecordTheft records energy stolen in one tick of contact.
func (c *Collector) RecordTheft(amount float64) {
	c.window.Thefts++
	c.window.EnergyStolen += amount
	c.total.Thefts++
	c.total.EnergyStolen += amount
}

// RecordFight records one tick of combat between a pair.
func (c *Collector) RecordFight() {
	c.window.Fights++
	c.total.Fights++
}

// RecordBurrowDug records a completed burrow.
func (c *Collector) RecordBurrowDug() {
	c.window.BurrowsDug++
	c.total.BurrowsDug++
}

// RecordDigAborted records a dig abandoned because of a nearby burrow.
func (c *Collector) RecordDigAborted() {
	c.window.DigsAborted++
	c.total.DigsAborted++
}

// Totals returns the event counts since the last reset.
func (c *Collector) Totals() EventCounts {
	return c.total
}

// ShouldFlush returns true once a full window of simulated time has passed.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStart >= c.windowSec
}

// Flush produces a WindowStats from the window's events and the census
// sample, then starts the next window.
func (c *Collector) Flush(tick uint64, simTime, timeOfDay float64, s *Sample) WindowStats {
	energy := Summarize(s.EnergyRatios)
	selfish := Summarize(s.Selfishness)
	w := c.window

	stats := WindowStats{
		WindowStartSec: c.windowStart,
		WindowEndTick:  tick,
		SimTimeSec:     simTime,
		TimeOfDay:      timeOfDay,

		Population: s.Population,
		Food:       s.Food,
		Burrows:    s.Burrows,
		Sheltered:  s.Sheltered,
		Sleeping:   s.States[components.StateSleeping],
		Fleeing:    s.States[components.StateFleeing],

		Births:           w.Births,
		StarvationDeaths: w.StarvationDeaths,
		OldAgeDeaths:     w.OldAgeDeaths,
		Matings:          w.Matings,
		FoodEaten:        w.FoodEaten,
		EnergyEaten:      w.EnergyEaten,
		Thefts:           w.Thefts,
		EnergyStolen:     w.EnergyStolen,
		Fights:           w.Fights,
		BurrowsDug:       w.BurrowsDug,
		DigsAborted:      w.DigsAborted,
		MeanAgeAtDeath:   w.MeanAgeAtDeath(),

		EnergyMean: energy.Mean,
		EnergyP10:  energy.P10,
		EnergyP50:  energy.P50,
		EnergyP90:  energy.P90,

		SelfishnessMean: selfish.Mean,
		SelfishnessStd:  selfish.Std,
		SelfishnessP10:  selfish.P10,
		SelfishnessP50:  selfish.P50,
		SelfishnessP90:  selfish.P90,
		SpeedMean:       Summarize(s.Speed).Mean,
		SizeMean:        Summarize(s.Size).Mean,
		FertilityMean:   Summarize(s.Fertility).Mean,

		MaxGeneration: c.total.MaxGeneration,
	}

	c.windowStart = simTime
	c.window = EventCounts{}
	return stats
}

// WindowSec returns the window length in simulated seconds.
func (c *Collector) WindowSec() float64 {
	return c.windowSec
}
