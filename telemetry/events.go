// Package telemetry provides warren health tracking, bookmarking, and snapshots.
package telemetry

import "github.com/pthm-cable/warren/components"

// EventCounts tallies simulation events.
type EventCounts struct {
	Births           int     `json:"births"`
	StarvationDeaths int     `json:"starvation_deaths"`
	OldAgeDeaths     int     `json:"old_age_deaths"`
	Matings          int     `json:"matings"`
	FoodEaten        int     `json:"food_eaten"`
	EnergyEaten      float64 `json:"energy_eaten"`
	Thefts           int     `json:"thefts"`
	EnergyStolen     float64 `json:"energy_stolen"`
	Fights           int     `json:"fights"`
	BurrowsDug       int     `json:"burrows_dug"`
	DigsAborted      int     `json:"digs_aborted"`
	MaxGeneration    int     `json:"max_generation"`
	AgeAtDeathSum    float64 `json:"age_at_death_sum"`
}

// Deaths returns the number of deaths of any cause.
func (c EventCounts) Deaths() int {
	return c.StarvationDeaths + c.OldAgeDeaths
}

// MeanAgeAtDeath returns the average lifespan of agents that died, or 0.
func (c EventCounts) MeanAgeAtDeath() float64 {
	if n := c.Deaths(); n > 0 {
		return c.AgeAtDeathSum / float64(n)
	}
	return 0
}

func (c *EventCounts) birth(generation int) {
	c.Births++
	if generation > c.MaxGeneration {
		c.MaxGeneration = generation
	}
}

func (c *EventCounts) death(cause components.DeathCause, age float64) {
	switch cause {
	case components.CauseOldAge:
		c.OldAgeDeaths++
	default:
		c.StarvationDeaths++
	}
	c.AgeAtDeathSum += age
}
