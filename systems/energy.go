package systems

import "github.com/pthm-cable/warren/components"

// metabolize applies the per-tick energy budget.
// Restful agents regenerate, faster inside their own burrow; everyone else
// pays a baseline cost scaled by size and efficiency. Energy is clamped to
// the agent's max; death is detected separately.
func (s *BehaviorSystem) metabolize(env Env, a *components.Agent) {
	cfg := &s.cfg.Energy
	dt := env.Dt
	mult := env.Params.MetabolicCost

	if a.State.Restful() {
		regen := cfg.RestRegen
		if a.CurrentBurrowID != 0 && a.CurrentBurrowID == a.OwnedBurrowID {
			regen = cfg.BurrowRegen
		}
		a.Energy += regen * dt
	} else {
		a.Energy -= cfg.BaseMetabolism * a.Genome.Size * a.Genome.Efficiency() * mult * dt
		if a.State == components.StateFleeing {
			a.Energy -= cfg.FleeCost * mult * dt
		}
	}

	if a.Energy > a.MaxEnergy {
		a.Energy = a.MaxEnergy
	}
}

// starveIfDrained marks an agent dead as soon as its energy is gone, so a
// victim drained by another agent cannot regenerate later in the tick.
func starveIfDrained(a *components.Agent) bool {
	if a.Dead {
		return true
	}
	if a.Energy > 0 {
		return false
	}
	a.Dead = true
	a.Cause = components.CauseStarvation
	return true
}

// checkDeath marks agents that starved or exceeded the max age.
func (s *BehaviorSystem) checkDeath(env Env, a *components.Agent) {
	switch {
	case a.Energy <= 0:
		a.Dead = true
		a.Cause = components.CauseStarvation
	case a.Age > env.Params.MaxAge:
		a.Dead = true
		a.Cause = components.CauseOldAge
	}
}
