package systems

import (
	"math"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/genetics"
)

// matingCooldown is the pair's cooldown, shorter for fertile pairs.
// Average fertility 0.5 gives the configured base cooldown.
func (s *BehaviorSystem) matingCooldown(a, b *components.Agent) float64 {
	fert := (a.Genome.Fertility + b.Genome.Fertility) / 2
	return s.cfg.Reproduction.MatingCooldown / (0.5 + fert)
}

// mateReady reports whether an agent may mate given the pair's cooldown.
func (s *BehaviorSystem) mateReady(env Env, a *components.Agent, cooldown float64) bool {
	if a.Dead {
		return false
	}
	switch a.State {
	case components.StateSleeping, components.StateDigging, components.StateMating, components.StateFleeing:
		return false
	}
	if a.Age < s.cfg.Agent.MaturityAge || a.Energy <= env.Params.ReproductionThreshold {
		return false
	}
	return !a.HasMated || a.Age-a.LastMated >= cooldown
}

// headroom is the number of agents that may still be born this tick.
func (s *BehaviorSystem) headroom() int {
	return s.cfg.Population.Max - s.world.AgentCount() - len(s.births)
}

// tryMate breeds two friends when both are ready and the population has
// room. lo must be the lower-id agent. The litter is queued at the
// parents' midpoint and spawned at commit.
func (s *BehaviorSystem) tryMate(env Env, lo *components.Agent, loPos *components.Position, hi *components.Agent, hiPos *components.Position) bool {
	if !s.friends(lo, hi) {
		return false
	}
	cooldown := s.matingCooldown(lo, hi)
	if !s.mateReady(env, lo, cooldown) || !s.mateReady(env, hi, cooldown) {
		return false
	}
	room := s.headroom()
	if room <= 0 {
		return false
	}

	cfg := &s.cfg.Reproduction
	fert := (lo.Genome.Fertility + hi.Genome.Fertility) / 2
	litter := s.litterSize(fert, room)

	generation := lo.Generation
	if hi.Generation > generation {
		generation = hi.Generation
	}
	mid := midpoint(loPos, hiPos)
	mid.Y = 0
	for i := 0; i < litter; i++ {
		at := mid
		at.X += (s.rng.Float64()*2 - 1) * cfg.SpawnJitter
		at.Z += (s.rng.Float64()*2 - 1) * cfg.SpawnJitter
		clampToWorld(s.cfg, &at)
		s.births = append(s.births, birth{
			pos:        at,
			genome:     genetics.Offspring(lo.Genome, hi.Genome, env.Params.MutationMagnitude, s.rng),
			generation: generation + 1,
			parents:    [2]uint32{lo.ID, hi.ID},
		})
	}

	for _, parent := range [...]*components.Agent{lo, hi} {
		parent.Energy -= cfg.MatingCost
		parent.LastMated = parent.Age
		parent.HasMated = true
		parent.Children += litter
		parent.FocusID = 0
		parent.HasTarget = false
		parent.State = components.StateMating
		parent.ActionTimer = 0
	}
	s.rec.RecordMating(litter)
	return true
}

// litterSize interpolates between the configured bounds by fertility, adds
// symmetric jitter and clamps to the bounds and to the remaining room.
func (s *BehaviorSystem) litterSize(fertility float64, room int) int {
	cfg := &s.cfg.Reproduction
	base := lerp(float64(cfg.MinLitter), float64(cfg.MaxLitter), clamp01(fertility))
	n := int(math.Round(base + (s.rng.Float64()*2-1)*cfg.LitterJitter))
	if n < cfg.MinLitter {
		n = cfg.MinLitter
	}
	if n > cfg.MaxLitter {
		n = cfg.MaxLitter
	}
	if n > room {
		n = room
	}
	return n
}
