package systems

import (
	"math"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/genetics"
)

// percept holds what an agent sees this tick.
type percept struct {
	food     Entry
	foodDist float64
	hasFood  bool

	otherPos   *components.Position
	otherVel   *components.Velocity
	otherAgent *components.Agent
	otherDist  float64
	hasOther   bool

	burrow     Entry
	burrowDist float64
	hasBurrow  bool
}

// perceive finds the nearest food, other agent and burrow.
// Food and burrows are static within a tick, so their indexed positions
// are exact. Agents move during the pass, so candidate distances are
// recomputed from live positions.
func (s *BehaviorSystem) perceive(pos *components.Position, a *components.Agent) percept {
	var p percept
	r := s.cfg.Agent.SensorRadius

	p.food, p.foodDist, p.hasFood, s.scratch = s.foodGrid.Nearest(s.scratch, pos.X, pos.Z, r, func(e Entry) bool {
		return s.world.Alive(e.Entity)
	})

	// Burrow perception reaches far enough to judge dig spacing
	br := math.Max(r, s.cfg.Burrow.Spacing)
	p.burrow, p.burrowDist, p.hasBurrow, s.scratch = s.burrowGrid.Nearest(s.scratch, pos.X, pos.Z, br, func(e Entry) bool {
		return s.world.Alive(e.Entity)
	})

	// Agents may have moved since indexing
	s.scratch = s.agentGrid.QueryInto(s.scratch[:0], pos.X, pos.Z, r+s.maxDisplacement())
	bestSq := r * r
	var bestID uint32
	for _, e := range s.scratch {
		if e.ID == a.ID || !s.world.Alive(e.Entity) {
			continue
		}
		opos, ovel, o := s.world.AgentEntity(e.Entity)
		if o.Dead || o.CurrentBurrowID != 0 {
			continue
		}
		d := components.DistSq(pos.Ground(), opos.Ground())
		if d > bestSq || (p.hasOther && d == bestSq && o.ID > bestID) {
			continue
		}
		bestSq, bestID = d, o.ID
		p.otherPos, p.otherVel, p.otherAgent = opos, ovel, o
		p.hasOther = true
	}
	if p.hasOther {
		p.otherDist = math.Sqrt(bestSq)
	}
	return p
}

// maxDisplacement bounds how far an agent travels within one step: a
// full-speed flee hop plus a separation push and a theft shove at the
// largest body size.
func (s *BehaviorSystem) maxDisplacement() float64 {
	cfg := s.cfg
	boost := math.Max(1, math.Max(cfg.Agent.FleeSpeed, cfg.Agent.LowEnergySpeed))
	hop := cfg.Agent.BaseSpeed * genetics.SpeedMax * boost * cfg.Clock.MaxStep
	reach := 2 * genetics.SizeMax * cfg.Agent.BodyRadius
	return hop + reach*cfg.Social.PushStrength
}

// interactionRange is the contact distance between two agents.
func (s *BehaviorSystem) interactionRange(a, b *components.Agent) float64 {
	return (a.Genome.Size + b.Genome.Size) * s.cfg.Agent.BodyRadius
}

// foreignBurrowNear reports whether a burrow not owned by owner lies within radius.
func (s *BehaviorSystem) foreignBurrowNear(pos *components.Position, owner uint32, radius float64) bool {
	var found bool
	_, _, found, s.scratch = s.burrowGrid.Nearest(s.scratch, pos.X, pos.Z, radius, func(e Entry) bool {
		if !s.world.Alive(e.Entity) {
			return false
		}
		_, b, ok := s.world.Burrow(e.ID)
		return ok && b.OwnerID != owner
	})
	return found
}
