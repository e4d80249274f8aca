package systems

import (
	"log/slog"

	"github.com/pthm-cable/warren/components"
)

// canStartDig reports whether a homeless, tired agent may dig here during
// the day: no burrow of any owner may lie within the spacing distance.
func (s *BehaviorSystem) canStartDig(env Env, a *components.Agent, p *percept) bool {
	if env.Night || a.OwnedBurrowID != 0 || a.EnergyRatio() >= s.cfg.Energy.DigFraction {
		return false
	}
	return !p.hasBurrow || p.burrowDist > s.cfg.Burrow.Spacing
}

// digBlocked reports whether a starving, homeless agent cannot dig because
// another burrow is too close. Such agents rest instead.
func (s *BehaviorSystem) digBlocked(env Env, a *components.Agent, p *percept) bool {
	if env.Night || a.OwnedBurrowID != 0 || a.EnergyRatio() >= s.cfg.Energy.RestFraction {
		return false
	}
	return p.hasBurrow && p.burrowDist <= s.cfg.Burrow.Spacing
}

// startDig creates a burrow under the agent and switches to digging.
// The burrow is indexed immediately so later agents this tick respect it.
func (s *BehaviorSystem) startDig(pos *components.Position, a *components.Agent) {
	id := s.world.AddBurrow(a.ID, pos.X, pos.Z, s.cfg.Burrow.Radius)
	if e, ok := s.world.BurrowEntity(id); ok {
		s.burrowGrid.Insert(Entry{ID: id, Entity: e, X: pos.X, Z: pos.Z})
	}
	a.OwnedBurrowID = id
	a.DigTimer = 0
	a.HasTarget = false
	a.FocusID = 0
	a.SetState(components.StateDigging)
}

// dig advances the dig timer. A foreign burrow intruding within the
// collision distance aborts the dig and deletes the partial burrow.
func (s *BehaviorSystem) dig(env Env, pos *components.Position, vel *components.Velocity, a *components.Agent) {
	cfg := &s.cfg.Burrow
	*vel = components.Velocity{}
	pos.Y = 0

	bpos, b, ok := s.world.Burrow(a.OwnedBurrowID)
	if !ok {
		a.OwnedBurrowID = 0
		a.SetState(components.StateWandering)
		return
	}

	if s.foreignBurrowNear(pos, a.ID, cfg.CollisionDistance) {
		slog.Debug("dig_aborted", "agent", a.ID, "burrow", b.ID)
		s.world.RemoveBurrow(b.ID)
		a.OwnedBurrowID = 0
		a.DigTimer = 0
		a.SetState(components.StateWandering)
		s.rec.RecordDigAborted()
		return
	}

	a.DigTimer += env.Dt
	a.Energy -= s.cfg.Energy.DigCost * env.Params.MetabolicCost * env.Dt
	progress := clamp01(a.DigTimer / cfg.DigThreshold)
	if progress > b.DigProgress {
		b.DigProgress = progress
	}
	if s.rng.Float64() < 4*env.Dt {
		s.particles.Emit(components.ParticleDust, *pos)
	}

	if a.DigTimer >= cfg.DigThreshold {
		b.DigProgress = 1
		b.Complete = true
		s.rec.RecordBurrowDug()
		s.enterBurrow(pos, a, bpos, b)
		return
	}
	// Exhausted diggers sleep in the unfinished burrow
	if a.EnergyRatio() < s.cfg.Energy.CriticalFraction {
		s.enterBurrow(pos, a, bpos, b)
	}
}

// enterBurrow shelters the agent inside a burrow and puts it to sleep.
func (s *BehaviorSystem) enterBurrow(pos *components.Position, a *components.Agent, bpos *components.Position, b *components.Burrow) {
	a.SurfacePos = *pos
	a.SurfacePos.Y = 0
	pos.X, pos.Z = bpos.X, bpos.Z
	pos.Y = -s.cfg.Burrow.Depth
	a.CurrentBurrowID = b.ID
	b.AddOccupant(a.ID)
	s.sleep(pos, a)
}

// exitBurrow restores the agent to its surface position.
func (s *BehaviorSystem) exitBurrow(pos *components.Position, a *components.Agent) {
	if _, b, ok := s.world.Burrow(a.CurrentBurrowID); ok {
		b.RemoveOccupant(a.ID)
	}
	a.CurrentBurrowID = 0
	*pos = a.SurfacePos
	pos.Y = 0
}

// fallAsleep sleeps in the owned burrow when close enough, else in place.
func (s *BehaviorSystem) fallAsleep(pos *components.Position, a *components.Agent) {
	if bpos, b, ok := s.world.Burrow(a.OwnedBurrowID); ok {
		if components.Dist(pos.Ground(), bpos.Ground()) <= s.cfg.Burrow.EnterDistance {
			s.enterBurrow(pos, a, bpos, b)
			return
		}
	}
	pos.Y = 0
	s.sleep(pos, a)
}

func (s *BehaviorSystem) sleep(pos *components.Position, a *components.Agent) {
	a.SetState(components.StateSleeping)
	a.HasTarget = false
	a.FocusID = 0
	a.DigTimer = 0
	s.particles.Emit(components.ParticleSleep, *pos)
}

// updateSleep wakes sheltered agents once rested during the day, and
// agents sleeping in the open at daybreak.
func (s *BehaviorSystem) updateSleep(env Env, pos *components.Position, a *components.Agent) {
	if env.Night {
		return
	}
	if a.CurrentBurrowID != 0 {
		if a.EnergyRatio() < s.cfg.Energy.WakeFraction {
			return
		}
		s.exitBurrow(pos, a)
	}
	a.SetState(components.StateWandering)
}
