package systems

import (
	"math"

	"github.com/pthm-cable/warren/components"
)

// pairKey packs an unordered agent pair.
func pairKey(a, b uint32) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(a)<<32 | uint64(b)
}

// interact resolves contact with the nearest agent.
// Affinity is updated by each agent for its own view; pair effects are
// applied once per pair per tick.
func (s *BehaviorSystem) interact(env Env, pos *components.Position, a *components.Agent, p *percept) {
	o := p.otherAgent
	reach := s.interactionRange(a, o)
	if p.otherDist > reach {
		return
	}
	if o.State == components.StateSleeping {
		return
	}

	s.updateAffinity(env.Dt, a, o)

	key := pairKey(a.ID, o.ID)
	if _, done := s.pairs.Get(key); done {
		return
	}
	s.pairs.Put(key, struct{}{})

	// The lower id evaluates mating
	lo, loPos, hi, hiPos := a, pos, o, p.otherPos
	if o.ID < a.ID {
		lo, loPos, hi, hiPos = o, p.otherPos, a, pos
	}
	if s.tryMate(env, lo, loPos, hi, hiPos) {
		return
	}
	if s.trySnuggle(env, a, pos, o, p.otherPos) {
		return
	}
	if a.State == components.StateSnuggling && a.FocusID == o.ID {
		return
	}

	s.separate(pos, a, p.otherPos, o, reach, p.otherDist, s.cfg.Social.PushStrength)
	s.resolveConflict(env, pos, a, p.otherPos, o, reach)
}

// updateAffinity moves a's view of o toward friendship when their
// selfishness is similar and away from it otherwise.
func (s *BehaviorSystem) updateAffinity(dt float64, a, o *components.Agent) {
	cfg := &s.cfg.Social
	v := a.Affinity[o.ID]
	if math.Abs(a.Genome.Selfishness-o.Genome.Selfishness) < cfg.GeneticDistance {
		v += cfg.AffinityGain * dt
	} else {
		v -= cfg.AffinityLoss * dt
	}
	if a.Affinity == nil {
		a.Affinity = make(map[uint32]float64)
	}
	a.Affinity[o.ID] = clampFloat(v, -100, 100)
}

// friends reports mutual affinity above the friendship threshold.
func (s *BehaviorSystem) friends(a, o *components.Agent) bool {
	thr := s.cfg.Social.FriendThreshold
	return a.AffinityToward(o.ID) > thr && o.AffinityToward(a.ID) > thr
}

func snuggleCompatible(st components.State) bool {
	return st == components.StateWandering || st == components.StateResting
}

// trySnuggle starts a snuggle between two idle friends during the day.
func (s *BehaviorSystem) trySnuggle(env Env, a *components.Agent, apos *components.Position, o *components.Agent, opos *components.Position) bool {
	if env.Night || !s.friends(a, o) {
		return false
	}
	if !snuggleCompatible(a.State) || !snuggleCompatible(o.State) {
		return false
	}
	floor := s.cfg.Social.SnuggleMinEnergy
	if a.Energy <= floor || o.Energy <= floor {
		return false
	}

	a.SetState(components.StateSnuggling)
	o.SetState(components.StateSnuggling)
	a.FocusID, o.FocusID = o.ID, a.ID
	a.HasTarget, o.HasTarget = false, false

	if s.rng.Float64() < s.cfg.Social.HeartChance {
		s.particles.Emit(components.ParticleHeart, midpoint(apos, opos))
	}
	return true
}

// keepSnuggling reports whether a snuggling agent stays put this tick.
func (s *BehaviorSystem) keepSnuggling(env Env, pos *components.Position, a *components.Agent) bool {
	if env.Night || a.Energy <= s.cfg.Social.SnuggleMinEnergy {
		return false
	}
	_, _, partner, ok := s.world.Agent(a.FocusID)
	if !ok || partner.Dead || partner.State != components.StateSnuggling || partner.FocusID != a.ID {
		return false
	}
	if s.rng.Float64() < s.cfg.Social.SnuggleExitRate*env.Dt {
		return false
	}
	if s.rng.Float64() < s.cfg.Social.HeartChance*env.Dt {
		s.particles.Emit(components.ParticleHeart, *pos)
	}
	return true
}

// separate pushes two overlapping agents apart along their connecting axis.
// Frozen agents are not moved.
func (s *BehaviorSystem) separate(apos *components.Position, a *components.Agent, opos *components.Position, o *components.Agent, reach, dist, strength float64) {
	overlap := reach - dist
	if overlap <= 0 {
		return
	}
	axis := apos.Ground().Sub(opos.Ground()).Normalized(components.DefaultHeading)
	shift := overlap * strength / 2
	if !a.State.Frozen() {
		apos.X += axis.X * shift
		apos.Z += axis.Z * shift
		clampToWorld(s.cfg, apos)
	}
	if !o.State.Frozen() {
		opos.X -= axis.X * shift
		opos.Z -= axis.Z * shift
		clampToWorld(s.cfg, opos)
	}
}

// resolveConflict applies combat between two selfish agents and theft by a
// selfish agent from a cooperative one.
func (s *BehaviorSystem) resolveConflict(env Env, apos *components.Position, a *components.Agent, opos *components.Position, o *components.Agent, reach float64) {
	cfg := &s.cfg.Social
	dt := env.Dt
	aSelfish := a.Genome.Selfishness >= cfg.SelfishThreshold
	oSelfish := o.Genome.Selfishness >= cfg.SelfishThreshold

	switch {
	case aSelfish && oSelfish:
		dmg := cfg.CombatDamage * dt
		a.Energy -= dmg
		o.Energy -= dmg
		a.Fear = clampFloat(a.Fear+cfg.FearOnCombat*dt, 0, 100)
		o.Fear = clampFloat(o.Fear+cfg.FearOnCombat*dt, 0, 100)
		s.rec.RecordFight()
		starveIfDrained(a)
		starveIfDrained(o)

	case aSelfish != oSelfish:
		thief, victim := a, o
		victimPos, thiefPos := opos, apos
		if oSelfish {
			thief, victim = o, a
			victimPos, thiefPos = apos, opos
		}
		amount := math.Min(cfg.StealRate*dt, math.Max(victim.Energy, 0))
		victim.Energy -= amount
		thief.Energy = math.Min(thief.Energy+amount, thief.MaxEnergy)
		victim.Fear = clampFloat(victim.Fear+cfg.FearOnTheft*dt, 0, 100)
		s.rec.RecordTheft(amount)
		if starveIfDrained(victim) {
			return
		}

		// Shove the victim away from the thief
		if !victim.State.Frozen() {
			away := victimPos.Ground().Sub(thiefPos.Ground()).Normalized(components.DefaultHeading)
			shove := reach * cfg.PushStrength * 0.5
			victimPos.X += away.X * shove
			victimPos.Z += away.Z * shove
			clampToWorld(s.cfg, victimPos)
		}
	}
}

func midpoint(a, b *components.Position) components.Position {
	return components.Position{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2, Z: (a.Z + b.Z) / 2}
}
