package systems

import (
	"math"

	"github.com/pthm-cable/warren/components"
)

// move advances the hop cycle and, during the active phase, steers and
// integrates position. Movement is paid for by size, squared speed trait
// and efficiency.
func (s *BehaviorSystem) move(env Env, pos *components.Position, vel *components.Velocity, a *components.Agent, p *percept) {
	cfg := &s.cfg.Agent
	dt := env.Dt

	cycle := cfg.HopActive + cfg.HopRest/a.Genome.Speed
	a.HopTimer += dt
	if cycle > 0 {
		a.HopTimer = math.Mod(a.HopTimer, cycle)
	}
	if a.HopTimer >= cfg.HopActive {
		// Rest phase between hops
		*vel = components.Velocity{}
		pos.Y = 0
		return
	}

	desired, targetDist := s.steer(pos, a, p)
	desired = desired.Add(s.boundaryForce(pos))
	desired = desired.Normalized(a.Heading.Normalized(components.DefaultHeading))
	a.Heading = lerpDir(a.Heading, desired, cfg.TurnRate*dt)

	speed := cfg.BaseSpeed * a.Genome.Speed * s.speedMultiplier(a, targetDist)
	vel.X = a.Heading.X * speed
	vel.Y = 0
	vel.Z = a.Heading.Z * speed

	pos.X += vel.X * dt
	pos.Z += vel.Z * dt
	pos.Y = math.Sin(math.Pi*a.HopTimer/cfg.HopActive) * 0.3 * a.Genome.Size
	clampToWorld(s.cfg, pos)

	g := a.Genome
	a.Energy -= s.cfg.Energy.MoveCost * g.Size * g.Speed * g.Speed * g.Efficiency() * env.Params.MetabolicCost * dt
}

// steer picks the direction of the highest-priority goal:
// flee > eat > return to burrow > chase/court > explore > wander.
// The second result is the distance to a point target, or -1.
func (s *BehaviorSystem) steer(pos *components.Position, a *components.Agent, p *percept) (components.Point, float64) {
	here := pos.Ground()
	toward := func(t components.Point) (components.Point, float64) {
		d := t.Sub(here)
		return d.Normalized(a.Heading), d.Len()
	}

	switch a.State {
	case components.StateFleeing:
		a.PanicDir = rotate(a.PanicDir.Normalized(components.DefaultHeading), (s.rng.Float64()-0.5)*s.cfg.Agent.WanderJitter)
		if p.hasOther {
			away := here.Sub(p.otherPos.Ground()).Normalized(a.PanicDir)
			a.PanicDir = a.PanicDir.Add(away).Normalized(away)
		}
		return a.PanicDir, -1

	case components.StateSeekingFood:
		if a.HasTarget {
			return toward(a.Target)
		}
	}

	if a.OwnedBurrowID != 0 && a.EnergyRatio() < s.cfg.Energy.TiredFraction {
		if bpos, _, ok := s.world.Burrow(a.OwnedBurrowID); ok {
			return toward(bpos.Ground())
		}
	}

	switch a.State {
	case components.StateChasing, components.StateCircling:
		opos, _, _, ok := s.world.Agent(a.FocusID)
		if !ok {
			a.FocusID = 0
			break
		}
		dir, dist := toward(opos.Ground())
		if a.State == components.StateCircling {
			// Attraction plus a tangential component orbits the partner
			dir = dir.Scale(0.5).Add(perpendicular(dir)).Normalized(dir)
		}
		return dir, dist

	case components.StateExploring:
		if a.HasTarget {
			return toward(a.Target)
		}
	}

	return rotate(a.Heading, (s.rng.Float64()-0.5)*s.cfg.Agent.WanderJitter), -1
}

// boundaryForce pushes agents back from the world edges.
func (s *BehaviorSystem) boundaryForce(pos *components.Position) components.Point {
	w := &s.cfg.World
	m := w.EdgeMargin
	var f components.Point
	if m <= 0 {
		return f
	}
	if pos.X < m {
		f.X += (m - pos.X) / m * w.EdgeForce
	} else if pos.X > w.Width-m {
		f.X -= (pos.X - (w.Width - m)) / m * w.EdgeForce
	}
	if pos.Z < m {
		f.Z += (m - pos.Z) / m * w.EdgeForce
	} else if pos.Z > w.Depth-m {
		f.Z -= (pos.Z - (w.Depth - m)) / m * w.EdgeForce
	}
	return f
}

// speedMultiplier boosts fleeing agents, slows tired ones and eases off
// near a close target.
func (s *BehaviorSystem) speedMultiplier(a *components.Agent, targetDist float64) float64 {
	cfg := &s.cfg.Agent
	m := 1.0
	if a.State == components.StateFleeing {
		m = cfg.FleeSpeed
	} else if a.EnergyRatio() < s.cfg.Energy.TiredFraction {
		m = cfg.LowEnergySpeed
	}
	if slow := 2 * cfg.ArrivalDistance; targetDist >= 0 && targetDist < slow {
		m *= math.Max(0.3, targetDist/slow)
	}
	return m
}
