package systems

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/kamstrup/intmap"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/config"
	"github.com/pthm-cable/warren/genetics"
	"github.com/pthm-cable/warren/world"
)

// Env is the per-tick input to the behavior pass.
type Env struct {
	Dt     float64
	Night  bool
	Params config.Params
}

// birth is a queued offspring, spawned after the behavior pass.
type birth struct {
	pos        components.Position
	genome     genetics.Genome
	generation int
	parents    [2]uint32
}

// corpse is a copy of a dead agent's final state.
type corpse struct {
	id     uint32
	pos    components.Position
	cause  components.DeathCause
	age    float64
	burrow uint32
}

// BehaviorSystem runs the per-agent state machine.
// Agents are processed in ascending id order. Deaths and births are
// collected during the pass and committed afterwards.
type BehaviorSystem struct {
	cfg       *config.Config
	world     *world.World
	rng       *rand.Rand
	particles *ParticleSystem
	rec       Recorder

	agentGrid  *SpatialGrid
	foodGrid   *SpatialGrid
	burrowGrid *SpatialGrid

	pairs   *intmap.Map[uint64, struct{}] // pairs already resolved this tick
	births  []birth
	corpses []corpse
	refs    []world.AgentRef
	scratch []Entry
}

// NewBehaviorSystem creates a behavior system. A nil recorder discards events.
func NewBehaviorSystem(cfg *config.Config, w *world.World, rng *rand.Rand, particles *ParticleSystem, rec Recorder) *BehaviorSystem {
	if rec == nil {
		rec = NopRecorder{}
	}
	return &BehaviorSystem{
		cfg:        cfg,
		world:      w,
		rng:        rng,
		particles:  particles,
		rec:        rec,
		agentGrid:  NewSpatialGrid(cfg.Derived.AgentCellSize),
		foodGrid:   NewSpatialGrid(cfg.Derived.AgentCellSize),
		burrowGrid: NewSpatialGrid(cfg.Derived.BurrowCellSize),
		pairs:      intmap.New[uint64, struct{}](256),
		scratch:    make([]Entry, 0, 64),
	}
}

// SetRecorder replaces the event recorder.
func (s *BehaviorSystem) SetRecorder(rec Recorder) {
	if rec == nil {
		rec = NopRecorder{}
	}
	s.rec = rec
}

// Grids returns the spatial indices built by the last Update.
func (s *BehaviorSystem) Grids() (agents, food, burrows *SpatialGrid) {
	return s.agentGrid, s.foodGrid, s.burrowGrid
}

// Update runs one behavior pass over every agent.
func (s *BehaviorSystem) Update(env Env) {
	s.rebuildGrids()
	s.pairs.Clear()
	s.births = s.births[:0]

	s.refs = s.world.AgentRefs()
	for _, ref := range s.refs {
		if !s.world.Alive(ref.Entity) {
			continue
		}
		pos, vel, a := s.world.AgentEntity(ref.Entity)
		if a.Dead {
			continue
		}
		s.updateAgent(env, pos, vel, a)
	}

	s.commit()
}

// rebuildGrids reindexes agents, food and burrows from scratch.
// Sheltered agents are not indexed.
func (s *BehaviorSystem) rebuildGrids() {
	s.agentGrid.Clear()
	agents := s.world.AgentFilter().Query()
	for agents.Next() {
		pos, _, a := agents.Get()
		if a.CurrentBurrowID != 0 {
			continue
		}
		s.agentGrid.Insert(Entry{ID: a.ID, Entity: agents.Entity(), X: pos.X, Z: pos.Z})
	}

	s.foodGrid.Clear()
	food := s.world.FoodFilter().Query()
	for food.Next() {
		pos, f := food.Get()
		s.foodGrid.Insert(Entry{ID: f.ID, Entity: food.Entity(), X: pos.X, Z: pos.Z})
	}

	s.burrowGrid.Clear()
	burrows := s.world.BurrowFilter().Query()
	for burrows.Next() {
		pos, b := burrows.Get()
		s.burrowGrid.Insert(Entry{ID: b.ID, Entity: burrows.Entity(), X: pos.X, Z: pos.Z})
	}
}

func (s *BehaviorSystem) updateAgent(env Env, pos *components.Position, vel *components.Velocity, a *components.Agent) {
	if starveIfDrained(a) {
		return
	}

	dt := env.Dt
	a.Age += dt
	a.ActionTimer += dt
	a.Fear = clampFloat(a.Fear-s.cfg.Social.FearDecay*dt, 0, 100)

	s.validateBurrowRefs(pos, a)

	if a.State == components.StateSleeping {
		*vel = components.Velocity{}
		s.updateSleep(env, pos, a)
		s.metabolize(env, a)
		s.checkDeath(env, a)
		return
	}

	p := s.perceive(pos, a)
	s.tryEat(pos, a, &p)
	if p.hasOther {
		s.interact(env, pos, a, &p)
		if a.Dead {
			*vel = components.Velocity{}
			return
		}
	}
	s.decide(env, pos, a, &p)

	switch {
	case a.State == components.StateDigging:
		s.dig(env, pos, vel, a)
	case a.State.Frozen():
		*vel = components.Velocity{}
		if a.CurrentBurrowID == 0 {
			pos.Y = 0
		}
	default:
		s.move(env, pos, vel, a, &p)
	}

	s.metabolize(env, a)
	s.recordTrail(dt, pos, a)
	s.checkDeath(env, a)
}

// decide applies state transitions in priority order.
func (s *BehaviorSystem) decide(env Env, pos *components.Position, a *components.Agent, p *percept) {
	cfg := s.cfg
	ratio := a.EnergyRatio()

	switch a.State {
	case components.StateDigging, components.StateSleeping:
		return
	case components.StateMating:
		if a.ActionTimer < cfg.Reproduction.MatingDuration {
			return
		}
		a.SetState(components.StateWandering)
	case components.StateSnuggling:
		if s.keepSnuggling(env, pos, a) {
			return
		}
		a.FocusID = 0
		a.SetState(components.StateWandering)
	}

	// Fear overrides everything below
	if a.State == components.StateFleeing {
		if a.Fear > cfg.Social.CalmThreshold {
			return
		}
		a.SetState(components.StateWandering)
	} else if a.Fear >= cfg.Social.FleeThreshold {
		a.SetState(components.StateFleeing)
		a.HasTarget = false
		a.FocusID = 0
		a.PanicDir = randomDir(s.rng)
		return
	}

	if env.Night && ratio < cfg.Energy.NightSleepFraction {
		s.fallAsleep(pos, a)
		return
	}

	// Tired agents head home and sleep on arrival
	if ratio < cfg.Energy.TiredFraction && a.OwnedBurrowID != 0 {
		if bpos, b, ok := s.world.Burrow(a.OwnedBurrowID); ok {
			if components.Dist(pos.Ground(), bpos.Ground()) <= cfg.Burrow.EnterDistance {
				s.enterBurrow(pos, a, bpos, b)
				return
			}
		}
	}

	if s.canStartDig(env, a, p) {
		s.startDig(pos, a)
		return
	}

	if p.hasFood {
		a.SetState(components.StateSeekingFood)
		a.Target = components.Point{X: p.food.X, Z: p.food.Z}
		a.HasTarget = true
		return
	}
	if a.State == components.StateSeekingFood {
		a.SetState(components.StateWandering)
		a.HasTarget = false
	}

	if a.State == components.StateResting {
		if a.ActionTimer < cfg.Social.RestDuration {
			return
		}
		a.SetState(components.StateWandering)
	} else if s.digBlocked(env, a, p) {
		a.SetState(components.StateResting)
		a.HasTarget = false
		return
	}

	if s.wantsChase(a, p) {
		if a.State != components.StateChasing || a.FocusID != p.otherAgent.ID {
			a.SetState(components.StateChasing)
			a.FocusID = p.otherAgent.ID
		}
		a.HasTarget = false
		return
	}
	if a.State == components.StateChasing {
		a.SetState(components.StateWandering)
		a.FocusID = 0
	}

	if s.wantsCircle(env, a, p) {
		if a.State != components.StateCircling || a.FocusID != p.otherAgent.ID {
			a.SetState(components.StateCircling)
			a.FocusID = p.otherAgent.ID
		}
		a.HasTarget = false
		return
	}
	if a.State == components.StateCircling {
		a.SetState(components.StateWandering)
		a.FocusID = 0
	}

	if a.State == components.StateExploring {
		arrived := a.HasTarget && components.Dist(pos.Ground(), a.Target) < cfg.Agent.ArrivalDistance
		if !a.HasTarget || arrived || a.ActionTimer > cfg.Agent.ExploreTimeout {
			a.SetState(components.StateWandering)
			a.HasTarget = false
		}
		return
	}

	a.SetState(components.StateWandering)
	if a.ActionTimer > s.exploreDwell(a) {
		a.SetState(components.StateExploring)
		target := randomPoint(cfg, s.rng)
		a.Target = target.Ground()
		a.HasTarget = true
	}
}

// exploreDwell is how long an agent wanders before picking an exploration
// target. The id term desynchronizes the population.
func (s *BehaviorSystem) exploreDwell(a *components.Agent) float64 {
	cfg := &s.cfg.Agent
	jitter := math.Mod(float64(a.ID)*cfg.ExploreJitter, 1) * cfg.ExploreBase
	return cfg.ExploreBase + a.Genome.Selfishness*cfg.ExploreSelfishScale + jitter
}

// wantsChase reports whether a hungry selfish agent should pursue the
// nearest agent, which must be awake and not selfish.
func (s *BehaviorSystem) wantsChase(a *components.Agent, p *percept) bool {
	if p.hasFood || !p.hasOther || a.EnergyRatio() >= s.cfg.Energy.ChaseFraction {
		return false
	}
	thr := s.cfg.Social.SelfishThreshold
	o := p.otherAgent
	return a.Genome.Selfishness >= thr && o.Genome.Selfishness < thr && o.State != components.StateSleeping
}

// wantsCircle reports whether the agent should court the nearest agent:
// both mate-ready friends that are not yet in contact.
func (s *BehaviorSystem) wantsCircle(env Env, a *components.Agent, p *percept) bool {
	if !p.hasOther || p.otherDist <= s.interactionRange(a, p.otherAgent) {
		return false
	}
	o := p.otherAgent
	if !s.friends(a, o) {
		return false
	}
	cooldown := s.matingCooldown(a, o)
	return s.mateReady(env, a, cooldown) && s.mateReady(env, o, cooldown)
}

// validateBurrowRefs nulls out references to burrows that no longer exist.
func (s *BehaviorSystem) validateBurrowRefs(pos *components.Position, a *components.Agent) {
	if a.CurrentBurrowID != 0 {
		if _, _, ok := s.world.Burrow(a.CurrentBurrowID); !ok {
			slog.Debug("stale_burrow_reference", "agent", a.ID, "burrow", a.CurrentBurrowID, "kind", "current")
			a.CurrentBurrowID = 0
			*pos = a.SurfacePos
			pos.Y = 0
		}
	}
	if a.OwnedBurrowID != 0 {
		if _, _, ok := s.world.Burrow(a.OwnedBurrowID); !ok {
			slog.Debug("stale_burrow_reference", "agent", a.ID, "burrow", a.OwnedBurrowID, "kind", "owned")
			a.OwnedBurrowID = 0
			if a.State == components.StateDigging {
				a.SetState(components.StateWandering)
			}
		}
	}
}

func (s *BehaviorSystem) recordTrail(dt float64, pos *components.Position, a *components.Agent) {
	a.TrailTimer += dt
	if a.TrailTimer >= s.cfg.Agent.TrailInterval {
		a.TrailTimer = 0
		a.Trail.Push(*pos)
	}
}

// forgetDead drops survivors' affinity toward agents removed this tick.
func (s *BehaviorSystem) forgetDead() {
	agents := s.world.AgentFilter().Query()
	for agents.Next() {
		_, _, a := agents.Get()
		if len(a.Affinity) == 0 {
			continue
		}
		for _, c := range s.corpses {
			delete(a.Affinity, c.id)
		}
	}
}

// commit removes dead agents and spawns queued births.
func (s *BehaviorSystem) commit() {
	s.corpses = s.corpses[:0]
	for _, ref := range s.refs {
		if !s.world.Alive(ref.Entity) {
			continue
		}
		pos, _, a := s.world.AgentEntity(ref.Entity)
		// Victims of theft or combat may hit zero after their own update
		if !a.Dead && a.Energy <= 0 {
			a.Dead = true
			a.Cause = components.CauseStarvation
		}
		if a.Dead {
			p := *pos
			if a.CurrentBurrowID != 0 {
				p = a.SurfacePos
			}
			s.corpses = append(s.corpses, corpse{id: a.ID, pos: p, cause: a.Cause, age: a.Age, burrow: a.CurrentBurrowID})
		}
	}

	for _, c := range s.corpses {
		if _, b, ok := s.world.Burrow(c.burrow); ok {
			b.RemoveOccupant(c.id)
		}
		s.world.RemoveAgent(c.id)
		s.rec.RecordDeath(c.cause, c.age)
		s.particles.Emit(components.ParticleSkull, c.pos)
	}
	if len(s.corpses) > 0 {
		s.forgetDead()
	}

	for _, b := range s.births {
		if s.world.AgentCount() >= s.cfg.Population.Max {
			break
		}
		energy := s.cfg.Reproduction.OffspringEnergy
		SpawnAgent(s.world, s.rng, b.pos, b.genome, energy, b.generation, b.parents)
		s.rec.RecordBirth(b.generation)
		s.particles.Emit(components.ParticleSparkle, b.pos)
	}
}
