// Package world owns the entity store: agents, food, burrows and particles
// held in an ark ECS world, addressed by stable per-class integer ids.
package world

import (
	"sort"

	"github.com/kamstrup/intmap"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/warren/components"
)

// AgentRef pairs an agent id with its ECS entity.
type AgentRef struct {
	ID     uint32
	Entity ecs.Entity
}

// World holds every simulated entity.
// Ids are unique per class and never reused until Reset.
type World struct {
	ecs *ecs.World

	agentMapper    *ecs.Map3[components.Position, components.Velocity, components.Agent]
	foodMapper     *ecs.Map2[components.Position, components.Food]
	burrowMapper   *ecs.Map2[components.Position, components.Burrow]
	particleMapper *ecs.Map3[components.Position, components.Velocity, components.Particle]

	agentFilter    *ecs.Filter3[components.Position, components.Velocity, components.Agent]
	foodFilter     *ecs.Filter2[components.Position, components.Food]
	burrowFilter   *ecs.Filter2[components.Position, components.Burrow]
	particleFilter *ecs.Filter3[components.Position, components.Velocity, components.Particle]

	// id -> entity indices
	agents    *intmap.Map[uint32, ecs.Entity]
	foods     *intmap.Map[uint32, ecs.Entity]
	burrows   *intmap.Map[uint32, ecs.Entity]
	particles *intmap.Map[uint32, ecs.Entity]

	next NextIDs
}

// NextIDs holds the per-class id counters.
type NextIDs struct {
	Agent    uint32 `json:"agent"`
	Food     uint32 `json:"food"`
	Burrow   uint32 `json:"burrow"`
	Particle uint32 `json:"particle"`
}

func initialIDs() NextIDs {
	return NextIDs{Agent: 1, Food: 1, Burrow: 1, Particle: 1}
}

// New creates an empty world.
func New() *World {
	w := &World{}
	w.Reset()
	return w
}

// Reset discards every entity and restarts the id counters.
func (w *World) Reset() {
	world := ecs.NewWorld()

	w.ecs = world
	w.agentMapper = ecs.NewMap3[components.Position, components.Velocity, components.Agent](world)
	w.foodMapper = ecs.NewMap2[components.Position, components.Food](world)
	w.burrowMapper = ecs.NewMap2[components.Position, components.Burrow](world)
	w.particleMapper = ecs.NewMap3[components.Position, components.Velocity, components.Particle](world)

	w.agentFilter = ecs.NewFilter3[components.Position, components.Velocity, components.Agent](world)
	w.foodFilter = ecs.NewFilter2[components.Position, components.Food](world)
	w.burrowFilter = ecs.NewFilter2[components.Position, components.Burrow](world)
	w.particleFilter = ecs.NewFilter3[components.Position, components.Velocity, components.Particle](world)

	w.agents = intmap.New[uint32, ecs.Entity](256)
	w.foods = intmap.New[uint32, ecs.Entity](256)
	w.burrows = intmap.New[uint32, ecs.Entity](64)
	w.particles = intmap.New[uint32, ecs.Entity](256)

	w.next = initialIDs()
}

// NextIDs returns the current id counters.
func (w *World) NextIDs() NextIDs {
	return w.next
}

// Alive reports whether an entity still exists.
func (w *World) Alive(e ecs.Entity) bool {
	return w.ecs.Alive(e)
}

// AgentCount returns the number of live agents.
func (w *World) AgentCount() int { return w.agents.Len() }

// FoodCount returns the number of food items.
func (w *World) FoodCount() int { return w.foods.Len() }

// BurrowCount returns the number of burrows, finished or not.
func (w *World) BurrowCount() int { return w.burrows.Len() }

// ParticleCount returns the number of live particles.
func (w *World) ParticleCount() int { return w.particles.Len() }

// Query views. Structural changes are not allowed while a query is open.

func (w *World) AgentFilter() *ecs.Filter3[components.Position, components.Velocity, components.Agent] {
	return w.agentFilter
}

func (w *World) FoodFilter() *ecs.Filter2[components.Position, components.Food] {
	return w.foodFilter
}

func (w *World) BurrowFilter() *ecs.Filter2[components.Position, components.Burrow] {
	return w.burrowFilter
}

func (w *World) ParticleFilter() *ecs.Filter3[components.Position, components.Velocity, components.Particle] {
	return w.particleFilter
}

// AddAgent stores a new agent, assigning its id. The returned id is also
// written into the stored component.
func (w *World) AddAgent(pos components.Position, vel components.Velocity, a components.Agent) uint32 {
	a.ID = w.next.Agent
	w.next.Agent++
	w.insertAgent(pos, vel, a)
	return a.ID
}

func (w *World) insertAgent(pos components.Position, vel components.Velocity, a components.Agent) {
	if a.Affinity == nil {
		a.Affinity = make(map[uint32]float64)
	}
	e := w.agentMapper.NewEntity(&pos, &vel, &a)
	w.agents.Put(a.ID, e)
}

// AddFood stores a food item at (x, z).
func (w *World) AddFood(x, z, value float64) uint32 {
	f := components.Food{ID: w.next.Food, Value: value}
	w.next.Food++
	w.insertFood(components.Position{X: x, Z: z}, f)
	return f.ID
}

func (w *World) insertFood(pos components.Position, f components.Food) {
	e := w.foodMapper.NewEntity(&pos, &f)
	w.foods.Put(f.ID, e)
}

// AddBurrow stores a new, incomplete burrow owned by ownerID.
func (w *World) AddBurrow(ownerID uint32, x, z, radius float64) uint32 {
	b := components.Burrow{ID: w.next.Burrow, OwnerID: ownerID, Radius: radius}
	w.next.Burrow++
	w.insertBurrow(components.Position{X: x, Z: z}, b)
	return b.ID
}

func (w *World) insertBurrow(pos components.Position, b components.Burrow) {
	e := w.burrowMapper.NewEntity(&pos, &b)
	w.burrows.Put(b.ID, e)
}

// AddParticle stores a particle, assigning its id.
func (w *World) AddParticle(pos components.Position, vel components.Velocity, p components.Particle) uint32 {
	p.ID = w.next.Particle
	w.next.Particle++
	w.insertParticle(pos, vel, p)
	return p.ID
}

func (w *World) insertParticle(pos components.Position, vel components.Velocity, p components.Particle) {
	e := w.particleMapper.NewEntity(&pos, &vel, &p)
	w.particles.Put(p.ID, e)
}

// Lookups. A missing id yields ok=false; callers null out stale references.

// Agent returns the components of a live agent.
func (w *World) Agent(id uint32) (*components.Position, *components.Velocity, *components.Agent, bool) {
	e, ok := w.agents.Get(id)
	if !ok || !w.ecs.Alive(e) {
		return nil, nil, nil, false
	}
	pos, vel, a := w.agentMapper.Get(e)
	return pos, vel, a, true
}

// AgentEntity returns the components of an agent by entity.
func (w *World) AgentEntity(e ecs.Entity) (*components.Position, *components.Velocity, *components.Agent) {
	return w.agentMapper.Get(e)
}

// Food returns the components of a live food item.
func (w *World) Food(id uint32) (*components.Position, *components.Food, bool) {
	e, ok := w.foods.Get(id)
	if !ok || !w.ecs.Alive(e) {
		return nil, nil, false
	}
	pos, f := w.foodMapper.Get(e)
	return pos, f, true
}

// Burrow returns the components of a live burrow.
func (w *World) Burrow(id uint32) (*components.Position, *components.Burrow, bool) {
	if id == 0 {
		return nil, nil, false
	}
	e, ok := w.burrows.Get(id)
	if !ok || !w.ecs.Alive(e) {
		return nil, nil, false
	}
	pos, b := w.burrowMapper.Get(e)
	return pos, b, true
}

// BurrowEntity returns the ECS entity of a live burrow.
func (w *World) BurrowEntity(id uint32) (ecs.Entity, bool) {
	e, ok := w.burrows.Get(id)
	if !ok || !w.ecs.Alive(e) {
		return ecs.Entity{}, false
	}
	return e, true
}

// Particle returns the components of a live particle.
func (w *World) Particle(id uint32) (*components.Position, *components.Velocity, *components.Particle, bool) {
	e, ok := w.particles.Get(id)
	if !ok || !w.ecs.Alive(e) {
		return nil, nil, nil, false
	}
	pos, vel, p := w.particleMapper.Get(e)
	return pos, vel, p, true
}

// Removal. Must not be called while a query is open.

// RemoveAgent deletes an agent. Returns false if it did not exist.
func (w *World) RemoveAgent(id uint32) bool {
	return w.remove(w.agents, id)
}

// RemoveFood deletes a food item.
func (w *World) RemoveFood(id uint32) bool {
	return w.remove(w.foods, id)
}

// RemoveBurrow deletes a burrow.
func (w *World) RemoveBurrow(id uint32) bool {
	return w.remove(w.burrows, id)
}

// RemoveParticle deletes a particle.
func (w *World) RemoveParticle(id uint32) bool {
	return w.remove(w.particles, id)
}

func (w *World) remove(index *intmap.Map[uint32, ecs.Entity], id uint32) bool {
	e, ok := index.Get(id)
	if !ok {
		return false
	}
	index.Del(id)
	if !w.ecs.Alive(e) {
		return false
	}
	w.ecs.RemoveEntity(e)
	return true
}

// AgentRefs returns every live agent ordered by id.
func (w *World) AgentRefs() []AgentRef {
	refs := make([]AgentRef, 0, w.agents.Len())
	query := w.agentFilter.Query()
	for query.Next() {
		_, _, a := query.Get()
		refs = append(refs, AgentRef{ID: a.ID, Entity: query.Entity()})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs
}

// FoodIDs returns every live food id in ascending order.
func (w *World) FoodIDs() []uint32 {
	ids := make([]uint32, 0, w.foods.Len())
	query := w.foodFilter.Query()
	for query.Next() {
		_, f := query.Get()
		ids = append(ids, f.ID)
	}
	sortIDs(ids)
	return ids
}

// BurrowIDs returns every live burrow id in ascending order.
func (w *World) BurrowIDs() []uint32 {
	ids := make([]uint32, 0, w.burrows.Len())
	query := w.burrowFilter.Query()
	for query.Next() {
		_, b := query.Get()
		ids = append(ids, b.ID)
	}
	sortIDs(ids)
	return ids
}

// ParticleIDs returns every live particle id in ascending order.
func (w *World) ParticleIDs() []uint32 {
	ids := make([]uint32, 0, w.particles.Len())
	query := w.particleFilter.Query()
	for query.Next() {
		_, _, p := query.Get()
		ids = append(ids, p.ID)
	}
	sortIDs(ids)
	return ids
}

func sortIDs(ids []uint32) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
