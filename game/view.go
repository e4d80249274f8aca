package game

import (
	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/genetics"
	"github.com/pthm-cable/warren/telemetry"
)

// AgentView is a read-only copy of an agent for display.
type AgentView struct {
	ID              uint32
	Name            string
	Position        components.Position
	Velocity        components.Velocity
	Heading         components.Point
	Genome          genetics.Genome
	Generation      int
	Energy          float64
	MaxEnergy       float64
	Age             float64
	State           components.State
	Target          components.Point
	HasTarget       bool
	HopTimer        float64 // position in the hop cycle, drives hop animation
	DigTimer        float64
	DigProgress     float64 // owned burrow's progress, 0 without one
	Fear            float64
	Children        int
	OwnedBurrowID   uint32
	CurrentBurrowID uint32
	Trail           []components.Position // oldest first
}

// Sheltered reports whether the agent is inside a burrow.
func (v AgentView) Sheltered() bool {
	return v.CurrentBurrowID != 0
}

// FoodView is a read-only copy of a food item.
type FoodView struct {
	ID       uint32
	Position components.Position
	Value    float64
}

// BurrowView is a read-only copy of a burrow.
type BurrowView struct {
	ID          uint32
	Position    components.Position
	OwnerID     uint32
	Occupants   []uint32
	Radius      float64
	DigProgress float64
	Complete    bool
}

// ParticleView is a read-only copy of a particle.
type ParticleView struct {
	ID       uint32
	Position components.Position
	Kind     components.ParticleKind
	Life     float64
	MaxLife  float64
	Scale    float64
	Color    components.Color
}

// Fade returns the remaining life fraction in [0,1].
func (v ParticleView) Fade() float64 {
	if v.MaxLife <= 0 || v.Life <= 0 {
		return 0
	}
	if v.Life >= v.MaxLife {
		return 1
	}
	return v.Life / v.MaxLife
}

// View is a point-in-time copy of everything a display layer needs.
// Records are ordered by id. Mutating a View never affects the game.
type View struct {
	Tick      uint64
	Elapsed   float64
	TimeOfDay float64
	Night     bool
	Paused    bool

	Agents    []AgentView
	Food      []FoodView
	Burrows   []BurrowView
	Particles []ParticleView

	Stats  telemetry.WindowStats
	Totals telemetry.EventCounts
}

// Snapshot copies the current state into a View.
func (g *Game) Snapshot() View {
	w := g.world
	v := View{
		Tick:      g.tick,
		Elapsed:   g.elapsed,
		TimeOfDay: g.timeOfDay,
		Night:     g.IsNight(),
		Paused:    g.paused,
		Agents:    make([]AgentView, 0, w.AgentCount()),
		Food:      make([]FoodView, 0, w.FoodCount()),
		Burrows:   make([]BurrowView, 0, w.BurrowCount()),
		Particles: make([]ParticleView, 0, w.ParticleCount()),
		Stats:     g.lastStats,
		Totals:    g.collector.Totals(),
	}

	for _, ref := range w.AgentRefs() {
		pos, vel, a := w.AgentEntity(ref.Entity)
		var progress float64
		if _, b, ok := w.Burrow(a.OwnedBurrowID); ok {
			progress = b.DigProgress
		}
		v.Agents = append(v.Agents, AgentView{
			ID:              a.ID,
			Name:            a.Name,
			Position:        *pos,
			Velocity:        *vel,
			Heading:         a.Heading,
			Genome:          a.Genome,
			Generation:      a.Generation,
			Energy:          a.Energy,
			MaxEnergy:       a.MaxEnergy,
			Age:             a.Age,
			State:           a.State,
			Target:          a.Target,
			HasTarget:       a.HasTarget,
			HopTimer:        a.HopTimer,
			DigTimer:        a.DigTimer,
			DigProgress:     progress,
			Fear:            a.Fear,
			Children:        a.Children,
			OwnedBurrowID:   a.OwnedBurrowID,
			CurrentBurrowID: a.CurrentBurrowID,
			Trail:           a.Trail.Ordered(),
		})
	}
	for _, id := range w.FoodIDs() {
		pos, f, _ := w.Food(id)
		v.Food = append(v.Food, FoodView{ID: f.ID, Position: *pos, Value: f.Value})
	}
	for _, id := range w.BurrowIDs() {
		pos, b, _ := w.Burrow(id)
		v.Burrows = append(v.Burrows, BurrowView{
			ID:          b.ID,
			Position:    *pos,
			OwnerID:     b.OwnerID,
			Occupants:   append([]uint32(nil), b.Occupants...),
			Radius:      b.Radius,
			DigProgress: b.DigProgress,
			Complete:    b.Complete,
		})
	}
	for _, id := range w.ParticleIDs() {
		pos, _, p, _ := w.Particle(id)
		v.Particles = append(v.Particles, ParticleView{
			ID:       p.ID,
			Position: *pos,
			Kind:     p.Kind,
			Life:     p.Life,
			MaxLife:  p.MaxLife,
			Scale:    p.Scale,
			Color:    p.Color,
		})
	}
	return v
}

// Inspect returns the labeled inspector fields for one agent.
func (g *Game) Inspect(id uint32) ([]components.InspectField, bool) {
	_, _, a, ok := g.world.Agent(id)
	if !ok {
		return nil, false
	}
	return components.Inspect(a), true
}
