package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/genetics"
)

// ErrCorruptState is wrapped by every validation failure.
var ErrCorruptState = errors.New("corrupt world state")

// StateVersion is the current State layout version.
const StateVersion = 1

// State is a complete, self-contained copy of the simulation.
// Trails are render-only and are regenerated empty on import.
type State struct {
	Version   int              `json:"version"`
	Tick      uint64           `json:"tick"`
	TimeOfDay float64          `json:"time_of_day"`
	Elapsed   float64          `json:"elapsed"`
	RNG       []byte           `json:"rng,omitempty"`
	NextIDs   NextIDs          `json:"next_ids"`
	Agents    []AgentRecord    `json:"agents"`
	Food      []FoodRecord     `json:"food"`
	Burrows   []BurrowRecord   `json:"burrows"`
	Particles []ParticleRecord `json:"particles"`
}

// AgentRecord is the persisted form of an agent.
type AgentRecord struct {
	ID              uint32              `json:"id"`
	Name            string              `json:"name"`
	Position        components.Position `json:"position"`
	Velocity        components.Velocity `json:"velocity"`
	Genome          genetics.Genome     `json:"genome"`
	Generation      int                 `json:"generation"`
	ParentIDs       [2]uint32           `json:"parent_ids"`
	Energy          float64             `json:"energy"`
	Age             float64             `json:"age"`
	State           components.State    `json:"state"`
	Target          *components.Point   `json:"target,omitempty"`
	Heading         components.Point    `json:"heading"`
	HopTimer        float64             `json:"hop_timer"`
	ActionTimer     float64             `json:"action_timer"`
	Fear            float64             `json:"fear"`
	PanicDir        components.Point    `json:"panic_dir"`
	FocusID         uint32              `json:"focus_id"`
	Affinity        map[uint32]float64  `json:"affinity,omitempty"`
	LastMated       float64             `json:"last_mated"`
	HasMated        bool                `json:"has_mated"`
	Children        int                 `json:"children"`
	OwnedBurrowID   uint32              `json:"owned_burrow_id"`
	CurrentBurrowID uint32              `json:"current_burrow_id"`
	SurfacePos      components.Position `json:"surface_pos"`
	DigTimer        float64             `json:"dig_timer"`
	TrailTimer      float64             `json:"trail_timer"`
}

// FoodRecord is the persisted form of a food item.
type FoodRecord struct {
	ID       uint32              `json:"id"`
	Position components.Position `json:"position"`
	Value    float64             `json:"value"`
}

// BurrowRecord is the persisted form of a burrow.
type BurrowRecord struct {
	ID          uint32              `json:"id"`
	Position    components.Position `json:"position"`
	OwnerID     uint32              `json:"owner_id"`
	Occupants   []uint32            `json:"occupants"`
	Radius      float64             `json:"radius"`
	DigProgress float64             `json:"dig_progress"`
	Complete    bool                `json:"complete"`
}

// ParticleRecord is the persisted form of a particle.
type ParticleRecord struct {
	ID       uint32                  `json:"id"`
	Position components.Position     `json:"position"`
	Velocity components.Velocity     `json:"velocity"`
	Kind     components.ParticleKind `json:"kind"`
	Life     float64                 `json:"life"`
	MaxLife  float64                 `json:"max_life"`
	Scale    float64                 `json:"scale"`
	Color    components.Color        `json:"color"`
}

// Export copies every entity into a State. Records are ordered by id.
// Clock and RNG fields are left for the caller.
func (w *World) Export() State {
	s := State{
		Version:   StateVersion,
		NextIDs:   w.next,
		Agents:    make([]AgentRecord, 0, w.AgentCount()),
		Food:      make([]FoodRecord, 0, w.FoodCount()),
		Burrows:   make([]BurrowRecord, 0, w.BurrowCount()),
		Particles: make([]ParticleRecord, 0, w.ParticleCount()),
	}

	for _, ref := range w.AgentRefs() {
		pos, vel, a := w.agentMapper.Get(ref.Entity)
		s.Agents = append(s.Agents, agentRecord(pos, vel, a))
	}
	for _, id := range w.FoodIDs() {
		pos, f, _ := w.Food(id)
		s.Food = append(s.Food, FoodRecord{ID: f.ID, Position: *pos, Value: f.Value})
	}
	for _, id := range w.BurrowIDs() {
		pos, b, _ := w.Burrow(id)
		s.Burrows = append(s.Burrows, BurrowRecord{
			ID:          b.ID,
			Position:    *pos,
			OwnerID:     b.OwnerID,
			Occupants:   append([]uint32{}, b.Occupants...),
			Radius:      b.Radius,
			DigProgress: b.DigProgress,
			Complete:    b.Complete,
		})
	}
	for _, id := range w.ParticleIDs() {
		pos, vel, p, _ := w.Particle(id)
		s.Particles = append(s.Particles, ParticleRecord{
			ID:       p.ID,
			Position: *pos,
			Velocity: *vel,
			Kind:     p.Kind,
			Life:     p.Life,
			MaxLife:  p.MaxLife,
			Scale:    p.Scale,
			Color:    p.Color,
		})
	}
	return s
}

func agentRecord(pos *components.Position, vel *components.Velocity, a *components.Agent) AgentRecord {
	r := AgentRecord{
		ID:              a.ID,
		Name:            a.Name,
		Position:        *pos,
		Velocity:        *vel,
		Genome:          a.Genome,
		Generation:      a.Generation,
		ParentIDs:       a.ParentIDs,
		Energy:          a.Energy,
		Age:             a.Age,
		State:           a.State,
		Heading:         a.Heading,
		HopTimer:        a.HopTimer,
		ActionTimer:     a.ActionTimer,
		Fear:            a.Fear,
		PanicDir:        a.PanicDir,
		FocusID:         a.FocusID,
		LastMated:       a.LastMated,
		HasMated:        a.HasMated,
		Children:        a.Children,
		OwnedBurrowID:   a.OwnedBurrowID,
		CurrentBurrowID: a.CurrentBurrowID,
		SurfacePos:      a.SurfacePos,
		DigTimer:        a.DigTimer,
		TrailTimer:      a.TrailTimer,
	}
	if a.HasTarget {
		t := a.Target
		r.Target = &t
	}
	if len(a.Affinity) > 0 {
		r.Affinity = make(map[uint32]float64, len(a.Affinity))
		for k, v := range a.Affinity {
			r.Affinity[k] = v
		}
	}
	return r
}

// Import replaces every entity with the contents of s. The state is fully
// validated first; on error the world is left untouched.
func (w *World) Import(s State) error {
	if err := Validate(s); err != nil {
		return err
	}

	fresh := New()
	for _, r := range s.Agents {
		fresh.insertAgent(r.Position, r.Velocity, agentFromRecord(r))
	}
	for _, r := range s.Food {
		fresh.insertFood(r.Position, components.Food{ID: r.ID, Value: r.Value})
	}
	for _, r := range s.Burrows {
		fresh.insertBurrow(r.Position, components.Burrow{
			ID:          r.ID,
			OwnerID:     r.OwnerID,
			Occupants:   append([]uint32(nil), r.Occupants...),
			Radius:      r.Radius,
			DigProgress: r.DigProgress,
			Complete:    r.Complete,
		})
	}
	for _, r := range s.Particles {
		fresh.insertParticle(r.Position, r.Velocity, components.Particle{
			ID:      r.ID,
			Kind:    r.Kind,
			Life:    r.Life,
			MaxLife: r.MaxLife,
			Scale:   r.Scale,
			Color:   r.Color,
		})
	}
	fresh.next = s.NextIDs

	*w = *fresh
	return nil
}

func agentFromRecord(r AgentRecord) components.Agent {
	a := components.Agent{
		ID:              r.ID,
		Name:            r.Name,
		Genome:          r.Genome,
		Generation:      r.Generation,
		ParentIDs:       r.ParentIDs,
		Energy:          r.Energy,
		MaxEnergy:       r.Genome.MaxEnergy(),
		Age:             r.Age,
		State:           r.State,
		Heading:         r.Heading,
		HopTimer:        r.HopTimer,
		ActionTimer:     r.ActionTimer,
		Fear:            r.Fear,
		PanicDir:        r.PanicDir,
		FocusID:         r.FocusID,
		Affinity:        make(map[uint32]float64, len(r.Affinity)),
		LastMated:       r.LastMated,
		HasMated:        r.HasMated,
		Children:        r.Children,
		OwnedBurrowID:   r.OwnedBurrowID,
		CurrentBurrowID: r.CurrentBurrowID,
		SurfacePos:      r.SurfacePos,
		DigTimer:        r.DigTimer,
		TrailTimer:      r.TrailTimer,
	}
	if r.Target != nil {
		a.Target = *r.Target
		a.HasTarget = true
	}
	for k, v := range r.Affinity {
		a.Affinity[k] = v
	}
	return a
}

// Validate checks a State for internal consistency without touching any world.
func Validate(s State) error {
	if s.Version != StateVersion {
		return corrupt("unsupported version %d", s.Version)
	}
	if s.NextIDs.Agent == 0 || s.NextIDs.Food == 0 || s.NextIDs.Burrow == 0 || s.NextIDs.Particle == 0 {
		return corrupt("id counters must start at 1")
	}
	if !finite(s.TimeOfDay) || s.TimeOfDay < 0 || s.TimeOfDay >= 24 {
		return corrupt("time of day %v out of range", s.TimeOfDay)
	}
	if !finite(s.Elapsed) || s.Elapsed < 0 {
		return corrupt("elapsed time %v out of range", s.Elapsed)
	}

	agentIDs, err := collectIDs("agent", len(s.Agents), s.NextIDs.Agent, func(i int) uint32 { return s.Agents[i].ID })
	if err != nil {
		return err
	}
	if _, err := collectIDs("food", len(s.Food), s.NextIDs.Food, func(i int) uint32 { return s.Food[i].ID }); err != nil {
		return err
	}
	burrowIDs, err := collectIDs("burrow", len(s.Burrows), s.NextIDs.Burrow, func(i int) uint32 { return s.Burrows[i].ID })
	if err != nil {
		return err
	}
	if _, err := collectIDs("particle", len(s.Particles), s.NextIDs.Particle, func(i int) uint32 { return s.Particles[i].ID }); err != nil {
		return err
	}

	for _, r := range s.Agents {
		if err := validateAgent(r, burrowIDs); err != nil {
			return err
		}
	}
	for _, r := range s.Food {
		if !finitePos(r.Position) || !finite(r.Value) || r.Value < 0 {
			return corrupt("food %d: invalid position or value", r.ID)
		}
	}
	for _, r := range s.Burrows {
		if !finitePos(r.Position) {
			return corrupt("burrow %d: invalid position", r.ID)
		}
		if !finite(r.DigProgress) || r.DigProgress < 0 || r.DigProgress > 1 {
			return corrupt("burrow %d: dig progress %v outside [0,1]", r.ID, r.DigProgress)
		}
		if !finite(r.Radius) || r.Radius <= 0 {
			return corrupt("burrow %d: radius %v", r.ID, r.Radius)
		}
		if r.OwnerID == 0 || r.OwnerID >= s.NextIDs.Agent {
			return corrupt("burrow %d: owner %d was never allocated", r.ID, r.OwnerID)
		}
		for _, o := range r.Occupants {
			if _, ok := agentIDs[o]; !ok {
				return corrupt("burrow %d: occupant %d does not exist", r.ID, o)
			}
		}
	}
	for _, r := range s.Particles {
		if !finitePos(r.Position) || !finite(r.Velocity.X) || !finite(r.Velocity.Y) || !finite(r.Velocity.Z) {
			return corrupt("particle %d: invalid motion", r.ID)
		}
		if r.Kind > components.ParticleSkull {
			return corrupt("particle %d: unknown kind %d", r.ID, r.Kind)
		}
		if !finite(r.Life) || !finite(r.MaxLife) || r.MaxLife <= 0 {
			return corrupt("particle %d: invalid lifetime", r.ID)
		}
	}
	return nil
}

func validateAgent(r AgentRecord, burrows map[uint32]struct{}) error {
	if !r.Genome.Valid() {
		return corrupt("agent %d: genome out of range", r.ID)
	}
	if !finite(r.Energy) || r.Energy <= 0 || r.Energy > r.Genome.MaxEnergy() {
		return corrupt("agent %d: energy %v outside (0, %v]", r.ID, r.Energy, r.Genome.MaxEnergy())
	}
	if !finite(r.Age) || r.Age < 0 {
		return corrupt("agent %d: age %v", r.ID, r.Age)
	}
	if int(r.State) >= components.NumStates {
		return corrupt("agent %d: unknown state %d", r.ID, r.State)
	}
	if !finitePos(r.Position) || !finitePos(r.SurfacePos) {
		return corrupt("agent %d: invalid position", r.ID)
	}
	if !finite(r.Heading.X) || !finite(r.Heading.Z) {
		return corrupt("agent %d: invalid heading", r.ID)
	}
	if !finite(r.Fear) || r.Fear < 0 || r.Fear > 100 {
		return corrupt("agent %d: fear %v outside [0,100]", r.ID, r.Fear)
	}
	for other, v := range r.Affinity {
		if !finite(v) || v < -100 || v > 100 {
			return corrupt("agent %d: affinity toward %d is %v", r.ID, other, v)
		}
	}
	if r.OwnedBurrowID != 0 {
		if _, ok := burrows[r.OwnedBurrowID]; !ok {
			return corrupt("agent %d: owned burrow %d does not exist", r.ID, r.OwnedBurrowID)
		}
	}
	if r.CurrentBurrowID != 0 {
		if _, ok := burrows[r.CurrentBurrowID]; !ok {
			return corrupt("agent %d: current burrow %d does not exist", r.ID, r.CurrentBurrowID)
		}
	}
	return nil
}

func collectIDs(class string, n int, next uint32, id func(int) uint32) (map[uint32]struct{}, error) {
	seen := make(map[uint32]struct{}, n)
	for i := 0; i < n; i++ {
		v := id(i)
		if v == 0 || v >= next {
			return nil, corrupt("%s id %d outside [1, %d)", class, v, next)
		}
		if _, dup := seen[v]; dup {
			return nil, corrupt("duplicate %s id %d", class, v)
		}
		seen[v] = struct{}{}
	}
	return seen, nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptState, fmt.Sprintf(format, args...))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finitePos(p components.Position) bool {
	return finite(p.X) && finite(p.Y) && finite(p.Z)
}
