package components

import (
	"fmt"

	"github.com/pthm-cable/warren/genetics"
)

// State is the behavior state of an agent.
type State uint8

const (
	StateWandering State = iota
	StateExploring
	StateSeekingFood
	StateFleeing
	StateChasing
	StateMating
	StateResting
	StateDigging
	StateCircling
	StateSleeping
	StateSnuggling
)

var stateNames = [...]string{
	"wandering",
	"exploring",
	"seeking_food",
	"fleeing",
	"chasing",
	"mating",
	"resting",
	"digging",
	"circling",
	"sleeping",
	"snuggling",
}

// NumStates is the number of behavior states.
const NumStates = len(stateNames)

// String returns the snake_case name of the state.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// ParseState converts a state name back to a State.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", name)
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	if int(s) >= len(stateNames) {
		return nil, fmt.Errorf("invalid state %d", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	st, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Restful reports whether agents in this state regenerate energy.
func (s State) Restful() bool {
	return s == StateSleeping || s == StateSnuggling || s == StateResting
}

// Frozen reports whether agents in this state do not move.
func (s State) Frozen() bool {
	switch s {
	case StateSleeping, StateDigging, StateSnuggling, StateMating, StateResting:
		return true
	}
	return false
}

// DeathCause records why an agent was removed.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseStarvation
	CauseOldAge
)

// String returns the cause name.
func (c DeathCause) String() string {
	switch c {
	case CauseStarvation:
		return "starvation"
	case CauseOldAge:
		return "old_age"
	}
	return "none"
}

// TrailLength is the number of recent positions kept per agent.
const TrailLength = 16

// Trail is a bounded ring of recent positions. Render-only; never persisted.
type Trail struct {
	Points [TrailLength]Position
	Head   uint8
	Count  uint8
}

// Push records a position, overwriting the oldest when full.
func (t *Trail) Push(p Position) {
	t.Points[t.Head] = p
	t.Head = (t.Head + 1) % TrailLength
	if t.Count < TrailLength {
		t.Count++
	}
}

// Ordered returns the recorded positions from oldest to newest.
func (t *Trail) Ordered() []Position {
	out := make([]Position, 0, t.Count)
	start := (int(t.Head) - int(t.Count) + TrailLength) % TrailLength
	for i := 0; i < int(t.Count); i++ {
		out = append(out, t.Points[(start+i)%TrailLength])
	}
	return out
}

// Agent holds a rabbit's identity, genome and behavior state.
type Agent struct {
	ID         uint32
	Name       string
	Genome     genetics.Genome
	Generation int
	ParentIDs  [2]uint32 // zero for founders

	// Metabolic state
	Energy    float64
	MaxEnergy float64 // derived from genome
	Age       float64 // seconds alive

	// Behavior
	State       State
	Target      Point
	HasTarget   bool
	Heading     Point // unit vector on the ground plane
	HopTimer    float64
	ActionTimer float64 // time spent in the current state
	Fear        float64 // 0-100
	PanicDir    Point
	FocusID     uint32 // agent being chased, circled or snuggled (0 = none)

	// Social
	Affinity  map[uint32]float64 // other agent id -> [-100, 100]
	LastMated float64            // age at last mating
	HasMated  bool
	Children  int

	// Shelter
	OwnedBurrowID   uint32 // 0 = none
	CurrentBurrowID uint32 // non-zero while sheltering
	SurfacePos      Position
	DigTimer        float64

	// Render-only
	Trail      Trail
	TrailTimer float64

	// Set during the behavior pass, applied at commit
	Dead  bool
	Cause DeathCause
}

// EnergyRatio returns Energy/MaxEnergy, or 0 for a degenerate max.
func (a *Agent) EnergyRatio() float64 {
	if a.MaxEnergy <= 0 {
		return 0
	}
	return a.Energy / a.MaxEnergy
}

// AffinityToward returns this agent's stored affinity toward another.
func (a *Agent) AffinityToward(id uint32) float64 {
	return a.Affinity[id]
}

// SetState switches state and restarts the state timer.
func (a *Agent) SetState(s State) {
	if a.State == s {
		return
	}
	a.State = s
	a.ActionTimer = 0
}
