package world

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/genetics"
)

func testGenome() genetics.Genome {
	return genetics.Genome{Selfishness: 0.2, Speed: 1, Size: 1, MutationRate: 0.05, Hue: 0.3, Energy: 0.5, Fertility: 0.5}
}

func testAgent(energy float64) components.Agent {
	g := testGenome()
	return components.Agent{
		Genome:    g,
		Energy:    energy,
		MaxEnergy: g.MaxEnergy(),
		Heading:   components.DefaultHeading,
	}
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	w := New()

	a1 := w.AddAgent(components.Position{X: 1}, components.Velocity{}, testAgent(50))
	a2 := w.AddAgent(components.Position{X: 2}, components.Velocity{}, testAgent(50))
	f1 := w.AddFood(3, 4, 20)
	b1 := w.AddBurrow(a1, 5, 5, 1)

	assert.Equal(t, uint32(1), a1)
	assert.Equal(t, uint32(2), a2)
	assert.Equal(t, uint32(1), f1, "ids are per class")
	assert.Equal(t, uint32(1), b1)
	assert.Equal(t, 2, w.AgentCount())
	assert.Equal(t, 1, w.FoodCount())
	assert.Equal(t, 1, w.BurrowCount())

	_, _, a, ok := w.Agent(a2)
	require.True(t, ok)
	assert.Equal(t, a2, a.ID)
	assert.NotNil(t, a.Affinity, "affinity map is always initialized")
}

func TestRemovedIDsAreNotReused(t *testing.T) {
	w := New()
	id := w.AddAgent(components.Position{}, components.Velocity{}, testAgent(50))
	require.True(t, w.RemoveAgent(id))
	assert.False(t, w.RemoveAgent(id), "second removal reports missing")

	_, _, _, ok := w.Agent(id)
	assert.False(t, ok, "stale lookup must fail")

	next := w.AddAgent(components.Position{}, components.Velocity{}, testAgent(50))
	assert.Equal(t, id+1, next)
}

func TestResetRestartsCounters(t *testing.T) {
	w := New()
	w.AddAgent(components.Position{}, components.Velocity{}, testAgent(50))
	w.AddFood(0, 0, 1)
	w.Reset()

	assert.Equal(t, 0, w.AgentCount())
	assert.Equal(t, 0, w.FoodCount())
	assert.Equal(t, initialIDs(), w.NextIDs())
	assert.Equal(t, uint32(1), w.AddFood(0, 0, 1))
}

func TestAgentRefsOrderedByID(t *testing.T) {
	w := New()
	for i := 0; i < 10; i++ {
		w.AddAgent(components.Position{X: float64(i)}, components.Velocity{}, testAgent(50))
	}
	// Swap-removal inside the archetype table shuffles storage order
	w.RemoveAgent(2)
	w.RemoveAgent(5)

	refs := w.AgentRefs()
	require.Len(t, refs, 8)
	for i := 1; i < len(refs); i++ {
		assert.Less(t, refs[i-1].ID, refs[i].ID)
	}
}

func TestBurrowLookupZeroIsMissing(t *testing.T) {
	w := New()
	_, _, ok := w.Burrow(0)
	assert.False(t, ok)
}

func populated(t *testing.T) *World {
	t.Helper()
	w := New()
	a1 := w.AddAgent(components.Position{X: 10, Z: 12}, components.Velocity{X: 1}, testAgent(40))
	a2 := w.AddAgent(components.Position{X: 20, Z: 22}, components.Velocity{}, testAgent(60))
	bid := w.AddBurrow(a1, 11, 13, 1.2)

	_, _, a, _ := w.Agent(a1)
	a.OwnedBurrowID = bid
	a.Affinity[a2] = 35
	a.Target = components.Point{X: 3, Z: 4}
	a.HasTarget = true
	a.Trail.Push(components.Position{X: 9, Z: 9})

	w.AddFood(1, 2, 20)
	w.AddFood(3, 4, 25)
	w.AddParticle(components.Position{Y: 1}, components.Velocity{Y: 2}, components.Particle{Kind: components.ParticleHeart, Life: 1, MaxLife: 1, Scale: 1})
	return w
}

func TestExportImportRoundTrip(t *testing.T) {
	w := populated(t)
	s := w.Export()

	require.Len(t, s.Agents, 2)
	require.Len(t, s.Food, 2)
	require.Len(t, s.Burrows, 1)
	require.Len(t, s.Particles, 1)

	restored := New()
	require.NoError(t, restored.Import(s))

	assert.Equal(t, w.NextIDs(), restored.NextIDs())
	assert.Equal(t, s, restored.Export())

	_, _, a, ok := restored.Agent(1)
	require.True(t, ok)
	assert.Equal(t, uint8(0), a.Trail.Count, "trail is regenerated empty")
	assert.Equal(t, testGenome().MaxEnergy(), a.MaxEnergy, "max energy is derived")
	assert.True(t, a.HasTarget)
	assert.Equal(t, 35.0, a.Affinity[2])

	// New ids continue after the restored counters
	assert.Equal(t, uint32(3), restored.AddAgent(components.Position{}, components.Velocity{}, testAgent(10)))
}

func TestImportRejectsCorruptState(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *State)
	}{
		{"duplicate agent id", func(s *State) { s.Agents[1].ID = s.Agents[0].ID }},
		{"id beyond counter", func(s *State) { s.Food[0].ID = s.NextIDs.Food }},
		{"zero energy", func(s *State) { s.Agents[0].Energy = 0 }},
		{"energy above max", func(s *State) { s.Agents[0].Energy = 1000 }},
		{"nan position", func(s *State) { s.Agents[0].Position.X = math.NaN() }},
		{"genome out of range", func(s *State) { s.Agents[0].Genome.Speed = 9 }},
		{"stale owned burrow", func(s *State) { s.Agents[0].OwnedBurrowID = 99 }},
		{"stale current burrow", func(s *State) { s.Agents[1].CurrentBurrowID = 42 }},
		{"dig progress above one", func(s *State) { s.Burrows[0].DigProgress = 1.5 }},
		{"unknown occupant", func(s *State) { s.Burrows[0].Occupants = []uint32{77} }},
		{"bad version", func(s *State) { s.Version = 99 }},
		{"bad time of day", func(s *State) { s.TimeOfDay = 25 }},
		{"unknown state", func(s *State) { s.Agents[0].State = components.State(200) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := populated(t)
			before := live.Export()

			bad := populated(t).Export()
			tt.mutate(&bad)

			err := live.Import(bad)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCorruptState))
			assert.Equal(t, before, live.Export(), "live state must be untouched")
		})
	}
}
