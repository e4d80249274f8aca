package systems

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpatialGrid_QueryIsSupersetOfBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	grid := NewSpatialGrid(12)

	entries := make([]Entry, 0, 500)
	for i := 0; i < 500; i++ {
		e := Entry{ID: uint32(i + 1), X: rng.Float64() * 120, Z: rng.Float64() * 120}
		entries = append(entries, e)
		grid.Insert(e)
	}
	require.Equal(t, 500, grid.Len())

	var dst []Entry
	for q := 0; q < 50; q++ {
		x, z := rng.Float64()*120, rng.Float64()*120
		radius := rng.Float64() * 30
		dst = grid.QueryInto(dst[:0], x, z, radius)

		got := make(map[uint32]bool, len(dst))
		for _, e := range dst {
			got[e.ID] = true
		}
		for _, e := range entries {
			dx, dz := e.X-x, e.Z-z
			if dx*dx+dz*dz <= radius*radius {
				assert.True(t, got[e.ID], "query %d missed entry %d", q, e.ID)
			}
		}
	}
}

func TestSpatialGrid_NearestPrefersLowerIDOnTie(t *testing.T) {
	grid := NewSpatialGrid(5)
	// Insert the higher id first so order cannot decide
	grid.Insert(Entry{ID: 9, X: 12, Z: 10})
	grid.Insert(Entry{ID: 4, X: 8, Z: 10})
	grid.Insert(Entry{ID: 7, X: 10, Z: 12})

	e, d, ok, _ := grid.Nearest(nil, 10, 10, 5, nil)
	require.True(t, ok)
	assert.Equal(t, uint32(4), e.ID)
	assert.InDelta(t, 2.0, d, 1e-12)
}

func TestSpatialGrid_NearestRadiusIsInclusive(t *testing.T) {
	grid := NewSpatialGrid(4)
	grid.Insert(Entry{ID: 1, X: 3, Z: 0})

	_, _, ok, _ := grid.Nearest(nil, 0, 0, 3, nil)
	assert.True(t, ok, "entry exactly at the radius should be found")

	_, _, ok, _ = grid.Nearest(nil, 0, 0, 2.999, nil)
	assert.False(t, ok)
}

func TestSpatialGrid_NearestHonorsAccept(t *testing.T) {
	grid := NewSpatialGrid(4)
	grid.Insert(Entry{ID: 1, X: 1, Z: 0})
	grid.Insert(Entry{ID: 2, X: 2, Z: 0})

	e, _, ok, _ := grid.Nearest(nil, 0, 0, 5, func(e Entry) bool { return e.ID != 1 })
	require.True(t, ok)
	assert.Equal(t, uint32(2), e.ID)
}

func TestSpatialGrid_NegativeCoordinates(t *testing.T) {
	grid := NewSpatialGrid(4)
	grid.Insert(Entry{ID: 1, X: -0.5, Z: -0.5})

	e, _, ok, _ := grid.Nearest(nil, 0.5, 0.5, 2, nil)
	require.True(t, ok)
	assert.Equal(t, uint32(1), e.ID)
}

func TestSpatialGrid_ClearReusesBuckets(t *testing.T) {
	grid := NewSpatialGrid(4)
	for i := 0; i < 20; i++ {
		grid.Insert(Entry{ID: uint32(i + 1), X: float64(i), Z: 0})
	}
	grid.Clear()
	assert.Equal(t, 0, grid.Len())

	_, _, ok, _ := grid.Nearest(nil, 5, 0, 10, nil)
	assert.False(t, ok, "cleared grid must be empty")

	grid.Insert(Entry{ID: 99, X: 5, Z: 0})
	e, _, ok, _ := grid.Nearest(nil, 5, 0, 1, nil)
	require.True(t, ok)
	assert.Equal(t, uint32(99), e.ID)
	assert.Equal(t, 1, grid.Len())
}
