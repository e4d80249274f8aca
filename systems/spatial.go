// Package systems provides the per-tick simulation systems.
package systems

import (
	"math"

	"github.com/kamstrup/intmap"
	"github.com/mlange-42/ark/ecs"
)

// Entry is an entity reference stored in a SpatialGrid.
type Entry struct {
	ID     uint32
	Entity ecs.Entity
	X, Z   float64
}

// SpatialGrid is a uniform hash grid over the ground plane. Cells are keyed
// by packed integer coordinates so the plane is unbounded and lookups never
// allocate.
type SpatialGrid struct {
	cellSize float64
	cells    *intmap.Map[uint64, int] // packed cell -> bucket index
	buckets  [][]Entry
	used     int
	count    int
}

// NewSpatialGrid creates an empty grid.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if cellSize <= 0 || math.IsNaN(cellSize) {
		cellSize = 1
	}
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    intmap.New[uint64, int](128),
	}
}

// CellSize returns the grid cell edge length.
func (g *SpatialGrid) CellSize() float64 {
	return g.cellSize
}

// Len returns the number of inserted entries.
func (g *SpatialGrid) Len() int {
	return g.count
}

// Clear removes all entries. Bucket storage is kept for reuse.
func (g *SpatialGrid) Clear() {
	g.cells.Clear()
	for i := 0; i < g.used; i++ {
		g.buckets[i] = g.buckets[i][:0]
	}
	g.used = 0
	g.count = 0
}

// Insert adds an entry at its position.
func (g *SpatialGrid) Insert(e Entry) {
	key := cellKey(g.cell(e.X), g.cell(e.Z))
	idx, ok := g.cells.Get(key)
	if !ok {
		idx = g.used
		g.used++
		if idx == len(g.buckets) {
			g.buckets = append(g.buckets, make([]Entry, 0, 8))
		}
		g.cells.Put(key, idx)
	}
	g.buckets[idx] = append(g.buckets[idx], e)
	g.count++
}

// QueryInto appends every entry in the cells overlapping the square around
// (x, z) with half-size radius. The result is a superset of the entries
// within radius; callers must check exact distance. Reuse dst across calls
// to avoid allocations.
func (g *SpatialGrid) QueryInto(dst []Entry, x, z, radius float64) []Entry {
	if radius < 0 || math.IsNaN(radius) {
		return dst
	}
	minX, maxX := g.cell(x-radius), g.cell(x+radius)
	minZ, maxZ := g.cell(z-radius), g.cell(z+radius)
	for cx := minX; cx <= maxX; cx++ {
		for cz := minZ; cz <= maxZ; cz++ {
			if idx, ok := g.cells.Get(cellKey(cx, cz)); ok {
				dst = append(dst, g.buckets[idx]...)
			}
		}
	}
	return dst
}

// Nearest returns the closest accepted entry within radius.
// Equal distances resolve to the lower id so results do not depend on
// insertion order.
func (g *SpatialGrid) Nearest(scratch []Entry, x, z, radius float64, accept func(Entry) bool) (Entry, float64, bool, []Entry) {
	scratch = g.QueryInto(scratch[:0], x, z, radius)

	var best Entry
	bestSq := radius * radius
	found := false
	for _, e := range scratch {
		dx := e.X - x
		dz := e.Z - z
		d := dx*dx + dz*dz
		if d > bestSq || (found && d == bestSq && e.ID > best.ID) {
			continue
		}
		if accept != nil && !accept(e) {
			continue
		}
		best, bestSq, found = e, d, true
	}
	if !found {
		return Entry{}, 0, false, scratch
	}
	return best, math.Sqrt(bestSq), true, scratch
}

func (g *SpatialGrid) cell(v float64) int32 {
	return int32(math.Floor(v / g.cellSize))
}

// cellKey packs signed cell coordinates into one integer key.
func cellKey(cx, cz int32) uint64 {
	return uint64(uint32(cx))<<32 | uint64(uint32(cz))
}
