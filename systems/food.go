package systems

import (
	"math/rand"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/config"
	"github.com/pthm-cable/warren/world"
)

// FoodSystem spawns food clusters and enforces the global food cap.
type FoodSystem struct {
	cfg   *config.Config
	world *world.World
	rng   *rand.Rand

	burrows *SpatialGrid
	scratch []Entry
	spawned int // items placed by the last Update
}

// NewFoodSystem creates a new food system.
func NewFoodSystem(cfg *config.Config, w *world.World, rng *rand.Rand) *FoodSystem {
	return &FoodSystem{
		cfg:     cfg,
		world:   w,
		rng:     rng,
		burrows: NewSpatialGrid(cfg.Derived.BurrowCellSize),
		scratch: make([]Entry, 0, 16),
	}
}

// Seed places the initial food items.
func (s *FoodSystem) Seed(params config.Params) {
	s.indexBurrows()
	for i := 0; i < s.cfg.Food.Initial; i++ {
		p := randomPoint(s.cfg, s.rng)
		if s.clearOfBurrows(p) {
			s.world.AddFood(p.X, p.Z, params.FoodValue)
		}
	}
	s.evictOldest()
}

// Update spawns rate*dt clusters on average: the whole part always, the
// fractional part with matching probability.
func (s *FoodSystem) Update(dt float64, params config.Params) {
	s.spawned = 0
	expected := params.FoodSpawnRate * dt
	clusters := int(expected)
	if s.rng.Float64() < expected-float64(clusters) {
		clusters++
	}
	if clusters == 0 {
		return
	}

	s.indexBurrows()
	for i := 0; i < clusters; i++ {
		s.spawnCluster(params.FoodValue)
	}
	s.evictOldest()
}

// Spawned returns the number of items placed by the last Update.
func (s *FoodSystem) Spawned() int {
	return s.spawned
}

// spawnCluster places 1-3 items around a random margin-respecting point.
// Items too close to a burrow are dropped.
func (s *FoodSystem) spawnCluster(value float64) {
	center := randomPoint(s.cfg, s.rng)
	n := 1 + s.rng.Intn(3)
	m := s.cfg.World.SpawnMargin
	for i := 0; i < n; i++ {
		dir := randomDir(s.rng)
		r := s.rng.Float64() * s.cfg.Food.ClusterRadius
		p := components.Position{
			X: clampFloat(center.X+dir.X*r, m, s.cfg.World.Width-m),
			Z: clampFloat(center.Z+dir.Z*r, m, s.cfg.World.Depth-m),
		}
		if !s.clearOfBurrows(p) {
			continue
		}
		s.world.AddFood(p.X, p.Z, value)
		s.spawned++
	}
}

func (s *FoodSystem) indexBurrows() {
	s.burrows.Clear()
	query := s.world.BurrowFilter().Query()
	for query.Next() {
		pos, b := query.Get()
		s.burrows.Insert(Entry{ID: b.ID, Entity: query.Entity(), X: pos.X, Z: pos.Z})
	}
}

func (s *FoodSystem) clearOfBurrows(p components.Position) bool {
	clearance := s.cfg.Food.BurrowClearance
	var blocked bool
	_, _, blocked, s.scratch = s.burrows.Nearest(s.scratch, p.X, p.Z, clearance, nil)
	return !blocked
}

// evictOldest removes the lowest-id food items above the cap.
func (s *FoodSystem) evictOldest() {
	excess := s.world.FoodCount() - s.cfg.Food.Max
	if excess <= 0 {
		return
	}
	for _, id := range s.world.FoodIDs()[:excess] {
		s.world.RemoveFood(id)
	}
}
