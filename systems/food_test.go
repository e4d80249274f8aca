package systems

import (
	"testing"

	"github.com/pthm-cable/warren/config"
)

func TestFood_SeedPlacesInitialItems(t *testing.T) {
	h := newHarness(t, nil)
	h.food.Seed(h.cfg.Params)
	if got := h.w.FoodCount(); got != h.cfg.Food.Initial {
		t.Errorf("food count = %d, want %d", got, h.cfg.Food.Initial)
	}
}

func TestFood_UpdateSpawnsWholeClusters(t *testing.T) {
	h := newHarness(t, nil)
	params := h.cfg.Params
	params.FoodSpawnRate = 10

	h.food.Update(1, params)

	spawned := h.food.Spawned()
	// Each cluster holds one to three items
	if spawned < 10 || spawned > 30 {
		t.Fatalf("spawned = %d, want 10..30 for 10 clusters", spawned)
	}
	if h.w.FoodCount() != spawned {
		t.Errorf("food count = %d, want %d", h.w.FoodCount(), spawned)
	}

	m := h.cfg.World.SpawnMargin
	q := h.w.FoodFilter().Query()
	for q.Next() {
		pos, f := q.Get()
		if pos.X < m || pos.X > h.cfg.World.Width-m || pos.Z < m || pos.Z > h.cfg.World.Depth-m {
			t.Errorf("food %d at (%v, %v) outside spawn margin", f.ID, pos.X, pos.Z)
		}
		if f.Value != params.FoodValue {
			t.Errorf("food %d value = %v, want %v", f.ID, f.Value, params.FoodValue)
		}
	}
}

func TestFood_ZeroRateSpawnsNothing(t *testing.T) {
	h := newHarness(t, nil)
	params := h.cfg.Params
	params.FoodSpawnRate = 0

	for i := 0; i < 100; i++ {
		h.food.Update(0.1, params)
	}
	if h.w.FoodCount() != 0 {
		t.Errorf("food count = %d, want 0", h.w.FoodCount())
	}
}

func TestFood_CapEvictsOldest(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) {
		cfg.Food.Max = 5
	})
	for i := 0; i < 5; i++ {
		h.w.AddFood(60, 60, 20)
	}
	params := h.cfg.Params
	params.FoodSpawnRate = 3

	h.food.Update(1, params)

	spawned := h.food.Spawned()
	if h.w.FoodCount() != 5 {
		t.Fatalf("food count = %d, want cap 5", h.w.FoodCount())
	}
	ids := h.w.FoodIDs()
	if want := uint32(spawned + 1); ids[0] != want {
		t.Errorf("oldest surviving id = %d, want %d (ids %v)", ids[0], want, ids)
	}
}

func TestFood_BurrowClearanceBlocksSpawns(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) {
		cfg.Food.BurrowClearance = 200
	})
	h.w.AddBurrow(1, 60, 60, 1)
	params := h.cfg.Params
	params.FoodSpawnRate = 20

	h.food.Seed(params)
	h.food.Update(1, params)
	if h.w.FoodCount() != 0 {
		t.Errorf("food spawned inside burrow clearance: %d items", h.w.FoodCount())
	}
}
