package systems

import (
	"github.com/pthm-cable/warren/config"
	"github.com/pthm-cable/warren/world"
)

// BurrowSystem animates burrow growth from being dug to complete.
// Growth is cosmetic and independent of the owner's dig timer.
type BurrowSystem struct {
	cfg   *config.Config
	world *world.World
}

// NewBurrowSystem creates a new burrow system.
func NewBurrowSystem(cfg *config.Config, w *world.World) *BurrowSystem {
	return &BurrowSystem{cfg: cfg, world: w}
}

// Update advances growth and drops occupants that are no longer sheltered here.
func (s *BurrowSystem) Update(dt float64) {
	rate := s.cfg.Burrow.GrowthRate
	query := s.world.BurrowFilter().Query()
	for query.Next() {
		_, b := query.Get()

		if b.DigProgress < 1 {
			b.DigProgress += rate * dt
			if b.DigProgress >= 1 {
				b.DigProgress = 1
				b.Complete = true
			}
		}

		kept := b.Occupants[:0]
		for _, id := range b.Occupants {
			if _, _, a, ok := s.world.Agent(id); ok && a.CurrentBurrowID == b.ID {
				kept = append(kept, id)
			}
		}
		b.Occupants = kept
	}
}
