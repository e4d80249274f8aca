package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/config"
	"github.com/pthm-cable/warren/genetics"
	"github.com/pthm-cable/warren/world"
)

// countingRecorder tallies events for assertions.
type countingRecorder struct {
	births, deaths, matings, eaten, thefts, fights, dug, aborted int

	causes map[components.DeathCause]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{causes: make(map[components.DeathCause]int)}
}

func (r *countingRecorder) RecordBirth(int) { r.births++ }
func (r *countingRecorder) RecordDeath(c components.DeathCause, _ float64) {
	r.deaths++
	r.causes[c]++
}
func (r *countingRecorder) RecordMating(int)        { r.matings++ }
func (r *countingRecorder) RecordFoodEaten(float64) { r.eaten++ }
func (r *countingRecorder) RecordTheft(float64)     { r.thefts++ }
func (r *countingRecorder) RecordFight()            { r.fights++ }
func (r *countingRecorder) RecordBurrowDug()        { r.dug++ }
func (r *countingRecorder) RecordDigAborted()       { r.aborted++ }

type harness struct {
	cfg       *config.Config
	w         *world.World
	rng       *rand.Rand
	rec       *countingRecorder
	particles *ParticleSystem
	behavior  *BehaviorSystem
	food      *FoodSystem
	burrows   *BurrowSystem
}

func newHarness(t *testing.T, mutate func(cfg *config.Config)) *harness {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	w := world.New()
	rng := rand.New(rand.NewSource(42))
	rec := newCountingRecorder()
	particles := NewParticleSystem(cfg, w, rng)
	return &harness{
		cfg:       cfg,
		w:         w,
		rng:       rng,
		rec:       rec,
		particles: particles,
		behavior:  NewBehaviorSystem(cfg, w, rng, particles, rec),
		food:      NewFoodSystem(cfg, w, rng),
		burrows:   NewBurrowSystem(cfg, w),
	}
}

func (h *harness) day(dt float64) Env {
	return Env{Dt: dt, Params: h.cfg.Params}
}

func (h *harness) night(dt float64) Env {
	return Env{Dt: dt, Night: true, Params: h.cfg.Params}
}

func (h *harness) spawn(x, z float64, g genetics.Genome, energy float64) uint32 {
	return SpawnAgent(h.w, h.rng, components.Position{X: x, Z: z}, g, energy, 0, [2]uint32{})
}

func (h *harness) agent(t *testing.T, id uint32) (*components.Position, *components.Agent) {
	t.Helper()
	pos, _, a, ok := h.w.Agent(id)
	if !ok {
		t.Fatalf("agent %d not found", id)
	}
	return pos, a
}

// plainGenome has efficiency 1 and max energy 100.
func plainGenome() genetics.Genome {
	return genetics.Genome{
		Selfishness:  0.2,
		Speed:        1,
		Size:         1,
		MutationRate: 0.05,
		Hue:          0.5,
		Energy:       0.5,
		Fertility:    0.5,
	}
}

// freeLiving removes every cost so energy changes come only from the
// behavior under test.
func freeLiving(cfg *config.Config) {
	cfg.Params.MetabolicCost = 0
}
