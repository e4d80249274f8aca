// Package game drives the warren simulation: it owns the world, the clock
// and the systems, and advances them in a fixed order.
package game

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/pthm-cable/warren/config"
	"github.com/pthm-cable/warren/systems"
	"github.com/pthm-cable/warren/telemetry"
	"github.com/pthm-cable/warren/world"
)

// remainderEpsilon is the leftover dt below which sub-stepping stops.
const remainderEpsilon = 1e-9

// Options configures a Game beyond its config.
type Options struct {
	Seed     int64
	LogStats bool // log window stats via slog

	// StatsWindowSec overrides the configured stats window when > 0.
	StatsWindowSec float64

	// OutputDir receives telemetry.csv, perf.csv, bookmarks.csv and
	// config.yaml. Empty disables file output.
	OutputDir string

	// SnapshotDir receives a snapshot for every bookmark. Empty falls back
	// to OutputDir/snapshots when output is enabled.
	SnapshotDir string

	// StatsCallback is called on every window flush.
	StatsCallback func(stats telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg  *config.Config
	opts Options

	world *world.World
	src   *pcgSource
	rng   *rand.Rand

	particles *systems.ParticleSystem
	food      *systems.FoodSystem
	behavior  *systems.BehaviorSystem
	burrows   *systems.BurrowSystem

	// Clock
	tick      uint64
	elapsed   float64 // simulated seconds since reset
	timeOfDay float64 // hour, [0,24)
	paused    bool

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	sample           telemetry.Sample
	lastStats        telemetry.WindowStats
}

// New creates a game with default options and the given seed.
// The world is populated from cfg.Params.
func New(cfg *config.Config, seed int64) *Game {
	g, err := NewWithOptions(cfg, Options{Seed: seed})
	if err != nil {
		// Only output setup can fail and it is disabled here
		panic(err)
	}
	return g
}

// NewWithOptions creates a game. It fails only when the output directory
// cannot be prepared.
func NewWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	windowSec := opts.StatsWindowSec
	if windowSec <= 0 {
		windowSec = cfg.Telemetry.StatsWindow
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("output: %w", err)
	}

	src := newPCGSource(opts.Seed)
	g := &Game{
		cfg:              cfg,
		opts:             opts,
		world:            world.New(),
		src:              src,
		rng:              rand.New(src),
		collector:        telemetry.NewCollector(windowSec),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		outputManager:    om,
	}
	g.particles = systems.NewParticleSystem(cfg, g.world, g.rng)
	g.food = systems.NewFoodSystem(cfg, g.world, g.rng)
	g.behavior = systems.NewBehaviorSystem(cfg, g.world, g.rng, g.particles, g.collector)
	g.burrows = systems.NewBurrowSystem(cfg, g.world)

	g.Reset(cfg.Params)
	return g, nil
}

// Reset discards the world and starts over from the game's seed.
// The clock starts at params.TimeOfDay.
func (g *Game) Reset(params config.Params) {
	params = params.Sanitize()

	g.src.Seed(g.opts.Seed)
	g.world.Reset()
	g.tick = 0
	g.elapsed = 0
	g.timeOfDay = params.TimeOfDay

	systems.SeedPopulation(g.cfg, g.world, g.rng)
	g.food.Seed(params)

	g.collector.Reset(0)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)
	g.lastStats = telemetry.WindowStats{}

	slog.Debug("game_reset",
		"seed", g.opts.Seed,
		"population", g.world.AgentCount(),
		"food", g.world.FoodCount(),
	)
}

// Advance moves the simulation forward by dt seconds of wall time.
// dt is clamped to [0, MaxStep], scaled by params.SimulationSpeed and then
// split into steps no longer than MaxStep. Advance does nothing while paused.
func (g *Game) Advance(dt float64, params config.Params) {
	if g.paused {
		return
	}
	params = params.Sanitize()

	maxStep := g.cfg.Clock.MaxStep
	if math.IsNaN(dt) || dt < 0 {
		dt = 0
	}
	if dt > maxStep {
		dt = maxStep
	}

	remaining := dt * params.SimulationSpeed
	for remaining > remainderEpsilon {
		step := math.Min(remaining, maxStep)
		g.step(step, params)
		remaining -= step
	}
}

// step runs every system once in fixed order.
func (g *Game) step(dt float64, params config.Params) {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseClock)
	g.timeOfDay = math.Mod(g.timeOfDay+dt*g.cfg.Derived.HoursPerSecond, 24)
	night := g.cfg.IsNight(g.timeOfDay)

	g.perfCollector.StartPhase(telemetry.PhaseFood)
	g.food.Update(dt, params)

	g.perfCollector.StartPhase(telemetry.PhaseBehavior)
	g.behavior.Update(systems.Env{Dt: dt, Night: night, Params: params})

	g.perfCollector.StartPhase(telemetry.PhaseBurrows)
	g.burrows.Update(dt)

	g.perfCollector.StartPhase(telemetry.PhaseParticles)
	g.particles.Update(dt)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.tick++
	g.elapsed += dt
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// SetPaused pauses or resumes the simulation.
func (g *Game) SetPaused(paused bool) {
	g.paused = paused
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// TimeOfDay returns the current hour in [0,24).
func (g *Game) TimeOfDay() float64 {
	return g.timeOfDay
}

// IsNight reports whether the current hour is within the night window.
func (g *Game) IsNight() bool {
	return g.cfg.IsNight(g.timeOfDay)
}

// Tick returns the number of steps run since the last reset.
func (g *Game) Tick() uint64 {
	return g.tick
}

// Elapsed returns simulated seconds since the last reset.
func (g *Game) Elapsed() float64 {
	return g.elapsed
}

// Population returns the number of living agents.
func (g *Game) Population() int {
	return g.world.AgentCount()
}

// Config returns the game's configuration.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Stats returns the most recent completed stats window.
func (g *Game) Stats() telemetry.WindowStats {
	return g.lastStats
}

// Totals returns event counts since the last reset.
func (g *Game) Totals() telemetry.EventCounts {
	return g.collector.Totals()
}

// Perf returns step timing over the recent window.
func (g *Game) Perf() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// Close flushes and closes any output files.
func (g *Game) Close() error {
	return g.outputManager.Close()
}
