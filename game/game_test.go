package game

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/warren/config"
	"github.com/pthm-cable/warren/telemetry"
	"github.com/pthm-cable/warren/world"
)

func testConfig() *config.Config {
	cfg := config.Default().Clone()
	cfg.Population.Initial = 30
	cfg.Population.Max = 60
	cfg.Telemetry.StatsWindow = 5
	return cfg
}

func run(g *Game, steps int) {
	params := g.Config().Params
	for i := 0; i < steps; i++ {
		g.Advance(0.1, params)
	}
}

func TestSameSeedIsDeterministic(t *testing.T) {
	cfg := testConfig()
	a := New(cfg, 7)
	b := New(cfg, 7)
	run(a, 400)
	run(b, 400)

	assert.Equal(t, a.Export(), b.Export())
}

func TestDifferentSeedsDiverge(t *testing.T) {
	cfg := testConfig()
	a := New(cfg, 1)
	b := New(cfg, 2)

	sa, sb := a.Export(), b.Export()
	require.NotEmpty(t, sa.Agents)
	assert.NotEqual(t, sa.Agents[0].Position, sb.Agents[0].Position)
}

func TestEnergyBoundsAndPopulationCap(t *testing.T) {
	cfg := testConfig()
	cfg.Params.ReproductionThreshold = 40 // breed readily
	g := New(cfg, 11)

	// 150 simulated seconds cross into the night
	for i := 0; i < 1500; i++ {
		g.Advance(0.1, cfg.Params)

		if g.Population() > cfg.Population.Max {
			t.Fatalf("tick %d: population %d exceeds cap %d", g.Tick(), g.Population(), cfg.Population.Max)
		}
		if i%50 != 0 {
			continue
		}
		for _, a := range g.Snapshot().Agents {
			if !(a.Energy > 0 && a.Energy <= a.MaxEnergy) || math.IsNaN(a.Energy) {
				t.Fatalf("tick %d: agent %d energy %v outside (0, %v]", g.Tick(), a.ID, a.Energy, a.MaxEnergy)
			}
		}
	}
}

func TestAdvanceClampsAndSubsteps(t *testing.T) {
	cfg := testConfig()
	params := cfg.Params

	tests := []struct {
		name  string
		dt    float64
		speed float64
		ticks uint64
	}{
		{"single step", 0.1, 1, 1},
		{"dt clamped to max step", 5, 1, 1},
		{"negative dt", -1, 1, 0},
		{"nan dt", math.NaN(), 1, 0},
		{"speed multiplies steps", 0.1, 3, 3},
		{"zero speed", 0.1, 0, 0},
		{"small dt one short step", 0.02, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(cfg, 3)
			p := params
			p.SimulationSpeed = tt.speed
			g.Advance(tt.dt, p)
			assert.Equal(t, tt.ticks, g.Tick())
		})
	}
}

func TestPauseFreezesEverything(t *testing.T) {
	g := New(testConfig(), 5)
	run(g, 10)
	before := g.Export()

	g.SetPaused(true)
	assert.True(t, g.Paused())
	run(g, 50)
	assert.Equal(t, before, g.Export())
	assert.True(t, g.Snapshot().Paused)

	g.SetPaused(false)
	run(g, 1)
	assert.Equal(t, before.Tick+1, g.Tick())
}

func TestClockAdvancesAndWraps(t *testing.T) {
	cfg := testConfig()
	g := New(cfg, 1)
	assert.InDelta(t, cfg.Params.TimeOfDay, g.TimeOfDay(), 1e-12)

	g.Advance(0.1, cfg.Params)
	want := cfg.Params.TimeOfDay + 0.1*cfg.Derived.HoursPerSecond
	assert.InDelta(t, want, g.TimeOfDay(), 1e-12)

	p := cfg.Params
	p.TimeOfDay = 23.999
	g.Reset(p)
	run(g, 5)
	assert.GreaterOrEqual(t, g.TimeOfDay(), 0.0)
	assert.Less(t, g.TimeOfDay(), 1.0)
	assert.True(t, g.IsNight())
}

func TestResetRestoresInitialState(t *testing.T) {
	cfg := testConfig()
	g := New(cfg, 9)
	initial := g.Export()

	run(g, 200)
	g.Reset(cfg.Params)

	assert.Equal(t, initial, g.Export())
	assert.Equal(t, uint64(0), g.Tick())
	assert.Zero(t, g.Totals().Births)
}

func TestImportContinuesIdentically(t *testing.T) {
	cfg := testConfig()
	a := New(cfg, 21)
	run(a, 100)
	s := a.Export()

	b := New(cfg, 999)
	require.NoError(t, b.Import(s))
	assert.Equal(t, s.Tick, b.Tick())

	run(a, 200)
	run(b, 200)
	assert.Equal(t, a.Export(), b.Export())
}

func TestImportFailureLeavesStateUntouched(t *testing.T) {
	cfg := testConfig()
	g := New(cfg, 4)
	run(g, 50)
	before := g.Export()

	tests := []struct {
		name   string
		mutate func(s *world.State)
	}{
		{"negative energy", func(s *world.State) { s.Agents[0].Energy = -1 }},
		{"bad rng bytes", func(s *world.State) { s.RNG = []byte("nope") }},
		{"clock out of range", func(s *world.State) { s.TimeOfDay = 30 }},
		{"duplicate agent id", func(s *world.State) { s.Agents[1].ID = s.Agents[0].ID }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := g.Export()
			tt.mutate(&bad)

			err := g.Import(bad)
			require.Error(t, err)
			assert.True(t, errors.Is(err, world.ErrCorruptState), "got %v", err)
			assert.Equal(t, before, g.Export())
		})
	}
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	cfg := testConfig()
	g := New(cfg, 13)
	run(g, 80)
	s := g.Export()

	path := filepath.Join(t.TempDir(), "warren.json.zst")
	require.NoError(t, telemetry.SaveSnapshot(path, &s))
	loaded, err := telemetry.LoadSnapshot(path)
	require.NoError(t, err)

	h := New(cfg, 0)
	require.NoError(t, h.Import(*loaded))
	assert.Equal(t, g.Population(), h.Population())
	assert.Equal(t, g.Tick(), h.Tick())
}

func TestSnapshotIsACopy(t *testing.T) {
	g := New(testConfig(), 8)
	run(g, 30)
	before := g.Export()

	v := g.Snapshot()
	require.NotEmpty(t, v.Agents)
	require.Len(t, v.Agents, len(before.Agents))

	progress := make(map[uint32]float64)
	for _, b := range before.Burrows {
		progress[b.ID] = b.DigProgress
	}
	hopping := false
	for i, rec := range before.Agents {
		av := v.Agents[i]
		require.Equal(t, rec.ID, av.ID)
		assert.Equal(t, rec.HopTimer, av.HopTimer, "agent %d hop timer", rec.ID)
		assert.Equal(t, rec.DigTimer, av.DigTimer, "agent %d dig timer", rec.ID)
		assert.Equal(t, progress[rec.OwnedBurrowID], av.DigProgress, "agent %d dig progress", rec.ID)
		assert.Equal(t, rec.Target != nil, av.HasTarget, "agent %d target flag", rec.ID)
		if rec.Target != nil {
			assert.Equal(t, *rec.Target, av.Target)
		}
		if av.HopTimer > 0 {
			hopping = true
		}
	}
	assert.True(t, hopping, "some agent should be mid-hop")

	v.Agents[0].Energy = -100
	v.Agents[0].Position.X = 1e6
	for i := range v.Burrows {
		v.Burrows[i].Occupants = append(v.Burrows[i].Occupants, 12345)
	}

	assert.Equal(t, before, g.Export())
}

func TestStatsWindowFlushes(t *testing.T) {
	cfg := testConfig()
	var windows []telemetry.WindowStats
	g, err := NewWithOptions(cfg, Options{
		Seed:          2,
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	require.NoError(t, err)
	defer g.Close()

	run(g, 120) // 12 simulated seconds, 5 second windows
	require.Len(t, windows, 2)
	assert.Equal(t, windows[1], g.Stats())
	assert.Greater(t, windows[1].WindowEndTick, windows[0].WindowEndTick)
	assert.InDelta(t, 10.0, windows[1].SimTimeSec, 0.25)
}

func TestOutputDirReceivesFiles(t *testing.T) {
	dir := t.TempDir()
	g, err := NewWithOptions(testConfig(), Options{Seed: 1, OutputDir: dir})
	require.NoError(t, err)
	run(g, 60)
	require.NoError(t, g.Close())

	for _, name := range []string{"telemetry.csv", "perf.csv", "config.yaml"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestInspect(t *testing.T) {
	g := New(testConfig(), 1)
	v := g.Snapshot()
	require.NotEmpty(t, v.Agents)

	fields, ok := g.Inspect(v.Agents[0].ID)
	require.True(t, ok)
	assert.NotEmpty(t, fields)

	_, ok = g.Inspect(0)
	assert.False(t, ok)
}
