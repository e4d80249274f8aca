package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one stage of the simulation step.
type Phase int

const (
	PhaseClock Phase = iota
	PhaseFood
	PhaseBehavior
	PhaseBurrows
	PhaseParticles
	PhaseTelemetry
	numPhases

	noPhase Phase = -1
)

var phaseNames = [numPhases]string{
	"clock", "food", "behavior", "burrows", "particles", "telemetry",
}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       [numPhases]time.Duration
}

// PerfCollector tracks step timings over a rolling window of ticks.
type PerfCollector struct {
	windowSize  int
	samples     []PerfSample
	writeIndex  int
	sampleCount int

	current    PerfSample
	tickStart  time.Time
	phaseStart time.Time
	lastPhase  Phase

	now func() time.Time
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of ticks to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]PerfSample, windowSize),
		lastPhase:  noPhase,
		now:        time.Now,
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.current = PerfSample{}
	p.lastPhase = noPhase
}

// StartPhase ends the running phase, if any, and begins timing the next.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := p.now()
	if p.lastPhase != noPhase {
		p.current.Phases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := p.now()
	if p.lastPhase != noPhase {
		p.current.Phases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.current.TickDuration = now.Sub(p.tickStart)
	p.lastPhase = noPhase

	p.samples[p.writeIndex] = p.current
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// Ticks returns how many samples the window currently holds.
func (p *PerfCollector) Ticks() int {
	return p.sampleCount
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Phase breakdown
	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64

	TicksPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{}
	}

	var total, minTick, maxTick time.Duration
	var phaseSum [numPhases]time.Duration
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.TickDuration
		if i == 0 || s.TickDuration < minTick {
			minTick = s.TickDuration
		}
		if s.TickDuration > maxTick {
			maxTick = s.TickDuration
		}
		for ph, d := range s.Phases {
			phaseSum[ph] += d
		}
	}

	n := time.Duration(p.sampleCount)
	st := PerfStats{
		AvgTickDuration: total / n,
		MinTickDuration: minTick,
		MaxTickDuration: maxTick,
	}
	for ph := range phaseSum {
		st.PhaseAvg[ph] = phaseSum[ph] / n
		if st.AvgTickDuration > 0 {
			st.PhasePct[ph] = float64(st.PhaseAvg[ph]) / float64(st.AvgTickDuration) * 100
		}
	}
	if st.AvgTickDuration > 0 {
		st.TicksPerSecond = float64(time.Second) / float64(st.AvgTickDuration)
	}
	return st
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, Phase(ph).String()+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for ph, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    uint64  `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	ClockPct     float64 `csv:"clock_pct"`
	FoodPct      float64 `csv:"food_pct"`
	BehaviorPct  float64 `csv:"behavior_pct"`
	BurrowsPct   float64 `csv:"burrows_pct"`
	ParticlesPct float64 `csv:"particles_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		ClockPct:     s.PhasePct[PhaseClock],
		FoodPct:      s.PhasePct[PhaseFood],
		BehaviorPct:  s.PhasePct[PhaseBehavior],
		BurrowsPct:   s.PhasePct[PhaseBurrows],
		ParticlesPct: s.PhasePct[PhaseParticles],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
