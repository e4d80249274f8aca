package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/warren/config"
	"github.com/pthm-cable/warren/game"
	"github.com/pthm-cable/warren/telemetry"
)

// Functional extinction: fewer than minViablePop agents for longer than
// extinctionGraceSec ends the run.
const (
	minViablePop       = 2
	extinctionGraceSec = 30.0
	stepDt             = 0.1
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxSimSec   float64
	seeds       []int64
	cfg         *config.Config
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
	lastSurvive float64 // mean survival seconds from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxSimSec float64, seeds []int64, cfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxSimSec:   maxSimSec,
		seeds:       seeds,
		cfg:         cfg,
		statsWindow: 10.0,
	}
}

// LastRun returns the mean survival seconds and quality of the most recent evaluation.
func (fe *FitnessEvaluator) LastRun() (survivalSec, quality float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSurvive, fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalSec float64
	windowStats []telemetry.WindowStats
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Every seed runs in its own goroutine; games share only the read-only config.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	params := fe.params.Apply(fe.cfg.Params, x)

	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(params, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality, totalSurvival float64
	for _, r := range results {
		q := computeQuality(r.windowStats)
		totalFitness += computeFitness(r.survivalSec, q)
		totalQuality += q
		totalSurvival += r.survivalSec
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.lastSurvive = totalSurvival / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until functional extinction
// or maxSimSec, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(params config.Params, seed int64) runResult {
	var result runResult
	g, err := game.NewWithOptions(fe.cfg, game.Options{
		Seed:           seed,
		StatsWindowSec: fe.statsWindow,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		// No output dir, so construction cannot fail
		panic(err)
	}
	defer g.Close()
	g.Reset(params)

	var belowSec float64
	for g.Elapsed() < fe.maxSimSec {
		g.Advance(stepDt, params)

		pop := g.Population()
		if pop == 0 {
			break
		}
		if pop < minViablePop {
			belowSec += stepDt
			if belowSec >= extinctionGraceSec {
				break
			}
		} else {
			belowSec = 0
		}
	}

	result.survivalSec = g.Elapsed()
	return result
}

// computeFitness combines survival and quality (lower = better).
// Survival dominates; quality can at most double it.
func computeFitness(survivalSec, quality float64) float64 {
	return -(survivalSec * (1.0 + quality))
}

// Quality component weights.
const (
	qualityWeightStability = 0.5
	qualityWeightEnergy    = 0.3
	qualityWeightBreeding  = 0.2

	qualityWarmupWindows = 3 // skip first N windows
	qualityMinPop        = 4 // exclude windows below this population
)

// computeQuality scores warren health in [0, 1] from window stats:
// population stability, median energy near 60% and steady breeding.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var pops []float64
	var energySum, breedSum float64
	for _, w := range windows[qualityWarmupWindows:] {
		if w.Population < qualityMinPop {
			continue
		}
		pops = append(pops, float64(w.Population))
		energySum += math.Exp(-math.Pow((w.EnergyP50-0.6)/0.2, 2))

		perCapita := float64(w.Births) / float64(w.Population)
		breedSum += 1.0 - math.Exp(-perCapita*5)
	}
	if len(pops) == 0 {
		return 0
	}

	stability := 0.0
	if len(pops) >= 2 {
		c := cv(pops)
		stability = math.Exp(-c * c * 4)
	}
	n := float64(len(pops))

	quality := qualityWeightStability*stability +
		qualityWeightEnergy*energySum/n +
		qualityWeightBreeding*breedSum/n
	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean).
func cv(values []float64) float64 {
	mean := stat.Mean(values, nil)
	if mean == 0 {
		return 0
	}
	return stat.PopStdDev(values, nil) / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
