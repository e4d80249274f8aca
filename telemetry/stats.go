package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/warren/components"
)

// Sample is a point-in-time census of the living population.
// Slices are reused across samples; call Reset before refilling.
type Sample struct {
	Population int
	Food       int
	Burrows    int
	Particles  int
	Sheltered  int
	States     [components.NumStates]int

	EnergyRatios []float64
	Selfishness  []float64
	Speed        []float64
	Size         []float64
	Fertility    []float64
}

// Reset clears the sample, keeping slice capacity.
func (s *Sample) Reset() {
	*s = Sample{
		EnergyRatios: s.EnergyRatios[:0],
		Selfishness:  s.Selfishness[:0],
		Speed:        s.Speed[:0],
		Size:         s.Size[:0],
		Fertility:    s.Fertility[:0],
	}
}

// Add records one living agent.
func (s *Sample) Add(a *components.Agent) {
	s.Population++
	if int(a.State) < len(s.States) {
		s.States[a.State]++
	}
	if a.CurrentBurrowID != 0 {
		s.Sheltered++
	}
	s.EnergyRatios = append(s.EnergyRatios, a.EnergyRatio())
	s.Selfishness = append(s.Selfishness, a.Genome.Selfishness)
	s.Speed = append(s.Speed, a.Genome.Speed)
	s.Size = append(s.Size, a.Genome.Size)
	s.Fertility = append(s.Fertility, a.Genome.Fertility)
}

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartSec float64 `csv:"-"`
	WindowEndTick  uint64  `csv:"window_end"`
	SimTimeSec     float64 `csv:"sim_time"`
	TimeOfDay      float64 `csv:"time_of_day"`

	// Counts at window end
	Population int `csv:"population"`
	Food       int `csv:"food"`
	Burrows    int `csv:"burrows"`
	Sheltered  int `csv:"sheltered"`
	Sleeping   int `csv:"sleeping"`
	Fleeing    int `csv:"fleeing"`

	// Events during window
	Births           int     `csv:"births"`
	StarvationDeaths int     `csv:"starvation_deaths"`
	OldAgeDeaths     int     `csv:"old_age_deaths"`
	Matings          int     `csv:"matings"`
	FoodEaten        int     `csv:"food_eaten"`
	EnergyEaten      float64 `csv:"energy_eaten"`
	Thefts           int     `csv:"thefts"`
	EnergyStolen     float64 `csv:"energy_stolen"`
	Fights           int     `csv:"fights"`
	BurrowsDug       int     `csv:"burrows_dug"`
	DigsAborted      int     `csv:"digs_aborted"`
	MeanAgeAtDeath   float64 `csv:"mean_age_at_death"`

	// Energy as a fraction of max (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Trait distribution
	SelfishnessMean float64 `csv:"selfishness_mean"`
	SelfishnessStd  float64 `csv:"selfishness_std"`
	SelfishnessP10  float64 `csv:"selfishness_p10"`
	SelfishnessP50  float64 `csv:"selfishness_p50"`
	SelfishnessP90  float64 `csv:"selfishness_p90"`
	SpeedMean       float64 `csv:"speed_mean"`
	SizeMean        float64 `csv:"size_mean"`
	FertilityMean   float64 `csv:"fertility_mean"`

	MaxGeneration int `csv:"max_generation"`
}

// Distribution summarizes a set of values.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Summarize computes mean, standard deviation and percentiles.
// An empty input yields the zero Distribution.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	d := Distribution{
		Mean: stat.Mean(sorted, nil),
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
	if len(sorted) > 1 {
		d.Std = stat.PopStdDev(sorted, nil)
	}
	return d
}

// Percentile returns the empirical p-th quantile of a sorted slice: the
// smallest value whose cumulative share reaches p. Returns 0 if the slice
// is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Float64("time_of_day", s.TimeOfDay),
		slog.Int("population", s.Population),
		slog.Int("food", s.Food),
		slog.Int("burrows", s.Burrows),
		slog.Int("sheltered", s.Sheltered),
		slog.Int("births", s.Births),
		slog.Int("starvation_deaths", s.StarvationDeaths),
		slog.Int("old_age_deaths", s.OldAgeDeaths),
		slog.Int("matings", s.Matings),
		slog.Int("food_eaten", s.FoodEaten),
		slog.Int("thefts", s.Thefts),
		slog.Int("fights", s.Fights),
		slog.Int("burrows_dug", s.BurrowsDug),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("selfishness_mean", s.SelfishnessMean),
		slog.Int("max_generation", s.MaxGeneration),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"time_of_day", s.TimeOfDay,
		"population", s.Population,
		"food", s.Food,
		"burrows", s.Burrows,
		"sheltered", s.Sheltered,
		"sleeping", s.Sleeping,
		"fleeing", s.Fleeing,
		"births", s.Births,
		"starvation_deaths", s.StarvationDeaths,
		"old_age_deaths", s.OldAgeDeaths,
		"matings", s.Matings,
		"food_eaten", s.FoodEaten,
		"energy_eaten", s.EnergyEaten,
		"thefts", s.Thefts,
		"energy_stolen", s.EnergyStolen,
		"fights", s.Fights,
		"burrows_dug", s.BurrowsDug,
		"digs_aborted", s.DigsAborted,
		"mean_age_at_death", s.MeanAgeAtDeath,
		"energy_mean", s.EnergyMean,
		"energy_p10", s.EnergyP10,
		"energy_p50", s.EnergyP50,
		"energy_p90", s.EnergyP90,
		"selfishness_mean", s.SelfishnessMean,
		"selfishness_std", s.SelfishnessStd,
		"speed_mean", s.SpeedMean,
		"size_mean", s.SizeMean,
		"fertility_mean", s.FertilityMean,
		"max_generation", s.MaxGeneration,
	)
}
