// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World        WorldConfig        `yaml:"world"`
	Clock        ClockConfig        `yaml:"clock"`
	Population   PopulationConfig   `yaml:"population"`
	Agent        AgentConfig        `yaml:"agent"`
	Energy       EnergyConfig       `yaml:"energy"`
	Social       SocialConfig       `yaml:"social"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Burrow       BurrowConfig       `yaml:"burrow"`
	Food         FoodConfig         `yaml:"food"`
	Particles    ParticleConfig     `yaml:"particles"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Params       Params             `yaml:"params"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the bounded plane the warren lives on.
// Agents move on X/Z; Y is height.
type WorldConfig struct {
	Width       float64 `yaml:"width"`       // extent along X
	Depth       float64 `yaml:"depth"`       // extent along Z
	EdgeMargin  float64 `yaml:"edge_margin"` // distance at which boundary avoidance starts
	EdgeForce   float64 `yaml:"edge_force"`  // steering weight of boundary avoidance
	SpawnMargin float64 `yaml:"spawn_margin"`
}

// ClockConfig holds the day/night cycle.
type ClockConfig struct {
	DayLengthSec float64 `yaml:"day_length_sec"` // simulated seconds per 24 hours
	NightStart   float64 `yaml:"night_start"`    // hour night begins
	NightEnd     float64 `yaml:"night_end"`      // hour night ends
	MaxStep      float64 `yaml:"max_step"`       // largest dt a single tick may advance
}

// PopulationConfig holds population bounds.
type PopulationConfig struct {
	Initial int `yaml:"initial"`
	Max     int `yaml:"max"`
}

// AgentConfig holds perception and locomotion parameters.
type AgentConfig struct {
	SensorRadius        float64 `yaml:"sensor_radius"`
	BodyRadius          float64 `yaml:"body_radius"`   // interaction distance = (sizeA+sizeB) * this
	BaseSpeed           float64 `yaml:"base_speed"`
	TurnRate            float64 `yaml:"turn_rate"`     // heading interpolation per second
	HopActive           float64 `yaml:"hop_active"`    // seconds of movement per hop
	HopRest             float64 `yaml:"hop_rest"`      // rest seconds per hop at speed trait 1
	ArrivalDistance     float64 `yaml:"arrival_distance"`
	LowEnergySpeed      float64 `yaml:"low_energy_speed"`
	FleeSpeed           float64 `yaml:"flee_speed"`
	WanderJitter        float64 `yaml:"wander_jitter"`
	ExploreBase         float64 `yaml:"explore_base"`
	ExploreSelfishScale float64 `yaml:"explore_selfish_scale"`
	ExploreJitter       float64 `yaml:"explore_jitter"`
	ExploreTimeout      float64 `yaml:"explore_timeout"`
	MaturityAge         float64 `yaml:"maturity_age"`
	TrailInterval       float64 `yaml:"trail_interval"`
}

// EnergyConfig holds metabolism parameters.
// Fractions are relative to an agent's max energy.
type EnergyConfig struct {
	BaseMetabolism     float64 `yaml:"base_metabolism"` // per second, scaled by size and efficiency
	MoveCost           float64 `yaml:"move_cost"`       // per second of movement at speed trait 1
	RestRegen          float64 `yaml:"rest_regen"`
	BurrowRegen        float64 `yaml:"burrow_regen"`
	FleeCost           float64 `yaml:"flee_cost"`
	DigCost            float64 `yaml:"dig_cost"`
	InitialMin         float64 `yaml:"initial_min"`
	InitialMax         float64 `yaml:"initial_max"`
	CriticalFraction   float64 `yaml:"critical_fraction"`
	DigFraction        float64 `yaml:"dig_fraction"`
	NightSleepFraction float64 `yaml:"night_sleep_fraction"`
	TiredFraction      float64 `yaml:"tired_fraction"`
	WakeFraction       float64 `yaml:"wake_fraction"`
	RestFraction       float64 `yaml:"rest_fraction"`
	ChaseFraction      float64 `yaml:"chase_fraction"`
}

// SocialConfig holds affinity, combat and fear parameters.
type SocialConfig struct {
	AffinityGain     float64 `yaml:"affinity_gain"`     // per second toward similar agents
	AffinityLoss     float64 `yaml:"affinity_loss"`     // per second toward dissimilar agents
	GeneticDistance  float64 `yaml:"genetic_distance"`  // selfishness distance counted as similar
	FriendThreshold  float64 `yaml:"friend_threshold"`
	SnuggleMinEnergy float64 `yaml:"snuggle_min_energy"`
	SnuggleExitRate  float64 `yaml:"snuggle_exit_rate"` // exit probability per second
	HeartChance      float64 `yaml:"heart_chance"`
	SelfishThreshold float64 `yaml:"selfish_threshold"`
	CombatDamage     float64 `yaml:"combat_damage"` // per second, both parties
	StealRate        float64 `yaml:"steal_rate"`    // per second
	PushStrength     float64 `yaml:"push_strength"` // fraction of overlap resolved per tick
	FearOnTheft      float64 `yaml:"fear_on_theft"`  // per second of theft
	FearOnCombat     float64 `yaml:"fear_on_combat"` // per second
	FearDecay        float64 `yaml:"fear_decay"`     // per second
	FleeThreshold    float64 `yaml:"flee_threshold"`
	CalmThreshold    float64 `yaml:"calm_threshold"`
	RestDuration     float64 `yaml:"rest_duration"`
}

// ReproductionConfig holds mating parameters.
type ReproductionConfig struct {
	MatingCost      float64 `yaml:"mating_cost"`     // paid by each parent
	MatingCooldown  float64 `yaml:"mating_cooldown"` // seconds at average fertility 0.5
	MatingDuration  float64 `yaml:"mating_duration"`
	MinLitter       int     `yaml:"min_litter"`
	MaxLitter       int     `yaml:"max_litter"`
	LitterJitter    float64 `yaml:"litter_jitter"`
	OffspringEnergy float64 `yaml:"offspring_energy"`
	SpawnJitter     float64 `yaml:"spawn_jitter"`
}

// BurrowConfig holds digging and shelter parameters.
type BurrowConfig struct {
	Spacing           float64 `yaml:"spacing"`            // min distance to nearest burrow to start digging
	CollisionDistance float64 `yaml:"collision_distance"` // foreign burrow this close aborts a dig
	EnterDistance     float64 `yaml:"enter_distance"`
	DigThreshold      float64 `yaml:"dig_threshold"` // seconds of digging to complete
	GrowthRate        float64 `yaml:"growth_rate"`   // cosmetic progress per second
	Radius            float64 `yaml:"radius"`
	Depth             float64 `yaml:"depth"`
}

// FoodConfig holds food spawning parameters.
type FoodConfig struct {
	Initial         int     `yaml:"initial"`
	Max             int     `yaml:"max"`
	ClusterRadius   float64 `yaml:"cluster_radius"`
	BurrowClearance float64 `yaml:"burrow_clearance"`
	ConsumeDistance float64 `yaml:"consume_distance"`
}

// ParticleConfig holds cosmetic particle parameters.
type ParticleConfig struct {
	Max     int     `yaml:"max"`
	Gravity float64 `yaml:"gravity"`
	Bounce  float64 `yaml:"bounce"` // restitution on ground contact
	Drag    float64 `yaml:"drag"`   // horizontal velocity retained per second
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"`
	PerfWindow  int     `yaml:"perf_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	AgentCellSize  float64 // spatial grid cell size for agents and food
	BurrowCellSize float64 // spatial grid cell size for burrows
	HoursPerSecond float64 // clock rate
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.Sanitize()
	cfg.computeDerived()

	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// Default returns the embedded defaults.
func Default() *Config {
	return MustLoad("")
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Sanitize clamps out-of-range values so the hot loop never has to.
// Every adjustment is logged.
func (c *Config) Sanitize() {
	clampF(&c.World.Width, 10, 1e6, "world.width")
	clampF(&c.World.Depth, 10, 1e6, "world.depth")
	clampF(&c.World.EdgeMargin, 0, c.World.Width/2, "world.edge_margin")
	clampF(&c.World.SpawnMargin, 0, c.World.Width/4, "world.spawn_margin")

	clampF(&c.Clock.DayLengthSec, 1, 1e6, "clock.day_length_sec")
	clampF(&c.Clock.NightStart, 0, 24, "clock.night_start")
	clampF(&c.Clock.NightEnd, 0, 24, "clock.night_end")
	clampF(&c.Clock.MaxStep, 0.001, 1, "clock.max_step")

	if c.Population.Max < 1 {
		warnClamp("population.max", c.Population.Max, 1)
		c.Population.Max = 1
	}
	if c.Population.Initial < 0 {
		warnClamp("population.initial", c.Population.Initial, 0)
		c.Population.Initial = 0
	}
	if c.Population.Initial > c.Population.Max {
		warnClamp("population.initial", c.Population.Initial, c.Population.Max)
		c.Population.Initial = c.Population.Max
	}

	clampF(&c.Agent.SensorRadius, 0.5, c.World.Width, "agent.sensor_radius")
	clampF(&c.Agent.BodyRadius, 0.01, c.Agent.SensorRadius, "agent.body_radius")
	clampF(&c.Agent.HopActive, 0.01, 10, "agent.hop_active")
	clampF(&c.Agent.HopRest, 0, 10, "agent.hop_rest")

	clampF(&c.Energy.InitialMin, 0.01, 1, "energy.initial_min")
	clampF(&c.Energy.InitialMax, c.Energy.InitialMin, 1, "energy.initial_max")

	if c.Reproduction.MinLitter < 1 {
		warnClamp("reproduction.min_litter", c.Reproduction.MinLitter, 1)
		c.Reproduction.MinLitter = 1
	}
	if c.Reproduction.MaxLitter < c.Reproduction.MinLitter {
		warnClamp("reproduction.max_litter", c.Reproduction.MaxLitter, c.Reproduction.MinLitter)
		c.Reproduction.MaxLitter = c.Reproduction.MinLitter
	}

	clampF(&c.Burrow.Spacing, 0.1, c.World.Width, "burrow.spacing")
	clampF(&c.Burrow.DigThreshold, 0.01, 1e4, "burrow.dig_threshold")

	if c.Food.Max < 0 {
		warnClamp("food.max", c.Food.Max, 0)
		c.Food.Max = 0
	}
	if c.Food.Initial > c.Food.Max {
		warnClamp("food.initial", c.Food.Initial, c.Food.Max)
		c.Food.Initial = c.Food.Max
	}
	if c.Particles.Max < 0 {
		c.Particles.Max = 0
	}

	c.Params = c.Params.Sanitize()
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.AgentCellSize = c.Agent.SensorRadius
	c.Derived.BurrowCellSize = c.Burrow.Spacing
	c.Derived.HoursPerSecond = 24.0 / c.Clock.DayLengthSec
}

// IsNight reports whether the given hour falls within the night window.
// The window may wrap past midnight.
func (c *Config) IsNight(hour float64) bool {
	start, end := c.Clock.NightStart, c.Clock.NightEnd
	if start <= end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func clampF(v *float64, lo, hi float64, field string) {
	if *v < lo {
		warnClamp(field, *v, lo)
		*v = lo
	} else if *v > hi {
		warnClamp(field, *v, hi)
		*v = hi
	}
}

func warnClamp(field string, from, to any) {
	slog.Warn("config_clamped", "field", field, "value", from, "clamped_to", to)
}
