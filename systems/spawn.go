package systems

import (
	"math/rand"
	"strings"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/config"
	"github.com/pthm-cable/warren/genetics"
	"github.com/pthm-cable/warren/world"
)

var nameSyllables = []string{
	"bun", "clo", "ver", "pip", "tuf", "thum", "per", "nib", "ble",
	"hop", "sko", "wil", "low", "fen", "nel", "mo", "ss", "dai",
}

// NewName builds a pronounceable name from random syllables.
func NewName(rng *rand.Rand) string {
	n := 2 + rng.Intn(2)
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(nameSyllables[rng.Intn(len(nameSyllables))])
	}
	name := b.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// SpawnAgent creates an agent with derived fields filled in.
// Energy is clamped to (0, maxEnergy].
func SpawnAgent(w *world.World, rng *rand.Rand, pos components.Position, g genetics.Genome, energy float64, generation int, parents [2]uint32) uint32 {
	maxEnergy := g.MaxEnergy()
	energy = clampFloat(energy, 1e-6, maxEnergy)
	heading := randomDir(rng)

	a := components.Agent{
		Name:       NewName(rng),
		Genome:     g,
		Generation: generation,
		ParentIDs:  parents,
		Energy:     energy,
		MaxEnergy:  maxEnergy,
		State:      components.StateWandering,
		Heading:    heading,
		HopTimer:   rng.Float64() * 0.5,
		SurfacePos: pos,
	}
	return w.AddAgent(pos, components.Velocity{}, a)
}

// SeedPopulation places the founder population at random positions.
func SeedPopulation(cfg *config.Config, w *world.World, rng *rand.Rand) {
	for i := 0; i < cfg.Population.Initial; i++ {
		g := genetics.NewRandom(rng)
		energy := g.MaxEnergy() * lerp(cfg.Energy.InitialMin, cfg.Energy.InitialMax, rng.Float64())
		SpawnAgent(w, rng, randomPoint(cfg, rng), g, energy, 0, [2]uint32{})
	}
}

// randomPoint returns a uniformly random ground position inside the spawn margin.
func randomPoint(cfg *config.Config, rng *rand.Rand) components.Position {
	m := cfg.World.SpawnMargin
	return components.Position{
		X: m + rng.Float64()*(cfg.World.Width-2*m),
		Z: m + rng.Float64()*(cfg.World.Depth-2*m),
	}
}

// clampToWorld keeps a position inside the world rectangle.
func clampToWorld(cfg *config.Config, p *components.Position) {
	p.X = clampFloat(p.X, 0, cfg.World.Width)
	p.Z = clampFloat(p.Z, 0, cfg.World.Depth)
}
