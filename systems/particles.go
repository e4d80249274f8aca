package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/config"
	"github.com/pthm-cable/warren/world"
)

// particleStyle holds the launch parameters of a particle kind.
type particleStyle struct {
	life         float64
	scale        float64
	speed        float64 // horizontal launch speed
	lift         float64 // vertical launch speed
	gravityScale float64
	color        components.Color
}

var particleStyles = [...]particleStyle{
	components.ParticleHeart:   {life: 1.5, scale: 0.4, speed: 0.2, lift: 1.2, gravityScale: 0, color: components.Color{R: 255, G: 90, B: 140, A: 255}},
	components.ParticleDust:    {life: 0.8, scale: 0.25, speed: 1.5, lift: 2.5, gravityScale: 1, color: components.Color{R: 140, G: 110, B: 70, A: 200}},
	components.ParticleSparkle: {life: 1.0, scale: 0.3, speed: 1.0, lift: 3.0, gravityScale: 0.5, color: components.Color{R: 255, G: 240, B: 150, A: 255}},
	components.ParticleSleep:   {life: 2.0, scale: 0.35, speed: 0.1, lift: 0.6, gravityScale: 0, color: components.Color{R: 180, G: 200, B: 255, A: 220}},
	components.ParticleSkull:   {life: 2.5, scale: 0.5, speed: 0, lift: 1.5, gravityScale: 0.3, color: components.Color{R: 230, G: 230, B: 230, A: 255}},
}

// ParticleSystem spawns and integrates cosmetic particles.
type ParticleSystem struct {
	cfg   *config.Config
	world *world.World
	rng   *rand.Rand

	expired []uint32
}

// NewParticleSystem creates a new particle system.
func NewParticleSystem(cfg *config.Config, w *world.World, rng *rand.Rand) *ParticleSystem {
	return &ParticleSystem{
		cfg:     cfg,
		world:   w,
		rng:     rng,
		expired: make([]uint32, 0, 64),
	}
}

// Emit spawns one particle of the given kind above pos.
// Returns false when the global particle cap is reached.
func (s *ParticleSystem) Emit(kind components.ParticleKind, pos components.Position) bool {
	if s.world.ParticleCount() >= s.cfg.Particles.Max || int(kind) >= len(particleStyles) {
		return false
	}
	style := particleStyles[kind]
	dir := randomDir(s.rng)
	speed := style.speed * (0.5 + s.rng.Float64())

	start := pos
	start.Y = math.Max(pos.Y, 0) + 0.5
	vel := components.Velocity{
		X: dir.X * speed,
		Y: style.lift * (0.75 + 0.5*s.rng.Float64()),
		Z: dir.Z * speed,
	}
	s.world.AddParticle(start, vel, components.Particle{
		Kind:    kind,
		Life:    style.life,
		MaxLife: style.life,
		Scale:   style.scale,
		Color:   style.color,
	})
	return true
}

// Update integrates motion, bounces particles off the ground and removes
// expired ones.
func (s *ParticleSystem) Update(dt float64) {
	cfg := &s.cfg.Particles
	retain := math.Pow(clamp01(cfg.Drag), dt)
	s.expired = s.expired[:0]

	query := s.world.ParticleFilter().Query()
	for query.Next() {
		pos, vel, p := query.Get()

		p.Life -= dt
		if p.Life <= 0 {
			s.expired = append(s.expired, p.ID)
			continue
		}

		gravity := cfg.Gravity
		if int(p.Kind) < len(particleStyles) {
			gravity *= particleStyles[p.Kind].gravityScale
		}
		vel.Y -= gravity * dt
		vel.X *= retain
		vel.Z *= retain

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
		pos.Z += vel.Z * dt

		if pos.Y < 0 {
			pos.Y = 0
			vel.Y = -vel.Y * cfg.Bounce
		}
	}

	for _, id := range s.expired {
		s.world.RemoveParticle(id)
	}
}
