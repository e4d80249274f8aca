package systems

import (
	"testing"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/config"
)

func TestParticles_ExpireAfterLifetime(t *testing.T) {
	h := newHarness(t, nil)
	if !h.particles.Emit(components.ParticleHeart, components.Position{X: 10, Z: 10}) {
		t.Fatal("emit failed")
	}

	h.particles.Update(1.0)
	if h.w.ParticleCount() != 1 {
		t.Fatalf("particle expired early")
	}
	h.particles.Update(0.6)
	if h.w.ParticleCount() != 0 {
		t.Errorf("particle should expire after its lifetime")
	}
}

func TestParticles_CapRefusesEmission(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) {
		cfg.Particles.Max = 3
	})
	for i := 0; i < 3; i++ {
		if !h.particles.Emit(components.ParticleDust, components.Position{}) {
			t.Fatalf("emit %d refused below cap", i)
		}
	}
	if h.particles.Emit(components.ParticleDust, components.Position{}) {
		t.Error("emit above cap should be refused")
	}
	if h.w.ParticleCount() != 3 {
		t.Errorf("particle count = %d, want 3", h.w.ParticleCount())
	}
}

func TestParticles_NeverFallBelowGround(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) {
		cfg.Particles.Gravity = 30
	})
	h.particles.Emit(components.ParticleDust, components.Position{X: 10, Z: 10})
	id := h.w.ParticleIDs()[0]

	bounced := false
	for i := 0; i < 15; i++ {
		h.particles.Update(0.05)
		pos, vel, _, ok := h.w.Particle(id)
		if !ok {
			break
		}
		if pos.Y < 0 {
			t.Fatalf("step %d: particle below ground at y=%v", i, pos.Y)
		}
		if pos.Y == 0 && vel.Y >= 0 {
			bounced = true
		}
	}
	if !bounced {
		t.Error("dust particle never touched the ground")
	}
}

func TestParticles_HeartsRise(t *testing.T) {
	h := newHarness(t, nil)
	h.particles.Emit(components.ParticleHeart, components.Position{X: 10, Z: 10})
	id := h.w.ParticleIDs()[0]
	start, _, _, _ := h.w.Particle(id)
	y0 := start.Y

	h.particles.Update(0.5)
	pos, _, p, ok := h.w.Particle(id)
	if !ok {
		t.Fatal("heart expired early")
	}
	if pos.Y <= y0 {
		t.Errorf("heart y = %v, want above start %v", pos.Y, y0)
	}
	if p.Life >= p.MaxLife {
		t.Errorf("life = %v did not decrease from %v", p.Life, p.MaxLife)
	}
}
