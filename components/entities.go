package components

// Food is an edible item granting Value energy.
type Food struct {
	ID    uint32
	Value float64
}

// Burrow is a shelter dug by an agent.
type Burrow struct {
	ID          uint32
	OwnerID     uint32
	Occupants   []uint32
	Radius      float64
	DigProgress float64 // 0..1, cosmetic growth
	Complete    bool    // dug to full depth
}

// HasOccupant reports whether the given agent is sheltering here.
func (b *Burrow) HasOccupant(id uint32) bool {
	for _, o := range b.Occupants {
		if o == id {
			return true
		}
	}
	return false
}

// AddOccupant records an agent as sheltering here.
func (b *Burrow) AddOccupant(id uint32) {
	if !b.HasOccupant(id) {
		b.Occupants = append(b.Occupants, id)
	}
}

// RemoveOccupant removes an agent from the occupant list.
func (b *Burrow) RemoveOccupant(id uint32) {
	for i, o := range b.Occupants {
		if o == id {
			b.Occupants = append(b.Occupants[:i], b.Occupants[i+1:]...)
			return
		}
	}
}

// ParticleKind is a decorative tag for the display layer.
type ParticleKind uint8

const (
	ParticleHeart   ParticleKind = iota // snuggling
	ParticleDust                        // digging
	ParticleSparkle                     // birth
	ParticleSleep                       // falling asleep
	ParticleSkull                       // death
)

// String returns the particle kind name.
func (k ParticleKind) String() string {
	switch k {
	case ParticleHeart:
		return "heart"
	case ParticleDust:
		return "dust"
	case ParticleSparkle:
		return "sparkle"
	case ParticleSleep:
		return "sleep"
	case ParticleSkull:
		return "skull"
	}
	return "unknown"
}

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Particle is a short-lived cosmetic entity.
type Particle struct {
	ID      uint32
	Kind    ParticleKind
	Life    float64
	MaxLife float64
	Scale   float64
	Color   Color
}
