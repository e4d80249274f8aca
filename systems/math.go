package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/warren/components"
)

// Clamp functions for common value ranges

// clampFloat clamps v between minVal and maxVal.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps v to the [0, 1] range.
func clamp01(v float64) float64 {
	return clampFloat(v, 0, 1)
}

// lerp interpolates between a and b.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Direction functions

// lerpDir blends from toward to by t and renormalizes. Degenerate results
// fall back to the original direction, then to the default heading.
func lerpDir(from, to components.Point, t float64) components.Point {
	t = clamp01(t)
	blend := components.Point{
		X: lerp(from.X, to.X, t),
		Z: lerp(from.Z, to.Z, t),
	}
	return blend.Normalized(from.Normalized(components.DefaultHeading))
}

// rotate turns v by angle radians on the ground plane.
func rotate(v components.Point, angle float64) components.Point {
	s, c := math.Sincos(angle)
	return components.Point{X: v.X*c - v.Z*s, Z: v.X*s + v.Z*c}
}

// perpendicular returns v rotated a quarter turn counterclockwise.
func perpendicular(v components.Point) components.Point {
	return components.Point{X: -v.Z, Z: v.X}
}

// randomDir returns a uniformly distributed unit vector.
func randomDir(rng *rand.Rand) components.Point {
	a := rng.Float64() * 2 * math.Pi
	return components.Point{X: math.Cos(a), Z: math.Sin(a)}
}
