// Package components defines ECS components for the simulation.
package components

import "math"

// Position represents an entity's world position.
// Agents move on the X/Z plane; Y is height above ground.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Velocity represents an entity's velocity in world units per second.
type Velocity struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Point is a location or direction on the ground plane.
type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Ground returns the ground-plane projection of p.
func (p Position) Ground() Point {
	return Point{X: p.X, Z: p.Z}
}

// Len returns the length of v.
func (v Point) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Z*v.Z)
}

// Sub returns v - o.
func (v Point) Sub(o Point) Point {
	return Point{X: v.X - o.X, Z: v.Z - o.Z}
}

// Add returns v + o.
func (v Point) Add(o Point) Point {
	return Point{X: v.X + o.X, Z: v.Z + o.Z}
}

// Scale returns v * s.
func (v Point) Scale(s float64) Point {
	return Point{X: v.X * s, Z: v.Z * s}
}

// Normalized returns the unit vector along v, or fallback when v has
// (near) zero length or is not finite.
func (v Point) Normalized(fallback Point) Point {
	l := v.Len()
	if l < 1e-9 || math.IsNaN(l) || math.IsInf(l, 0) {
		return fallback
	}
	return Point{X: v.X / l, Z: v.Z / l}
}

// DefaultHeading is the fallback direction for degenerate vectors.
var DefaultHeading = Point{X: 1, Z: 0}

// DistSq returns the squared ground-plane distance between a and b.
func DistSq(a, b Point) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return dx*dx + dz*dz
}

// Dist returns the ground-plane distance between a and b.
func Dist(a, b Point) float64 {
	return math.Sqrt(DistSq(a, b))
}
