package carflock

import "math"

// A Vec2 is a 2D vector whose tail is at the origin.
// Vectors are values: every operation returns a new vector.
type Vec2 struct {
	X float64
	Y float64
}

// Polar returns the vector of length l at angle θ (radians) from the positive x-axis.
func Polar(θ, l float64) Vec2 {
	sin, cos := math.Sincos(θ)
	return Vec2{X: l * cos, Y: l * sin}
}

// Radians converts an angle in degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts an angle in radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Add returns u + v.
func (u Vec2) Add(v Vec2) Vec2 {
	return Vec2{u.X + v.X, u.Y + v.Y}
}

// Sub returns u - v.
func (u Vec2) Sub(v Vec2) Vec2 {
	return Vec2{u.X - v.X, u.Y - v.Y}
}

// Scale returns k * u.
func (u Vec2) Scale(k float64) Vec2 {
	return Vec2{k * u.X, k * u.Y}
}

// Dot returns the dot product of u and v.
func (u Vec2) Dot(v Vec2) float64 {
	return u.X*v.X + u.Y*v.Y
}

// Cross returns the z component of the cross product of u and v.
func (u Vec2) Cross(v Vec2) float64 {
	return u.X*v.Y - u.Y*v.X
}

// Length returns the euclidean norm of u.
func (u Vec2) Length() float64 {
	return math.Hypot(u.X, u.Y)
}

// IsZero reports whether u is exactly the zero vector.
func (u Vec2) IsZero() bool {
	return u.X == 0 && u.Y == 0
}

// Normalize returns the unit vector with the direction of u,
// or the zero vector if u has no length.
func (u Vec2) Normalize() Vec2 {
	return u.ChangeLength(1)
}

// ChangeLength returns a vector with the direction of u and length l.
// The zero vector has no direction and is returned unchanged.
// A negative l flips the direction.
func (u Vec2) ChangeLength(l float64) Vec2 {
	n := u.Length()
	if n == 0 {
		return Vec2{}
	}
	return u.Scale(l / n)
}

// Rotate returns u rotated by θ radians, counterclockwise when θ > 0.
func (u Vec2) Rotate(θ float64) Vec2 {
	sin, cos := math.Sincos(θ)
	return Vec2{cos*u.X - sin*u.Y, sin*u.X + cos*u.Y}
}

// AngleTo returns the signed angle in radians from u to v, in (-π, π].
// The angle is positive when v is reached from u by counterclockwise rotation.
func (u Vec2) AngleTo(v Vec2) float64 {
	return math.Atan2(u.Cross(v), u.Dot(v))
}

// Angle returns the signed angle in radians from the positive x-axis to u.
func (u Vec2) Angle() float64 {
	return math.Atan2(u.Y, u.X)
}
