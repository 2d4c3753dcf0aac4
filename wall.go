package carflock

import "math"

// A Wall is a finite line segment that cars steer away from.
// Walls are created with NewWall and never change afterwards.
type Wall struct {
	x1, y1 float64
	x2, y2 float64
}

// NewWall returns the wall going from (x1, y1) to (x2, y2).
// Both ends must be distinct points.
func NewWall(x1, y1, x2, y2 float64) (Wall, error) {
	if x1 == x2 && y1 == y2 {
		return Wall{}, ErrDegenerateWall
	}
	return Wall{x1: x1, y1: y1, x2: x2, y2: y2}, nil
}

// Endpoints returns both ends of the wall.
func (w Wall) Endpoints() (Vec2, Vec2) {
	return Vec2{w.x1, w.y1}, Vec2{w.x2, w.y2}
}

// Avoidance returns the vector perpendicular to the wall pointing to p.
// Its tail is the foot of the perpendicular from p on the line of the wall,
// so its length is the distance from p to that line.
// The zero vector is returned when the foot lies outside the segment,
// i.e. when the wall does not face p.
func (w Wall) Avoidance(p Vec2) Vec2 {
	dx, dy := w.x2-w.x1, w.y2-w.y1

	// foot of the perpendicular
	var fx, fy float64
	switch {
	case dx == 0:
		fx, fy = w.x1, p.Y
	case dy == 0:
		fx, fy = p.X, w.y1
	default:
		a := dy / dx       // slope of the wall
		b := w.y1 - a*w.x1 // intercept of the wall
		ap := -1 / a       // slope of the perpendicular
		bp := p.Y - ap*p.X // intercept of the perpendicular
		fx = (bp - b) / (a - ap)
		fy = a*fx + b
	}

	if !within(fx, w.x1, w.x2) || !within(fy, w.y1, w.y2) {
		return Vec2{}
	}
	return Vec2{p.X - fx, p.Y - fy}
}

// Crossed reports whether moving in a straight line from a to b crosses the wall.
// Arriving exactly on the wall counts as a crossing, leaving it does not,
// so a car passing through the wall over several steps is counted once.
func (w Wall) Crossed(a, b Vec2) bool {
	p, q := w.Endpoints()
	e := q.Sub(p)
	da, db := e.Cross(a.Sub(p)), e.Cross(b.Sub(p))
	if da == 0 || da*db > 0 {
		return false
	}
	m := b.Sub(a)
	dp, dq := m.Cross(p.Sub(a)), m.Cross(q.Sub(a))
	if dp*dq > 0 {
		return false
	}
	if db == 0 {
		// b lies on the line of the wall: it must lie on the segment itself
		return within(b.X, w.x1, w.x2) && within(b.Y, w.y1, w.y2)
	}
	return true
}

// within reports whether x lies in the closed range spanned by a and b.
func within(x, a, b float64) bool {
	return x >= math.Min(a, b) && x <= math.Max(a, b)
}
