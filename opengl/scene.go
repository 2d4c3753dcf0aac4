package opengl

import (
	"log"
	"time"

	"github.com/PrincetonUniversity/carflock"
)

// A Notifier is told about the new collisions of every step.
type Notifier interface {
	Collisions(n int)
}

// Config holds the parameters of the OpenGL driver.
type Config struct {
	StepsPerSecond int         // steps shown per second of wall clock time
	Pause          bool        // start paused?
	ShowForces     bool        // draw the desired direction of every car
	Sound          Notifier    // may be nil
	Log            *log.Logger // receives real-time overrun notices, may be nil

	// bounds of default viewport
	Xmin float64
	Ymin float64
	Xmax float64
	Ymax float64
}

// A viewport is a rectangle delimiting the area of simulation space shown on screen.
// The first point is the bottom left corner, the second point is the top right corner.
type viewport [2]struct{ X, Y float32 }

func newViewport(conf *Config) viewport {
	return viewport{{float32(conf.Xmin), float32(conf.Ymin)}, {float32(conf.Xmax), float32(conf.Ymax)}}
}

// zoom zooms in for positive yo around the point at relative
// window coordinates (x, y), with y pointing up.
func (vp *viewport) zoom(x, y, yo float32) {
	dx, dy := vp[1].X-vp[0].X, vp[1].Y-vp[0].Y
	z := 0.05 * yo
	vp[0].X += z * (x * dx)
	vp[0].Y += z * (y * dy)
	vp[1].X -= z * (1 - x) * dx
	vp[1].Y -= z * (1 - y) * dy
}

// world returns the point of simulation space at relative
// window coordinates (x, y), with y pointing up.
func (vp viewport) world(x, y float32) carflock.Vec2 {
	return carflock.Vec2{
		X: float64(vp[0].X + x*(vp[1].X-vp[0].X)),
		Y: float64(vp[0].Y + y*(vp[1].Y-vp[0].Y)),
	}
}

// controls holds the state changed by the user between frames.
type controls struct {
	pause  bool
	step   bool // single step requested while paused
	forces bool
	quit   bool
}

func newControls(conf *Config) *controls {
	return &controls{pause: conf.Pause, forces: conf.ShowForces}
}

// togglePause pauses or resumes the simulation.
func (c *controls) togglePause() { c.pause = !c.pause }

// stepOnce requests a single step. It is ignored unless paused.
func (c *controls) stepOnce() {
	if c.pause {
		c.step = true
	}
}

// due reports whether to step at time now, the next step being scheduled at next.
// It consumes a pending single step.
func (c *controls) due(now, next time.Time) bool {
	if c.step {
		c.step = false
		return true
	}
	return !c.pause && !now.Before(next)
}

// A vertex is a colored point of the scene as stored in OpenGL buffers.
type vertex struct {
	X, Y       float32
	R, G, B, A float32
}

type color [4]float32

var (
	carColor     = color{1, 1, 0, 1}
	reachedColor = color{0.2, 1, 0.2, 1}
	goalColor    = color{1, 0.2, 0.2, 1}
	wallColor    = color{0.6, 0.6, 0.6, 1}
	forceColor   = color{0.25, 0.75, 1, 0.8}
)

// A scene holds the vertices of a frame: filled triangles and lines.
type scene struct {
	tris  []vertex
	lines []vertex
}

// build replaces the scene with the current state of w.
func (s *scene) build(w *carflock.World, forces bool) {
	s.tris = s.tris[:0]
	s.lines = s.lines[:0]

	for _, wall := range w.Walls() {
		a, b := wall.Endpoints()
		s.line(a, b, wallColor)
	}

	cars := w.Cars()
	for i := range cars {
		c := &cars[i]
		col := carColor
		if c.GoalReached {
			col = reachedColor
		}
		p := carCorners(c)
		s.quad(p, col)
		if forces && !c.Force.IsZero() {
			s.line(c.Pos, c.Pos.Add(c.Force.ChangeLength(c.Length)), forceColor)
		}
	}

	if g := w.Goal(); g.Active {
		const r = 1.5 // unit: meter
		s.quad([4]carflock.Vec2{
			g.Pos.Add(carflock.Vec2{X: r}),
			g.Pos.Add(carflock.Vec2{Y: r}),
			g.Pos.Add(carflock.Vec2{X: -r}),
			g.Pos.Add(carflock.Vec2{Y: -r}),
		}, goalColor)
	}
}

// carCorners returns the corners of the body of c, counterclockwise
// from the rear right one.
func carCorners(c *carflock.Car) [4]carflock.Vec2 {
	l := c.Dir.Scale(c.Length / 2)
	n := carflock.Vec2{X: -c.Dir.Y, Y: c.Dir.X}.Scale(c.Width / 2)
	return [4]carflock.Vec2{
		c.Pos.Sub(l).Sub(n),
		c.Pos.Add(l).Sub(n),
		c.Pos.Add(l).Add(n),
		c.Pos.Sub(l).Add(n),
	}
}

// quad adds a convex quadrilateral as two triangles.
func (s *scene) quad(p [4]carflock.Vec2, c color) {
	for _, i := range [6]int{0, 1, 2, 0, 2, 3} {
		s.tris = append(s.tris, newVertex(p[i], c))
	}
}

func (s *scene) line(a, b carflock.Vec2, c color) {
	s.lines = append(s.lines, newVertex(a, c), newVertex(b, c))
}

func newVertex(p carflock.Vec2, c color) vertex {
	return vertex{float32(p.X), float32(p.Y), c[0], c[1], c[2], c[3]}
}
