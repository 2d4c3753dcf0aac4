package carflock

import (
	"fmt"
	"math"
)

// Params contains the physical constants of a car.
// The midpoint of the wheelbase is the midpoint of the car.
type Params struct {
	Length           float64 // unit: meter
	Width            float64 // unit: meter
	Wheelbase        float64 // distance between the axles, unit: meter
	MaxVelocity      float64 // unit: meter/second
	MaxAcceleration  float64 // unit: meter/second²
	MaxSteeringAngle float64 // maximum wheel angle, unit: radian
	MaxSteeringRate  float64 // maximum wheel angle change, unit: radian/second
}

// State contains the dynamic state of a car and its control commands.
type State struct {
	Pos           Vec2    // position of the center, unit: meter
	Dir           Vec2    // heading as a unit vector
	Velocity      float64 // unit: meter/second
	SteeringAngle float64 // wheel angle relative to the heading, unit: radian
	Acceleration  float64 // acceleration command, unit: meter/second²
	SteeringRate  float64 // wheel angle change command, unit: radian/second
}

// Memory contains what a car remembers between steps.
type Memory struct {
	Force       Vec2 // combined flocking force of the last step
	GoalReached bool // set once the car (or a neighbor) reached the goal

	overlap map[int]struct{} // indices of cars overlapping this one
}

// A Car is a kinematic agent following the simple car model.
// See http://planning.cs.uiuc.edu/node658.html.
type Car struct {
	Params
	State
	Memory
}

// A Neighbor references another car of the world by index.
type Neighbor struct {
	Index int
	Dist  float64
}

// A Decision holds the outcome of the behavior of a car for one step.
type Decision struct {
	SteeringRate float64
	Force        Vec2
	GoalReached  bool
}

// NewCar returns a car with the given parameters and initial state.
// The heading is normalized (a zero heading points along the x-axis)
// and the velocity and steering angle are clamped to the limits of the car.
// Commands are kept as given.
func NewCar(p Params, s State) (Car, error) {
	switch {
	case !(p.Length > 0):
		return Car{}, fmt.Errorf("%w: length %g", ErrInvalidCar, p.Length)
	case !(p.Wheelbase > 0):
		return Car{}, fmt.Errorf("%w: wheelbase %g", ErrInvalidCar, p.Wheelbase)
	case p.Width < 0, p.MaxVelocity < 0, p.MaxAcceleration < 0, p.MaxSteeringAngle < 0, p.MaxSteeringRate < 0:
		return Car{}, fmt.Errorf("%w: negative limit in %+v", ErrInvalidCar, p)
	}
	if s.Dir.IsZero() {
		s.Dir = Vec2{X: 1}
	}
	s.Dir = s.Dir.Normalize()
	s.Velocity = math.Min(s.Velocity, p.MaxVelocity)
	s.SteeringAngle = clamp(s.SteeringAngle, p.MaxSteeringAngle)
	return Car{Params: p, State: s}, nil
}

// Update integrates the state of the car over dt seconds.
// Velocity is capped by MaxVelocity and the steering angle by MaxSteeringAngle.
// There is no lower bound on velocity: cars may drive backward.
func (c *Car) Update(dt float64) {
	turn := math.Tan(c.SteeringAngle) * c.Velocity / c.Wheelbase

	c.Pos = c.Pos.Add(c.Dir.Scale(c.Velocity * dt))
	c.Dir = c.Dir.Rotate(turn * dt)
	c.Velocity = math.Min(c.MaxVelocity, c.Velocity+c.Acceleration*dt)
	c.SteeringAngle = clamp(c.SteeringAngle+c.SteeringRate*dt, c.MaxSteeringAngle)
}

// Decide computes the flocking force experienced by the car and the
// resulting steering command. It reads but never modifies swarm,
// so all cars of a world can decide from the same snapshot.
func (c *Car) Decide(swarm []Car, nb []Neighbor, env *Environment) Decision {
	d := Decision{GoalReached: c.GoalReached}

	var seek Vec2
	if env.Goal.Active {
		seek = c.GoalForce(env.Goal, env.Vec)
		if seek.Length() < c.Length {
			d.GoalReached = true
		}
	}

	// reaching the goal spreads through the flock
	if !d.GoalReached {
		for _, n := range nb {
			if swarm[n.Index].GoalReached {
				d.GoalReached = true
				break
			}
		}
	}

	w := env.Weights
	d.Force = c.Separation(swarm, nb, env.Vec).Scale(w[Separation]).
		Add(c.Alignment(swarm, nb).Scale(w[Alignment])).
		Add(c.Cohesion(swarm, nb, env.Vec).Scale(w[Cohesion])).
		Add(seek.Scale(w[Seek]))
	if env.WallAvoidance {
		d.Force = d.Force.Add(c.WallForce(env.Walls, env.WallRadius).Scale(env.WallWeight))
	}

	// bang-bang control of the wheels
	var θ float64
	if !d.Force.IsZero() {
		θ = c.Dir.Rotate(c.SteeringAngle).AngleTo(d.Force)
	}
	switch {
	case θ > 0:
		d.SteeringRate = c.MaxSteeringRate
	case θ < 0:
		d.SteeringRate = -c.MaxSteeringRate
	case c.SteeringAngle > 0:
		d.SteeringRate = -c.MaxSteeringRate
	default:
		d.SteeringRate = c.MaxSteeringRate
	}
	return d
}

// Apply stores the outcome of Decide in the car.
func (c *Car) Apply(d Decision) {
	c.SteeringRate = d.SteeringRate
	c.Force = d.Force
	c.GoalReached = c.GoalReached || d.GoalReached
}

// GoalForce returns the vector from the car to the goal.
// A nil vec uses plain subtraction.
func (c *Car) GoalForce(g Goal, vec func(u, v Vec2) Vec2) Vec2 {
	return displacement(vec, c.Pos, g.Pos)
}

// Separation returns the force pushing the car away from its neighbors.
// Each neighbor contributes a vector of length 1/distance; a neighbor
// at distance zero repels infinitely.
func (c *Car) Separation(swarm []Car, nb []Neighbor, vec func(u, v Vec2) Vec2) Vec2 {
	var f Vec2
	for _, n := range nb {
		l := math.Inf(1)
		if n.Dist != 0 {
			l = 1 / n.Dist
		}
		f = f.Add(displacement(vec, swarm[n.Index].Pos, c.Pos).ChangeLength(l))
	}
	return f
}

// Alignment returns the sum of the headings of the neighbors.
func (c *Car) Alignment(swarm []Car, nb []Neighbor) Vec2 {
	var f Vec2
	for _, n := range nb {
		f = f.Add(swarm[n.Index].Dir)
	}
	return f
}

// Cohesion returns the vector from the car to the centroid of its neighbors,
// or the zero vector if there are none.
func (c *Car) Cohesion(swarm []Car, nb []Neighbor, vec func(u, v Vec2) Vec2) Vec2 {
	if len(nb) == 0 {
		return Vec2{}
	}
	if vec == nil {
		var sum Vec2
		for _, n := range nb {
			sum = sum.Add(swarm[n.Index].Pos)
		}
		return sum.Scale(1 / float64(len(nb))).Sub(c.Pos)
	}
	var sum Vec2
	for _, n := range nb {
		sum = sum.Add(vec(c.Pos, swarm[n.Index].Pos))
	}
	return sum.Scale(1 / float64(len(nb)))
}

// WallForce returns the force pushing the car away from the walls closer
// than radius. Each wall contributes a vector perpendicular to it whose
// length grows linearly from 0 at radius to radius on the wall.
func (c *Car) WallForce(walls []Wall, radius float64) Vec2 {
	var f Vec2
	for _, w := range walls {
		v := w.Avoidance(c.Pos)
		if d := v.Length(); d < radius {
			f = f.Add(v.ChangeLength(radius - d))
		}
	}
	return f
}

// Overlapping reports whether the car currently overlaps car j.
func (c *Car) Overlapping(j int) bool {
	_, ok := c.overlap[j]
	return ok
}

// displacement returns the vector from u to v.
func displacement(vec func(u, v Vec2) Vec2, u, v Vec2) Vec2 {
	if vec == nil {
		return v.Sub(u)
	}
	return vec(u, v)
}

// clamp limits x to [-max, max].
func clamp(x, max float64) float64 {
	return math.Max(-max, math.Min(x, max))
}
