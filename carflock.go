// Package carflock runs flocking simulations of car-like agents.
//
// Cars move according to a simple car (bicycle) kinematic model.
// Each step, every car looks at its nearest neighbors, an optional goal
// and nearby walls, combines separation, alignment, cohesion, goal and
// wall forces into a single desired direction, and turns its wheels
// toward it as fast as it can.
//
// The World is the simulation engine. It steps all cars in two phases so
// that every decision within a step is taken from the same snapshot, and
// it records collision and flocking density time series.
package carflock

import (
	"errors"
	"fmt"
)

// Errors reported while building a world. Ticks never fail.
var (
	ErrDegenerateWall = errors.New("carflock: wall endpoints coincide")
	ErrInvalidCar     = errors.New("carflock: invalid car parameters")
	ErrNeighborCount  = errors.New("carflock: invalid neighbor count")
	ErrWeights        = errors.New("carflock: rule weights must have 4 values")
	ErrEmptyWorld     = errors.New("carflock: world has no cars")
	ErrRunning        = errors.New("carflock: world is already running")
	ErrInvalidWorld   = errors.New("carflock: invalid world configuration")
)

// Indices of the flocking rules in Weights.
const (
	Separation = iota
	Alignment
	Cohesion
	Seek
)

// Weights holds the weight of each flocking rule, in the order
// separation, alignment, cohesion, goal.
type Weights [4]float64

// WeightsFromSlice converts a slice of rule weights, e.g. read from a config file.
func WeightsFromSlice(w []float64) (Weights, error) {
	var out Weights
	if len(w) != len(out) {
		return out, fmt.Errorf("%w: got %d", ErrWeights, len(w))
	}
	copy(out[:], w)
	return out, nil
}

// A Goal is a point cars flock to while it is active.
type Goal struct {
	Pos    Vec2
	Active bool
}

// Config contains the parameters of a world. It does not change during a run.
type Config struct {
	Width  float64 // unit: meter
	Height float64 // unit: meter

	// Wrap turns the world into a torus: positions wrap around the edges
	// and distances are the shortest ones across them.
	Wrap bool

	// Wall avoidance parameters.
	WallAvoidance bool
	WallRadius    float64 // unit: meter
	WallWeight    float64 // unit: 1
}

// Validate checks that the configuration describes a usable world.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %gx%g", ErrInvalidWorld, c.Width, c.Height)
	}
	if c.WallAvoidance && c.WallRadius <= 0 {
		return fmt.Errorf("%w: wall radius %g", ErrInvalidWorld, c.WallRadius)
	}
	return nil
}

// An Environment contains everything a car looks at, besides its neighbors,
// to take a decision. It is read-only during a step.
type Environment struct {
	Goal    Goal
	Walls   []Wall
	Weights Weights

	// Wall avoidance parameters, see Config.
	WallAvoidance bool
	WallRadius    float64
	WallWeight    float64

	// Vec returns the vector pointing from u to v.
	// It can be used to create periodic boundary conditions.
	Vec func(u, v Vec2) Vec2
}
