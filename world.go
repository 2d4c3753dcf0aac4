package carflock

import "fmt"

// A World contains the cars, walls and goal of a simulation
// and the performance measures recorded at every step.
//
// Without Config.Wrap the size of the world is not enforced:
// cars may drive beyond it and it only matters for display.
type World struct {
	conf  Config
	cars  []Car
	walls []Wall
	goal  Goal
	tick  int

	collisions []int     // new collisions per step
	density    []float64 // mean squared distance to the center per step
	wallHits   []int     // wall crossings per step

	// per-step buffers
	nb  [][]Neighbor
	dec []Decision
}

// NewWorld returns an empty world.
func NewWorld(conf Config) (*World, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &World{conf: conf}, nil
}

// AddCar adds a car to the world and returns its index.
// Cars can only be added before the first step.
func (w *World) AddCar(c Car) (int, error) {
	if w.tick > 0 {
		return 0, ErrRunning
	}
	if w.conf.Wrap {
		c.Pos = w.wrap(c.Pos)
	}
	c.overlap = nil
	w.cars = append(w.cars, c)
	return len(w.cars) - 1, nil
}

// AddWall adds a wall to the world. Walls can only be added before the first step.
func (w *World) AddWall(wall Wall) error {
	if w.tick > 0 {
		return ErrRunning
	}
	w.walls = append(w.walls, wall)
	return nil
}

// RemoveWall removes the wall at index i. Walls can only be removed before the first step.
func (w *World) RemoveWall(i int) error {
	if w.tick > 0 {
		return ErrRunning
	}
	if i < 0 || i >= len(w.walls) {
		return fmt.Errorf("carflock: no wall at index %d", i)
	}
	w.walls = append(w.walls[:i], w.walls[i+1:]...)
	return nil
}

// SetGoal replaces the goal. It may be called between steps.
func (w *World) SetGoal(g Goal) {
	w.goal = g
}

// Config returns the configuration of the world.
func (w *World) Config() Config { return w.conf }

// Width returns the width of the world.
func (w *World) Width() float64 { return w.conf.Width }

// Height returns the height of the world.
func (w *World) Height() float64 { return w.conf.Height }

// Goal returns the current goal.
func (w *World) Goal() Goal { return w.goal }

// Cars returns the cars of the world. The slice must not be modified.
func (w *World) Cars() []Car { return w.cars }

// Walls returns the walls of the world. The slice must not be modified.
func (w *World) Walls() []Wall { return w.walls }

// Tick returns the number of steps taken so far.
func (w *World) Tick() int { return w.tick }

// Collisions returns the number of new collisions at each step so far.
func (w *World) Collisions() []int { return w.collisions }

// Density returns the flocking density at each step so far.
func (w *World) Density() []float64 { return w.density }

// WallHits returns the number of wall crossings at each step so far.
func (w *World) WallHits() []int { return w.wallHits }

// Step advances the world by dt seconds. Each car flocks with its k nearest
// neighbors using the given rule weights.
//
// All cars first decide from the state of the previous step, then all cars
// move: the result does not depend on the order of the cars.
// Step reports whether all cars have reached the goal.
func (w *World) Step(dt float64, k int, weights Weights) bool {
	env := w.environment(weights)

	if len(w.nb) != len(w.cars) {
		w.nb = make([][]Neighbor, len(w.cars))
		w.dec = make([]Decision, len(w.cars))
	}

	// decide
	for i := range w.cars {
		w.nb[i] = w.Neighbors(i, k)
	}
	for i := range w.cars {
		w.dec[i] = w.cars[i].Decide(w.cars, w.nb[i], &env)
	}

	// move
	hits := 0
	for i := range w.cars {
		c := &w.cars[i]
		old := c.Pos
		c.Apply(w.dec[i])
		c.Update(dt)
		for _, wall := range w.walls {
			if wall.Crossed(old, c.Pos) {
				hits++
			}
		}
		if w.conf.Wrap {
			c.Pos = w.wrap(c.Pos)
		}
	}

	w.tick++
	w.collisions = append(w.collisions, w.countCollisions())
	w.density = append(w.density, w.flockingDensity())
	w.wallHits = append(w.wallHits, hits)

	done := true
	for i := range w.cars {
		done = done && w.cars[i].GoalReached
	}
	return done
}

// environment returns what cars look at during a step.
func (w *World) environment(weights Weights) Environment {
	env := Environment{
		Goal:          w.goal,
		Walls:         w.walls,
		Weights:       weights,
		WallAvoidance: w.conf.WallAvoidance,
		WallRadius:    w.conf.WallRadius,
		WallWeight:    w.conf.WallWeight,
	}
	if w.conf.Wrap {
		env.Vec = w.Vec
	}
	return env
}

// countCollisions returns the number of collisions that occurred during the last step.
//
// Cars overlap when their centers are closer than one car length (the length
// of the first car). A collision is only counted when two cars start
// overlapping, so a pair that stays close is counted once.
func (w *World) countCollisions() int {
	if len(w.cars) == 0 {
		return 0
	}
	l := w.cars[0].Length
	n := 0
	for i := range w.cars {
		c := &w.cars[i]
		for j := i + 1; j < len(w.cars); j++ {
			d := w.Dist(c.Pos, w.cars[j].Pos)
			switch {
			case c.Overlapping(j):
				if d > l {
					delete(c.overlap, j)
				}
			case d < l:
				if c.overlap == nil {
					c.overlap = make(map[int]struct{})
				}
				c.overlap[j] = struct{}{}
				n++
			}
		}
	}
	return n
}

// flockingDensity returns the mean squared distance between the cars and their center.
// Lower values mean a denser flock.
func (w *World) flockingDensity() float64 {
	if len(w.cars) == 0 {
		return 0
	}
	var sum Vec2
	for _, c := range w.cars {
		sum = sum.Add(c.Pos)
	}
	center := sum.Scale(1 / float64(len(w.cars)))

	var d float64
	for _, c := range w.cars {
		v := c.Pos.Sub(center)
		d += v.Dot(v)
	}
	return d / float64(len(w.cars))
}
