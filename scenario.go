package carflock

import (
	"errors"
	"fmt"
	"math"
)

// A Scenario gathers everything needed to run a simulation.
//
// A run has two parts. While the goal of the world is active and not
// reached by every car, the world is stepped and the steps are counted.
// Then the world is stepped for SimulationTime more seconds.
type Scenario struct {
	// Build returns the initial world, with its cars, walls and goal.
	Build func() (*World, error)

	StepsPerSecond int     // number of steps per simulated second
	NeighborCount  int     // number of neighbors each car flocks with
	Weights        Weights // weights of the flocking rules
	SimulationTime float64 // seconds simulated once the goal is reached

	// MaxSteps limits the number of steps spent reaching the goal.
	// Zero means no limit.
	MaxSteps int
}

// A Result contains the performance measures of a run.
type Result struct {
	Collisions  []int     // new collisions per step
	Density     []float64 // flocking density per step
	WallHits    []int     // wall crossings per step
	StepsToGoal int       // steps until every car reached the goal, 0 without goal
	GoalReached bool      // false if MaxSteps was hit first
}

// Validate checks the parameters of the scenario.
func (s *Scenario) Validate() error {
	var errs []error
	if s.Build == nil {
		errs = append(errs, errors.New("carflock: scenario has no world builder"))
	}
	if s.StepsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("carflock: steps per second must be positive, got %d", s.StepsPerSecond))
	}
	if s.NeighborCount < 1 {
		errs = append(errs, fmt.Errorf("%w: %d (must be at least 1)", ErrNeighborCount, s.NeighborCount))
	}
	if s.SimulationTime < 0 || math.IsNaN(s.SimulationTime) {
		errs = append(errs, fmt.Errorf("carflock: simulation time must not be negative, got %g", s.SimulationTime))
	}
	if s.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("carflock: max steps must not be negative, got %d", s.MaxSteps))
	}
	return errors.Join(errs...)
}

// Dt returns the duration of a step in seconds.
func (s *Scenario) Dt() float64 {
	return 1 / float64(s.StepsPerSecond)
}

// Setup validates the scenario, builds its world and checks that the world
// can be simulated with the scenario parameters.
func (s *Scenario) Setup() (*World, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	w, err := s.Build()
	if err != nil {
		return nil, fmt.Errorf("building world: %w", err)
	}
	if len(w.Cars()) == 0 {
		return nil, ErrEmptyWorld
	}
	if err := w.CheckNeighborCount(s.NeighborCount); err != nil {
		return nil, err
	}
	return w, nil
}

// Simulate sets up the scenario and runs it to completion.
func (s *Scenario) Simulate() (Result, error) {
	w, err := s.Setup()
	if err != nil {
		return Result{}, err
	}
	r := s.Start(w)
	for r.Next() {
	}
	return r.Result(), nil
}

// Start returns a run of the scenario on world w, which should come from Setup.
// Drivers call Next or Step until it returns false.
func (s *Scenario) Start(w *World) *Run {
	return &Run{
		s:       s,
		w:       w,
		seeking: w.Goal().Active,
		extra:   int(math.Round(s.SimulationTime * float64(s.StepsPerSecond))),
	}
}

// A Run is an ongoing simulation of a scenario.
type Run struct {
	s *Scenario
	w *World

	seeking bool // still trying to reach the goal
	reached bool // every car reached the goal
	toGoal  int  // steps taken while seeking
	after   int  // steps taken after seeking
	extra   int  // steps to take after seeking
}

// World returns the world being simulated.
func (r *Run) World() *World { return r.w }

// Done reports whether the run is complete.
func (r *Run) Done() bool {
	return !r.seeking && r.after >= r.extra
}

// Next advances the run by one step of nominal duration.
// It reports false, without stepping, once the run is complete.
func (r *Run) Next() bool {
	return r.Step(r.s.Dt())
}

// Step advances the run by dt seconds, which lets real-time drivers use the
// measured frame duration. It reports false, without stepping, once the run
// is complete.
func (r *Run) Step(dt float64) bool {
	if r.Done() {
		return false
	}
	reached := r.w.Step(dt, r.s.NeighborCount, r.s.Weights)
	if !r.seeking {
		r.after++
		return true
	}
	r.toGoal++
	switch {
	case reached:
		r.seeking, r.reached = false, true
	case r.s.MaxSteps > 0 && r.toGoal >= r.s.MaxSteps:
		r.seeking = false
	}
	return true
}

// Result returns the performance measures recorded so far.
func (r *Run) Result() Result {
	return Result{
		Collisions:  r.w.Collisions(),
		Density:     r.w.Density(),
		WallHits:    r.w.WallHits(),
		StepsToGoal: r.toGoal,
		GoalReached: r.reached || !r.w.Goal().Active,
	}
}
