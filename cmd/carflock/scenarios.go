package main

import (
	"fmt"
	"math/rand"

	"github.com/PrincetonUniversity/carflock"
)

// A builder creates the initial world of a scenario.
type builder func(conf *Config, rng *rand.Rand) (*carflock.World, error)

var scenarios = map[string]builder{
	"open":  openScenario,
	"goal":  goalScenario,
	"arena": arenaScenario,
	"torus": torusScenario,
	"hdf5":  hdf5Scenario,
}

// newScenario returns the scenario described by conf.
func newScenario(conf *Config, rng *rand.Rand) (*carflock.Scenario, error) {
	build, ok := scenarios[conf.Scenario]
	if !ok {
		return nil, fmt.Errorf("bad scenario %q", conf.Scenario)
	}
	weights, err := carflock.WeightsFromSlice(conf.Weights)
	if err != nil {
		return nil, err
	}
	return &carflock.Scenario{
		Build:          func() (*carflock.World, error) { return build(conf, rng) },
		StepsPerSecond: conf.StepsPerSecond,
		NeighborCount:  conf.NeighborCount,
		Weights:        weights,
		SimulationTime: conf.SimulationTime,
		MaxSteps:       conf.MaxSteps,
	}, nil
}

// openScenario spreads cars over the whole world, with random headings.
// There is no goal.
func openScenario(conf *Config, rng *rand.Rand) (*carflock.World, error) {
	w, err := carflock.NewWorld(conf.worldConfig())
	if err != nil {
		return nil, err
	}
	return w, addRandomCars(w, conf, rng, conf.WorldWidth)
}

// goalScenario spreads cars over the left third of the world
// and places the goal near the right edge.
func goalScenario(conf *Config, rng *rand.Rand) (*carflock.World, error) {
	w, err := carflock.NewWorld(conf.worldConfig())
	if err != nil {
		return nil, err
	}
	if err := addRandomCars(w, conf, rng, conf.WorldWidth/3); err != nil {
		return nil, err
	}
	w.SetGoal(carflock.Goal{
		Pos:    carflock.Vec2{X: conf.WorldWidth * 5 / 6, Y: conf.WorldHeight / 2},
		Active: true,
	})
	return w, nil
}

// arenaScenario is the goal scenario enclosed by walls that cars avoid.
func arenaScenario(conf *Config, rng *rand.Rand) (*carflock.World, error) {
	wc := conf.worldConfig()
	wc.WallAvoidance = true
	w, err := carflock.NewWorld(wc)
	if err != nil {
		return nil, err
	}
	W, H := conf.WorldWidth, conf.WorldHeight
	for _, e := range [][4]float64{
		{0, 0, W, 0},
		{W, 0, W, H},
		{W, H, 0, H},
		{0, H, 0, 0},
	} {
		wall, err := carflock.NewWall(e[0], e[1], e[2], e[3])
		if err != nil {
			return nil, err
		}
		if err := w.AddWall(wall); err != nil {
			return nil, err
		}
	}
	if err := addRandomCars(w, conf, rng, W/3); err != nil {
		return nil, err
	}
	w.SetGoal(carflock.Goal{Pos: carflock.Vec2{X: W * 5 / 6, Y: H / 2}, Active: true})
	return w, nil
}

// torusScenario is the open scenario in a world that wraps around its edges.
func torusScenario(conf *Config, rng *rand.Rand) (*carflock.World, error) {
	wc := conf.worldConfig()
	wc.Wrap = true
	w, err := carflock.NewWorld(wc)
	if err != nil {
		return nil, err
	}
	return w, addRandomCars(w, conf, rng, conf.WorldWidth)
}

// hdf5Scenario starts from the cars of a previous run,
// including whether they knew the goal was reached. There is no goal.
func hdf5Scenario(conf *Config, rng *rand.Rand) (*carflock.World, error) {
	cars, err := loadCars(conf.Input, conf.Frame, conf.carParams())
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", conf.Input, err)
	}
	w, err := carflock.NewWorld(conf.worldConfig())
	if err != nil {
		return nil, err
	}
	for _, c := range cars {
		if _, err := w.AddCar(c); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// addRandomCars adds conf.CarCount cars with random headings, uniformly
// placed in [1, xmax) × [1, height). They start accelerating at 2 m/s².
func addRandomCars(w *carflock.World, conf *Config, rng *rand.Rand, xmax float64) error {
	for i := 0; i < conf.CarCount; i++ {
		s := carflock.State{
			Pos: carflock.Vec2{
				X: 1 + rng.Float64()*(xmax-1),
				Y: 1 + rng.Float64()*(conf.WorldHeight-1),
			},
			Dir:          carflock.Polar(carflock.Radians(360*rng.Float64()), 1),
			Acceleration: 2,
		}
		c, err := carflock.NewCar(conf.carParams(), s)
		if err != nil {
			return err
		}
		if _, err := w.AddCar(c); err != nil {
			return err
		}
	}
	return nil
}
