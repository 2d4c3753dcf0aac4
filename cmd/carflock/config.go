package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/PrincetonUniversity/carflock"
)

// Config holds the various parameters required for running a simulation.
type Config struct {
	// Output is either a filename (path) for the HDF5 output file,
	// or the empty string to show the simulation on the display.
	Output string

	Display  string // possible values: opengl, terminal, none
	Scenario string // possible values: open, goal, arena, torus, hdf5
	Seed     int64  // seed of the random placement, 0 for a random seed

	// Initial states of the hdf5 scenario
	Input string // path of an HDF5 file written by a previous run
	Frame int    // row of its cars dataset, negative counts from the end

	// Simulation parameters
	StepsPerSecond int       // unit: 1/s
	CarCount       int       // number of cars (random scenarios only)
	NeighborCount  int       // number of neighbors each car flocks with
	SimulationTime float64   // unit: s, simulated once the goal is reached
	MaxSteps       int       // steps allowed to reach the goal, 0 for no limit
	Weights        []float64 // separation, alignment, cohesion, goal

	// World parameters
	WorldWidth  float64 // unit: m
	WorldHeight float64 // unit: m
	WallRadius  float64 // unit: m
	WallWeight  float64 // unit: 1

	// Car parameters
	CarLength           float64 // unit: m
	CarWidth            float64 // unit: m
	CarWheelbase        float64 // unit: m
	CarMaxVelocity      float64 // unit: m/s
	CarMaxAcceleration  float64 // unit: m/s²
	CarMaxSteeringAngle float64 // unit: degree
	CarMaxSteeringRate  float64 // unit: degree/s

	// Display parameters
	Pause      bool // start paused?
	ShowForces bool // draw the desired direction of every car (opengl only)
	Sound      bool // chime on collisions
}

// DefaultConf are the default parameters.
var DefaultConf = &Config{
	Output:              "",
	Display:             "opengl",
	Scenario:            "goal",
	Frame:               -1,
	StepsPerSecond:      50,
	CarCount:            25,
	NeighborCount:       6,
	SimulationTime:      30,
	Weights:             []float64{243, 27, 9, 0.4},
	WorldWidth:          300,
	WorldHeight:         100,
	WallRadius:          20,
	WallWeight:          50,
	CarLength:           4.9,
	CarWidth:            1.8,
	CarWheelbase:        2.8,
	CarMaxVelocity:      5,
	CarMaxAcceleration:  5,
	CarMaxSteeringAngle: 37,
	CarMaxSteeringRate:  37,
}

// ParseConfig parses the TOML config file whose path is provided.
func ParseConfig(path string) (*Config, error) {
	// config file overwrites default parameters
	conf := *DefaultConf
	conf.Weights = nil
	md, err := toml.DecodeFile(path, &conf)
	if err != nil {
		return nil, err
	}
	if conf.Weights == nil {
		conf.Weights = append([]float64(nil), DefaultConf.Weights...)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys %s", path, strings.Join(names, ", "))
	}
	return &conf, nil
}

// Validate reports every invalid parameter.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(c.Display == "opengl" || c.Display == "terminal" || c.Display == "none" || c.Output != "",
		"bad display %q", c.Display)
	_, ok := scenarios[c.Scenario]
	check(ok, "bad scenario %q", c.Scenario)
	check(c.Scenario != "hdf5" || c.Input != "", "the hdf5 scenario needs an input file")
	check(c.StepsPerSecond > 0, "steps per second must be positive, got %d", c.StepsPerSecond)
	check(c.Scenario == "hdf5" || c.CarCount > c.NeighborCount,
		"%d cars cannot have %d neighbors each", c.CarCount, c.NeighborCount)
	check(c.NeighborCount >= 1, "neighbor count must be at least 1, got %d", c.NeighborCount)
	check(c.SimulationTime >= 0, "simulation time must not be negative, got %g", c.SimulationTime)
	check(c.MaxSteps >= 0, "max steps must not be negative, got %d", c.MaxSteps)
	check(c.WorldWidth > 0 && c.WorldHeight > 0, "bad world size %gx%g", c.WorldWidth, c.WorldHeight)
	check(c.WallRadius > 0, "wall radius must be positive, got %g", c.WallRadius)
	if _, err := carflock.WeightsFromSlice(c.Weights); err != nil {
		errs = append(errs, err)
	}
	if _, err := carflock.NewCar(c.carParams(), carflock.State{}); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// carParams returns the car parameters, angles in radians.
func (c *Config) carParams() carflock.Params {
	return carflock.Params{
		Length:           c.CarLength,
		Width:            c.CarWidth,
		Wheelbase:        c.CarWheelbase,
		MaxVelocity:      c.CarMaxVelocity,
		MaxAcceleration:  c.CarMaxAcceleration,
		MaxSteeringAngle: carflock.Radians(c.CarMaxSteeringAngle),
		MaxSteeringRate:  carflock.Radians(c.CarMaxSteeringRate),
	}
}

// worldConfig returns the configuration of a world without walls.
func (c *Config) worldConfig() carflock.Config {
	return carflock.Config{
		Width:      c.WorldWidth,
		Height:     c.WorldHeight,
		WallRadius: c.WallRadius,
		WallWeight: c.WallWeight,
	}
}
