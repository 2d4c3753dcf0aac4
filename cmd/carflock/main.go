// Command carflock runs flocking simulations of cars.
//
// # Usage
//
// The carflock command takes one optional argument:
//
//	carflock [config_file]
//
// It is the path to a TOML config file.
// If no config file is specified, the goal scenario
// with default parameters will run in an OpenGL window.
//
// # Config file
//
// The config file is written in TOML. Keys are the names of the fields
// of Config, e.g.
//
//	scenario = "arena"
//	display = "terminal"
//	carCount = 40
//	weights = [243, 27, 9, 0.4]
//
// Angles are given in degrees. If output is set, the simulation runs
// without display and is saved to that HDF5 file.
//
// # Interactive mode
//
// In interactive mode, the simulation can be paused/resumed with space.
// While in pause, pressing right arrow will perform a single step.
// Clicking moves the goal. Pressing Esc or closing the window will quit.
// In the OpenGL window, F toggles the display of forces, scrolling zooms
// and R resets the zoom.
//
// # Build tags
//
// The nogl and nohdf5 tags build the command without OpenGL or HDF5 support.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/PrincetonUniversity/carflock"
)

const usage = `Usage: carflock [config_file]

The first argument is optional and is the path to a TOML config file.
If no config file is specified, the goal scenario
with default parameters will run in an OpenGL window.
`

func init() {
	// Most OpenGL functions have to run from the main thread.
	// This is needed to arrange that main() runs on main thread.
	// See https://github.com/golang/go/wiki/LockOSThread for more info.
	runtime.LockOSThread()
}

func main() {
	var conf *Config
	var err error
	switch len(os.Args) {
	case 1:
		conf = DefaultConf
	case 2:
		conf, err = ParseConfig(os.Args[1])
	default:
		err = fmt.Errorf("%d arguments provided (0 required, 1 optional)\n\n%s", len(os.Args)-1, usage)
	}
	if err != nil {
		Fatal(err)
	}
	if err := conf.Validate(); err != nil {
		Fatal(err)
	}

	logger := newLogger()

	seed := conf.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s, err := newScenario(conf, rand.New(rand.NewSource(seed)))
	if err != nil {
		Fatal(err)
	}
	w, err := s.Setup()
	if err != nil {
		Fatal(err)
	}
	logger.Printf("%s scenario: %d cars, seed %d", conf.Scenario, len(w.Cars()), seed)

	// run interactively or not depending on config
	r := s.Start(w)
	var res carflock.Result
	switch {
	case conf.Output != "":
		res, err = RunHDF5(conf, r)
	case conf.Display == "opengl":
		res, err = RunOpenGL(conf, r, logger)
	case conf.Display == "terminal":
		res, err = RunTerminal(conf, r, logger)
	default:
		res, err = runHeadless(r)
	}
	if err != nil {
		Fatal(err)
	}
	logger.Print(summary(res))
}

// Fatal prints an error on the standard output and exits with a non-zero status.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}

// summary describes the performance measures of a run.
func summary(res carflock.Result) string {
	var collisions int
	for _, c := range res.Collisions {
		collisions += c
	}
	var density float64
	for _, d := range res.Density {
		density += d
	}
	if n := len(res.Density); n > 0 {
		density /= float64(n)
	}
	goal := fmt.Sprintf("goal reached after %d steps", res.StepsToGoal)
	if !res.GoalReached {
		goal = fmt.Sprintf("goal not reached after %d steps", res.StepsToGoal)
	} else if res.StepsToGoal == 0 {
		goal = "no goal"
	}
	return fmt.Sprintf("%d steps, %s, %d collisions, mean density %.1f m²", len(res.Density), goal, collisions, density)
}
