//go:build nohdf5

package main

import (
	"fmt"
	"os"

	"github.com/PrincetonUniversity/carflock"
)

// RunHDF5 returns an error.
func RunHDF5(conf *Config, r *carflock.Run) (carflock.Result, error) {
	return carflock.Result{}, fmt.Errorf("%s was built without HDF5 support\n"+
		"You must leave the 'output' key of the config file empty.", os.Args[0])
}

// loadCars returns an error.
func loadCars(path string, frame int, p carflock.Params) ([]carflock.Car, error) {
	return nil, fmt.Errorf("%s was built without HDF5 support", os.Args[0])
}
