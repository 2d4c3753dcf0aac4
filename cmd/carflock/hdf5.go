//go:build !nohdf5

package main

import (
	"os"

	"github.com/PrincetonUniversity/carflock"
	"github.com/PrincetonUniversity/carflock/hdf5"
)

// RunHDF5 runs a simulation to completion and saves data to an HDF5 file.
func RunHDF5(conf *Config, r *carflock.Run) (carflock.Result, error) {
	return hdf5.Run(r, &hdf5.Config{
		Output:   conf.Output,
		Params:   conf,
		Progress: os.Stdout,
	})
}

// loadCars loads the cars of a row of a previous output file.
func loadCars(path string, frame int, p carflock.Params) (cars []carflock.Car, err error) {
	l, err := hdf5.NewLoader(path, "cars")
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := l.Close(); err == nil {
			err = cerr
		}
	}()

	if err := l.Seek(frame); err != nil {
		return nil, err
	}
	rec, err := l.Load()
	if err != nil {
		return nil, err
	}
	cars = make([]carflock.Car, len(rec))
	for i, r := range rec {
		if cars[i], err = r.Car(p); err != nil {
			return nil, err
		}
	}
	return cars, nil
}
