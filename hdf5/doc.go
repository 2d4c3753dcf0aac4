// Package hdf5 records carflock simulations in HDF5 files and loads them back.
//
// A file written by Run contains the following datasets:
//
//	cars        (T+1)×N compound records, the initial state then one row per step
//	collisions  T new collisions per step
//	density     T flocking density per step
//	wallhits    T wall crossings per step
//	walls       W×4 wall endpoints x1, y1, x2, y2
//	config      no data, the run parameters are stored as attributes
//
// The package needs the HDF5 C library. Build with the nohdf5 tag to leave it out.
package hdf5
