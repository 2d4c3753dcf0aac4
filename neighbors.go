package carflock

import (
	"fmt"
	"math"
	"sort"
)

// Neighbors returns the k cars closest to car i, sorted by increasing distance.
// Car i is never its own neighbor, so at most len(Cars())-1 neighbors are returned.
// Cars at equal distance keep their index order.
//
// Each query is a bounded sorted insertion over all cars: O(n·k) per car
// and O(n²·k) per step. This is fine for tens of cars; larger swarms
// would need a spatial index.
func (w *World) Neighbors(i, k int) []Neighbor {
	k = min(k, len(w.cars)-1)
	if k <= 0 {
		return nil
	}

	// start with k placeholders infinitely far away
	nb := make([]Neighbor, k)
	for m := range nb {
		nb[m] = Neighbor{Index: -1, Dist: math.Inf(1)}
	}

	p := w.cars[i].Pos
	for j := range w.cars {
		if j == i {
			continue
		}
		d := w.Dist(p, w.cars[j].Pos)
		m := sort.Search(k, func(m int) bool { return nb[m].Dist > d })
		if m == k {
			continue
		}
		copy(nb[m+1:], nb[m:k-1])
		nb[m] = Neighbor{Index: j, Dist: d}
	}

	// drop remaining placeholders
	n := k
	for n > 0 && nb[n-1].Index < 0 {
		n--
	}
	return nb[:n]
}

// CheckNeighborCount returns an error unless every car can have k neighbors.
// Flocking rules averaging over neighbors need at least one of them.
func (w *World) CheckNeighborCount(k int) error {
	if k < 1 {
		return fmt.Errorf("%w: %d (must be at least 1)", ErrNeighborCount, k)
	}
	if len(w.cars) < k+1 {
		return fmt.Errorf("%w: %d neighbors requires at least %d cars, got %d", ErrNeighborCount, k, k+1, len(w.cars))
	}
	return nil
}

// Dist returns the distance between a and b.
// In a wrapping world it is the shortest distance across the edges.
func (w *World) Dist(a, b Vec2) float64 {
	return w.Vec(a, b).Length()
}

// Vec returns the vector pointing from u to v.
// In a wrapping world it is the shortest such vector across the edges.
func (w *World) Vec(u, v Vec2) Vec2 {
	d := v.Sub(u)
	if w.conf.Wrap {
		d.X = periodic(d.X, w.conf.Width)
		d.Y = periodic(d.Y, w.conf.Height)
	}
	return d
}

// periodic folds a coordinate difference into (-size/2, size/2].
func periodic(x, size float64) float64 {
	x = math.Mod(x, size)
	if 2*x <= -size {
		x += size
	} else if 2*x > size {
		x -= size
	}
	return x
}

// wrap moves a position back into [0, width) × [0, height).
func (w *World) wrap(p Vec2) Vec2 {
	p.X = fold(p.X, w.conf.Width)
	p.Y = fold(p.Y, w.conf.Height)
	return p
}

// fold moves x back into [0, size).
func fold(x, size float64) float64 {
	x = math.Mod(x, size)
	if x < 0 {
		x += size
	}
	// a tiny negative x rounds up to size
	if x >= size {
		x = 0
	}
	return x
}
