//go:build !nohdf5

package hdf5

import (
	"fmt"

	"gonum.org/v1/hdf5"
)

// A Loader sequentially loads rows of car records from an HDF5 dataset.
type Loader struct {
	i uint // index of current row
	n uint // total number of rows

	data []Record // data buffer

	file   *hdf5.File
	dset   *hdf5.Dataset
	fspace *hdf5.Dataspace
	mspace *hdf5.Dataspace
}

// NewLoader opens a dataset in an HDF5 file and returns an initialized loader.
func NewLoader(filepath, dataset string) (*Loader, error) {
	l := new(Loader)
	var err error
	l.file, err = hdf5.OpenFile(filepath, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, err
	}
	l.dset, err = l.file.OpenDataset(dataset)
	if err != nil {
		checkClose(&err, l.file)
		return nil, err
	}
	l.fspace = l.dset.Space()
	dims, _, err := l.fspace.SimpleExtentDims()
	if err != nil {
		checkClose(&err, l.fspace)
		checkClose(&err, l.dset)
		checkClose(&err, l.file)
		return nil, err
	}
	if len(dims) != 2 || dims[0] == 0 {
		err = fmt.Errorf("loader: expected 2 dimensions with at least one row, got %v", dims)
		checkClose(&err, l.fspace)
		checkClose(&err, l.dset)
		checkClose(&err, l.file)
		return nil, err
	}
	l.n = dims[0]

	l.mspace, err = hdf5.CreateSimpleDataspace(dims[1:], nil)
	if err != nil {
		checkClose(&err, l.fspace)
		checkClose(&err, l.dset)
		checkClose(&err, l.file)
		return nil, err
	}

	start := []uint{0, 0}
	count := []uint{1, dims[1]}
	if err := l.fspace.SelectHyperslab(start, nil, count, nil); err != nil {
		l.Close()
		return nil, err
	}

	l.data = make([]Record, dims[1])

	return l, nil
}

// Len returns the number of rows in the dataset.
func (l *Loader) Len() int { return int(l.n) }

// Seek sets the row loaded by the next call to Load.
// Negative indices count from the end.
func (l *Loader) Seek(i int) error {
	if i < 0 {
		i += int(l.n)
	}
	if i < 0 || i >= int(l.n) {
		return fmt.Errorf("loader: row %d out of range [0, %d)", i, l.n)
	}
	l.i = uint(i)
	return nil
}

// Load loads the next row of records
// and cycles when everything has already been loaded.
// The returned slice is only valid until the next call.
func (l *Loader) Load() ([]Record, error) {
	start := []uint{l.i, 0}
	if err := l.fspace.SetOffset(start); err != nil {
		return nil, err
	}
	l.i = (l.i + 1) % l.n

	if err := l.dset.ReadSubset(&l.data, l.mspace, l.fspace); err != nil {
		return nil, err
	}
	return l.data, nil
}

// Close releases the HDF5 objects held by the loader.
func (l *Loader) Close() (err error) {
	checkClose(&err, l.mspace)
	checkClose(&err, l.fspace)
	checkClose(&err, l.dset)
	checkClose(&err, l.file)
	return err
}
