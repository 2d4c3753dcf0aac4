//go:build !nohdf5

package hdf5

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/PrincetonUniversity/carflock"
	"gonum.org/v1/hdf5"
)

// A Record is what is recorded in the HDF5 file for each car at each step.
// This structure is mapped to a compound datatype in HDF5 so member names are important.
type Record struct {
	Pos           carflock.Vec2 // position of the center
	Dir           carflock.Vec2 // unit heading
	Velocity      float64
	SteeringAngle float64
	Acceleration  float64
	SteeringRate  float64
	Force         carflock.Vec2 // desired direction of the last step
	GoalReached   int32         // 1 once the car knows the goal was reached
}

// NewRecord returns the record of car c.
func NewRecord(c *carflock.Car) Record {
	r := Record{
		Pos:           c.Pos,
		Dir:           c.Dir,
		Velocity:      c.Velocity,
		SteeringAngle: c.SteeringAngle,
		Acceleration:  c.Acceleration,
		SteeringRate:  c.SteeringRate,
		Force:         c.Force,
	}
	if c.GoalReached {
		r.GoalReached = 1
	}
	return r
}

// State returns the kinematic state stored in the record.
func (r Record) State() carflock.State {
	return carflock.State{
		Pos:           r.Pos,
		Dir:           r.Dir,
		Velocity:      r.Velocity,
		SteeringAngle: r.SteeringAngle,
		Acceleration:  r.Acceleration,
		SteeringRate:  r.SteeringRate,
	}
}

// Car returns a car with parameters p restarting from the record.
// The goal-reached flag and the last force are restored with the state.
func (r Record) Car(p carflock.Params) (carflock.Car, error) {
	c, err := carflock.NewCar(p, r.State())
	if err != nil {
		return c, err
	}
	c.Force = r.Force
	c.GoalReached = r.GoalReached != 0
	return c, nil
}

// A Dataset stipulates how to generate data and where to store them in the HDF5 file.
type Dataset struct {
	// Name the name of the dataset in the HDF5 file.
	Name string

	// Val is a value of the same concrete type as the underlying type of the data.
	Val interface{}

	// Dims are the dimensions of the data for a single step.
	Dims []int

	// Data is a function that produces the data of the current step
	// as a pointer to a slice of row-major concrete values, or to a single value.
	Data func(w *carflock.World) interface{}

	// Initial records the world before the first step too.
	Initial bool

	rows []interface{}

	dset   *hdf5.Dataset
	fspace *hdf5.Dataspace
	mspace *hdf5.Dataspace
}

// Config holds the parameters of the HDF5 driver.
type Config struct {
	Output   string      // path of output file
	Params   interface{} // struct whose fields are saved as attributes of the "config" dataset
	Progress io.Writer   // receives the step count while running, may be nil
	Datasets []*Dataset  // list of datasets, DefaultDatasets if nil
}

// DefaultDatasets returns the car states and the three time series of a run.
func DefaultDatasets(n int) []*Dataset {
	return []*Dataset{
		{
			Name:    "cars",
			Val:     Record{},
			Dims:    []int{n},
			Initial: true,
			Data: func(w *carflock.World) interface{} {
				cars := w.Cars()
				rec := make([]Record, len(cars))
				for i := range cars {
					rec[i] = NewRecord(&cars[i])
				}
				return &rec
			},
		},
		{
			Name: "collisions",
			Val:  int64(0),
			Data: func(w *carflock.World) interface{} {
				c := w.Collisions()
				v := int64(c[len(c)-1])
				return &v
			},
		},
		{
			Name: "density",
			Val:  0.0,
			Data: func(w *carflock.World) interface{} {
				d := w.Density()
				v := d[len(d)-1]
				return &v
			},
		},
		{
			Name: "wallhits",
			Val:  int64(0),
			Data: func(w *carflock.World) interface{} {
				h := w.WallHits()
				v := int64(h[len(h)-1])
				return &v
			},
		},
	}
}

// Run runs a simulation to completion and saves data to an HDF5 file.
// Data are kept in memory during the run since the number of steps
// needed to reach the goal is not known in advance.
func Run(r *carflock.Run, conf *Config) (res carflock.Result, err error) {
	w := r.World()
	datasets := conf.Datasets
	if datasets == nil {
		datasets = DefaultDatasets(len(w.Cars()))
	}

	for _, d := range datasets {
		if d.Initial {
			d.rows = append(d.rows, d.Data(w))
		}
	}
	for k := 1; r.Next(); k++ {
		if conf.Progress != nil && k%100 == 0 {
			fmt.Fprintf(conf.Progress, "\rstep %d", k)
		}
		for _, d := range datasets {
			d.rows = append(d.rows, d.Data(w))
		}
	}
	if conf.Progress != nil {
		fmt.Fprintf(conf.Progress, "\rstep %d\n", w.Tick())
	}
	res = r.Result()

	if err := os.MkdirAll(filepath.Dir(conf.Output), 0755); err != nil {
		return res, err
	}

	file, err := hdf5.CreateFile(conf.Output, hdf5.F_ACC_TRUNC)
	if err != nil {
		return res, err
	}
	defer checkClose(&err, file)

	if err := saveConfig(file, conf.Params); err != nil {
		return res, fmt.Errorf("saving config: %w", err)
	}
	if err := saveWalls(file, w.Walls()); err != nil {
		return res, fmt.Errorf("saving walls: %w", err)
	}

	for _, d := range datasets {
		if err := d.save(file); err != nil {
			return res, fmt.Errorf("saving %s: %w", d.Name, err)
		}
	}
	return res, nil
}

// save writes the recorded rows of d to file.
func (d *Dataset) save(file *hdf5.File) (err error) {
	if err := d.init(file, len(d.rows)); err != nil {
		return err
	}
	defer checkClose(&err, d)

	for k, row := range d.rows {
		start := make([]uint, len(d.Dims)+1)
		start[0] = uint(k)
		if err := d.fspace.SetOffset(start); err != nil {
			return err
		}
		if err := d.dset.WriteSubset(row, d.mspace, d.fspace); err != nil {
			return err
		}
	}
	d.rows = nil
	return nil
}

// saveConfig creates a "config" dataset with a null dataspace whose attributes
// reflect the whole configuration plus some other appropriate metadata.
func saveConfig(file *hdf5.File, params interface{}) (err error) {
	null, err := hdf5.CreateDataspace(hdf5.S_NULL)
	if err != nil {
		return err
	}
	defer checkClose(&err, null)

	anytype, err := hdf5.NewDatatypeFromValue(0)
	if err != nil {
		return err
	}
	defer checkClose(&err, anytype)

	dset, err := file.CreateDataset("config", anytype, null)
	if err != nil {
		return err
	}
	defer checkClose(&err, dset)

	now := time.Now().String()
	if err := writeAttr(dset, "Time", &now, ""); err != nil {
		return err
	}

	if params == nil {
		return nil
	}
	v := reflect.Indirect(reflect.ValueOf(params))
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("hdf5: config params must be a struct, got %s", v.Kind())
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		if !f.IsExported() {
			continue
		}
		if err := saveField(dset, f.Name, v.Field(i)); err != nil {
			return fmt.Errorf("attribute %s: %w", f.Name, err)
		}
	}
	return nil
}

// saveField stores a config field as an attribute.
// Booleans are stored as 0 or 1, slices of numbers as 1-D attributes,
// and fields of other kinds are skipped.
func saveField(dset *hdf5.Dataset, name string, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Bool:
		var x int64
		if v.Bool() {
			x = 1
		}
		return writeAttr(dset, name, &x, int64(0))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		x := v.Int()
		return writeAttr(dset, name, &x, int64(0))
	case reflect.Float32, reflect.Float64:
		x := v.Float()
		return writeAttr(dset, name, &x, 0.0)
	case reflect.String:
		x := v.String()
		return writeAttr(dset, name, &x, "")
	case reflect.Slice, reflect.Array:
		switch v.Type().Elem().Kind() {
		case reflect.Float32, reflect.Float64:
		default:
			return nil
		}
		if v.Len() == 0 {
			return nil
		}
		x := make([]float64, v.Len())
		for i := range x {
			x[i] = v.Index(i).Float()
		}
		return writeAttr(dset, name, &x, 0.0)
	}
	return nil
}

// writeAttr creates attribute name on dset and writes data into it.
// Data is a pointer to a value, or to a slice, of the same type as val.
func writeAttr(dset *hdf5.Dataset, name string, data, val interface{}) (err error) {
	dtype, err := hdf5.NewDatatypeFromValue(val)
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	var space *hdf5.Dataspace
	if s, ok := data.(*[]float64); ok {
		space, err = hdf5.CreateSimpleDataspace([]uint{uint(len(*s))}, nil)
	} else {
		space, err = hdf5.CreateDataspace(hdf5.S_SCALAR)
	}
	if err != nil {
		return err
	}
	defer checkClose(&err, space)

	attr, err := dset.CreateAttribute(name, dtype, space)
	if err != nil {
		return err
	}
	defer checkClose(&err, attr)

	return attr.Write(data, dtype)
}

// saveWalls creates a "walls" dataset with the endpoints of every wall.
func saveWalls(file *hdf5.File, walls []carflock.Wall) (err error) {
	if len(walls) == 0 {
		return nil
	}
	data := make([]float64, 0, 4*len(walls))
	for _, w := range walls {
		a, b := w.Endpoints()
		data = append(data, a.X, a.Y, b.X, b.Y)
	}

	dtype, err := hdf5.NewDatatypeFromValue(0.0)
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	space, err := hdf5.CreateSimpleDataspace([]uint{uint(len(walls)), 4}, nil)
	if err != nil {
		return err
	}
	defer checkClose(&err, space)

	dset, err := file.CreateDataset("walls", dtype, space)
	if err != nil {
		return err
	}
	defer checkClose(&err, dset)

	return dset.Write(&data)
}

// init creates the dataset for the given number of steps.
func (d *Dataset) init(file *hdf5.File, steps int) (err error) {
	dtype, err := hdf5.NewDatatypeFromValue(d.Val)
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	udims := make([]uint, len(d.Dims)+1)
	udims[0] = uint(steps)
	for i, n := range d.Dims {
		udims[i+1] = uint(n)
	}

	d.fspace, err = hdf5.CreateSimpleDataspace(udims, nil)
	if err != nil {
		return err
	}

	if steps > 0 {
		start := make([]uint, len(udims))
		count := make([]uint, len(udims))
		copy(count, udims)
		count[0] = 1

		if err := d.fspace.SelectHyperslab(start, nil, count, nil); err != nil {
			checkClose(&err, d.fspace)
			return err
		}
	}

	if len(d.Dims) == 0 {
		d.mspace, err = hdf5.CreateDataspace(hdf5.S_SCALAR)
	} else {
		d.mspace, err = hdf5.CreateSimpleDataspace(udims[1:], nil)
	}
	if err != nil {
		checkClose(&err, d.fspace)
		return err
	}

	d.dset, err = file.CreateDataset(d.Name, dtype, d.fspace)
	if err != nil {
		checkClose(&err, d.fspace)
		checkClose(&err, d.mspace)
	}

	return err
}

// Close closes the HDF5 dataset and Dataspaces.
func (d *Dataset) Close() error {
	if err := d.dset.Close(); err != nil {
		return err
	}
	if err := d.mspace.Close(); err != nil {
		return err
	}
	if err := d.fspace.Close(); err != nil {
		return err
	}
	return nil
}

// checkClose checks for errors in deferred calls.
func checkClose(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}
