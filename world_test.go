package carflock

import (
	"errors"
	"math"
	"testing"
)

func mustWorld(t *testing.T, conf Config, cars ...Car) *World {
	t.Helper()
	w, err := NewWorld(conf)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	for _, c := range cars {
		if _, err := w.AddCar(c); err != nil {
			t.Fatalf("AddCar: %v", err)
		}
	}
	return w
}

func TestNewWorldValidation(t *testing.T) {
	bad := []Config{
		{Width: 0, Height: 10},
		{Width: 10, Height: -1},
		{Width: 10, Height: 10, WallAvoidance: true},
	}
	for _, c := range bad {
		if _, err := NewWorld(c); !errors.Is(err, ErrInvalidWorld) {
			t.Errorf("NewWorld(%+v): expected ErrInvalidWorld, got=%v", c, err)
		}
	}
}

func TestCollisionCountedOnce(t *testing.T) {
	w := mustWorld(t, square,
		mustCar(t, rigid, State{Pos: Vec2{0, 0}, Dir: Vec2{1, 0}}),
		mustCar(t, rigid, State{Pos: Vec2{10, 0}, Dir: Vec2{-1, 0}, Velocity: 5}),
	)
	for i := 0; i < 6; i++ {
		w.Step(0.5, 1, Weights{1, 1, 1, 0})
	}
	// car 1 is at 7.5, 5, 2.5, 0, -2.5 and -5
	want := []int{0, 0, 1, 0, 0, 0}
	got := w.Collisions()
	if len(got) != len(want) {
		t.Fatalf("expected %d steps of collisions, got=%v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected collisions %v, got=%v", want, got)
		}
	}
	if w.Cars()[0].Overlapping(1) {
		t.Fatal("expected overlap to be forgotten once the cars are apart")
	}
}

func TestGoalReachedSpreads(t *testing.T) {
	a := mustCar(t, testParams, State{Pos: Vec2{0, 0}})
	a.GoalReached = true
	b := mustCar(t, testParams, State{Pos: Vec2{10, 0}})
	c := mustCar(t, testParams, State{Pos: Vec2{100, 0}})
	w := mustWorld(t, Config{Width: 200, Height: 200}, a, b, c)
	w.SetGoal(Goal{Pos: Vec2{1000, 1000}, Active: true})

	if done := w.Step(0.1, 1, Weights{1, 1, 1, 1}); done {
		t.Fatal("expected car c not to have reached the goal yet")
	}
	cars := w.Cars()
	if !cars[1].GoalReached {
		t.Fatal("expected b to reach the goal through its neighbor a")
	}
	if cars[2].GoalReached {
		t.Fatal("expected c to only learn about the goal from b at the next step")
	}
	if done := w.Step(0.1, 1, Weights{1, 1, 1, 1}); !done {
		t.Fatal("expected every car to have reached the goal after two steps")
	}
}

func TestStepIndependentOfOrder(t *testing.T) {
	cars := []Car{
		mustCar(t, testParams, State{Pos: Vec2{10, 10}, Dir: Vec2{1, 0}, Velocity: 3, Acceleration: 1}),
		mustCar(t, testParams, State{Pos: Vec2{14, 11}, Dir: Vec2{0, 1}, Velocity: 2, Acceleration: 2}),
		mustCar(t, testParams, State{Pos: Vec2{20, 25}, Dir: Vec2{-1, 1}, Velocity: 1}),
		mustCar(t, testParams, State{Pos: Vec2{3, 30}, Dir: Vec2{1, -1}, Velocity: 4, Acceleration: -1}),
	}
	forward := mustWorld(t, square, cars...)
	backward := mustWorld(t, square)
	for i := len(cars) - 1; i >= 0; i-- {
		if _, err := backward.AddCar(cars[i]); err != nil {
			t.Fatal(err)
		}
	}
	goal := Goal{Pos: Vec2{80, 50}, Active: true}
	forward.SetGoal(goal)
	backward.SetGoal(goal)

	weights := Weights{243, 27, 9, 0.4}
	for i := 0; i < 50; i++ {
		forward.Step(0.02, 2, weights)
		backward.Step(0.02, 2, weights)
	}
	n := len(cars)
	for i := range cars {
		f, b := forward.Cars()[i], backward.Cars()[n-1-i]
		if f.State != b.State {
			t.Fatalf("car %d: state depends on order: %+v vs %+v", i, f.State, b.State)
		}
	}
	for i, d := range forward.Density() {
		if !near(d, backward.Density()[i]) {
			t.Fatalf("step %d: density depends on order: %g vs %g", i, d, backward.Density()[i])
		}
	}
}

func TestTwoCarsOpenWorld(t *testing.T) {
	w := mustWorld(t, square,
		mustCar(t, testParams, State{Pos: Vec2{20, 30}}),
		mustCar(t, testParams, State{Pos: Vec2{60, 70}}),
	)
	for i := 0; i < 50; i++ {
		w.Step(0.1, 1, Weights{1, 1, 1, 0})
	}
	for i, c := range w.Cars() {
		if math.IsNaN(c.Pos.X) || math.IsNaN(c.Pos.Y) || math.IsInf(c.Pos.X, 0) || math.IsInf(c.Pos.Y, 0) {
			t.Fatalf("car %d has a non-finite position %v", i, c.Pos)
		}
	}
	if n := len(w.Density()); n != 50 {
		t.Fatalf("expected 50 density values, got=%d", n)
	}
	if n := len(w.Collisions()); n != 50 {
		t.Fatalf("expected 50 collision values, got=%d", n)
	}
	if w.Tick() != 50 {
		t.Fatalf("expected tick 50, got=%d", w.Tick())
	}
}

func TestFlockingDensity(t *testing.T) {
	w := mustWorld(t, square,
		mustCar(t, rigid, State{Pos: Vec2{0, 0}}),
		mustCar(t, rigid, State{Pos: Vec2{4, 0}}),
		mustCar(t, rigid, State{Pos: Vec2{2, 6}}),
	)
	w.Step(0.1, 1, Weights{})
	// center is (2, 2): squared distances are 8, 8 and 16
	if got := w.Density()[0]; !near(got, 32.0/3) {
		t.Fatalf("expected density %g, got=%g", 32.0/3, got)
	}
}

func TestWrapAround(t *testing.T) {
	torus := square
	torus.Wrap = true
	w := mustWorld(t, torus,
		mustCar(t, rigid, State{Pos: Vec2{99, 50}, Dir: Vec2{1, 0}, Velocity: 5}),
		mustCar(t, rigid, State{Pos: Vec2{50, 1}, Dir: Vec2{0, -1}, Velocity: 5}),
	)
	w.Step(1, 1, Weights{})
	if got := w.Cars()[0].Pos; !nearVec(got, Vec2{4, 50}) {
		t.Fatalf("expected car 0 to wrap to (4, 50), got=%v", got)
	}
	if got := w.Cars()[1].Pos; !nearVec(got, Vec2{50, 96}) {
		t.Fatalf("expected car 1 to wrap to (50, 96), got=%v", got)
	}
}

func TestWallHits(t *testing.T) {
	w := mustWorld(t, square,
		mustCar(t, rigid, State{Pos: Vec2{8, 50}, Dir: Vec2{1, 0}, Velocity: 5}),
		mustCar(t, rigid, State{Pos: Vec2{80, 80}}),
	)
	wall := mustWall(t, 10, 0, 10, 100)
	if err := w.AddWall(wall); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		w.Step(0.5, 1, Weights{})
	}
	// 8 -> 10.5 crosses the wall, the following steps stay beyond it
	want := []int{1, 0, 0, 0}
	for i, n := range w.WallHits() {
		if n != want[i] {
			t.Fatalf("expected wall hits %v, got=%v", want, w.WallHits())
		}
	}
}

func TestWallAvoidanceSteersAway(t *testing.T) {
	conf := Config{Width: 100, Height: 100, WallAvoidance: true, WallRadius: 10, WallWeight: 1}
	w := mustWorld(t, conf,
		mustCar(t, testParams, State{Pos: Vec2{50, 95}, Dir: Vec2{1, 0}, Velocity: 1}),
		mustCar(t, testParams, State{Pos: Vec2{10, 10}}),
	)
	wall := mustWall(t, 0, 100, 100, 100)
	if err := w.AddWall(wall); err != nil {
		t.Fatal(err)
	}
	w.Step(0.1, 1, Weights{})
	c := w.Cars()[0]
	if !nearVec(c.Force, Vec2{0, -5}) {
		t.Fatalf("expected wall force (0, -5), got=%v", c.Force)
	}
	if c.SteeringRate != -c.MaxSteeringRate {
		t.Fatalf("expected to steer right, away from the wall, got=%g", c.SteeringRate)
	}
}

func TestMutationsBeforeRun(t *testing.T) {
	w := mustWorld(t, square,
		mustCar(t, rigid, State{Pos: Vec2{0, 0}}),
		mustCar(t, rigid, State{Pos: Vec2{50, 0}}),
	)
	wall := mustWall(t, 0, 0, 1, 1)
	if err := w.AddWall(wall); err != nil {
		t.Fatal(err)
	}
	if err := w.RemoveWall(3); err == nil {
		t.Fatal("expected error removing a missing wall")
	}
	if err := w.RemoveWall(0); err != nil || len(w.Walls()) != 0 {
		t.Fatalf("expected wall removed, got err=%v walls=%v", err, w.Walls())
	}

	w.Step(0.1, 1, Weights{})
	if _, err := w.AddCar(mustCar(t, rigid, State{})); !errors.Is(err, ErrRunning) {
		t.Fatalf("expected ErrRunning adding a car, got=%v", err)
	}
	if err := w.AddWall(wall); !errors.Is(err, ErrRunning) {
		t.Fatalf("expected ErrRunning adding a wall, got=%v", err)
	}

	// goals can be replaced at any time
	w.SetGoal(Goal{Pos: Vec2{1, 1}, Active: true})
	if g := w.Goal(); !g.Active || g.Pos != (Vec2{1, 1}) {
		t.Fatalf("expected new goal, got=%+v", g)
	}
}
