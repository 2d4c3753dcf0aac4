package main

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/PrincetonUniversity/carflock"
)

func setup(t *testing.T, name string, seed int64) (*carflock.Scenario, *carflock.World) {
	t.Helper()
	conf := *DefaultConf
	conf.Scenario = name
	conf.CarCount = 10
	conf.NeighborCount = 3
	conf.SimulationTime = 1
	s, err := newScenario(&conf, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatal(err)
	}
	w, err := s.Setup()
	if err != nil {
		t.Fatal(err)
	}
	return s, w
}

func TestScenarios(t *testing.T) {
	for _, test := range []struct {
		name  string
		xmax  float64
		goal  bool
		walls int
		wrap  bool
	}{
		{"open", 300, false, 0, false},
		{"goal", 100, true, 0, false},
		{"arena", 100, true, 4, false},
		{"torus", 300, false, 0, true},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, w := setup(t, test.name, 1)
			if n := len(w.Cars()); n != 10 {
				t.Fatalf("expected 10 cars, got %d", n)
			}
			for _, c := range w.Cars() {
				if c.Pos.X < 1 || c.Pos.X >= test.xmax || c.Pos.Y < 1 || c.Pos.Y >= 100 {
					t.Errorf("car out of region: %v", c.Pos)
				}
				if c.Acceleration != 2 {
					t.Errorf("expected acceleration 2, got=%g", c.Acceleration)
				}
			}
			if g := w.Goal(); g.Active != test.goal {
				t.Fatalf("expected goal %v, got=%+v", test.goal, g)
			} else if g.Active && (g.Pos != carflock.Vec2{X: 250, Y: 50}) {
				t.Fatalf("expected goal at (250, 50), got=%v", g.Pos)
			}
			if n := len(w.Walls()); n != test.walls {
				t.Fatalf("expected %d walls, got %d", test.walls, n)
			}
			if c := w.Config(); c.Wrap != test.wrap || c.WallAvoidance != (test.walls > 0) {
				t.Fatalf("unexpected world config %+v", c)
			}
		})
	}
}

func TestScenarioSeed(t *testing.T) {
	_, a := setup(t, "open", 42)
	_, b := setup(t, "open", 42)
	_, c := setup(t, "open", 43)
	if a.Cars()[0].State != b.Cars()[0].State {
		t.Fatal("expected same placement for the same seed")
	}
	if a.Cars()[0].State == c.Cars()[0].State {
		t.Fatal("expected another placement for another seed")
	}
}

func TestBadScenario(t *testing.T) {
	conf := *DefaultConf
	conf.Scenario = "maze"
	if _, err := newScenario(&conf, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected error")
	}
	conf = *DefaultConf
	conf.Weights = []float64{1}
	if _, err := newScenario(&conf, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected weights error")
	}
	conf = *DefaultConf
	conf.Scenario = "hdf5"
	conf.Input = "does-not-exist.h5"
	s, err := newScenario(&conf, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Setup(); err == nil {
		t.Fatal("expected error loading a missing file")
	}
}

func TestHeadlessRun(t *testing.T) {
	s, w := setup(t, "open", 7)
	res, err := runHeadless(s.Start(w))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Density) != 50 || res.StepsToGoal != 0 || !res.GoalReached {
		t.Fatalf("expected 50 steps without goal, got %d steps %+v", len(res.Density), res)
	}
	if msg := summary(res); !strings.HasPrefix(msg, "50 steps, no goal") {
		t.Fatalf("unexpected summary %q", msg)
	}
}

func TestSummary(t *testing.T) {
	res := carflock.Result{
		Collisions:  []int{0, 2, 1},
		Density:     []float64{1, 2, 3},
		StepsToGoal: 3,
		GoalReached: true,
	}
	want := "3 steps, goal reached after 3 steps, 3 collisions, mean density 2.0 m²"
	if got := summary(res); got != want {
		t.Fatalf("expected %q, got=%q", want, got)
	}
	res.GoalReached = false
	if got := summary(res); !strings.Contains(got, "goal not reached after 3 steps") {
		t.Fatalf("unexpected summary %q", got)
	}
}
