package tui

import (
	"math"
	"strings"
	"testing"

	"github.com/PrincetonUniversity/carflock"
	"github.com/gdamore/tcell/v2"
)

var params = carflock.Params{
	Length:           4.9,
	Width:            1.8,
	Wheelbase:        2.8,
	MaxVelocity:      5,
	MaxAcceleration:  5,
	MaxSteeringAngle: carflock.Radians(37),
	MaxSteeringRate:  carflock.Radians(37),
}

// newScreen returns an 80x25 simulation screen: 80x24 cells for the world plus the status line.
func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 25)
	return screen
}

// newWorld returns an 80x24 world, one meter per cell.
func newWorld(t *testing.T, states ...carflock.State) *carflock.World {
	t.Helper()
	w, err := carflock.NewWorld(carflock.Config{Width: 80, Height: 24})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range states {
		c, err := carflock.NewCar(params, s)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.AddCar(c); err != nil {
			t.Fatal(err)
		}
	}
	return w
}

func row(screen tcell.SimulationScreen, y int) string {
	cols, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < cols; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func TestDraw(t *testing.T) {
	screen := newScreen(t)
	w := newWorld(t,
		carflock.State{Pos: carflock.Vec2{X: 10.5, Y: 3.5}, Dir: carflock.Vec2{X: 1}},
		carflock.State{Pos: carflock.Vec2{X: 30.5, Y: 20.5}, Dir: carflock.Vec2{Y: -1}},
	)
	wall, err := carflock.NewWall(0, 0.5, 20, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.AddWall(wall); err != nil {
		t.Fatal(err)
	}
	w.SetGoal(carflock.Goal{Pos: carflock.Vec2{X: 40.5, Y: 12.5}, Active: true})

	Draw(screen, w)
	screen.Show()

	tests := []struct {
		x, y int
		want rune
	}{
		{10, 20, '→'},
		{30, 3, '↓'},
		{40, 11, 'X'},
		{0, 23, '#'},
		{20, 23, '#'},
		{21, 23, ' '},
	}
	for _, tt := range tests {
		if r, _, _, _ := screen.GetContent(tt.x, tt.y); r != tt.want {
			t.Errorf("cell (%d, %d): expected %q, got %q", tt.x, tt.y, tt.want, r)
		}
	}
	if s := row(screen, 24); !strings.HasPrefix(s, "step 0  collisions 0") {
		t.Errorf("unexpected status line %q", s)
	}
}

func TestArrow(t *testing.T) {
	tests := []struct {
		dir  carflock.Vec2
		want rune
	}{
		{carflock.Vec2{X: 1}, '→'},
		{carflock.Vec2{X: 1, Y: 1}, '↗'},
		{carflock.Vec2{Y: 1}, '↑'},
		{carflock.Vec2{X: -1}, '←'},
		{carflock.Vec2{X: -1, Y: -0.1}, '←'},
		{carflock.Vec2{X: 1, Y: -1}, '↘'},
		{carflock.Vec2{X: 1, Y: -0.3}, '→'},
	}
	for _, tt := range tests {
		if got := Arrow(tt.dir); got != tt.want {
			t.Errorf("Arrow(%v) = %q, expected %q", tt.dir, got, tt.want)
		}
	}
}

func TestViewRoundTrip(t *testing.T) {
	screen := newScreen(t)
	v := newView(newWorld(t), screen)
	for _, c := range [][2]int{{0, 0}, {79, 23}, {5, 17}} {
		p, ok := v.point(c[0], c[1])
		if !ok {
			t.Fatalf("expected cell %v on screen", c)
		}
		if x, y, ok := v.cell(p); !ok || x != c[0] || y != c[1] {
			t.Fatalf("cell %v maps to %v and back to (%d, %d)", c, p, x, y)
		}
	}
	if _, ok := v.point(10, 24); ok {
		t.Fatal("expected the status line not to map to the world")
	}
	if _, _, ok := v.cell(carflock.Vec2{X: -1, Y: 3}); ok {
		t.Fatal("expected a point left of the world to be off screen")
	}
}

type counter struct{ calls, total int }

func (c *counter) Collisions(n int) {
	c.calls++
	c.total += n
}

func TestHandle(t *testing.T) {
	screen := newScreen(t)
	w := newWorld(t,
		carflock.State{Pos: carflock.Vec2{X: 10, Y: 10}, Dir: carflock.Vec2{X: 1}},
		carflock.State{Pos: carflock.Vec2{X: 30, Y: 10}, Dir: carflock.Vec2{X: -1}},
	)
	s := &carflock.Scenario{
		Build:          func() (*carflock.World, error) { return w, nil },
		StepsPerSecond: 10,
		NeighborCount:  1,
		Weights:        carflock.Weights{1, 1, 1, 1},
		SimulationTime: 1,
	}
	if _, err := s.Setup(); err != nil {
		t.Fatal(err)
	}
	sound := new(counter)
	v := &viewer{screen: screen, run: s.Start(w), conf: &Config{StepsPerSecond: 10, Sound: sound}}

	if v.handle(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone)) || w.Tick() != 0 {
		t.Fatal("expected right arrow not to step while running")
	}
	v.handle(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	if !v.pause {
		t.Fatal("expected space to pause")
	}
	v.handle(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	if w.Tick() != 1 || sound.calls != 1 {
		t.Fatalf("expected a single step with a notification, got tick %d and %d calls", w.Tick(), sound.calls)
	}

	v.handle(tcell.NewEventMouse(5, 23, tcell.Button1, tcell.ModNone))
	if g := w.Goal(); !g.Active || math.Abs(g.Pos.X-5.5) > 1e-9 || math.Abs(g.Pos.Y-0.5) > 1e-9 {
		t.Fatalf("expected click to set the goal at (5.5, 0.5), got=%+v", g)
	}

	v.draw()
	if s := row(screen, 24); !strings.Contains(s, "paused") {
		t.Errorf("expected paused status, got %q", s)
	}

	if !v.handle(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatal("expected q to quit")
	}
	if !v.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Fatal("expected Esc to quit")
	}
}

func TestRunRejectsBadRate(t *testing.T) {
	screen := newScreen(t)
	if err := Run(screen, nil, &Config{}); err == nil {
		t.Fatal("expected error without steps per second")
	}
}
