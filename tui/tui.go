// Package tui displays carflock simulations in a terminal.
//
// Cars are drawn as arrows pointing in their heading, yellow while they
// look for the goal and green once they know it was reached. The goal is
// a red X and walls are drawn with #. The last line shows the step
// counters.
//
// Space pauses or resumes the simulation. While paused, the right arrow
// performs a single step. Clicking moves the goal. Esc or q quits.
package tui

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/PrincetonUniversity/carflock"
	"github.com/gdamore/tcell/v2"
)

// A Notifier is told about the new collisions of every step.
type Notifier interface {
	Collisions(n int)
}

// Config holds the parameters of the terminal driver.
type Config struct {
	StepsPerSecond int         // steps shown per second of wall clock time
	Pause          bool        // start paused?
	Sound          Notifier    // may be nil
	Log            *log.Logger // receives real-time overrun notices, may be nil
}

// Run runs an interactive simulation in a terminal screen, which must be initialized.
// It returns when the user quits.
func Run(screen tcell.Screen, r *carflock.Run, conf *Config) error {
	if conf.StepsPerSecond <= 0 {
		return fmt.Errorf("tui: steps per second must be positive, got %d", conf.StepsPerSecond)
	}
	screen.EnableMouse()
	screen.HideCursor()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return // screen finalized
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	v := &viewer{screen: screen, run: r, conf: conf, pause: conf.Pause}
	period := time.Second / time.Duration(conf.StepsPerSecond)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	v.draw()
	for {
		select {
		case ev := <-events:
			if v.handle(ev) {
				return nil
			}
		case <-ticker.C:
			if v.pause {
				continue
			}
			start := time.Now()
			v.step()
			if d := time.Since(start); d > period && !v.warned && conf.Log != nil {
				conf.Log.Printf("cannot simulate %d steps per second in real time (a step took %s)", conf.StepsPerSecond, d)
				v.warned = true
			}
		}
		v.draw()
	}
}

// viewer holds the state of an interactive terminal session.
type viewer struct {
	screen tcell.Screen
	run    *carflock.Run
	conf   *Config
	pause  bool
	warned bool // overrun already reported
}

// handle processes a terminal event and reports whether to quit.
func (v *viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return true
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return true
		case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
			v.pause = !v.pause
		case ev.Key() == tcell.KeyRight && v.pause:
			v.step()
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			w := v.run.World()
			if p, ok := newView(w, v.screen).point(x, y); ok {
				w.SetGoal(carflock.Goal{Pos: p, Active: true})
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return false
}

// step advances the run and notifies new collisions.
func (v *viewer) step() {
	if !v.run.Next() {
		return
	}
	if v.conf.Sound != nil {
		c := v.run.World().Collisions()
		v.conf.Sound.Collisions(c[len(c)-1])
	}
}

func (v *viewer) draw() {
	Draw(v.screen, v.run.World())
	status := ""
	switch {
	case v.run.Done():
		status = "done, q to quit"
	case v.pause:
		status = "paused, space to resume"
	}
	if status != "" {
		cols, rows := v.screen.Size()
		drawText(v.screen, cols-len(status), rows-1, status, tcell.StyleDefault.Reverse(true))
	}
	v.screen.Show()
}

var (
	carStyle     = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	reachedStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	goalStyle    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	wallStyle    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// arrows are car glyphs for eight headings, counterclockwise from +x.
var arrows = [8]rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}

// Arrow returns the glyph of a car heading in direction dir.
func Arrow(dir carflock.Vec2) rune {
	i := int(math.Round(dir.Angle()/(math.Pi/4))) % 8
	if i < 0 {
		i += 8
	}
	return arrows[i]
}

// Draw draws the world and a status line on screen without showing it.
func Draw(screen tcell.Screen, w *carflock.World) {
	screen.Clear()
	v := newView(w, screen)

	for _, wall := range w.Walls() {
		a, b := wall.Endpoints()
		// one point per half cell is enough for a continuous line
		n := int(math.Ceil(2 * math.Max(math.Abs(b.X-a.X)/v.sx, math.Abs(b.Y-a.Y)/v.sy)))
		for i := 0; i <= n; i++ {
			p := a.Add(b.Sub(a).Scale(float64(i) / float64(max(n, 1))))
			if x, y, ok := v.cell(p); ok {
				screen.SetContent(x, y, '#', nil, wallStyle)
			}
		}
	}

	for _, c := range w.Cars() {
		if x, y, ok := v.cell(c.Pos); ok {
			style := carStyle
			if c.GoalReached {
				style = reachedStyle
			}
			screen.SetContent(x, y, Arrow(c.Dir), nil, style)
		}
	}

	if g := w.Goal(); g.Active {
		if x, y, ok := v.cell(g.Pos); ok {
			screen.SetContent(x, y, 'X', nil, goalStyle)
		}
	}

	var coll int
	var dens float64
	if c := w.Collisions(); len(c) > 0 {
		coll = c[len(c)-1]
		dens = w.Density()[len(c)-1]
	}
	status := fmt.Sprintf("step %d  collisions %d  density %.1f", w.Tick(), coll, dens)
	drawText(screen, 0, v.rows, status, tcell.StyleDefault)
}

func drawText(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// A view maps world coordinates to screen cells.
// The world fills the screen but its last line, y pointing up.
type view struct {
	cols, rows int
	sx, sy     float64 // meters per cell
}

func newView(w *carflock.World, screen tcell.Screen) view {
	cols, rows := screen.Size()
	rows = max(rows-1, 1) // status line
	cols = max(cols, 1)
	return view{
		cols: cols,
		rows: rows,
		sx:   w.Width() / float64(cols),
		sy:   w.Height() / float64(rows),
	}
}

// cell returns the cell containing p, if it is on screen.
func (v view) cell(p carflock.Vec2) (x, y int, ok bool) {
	x = int(math.Floor(p.X / v.sx))
	y = v.rows - 1 - int(math.Floor(p.Y/v.sy))
	return x, y, x >= 0 && x < v.cols && y >= 0 && y < v.rows
}

// point returns the world position at the center of cell (x, y).
func (v view) point(x, y int) (carflock.Vec2, bool) {
	if x < 0 || x >= v.cols || y < 0 || y >= v.rows {
		return carflock.Vec2{}, false
	}
	return carflock.Vec2{
		X: (float64(x) + 0.5) * v.sx,
		Y: (float64(v.rows-1-y) + 0.5) * v.sy,
	}, true
}
