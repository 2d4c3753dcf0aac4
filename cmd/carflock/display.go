package main

import (
	"bytes"
	"io"
	"log"
	"os"

	"github.com/PrincetonUniversity/carflock"
	"github.com/PrincetonUniversity/carflock/opengl"
	"github.com/PrincetonUniversity/carflock/sound"
	"github.com/PrincetonUniversity/carflock/tui"
	"github.com/gdamore/tcell/v2"
)

// RunOpenGL runs an interactive simulation in an OpenGL window.
func RunOpenGL(conf *Config, r *carflock.Run, logger *log.Logger) (carflock.Result, error) {
	oc := &opengl.Config{
		StepsPerSecond: conf.StepsPerSecond,
		Pause:          conf.Pause,
		ShowForces:     conf.ShowForces,
		Log:            logger,
		Xmin:           -1,
		Ymin:           -1,
		Xmax:           conf.WorldWidth + 1,
		Ymax:           conf.WorldHeight + 1,
	}
	if chime := newChime(conf, logger); chime != nil {
		defer chime.Close()
		oc.Sound = chime
	}
	err := opengl.Run(r, oc)
	return r.Result(), err
}

// RunTerminal runs an interactive simulation in the terminal.
// Messages logged while the screen is active are printed once it is closed.
func RunTerminal(conf *Config, r *carflock.Run, logger *log.Logger) (res carflock.Result, err error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return res, err
	}
	if err := screen.Init(); err != nil {
		return res, err
	}

	var buf bytes.Buffer
	held := log.New(&buf, logger.Prefix(), logger.Flags())
	defer func() {
		screen.Fini()
		io.Copy(logger.Writer(), &buf)
	}()

	tc := &tui.Config{
		StepsPerSecond: conf.StepsPerSecond,
		Pause:          conf.Pause,
		Log:            held,
	}
	if chime := newChime(conf, held); chime != nil {
		defer chime.Close()
		tc.Sound = chime
	}
	err = tui.Run(screen, r, tc)
	return r.Result(), err
}

// runHeadless runs a simulation to completion without display nor output file.
func runHeadless(r *carflock.Run) (carflock.Result, error) {
	for r.Next() {
	}
	return r.Result(), nil
}

// newChime returns an initialized chime if sound is enabled.
// Sound is optional: failures are logged and nil is returned.
func newChime(conf *Config, logger *log.Logger) *sound.Chime {
	if !conf.Sound {
		return nil
	}
	c := sound.NewChime()
	if err := c.Init(); err != nil {
		logger.Printf("sound disabled: %v", err)
		return nil
	}
	return c
}

// newLogger returns the logger of the command.
func newLogger() *log.Logger {
	return log.New(os.Stderr, "[carflock] ", log.LstdFlags)
}
