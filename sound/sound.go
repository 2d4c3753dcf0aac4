// Package sound plays short audible cues while a simulation is displayed.
package sound

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Chime plays a tone when new collisions happen.
// The pitch rises with the number of collisions of the step.
type Chime struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewChime returns a chime. It is silent until Init is called.
func NewChime() *Chime {
	return &Chime{mixer: &beep.Mixer{}}
}

// Init sets up the speaker.
func (c *Chime) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Collisions plays the cue for n new collisions. Nothing is played for n <= 0.
func (c *Chime) Collisions(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized || n <= 0 {
		return
	}
	s, err := Tone(sampleRate, Pitch(n), 80*time.Millisecond)
	if err != nil {
		return
	}
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

// Close stops all sounds and the speaker.
func (c *Chime) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	c.initialized = false
}

// Pitch returns the frequency of the cue for n collisions:
// 440 Hz for one, a semitone higher for each other, up to an octave.
func Pitch(n int) float64 {
	n = min(max(n, 1), 13)
	return 440 * math.Pow(2, float64(n-1)/12)
}

// Tone returns a sine tone of the given frequency and duration
// that fades out linearly to avoid clicks.
func Tone(sr beep.SampleRate, freq float64, d time.Duration) (beep.Streamer, error) {
	sine, err := generators.SineTone(sr, freq)
	if err != nil {
		return nil, err
	}
	n := sr.N(d)
	return &fade{s: beep.Take(n, sine), total: n}, nil
}

// fade scales its streamer from full volume to silence over total samples.
type fade struct {
	s     beep.Streamer
	pos   int
	total int
}

func (f *fade) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.s.Stream(samples)
	for i := 0; i < n; i++ {
		v := 0.5 * float64(f.total-f.pos) / float64(f.total)
		samples[i][0] *= v
		samples[i][1] *= v
		f.pos++
	}
	return n, ok
}

func (f *fade) Err() error { return f.s.Err() }
