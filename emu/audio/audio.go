// Package audio produces the beeper tone through the speaker while the sound
// timer is above zero. The core only exposes the beeper level; the edge into
// and out of the tone happens here.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)

	minFrequency = 100
	maxFrequency = 2000

	amplitude = 0.3
)

// Beeper is a square wave streamer gated by the beeper level. It plays
// silence while inactive so the speaker never drains it.
type Beeper struct {
	mu     sync.Mutex
	active bool

	step  float64
	phase float64

	volume *effects.Volume
}

// New initialises the speaker and starts a silent beeper. freq is clamped to
// 100-2000Hz, volume to 0-1. With enabled false the beeper stays silent but
// the rest of the machine is unaffected.
func New(freq float64, volume float64, enabled bool) (*Beeper, error) {
	if freq < minFrequency {
		freq = minFrequency
	}
	if freq > maxFrequency {
		freq = maxFrequency
	}
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("initialising speaker: %w", err)
	}

	b := &Beeper{
		step: freq / float64(sampleRate),
	}
	b.volume = &effects.Volume{
		Streamer: b,
		Base:     2,
		Volume:   (volume - 1) * 5,
		Silent:   !enabled || volume == 0,
	}
	speaker.Play(b.volume)

	return b, nil
}

// SetActive follows the beeper level reported by the core. Called once per
// frame by the scheduling loop.
func (b *Beeper) SetActive(on bool) {
	b.mu.Lock()
	b.active = on
	b.mu.Unlock()
}

// Stream fills samples with a square wave while active, silence otherwise.
// Implements beep.Streamer; called from the speaker goroutine.
func (b *Beeper) Stream(samples [][2]float64) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range samples {
		var s float64
		if b.active {
			s = amplitude
			if b.phase >= 0.5 {
				s = -amplitude
			}
		}
		samples[i][0] = s
		samples[i][1] = s

		b.phase += b.step
		if b.phase >= 1 {
			b.phase -= 1
		}
	}

	return len(samples), true
}

// Err implements beep.Streamer. The beeper never fails.
func (b *Beeper) Err() error {
	return nil
}
