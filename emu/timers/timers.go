// Package timers implements the two 8 bit 60Hz down-counters. The host ticks
// them once per frame, independently of how many instructions it runs.
package timers

// Timers holds the delay and sound counters. The beeper is active for as long
// as the sound counter is above zero.
type Timers struct {
	delay uint8
	sound uint8
}

// New returns both timers at zero.
func New() *Timers {
	return &Timers{}
}

// Reset zeroes both counters.
func (t *Timers) Reset() {
	t.delay = 0
	t.sound = 0
}

// Tick decrements each non-zero counter by one, saturating at zero.
func (t *Timers) Tick() {
	if t.delay > 0 {
		t.delay--
	}
	if t.sound > 0 {
		t.sound--
	}
}

// SetDelay loads the delay counter.
func (t *Timers) SetDelay(v uint8) {
	t.delay = v
}

// SetSound loads the sound counter.
func (t *Timers) SetSound(v uint8) {
	t.sound = v
}

// Delay returns the current delay counter.
func (t *Timers) Delay() uint8 {
	return t.delay
}

// Sound returns the current sound counter.
func (t *Timers) Sound() uint8 {
	return t.sound
}

// BeeperActive reports whether the beeper should be sounding.
func (t *Timers) BeeperActive() bool {
	return t.sound > 0
}
