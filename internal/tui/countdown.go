package tui

import "time"

// Pomodoro presets in minutes, in the order p cycles through them.
var pomodoroPresets = []int{25, 5, 15}

// countdown is a one-second-resolution timer driven by tickMsg.
type countdown struct {
	duration  time.Duration
	remaining time.Duration
	running   bool
	notified  bool
}

func newCountdown(d time.Duration) countdown {
	return countdown{duration: d, remaining: d}
}

// tick advances one second. It reports true exactly once per completion.
func (c *countdown) tick() bool {
	if !c.running || c.remaining <= 0 {
		return false
	}
	c.remaining -= time.Second
	if c.remaining > 0 {
		return false
	}
	c.remaining = 0
	c.running = false
	if c.notified {
		return false
	}
	c.notified = true
	return true
}

// toggle starts or pauses. Starting with nothing left does nothing.
func (c *countdown) toggle() {
	if c.running {
		c.running = false
		return
	}
	if c.remaining <= 0 {
		return
	}
	c.running = true
	c.notified = false
}

// reset stops and restores the last selected duration.
func (c *countdown) reset() {
	c.running = false
	c.remaining = c.duration
	c.notified = false
}

// setPreset replaces duration and remaining. A running countdown keeps
// running from the new value.
func (c *countdown) setPreset(minutes int) {
	c.duration = time.Duration(minutes) * time.Minute
	c.remaining = c.duration
	c.notified = false
}

func (c countdown) minutes() int {
	return int(c.duration / time.Minute)
}

func nextPreset(current int) int {
	for i, p := range pomodoroPresets {
		if p == current {
			return pomodoroPresets[(i+1)%len(pomodoroPresets)]
		}
	}
	return pomodoroPresets[0]
}
