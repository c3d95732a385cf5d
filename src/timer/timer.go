package timer

import (
	"time"
)

// Deadline is a reusable one-shot timer that bounds a single blocking read.
type Deadline struct {
	duration time.Duration
	timer    *time.Timer
}

func NewDeadline(duration time.Duration) *Deadline {
	t := time.NewTimer(duration)
	t.Stop()
	return &Deadline{duration: duration, timer: t}
}

// Start arms the deadline for a full duration and returns the channel that fires on expiry.
func (d *Deadline) Start() <-chan time.Time {
	resetTimer(d.timer, d.duration)
	return d.timer.C
}

func (d *Deadline) Stop() {
	d.timer.Stop()
}

func (d *Deadline) Duration() time.Duration {
	return d.duration
}

// Stops the timer and resets it.
func resetTimer(t *time.Timer, duration time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(duration)
}
