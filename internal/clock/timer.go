// Package clock measures frame time for the simulation loop.
package clock

import "time"

// Timer tracks total running time and the time between ticks, excluding any
// time spent stopped.
type Timer struct {
	now func() time.Time

	base   time.Time
	prev   time.Time
	curr   time.Time
	stopAt time.Time
	paused time.Duration

	delta   time.Duration
	stopped bool
}

// NewTimer returns a running timer reading the wall clock.
func NewTimer() *Timer {
	return NewTimerWithSource(time.Now)
}

// NewTimerWithSource returns a running timer reading now.
func NewTimerWithSource(now func() time.Time) *Timer {
	t := &Timer{now: now}
	t.Reset()
	return t
}

// Reset restarts the timer from zero.
func (t *Timer) Reset() {
	now := t.now()
	t.base = now
	t.prev = now
	t.curr = now
	t.stopAt = now
	t.paused = 0
	t.delta = 0
	t.stopped = false
}

// Start resumes a stopped timer. The stopped interval is excluded from
// TotalTime.
func (t *Timer) Start() {
	if !t.stopped {
		return
	}
	now := t.now()
	t.paused += now.Sub(t.stopAt)
	t.prev = now
	t.stopAt = now
	t.stopped = false
}

// Stop pauses the timer.
func (t *Timer) Stop() {
	if t.stopped {
		return
	}
	t.stopAt = t.now()
	t.stopped = true
}

// Stopped reports whether the timer is paused.
func (t *Timer) Stopped() bool { return t.stopped }

// Tick is called once per frame and measures the time since the previous
// tick. A stopped timer reports a zero delta.
func (t *Timer) Tick() {
	if t.stopped {
		t.delta = 0
		return
	}
	t.curr = t.now()
	t.delta = t.curr.Sub(t.prev)
	t.prev = t.curr
	if t.delta < 0 {
		t.delta = 0
	}
}

// DeltaTime is the time between the last two ticks, in seconds.
func (t *Timer) DeltaTime() float32 {
	return float32(t.delta.Seconds())
}

// TotalTime is the running time since Reset, in seconds, not counting time
// spent stopped.
func (t *Timer) TotalTime() float32 {
	end := t.curr
	if t.stopped {
		end = t.stopAt
	}
	return float32((end.Sub(t.base) - t.paused).Seconds())
}
