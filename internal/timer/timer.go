// Package timer implements the session countdown.
package timer

import (
	"strconv"
	"time"

	"github.com/verte-zerg/typesprint/internal/model"
)

// Interval is the period between ticks.
const Interval = time.Second

const infinitySign = "∞"

// Scheduler runs fn every interval until the returned cancel func is called.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// State is the lifecycle state of a Timer.
type State int

const (
	// Idle means no interval is active.
	Idle State = iota
	// Running means a periodic tick is scheduled.
	Running
	// Finished is terminal until SetMaxTime is called again.
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Timer owns countdown and elapsed state for one session.
type Timer struct {
	sched    Scheduler
	max      model.Mode
	timeLeft int
	elapsed  int
	state    State

	cancel   func()
	onTick   func()
	onFinish func()
}

// New returns an idle timer set to the default mode.
func New(sched Scheduler) *Timer {
	t := &Timer{sched: sched}
	t.SetMaxTime(model.DefaultMode)
	return t
}

// SetMaxTime resets the countdown for mode. An active interval keeps running;
// callers clear it explicitly.
func (t *Timer) SetMaxTime(mode model.Mode) {
	t.max = mode
	t.timeLeft = mode.Seconds()
	t.elapsed = 0
	if t.state == Finished {
		t.state = Idle
	}
}

// Start cancels any active interval, consumes the first second immediately and
// schedules the periodic tick.
func (t *Timer) Start(onTick, onFinish func()) {
	t.stopInterval()
	t.onTick = onTick
	t.onFinish = onFinish
	t.state = Running
	t.advance()
	t.cancel = t.sched.Every(Interval, t.tick)
}

// Clear cancels the active interval, if any.
func (t *Timer) Clear() {
	t.stopInterval()
	if t.state == Running {
		t.state = Idle
	}
}

// Finish cancels the interval and locks the session.
func (t *Timer) Finish() {
	t.stopInterval()
	t.state = Finished
}

func (t *Timer) tick() {
	if t.state != Running {
		return
	}
	t.advance()
	if t.onTick != nil {
		t.onTick()
	}
	if t.max.Finite() && t.timeLeft <= 0 {
		t.Finish()
		if t.onFinish != nil {
			t.onFinish()
		}
	}
}

func (t *Timer) advance() {
	t.elapsed++
	if t.max.Finite() {
		t.timeLeft--
	}
}

func (t *Timer) stopInterval() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// State returns the lifecycle state.
func (t *Timer) State() State { return t.state }

// Max returns the configured mode.
func (t *Timer) Max() model.Mode { return t.max }

// TimeLeft returns the remaining seconds; meaningless for Endless.
func (t *Timer) TimeLeft() int { return t.timeLeft }

// Elapsed returns the seconds consumed since Start.
func (t *Timer) Elapsed() int { return t.elapsed }

// Display returns the countdown text shown to the user.
func (t *Timer) Display() string {
	if !t.max.Finite() {
		return infinitySign
	}
	return strconv.Itoa(t.timeLeft)
}
