// Package session orchestrates a typing test from first keystroke to result.
package session

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/verte-zerg/typesprint/internal/evaluator"
	"github.com/verte-zerg/typesprint/internal/model"
	"github.com/verte-zerg/typesprint/internal/sampler"
	"github.com/verte-zerg/typesprint/internal/timer"
)

// Phase is the controller state.
type Phase int

const (
	// Idle shows fresh target text and waits for the first keystroke.
	Idle Phase = iota
	// Active means the timer runs and input is evaluated.
	Active
	// Ended means input is locked and the result is computed.
	Ended
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Controller owns one typing session.
type Controller struct {
	log        *slog.Logger
	sampler    *sampler.Sampler
	timer      *timer.Timer
	dispatcher Dispatcher
	words      int

	dictionary   []string
	mode         model.Mode
	modeSelected bool

	phase   Phase
	token   string
	target  []rune
	typed   []rune
	states  []evaluator.CharState
	liveWPM int

	pending bool
	result  *model.SessionResult
}

// Option configures a Controller.
type Option func(*Controller)

// WithWords sets how many words are sampled per session.
func WithWords(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.words = n
		}
	}
}

// WithSampler replaces the default time-seeded sampler.
func WithSampler(s *sampler.Sampler) Option {
	return func(c *Controller) {
		if s != nil {
			c.sampler = s
		}
	}
}

// WithDispatcher sets where finished sessions are submitted.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Controller) {
		if d != nil {
			c.dispatcher = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMode preselects a mode; Restart re-applies it.
func WithMode(m model.Mode) Option {
	return func(c *Controller) {
		c.mode = m
		c.modeSelected = true
	}
}

// New returns a controller whose timer runs on sched. Call Initialize before use.
func New(sched timer.Scheduler, opts ...Option) *Controller {
	c := &Controller{
		log:        slog.New(slog.DiscardHandler),
		sampler:    sampler.New(),
		timer:      timer.New(sched),
		dispatcher: Offline(),
		words:      sampler.DefaultWords,
		mode:       model.DefaultMode,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize loads the dictionary and starts an idle session.
func (c *Controller) Initialize(dictionary []string) {
	c.dictionary = dictionary
	c.Restart()
}

// SelectMode configures the timer for mode and restarts.
func (c *Controller) SelectMode(mode model.Mode) {
	c.timer.SetMaxTime(mode)
	c.timer.Clear()
	c.mode = mode
	c.modeSelected = true
	c.reset()
}

// Restart re-applies the selected mode, or resets in place when none is selected.
func (c *Controller) Restart() {
	if c.modeSelected {
		c.SelectMode(c.mode)
		return
	}
	c.timer.SetMaxTime(c.timer.Max())
	c.reset()
}

func (c *Controller) reset() {
	c.timer.Clear()
	c.typed = nil

	buf := &sampler.Buffer{}
	c.sampler.Sample(c.dictionary, c.words, buf)
	c.target = []rune(buf.Text())
	c.states = evaluator.Evaluate(c.target, nil)

	c.liveWPM = 0
	c.phase = Idle
	c.pending = false
	c.result = nil
	c.token = uuid.NewString()
	c.log.Debug("session reset", "token", c.token, "mode", c.timer.Max().String(), "chars", len(c.target))
}

// Input replaces the typed snapshot. The first input starts the timer; input
// after the session ended is ignored.
func (c *Controller) Input(raw string) {
	if c.phase == Ended {
		return
	}
	if c.phase == Idle {
		c.phase = Active
		c.timer.Start(c.onTick, c.onTimerFinished)
		c.log.Debug("session started", "token", c.token)
	}
	c.typed = []rune(raw)
	c.states = evaluator.Evaluate(c.target, c.typed)
	c.recomputeWPM()
}

// Type appends r to the typed snapshot.
func (c *Controller) Type(r rune) {
	next := make([]rune, len(c.typed), len(c.typed)+1)
	copy(next, c.typed)
	c.Input(string(append(next, r)))
}

// Backspace removes the last typed rune.
func (c *Controller) Backspace() {
	if len(c.typed) == 0 {
		return
	}
	c.Input(string(c.typed[:len(c.typed)-1]))
}

func (c *Controller) recomputeWPM() {
	correct := evaluator.CountCorrect(c.states)
	c.liveWPM = evaluator.LiveWPM(correct, float64(c.timer.Elapsed()))
}

func (c *Controller) onTick() {
	c.recomputeWPM()
}

func (c *Controller) onTimerFinished() {
	c.phase = Ended
	finalWPM := c.liveWPM
	accuracy := evaluator.Accuracy(evaluator.CountCorrect(c.states), len(c.typed))
	req := model.ScoreRequest{
		WPM:      finalWPM,
		Accuracy: accuracy,
		Mode:     c.timer.Max().String(),
	}
	c.pending = true
	token := c.token
	c.log.Info("session finished", "token", token, "wpm", finalWPM, "accuracy", accuracy, "mode", req.Mode)
	c.dispatcher.Dispatch(req, func(resp model.ScoreResponse, err error) {
		c.deliver(token, finalWPM, accuracy, resp, err)
	})
}

func (c *Controller) deliver(token string, finalWPM, accuracy int, resp model.ScoreResponse, err error) {
	if token != c.token {
		c.log.Debug("discarding stale score response", "token", token, "current", c.token)
		return
	}
	c.pending = false
	maxWPM := finalWPM
	switch {
	case err != nil:
		if !errors.Is(err, ErrOffline) {
			c.log.Warn("failed to save score", "error", err)
		}
	case resp.MaxWPM == nil:
		c.log.Warn("score response missing max_wpm")
	default:
		maxWPM = *resp.MaxWPM
	}
	c.result = &model.SessionResult{FinalWPM: finalWPM, Accuracy: accuracy, MaxWPM: maxWPM}
}

// Phase returns the current state.
func (c *Controller) Phase() Phase { return c.phase }

// Mode returns the timer's configured mode.
func (c *Controller) Mode() model.Mode { return c.timer.Max() }

// Target returns the target text. Callers must not modify it.
func (c *Controller) Target() []rune { return c.target }

// Typed returns the typed snapshot. Callers must not modify it.
func (c *Controller) Typed() []rune { return c.typed }

// States returns per-character states. Callers must not modify it.
func (c *Controller) States() []evaluator.CharState { return c.states }

// LiveWPM returns the latest WPM reading.
func (c *Controller) LiveWPM() int { return c.liveWPM }

// Clock returns the countdown display text.
func (c *Controller) Clock() string { return c.timer.Display() }

// Elapsed returns seconds consumed by the timer.
func (c *Controller) Elapsed() int { return c.timer.Elapsed() }

// Pending reports whether a submission is awaiting its response.
func (c *Controller) Pending() bool { return c.pending }

// Result returns the session result once the submission resolved.
func (c *Controller) Result() (model.SessionResult, bool) {
	if c.result == nil {
		return model.SessionResult{}, false
	}
	return *c.result, true
}
