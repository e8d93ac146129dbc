package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typesprint/internal/model"
	"github.com/verte-zerg/typesprint/internal/session"
)

type tickMsg struct {
	id int
}

type scoreMsg struct {
	resp model.ScoreResponse
	err  error
	done func(model.ScoreResponse, error)
}

type interval struct {
	every time.Duration
	fn    func()
}

// loop runs timer intervals and score submissions as Bubble Tea commands so
// every callback executes inside Update.
type loop struct {
	nextID    int
	intervals map[int]interval
	queued    []tea.Cmd

	scorer  session.Scorer
	timeout time.Duration

	tick func(id int, every time.Duration) tea.Cmd
}

func newLoop(scorer session.Scorer, timeout time.Duration) *loop {
	if timeout <= 0 {
		timeout = session.DefaultSubmitTimeout
	}
	return &loop{
		intervals: map[int]interval{},
		scorer:    scorer,
		timeout:   timeout,
		tick:      tickCmd,
	}
}

func tickCmd(id int, every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return tickMsg{id: id}
	})
}

// Every implements timer.Scheduler.
func (l *loop) Every(every time.Duration, fn func()) func() {
	l.nextID++
	id := l.nextID
	l.intervals[id] = interval{every: every, fn: fn}
	l.queue(l.tick(id, every))
	return func() {
		delete(l.intervals, id)
	}
}

// fire runs the interval for id and schedules its next tick. Ticks of
// cancelled intervals are dropped.
func (l *loop) fire(id int) {
	iv, ok := l.intervals[id]
	if !ok {
		return
	}
	l.queue(l.tick(id, iv.every))
	iv.fn()
}

// Dispatch implements session.Dispatcher. The request runs off the loop; its
// outcome comes back as a scoreMsg.
func (l *loop) Dispatch(req model.ScoreRequest, done func(model.ScoreResponse, error)) {
	scorer := l.scorer
	timeout := l.timeout
	l.queue(func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := scorer.SaveScore(ctx, req)
		return scoreMsg{resp: resp, err: err, done: done}
	})
}

func (l *loop) queue(cmd tea.Cmd) {
	if cmd != nil {
		l.queued = append(l.queued, cmd)
	}
}

// drain returns the commands queued since the last call.
func (l *loop) drain() tea.Cmd {
	if len(l.queued) == 0 {
		return nil
	}
	cmds := l.queued
	l.queued = nil
	if len(cmds) == 1 {
		return cmds[0]
	}
	return tea.Batch(cmds...)
}
