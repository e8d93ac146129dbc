package timer

import (
	"testing"

	"github.com/verte-zerg/typesprint/internal/model"
)

func TestStartTicksImmediately(t *testing.T) {
	sched := NewManualScheduler()
	tm := New(sched)
	tm.SetMaxTime(30)
	tm.Start(nil, nil)

	if tm.TimeLeft() != 29 {
		t.Fatalf("expected 29 seconds left after start, got %d", tm.TimeLeft())
	}
	if tm.Elapsed() != 1 {
		t.Fatalf("expected 1 second elapsed after start, got %d", tm.Elapsed())
	}
	if tm.State() != Running {
		t.Fatalf("expected running, got %s", tm.State())
	}
	if tm.Display() != "29" {
		t.Fatalf("expected display 29, got %q", tm.Display())
	}
}

func TestFinishFiresOnce(t *testing.T) {
	sched := NewManualScheduler()
	tm := New(sched)
	tm.SetMaxTime(15)

	ticks, finishes := 0, 0
	tm.Start(func() { ticks++ }, func() { finishes++ })

	sched.StepN(13)
	if finishes != 0 || tm.TimeLeft() != 1 {
		t.Fatalf("expected no finish at 1s left, got finishes=%d left=%d", finishes, tm.TimeLeft())
	}
	sched.Step()
	if finishes != 1 {
		t.Fatalf("expected one finish, got %d", finishes)
	}
	if tm.TimeLeft() != 0 {
		t.Fatalf("expected 0 seconds left, got %d", tm.TimeLeft())
	}
	if tm.State() != Finished {
		t.Fatalf("expected finished, got %s", tm.State())
	}
	if sched.Active() != 0 {
		t.Fatalf("expected interval cancelled, got %d active", sched.Active())
	}

	sched.StepN(5)
	if finishes != 1 || ticks != 14 {
		t.Fatalf("expected no ticks after finish, got ticks=%d finishes=%d", ticks, finishes)
	}
}

func TestEndlessNeverFinishes(t *testing.T) {
	sched := NewManualScheduler()
	tm := New(sched)
	tm.SetMaxTime(model.Endless)

	finished := false
	tm.Start(nil, func() { finished = true })
	sched.StepN(1000)

	if finished {
		t.Fatalf("expected endless timer to never finish")
	}
	if tm.Elapsed() != 1001 {
		t.Fatalf("expected 1001 seconds elapsed, got %d", tm.Elapsed())
	}
	if tm.Display() != "∞" {
		t.Fatalf("expected infinity display, got %q", tm.Display())
	}
}

func TestRestartKeepsSingleInterval(t *testing.T) {
	sched := NewManualScheduler()
	tm := New(sched)
	tm.Start(nil, nil)
	tm.Start(nil, nil)
	tm.Start(nil, nil)

	if sched.Active() != 1 {
		t.Fatalf("expected a single interval, got %d", sched.Active())
	}
	before := tm.Elapsed()
	sched.Step()
	if tm.Elapsed() != before+1 {
		t.Fatalf("expected one tick per step, elapsed %d -> %d", before, tm.Elapsed())
	}
}

func TestClearIsIdempotent(t *testing.T) {
	sched := NewManualScheduler()
	tm := New(sched)
	tm.Clear()
	tm.Start(nil, nil)
	tm.Clear()
	tm.Clear()

	if sched.Active() != 0 {
		t.Fatalf("expected no active interval, got %d", sched.Active())
	}
	if tm.State() != Idle {
		t.Fatalf("expected idle, got %s", tm.State())
	}
}

func TestSetMaxTimeResetsCounters(t *testing.T) {
	sched := NewManualScheduler()
	tm := New(sched)
	tm.SetMaxTime(15)
	tm.Start(nil, nil)
	sched.StepN(20)
	if tm.State() != Finished {
		t.Fatalf("expected finished, got %s", tm.State())
	}

	tm.SetMaxTime(60)
	if tm.State() != Idle {
		t.Fatalf("expected idle after reset, got %s", tm.State())
	}
	if tm.TimeLeft() != 60 || tm.Elapsed() != 0 || tm.Max() != 60 {
		t.Fatalf("unexpected counters: left=%d elapsed=%d max=%v", tm.TimeLeft(), tm.Elapsed(), tm.Max())
	}
}

func TestSetMaxTimeLeavesIntervalRunning(t *testing.T) {
	sched := NewManualScheduler()
	tm := New(sched)
	tm.Start(nil, nil)
	tm.SetMaxTime(60)

	if sched.Active() != 1 || tm.State() != Running {
		t.Fatalf("expected interval untouched, active=%d state=%s", sched.Active(), tm.State())
	}
}
