package schedule

import (
	"testing"
	"time"

	"go.uber.org/atomic"
)

const testTimeout = 5 * time.Second

func waitDone(t *testing.T, task *Task) {
	t.Helper()
	select {
	case <-task.Done():
	case <-time.After(testTimeout):
		t.Fatalf("task did not finish in time")
	}
}

func TestRepeatCancelsWhenDone(t *testing.T) {
	var calls atomic.Int32
	task := Repeat(time.Millisecond, func() bool {
		return calls.Inc() == 3
	})
	waitDone(t, task)

	if calls.Load() != 3 {
		t.Fatalf("expected 3 runs, got %d", calls.Load())
	}
	if task.Runs() != 3 {
		t.Fatalf("expected Runs to report 3, got %d", task.Runs())
	}
	if task.State() != StateCancelled {
		t.Fatalf("expected cancelled state, got %v", task.State())
	}
}

func TestCancelStopsTask(t *testing.T) {
	started := make(chan struct{}, 1)
	task := Repeat(time.Millisecond, func() bool {
		select {
		case started <- struct{}{}:
		default:
		}
		return false
	})

	select {
	case <-started:
	case <-time.After(testTimeout):
		t.Fatalf("task never ran")
	}
	task.Cancel()
	task.Cancel()
	waitDone(t, task)

	runs := task.Runs()
	time.Sleep(10 * time.Millisecond)
	if task.Runs() != runs {
		t.Fatalf("expected no runs after cancellation")
	}
	if task.State() != StateCancelled {
		t.Fatalf("expected cancelled state, got %v", task.State())
	}
}

func TestCancelBeforeFirstRun(t *testing.T) {
	task := Repeat(time.Hour, func() bool {
		t.Errorf("function should never run")
		return true
	})
	if task.State() == StateCancelled {
		t.Fatalf("expected task to not be cancelled before Cancel")
	}
	task.Cancel()
	waitDone(t, task)
	if task.Runs() != 0 {
		t.Fatalf("expected no runs, got %d", task.Runs())
	}
}

func TestPanicCancelsTask(t *testing.T) {
	task := Repeat(time.Millisecond, func() bool {
		panic("tick failed")
	})
	waitDone(t, task)
	if task.Runs() != 1 || task.State() != StateCancelled {
		t.Fatalf("expected a single run followed by cancellation, got %d runs in state %v", task.Runs(), task.State())
	}
}

func TestUntil(t *testing.T) {
	var n atomic.Int32
	task := Until(time.Millisecond, func() bool {
		return n.Load() >= 5
	}, func() {
		n.Inc()
	})
	waitDone(t, task)
	if n.Load() != 5 {
		t.Fatalf("expected 5 runs of f, got %d", n.Load())
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		StateScheduled: "scheduled",
		StateRunning:   "running",
		StateCancelled: "cancelled",
		State(9):       "unknown",
	} {
		if s.String() != want {
			t.Fatalf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}
