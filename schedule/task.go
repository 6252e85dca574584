package schedule

import (
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/atomic"
)

// State is the state of a Task.
type State int32

const (
	// StateScheduled is the state of a task waiting for its next run.
	StateScheduled State = iota
	// StateRunning is the state of a task while its function is being run.
	StateRunning
	// StateCancelled is the terminal state of a task that will not run again.
	StateCancelled
)

// String ...
func (s State) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Task is a function run repeatedly on its own goroutine until it is cancelled.
type Task struct {
	state atomic.Int32
	runs  atomic.Uint64

	once sync.Once
	stop chan struct{}
	done chan struct{}
}

// Repeat runs f every interval until f returns true or the Task returned is cancelled. A panic in f is
// reported to sentry and cancels the task.
func Repeat(interval time.Duration, f func() bool) *Task {
	t := &Task{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go t.run(interval, f)
	return t
}

// Until runs f every interval for as long as cond returns false. cond is checked before every run, so f
// is never run once cond is satisfied.
func Until(interval time.Duration, cond func() bool, f func()) *Task {
	return Repeat(interval, func() bool {
		if cond() {
			return true
		}
		f()
		return false
	})
}

// State returns the current state of the task.
func (t *Task) State() State {
	return State(t.state.Load())
}

// Runs returns the amount of times the function of the task was run.
func (t *Task) Runs() uint64 {
	return t.runs.Load()
}

// Cancel stops the task. If the function of the task is running, it is allowed to finish first. Cancel
// may be called multiple times and from within the function itself.
func (t *Task) Cancel() {
	t.once.Do(func() {
		close(t.stop)
	})
}

// Done returns a channel that is closed once the task is cancelled and no longer running.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) run(interval time.Duration, f func() bool) {
	ticker := time.NewTicker(interval)
	defer func() {
		ticker.Stop()
		t.state.Store(int32(StateCancelled))
		close(t.done)
	}()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
		}

		// A cancellation may race with the ticker, in which case the stop channel takes priority.
		select {
		case <-t.stop:
			return
		default:
		}

		if t.tick(f) {
			t.Cancel()
			return
		}
	}
}

// tick runs f once, returning true if the task should be cancelled.
func (t *Task) tick(f func() bool) (cancel bool) {
	t.state.Store(int32(StateRunning))
	defer func() {
		t.runs.Inc()
		if err := recover(); err != nil {
			hub := sentry.CurrentHub().Clone()
			hub.Recover(err)
			hub.Flush(time.Second * 5)
			cancel = true
			return
		}
		t.state.Store(int32(StateScheduled))
	}()
	return f()
}
