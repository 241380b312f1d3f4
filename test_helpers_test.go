package phaser

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

// TestObserver is a mock observer for testing that captures all observer events
type TestObserver struct {
	mutex     sync.RWMutex
	Toggles   []ToggleEvent
	Enters    []Phase
	Publishes []Phase
	Sleeps    []SleepEvent
	Errors    []error
	Started   []Phase
	Stopped   []error
	Timeline  []string
}

// NewTestObserver creates a new test observer
func NewTestObserver() *TestObserver {
	return &TestObserver{}
}

func (o *TestObserver) OnToggle(event ToggleEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Toggles = append(o.Toggles, event)
	o.Timeline = append(o.Timeline, "toggle")
}

func (o *TestObserver) OnStateEnter(scheduler string, phase Phase) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Enters = append(o.Enters, phase)
}

func (o *TestObserver) OnPublish(scheduler string, phase Phase, queued int) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Publishes = append(o.Publishes, phase)
}

func (o *TestObserver) OnSleep(event SleepEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Sleeps = append(o.Sleeps, event)
	o.Timeline = append(o.Timeline, "sleep")
}

func (o *TestObserver) OnError(scheduler string, err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

func (o *TestObserver) OnSchedulerStarted(scheduler string, phase Phase) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Started = append(o.Started, phase)
}

func (o *TestObserver) OnSchedulerStopped(scheduler string, err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Stopped = append(o.Stopped, err)
}

func (o *TestObserver) ToggleCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Toggles)
}

func (o *TestObserver) SleepCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Sleeps)
}

func (o *TestObserver) ErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Errors)
}

func (o *TestObserver) StoppedCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Stopped)
}

func (o *TestObserver) ToggleSnapshot() []ToggleEvent {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return append([]ToggleEvent(nil), o.Toggles...)
}

func (o *TestObserver) SleepSnapshot() []SleepEvent {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return append([]SleepEvent(nil), o.Sleeps...)
}

func (o *TestObserver) TimelineSnapshot() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return append([]string(nil), o.Timeline...)
}

// panicSource is a rand.Source whose draws fault the scheduler loop
type panicSource struct{}

func (panicSource) Uint64() uint64 {
	panic("entropy exhausted")
}

var _ rand.Source = panicSource{}

// fastConfig returns a configuration whose toggles are milliseconds apart
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.CycleUnit = time.Millisecond
	return cfg
}

// newTestScheduler creates a scheduler and stops it when the test ends
func newTestScheduler(t *testing.T, cfg Config, opts ...Option) *Scheduler {
	t.Helper()
	s, err := NewScheduler(cfg, opts...)
	if err != nil {
		t.Fatalf("Expected no error creating scheduler, got: %v", err)
	}
	t.Cleanup(func() {
		if s.State() != SchedulerIdle {
			_ = s.Stop()
		}
	})
	return s
}

// advanceUntil moves the mock clock forward in steps until done is closed
// or maxSteps is reached. It reports whether done was closed.
func advanceUntil(mock *clock.Mock, step time.Duration, maxSteps int, done <-chan struct{}) bool {
	for i := 0; i < maxSteps; i++ {
		select {
		case <-done:
			return true
		default:
		}
		mock.Add(step)
	}
	select {
	case <-done:
		return true
	case <-time.After(time.Second):
		return false
	}
}

// startWaiter runs WaitFor in a goroutine and returns its result channel
func startWaiter(ctx context.Context, q *Queue[Phase], target Phase) <-chan error {
	result := make(chan error, 1)
	go func() {
		result <- WaitFor(ctx, q, target)
	}()
	return result
}
