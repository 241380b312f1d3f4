package phaser

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// SchedulerState represents the lifecycle state of a scheduler
type SchedulerState int

const (
	// Scheduler was created but not started
	SchedulerIdle SchedulerState = iota
	// Scheduler loop is running
	SchedulerRunning
	// Scheduler loop exited after Stop or context cancellation
	SchedulerStopped
	// Scheduler loop exited because of a fault
	SchedulerFailed
)

// String returns the name of the state
func (s SchedulerState) String() string {
	switch s {
	case SchedulerIdle:
		return "idle"
	case SchedulerRunning:
		return "running"
	case SchedulerStopped:
		return "stopped"
	case SchedulerFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock replaces the wall clock, mainly for tests
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithObserver registers an observer before the scheduler starts
func WithObserver(observer Observer) Option {
	return func(s *Scheduler) {
		s.observers.AddObserver(observer)
	}
}

// WithRandSource sets the source of the cycle draws. It overrides Config.Seed.
// A rand.Source is not safe for concurrent use, so src must not be shared
// between schedulers; use WithSeed for options applied to several lights.
func WithRandSource(src rand.Source) Option {
	return func(s *Scheduler) {
		s.rng = rand.New(src)
	}
}

// WithSeed seeds the cycle draws. It overrides Config.Seed. Every scheduler
// the option is applied to gets its own source.
func WithSeed(seed uint64) Option {
	return func(s *Scheduler) {
		s.rng = rand.New(newSource(seed))
	}
}

func newSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// Scheduler toggles a phase between Red and Green on a randomized cadence
// and publishes every new phase into its queue.
//
// The loop sleeps a random number of cycle units per iteration and toggles
// only every GateIterations iterations, so with the default configuration
// consecutive toggles are 8 to 12 seconds apart.
type Scheduler struct {
	config    Config
	clock     clock.Clock
	rng       *rand.Rand
	queue     *Queue[Phase]
	observers *ObserverManager

	current atomic.Int32
	toggles atomic.Int64

	mutex  sync.Mutex
	state  SchedulerState
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewScheduler creates a scheduler with its own queue
func NewScheduler(cfg Config, opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Scheduler{
		config:    cfg,
		clock:     clock.New(),
		queue:     NewQueue[Phase](WithOrder(cfg.QueueOrder), WithLimit(cfg.QueueLimit)),
		observers: NewObserverManager(),
		state:     SchedulerIdle,
		done:      make(chan struct{}),
	}
	s.current.Store(int32(cfg.InitialPhase))

	if cfg.Seed != nil {
		s.rng = rand.New(newSource(*cfg.Seed))
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.rng == nil {
		s.rng = rand.New(newSource(rand.Uint64()))
	}

	return s, nil
}

// Name returns the configured scheduler name
func (s *Scheduler) Name() string {
	return s.config.Name
}

// Config returns the scheduler configuration
func (s *Scheduler) Config() Config {
	return s.config
}

// Queue returns the queue the scheduler publishes into
func (s *Scheduler) Queue() *Queue[Phase] {
	return s.queue
}

// CurrentPhase returns the current phase. Safe to call from any goroutine.
func (s *Scheduler) CurrentPhase() Phase {
	return Phase(s.current.Load())
}

// Toggles returns the number of toggles performed so far
func (s *Scheduler) Toggles() int {
	return int(s.toggles.Load())
}

// State returns the lifecycle state
func (s *Scheduler) State() SchedulerState {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// AddObserver adds an observer
func (s *Scheduler) AddObserver(observer Observer) {
	s.observers.AddObserver(observer)
}

// RemoveObserver removes an observer
func (s *Scheduler) RemoveObserver(observer Observer) {
	s.observers.RemoveObserver(observer)
}

// Start launches the scheduler loop. The loop runs until Stop is called or
// ctx is done. A scheduler can be started only once.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mutex.Lock()
	switch s.state {
	case SchedulerRunning:
		s.mutex.Unlock()
		return ErrAlreadyStarted
	case SchedulerStopped, SchedulerFailed:
		s.mutex.Unlock()
		return ErrSchedulerStopped
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = SchedulerRunning
	s.mutex.Unlock()

	phase := s.CurrentPhase()
	s.observers.NotifySchedulerStarted(s.config.Name, phase)
	s.observers.NotifyStateEnter(s.config.Name, phase)

	go s.run(runCtx)
	return nil
}

// Stop signals the loop to exit, waits for it and closes the queue so that
// blocked waiters return.
func (s *Scheduler) Stop() error {
	s.mutex.Lock()
	if s.state == SchedulerIdle {
		s.mutex.Unlock()
		return ErrNotStarted
	}
	cancel := s.cancel
	s.mutex.Unlock()

	cancel()
	<-s.done
	return nil
}

// Done is closed when the loop has exited
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the loop exits and returns its terminal error
func (s *Scheduler) Wait() error {
	if s.State() == SchedulerIdle {
		return ErrNotStarted
	}
	<-s.done
	return s.Err()
}

// Err returns the fault that ended the loop, or nil
func (s *Scheduler) Err() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.err
}

func (s *Scheduler) run(ctx context.Context) {
	var runErr error
	defer func() {
		if r := recover(); r != nil {
			runErr = NewSchedulerPanicError(s.config.Name, r)
		}
		s.finish(runErr)
	}()

	iteration := 0
	for {
		if iteration == s.config.GateIterations {
			iteration = 0
			if !s.sleep(ctx, s.config.ToggleDelay) {
				return
			}
			s.toggle()
		}

		iteration++
		units := s.config.CycleMin + s.rng.IntN(s.config.CycleMax-s.config.CycleMin+1)
		d := time.Duration(units) * s.config.CycleUnit

		start := s.clock.Now()
		if !s.sleep(ctx, d) {
			return
		}
		s.observers.NotifySleep(SleepEvent{
			Scheduler: s.config.Name,
			Iteration: iteration,
			Units:     units,
			Duration:  d,
			Elapsed:   s.clock.Since(start),
		})
	}
}

// toggle flips the phase and publishes it. The phase is stored before the
// push so a waiter that pops it reads the same value from CurrentPhase.
func (s *Scheduler) toggle() {
	from := s.CurrentPhase()
	to := from.Toggle()
	s.current.Store(int32(to))
	sequence := int(s.toggles.Add(1))

	s.queue.Push(to)

	name := s.config.Name
	s.observers.NotifyStateEnter(name, to)
	s.observers.NotifyToggle(NewToggleEvent(name, from, to, sequence, s.clock.Now()))
	s.observers.NotifyPublish(name, to, s.queue.Len())
}

// sleep waits for d and reports false if ctx ended first
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := s.clock.Timer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Scheduler) finish(err error) {
	s.mutex.Lock()
	s.err = err
	if err != nil {
		s.state = SchedulerFailed
	} else {
		s.state = SchedulerStopped
	}
	s.mutex.Unlock()

	s.queue.Close()
	if err != nil {
		s.observers.NotifyError(s.config.Name, err)
	}
	s.observers.NotifySchedulerStopped(s.config.Name, err)
	close(s.done)
}
