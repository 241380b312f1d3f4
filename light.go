package phaser

import (
	"context"

	"github.com/google/uuid"
)

// Light is a traffic light driven by a Scheduler
type Light struct {
	id        string
	name      string
	scheduler *Scheduler
}

// NewLight creates a light. The name overrides cfg.Name.
func NewLight(name string, cfg Config, opts ...Option) (*Light, error) {
	cfg.Name = name
	scheduler, err := NewScheduler(cfg, opts...)
	if err != nil {
		return nil, err
	}

	return &Light{
		id:        uuid.New().String(),
		name:      name,
		scheduler: scheduler,
	}, nil
}

// ID returns the unique id of the light
func (l *Light) ID() string {
	return l.id
}

// Name returns the light name
func (l *Light) Name() string {
	return l.name
}

// Scheduler returns the underlying scheduler
func (l *Light) Scheduler() *Scheduler {
	return l.scheduler
}

// Start begins cycling the light
func (l *Light) Start(ctx context.Context) error {
	return l.scheduler.Start(ctx)
}

// Stop halts the light and releases blocked waiters
func (l *Light) Stop() error {
	return l.scheduler.Stop()
}

// Wait blocks until the light stops and returns its fault, if any
func (l *Light) Wait() error {
	return l.scheduler.Wait()
}

// CurrentPhase returns the phase currently shown
func (l *Light) CurrentPhase() Phase {
	return l.scheduler.CurrentPhase()
}

// WaitForGreen blocks until the light publishes Green
func (l *Light) WaitForGreen(ctx context.Context) error {
	return WaitFor(ctx, l.scheduler.Queue(), Green)
}

// AddObserver adds an observer to the light's scheduler
func (l *Light) AddObserver(observer Observer) {
	l.scheduler.AddObserver(observer)
}
