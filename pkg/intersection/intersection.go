// Package intersection runs a group of traffic lights and the vehicles
// waiting on them.
package intersection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/anggasct/phaser"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnknownStreet is returned when no light controls the requested street
	ErrUnknownStreet = errors.New("intersection: unknown street")

	// ErrNotRunning is returned when the intersection has not been started
	ErrNotRunning = errors.New("intersection: not running")
)

// Intersection owns a set of lights and joins their scheduler goroutines
type Intersection struct {
	name   string
	lights map[string]*phaser.Light
	order  []string

	mutex   sync.Mutex
	group   *errgroup.Group
	started bool
}

// New creates the lights described by plan. opts are applied to every light.
func New(plan Plan, opts ...phaser.Option) (*Intersection, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	in := &Intersection{
		name:   plan.Name,
		lights: make(map[string]*phaser.Light, len(plan.Lights)),
		order:  make([]string, 0, len(plan.Lights)),
	}

	for _, cfg := range plan.Lights {
		light, err := phaser.NewLight(cfg.Name, cfg, opts...)
		if err != nil {
			return nil, fmt.Errorf("create light %q: %w", cfg.Name, err)
		}
		in.lights[cfg.Name] = light
		in.order = append(in.order, cfg.Name)
	}

	return in, nil
}

// Name returns the intersection name
func (in *Intersection) Name() string {
	return in.name
}

// Streets returns the light names in plan order
func (in *Intersection) Streets() []string {
	return append([]string(nil), in.order...)
}

// Light returns the light controlling street
func (in *Intersection) Light(street string) (*phaser.Light, bool) {
	light, ok := in.lights[street]
	return light, ok
}

// AddObserver registers observer on every light
func (in *Intersection) AddObserver(observer phaser.Observer) {
	for _, name := range in.order {
		in.lights[name].AddObserver(observer)
	}
}

// Start launches every light. A fault in one light cancels the others; the
// fault is returned by Wait and Shutdown.
func (in *Intersection) Start(ctx context.Context) error {
	in.mutex.Lock()
	defer in.mutex.Unlock()

	if in.started {
		return phaser.ErrAlreadyStarted
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for i, name := range in.order {
		light := in.lights[name]
		if err := light.Start(groupCtx); err != nil {
			for _, started := range in.order[:i] {
				_ = in.lights[started].Stop()
			}
			return fmt.Errorf("start light %q: %w", name, err)
		}
		group.Go(light.Wait)
	}

	in.group = group
	in.started = true
	return nil
}

// Wait blocks until every light has stopped and returns the first fault
func (in *Intersection) Wait() error {
	in.mutex.Lock()
	group := in.group
	in.mutex.Unlock()

	if group == nil {
		return ErrNotRunning
	}
	return group.Wait()
}

// Shutdown stops every light and joins their goroutines
func (in *Intersection) Shutdown() error {
	in.mutex.Lock()
	group := in.group
	in.mutex.Unlock()

	if group == nil {
		return ErrNotRunning
	}

	for _, name := range in.order {
		_ = in.lights[name].Stop()
	}
	return group.Wait()
}

// Vehicle is a car approaching the intersection on one street
type Vehicle struct {
	ID     string
	Street string
}

// NewVehicle creates a vehicle approaching on street
func NewVehicle(street string) Vehicle {
	return Vehicle{ID: uuid.New().String(), Street: street}
}

// Cross blocks until the vehicle's light turns green
func (in *Intersection) Cross(ctx context.Context, v Vehicle) error {
	light, ok := in.lights[v.Street]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStreet, v.Street)
	}
	if err := light.WaitForGreen(ctx); err != nil {
		return fmt.Errorf("vehicle %s on %s: %w", v.ID, v.Street, err)
	}
	return nil
}
