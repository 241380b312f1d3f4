package phaser

import (
	"fmt"
	"sync"
)

// Observer represents an entity that observes phase changes
type Observer interface {
	// Required methods

	// OnToggle is called after the scheduler toggles the phase
	OnToggle(event ToggleEvent)

	// OnStateEnter is called when a phase becomes current, including the
	// initial phase at start
	OnStateEnter(scheduler string, phase Phase)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnPublish is called after a phase was pushed to the queue
	OnPublish(scheduler string, phase Phase, queued int)

	// OnSleep is called after each randomized wait of the scheduler loop
	OnSleep(event SleepEvent)

	// OnError is called when an error occurs in the scheduler or an observer
	OnError(scheduler string, err error)

	// OnSchedulerStarted is called when the scheduler loop starts
	OnSchedulerStarted(scheduler string, phase Phase)

	// OnSchedulerStopped is called when the scheduler loop exits. err is nil
	// for a regular stop.
	OnSchedulerStopped(scheduler string, err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnToggle implements the required Observer method
func (o *BaseObserver) OnToggle(event ToggleEvent) {}

// OnStateEnter implements the required Observer method
func (o *BaseObserver) OnStateEnter(scheduler string, phase Phase) {}

// OnPublish implements the optional ExtendedObserver method
func (o *BaseObserver) OnPublish(scheduler string, phase Phase, queued int) {}

// OnSleep implements the optional ExtendedObserver method
func (o *BaseObserver) OnSleep(event SleepEvent) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(scheduler string, err error) {}

// OnSchedulerStarted implements the optional ExtendedObserver method
func (o *BaseObserver) OnSchedulerStarted(scheduler string, phase Phase) {}

// OnSchedulerStopped implements the optional ExtendedObserver method
func (o *BaseObserver) OnSchedulerStopped(scheduler string, err error) {}

// ObserverManager manages a collection of observers
type ObserverManager struct {
	mutex     sync.RWMutex
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	om.mutex.Lock()
	defer om.mutex.Unlock()
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	om.mutex.Lock()
	defer om.mutex.Unlock()
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	return len(om.observers)
}

func (om *ObserverManager) snapshot() []Observer {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)
	return observers
}

// call runs fn for one observer. A panicking observer is reported through
// OnError and never reaches the scheduler loop.
func (om *ObserverManager) call(scheduler, method string, observer Observer, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if extObs, ok := observer.(ExtendedObserver); ok {
				func() {
					defer func() { recover() }()
					extObs.OnError(scheduler, fmt.Errorf("observer panic in %s: %v", method, r))
				}()
			}
		}
	}()
	fn()
}

// NotifyToggle notifies all observers of a phase toggle
func (om *ObserverManager) NotifyToggle(event ToggleEvent) {
	for _, observer := range om.snapshot() {
		observer := observer
		om.call(event.Scheduler, "OnToggle", observer, func() {
			observer.OnToggle(event)
		})
	}
}

// NotifyStateEnter notifies all observers that a phase became current
func (om *ObserverManager) NotifyStateEnter(scheduler string, phase Phase) {
	for _, observer := range om.snapshot() {
		observer := observer
		om.call(scheduler, "OnStateEnter", observer, func() {
			observer.OnStateEnter(scheduler, phase)
		})
	}
}

// NotifyPublish notifies all observers that a phase was queued
func (om *ObserverManager) NotifyPublish(scheduler string, phase Phase, queued int) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			om.call(scheduler, "OnPublish", observer, func() {
				extObs.OnPublish(scheduler, phase, queued)
			})
		}
	}
}

// NotifySleep notifies all observers of a completed wait
func (om *ObserverManager) NotifySleep(event SleepEvent) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			om.call(event.Scheduler, "OnSleep", observer, func() {
				extObs.OnSleep(event)
			})
		}
	}
}

// NotifyError notifies all observers of errors
func (om *ObserverManager) NotifyError(scheduler string, err error) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			func() {
				defer func() { recover() }()
				extObs.OnError(scheduler, err)
			}()
		}
	}
}

// NotifySchedulerStarted notifies all observers that the loop has started
func (om *ObserverManager) NotifySchedulerStarted(scheduler string, phase Phase) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			om.call(scheduler, "OnSchedulerStarted", observer, func() {
				extObs.OnSchedulerStarted(scheduler, phase)
			})
		}
	}
}

// NotifySchedulerStopped notifies all observers that the loop has exited
func (om *ObserverManager) NotifySchedulerStopped(scheduler string, err error) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			om.call(scheduler, "OnSchedulerStopped", observer, func() {
				extObs.OnSchedulerStopped(scheduler, err)
			})
		}
	}
}
