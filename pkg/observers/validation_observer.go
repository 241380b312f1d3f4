package observers

import (
	"fmt"
	"sync"
	"time"

	"github.com/anggasct/phaser"
)

// ValidationObserver checks that a scheduler alternates phases and keeps
// toggles within the configured interval bounds
type ValidationObserver struct {
	minInterval time.Duration
	maxInterval time.Duration
	tolerance   time.Duration
	last        map[string]phaser.ToggleEvent
	violations  []string
	mutex       sync.RWMutex
}

// NewValidationObserver creates a validation observer for cfg. tolerance is
// added to the upper interval bound to absorb scheduling jitter.
func NewValidationObserver(cfg phaser.Config, tolerance time.Duration) *ValidationObserver {
	return &ValidationObserver{
		minInterval: cfg.MinToggleInterval(),
		maxInterval: cfg.MaxToggleInterval(),
		tolerance:   tolerance,
		last:        make(map[string]phaser.ToggleEvent),
		violations:  make([]string, 0),
	}
}

// OnToggle validates alternation and timing
func (o *ValidationObserver) OnToggle(event phaser.ToggleEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if event.To != event.From.Toggle() {
		o.violations = append(o.violations, fmt.Sprintf(
			"%s: toggle #%d did not alternate (%s -> %s)", event.Scheduler, event.Sequence, event.From, event.To))
	}

	if previous, ok := o.last[event.Scheduler]; ok {
		if previous.To != event.From {
			o.violations = append(o.violations, fmt.Sprintf(
				"%s: toggle #%d starts from %s but previous toggle ended in %s",
				event.Scheduler, event.Sequence, event.From, previous.To))
		}

		interval := event.Timestamp.Sub(previous.Timestamp)
		if interval < o.minInterval {
			o.violations = append(o.violations, fmt.Sprintf(
				"%s: toggle #%d after %v, below minimum %v", event.Scheduler, event.Sequence, interval, o.minInterval))
		}
		if interval > o.maxInterval+o.tolerance {
			o.violations = append(o.violations, fmt.Sprintf(
				"%s: toggle #%d after %v, above maximum %v", event.Scheduler, event.Sequence, interval, o.maxInterval))
		}
	}

	o.last[event.Scheduler] = event
}

// OnStateEnter implements phaser.Observer
func (o *ValidationObserver) OnStateEnter(scheduler string, phase phaser.Phase) {}

// OnError records errors as violations
func (o *ValidationObserver) OnError(scheduler string, err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.violations = append(o.violations, fmt.Sprintf("%s: error occurred: %v", scheduler, err))
}

// OnPublish implements phaser.ExtendedObserver
func (o *ValidationObserver) OnPublish(scheduler string, phase phaser.Phase, queued int) {}

// OnSleep implements phaser.ExtendedObserver
func (o *ValidationObserver) OnSleep(event phaser.SleepEvent) {}

// OnSchedulerStarted implements phaser.ExtendedObserver
func (o *ValidationObserver) OnSchedulerStarted(scheduler string, phase phaser.Phase) {}

// OnSchedulerStopped implements phaser.ExtendedObserver
func (o *ValidationObserver) OnSchedulerStopped(scheduler string, err error) {}

// GetViolations returns all validation violations
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset resets the validation state
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.last = make(map[string]phaser.ToggleEvent)
	o.violations = make([]string, 0)
}
