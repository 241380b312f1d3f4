package observers

import (
	"sync"
	"time"

	"github.com/anggasct/phaser"
)

// phaseEntry is the phase a scheduler is currently in and when it entered it
type phaseEntry struct {
	phase phaser.Phase
	at    time.Time
}

// MetricsObserver collects metrics about scheduler execution. Counts are
// aggregated across schedulers; intervals and time spent are tracked per
// scheduler name.
type MetricsObserver struct {
	phaseVisits      map[phaser.Phase]int
	phaseTimeSpent   map[phaser.Phase]time.Duration
	transitionCounts map[string]int
	drawCounts       map[int]int
	toggleIntervals  []time.Duration
	publishCount     int
	errorCount       int
	lastEntry        map[string]phaseEntry
	lastToggle       map[string]time.Time
	now              func() time.Time
	mutex            sync.RWMutex
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		phaseVisits:      make(map[phaser.Phase]int),
		phaseTimeSpent:   make(map[phaser.Phase]time.Duration),
		transitionCounts: make(map[string]int),
		drawCounts:       make(map[int]int),
		lastEntry:        make(map[string]phaseEntry),
		lastToggle:       make(map[string]time.Time),
		now:              time.Now,
	}
}

// OnStateEnter records phase entry and closes the time spent in the
// previous phase
func (o *MetricsObserver) OnStateEnter(scheduler string, phase phaser.Phase) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	now := o.now()
	if previous, ok := o.lastEntry[scheduler]; ok {
		o.phaseTimeSpent[previous.phase] += now.Sub(previous.at)
	}

	o.phaseVisits[phase]++
	o.lastEntry[scheduler] = phaseEntry{phase: phase, at: now}
}

// OnToggle records transition metrics
func (o *MetricsObserver) OnToggle(event phaser.ToggleEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	transitionKey := event.From.String() + "->" + event.To.String()
	o.transitionCounts[transitionKey]++

	if last, ok := o.lastToggle[event.Scheduler]; ok {
		o.toggleIntervals = append(o.toggleIntervals, event.Timestamp.Sub(last))
	}
	o.lastToggle[event.Scheduler] = event.Timestamp
}

// OnPublish records publish metrics
func (o *MetricsObserver) OnPublish(scheduler string, phase phaser.Phase, queued int) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.publishCount++
}

// OnSleep records the distribution of cycle draws
func (o *MetricsObserver) OnSleep(event phaser.SleepEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.drawCounts[event.Units]++
}

// OnError records error metrics
func (o *MetricsObserver) OnError(scheduler string, err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.errorCount++
}

// OnSchedulerStarted implements phaser.ExtendedObserver
func (o *MetricsObserver) OnSchedulerStarted(scheduler string, phase phaser.Phase) {}

// OnSchedulerStopped implements phaser.ExtendedObserver
func (o *MetricsObserver) OnSchedulerStopped(scheduler string, err error) {}

// GetPhaseVisitCounts returns the number of times each phase became current
func (o *MetricsObserver) GetPhaseVisitCounts() map[phaser.Phase]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[phaser.Phase]int)
	for phase, count := range o.phaseVisits {
		result[phase] = count
	}
	return result
}

// GetPhaseTimeSpent returns the completed time spent in each phase
func (o *MetricsObserver) GetPhaseTimeSpent() map[phaser.Phase]time.Duration {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[phaser.Phase]time.Duration)
	for phase, duration := range o.phaseTimeSpent {
		result[phase] = duration
	}
	return result
}

// GetTransitionCounts returns the number of times each transition occurred
func (o *MetricsObserver) GetTransitionCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[string]int)
	for transition, count := range o.transitionCounts {
		result[transition] = count
	}
	return result
}

// GetDrawCounts returns how often each number of cycle units was drawn
func (o *MetricsObserver) GetDrawCounts() map[int]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[int]int)
	for units, count := range o.drawCounts {
		result[units] = count
	}
	return result
}

// GetToggleIntervals returns the time between consecutive toggles of the
// same scheduler
func (o *MetricsObserver) GetToggleIntervals() []time.Duration {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]time.Duration, len(o.toggleIntervals))
	copy(result, o.toggleIntervals)
	return result
}

// GetPublishCount returns the number of queue publishes
func (o *MetricsObserver) GetPublishCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.publishCount
}

// GetErrorCount returns the number of errors
func (o *MetricsObserver) GetErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.errorCount
}

// Reset resets all metrics
func (o *MetricsObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.phaseVisits = make(map[phaser.Phase]int)
	o.phaseTimeSpent = make(map[phaser.Phase]time.Duration)
	o.transitionCounts = make(map[string]int)
	o.drawCounts = make(map[int]int)
	o.toggleIntervals = nil
	o.publishCount = 0
	o.errorCount = 0
	o.lastEntry = make(map[string]phaseEntry)
	o.lastToggle = make(map[string]time.Time)
}
