package phaser

import (
	"time"

	"github.com/google/uuid"
)

// ToggleEvent describes one phase change made by a scheduler
type ToggleEvent struct {
	ID        string
	Scheduler string
	From      Phase
	To        Phase
	Sequence  int
	Timestamp time.Time
}

// NewToggleEvent creates a toggle event stamped with the given time
func NewToggleEvent(scheduler string, from, to Phase, sequence int, at time.Time) ToggleEvent {
	return ToggleEvent{
		ID:        uuid.New().String(),
		Scheduler: scheduler,
		From:      from,
		To:        to,
		Sequence:  sequence,
		Timestamp: at,
	}
}

// SleepEvent describes one randomized wait of the scheduler loop
type SleepEvent struct {
	Scheduler string
	Iteration int
	Units     int
	Duration  time.Duration
	Elapsed   time.Duration
}
