package phaser

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the scheduler and queue
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Queue was closed while waiting or pushing
	ErrCodeQueueClosed
	// Scheduler was started twice
	ErrCodeAlreadyStarted
	// Scheduler is not running
	ErrCodeNotStarted
	// Scheduler was stopped and cannot be restarted
	ErrCodeStopped
	// Configuration is invalid
	ErrCodeInvalidConfiguration
	// Scheduler loop panicked
	ErrCodeSchedulerPanic
)

var (
	// ErrQueueClosed is returned by PopContext once the queue is closed and drained
	ErrQueueClosed = errors.New("phaser: queue closed")

	// ErrAlreadyStarted is returned when Start is called on a running scheduler
	ErrAlreadyStarted = errors.New("phaser: scheduler already started")

	// ErrNotStarted is returned when an operation requires a running scheduler
	ErrNotStarted = errors.New("phaser: scheduler not started")

	// ErrSchedulerStopped is returned when Start is called after Stop
	ErrSchedulerStopped = errors.New("phaser: scheduler stopped")
)

// ConfigurationError represents an invalid configuration value
type ConfigurationError struct {
	Field string
	Issue string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(field, issue string) *ConfigurationError {
	return &ConfigurationError{
		Field: field,
		Issue: issue,
	}
}

// SchedulerError represents a scheduler lifecycle or runtime failure
type SchedulerError struct {
	Code      ErrorCode
	Scheduler string
	Operation string
	Message   string
	Cause     error
}

func (e *SchedulerError) Error() string {
	msg := fmt.Sprintf("scheduler %q error during %s: %s", e.Scheduler, e.Operation, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *SchedulerError) Unwrap() error {
	return e.Cause
}

// NewSchedulerError creates a new scheduler error
func NewSchedulerError(code ErrorCode, scheduler, operation, message string, cause error) *SchedulerError {
	return &SchedulerError{
		Code:      code,
		Scheduler: scheduler,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// NewSchedulerPanicError wraps a value recovered from the scheduler loop
func NewSchedulerPanicError(scheduler string, recovered any) *SchedulerError {
	cause, ok := recovered.(error)
	if !ok {
		cause = fmt.Errorf("%v", recovered)
	}
	return NewSchedulerError(ErrCodeSchedulerPanic, scheduler, "run", "loop panicked", cause)
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsSchedulerError checks if an error is a SchedulerError
func IsSchedulerError(err error) bool {
	var target *SchedulerError
	return errors.As(err, &target)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var schedErr *SchedulerError
	switch {
	case err == nil:
		return ErrCodeNone
	case errors.As(err, &schedErr):
		return schedErr.Code
	case IsConfigurationError(err):
		return ErrCodeInvalidConfiguration
	case errors.Is(err, ErrQueueClosed):
		return ErrCodeQueueClosed
	case errors.Is(err, ErrAlreadyStarted):
		return ErrCodeAlreadyStarted
	case errors.Is(err, ErrNotStarted):
		return ErrCodeNotStarted
	case errors.Is(err, ErrSchedulerStopped):
		return ErrCodeStopped
	default:
		return ErrCodeNone
	}
}
