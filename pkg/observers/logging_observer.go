// Package observers provides observers for monitoring phase schedulers
package observers

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/anggasct/phaser"
)

// LogLevel represents the logging level
type LogLevel int

const (
	// LogError logs only errors
	LogError LogLevel = iota
	// LogWarning logs errors and warnings
	LogWarning
	// LogInfo logs errors, warnings, and info
	LogInfo
	// LogDebug logs errors, warnings, info, and debug
	LogDebug
)

// ParseLogLevel converts a level name into a LogLevel
func ParseLogLevel(name string) (LogLevel, error) {
	switch name {
	case "error":
		return LogError, nil
	case "warn", "warning":
		return LogWarning, nil
	case "info":
		return LogInfo, nil
	case "debug":
		return LogDebug, nil
	default:
		return LogInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// LoggingObserver logs scheduler events
type LoggingObserver struct {
	level     LogLevel
	prefix    string
	mutex     sync.RWMutex
	formatter LogFormatter
	output    io.Writer
}

// LogFormatter formats log messages
type LogFormatter func(level LogLevel, format string, args ...interface{}) string

// DefaultLogFormatter provides default log formatting
func DefaultLogFormatter(level LogLevel, format string, args ...interface{}) string {
	levelStr := "INFO"
	switch level {
	case LogError:
		levelStr = "ERROR"
	case LogWarning:
		levelStr = "WARN"
	case LogInfo:
		levelStr = "INFO"
	case LogDebug:
		levelStr = "DEBUG"
	}

	return fmt.Sprintf("[%s] %s", levelStr, fmt.Sprintf(format, args...))
}

// NewLoggingObserver creates a new logging observer writing to stdout
func NewLoggingObserver(level LogLevel, prefix string) *LoggingObserver {
	return &LoggingObserver{
		level:     level,
		prefix:    prefix,
		formatter: DefaultLogFormatter,
		output:    os.Stdout,
	}
}

// SetFormatter sets the log formatter
func (o *LoggingObserver) SetFormatter(formatter LogFormatter) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.formatter = formatter
}

// SetOutput sets the destination of log lines
func (o *LoggingObserver) SetOutput(w io.Writer) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.output = w
}

// log logs a message at the specified level
func (o *LoggingObserver) log(level LogLevel, format string, args ...interface{}) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if level <= o.level {
		prefix := ""
		if o.prefix != "" {
			prefix = fmt.Sprintf("[%s] ", o.prefix)
		}

		message := ""
		if o.formatter != nil {
			message = o.formatter(level, format, args...)
		} else {
			message = fmt.Sprintf(format, args...)
		}

		fmt.Fprintf(o.output, "%s%s\n", prefix, message)
	}
}

// OnToggle logs phase changes
func (o *LoggingObserver) OnToggle(event phaser.ToggleEvent) {
	o.log(LogInfo, "%s: %s -> %s (#%d)", event.Scheduler, event.From, event.To, event.Sequence)
}

// OnStateEnter logs the phase that became current
func (o *LoggingObserver) OnStateEnter(scheduler string, phase phaser.Phase) {
	o.log(LogDebug, "%s: entering %s", scheduler, phase)
}

// OnPublish logs queue publishes
func (o *LoggingObserver) OnPublish(scheduler string, phase phaser.Phase, queued int) {
	o.log(LogDebug, "%s: message %s has been sent to the queue (%d queued)", scheduler, phase, queued)
}

// OnSleep logs each completed wait
func (o *LoggingObserver) OnSleep(event phaser.SleepEvent) {
	o.log(LogDebug, "%s: done waiting %d units, %.3f ms", event.Scheduler, event.Units,
		float64(event.Elapsed.Microseconds())/1000)
}

// OnError logs errors
func (o *LoggingObserver) OnError(scheduler string, err error) {
	o.log(LogError, "%s: error: %v", scheduler, err)
}

// OnSchedulerStarted logs scheduler start
func (o *LoggingObserver) OnSchedulerStarted(scheduler string, phase phaser.Phase) {
	o.log(LogInfo, "%s: started in %s", scheduler, phase)
}

// OnSchedulerStopped logs scheduler exit
func (o *LoggingObserver) OnSchedulerStopped(scheduler string, err error) {
	if err != nil {
		o.log(LogWarning, "%s: stopped with error: %v", scheduler, err)
		return
	}
	o.log(LogInfo, "%s: stopped", scheduler)
}
