package observers

import "os"

// LogLevelEnv names the environment variable read by NewDefaultLoggingObserver
const LogLevelEnv = "PHASER_LOG_LEVEL"

// NewDefaultLoggingObserver creates a logging observer prefixed "phaser".
// The level comes from PHASER_LOG_LEVEL and falls back to LogInfo.
func NewDefaultLoggingObserver() *LoggingObserver {
	level, err := ParseLogLevel(os.Getenv(LogLevelEnv))
	if err != nil {
		level = LogInfo
	}
	return NewLoggingObserver(level, "phaser")
}
