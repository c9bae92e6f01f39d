package debug

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Debug levels
const (
	LevelOff     = 0 // Warnings and errors only
	LevelInfo    = 1 // Important info (selected camera, focus mode, cycle results)
	LevelLive    = 2 // Live info (triggers, focus attempts)
	LevelVerbose = 3 // Verbose (configuration details, steps)
	LevelTrace   = 4 // Trace (every motion sample, GPIO, stale callbacks)
)

// Fields is an alias so callers do not need to import logrus for structured entries.
type Fields = logrus.Fields

var (
	level  int
	logger = logrus.StandardLogger()
)

// Init sets the debug level (0-4) and maps it onto the logrus level.
// 0 = warnings only
// 1 = important info
// 2 = live info
// 3 = verbose
// 4 = trace
func Init(debugLevel int) {
	level = debugLevel
	logger.SetLevel(LogrusLevel(debugLevel))
}

// LogrusLevel converts a debug level into the matching logrus level.
func LogrusLevel(debugLevel int) logrus.Level {
	switch {
	case debugLevel <= LevelOff:
		return logrus.WarnLevel
	case debugLevel == LevelInfo:
		return logrus.InfoLevel
	case debugLevel < LevelTrace:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// LevelFromLogrus is the inverse of LogrusLevel, used when --log-level overrides the config.
func LevelFromLogrus(l logrus.Level) int {
	switch {
	case l <= logrus.WarnLevel:
		return LevelOff
	case l == logrus.InfoLevel:
		return LevelInfo
	case l == logrus.DebugLevel:
		return LevelVerbose
	default:
		return LevelTrace
	}
}

// Level returns the current debug level.
func Level() int {
	return level
}

// IsEnabled returns true if debug level is >= the requested level.
func IsEnabled(minLevel int) bool {
	return level >= minLevel
}

// SetOutput redirects all log output (e.g. to mirror it to SSE clients).
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Logger returns the underlying logrus logger.
func Logger() *logrus.Logger {
	return logger
}

// With returns an entry carrying structured fields.
func With(fields Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

// --- Level 1 functions (Info): important info ---

// Info prints a level 1 message (important info).
func Info(format string, args ...interface{}) {
	if level >= LevelInfo {
		logger.Infof(format, args...)
	}
}

// Summary prints an important summary (level 1).
func Summary(title string) {
	if level >= LevelInfo {
		logger.Info("═══════════════════════════════════════")
		logger.Infof("  %s", title)
		logger.Info("═══════════════════════════════════════")
	}
}

// Value prints a named value (level 1).
func Value(name string, value interface{}) {
	if level >= LevelInfo {
		logger.WithField(name, value).Info(name)
	}
}

// --- Level 2 functions (Live): real-time info ---

// Live prints a level 2 message (live info).
func Live(format string, args ...interface{}) {
	if level >= LevelLive {
		logger.Debugf(format, args...)
	}
}

// Focus prints a focus attempt (level 2).
func Focus(cycle string, attempt int, outcome string) {
	if level >= LevelLive {
		logger.WithFields(logrus.Fields{
			"cycle":   cycle,
			"attempt": attempt,
		}).Debugf("focus %s", outcome)
	}
}

// --- Level 3 functions (Verbose): everything ---

// Verbose prints a level 3 message (verbose).
func Verbose(format string, args ...interface{}) {
	if level >= LevelVerbose {
		logger.Debugf(format, args...)
	}
}

// PrintStruct prints a struct in formatted form (level 3).
func PrintStruct(name string, v interface{}) {
	if level >= LevelVerbose {
		logger.Debugf("%s: %+v", name, v)
	}
}

// Section prints a section separator (level 3).
func Section(name string) {
	if level >= LevelVerbose {
		logger.Debug("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		logger.Debugf("  %s", name)
		logger.Debug("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	}
}

// Step prints a numbered step (level 3).
func Step(num int, description string) {
	if level >= LevelVerbose {
		logger.Debugf("Step %d: %s", num, description)
	}
}

// --- Level 4 functions (Trace): very low level ---

// Trace prints a level 4 message.
func Trace(format string, args ...interface{}) {
	if level >= LevelTrace {
		logger.Tracef(format, args...)
	}
}

// Sample prints a motion sample evaluation (level 4).
func Sample(ratio float64, armed, triggered bool) {
	if level >= LevelTrace {
		logger.WithFields(logrus.Fields{
			"ratio":     fmt.Sprintf("%.3f", ratio),
			"armed":     armed,
			"triggered": triggered,
		}).Trace("motion sample")
	}
}

// GPIO prints a GPIO operation (level 4).
func GPIO(operation string, pin int, value interface{}) {
	if level >= LevelTrace {
		logger.WithFields(logrus.Fields{
			"pin":   pin,
			"value": value,
		}).Tracef("gpio %s", operation)
	}
}

// --- General functions ---

// Error prints an error regardless of level.
func Error(err error) {
	logger.Error(err)
}

// Warn prints a warning regardless of level.
func Warn(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}
