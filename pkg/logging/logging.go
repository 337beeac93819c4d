// pkg/logging/logging.go - leveled logging for modman.
//
// File plus console output with a shared format. The package keeps a
// singleton logger so the rest of the code can call logging.Info and
// friends without threading a logger through every signature; before
// Init is called, messages fall back to the standard library logger so
// that library code (and tests) never lose output.

package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LogLevel represents the severity of the log message.
type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the string representation of the LogLevel.
func (ll LogLevel) String() string {
	switch ll {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a configuration string to a LogLevel. Unrecognized
// values resolve to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Logger writes leveled messages to an optional log file and the console.
type Logger struct {
	mu       sync.Mutex
	level    LogLevel
	logFile  *os.File
	fileLog  *log.Logger
	console  bool
	consoleW *log.Logger
}

var (
	instance *Logger
	mu       sync.Mutex
)

// Init opens the log file under logDir and installs the package-level
// logger. Passing an empty logDir keeps logging console-only.
func Init(logDir, level string, console bool) error {
	mu.Lock()
	defer mu.Unlock()

	l := &Logger{
		level:    ParseLevel(level),
		console:  console,
		consoleW: log.New(os.Stderr, "", 0),
	}

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return fmt.Errorf("creating log directory %s: %w", logDir, err)
		}
		path := filepath.Join(logDir, "modman.log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("opening log file %s: %w", path, err)
		}
		l.logFile = f
		l.fileLog = log.New(f, "", log.LstdFlags)
	}

	if instance != nil && instance.logFile != nil {
		instance.logFile.Close()
	}
	instance = l
	return nil
}

// CloseLogger flushes and closes the log file, if any.
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()
	if instance != nil && instance.logFile != nil {
		instance.logFile.Close()
		instance.logFile = nil
		instance.fileLog = nil
	}
}

// SetLevel adjusts the minimum level at runtime (used by -v flags).
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	if instance != nil {
		instance.level = level
	}
}

func (l *Logger) logMessage(level LogLevel, message string, keyValues ...interface{}) {
	if level > l.level {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", level.String(), message))
	for i := 0; i+1 < len(keyValues); i += 2 {
		sb.WriteString(fmt.Sprintf(" %v=%v", keyValues[i], keyValues[i+1]))
	}
	line := sb.String()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fileLog != nil {
		l.fileLog.Println(line)
	}
	if l.console || l.fileLog == nil {
		l.consoleW.Println(line)
	}
}

func dispatch(level LogLevel, message string, keyValues ...interface{}) {
	mu.Lock()
	l := instance
	mu.Unlock()
	if l == nil {
		// Logger not initialized yet; don't swallow the message.
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("[%s] %s", level.String(), message))
		for i := 0; i+1 < len(keyValues); i += 2 {
			sb.WriteString(fmt.Sprintf(" %v=%v", keyValues[i], keyValues[i+1]))
		}
		log.Println(sb.String())
		return
	}
	l.logMessage(level, message, keyValues...)
}

// Info logs an informational message with optional key/value pairs.
func Info(message string, keyValues ...interface{}) {
	dispatch(LevelInfo, message, keyValues...)
}

// Debug logs a debug message with optional key/value pairs.
func Debug(message string, keyValues ...interface{}) {
	dispatch(LevelDebug, message, keyValues...)
}

// Warn logs a warning message with optional key/value pairs.
func Warn(message string, keyValues ...interface{}) {
	dispatch(LevelWarn, message, keyValues...)
}

// Error logs an error message with optional key/value pairs.
func Error(message string, keyValues ...interface{}) {
	dispatch(LevelError, message, keyValues...)
}
