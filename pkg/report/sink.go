// pkg/report/sink.go - message sink interface and implementations.

package report

import (
	"fmt"
	"sync"

	"github.com/windowsadmins/modman/pkg/logging"
)

// Sink abstracts the structured message stream: debug and warning
// text, progress activity, and structured error records.
type Sink interface {
	Debug(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Progress(activity, status string)
	Error(rec Record)
}

// LogSink routes the message stream to the logging package.
type LogSink struct{}

// NewLogSink returns a Sink backed by the package logger.
func NewLogSink() Sink {
	return &LogSink{}
}

func (s *LogSink) Debug(format string, args ...interface{}) {
	logging.Debug(fmt.Sprintf(format, args...))
}

func (s *LogSink) Warning(format string, args ...interface{}) {
	logging.Warn(fmt.Sprintf(format, args...))
}

func (s *LogSink) Progress(activity, status string) {
	logging.Info(activity, "status", status)
}

func (s *LogSink) Error(rec Record) {
	logging.Error(rec.Kind.String(),
		"category", string(rec.Category),
		"module", rec.Module,
		"target", rec.Target,
		"error", rec.Err)
}

// Collector retains everything it receives; used by tests and for
// end-of-run summaries.
type Collector struct {
	mu       sync.Mutex
	Debugs   []string
	Warnings []string
	Records  []Record
}

func (c *Collector) Debug(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Debugs = append(c.Debugs, fmt.Sprintf(format, args...))
}

func (c *Collector) Warning(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func (c *Collector) Progress(activity, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Debugs = append(c.Debugs, fmt.Sprintf("%s: %s", activity, status))
}

func (c *Collector) Error(rec Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Records = append(c.Records, rec)
}

// Errors returns the collected error records.
func (c *Collector) Errors() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.Records))
	copy(out, c.Records)
	return out
}

// Tee fans messages out to multiple sinks.
type Tee []Sink

func (t Tee) Debug(format string, args ...interface{}) {
	for _, s := range t {
		s.Debug(format, args...)
	}
}

func (t Tee) Warning(format string, args ...interface{}) {
	for _, s := range t {
		s.Warning(format, args...)
	}
}

func (t Tee) Progress(activity, status string) {
	for _, s := range t {
		s.Progress(activity, status)
	}
}

func (t Tee) Error(rec Record) {
	for _, s := range t {
		s.Error(rec)
	}
}
