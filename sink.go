package snippet

import (
	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"
)

// Level is the severity of an emitted entry.
type Level int

const (
	// LevelDebug is used for tracing of the library internals.
	LevelDebug Level = iota
	// LevelInfo is used for measurements and splits.
	LevelInfo
	// LevelError is used for refused operations.
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is one formatted line addressed to a filter.
type Entry struct {
	Filter  string `json:"filter"`
	Message string `json:"message"`
	Level   Level  `json:"level"`
}

// Sink receives every line the library produces.
// Implementations must be safe for concurrent use.
type Sink interface {
	Emit(entry Entry)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(entry Entry)

// Emit calls f.
func (f SinkFunc) Emit(entry Entry) {
	f(entry)
}

// DiscardSink drops everything.
var DiscardSink Sink = SinkFunc(func(Entry) {})

// FilterField is the logrus field carrying the entry filter.
const FilterField = "filter"

// LogrusSink writes entries to a logrus logger.
type LogrusSink struct {
	logger logrus.FieldLogger
}

// NewLogrusSink wraps logger. A nil logger uses the logrus standard logger.
func NewLogrusSink(logger logrus.FieldLogger) *LogrusSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogrusSink{logger: logger}
}

// Emit logs the entry with its filter as a field.
func (s *LogrusSink) Emit(entry Entry) {
	l := s.logger.WithField(FilterField, entry.Filter)
	switch entry.Level {
	case LevelDebug:
		l.Debug(entry.Message)
	case LevelError:
		l.Error(entry.Message)
	default:
		l.Info(entry.Message)
	}
}

// LogrSink writes entries to a logr logger, naming it after the filter.
type LogrSink struct {
	logger logr.Logger
}

// NewLogrSink wraps logger.
func NewLogrSink(logger logr.Logger) *LogrSink {
	return &LogrSink{logger: logger}
}

// Emit logs the entry. Debug entries use verbosity 1.
func (s *LogrSink) Emit(entry Entry) {
	l := s.logger
	if entry.Filter != "" {
		l = l.WithName(entry.Filter)
	}
	switch entry.Level {
	case LevelDebug:
		l.V(1).Info(entry.Message)
	case LevelError:
		l.Error(nil, entry.Message)
	default:
		l.Info(entry.Message)
	}
}
