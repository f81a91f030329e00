package snippet

import "time"

// Record is the result of a completed capture.
// Records are values and are never reused by the library.
//
//nolint:govet // Field order follows the log line
type Record struct {
	Package  string        `json:"package" yaml:"package"`
	Symbol   string        `json:"symbol" yaml:"symbol"`
	Function string        `json:"function" yaml:"function"`
	File     string        `json:"file" yaml:"file"`
	Line     int           `json:"line" yaml:"line"`
	Thread   string        `json:"thread" yaml:"thread"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// EmptyRecord is returned when nothing was measured.
var EmptyRecord = Record{}

// IsEmpty reports whether r is the empty sentinel.
func (r Record) IsEmpty() bool {
	return r == EmptyRecord
}

// Millis returns the duration in whole milliseconds.
func (r Record) Millis() int64 {
	return r.Duration.Milliseconds()
}

func newRecord(frame Frame, thread string, d time.Duration) Record {
	return Record{
		Package:  frame.Package,
		Symbol:   frame.Symbol,
		Function: frame.Function,
		File:     frame.File,
		Line:     frame.Line,
		Thread:   thread,
		Duration: d,
	}
}
