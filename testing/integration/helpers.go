package integration

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/zoobzio/snippet"
)

// MockSink wraps a real collector with test utilities.
// Collection is synchronous so assertions never wait.
//
//nolint:govet // Field alignment optimized for test helper readability
type MockSink struct {
	exported []snippet.Entry
	*snippet.Collector
	t  *testing.T
	mu sync.Mutex
}

// NewMockSink creates a synchronous collector closed at the end of the test.
func NewMockSink(t *testing.T) *MockSink {
	t.Helper()
	collector := snippet.NewCollector(t.Name(), 256)
	collector.SetSyncMode(true)
	t.Cleanup(collector.Close)
	return &MockSink{Collector: collector, t: t}
}

// GetAll returns every entry seen so far without losing earlier exports.
func (m *MockSink) GetAll() []snippet.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.exported = append(m.exported, m.Collector.Export()...)
	all := make([]snippet.Entry, len(m.exported))
	copy(all, m.exported)
	return all
}

// Lines returns the messages of every entry at level.
func (m *MockSink) Lines(level snippet.Level) []string {
	var out []string
	for _, e := range m.GetAll() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// AssertLineCount verifies the exact number of lines at level.
func (m *MockSink) AssertLineCount(level snippet.Level, expected int) {
	m.t.Helper()
	if got := len(m.Lines(level)); got != expected {
		m.t.Errorf("Expected %d %s lines, got %d", expected, level, got)
	}
}

// AssertLineContains checks that some line at level contains substr.
func (m *MockSink) AssertLineContains(level snippet.Level, substr string) {
	m.t.Helper()
	for _, line := range m.Lines(level) {
		if strings.Contains(line, substr) {
			return
		}
	}
	m.t.Errorf("No %s line contains %q", level, substr)
}

// TestPath bundles a measured path with its sink and fake clock.
type TestPath struct {
	*snippet.MeasuredPath
	Sink  *MockSink
	Clock *clockz.FakeClock
}

// NewTestPath creates a measured path with fresh settings, a mock sink and
// a fake clock.
func NewTestPath(t *testing.T) *TestPath {
	t.Helper()
	sink := NewMockSink(t)
	clock := clockz.NewFakeClock()
	path := snippet.NewMeasuredPath(snippet.NewSettings(), sink).WithClock(clock)
	t.Cleanup(path.Close)
	return &TestPath{MeasuredPath: path, Sink: sink, Clock: clock}
}

// Work advances the fake clock, standing in for a unit of work.
func (p *TestPath) Work(d time.Duration) {
	p.Clock.Advance(d)
}

// AssertIdle verifies no token or tag is left behind.
func (p *TestPath) AssertIdle(t *testing.T) {
	t.Helper()
	stats := p.Stats()
	if stats.Issued != 0 || stats.Tags != 0 || stats.Idle != stats.Slots {
		t.Errorf("Expected an idle pool, got %+v", stats)
	}
}
