package recorder

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
	"gopkg.in/yaml.v3"

	"github.com/zoobzio/snippet"
)

func newMeasured(clock *clockz.FakeClock) *snippet.MeasuredPath {
	return snippet.NewMeasuredPath(snippet.NewSettings(), snippet.DiscardSink).WithClock(clock)
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []snippet.Record {
	t.Helper()
	var out []snippet.Record
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var rec snippet.Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestCaptureIsRecorded(t *testing.T) {
	clock := clockz.NewFakeClock()
	var buf bytes.Buffer
	p := New(newMeasured(clock), &buf, FormatJSON)

	rec := p.Capture(func() {
		clock.Advance(25 * time.Millisecond)
	})

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, rec, records[0])
	assert.Equal(t, 25*time.Millisecond, records[0].Duration)
	assert.Equal(t, "TestCaptureIsRecorded", records[0].Function)
	assert.Equal(t, 1, p.Written())
}

func TestTokenIsRecordedOnce(t *testing.T) {
	clock := clockz.NewFakeClock()
	var buf bytes.Buffer
	p := New(newMeasured(clock), &buf, FormatJSON)

	token := p.StartCaptureWithTag("job")
	clock.Advance(40 * time.Millisecond)

	found := p.Find("job")
	assert.Equal(t, snippet.StateActive, found.State())

	rec := token.EndCaptureWithMessage("done")
	assert.Equal(t, 40*time.Millisecond, rec.Duration)
	assert.Equal(t, "TestTokenIsRecordedOnce", rec.Function)

	assert.True(t, token.EndCapture().IsEmpty())
	assert.True(t, found.EndCapture().IsEmpty())

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, rec, records[0])
}

func TestTokenKeepsRecordingAfterChaining(t *testing.T) {
	clock := clockz.NewFakeClock()
	var buf bytes.Buffer
	p := New(newMeasured(clock), &buf, FormatJSON)

	token := p.StartCapture().OverrideFilter("Chained").EnableThreadLock()
	assert.Equal(t, "Chained", token.Filter())
	assert.True(t, token.ThreadLockEnabled())

	token.EndCapture()
	assert.Equal(t, 1, p.Written())
}

func TestInertRecordsNothing(t *testing.T) {
	var buf bytes.Buffer
	p := New(snippet.InertPath{}, &buf, FormatJSON)

	ran := false
	rec := p.Capture(func() { ran = true })
	assert.True(t, ran)
	assert.True(t, rec.IsEmpty())
	assert.Equal(t, snippet.NoOpToken, p.StartCapture())
	assert.Zero(t, buf.Len())
}

func TestYAMLFormat(t *testing.T) {
	clock := clockz.NewFakeClock()
	var buf bytes.Buffer
	p := New(newMeasured(clock), &buf, FormatYAML)

	p.Capture(func() { clock.Advance(time.Millisecond) })
	p.CaptureWithMessage("second", func() { clock.Advance(2 * time.Millisecond) })
	require.NoError(t, p.Close())

	dec := yaml.NewDecoder(strings.NewReader(buf.String()))
	var durations []time.Duration
	for {
		var rec snippet.Record
		if err := dec.Decode(&rec); err != nil {
			break
		}
		durations = append(durations, rec.Duration)
	}
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, durations)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteErrorIsKept(t *testing.T) {
	p := New(newMeasured(clockz.NewFakeClock()), failingWriter{}, FormatJSON)

	p.Capture(func() {})
	p.Capture(func() {})

	require.Error(t, p.Err())
	assert.Contains(t, p.Err().Error(), "disk full")
	assert.Zero(t, p.Written())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
