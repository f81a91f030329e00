package snippet

import (
	"testing"

	"github.com/bombsimon/logrusr/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusSinkLevelsAndFilter(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	sink := NewLogrusSink(logger)

	sink.Emit(Entry{Level: LevelInfo, Filter: "Boot", Message: "measured"})
	sink.Emit(Entry{Level: LevelError, Filter: "Boot", Message: "refused"})
	sink.Emit(Entry{Level: LevelDebug, Filter: "Trace", Message: "internal"})

	entries := hook.AllEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, "measured", entries[0].Message)
	assert.Equal(t, "Boot", entries[0].Data[FilterField])
	assert.Equal(t, logrus.ErrorLevel, entries[1].Level)
	assert.Equal(t, logrus.DebugLevel, entries[2].Level)
	assert.Equal(t, "Trace", entries[2].Data[FilterField])
}

func TestLogrusSinkWithMeasuredPath(t *testing.T) {
	logger, hook := test.NewNullLogger()
	path := NewMeasuredPath(NewSettings(), NewLogrusSink(logger))

	path.CaptureWithMessage("startup", func() {})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, DefaultFilter, entry.Data[FilterField])
	assert.Contains(t, entry.Message, "startup::[Class = snippet]|::::|[Method = TestLogrusSinkWithMeasuredPath]")
}

func TestLogrSinkThroughLogrus(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sink := NewLogrSink(logrusr.New(logger))

	sink.Emit(Entry{Level: LevelInfo, Filter: "Boot", Message: "measured"})
	sink.Emit(Entry{Level: LevelError, Filter: "Boot", Message: "refused"})
	sink.Emit(Entry{Level: LevelDebug, Filter: "Boot", Message: "hidden"})

	entries := hook.AllEntries()
	require.Len(t, entries, 2, "debug entries stay below the logger's info level")
	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, "measured", entries[0].Message)
	assert.Equal(t, logrus.ErrorLevel, entries[1].Level)
	assert.Equal(t, "refused", entries[1].Message)
}

func TestSinkFuncAndDiscard(t *testing.T) {
	var got []Entry
	sink := SinkFunc(func(e Entry) { got = append(got, e) })

	sink.Emit(Entry{Message: "one"})
	DiscardSink.Emit(Entry{Message: "dropped"})

	require.Len(t, got, 1)
	assert.Equal(t, "one", got[0].Message)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "unknown", Level(9).String())
}
