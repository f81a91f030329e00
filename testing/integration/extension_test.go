package integration

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/snippet"
	"github.com/zoobzio/snippet/config"
	"github.com/zoobzio/snippet/recorder"
)

func TestRecorderOverMeasuredPath(t *testing.T) {
	path := NewTestPath(t)
	var buf bytes.Buffer
	recording := recorder.New(path.MeasuredPath, &buf, recorder.FormatJSON)

	recording.Capture(func() { path.Work(5 * time.Millisecond) })
	token := recording.StartCaptureWithTag("batch")
	path.Work(15 * time.Millisecond)
	_ = recording.Find("batch").AddSplit("load")
	recording.Find("batch").EndCapture()
	token.EndCapture()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 persisted records, got %d", len(lines))
	}
	var second snippet.Record
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("Unexpected decode error: %v", err)
	}
	if second.Duration != 15*time.Millisecond || second.Function != "TestRecorderOverMeasuredPath" {
		t.Errorf("Unexpected record %+v", second)
	}
	path.AssertIdle(t)
}

func TestRecordHandlersSeeEveryCapture(t *testing.T) {
	path := NewTestPath(t)
	if err := path.EnableWorkerPool(4, 128); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var mu sync.Mutex
	var syncSeen, asyncSeen int
	var wg sync.WaitGroup
	path.OnRecord(func(snippet.Record) {
		mu.Lock()
		syncSeen++
		mu.Unlock()
	})
	path.OnRecordAsync(func(snippet.Record) {
		mu.Lock()
		asyncSeen++
		mu.Unlock()
		wg.Done()
	})

	const n = 50
	wg.Add(n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			path.Capture(func() {})
		} else {
			path.StartCapture().EndCapture()
		}
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if syncSeen != n || asyncSeen != n {
		t.Errorf("Expected %d deliveries each, got sync=%d async=%d", n, syncSeen, asyncSeen)
	}
}

func TestConfiguredInertPath(t *testing.T) {
	t.Setenv("SNIPPET_PATH", "inert")
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	sink := NewMockSink(t)
	path, err := cfg.NewPath(snippet.NewSettings(), sink)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ran := false
	path.Capture(func() { ran = true })
	path.StartCaptureWithTag("t").EndCapture()

	if !ran {
		t.Error("Expected the closure to run on the inert path")
	}
	sink.AssertLineCount(snippet.LevelInfo, 0)
}
