package snippet

import (
	"sync"
	"testing"
	"time"
)

func infoEntry(msg string) Entry {
	return Entry{Level: LevelInfo, Filter: DefaultFilter, Message: msg}
}

func TestNewCollector(t *testing.T) {
	collector := NewCollector("test-collector", 100)
	defer collector.Close()

	if collector.Name() != "test-collector" {
		t.Errorf("Expected name 'test-collector', got %s", collector.Name())
	}

	if collector.Count() != 0 {
		t.Errorf("Expected 0 entries initially, got %d", collector.Count())
	}

	if collector.DroppedCount() != 0 {
		t.Errorf("Expected 0 dropped entries initially, got %d", collector.DroppedCount())
	}
}

func TestCollectorBasicCollection(t *testing.T) {
	collector := NewCollector("test", 10)
	collector.SetSyncMode(true)
	defer collector.Close()

	collector.Emit(infoEntry("first"))

	if collector.Count() != 1 {
		t.Errorf("Expected 1 entry, got %d", collector.Count())
	}

	entries := collector.Export()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 exported entry, got %d", len(entries))
	}
	if entries[0].Message != "first" {
		t.Errorf("Expected message 'first', got %s", entries[0].Message)
	}

	// After export, collector should be empty.
	if collector.Count() != 0 {
		t.Errorf("Expected 0 entries after export, got %d", collector.Count())
	}
}

func TestCollectorBackpressure(t *testing.T) {
	// Small buffer to trigger backpressure quickly.
	collector := NewCollector("test", 2)
	defer collector.Close()

	for i := 0; i < 1000; i++ {
		collector.Emit(infoEntry("burst"))
	}

	time.Sleep(50 * time.Millisecond)

	if collector.DroppedCount() == 0 {
		t.Error("Expected some entries to be dropped due to backpressure")
	}
	if int(collector.DroppedCount())+collector.Count() != 1000 {
		t.Errorf("Expected collected + dropped = 1000, got %d + %d",
			collector.Count(), collector.DroppedCount())
	}
}

func TestCollectorBufferGrowthAndShrink(t *testing.T) {
	collector := NewCollector("test", 1000)
	collector.SetSyncMode(true)
	defer collector.Close()

	for i := 0; i < 300; i++ {
		collector.Emit(infoEntry("grow"))
	}
	if got := len(collector.Export()); got != 300 {
		t.Errorf("Expected 300 exported entries, got %d", got)
	}

	for i := 0; i < 5; i++ {
		collector.Emit(infoEntry("small"))
	}
	if collector.Count() != 5 {
		t.Errorf("Expected 5 entries after small batch, got %d", collector.Count())
	}
}

func TestCollectorReset(t *testing.T) {
	collector := NewCollector("test", 10)
	collector.SetSyncMode(true)
	defer collector.Close()

	for i := 0; i < 5; i++ {
		collector.Emit(infoEntry("x"))
	}
	collector.droppedCount.Store(10)

	collector.Reset()

	if collector.Count() != 0 {
		t.Errorf("Expected 0 entries after reset, got %d", collector.Count())
	}
	if collector.DroppedCount() != 0 {
		t.Errorf("Expected 0 dropped count after reset, got %d", collector.DroppedCount())
	}
}

func TestCollectorClose(t *testing.T) {
	collector := NewCollector("test", 10)

	for i := 0; i < 3; i++ {
		collector.Emit(infoEntry("queued"))
	}
	collector.Close()
	collector.Close()

	// Queued entries are drained on close.
	if got := len(collector.Export()); got != 3 {
		t.Errorf("Expected 3 entries after close, got %d", got)
	}

	collector.Emit(infoEntry("late"))
	if collector.Count() != 0 {
		t.Errorf("Expected entries after close to be dropped, got %d", collector.Count())
	}
	if collector.DroppedCount() != 1 {
		t.Errorf("Expected 1 dropped entry, got %d", collector.DroppedCount())
	}
}

func TestCollectorConcurrentEmit(t *testing.T) {
	collector := NewCollector("test", 100)
	defer collector.Close()

	var wg sync.WaitGroup
	numGoroutines := 50
	perGoroutine := 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				collector.Emit(infoEntry("concurrent"))
			}
		}()
	}
	wg.Wait()

	time.Sleep(100 * time.Millisecond)

	expected := numGoroutines * perGoroutine
	total := int(collector.DroppedCount()) + collector.Count()
	if total != expected {
		t.Errorf("Expected %d total entries (collected + dropped), got %d", expected, total)
	}
}

func TestCollectorAsSink(t *testing.T) {
	collector := NewCollector("sink", 10)
	collector.SetSyncMode(true)
	defer collector.Close()

	var sink Sink = collector
	sink.Emit(Entry{Level: LevelError, Filter: "Custom", Message: "refused"})

	entries := collector.Export()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Filter != "Custom" || entries[0].Level != LevelError {
		t.Errorf("Unexpected entry %+v", entries[0])
	}
}
