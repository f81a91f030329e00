package snippet

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector is a Sink that buffers entries for later export.
// Safe for concurrent use by multiple goroutines.
//
//nolint:govet // Field alignment optimized for readability over memory efficiency
type Collector struct {
	entries      []Entry
	entriesCh    chan Entry
	stopCh       chan struct{}
	done         chan struct{}
	droppedCount atomic.Int64
	name         string
	mu           sync.Mutex
	closed       atomic.Bool
	syncMode     atomic.Bool // Bypass channel for synchronous collection.
}

// NewCollector creates a collector with the given name and channel buffer size.
func NewCollector(name string, bufferSize int) *Collector {
	c := &Collector{
		name:      name,
		entries:   make([]Entry, 0, 8),
		entriesCh: make(chan Entry, bufferSize),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	go c.start()
	return c
}

// Name returns the collector name.
func (c *Collector) Name() string {
	return c.name
}

func (c *Collector) start() {
	defer close(c.done)

	for {
		select {
		case <-c.stopCh:
			// Drain what is already queued.
			for {
				select {
				case entry := <-c.entriesCh:
					c.buffer(entry)
				default:
					return
				}
			}
		case entry := <-c.entriesCh:
			c.buffer(entry)
		}
	}
}

// Close stops the collector goroutine. Entries emitted afterwards are dropped.
// Safe to call more than once.
func (c *Collector) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	close(c.stopCh)
	select {
	case <-c.done:
	case <-time.After(100 * time.Millisecond):
	}
}

// Emit buffers an entry. When the channel is full the entry is dropped and
// counted. In sync mode the entry is buffered before Emit returns.
func (c *Collector) Emit(entry Entry) {
	if c.closed.Load() {
		c.droppedCount.Add(1)
		return
	}

	if c.syncMode.Load() {
		c.buffer(entry)
		return
	}

	select {
	case c.entriesCh <- entry:
	default:
		c.droppedCount.Add(1)
	}
}

func (c *Collector) buffer(entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= cap(c.entries) {
		currentCap := cap(c.entries)
		var newCap int
		if currentCap < 1024 {
			newCap = currentCap * 2
		} else {
			newCap = currentCap + currentCap/2
		}
		if newCap < 32 {
			newCap = 32
		}
		grown := make([]Entry, len(c.entries), newCap)
		copy(grown, c.entries)
		c.entries = grown
	}
	c.entries = append(c.entries, entry)
}

// Export returns all buffered entries and clears the buffer.
func (c *Collector) Export() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) == 0 {
		return nil
	}

	result := make([]Entry, len(c.entries))
	copy(result, c.entries)

	// Only shrink a very oversized buffer.
	if cap(c.entries) > 256 && len(c.entries) < cap(c.entries)/8 {
		newCap := cap(c.entries) / 4
		if newCap < 32 {
			newCap = 32
		}
		c.entries = make([]Entry, 0, newCap)
	} else {
		clear(c.entries)
		c.entries = c.entries[:0]
	}

	return result
}

// Count returns the number of buffered entries.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// DroppedCount returns how many entries were dropped.
func (c *Collector) DroppedCount() int64 {
	return c.droppedCount.Load()
}

// SetSyncMode makes Emit buffer directly instead of going through the channel.
// Tests use it to avoid waiting on the collector goroutine.
func (c *Collector) SetSyncMode(sync bool) {
	c.syncMode.Store(sync)
}

// Reset clears the buffer and the drop counter.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.entries = c.entries[:0]
	c.droppedCount.Store(0)
}
