package snippet

import (
	"errors"
	"sync"
	"testing"
)

func TestPoolObtainCreatesActiveSlots(t *testing.T) {
	pool := newTokenPool(nil)

	a := pool.obtain()
	b := pool.obtain()

	if a == b {
		t.Fatal("Expected distinct slots")
	}
	if a.state != StateActive || b.state != StateActive {
		t.Errorf("Expected active slots, got %s and %s", a.state, b.state)
	}
	if a.handle != 0 || b.handle != 1 {
		t.Errorf("Expected handles 0 and 1, got %d and %d", a.handle, b.handle)
	}
	if pool.Size() != 2 || pool.Issued() != 2 || pool.Idle() != 0 {
		t.Errorf("Unexpected counters size=%d issued=%d idle=%d", pool.Size(), pool.Issued(), pool.Idle())
	}
}

func TestPoolRecycleReusesSlots(t *testing.T) {
	pool := newTokenPool(nil)

	s := pool.obtain()
	s.filter = "dirty"
	s.splits = append(s.splits, Split{Name: "x", Sequence: 1})
	s.threadLock = true
	gen := s.gen

	if err := pool.recycle(s); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.state != StateInPool || s.gen != gen+1 {
		t.Errorf("Expected in-pool slot with bumped generation, got %s gen %d", s.state, s.gen)
	}
	if s.filter != "" || len(s.splits) != 0 || s.threadLock || s.creator != -1 {
		t.Errorf("Expected reset slot, got %+v", s)
	}
	if cap(s.splits) == 0 {
		t.Error("Expected split capacity to be kept")
	}

	again := pool.obtain()
	if again != s {
		t.Error("Expected the idle slot to be reused")
	}
	if pool.Size() != 1 {
		t.Errorf("Expected 1 slot, got %d", pool.Size())
	}
}

func TestPoolRejectsDoubleRecycle(t *testing.T) {
	pool := newTokenPool(nil)

	s := pool.obtain()
	if err := pool.recycle(s); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := pool.recycle(s); !errors.Is(err, ErrInvalidRelease) {
		t.Errorf("Expected ErrInvalidRelease, got %v", err)
	}
	if pool.Idle() != 1 {
		t.Errorf("Expected the slot to be idle once, got %d", pool.Idle())
	}
}

func TestPoolRejectsForeignSlots(t *testing.T) {
	pool := newTokenPool(nil)
	other := newTokenPool(nil)

	pool.obtain()
	foreign := other.obtain()

	if err := pool.recycle(foreign); !errors.Is(err, ErrInvalidRelease) {
		t.Errorf("Expected ErrInvalidRelease for foreign slot, got %v", err)
	}
	if err := pool.recycle(nil); !errors.Is(err, ErrInvalidRelease) {
		t.Errorf("Expected ErrInvalidRelease for nil, got %v", err)
	}
	if err := pool.recycle(&slot{handle: 42}); !errors.Is(err, ErrInvalidRelease) {
		t.Errorf("Expected ErrInvalidRelease for unknown handle, got %v", err)
	}
	if pool.Issued() != 1 {
		t.Errorf("Expected register untouched, got %d issued", pool.Issued())
	}
}

func TestPoolIssuedMatchesOwnership(t *testing.T) {
	pool := newTokenPool(nil)

	const n = 100
	slots := make(chan *slot, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots <- pool.obtain()
		}()
	}
	wg.Wait()
	close(slots)

	seen := make(map[*slot]bool)
	for s := range slots {
		if seen[s] {
			t.Fatal("Expected every obtain to return a different slot")
		}
		seen[s] = true
		if !pool.isIssued(s) {
			t.Errorf("Expected slot %d to be issued", s.handle)
		}
	}

	for s := range seen {
		if err := pool.recycle(s); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		if pool.isIssued(s) {
			t.Errorf("Expected slot %d to be released", s.handle)
		}
	}
	if pool.Issued() != 0 || pool.Idle() != n {
		t.Errorf("Expected all slots idle, got issued=%d idle=%d", pool.Issued(), pool.Idle())
	}
}
