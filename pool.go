package snippet

import (
	"fmt"
	"sync"
	"time"
)

// slot is the pooled state behind a LogToken. A slot keeps its handle for
// its whole life; gen changes every time it goes back to the pool.
//
//nolint:govet // Field order groups the lifecycle fields together
type slot struct {
	mu         sync.Mutex
	path       *MeasuredPath
	resolver   Resolver
	start      time.Time
	end        time.Time
	lastSplit  time.Time
	filter     string
	splits     []Split
	gen        uint64
	creator    int64
	handle     int
	nextSeq    int
	state      TokenState
	threadLock bool
}

// resetLocked clears every per-capture field. Split capacity is kept.
// Caller holds s.mu.
func (s *slot) resetLocked() {
	s.resolver = nil
	s.start = time.Time{}
	s.end = time.Time{}
	s.lastSplit = time.Time{}
	s.filter = ""
	clear(s.splits)
	s.splits = s.splits[:0]
	s.creator = -1
	s.nextSeq = 0
	s.threadLock = false
}

// tokenPool recycles slots. Slots live in an arena and are addressed by
// their index, so identity never depends on mutable state.
// One mutex covers the arena, the idle list and the allocation register.
type tokenPool struct {
	owner  *MeasuredPath
	trace  func(format string, args ...any)
	slots  []*slot
	idle   []int
	issued []bool
	mu     sync.Mutex
}

func newTokenPool(owner *MeasuredPath) *tokenPool {
	return &tokenPool{
		owner: owner,
		trace: func(string, ...any) {},
	}
}

// obtain returns an active slot, reusing an idle one when possible.
func (p *tokenPool) obtain() *slot {
	p.mu.Lock()
	defer p.mu.Unlock()

	var s *slot
	if n := len(p.idle); n > 0 {
		s = p.slots[p.idle[n-1]]
		p.idle = p.idle[:n-1]
		p.trace("pool: reusing slot %d, %d idle left", s.handle, len(p.idle))
	} else {
		s = &slot{
			path:    p.owner,
			handle:  len(p.slots),
			creator: -1,
			state:   StateInPool,
		}
		p.slots = append(p.slots, s)
		p.issued = append(p.issued, false)
		p.trace("pool: created slot %d", s.handle)
	}

	p.issued[s.handle] = true

	// Only a stale reference can contend for an idle slot's lock, and stale
	// references never reach back into the pool while holding it.
	s.mu.Lock()
	s.state = StateActive
	s.mu.Unlock()
	return s
}

// recycle returns a slot to the idle list.
// The caller holds s.mu if the slot was handed out.
func (p *tokenPool) recycle(s *slot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s == nil {
		return fmt.Errorf("%w: nil token", ErrInvalidRelease)
	}
	h := s.handle
	if h < 0 || h >= len(p.slots) || p.slots[h] != s {
		return fmt.Errorf("%w: foreign token", ErrInvalidRelease)
	}
	if !p.issued[h] {
		return fmt.Errorf("%w: token %d released twice", ErrInvalidRelease, h)
	}

	s.resetLocked()
	s.gen++
	s.state = StateInPool
	p.issued[h] = false
	p.idle = append(p.idle, h)
	p.trace("pool: recycled slot %d, %d idle", h, len(p.idle))
	return nil
}

// Idle returns the number of slots waiting for reuse.
func (p *tokenPool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// Issued returns the number of slots currently owned by callers.
func (p *tokenPool) Issued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, ok := range p.issued {
		if ok {
			n++
		}
	}
	return n
}

// Size returns the number of slots ever created.
func (p *tokenPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}

func (p *tokenPool) isIssued(s *slot) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := s.handle
	return h >= 0 && h < len(p.slots) && p.slots[h] == s && p.issued[h]
}
