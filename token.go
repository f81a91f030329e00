package snippet

import (
	"fmt"
	"time"
)

// TokenState is the lifecycle state of a token.
type TokenState int32

const (
	// StateInPool means the token is idle.
	StateInPool TokenState = iota + 1
	// StateActive means a capture is running.
	StateActive
	// StateEndCaptureExecuted means the capture has completed.
	StateEndCaptureExecuted
	// StateAttenuated is reported only by NoOpToken.
	StateAttenuated
)

func (s TokenState) String() string {
	switch s {
	case StateInPool:
		return "in-pool"
	case StateActive:
		return "active"
	case StateEndCaptureExecuted:
		return "end-capture-executed"
	case StateAttenuated:
		return "attenuated"
	default:
		return fmt.Sprintf("TokenState(%d)", int32(s))
	}
}

// Token is a capture in progress. It can be passed around freely and is
// completed by EndCapture or EndCaptureWithMessage.
type Token interface {
	// EndCapture completes the capture and logs it. Only the first call
	// produces a Record; later calls return EmptyRecord.
	EndCapture() Record
	// EndCaptureWithMessage is EndCapture with a custom message in the line.
	EndCaptureWithMessage(message string) Record
	// AddSplit records the time since the previous split, or since the
	// start for the first one. An empty name leaves the split unnamed.
	AddSplit(name string) error
	// OverrideFilter replaces the filter used by this token's lines.
	OverrideFilter(filter string) Token
	Filter() string
	// EnableThreadLock restricts completion to the goroutine that started the capture.
	EnableThreadLock() Token
	ThreadLockEnabled() bool
	CreatorID() int64
	Start() time.Time
	End() time.Time
	Splits() []Split
	State() TokenState
}

// LogToken is the token handed out by MeasuredPath. It refers to a pooled
// slot plus the generation it was issued with, so a reference kept after
// completion behaves like a completed token even once the slot is reused.
// The zero value behaves like a token sitting in the pool.
type LogToken struct {
	s   *slot
	gen uint64
}

var _ Token = LogToken{}

// lock acquires the slot and reports whether t still owns it.
func (t LogToken) lock() bool {
	if t.s == nil {
		return false
	}
	t.s.mu.Lock()
	if t.s.gen != t.gen {
		t.s.mu.Unlock()
		return false
	}
	return true
}

// EndCapture completes the capture.
func (t LogToken) EndCapture() Record {
	return t.end("")
}

// EndCaptureWithMessage completes the capture with a custom message.
func (t LogToken) EndCaptureWithMessage(message string) Record {
	return t.end(message)
}

func (t LogToken) end(message string) Record {
	rec, ok := t.finish(message)
	if ok {
		t.s.path.dispatch(rec)
	}
	return rec
}

// finish runs the whole completion under the slot lock so that exactly one
// caller observes the active state.
func (t LogToken) finish(message string) (Record, bool) {
	if !t.lock() {
		return EmptyRecord, false
	}
	s := t.s
	defer s.mu.Unlock()

	if s.state != StateActive {
		return EmptyRecord, false
	}
	p := s.path
	if s.threadLock && goroutineID() != s.creator {
		p.emit(LevelError, s.filter, fmt.Sprintf(
			"thread lock enabled: token started on %s cannot be ended on %s",
			goroutineName(s.creator), goroutineName(goroutineID())))
		return EmptyRecord, false
	}

	s.state = StateEndCaptureExecuted
	s.end = p.clock.Now()

	resolver := s.resolver
	if resolver == nil {
		resolver = p.resolver()
	}
	frame, err := resolver.Resolve(APIEndCapture)
	if err != nil {
		panic(err)
	}
	rec := newRecord(frame, goroutineName(goroutineID()), s.end.Sub(s.start))

	_, flags := p.settings.snapshot()
	p.emit(LevelInfo, s.filter, formatCapture(message, rec, flags))
	if len(s.splits) > 0 {
		summary, err := formatSplitSummary(s.splits, rec)
		if err != nil {
			p.emit(LevelError, s.filter, err.Error())
		} else {
			p.emit(LevelInfo, s.filter, summary)
		}
	}

	if _, tagged := p.tags.unregister(t); !tagged {
		p.debugf("token %d had no tag", s.handle)
	}
	if err := p.pool.recycle(s); err != nil {
		panic(err)
	}
	return rec, true
}

// AddSplit records a split and logs it. It returns ErrInvalidState when
// the token is not active.
func (t LogToken) AddSplit(name string) error {
	if !t.lock() {
		state := StateEndCaptureExecuted
		if t.s == nil {
			state = StateInPool
		}
		return fmt.Errorf("%w: split on %s token", ErrInvalidState, state)
	}
	s := t.s
	if s.state != StateActive {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: split on %s token", ErrInvalidState, state)
	}

	now := s.path.clock.Now()
	from := s.start
	if len(s.splits) > 0 {
		from = s.lastSplit
	}
	s.nextSeq++
	split := Split{Started: from, Ended: now, Name: name, Sequence: s.nextSeq}
	if s.splits == nil {
		s.splits = make([]Split, 0, 4)
	}
	s.splits = append(s.splits, split)
	s.lastSplit = now
	filter := s.filter
	s.mu.Unlock()

	s.path.emit(LevelInfo, filter, formatSplit(split))
	return nil
}

// OverrideFilter replaces the filter for this capture only.
func (t LogToken) OverrideFilter(filter string) Token {
	if t.lock() {
		if t.s.state == StateActive {
			t.s.filter = filter
		}
		t.s.mu.Unlock()
	}
	return t
}

// Filter returns the filter used by this token.
func (t LogToken) Filter() string {
	if !t.lock() {
		return ""
	}
	defer t.s.mu.Unlock()
	return t.s.filter
}

// EnableThreadLock restricts completion to the creating goroutine.
func (t LogToken) EnableThreadLock() Token {
	if t.lock() {
		if t.s.state == StateActive {
			t.s.threadLock = true
		}
		t.s.mu.Unlock()
	}
	return t
}

// ThreadLockEnabled reports whether the thread lock is on.
func (t LogToken) ThreadLockEnabled() bool {
	if !t.lock() {
		return false
	}
	defer t.s.mu.Unlock()
	return t.s.threadLock
}

// CreatorID returns the id of the goroutine that started the capture, or -1.
func (t LogToken) CreatorID() int64 {
	if !t.lock() {
		return -1
	}
	defer t.s.mu.Unlock()
	return t.s.creator
}

// Start returns when the capture started.
func (t LogToken) Start() time.Time {
	if !t.lock() {
		return time.Time{}
	}
	defer t.s.mu.Unlock()
	return t.s.start
}

// End returns when the capture ended. It is zero while the capture runs
// and after the token has been recycled.
func (t LogToken) End() time.Time {
	if !t.lock() {
		return time.Time{}
	}
	defer t.s.mu.Unlock()
	return t.s.end
}

// Splits returns a copy of the splits recorded so far.
func (t LogToken) Splits() []Split {
	if !t.lock() {
		return nil
	}
	defer t.s.mu.Unlock()
	if len(t.s.splits) == 0 {
		return nil
	}
	out := make([]Split, len(t.s.splits))
	copy(out, t.s.splits)
	return out
}

// State returns the lifecycle state seen through this reference.
func (t LogToken) State() TokenState {
	if t.s == nil {
		return StateInPool
	}
	if !t.lock() {
		return StateEndCaptureExecuted
	}
	defer t.s.mu.Unlock()
	return t.s.state
}

// AttenuatedToken is a token that does nothing. It stands in for a real
// token wherever one is not available, so callers never need nil checks.
type AttenuatedToken struct{}

// NoOpToken is the shared AttenuatedToken.
var NoOpToken Token = AttenuatedToken{}

func (AttenuatedToken) EndCapture() Record                  { return EmptyRecord }
func (AttenuatedToken) EndCaptureWithMessage(string) Record { return EmptyRecord }
func (AttenuatedToken) AddSplit(string) error               { return nil }
func (a AttenuatedToken) OverrideFilter(string) Token       { return a }
func (AttenuatedToken) Filter() string                      { return "" }
func (a AttenuatedToken) EnableThreadLock() Token           { return a }
func (AttenuatedToken) ThreadLockEnabled() bool             { return false }
func (AttenuatedToken) CreatorID() int64                    { return -1 }
func (AttenuatedToken) Start() time.Time                    { return time.Time{} }
func (AttenuatedToken) End() time.Time                      { return time.Time{} }
func (AttenuatedToken) Splits() []Split                     { return nil }
func (AttenuatedToken) State() TokenState                   { return StateAttenuated }

// ExtendableToken delegates every call to the token it wraps. Custom
// execution paths embed it and override only what they need, usually
// EndCapture and EndCaptureWithMessage.
type ExtendableToken struct {
	Token
}

// NewExtendableToken wraps inner.
func NewExtendableToken(inner Token) *ExtendableToken {
	return &ExtendableToken{Token: inner}
}

// Unwrap returns the wrapped token.
func (e *ExtendableToken) Unwrap() Token {
	return e.Token
}
