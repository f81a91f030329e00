package snippet

import (
	"strings"
	"sync"
)

// Flag selects a piece of call-site metadata shown in log lines.
type Flag uint32

const (
	// FlagClass shows the symbol (receiver type or package) of the caller.
	FlagClass Flag = 1 << 31
	// FlagMethod shows the calling function.
	FlagMethod Flag = 1 << 30
	// FlagLine shows the calling line.
	FlagLine Flag = 1 << 29
	// FlagThread shows the goroutine.
	FlagThread Flag = 1 << 28
	// FlagNone shows nothing.
	FlagNone Flag = 0
)

const flagMask = FlagClass | FlagMethod | FlagLine | FlagThread

// DefaultFilter is the destination key used until SetFilter is called.
const DefaultFilter = "Snippet"

// DefaultFlags are the metadata flags used until changed.
const DefaultFlags = FlagClass | FlagMethod

func (f Flag) String() string {
	if f&flagMask == 0 {
		return "none"
	}
	var parts []string
	if f&FlagClass != 0 {
		parts = append(parts, "class")
	}
	if f&FlagMethod != 0 {
		parts = append(parts, "method")
	}
	if f&FlagLine != 0 {
		parts = append(parts, "line")
	}
	if f&FlagThread != 0 {
		parts = append(parts, "thread")
	}
	return strings.Join(parts, "|")
}

// Settings holds the configuration shared by the components built from it.
// It is meant to be prepared at startup; it stays safe to change later,
// but changes only affect captures that start afterwards.
type Settings struct {
	filter    string
	namespace string
	mu        sync.RWMutex
	flags     Flag
	debug     bool
}

// NewSettings returns settings with the library defaults.
func NewSettings() *Settings {
	return &Settings{
		filter:    DefaultFilter,
		namespace: DefaultNamespace,
		flags:     DefaultFlags,
	}
}

// SetFilter replaces the global filter and returns the previous one.
func (s *Settings) SetFilter(filter string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.filter
	s.filter = filter
	return old
}

// Filter returns the global filter.
func (s *Settings) Filter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// AddFlags sets the given flags and returns the resulting set.
// Compound values are accepted; unknown bits are ignored.
func (s *Settings) AddFlags(flags Flag) Flag {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags |= flags & flagMask
	return s.flags
}

// ClearFlags removes every metadata flag.
func (s *Settings) ClearFlags() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags = FlagNone
}

// Flags returns the current set.
func (s *Settings) Flags() Flag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags
}

// HasFlag reports whether every bit of flag is set.
// FlagNone is never reported as set.
func (s *Settings) HasFlag(flag Flag) bool {
	if flag == FlagNone {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags&flag == flag
}

// SetNamespace changes the prefix identifying library frames.
// Tokens already started keep the resolver they were started with.
func (s *Settings) SetNamespace(namespace string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespace = namespace
}

// Namespace returns the library frame prefix.
func (s *Settings) Namespace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.namespace
}

// SetDebug turns tracing of the library internals on or off.
func (s *Settings) SetDebug(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debug = on
}

// Debug reports whether internal tracing is on.
func (s *Settings) Debug() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debug
}

// snapshot reads the values used while formatting one line.
func (s *Settings) snapshot() (filter string, flags Flag) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter, s.flags
}
