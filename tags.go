package snippet

import "sync"

// tagRegistry maps tags to live tokens. The mapping does not own the token.
// Every operation holds the lock for its whole duration.
type tagRegistry struct {
	entries map[Tag]LogToken
	trace   func(format string, args ...any)
	mu      sync.Mutex
}

func newTagRegistry() *tagRegistry {
	return &tagRegistry{
		entries: make(map[Tag]LogToken),
		trace:   func(string, ...any) {},
	}
}

// register binds tag to token unless the tag is already taken.
func (r *tagRegistry) register(tag Tag, token LogToken) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tag]; exists {
		r.trace("tags: %q already taken", tag)
		return false
	}
	r.entries[tag] = token
	r.trace("tags: %q registered", tag)
	return true
}

// unregister removes whichever tag points at token.
func (r *tagRegistry) unregister(token LogToken) (Tag, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for tag, t := range r.entries {
		if t == token {
			delete(r.entries, tag)
			r.trace("tags: %q removed", tag)
			return tag, true
		}
	}
	return "", false
}

// lookup returns the token registered under tag.
func (r *tagRegistry) lookup(tag Tag) (LogToken, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.entries[tag]
	return t, ok
}

func (r *tagRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
