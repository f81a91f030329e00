// Package recorder provides an execution path that persists every completed
// record, as JSON lines or as a stream of YAML documents.
package recorder

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/zoobzio/snippet"
)

// Format selects the encoding of persisted records.
type Format int

const (
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = iota
	// FormatYAML writes one YAML document per record.
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat accepts "json" and "yaml".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json", "jsonl":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatJSON, fmt.Errorf("recorder: unknown format %q", s)
	}
}

type encoder interface {
	Encode(v any) error
}

// Path wraps another execution path and writes each non-empty record it
// produces. Log lines still go to the wrapped path's sink.
type Path struct {
	inner   snippet.ExecutionPath
	enc     encoder
	err     error
	written int
	mu      sync.Mutex
}

var _ snippet.ExecutionPath = (*Path)(nil)

// New creates a recording path around inner.
func New(inner snippet.ExecutionPath, w io.Writer, format Format) *Path {
	var enc encoder
	if format == FormatYAML {
		ye := yaml.NewEncoder(w)
		ye.SetIndent(2)
		enc = ye
	} else {
		enc = json.NewEncoder(w)
	}
	return &Path{inner: inner, enc: enc}
}

// Capture runs fn through the wrapped path and records the result.
func (p *Path) Capture(fn func()) snippet.Record {
	rec := p.inner.Capture(fn)
	p.write(rec)
	return rec
}

// CaptureWithMessage runs fn through the wrapped path and records the result.
func (p *Path) CaptureWithMessage(message string, fn func()) snippet.Record {
	rec := p.inner.CaptureWithMessage(message, fn)
	p.write(rec)
	return rec
}

// StartCapture starts a token whose completion is recorded.
func (p *Path) StartCapture() snippet.Token {
	return p.wrap(p.inner.StartCapture())
}

// StartCaptureWithTag starts a tagged token whose completion is recorded.
func (p *Path) StartCaptureWithTag(tag snippet.Tag) snippet.Token {
	return p.wrap(p.inner.StartCaptureWithTag(tag))
}

// Find returns the tagged token, wrapped so its completion is recorded.
func (p *Path) Find(tag snippet.Tag) snippet.Token {
	return p.wrap(p.inner.Find(tag))
}

func (p *Path) wrap(t snippet.Token) snippet.Token {
	if t.State() == snippet.StateAttenuated {
		return t
	}
	return &Token{ExtendableToken: snippet.NewExtendableToken(t), path: p}
}

func (p *Path) write(rec snippet.Record) {
	if rec.IsEmpty() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return
	}
	if err := p.enc.Encode(rec); err != nil {
		p.err = fmt.Errorf("recorder: write record: %w", err)
		return
	}
	p.written++
}

// Written returns the number of records persisted.
func (p *Path) Written() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written
}

// Err returns the first write error. Records are no longer persisted after it.
func (p *Path) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close finishes the YAML stream. It does not close the underlying writer.
func (p *Path) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.enc.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("recorder: close: %w", err)
		}
	}
	return p.err
}

// Token records its own completion and delegates everything else.
type Token struct {
	*snippet.ExtendableToken
	path *Path
}

// EndCapture completes the capture and records it.
func (t *Token) EndCapture() snippet.Record {
	rec := t.ExtendableToken.EndCapture()
	t.path.write(rec)
	return rec
}

// EndCaptureWithMessage completes the capture and records it.
func (t *Token) EndCaptureWithMessage(message string) snippet.Record {
	rec := t.ExtendableToken.EndCaptureWithMessage(message)
	t.path.write(rec)
	return rec
}

// OverrideFilter changes the wrapped token's filter.
func (t *Token) OverrideFilter(filter string) snippet.Token {
	t.ExtendableToken.OverrideFilter(filter)
	return t
}

// EnableThreadLock locks the wrapped token to its creating goroutine.
func (t *Token) EnableThreadLock() snippet.Token {
	t.ExtendableToken.EnableThreadLock()
	return t
}
