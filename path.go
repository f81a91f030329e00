package snippet

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/clockz"
)

// ExecutionPath carries out every capture. MeasuredPath does the work,
// InertPath only runs closures. Custom paths usually wrap one of them.
type ExecutionPath interface {
	// Capture runs fn and measures it.
	Capture(fn func()) Record
	// CaptureWithMessage runs fn and measures it, prefixing the line with message.
	CaptureWithMessage(message string, fn func()) Record
	// StartCapture begins a token capture.
	StartCapture() Token
	// StartCaptureWithTag begins a token capture that Find can locate by tag.
	// A tag that is already in use yields NoOpToken.
	StartCaptureWithTag(tag Tag) Token
	// Find returns the live token registered under tag, or NoOpToken.
	Find(tag Tag) Token
}

// RecordHandler is called when a capture completes.
type RecordHandler func(rec Record)

type handlerEntry struct {
	handler RecordHandler
	id      uint64
	async   bool
}

type resolverCache struct {
	resolver  Resolver
	namespace string
}

// MeasuredPath measures captures, resolves their call sites and emits one
// line per capture to its sink.
// Safe for concurrent use by multiple goroutines.
//
//nolint:govet // Field order optimized for functionality over memory
type MeasuredPath struct {
	settings       *Settings
	sink           Sink
	clock          clockz.Clock
	newResolver    ResolverFactory
	cached         atomic.Pointer[resolverCache]
	pool           *tokenPool
	tags           *tagRegistry
	handlers       []handlerEntry
	panicHook      func(handlerID uint64, r interface{})
	workers        *workerPool
	handlersLock   sync.RWMutex
	nextID         atomic.Uint64
	droppedRecords atomic.Uint64
}

var _ ExecutionPath = (*MeasuredPath)(nil)

// NewMeasuredPath creates a path reading settings and writing to sink.
// A nil settings uses DefaultSettings, a nil sink uses the logrus standard logger.
func NewMeasuredPath(settings *Settings, sink Sink) *MeasuredPath {
	return newMeasuredPath(settings, sink, clockz.RealClock, NewStackResolverFactory)
}

func newMeasuredPath(settings *Settings, sink Sink, clock clockz.Clock, factory ResolverFactory) *MeasuredPath {
	if settings == nil {
		settings = DefaultSettings()
	}
	if sink == nil {
		sink = NewLogrusSink(nil)
	}
	p := &MeasuredPath{
		settings:    settings,
		sink:        sink,
		clock:       clock,
		newResolver: factory,
		handlers:    make([]handlerEntry, 0),
	}
	p.pool = newTokenPool(p)
	p.pool.trace = p.debugf
	p.tags = newTagRegistry()
	p.tags.trace = p.debugf
	return p
}

// WithClock returns a new path with the specified clock.
// Enables clock injection for deterministic testing.
func (p *MeasuredPath) WithClock(clock clockz.Clock) *MeasuredPath {
	return newMeasuredPath(p.settings, p.sink, clock, p.newResolver)
}

// WithResolver returns a new path building its resolvers with factory.
func (p *MeasuredPath) WithResolver(factory ResolverFactory) *MeasuredPath {
	if factory == nil {
		factory = NewStackResolverFactory
	}
	return newMeasuredPath(p.settings, p.sink, p.clock, factory)
}

// Settings returns the settings the path reads.
func (p *MeasuredPath) Settings() *Settings {
	return p.settings
}

// resolver returns the resolver for the current namespace, rebuilding it
// when the namespace has changed.
func (p *MeasuredPath) resolver() Resolver {
	ns := p.settings.Namespace()
	if c := p.cached.Load(); c != nil && c.namespace == ns {
		return c.resolver
	}
	c := &resolverCache{namespace: ns, resolver: p.newResolver(ns)}
	p.cached.Store(c)
	return c.resolver
}

func (p *MeasuredPath) emit(level Level, filter, message string) {
	p.sink.Emit(Entry{Level: level, Filter: filter, Message: message})
}

func (p *MeasuredPath) debugf(format string, args ...any) {
	if !p.settings.Debug() {
		return
	}
	p.emit(LevelDebug, p.settings.Filter(), fmt.Sprintf(format, args...))
}

// Capture runs fn and measures it.
func (p *MeasuredPath) Capture(fn func()) Record {
	return p.capture("", fn)
}

// CaptureWithMessage runs fn and measures it with a message.
func (p *MeasuredPath) CaptureWithMessage(message string, fn func()) Record {
	return p.capture(message, fn)
}

// capture panics with ErrResolution when no caller can be found. A panic
// in fn propagates and nothing is emitted.
func (p *MeasuredPath) capture(message string, fn func()) Record {
	start := p.clock.Now()
	if fn != nil {
		fn()
	}
	elapsed := p.clock.Now().Sub(start)

	frame, err := p.resolver().Resolve(APICapture)
	if err != nil {
		panic(err)
	}
	rec := newRecord(frame, goroutineName(goroutineID()), elapsed)

	filter, flags := p.settings.snapshot()
	p.emit(LevelInfo, filter, formatCapture(message, rec, flags))
	p.dispatch(rec)
	return rec
}

// StartCapture begins a token capture.
func (p *MeasuredPath) StartCapture() Token {
	return p.start()
}

func (p *MeasuredPath) start() LogToken {
	s := p.pool.obtain()
	filter, _ := p.settings.snapshot()
	resolver := p.resolver()

	s.mu.Lock()
	s.start = p.clock.Now()
	s.creator = goroutineID()
	s.filter = filter
	s.resolver = resolver
	t := LogToken{s: s, gen: s.gen}
	s.mu.Unlock()
	return t
}

// StartCaptureWithTag begins a token capture registered under tag.
func (p *MeasuredPath) StartCaptureWithTag(tag Tag) Token {
	t := p.start()
	if p.tags.register(tag, t) {
		return t
	}

	s := t.s
	s.mu.Lock()
	filter := s.filter
	err := p.pool.recycle(s)
	s.mu.Unlock()
	if err != nil {
		panic(err)
	}
	p.emit(LevelError, filter, fmt.Sprintf("tag %q is already in use, capture ignored", tag))
	return NoOpToken
}

// Find returns the token registered under tag, or NoOpToken.
func (p *MeasuredPath) Find(tag Tag) Token {
	if t, ok := p.tags.lookup(tag); ok {
		return t
	}
	return NoOpToken
}

// Stats reports the token pool counters.
type Stats struct {
	Slots  int
	Idle   int
	Issued int
	Tags   int
}

// Stats returns a snapshot of the pool and the tag registry.
func (p *MeasuredPath) Stats() Stats {
	return Stats{
		Slots:  p.pool.Size(),
		Idle:   p.pool.Idle(),
		Issued: p.pool.Issued(),
		Tags:   p.tags.size(),
	}
}

// OnRecord registers a synchronous handler called when captures complete.
func (p *MeasuredPath) OnRecord(handler RecordHandler) uint64 {
	return p.registerHandler(handler, false)
}

// OnRecordAsync registers an asynchronous handler called when captures complete.
func (p *MeasuredPath) OnRecordAsync(handler RecordHandler) uint64 {
	return p.registerHandler(handler, true)
}

func (p *MeasuredPath) registerHandler(handler RecordHandler, async bool) uint64 {
	if handler == nil {
		return 0
	}

	id := p.nextID.Add(1)

	p.handlersLock.Lock()
	defer p.handlersLock.Unlock()

	p.handlers = append(p.handlers, handlerEntry{
		id:      id,
		handler: handler,
		async:   async,
	})

	return id
}

// RemoveHandler removes a handler by ID.
func (p *MeasuredPath) RemoveHandler(id uint64) {
	p.handlersLock.Lock()
	defer p.handlersLock.Unlock()

	for i, h := range p.handlers {
		if h.id == id {
			copy(p.handlers[i:], p.handlers[i+1:])
			p.handlers = p.handlers[:len(p.handlers)-1]
			return
		}
	}
}

// SetPanicHook sets a function to be called when a handler panics.
func (p *MeasuredPath) SetPanicHook(hook func(handlerID uint64, r interface{})) {
	p.handlersLock.Lock()
	defer p.handlersLock.Unlock()
	p.panicHook = hook
}

// dispatch hands a completed record to every handler.
func (p *MeasuredPath) dispatch(rec Record) {
	p.handlersLock.RLock()
	if len(p.handlers) == 0 {
		p.handlersLock.RUnlock()
		return
	}

	handlers := make([]handlerEntry, len(p.handlers))
	copy(handlers, p.handlers)
	workers := p.workers
	p.handlersLock.RUnlock()

	for _, h := range handlers {
		if h.async {
			entry := h
			if workers != nil {
				workers.submit(func() {
					p.safeCall(entry, rec)
				})
			} else {
				go p.safeCall(entry, rec)
			}
		} else {
			p.safeCall(h, rec)
		}
	}
}

func (p *MeasuredPath) safeCall(entry handlerEntry, rec Record) {
	defer func() {
		if r := recover(); r != nil {
			p.handlersLock.RLock()
			hook := p.panicHook
			p.handlersLock.RUnlock()
			if hook != nil {
				hook(entry.id, r)
			}
		}
	}()
	entry.handler(rec)
}

// EnableWorkerPool creates a bounded worker pool for async handlers.
func (p *MeasuredPath) EnableWorkerPool(workers, queueSize int) error {
	if workers <= 0 {
		return errors.New("workers must be > 0")
	}
	if queueSize <= 0 {
		return errors.New("queueSize must be > 0")
	}

	p.handlersLock.Lock()
	defer p.handlersLock.Unlock()
	if p.workers != nil {
		return errors.New("worker pool already enabled")
	}

	p.workers = &workerPool{
		tasks:   make(chan func(), queueSize),
		stop:    make(chan struct{}),
		dropped: &p.droppedRecords,
	}

	p.workers.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.workers.run()
	}

	return nil
}

// DroppedRecords returns the number of records dropped due to a full worker queue.
func (p *MeasuredPath) DroppedRecords() uint64 {
	return p.droppedRecords.Load()
}

// Close removes every handler and waits for the worker pool to stop.
// Captures keep working and are still emitted to the sink.
func (p *MeasuredPath) Close() {
	p.handlersLock.Lock()
	p.handlers = nil
	workers := p.workers
	p.workers = nil
	p.handlersLock.Unlock()

	if workers != nil {
		workers.shutdown()
	}
}

// workerPool manages a fixed number of workers for processing async handlers.
//
//nolint:govet // Field order optimized for functionality over memory
type workerPool struct {
	tasks   chan func()
	stop    chan struct{}
	dropped *atomic.Uint64
	wg      sync.WaitGroup
}

func (w *workerPool) run() {
	defer w.wg.Done()
	for {
		select {
		case task := <-w.tasks:
			task()
		case <-w.stop:
			return
		}
	}
}

func (w *workerPool) submit(task func()) {
	select {
	case w.tasks <- task:
	default:
		w.dropped.Add(1)
	}
}

func (w *workerPool) shutdown() {
	close(w.stop)
	w.wg.Wait()
}
