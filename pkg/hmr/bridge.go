package hmr

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	werrors "github.com/vango-dev/weave/internal/errors"
)

// EventKind classifies a bridge event.
type EventKind string

const (
	EventLoaded      EventKind = "loaded"
	EventAccepted    EventKind = "accepted"
	EventInvalidated EventKind = "invalidated"
	EventFailed      EventKind = "failed"
	EventRemoved     EventKind = "removed"
	EventUnchanged   EventKind = "unchanged"
)

// Event reports the outcome of a module load or replacement.
type Event struct {
	Module  string    `json:"module"`
	Kind    EventKind `json:"kind"`
	Reasons []string  `json:"reasons,omitempty"`
	Rebound []string  `json:"rebound,omitempty"`
}

// Loader resolves a module's exports.
type Loader func(ctx context.Context) (Exports, error)

type module struct {
	data      map[string]any
	current   Exports
	disposers []func(map[string]any)
}

// Bridge drives the module protocol for a set of hot modules. It is the
// explicit registry a build tool (or the dev server) talks to.
type Bridge struct {
	rec    *Reconciler
	logger *slog.Logger

	mu        sync.Mutex
	modules   map[string]*module
	listeners map[int]func(Event)
	nextID    int
	closed    bool
}

// NewBridge creates a bridge over rec.
func NewBridge(rec *Reconciler, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		rec:       rec,
		logger:    logger,
		modules:   make(map[string]*module),
		listeners: make(map[int]func(Event)),
	}
}

// Subscribe registers fn for every event. The returned function removes it.
func (b *Bridge) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Modules returns the loaded module ids in sorted order.
func (b *Bridge) Modules() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Sorted(maps.Keys(b.modules))
}

// Exports returns the exports last loaded for id.
func (b *Bridge) Exports(id string) (Exports, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.modules[id]
	if !ok {
		return nil, false
	}
	return m.current, m.current != nil
}

// Load performs the first load of a module. Loading an id twice is a
// Replace.
func (b *Bridge) Load(ctx context.Context, id string, load Loader) (Event, error) {
	return b.Replace(ctx, id, load)
}

// Replace runs the previous cycle's dispose callbacks and then Setup for
// the new module.
func (b *Bridge) Replace(ctx context.Context, id string, load Loader) (Event, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return Event{}, werrors.New(werrors.CodeHotModule).WithSubject(id).WithDetail("bridge is closed")
	}
	m, existed := b.modules[id]
	if !existed {
		m = &module{data: make(map[string]any)}
		b.modules[id] = m
	}
	disposers := m.disposers
	m.disposers = nil
	b.mu.Unlock()

	for _, fn := range disposers {
		fn(m.data)
	}

	hc := &hotContext{module: id, data: m.data, load: load}
	res, err := b.rec.Setup(ctx, hc)

	b.mu.Lock()
	m.disposers = hc.disposers
	if err == nil {
		m.current = hc.loaded
	}
	b.mu.Unlock()

	ev := Event{Module: id, Rebound: res.Rebound, Reasons: hc.reasons}
	switch {
	case err != nil:
		ev.Kind = EventFailed
	case len(hc.reasons) > 0 || !hc.accepted:
		ev.Kind = EventInvalidated
	case !existed:
		ev.Kind = EventLoaded
	default:
		ev.Kind = EventAccepted
	}

	b.logger.Info("hot module processed", "module", id, "kind", ev.Kind, "rebound", len(ev.Rebound))
	b.publish(ev)
	return ev, err
}

// Remove runs id's pending dispose callbacks and forgets the module. It
// reports whether the module was loaded.
func (b *Bridge) Remove(id string) bool {
	b.mu.Lock()
	m, ok := b.modules[id]
	delete(b.modules, id)
	b.mu.Unlock()
	if !ok {
		return false
	}

	for _, fn := range m.disposers {
		fn(m.data)
	}
	b.logger.Info("hot module removed", "module", id)
	b.publish(Event{Module: id, Kind: EventRemoved})
	return true
}

func (b *Bridge) publish(ev Event) {
	b.mu.Lock()
	ids := slices.Sorted(maps.Keys(b.listeners))
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.listeners[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Close runs every pending dispose callback and rejects further loads.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	modules := b.modules
	b.modules = make(map[string]*module)
	b.listeners = make(map[int]func(Event))
	b.mu.Unlock()

	for _, m := range modules {
		for _, fn := range m.disposers {
			fn(m.data)
		}
	}
	return nil
}

type hotContext struct {
	module    string
	data      map[string]any
	load      Loader
	loaded    Exports
	accepted  bool
	reasons   []string
	disposers []func(map[string]any)
}

func (h *hotContext) Module() string { return h.module }

func (h *hotContext) Data() map[string]any { return h.data }

func (h *hotContext) Current(ctx context.Context) (Exports, error) {
	exp, err := h.load(ctx)
	if err == nil {
		h.loaded = exp
	}
	return exp, err
}

func (h *hotContext) Accept() { h.accepted = true }

func (h *hotContext) Dispose(fn func(map[string]any)) {
	h.disposers = append(h.disposers, fn)
}

func (h *hotContext) Invalidate(reason string) {
	h.reasons = append(h.reasons, reason)
}
