package hmr

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"go.opentelemetry.io/otel/trace"

	werrors "github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/internal/telemetry"
	"github.com/vango-dev/weave/pkg/flow"
	"github.com/vango-dev/weave/pkg/render"
)

// Dispatch levels returned by Resolve.
const (
	// LevelDirect bypasses the reconciler.
	LevelDirect = 0
	// LevelNew means a wrapper was created for this dispatch.
	LevelNew = 1
	// LevelWrapped means an existing wrapper was found.
	LevelWrapped = 2
)

// Region values set on indirection regions.
const (
	ValueWrapper = "hmr.wrapper"
	ValueLevel   = "hmr.level"
)

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records hot update metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

// WithTracer sets the tracer used for hot update spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Reconciler) {
		r.tracer = t
	}
}

// Reconciler is the side table from component identity to Wrapper.
// It is the only writer of wrapper state. Safe for concurrent use.
type Reconciler struct {
	mu    sync.Mutex
	byPtr map[uintptr]*Wrapper
	byID  map[string]*Wrapper

	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer
}

// New creates an empty reconciler.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{
		byPtr:  make(map[uintptr]*Wrapper),
		byID:   make(map[string]*Wrapper),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = telemetry.Tracer()
	}
	return r
}

func codePointer(fn any) (uintptr, bool) {
	if !render.IsComponent(fn) {
		return 0, false
	}
	v := reflect.ValueOf(fn)
	if v.IsNil() {
		return 0, false
	}
	return v.Pointer(), true
}

// Register binds fn to the wrapper with the given stable id, creating it
// if needed. Registering a second function under the same id makes both
// resolve to one wrapper without changing its implementation.
func (r *Reconciler) Register(id string, fn any) (*Wrapper, error) {
	ptr, ok := codePointer(fn)
	if !ok {
		return nil, fmt.Errorf("hmr: %T is not a component", fn)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.byID[id]
	if !exists {
		if w = r.byPtr[ptr]; w == nil {
			w = newWrapper(id, render.ComponentName(fn), fn)
		}
		r.byID[id] = w
	}
	r.byPtr[ptr] = w
	return w, nil
}

// Lookup returns the wrapper for fn, if any.
func (r *Reconciler) Lookup(fn any) (*Wrapper, bool) {
	if w, ok := fn.(*Wrapper); ok {
		return w, true
	}
	ptr, ok := codePointer(fn)
	if !ok {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.byPtr[ptr]
	return w, ok
}

// Wrapper returns the wrapper registered under id.
func (r *Reconciler) Wrapper(id string) (*Wrapper, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.byID[id]
	return w, ok
}

// Len returns the number of distinct wrappers.
func (r *Reconciler) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[*Wrapper]struct{}, len(r.byPtr))
	for _, w := range r.byPtr {
		seen[w] = struct{}{}
	}
	for _, w := range r.byID {
		seen[w] = struct{}{}
	}
	return len(seen)
}

// Resolve classifies a template. Non-components and built-ins resolve to
// themselves at LevelDirect; a *Wrapper or a function with a wrapper
// resolves to that wrapper at LevelWrapped; any other component function
// gets a new wrapper at LevelNew.
func (r *Reconciler) Resolve(template any) (target any, level int) {
	if w, ok := template.(*Wrapper); ok {
		return w, LevelWrapped
	}
	ptr, ok := codePointer(template)
	if !ok {
		return template, LevelDirect
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.byPtr[ptr]; ok {
		return w, LevelWrapped
	}
	name := render.ComponentName(template)
	w := newWrapper(name, name, template)
	r.byPtr[ptr] = w
	return w, LevelNew
}

// ScopedID returns the wrapper id of a module's export. Bare export
// names are never shared between modules.
func ScopedID(module, name string) string {
	if module == "" {
		return ""
	}
	return module + "#" + name
}

// locate returns the wrapper for fn, creating and binding one if needed.
// fn's own wrapper wins; id, when non-empty, is a module-scoped fallback.
func (r *Reconciler) locate(id, name string, fn any) *Wrapper {
	ptr, ok := codePointer(fn)
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		if w, found := r.byPtr[ptr]; found {
			if id != "" {
				r.byID[id] = w
			}
			return w
		}
	}
	if id != "" {
		if w, found := r.byID[id]; found {
			if ok {
				r.byPtr[ptr] = w
			}
			return w
		}
	}

	wid := id
	if wid == "" {
		wid = name
	}
	w := newWrapper(wid, name, fn)
	if id != "" {
		r.byID[id] = w
	}
	if ok {
		r.byPtr[ptr] = w
	}
	return w
}

func (r *Reconciler) bind(fn any, w *Wrapper) {
	ptr, ok := codePointer(fn)
	if !ok {
		return
	}
	r.mu.Lock()
	r.byPtr[ptr] = w
	r.mu.Unlock()
}

// Dispatch implements render.HotDispatcher.
func (r *Reconciler) Dispatch(component any, props render.Props) (*flow.Region, bool) {
	target, level := r.Resolve(component)
	if level == LevelDirect {
		return nil, false
	}
	w := target.(*Wrapper)

	var fn any
	if _, ok := component.(*Wrapper); !ok {
		fn = component
	}
	return r.indirection(w, fn, props, level), true
}

// Indirection returns a region rendering w's current implementation
// with props. It re-renders whenever the implementation changes. Render
// errors propagate while w is cold and are logged once it is hot.
func (r *Reconciler) Indirection(w *Wrapper, props render.Props) *flow.Region {
	return r.indirection(w, nil, props, LevelWrapped)
}

func (r *Reconciler) indirection(w *Wrapper, fn any, props render.Props, level int) *flow.Region {
	return flow.Fn("hot:"+w.Name(), func() flow.RenderFunc {
		impl := w.Get()
		if fn != nil && !w.Hot() {
			impl = fn
		}
		return func() any {
			return render.CallComponent(impl, props)
		}
	},
		flow.WithValue(ValueWrapper, w),
		flow.WithValue(ValueLevel, level),
		flow.WithCatch(func(err error) flow.RenderFunc {
			if !w.Hot() {
				panic(err)
			}
			r.logger.Error("hot component render failed",
				"component", w.Name(),
				"error", werrors.New(werrors.CodeHotRender).WithSubject(w.Name()).Wrap(err),
			)
			return nil
		}),
	)
}
