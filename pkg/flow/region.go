package flow

import (
	"github.com/vango-dev/weave/pkg/reactive"
)

// RenderFunc is a zero-argument closure producing the next tree fragment:
// a template, a backend node, text, a nested Region, or nil.
type RenderFunc func() any

// Normalize turns v into a RenderFunc. Functions of type RenderFunc or
// func() any pass through, nil stays nil, and any other value is wrapped
// in a closure returning it.
func Normalize(v any) RenderFunc {
	switch f := v.(type) {
	case nil:
		return nil
	case RenderFunc:
		return f
	case func() any:
		return f
	default:
		return func() any { return v }
	}
}

// Unkeyed marks an evaluation whose result must always be treated as new.
const Unkeyed = -1

// Region is a named, reactively evaluated choice of RenderFunc.
type Region struct {
	name   string
	eval   func() (int, RenderFunc)
	catch  func(err error) RenderFunc
	values map[string]any
}

// Option configures a Region.
type Option func(*Region)

// WithCatch installs an error boundary. fn receives errors raised by the
// evaluator or while the active RenderFunc is materialised and returns a
// replacement RenderFunc. fn may panic to rethrow.
func WithCatch(fn func(err error) RenderFunc) Option {
	return func(r *Region) {
		r.catch = fn
	}
}

// WithValue attaches a named value to the region, readable by the renderer
// and by catch handlers.
func WithValue(key string, v any) Option {
	return func(r *Region) {
		if r.values == nil {
			r.values = make(map[string]any)
		}
		r.values[key] = v
	}
}

func newRegion(name string, eval func() (int, RenderFunc), opts []Option) *Region {
	r := &Region{name: name, eval: eval}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fn wraps an evaluator returning the active RenderFunc (or nil). The
// evaluator re-runs whenever a signal it read through Get changes, and
// every re-run counts as a new result.
func Fn(name string, evaluator func() RenderFunc, opts ...Option) *Region {
	return newRegion(name, func() (int, RenderFunc) {
		return Unkeyed, evaluator()
	}, opts)
}

// Name returns the region's debug name.
func (r *Region) Name() string {
	return r.name
}

// String implements fmt.Stringer.
func (r *Region) String() string {
	return "<" + r.name + ">"
}

// Value returns a value attached with WithValue.
func (r *Region) Value(key string) any {
	return r.values[key]
}

// HasCatch reports whether an error boundary is installed.
func (r *Region) HasCatch() bool {
	return r.catch != nil
}

// Recover hands err to the error boundary. Without a boundary it panics
// with err.
func (r *Region) Recover(err error) RenderFunc {
	if r.catch == nil {
		panic(err)
	}
	return r.catch(err)
}

// Evaluate runs the evaluator once in the caller's tracking context.
func (r *Region) Evaluate() RenderFunc {
	_, fn := r.evaluate()
	return fn
}

func (r *Region) evaluate() (key int, fn RenderFunc) {
	if r.catch != nil {
		defer func() {
			if rec := recover(); rec != nil {
				key, fn = Unkeyed, r.catch(AsError(rec))
			}
		}()
	}
	return r.eval()
}

// Watch evaluates the region inside an effect. onChange runs synchronously
// with the first result and again whenever a tracked dependency changes and
// the selected branch differs from the previous one. onChange itself runs
// untracked. The returned function stops watching.
func (r *Region) Watch(onChange func(RenderFunc)) (dispose func()) {
	first := true
	lastKey := Unkeyed

	e := reactive.NewEffect(func() reactive.Cleanup {
		key, fn := r.evaluate()
		if !first && key != Unkeyed && key == lastKey {
			return nil
		}
		first = false
		lastKey = key
		reactive.Untracked(func() {
			onChange(fn)
		})
		return nil
	})
	return e.Dispose
}
