package hmr

import (
	"sync/atomic"

	"github.com/vango-dev/weave/pkg/reactive"
)

// Wrapper is the indirection cell of one hot-reloadable component.
// Its identity never changes across updates.
type Wrapper struct {
	id   string
	name string
	impl *reactive.Signal[any]
	hot  atomic.Bool
}

func newWrapper(id, name string, fn any) *Wrapper {
	return &Wrapper{
		id:   id,
		name: name,
		impl: reactive.NewSignal(fn),
	}
}

// ID returns the wrapper's stable identifier.
func (w *Wrapper) ID() string {
	return w.id
}

// Name returns the component name used in diagnostics.
func (w *Wrapper) Name() string {
	return w.name
}

// Impl returns the current implementation without tracking.
func (w *Wrapper) Impl() any {
	return w.impl.Peek()
}

// Get returns the current implementation and tracks the read.
func (w *Wrapper) Get() any {
	return w.impl.Get()
}

// Hot reports whether the wrapper has been updated at least once.
func (w *Wrapper) Hot() bool {
	return w.hot.Load()
}

// Signal exposes the storage cell.
func (w *Wrapper) Signal() *reactive.Signal[any] {
	return w.impl
}

// rebind marks the wrapper hot and swaps in fn. The flag is set first so
// that instances re-rendering in response to the swap already see it.
func (w *Wrapper) rebind(fn any) {
	w.hot.Store(true)
	w.impl.Set(fn)
}
