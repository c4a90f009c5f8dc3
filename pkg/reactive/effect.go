package reactive

import (
	"sync"
	"sync/atomic"
)

// Effect is a tracked evaluation: it runs immediately and re-runs whenever
// a signal or memo it read during its last run changes.
//
// Re-runs are synchronous (or happen when the enclosing batch completes).
// A change that arrives while the effect is running is not applied
// reentrantly; the effect runs again once the current run has returned.
type Effect struct {
	id uint64

	fn      func() Cleanup
	cleanup Cleanup

	sources   []*signalBase
	sourcesMu sync.Mutex

	owner *Owner

	running  atomic.Bool
	pending  atomic.Bool
	disposed atomic.Bool
}

// NewEffect creates and runs an effect. If an Owner is current, the effect
// is disposed together with it.
//
// Example:
//
//	NewEffect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return func() { fmt.Println("Cleanup") }
//	})
func NewEffect(fn func() Cleanup) *Effect {
	e := &Effect{
		id:    nextID(),
		fn:    fn,
		owner: CurrentOwner(),
	}
	if e.owner != nil {
		e.owner.registerEffect(e)
	}
	e.run()
	return e
}

// Watch runs fn as an effect without a cleanup and returns its disposer.
func Watch(fn func()) (dispose func()) {
	e := NewEffect(func() Cleanup {
		fn()
		return nil
	})
	return e.Dispose
}

// MarkDirty implements Listener.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}
	if e.running.Load() {
		e.pending.Store(true)
		return
	}
	e.run()
}

// ID implements Listener.
func (e *Effect) ID() uint64 {
	return e.id
}

// Disposed reports whether the effect has been disposed.
func (e *Effect) Disposed() bool {
	return e.disposed.Load()
}

func (e *Effect) run() {
	e.running.Store(true)
	defer e.running.Store(false)

	for {
		if e.disposed.Load() {
			return
		}
		e.pending.Store(false)

		if e.cleanup != nil {
			e.cleanup()
			e.cleanup = nil
		}
		e.clearSources()

		WithListener(e, func() {
			e.cleanup = e.fn()
		})

		if !e.pending.Load() {
			return
		}
	}
}

func (e *Effect) addSource(source *signalBase) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()
	for _, s := range e.sources {
		if s == source {
			return
		}
	}
	e.sources = append(e.sources, source)
}

func (e *Effect) clearSources() {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = e.sources[:0]
}

// Dispose runs the last cleanup and unsubscribes from all sources.
func (e *Effect) Dispose() {
	if e.disposed.Swap(true) {
		return
	}
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
	e.clearSources()
}
