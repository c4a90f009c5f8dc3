package reactive

import (
	"sync"
	"sync/atomic"
)

// Memo is a cached computation that tracks its own dependencies.
//
// A memo without subscribers is lazy: it recomputes on the next read after a
// dependency changed. A memo with subscribers recomputes as soon as it is
// marked dirty and only notifies them when the computed value differs, so
// derived conditions like Gte(count, 10) do not wake dependents while the
// result stays the same.
type Memo[T any] struct {
	base signalBase

	compute func() T

	value   T
	valueMu sync.RWMutex

	// valid indicates whether the cached value is current.
	valid atomic.Bool

	sources   []*signalBase
	sourcesMu sync.Mutex

	equal func(T, T) bool

	// computing guards against a memo reading itself.
	computing atomic.Bool
}

// NewMemo creates a memo. The computation runs lazily on first read.
func NewMemo[T any](compute func() T) *Memo[T] {
	return &Memo[T]{
		base:    signalBase{id: nextID()},
		compute: compute,
	}
}

// Get returns the memo's value, recomputing if necessary, and subscribes
// the current listener.
func (m *Memo[T]) Get() T {
	m.base.track()
	return m.Peek()
}

// Peek returns the memo's value without subscribing.
func (m *Memo[T]) Peek() T {
	if !m.valid.Load() {
		m.recompute()
	}
	m.valueMu.RLock()
	defer m.valueMu.RUnlock()
	return m.value
}

// AnyGet implements Source.
func (m *Memo[T]) AnyGet() any { return m.Get() }

// AnyPeek implements Source.
func (m *Memo[T]) AnyPeek() any { return m.Peek() }

// Connect registers cb to run with the new value whenever the memo changes.
func (m *Memo[T]) Connect(cb func(T)) (dispose func()) {
	// Materialise once so the first change can be detected.
	m.Peek()
	l := &callbackListener{id: nextID()}
	l.fn = func() { cb(m.Peek()) }
	m.base.subscribe(l)
	return func() { m.base.unsubscribe(l) }
}

// Subscribe is Connect for external consumers.
func (m *Memo[T]) Subscribe(cb func(T)) (dispose func()) {
	return m.Connect(cb)
}

// WithEquals configures a custom equality function and returns the memo.
func (m *Memo[T]) WithEquals(fn func(T, T) bool) *Memo[T] {
	m.equal = fn
	return m
}

// MarkDirty implements Listener.
func (m *Memo[T]) MarkDirty() {
	if !m.valid.Swap(false) {
		return
	}
	if m.base.subscriberCount() == 0 {
		return
	}

	m.valueMu.RLock()
	old := m.value
	m.valueMu.RUnlock()

	m.recompute()

	m.valueMu.RLock()
	current := m.value
	m.valueMu.RUnlock()

	if !m.equals(old, current) {
		m.base.notifySubscribers()
	}
}

// ID implements Listener.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

func (m *Memo[T]) addSource(source *signalBase) {
	m.sourcesMu.Lock()
	defer m.sourcesMu.Unlock()
	for _, s := range m.sources {
		if s == source {
			return
		}
	}
	m.sources = append(m.sources, source)
}

func (m *Memo[T]) recompute() {
	if !m.computing.CompareAndSwap(false, true) {
		return
	}
	defer m.computing.Store(false)

	m.sourcesMu.Lock()
	for _, source := range m.sources {
		source.unsubscribe(m)
	}
	m.sources = m.sources[:0]
	m.sourcesMu.Unlock()

	var value T
	WithListener(m, func() {
		value = m.compute()
	})

	m.valueMu.Lock()
	m.value = value
	m.valueMu.Unlock()
	m.valid.Store(true)
}

func (m *Memo[T]) equals(a, b T) bool {
	if m.equal != nil {
		return m.equal(a, b)
	}
	return defaultEquals(a, b)
}
