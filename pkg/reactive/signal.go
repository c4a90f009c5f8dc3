package reactive

import (
	"reflect"
	"sync"
)

// signalBase provides type-erased subscriber management.
// It is embedded in Signal[T] and Memo[T] to share subscription logic.
type signalBase struct {
	id uint64

	// subs are the listeners subscribed to this signal, in registration order.
	subs  []Listener
	subMu sync.RWMutex
}

// subscribe adds a listener to this signal's subscribers.
// Deduplicates by listener ID to prevent double-subscription.
func (s *signalBase) subscribe(l Listener) {
	if l == nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for _, existing := range s.subs {
		if existing.ID() == lid {
			return
		}
	}

	s.subs = append(s.subs, l)
}

// unsubscribe removes a listener, keeping the order of the others intact.
func (s *signalBase) unsubscribe(l Listener) {
	if l == nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for i, existing := range s.subs {
		if existing.ID() == lid {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// subscriberCount returns the number of current subscribers.
func (s *signalBase) subscriberCount() int {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	return len(s.subs)
}

// notifySubscribers notifies all subscribers that this signal changed.
// The subscriber list is copied first so no lock is held while listeners run.
func (s *signalBase) notifySubscribers() {
	s.subMu.RLock()
	subs := make([]Listener, len(s.subs))
	copy(subs, s.subs)
	s.subMu.RUnlock()

	if getBatchDepth() > 0 {
		for _, sub := range subs {
			queuePendingUpdate(sub)
		}
		return
	}

	for _, sub := range subs {
		notify(sub)
	}
}

// track subscribes the current listener, if any, to s.
func (s *signalBase) track() {
	listener := getCurrentListener()
	if listener == nil {
		return
	}
	s.subscribe(listener)
	if t, ok := listener.(sourceTracker); ok {
		t.addSource(s)
	}
}

// Readable is the read side shared by Signal and Memo.
type Readable[T any] interface {
	Get() T
	Peek() T
}

// Source is the type-erased read side of a reactive value.
// The control-flow layer uses it to accept signals of any type as conditions.
type Source interface {
	AnyGet() any
	AnyPeek() any
}

// Signal is a reactive value container.
// Reading a Signal's value with Get during a tracked evaluation (effect,
// memo computation or control-flow region) subscribes that evaluation to
// future changes.
type Signal[T any] struct {
	base signalBase

	value T
	mu    sync.RWMutex

	// equal decides whether a write changes the value. nil uses defaultEquals.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		base:  signalBase{id: nextID()},
		value: initial,
	}
}

// Get returns the current value and subscribes the current listener.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	// Track after releasing the value lock.
	s.base.track()

	return value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// AnyGet implements Source.
func (s *Signal[T]) AnyGet() any { return s.Get() }

// AnyPeek implements Source.
func (s *Signal[T]) AnyPeek() any { return s.Peek() }

// Set updates the value and notifies subscribers.
// Writing a value equal to the current one is a no-op: no subscriber runs.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers()
	}
}

// Update atomically reads and updates the value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	oldValue := s.value
	newValue := fn(oldValue)
	changed := !s.equals(oldValue, newValue)
	if changed {
		s.value = newValue
	}
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers()
	}
}

// Trigger notifies subscribers without changing the value.
// Useful after mutating a value held by pointer.
func (s *Signal[T]) Trigger() {
	s.base.notifySubscribers()
}

// Connect registers cb to run with the new value after every change.
// Callbacks run in registration order. The returned function disconnects.
func (s *Signal[T]) Connect(cb func(T)) (dispose func()) {
	l := &callbackListener{id: nextID()}
	l.fn = func() { cb(s.Peek()) }
	s.base.subscribe(l)
	return func() { s.base.unsubscribe(l) }
}

// Subscribe is Connect for external consumers.
func (s *Signal[T]) Subscribe(cb func(T)) (dispose func()) {
	return s.Connect(cb)
}

// WithEquals configures a custom equality function and returns the signal.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

// Subscribers returns the number of listeners and callbacks attached.
func (s *Signal[T]) Subscribers() int {
	return s.base.subscriberCount()
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for common scalar types and reflect.DeepEqual
// for everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return eqAs(av, any(b))
	case int8:
		return eqAs(av, any(b))
	case int16:
		return eqAs(av, any(b))
	case int32:
		return eqAs(av, any(b))
	case int64:
		return eqAs(av, any(b))
	case uint:
		return eqAs(av, any(b))
	case uint8:
		return eqAs(av, any(b))
	case uint16:
		return eqAs(av, any(b))
	case uint32:
		return eqAs(av, any(b))
	case uint64:
		return eqAs(av, any(b))
	case float32:
		return eqAs(av, any(b))
	case float64:
		return eqAs(av, any(b))
	case string:
		return eqAs(av, any(b))
	case bool:
		return eqAs(av, any(b))
	default:
		return reflect.DeepEqual(a, b)
	}
}

// eqAs compares a against b when b holds the same dynamic type.
// Signals typed as interfaces may switch between dynamic types.
func eqAs[V comparable](a V, b any) bool {
	bv, ok := b.(V)
	return ok && a == bv
}
