package reactive

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testListener struct {
	id         uint64
	mu         sync.Mutex
	dirtyCount int
}

func newTestListener() *testListener {
	return &testListener{id: nextID()}
}

func (l *testListener) MarkDirty() {
	l.mu.Lock()
	l.dirtyCount++
	l.mu.Unlock()
}

func (l *testListener) ID() uint64 {
	return l.id
}

func (l *testListener) getDirtyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirtyCount
}

func TestSignalBasic(t *testing.T) {
	count := NewSignal(0)
	assert.Equal(t, 0, count.Get())

	count.Set(5)
	assert.Equal(t, 5, count.Get())

	count.Update(func(n int) int { return n * 2 })
	assert.Equal(t, 10, count.Get())
}

func TestSignalPeekDoesNotTrack(t *testing.T) {
	count := NewSignal(42)
	listener := newTestListener()

	WithListener(listener, func() {
		assert.Equal(t, 42, count.Peek())
	})

	count.Set(100)
	assert.Equal(t, 0, listener.getDirtyCount(), "Peek must not subscribe")
}

func TestSignalGetTracksInsideListener(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
	})

	count.Set(1)
	assert.Equal(t, 1, listener.getDirtyCount())
}

func TestSignalNoTrackingOutsideContext(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	_ = count.Get()
	WithListener(listener, func() {})

	count.Set(1)
	assert.Equal(t, 0, listener.getDirtyCount())
}

func TestSignalEqualWriteIsNoop(t *testing.T) {
	count := NewSignal(1)
	calls := 0
	count.Connect(func(int) { calls++ })

	count.Set(1)
	assert.Equal(t, 0, calls, "writing the same value must not notify")

	count.Set(2)
	assert.Equal(t, 1, calls)
}

func TestSignalInterfaceTypedValues(t *testing.T) {
	v := NewSignal[any](1)
	calls := 0
	v.Connect(func(any) { calls++ })

	require.NotPanics(t, func() { v.Set("one") })
	assert.Equal(t, 1, calls)
	v.Set("one")
	assert.Equal(t, 1, calls)
}

func TestSignalWithEquals(t *testing.T) {
	type user struct{ ID, Name string }
	u := NewSignal(user{ID: "1", Name: "a"}).WithEquals(func(a, b user) bool {
		return a.ID == b.ID
	})
	calls := 0
	u.Connect(func(user) { calls++ })

	u.Set(user{ID: "1", Name: "b"})
	assert.Equal(t, 0, calls)
	u.Set(user{ID: "2", Name: "b"})
	assert.Equal(t, 1, calls)
}

func TestSignalConnectOrderAndDispose(t *testing.T) {
	s := NewSignal("a")
	var order []string

	s.Connect(func(v string) { order = append(order, "first:"+v) })
	stop := s.Connect(func(v string) { order = append(order, "second:"+v) })
	s.Subscribe(func(v string) { order = append(order, "third:"+v) })

	s.Set("b")
	assert.Equal(t, []string{"first:b", "second:b", "third:b"}, order)

	stop()
	order = nil
	s.Set("c")
	assert.Equal(t, []string{"first:c", "third:c"}, order)
}

func TestSignalPanickingSubscriberIsIsolated(t *testing.T) {
	s := NewSignal(0)
	var got []int

	s.Connect(func(v int) { got = append(got, v) })
	s.Connect(func(int) { panic("boom") })
	s.Connect(func(v int) { got = append(got, v*10) })

	require.NotPanics(t, func() { s.Set(3) })
	assert.Equal(t, []int{3, 30}, got)
}

func TestSignalTrigger(t *testing.T) {
	items := NewSignal(&[]int{1})
	calls := 0
	items.Connect(func(*[]int) { calls++ })

	*items.Peek() = append(*items.Peek(), 2)
	items.Trigger()
	assert.Equal(t, 1, calls)
}

func TestSignalSubscribers(t *testing.T) {
	s := NewSignal(0)
	assert.Equal(t, 0, s.Subscribers())
	stop := s.Connect(func(int) {})
	assert.Equal(t, 1, s.Subscribers())
	stop()
	assert.Equal(t, 0, s.Subscribers())
}

func TestSignalSourceInterface(t *testing.T) {
	var src Source = NewSignal(7)
	assert.Equal(t, 7, src.AnyPeek())
	assert.Equal(t, 7, src.AnyGet())
}

func TestTrackingContextPerGoroutine(t *testing.T) {
	s := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer ReleaseGoroutine()
			assert.False(t, Tracking())
			_ = s.Get()
		}()
		wg.Wait()
		assert.True(t, Tracking())
	})

	s.Set(1)
	assert.Equal(t, 0, listener.getDirtyCount())
}

func TestReleaseGoroutineDropsContext(t *testing.T) {
	s := NewSignal(0)
	var held, released int
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Get()
		held = ActiveGoroutines()
		ReleaseGoroutine()
		released = ActiveGoroutines()
	}()
	<-done
	assert.Equal(t, held-1, released)
}
