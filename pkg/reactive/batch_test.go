package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchCoalescesNotifications(t *testing.T) {
	a := NewSignal(0)
	b := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = a.Get()
		_ = b.Get()
	})

	Batch(func() {
		a.Set(1)
		b.Set(2)
		a.Set(3)
		assert.Equal(t, 0, listener.getDirtyCount(), "no notification inside the batch")
	})

	assert.Equal(t, 1, listener.getDirtyCount())
}

func TestBatchNested(t *testing.T) {
	s := NewSignal(0)
	calls := 0
	s.Connect(func(int) { calls++ })

	Batch(func() {
		s.Set(1)
		Batch(func() {
			s.Set(2)
		})
		assert.Equal(t, 0, calls, "inner batch must not flush")
	})

	assert.Equal(t, 1, calls)
}

func TestTickNotifiesInRegistrationOrderOncePerTurn(t *testing.T) {
	s := NewSignal(0)
	var order []string
	s.Connect(func(int) { order = append(order, "a") })
	s.Connect(func(int) { order = append(order, "b") })
	s.Connect(func(int) { order = append(order, "c") })

	Tick(func() {
		s.Set(1)
		s.Set(2)
		s.Set(3)
	})

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestBatchCallbacksSeeFinalValue(t *testing.T) {
	s := NewSignal(0)
	var seen []int
	s.Connect(func(v int) { seen = append(seen, v) })

	Batch(func() {
		s.Set(1)
		s.Set(5)
	})

	assert.Equal(t, []int{5}, seen)
}

func TestBatchPanicInListenerStillFlushesOthers(t *testing.T) {
	s := NewSignal(0)
	calls := 0
	s.Connect(func(int) { panic("bad listener") })
	s.Connect(func(int) { calls++ })

	assert.NotPanics(t, func() {
		Batch(func() { s.Set(1) })
	})
	assert.Equal(t, 1, calls)
}

func TestUntracked(t *testing.T) {
	s := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		Untracked(func() {
			_ = s.Get()
		})
	})

	s.Set(1)
	assert.Equal(t, 0, listener.getDirtyCount())
}
