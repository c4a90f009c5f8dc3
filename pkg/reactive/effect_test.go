package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectRunsImmediatelyAndOnChange(t *testing.T) {
	count := NewSignal(0)
	var seen []int

	e := NewEffect(func() Cleanup {
		seen = append(seen, count.Get())
		return nil
	})
	defer e.Dispose()

	count.Set(1)
	count.Set(2)
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestEffectOnlyPeekIsNotRerun(t *testing.T) {
	count := NewSignal(0)
	runs := 0

	e := NewEffect(func() Cleanup {
		runs++
		_ = count.Peek()
		return nil
	})
	defer e.Dispose()

	count.Set(1)
	count.Set(2)
	assert.Equal(t, 1, runs)
}

func TestEffectCleanupRunsBeforeRerunAndOnDispose(t *testing.T) {
	count := NewSignal(0)
	var log []string

	e := NewEffect(func() Cleanup {
		v := count.Get()
		log = append(log, "run")
		return func() {
			_ = v
			log = append(log, "cleanup")
		}
	})

	count.Set(1)
	e.Dispose()
	assert.Equal(t, []string{"run", "cleanup", "run", "cleanup"}, log)

	count.Set(2)
	assert.Len(t, log, 4, "disposed effect must not rerun")
	assert.True(t, e.Disposed())
}

func TestEffectDynamicDependencies(t *testing.T) {
	flag := NewSignal(true)
	a := NewSignal("a")
	b := NewSignal("b")
	runs := 0

	e := NewEffect(func() Cleanup {
		runs++
		if flag.Get() {
			_ = a.Get()
		} else {
			_ = b.Get()
		}
		return nil
	})
	defer e.Dispose()

	b.Set("b2")
	assert.Equal(t, 1, runs, "b is not a dependency yet")

	flag.Set(false)
	assert.Equal(t, 2, runs)

	a.Set("a2")
	assert.Equal(t, 2, runs, "a was dropped as a dependency")

	b.Set("b3")
	assert.Equal(t, 3, runs)
}

func TestEffectWriteDuringRunIsDeferred(t *testing.T) {
	count := NewSignal(0)
	var seen []int

	e := NewEffect(func() Cleanup {
		v := count.Get()
		seen = append(seen, v)
		if v == 1 {
			count.Set(2)
		}
		return nil
	})
	defer e.Dispose()

	count.Set(1)
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestEffectInBatchRunsOnce(t *testing.T) {
	a := NewSignal(0)
	b := NewSignal(0)
	runs := 0

	e := NewEffect(func() Cleanup {
		runs++
		_ = a.Get() + b.Get()
		return nil
	})
	defer e.Dispose()

	Batch(func() {
		a.Set(1)
		b.Set(1)
	})
	assert.Equal(t, 2, runs)
}

func TestWatch(t *testing.T) {
	s := NewSignal("x")
	var seen []string
	stop := Watch(func() { seen = append(seen, s.Get()) })

	s.Set("y")
	stop()
	s.Set("z")
	assert.Equal(t, []string{"x", "y"}, seen)
}
