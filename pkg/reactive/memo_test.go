package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoLazyAndCached(t *testing.T) {
	count := NewSignal(2)
	computations := 0
	doubled := NewMemo(func() int {
		computations++
		return count.Get() * 2
	})

	assert.Equal(t, 0, computations, "memo must be lazy")
	assert.Equal(t, 4, doubled.Get())
	assert.Equal(t, 4, doubled.Get())
	assert.Equal(t, 1, computations)

	count.Set(5)
	assert.Equal(t, 10, doubled.Peek())
	assert.Equal(t, 2, computations)
}

func TestMemoNotifiesOnlyWhenValueChanges(t *testing.T) {
	count := NewSignal(8)
	ready := Gte(count, 10)
	var seen []bool
	ready.Connect(func(v bool) { seen = append(seen, v) })

	count.Set(9)
	assert.Empty(t, seen, "result unchanged, no notification")

	count.Set(10)
	assert.Equal(t, []bool{true}, seen)

	count.Set(11)
	assert.Equal(t, []bool{true}, seen)

	count.Set(1)
	assert.Equal(t, []bool{true, false}, seen)
}

func TestMemoChain(t *testing.T) {
	base := NewSignal(1)
	plusOne := Derive[int, int](base, func(v int) int { return v + 1 })
	times := Derive[int, int](plusOne, func(v int) int { return v * 10 })

	var got []int
	times.Connect(func(v int) { got = append(got, v) })

	base.Set(2)
	assert.Equal(t, 30, times.Get())
	assert.Equal(t, []int{30}, got)
}

func TestComparisonHelpers(t *testing.T) {
	n := NewSignal(5)

	assert.True(t, Gte(n, 5).Get())
	assert.False(t, Gt(n, 5).Get())
	assert.True(t, Lte(n, 5).Get())
	assert.False(t, Lt(n, 5).Get())
	assert.True(t, Eq(n, 5).Get())
	assert.False(t, Not(Eq[int](n, 5)).Get())
}

func TestMemoIsSource(t *testing.T) {
	n := NewSignal(3)
	var src Source = Gt(n, 1)
	assert.Equal(t, true, src.AnyPeek())
}
