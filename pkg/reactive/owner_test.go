package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnerDisposesEffectsAndChildren(t *testing.T) {
	root := NewOwner(nil)
	child := NewOwner(root)
	s := NewSignal(0)
	runs := 0

	child.Run(func() {
		NewEffect(func() Cleanup {
			runs++
			_ = s.Get()
			return nil
		})
	})

	s.Set(1)
	assert.Equal(t, 2, runs)

	root.Dispose()
	assert.True(t, child.IsDisposed())

	s.Set(2)
	assert.Equal(t, 2, runs)
}

func TestOwnerCleanupOrder(t *testing.T) {
	o := NewOwner(nil)
	var order []int
	o.OnCleanup(func() { order = append(order, 1) })
	o.OnCleanup(func() { order = append(order, 2) })

	o.Dispose()
	o.Dispose()
	assert.Equal(t, []int{2, 1}, order)

	ran := false
	o.OnCleanup(func() { ran = true })
	assert.True(t, ran, "cleanup on disposed owner runs immediately")
}

func TestOnDisposeUsesCurrentOwner(t *testing.T) {
	o := NewOwner(nil)
	called := false
	o.Run(func() {
		assert.Same(t, o, CurrentOwner())
		OnDispose(func() { called = true })
	})
	assert.Nil(t, CurrentOwner())

	o.Dispose()
	assert.True(t, called)
}

func TestOwnerRemovedFromParent(t *testing.T) {
	root := NewOwner(nil)
	child := NewOwner(root)
	assert.Same(t, root, child.Parent())

	child.Dispose()
	root.childrenMu.Lock()
	assert.Empty(t, root.children)
	root.childrenMu.Unlock()
}
