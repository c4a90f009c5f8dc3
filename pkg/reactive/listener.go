package reactive

// Listener is anything that can be notified when a dependency changes.
// Effects, memos and connected callbacks implement it.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies has changed.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// Cleanup is a function returned by effects to clean up resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()

// sourceTracker is implemented by listeners that remember what they read,
// so they can unsubscribe before re-running.
type sourceTracker interface {
	addSource(source *signalBase)
}

// callbackListener adapts a plain callback to the Listener interface.
type callbackListener struct {
	id uint64
	fn func()
}

func (c *callbackListener) MarkDirty() { c.fn() }
func (c *callbackListener) ID() uint64 { return c.id }
