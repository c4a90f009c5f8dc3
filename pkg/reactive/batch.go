package reactive

// Batch groups multiple signal updates into a single notification pass.
// All listeners affected inside fn are collected, deduplicated, and notified
// once when the outermost batch completes, in the order they were first
// queued.
//
// Example:
//
//	Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
//	// Dependents run once with both changes
func Batch(fn func()) {
	incrementBatchDepth()

	defer func() {
		if decrementBatchDepth() {
			processPendingUpdates()
		}
	}()

	fn()
}

// Tick runs fn as one turn: writes inside it coalesce exactly like Batch.
// It exists for hosts that think in terms of event-loop turns.
func Tick(fn func()) {
	Batch(fn)
}

// processPendingUpdates deduplicates and notifies all pending listeners.
// Listeners notified during the pass may queue more work; the loop drains
// until nothing is pending.
func processPendingUpdates() {
	for {
		updates := drainPendingUpdates()
		if len(updates) == 0 {
			return
		}

		seen := make(map[uint64]bool, len(updates))
		unique := make([]Listener, 0, len(updates))
		for _, listener := range updates {
			id := listener.ID()
			if !seen[id] {
				seen[id] = true
				unique = append(unique, listener)
			}
		}

		for _, listener := range unique {
			notify(listener)
		}
	}
}

// notify delivers a change to one listener, recovering panics so the rest
// of the pass still runs.
func notify(l Listener) {
	defer func() {
		if r := recover(); r != nil {
			log().Error("reactive: listener panicked",
				"listener", l.ID(),
				"panic", r,
			)
		}
	}()
	l.MarkDirty()
}

// Untracked runs fn without tracking signal reads as dependencies.
//
// For single signal reads, use Peek instead.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}
