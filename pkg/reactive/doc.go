// Package reactive provides the signal core for the Weave runtime.
//
// The reactive system provides fine-grained reactivity: dependencies are
// tracked automatically at runtime. Reading a signal with Get while an
// effect, memo or control-flow region is evaluating subscribes that
// evaluation to the signal's changes. Peek never subscribes.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := NewSignal(0)
//	value := count.Get()  // Read (subscribes current listener)
//	count.Peek()          // Read without subscribing
//	count.Set(5)          // Write (notifies subscribers)
//	count.Update(func(n int) int { return n + 1 })
//
// Connect and Subscribe register plain callbacks that run on every change
// and return a disposer:
//
//	stop := count.Connect(func(n int) { fmt.Println("count:", n) })
//	defer stop()
//
// Memo[T] is a derived value. Comparison helpers build boolean memos:
//
//	ready := Gte(count, 10)
//
// Effect runs side effects when dependencies change:
//
//	NewEffect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return nil
//	})
//
// # Batching
//
// Writes inside Batch (or its alias Tick) coalesce into a single
// notification pass that runs when the outermost batch returns:
//
//	Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})
//
// # Failure Isolation
//
// A listener or callback that panics is recovered and logged; the
// remaining subscribers of the same pass are still notified.
//
// # Threading
//
// The tracking context is per goroutine. The runtime is cooperative and
// single-threaded per goroutine; values themselves are guarded so that
// reads from other goroutines are safe.
package reactive
