// Package hmr keeps component functions hot-swappable during development.
//
// A Reconciler maps each component function to a Wrapper, a small state
// machine whose storage cell is a reactive signal holding the current
// implementation. The renderer asks the reconciler to dispatch component
// instantiation (see render.WithHot); wrapped components are mounted
// through an indirection region that re-renders when the wrapper's
// implementation changes.
//
// Wrapper states:
//
//	Static          never seen by the reconciler
//	Hot, unbound    wrapper created, no instance mounted yet
//	Bound, cold     mounted, never updated: render errors propagate
//	Bound, hot      updated at least once: render errors are logged only
//
// When a module is replaced, ApplyHotUpdate compares the old and new
// exports. Component exports are rebound in place; any other export that
// changed invalidates the update, and the host falls back to a full
// reload. Setup and Bridge implement the module protocol spoken with the
// build tool.
//
// Wrappers are keyed by the function's code pointer; an export's wrapper
// is found through its old function, never through its name. Wrappers
// created while reconciling a module are also registered under
// ScopedID(module, name). Closures created
// from the same function literal share a code pointer, so a wrapper only
// substitutes its own implementation once it has been hot-updated; until
// then every instance renders the function it was dispatched with.
package hmr
