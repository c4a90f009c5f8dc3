// Package flow provides the control-flow primitives of the Weave runtime.
//
// Control flow does not build nodes. Each primitive returns a *Region: a
// named evaluator that decides which RenderFunc is active. The renderer
// mounts a Region behind an anchor and swaps the rendered fragment whenever
// the active RenderFunc changes.
//
//	count := reactive.NewSignal(9)
//
//	region := flow.Show(reactive.Gte(count, 10),
//	    func() any { return render.H("p", nil, "ten or more") },
//	    "not yet",
//	)
//
// Conditions accept a reactive.Source (re-derived on every change), a
// func() bool or func() any (called at evaluation time), or a plain value
// (resolved once at construction, never reactive).
//
// Choose evaluates its cases in order and stops at the first truthy one:
//
//	flow.Choose([]flow.Case{
//	    {When: isAdmin, Children: adminPanel},
//	    {When: isUser, Children: userPanel},
//	}, loginForm)
package flow
