// Package render binds a backend's node operations and a composed
// extension set into a Renderer.
//
// A backend (string SSR, an in-memory tree, a native toolkit) implements
// the nine primitive node operations described by NodeOps. New checks that
// every operation is present, then runs each extension's setup hook
// against the new renderer. A failing hook is logged with the extension's
// identity and does not stop the others.
//
// # Tree Construction
//
// Renderer.Create turns a template into a backend node:
//
//	r, err := render.New(render.OpsFrom(backend), "ssr", composed)
//	node := r.Create("div", render.Props{"class": "card"},
//	    render.H("h1", nil, "Title"),
//	    flow.Show(loggedIn, Dashboard, Login),
//	)
//
// Templates may be tag names, Fragment, component functions, control-flow
// regions from package flow, render functions, signals and plain text.
// Regions are mounted behind an anchor node and swap their content in
// place when the condition they track changes.
//
// # Directives
//
// A prop named "prefix:key" is offered to the composed directive resolver
// chain. If an extension resolves it, the returned setter is applied to the
// node (and re-applied when the value is a signal); otherwise the prop is
// passed to SetProps unchanged.
package render
