// Package errors provides structured, actionable error values for Weave.
//
// Every runtime failure that crosses a package boundary carries a code
// (e.g. "W100") that maps to a registered template with a category, a
// short message and a longer explanation:
//
//	err := errors.New(errors.CodeMissingNodeOp).
//	    WithDetail("missing: insertBefore, removeNode").
//	    WithSuggestion("Implement every operation of the node-operations contract")
//
// Errors wrap causes and work with the standard library's errors.Is and
// errors.As. Is matches on the code, so callers can test against a bare
// template:
//
//	if errors.Is(err, errors.New(errors.CodeHotInvalidated)) { ... }
//
// # Categories
//
//   - renderer: node-operations contract and renderer construction
//   - extension: descriptor validation and lifecycle hooks
//   - hmr: hot module reconciliation
//   - config: weave.json / weave.yaml / weave.toml
package errors
