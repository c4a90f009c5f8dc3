// Package extension composes independently authored extensions into one
// capability set for a renderer.
//
// An extension is described by a Descriptor: identity metadata, an
// optional scope and permission declaration, typed capability buckets
// (renderer props, triggers) and lifecycle hooks. Compose folds an ordered
// list of descriptors into a Composed value:
//
//   - directive resolvers are chained; the first non-nil setter wins
//   - namespaces, tag namespace maps and tag aliases are merged, later
//     descriptors overwriting earlier keys
//   - triggers are merged by name, later descriptors overwriting earlier ones
//   - setup hooks are collected in order for the renderer to run
//   - validate hooks run immediately; failures are logged and recorded
//
// Registry adds an explicit install/enable/disable/uninstall lifecycle on
// top of Compose.
package extension
