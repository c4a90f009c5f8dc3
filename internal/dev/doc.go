// Package dev provides the development server and hot module replacement
// loop.
//
// Modules are data files (JSON, YAML or TOML) under the configured watch
// directories. Each file is a flat map of exports; a string of the form
// "component:Name" names a component from the server's catalog and every
// other value is passed to the module's components as a prop:
//
//	# modules/home.yaml
//	Greeting: component:Greeting
//	name: ada
//
// # Architecture
//
//   - Watcher: polls the watch directories for module file changes
//   - ModuleLoader: decodes module files into hmr exports
//   - Page: a live server-side tree rendering every module's components
//     through the hot reconciler
//   - Hub: notifies browsers over WebSocket
//   - Server: chi routes plus the change loop, supervised by an errgroup
//
// # Hot Reload Protocol
//
// The browser connects to /__weave/ws. Messages are JSON-encoded:
//
//	{"type": "hello", "client": "<uuid>"}
//	{"type": "update", "module": "home", "html": "...", "rebound": ["Greeting"]}
//	{"type": "reload", "module": "home", "reasons": ["..."]}
//	{"type": "error", "module": "home", "error": "..."}
//	{"type": "clear"}
//
// An accepted update re-renders only the rebound components and is pushed
// as "update". An invalidated update, or any change while dev.hotReload is
// false, rebuilds the page and asks browsers to reload.
package dev
