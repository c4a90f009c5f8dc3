package dev

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vango-dev/weave/internal/config"
	"github.com/vango-dev/weave/pkg/hmr"
	"github.com/vango-dev/weave/pkg/render"
)

// ComponentPrefix marks a module export string that names a catalog component.
const ComponentPrefix = "component:"

// moduleExts are the module file formats, decoded like config files.
var moduleExts = []string{".json", ".yaml", ".yml", ".toml"}

// IsModuleFile reports whether path has a module file extension.
func IsModuleFile(path string) bool {
	return slices.Contains(moduleExts, strings.ToLower(filepath.Ext(path)))
}

// ComponentLookup resolves a component name.
type ComponentLookup interface {
	Lookup(name string) (render.Component, bool)
}

// ModuleLoader turns module files into hmr exports. A module file is a
// flat map of exports; string values of the form "component:Name" are
// replaced by the named component.
type ModuleLoader struct {
	Components ComponentLookup
}

// Loader returns an hmr.Loader reading path on every call.
func (l *ModuleLoader) Loader(path string) hmr.Loader {
	return func(ctx context.Context) (hmr.Exports, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return l.Decode(filepath.Ext(path), data)
	}
}

// Decode parses module data in the format named by ext.
func (l *ModuleLoader) Decode(ext string, data []byte) (hmr.Exports, error) {
	raw := map[string]any{}
	if err := config.Decode(ext, data, &raw); err != nil {
		return nil, fmt.Errorf("decode module: %w", err)
	}

	exports := make(hmr.Exports, len(raw))
	for name, v := range raw {
		s, ok := v.(string)
		if !ok || !strings.HasPrefix(s, ComponentPrefix) {
			exports[name] = v
			continue
		}
		ref := strings.TrimPrefix(s, ComponentPrefix)
		if l.Components == nil {
			return nil, fmt.Errorf("export %q: no component catalog", name)
		}
		fn, ok := l.Components.Lookup(ref)
		if !ok {
			return nil, fmt.Errorf("export %q: unknown component %q", name, ref)
		}
		exports[name] = fn
	}
	return exports, nil
}

// splitExports separates component exports from the remaining values,
// which become the components' props.
func splitExports(exports hmr.Exports) (components []string, props render.Props) {
	props = render.Props{}
	for name, v := range exports {
		if hmr.IsComponentName(name) && render.IsComponent(v) {
			components = append(components, name)
			continue
		}
		props[name] = v
	}
	return components, props
}

func sortedStrings(s []string) []string {
	slices.Sort(s)
	return s
}

// ModuleView returns a <section data-module=id> rendering each component
// export of a module, in name order, with the module's other exports as
// props. It returns nil when the module exports no components.
func ModuleView(id string, exports hmr.Exports) *render.Template {
	components, props := splitExports(exports)
	if len(components) == 0 {
		return nil
	}
	props["module"] = id

	children := make([]any, 0, len(components))
	for _, name := range sortedStrings(components) {
		children = append(children, render.H(exports[name], props))
	}
	return render.H("section", render.Props{"data-module": id}, children...)
}
