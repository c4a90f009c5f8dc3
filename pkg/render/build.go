package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/vango-dev/weave/pkg/extension"
	"github.com/vango-dev/weave/pkg/flow"
	"github.com/vango-dev/weave/pkg/reactive"
)

// part is a contiguous run of built nodes: one static node or a mounted
// region whose nodes change over time.
type part struct {
	node   Node
	region *mounted
}

func flatten(parts []part) []Node {
	var out []Node
	for _, p := range parts {
		if p.region != nil {
			out = append(out, p.region.nodes()...)
		} else {
			out = append(out, p.node)
		}
	}
	return out
}

func (r *Renderer) build(v any) []part {
	switch x := v.(type) {
	case nil, bool:
		return nil
	case *Template:
		return r.buildTemplate(x.Type, x.Props, x.Children)
	case *flow.Region:
		return r.mount(x)
	case flow.RenderFunc:
		return r.mount(dynamic(x))
	case func() any:
		return r.mount(dynamic(x))
	case reactive.Source:
		return r.mount(flow.Fn("signal", func() flow.RenderFunc {
			val := x.AnyGet()
			return func() any { return val }
		}))
	case []any:
		var out []part
		for _, c := range x {
			out = append(out, r.build(c)...)
		}
		return out
	case []*Template:
		var out []part
		for _, c := range x {
			out = append(out, r.build(c)...)
		}
		return out
	case string:
		return r.text(x)
	}

	if r.ops.IsNode(v) {
		return []part{{node: v}}
	}
	if IsComponent(v) {
		return r.buildComponent(v, nil)
	}
	if r.hot != nil {
		if region, ok := r.hot.Dispatch(v, Props{}); ok {
			return r.mount(region)
		}
	}
	return r.text(v)
}

// dynamic turns a render function child into a region that re-runs it
// whenever a signal it reads changes.
func dynamic(fn func() any) *flow.Region {
	return flow.Fn("dynamic", func() flow.RenderFunc {
		v := fn()
		return func() any { return v }
	})
}

func (r *Renderer) text(v any) []part {
	node := r.ops.CreateTextNode(v)
	r.metrics.NodeCreated(r.id, "text")
	return []part{{node: node}}
}

func (r *Renderer) buildTemplate(typ any, props Props, children []any) []part {
	if tag, ok := typ.(string); ok {
		return r.buildElement(tag, props, children)
	}
	if typ == Fragment {
		if len(children) == 0 {
			children = props.Children()
		}
		return r.build(children)
	}
	if IsComponent(typ) {
		return r.buildComponent(typ, props.withChildren(children))
	}
	if r.hot != nil {
		if region, ok := r.hot.Dispatch(typ, props.withChildren(children)); ok {
			return r.mount(region)
		}
	}
	panic(fmt.Sprintf("render: unsupported template type %T", typ))
}

func (r *Renderer) buildComponent(fn any, props Props) []part {
	if props == nil {
		props = Props{}
	}
	if r.hot != nil {
		if region, ok := r.hot.Dispatch(fn, props); ok {
			return r.mount(region)
		}
	}

	var out any
	reactive.Untracked(func() {
		out = CallComponent(fn, props)
	})
	return r.build(out)
}

type directive struct {
	set   extension.DirectiveSetter
	value any
}

func (r *Renderer) buildElement(tag string, props Props, children []any) []part {
	resolved, namespace := r.composed.ResolveTag(tag)
	node := r.ops.CreateNode(resolved)
	r.metrics.NodeCreated(r.id, "element")

	plain := Props{}
	if namespace != "" {
		plain["xmlns"] = namespace
	}
	var directives []directive
	var dynamicKeys []string

	for _, k := range slices.Sorted(maps.Keys(props)) {
		v := props[k]
		if k == ChildrenKey {
			continue
		}
		if prefix, key, ok := strings.Cut(k, ":"); ok && prefix != "" && r.composed.HasDirectives() {
			if set := r.composed.OnDirective(prefix, key, v); set != nil {
				directives = append(directives, directive{set: set, value: v})
				continue
			}
		}
		if _, ok := v.(reactive.Source); ok {
			dynamicKeys = append(dynamicKeys, k)
			continue
		}
		plain[k] = v
	}

	if len(plain) > 0 {
		r.ops.SetProps(node, plain)
	}
	for _, k := range dynamicKeys {
		r.bindProp(node, k, props[k].(reactive.Source))
	}
	for _, d := range directives {
		r.bindDirective(node, d)
	}

	if len(children) == 0 {
		children = props.Children()
	}
	if nodes := flatten(r.build(children)); len(nodes) > 0 {
		r.ops.AppendNode(node, nodes...)
	}
	return []part{{node: node}}
}

func (r *Renderer) bindProp(node Node, key string, src reactive.Source) {
	reactive.Watch(func() {
		v := src.AnyGet()
		reactive.Untracked(func() {
			r.ops.SetProps(node, Props{key: v})
		})
	})
}

func (r *Renderer) bindDirective(node Node, d directive) {
	src, ok := d.value.(reactive.Source)
	if !ok {
		d.set(node, d.value)
		return
	}
	reactive.Watch(func() {
		v := src.AnyGet()
		reactive.Untracked(func() {
			d.set(node, v)
		})
	})
}
