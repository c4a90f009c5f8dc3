package tree

import (
	"slices"

	"github.com/vango-dev/weave/pkg/backend/attrs"
	"github.com/vango-dev/weave/pkg/extension"
	"github.com/vango-dev/weave/pkg/flow"
)

// Directives returns an extension resolving "class:<name>" (toggle a
// class by truthiness) and "style:<property>" (set or clear one style
// property) on *Node. It also contributes click, input and submit
// triggers that call the node's handler props.
func Directives() *extension.Descriptor {
	return &extension.Descriptor{
		Meta: extension.Meta{
			Key:         "tree-directives",
			Name:        "Tree directives",
			Version:     "1.0.0",
			Description: "class: and style: directives and event triggers for tree nodes",
		},
		Capabilities: extension.Capabilities{
			RendererProps: &extension.RendererProps{
				OnDirective: []extension.DirectiveResolver{resolveDirective},
			},
			Triggers: triggers(),
		},
	}
}

func resolveDirective(prefix, key string, _ any) extension.DirectiveSetter {
	switch prefix {
	case "class":
		return func(node, value any) {
			n, ok := node.(*Node)
			if !ok {
				return
			}
			ToggleClass(n, key, flow.Truthy(attrs.Unwrap(value)))
		}
	case "style":
		return func(node, value any) {
			n, ok := node.(*Node)
			if !ok {
				return
			}
			SetStyle(n, key, attrs.Text(value))
		}
	}
	return nil
}

// ToggleClass adds or removes one class.
func ToggleClass(n *Node, class string, on bool) {
	classes := n.Classes()
	i := slices.Index(classes, class)
	switch {
	case on && i < 0:
		classes = append(classes, class)
	case !on && i >= 0:
		classes = slices.Delete(classes, i, i+1)
	default:
		return
	}
	setOrDelete(n.Props, "class", attrs.ClassString(classes))
}

// SetStyle sets one style property; an empty value removes it.
func SetStyle(n *Node, property, value string) {
	style := attrs.Style(n.Props["style"])
	prop := attrs.CSSProperty(property)
	if value == "" {
		delete(style, prop)
	} else {
		style[prop] = value
	}
	setOrDelete(n.Props, "style", attrs.StyleString(style))
}
