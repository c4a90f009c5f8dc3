// Package tree is a persistent in-memory node backend. It keeps parent
// links and fragment semantics close to a DOM, which makes it suitable for
// tests, headless hosts and as the building tree of the SSR backend.
package tree

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/vango-dev/weave/pkg/backend/attrs"
	"github.com/vango-dev/weave/pkg/render"
)

// Kind identifies the node type.
type Kind uint8

const (
	KindElement Kind = iota
	KindText
	KindAnchor
	KindFragment
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindAnchor:
		return "Anchor"
	case KindFragment:
		return "Fragment"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Node is a tree node.
type Node struct {
	Kind Kind
	Tag  string

	// Text is the content of a text node or the label of an anchor.
	Text string

	// Props holds normalised props. "class" and "style" are strings.
	Props map[string]any

	parent   *Node
	children []*Node
}

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Prop returns a prop value.
func (n *Node) Prop(key string) any { return n.Props[key] }

// Classes returns the class list.
func (n *Node) Classes() []string {
	return attrs.Classes(n.Props["class"])
}

func (n *Node) indexOf(child *Node) int {
	return slices.Index(n.children, child)
}

func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	p := n.parent
	if i := p.indexOf(n); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	n.parent = nil
}

// Backend implements render.Backend over *Node.
type Backend struct{}

// New returns a tree backend.
func New() *Backend {
	return &Backend{}
}

// Ops returns the node-operations table.
func (b *Backend) Ops() render.NodeOps {
	return render.OpsFrom(b)
}

// IsNode implements render.Backend.
func (b *Backend) IsNode(v any) bool {
	n, ok := v.(*Node)
	return ok && n != nil
}

// CreateNode implements render.Backend.
func (b *Backend) CreateNode(tag string) render.Node {
	return &Node{Kind: KindElement, Tag: tag, Props: make(map[string]any)}
}

// CreateTextNode implements render.Backend.
func (b *Backend) CreateTextNode(value any) render.Node {
	return &Node{Kind: KindText, Text: attrs.Text(value)}
}

// CreateAnchor implements render.Backend.
func (b *Backend) CreateAnchor(label string) render.Node {
	return &Node{Kind: KindAnchor, Text: label}
}

// CreateFragment implements render.Backend.
func (b *Backend) CreateFragment() render.Node {
	return &Node{Kind: KindFragment}
}

// SetProps implements render.Backend. A nil value removes the prop.
func (b *Backend) SetProps(node render.Node, props render.Props) {
	n := node.(*Node)
	if n.Props == nil {
		n.Props = make(map[string]any)
	}
	for k, v := range props {
		v = attrs.Unwrap(v)
		switch {
		case attrs.IsClassKey(k):
			setOrDelete(n.Props, "class", attrs.ClassString(v))
		case k == "style":
			setOrDelete(n.Props, "style", attrs.StyleString(v))
		case v == nil:
			delete(n.Props, k)
		default:
			n.Props[k] = v
		}
	}
}

func setOrDelete(m map[string]any, key, value string) {
	if value == "" {
		delete(m, key)
		return
	}
	m[key] = value
}

// AppendNode implements render.Backend. A fragment child contributes its
// children and is left empty.
func (b *Backend) AppendNode(parent render.Node, children ...render.Node) {
	p := parent.(*Node)
	for _, c := range expand(children) {
		c.detach()
		c.parent = p
		p.children = append(p.children, c)
	}
}

// InsertBefore implements render.Backend. It is a no-op when ref has no
// parent.
func (b *Backend) InsertBefore(node, ref render.Node) {
	r := ref.(*Node)
	p := r.parent
	if p == nil {
		return
	}
	for _, c := range expand([]render.Node{node}) {
		if c == r {
			continue
		}
		c.detach()
		c.parent = p
		i := p.indexOf(r)
		p.children = slices.Insert(p.children, i, c)
	}
}

// RemoveNode implements render.Backend.
func (b *Backend) RemoveNode(node render.Node) {
	node.(*Node).detach()
}

func expand(nodes []render.Node) []*Node {
	var out []*Node
	for _, v := range nodes {
		n := v.(*Node)
		if n.Kind == KindFragment {
			kids := n.children
			n.children = nil
			for _, k := range kids {
				k.parent = nil
			}
			out = append(out, kids...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// Dump renders n as compact markup for assertions. Anchors are omitted,
// props are sorted and function-valued props are skipped. Text is not
// escaped.
func Dump(n *Node) string {
	var b strings.Builder
	dump(&b, n)
	return b.String()
}

func dump(b *strings.Builder, n *Node) {
	switch n.Kind {
	case KindText:
		b.WriteString(n.Text)
	case KindAnchor:
	case KindFragment:
		for _, c := range n.children {
			dump(b, c)
		}
	case KindElement:
		b.WriteString("<")
		b.WriteString(n.Tag)
		for _, k := range slices.Sorted(maps.Keys(n.Props)) {
			v := n.Props[k]
			if isFunc(v) {
				continue
			}
			fmt.Fprintf(b, " %s=%q", k, attrs.Text(v))
		}
		b.WriteString(">")
		for _, c := range n.children {
			dump(b, c)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteString(">")
	}
}

// TextContent concatenates the text of n and its descendants.
func TextContent(n *Node) string {
	if n.Kind == KindText {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.children {
		b.WriteString(TextContent(c))
	}
	return b.String()
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}
