package render

import (
	"strings"

	werrors "github.com/vango-dev/weave/internal/errors"
)

// Node is a backend-native tree node.
type Node = any

// Props is a key/value prop bag.
type Props map[string]any

// NodeOps is the node-operations contract a backend implements. Every
// field is required. The table is shared by the renderer for its whole
// lifetime and must not be mutated after New.
type NodeOps struct {
	// IsNode reports whether v is a node produced by this backend.
	IsNode func(v any) bool

	// CreateNode returns a new childless, prop-less node for tag.
	CreateNode func(tag string) Node

	// CreateTextNode returns a text leaf. A reactive.Source value is
	// unwrapped with its untracked read.
	CreateTextNode func(value any) Node

	// CreateAnchor returns a zero-width placeholder used as an insertion point.
	CreateAnchor func(label string) Node

	// CreateFragment returns a node grouping children without an own tag.
	// Appending a fragment moves its children into the parent.
	CreateFragment func() Node

	// SetProps applies props to node. Backends normalise "class",
	// "className" and "style" into their native representation.
	SetProps func(node Node, props Props)

	// AppendNode appends children to parent.
	AppendNode func(parent Node, children ...Node)

	// InsertBefore inserts node immediately before ref in ref's parent.
	InsertBefore func(node, ref Node)

	// RemoveNode detaches node. Backends without a persistent tree may no-op.
	RemoveNode func(node Node)
}

// Validate returns a W100 error naming every missing operation.
func (o *NodeOps) Validate() error {
	if o == nil {
		return werrors.New(werrors.CodeInvalidNodeOps)
	}

	var missing []string
	check := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}
	check("IsNode", o.IsNode != nil)
	check("CreateNode", o.CreateNode != nil)
	check("CreateTextNode", o.CreateTextNode != nil)
	check("CreateAnchor", o.CreateAnchor != nil)
	check("CreateFragment", o.CreateFragment != nil)
	check("SetProps", o.SetProps != nil)
	check("AppendNode", o.AppendNode != nil)
	check("InsertBefore", o.InsertBefore != nil)
	check("RemoveNode", o.RemoveNode != nil)

	if len(missing) == 0 {
		return nil
	}
	return werrors.New(werrors.CodeMissingNodeOp).
		WithDetail("missing: " + strings.Join(missing, ", ")).
		WithSuggestion("Implement every operation, or build the table with render.OpsFrom.")
}

// Backend is the interface form of NodeOps.
type Backend interface {
	IsNode(v any) bool
	CreateNode(tag string) Node
	CreateTextNode(value any) Node
	CreateAnchor(label string) Node
	CreateFragment() Node
	SetProps(node Node, props Props)
	AppendNode(parent Node, children ...Node)
	InsertBefore(node, ref Node)
	RemoveNode(node Node)
}

// OpsFrom builds a complete NodeOps table from a Backend.
func OpsFrom(b Backend) NodeOps {
	return NodeOps{
		IsNode:         b.IsNode,
		CreateNode:     b.CreateNode,
		CreateTextNode: b.CreateTextNode,
		CreateAnchor:   b.CreateAnchor,
		CreateFragment: b.CreateFragment,
		SetProps:       b.SetProps,
		AppendNode:     b.AppendNode,
		InsertBefore:   b.InsertBefore,
		RemoveNode:     b.RemoveNode,
	}
}
