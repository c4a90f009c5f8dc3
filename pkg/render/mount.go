package render

import (
	"github.com/vango-dev/weave/pkg/flow"
	"github.com/vango-dev/weave/pkg/reactive"
)

// mounted is a region placed in the tree. Its nodes sit immediately
// before anchor; a swap removes them and inserts the replacement before
// the anchor.
type mounted struct {
	r        *Renderer
	region   *flow.Region
	anchor   Node
	parent   *reactive.Owner
	owner    *reactive.Owner
	current  []part
	attached bool
}

func (m *mounted) nodes() []Node {
	return append(flatten(m.current), m.anchor)
}

func (r *Renderer) mount(region *flow.Region) []part {
	m := &mounted{
		r:      r,
		region: region,
		anchor: r.ops.CreateAnchor(region.Name()),
		parent: reactive.CurrentOwner(),
	}
	r.metrics.NodeCreated(r.id, "anchor")

	region.Watch(m.swap)
	return []part{{region: m}}
}

func (m *mounted) swap(fn flow.RenderFunc) {
	r := m.r
	owner := reactive.NewOwner(m.parent)

	done := false
	defer func() {
		if !done {
			owner.Dispose()
		}
	}()

	var next []part
	owner.Run(func() {
		next = r.materialize(m.region, fn)
	})

	if m.owner != nil {
		m.owner.Dispose()
	}
	for _, n := range flatten(m.current) {
		r.ops.RemoveNode(n)
	}
	m.current, m.owner = next, owner
	if m.attached {
		for _, n := range flatten(next) {
			r.ops.InsertBefore(n, m.anchor)
		}
	}
	m.attached = true
	done = true
	r.metrics.RegionRendered(r.id)
}

// materialize builds fn's result. Panics go to the region's error
// boundary when it has one and propagate otherwise.
func (r *Renderer) materialize(region *flow.Region, fn flow.RenderFunc) (parts []part) {
	if fn == nil {
		return nil
	}
	if !region.HasCatch() {
		return r.build(fn())
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Debug("region render recovered", "region", region.Name(), "panic", p)
			parts = nil
			if fallback := region.Recover(flow.AsError(p)); fallback != nil {
				parts = r.build(fallback())
			}
		}
	}()
	return r.build(fn())
}
