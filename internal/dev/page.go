package dev

import (
	"html"
	"strings"
	"sync"

	"github.com/vango-dev/weave/pkg/backend/ssr"
	"github.com/vango-dev/weave/pkg/flow"
	"github.com/vango-dev/weave/pkg/hmr"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/render"
)

// RootID is the id of the element holding the live page.
const RootID = "weave-root"

// Page is the live tree the dev server renders every loaded module into.
// Component exports are rendered through the renderer's hot dispatcher,
// so accepted updates patch the tree in place; Refresh rebuilds it.
//
// All access goes through Do, which serializes tree mutations.
type Page struct {
	mu       sync.Mutex
	renderer *render.Renderer
	backend  *ssr.Backend
	bridge   *hmr.Bridge
	title    string

	version *reactive.Signal[int]
	root    render.Node
	dispose func()
}

// NewPage creates a page over bridge's modules. backend must be the
// backend renderer was created from.
func NewPage(renderer *render.Renderer, backend *ssr.Backend, bridge *hmr.Bridge, title string) *Page {
	return &Page{
		renderer: renderer,
		backend:  backend,
		bridge:   bridge,
		title:    title,
		version:  reactive.NewSignal(0),
	}
}

// Do runs fn while holding the page lock.
func (p *Page) Do(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn()
}

// Mount builds the page root. It is a no-op when already mounted.
// Callers hold the lock.
func (p *Page) Mount() {
	if p.root != nil {
		return
	}
	ops := p.renderer.Ops()
	p.root = ops.CreateNode("div")
	ops.SetProps(p.root, render.Props{"id": RootID})
	p.dispose = p.renderer.Render(p.root, flow.Fn("modules", func() flow.RenderFunc {
		p.version.Get()
		return p.view
	}))
}

// Refresh re-renders every module from its current exports. Callers hold
// the lock.
func (p *Page) Refresh() {
	p.version.Update(func(v int) int { return v + 1 })
}

// Close disposes the live tree.
func (p *Page) Close() {
	p.Do(func() {
		if p.dispose != nil {
			p.dispose()
			p.dispose = nil
		}
		p.root = nil
	})
}

func (p *Page) view() any {
	var out []any
	for _, id := range p.bridge.Modules() {
		exports, ok := p.bridge.Exports(id)
		if !ok {
			continue
		}
		if section := ModuleView(id, exports); section != nil {
			out = append(out, section)
		}
	}
	return out
}

// HTML serializes the page root. Callers hold the lock.
func (p *Page) HTML() string {
	if p.root == nil {
		return ""
	}
	return p.backend.Render(p.root)
}

// Document returns the full HTML document served at "/".
func (p *Page) Document(script bool) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(p.title))
	b.WriteString("</title></head><body>\n")
	p.Do(func() {
		p.Mount()
		b.WriteString(p.HTML())
	})
	if script {
		b.WriteString(ClientScript)
	}
	b.WriteString("\n</body></html>\n")
	return b.String()
}
