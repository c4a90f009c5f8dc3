package ssr

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/weave/pkg/backend/tree"
	"github.com/vango-dev/weave/pkg/extension"
	"github.com/vango-dev/weave/pkg/flow"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/render"
)

func newRenderer(t *testing.T, b *Backend, descs ...*extension.Descriptor) *render.Renderer {
	t.Helper()
	r, err := render.New(b.Ops(), "ssr", extension.Compose(descs...))
	require.NoError(t, err)
	return r
}

func TestRenderElement(t *testing.T) {
	b := New()
	r := newRenderer(t, b)

	n := r.Create("form", render.Props{"className": "f", "action": "/save?a=1&b=2"},
		render.H("label", render.Props{"htmlFor": "name"}, "Name <required>"),
		render.H("input", render.Props{"id": "name", "required": true, "disabled": false}),
		render.H("br", nil),
	)

	assert.Equal(t,
		`<form action="/save?a=1&amp;b=2" class="f">`+
			`<label for="name">Name &lt;required&gt;</label>`+
			`<input id="name" required><br></form>`,
		b.Render(n))
}

func TestRenderStyleAndClassNormalisation(t *testing.T) {
	b := New()
	r := newRenderer(t, b)
	n := r.Create("div", render.Props{
		"class": map[string]bool{"active": true, "hidden": false},
		"style": map[string]any{"fontSize": "12px", "color": "red"},
	})
	assert.Equal(t, `<div class="active" style="color: red; font-size: 12px"></div>`, b.Render(n))
}

func TestEventHandlersBecomeMarkers(t *testing.T) {
	b := New()
	r := newRenderer(t, b)
	n := r.Create("button", render.Props{"onClick": func() {}, "type": "button"}, "Go")
	assert.Equal(t, `<button type="button" data-on-click="true">Go</button>`, b.Render(n))
}

func TestInnerHTMLIsRaw(t *testing.T) {
	b := New()
	r := newRenderer(t, b)
	n := r.Create("div", render.Props{"innerHTML": "<b>raw</b>"})
	assert.Equal(t, `<div><b>raw</b></div>`, b.Render(n))
}

func TestRegionsAndMarkers(t *testing.T) {
	on := reactive.NewSignal(false)
	template := render.H("p", nil, flow.Show(on, "yes", "no"))

	plain := New()
	r := newRenderer(t, plain)
	n := r.Create(template, nil)
	assert.Equal(t, "<p>no</p>", plain.Render(n))

	on.Set(true)
	assert.Equal(t, "<p>yes</p>", plain.Render(n))

	marked := New(WithMarkers())
	r = newRenderer(t, marked)
	n = r.Create(template, nil)
	assert.Equal(t, "<p>yes<!--Show--></p>", marked.Render(n))
}

func TestDirectivesOnSSRNodes(t *testing.T) {
	b := New()
	r := newRenderer(t, b, tree.Directives())
	n := r.Create("div", render.Props{"class": "a", "class:b": true, "style:zIndex": 2})
	assert.Equal(t, `<div class="a b" style="z-index: 2"></div>`, b.Render(n))
}

func TestPretty(t *testing.T) {
	b := New(WithPretty())
	r := newRenderer(t, b)
	n := r.Create("ul", nil,
		render.H("li", nil, "one"),
		render.H("li", nil, render.H("span", nil, "two")),
	)
	want := "<ul>\n" +
		"  <li>\n" +
		"    one\n" +
		"  </li>\n" +
		"  <li>\n" +
		"    <span>two</span>\n" +
		"  </li>\n" +
		"</ul>\n"
	assert.Equal(t, want, b.Render(n))
}

func TestWriteTo(t *testing.T) {
	b := New()
	r := newRenderer(t, b)
	var buf bytes.Buffer
	require.NoError(t, b.WriteTo(&buf, r.Create("em", nil, "it's")))
	assert.Equal(t, "<em>it&#39;s</em>", buf.String())
}

func TestFragmentRender(t *testing.T) {
	b := New()
	r := newRenderer(t, b)
	n := r.Create(render.Fragment, nil, render.H("hr", nil), "text")
	assert.Equal(t, "<hr>text", b.Render(n))
}
