// Package ssr is the server-side rendering backend. Nodes are built as a
// tree.Node tree and serialised to HTML with escaping, void elements and
// boolean attributes handled.
//
//	b := ssr.New()
//	r, err := render.New(b.Ops(), "ssr", composed)
//	html := b.Render(r.Create(App, nil))
package ssr

import (
	"bufio"
	"io"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/vango-dev/weave/pkg/backend/attrs"
	"github.com/vango-dev/weave/pkg/backend/tree"
	"github.com/vango-dev/weave/pkg/render"
)

// Config configures HTML output.
type Config struct {
	// Pretty enables indented output. Development only.
	Pretty bool

	// Indent is the indentation unit in pretty mode (default: two spaces).
	Indent string

	// Markers emits anchors as HTML comments so a client can locate
	// dynamic regions.
	Markers bool
}

// Backend implements render.Backend and renders its nodes to HTML.
type Backend struct {
	*tree.Backend
	config Config
}

// New returns an SSR backend.
func New(opts ...func(*Config)) *Backend {
	config := Config{Indent: "  "}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Backend{Backend: tree.New(), config: config}
}

// WithPretty enables indented output.
func WithPretty() func(*Config) {
	return func(c *Config) { c.Pretty = true }
}

// WithMarkers emits region anchors as comments.
func WithMarkers() func(*Config) {
	return func(c *Config) { c.Markers = true }
}

// Ops returns the node-operations table.
func (b *Backend) Ops() render.NodeOps {
	return render.OpsFrom(b)
}

// Render serialises node to an HTML string.
func (b *Backend) Render(node render.Node) string {
	var sb strings.Builder
	b.write(&sb, node.(*tree.Node), 0)
	return sb.String()
}

// WriteTo streams node as HTML to w.
func (b *Backend) WriteTo(w io.Writer, node render.Node) error {
	bw := bufio.NewWriter(w)
	b.write(bw, node.(*tree.Node), 0)
	return bw.Flush()
}

type stringWriter interface {
	io.StringWriter
	io.ByteWriter
}

func (b *Backend) write(w stringWriter, n *tree.Node, depth int) {
	switch n.Kind {
	case tree.KindText:
		escapeHTML(w, n.Text)
	case tree.KindAnchor:
		if b.config.Markers {
			w.WriteString("<!--")
			w.WriteString(strings.ReplaceAll(n.Text, "--", "- -"))
			w.WriteString("-->")
		}
	case tree.KindFragment:
		for _, c := range n.Children() {
			b.write(w, c, depth)
		}
	case tree.KindElement:
		b.writeElement(w, n, depth)
	}
}

func (b *Backend) writeElement(w stringWriter, n *tree.Node, depth int) {
	pretty := b.config.Pretty
	if pretty && depth > 0 {
		b.indent(w, depth)
	}

	w.WriteByte('<')
	w.WriteString(n.Tag)
	b.writeAttributes(w, n)
	w.WriteByte('>')

	if voidElements[n.Tag] {
		if pretty {
			w.WriteByte('\n')
		}
		return
	}

	children := n.Children()
	if raw, ok := n.Props["innerHTML"].(string); ok {
		w.WriteString(raw)
	} else {
		block := pretty && len(children) > 0 && !inlineElements[n.Tag]
		if block {
			w.WriteByte('\n')
		}
		for _, c := range children {
			if block && c.Kind == tree.KindText {
				b.indent(w, depth+1)
				b.write(w, c, depth+1)
				w.WriteByte('\n')
				continue
			}
			b.write(w, c, depth+1)
		}
		if block {
			b.indent(w, depth)
		}
	}

	w.WriteString("</")
	w.WriteString(n.Tag)
	w.WriteByte('>')
	if pretty {
		w.WriteByte('\n')
	}
}

func (b *Backend) writeAttributes(w stringWriter, n *tree.Node) {
	keys := slices.Sorted(maps.Keys(n.Props))
	var events []string

	for _, key := range keys {
		value := n.Props[key]
		if strings.HasPrefix(key, "_") || key == "key" || key == "innerHTML" {
			continue
		}
		if isFunc(value) {
			if strings.HasPrefix(key, "on") && len(key) > 2 {
				events = append(events, strings.ToLower(key[2:]))
			}
			continue
		}
		if key == "htmlFor" {
			key = "for"
		}

		if bv, ok := value.(bool); ok {
			if booleanAttrs[key] {
				if bv {
					w.WriteByte(' ')
					w.WriteString(key)
				}
				continue
			}
		}

		s := attrs.Text(value)
		if s == "" {
			continue
		}
		w.WriteByte(' ')
		w.WriteString(key)
		w.WriteString(`="`)
		escapeAttr(w, s)
		w.WriteByte('"')
	}

	for _, ev := range events {
		w.WriteString(` data-on-`)
		w.WriteString(ev)
		w.WriteString(`="true"`)
	}
}

func (b *Backend) indent(w stringWriter, depth int) {
	for i := 0; i < depth; i++ {
		w.WriteString(b.config.Indent)
	}
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}
