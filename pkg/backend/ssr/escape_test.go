package ssr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func escaped(fn func(w *strings.Builder, s string), s string) string {
	var b strings.Builder
	fn(&b, s)
	return b.String()
}

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"plain text", "Hello, World!", "Hello, World!"},
		{"ampersand", "Tom & Jerry", "Tom &amp; Jerry"},
		{"script tag", "<script>alert('xss')</script>", "&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;"},
		{"quotes", `say "hello"`, "say &quot;hello&quot;"},
		{"unicode preserved", "Hello 世界 🌍", "Hello 世界 🌍"},
		{"whitespace kept", "a\n\tb", "a\n\tb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := escaped(func(w *strings.Builder, s string) { escapeHTML(w, s) }, tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEscapeAttr(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"plain text", "hello", "hello"},
		{"double quote", `value="test"`, "value=&quot;test&quot;"},
		{"mixed whitespace", "a\n\r\tb", "a&#10;&#13;&#9;b"},
		{"all special chars", `<>&"'` + "\n\r\t", "&lt;&gt;&amp;&quot;&#39;&#10;&#13;&#9;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := escaped(func(w *strings.Builder, s string) { escapeAttr(w, s) }, tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func BenchmarkEscapeHTML(b *testing.B) {
	s := `<script>alert("xss")</script> & more content here`
	var sb strings.Builder
	for i := 0; i < b.N; i++ {
		sb.Reset()
		escapeHTML(&sb, s)
	}
}
