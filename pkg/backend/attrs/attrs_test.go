package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vango-dev/weave/pkg/reactive"
)

type label struct{}

func (label) String() string { return "label" }

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "hi", Text("hi"))
	assert.Equal(t, "42", Text(42))
	assert.Equal(t, "-7", Text(int64(-7)))
	assert.Equal(t, "1.5", Text(1.5))
	assert.Equal(t, "label", Text(label{}))
	assert.Equal(t, "true", Text(true))
	assert.Equal(t, "9", Text(reactive.NewSignal(9)))
}

func TestTextPeeksSignal(t *testing.T) {
	s := reactive.NewSignal("v")
	runs := 0
	dispose := reactive.Watch(func() {
		runs++
		_ = Text(s)
	})
	defer dispose()

	s.Set("w")
	assert.Equal(t, 1, runs)
}

func TestClasses(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"nil", nil, nil},
		{"string", "  a b  a ", []string{"a", "b"}},
		{"slice", []string{"x", "y z"}, []string{"x", "y", "z"}},
		{"mixed slice", []any{"a", map[string]bool{"b": true, "c": false}}, []string{"a", "b"}},
		{"bool map sorted", map[string]bool{"z": true, "a": true, "m": false}, []string{"a", "z"}},
		{"any map truthy", map[string]any{"on": 1, "off": 0, "yes": "y"}, []string{"on", "yes"}},
		{"signal", reactive.NewSignal("s t"), []string{"s", "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classes(tt.in))
		})
	}
	assert.Equal(t, "a b", ClassString([]string{"a", "b", "a"}))
	assert.True(t, IsClassKey("className"))
	assert.False(t, IsClassKey("klass"))
}

func TestStyle(t *testing.T) {
	assert.Equal(t, map[string]string{"color": "red", "margin-top": "0"},
		Style("color: red; marginTop: 0;; bogus"))
	assert.Equal(t, map[string]string{"background-color": "blue"},
		Style(map[string]string{"backgroundColor": "blue", "empty": ""}))
	assert.Equal(t, map[string]string{"z-index": "3", "--gap": "4px"},
		Style(map[string]any{"zIndex": 3, "--gap": "4px", "hidden": false, "none": nil}))
	assert.Empty(t, Style(nil))
}

func TestStyleString(t *testing.T) {
	assert.Equal(t, "color: red; font-size: 12px",
		StyleString(map[string]any{"fontSize": "12px", "color": "red"}))
	assert.Equal(t, "", StyleString(""))
}

func TestCSSProperty(t *testing.T) {
	assert.Equal(t, "font-size", CSSProperty("fontSize"))
	assert.Equal(t, "webkit-transition", CSSProperty("WebkitTransition"))
	assert.Equal(t, "already-kebab", CSSProperty("already-kebab"))
	assert.Equal(t, "--Custom", CSSProperty("--Custom"))
}
