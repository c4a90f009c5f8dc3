package render

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// ChildrenKey is the prop under which a component receives its children.
const ChildrenKey = "children"

type fragment struct{}

func (fragment) String() string { return "Fragment" }

// Fragment is the template type for a tagless group of children.
var Fragment any = fragment{}

// Component is a function from props to a render result.
type Component func(props Props) any

// Template is a deferred Create call.
type Template struct {
	Type     any
	Props    Props
	Children []any
}

// H returns a template. typ is a tag name, Fragment or a component.
func H(typ any, props Props, children ...any) *Template {
	return &Template{Type: typ, Props: props, Children: children}
}

// String implements fmt.Stringer.
func (t *Template) String() string {
	switch typ := t.Type.(type) {
	case string:
		return "<" + typ + ">"
	case fmt.Stringer:
		return "<" + typ.String() + ">"
	default:
		return fmt.Sprintf("<%T>", typ)
	}
}

// Children returns the children passed to a component.
func (p Props) Children() []any {
	c, _ := p[ChildrenKey].([]any)
	return c
}

// withChildren returns a copy of props carrying children.
func (p Props) withChildren(children []any) Props {
	out := make(Props, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	if len(children) > 0 {
		out[ChildrenKey] = children
	}
	return out
}

// IsComponent reports whether v can be called as a component: a Component
// or any func(Props) any.
func IsComponent(v any) bool {
	switch v.(type) {
	case Component, func(Props) any:
		return true
	}
	return false
}

// CallComponent invokes a component function with props.
func CallComponent(fn any, props Props) any {
	switch c := fn.(type) {
	case Component:
		return c(props)
	case func(Props) any:
		return c(props)
	default:
		panic(fmt.Sprintf("render: %T is not a component", fn))
	}
}

// ComponentName returns a readable name for a component function.
func ComponentName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fmt.Sprintf("%T", fn)
	}
	return funcName(v.Pointer())
}

func funcName(pc uintptr) string {
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "anonymous"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
