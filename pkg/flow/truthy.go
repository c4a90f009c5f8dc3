package flow

import (
	"fmt"
	"reflect"

	"github.com/vango-dev/weave/pkg/reactive"
)

// Truthy reports whether v counts as true for a condition.
//
// nil, false, numeric zero, "" and nil pointers, maps, slices, funcs,
// channels and interfaces are falsy. Everything else is truthy, including
// empty non-nil slices and maps. A reactive.Source is read (tracked) and
// its value tested.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case reactive.Source:
		return Truthy(x.AnyGet())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return !rv.IsZero()
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}

// condition resolves c into a check function.
func condition(c any) func() bool {
	switch x := c.(type) {
	case reactive.Source:
		return func() bool { return Truthy(x.AnyGet()) }
	case func() bool:
		return x
	case func() any:
		return func() bool { return Truthy(x()) }
	default:
		// Plain values are evaluated once, here.
		v := Truthy(c)
		return func() bool { return v }
	}
}

// AsError converts a recovered panic value into an error.
func AsError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
