// Package attrs normalises prop values shared by every backend: class
// lists, inline styles and text.
package attrs

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/vango-dev/weave/pkg/flow"
	"github.com/vango-dev/weave/pkg/reactive"
)

// Unwrap returns the untracked value of a reactive.Source, or v.
func Unwrap(v any) any {
	if src, ok := v.(reactive.Source); ok {
		return src.AnyPeek()
	}
	return v
}

// Text converts a text-node value to its string form.
func Text(v any) string {
	switch x := Unwrap(v).(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// IsClassKey reports whether key names the class list.
func IsClassKey(key string) bool {
	return key == "class" || key == "className"
}

// Classes normalises a class value into an ordered, de-duplicated list.
//
// Accepted shapes: a space-separated string, []string, []any (each item
// normalised recursively), and map[string]bool or map[string]any, whose
// truthy keys are taken in sorted order.
func Classes(v any) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	collectClasses(Unwrap(v), add)
	return out
}

func collectClasses(v any, add func(string)) {
	switch x := v.(type) {
	case nil:
	case string:
		for _, f := range strings.Fields(x) {
			add(f)
		}
	case []string:
		for _, s := range x {
			collectClasses(s, add)
		}
	case []any:
		for _, item := range x {
			collectClasses(Unwrap(item), add)
		}
	case map[string]bool:
		for _, k := range slices.Sorted(maps.Keys(x)) {
			if x[k] {
				add(k)
			}
		}
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(x)) {
			if flow.Truthy(Unwrap(x[k])) {
				add(k)
			}
		}
	default:
		add(fmt.Sprint(x))
	}
}

// ClassString joins Classes(v) with single spaces.
func ClassString(v any) string {
	return strings.Join(Classes(v), " ")
}

// Style normalises a style value into property -> value.
//
// Accepted shapes: a CSS declaration string ("color: red; margin: 0"),
// map[string]string and map[string]any. camelCase keys become kebab-case;
// custom properties ("--x") are kept as written. Entries with nil, false
// or empty values are dropped.
func Style(v any) map[string]string {
	out := make(map[string]string)
	switch x := Unwrap(v).(type) {
	case nil:
	case string:
		for _, decl := range strings.Split(x, ";") {
			prop, val, ok := strings.Cut(decl, ":")
			if !ok {
				continue
			}
			prop, val = strings.TrimSpace(prop), strings.TrimSpace(val)
			if prop != "" && val != "" {
				out[CSSProperty(prop)] = val
			}
		}
	case map[string]string:
		for k, val := range x {
			if val != "" {
				out[CSSProperty(k)] = val
			}
		}
	case map[string]any:
		for k, val := range x {
			val = Unwrap(val)
			if val == nil || val == false {
				continue
			}
			if s := Text(val); s != "" {
				out[CSSProperty(k)] = s
			}
		}
	}
	return out
}

// StyleString renders Style(v) as sorted "prop: value" declarations.
func StyleString(v any) string {
	style := Style(v)
	decls := make([]string, 0, len(style))
	for _, k := range slices.Sorted(maps.Keys(style)) {
		decls = append(decls, k+": "+style[k])
	}
	return strings.Join(decls, "; ")
}

// CSSProperty converts a camelCase property name to kebab-case.
func CSSProperty(name string) string {
	if strings.HasPrefix(name, "--") || strings.ContainsRune(name, '-') {
		return name
	}
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
