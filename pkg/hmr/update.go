package hmr

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	werrors "github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/internal/telemetry"
	"github.com/vango-dev/weave/pkg/render"
)

// Exports is a module's exported names and values.
type Exports map[string]any

// Result summarises one ApplyHotUpdate call.
type Result struct {
	Rebound     []string
	Invalidated []string
	Unchanged   []string
	Reasons     []string
}

// OK reports whether the update was applied without invalidation.
func (r Result) OK() bool {
	return len(r.Invalidated) == 0
}

// Err returns a W120 error describing the invalidation reasons, or nil.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return werrors.New(werrors.CodeHotInvalidated).
		WithSubject(strings.Join(r.Invalidated, ", ")).
		WithDetail(strings.Join(r.Reasons, "; "))
}

// IsComponentName reports whether an export name follows the component
// naming convention: "default" or an upper-case first letter.
func IsComponentName(name string) bool {
	if name == "default" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// ApplyHotUpdate reconciles the exports of a replaced module.
//
// Names are visited in sorted order. A component export (component name,
// component function on both sides) rebinds its wrapper: the wrapper is
// located or created from the old function, marked hot and given the new
// implementation. Every other export is compared by type and printed
// form: a difference calls invalidate with a reason naming the export,
// and no difference only logs a warning. Added or removed non-component
// exports invalidate.
func (r *Reconciler) ApplyHotUpdate(ctx context.Context, old, next Exports, invalidate func(reason string)) Result {
	return r.ApplyModuleUpdate(ctx, "", old, next, invalidate)
}

// ApplyModuleUpdate is ApplyHotUpdate for a named module. Wrappers created
// for its exports are registered under ScopedID(module, name).
func (r *Reconciler) ApplyModuleUpdate(ctx context.Context, module string, old, next Exports, invalidate func(reason string)) Result {
	_, span := telemetry.StartSpan(ctx, r.tracer, "weave.hmr.apply",
		attribute.String("weave.hmr.module", module),
		attribute.Int("weave.hmr.exports", len(next)),
	)

	var res Result
	fail := func(name, reason string) {
		res.Invalidated = append(res.Invalidated, name)
		res.Reasons = append(res.Reasons, reason)
		r.metrics.HotInvalidation()
		r.logger.Warn("hot update invalidated", "export", name, "reason", reason)
		if invalidate != nil {
			invalidate(reason)
		}
	}

	names := slices.Sorted(maps.Keys(mergeKeys(old, next)))
	for _, name := range names {
		o, inOld := old[name]
		n, inNew := next[name]

		if IsComponentName(name) && (render.IsComponent(o) || !inOld) && render.IsComponent(n) {
			if !inOld {
				r.locate(ScopedID(module, name), name, n)
				r.logger.Debug("component export added", "module", module, "export", name)
				continue
			}
			w := r.locate(ScopedID(module, name), name, o)
			w.rebind(n)
			r.bind(n, w)
			res.Rebound = append(res.Rebound, name)
			r.metrics.HotRebind()
			r.logger.Debug("component rebound", "module", module, "export", name, "wrapper", w.ID())
			continue
		}
		if IsComponentName(name) && render.IsComponent(o) && !inNew {
			r.logger.Debug("component export removed", "export", name)
			continue
		}

		switch {
		case !inOld:
			fail(name, fmt.Sprintf("export %q was added", name))
		case !inNew:
			fail(name, fmt.Sprintf("export %q was removed", name))
		default:
			if reason, changed := compare(name, o, n); changed {
				fail(name, reason)
			} else {
				res.Unchanged = append(res.Unchanged, name)
				r.logger.Warn("hot update: no effective change detected, state may be stale", "export", name)
			}
		}
	}

	r.metrics.HotUpdate()
	telemetry.EndSpan(span, res.Err())
	return res
}

func mergeKeys(a, b Exports) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}

// compare reports whether two export values differ by type tag or printed
// form, and why.
func compare(name string, o, n any) (string, bool) {
	oTag, nTag := fmt.Sprintf("%T", o), fmt.Sprintf("%T", n)
	oStr, nStr := fmt.Sprintf("%v", o), fmt.Sprintf("%v", n)

	if isPrimitive(o) || isPrimitive(n) {
		if oTag != nTag || oStr != nStr {
			return fmt.Sprintf("export %q changed from %s to %s", name, oStr, nStr), true
		}
		return "", false
	}
	if oTag != nTag {
		return fmt.Sprintf("export %q changed type from %s to %s", name, oTag, nTag), true
	}
	if oStr != nStr {
		return fmt.Sprintf("export %q changed", name), true
	}
	return "", false
}

func isPrimitive(v any) bool {
	if v == nil {
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}
