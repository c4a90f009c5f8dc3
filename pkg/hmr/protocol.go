package hmr

import (
	"context"

	werrors "github.com/vango-dev/weave/internal/errors"
)

// DataKey is the key under which a module's exports are carried to the
// next cycle in HotContext data.
const DataKey = "weave.hmr.exports"

// HotContext is the per-module handle the build-tool bridge hands to
// Setup on every load.
type HotContext interface {
	// Module is the id of the module being loaded.
	Module() string

	// Data is state carried across reloads of the same module.
	Data() map[string]any

	// Current resolves the freshly loaded module's exports.
	Current(ctx context.Context) (Exports, error)

	// Accept acknowledges the update.
	Accept()

	// Dispose registers fn to run before the next reload, with the data
	// map that the next cycle will see.
	Dispose(fn func(data map[string]any))

	// Invalidate requests a full reload.
	Invalidate(reason string)
}

// Setup runs the module protocol for one load. On the first load it only
// stashes the exports and accepts. On later loads it reconciles the
// stashed exports against the new ones and accepts unless the update was
// invalidated.
func (r *Reconciler) Setup(ctx context.Context, hc HotContext) (Result, error) {
	next, err := hc.Current(ctx)
	if err != nil {
		werr := werrors.New(werrors.CodeHotModule).Wrap(err)
		hc.Invalidate(werr.Error())
		return Result{}, werr
	}

	hc.Dispose(func(data map[string]any) {
		data[DataKey] = next
	})

	prev, ok := hc.Data()[DataKey].(Exports)
	if !ok {
		hc.Accept()
		return Result{}, nil
	}

	res := r.ApplyModuleUpdate(ctx, hc.Module(), prev, next, hc.Invalidate)
	if res.OK() {
		hc.Accept()
	}
	return res, nil
}
