package extension

import (
	"context"
	"sync"

	"github.com/vango-dev/weave/pkg/reactive"
)

// DebugContextKey is the renderer context key the debug extension uses.
const DebugContextKey = "debug"

// DebugContext is attached to every renderer the debug extension is set up on.
type DebugContext struct {
	RendererID string

	mu   sync.RWMutex
	mode string
	stop func()
}

// Mode returns the last observed debug mode.
func (d *DebugContext) Mode() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mode
}

// Close stops observing the mode signal.
func (d *DebugContext) Close() {
	d.mu.Lock()
	stop := d.stop
	d.stop = nil
	d.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// DebugExtension returns an extension that attaches a DebugContext to the
// renderer and keeps it in sync with mode.
func DebugExtension(mode *reactive.Signal[string]) *Descriptor {
	return &Descriptor{
		Meta: Meta{
			Key:         "debug",
			Name:        "Debug",
			Version:     "1.0.0",
			Description: "Tracks the debug mode for a renderer",
		},
		Lifecycle: Lifecycle{
			Setup: func(ctx context.Context, host Host) error {
				dc := &DebugContext{RendererID: host.RendererID(), mode: mode.Peek()}
				dc.stop = mode.Connect(func(m string) {
					dc.mu.Lock()
					dc.mode = m
					dc.mu.Unlock()
					log().Debug("debug mode changed", "renderer", dc.RendererID, "mode", m)
				})
				host.SetContext(DebugContextKey, dc)
				return nil
			},
		},
	}
}
