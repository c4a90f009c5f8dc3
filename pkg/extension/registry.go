package extension

import (
	"context"
	"log/slog"
	"sync"

	werrors "github.com/vango-dev/weave/internal/errors"
)

type entry struct {
	desc    *Descriptor
	enabled bool
}

// Registry tracks installed extensions and their enabled state.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
	logger  *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger uses slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Install validates the metadata, runs OnInstall and then OnEnable.
// An installed extension starts enabled.
func (r *Registry) Install(ctx context.Context, d *Descriptor) error {
	if d == nil {
		return werrors.New(werrors.CodeInvalidMeta).WithDetail("descriptor is nil")
	}
	if err := ValidateMeta(d.Meta); err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.entries[d.Meta.Key]; exists {
		r.mu.Unlock()
		return werrors.New(werrors.CodeDuplicateExt).WithSubject(d.Meta.Key)
	}
	// Reserve the key so a concurrent Install of the same key fails.
	e := &entry{desc: d}
	r.entries[d.Meta.Key] = e
	r.mu.Unlock()

	if err := callHook(ctx, d.Lifecycle.OnInstall); err != nil {
		r.mu.Lock()
		delete(r.entries, d.Meta.Key)
		r.mu.Unlock()
		return werrors.New(werrors.CodeSetupFailed).
			WithSubject(d.Meta.Key).
			WithDetail("install hook failed").
			Wrap(err)
	}

	r.mu.Lock()
	r.order = append(r.order, d.Meta.Key)
	r.mu.Unlock()
	r.logger.Info("extension installed", "extension", d.Meta.String())

	return r.Enable(ctx, d.Meta.Key)
}

// Uninstall disables the extension if needed, runs OnUninstall and removes it.
func (r *Registry) Uninstall(ctx context.Context, key string) error {
	if err := r.Disable(ctx, key); err != nil {
		return err
	}

	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		r.mu.Unlock()
		return werrors.New(werrors.CodeUnknownExt).WithSubject(key)
	}
	delete(r.entries, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if err := callHook(ctx, e.desc.Lifecycle.OnUninstall); err != nil {
		r.logger.Warn("extension uninstall hook failed", "extension", key, "error", err)
		return err
	}
	r.logger.Info("extension uninstalled", "extension", key)
	return nil
}

// Enable runs OnEnable for a disabled extension. Enabling an enabled
// extension is a no-op.
func (r *Registry) Enable(ctx context.Context, key string) error {
	return r.setEnabled(ctx, key, true)
}

// Disable runs OnDisable for an enabled extension. Disabling a disabled
// extension is a no-op.
func (r *Registry) Disable(ctx context.Context, key string) error {
	return r.setEnabled(ctx, key, false)
}

func (r *Registry) setEnabled(ctx context.Context, key string, enabled bool) error {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		r.mu.Unlock()
		return werrors.New(werrors.CodeUnknownExt).WithSubject(key)
	}
	if e.enabled == enabled {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	hook := e.desc.Lifecycle.OnDisable
	if enabled {
		hook = e.desc.Lifecycle.OnEnable
	}
	if err := callHook(ctx, hook); err != nil {
		r.logger.Warn("extension state change failed",
			"extension", key, "enabled", enabled, "error", err)
		return err
	}

	r.mu.Lock()
	e.enabled = enabled
	r.mu.Unlock()
	return nil
}

// Get returns the installed descriptor for key.
func (r *Registry) Get(key string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	return e.desc, true
}

// Enabled reports whether key is installed and enabled.
func (r *Registry) Enabled(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	return ok && e.enabled
}

// List returns installed extension metadata in install order.
func (r *Registry) List() []Meta {
	r.mu.RLock()
	defer r.mu.RUnlock()
	metas := make([]Meta, 0, len(r.order))
	for _, k := range r.order {
		metas = append(metas, r.entries[k].desc.Meta)
	}
	return metas
}

// Compose composes the enabled extensions in install order.
func (r *Registry) Compose() *Composed {
	r.mu.RLock()
	descs := make([]*Descriptor, 0, len(r.order))
	for _, k := range r.order {
		if e := r.entries[k]; e.enabled {
			descs = append(descs, e.desc)
		}
	}
	r.mu.RUnlock()
	return Compose(descs...)
}

func callHook(ctx context.Context, hook func(context.Context) error) error {
	if hook == nil {
		return nil
	}
	return hook(ctx)
}
