package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	werrors "github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/internal/telemetry"
	"github.com/vango-dev/weave/pkg/extension"
	"github.com/vango-dev/weave/pkg/flow"
	"github.com/vango-dev/weave/pkg/reactive"
)

// HotDispatcher routes component instantiation through a hot reload
// layer. Dispatch returns the region to mount in place of a direct call,
// or false to call the component directly.
type HotDispatcher interface {
	Dispatch(component any, props Props) (*flow.Region, bool)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records node, region and setup metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Renderer) {
		r.metrics = m
	}
}

// WithTracer sets the tracer used for setup spans. Default: the global
// provider's tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *Renderer) {
		r.tracer = t
	}
}

// WithHot routes component instantiation through d.
func WithHot(d HotDispatcher) Option {
	return func(r *Renderer) {
		r.hot = d
	}
}

// WithContext sets the context passed to setup hooks.
func WithContext(ctx context.Context) Option {
	return func(r *Renderer) {
		r.setupCtx = ctx
	}
}

// Renderer turns templates into backend nodes.
type Renderer struct {
	id       string
	ops      NodeOps
	composed *extension.Composed

	logger   *slog.Logger
	metrics  *telemetry.Metrics
	tracer   trace.Tracer
	hot      HotDispatcher
	setupCtx context.Context

	mu          sync.RWMutex
	values      map[string]any
	setupErrors []error
}

// New validates ops and returns a renderer with every applicable setup
// hook of composed already run. Setup failures are logged and available
// from SetupErrors; they never fail construction. A nil composed is
// treated as an empty composition.
func New(ops NodeOps, id string, composed *extension.Composed, opts ...Option) (*Renderer, error) {
	if err := ops.Validate(); err != nil {
		return nil, werrors.FromError(err, werrors.CodeMissingNodeOp).WithSubject(id)
	}
	if composed == nil {
		composed = extension.Compose()
	}

	r := &Renderer{
		id:       id,
		ops:      ops,
		composed: composed,
		logger:   slog.Default(),
		setupCtx: context.Background(),
		values:   make(map[string]any),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = telemetry.Tracer()
	}
	r.logger = r.logger.With("renderer", id)

	r.runSetups()
	return r, nil
}

func (r *Renderer) runSetups() {
	for _, hook := range r.composed.Setups() {
		if !hook.Scope.AppliesTo(r.id) {
			r.logger.Debug("extension setup skipped, out of scope", "extension", hook.Extension.Key)
			continue
		}

		ctx, span := telemetry.StartSpan(r.setupCtx, r.tracer, "weave.extension.setup",
			attribute.String("weave.renderer", r.id),
			attribute.String("weave.extension", hook.Extension.Key),
		)
		err := r.runSetup(ctx, hook)
		telemetry.EndSpan(span, err)

		if err != nil {
			r.logger.Error("extension setup failed", "extension", hook.Extension.String(), "error", err)
			r.metrics.SetupFailed(r.id, hook.Extension.Key)
			r.mu.Lock()
			r.setupErrors = append(r.setupErrors, err)
			r.mu.Unlock()
		}
	}
}

func (r *Renderer) runSetup(ctx context.Context, hook extension.SetupHook) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = werrors.New(werrors.CodeSetupFailed).
				WithSubject(hook.Extension.Key).
				WithDetail(fmt.Sprintf("panic: %v", p))
		}
	}()
	if serr := hook.Fn(ctx, r); serr != nil {
		return werrors.New(werrors.CodeSetupFailed).
			WithSubject(hook.Extension.Key).
			Wrap(serr)
	}
	return nil
}

// ID returns the renderer identifier.
func (r *Renderer) ID() string {
	return r.id
}

// RendererID implements extension.Host.
func (r *Renderer) RendererID() string {
	return r.id
}

// Ops returns the bound node-operations table.
func (r *Renderer) Ops() NodeOps {
	return r.ops
}

// Composed returns the composed extensions the renderer was built with.
func (r *Renderer) Composed() *extension.Composed {
	return r.composed
}

// SetContext stores renderer-scoped state, typically from a setup hook.
func (r *Renderer) SetContext(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
}

// Context returns state stored with SetContext.
func (r *Renderer) Context(key string) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values[key]
}

// SetupErrors returns the errors of failed setup hooks in run order.
func (r *Renderer) SetupErrors() []error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]error, len(r.setupErrors))
	copy(out, r.setupErrors)
	return out
}

// Create builds template into a single backend node. template is a tag
// name, Fragment or a component, in which case props and children are
// passed to it; any other template is built as-is with children following
// it. When the result is not exactly one node the nodes are grouped in a
// fragment.
func (r *Renderer) Create(template any, props Props, children ...any) Node {
	var parts []part
	if _, ok := template.(string); ok || isType(template) {
		parts = r.buildTemplate(template, props, children)
	} else {
		parts = r.build(append([]any{template}, children...))
	}
	return r.group(flatten(parts))
}

// Render builds template, appends it to parent and returns a function
// that disposes every reactive region created for it.
func (r *Renderer) Render(parent Node, template any) (dispose func()) {
	owner := reactive.NewOwner(reactive.CurrentOwner())
	var nodes []Node
	owner.Run(func() {
		nodes = flatten(r.build(template))
	})
	if len(nodes) > 0 {
		r.ops.AppendNode(parent, nodes...)
	}
	return owner.Dispose
}

func (r *Renderer) group(nodes []Node) Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	frag := r.ops.CreateFragment()
	r.metrics.NodeCreated(r.id, "fragment")
	if len(nodes) > 0 {
		r.ops.AppendNode(frag, nodes...)
	}
	return frag
}

// isType reports whether v is usable as a template type on its own.
func isType(v any) bool {
	return v == Fragment || IsComponent(v)
}
