package dev

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/weave/internal/config"
	"github.com/vango-dev/weave/internal/telemetry"
	"github.com/vango-dev/weave/pkg/backend/ssr"
	"github.com/vango-dev/weave/pkg/extension"
	"github.com/vango-dev/weave/pkg/hmr"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/render"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics defaults to a fresh registry.
	Metrics *telemetry.Metrics

	// Components resolves "component:Name" module exports.
	Components ComponentLookup

	// Composed extensions for the page renderer. nil composes nothing.
	Composed *extension.Composed

	// OnEvent is called after every processed module change.
	OnEvent func(hmr.Event)
}

// Server is the development server. It loads module files through an
// hmr.Bridge, keeps a live server-side page of their components and pushes
// updates to browsers over WebSocket.
type Server struct {
	config     *config.Config
	options    ServerOptions
	logger     *slog.Logger
	metrics    *telemetry.Metrics
	reconciler *hmr.Reconciler
	bridge     *hmr.Bridge
	loader     *ModuleLoader
	renderer   *render.Renderer
	page       *Page
	hub        *Hub
	watcher    *Watcher
	roots      []string
	changeCh   chan Change

	// failed holds modules whose last load failed. Guarded by the page lock.
	failed map[string]struct{}

	httpServer *http.Server
	mu         sync.Mutex
	running    bool
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) (*Server, error) {
	cfg := options.Config
	if cfg == nil {
		cfg = config.New()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := options.Metrics
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}

	reconciler := hmr.New(hmr.WithLogger(logger), hmr.WithMetrics(metrics))
	backend := ssr.New()
	renderer, err := render.New(backend.Ops(), cfg.Renderer.ID, options.Composed,
		render.WithLogger(logger),
		render.WithMetrics(metrics),
		render.WithHot(reconciler),
	)
	if err != nil {
		return nil, err
	}

	bridge := hmr.NewBridge(reconciler, logger)
	roots := CollectWatchPaths(cfg)

	title := cfg.Name
	if title == "" {
		title = "weave dev"
	}

	return &Server{
		config:     cfg,
		options:    options,
		logger:     logger,
		metrics:    metrics,
		reconciler: reconciler,
		bridge:     bridge,
		loader:     &ModuleLoader{Components: options.Components},
		renderer:   renderer,
		page:       NewPage(renderer, backend, bridge, title),
		hub:        NewHub(logger, metrics),
		watcher: NewWatcher(WatcherConfig{
			Paths:    roots,
			Ignore:   append(slices.Clone(DefaultIgnore), cfg.Dev.Ignore...),
			Interval: 100 * time.Millisecond,
		}),
		roots:  roots,
		failed: make(map[string]struct{}),
	}, nil
}

// Bridge returns the server's module bridge.
func (s *Server) Bridge() *hmr.Bridge {
	return s.bridge
}

// Hub returns the server's WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Page returns the live page.
func (s *Server) Page() *Page {
	return s.page
}

// Handler returns the server's HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(releaseTracking)

	r.Get("/", s.handlePage)
	r.Get("/__weave/html", s.handleFragment)
	r.Get("/__weave/modules", s.handleModules)
	r.Get("/__weave/ws", s.hub.HandleWebSocket)
	if s.config.Metrics.Enabled {
		r.Method(http.MethodGet, s.config.Metrics.Path, s.metrics.Handler())
	}
	return r
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(s.page.Document(true)))
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	var html string
	s.page.Do(func() {
		s.page.Mount()
		html = s.page.HTML()
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// releaseTracking drops the request goroutine's reactive tracking state
// once the handler returns.
func releaseTracking(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer reactive.ReleaseGoroutine()
		next.ServeHTTP(w, r)
	})
}

// ModuleInfo describes a loaded module for /__weave/modules.
type ModuleInfo struct {
	ID         string   `json:"id"`
	Components []string `json:"components"`
	Values     []string `json:"values"`
}

func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	infos := []ModuleInfo{}
	for _, id := range s.bridge.Modules() {
		exports, ok := s.bridge.Exports(id)
		if !ok {
			continue
		}
		components, props := splitExports(exports)
		values := make([]string, 0, len(props))
		for name := range props {
			values = append(values, name)
		}
		infos = append(infos, ModuleInfo{
			ID:         id,
			Components: sortedStrings(append([]string{}, components...)),
			Values:     sortedStrings(values),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(infos)
}

// LoadAll loads every module file under the watch roots. Failures are
// logged and do not stop the remaining loads.
func (s *Server) LoadAll(ctx context.Context) {
	s.watcher.Scan()
	for _, path := range s.watcher.Files() {
		s.Apply(ctx, Change{Path: path, Op: ChangeWrite})
	}
}

// Apply feeds one file change through the bridge, updates the live page
// and notifies connected browsers.
func (s *Server) Apply(ctx context.Context, change Change) (hmr.Event, error) {
	id := ModuleID(s.roots, change.Path)

	if change.Op == ChangeRemove {
		return s.remove(id), nil
	}

	var (
		ev      hmr.Event
		err     error
		html    string
		cleared bool
	)
	s.page.Do(func() {
		s.page.Mount()
		ev, err = s.bridge.Replace(ctx, id, s.loader.Loader(change.Path))
		if err == nil && (ev.Kind != hmr.EventAccepted || !s.config.HotReloadEnabled()) {
			s.page.Refresh()
		}
		html = s.page.HTML()

		if err != nil {
			s.failed[id] = struct{}{}
		} else if _, ok := s.failed[id]; ok {
			delete(s.failed, id)
			cleared = true
		}
	})

	if cleared {
		s.hub.ClearError()
	}
	switch {
	case err != nil:
		s.logger.Error("module load failed", "module", id, "error", err)
		s.hub.NotifyError(id, err.Error())
	case ev.Kind == hmr.EventInvalidated || !s.config.HotReloadEnabled():
		s.hub.NotifyReload(id, ev.Reasons)
	default:
		s.hub.Broadcast(Message{Type: MessageUpdate, Module: id, HTML: html, Rebound: ev.Rebound})
	}

	s.emit(ev)
	return ev, err
}

// remove drops module id from the page. Removing an unknown module is
// reported as unchanged and notifies nobody.
func (s *Server) remove(id string) hmr.Event {
	ev := hmr.Event{Module: id, Kind: hmr.EventUnchanged}
	s.page.Do(func() {
		delete(s.failed, id)
		if s.bridge.Remove(id) {
			ev.Kind = hmr.EventRemoved
			ev.Reasons = []string{"module " + id + " was removed"}
			s.page.Refresh()
		}
	})
	if ev.Kind != hmr.EventRemoved {
		return ev
	}

	s.hub.NotifyReload(id, ev.Reasons)
	s.emit(ev)
	return ev
}

func (s *Server) emit(ev hmr.Event) {
	if s.options.OnEvent != nil {
		s.options.OnEvent(ev)
	}
}

// Start loads the modules, then serves HTTP and watches for changes until
// ctx is done or a component fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.changeCh = make(chan Change, 64)
	s.httpServer = &http.Server{
		Addr:    s.config.DevAddress(),
		Handler: s.Handler(),
	}
	s.mu.Unlock()

	s.LoadAll(ctx)
	s.watcher.OnChange(func(change Change) {
		select {
		case s.changeCh <- change:
		default:
			s.logger.Warn("change dropped", "path", change.Path)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.watcher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.processChanges(gctx)
		return nil
	})
	g.Go(func() error {
		s.logger.Info("dev server running", "url", s.config.DevURL(), "modules", len(s.bridge.Modules()))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.Stop()
		return nil
	})

	return g.Wait()
}

// Stop stops the development server.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	s.watcher.Stop()
	s.hub.Close()
	s.page.Close()
	s.bridge.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// processChanges serializes file change handling.
func (s *Server) processChanges(ctx context.Context) {
	defer reactive.ReleaseGoroutine()
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-s.changeCh:
			s.logger.Debug("module changed", "path", change.Path, "op", change.Op)
			s.Apply(ctx, change)
		}
	}
}
