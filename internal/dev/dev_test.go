package dev

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/weave/internal/config"
	"github.com/vango-dev/weave/internal/demo"
	"github.com/vango-dev/weave/pkg/hmr"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/render"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestWatcherReportsModuleChanges(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "home.yaml")
	write(t, existing, "name: a\n")
	write(t, filepath.Join(dir, "notes.txt"), "ignored")

	w := NewWatcher(WatcherConfig{Paths: []string{dir}, Interval: 20 * time.Millisecond})
	w.Scan()
	assert.Equal(t, []string{existing}, w.Files())

	changes := make(chan Change, 10)
	w.OnChange(func(c Change) { changes <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	next := func() Change {
		t.Helper()
		select {
		case c := <-changes:
			return c
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for change")
			return Change{}
		}
	}

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(existing, later, later))
	assert.Equal(t, Change{Path: existing, Op: ChangeWrite}, next())

	// Rename into place so the watcher never sees a partial write.
	staged := filepath.Join(t.TempDir(), "card.toml")
	write(t, staged, "title = \"x\"\n")
	added := filepath.Join(dir, "sub", "card.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(added), 0755))
	require.NoError(t, os.Rename(staged, added))
	assert.Equal(t, Change{Path: added, Op: ChangeWrite}, next())

	require.NoError(t, os.Remove(existing))
	assert.Equal(t, Change{Path: existing, Op: ChangeRemove}, next())

	w.Stop()
	assert.False(t, w.IsRunning())
}

func TestWatcherRootUnderIgnoredName(t *testing.T) {
	root := filepath.Join(t.TempDir(), "tmp", "proj", "modules")
	kept := filepath.Join(root, "home.yaml")
	write(t, kept, "name: a\n")
	write(t, filepath.Join(root, "tmp", "scratch.yaml"), "name: b\n")
	write(t, filepath.Join(root, "node_modules", "dep.json"), "{}")

	w := NewWatcher(WatcherConfig{Paths: []string{root}})
	w.Scan()
	assert.Equal(t, []string{kept}, w.Files())
}

func TestWatcherShouldIgnore(t *testing.T) {
	w := NewWatcher(WatcherConfig{Ignore: []string{"*.swp", "node_modules", "build/out", "gen/*.json"}})

	tests := []struct {
		path string
		want bool
	}{
		{"/p/modules/a.yaml", false},
		{"/p/modules/.a.yaml.swp", true},
		{"/p/node_modules/x.json", true},
		{"/p/build/out/a.json", true},
		{"/p/build/other/a.json", false},
		{"gen/a.json", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.shouldIgnore(tt.path), tt.path)
	}
}

func TestModuleID(t *testing.T) {
	roots := []string{"/p/modules", "/p/extra"}
	assert.Equal(t, "home", ModuleID(roots, "/p/modules/home.yaml"))
	assert.Equal(t, "cards/intro", ModuleID(roots, "/p/modules/cards/intro.json"))
	assert.Equal(t, "x", ModuleID(roots, "/p/extra/x.toml"))
	assert.Equal(t, "stray", ModuleID(roots, "/elsewhere/stray.yml"))
}

func TestIsModuleFile(t *testing.T) {
	assert.True(t, IsModuleFile("a.JSON"))
	assert.True(t, IsModuleFile("a.yml"))
	assert.True(t, IsModuleFile("a.toml"))
	assert.False(t, IsModuleFile("a.go"))
}

func TestModuleLoaderDecode(t *testing.T) {
	l := &ModuleLoader{Components: demo.Components()}

	for ext, body := range map[string]string{
		".yaml": "Greeting: component:Greeting\nname: ada\n",
		".json": `{"Greeting": "component:Greeting", "name": "ada"}`,
		".toml": "Greeting = \"component:Greeting\"\nname = \"ada\"\n",
	} {
		exports, err := l.Decode(ext, []byte(body))
		require.NoError(t, err, ext)
		assert.True(t, render.IsComponent(exports["Greeting"]), ext)
		assert.Equal(t, "ada", exports["name"], ext)
	}

	_, err := l.Decode(".yaml", []byte("Greeting: component:Nope\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown component "Nope"`)

	_, err = (&ModuleLoader{}).Decode(".yaml", []byte("Greeting: component:Greeting\n"))
	require.Error(t, err)

	_, err = l.Decode(".json", []byte("{"))
	require.Error(t, err)
}

func TestSplitExports(t *testing.T) {
	components, props := splitExports(hmr.Exports{
		"Greeting": demo.Greeting,
		"Label":    "not a component",
		"name":     "ada",
	})
	assert.Equal(t, []string{"Greeting"}, components)
	assert.Equal(t, render.Props{"Label": "not a component", "name": "ada"}, props)
}

type devFixture struct {
	dir    string
	server *Server
	http   *httptest.Server
	events []hmr.Event
}

func newDevFixture(t *testing.T, mutate func(*config.Config)) *devFixture {
	t.Helper()
	f := &devFixture{dir: t.TempDir()}

	cfg := config.New()
	cfg.Dev.Watch = []string{f.dir}
	cfg.Metrics.Enabled = true
	if mutate != nil {
		mutate(cfg)
	}

	srv, err := NewServer(ServerOptions{
		Config:     cfg,
		Logger:     quietLogger(),
		Components: demo.Components(),
		OnEvent:    func(ev hmr.Event) { f.events = append(f.events, ev) },
	})
	require.NoError(t, err)
	f.server = srv
	f.http = httptest.NewServer(srv.Handler())
	t.Cleanup(f.http.Close)
	return f
}

func (f *devFixture) path(name string) string {
	return filepath.Join(f.dir, name)
}

func (f *devFixture) get(t *testing.T, path string) string {
	t.Helper()
	resp, err := http.Get(f.http.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func (f *devFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/__weave/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	hello := readMessage(t, conn)
	require.Equal(t, MessageHello, hello.Type)
	require.NotEmpty(t, hello.Client)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServerHotUpdateCycle(t *testing.T) {
	ctx := context.Background()
	f := newDevFixture(t, nil)
	home := f.path("home.yaml")
	write(t, home, "Greeting: component:Greeting\nname: ada\n")

	f.server.LoadAll(ctx)
	assert.Equal(t, []string{"home"}, f.server.Bridge().Modules())
	assert.Equal(t,
		`<div id="weave-root"><section data-module="home"><h1 class="greeting">Hello, ada!</h1></section></div>`,
		f.get(t, "/__weave/html"))

	conn := f.dial(t)
	assert.Equal(t, 1, f.server.Hub().ClientCount())

	// Swapping the implementation is accepted and patched in place.
	write(t, home, "Greeting: component:GreetingLoud\nname: ada\n")
	ev, err := f.server.Apply(ctx, Change{Path: home})
	require.NoError(t, err)
	assert.Equal(t, hmr.EventAccepted, ev.Kind)
	assert.Equal(t, []string{"Greeting"}, ev.Rebound)

	msg := readMessage(t, conn)
	assert.Equal(t, MessageUpdate, msg.Type)
	assert.Equal(t, "home", msg.Module)
	assert.Contains(t, msg.HTML, "HELLO, ADA!")

	// A changed value invalidates; the page is rebuilt and browsers reload.
	write(t, home, "Greeting: component:GreetingLoud\nname: bob\n")
	ev, err = f.server.Apply(ctx, Change{Path: home})
	require.NoError(t, err)
	assert.Equal(t, hmr.EventInvalidated, ev.Kind)

	msg = readMessage(t, conn)
	assert.Equal(t, MessageReload, msg.Type)
	require.Len(t, msg.Reasons, 1)
	assert.Contains(t, msg.Reasons[0], "name")
	assert.Contains(t, f.get(t, "/__weave/html"), "HELLO, BOB!")

	// A broken file reports an error and keeps the last good page.
	write(t, home, "Greeting: [\n")
	ev, err = f.server.Apply(ctx, Change{Path: home})
	require.Error(t, err)
	assert.Equal(t, hmr.EventFailed, ev.Kind)
	msg = readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
	assert.Contains(t, f.get(t, "/__weave/html"), "HELLO, BOB!")

	// Fixing the file clears the error before patching.
	write(t, home, "Greeting: component:GreetingLoud\nname: bob\n")
	ev, err = f.server.Apply(ctx, Change{Path: home})
	require.NoError(t, err)
	assert.Equal(t, hmr.EventAccepted, ev.Kind)
	assert.Equal(t, MessageClear, readMessage(t, conn).Type)
	assert.Equal(t, MessageUpdate, readMessage(t, conn).Type)

	// Removing the module drops it from the page.
	require.NoError(t, os.Remove(home))
	ev, err = f.server.Apply(ctx, Change{Path: home, Op: ChangeRemove})
	require.NoError(t, err)
	assert.Equal(t, hmr.EventRemoved, ev.Kind)
	msg = readMessage(t, conn)
	assert.Equal(t, MessageReload, msg.Type)
	assert.Equal(t, "home", msg.Module)
	assert.Empty(t, f.server.Bridge().Modules())
	assert.Equal(t, `<div id="weave-root"></div>`, f.get(t, "/__weave/html"))

	// Removing it again changes nothing.
	ev, err = f.server.Apply(ctx, Change{Path: home, Op: ChangeRemove})
	require.NoError(t, err)
	assert.Equal(t, hmr.EventUnchanged, ev.Kind)

	kinds := make([]hmr.EventKind, 0, len(f.events))
	for _, ev := range f.events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []hmr.EventKind{
		hmr.EventLoaded,
		hmr.EventAccepted,
		hmr.EventInvalidated,
		hmr.EventFailed,
		hmr.EventAccepted,
		hmr.EventRemoved,
	}, kinds)
}

func TestRequestsReleaseTrackingState(t *testing.T) {
	f := newDevFixture(t, nil)
	write(t, f.path("home.yaml"), "Greeting: component:Greeting\n")
	f.server.LoadAll(context.Background())

	f.get(t, "/__weave/html")
	before := reactive.ActiveGoroutines()
	for range 5 {
		f.get(t, "/__weave/html")
		f.get(t, "/")
	}
	assert.LessOrEqual(t, reactive.ActiveGoroutines(), before)
}

func TestServerHotReloadDisabled(t *testing.T) {
	ctx := context.Background()
	f := newDevFixture(t, func(cfg *config.Config) {
		off := false
		cfg.Dev.HotReload = &off
	})
	home := f.path("home.json")
	write(t, home, `{"Greeting": "component:Greeting"}`)
	f.server.LoadAll(ctx)

	conn := f.dial(t)
	write(t, home, `{"Greeting": "component:GreetingPlain"}`)
	ev, err := f.server.Apply(ctx, Change{Path: home})
	require.NoError(t, err)
	assert.Equal(t, hmr.EventAccepted, ev.Kind)

	msg := readMessage(t, conn)
	assert.Equal(t, MessageReload, msg.Type)
	assert.Contains(t, f.get(t, "/__weave/html"), "<p>hi world</p>")
}

func TestServerRoutes(t *testing.T) {
	f := newDevFixture(t, nil)
	write(t, f.path("cards/status.toml"), "Badge = \"component:Badge\"\ntone = \"ok\"\n")
	write(t, f.path("home.yaml"), "Greeting: component:Greeting\n")
	f.server.LoadAll(context.Background())

	page := f.get(t, "/")
	assert.Contains(t, page, "<!DOCTYPE html>")
	assert.Contains(t, page, `<span class="badge badge-ok"></span>`)
	assert.Contains(t, page, "/__weave/ws")

	var infos []ModuleInfo
	require.NoError(t, json.Unmarshal([]byte(f.get(t, "/__weave/modules")), &infos))
	assert.Equal(t, []ModuleInfo{
		{ID: "cards/status", Components: []string{"Badge"}, Values: []string{"tone"}},
		{ID: "home", Components: []string{"Greeting"}, Values: []string{}},
	}, infos)

	assert.Contains(t, f.get(t, "/metrics"), "weave_hot_updates_total")
}

func TestCollectWatchPaths(t *testing.T) {
	cfg := config.New()
	cfg.Dev.Watch = []string{"/a", "/a/", "/b"}
	assert.Equal(t, []string{"/a", "/b"}, CollectWatchPaths(cfg))
}
