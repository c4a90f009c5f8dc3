package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/weave/internal/config"
	"github.com/vango-dev/weave/internal/logging"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weave.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRenderDemo(t *testing.T) {
	cfgPath := writeConfig(t, "logging:\n  level: error\n")
	out := run(t, "render", "--config", cfgPath, "--name", "ada", "--start", "12")

	assert.Equal(t,
		`<h1 class="greeting">Hello, ada!</h1>`+
			`<section class="card"><h2>Status</h2>`+
			`<div class="counter"><span class="value">12</span><em> big</em></div>`+
			`<span class="badge badge-ok">live</span></section>`+"\n",
		out)
}

func TestRenderModule(t *testing.T) {
	cfgPath := writeConfig(t, "logging:\n  level: error\n")
	module := filepath.Join(t.TempDir(), "home.json")
	require.NoError(t, os.WriteFile(module, []byte(`{"Greeting": "component:GreetingPlain", "name": "bob"}`), 0644))

	out := run(t, "render", "--config", cfgPath, "--module", module)
	assert.Equal(t, `<section data-module="home"><p>hi bob</p></section>`+"\n", out)
}

func TestExtensionsListing(t *testing.T) {
	cfgPath := writeConfig(t, "logging:\n  level: error\nextensions:\n  enabled: [svg]\n")
	out := run(t, "extensions", "--config", cfgPath)

	lines := strings.Split(out, "\n")
	var svg, debug string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "svg@1.0.0"):
			svg = l
		case strings.Contains(l, "debug@1.0.0"):
			debug = l
		}
	}
	assert.Contains(t, svg, "enabled")
	assert.Contains(t, debug, "disabled")
	assert.Contains(t, out, "aliases:     icon=svg")
	assert.Contains(t, out, "directives:  false")
}

func TestExtensionsListingTriggers(t *testing.T) {
	cfgPath := writeConfig(t, "logging:\n  level: error\nextensions:\n  enabled: [tree-directives]\n")
	out := run(t, "extensions", "--config", cfgPath)

	assert.Contains(t, out, "directives:  true")
	assert.Contains(t, out, "triggers:    click, input, submit")
	assert.Contains(t, out, "on tree:     click, input, submit")
}

func TestInstallExtensionsHonoursDebug(t *testing.T) {
	cfg := config.New()
	cfg.Renderer.Debug = true

	reg, err := installExtensions(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	assert.True(t, reg.Enabled("debug"))
	assert.False(t, reg.Enabled("tree-directives"))
	assert.Len(t, reg.Compose().Setups(), 1)
}

func TestVersionShort(t *testing.T) {
	assert.Equal(t, "dev\n", run(t, "version", "--short"))
}

func TestInvalidConfigFails(t *testing.T) {
	cfgPath := writeConfig(t, "logging:\n  level: loud\n")
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"render", "--config", cfgPath})
	assert.Error(t, cmd.Execute())
}
