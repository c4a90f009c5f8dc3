package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weave/internal/config"
	"github.com/vango-dev/weave/pkg/backend/tree"
	"github.com/vango-dev/weave/pkg/extension"
	"github.com/vango-dev/weave/pkg/reactive"
)

// builtins returns every extension the CLI ships, in install order.
func builtins(debugMode *reactive.Signal[string]) []*extension.Descriptor {
	return []*extension.Descriptor{
		extension.DebugExtension(debugMode),
		extension.SVGExtension(),
		tree.Directives(),
	}
}

// installExtensions installs every built-in into a registry and disables
// the ones cfg does not enable.
func installExtensions(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*extension.Registry, error) {
	mode := "off"
	if cfg.Renderer.Debug {
		mode = "on"
	}

	reg := extension.NewRegistry(logger)
	for _, d := range builtins(reactive.NewSignal(mode)) {
		if err := reg.Install(ctx, d); err != nil {
			return nil, err
		}
		if !cfg.ExtensionEnabled(d.Meta.Key) {
			if err := reg.Disable(ctx, d.Meta.Key); err != nil {
				return nil, err
			}
		}
	}

	for _, key := range cfg.Extensions.Enabled {
		if _, ok := reg.Get(key); !ok {
			logger.Warn("unknown extension in config", "extension", key)
		}
	}
	return reg, nil
}

func extensionsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "extensions",
		Short: "List built-in extensions and composed capabilities",
		Long: `List the built-in extensions, whether the project config enables them,
and the capabilities the enabled set composes to.

Examples:
  weave extensions
  weave extensions --config weave.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(true)
			if err != nil {
				return err
			}
			reg, err := installExtensions(cmd.Context(), cfg, logger(cfg))
			if err != nil {
				return err
			}
			printExtensions(cmd.OutOrStdout(), reg)
			return nil
		},
	}
}

func printExtensions(w io.Writer, reg *extension.Registry) {
	fmt.Fprintln(w, "Extensions:")
	for _, m := range reg.List() {
		state := "disabled"
		if reg.Enabled(m.Key) {
			state = "enabled"
		}
		fmt.Fprintf(w, "  %-20s %-9s %s\n", m.String(), state, m.Description)
	}

	composed := reg.Compose()
	fmt.Fprintln(w, "Composed:")
	fmt.Fprintf(w, "  directives:  %t\n", composed.HasDirectives())
	fmt.Fprintf(w, "  namespaces:  %s\n", joinMap(composed.Namespaces()))
	fmt.Fprintf(w, "  aliases:     %s\n", joinMap(composed.TagAliases()))
	fmt.Fprintf(w, "  triggers:    %s\n", strings.Join(composed.Triggers(), ", "))
	fmt.Fprintf(w, "  on %s:     %s\n", tree.Platform, strings.Join(composed.TriggersFor(tree.Platform), ", "))
	fmt.Fprintf(w, "  setup hooks: %d\n", len(composed.Setups()))
}

func joinMap(m map[string]string) string {
	parts := make([]string, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, ", ")
}
