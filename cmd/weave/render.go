package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weave/internal/demo"
	"github.com/vango-dev/weave/internal/dev"
	"github.com/vango-dev/weave/pkg/backend/ssr"
	"github.com/vango-dev/weave/pkg/render"
)

func renderCmd(flags *globalFlags) *cobra.Command {
	var (
		name       string
		start      int
		pretty     bool
		markers    bool
		modulePath string
		rendererID string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the demo component tree to HTML",
		Long: `Render the demo App, or the components of a module file, to HTML on stdout.

Examples:
  weave render
  weave render --name=ada --start=12 --pretty
  weave render --module=modules/home.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(true)
			if err != nil {
				return err
			}
			log := logger(cfg)
			if rendererID != "" {
				cfg.Renderer.ID = rendererID
			}

			reg, err := installExtensions(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			var opts []func(*ssr.Config)
			if pretty {
				opts = append(opts, ssr.WithPretty())
			}
			if markers {
				opts = append(opts, ssr.WithMarkers())
			}
			backend := ssr.New(opts...)

			r, err := render.New(backend.Ops(), cfg.Renderer.ID, reg.Compose(), render.WithLogger(log))
			if err != nil {
				return err
			}
			for _, setupErr := range r.SetupErrors() {
				log.Warn("extension setup failed", "error", setupErr)
			}

			var template any = render.H(demo.App, render.Props{"name": name, "start": start})
			if modulePath != "" {
				data, err := os.ReadFile(modulePath)
				if err != nil {
					return err
				}
				loader := &dev.ModuleLoader{Components: demo.Components()}
				exports, err := loader.Decode(filepath.Ext(modulePath), data)
				if err != nil {
					return fmt.Errorf("%s: %w", modulePath, err)
				}
				id := dev.ModuleID(nil, modulePath)
				view := dev.ModuleView(id, exports)
				if view == nil {
					return fmt.Errorf("%s: module exports no components", modulePath)
				}
				template = view
			}

			out := cmd.OutOrStdout()
			if err := backend.WriteTo(out, r.Create(template, nil)); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "world", "Name passed to the greeting")
	cmd.Flags().IntVar(&start, "start", 0, "Initial counter value")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the output")
	cmd.Flags().BoolVar(&markers, "markers", false, "Emit region anchors as comments")
	cmd.Flags().StringVarP(&modulePath, "module", "m", "", "Render the components of a module file instead")
	cmd.Flags().StringVar(&rendererID, "renderer", "", "Renderer id (default from config)")

	return cmd
}
