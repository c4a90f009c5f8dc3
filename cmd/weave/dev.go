package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weave/internal/demo"
	"github.com/vango-dev/weave/internal/dev"
	"github.com/vango-dev/weave/internal/telemetry"
	"github.com/vango-dev/weave/pkg/hmr"
)

func devCmd(flags *globalFlags) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server with hot module replacement.

The dev server watches module files (JSON, YAML or TOML), renders
their components into a live page and pushes accepted updates to
connected browsers. Updates that cannot be applied in place trigger
a full reload.

Examples:
  weave dev
  weave dev --port=8080
  weave dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(false)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Dev.Port = port
			}
			if host != "" {
				cfg.Dev.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log := logger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg, err := installExtensions(ctx, cfg, log)
			if err != nil {
				return err
			}

			srv, err := dev.NewServer(dev.ServerOptions{
				Config:     cfg,
				Logger:     log,
				Metrics:    telemetry.NewMetrics(),
				Components: demo.Components(),
				Composed:   reg.Compose(),
				OnEvent: func(ev hmr.Event) {
					switch ev.Kind {
					case hmr.EventAccepted:
						success("%s updated (%d rebound)", ev.Module, len(ev.Rebound))
					case hmr.EventInvalidated:
						info("%s invalidated, reloading", ev.Module)
					case hmr.EventRemoved:
						info("%s removed, reloading", ev.Module)
					}
				},
			})
			if err != nil {
				return err
			}

			success("Watching %v", dev.CollectWatchPaths(cfg))
			info("Open %s", cfg.DevURL())
			if err := srv.Start(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")

	return cmd
}
