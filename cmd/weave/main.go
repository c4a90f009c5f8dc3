package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weave/internal/config"
	werrors "github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/internal/logging"
	"github.com/vango-dev/weave/pkg/extension"
	"github.com/vango-dev/weave/pkg/reactive"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "weave",
		Short: "Reactive renderer runtime",
		Long: `weave renders reactive component trees onto pluggable backends.

Commands:
  • dev         serve module files with hot module replacement
  • render      render the demo component tree to HTML
  • extensions  list built-in extensions and composed capabilities`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to weave.json, weave.yaml or weave.toml")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format (text, json)")

	rootCmd.AddCommand(
		devCmd(flags),
		renderCmd(flags),
		extensionsCmd(flags),
		versionCmd(),
	)
	return rootCmd
}

// load resolves the configuration. Without --config a missing project
// config falls back to defaults when optional is set.
func (f *globalFlags) load(optional bool) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
		if err != nil && optional && werrors.HasCode(err, werrors.CodeConfigNotFound) {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Logging.Format = f.logFormat
	}
	return cfg, cfg.Validate()
}

// logger builds the process logger and installs it for the packages that
// log through a package-level logger.
func logger(cfg *config.Config) *slog.Logger {
	l := logging.New(cfg.Logging)
	slog.SetDefault(l)
	extension.SetLogger(l)
	reactive.SetLogger(l)
	return l
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
