package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/weave/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "weave.json"

	// DefaultPort is the default development server port.
	DefaultPort = 3000

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultRendererID identifies the renderer when none is configured.
	DefaultRendererID = "dom"

	// DefaultMetricsPath is where the dev server exposes Prometheus metrics.
	DefaultMetricsPath = "/metrics"
)

// FileNames lists the accepted configuration files in lookup order.
var FileNames = []string{ConfigFileName, "weave.yaml", "weave.yml", "weave.toml"}

// Config represents a weave project configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`

	// Renderer configures the renderer created by the CLI and dev server.
	Renderer RendererConfig `json:"renderer" yaml:"renderer" toml:"renderer"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev" yaml:"dev" toml:"dev"`

	// Extensions selects the built-in extensions composed into the renderer.
	Extensions ExtensionsConfig `json:"extensions" yaml:"extensions" toml:"extensions"`

	// Logging configures the slog handler.
	Logging LoggingConfig `json:"logging" yaml:"logging" toml:"logging"`

	// Metrics configures Prometheus exposition.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" toml:"metrics"`

	configPath string
}

// RendererConfig contains renderer settings.
type RendererConfig struct {
	// ID is the renderer identifier extensions scope against, e.g. "dom" or "ssr:node".
	ID string `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`

	// Debug installs the debug extension.
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty" toml:"debug,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty" yaml:"port,omitempty" toml:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty" toml:"host,omitempty"`

	// HotReload enables hot module replacement. When false every change
	// triggers a full reload.
	HotReload *bool `json:"hotReload,omitempty" yaml:"hotReload,omitempty" toml:"hotReload,omitempty"`

	// Watch contains paths to watch for module changes.
	Watch []string `json:"watch,omitempty" yaml:"watch,omitempty" toml:"watch,omitempty"`

	// Ignore contains glob patterns skipped by the watcher.
	Ignore []string `json:"ignore,omitempty" yaml:"ignore,omitempty" toml:"ignore,omitempty"`
}

// ExtensionsConfig lists enabled extensions by key.
type ExtensionsConfig struct {
	Enabled []string `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty" toml:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty" yaml:"format,omitempty" toml:"format,omitempty"`
}

// MetricsConfig configures metrics exposition.
type MetricsConfig struct {
	Enabled bool   `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from dir, trying each of FileNames in order.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New(errors.CodeConfigNotFound).
		WithDetail("No weave configuration found in " + dir).
		WithSuggestion("Create weave.json, weave.yaml or weave.toml at the project root")
}

// LoadFile reads configuration from path. The format follows the extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No configuration at " + path)
		}
		return nil, errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	cfg := &Config{}
	if err := Decode(filepath.Ext(path), data, cfg); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithSubject(filepath.Base(path)).
			WithDetail("Failed to parse: " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode unmarshals data according to the file extension ext
// (".json", ".yaml", ".yml" or ".toml").
func Decode(ext string, data []byte, v any) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	case ".toml":
		_, err := toml.Decode(string(data), v)
		return err
	default:
		return json.Unmarshal(data, v)
	}
}

// SaveTo writes the configuration as JSON to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New(errors.CodeInvalidConfig).Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Renderer.ID == "" {
		c.Renderer.ID = DefaultRendererID
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.HotReload == nil {
		on := true
		c.Dev.HotReload = &on
	}
	if c.Dev.Watch == nil {
		c.Dev.Watch = []string{"modules"}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(subject, detail string) error {
		return errors.New(errors.CodeInvalidConfig).WithSubject(subject).WithDetail(detail)
	}

	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return invalid("dev.port", "Port must be between 0 and 65535")
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Logging.Level)) {
		return invalid("logging.level", "Unknown level "+strconv.Quote(c.Logging.Level))
	}
	if f := strings.ToLower(c.Logging.Format); f != "text" && f != "json" {
		return invalid("logging.format", "Format must be text or json")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path", "Path must start with /")
	}
	for _, pattern := range c.Dev.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return invalid("dev.ignore", "Bad pattern "+strconv.Quote(pattern))
		}
	}
	return nil
}

// HotReloadEnabled reports whether hot updates are attempted.
func (c *Config) HotReloadEnabled() bool {
	return c.Dev.HotReload == nil || *c.Dev.HotReload
}

// ExtensionEnabled reports whether key is listed in extensions.enabled.
// The debug extension is also enabled by renderer.debug.
func (c *Config) ExtensionEnabled(key string) bool {
	if key == "debug" && c.Renderer.Debug {
		return true
	}
	return slices.Contains(c.Extensions.Enabled, key)
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// WatchPaths returns the watch directories resolved against the config dir.
func (c *Config) WatchPaths() []string {
	paths := make([]string, 0, len(c.Dev.Watch))
	for _, p := range c.Dev.Watch {
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.Dir(), p)
		}
		paths = append(paths, p)
	}
	return paths
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a weave config, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeConfigNotFound).
				WithDetail("No weave configuration found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest ancestor holding a config file.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
