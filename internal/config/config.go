// Package config provides configuration types, defaults and validation for
// flowmap.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/log"
	"github.com/greta-mvc/flowmap/internal/tracing"
)

// Data sources.
const (
	SourceAPI = "api"
	SourceDB  = "db"
)

// Config holds all configuration options for flowmap.
type Config struct {
	Source      string         `mapstructure:"source"` // "api" (default) or "db"
	AutoRefresh bool           `mapstructure:"auto_refresh"`
	API         APIConfig      `mapstructure:"api"`
	DB          DBConfig       `mapstructure:"db"`
	Diagram     DiagramConfig  `mapstructure:"diagram"`
	Registry    RegistryConfig `mapstructure:"registry"`
	Server      ServerConfig   `mapstructure:"server"`
	Tracing     tracing.Config `mapstructure:"tracing"`
}

// APIConfig configures the HTTP data source.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// DBConfig configures the local SQLite store.
type DBConfig struct {
	Path     string `mapstructure:"path"`
	SeedFile string `mapstructure:"seed_file"` // empty = built-in sample data
}

// DiagramConfig holds canvas defaults.
type DiagramConfig struct {
	DefaultColor string `mapstructure:"default_color"`
	NodeWidth    int    `mapstructure:"node_width"`
	NodeHeight   int    `mapstructure:"node_height"`
	Columns      int    `mapstructure:"columns"`
}

// RegistryConfig holds list screen options.
type RegistryConfig struct {
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
}

// ServerConfig configures `flowmap serve`.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DefaultDBPath returns ~/.config/flowmap/registry.db, or a relative path
// when the home directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".flowmap", "registry.db")
	}
	return filepath.Join(home, ".config", "flowmap", "registry.db")
}

// DefaultTracesFilePath returns ~/.config/flowmap/traces/traces.jsonl or
// empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "flowmap", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()
	return Config{
		Source:      SourceAPI,
		AutoRefresh: true,
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			Timeout:   10 * time.Second,
			RateLimit: 10,
			CacheTTL:  5 * time.Minute,
		},
		DB: DBConfig{
			Path: DefaultDBPath(),
		},
		Diagram: DiagramConfig{
			DefaultColor: string(diagram.DefaultColor),
			NodeWidth:    diagram.DefaultGeometry.Width,
			NodeHeight:   diagram.DefaultGeometry.Height,
			Columns:      3,
		},
		Registry: RegistryConfig{
			SearchDebounce: 300 * time.Millisecond,
		},
		Server: ServerConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"http://localhost", "http://localhost:3000", "http://localhost:5173"},
		},
		Tracing: tc,
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	switch c.Source {
	case "", SourceAPI, SourceDB:
	default:
		return fmt.Errorf("source must be %q or %q, got %q", SourceAPI, SourceDB, c.Source)
	}
	if err := ValidateAPI(c.API); err != nil {
		return err
	}
	if c.Source == SourceDB && c.DB.Path == "" {
		return fmt.Errorf("db.path is required when source is %q", SourceDB)
	}
	if err := ValidateDiagram(c.Diagram); err != nil {
		return err
	}
	if c.Registry.SearchDebounce < 0 {
		return fmt.Errorf("registry.search_debounce must not be negative, got %v", c.Registry.SearchDebounce)
	}
	if err := ValidateServer(c.Server); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateAPI checks the HTTP source settings. Zero values use defaults.
func ValidateAPI(api APIConfig) error {
	if api.BaseURL != "" {
		u, err := url.Parse(api.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("api.base_url must be an http(s) URL, got %q", api.BaseURL)
		}
	}
	if api.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %v", api.Timeout)
	}
	if api.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative, got %v", api.RateLimit)
	}
	if api.CacheTTL < 0 {
		return fmt.Errorf("api.cache_ttl must not be negative, got %v", api.CacheTTL)
	}
	return nil
}

// ValidateDiagram checks canvas defaults against the node floor.
func ValidateDiagram(d DiagramConfig) error {
	if d.DefaultColor != "" {
		if _, err := diagram.ParseColor(d.DefaultColor); err != nil {
			return fmt.Errorf("diagram.default_color: %w", err)
		}
	}
	if d.NodeWidth != 0 && d.NodeWidth < diagram.MinWidth {
		return fmt.Errorf("diagram.node_width must be at least %d, got %d", diagram.MinWidth, d.NodeWidth)
	}
	if d.NodeHeight != 0 && d.NodeHeight < diagram.MinHeight {
		return fmt.Errorf("diagram.node_height must be at least %d, got %d", diagram.MinHeight, d.NodeHeight)
	}
	if d.Columns < 0 {
		return fmt.Errorf("diagram.columns must not be negative, got %d", d.Columns)
	}
	return nil
}

// ValidateServer checks the server settings.
func ValidateServer(s ServerConfig) error {
	for i, origin := range s.AllowedOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("server.allowed_origins[%d] must be an origin like http://host:port, got %q", i, origin)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	if tc.Exporter != "" {
		switch tc.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tc.Enabled {
		if tc.Exporter == "file" && tc.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == "otlp" && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// NodeGeometry returns the configured default node size, clamped to the
// floor.
func (d DiagramConfig) NodeGeometry() diagram.Geometry {
	g := diagram.DefaultGeometry
	if d.NodeWidth != 0 {
		g.Width = d.NodeWidth
	}
	if d.NodeHeight != 0 {
		g.Height = d.NodeHeight
	}
	return g.Clamp()
}

// NodeColor returns the configured default node color, or white when unset
// or invalid.
func (d DiagramConfig) NodeColor() diagram.Color {
	c, err := diagram.ParseColor(d.DefaultColor)
	if err != nil {
		return diagram.DefaultColor
	}
	return c
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# flowmap configuration

# Where registry data comes from: "api" (a flowmap server) or "db" (local SQLite)
source: api

# Reload views when the local database changes (db source only)
auto_refresh: true

api:
  base_url: http://localhost:8000
  timeout: 10s
  rate_limit: 10     # requests per second, 0 disables limiting
  cache_ttl: 5m      # how long classification lists are cached

db:
  # path: ~/.config/flowmap/registry.db
  # seed_file: ./seed.yaml   # loaded by 'flowmap seed' (default: built-in sample)

diagram:
  default_color: "#ffffff"
  node_width: 180    # minimum 100
  node_height: 120   # minimum 30
  columns: 3         # nodes per row in the initial layout

registry:
  search_debounce: 300ms

server:
  addr: ":8000"
  allowed_origins:
    - http://localhost
    - http://localhost:3000
    - http://localhost:5173

# Distributed tracing
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/flowmap/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
