package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"

	"github.com/greta-mvc/flowmap/internal/apiclient"
	"github.com/greta-mvc/flowmap/internal/app"
	"github.com/greta-mvc/flowmap/internal/config"
	"github.com/greta-mvc/flowmap/internal/log"
	"github.com/greta-mvc/flowmap/internal/registry"
	"github.com/greta-mvc/flowmap/internal/store"
	"github.com/greta-mvc/flowmap/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const (
	localConfigPath = ".flowmap/config.yaml"
	envPrefix       = "FLOWMAP"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "flowmap",
	Short: "A terminal map of the corporate registry and its industry classification",
	Long: `flowmap browses a corporate registry in the terminal.

The overview lists firms page by page with keyword search by name, business
number, corporate number or stock code. The diagram lays out classification
domains as nodes you can select, resize, recolor and connect.

Data comes from a flowmap server (source: api) or a local SQLite database
(source: db). See 'flowmap serve' and 'flowmap seed'.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/flowmap/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"enable debug logging")
	rootCmd.PersistentFlags().String("source", "",
		`data source: "api" or "db"`)
	rootCmd.PersistentFlags().String("api-url", "",
		"base URL of the flowmap server")
	rootCmd.PersistentFlags().String("db", "",
		"path to the local registry database")
	rootCmd.Flags().Bool("no-auto-refresh", false,
		"disable automatic reload when the database changes")

	// Bind flags to viper
	_ = viper.BindPFlag("source", rootCmd.PersistentFlags().Lookup("source"))
	_ = viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("db.path", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	var err error
	cfg, err = readConfig(viper.GetViper(), cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "flowmap:", err)
	}
}

// setDefaults registers every config key so that environment variables and
// flags are seen by Unmarshal even when the file omits them.
func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("source", d.Source)
	v.SetDefault("auto_refresh", d.AutoRefresh)
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.rate_limit", d.API.RateLimit)
	v.SetDefault("api.cache_ttl", d.API.CacheTTL)
	v.SetDefault("db.path", d.DB.Path)
	v.SetDefault("db.seed_file", d.DB.SeedFile)
	v.SetDefault("diagram.default_color", d.Diagram.DefaultColor)
	v.SetDefault("diagram.node_width", d.Diagram.NodeWidth)
	v.SetDefault("diagram.node_height", d.Diagram.NodeHeight)
	v.SetDefault("diagram.columns", d.Diagram.Columns)
	v.SetDefault("registry.search_debounce", d.Registry.SearchDebounce)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

// readConfig loads .env, defaults, FLOWMAP_* environment variables and the
// config file into v and decodes the result.
//
// Config lookup order when no file is given:
//  1. .flowmap/config.yaml (current directory)
//  2. ~/.config/flowmap/config.yaml (user config)
//
// When neither exists a commented default is written to .flowmap/config.yaml.
func readConfig(v *viper.Viper, file string) (config.Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	setDefaults(v, config.Defaults())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api.base_url", "FLOWMAP_API_URL", "FLOWMAP_API_BASE_URL")

	if file != "" {
		v.SetConfigFile(file)
	} else if _, err := os.Stat(localConfigPath); err == nil {
		v.SetConfigFile(localConfigPath)
	} else {
		home, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(home, ".config", "flowmap"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && file == "":
			// No config file found anywhere - create the default
			if writeErr := config.WriteDefaultConfig(localConfigPath); writeErr == nil {
				v.SetConfigFile(localConfigPath)
				_ = v.ReadInConfig()
			}
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			// An explicit --config that does not exist yet runs on defaults.
		default:
			return config.Defaults(), fmt.Errorf("reading config: %w", err)
		}
	}

	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		return config.Defaults(), fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

// configFilePath is where `config set` writes changes.
func configFilePath() string {
	if p := viper.ConfigFileUsed(); p != "" {
		return p
	}
	return localConfigPath
}

// initLogging enables the debug log when --debug or FLOWMAP_DEBUG is set.
// The returned cleanup is never nil.
func initLogging(prefix string) (bool, func(), error) {
	if os.Getenv("FLOWMAP_DEBUG") == "" && !debugFlag {
		return false, func() {}, nil
	}
	logPath := os.Getenv("FLOWMAP_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.InitWithTeaLog(logPath, prefix)
	if err != nil {
		return false, func() {}, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "flowmap starting", "version", version, "logPath", logPath, "source", cfg.Source)
	return true, cleanup, nil
}

// newTracing builds the tracer provider, falling back to a no-op one.
func newTracing() *tracing.Provider {
	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		log.ErrorErr(log.CatConfig, "tracing disabled", err)
		return tracing.Disabled()
	}
	return tp
}

// openSource opens the configured data source. The returned close function
// is never nil.
func openSource(c config.Config, tracer trace.Tracer) (registry.Source, func() error, error) {
	switch c.Source {
	case config.SourceDB:
		s, err := store.Open(c.DB.Path, store.WithTracer(tracer))
		if err != nil {
			return nil, func() error { return nil }, fmt.Errorf("opening registry db: %w", err)
		}
		return s, s.Close, nil
	default:
		client, err := apiclient.New(c.API.BaseURL,
			apiclient.WithTimeout(c.API.Timeout),
			apiclient.WithRateLimit(c.API.RateLimit),
			apiclient.WithCacheTTL(c.API.CacheTTL),
			apiclient.WithTracer(tracer),
		)
		if err != nil {
			return nil, func() error { return nil }, fmt.Errorf("creating api client: %w", err)
		}
		return client, func() error { return nil }, nil
	}
}

func runApp(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	debug, cleanup, err := initLogging("flowmap")
	if err != nil {
		return err
	}
	defer cleanup()

	// Handle --no-auto-refresh flag (negated logic)
	if noAutoRefresh, _ := cmd.Flags().GetBool("no-auto-refresh"); noAutoRefresh {
		cfg.AutoRefresh = false
	}

	tp := newTracing()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	source, closeSource, err := openSource(cfg, tp.Tracer())
	if err != nil {
		return err
	}
	defer func() { _ = closeSource() }()

	dbPath := ""
	if cfg.Source == config.SourceDB {
		dbPath = cfg.DB.Path
	}

	zone.NewGlobal()
	model := app.NewWithConfig(source, cfg, dbPath, debug)
	p := tea.NewProgram(
		&model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	// Clean up watcher resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
