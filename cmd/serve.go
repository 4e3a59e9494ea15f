package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/greta-mvc/flowmap/internal/config"
	"github.com/greta-mvc/flowmap/internal/log"
	"github.com/greta-mvc/flowmap/internal/server"
	"github.com/greta-mvc/flowmap/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the registry API from the local database",
	Long: `Serve the registry over HTTP so that 'flowmap' (source: api) and browser
frontends can read it.

Endpoints:
  GET /overview                    one page of firms (category, keyword, limit, page)
  GET /overview/search             name suggestions
  GET /overview/{corpCode}         a single firm
  GET /flowmap                     classification domains
  GET /flowmap/industry-classes    the industry class catalog
  GET /healthz, /metrics

Example:
  flowmap serve                          # listen on server.addr (default :8000)
  flowmap serve --addr :9000 --seed ./seed.yaml`,
	RunE: runServe,
}

var (
	serveAddr string
	serveSeed string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "address to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveSeed, "seed", "",
		`seed file to load before serving ("sample" for the built-in data)`)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := config.ValidateServer(cfg.Server); err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	// The server always logs, to stderr unless a debug log file is requested.
	_, cleanup, err := initLogging("flowmap-serve")
	if err != nil {
		return err
	}
	defer cleanup()
	if !debugFlag && os.Getenv("FLOWMAP_DEBUG") == "" {
		log.InitWriter(os.Stderr)
		log.SetMinLevel(log.LevelInfo)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp := newTracing()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	s, err := store.Open(cfg.DB.Path, store.WithTracer(tp.Tracer()))
	if err != nil {
		return fmt.Errorf("opening registry db: %w", err)
	}
	defer func() { _ = s.Close() }()

	if serveSeed != "" {
		if _, err := seedStore(ctx, s, serveSeed); err != nil {
			return err
		}
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := server.New(s,
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins),
		server.WithTracer(tp.Tracer()),
	)
	return srv.Run(ctx, addr)
}
