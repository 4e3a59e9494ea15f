// Package server exposes a registry.Source over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/log"
	"github.com/greta-mvc/flowmap/internal/registry"
	"github.com/greta-mvc/flowmap/internal/server/metrics"
	"github.com/greta-mvc/flowmap/internal/tracing"
)

// DefaultAllowedOrigins are the local frontends allowed by default.
var DefaultAllowedOrigins = []string{
	"http://localhost",
	"http://localhost:3000",
	"http://localhost:5173",
}

const shutdownTimeout = 10 * time.Second

// Pinger is implemented by sources that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves registry data.
type Server struct {
	source  registry.Source
	origins []string
	tracer  trace.Tracer
	metrics *metrics.Metrics
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins replaces the CORS allow-list.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithTracer enables server spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithMetrics replaces the default collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates a Server over src.
func New(src registry.Source, opts ...Option) *Server {
	s := &Server{source: src, origins: DefaultAllowedOrigins}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	return s
}

// Metrics returns the server collectors.
func (s *Server) Metrics() *metrics.Metrics { return s.metrics }

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(tracing.Middleware(s.tracer))
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Get("/overview", s.handleOverview)
	r.Get("/overview/search", s.handleSearch)
	r.Get("/overview/{corpCode}", s.handleCorporation)
	r.Get("/overview/{corpCode}/description", s.handleDescription)
	r.Get("/flowmap", s.handleDomains)
	r.Get("/flowmap/industry-classes", s.handleIndustryClasses)
	r.Get("/industry", s.handleIndustryClasses)
	r.Get("/industry/info", s.handleIndustryInfo)
	r.Get("/industry/info/download", s.handleIndustryInfoDownload)
	return r
}

// NewHTTPServer builds an http.Server with the project's timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := NewHTTPServer(addr, s.Routes())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(log.CatServer, "listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info(log.CatServer, "shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type listResponse[T any] struct {
	Length int `json:"length"`
	Data   []T `json:"data"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.source.(Pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	q, err := parseOverviewQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	data, err := s.source.Overview(r.Context(), q)
	if err != nil {
		WriteError(w, err)
		return
	}
	s.metrics.ObserveOverviewRows(len(data.Data))
	WriteJSON(w, http.StatusOK, data)
}

func parseOverviewQuery(r *http.Request) (registry.Query, error) {
	v := r.URL.Query()
	cat, err := registry.ParseCategory(v.Get("category"))
	if err != nil {
		return registry.Query{}, badRequest(err.Error())
	}
	limit, err := intParam(v.Get("limit"), "limit")
	if err != nil {
		return registry.Query{}, err
	}
	page, err := intParam(v.Get("page"), "page")
	if err != nil {
		return registry.Query{}, err
	}
	return registry.Query{
		Category: cat,
		Keyword:  strings.TrimSpace(v.Get("keyword")),
		Page:     page,
		Limit:    limit,
	}, nil
}

// intParam parses an optional positive integer; empty means zero.
func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, badRequest(name + " must be a positive integer")
	}
	return n, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	cat, err := registry.ParseCategory(v.Get("category"))
	if err != nil {
		WriteError(w, badRequest(err.Error()))
		return
	}
	term := strings.TrimSpace(v.Get("term"))
	if term == "" {
		WriteJSON(w, http.StatusOK, []registry.SearchItem{})
		return
	}
	items, err := s.source.Suggest(r.Context(), term, cat)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) handleCorporation(w http.ResponseWriter, r *http.Request) {
	row, err := s.source.Corporation(r.Context(), chi.URLParam(r, "corpCode"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, row)
}

func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := s.source.Domains(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	if domains == nil {
		domains = []diagram.ClassificationDomain{}
	}
	WriteJSON(w, http.StatusOK, listResponse[diagram.ClassificationDomain]{Length: len(domains), Data: domains})
}

func (s *Server) handleIndustryClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := s.source.IndustryClasses(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	if classes == nil {
		classes = []diagram.IndustryClass{}
	}
	WriteJSON(w, http.StatusOK, listResponse[diagram.IndustryClass]{Length: len(classes), Data: classes})
}

func (s *Server) handleDescription(w http.ResponseWriter, r *http.Request) {
	d, err := s.source.Describe(r.Context(), chi.URLParam(r, "corpCode"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, d)
}

func (s *Server) handleIndustryInfo(w http.ResponseWriter, r *http.Request) {
	infos, err := s.source.IndustryInfo(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	if infos == nil {
		infos = []registry.IndustryInfo{}
	}
	WriteJSON(w, http.StatusOK, listResponse[registry.IndustryInfo]{Length: len(infos), Data: infos})
}

func (s *Server) handleIndustryInfoDownload(w http.ResponseWriter, r *http.Request) {
	infos, err := s.source.IndustryInfo(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="industry_info.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := WriteIndustryInfoCSV(w, infos); err != nil {
		log.ErrorErr(log.CatServer, "write industry info export", err)
	}
}
