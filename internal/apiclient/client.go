// Package apiclient is the HTTP registry.Source talking to a flowmap
// registry server.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/greta-mvc/flowmap/internal/cachemanager"
	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/log"
	"github.com/greta-mvc/flowmap/internal/registry"
	"github.com/greta-mvc/flowmap/internal/tracing"
)

const (
	DefaultBaseURL   = "http://localhost:8000"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 10.0
	DefaultCacheTTL  = 5 * time.Minute

	maxErrorBody = 64 << 10
)

type cacheKey string

const (
	keyDomains cacheKey = "flowmap:domains"
	keyClasses cacheKey = "flowmap:industry-classes"
)

type listEnvelope[T any] struct {
	Length int `json:"length"`
	Data   []T `json:"data"`
}

// Client fetches registry data over HTTP.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    *url.URL
	tracer     trace.Tracer
	cacheTTL   time.Duration

	domains *cachemanager.ReadThroughCache[cacheKey, []diagram.ClassificationDomain, struct{}]
	classes *cachemanager.ReadThroughCache[cacheKey, []diagram.IndustryClass, struct{}]
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
	rateLimit  float64
	tracer     trace.Tracer
	cacheTTL   time.Duration
	noCache    bool
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithRateLimit caps requests per second. Zero or less disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(o *clientOptions) { o.rateLimit = perSecond }
}

// WithTracer records a client span per request.
func WithTracer(t trace.Tracer) Option {
	return func(o *clientOptions) { o.tracer = t }
}

// WithCacheTTL sets how long classification lists are cached.
func WithCacheTTL(d time.Duration) Option {
	return func(o *clientOptions) { o.cacheTTL = d }
}

// WithoutCache disables the classification cache.
func WithoutCache() Option {
	return func(o *clientOptions) { o.noCache = true }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	o := clientOptions{
		timeout:   DefaultTimeout,
		rateLimit: DefaultRateLimit,
		cacheTTL:  DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}

	limit := rate.Inf
	if o.rateLimit > 0 {
		limit = rate.Limit(o.rateLimit)
	}

	c := &Client{
		httpClient: o.httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		baseURL:    u,
		tracer:     o.tracer,
		cacheTTL:   o.cacheTTL,
	}

	domainCache := cachemanager.NewInMemoryCacheManager[cacheKey, []diagram.ClassificationDomain]("api-domains", o.cacheTTL, cachemanager.DefaultCleanupInterval)
	c.domains = cachemanager.NewReadThroughCache[cacheKey, []diagram.ClassificationDomain, struct{}](domainCache, c.fetchDomains, o.noCache)

	classCache := cachemanager.NewInMemoryCacheManager[cacheKey, []diagram.IndustryClass]("api-classes", o.cacheTTL, cachemanager.DefaultCleanupInterval)
	c.classes = cachemanager.NewReadThroughCache[cacheKey, []diagram.IndustryClass, struct{}](classCache, c.fetchClasses, o.noCache)

	return c, nil
}

var _ registry.Source = (*Client)(nil)

// Overview fetches one page of the registry listing.
func (c *Client) Overview(ctx context.Context, q registry.Query) (registry.OverviewListData, error) {
	params := url.Values{}
	if q.Category != "" {
		params.Set("category", string(q.Category))
	}
	if q.Keyword != "" {
		params.Set("keyword", q.Keyword)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	var out registry.OverviewListData
	err := c.get(ctx, "/overview", params, &out,
		attribute.String(tracing.AttrCategory, string(q.Category)),
		attribute.String(tracing.AttrKeyword, q.Keyword),
		attribute.Int(tracing.AttrPage, q.Page),
	)
	if err != nil {
		return registry.OverviewListData{}, err
	}
	if out.Data == nil {
		out.Data = []registry.OverviewRow{}
	}
	return out, nil
}

// Suggest fetches name matches for term.
func (c *Client) Suggest(ctx context.Context, term string, category registry.Category) ([]registry.SearchItem, error) {
	params := url.Values{"term": {term}, "category": {string(category)}}
	var out []registry.SearchItem
	if err := c.get(ctx, "/overview/search", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Corporation fetches one corporation by corp code.
func (c *Client) Corporation(ctx context.Context, corpCode string) (registry.OverviewRow, error) {
	var out registry.OverviewRow
	if err := c.get(ctx, "/overview/"+url.PathEscape(corpCode), nil, &out); err != nil {
		return registry.OverviewRow{}, err
	}
	return out, nil
}

// Describe fetches the detail page of one corporation.
func (c *Client) Describe(ctx context.Context, corpCode string) (registry.CorporationDescription, error) {
	var out registry.CorporationDescription
	if err := c.get(ctx, "/overview/"+url.PathEscape(corpCode)+"/description", nil, &out); err != nil {
		return registry.CorporationDescription{}, err
	}
	return out, nil
}

// IndustryInfo fetches per-class corporation counts. Counts follow the
// registry data, so they are not cached.
func (c *Client) IndustryInfo(ctx context.Context) ([]registry.IndustryInfo, error) {
	var env listEnvelope[registry.IndustryInfo]
	if err := c.get(ctx, "/industry/info", nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []registry.IndustryInfo{}
	}
	return env.Data, nil
}

// Domains returns the classification domains, cached for the cache TTL.
func (c *Client) Domains(ctx context.Context) ([]diagram.ClassificationDomain, error) {
	return c.domains.Get(ctx, keyDomains, struct{}{}, c.cacheTTL)
}

// IndustryClasses returns every industry class, cached for the cache TTL.
func (c *Client) IndustryClasses(ctx context.Context) ([]diagram.IndustryClass, error) {
	return c.classes.Get(ctx, keyClasses, struct{}{}, c.cacheTTL)
}

// Invalidate drops cached classification lists.
func (c *Client) Invalidate(ctx context.Context) {
	_ = c.domains.Invalidate(ctx, keyDomains)
	_ = c.classes.Invalidate(ctx, keyClasses)
}

func (c *Client) fetchDomains(ctx context.Context, _ struct{}) ([]diagram.ClassificationDomain, error) {
	var env listEnvelope[diagram.ClassificationDomain]
	if err := c.get(ctx, "/flowmap", nil, &env); err != nil {
		return nil, err
	}
	for _, d := range env.Data {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
	}
	return env.Data, nil
}

func (c *Client) fetchClasses(ctx context.Context, _ struct{}) ([]diagram.IndustryClass, error) {
	var env listEnvelope[diagram.IndustryClass]
	if err := c.get(ctx, "/flowmap/industry-classes", nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any, attrs ...attribute.KeyValue) (err error) {
	ctx, span := tracing.Start(ctx, c.tracer, tracing.SpanPrefixAPI+strings.TrimPrefix(path, "/"), trace.SpanKindClient, attrs...)
	defer func() { tracing.End(span, err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL.JoinPath(path)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int(tracing.AttrHTTPStatus, resp.StatusCode))
	log.Debug(log.CatAPI, "request", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w %s: %v", ErrDecode, path, err)
	}
	return nil
}

func statusError(resp *http.Response, path string) error {
	se := &StatusError{StatusCode: resp.StatusCode, Path: path}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Detail           string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		se.Code = payload.Error
		se.Description = payload.ErrorDescription
		if se.Description == "" {
			se.Description = payload.Detail
		}
	}
	return se
}
