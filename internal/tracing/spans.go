package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span attribute keys.
const (
	AttrHTTPMethod   = "http.method"
	AttrHTTPRoute    = "http.route"
	AttrHTTPURL      = "http.url"
	AttrHTTPStatus   = "http.status_code"
	AttrCategory     = "registry.category"
	AttrKeyword      = "registry.keyword"
	AttrPage         = "registry.page"
	AttrLimit        = "registry.limit"
	AttrResultCount  = "registry.result_count"
	AttrCacheHit     = "cache.hit"
	AttrDBOperation  = "db.operation"
	AttrErrorMessage = "error.message"
)

// Span name prefixes.
const (
	SpanPrefixAPI    = "api."
	SpanPrefixStore  = "store."
	SpanPrefixServer = "http."
)

// Start opens a span on tracer, which may be nil.
func Start(ctx context.Context, tracer trace.Tracer, name string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, noop.Span{}
	}
	return tracer.Start(ctx, name, trace.WithSpanKind(kind), trace.WithAttributes(attrs...))
}

// End records err, if any, and ends span.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
