package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/weft-dev/weft/pkg/session"
	"github.com/weft-dev/weft/pkg/weft"
)

// Default tracer name for weft applications.
const defaultTracerName = "weft"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "weft").
	TracerName string

	// Filter determines which requests to trace.
	// Return true to trace the request, false to skip.
	// If nil, all requests are traced.
	Filter func(req weft.Request) bool

	// AttributeExtractor extracts custom attributes from the request.
	// Called for each traced request.
	AttributeExtractor func(req weft.Request) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithRequestFilter sets a filter function for requests.
func WithRequestFilter(filter func(req weft.Request) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(req weft.Request) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates middleware that traces every request.
//
// The middleware:
//   - Creates a span per request named after the request kind
//   - Passes the span context down, so callback handlers see it via
//     Context.StdContext()
//   - Records errors and sets span status
//
// The tracer uses the global OpenTelemetry tracer provider. Configure
// it in your main() before starting the server:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	    sdktrace.WithResource(resource.NewWithAttributes(
//	        semconv.SchemaURL,
//	        semconv.ServiceName("my-app"),
//	    )),
//	)
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) session.Middleware {
	config := OTelConfig{
		TracerName: defaultTracerName,
	}
	for _, opt := range opts {
		opt(&config)
	}

	config.tracer = otel.Tracer(config.TracerName)

	return func(next session.Handler) session.Handler {
		return func(ctx context.Context, req weft.Request) (weft.Response, error) {
			if config.Filter != nil && !config.Filter(req) {
				return next(ctx, req)
			}

			kind := requestKind(req)
			attrs := []attribute.KeyValue{
				attribute.String("weft.request_kind", kind),
			}
			if pid := req.PageID(); pid != "" {
				attrs = append(attrs, attribute.String("weft.page_id", pid))
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(req)...)
			}

			spanCtx, span := config.tracer.Start(
				ctx,
				"weft "+kind,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			resp, err := next(spanCtx, req)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}

			return resp, err
		}
	}
}
