package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/vango-dev/mall/pkg/router"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for the storefront.
const defaultTracerName = "mall"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "mall").
	TracerName string

	// IncludeQuery records the raw query string on spans.
	// Disabled by default since queries may carry customer input.
	IncludeQuery bool

	// Filter determines which navigations to trace.
	// If nil, all navigations are traced.
	Filter func(nav *router.Navigation) bool

	// AttributeExtractor adds custom attributes for each traced navigation.
	AttributeExtractor func(nav *router.Navigation) []attribute.KeyValue

	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider

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

// WithIncludeQuery enables recording the query string.
func WithIncludeQuery(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeQuery = include
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(nav *router.Navigation) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(nav *router.Navigation) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry creates middleware that traces every navigation.
//
// Each span carries the route name, matched path, navigation kind and
// transition direction. The span context replaces the navigation context
// so the view load and later middleware inherit it.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main():
//
//	otel.SetTracerProvider(tp)
//	r.Use(middleware.OpenTelemetry())
func OpenTelemetry(opts ...OTelOption) router.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if config.TracerProvider != nil {
		config.tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		config.tracer = otel.Tracer(config.TracerName)
	}

	return router.MiddlewareFunc(func(nav *router.Navigation, next func() error) error {
		if config.Filter != nil && !config.Filter(nav) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("mall.route", routeLabel(nav)),
			attribute.String("mall.kind", string(nav.Kind)),
			attribute.String("mall.direction", string(nav.Direction)),
			attribute.Int64("mall.navigation_id", int64(nav.ID)),
		}
		if nav.To != nil {
			attrs = append(attrs, attribute.String("mall.path", nav.To.Path))
			if nav.To.RedirectedFrom != "" {
				attrs = append(attrs, attribute.String("mall.redirected_from", nav.To.RedirectedFrom))
			}
			if config.IncludeQuery && len(nav.To.Query) > 0 {
				attrs = append(attrs, attribute.String("mall.query", nav.To.Query.Encode()))
			}
			if nav.To.Matched() {
				attrs = append(attrs, attribute.Int("mall.index", nav.To.Meta.Index))
			}
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(nav)...)
		}

		spanCtx, span := config.tracer.Start(
			nav.Context(),
			formatSpanName(nav),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		nav.SetContext(context.WithValue(spanCtx, spanContextKey{}, spanCtx))

		err := next()

		switch {
		case err == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(err, router.ErrUnresolved):
			// An unmatched location is an expected outcome, not a fault.
			span.SetAttributes(attribute.Bool("mall.unresolved", true))
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("mall.outcome", categorizeError(err)))

		return err
	})
}

type spanContextKey struct{}

// SpanFromNavigation returns the span started for nav, or nil when the
// navigation is not traced.
//
// Example:
//
//	r.Use(router.MiddlewareFunc(func(nav *router.Navigation, next func() error) error {
//	    if span := middleware.SpanFromNavigation(nav); span != nil {
//	        span.AddEvent("cart.checked")
//	    }
//	    return next()
//	}))
func SpanFromNavigation(nav *router.Navigation) trace.Span {
	ctx := nav.Context()
	if ctx == nil {
		return nil
	}
	if _, ok := ctx.Value(spanContextKey{}).(context.Context); !ok {
		return nil
	}
	return trace.SpanFromContext(ctx)
}

// TraceContext returns the context to propagate to outbound calls made
// while handling nav.
func TraceContext(nav *router.Navigation) context.Context {
	if ctx := nav.Context(); ctx != nil {
		if spanCtx, ok := ctx.Value(spanContextKey{}).(context.Context); ok {
			return spanCtx
		}
		return ctx
	}
	return context.Background()
}

func formatSpanName(nav *router.Navigation) string {
	return fmt.Sprintf("navigate %s", routeLabel(nav))
}
