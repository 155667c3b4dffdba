// Package middleware provides observability middleware for the storefront
// router.
//
// Both middlewares implement router.Middleware and run around the view
// load of every navigation.
//
// # OpenTelemetry Middleware
//
// OpenTelemetry starts one span per navigation with the route name,
// matched path, navigation kind, meta index and transition direction.
// The span context replaces the navigation context, so deferred view
// loads inherit the trace:
//
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("storefront"),
//	    middleware.WithNavigationFilter(func(nav *router.Navigation) bool {
//	        return nav.Kind != router.KindReplace
//	    }),
//	))
//
// Unmatched locations are recorded as an attribute rather than a span
// error.
//
// # Prometheus Metrics
//
// Prometheus counts navigations by route and outcome, times successful
// mounts and counts deferred view loads. The WebSocket server reports
// sessions and messages through the Record functions.
//
//	r.Use(middleware.Prometheus())
//	mux.Handle("/metrics", promhttp.Handler())
//
// Route labels come from route names only; locations that match nothing
// share a single label.
package middleware
