// Package server serves the storefront over HTTP and WebSocket.
//
// The server owns one validated route table. Every WebSocket session gets
// its own router and hash history over that table, so sessions navigate
// independently while sharing deferred views once they are loaded.
//
// # Endpoints
//
//	GET /              page shell that reports hash changes over /ws
//	GET /api/routes    the route table as JSON
//	GET /api/resolve   resolve ?to= without navigating
//	GET /view          navigate a throwaway router to ?to= and render it
//	GET /ws            navigation session
//	GET /metrics       Prometheus metrics, when MetricsPath is set
//
// # Session Protocol
//
// The client sends {"type": ..., "to": ...} where type is navigate,
// replace, back, forward or sync. sync carries the full page URL after a
// hashchange; the router decides whether it was a back or forward step.
//
// Each request is handled on its own goroutine. A newer request supersedes
// an older one still loading its view, and the older one gets no reply.
// Replies are mounted (with rendered html and the slide direction),
// unresolved (blank page) or error (a coded error object).
//
// # Usage
//
//	srv, err := server.New(storefront.New(storefront.DefaultStore()), &server.ServerConfig{
//	    Address:          ":8080",
//	    MetricsPath:      "/metrics",
//	    RouterMiddleware: []router.Middleware{middleware.Prometheus()},
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Run()
package server
