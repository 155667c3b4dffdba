package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/mall/pkg/history"
	"github.com/vango-dev/mall/pkg/route"
	"github.com/vango-dev/mall/pkg/router"
)

// Server serves the storefront shell, the route API, rendered views and
// WebSocket navigation sessions over one shared route table.
type Server struct {
	routes route.Table
	config *ServerConfig
	logger *slog.Logger

	// resolver answers lookups that never navigate.
	resolver *router.Router

	upgrader websocket.Upgrader
	handler  http.Handler

	mu       sync.Mutex
	sessions map[*Session]struct{}
	closing  bool

	httpServer *http.Server
}

// New creates a Server for routes. The table is validated once here; every
// router the server creates later shares it and its loaded views.
func New(routes route.Table, config *ServerConfig) (*Server, error) {
	config = config.withDefaults()
	logger := config.Logger.With("component", "server")

	resolver, err := router.New(router.Options{
		Routes:  routes,
		History: history.NewHash(config.Base),
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		routes:   routes,
		config:   config,
		logger:   logger,
		resolver: resolver,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		sessions: make(map[*Session]struct{}),
	}
	s.handler = s.routesHandler()
	return s, nil
}

// routesHandler builds the chi route tree.
func (s *Server) routesHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleShell)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/routes", s.handleRoutes)
		r.Get("/resolve", s.handleResolve)
	})
	r.Get("/view", s.handleView)
	r.Get("/ws", s.HandleWebSocket)

	if s.config.MetricsPath != "" {
		r.Method(http.MethodGet, s.config.MetricsPath, promhttp.Handler())
	}
	return r
}

// newRouter creates a router over the shared table with its own history.
func (s *Server) newRouter(logger *slog.Logger) (*router.Router, error) {
	return router.New(router.Options{
		Routes:     s.routes,
		History:    history.NewHash(s.config.Base),
		Logger:     logger,
		Middleware: s.config.RouterMiddleware,
	})
}

// Handler returns the server's http.Handler for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Routes returns the route table the server was built with.
func (s *Server) Routes() route.Table {
	return s.routes
}

// Config returns the effective configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// SessionCount returns the number of open WebSocket sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) addSession(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.sessions[sess] = struct{}{}
	return true
}

func (s *Server) removeSession(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

// Run listens on the configured address until SIGINT or SIGTERM, then
// shuts down gracefully.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.ListenAndServe(ctx)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}
	srv := s.httpServer
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address, "routes", len(s.routes))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every WebSocket session and then drains the HTTP server
// within ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	s.closing = true
	sessions := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	srv := s.httpServer
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close(websocket.CloseGoingAway, "server shutting down")
	}

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// requestLogger logs one line per request with slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
