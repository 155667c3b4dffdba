package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vango-dev/mall/pkg/router"
)

// ServerConfig holds HTTP and WebSocket settings.
type ServerConfig struct {
	// Address is the listen address.
	// Default: "localhost:8080".
	Address string

	// Base is the document path the hash history is anchored to.
	// Default: "/".
	Base string

	// Title is the shell page title.
	// Default: "mall".
	Title string

	// HTTP timeouts

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration

	// WebSocket

	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the Origin header of WebSocket upgrades.
	// Default: same host only.
	CheckOrigin func(r *http.Request) bool

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 4KB.
	MaxMessageSize int64

	// SessionReadTimeout closes sessions that send nothing, pongs included.
	// Default: 60 seconds.
	SessionReadTimeout time.Duration

	// HeartbeatInterval is the time between pings.
	// Default: 25 seconds.
	HeartbeatInterval time.Duration

	// WriteWait bounds a single WebSocket write.
	// Default: 10 seconds.
	WriteWait time.Duration

	// MetricsPath serves Prometheus metrics when set.
	MetricsPath string

	// RouterMiddleware runs around every navigation of every router the
	// server creates.
	RouterMiddleware []router.Middleware

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:            "localhost:8080",
		Base:               "/",
		Title:              "mall",
		ReadHeaderTimeout:  5 * time.Second,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		IdleTimeout:        120 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		ReadBufferSize:     4096,
		WriteBufferSize:    4096,
		CheckOrigin:        sameOrigin,
		MaxMessageSize:     4 * 1024,
		SessionReadTimeout: 60 * time.Second,
		HeartbeatInterval:  25 * time.Second,
		WriteWait:          10 * time.Second,
	}
}

// withDefaults fills unset fields from DefaultServerConfig.
func (c *ServerConfig) withDefaults() *ServerConfig {
	defaults := DefaultServerConfig()
	if c == nil {
		return defaults
	}
	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.Base == "" {
		out.Base = defaults.Base
	}
	if out.Title == "" {
		out.Title = defaults.Title
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = defaults.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = defaults.IdleTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = defaults.CheckOrigin
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = defaults.MaxMessageSize
	}
	if out.SessionReadTimeout == 0 {
		out.SessionReadTimeout = defaults.SessionReadTimeout
	}
	if out.HeartbeatInterval == 0 {
		out.HeartbeatInterval = defaults.HeartbeatInterval
	}
	if out.WriteWait == 0 {
		out.WriteWait = defaults.WriteWait
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// sameOrigin accepts upgrades without an Origin header or whose Origin
// host matches the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}
