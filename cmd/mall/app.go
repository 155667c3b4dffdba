package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/vango-dev/mall/internal/config"
	"github.com/vango-dev/mall/internal/errors"
	"github.com/vango-dev/mall/internal/storefront"
	"github.com/vango-dev/mall/pkg/history"
	"github.com/vango-dev/mall/pkg/middleware"
	"github.com/vango-dev/mall/pkg/route"
	"github.com/vango-dev/mall/pkg/router"
	"github.com/vango-dev/mall/pkg/server"
	"github.com/vango-dev/mall/pkg/view"
)

// loadConfig reads the configuration named by --config, or mall.json in the
// working directory when it exists, applies flag overrides and validates
// the result.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case flags.config != "":
		cfg, err = config.LoadFile(flags.config)
	case config.Exists("."):
		cfg, err = config.Load(".")
	default:
		cfg = config.New()
	}
	if err != nil {
		return nil, err
	}

	if flags.port > 0 {
		cfg.Server.Port = flags.port
	}
	if flags.views != "" {
		cfg.Views.Source = config.SourceDisk
		cfg.Views.Dir = flags.views
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the log section.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// newStore opens the view bundle store selected by views.source.
func newStore(cfg *config.Config) (view.Store, error) {
	switch cfg.Views.Source {
	case config.SourceEmbed, "":
		return storefront.DefaultStore(), nil
	case config.SourceDisk:
		dir := cfg.ViewsPath()
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			return nil, errors.New("E102").
				WithDetail("views.dir " + dir + " is not a directory")
		}
		return view.NewDiskStore(dir), nil
	case config.SourceS3:
		s3cfg := cfg.Views.S3
		client := view.NewS3Client(view.S3Options{
			Region:          s3cfg.Region,
			Endpoint:        s3cfg.Endpoint,
			PathStyle:       s3cfg.PathStyle,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
		})
		return view.NewS3Store(client, s3cfg.Bucket, s3cfg.Prefix), nil
	default:
		return nil, errors.New("E103").WithDetail("views.source is " + cfg.Views.Source)
	}
}

// newRoutes builds the storefront table over the configured store.
func newRoutes(cfg *config.Config) (route.Table, error) {
	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}
	routes := storefront.New(store)
	if err := routes.Validate(); err != nil {
		return nil, err
	}
	return routes, nil
}

// serverConfig maps mall.json onto the server settings and wires the
// navigation middleware the config enables.
func serverConfig(cfg *config.Config, logger *slog.Logger) *server.ServerConfig {
	sc := server.DefaultServerConfig()
	sc.Address = cfg.Address()
	sc.Base = cfg.Server.Base
	sc.Title = cfg.Name
	sc.ShutdownTimeout = time.Duration(cfg.Server.ShutdownTimeout)
	sc.Logger = logger

	if cfg.Tracing.Enabled {
		var opts []middleware.OTelOption
		if cfg.Tracing.TracerName != "" {
			opts = append(opts, middleware.WithTracerName(cfg.Tracing.TracerName))
		}
		sc.RouterMiddleware = append(sc.RouterMiddleware, middleware.OpenTelemetry(opts...))
	}
	if cfg.Metrics.Enabled {
		var opts []middleware.MetricsOption
		if cfg.Metrics.Namespace != "" {
			opts = append(opts, middleware.WithNamespace(cfg.Metrics.Namespace))
		}
		sc.RouterMiddleware = append(sc.RouterMiddleware, middleware.Prometheus(opts...))
		sc.MetricsPath = cfg.Metrics.Path
	}
	return sc
}

// newResolver creates a standalone router for commands that only resolve.
func newResolver(cfg *config.Config, logger *slog.Logger) (*router.Router, error) {
	routes, err := newRoutes(cfg)
	if err != nil {
		return nil, err
	}
	return router.New(router.Options{
		Routes:  routes,
		History: history.NewHash(cfg.Server.Base),
		Logger:  logger,
	})
}
