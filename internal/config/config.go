package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/mall/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "mall.json"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultMetricsPath is where Prometheus metrics are served.
	DefaultMetricsPath = "/metrics"
)

// View sources.
const (
	SourceEmbed = "embed"
	SourceDisk  = "disk"
	SourceS3    = "s3"
)

// Config represents the complete mall.json configuration.
type Config struct {
	// Name is the storefront name shown in the shell page title.
	Name string `json:"name,omitempty"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Views selects where deferred view bundles are loaded from.
	Views ViewsConfig `json:"views,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// Base is the document path the hash history is anchored to.
	Base string `json:"base,omitempty"`

	// ShutdownTimeout is how long to wait for connections to drain (e.g., "10s").
	ShutdownTimeout Duration `json:"shutdownTimeout,omitempty"`
}

// ViewsConfig contains view bundle store settings.
type ViewsConfig struct {
	// Source is embed, disk or s3.
	Source string `json:"source,omitempty"`

	// Dir is the bundle directory for the disk source.
	Dir string `json:"dir,omitempty"`

	// S3 configures the s3 source.
	S3 S3Config `json:"s3,omitempty"`
}

// S3Config contains the bucket holding view bundles.
type S3Config struct {
	Bucket    string `json:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty"`

	// AccessKeyID and SecretAccessKey are optional static credentials.
	// Anonymous access is used when both are empty.
	AccessKeyID     string `json:"accessKeyId,omitempty"`
	SecretAccessKey string `json:"secretAccessKey,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty"`
	Path      string `json:"path,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty"`
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// Duration is a time.Duration that reads and writes "10s" style strings.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory.
// It looks for mall.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No " + ConfigFileName + " found at " + path)
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		e := errors.New("E101").Wrap(err)
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			e.WithOffset(path, data, syntaxErr.Offset)
		case errors.As(err, &typeErr):
			e.WithOffset(path, data, typeErr.Offset).
				WithDetail(typeErr.Field + " must be a " + typeErr.Type.String())
		}
		return nil, e.WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E101").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E101").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "mall"
	}

	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Base == "" {
		c.Server.Base = "/"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}

	if c.Views.Source == "" {
		c.Views.Source = SourceEmbed
	}
	if c.Views.Dir == "" {
		c.Views.Dir = "views"
	}
	if c.Views.S3.Region == "" {
		c.Views.S3.Region = "us-east-1"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "mall"
	}

	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "mall"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	if !strings.HasPrefix(c.Server.Base, "/") {
		problems = append(problems, "server.base must start with /")
	}
	if c.Server.ShutdownTimeout < 0 {
		problems = append(problems, "server.shutdownTimeout must not be negative")
	}

	switch c.Views.Source {
	case SourceEmbed:
	case SourceDisk:
		if c.Views.Dir == "" {
			problems = append(problems, "views.dir is required for the disk source")
		}
	case SourceS3:
		if c.Views.S3.Bucket == "" {
			problems = append(problems, "views.s3.bucket is required for the s3 source")
		}
		if (c.Views.S3.AccessKeyID == "") != (c.Views.S3.SecretAccessKey == "") {
			problems = append(problems, "views.s3 needs both accessKeyId and secretAccessKey, or neither")
		}
	default:
		return errors.New("E103").
			WithDetail("views.source is " + strconv.Quote(c.Views.Source) + "; must be one of embed, disk or s3")
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		problems = append(problems, "metrics.path must start with /")
	}

	if _, err := c.LogLevel(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		problems = append(problems, "log.format must be text or json")
	}

	if len(problems) > 0 {
		return errors.New("E102").WithDetail(strings.Join(problems, "; "))
	}
	return nil
}

// Address returns the listen address for the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the base URL of the storefront.
func (c *Config) URL() string {
	return "http://" + c.Address() + c.Server.Base
}

// ViewsPath returns the absolute path to the disk view directory.
func (c *Config) ViewsPath() string {
	if filepath.IsAbs(c.Views.Dir) {
		return c.Views.Dir
	}
	return filepath.Join(c.Dir(), c.Views.Dir)
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.Newf(errors.CategoryConfig, "log.level %q is not one of debug, info, warn or error", c.Log.Level)
	}
	return level, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
