package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/mall/internal/config"
	"github.com/vango-dev/mall/internal/errors"
	"github.com/vango-dev/mall/pkg/view"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(&globalFlags{})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Views.Source != config.SourceEmbed || cfg.Server.Port != config.DefaultPort {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `{"name": "shop", "server": {"port": 9000}}`)
	dir := t.TempDir()

	cfg, err := loadConfig(&globalFlags{config: path, port: 3000, views: dir})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Name != "shop" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Port = %d, want flag override 3000", cfg.Server.Port)
	}
	if cfg.Views.Source != config.SourceDisk || cfg.ViewsPath() != dir {
		t.Errorf("views = %+v", cfg.Views)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"syntax", `{"name": `, "E101"},
		{"unknown source", `{"views": {"source": "ftp"}}`, "E103"},
		{"bad port", `{"server": {"port": 70000}}`, "E102"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(&globalFlags{config: writeConfig(t, tt.body)})
			if got := errors.Classify(err); got == nil || got.Code != tt.code {
				t.Fatalf("error = %v, want %s", err, tt.code)
			}
		})
	}

	_, err := loadConfig(&globalFlags{config: filepath.Join(t.TempDir(), "missing.json")})
	if got := errors.Classify(err); got == nil || got.Code != "E100" {
		t.Fatalf("missing file error = %v, want E100", err)
	}
}

func TestNewStore(t *testing.T) {
	cfg := config.New()
	store, err := newStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(*view.FSStore); !ok {
		t.Errorf("embed store = %T", store)
	}

	cfg.Views.Source = config.SourceDisk
	cfg.Views.Dir = t.TempDir()
	store, err = newStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if ds, ok := store.(*view.DiskStore); !ok || ds.Root() != cfg.Views.Dir {
		t.Errorf("disk store = %#v", store)
	}

	cfg.Views.Dir = filepath.Join(cfg.Views.Dir, "absent")
	if _, err := newStore(cfg); err == nil {
		t.Error("missing disk dir should fail")
	}

	cfg.Views.Source = config.SourceS3
	cfg.Views.S3.Bucket = "mall-views"
	cfg.Views.S3.Endpoint = "http://127.0.0.1:9000"
	store, err = newStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(*view.S3Store); !ok {
		t.Errorf("s3 store = %T", store)
	}
}

func TestNewLogger(t *testing.T) {
	cfg := config.New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger, err := newLogger(cfg, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "route", "cart")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not one JSON line: %q", buf.String())
	}
	if line["msg"] != "shown" || line["route"] != "cart" {
		t.Errorf("log line = %v", line)
	}

	cfg.Log.Level = "loud"
	if _, err := newLogger(cfg, &buf); err == nil {
		t.Error("unknown level should fail")
	}
}

func TestServerConfig(t *testing.T) {
	cfg := config.New()
	cfg.Name = "shop"
	cfg.Server.Port = 9090
	cfg.Server.ShutdownTimeout = config.Duration(3 * time.Second)

	sc := serverConfig(cfg, nil)
	if sc.Address != "localhost:9090" || sc.Title != "shop" || sc.ShutdownTimeout != 3*time.Second {
		t.Errorf("server config = %+v", sc)
	}
	if sc.MetricsPath != "" || len(sc.RouterMiddleware) != 0 {
		t.Errorf("observability wired while disabled: %+v", sc)
	}

	cfg.Metrics.Enabled = true
	cfg.Tracing.Enabled = true
	sc = serverConfig(cfg, nil)
	if sc.MetricsPath != "/metrics" {
		t.Errorf("MetricsPath = %q", sc.MetricsPath)
	}
	if len(sc.RouterMiddleware) != 2 {
		t.Errorf("got %d router middleware, want 2", len(sc.RouterMiddleware))
	}
}

func TestRoutesCommand(t *testing.T) {
	out, err := run(t, "routes")
	if err != nil {
		t.Fatalf("routes: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 16 {
		t.Fatalf("got %d lines, want header plus 15 routes:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "-> /home") {
		t.Errorf("redirect line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "home") || !strings.Contains(lines[2], "eager") {
		t.Errorf("home line = %q", lines[2])
	}
	if !strings.Contains(out, "/product/:id") {
		t.Error("product route missing")
	}
}

func TestRoutesCommandJSON(t *testing.T) {
	out, err := run(t, "routes", "--json")
	if err != nil {
		t.Fatalf("routes --json: %v", err)
	}
	var entries []struct {
		Path  string `json:"path"`
		Name  string `json:"name"`
		Index int    `json:"index"`
		Lazy  bool   `json:"lazy"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(entries) != 15 {
		t.Fatalf("got %d entries", len(entries))
	}
	if e := entries[6]; e.Path != "/product/:id" || e.Index != 3 || !e.Lazy {
		t.Errorf("product entry = %+v", e)
	}
}

func TestResolveCommand(t *testing.T) {
	out, err := run(t, "resolve", "/", "/product/42?from=home")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, want := range []string{
		"route:  home (index 1)",
		"from:   /",
		"route:  product (index 3)",
		"href:   /#/product/42?from=home",
		"params: id=42",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	_, err = run(t, "resolve", "/nowhere")
	if got := errors.Classify(err); got == nil || got.Code != "E201" {
		t.Errorf("unresolved error = %v, want E201", err)
	}

	if _, err := run(t, "resolve"); err == nil {
		t.Error("resolve without arguments should fail")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version = %q", out)
	}
}
