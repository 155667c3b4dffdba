package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/vango-dev/mall/internal/storefront"
	"github.com/vango-dev/mall/pkg/view"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, store view.Store) *Server {
	t.Helper()
	if store == nil {
		store = storefront.DefaultStore()
	}
	s, err := New(storefront.New(store), &ServerConfig{
		MetricsPath: "/metrics",
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestShell(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"<title>mall</title>", `id="app"`, "hashchange"} {
		if !strings.Contains(body, want) {
			t.Errorf("shell missing %q", want)
		}
	}
}

func TestRoutesEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/api/routes")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "no-cache") {
		t.Errorf("Cache-Control = %q", cc)
	}

	var infos []RouteInfo
	if err := json.NewDecoder(rec.Body).Decode(&infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(infos) != 15 {
		t.Fatalf("got %d routes, want 15", len(infos))
	}
	if infos[0].Path != "/" || infos[0].Redirect != "/home" {
		t.Errorf("first route = %+v", infos[0])
	}
	if infos[1].Name != "home" || infos[1].Lazy {
		t.Errorf("home route = %+v, want eager", infos[1])
	}
	for _, info := range infos[2:] {
		if !info.Lazy {
			t.Errorf("route %s should be lazy", info.Name)
		}
	}
}

func TestResolveEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("param route", func(t *testing.T) {
		rec := get(t, s, "/api/resolve?to="+url.QueryEscape("/product/42?from=home"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
		}
		var info ResolutionInfo
		if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if info.Name != "product" || info.Params["id"] != "42" || info.Meta.Index != 3 {
			t.Errorf("resolution = %+v", info)
		}
		if info.Href != "/#/product/42?from=home" {
			t.Errorf("Href = %q", info.Href)
		}
	})

	t.Run("root redirects", func(t *testing.T) {
		rec := get(t, s, "/api/resolve")
		var info ResolutionInfo
		if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if info.Path != "/home" || info.RedirectedFrom != "/" {
			t.Errorf("resolution = %+v", info)
		}
	})

	tests := []struct {
		name   string
		to     string
		status int
		code   string
	}{
		{"unknown path", "/does-not-exist", http.StatusNotFound, "E201"},
		{"escapes root", "/../etc", http.StatusBadRequest, "E202"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/api/resolve?to="+url.QueryEscape(tt.to))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.code)
			}
		})
	}
}

func TestViewEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/view?to="+url.QueryEscape("/product/7"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("X-Route-Name"); got != "product" {
		t.Errorf("X-Route-Name = %q", got)
	}
	if got := rec.Header().Get("X-Route-Index"); got != "3" {
		t.Errorf("X-Route-Index = %q", got)
	}
	if !strings.Contains(rec.Body.String(), `data-id="7"`) {
		t.Errorf("body = %s", rec.Body)
	}

	rec = get(t, s, "/view")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "page-home") {
		t.Errorf("root view: status %d body %s", rec.Code, rec.Body)
	}

	rec = get(t, s, "/view?to=/nowhere")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unresolved view status = %d, want 404", rec.Code)
	}
}

func TestViewEndpointMissingBundle(t *testing.T) {
	s := newTestServer(t, view.NewFSStore(fstest.MapFS{}, "views"))

	rec := get(t, s, "/view?to=/cart")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"E300"`) {
		t.Errorf("body = %s", rec.Body)
	}

	// The eager home view never touches the store.
	rec = get(t, s, "/view?to=/home")
	if rec.Code != http.StatusOK {
		t.Errorf("home status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output missing go_goroutines")
	}

	s, err := New(storefront.New(storefront.DefaultStore()), &ServerConfig{Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	if rec := get(t, s, "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("metrics without path: status = %d, want 404", rec.Code)
	}
}

func TestWithDefaults(t *testing.T) {
	var nilCfg *ServerConfig
	cfg := nilCfg.withDefaults()
	if cfg.Address != "localhost:8080" || cfg.Base != "/" || cfg.Logger == nil {
		t.Errorf("nil config defaults = %+v", cfg)
	}

	in := &ServerConfig{Address: ":9000", HeartbeatInterval: time.Second}
	out := in.withDefaults()
	if out == in {
		t.Fatal("withDefaults returned the input")
	}
	if out.Address != ":9000" || out.HeartbeatInterval != time.Second {
		t.Errorf("set fields overwritten: %+v", out)
	}
	if out.WriteWait != 10*time.Second || out.MaxMessageSize != 4*1024 {
		t.Errorf("unset fields not filled: %+v", out)
	}
	if in.WriteWait != 0 {
		t.Error("withDefaults modified its receiver")
	}
}

func TestSameOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://shop.example", true},
		{"https://shop.example", true},
		{"http://evil.example", false},
		{"://bad", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "http://shop.example/ws", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if got := sameOrigin(req); got != tt.want {
			t.Errorf("sameOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestShutdownWithoutListener(t *testing.T) {
	s := newTestServer(t, nil)
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
