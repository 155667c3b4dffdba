package view

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func TestBundleKey(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"cart", "cart.html", false},
		{"product-list", "product-list.html", false},
		{"", "", true},
		{"../secret", "", true},
		{"a/b", "", true},
		{`a\b`, "", true},
	}

	for _, tt := range tests {
		got, err := BundleKey(tt.name)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidViewName) {
				t.Errorf("BundleKey(%q) error = %v, want ErrInvalidViewName", tt.name, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("BundleKey(%q) = %q, %v; want %q", tt.name, got, err, tt.want)
		}
	}
}

func TestFSStoreOpen(t *testing.T) {
	fsys := fstest.MapFS{
		"views/cart.html": {Data: []byte("<h1>Cart</h1>")},
	}
	store := NewFSStore(fsys, "views")

	rc, err := store.Open(context.Background(), "cart")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "<h1>Cart</h1>" {
		t.Errorf("bundle = %q", data)
	}

	if _, err := store.Open(context.Background(), "order"); !errors.Is(err, ErrViewNotFound) {
		t.Errorf("missing bundle error = %v, want ErrViewNotFound", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Open(ctx, "cart"); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled Open error = %v, want context.Canceled", err)
	}
}

func TestDiskStoreWithTemplateLoader(t *testing.T) {
	dir := t.TempDir()
	src := `<h1>Product {{.Param "id"}}</h1>`
	if err := os.WriteFile(filepath.Join(dir, "product.html"), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewDiskStore(dir)
	if store.Root() != dir {
		t.Errorf("Root() = %q, want %q", store.Root(), dir)
	}

	v, err := TemplateLoader(store, "product")(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var buf bytes.Buffer
	err = v.Render(context.Background(), &buf, Data{Params: map[string]string{"id": "42"}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := buf.String(); got != "<h1>Product 42</h1>" {
		t.Errorf("Render = %q", got)
	}
}

func TestTemplateLoaderErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"broken.html": {Data: []byte("{{.Route")},
	}
	store := NewFSStore(fsys, ".")

	if _, err := TemplateLoader(store, "missing")(context.Background()); !errors.Is(err, ErrViewNotFound) {
		t.Errorf("missing: error = %v, want ErrViewNotFound", err)
	}
	_, err := TemplateLoader(store, "broken")(context.Background())
	if err == nil || !strings.Contains(err.Error(), "parsing view broken") {
		t.Errorf("broken: error = %v, want parse error", err)
	}
}

func TestTemplateEscapesParams(t *testing.T) {
	v := MustTemplate("product", `<p>{{.Param "id"}}</p>`)
	var buf bytes.Buffer
	if err := v.Render(context.Background(), &buf, Data{Params: map[string]string{"id": "<b>"}}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "<p>&lt;b&gt;</p>" {
		t.Errorf("Render = %q, want escaped output", got)
	}
}
