package history

import (
	"errors"
	"testing"
)

func TestHashHref(t *testing.T) {
	tests := []struct {
		base string
		loc  string
		want string
	}{
		{"", "/cart", "/#/cart"},
		{"/", "/product/42", "/#/product/42"},
		{"/shop/", "/order?id=3", "/shop/#/order?id=3"},
		{"shop/", "home", "/shop/#/home"},
	}

	for _, tt := range tests {
		if got := NewHash(tt.base).Href(tt.loc); got != tt.want {
			t.Errorf("Href(%q) with base %q = %q, want %q", tt.loc, tt.base, got, tt.want)
		}
	}
}

func TestHashParse(t *testing.T) {
	h := NewHash("/shop/")
	tests := []struct {
		raw  string
		want string
	}{
		{"https://mall.example/shop/#/product/42", "/product/42"},
		{"https://mall.example/shop/?utm=x#/cart", "/cart"},
		{"https://mall.example/shop/#/product-list?keyword=phone", "/product-list?keyword=phone"},
		{"https://mall.example/shop/", "/"},
		{"/#home", "/home"},
		{"/#/product/a%20b", "/product/a%20b"},
		{"https://mall.example/shop/#/product/42#reviews", "/product/42#reviews"},
		{"https://mall.example/shop/#/product-list?keyword=phone#top", "/product-list?keyword=phone#top"},
		{"https://mall.example/shop/#/product/a%23b", "/product/a%23b"},
		{"https://mall.example/shop/##top", "/#top"},
	}

	for _, tt := range tests {
		got, err := h.Parse(tt.raw)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}

	if _, err := h.Parse("http://[::1"); err == nil {
		t.Error("expected error for malformed URL")
	}
}

func TestHashHrefParseRoundTrip(t *testing.T) {
	h := NewHash("/")
	for _, loc := range []string{"/home", "/product/42", "/order-detail?id=9", "/product/42#reviews"} {
		got, err := h.Parse("https://mall.example" + h.Href(loc))
		if err != nil || got != loc {
			t.Errorf("round trip %q -> %q, %v", loc, got, err)
		}
	}
}

func TestHashStack(t *testing.T) {
	h := NewHash("/")
	if h.Location() != "/" {
		t.Fatalf("initial Location() = %q", h.Location())
	}

	h.Push("/home")
	h.Push("/product/1")
	h.Push("/cart")
	if h.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", h.Len())
	}

	loc, err := h.Go(-2)
	if err != nil || loc != "/home" {
		t.Fatalf("Go(-2) = %q, %v", loc, err)
	}
	if next, _ := h.Peek(1); next != "/product/1" {
		t.Errorf("Peek(1) = %q", next)
	}

	// Pushing after going back drops forward entries.
	h.Push("/category")
	if _, err := h.Go(1); !errors.Is(err, ErrNoEntry) {
		t.Errorf("Go(1) after push error = %v, want ErrNoEntry", err)
	}
	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.Len())
	}

	h.Replace("/user")
	if h.Location() != "/user" {
		t.Errorf("Location() after Replace = %q", h.Location())
	}
	if _, err := h.Go(-10); !errors.Is(err, ErrNoEntry) {
		t.Errorf("Go(-10) error = %v, want ErrNoEntry", err)
	}
	if h.Location() != "/user" {
		t.Error("failed Go must not move the cursor")
	}
}
