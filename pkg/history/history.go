// Package history synchronizes navigation state with browser URLs.
//
// The storefront uses fragment-based addressing: the location lives after
// "#" ("/shop/#/product/42"), so the app can be served from any static path
// without server-side rewrite rules.
package history

import (
	"errors"
	"net/url"
	"strings"
	"sync"
)

// ErrNoEntry is returned by Go when the target entry does not exist.
var ErrNoEntry = errors.New("no history entry")

// History is the navigation stack a router commits locations to.
type History interface {
	// Base returns the path the app is served from.
	Base() string

	// Location returns the current location ("/path?query").
	Location() string

	// Push appends a location, dropping any forward entries.
	Push(loc string)

	// Replace overwrites the current location.
	Replace(loc string)

	// Go moves delta entries back (negative) or forward (positive) and
	// returns the new current location.
	Go(delta int) (string, error)

	// Peek returns the entry delta steps away without moving.
	Peek(delta int) (string, error)

	// Href returns the URL a link to loc must point at.
	Href(loc string) string

	// Parse extracts the location from a full browser URL.
	Parse(rawURL string) (string, error)
}

// Hash is a fragment-based History. It is safe for concurrent use.
type Hash struct {
	base string

	mu      sync.Mutex
	entries []string
	pos     int
}

// NewHash creates a hash history for an app served from base.
// An empty base means "/".
func NewHash(base string) *Hash {
	if base == "" {
		base = "/"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return &Hash{
		base:    base,
		entries: []string{"/"},
	}
}

// Base implements History.
func (h *Hash) Base() string { return h.base }

// Location implements History.
func (h *Hash) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.pos]
}

// Push implements History.
func (h *Hash) Push(loc string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.pos+1], loc)
	h.pos++
}

// Replace implements History.
func (h *Hash) Replace(loc string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.pos] = loc
}

// Go implements History.
func (h *Hash) Go(delta int) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	next := h.pos + delta
	if next < 0 || next >= len(h.entries) {
		return "", ErrNoEntry
	}
	h.pos = next
	return h.entries[h.pos], nil
}

// Peek implements History.
func (h *Hash) Peek(delta int) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	next := h.pos + delta
	if next < 0 || next >= len(h.entries) {
		return "", ErrNoEntry
	}
	return h.entries[next], nil
}

// Len returns the number of entries in the stack.
func (h *Hash) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Href implements History.
func (h *Hash) Href(loc string) string {
	if !strings.HasPrefix(loc, "/") {
		loc = "/" + loc
	}
	return h.base + "#" + loc
}

// Parse implements History. The location is the fragment; a query inside
// the fragment belongs to the location, a query before "#" does not.
// A second "#" starts the location's own anchor and is kept verbatim.
// A URL without a fragment addresses "/".
func (h *Hash) Parse(rawURL string) (string, error) {
	if _, err := url.Parse(rawURL); err != nil {
		return "", err
	}
	_, frag, _ := strings.Cut(rawURL, "#")
	loc, anchor, hasAnchor := strings.Cut(frag, "#")

	if loc != "" {
		u, err := url.Parse("#" + loc)
		if err != nil {
			return "", err
		}
		loc = u.EscapedFragment()
	}
	if !strings.HasPrefix(loc, "/") {
		loc = "/" + loc
	}
	if hasAnchor && anchor != "" {
		loc += "#" + anchor
	}
	return loc, nil
}
