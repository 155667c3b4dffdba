// Package routepath normalizes storefront navigation locations before they
// reach the route tree.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Location is a normalized navigation target.
type Location struct {
	// Path is the canonical path, always starting with "/".
	Path string

	// Query is the raw query string without the leading "?".
	Query string

	// Hash is the in-page anchor without the leading "#". It never takes
	// part in matching.
	Hash string

	// Changed reports whether normalization rewrote the path.
	Changed bool
}

// String rebuilds the location as path plus optional query and hash.
func (l Location) String() string {
	s := l.Path
	if l.Query != "" {
		s += "?" + l.Query
	}
	if l.Hash != "" {
		s += "#" + l.Hash
	}
	return s
}

// Location errors.
var (
	ErrInvalidPath           = errors.New("invalid path")
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in path parameter")
	ErrAbsoluteURL           = errors.New("navigation target must be a relative path")
)

// Normalize canonicalizes a location:
//   - empty input becomes "/"
//   - a missing leading slash is added
//   - repeated slashes collapse and "." segments are dropped
//   - ".." pops one segment and is rejected when it would leave the root
//   - a trailing slash is removed except on "/"
//
// A "#" ends the path and query; what follows is kept as Hash. Backslashes,
// NUL bytes and malformed percent escapes in the path are rejected. The
// query and hash are carried through untouched.
func Normalize(input string) (Location, error) {
	if input == "" {
		return Location{Path: "/", Changed: true}, nil
	}

	rest, hash, _ := strings.Cut(input, "#")
	raw, query, _ := strings.Cut(rest, "?")

	if strings.Contains(raw, "\\") {
		return Location{}, ErrBackslashInPath
	}
	if strings.Contains(raw, "\x00") || strings.Contains(strings.ToUpper(raw), "%00") {
		return Location{}, ErrNullByteInPath
	}
	if strings.Contains(raw, "%") {
		if err := checkEscapes(raw); err != nil {
			return Location{}, err
		}
	}

	kept := make([]string, 0, strings.Count(raw, "/")+1)
	for _, seg := range strings.Split(raw, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(kept) == 0 {
				return Location{}, ErrPathEscapesRoot
			}
			kept = kept[:len(kept)-1]
		default:
			kept = append(kept, seg)
		}
	}

	path := "/" + strings.Join(kept, "/")
	return Location{
		Path:    path,
		Query:   query,
		Hash:    hash,
		Changed: path != raw,
	}, nil
}

// NormalizeTarget validates a programmatic navigation target and returns it
// normalized. Targets must be site-relative: absolute and scheme-relative
// URLs are refused.
func NormalizeTarget(target string) (Location, error) {
	if strings.HasPrefix(target, "//") || strings.Contains(strings.SplitN(target, "/", 2)[0], ":") {
		return Location{}, ErrAbsoluteURL
	}
	if !strings.HasPrefix(target, "/") {
		return Location{}, ErrInvalidPath
	}
	return Normalize(target)
}

// checkEscapes verifies every '%' is followed by two hex digits.
func checkEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHex(path[i+1]) || !isHex(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// DecodeSegment unescapes one path segment. A decoded "/" is refused so a
// parameter such as a product id cannot smuggle extra path segments.
func DecodeSegment(segment string) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}

// Segments splits a canonical path into its raw segments.
// The root path has no segments.
func Segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
