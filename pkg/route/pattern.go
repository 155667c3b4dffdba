package route

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/vango-dev/mall/pkg/routepath"
)

// ErrMissingParam is returned when building a URL without a required param.
var ErrMissingParam = errors.New("missing route parameter")

// Segment is one piece of a parsed pattern.
type Segment struct {
	Param bool   // true for ":name" segments
	Value string // static text or parameter name
}

// Pattern is a parsed route path used to build URLs from params.
type Pattern struct {
	Segments []Segment
}

// ParsePattern splits a route path into static and parameter segments.
// "/product/:id" -> [{product} {:id}]
func ParsePattern(path string) Pattern {
	raw := routepath.Segments(path)
	segs := make([]Segment, 0, len(raw))
	for _, s := range raw {
		if strings.HasPrefix(s, ":") {
			segs = append(segs, Segment{Param: true, Value: s[1:]})
		} else {
			segs = append(segs, Segment{Value: s})
		}
	}
	return Pattern{Segments: segs}
}

// Params returns the parameter names in order.
func (p Pattern) Params() []string {
	var names []string
	for _, s := range p.Segments {
		if s.Param {
			names = append(names, s.Value)
		}
	}
	return names
}

// Build fills in params and appends the encoded query.
func (p Pattern) Build(params map[string]string, query url.Values) (string, error) {
	var b strings.Builder
	for _, s := range p.Segments {
		b.WriteByte('/')
		if !s.Param {
			b.WriteString(s.Value)
			continue
		}
		v, ok := params[s.Value]
		if !ok || v == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingParam, s.Value)
		}
		b.WriteString(url.PathEscape(v))
	}
	if b.Len() == 0 {
		b.WriteByte('/')
	}
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String(), nil
}
