package route

import (
	"fmt"
	"strings"

	"github.com/vango-dev/mall/pkg/routepath"
)

// Table is an ordered list of route descriptors.
// It is immutable once handed to a router.
type Table []Route

// ValidationError lists every problem found in a table.
type ValidationError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid route table: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid route table (%d problems): %s",
		len(e.Problems), strings.Join(e.Problems, "; "))
}

// Validate checks the table invariants:
//   - paths are canonical, unique ignoring case and have well-formed parameters
//   - names are unique; only redirect entries may omit a name
//   - "/" redirects
//   - each entry has exactly one of component or redirect
//   - redirect targets are declared, non-redirecting paths
func (t Table) Validate() error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	paths := make(map[string]int, len(t))
	names := make(map[string]int, len(t))
	shapes := make(map[string]string, len(t))
	rootSeen := false

	for i := range t {
		r := &t[i]

		if err := checkPattern(r.Path); err != nil {
			addf("route %d (%s): %v", i, r.Path, err)
		}
		shape := patternShape(r.Path)
		if prev, ok := paths[r.Path]; ok {
			addf("route %d: duplicate path %q (first declared at %d)", i, r.Path, prev)
		} else {
			paths[r.Path] = i
			if other, ok := shapes[shape]; ok {
				addf("route %d: path %q is ambiguous with %q", i, r.Path, other)
			}
		}
		if _, ok := shapes[shape]; !ok {
			shapes[shape] = r.Path
		}

		switch {
		case r.Name != "":
			if prev, ok := names[r.Name]; ok {
				addf("route %d: duplicate name %q (first declared at %d)", i, r.Name, prev)
			} else {
				names[r.Name] = i
			}
		case !r.IsRedirect():
			addf("route %d (%s): missing name", i, r.Path)
		}

		hasView := !r.Component.IsZero()
		switch {
		case hasView && r.IsRedirect():
			addf("route %d (%s): has both a component and a redirect", i, r.Path)
		case !hasView && !r.IsRedirect():
			addf("route %d (%s): has neither a component nor a redirect", i, r.Path)
		}

		if r.Path == "/" {
			rootSeen = true
			if !r.IsRedirect() {
				addf("route %d: root path must redirect", i)
			}
		}
	}

	if !rootSeen {
		addf("no root (/) route declared")
	}

	for i := range t {
		r := &t[i]
		if !r.IsRedirect() {
			continue
		}
		target, ok := paths[r.Redirect]
		if !ok {
			addf("route %d (%s): redirect target %q is not declared", i, r.Path, r.Redirect)
			continue
		}
		if t[target].IsRedirect() {
			addf("route %d (%s): redirect target %q redirects again", i, r.Path, r.Redirect)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Lookup returns the route with the given name.
func (t Table) Lookup(name string) (*Route, bool) {
	for i := range t {
		if t[i].Name == name && name != "" {
			return &t[i], true
		}
	}
	return nil, false
}

// Names returns route names in declaration order, skipping unnamed routes.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for i := range t {
		if t[i].Name != "" {
			names = append(names, t[i].Name)
		}
	}
	return names
}

// checkPattern verifies a route path is canonical with well-formed params.
func checkPattern(path string) error {
	loc, err := routepath.Normalize(path)
	if err != nil {
		return err
	}
	if loc.Changed || loc.Query != "" || loc.Hash != "" {
		return fmt.Errorf("path is not canonical (want %q)", loc.Path)
	}

	seen := make(map[string]bool)
	for _, seg := range routepath.Segments(path) {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := seg[1:]
		if name == "" {
			return fmt.Errorf("empty parameter name")
		}
		if strings.ContainsAny(name, ":*") {
			return fmt.Errorf("invalid parameter name %q", name)
		}
		if seen[name] {
			return fmt.Errorf("duplicate parameter %q", name)
		}
		seen[name] = true
	}
	return nil
}

// patternShape replaces parameter names with ":" and lowercases static
// segments, so "/a/:x", "/A/:y" and "/a/:z" compare equal.
func patternShape(path string) string {
	segs := routepath.Segments(path)
	for i, seg := range segs {
		if strings.HasPrefix(seg, ":") {
			segs[i] = ":"
		} else {
			segs[i] = strings.ToLower(seg)
		}
	}
	return "/" + strings.Join(segs, "/")
}
