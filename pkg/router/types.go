package router

import (
	"context"
	"net/url"

	"github.com/vango-dev/mall/pkg/route"
	"github.com/vango-dev/mall/pkg/view"
)

// Resolution is a location resolved against the route table.
type Resolution struct {
	// Route is the matched descriptor, nil when the location is unresolved.
	Route *route.Route

	// Name is the matched route name.
	Name string

	// Path is the canonical path after redirects.
	Path string

	// FullPath is Path plus the query string and hash.
	FullPath string

	// Params are the decoded path parameters.
	Params map[string]string

	// Query is the parsed query string.
	Query url.Values

	// Hash is the in-page anchor without "#".
	Hash string

	// Meta is the matched route's metadata.
	Meta route.Meta

	// RedirectedFrom is the location originally requested when a redirect
	// was followed.
	RedirectedFrom string
}

// Matched reports whether a route was found.
func (r *Resolution) Matched() bool {
	return r != nil && r.Route != nil
}

// ViewData builds the data a mounted view receives.
func (r *Resolution) ViewData(dir Direction) view.Data {
	return view.Data{
		Route:     r.Name,
		Path:      r.Path,
		Params:    r.Params,
		Query:     r.Query,
		Index:     r.Meta.Index,
		Direction: string(dir),
	}
}

// State is the lifecycle state of a navigation.
type State int

const (
	// StateResolving means the route is matched and the view may be loading.
	StateResolving State = iota
	// StateMounted means the view is active.
	StateMounted
	// StateUnresolved means no route matched.
	StateUnresolved
	// StateFailed means the deferred view could not be loaded.
	StateFailed
	// StateSuperseded means a newer navigation won.
	StateSuperseded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateMounted:
		return "mounted"
	case StateUnresolved:
		return "unresolved"
	case StateFailed:
		return "failed"
	case StateSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Kind is how a navigation updates history.
type Kind string

const (
	KindPush    Kind = "push"
	KindReplace Kind = "replace"
	KindPop     Kind = "pop"
)

// Navigation is one in-flight or finished navigation.
type Navigation struct {
	// ID increases with every navigation started on a router.
	ID uint64

	// Kind is push, replace or pop.
	Kind Kind

	// From is the resolution that was current when the navigation started.
	// Nil for the first navigation.
	From *Resolution

	// To is the target resolution.
	To *Resolution

	// State is updated as the navigation progresses.
	State State

	// Direction is the transition derived from the meta indexes.
	Direction Direction

	// View is the mounted view once State is StateMounted.
	View view.View

	// Err is the error the navigation ended with, if any.
	Err error

	ctx   context.Context
	delta int
}

// Context returns the navigation context. It is cancelled when the
// navigation is superseded.
func (n *Navigation) Context() context.Context {
	return n.ctx
}

// SetContext replaces the navigation context. Middleware uses it to
// attach values such as trace spans for the rest of the chain.
func (n *Navigation) SetContext(ctx context.Context) {
	n.ctx = ctx
}

// Target returns the location the navigation is heading to.
func (n *Navigation) Target() string {
	if n.To == nil {
		return ""
	}
	return n.To.FullPath
}

// Middleware runs around the view load of every navigation.
type Middleware interface {
	// Handle processes the navigation and optionally calls next.
	// Returning an error aborts the navigation.
	Handle(nav *Navigation, next func() error) error
}

// MiddlewareFunc is a function adapter for Middleware.
type MiddlewareFunc func(nav *Navigation, next func() error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(nav *Navigation, next func() error) error {
	return f(nav, next)
}
