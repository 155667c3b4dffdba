// Package route defines route descriptors: the declarative binding of a URL
// pattern to a view and its metadata.
//
// A table is plain data built once at startup:
//
//	table := route.Table{
//	    {Path: "/", Redirect: "/home"},
//	    {Path: "/home", Name: "home", Component: route.Eager(home), Meta: route.Meta{Index: 1}},
//	    {Path: "/product/:id", Name: "product", Component: route.Lazy(loadProduct), Meta: route.Meta{Index: 3}},
//	}
//
// Patterns are made of static segments and named parameters (":id").
package route

import (
	"context"
	"errors"

	"github.com/vango-dev/mall/pkg/view"
)

// Meta is static per-route metadata.
type Meta struct {
	// Index orders routes by navigation depth. The app shell compares the
	// indexes of the previous and next route to choose a transition.
	Index int `json:"index"`
}

// Route is a single route descriptor.
type Route struct {
	// Path is the URL pattern, e.g. "/product/:id".
	Path string

	// Name is the unique symbolic name used for programmatic navigation.
	Name string

	// Component resolves the view. Zero for redirect entries.
	Component Component

	// Meta is carried unchanged to resolved routes.
	Meta Meta

	// Redirect, when set, is substituted for Path before matching.
	Redirect string
}

// IsRedirect reports whether the route redirects instead of rendering.
func (r *Route) IsRedirect() bool {
	return r.Redirect != ""
}

// ErrNoComponent is returned when resolving a route without a view.
var ErrNoComponent = errors.New("route has no component")

// Component is either an eager view or a deferred loader.
type Component struct {
	eager    view.View
	deferred *view.Deferred
}

// Eager binds a view that is linked into the binary.
func Eager(v view.View) Component {
	return Component{eager: v}
}

// Lazy binds a loader that fetches the view on first navigation. The
// loaded view is cached on the component and shared by every router built
// from the same table.
func Lazy(load view.Loader) Component {
	return Component{deferred: view.NewDeferred(load)}
}

// IsZero reports whether no view is bound.
func (c Component) IsZero() bool {
	return c.eager == nil && c.deferred == nil
}

// IsLazy reports whether the view is loaded on demand.
func (c Component) IsLazy() bool {
	return c.deferred != nil
}

// Loaded reports whether the view is available without a fetch.
func (c Component) Loaded() bool {
	if c.deferred != nil {
		return c.deferred.Loaded()
	}
	return c.eager != nil
}

// Loads returns how many fetches the deferred view has started.
// Eager components report 0.
func (c Component) Loads() int {
	if c.deferred == nil {
		return 0
	}
	return c.deferred.Loads()
}

// Resolve returns the view, fetching it if it is deferred and not loaded.
func (c Component) Resolve(ctx context.Context) (view.View, error) {
	switch {
	case c.eager != nil:
		return c.eager, nil
	case c.deferred != nil:
		return c.deferred.Get(ctx)
	default:
		return nil, ErrNoComponent
	}
}
