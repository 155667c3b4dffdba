// Package view defines storefront views and how their code is obtained.
//
// A view is either linked into the binary (eager) or fetched from a Store
// the first time a route needs it (deferred). Deferred views are loaded at
// most once per successful fetch and then reused:
//
//	store := view.NewDiskStore("views")
//	cart := view.NewDeferred(view.TemplateLoader(store, "cart"))
//
//	v, err := cart.Get(ctx) // fetches views/cart.html
//	v, err = cart.Get(ctx)  // cached
package view

import (
	"context"
	"io"
	"net/url"
)

// Data is what a view receives when it is mounted for a navigation.
type Data struct {
	// Route is the matched route name.
	Route string

	// Path is the canonical path that was matched.
	Path string

	// Params are the named path parameters (e.g. "id" for /product/:id).
	Params map[string]string

	// Query is the decoded query string of the location.
	Query url.Values

	// Index is the route's meta index.
	Index int

	// Direction is the transition direction ("forward", "back" or "none").
	Direction string
}

// Param returns a path parameter or "" if absent.
func (d Data) Param(name string) string {
	return d.Params[name]
}

// View renders a storefront page.
type View interface {
	// Name identifies the view, usually the bundle name it came from.
	Name() string

	// Render writes the view for the given navigation data.
	Render(ctx context.Context, w io.Writer, data Data) error
}

// Loader fetches a view's code. It is called by Deferred, never directly
// by the router.
type Loader func(ctx context.Context) (View, error)

// Func adapts a render function to the View interface.
type Func struct {
	ViewName string
	RenderFn func(ctx context.Context, w io.Writer, data Data) error
}

// Name implements View.
func (f Func) Name() string { return f.ViewName }

// Render implements View.
func (f Func) Render(ctx context.Context, w io.Writer, data Data) error {
	if f.RenderFn == nil {
		return nil
	}
	return f.RenderFn(ctx, w, data)
}
