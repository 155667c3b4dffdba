// Package router is the navigation engine for the storefront route table.
//
// The router provides:
//   - A route tree for matching locations against route patterns
//   - Redirect handling (the query of the original location is kept)
//   - Parameter extraction ("/product/42" -> Params["id"] == "42")
//   - Navigations with deferred view loading and supersession
//   - Name-based URL building
//   - Middleware around every navigation
//
// # Navigation lifecycle
//
// Each navigation is Resolving until its view is available, then Mounted.
// A location that matches no route ends Unresolved: the location is still
// committed and no view is mounted. A deferred view that fails to load ends
// Failed and nothing is committed. When a newer navigation starts first,
// the older one ends Superseded.
//
// # Usage
//
//	r, err := router.New(router.Options{
//	    History: history.NewHash("/"),
//	    Routes:  storefront.Routes(store),
//	})
//
//	nav, err := r.Push(ctx, "/product/42")
//	// nav.To.Name == "product", nav.To.Params["id"] == "42"
//	// nav.View is the loaded product view
//
//	href, _ := r.Href("product", map[string]string{"id": "42"}, nil)
//	// "/#/product/42"
package router
