// Package storefront declares the mall route table: fifteen entries
// binding storefront paths to their views and meta indexes.
package storefront

import (
	"embed"

	"github.com/vango-dev/mall/pkg/route"
	"github.com/vango-dev/mall/pkg/view"
)

//go:embed home.html
var homeSource string

//go:embed views/*.html
var bundles embed.FS

// Home is the only view compiled into the initial bundle.
const Home = "home"

// DefaultStore serves the view bundles embedded in the binary.
func DefaultStore() *view.FSStore {
	return view.NewFSStore(bundles, "views")
}

// New returns the storefront route table. Deferred views are fetched from
// store on first navigation. Each call returns a table with its own load
// caches; routers sharing one table share its loaded views.
func New(store view.Store) route.Table {
	lazy := func(name string) route.Component {
		return route.Lazy(view.TemplateLoader(store, name))
	}

	return route.Table{
		{Path: "/", Redirect: "/home"},
		{Path: "/home", Name: Home, Component: route.Eager(view.MustTemplate(Home, homeSource)), Meta: route.Meta{Index: 1}},
		{Path: "/login", Name: "login", Component: lazy("login"), Meta: route.Meta{Index: 1}},
		{Path: "/user", Name: "user", Component: lazy("user"), Meta: route.Meta{Index: 1}},
		{Path: "/product-list", Name: "product-list", Component: lazy("product-list"), Meta: route.Meta{Index: 2}},
		{Path: "/category", Name: "category", Component: lazy("category"), Meta: route.Meta{Index: 1}},
		{Path: "/product/:id", Name: "product", Component: lazy("product"), Meta: route.Meta{Index: 3}},
		{Path: "/cart", Name: "cart", Component: lazy("cart"), Meta: route.Meta{Index: 1}},
		{Path: "/create-order", Name: "create-order", Component: lazy("create-order"), Meta: route.Meta{Index: 2}},
		{Path: "/address", Name: "address", Component: lazy("address"), Meta: route.Meta{Index: 2}},
		{Path: "/address-edit", Name: "address-edit", Component: lazy("address-edit"), Meta: route.Meta{Index: 3}},
		{Path: "/order", Name: "order", Component: lazy("order"), Meta: route.Meta{Index: 2}},
		{Path: "/order-detail", Name: "order-detail", Component: lazy("order-detail"), Meta: route.Meta{Index: 3}},
		{Path: "/setting", Name: "setting", Component: lazy("setting"), Meta: route.Meta{Index: 2}},
		{Path: "/about", Name: "about", Component: lazy("about"), Meta: route.Meta{Index: 2}},
	}
}
