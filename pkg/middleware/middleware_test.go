package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/vango-dev/mall/pkg/route"
	"github.com/vango-dev/mall/pkg/router"
	"github.com/vango-dev/mall/pkg/view"
)

var errBrokenBundle = errors.New("bundle missing")

func testView(name string) view.View {
	return view.Func{ViewName: name}
}

// newTestRouter builds a small storefront table with one eager view, one
// lazy view and one lazy view that never loads.
func newTestRouter(t *testing.T, mw ...router.Middleware) *router.Router {
	t.Helper()
	r, err := router.New(router.Options{
		Routes: route.Table{
			{Path: "/", Redirect: "/home"},
			{Path: "/home", Name: "home", Component: route.Eager(testView("home")), Meta: route.Meta{Index: 1}},
			{Path: "/cart", Name: "cart", Component: route.Lazy(func(context.Context) (view.View, error) {
				return testView("cart"), nil
			}), Meta: route.Meta{Index: 1}},
			{Path: "/order", Name: "order", Component: route.Lazy(func(context.Context) (view.View, error) {
				return nil, errBrokenBundle
			}), Meta: route.Meta{Index: 2}},
		},
		Middleware: mw,
	})
	if err != nil {
		t.Fatalf("router.New: %v", err)
	}
	return r
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "mounted"},
		{router.ErrUnresolved, "unresolved"},
		{context.Canceled, "cancelled"},
		{context.DeadlineExceeded, "timeout"},
		{errors.Join(router.ErrLoadFailed, errBrokenBundle), "load_failed"},
		{errors.New("login required"), "error"},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err); got != tt.want {
			t.Errorf("categorizeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
