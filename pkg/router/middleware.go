package router

// compose builds a handler chain from middleware and a final handler.
// Middleware is executed in order (first to last), with the handler at the end.
func compose(nav *Navigation, mw []Middleware, handler func() error) error {
	chain := handler
	for i := len(mw) - 1; i >= 0; i-- {
		m := mw[i]
		next := chain
		chain = func() error {
			return m.Handle(nav, next)
		}
	}
	return chain()
}

// Chain creates a middleware that combines multiple middleware in order.
func Chain(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(nav *Navigation, next func() error) error {
		return compose(nav, middleware, next)
	})
}

// Only runs mw for navigations that satisfy condition and passes the rest
// straight through.
//
// Example:
//
//	// Require a session before any checkout page.
//	r.Use(router.Only(func(nav *router.Navigation) bool {
//	    return nav.To.Name == "create-order"
//	}, requireLogin))
func Only(condition func(nav *Navigation) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(nav *Navigation, next func() error) error {
		if !condition(nav) {
			return next()
		}
		return mw.Handle(nav, next)
	})
}

// Skip is the inverse of Only.
func Skip(condition func(nav *Navigation) bool, mw Middleware) Middleware {
	return Only(func(nav *Navigation) bool { return !condition(nav) }, mw)
}
