package router

import (
	"context"
	"net/url"
)

// NavigateOptions configures a navigation.
type NavigateOptions struct {
	// Replace overwrites the current history entry instead of pushing.
	Replace bool

	// Query is merged into the target's query string.
	Query url.Values
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithQuery adds query parameters to the target.
func WithQuery(q url.Values) NavigateOption {
	return func(o *NavigateOptions) {
		o.Query = q
	}
}

// Navigate moves to target ("/product/42", "/order?status=1").
func (r *Router) Navigate(ctx context.Context, target string, opts ...NavigateOption) (*Navigation, error) {
	var options NavigateOptions
	for _, opt := range opts {
		opt(&options)
	}

	if len(options.Query) > 0 {
		u, err := url.Parse(target)
		if err != nil {
			return nil, wrapLocation(target, err)
		}
		q := u.Query()
		for k, vs := range options.Query {
			q[k] = vs
		}
		u.RawQuery = q.Encode()
		target = u.String()
	}

	kind := KindPush
	if options.Replace {
		kind = KindReplace
	}
	return r.navigate(ctx, kind, target, 0)
}

// Push navigates to target and appends a history entry.
func (r *Router) Push(ctx context.Context, target string) (*Navigation, error) {
	return r.navigate(ctx, KindPush, target, 0)
}

// Replace navigates to target and overwrites the current history entry.
func (r *Router) Replace(ctx context.Context, target string) (*Navigation, error) {
	return r.navigate(ctx, KindReplace, target, 0)
}

// PushNamed navigates to a route by name.
//
//	r.PushNamed(ctx, "product", map[string]string{"id": "42"}, nil)
func (r *Router) PushNamed(ctx context.Context, name string, params map[string]string, query url.Values) (*Navigation, error) {
	target, err := r.URLFor(name, params, query)
	if err != nil {
		return nil, err
	}
	return r.navigate(ctx, KindPush, target, 0)
}

// Back navigates to the previous history entry.
func (r *Router) Back(ctx context.Context) (*Navigation, error) {
	return r.Go(ctx, -1)
}

// Forward navigates to the next history entry.
func (r *Router) Forward(ctx context.Context) (*Navigation, error) {
	return r.Go(ctx, 1)
}

// Go navigates delta entries through history.
func (r *Router) Go(ctx context.Context, delta int) (*Navigation, error) {
	target, err := r.history.Peek(delta)
	if err != nil {
		return nil, err
	}
	return r.navigate(ctx, KindPop, target, delta)
}

// Sync navigates to the location addressed by a full browser URL, as
// reported by the client after a hashchange. Moving to the entry directly
// behind or ahead of the current one is treated as back or forward.
//
// A hashchange does not say how it happened, so following a link to the
// entry directly behind the current one also counts as back. The browser
// pushed a new entry in that case while this history only moved its
// cursor, and the two stacks differ from then on until the next push.
func (r *Router) Sync(ctx context.Context, rawURL string) (*Navigation, error) {
	loc, err := r.history.Parse(rawURL)
	if err != nil {
		return nil, wrapLocation(rawURL, err)
	}
	if loc == r.history.Location() && r.Current() != nil {
		return r.navigate(ctx, KindReplace, loc, 0)
	}
	for _, delta := range []int{-1, 1} {
		if entry, err := r.history.Peek(delta); err == nil && entry == loc {
			return r.navigate(ctx, KindPop, loc, delta)
		}
	}
	return r.navigate(ctx, KindPush, loc, 0)
}

// Start performs the initial navigation to the history's current location.
func (r *Router) Start(ctx context.Context) (*Navigation, error) {
	return r.navigate(ctx, KindReplace, r.history.Location(), 0)
}
