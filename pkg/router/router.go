package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/vango-dev/mall/pkg/history"
	"github.com/vango-dev/mall/pkg/route"
	"github.com/vango-dev/mall/pkg/routepath"
)

// maxRedirects bounds redirect chains during resolution.
const maxRedirects = 8

// Options configures a Router.
type Options struct {
	// History receives committed locations. Defaults to history.NewHash("/").
	History history.History

	// Routes is the route table. It is validated by New.
	Routes route.Table

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Middleware runs around every navigation.
	Middleware []Middleware
}

// Router matches locations against a route table and drives navigations.
//
// Resolution is a synchronous tree lookup. A navigation additionally loads
// the matched view (at most one deferred load) and then commits the new
// location to history. Starting a navigation supersedes the one in flight:
// its context is cancelled and it never commits.
//
// A Router is safe for concurrent use. Routers built from the same table
// share deferred view caches.
type Router struct {
	routes   route.Table
	root     *node
	patterns map[string]route.Pattern
	history  history.History
	logger   *slog.Logger

	mu         sync.Mutex
	middleware []Middleware
	seq        uint64
	cancel     context.CancelFunc
	current    *Resolution
}

// New validates the table and builds a router.
func New(opts Options) (*Router, error) {
	if err := opts.Routes.Validate(); err != nil {
		return nil, err
	}

	r := &Router{
		routes:     opts.Routes,
		root:       newNode(""),
		patterns:   make(map[string]route.Pattern, len(opts.Routes)),
		history:    opts.History,
		logger:     opts.Logger,
		middleware: append([]Middleware(nil), opts.Middleware...),
	}
	if r.history == nil {
		r.history = history.NewHash("/")
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	for i := range r.routes {
		rt := &r.routes[i]
		r.root.insert(rt)
		if rt.Name != "" {
			r.patterns[rt.Name] = route.ParsePattern(rt.Path)
		}
	}
	return r, nil
}

// Use appends navigation middleware.
func (r *Router) Use(mw ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw...)
}

// Routes returns the route table.
func (r *Router) Routes() route.Table {
	return r.routes
}

// History returns the router's history.
func (r *Router) History() history.History {
	return r.history
}

// Current returns the committed resolution, nil before the first navigation.
func (r *Router) Current() *Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Resolve matches a location without navigating. Redirects are followed and
// the original query and hash are kept. When nothing matches, the returned error wraps
// ErrUnresolved.
func (r *Router) Resolve(target string) (*Resolution, error) {
	res, err := r.resolve(target)
	if err != nil {
		return nil, err
	}
	if !res.Matched() {
		return nil, fmt.Errorf("%w: %s", ErrUnresolved, res.FullPath)
	}
	return res, nil
}

// resolve returns an unmatched Resolution (Route == nil) instead of an
// error for locations that are valid but unknown.
func (r *Router) resolve(target string) (*Resolution, error) {
	loc, err := routepath.Normalize(target)
	if err != nil {
		return nil, wrapLocation(target, err)
	}
	query, err := url.ParseQuery(loc.Query)
	if err != nil {
		return nil, wrapLocation(target, err)
	}

	var redirectedFrom string
	for hops := 0; ; hops++ {
		params := make(map[string]string)
		rt, ok := r.root.match(routepath.Segments(loc.Path), params)
		if !ok {
			return &Resolution{
				Path:           loc.Path,
				FullPath:       loc.String(),
				Params:         params,
				Query:          query,
				Hash:           loc.Hash,
				RedirectedFrom: redirectedFrom,
			}, nil
		}

		if !rt.IsRedirect() {
			return &Resolution{
				Route:          rt,
				Name:           rt.Name,
				Path:           loc.Path,
				FullPath:       loc.String(),
				Params:         params,
				Query:          query,
				Meta:           rt.Meta,
				Hash:           loc.Hash,
				RedirectedFrom: redirectedFrom,
			}, nil
		}

		if hops >= maxRedirects {
			return nil, fmt.Errorf("%w: %s", ErrRedirectLoop, target)
		}
		if redirectedFrom == "" {
			redirectedFrom = loc.String()
		}
		next, err := routepath.Normalize(rt.Redirect)
		if err != nil {
			return nil, wrapLocation(rt.Redirect, err)
		}
		if next.Query == "" {
			next.Query = loc.Query
		}
		if next.Hash == "" {
			next.Hash = loc.Hash
		}
		loc = next
	}
}

// URLFor builds the location of a named route.
func (r *Router) URLFor(name string, params map[string]string, query url.Values) (string, error) {
	p, ok := r.patterns[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}
	return p.Build(params, query)
}

// Href builds the link a browser must follow to reach a named route
// ("/#/product/42" in hash mode).
func (r *Router) Href(name string, params map[string]string, query url.Values) (string, error) {
	loc, err := r.URLFor(name, params, query)
	if err != nil {
		return "", err
	}
	return r.history.Href(loc), nil
}

// navigate runs one navigation: resolve, run middleware around the view
// load, then commit unless superseded.
func (r *Router) navigate(parent context.Context, kind Kind, target string, delta int) (*Navigation, error) {
	to, err := r.resolve(target)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	r.mu.Lock()
	r.seq++
	id := r.seq
	if r.cancel != nil {
		r.cancel()
	}
	r.cancel = cancel
	from := r.current
	mw := r.middleware
	r.mu.Unlock()

	nav := &Navigation{
		ID:        id,
		Kind:      kind,
		From:      from,
		To:        to,
		State:     StateResolving,
		Direction: Transition(from, to),
		ctx:       ctx,
		delta:     delta,
	}

	start := time.Now()
	err = compose(nav, mw, func() error { return r.mount(nav) })
	r.finish(nav, err)

	r.logger.Debug("navigation",
		"id", nav.ID,
		"kind", string(nav.Kind),
		"to", nav.Target(),
		"route", nav.To.Name,
		"state", nav.State.String(),
		"direction", string(nav.Direction),
		"duration", time.Since(start),
	)
	if nav.State == StateFailed {
		r.logger.Warn("navigation failed", "to", nav.Target(), "error", nav.Err)
	}

	return nav, nav.Err
}

// mount resolves the matched view.
func (r *Router) mount(nav *Navigation) error {
	if !nav.To.Matched() {
		return fmt.Errorf("%w: %s", ErrUnresolved, nav.To.FullPath)
	}
	v, err := nav.To.Route.Component.Resolve(nav.Context())
	if err != nil {
		if ctxErr := nav.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: route %s: %w", ErrLoadFailed, nav.To.Name, err)
	}
	nav.View = v
	return nil
}

// finish sets the final state and commits the location when the
// navigation is still the latest one.
func (r *Router) finish(nav *Navigation, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if nav.ID != r.seq {
		nav.State = StateSuperseded
		nav.Err = fmt.Errorf("%w: %s", ErrSuperseded, nav.Target())
		nav.View = nil
		return
	}
	r.cancel = nil

	switch {
	case err == nil:
		nav.State = StateMounted
	case errors.Is(err, ErrUnresolved):
		nav.State = StateUnresolved
		nav.Err = err
	default:
		nav.State = StateFailed
		nav.Err = err
		nav.View = nil
		return
	}

	r.current = nav.To
	switch nav.Kind {
	case KindPush:
		if r.history.Location() != nav.To.FullPath {
			r.history.Push(nav.To.FullPath)
		}
	case KindReplace:
		r.history.Replace(nav.To.FullPath)
	case KindPop:
		if _, err := r.history.Go(nav.delta); err != nil {
			r.history.Push(nav.To.FullPath)
		} else if nav.To.RedirectedFrom != "" {
			r.history.Replace(nav.To.FullPath)
		}
	}
}

func wrapLocation(target string, err error) error {
	return fmt.Errorf("%w %q: %w", ErrInvalidLocation, target, err)
}
