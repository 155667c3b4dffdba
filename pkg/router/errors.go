package router

import "errors"

// Navigation errors.
var (
	// ErrUnresolved is returned when no route matches a location.
	// The storefront table declares no catch-all route; the navigation
	// still commits with an empty view.
	ErrUnresolved = errors.New("no route matches location")

	// ErrLoadFailed wraps failures of a deferred view load.
	ErrLoadFailed = errors.New("view load failed")

	// ErrSuperseded is returned when a newer navigation started before
	// this one committed.
	ErrSuperseded = errors.New("navigation superseded")

	// ErrRouteNotFound is returned for unknown route names.
	ErrRouteNotFound = errors.New("route not found")

	// ErrInvalidLocation is returned for locations that cannot be
	// normalized (path escapes root, bad escapes, absolute URLs).
	ErrInvalidLocation = errors.New("invalid location")

	// ErrRedirectLoop is returned when redirects do not settle.
	ErrRedirectLoop = errors.New("too many redirects")
)
