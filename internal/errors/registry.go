package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Config errors (E100-E199)

	"E100": {
		Category:   CategoryConfig,
		Message:    "Config file not found",
		Detail:     "The file passed with --config does not exist.",
		Suggestion: "Omit --config to run with defaults, or point it at an existing mall.json.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid config JSON",
		Detail:   "mall.json could not be parsed.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "mall.json parsed but one or more values are out of range.",
	},
	"E103": {
		Category:   CategoryConfig,
		Message:    "Unknown view source",
		Detail:     "views.source must be one of embed, disk or s3.",
		Suggestion: `Set "views": {"source": "embed"} to serve the built-in pages.`,
	},

	// Routing errors (E200-E299)

	"E200": {
		Category: CategoryRouting,
		Message:  "Route table invalid",
		Detail:   "The route table failed validation and the router was not created.",
	},
	"E201": {
		Category: CategoryRouting,
		Message:  "Location unresolved",
		Detail:   "No route matches the requested location. The blank page is shown.",
	},
	"E202": {
		Category:   CategoryRouting,
		Message:    "Invalid location",
		Detail:     "The location is not a clean absolute path.",
		Suggestion: "Locations start with / and contain no scheme, host, backslash or encoded slash.",
	},
	"E203": {
		Category: CategoryRouting,
		Message:  "Redirect loop",
		Detail:   "Following redirects did not reach a page.",
	},
	"E204": {
		Category: CategoryRouting,
		Message:  "Unknown route name",
		Detail:   "No route with this name is declared.",
	},
	"E205": {
		Category: CategoryRouting,
		Message:  "Navigation superseded",
		Detail:   "A newer navigation started before this one finished.",
	},
	"E206": {
		Category:   CategoryRouting,
		Message:    "No history entry",
		Detail:     "There is no entry to go back or forward to.",
		Suggestion: "Navigate to a page before going back.",
	},

	// View errors (E300-E399)

	"E300": {
		Category: CategoryView,
		Message:  "View bundle not found",
		Detail:   "The view store has no bundle for this route.",
	},
	"E301": {
		Category:   CategoryView,
		Message:    "View load failed",
		Detail:     "The deferred view could not be loaded. The next navigation to this route retries the load.",
		Suggestion: "Check that the bundle store is reachable.",
	},
	"E302": {
		Category: CategoryView,
		Message:  "View render failed",
		Detail:   "The view was loaded but rendering it returned an error.",
	},

	// CLI and server errors (E400-E499)

	"E400": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
	},
	"E401": {
		Category:   CategoryServer,
		Message:    "Server failed to start",
		Suggestion: "Check that the port is free or pass --port.",
	},
	"E402": {
		Category: CategoryServer,
		Message:  "Shutdown timed out",
		Detail:   "Open connections did not drain within server.shutdownTimeout.",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
