package relay

import (
	"fmt"
	"strings"

	"github.com/relayhttp/relay/content"
)

// Renderer and Parser are aliases for the content package's negotiation
// interfaces, kept at root scope so route and application code can refer
// to them without importing content directly.
type Renderer = content.Renderer
type Parser = content.Parser

// Handler serves a matched request. It receives the resolved dependency
// values for the parameter names declared at registration (see
// `Route.DependencyNames`) and returns either a handler result (any value,
// serialized by the chosen renderer) or a `*Response` to use verbatim, plus
// an error.
type Handler func(deps map[string]any) (any, error)

// Route is an immutable route-table entry. It is created at registration
// time (`App.GET`, `App.POST`, ...) and never mutated afterward, per §3's
// lifecycle invariant.
type Route struct {
	Method  Method
	Path    string // the "{name}"-templated path, e.g. "/docs/{id}"
	Handler Handler

	// DependencyNames are the handler's declared parameter names, in
	// declaration order. They drive both handler argument resolution
	// and the per-route state-callback pre-binding of §4.7.
	DependencyNames []string

	// Renderers/Parsers are route-local overrides; nil means "use the
	// application defaults".
	Renderers []Renderer
	Parsers   []Parser

	// Callbacks holds the state-callback providers pre-bound for this
	// route, keyed by the provider name that was found among
	// DependencyNames (e.g. "etag", "authorized", "resource_exists").
	Callbacks map[string]*Provider

	segments []routeSegment
}

type routeSegment struct {
	literal string
	isParam bool
	name    string
}

func compileSegments(path string) ([]routeSegment, error) {
	if path == "" || path[0] != '/' {
		return nil, fmt.Errorf("relay: path %q must start with /", path)
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 1 && parts[0] == "" {
		return []routeSegment{}, nil
	}

	segs := make([]routeSegment, 0, len(parts))
	seen := map[string]bool{}

	for _, p := range parts {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") && len(p) > 2 {
			name := p[1 : len(p)-1]
			if seen[name] {
				return nil, fmt.Errorf("relay: duplicate path param %q in %q", name, path)
			}

			seen[name] = true
			segs = append(segs, routeSegment{isParam: true, name: name})
		} else {
			segs = append(segs, routeSegment{literal: p})
		}
	}

	return segs, nil
}

// match reports whether path matches the route's template, and if so
// returns the captured path params.
func (rt *Route) match(path string) (map[string]string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 1 && parts[0] == "" {
		parts = []string{}
	}

	if len(parts) != len(rt.segments) {
		return nil, false
	}

	params := make(map[string]string, len(rt.segments))

	for i, seg := range rt.segments {
		if seg.isParam {
			params[seg.name] = parts[i]
			continue
		}

		if seg.literal != parts[i] {
			return nil, false
		}
	}

	return params, true
}

// Router is the route registry (C2). Routes are matched in registration
// order; the first matching route wins (§4.1 tie-break rule), and a
// secondary query (otherMethods) answers "does any route match this path
// under some other method" to discriminate 404 from 405.
type Router struct {
	routes []*Route
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{}
}

// Add registers a route. Path must use "{name}" placeholders for single
// path segments; there is no wildcard/regex support (§1 Non-goals).
func (rt *Router) Add(method Method, path string, handler Handler, depNames []string) (*Route, error) {
	segs, err := compileSegments(path)
	if err != nil {
		return nil, err
	}

	route := &Route{
		Method:          method,
		Path:            path,
		Handler:         handler,
		DependencyNames: depNames,
		Callbacks:       map[string]*Provider{},
		segments:        segs,
	}

	rt.routes = append(rt.routes, route)

	return route, nil
}

// Match returns the first route (in registration order) whose method and
// path both match, along with the captured path params.
func (rt *Router) Match(method Method, path string) (*Route, map[string]string, bool) {
	for _, route := range rt.routes {
		if route.Method != method {
			continue
		}

		if params, ok := route.match(path); ok {
			return route, params, true
		}
	}

	return nil, nil, false
}

// OtherMethods returns the set of methods (in registration order, deduped)
// that would match path under a different method than method. Used by
// RouteExists (B13) to choose between 404 and 405.
func (rt *Router) OtherMethods(path string, method Method) []Method {
	var out []Method
	seen := map[Method]bool{}

	for _, route := range rt.routes {
		if route.Method == method {
			continue
		}

		if _, ok := route.match(path); ok {
			if !seen[route.Method] {
				seen[route.Method] = true
				out = append(out, route.Method)
			}
		}
	}

	return out
}

// Routes returns every registered route, in registration order. Exposed
// for introspection (e.g. a route-table-driven OpenAPI generator, out of
// scope for the core per §1 but supported by this surface).
func (rt *Router) Routes() []*Route {
	return rt.routes
}
