package relay

import "strings"

// Group batches related route registrations under a shared path prefix
// and default RouteOptions, the same convenience the teacher's own route
// groups provide over one-route-at-a-time registration.
type Group struct {
	app    *App
	prefix string
	opts   []RouteOption
}

// Group returns a Group rooted at prefix (joined onto any parent prefix).
// opts are applied, in order, before any options passed to an individual
// route call within the group — so a route-level WithRenderers still
// wins (route-local overrides first, §4.3).
func (a *App) Group(prefix string, opts ...RouteOption) *Group {
	return &Group{app: a, prefix: strings.TrimSuffix(prefix, "/"), opts: opts}
}

// Group returns a nested Group under this one.
func (g *Group) Group(prefix string, opts ...RouteOption) *Group {
	return &Group{app: g.app, prefix: g.prefix + strings.TrimSuffix(prefix, "/"), opts: append(append([]RouteOption{}, g.opts...), opts...)}
}

func (g *Group) join(path string) string {
	if path == "/" {
		return g.prefix + "/"
	}

	return g.prefix + path
}

func (g *Group) route(method Method, path string, handler Handler, depNames []string, opts []RouteOption) (*Route, error) {
	merged := append(append([]RouteOption{}, g.opts...), opts...)
	return g.app.route(method, g.join(path), handler, depNames, merged)
}

// GET registers a GET route under the group's prefix.
func (g *Group) GET(path string, handler Handler, depNames []string, opts ...RouteOption) (*Route, error) {
	return g.route(GET, path, handler, depNames, opts)
}

// HEAD registers a HEAD route under the group's prefix.
func (g *Group) HEAD(path string, handler Handler, depNames []string, opts ...RouteOption) (*Route, error) {
	return g.route(HEAD, path, handler, depNames, opts)
}

// POST registers a POST route under the group's prefix.
func (g *Group) POST(path string, handler Handler, depNames []string, opts ...RouteOption) (*Route, error) {
	return g.route(POST, path, handler, depNames, opts)
}

// PUT registers a PUT route under the group's prefix.
func (g *Group) PUT(path string, handler Handler, depNames []string, opts ...RouteOption) (*Route, error) {
	return g.route(PUT, path, handler, depNames, opts)
}

// PATCH registers a PATCH route under the group's prefix.
func (g *Group) PATCH(path string, handler Handler, depNames []string, opts ...RouteOption) (*Route, error) {
	return g.route(PATCH, path, handler, depNames, opts)
}

// DELETE registers a DELETE route under the group's prefix.
func (g *Group) DELETE(path string, handler Handler, depNames []string, opts ...RouteOption) (*Route, error) {
	return g.route(DELETE, path, handler, depNames, opts)
}

// OPTIONS registers an OPTIONS route under the group's prefix.
func (g *Group) OPTIONS(path string, handler Handler, depNames []string, opts ...RouteOption) (*Route, error) {
	return g.route(OPTIONS, path, handler, depNames, opts)
}
