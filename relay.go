package relay

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/relayhttp/relay/content"
)

// stateCallbackNames are the provider names the state machine consults as
// per-route hooks (§4.7). An application that never registers a provider
// under one of these names gets that state's default outcome and the
// corresponding skip-optimization log line, never an error.
var stateCallbackNames = []string{
	"service_available",
	"malformed_request",
	"authorized",
	"forbidden",
	"valid_content_headers",
	"resource_exists",
	"etag",
	"last_modified",
}

// RouteOptions carries the per-route overrides a registration call can
// set on top of the application defaults.
type RouteOptions struct {
	Renderers []Renderer
	Parsers   []Parser
}

// RouteOption mutates a RouteOptions; used as the variadic tail of the
// registration methods (App.GET, App.POST, ...).
type RouteOption func(*RouteOptions)

// WithRenderers overrides the renderer set for a single route (§4.3
// "route-local overrides first").
func WithRenderers(renderers ...Renderer) RouteOption {
	return func(o *RouteOptions) { o.Renderers = renderers }
}

// WithParsers overrides the parser set for a single route.
func WithParsers(parsers ...Parser) RouteOption {
	return func(o *RouteOptions) { o.Parsers = parsers }
}

// App is the builder applications use to register providers and routes.
// It is mutable during setup and is frozen into an immutable *Engine by
// Freeze, after which nothing about the route table or dependency graph
// may change (§3's lifecycle invariant, §9's "frozen runtime snapshot"
// design note).
type App struct {
	cfg Config

	router    *Router
	container *Container
	errors    *ErrorHandlerRegistry
	parsers   *content.ParserRegistry
	renderers *content.RendererRegistry
	logger    *zap.Logger

	providerNames []string // registration order, for RunStartupHandlers
	frozen        bool
}

// New returns an App seeded with the standard content parsers/renderers
// (§3 DOMAIN STACK) and the given configuration. Pass DefaultConfig() for
// the framework's own defaults.
func New(cfg Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &App{
		cfg:       cfg,
		router:    NewRouter(),
		container: NewContainer(),
		errors:    NewErrorHandlerRegistry(),
		logger:    logger,
		parsers: content.NewParserRegistry(
			content.JSONParser{},
			content.FormParser{},
			content.TextParser{},
			content.MultipartParser{},
		),
		renderers: content.NewRendererRegistry(
			content.JSONRenderer{},
			content.TextRenderer{},
		),
	}
}

// SetRenderers replaces the application-wide default renderer set.
func (a *App) SetRenderers(renderers ...Renderer) {
	a.renderers = content.NewRendererRegistry(renderers...)
}

// SetParsers replaces the application-wide default parser set.
func (a *App) SetParsers(parsers ...Parser) {
	a.parsers = content.NewParserRegistry(parsers...)
}

// Errors exposes the error handler registry so applications can register
// (status, Accept) overrides before Freeze (§4.4, C8).
func (a *App) Errors() *ErrorHandlerRegistry {
	return a.errors
}

// Provide registers a named dependency provider (§3, C5). Registering a
// reserved name is rejected: reserved names are never shadowable.
func (a *App) Provide(p *Provider) error {
	if a.frozen {
		return fmt.Errorf("relay: cannot register provider %q after Freeze", p.Name)
	}

	if IsReservedName(p.Name) {
		return fmt.Errorf("relay: %q is a reserved dependency name and cannot be overridden", p.Name)
	}

	a.container.Register(p)
	a.providerNames = append(a.providerNames, p.Name)

	return nil
}

// dependsOn reports whether route declared name among its handler's
// dependency names — the mechanism by which a state-callback provider
// (e.g. "etag") only takes effect on the routes that actually asked for
// it (§4.7).
func dependsOn(route *Route, name string) bool {
	for _, dep := range route.DependencyNames {
		if dep == name {
			return true
		}
	}

	return false
}

func (a *App) route(method Method, path string, handler Handler, depNames []string, opts []RouteOption) (*Route, error) {
	if a.frozen {
		return nil, fmt.Errorf("relay: cannot register route %s %s after Freeze", method, path)
	}

	options := RouteOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	route, err := a.router.Add(method, path, handler, depNames)
	if err != nil {
		return nil, err
	}

	route.Renderers = options.Renderers
	route.Parsers = options.Parsers

	return route, nil
}

// GET registers a route for the GET method. depNames declares, in order,
// the parameter names Handler expects resolved for it.
func (a *App) GET(path string, handler Handler, depNames []string, opts ...RouteOption) (*Route, error) {
	return a.route(GET, path, handler, depNames, opts)
}

// HEAD registers a route for the HEAD method.
func (a *App) HEAD(path string, handler Handler, depNames []string, opts ...RouteOption) (*Route, error) {
	return a.route(HEAD, path, handler, depNames, opts)
}

// POST registers a route for the POST method.
func (a *App) POST(path string, handler Handler, depNames []string, opts ...RouteOption) (*Route, error) {
	return a.route(POST, path, handler, depNames, opts)
}

// PUT registers a route for the PUT method.
func (a *App) PUT(path string, handler Handler, depNames []string, opts ...RouteOption) (*Route, error) {
	return a.route(PUT, path, handler, depNames, opts)
}

// PATCH registers a route for the PATCH method.
func (a *App) PATCH(path string, handler Handler, depNames []string, opts ...RouteOption) (*Route, error) {
	return a.route(PATCH, path, handler, depNames, opts)
}

// DELETE registers a route for the DELETE method.
func (a *App) DELETE(path string, handler Handler, depNames []string, opts ...RouteOption) (*Route, error) {
	return a.route(DELETE, path, handler, depNames, opts)
}

// OPTIONS registers a route for the OPTIONS method.
func (a *App) OPTIONS(path string, handler Handler, depNames []string, opts ...RouteOption) (*Route, error) {
	return a.route(OPTIONS, path, handler, depNames, opts)
}

// RouteSpec is one entry of a Batch registration call.
type RouteSpec struct {
	Method   Method
	Path     string
	Handler  Handler
	DepNames []string
	Opts     []RouteOption
}

// Batch registers many routes in one call, in slice order. Useful for
// routes generated programmatically (e.g. from a resource table) instead
// of one GET/POST call per route.
func (a *App) Batch(specs ...RouteSpec) error {
	for _, s := range specs {
		if _, err := a.route(s.Method, s.Path, s.Handler, s.DepNames, s.Opts); err != nil {
			return err
		}
	}

	return nil
}

// Freeze finalizes the App into an immutable Engine: it runs every
// session-scoped startup provider (§4.5 "Startup handlers") in
// registration order, binds each route's applicable state-callback
// providers, and returns the Engine adapters execute requests through.
// No further registration is possible afterward.
func (a *App) Freeze() (*Engine, error) {
	if a.frozen {
		return nil, fmt.Errorf("relay: App already frozen")
	}

	a.frozen = true

	if err := a.container.RunStartupHandlers(a.providerNames); err != nil {
		return nil, err
	}

	for _, route := range a.router.Routes() {
		for _, name := range stateCallbackNames {
			if !dependsOn(route, name) {
				continue
			}

			if p, ok := a.container.Provider(name); ok {
				route.Callbacks[name] = p
			}
		}
	}

	return &Engine{
		Router:       a.router,
		Container:    a.container,
		Errors:       a.errors,
		Parsers:      a.parsers,
		Renderers:    a.renderers,
		Logger:       a.logger,
		IDGen:        NewIDGenerator("relay"),
		MaxURILength: a.cfg.MaxURILength,
		AutoETag:     a.cfg.AutoETag,
	}, nil
}
