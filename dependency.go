package relay

import (
	"fmt"

	"golang.org/x/sync/singleflight"
)

// Scope controls how long a provider's resolved value is cached (§3, §4.5).
type Scope int

const (
	// ScopeRequest resets the cached value at the start of every request.
	ScopeRequest Scope = iota
	// ScopeSession memoizes the value once for the life of the process.
	ScopeSession
)

func (s Scope) String() string {
	if s == ScopeSession {
		return "session"
	}

	return "request"
}

// ProviderKind distinguishes the five provider flavors of §3's data model.
type ProviderKind int

const (
	ProviderKindPlain ProviderKind = iota
	ProviderKindValidation
	ProviderKindStateCallback
	ProviderKindAcceptsParser
	ProviderKindErrorRenderer
)

// ProviderFunc computes a provider's value from its own resolved
// dependencies, keyed by parameter name.
type ProviderFunc func(args map[string]any) (any, error)

// Provider is a named, cached dependency (§3 "Dependency provider"). Its
// Params are the names of the dependencies *it* needs, resolved
// recursively by the Container before Func is invoked.
type Provider struct {
	Name    string
	Scope   Scope
	Kind    ProviderKind
	Params  []string
	Func    ProviderFunc
	Startup bool // session-scope only; evaluated eagerly at app start
}

// Container is the dependency injection resolver (C5). One Container is
// shared by an entire App; it owns the long-lived session cache. Each
// request gets its own *RequestScope for request-scoped memoization.
type Container struct {
	providers map[string]*Provider

	sessionMu    singleflight.Group
	sessionCache map[string]any
	sessionDone  map[string]bool
}

// NewContainer returns an empty Container.
func NewContainer() *Container {
	return &Container{
		providers:    map[string]*Provider{},
		sessionCache: map[string]any{},
		sessionDone:  map[string]bool{},
	}
}

// Register adds a provider. Registering the same name twice replaces the
// earlier provider (last registration wins), matching a builder that is
// frozen only once at the end of setup.
func (c *Container) Register(p *Provider) {
	c.providers[p.Name] = p
}

// Provider returns the registered provider for name, if any.
func (c *Container) Provider(name string) (*Provider, bool) {
	p, ok := c.providers[name]
	return p, ok
}

// RunStartupHandlers eagerly evaluates every session-scoped provider
// marked Startup, in registration-name order given by names. Adapters call
// this once at process start (or, for a serverless adapter, at cold start)
// before the first request is dispatched (§4.5 "Startup handlers").
func (c *Container) RunStartupHandlers(names []string) error {
	for _, name := range names {
		p, ok := c.providers[name]
		if !ok || p.Scope != ScopeSession || !p.Startup {
			continue
		}

		scope := newRequestScope(nil)
		if _, err := c.resolve(name, scope); err != nil {
			return fmt.Errorf("relay: startup handler %q failed: %w", name, err)
		}
	}

	return nil
}

// CyclicDependencyError is raised when resolving a provider re-enters
// itself, directly or transitively (§4.5 step 5).
type CyclicDependencyError struct {
	Name string
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("relay: cyclic dependency on %q (path: %v)", e.Name, e.Path)
}

// UnresolvedDependencyError is raised when no provider and no reserved
// name matches the requested dependency (§4.5 step 4).
type UnresolvedDependencyError struct {
	Name string
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("relay: unresolved dependency %q", e.Name)
}

// RequestScope is the per-request resolution context (§3 "Request cache").
// It is created fresh for every request and discarded afterward; nothing
// in it is shared across requests.
type RequestScope struct {
	ctx *requestContext

	requestCache map[string]any
	resolving    map[string]bool
	order        []string
}

func newRequestScope(ctx *requestContext) *RequestScope {
	return &RequestScope{
		ctx:          ctx,
		requestCache: map[string]any{},
		resolving:    map[string]bool{},
	}
}

// Resolve implements §4.5's eight-step algorithm: reserved names,
// session cache, request cache, provider lookup, recursive parameter
// resolution with cycle detection, invocation, and scoped storage.
func (c *Container) Resolve(name string, scope *RequestScope) (any, error) {
	return c.resolve(name, scope)
}

func (c *Container) resolve(name string, scope *RequestScope) (any, error) {
	if scope.ctx != nil {
		if v, ok, err := resolveReserved(name, scope.ctx); ok || err != nil {
			return v, err
		}
	}

	if v, ok := c.sessionCache[name]; ok {
		return v, nil
	}

	if v, ok := scope.requestCache[name]; ok {
		return v, nil
	}

	p, ok := c.providers[name]
	if !ok {
		return nil, &UnresolvedDependencyError{Name: name}
	}

	if scope.resolving[name] {
		return nil, &CyclicDependencyError{Name: name, Path: append(append([]string{}, scope.order...), name)}
	}

	scope.resolving[name] = true
	scope.order = append(scope.order, name)

	args := make(map[string]any, len(p.Params))
	for _, param := range p.Params {
		v, err := c.resolve(param, scope)
		if err != nil {
			return nil, err
		}

		args[param] = v
	}

	delete(scope.resolving, name)

	value, err := c.callScoped(p, args, scope)
	if err != nil {
		return nil, err
	}

	return value, nil
}

// callScoped invokes the provider at most once per scope (§3 invariant 1
// and 2), storing the result in the session cache (write-once,
// double-checked via singleflight to keep concurrent lazy session
// providers safe per §5) or the per-request cache as appropriate.
func (c *Container) callScoped(p *Provider, args map[string]any, scope *RequestScope) (any, error) {
	if p.Scope == ScopeSession {
		if v, ok := c.sessionCache[p.Name]; ok {
			return v, nil
		}

		v, err, _ := c.sessionMu.Do(p.Name, func() (any, error) {
			if v, ok := c.sessionCache[p.Name]; ok {
				return v, nil
			}

			v, err := p.Func(args)
			if err != nil {
				return nil, err
			}

			c.sessionCache[p.Name] = v
			c.sessionDone[p.Name] = true

			return v, nil
		})

		return v, err
	}

	v, err := p.Func(args)
	if err != nil {
		return nil, err
	}

	scope.requestCache[p.Name] = v

	return v, nil
}
