package relay

import (
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/relayhttp/relay/content"
)

// maxTransitions guards against a misbehaving callback chain looping the
// decision machine forever (§5 "Concurrency & resource model", the
// transition-count invariant). No correct request ever approaches it; 14
// states with recursive dependency resolution never revisits a state.
const maxTransitions = 50

// Engine ties the route table, dependency container, and content
// negotiation registries together into the single entrypoint every
// adapter calls: Execute. It is built once by App.Freeze and is safe for
// concurrent use by many goroutines, one per in-flight request.
type Engine struct {
	Router    *Router
	Container *Container
	Errors    *ErrorHandlerRegistry
	Parsers   *content.ParserRegistry
	Renderers *content.RendererRegistry
	Logger    *zap.Logger
	IDGen     *IDGenerator

	// MaxURILength, when non-zero, is the limit enforced by UriTooLong
	// (B10). Zero means unlimited.
	MaxURILength int

	// AutoETag, when true, derives a weak ETag from the rendered response
	// body whenever no `etag` state-callback is registered for the
	// matched route, the way the teacher's response writer auto-derives
	// ETags from response bytes.
	AutoETag bool
}

func (e *Engine) log() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}

	return zap.NewNop()
}

// Execute runs the full decision state machine (§4.7, C7) for req and
// returns the resulting Response. It never panics on application error:
// handler/provider/callback failures are classified and rendered through
// the error handler registry instead.
func (e *Engine) Execute(req *Request) *Response {
	res := NewResponse()

	requestID := e.IDGen.Next()
	traceID := req.Header("X-Trace-Id")
	if traceID == "" {
		traceID = requestID
	}

	res.Headers.Set("X-Request-Id", requestID)

	ctx := newRequestContext(req, res, requestID, traceID)
	scope := newRequestScope(ctx)

	transitions := 0
	logger := e.log().With(zap.String("request_id", requestID), zap.String("method", string(req.Method)), zap.String("path", req.Path))

	step := func(state string) error {
		transitions++
		logger.Debug("relay: state", zap.String("state", state), zap.Int("transition", transitions))

		if transitions > maxTransitions {
			return fmt.Errorf("relay: exceeded %d state transitions", maxTransitions)
		}

		return nil
	}

	route, terminal := e.runPipeline(req, res, ctx, scope, step, logger)
	if terminal != nil {
		return e.finalize(terminal, requestID, traceID)
	}

	return e.executeAndRenderRecover(route, req, res, scope, requestID, traceID, logger)
}

// executeAndRenderRecover wraps executeAndRender with a panic recovery
// boundary, converting a panicking handler or provider into a 500
// KindHandlerException response instead of crashing the adapter's
// goroutine — the same safety net the teacher's Recover middleware gives
// every request.
func (e *Engine) executeAndRenderRecover(route *Route, req *Request, res *Response, scope *RequestScope, requestID, traceID string, logger *zap.Logger) (result *Response) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("relay: recovered panic", zap.Any("panic", r))
			result = e.render(fmt.Errorf("relay: panic: %v", r), req, requestID, traceID)
		}
	}()

	return e.executeAndRender(route, req, res, scope, requestID, traceID, logger)
}

// runPipeline walks B13 through C4, returning either the matched route (to
// proceed to ExecuteAndRender) or a terminal *Response/error-derived
// response for anything that short-circuits earlier.
func (e *Engine) runPipeline(req *Request, res *Response, ctx *requestContext, scope *RequestScope, step func(string) error, logger *zap.Logger) (*Route, *Response) {
	if err := step("B13:RouteExists"); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	}

	route, pathParams, ok := e.Router.Match(req.Method, req.Path)
	if !ok {
		others := e.Router.OtherMethods(req.Path, req.Method)
		if len(others) > 0 {
			allow := NewResponse()
			allow.StatusCode = 405

			for _, m := range others {
				allow.Headers.Append("Allow", string(m))
			}

			return nil, e.render(NewError(KindMethodMismatch, "method not allowed"), req, ctx.requestID, ctx.traceID, allow.Headers)
		}

		return nil, e.render(NewError(KindRouteMiss, "no matching route"), req, ctx.requestID, ctx.traceID)
	}

	req.PathParams = pathParams

	if err := step("B12:ServiceAvailable"); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	}

	if available, present, err := e.invokeBool(route, "service_available", scope); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	} else if present && !available {
		return nil, e.render(NewError(KindServiceUnavailable, "service unavailable"), req, ctx.requestID, ctx.traceID)
	} else if !present {
		logger.Debug("relay: skip B12, no service_available callback")
	}

	if err := step("B11:KnownMethod"); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	}

	if !knownMethods[req.Method] {
		return nil, e.render(NewError(KindUnknownMethod, "unknown method"), req, ctx.requestID, ctx.traceID)
	}

	if err := step("B10:UriTooLong"); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	}

	if e.MaxURILength > 0 && len(req.RawPath) > e.MaxURILength {
		return nil, e.render(NewError(KindURITooLong, "request-target too long"), req, ctx.requestID, ctx.traceID)
	}

	if err := step("B9:MethodAllowed"); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	}
	// route.Method == req.Method is already guaranteed by Router.Match.

	if err := step("B8:MalformedRequest"); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	}

	if malformed, present, err := e.invokeBool(route, "malformed_request", scope); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	} else if present && malformed {
		return nil, e.render(NewError(KindMalformed, "malformed request"), req, ctx.requestID, ctx.traceID)
	} else if !present {
		logger.Debug("relay: skip B8, no malformed_request callback")
	}

	if err := step("B7:Authorized"); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	}

	if authorized, present, err := e.invokeBool(route, "authorized", scope); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	} else if present && !authorized {
		return nil, e.render(NewError(KindUnauthorized, "unauthorized"), req, ctx.requestID, ctx.traceID)
	} else if !present {
		logger.Debug("relay: skip B7, no authorized callback")
	}

	if err := step("B6:Forbidden"); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	}

	if forbidden, present, err := e.invokeBool(route, "forbidden", scope); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	} else if present && forbidden {
		return nil, e.render(NewError(KindForbidden, "forbidden"), req, ctx.requestID, ctx.traceID)
	} else if !present {
		logger.Debug("relay: skip B6, no forbidden callback")
	}

	if err := step("B5:ContentHeadersValid"); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	}

	if valid, present, err := e.invokeBool(route, "valid_content_headers", scope); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	} else if present && !valid {
		return nil, e.render(NewError(KindInvalidContentHeaders, "invalid content headers"), req, ctx.requestID, ctx.traceID)
	} else if !present {
		logger.Debug("relay: skip B5, no valid_content_headers callback")
	}

	if err := step("G7:ResourceExists"); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	}

	exists, existsPresent, err := e.invokeBool(route, "resource_exists", scope)
	if err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	}

	if !existsPresent {
		logger.Debug("relay: skip G7, no resource_exists callback")
		exists = true
	}

	if !exists {
		// A conditional request with If-Match (including "*") against a
		// resource that does not exist fails the precondition (412)
		// rather than reporting 404: "*" asserts the resource exists, so
		// its absence is itself the mismatch, not a routing miss.
		if req.Header("If-Match") != "" {
			return nil, e.render(NewError(KindPreconditionFailed, "resource does not exist"), req, ctx.requestID, ctx.traceID)
		}

		return nil, e.render(NewError(KindResourceMiss, "resource not found"), req, ctx.requestID, ctx.traceID)
	}

	if term := e.runConditional(route, req, res, scope, step, logger, ctx); term != nil {
		return nil, term
	}

	if err := step("C3:ContentTypesProvided"); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	}

	renderers := e.Renderers
	if len(route.Renderers) > 0 {
		renderers = content.NewRendererRegistry(route.Renderers...)
	}

	if len(renderers.Renderers()) == 0 {
		return nil, e.render(NewError(KindNoRenderers, "route has no renderers configured"), req, ctx.requestID, ctx.traceID)
	}

	accept := req.Header("Accept")

	renderer, ok := renderers.Select(accept)
	if !ok {
		return nil, e.render(NewError(KindNotAcceptable, "no renderer acceptable to client"), req, ctx.requestID, ctx.traceID)
	}

	if accept != "" && strings.TrimSpace(accept) != "*/*" {
		res.AddVary("Accept")
	}

	if req.Header("Authorization") != "" {
		res.AddVary("Authorization")
	}

	ctx.selectedRenderer = renderer

	if err := step("C4:ContentTypesAccepted"); err != nil {
		return nil, e.render(err, req, ctx.requestID, ctx.traceID)
	}

	if len(req.Body) > 0 {
		parsers := e.Parsers
		if len(route.Parsers) > 0 {
			parsers = content.NewParserRegistry(route.Parsers...)
		}

		mediaType := req.ContentType()
		if mediaType == "" {
			mediaType = "text/plain"
		}

		if _, ok := parsers.Select(mediaType); !ok {
			return nil, e.render(NewError(KindUnsupportedMediaType, "unsupported media type "+mediaType), req, ctx.requestID, ctx.traceID)
		}
	}

	return route, nil
}

// runConditional implements G3/G4/G5/G6. It returns a non-nil terminal
// Response when a conditional header short-circuits the request (304 or
// 412); otherwise it returns nil and processing continues into content
// negotiation.
func (e *Engine) runConditional(route *Route, req *Request, res *Response, scope *RequestScope, step func(string) error, logger *zap.Logger, ctx *requestContext) *Response {
	etagVal, etagPresent, err := e.invokeString(route, "etag", scope)
	if err != nil {
		return e.render(err, req, ctx.requestID, ctx.traceID)
	}

	lastMod, lastModPresent, err := e.invokeTime(route, "last_modified", scope)
	if err != nil {
		return e.render(err, req, ctx.requestID, ctx.traceID)
	}

	if !etagPresent && !lastModPresent &&
		req.Header("If-Match") == "" && req.Header("If-None-Match") == "" &&
		req.Header("If-Unmodified-Since") == "" && req.Header("If-Modified-Since") == "" {
		logger.Debug("relay: skip G3-G6, no validators and no conditional headers")
		return nil
	}

	if etagPresent {
		res.Headers.Set("ETag", etagVal)
	}

	if lastModPresent {
		res.Headers.Set("Last-Modified", formatHTTPDate(lastMod))
	}

	if err := step("G3:IfMatch"); err != nil {
		return e.render(err, req, ctx.requestID, ctx.traceID)
	}

	if h := req.Header("If-Match"); h != "" && etagPresent {
		tags, star := parseETagList(h)
		cur, _ := ParseETag(etagVal)

		if !(star || matchesAnyStrong(cur, tags)) {
			return e.render(NewError(KindPreconditionFailed, "If-Match precondition failed"), req, ctx.requestID, ctx.traceID)
		}
	}

	if err := step("G4:IfUnmodifiedSince"); err != nil {
		return e.render(err, req, ctx.requestID, ctx.traceID)
	}

	if h := req.Header("If-Unmodified-Since"); h != "" && lastModPresent {
		if t, ok := parseHTTPDate(h); ok && lastMod.After(t) {
			return e.render(NewError(KindPreconditionFailed, "If-Unmodified-Since precondition failed"), req, ctx.requestID, ctx.traceID)
		}
	}

	if err := step("G5:IfNoneMatch"); err != nil {
		return e.render(err, req, ctx.requestID, ctx.traceID)
	}

	if h := req.Header("If-None-Match"); h != "" && etagPresent {
		tags, star := parseETagList(h)
		cur, _ := ParseETag(etagVal)

		if star || matchesAnyWeak(cur, tags) {
			if req.Method.IsSafe() {
				return e.notModified(res)
			}

			return e.render(NewError(KindPreconditionFailed, "If-None-Match precondition failed"), req, ctx.requestID, ctx.traceID)
		}
	}

	if err := step("G6:IfModifiedSince"); err != nil {
		return e.render(err, req, ctx.requestID, ctx.traceID)
	}

	if h := req.Header("If-Modified-Since"); h != "" && lastModPresent && req.Method.IsSafe() {
		if t, ok := parseHTTPDate(h); ok && !lastMod.After(t) {
			return e.notModified(res)
		}
	}

	return nil
}

func (e *Engine) notModified(res *Response) *Response {
	res.StatusCode = 304
	res.SetBody(nil)

	return res
}

// executeAndRender resolves the matched route's declared dependencies,
// invokes its handler, and serializes the result with the renderer chosen
// during C3 (§4.7 "ExecuteAndRender").
func (e *Engine) executeAndRender(route *Route, req *Request, res *Response, scope *RequestScope, requestID, traceID string, logger *zap.Logger) *Response {
	deps := make(map[string]any, len(route.DependencyNames))

	for _, name := range route.DependencyNames {
		v, err := e.Container.Resolve(name, scope)
		if err != nil {
			return e.render(err, req, requestID, traceID)
		}

		deps[name] = v
	}

	result, err := route.Handler(deps)
	if err != nil {
		return e.render(err, req, requestID, traceID)
	}

	if r, ok := result.(*Response); ok {
		return e.finalize(r, requestID, traceID)
	}

	renderer := scope.ctx.selectedRenderer
	if renderer == nil {
		renderer, _ = e.Renderers.Select(req.Header("Accept"))
	}

	body, err := renderer.Render(result)
	if err != nil {
		return e.render(err, req, requestID, traceID)
	}

	res.WriteContentType(renderer.MediaType(), renderer.Charset())
	res.SetBody(body)

	if e.AutoETag && res.Headers.Get("ETag") == "" && len(body) > 0 {
		res.Headers.Set("ETag", autoETag(body))
	}

	return e.finalize(res, requestID, traceID)
}

func (e *Engine) finalize(res *Response, requestID, traceID string) *Response {
	if res.Headers.Get("X-Request-Id") == "" {
		res.Headers.Set("X-Request-Id", requestID)
	}

	return res
}

// invokeBool resolves a boolean state-callback provider for route if one
// is registered under name, reporting present=false when it is not (the
// per-route conditional-state skip optimization, §4.7 design note: this
// changes only the log trace, never the decision outcome, since the
// caller substitutes the same default a present-but-trivial callback
// would have returned).
func (e *Engine) invokeBool(route *Route, name string, scope *RequestScope) (value bool, present bool, err error) {
	p, ok := route.Callbacks[name]
	if !ok {
		return false, false, nil
	}

	v, err := e.Container.Resolve(p.Name, scope)
	if err != nil {
		return false, true, err
	}

	b, _ := v.(bool)

	return b, true, nil
}

func (e *Engine) invokeString(route *Route, name string, scope *RequestScope) (value string, present bool, err error) {
	p, ok := route.Callbacks[name]
	if !ok {
		return "", false, nil
	}

	v, err := e.Container.Resolve(p.Name, scope)
	if err != nil {
		return "", true, err
	}

	s, _ := v.(string)

	return s, true, nil
}

func (e *Engine) invokeTime(route *Route, name string, scope *RequestScope) (value time.Time, present bool, err error) {
	p, ok := route.Callbacks[name]
	if !ok {
		return time.Time{}, false, nil
	}

	v, err := e.Container.Resolve(p.Name, scope)
	if err != nil {
		return time.Time{}, true, err
	}

	t, _ := v.(time.Time)

	return t, true, nil
}

// autoETag derives a weak ETag from response bytes via xxhash, the same
// fast-hash library the teacher's response writer uses for this purpose.
func autoETag(body []byte) string {
	return fmt.Sprintf(`W/"%x"`, xxhash.Sum64(body))
}
