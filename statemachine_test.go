package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayhttp/relay/content"
)

func newTestEngine(t *testing.T) *App {
	t.Helper()
	return New(DefaultConfig(), nil)
}

func TestEngineServesSimpleRoute(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/widgets/{id}", func(deps map[string]any) (any, error) {
		params := deps["path_params"].(map[string]string)
		return map[string]any{"id": params["id"]}, nil
	}, []string{"path_params"})
	require.NoError(t, err)

	engine, err := app.Freeze()
	require.NoError(t, err)

	req := &Request{Method: GET, Path: "/widgets/42", RawPath: "/widgets/42", Headers: NewHeaders()}
	res := engine.Execute(req)

	assert.Equal(t, 200, res.StatusCode)
	assert.Contains(t, string(res.Body), "42")
}

func TestEngineRouteMiss404(t *testing.T) {
	app := newTestEngine(t)
	engine, err := app.Freeze()
	require.NoError(t, err)

	res := engine.Execute(&Request{Method: GET, Path: "/nope", RawPath: "/nope", Headers: NewHeaders()})
	assert.Equal(t, 404, res.StatusCode)
}

func TestEngineMethodMismatch405WithAllow(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/widgets", func(map[string]any) (any, error) { return "ok", nil }, nil)
	require.NoError(t, err)

	engine, err := app.Freeze()
	require.NoError(t, err)

	res := engine.Execute(&Request{Method: POST, Path: "/widgets", RawPath: "/widgets", Headers: NewHeaders()})
	assert.Equal(t, 405, res.StatusCode)
	assert.Equal(t, []string{"GET"}, res.Headers.Values("Allow"))
}

func TestEngineServiceUnavailable(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/widgets", func(map[string]any) (any, error) { return "ok", nil }, []string{"service_available"})
	require.NoError(t, err)

	require.NoError(t, app.Provide(&Provider{
		Name: "service_available",
		Func: func(map[string]any) (any, error) { return false, nil },
	}))

	engine, err := app.Freeze()
	require.NoError(t, err)

	res := engine.Execute(&Request{Method: GET, Path: "/widgets", RawPath: "/widgets", Headers: NewHeaders()})
	assert.Equal(t, 503, res.StatusCode)
}

func TestEngineAuthorizedFailureReturns401(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/secrets", func(map[string]any) (any, error) { return "top secret", nil }, []string{"authorized"})
	require.NoError(t, err)

	require.NoError(t, app.Provide(&Provider{
		Name: "authorized",
		Func: func(map[string]any) (any, error) { return false, nil },
	}))

	engine, err := app.Freeze()
	require.NoError(t, err)

	res := engine.Execute(&Request{Method: GET, Path: "/secrets", RawPath: "/secrets", Headers: NewHeaders()})
	assert.Equal(t, 401, res.StatusCode)
}

func TestEngineResourceMiss404(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/widgets/{id}", func(map[string]any) (any, error) { return "ok", nil }, []string{"resource_exists"})
	require.NoError(t, err)

	require.NoError(t, app.Provide(&Provider{
		Name: "resource_exists",
		Func: func(map[string]any) (any, error) { return false, nil },
	}))

	engine, err := app.Freeze()
	require.NoError(t, err)

	res := engine.Execute(&Request{Method: GET, Path: "/widgets/9", RawPath: "/widgets/9", Headers: NewHeaders()})
	assert.Equal(t, 404, res.StatusCode)
}

func TestEngineIfMatchOnMissingResourceReturns412Not404(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/widgets/{id}", func(map[string]any) (any, error) { return "ok", nil }, []string{"resource_exists"})
	require.NoError(t, err)

	require.NoError(t, app.Provide(&Provider{
		Name: "resource_exists",
		Func: func(map[string]any) (any, error) { return false, nil },
	}))

	engine, err := app.Freeze()
	require.NoError(t, err)

	headers := NewHeaders()
	headers.Set("If-Match", "*")

	res := engine.Execute(&Request{Method: GET, Path: "/widgets/9", RawPath: "/widgets/9", Headers: headers})
	assert.Equal(t, 412, res.StatusCode, "If-Match:* against a missing resource is a failed precondition, not a 404")
}

func TestEngineIfNoneMatchReturns304ForSafeMethod(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/widgets/{id}", func(map[string]any) (any, error) { return "ok", nil }, []string{"etag"})
	require.NoError(t, err)

	require.NoError(t, app.Provide(&Provider{
		Name: "etag",
		Func: func(map[string]any) (any, error) { return `"v1"`, nil },
	}))

	engine, err := app.Freeze()
	require.NoError(t, err)

	headers := NewHeaders()
	headers.Set("If-None-Match", `"v1"`)

	res := engine.Execute(&Request{Method: GET, Path: "/widgets/9", RawPath: "/widgets/9", Headers: headers})
	assert.Equal(t, 304, res.StatusCode)
	assert.Empty(t, res.Body)
}

func TestEngineNotAcceptable406(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/widgets", func(map[string]any) (any, error) { return "ok", nil }, nil)
	require.NoError(t, err)

	engine, err := app.Freeze()
	require.NoError(t, err)

	headers := NewHeaders()
	headers.Set("Accept", "application/x-does-not-exist")

	res := engine.Execute(&Request{Method: GET, Path: "/widgets", RawPath: "/widgets", Headers: headers})
	assert.Equal(t, 406, res.StatusCode)
}

func TestEngineNoRenderersConfigured500(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/widgets", func(map[string]any) (any, error) { return "ok", nil }, nil)
	require.NoError(t, err)

	engine, err := app.Freeze()
	require.NoError(t, err)

	engine.Renderers = content.NewRendererRegistry()

	res := engine.Execute(&Request{Method: GET, Path: "/widgets", RawPath: "/widgets", Headers: NewHeaders()})
	assert.Equal(t, 500, res.StatusCode, "an empty renderer set is a misconfiguration, distinct from a 406 Accept mismatch")
}

func TestEngineVaryAcceptOmittedForWildcard(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/widgets", func(map[string]any) (any, error) { return "ok", nil }, nil)
	require.NoError(t, err)

	engine, err := app.Freeze()
	require.NoError(t, err)

	headers := NewHeaders()
	headers.Set("Accept", "*/*")

	res := engine.Execute(&Request{Method: GET, Path: "/widgets", RawPath: "/widgets", Headers: headers})
	assert.Equal(t, 200, res.StatusCode)
	assert.NotContains(t, res.Headers.Values("Vary"), "Accept")
}

func TestEngineVaryAcceptSetForNonWildcard(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/widgets", func(map[string]any) (any, error) { return "ok", nil }, nil)
	require.NoError(t, err)

	engine, err := app.Freeze()
	require.NoError(t, err)

	headers := NewHeaders()
	headers.Set("Accept", "application/json")

	res := engine.Execute(&Request{Method: GET, Path: "/widgets", RawPath: "/widgets", Headers: headers})
	assert.Equal(t, 200, res.StatusCode)
	assert.Contains(t, res.Headers.Values("Vary"), "Accept")
}

func TestEngineVaryAuthorizationSetWhenHeaderPresent(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/widgets", func(map[string]any) (any, error) { return "ok", nil }, nil)
	require.NoError(t, err)

	engine, err := app.Freeze()
	require.NoError(t, err)

	headers := NewHeaders()
	headers.Set("Authorization", "Bearer x")

	res := engine.Execute(&Request{Method: GET, Path: "/widgets", RawPath: "/widgets", Headers: headers})
	assert.Equal(t, 200, res.StatusCode)
	assert.Contains(t, res.Headers.Values("Vary"), "Authorization")
}

func TestEngineStateCallbackOnlyBindsWhenDeclared(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/widgets/{id}", func(map[string]any) (any, error) { return "ok", nil }, []string{"etag"})
	require.NoError(t, err)

	_, err = app.GET("/gadgets/{id}", func(map[string]any) (any, error) { return "ok", nil }, nil)
	require.NoError(t, err)

	require.NoError(t, app.Provide(&Provider{
		Name: "etag",
		Func: func(map[string]any) (any, error) { return `"v1"`, nil },
	}))

	engine, err := app.Freeze()
	require.NoError(t, err)

	headers := NewHeaders()
	headers.Set("If-None-Match", `"v1"`)

	withETag := engine.Execute(&Request{Method: GET, Path: "/widgets/9", RawPath: "/widgets/9", Headers: headers})
	assert.Equal(t, 304, withETag.StatusCode, "the route declaring etag gets conditional processing")

	withoutETag := engine.Execute(&Request{Method: GET, Path: "/gadgets/9", RawPath: "/gadgets/9", Headers: headers})
	assert.Equal(t, 200, withoutETag.StatusCode, "a route that never declared etag must not pick up another route's conditional processing")
}

func TestEngineUnsupportedMediaType415(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/widgets", func(map[string]any) (any, error) { return "ok", nil }, nil)
	require.NoError(t, err)

	engine, err := app.Freeze()
	require.NoError(t, err)

	headers := NewHeaders()
	headers.Set("Content-Type", "application/x-unknown")

	res := engine.Execute(&Request{Method: GET, Path: "/widgets", RawPath: "/widgets", Headers: headers, Body: []byte("x")})
	assert.Equal(t, 415, res.StatusCode)
}

func TestEngineRecoversFromPanickingHandler(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/boom", func(map[string]any) (any, error) {
		panic("kaboom")
	}, nil)
	require.NoError(t, err)

	engine, err := app.Freeze()
	require.NoError(t, err)

	res := engine.Execute(&Request{Method: GET, Path: "/boom", RawPath: "/boom", Headers: NewHeaders()})
	assert.Equal(t, 500, res.StatusCode)
}

func TestEngineHandlerReturningResponseIsUsedVerbatim(t *testing.T) {
	app := newTestEngine(t)

	_, err := app.GET("/raw", func(map[string]any) (any, error) {
		res := NewResponse()
		res.StatusCode = 201
		res.SetBody([]byte("created"))
		return res, nil
	}, nil)
	require.NoError(t, err)

	engine, err := app.Freeze()
	require.NoError(t, err)

	res := engine.Execute(&Request{Method: GET, Path: "/raw", RawPath: "/raw", Headers: NewHeaders()})
	assert.Equal(t, 201, res.StatusCode)
	assert.Equal(t, "created", string(res.Body))
}
