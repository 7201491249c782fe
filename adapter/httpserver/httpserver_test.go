package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayhttp/relay"
)

func newTestEngine(t *testing.T) *relay.Engine {
	t.Helper()

	app := relay.New(relay.DefaultConfig(), nil)

	_, err := app.GET("/widgets", func(map[string]any) (any, error) {
		return map[string]string{"name": "widget"}, nil
	}, nil)
	require.NoError(t, err)

	_, err = app.HEAD("/widgets", func(map[string]any) (any, error) {
		return map[string]string{"name": "widget"}, nil
	}, nil)
	require.NoError(t, err)

	engine, err := app.Freeze()
	require.NoError(t, err)

	return engine
}

func TestServeHTTPDiscardsBodyOnHeadButKeepsContentLength(t *testing.T) {
	handler := &engineHandler{engine: newTestEngine(t)}

	getRec := httptest.NewRecorder()
	handler.ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, "/widgets", nil))
	require.Equal(t, 200, getRec.Code)
	require.NotEmpty(t, getRec.Body.Bytes())

	headRec := httptest.NewRecorder()
	handler.ServeHTTP(headRec, httptest.NewRequest(http.MethodHead, "/widgets", nil))
	assert.Equal(t, 200, headRec.Code)
	assert.Empty(t, headRec.Body.Bytes())
	assert.Equal(t, getRec.Header().Get("Content-Length"), headRec.Header().Get("Content-Length"))
}
