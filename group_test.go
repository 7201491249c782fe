package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupPrefixesRoutes(t *testing.T) {
	app := New(DefaultConfig(), nil)
	api := app.Group("/api")

	_, err := api.GET("/widgets", handlerOK, nil)
	require.NoError(t, err)

	engine, err := app.Freeze()
	require.NoError(t, err)

	res := engine.Execute(&Request{Method: GET, Path: "/api/widgets", RawPath: "/api/widgets", Headers: NewHeaders()})
	assert.Equal(t, 200, res.StatusCode)
}

func TestNestedGroupPrefixesRoutes(t *testing.T) {
	app := New(DefaultConfig(), nil)
	api := app.Group("/api")
	v1 := api.Group("/v1")

	_, err := v1.GET("/widgets", handlerOK, nil)
	require.NoError(t, err)

	engine, err := app.Freeze()
	require.NoError(t, err)

	res := engine.Execute(&Request{Method: GET, Path: "/api/v1/widgets", RawPath: "/api/v1/widgets", Headers: NewHeaders()})
	assert.Equal(t, 200, res.StatusCode)
}

func TestGroupRootPathJoin(t *testing.T) {
	app := New(DefaultConfig(), nil)
	api := app.Group("/api")

	_, err := api.GET("/", handlerOK, nil)
	require.NoError(t, err)

	engine, err := app.Freeze()
	require.NoError(t, err)

	res := engine.Execute(&Request{Method: GET, Path: "/api/", RawPath: "/api/", Headers: NewHeaders()})
	assert.Equal(t, 200, res.StatusCode)
}
