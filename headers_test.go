package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadersCaseInsensitive(t *testing.T) {
	h := NewHeaders()
	h.Set("Content-Type", "application/json")

	assert.Equal(t, "application/json", h.Get("content-type"))
	assert.True(t, h.Has("CONTENT-TYPE"))
}

func TestHeadersAppendPreservesOrder(t *testing.T) {
	h := NewHeaders()
	h.Append("Vary", "Accept")
	h.Append("Vary", "Accept-Encoding")

	assert.Equal(t, []string{"Accept", "Accept-Encoding"}, h.Values("vary"))
}

func TestHeadersClone(t *testing.T) {
	h := NewHeaders()
	h.Set("X-A", "1")

	clone := h.Clone()
	clone.Set("X-A", "2")

	assert.Equal(t, "1", h.Get("X-A"))
	assert.Equal(t, "2", clone.Get("X-A"))
}

func TestHeadersDelete(t *testing.T) {
	h := NewHeaders()
	h.Set("X-A", "1")
	h.Delete("x-a")

	assert.False(t, h.Has("X-A"))
}
