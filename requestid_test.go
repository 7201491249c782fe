package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDGeneratorProducesDistinctIDs(t *testing.T) {
	gen := NewIDGenerator("test")

	a := gen.Next()
	b := gen.Next()

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 16)
}
