package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBodyTextDefaultsToUTF8(t *testing.T) {
	text, err := decodeBodyText([]byte("héllo"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "héllo", text)
}

func TestDecodeBodyTextFallsBackToLatin1(t *testing.T) {
	// 0xe9 is "é" in Latin-1 but is not valid standalone UTF-8.
	body := []byte{'c', 'a', 'f', 0xe9}

	text, err := decodeBodyText(body, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestDecodeBodyTextExplicitLatin1(t *testing.T) {
	body := []byte{'c', 'a', 'f', 0xe9}

	text, err := decodeBodyText(body, "text/plain; charset=iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestDecodeBodyTextEmpty(t *testing.T) {
	text, err := decodeBodyText(nil, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "", text)
}
