package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseETagStrongAndWeak(t *testing.T) {
	strong, ok := ParseETag(`"v1"`)
	require.True(t, ok)
	assert.False(t, strong.Weak)
	assert.Equal(t, "v1", strong.Value)

	weak, ok := ParseETag(`W/"v1"`)
	require.True(t, ok)
	assert.True(t, weak.Weak)
}

func TestParseETagRejectsUnquoted(t *testing.T) {
	_, ok := ParseETag("v1")
	assert.False(t, ok, "an unquoted value is not a valid ETag per RFC 9110")
}

func TestETagStrongEquals(t *testing.T) {
	a, _ := ParseETag(`"v1"`)
	b, _ := ParseETag(`"v1"`)
	weak, _ := ParseETag(`W/"v1"`)

	assert.True(t, a.StrongEquals(b))
	assert.False(t, a.StrongEquals(weak), "a weak tag never strong-matches, even with the same value")
}

func TestETagWeakEquals(t *testing.T) {
	a, _ := ParseETag(`"v1"`)
	weak, _ := ParseETag(`W/"v1"`)

	assert.True(t, a.WeakEquals(weak))
}

func TestParseETagListStar(t *testing.T) {
	tags, star := parseETagList("*")
	assert.True(t, star)
	assert.Nil(t, tags)
}

func TestParseETagListMultiple(t *testing.T) {
	tags, star := parseETagList(`"v1", "v2", W/"v3"`)
	require.False(t, star)
	require.Len(t, tags, 3)
	assert.Equal(t, "v1", tags[0].Value)
	assert.True(t, tags[2].Weak)
}

func TestParseHTTPDateAllThreeForms(t *testing.T) {
	imf, ok := parseHTTPDate("Sun, 06 Nov 1994 08:49:37 GMT")
	require.True(t, ok)

	rfc850, ok := parseHTTPDate("Sunday, 06-Nov-94 08:49:37 GMT")
	require.True(t, ok)

	asctime, ok := parseHTTPDate("Sun Nov  6 08:49:37 1994")
	require.True(t, ok)

	assert.Equal(t, imf, rfc850)
	assert.Equal(t, imf, asctime)
}

func TestFormatHTTPDateRoundTrips(t *testing.T) {
	t1, ok := parseHTTPDate("Sun, 06 Nov 1994 08:49:37 GMT")
	require.True(t, ok)

	formatted := formatHTTPDate(t1)

	t2, ok := parseHTTPDate(formatted)
	require.True(t, ok)
	assert.Equal(t, t1, t2)
}
