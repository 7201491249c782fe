package relay

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeBodyText decodes a raw request body into a string using the
// charset parameter declared on contentType, defaulting to UTF-8 and
// falling back to Latin-1 (ISO-8859-1) when the declared/default charset
// does not produce valid text. This mirrors §3's data-model rule for
// `Request.body` decoding and the boundary behavior in §8 ("Charset
// fallback").
func decodeBodyText(body []byte, contentType string) (string, error) {
	if len(body) == 0 {
		return "", nil
	}

	_, params := parseMediaType(contentType)

	switch params["charset"] {
	case "", "utf-8", "utf8":
		if utf8.Valid(body) {
			return string(body), nil
		}

		return latin1Decode(body)
	case "iso-8859-1", "latin1":
		return latin1Decode(body)
	default:
		// Unknown declared charset: try UTF-8, then fall back the same
		// way the default case does rather than rejecting the request
		// outright.
		if utf8.Valid(body) {
			return string(body), nil
		}

		return latin1Decode(body)
	}
}

func latin1Decode(body []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
	if err != nil {
		return "", err
	}

	return string(out), nil
}
