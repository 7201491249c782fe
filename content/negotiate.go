package content

import (
	"strconv"
	"strings"
)

// acceptToken is one comma-separated entry of an Accept header.
type acceptToken struct {
	mediaType string // lowercased "type/subtype", possibly "*/*"
	quality   float64
}

// parseAccept splits an Accept header into tokens, parsing the optional
// "q" parameter (default 1.0) and ignoring all other parameters, per
// §4.3.
func parseAccept(accept string) []acceptToken {
	if strings.TrimSpace(accept) == "" {
		return nil
	}

	var tokens []acceptToken

	for _, part := range strings.Split(accept, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		fields := strings.Split(part, ";")
		mediaType := strings.ToLower(strings.TrimSpace(fields[0]))
		quality := 1.0

		for _, p := range fields[1:] {
			p = strings.TrimSpace(p)
			if !strings.HasPrefix(p, "q=") {
				continue
			}

			if q, err := strconv.ParseFloat(strings.TrimPrefix(p, "q="), 64); err == nil {
				quality = q
			}
		}

		tokens = append(tokens, acceptToken{mediaType: mediaType, quality: quality})
	}

	return tokens
}

// bestQuality returns the highest quality among tokens that match
// mediaType. "*/*" matches anything; an exact "type/subtype" token
// matches only the identical media type. Partial wildcards ("type/*")
// are deliberately not honored (§9 "Open questions": a preserved
// simplification from the source framework).
func bestQuality(mediaType string, tokens []acceptToken) (float64, bool) {
	best := -1.0
	matched := false

	for _, t := range tokens {
		if t.mediaType != "*/*" && t.mediaType != mediaType {
			continue
		}

		matched = true
		if t.quality > best {
			best = t.quality
		}
	}

	if !matched || best <= 0 {
		return 0, false
	}

	return best, true
}
