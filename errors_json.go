package relay

import "encoding/json"

func marshalErrorBody(body defaultErrorBody) []byte {
	b, err := json.Marshal(body)
	if err != nil {
		// body is always a plain struct of strings/slices; Marshal can
		// only fail here on a cyclic Details.Input, which the
		// validation providers never construct.
		return []byte(`{"error":"internal error rendering error body"}`)
	}

	return b
}
