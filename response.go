package relay

import "strconv"

// Response is built up during state-machine processing. Unlike `Request`,
// it is mutable: states, callbacks and handlers all write into the same
// instance as the request is processed.
type Response struct {
	StatusCode int
	Headers    Headers

	// Body is the serialized response body. It is set either directly by
	// a handler that returns a `*Response`, or by the renderer chosen
	// during ContentTypesAccepted (C4).
	Body []byte

	// ContentType caches the outgoing Content-Type, including the
	// charset parameter when the renderer declares one (§3 invariant 4).
	ContentType string
}

// NewResponse returns an empty Response with status 200 and no headers.
func NewResponse() *Response {
	return &Response{
		StatusCode: 200,
		Headers:    NewHeaders(),
	}
}

// SetBody sets Body and stamps Content-Length from its length. Per §3
// invariant 5, 204 and 304 responses must not carry a Content-Length.
func (r *Response) SetBody(body []byte) {
	r.Body = body

	if r.StatusCode == 204 || r.StatusCode == 304 {
		r.Headers.Delete("Content-Length")
		return
	}

	r.Headers.Set("Content-Length", strconv.Itoa(len(body)))
}

// WriteContentType sets the Content-Type header and the cached field
// together, so they can never disagree (§3 invariant 4).
func (r *Response) WriteContentType(mediaType, charset string) {
	ct := mediaType
	if charset != "" {
		ct += "; charset=" + charset
	}

	r.ContentType = ct
	r.Headers.Set("Content-Type", ct)
}

// AddVary appends a token to the Vary header if it isn't already present.
func (r *Response) AddVary(token string) {
	for _, v := range r.Headers.Values("Vary") {
		if v == token {
			return
		}
	}

	r.Headers.Append("Vary", token)
}
