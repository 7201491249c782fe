package relay

// render converts any error (a *Error from the taxonomy, or a plain Go
// error from a handler/provider, classified as KindHandlerException) into
// a terminal Response via the resolved ErrorHandler (§4.4, §7).
// extraHeaders, if given, are merged onto the response before the body is
// set — used by MethodMismatch (B13/B9) to carry the computed Allow
// header.
func (e *Engine) render(err error, req *Request, requestID, traceID string, extraHeaders ...Headers) *Response {
	relayErr, ok := err.(*Error)
	if !ok {
		relayErr = &Error{Kind: KindHandlerException, Status: 500, Message: err.Error(), Cause: err}
	}

	accept := req.Header("Accept")
	handler := e.Errors.Resolve(relayErr.Status, accept)
	body, contentType := handler(relayErr, accept, requestID, traceID)

	res := NewResponse()
	res.StatusCode = relayErr.Status

	for _, hs := range extraHeaders {
		for k, vs := range hs {
			res.Headers.SetValues(k, vs)
		}
	}

	res.Headers.Set("Content-Type", contentType)
	res.ContentType = contentType
	res.SetBody(body)
	res.Headers.Set("X-Request-Id", requestID)

	if traceID != "" {
		res.Headers.Set("X-Trace-Id", traceID)
	}

	return res
}
