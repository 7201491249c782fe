package relay

import "github.com/relayhttp/relay/content"

// reservedNames is the set of implicit dependency names every provider and
// handler may request without registering a provider for them (§3
// "Reserved dependency names"). Body-shaped names are parsed with their
// own parser without consulting the request's Content-Type: json_body
// fails with a parse error on a body that is not JSON, while form_body
// and text_body accept any body.
var reservedNames = map[string]bool{
	"request":         true,
	"path_params":      true,
	"query_params":     true,
	"request_headers":  true,
	"response_headers": true,
	"json_body":        true,
	"form_body":        true,
	"text_body":        true,
	"multipart_body":   true,
	"body":             true,
	"exception":        true,
	"request_id":       true,
	"trace_id":         true,
}

// IsReservedName reports whether name is one of the implicit dependency
// names, so application code registering a provider can refuse the
// collision up front instead of silently being shadowed.
func IsReservedName(name string) bool {
	return reservedNames[name]
}

// requestContext carries everything a reserved-name lookup or a
// state-callback provider needs for a single in-flight request. It is
// created once per request and discarded afterward, mirroring
// RequestScope's lifetime.
type requestContext struct {
	req *Request
	res *Response

	requestID string
	traceID   string

	// exception is returned for the "exception" reserved name when
	// non-nil. No code path in the engine assigns it, so the name is not
	// handled as reserved and falls through to provider lookup.
	exception error

	jsonBody      any
	jsonBodyDone  bool
	jsonBodyErr   error

	formBody     map[string][]string
	formBodyDone bool
	formBodyErr  error

	multipartBody     []content.Part
	multipartBodyDone bool
	multipartBodyErr  error

	// selectedRenderer is stashed by C3 so ExecuteAndRender does not have
	// to renegotiate Accept a second time.
	selectedRenderer content.Renderer
}

func newRequestContext(req *Request, res *Response, requestID, traceID string) *requestContext {
	return &requestContext{req: req, res: res, requestID: requestID, traceID: traceID}
}

// parseErrorFor wraps a body-parse failure as a *Error of KindParseError
// (422, §4.2 point 4 / §7 taxonomy), so a malformed body propagates as a
// request error instead of being mistaken for an unresolved dependency.
func parseErrorFor(name string, cause error) *Error {
	return &Error{
		Kind:    KindParseError,
		Status:  defaultStatus[KindParseError],
		Message: "failed to parse " + name + ": " + cause.Error(),
		Cause:   cause,
	}
}

// resolveReserved looks up name among the reserved dependency names,
// parsing the request body lazily and memoizing the result (§4.5 step 1
// takes priority over provider lookup, §3 invariant 3). A non-nil err
// means name was a reserved, body-shaped name whose lazy parse failed;
// callers must propagate it rather than falling through to provider
// lookup.
func resolveReserved(name string, ctx *requestContext) (value any, handled bool, err error) {
	switch name {
	case "request":
		return ctx.req, true, nil
	case "path_params":
		return ctx.req.PathParams, true, nil
	case "query_params":
		return ctx.req.QueryParams, true, nil
	case "request_headers":
		return ctx.req.Headers, true, nil
	case "response_headers":
		return ctx.res.Headers, true, nil
	case "body":
		return ctx.req.Body, true, nil
	case "text_body":
		text, terr := ctx.req.Text()
		if terr != nil {
			return nil, true, parseErrorFor(name, terr)
		}

		return text, true, nil
	case "json_body":
		if !ctx.jsonBodyDone {
			ctx.jsonBody, ctx.jsonBodyErr = (content.JSONParser{}).Parse(ctx.req.Body, string(ctx.req.Body))
			ctx.jsonBodyDone = true
		}

		if ctx.jsonBodyErr != nil {
			return nil, true, parseErrorFor(name, ctx.jsonBodyErr)
		}

		return ctx.jsonBody, true, nil
	case "form_body":
		if !ctx.formBodyDone {
			text, terr := ctx.req.Text()
			if terr != nil {
				ctx.formBodyErr = terr
			} else {
				v, perr := (content.FormParser{}).Parse(ctx.req.Body, text)
				if perr != nil {
					ctx.formBodyErr = perr
				} else {
					ctx.formBody = v.(map[string][]string)
				}
			}

			ctx.formBodyDone = true
		}

		if ctx.formBodyErr != nil {
			return nil, true, parseErrorFor(name, ctx.formBodyErr)
		}

		return ctx.formBody, true, nil
	case "multipart_body":
		if !ctx.multipartBodyDone {
			_, params := parseMediaType(ctx.req.Header("Content-Type"))

			v, merr := (content.MultipartParser{Boundary: params["boundary"]}).Parse(ctx.req.Body, "")
			if merr != nil {
				ctx.multipartBodyErr = merr
			} else {
				ctx.multipartBody = v.([]content.Part)
			}

			ctx.multipartBodyDone = true
		}

		if ctx.multipartBodyErr != nil {
			return nil, true, parseErrorFor(name, ctx.multipartBodyErr)
		}

		return ctx.multipartBody, true, nil
	case "exception":
		if ctx.exception == nil {
			return nil, false, nil
		}

		return ctx.exception, true, nil
	case "request_id":
		return ctx.requestID, true, nil
	case "trace_id":
		return ctx.traceID, true, nil
	}

	return nil, false, nil
}
