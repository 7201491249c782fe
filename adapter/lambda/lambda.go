// Package lambda adapts an engine to AWS API Gateway, both the REST API
// (events.APIGatewayProxyRequest) and HTTP API
// (events.APIGatewayV2HTTPRequest) event shapes (§6 "External
// interfaces").
package lambda

import (
	"encoding/base64"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/relayhttp/relay"
)

// Adapter wraps an Engine for Lambda invocation.
type Adapter struct {
	Engine *relay.Engine
}

// New returns an Adapter over engine.
func New(engine *relay.Engine) *Adapter {
	return &Adapter{Engine: engine}
}

// HandleREST handles a REST API (payload format 1.0) event.
func (a *Adapter) HandleREST(evt events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body, err := decodeBody(evt.Body, evt.IsBase64Encoded)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	headers := relay.NewHeaders()
	for k, v := range evt.Headers {
		headers.Append(k, v)
	}

	for k, vs := range evt.MultiValueHeaders {
		headers.SetValues(k, vs)
	}

	query := map[string][]string{}
	for k, v := range evt.QueryStringParameters {
		query[k] = []string{v}
	}

	for k, vs := range evt.MultiValueQueryStringParameters {
		query[k] = vs
	}

	req := &relay.Request{
		Method:      relay.Method(strings.ToUpper(evt.HTTPMethod)),
		Path:        evt.Path,
		RawPath:     evt.Path,
		Headers:     headers,
		QueryParams: query,
		Body:        body,
	}

	res := a.Engine.Execute(req)

	if req.Method == relay.HEAD {
		res.Body = nil
	}

	return toRESTResponse(res), nil
}

// HandleHTTPAPI handles an HTTP API (payload format 2.0) event.
func (a *Adapter) HandleHTTPAPI(evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body, err := decodeBody(evt.Body, evt.IsBase64Encoded)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	headers := relay.NewHeaders()
	for k, v := range evt.Headers {
		for _, part := range strings.Split(v, ",") {
			headers.Append(k, strings.TrimSpace(part))
		}
	}

	query := map[string][]string{}
	for k, v := range evt.QueryStringParameters {
		query[k] = []string{v}
	}

	req := &relay.Request{
		Method:      relay.Method(strings.ToUpper(evt.RequestContext.HTTP.Method)),
		Path:        evt.RawPath,
		RawPath:     evt.RawPath,
		Headers:     headers,
		QueryParams: query,
		Body:        body,
	}

	res := a.Engine.Execute(req)

	if req.Method == relay.HEAD {
		res.Body = nil
	}

	return toHTTPAPIResponse(res), nil
}

func decodeBody(body string, isBase64 bool) ([]byte, error) {
	if !isBase64 {
		return []byte(body), nil
	}

	return base64.StdEncoding.DecodeString(body)
}

func toRESTResponse(res *relay.Response) events.APIGatewayProxyResponse {
	headers := map[string]string{}
	multi := map[string][]string{}

	for k, vs := range res.Headers {
		if len(vs) > 0 {
			headers[k] = vs[0]
		}

		multi[k] = vs
	}

	return events.APIGatewayProxyResponse{
		StatusCode:        res.StatusCode,
		Headers:           headers,
		MultiValueHeaders: multi,
		Body:              string(res.Body),
	}
}

func toHTTPAPIResponse(res *relay.Response) events.APIGatewayV2HTTPResponse {
	headers := map[string]string{}

	for k, vs := range res.Headers {
		headers[k] = strings.Join(vs, ", ")
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: res.StatusCode,
		Headers:    headers,
		Body:       string(res.Body),
	}
}
