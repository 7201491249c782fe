// Package direct is the in-process adapter (§6 "External interfaces"): it
// calls an Engine directly with a pre-built relay.Request, with no
// transport in between. It exists for tests and for embedding a relay App
// inside another Go process without going through HTTP at all.
package direct

import "github.com/relayhttp/relay"

// Adapter wraps an Engine for direct, in-process dispatch.
type Adapter struct {
	Engine *relay.Engine
}

// New returns an Adapter over engine.
func New(engine *relay.Engine) *Adapter {
	return &Adapter{Engine: engine}
}

// Do runs req through the engine's decision state machine and returns the
// resulting Response, exactly as any other adapter would. For a HEAD
// request it discards the response body at this boundary (§4.9) while
// leaving every header, including Content-Length, untouched.
func (a *Adapter) Do(req *relay.Request) *relay.Response {
	res := a.Engine.Execute(req)

	if req.Method == relay.HEAD {
		res.Body = nil
	}

	return res
}
