// Package httpserver adapts an engine to net/http, the ASGI-equivalent
// surface of §6 "External interfaces". It supports plain HTTP/1.1, h2c
// (cleartext HTTP/2), and ACME-managed TLS, the same three listener modes
// the teacher's own server/listener code offers.
package httpserver

import (
	"context"
	"io"
	"net/http"

	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/relayhttp/relay"
)

// Server wraps an *http.Server whose handler dispatches every request
// through a relay Engine.
type Server struct {
	Engine *relay.Engine

	httpServer *http.Server
}

// Options configure New.
type Options struct {
	Address string

	// H2C enables cleartext HTTP/2 (no TLS) via golang.org/x/net/http2/h2c,
	// useful behind a TLS-terminating proxy or for local development.
	H2C bool

	// ACMEHosts, when non-empty, enables autocert-managed TLS for exactly
	// these hostnames and ignores H2C (TLS already implies HTTP/2 via
	// golang.org/x/net/http2's ConfigureServer).
	ACMEHosts []string

	// ACMECacheDir is where autocert persists issued certificates.
	// Defaults to "./.autocert-cache" when ACMEHosts is set and this is
	// empty.
	ACMECacheDir string
}

// New builds a Server bound to engine per opts. It does not start
// listening; call ListenAndServe.
func New(engine *relay.Engine, opts Options) (*Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/", &engineHandler{engine: engine})

	var handler http.Handler = mux

	httpServer := &http.Server{
		Addr:    opts.Address,
		Handler: handler,
	}

	if len(opts.ACMEHosts) > 0 {
		cacheDir := opts.ACMECacheDir
		if cacheDir == "" {
			cacheDir = "./.autocert-cache"
		}

		mgr := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(opts.ACMEHosts...),
			Cache:      autocert.DirCache(cacheDir),
		}

		httpServer.TLSConfig = mgr.TLSConfig()

		if err := http2.ConfigureServer(httpServer, &http2.Server{}); err != nil {
			return nil, err
		}
	} else if opts.H2C {
		h2s := &http2.Server{}
		httpServer.Handler = h2c.NewHandler(handler, h2s)
	}

	return &Server{Engine: engine, httpServer: httpServer}, nil
}

// ListenAndServe starts serving, choosing TLS automatically when the
// server was built with ACMEHosts.
func (s *Server) ListenAndServe() error {
	if s.httpServer.TLSConfig != nil {
		return s.httpServer.ListenAndServeTLS("", "")
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, per context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type engineHandler struct {
	engine *relay.Engine
}

func (h *engineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := fromHTTPRequest(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	res := h.engine.Execute(req)
	writeHTTPResponse(w, r.Method, res)
}

func fromHTTPRequest(r *http.Request) (*relay.Request, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	headers := relay.NewHeaders()
	for k, vs := range r.Header {
		headers.SetValues(k, vs)
	}

	query := map[string][]string(r.URL.Query())

	return &relay.Request{
		Method:      relay.Method(r.Method),
		Path:        r.URL.Path,
		RawPath:     r.URL.RequestURI(),
		Headers:     headers,
		QueryParams: query,
		Body:        body,
	}, nil
}

// writeHTTPResponse writes res to w, discarding the body for HEAD requests
// (§4.9) while leaving every header — including Content-Length, which
// still reflects the body the request would have returned to GET — untouched.
func writeHTTPResponse(w http.ResponseWriter, method string, res *relay.Response) {
	header := w.Header()
	for k, vs := range res.Headers {
		for _, v := range vs {
			header.Add(k, v)
		}
	}

	w.WriteHeader(res.StatusCode)

	if method != http.MethodHead && len(res.Body) > 0 {
		_, _ = w.Write(res.Body)
	}
}
