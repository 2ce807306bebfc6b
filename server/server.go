// Package server exposes the compiler to editors (LSP over stdio) and to
// remote build tools (a Connect/gRPC compile endpoint over HTTP).
package server

import (
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/chazu/joop/cache"
	"github.com/chazu/joop/compiler"
)

// CompileServer serves the compile endpoint. Connect, gRPC and gRPC-Web
// clients share one port; cleartext HTTP/2 is accepted through h2c.
type CompileServer struct {
	mux *http.ServeMux
}

// ServerOption configures a CompileServer.
type ServerOption func(*serverConfig)

type serverConfig struct {
	cache       *cache.Cache
	compileOpts []compiler.Option
}

// WithCache makes the server reuse and record results in c.
func WithCache(c *cache.Cache) ServerOption {
	return func(cfg *serverConfig) { cfg.cache = c }
}

// WithCompileOptions sets the options every request is compiled with.
func WithCompileOptions(opts ...compiler.Option) ServerOption {
	return func(cfg *serverConfig) { cfg.compileOpts = opts }
}

// New creates a CompileServer.
func New(opts ...ServerOption) *CompileServer {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &CompileServer{mux: http.NewServeMux()}

	svc := NewCompileService(cfg.cache, cfg.compileOpts...)
	s.mux.Handle(CompileProcedure, connect.NewUnaryHandler(CompileProcedure, svc.Compile))

	return s
}

// Handler returns the HTTP handler serving every protocol.
func (s *CompileServer) Handler() http.Handler {
	return h2c.NewHandler(s.mux, &http2.Server{})
}

// ListenAndServe starts the HTTP server on the given address.
// The address should be in the form "host:port" or ":port".
func (s *CompileServer) ListenAndServe(addr string) error {
	fmt.Printf("Joop compile server listening on %s\n", addr)
	fmt.Printf("  Connect (HTTP/JSON): http://%s%s\n", addr, CompileProcedure)
	fmt.Printf("  gRPC (h2c):          grpc://%s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}
