package server

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/chazu/joop/cache"
	"github.com/chazu/joop/compiler"
	"github.com/chazu/joop/diag"
)

// CompileProcedure is the Connect/gRPC path of the compile endpoint.
const CompileProcedure = "/joop.v1.CompileService/Compile"

// CompileService compiles source sent by remote clients. Requests and
// responses are google.protobuf.Struct messages:
//
//	request:  {"source": "...", "file": "app.joop"}
//	response: {"success": true, "output": "..."}
//	          {"success": false, "rendered": "...", "diagnostic": {...}}
type CompileService struct {
	opts  []compiler.Option
	cache *cache.Cache
}

// NewCompileService creates a CompileService. c may be nil.
func NewCompileService(c *cache.Cache, opts ...compiler.Option) *CompileService {
	return &CompileService{opts: opts, cache: c}
}

// Compile compiles the request's source.
func (s *CompileService) Compile(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	fields := req.Msg.GetFields()
	sourceValue, ok := fields["source"]
	if !ok {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("source is required"))
	}
	if _, isString := sourceValue.GetKind().(*structpb.Value_StringValue); !isString {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("source must be a string"))
	}
	source := sourceValue.GetStringValue()
	file := fields["file"].GetStringValue()

	result := s.compile(ctx, file, source)
	msg, err := structpb.NewStruct(result)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

func (s *CompileService) compile(ctx context.Context, file, source string) map[string]any {
	key := cache.Key(compiler.Fingerprint(s.opts...), source)
	if s.cache != nil {
		entry, err := s.cache.Get(ctx, key)
		if err == nil {
			log.Debugf("cache hit for %s", file)
			return map[string]any{"success": true, "output": entry.Output}
		}
		if !errors.Is(err, cache.ErrNotFound) {
			log.Warningf("cache: %s", err)
		}
	}

	out, err := compiler.Compile(source, s.opts...)
	if err != nil {
		d := diag.FromError(file, source, err)
		return map[string]any{
			"success":  false,
			"rendered": d.Render(false),
			"diagnostic": map[string]any{
				"message": d.Message,
				"line":    d.Line,
				"column":  d.Column,
				"length":  d.Length,
			},
		}
	}

	if s.cache != nil {
		entry := &cache.Entry{Output: out, Fingerprint: compiler.Fingerprint(s.opts...), Source: file}
		if err := s.cache.Put(ctx, key, entry); err != nil {
			log.Warningf("cache: %s", err)
		}
	}
	return map[string]any{"success": true, "output": out}
}
