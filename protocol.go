package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/exp/jsonrpc2"

	"github.com/y0ug/mcptools/internal/dispatch"
	"github.com/y0ug/mcptools/internal/schema"
	"github.com/y0ug/mcptools/internal/transport"
)

// protocol binds the server to MCP JSON-RPC methods.
type protocol struct {
	logger      *slog.Logger
	server      *Server
	debugFrames bool

	mu       sync.RWMutex
	handlers map[string]jsonrpc2.HandlerFunc
}

func newProtocol(logger *slog.Logger, server *Server, debugFrames bool) *protocol {
	p := &protocol{
		logger:      logger,
		server:      server,
		debugFrames: debugFrames,
		handlers:    make(map[string]jsonrpc2.HandlerFunc),
	}
	p.AddHandler("initialize", p.handleInitialize)
	p.AddHandler("ping", p.handlePing)
	p.AddHandler("notifications/initialized", p.handleNotification)
	p.AddHandler("notifications/cancelled", p.handleNotification)
	p.AddHandler("tools/list", p.handleToolsList)
	p.AddHandler("tools/call", p.handleToolsCall)
	p.AddHandler("resources/list", p.handleResourcesList)
	p.AddHandler("resources/read", p.handleResourcesRead)
	return p
}

// Serve starts the MCP server on stdio, handling requests until EOF or signal.
func (p *protocol) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return p.ServeStream(ctx, os.Stdin, os.Stdout)
}

// ServeStream runs one JSON-RPC connection over r and w. A clean end of
// input or a canceled context is not an error.
func (p *protocol) ServeStream(ctx context.Context, r io.Reader, w io.Writer) error {
	framer := transport.NewServerFramer(p.logger)
	if p.debugFrames {
		framer = &transport.LoggingFramer{Base: framer, Logger: p.logger}
	}

	stream := transport.NewStream(r, w)
	conn, err := jsonrpc2.Dial(
		ctx,
		stream,
		jsonrpc2.ConnectionOptions{Handler: jsonrpc2.HandlerFunc(p.handle), Framer: framer},
	)
	if err != nil {
		return fmt.Errorf("failed to create the MCP server: %w", err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
		_ = stream.Close()
	})
	defer stop()
	defer conn.Close()

	p.logger.Info("MCP server started",
		"name", p.server.registry.Identity().Name,
		"tools", p.server.registry.Len())

	err = conn.Wait()
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, io.ErrClosedPipe), ctx.Err() != nil:
		p.logger.Info("MCP server stopped")
		return nil
	default:
		return fmt.Errorf("serving MCP: %w", err)
	}
}

func (p *protocol) AddHandler(
	method string,
	handler jsonrpc2.HandlerFunc,
) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[method] = handler
}

// handle processes each incoming JSON-RPC 2.0 request by method name.
func (p *protocol) handle(ctx context.Context, r *jsonrpc2.Request) (resp interface{}, err error) {
	p.logger.Debug("Server received request",
		"method", r.Method,
		"id", r.ID.Raw(),
		"params", string(r.Params))

	p.mu.RLock()
	handler, ok := p.handlers[r.Method]
	p.mu.RUnlock()

	switch {
	case ok:
		return handler(ctx, r)
	case r.Method == "exit":
		return nil, nil
	case !r.IsCall():
		// Unknown notifications are ignored.
		return nil, nil
	default:
		return nil, jsonrpc2.ErrNotHandled
	}
}

func invalidParams(method string, err error) error {
	return fmt.Errorf("%w: %s: %v", jsonrpc2.ErrInvalidParams, method, err)
}

// handleInitialize implements the MCP "initialize" request.
func (p *protocol) handleInitialize(
	ctx context.Context,
	r *jsonrpc2.Request,
) (interface{}, error) {
	var params schema.InitializeRequestParams
	if err := schema.DecodeParams(r.Params, &params); err != nil {
		return nil, invalidParams(r.Method, err)
	}
	p.logger.Debug("client connected",
		"client", params.ClientInfo.Name,
		"client_version", params.ClientInfo.Version,
		"protocol_version", params.ProtocolVersion)

	identity := p.server.registry.Identity()
	instructions := identity.Description
	return schema.InitializeResult{
		ProtocolVersion: schema.ProtocolVersion,
		ServerInfo: schema.Implementation{
			Name:    identity.Name,
			Version: identity.Version,
		},
		Instructions: &instructions,
		Capabilities: schema.ServerCapabilities{
			// The tool set is fixed at startup, so there are no list change notifications.
			Tools:     &schema.ServerCapabilitiesTools{ListChanged: new(bool)},
			Resources: &schema.ServerCapabilitiesResources{ListChanged: new(bool), Subscribe: new(bool)},
		},
	}, nil
}

func (p *protocol) handlePing(
	ctx context.Context,
	r *jsonrpc2.Request,
) (interface{}, error) {
	return struct{}{}, nil
}

func (p *protocol) handleNotification(
	ctx context.Context,
	r *jsonrpc2.Request,
) (interface{}, error) {
	return nil, nil
}

func (p *protocol) handleToolsList(
	ctx context.Context,
	r *jsonrpc2.Request,
) (interface{}, error) {
	var params schema.ListToolsRequestParams
	if err := schema.DecodeParams(r.Params, &params); err != nil {
		return nil, invalidParams(r.Method, err)
	}
	return schema.ListToolsResult{Tools: p.server.Tools()}, nil
}

// handleToolsCall reports tool failures inside the result with isError set;
// only malformed requests become JSON-RPC errors.
func (p *protocol) handleToolsCall(
	ctx context.Context,
	r *jsonrpc2.Request,
) (interface{}, error) {
	var params schema.CallToolRequestParams
	if err := schema.DecodeParams(r.Params, &params); err != nil {
		return nil, invalidParams(r.Method, err)
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, invalidParams(r.Method, errors.New("missing tool name"))
	}

	res := p.server.dispatcher.Dispatch(ctx, dispatch.Request{
		ID:        uuid.NewString(),
		Tool:      params.Name,
		Arguments: params.Arguments,
	})
	return callToolResult(res)
}

func callToolResult(res dispatch.Result) (*schema.CallToolResult, error) {
	doc := res.Document()
	text, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding tool result: %v", jsonrpc2.ErrInternal, err)
	}
	isError := res.IsError()
	return &schema.CallToolResult{
		Content:           []any{schema.TextContent{Type: "text", Text: string(text)}},
		StructuredContent: doc,
		IsError:           &isError,
	}, nil
}

func (p *protocol) handleResourcesList(
	ctx context.Context,
	r *jsonrpc2.Request,
) (interface{}, error) {
	description := "Information about this MCP server"
	mimeType := "application/json"
	return schema.ListResourcesResult{
		Resources: []schema.Resource{{
			URI:         InfoURI,
			Name:        "server_info",
			Description: &description,
			MimeType:    &mimeType,
		}},
	}, nil
}

func (p *protocol) handleResourcesRead(
	ctx context.Context,
	r *jsonrpc2.Request,
) (interface{}, error) {
	var params schema.ReadResourceRequestParams
	if err := schema.DecodeParams(r.Params, &params); err != nil {
		return nil, invalidParams(r.Method, err)
	}
	if params.Uri != InfoURI {
		return nil, invalidParams(r.Method, fmt.Errorf("unknown resource %q", params.Uri))
	}

	text, err := json.Marshal(p.server.Info())
	if err != nil {
		return nil, fmt.Errorf("%w: encoding server info: %v", jsonrpc2.ErrInternal, err)
	}
	return schema.ReadResourceResult{
		Contents: []any{schema.TextResourceContents{
			URI:      InfoURI,
			MimeType: "application/json",
			Text:     string(text),
		}},
	}, nil
}
