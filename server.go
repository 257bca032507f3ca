package mcptools

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/y0ug/mcptools/internal/dispatch"
	"github.com/y0ug/mcptools/internal/registry"
	"github.com/y0ug/mcptools/internal/schema"
	"github.com/y0ug/mcptools/internal/tools"
)

// InfoURI is the URI of the server info resource.
const InfoURI = "server://info"

// Options configure a Server.
type Options struct {
	Identity Identity
	// DisabledTools are left out of the registry.
	DisabledTools []string
	// DebugFrames logs every JSON-RPC frame at debug level.
	DebugFrames bool
	// Now overrides the clock used by get_datetime.
	Now func() time.Time
}

// DefaultIdentity is used for empty Options.Identity fields.
var DefaultIdentity = Identity{
	Name:        "mcp-tools",
	Version:     "1.0.0",
	Description: "A demo MCP server with utility tools",
}

type Server struct {
	protocol   *protocol
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// NewServer builds the tool registry and the MCP protocol handlers. The
// registry is complete when NewServer returns and is not modified afterwards.
func NewServer(logger *slog.Logger, opts Options) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	identity := opts.Identity
	if identity.Name == "" {
		identity.Name = DefaultIdentity.Name
	}
	if identity.Version == "" {
		identity.Version = DefaultIdentity.Version
	}
	if identity.Description == "" {
		identity.Description = DefaultIdentity.Description
	}

	reg := registry.New(identity)
	if err := tools.Register(reg, tools.Options{
		Now:      opts.Now,
		Disabled: opts.DisabledTools,
		Logger:   logger,
	}); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	s := &Server{
		registry:   reg,
		dispatcher: dispatch.New(reg, logger),
		logger:     logger,
	}
	s.protocol = newProtocol(logger, s, opts.DebugFrames)
	return s, nil
}

// Serve speaks MCP on stdin/stdout until EOF or a termination signal.
func (s *Server) Serve(ctx context.Context) error {
	return s.protocol.Serve(ctx)
}

// ServeStream speaks MCP over r and w until r is exhausted or ctx is done.
func (s *Server) ServeStream(ctx context.Context, r io.Reader, w io.Writer) error {
	return s.protocol.ServeStream(ctx, r, w)
}

// Call dispatches a tool invocation in-process.
func (s *Server) Call(ctx context.Context, tool string, args map[string]any) Result {
	return s.dispatcher.Dispatch(ctx, dispatch.Request{Tool: tool, Arguments: args})
}

// Tools returns the MCP discovery view of the registry, in registration order.
func (s *Server) Tools() []Tool {
	summaries := s.registry.List()
	out := make([]Tool, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, toolSchema(sum))
	}
	return out
}

// Info returns the server info resource for the current registry.
func (s *Server) Info() InfoDocument {
	return s.registry.Info()
}

func toolSchema(sum registry.Summary) Tool {
	input := schema.ToolInputSchema{
		Type:       "object",
		Properties: make(map[string]schema.PropertySchema, len(sum.Parameters)),
	}
	for _, p := range sum.Parameters {
		prop := schema.PropertySchema{
			Type:        p.Type.String(),
			Description: p.Description,
		}
		if p.Default != nil {
			prop.Default = p.Default.Any()
		} else {
			input.Required = append(input.Required, p.Name)
		}
		input.Properties[p.Name] = prop
	}

	description := sum.Description
	return Tool{
		Name:        sum.Name,
		Description: &description,
		InputSchema: input,
	}
}
