package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/jsonrpc2"

	"github.com/y0ug/mcptools/internal/schema"
	"github.com/y0ug/mcptools/internal/transport"
)

// Client defines the interface for MCP client operations
type Client interface {
	// Initialize sends the initialize request to the server and stores the capabilities
	Initialize(ctx context.Context) (*ServerInfo, error)

	// Ping sends a ping request to check if the server is alive
	Ping(ctx context.Context) error

	// ListTools requests the list of available tools from the server
	ListTools(ctx context.Context, cursor *string) ([]schema.Tool, *string, error)

	// ListResources requests the list of available resources from the server
	ListResources(ctx context.Context, cursor *string) ([]schema.Resource, *string, error)

	// ReadResource reads a specific resource from the server
	ReadResource(ctx context.Context, uri string) (*schema.ReadResourceResult, error)

	// CallTool executes a specific tool with given parameters
	CallTool(ctx context.Context, name string, args map[string]any) (*schema.CallToolResult, error)

	// Close shuts down the MCP client and server
	Close() error
}

type ServerInfo schema.InitializeResult

type client struct {
	conn     *jsonrpc2.Connection
	cancelFn context.CancelFunc
	ctx      context.Context
	logger   *slog.Logger

	// exited is closed once the server process has been reaped; waitErr is
	// set before that.
	exited  chan struct{}
	waitErr error

	closeOnce   sync.Once
	initialized atomic.Bool

	// Server capabilities received during initialization
	ServerInfo *ServerInfo

	// cmd is nil when the client was connected to an existing stream.
	cmd *exec.Cmd
}

func logHandler(logger *slog.Logger) jsonrpc2.HandlerFunc {
	return func(ctx context.Context, req *jsonrpc2.Request) (interface{}, error) {
		logger.Debug("Request received",
			"method", req.Method,
			"id", req.ID.Raw(),
			"params", string(req.Params))
		return nil, jsonrpc2.ErrNotHandled
	}
}

// New starts serverCmd and connects to it over its stdin/stdout.
func New(
	ctxParent context.Context,
	logger *slog.Logger,
	serverCmd string,
	args ...string,
) (Client, error) {
	cmd := exec.Command(serverCmd, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start MCP server: %w", err)
	}

	c, err := connect(ctxParent, logger, stdout, stdin)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}
	c.cmd = cmd
	c.exited = make(chan struct{})
	go func() {
		c.waitErr = cmd.Wait()
		close(c.exited)
	}()
	go c.monitorErrors(stderr)
	return c, nil
}

// Connect attaches a client to an already running server reachable through
// r and w.
func Connect(ctx context.Context, logger *slog.Logger, r io.Reader, w io.Writer) (Client, error) {
	return connect(ctx, logger, r, w)
}

func connect(ctxParent context.Context, logger *slog.Logger, r io.Reader, w io.Writer) (*client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctxParent)

	conn, err := jsonrpc2.Dial(
		ctx,
		transport.NewStream(r, w),
		jsonrpc2.ConnectionOptions{
			Handler: logHandler(logger),
			Framer:  transport.NewLineRawFramer(),
		},
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("dial error: %w", err)
	}
	return &client{
		conn:     conn,
		ctx:      ctx,
		cancelFn: cancel,
		logger:   logger,
	}, nil
}

func (c *client) monitorErrors(stderr io.ReadCloser) {
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			errText := scanner.Text()
			if errText == "" {
				continue
			}

			c.logger.Debug("reading", "stderr", errText)

			lower := strings.ToLower(errText)
			if strings.Contains(lower, "error:") || strings.Contains(lower, "fatal:") {
				c.logger.Error("error", "error", errText)
			}
		}

		if err := scanner.Err(); err != nil {
			c.logger.Debug("error reading stderr", "error", err)
		}
	}()

	select {
	case <-c.ctx.Done():
	case <-c.exited:
		c.logger.Debug("process exited", "error", c.waitErr)
		_ = c.Close()
	}
}

// Initialize sends the initialize request to the server and stores the capabilities
func (c *client) Initialize(ctx context.Context) (*ServerInfo, error) {
	params := schema.InitializeRequestParams{
		ClientInfo: schema.Implementation{
			Name:    "mcptools-client",
			Version: "0.1.0",
		},
		ProtocolVersion: schema.ProtocolVersion,
	}

	var result schema.InitializeResult
	c.logger.Debug("Sending initialize request")
	if err := c.conn.Call(ctx, "initialize", params).Await(ctx, &result); err != nil {
		return nil, fmt.Errorf("initialize failed: %w", err)
	}

	c.ServerInfo = (*ServerInfo)(&result)
	c.initialized.Store(true)

	c.logger.Debug("Server initialized",
		"name", c.ServerInfo.ServerInfo.Name,
		"version", c.ServerInfo.ServerInfo.Version)

	if err := c.conn.Notify(ctx, "notifications/initialized", nil); err != nil {
		return nil, fmt.Errorf("failed to send initialized notification: %w", err)
	}
	return c.ServerInfo, nil
}

// Ping sends a ping request to check if the server is alive
func (c *client) Ping(ctx context.Context) error {
	if !c.initialized.Load() {
		return fmt.Errorf("client not initialized")
	}
	if err := c.conn.Call(ctx, "ping", nil).Await(ctx, nil); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// ListTools requests the list of available tools from the server
func (c *client) ListTools(ctx context.Context, cursor *string) ([]schema.Tool, *string, error) {
	if !c.initialized.Load() {
		return nil, nil, fmt.Errorf("client not initialized")
	}
	params := &schema.ListToolsRequestParams{Cursor: cursor}

	var result schema.ListToolsResult
	if err := c.conn.Call(ctx, "tools/list", params).Await(ctx, &result); err != nil {
		return nil, nil, fmt.Errorf("list tools failed: %w", err)
	}

	return result.Tools, result.NextCursor, nil
}

// ListResources requests the list of available resources from the server
func (c *client) ListResources(
	ctx context.Context,
	cursor *string,
) ([]schema.Resource, *string, error) {
	if !c.initialized.Load() {
		return nil, nil, fmt.Errorf("client not initialized")
	}
	params := &schema.ListResourcesRequestParams{Cursor: cursor}

	var result schema.ListResourcesResult
	if err := c.conn.Call(ctx, "resources/list", params).Await(ctx, &result); err != nil {
		return nil, nil, fmt.Errorf("list resources failed: %w", err)
	}

	return result.Resources, result.NextCursor, nil
}

// ReadResource reads a specific resource from the server
func (c *client) ReadResource(
	ctx context.Context,
	uri string,
) (*schema.ReadResourceResult, error) {
	if !c.initialized.Load() {
		return nil, fmt.Errorf("client not initialized")
	}
	var result schema.ReadResourceResult
	params := schema.ReadResourceRequestParams{Uri: uri}
	if err := c.conn.Call(ctx, "resources/read", params).Await(ctx, &result); err != nil {
		return nil, fmt.Errorf("read resource failed: %w", err)
	}

	return &result, nil
}

// CallTool executes a specific tool with given parameters
func (c *client) CallTool(
	ctx context.Context,
	name string,
	args map[string]any,
) (*schema.CallToolResult, error) {
	if !c.initialized.Load() {
		return nil, fmt.Errorf("client not initialized")
	}
	params := schema.CallToolRequestParams{
		Name:      name,
		Arguments: args,
	}
	var result schema.CallToolResult
	if err := c.conn.Call(ctx, "tools/call", params).Await(ctx, &result); err != nil {
		return nil, fmt.Errorf("tool call failed: %w", err)
	}

	return &result, nil
}

// Close shuts down the MCP client and, when it started one, the server
// process. It is safe to call more than once and from several goroutines.
func (c *client) Close() error {
	c.closeOnce.Do(func() {
		c.logger.Debug("Closing MCP client")
		c.initialized.Store(false)
		_ = c.conn.Close()
		c.cancelFn()

		if c.cmd != nil {
			select {
			case <-c.exited:
				c.logger.Debug("Process already exited", "error", c.waitErr)
			default:
				if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
					c.logger.Error("failed to kill process", "error", err)
				}
				<-c.exited
				c.logger.Debug("Process exited", "error", c.waitErr)
			}
		}
		c.logger.Debug("MCP client closed")
	})
	return nil
}
