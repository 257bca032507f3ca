package mcptools

import (
	"context"
	"log/slog"

	"github.com/y0ug/mcptools/internal/client"
	"github.com/y0ug/mcptools/internal/dispatch"
	"github.com/y0ug/mcptools/internal/registry"
	"github.com/y0ug/mcptools/internal/schema"
)

type (
	Client         = client.Client
	Tool           = schema.Tool
	CallToolResult = schema.CallToolResult
	Identity       = registry.Identity
	InfoDocument   = registry.InfoDocument
	Result         = dispatch.Result
	Failure        = registry.Failure
	ErrorKind      = registry.ErrorKind
)

func NewClient(
	ctx context.Context,
	logger *slog.Logger,
	serverCmd string,
	args ...string,
) (Client, error) {
	return client.New(ctx, logger, serverCmd, args...)
}
