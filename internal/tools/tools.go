// Package tools implements the utility tools the server exposes.
package tools

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/y0ug/mcptools/internal/registry"
)

// Options tune the tool set at registration time.
type Options struct {
	// Now is the clock used by get_datetime. Defaults to time.Now.
	Now func() time.Time
	// Disabled names tools that are not registered.
	Disabled []string
	Logger   *slog.Logger
}

// Descriptors returns every tool in registration order.
func Descriptors(now func() time.Time) []registry.ToolDescriptor {
	if now == nil {
		now = time.Now
	}
	return []registry.ToolDescriptor{
		calculatorTool(),
		weatherTool(),
		greetingTool(),
		datetimeTool(now),
		textTool(),
	}
}

// Register adds the enabled tools to reg.
func Register(reg *registry.Registry, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	disabled := make(map[string]bool, len(opts.Disabled))
	for _, name := range opts.Disabled {
		disabled[name] = true
	}

	for _, d := range Descriptors(opts.Now) {
		if disabled[d.Name] {
			logger.Info("tool disabled by configuration", "tool", d.Name)
			delete(disabled, d.Name)
			continue
		}
		if err := reg.Register(d); err != nil {
			return fmt.Errorf("registering %s: %w", d.Name, err)
		}
	}
	for name := range disabled {
		logger.Warn("cannot disable unknown tool", "tool", name)
	}
	return nil
}

func param(name string, kind registry.Kind, description string) registry.ParameterSpec {
	return registry.ParameterSpec{Name: name, Type: kind, Description: description}
}

func optional(name string, def registry.Value, description string) registry.ParameterSpec {
	return registry.ParameterSpec{Name: name, Type: def.Kind(), Description: description, Default: &def}
}
