// Package dispatch resolves tool invocations against a registry, validates
// their arguments and turns every outcome into a structured Result.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/y0ug/mcptools/internal/registry"
)

type Dispatcher struct {
	registry *registry.Registry
	logger   *slog.Logger
}

func New(reg *registry.Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{registry: reg, logger: logger}
}

func (d *Dispatcher) Registry() *registry.Registry { return d.registry }

// Dispatch runs one request and always returns a Result; no error or panic
// from a handler escapes.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (res Result) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	logger := d.logger.With("invocation_id", req.ID, "tool", req.Tool)
	res.Tool = req.Tool

	defer func() {
		if r := recover(); r != nil {
			logger.Error("tool handler panicked", "panic", r)
			res = Result{Tool: req.Tool, Failure: &registry.Failure{
				Kind:    registry.InternalError,
				Message: fmt.Sprint(r),
			}}
		}
		res = ensureEncodable(res)
		if res.Failure != nil {
			logger.Debug("tool invocation failed", "kind", res.Failure.Kind, "error", res.Failure.Message)
		} else {
			logger.Debug("tool invocation succeeded")
		}
	}()

	tool, err := d.registry.Lookup(req.Tool)
	if err != nil {
		var unknown *registry.UnknownToolError
		if errors.As(err, &unknown) {
			res.Failure = &registry.Failure{
				Kind: registry.UnknownTool,
				Message: fmt.Sprintf("Unknown tool: %s. Available tools: %s",
					req.Tool, strings.Join(unknown.Known, ", ")),
				Supported: unknown.Known,
			}
			return res
		}
		res.Failure = &registry.Failure{Kind: registry.InternalError, Message: err.Error()}
		return res
	}

	args, failure := bind(tool, req.Arguments)
	if failure != nil {
		res.Failure = failure
		return res
	}
	for name := range req.Arguments {
		if _, ok := args[name]; !ok {
			logger.Debug("ignoring undeclared argument", "argument", name)
		}
	}

	payload, err := tool.Handler(ctx, args)
	if err != nil {
		var f *registry.Failure
		if errors.As(err, &f) {
			res.Failure = f
		} else {
			res.Failure = &registry.Failure{Kind: registry.InternalError, Message: err.Error()}
		}
		return res
	}
	if payload == nil {
		payload = registry.Payload{}
	}
	// "error" marks failure documents, so a success may not carry it.
	if _, ok := payload["error"]; ok {
		res.Failure = &registry.Failure{
			Kind:    registry.InternalError,
			Message: fmt.Sprintf("tool %s returned a payload with the reserved field %q", req.Tool, "error"),
		}
		return res
	}
	res.Payload = payload
	return res
}

// bind validates raw arguments against the tool schema in declared order.
func bind(tool registry.ToolDescriptor, raw map[string]any) (registry.Args, *registry.Failure) {
	args := make(registry.Args, len(tool.Parameters))
	for _, p := range tool.Parameters {
		v, present := raw[p.Name]
		if !present || v == nil {
			if p.Default == nil {
				return nil, &registry.Failure{
					Kind:    registry.MissingArgument,
					Message: fmt.Sprintf("missing required argument %q", p.Name),
				}
			}
			args[p.Name] = *p.Default
			continue
		}
		value, err := Coerce(v, p.Type)
		if err != nil {
			return nil, &registry.Failure{
				Kind:    registry.TypeMismatch,
				Message: fmt.Sprintf("argument %q: %v", p.Name, err),
			}
		}
		args[p.Name] = value
	}
	return args, nil
}

// ensureEncodable replaces results that encoding/json rejects, such as
// payloads holding an infinite float, with an internal error.
func ensureEncodable(res Result) Result {
	_, err := json.Marshal(res.Document())
	if err == nil {
		return res
	}
	if res.Failure != nil && len(res.Failure.Details) > 0 {
		f := *res.Failure
		f.Details = nil
		return ensureEncodable(Result{Tool: res.Tool, Failure: &f})
	}
	return Result{Tool: res.Tool, Failure: &registry.Failure{
		Kind:    registry.InternalError,
		Message: fmt.Sprintf("encoding result: %v", err),
	}}
}
