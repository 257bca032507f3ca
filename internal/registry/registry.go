// Package registry holds the set of tools a server exposes and the static
// info resource derived from it.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Payload is the structured output of a tool. It must encode to a JSON object.
type Payload map[string]any

// Handler computes a tool result from validated arguments. Modeled domain
// failures are returned as *Failure; any other error is an internal fault.
type Handler func(ctx context.Context, args Args) (Payload, error)

// ParameterSpec declares one tool argument. A nil Default makes it required.
type ParameterSpec struct {
	Name        string
	Type        Kind
	Description string
	Default     *Value
}

// Required reports whether the parameter has no default.
func (p ParameterSpec) Required() bool { return p.Default == nil }

// ToolDescriptor describes a registered tool.
type ToolDescriptor struct {
	Name        string
	Description string
	Parameters  []ParameterSpec
	Handler     Handler
}

// Summary is the discovery view of a tool, without its handler.
type Summary struct {
	Name        string
	Description string
	Parameters  []ParameterSpec
}

// Identity names the server in the info resource.
type Identity struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// InfoDocument is the body of the server info resource.
type InfoDocument struct {
	Identity
	Tools []string `json:"tools"`
}

var ErrInvalidDescriptor = errors.New("invalid tool descriptor")

// DuplicateToolError is returned by Register when the name is taken.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q already registered", e.Name)
}

// UnknownToolError is returned by Lookup for unregistered names.
type UnknownToolError struct {
	Name  string
	Known []string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q, known tools: %s", e.Name, strings.Join(e.Known, ", "))
}

// Registry owns the registered tools. It is filled at startup and only read
// afterwards; the lock keeps concurrent lookups safe.
type Registry struct {
	identity Identity

	mu    sync.RWMutex
	order []string
	tools map[string]ToolDescriptor
}

func New(identity Identity) *Registry {
	return &Registry{
		identity: identity,
		tools:    make(map[string]ToolDescriptor),
	}
}

// Register adds a tool. Descriptors are copied so later changes by the caller
// do not affect the registry.
func (r *Registry) Register(d ToolDescriptor) error {
	if err := validate(d); err != nil {
		return err
	}

	d.Parameters = copyParameters(d.Parameters)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[d.Name]; ok {
		return &DuplicateToolError{Name: d.Name}
	}
	r.tools[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// copyParameters deep-copies params, defaults included, so no caller shares
// memory with a registered schema.
func copyParameters(params []ParameterSpec) []ParameterSpec {
	if params == nil {
		return nil
	}
	out := make([]ParameterSpec, len(params))
	for i, p := range params {
		if p.Default != nil {
			v := *p.Default
			p.Default = &v
		}
		out[i] = p
	}
	return out
}

// MustRegister is Register that panics, for startup wiring.
func (r *Registry) MustRegister(d ToolDescriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(name string) (ToolDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.tools[name]
	if !ok {
		return ToolDescriptor{}, &UnknownToolError{
			Name:  name,
			Known: append([]string(nil), r.order...),
		}
	}
	d.Parameters = copyParameters(d.Parameters)
	return d, nil
}

// List returns the tool summaries in registration order.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Summary, 0, len(r.order))
	for _, name := range r.order {
		d := r.tools[name]
		out = append(out, Summary{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  copyParameters(d.Parameters),
		})
	}
	return out
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *Registry) Identity() Identity { return r.identity }

// Info builds the info resource from the current registry contents.
func (r *Registry) Info() InfoDocument {
	return InfoDocument{
		Identity: r.identity,
		Tools:    r.Names(),
	}
}

func validate(d ToolDescriptor) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDescriptor)
	}
	if d.Handler == nil {
		return fmt.Errorf("%w: tool %q has no handler", ErrInvalidDescriptor, d.Name)
	}
	seen := make(map[string]bool, len(d.Parameters))
	for _, p := range d.Parameters {
		if p.Name == "" {
			return fmt.Errorf("%w: tool %q has an unnamed parameter", ErrInvalidDescriptor, d.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: tool %q declares parameter %q twice", ErrInvalidDescriptor, d.Name, p.Name)
		}
		seen[p.Name] = true
		switch p.Type {
		case KindString, KindNumber, KindBoolean:
		default:
			return fmt.Errorf("%w: parameter %q of tool %q has no type", ErrInvalidDescriptor, p.Name, d.Name)
		}
		if p.Default != nil && p.Default.Kind() != p.Type {
			return fmt.Errorf("%w: default for %q is a %s, want %s",
				ErrInvalidDescriptor, p.Name, p.Default.Kind(), p.Type)
		}
	}
	return nil
}
