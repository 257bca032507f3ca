package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/y0ug/mcptools/internal/registry"
)

func testDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	reg := registry.New(registry.Identity{Name: "test", Version: "0.0.1"})

	greeting := registry.String("hello")
	reg.MustRegister(registry.ToolDescriptor{
		Name:        "echo",
		Description: "Echo the arguments back.",
		Parameters: []registry.ParameterSpec{
			{Name: "text", Type: registry.KindString},
			{Name: "count", Type: registry.KindNumber},
			{Name: "loud", Type: registry.KindBoolean, Default: ptr(registry.Boolean(false))},
			{Name: "prefix", Type: registry.KindString, Default: &greeting},
		},
		Handler: func(_ context.Context, args registry.Args) (registry.Payload, error) {
			return registry.Payload(args.Map()), nil
		},
	})
	reg.MustRegister(registry.ToolDescriptor{
		Name: "panics",
		Handler: func(context.Context, registry.Args) (registry.Payload, error) {
			panic("boom")
		},
	})
	reg.MustRegister(registry.ToolDescriptor{
		Name: "fails",
		Handler: func(context.Context, registry.Args) (registry.Payload, error) {
			return nil, errors.New("disk on fire")
		},
	})
	reg.MustRegister(registry.ToolDescriptor{
		Name: "domain",
		Handler: func(context.Context, registry.Args) (registry.Payload, error) {
			return nil, &registry.Failure{
				Kind:    registry.DivisionByZero,
				Message: "Division by zero",
				Details: registry.Payload{"operation": "divide"},
			}
		},
	})
	reg.MustRegister(registry.ToolDescriptor{
		Name: "infinite",
		Handler: func(context.Context, registry.Args) (registry.Payload, error) {
			return registry.Payload{"result": math.Inf(1)}, nil
		},
	})
	reg.MustRegister(registry.ToolDescriptor{
		Name: "shadow",
		Handler: func(context.Context, registry.Args) (registry.Payload, error) {
			return registry.Payload{"tool": "custom"}, nil
		},
	})
	reg.MustRegister(registry.ToolDescriptor{
		Name: "ambiguous",
		Handler: func(context.Context, registry.Args) (registry.Payload, error) {
			return registry.Payload{"error": "looks bad", "result": 1}, nil
		},
	})
	return New(reg, slog.Default())
}

func ptr[T any](v T) *T { return &v }

func TestDispatchSuccess(t *testing.T) {
	d := testDispatcher(t)

	res := d.Dispatch(context.Background(), Request{
		Tool:      "echo",
		Arguments: map[string]any{"text": "hi", "count": "3", "loud": "true"},
	})
	if res.IsError() {
		t.Fatalf("unexpected failure: %+v", res.Failure)
	}
	want := map[string]any{
		"text":   "hi",
		"count":  float64(3),
		"loud":   true,
		"prefix": "hello",
		"tool":   "echo",
	}
	if got := res.Document(); !reflect.DeepEqual(got, want) {
		t.Errorf("Document() = %v, want %v", got, want)
	}
}

func TestDispatchNullUsesDefault(t *testing.T) {
	d := testDispatcher(t)
	res := d.Dispatch(context.Background(), Request{
		Tool:      "echo",
		Arguments: map[string]any{"text": "hi", "count": 1, "prefix": nil},
	})
	if res.IsError() {
		t.Fatalf("unexpected failure: %+v", res.Failure)
	}
	if res.Payload["prefix"] != "hello" {
		t.Errorf("expected default prefix, got %v", res.Payload["prefix"])
	}
}

func TestDispatchFailures(t *testing.T) {
	d := testDispatcher(t)
	tests := []struct {
		name     string
		req      Request
		kind     registry.ErrorKind
		contains string
	}{
		{
			name:     "unknown tool",
			req:      Request{Tool: "nope"},
			kind:     registry.UnknownTool,
			contains: "echo, panics, fails, domain, infinite, shadow",
		},
		{
			name:     "missing argument",
			req:      Request{Tool: "echo", Arguments: map[string]any{"text": "hi"}},
			kind:     registry.MissingArgument,
			contains: `"count"`,
		},
		{
			name:     "type mismatch",
			req:      Request{Tool: "echo", Arguments: map[string]any{"text": "hi", "count": "many"}},
			kind:     registry.TypeMismatch,
			contains: `"count"`,
		},
		{
			name:     "panic",
			req:      Request{Tool: "panics"},
			kind:     registry.InternalError,
			contains: "boom",
		},
		{
			name:     "handler error",
			req:      Request{Tool: "fails"},
			kind:     registry.InternalError,
			contains: "disk on fire",
		},
		{
			name:     "domain failure",
			req:      Request{Tool: "domain"},
			kind:     registry.DivisionByZero,
			contains: "Division by zero",
		},
		{
			name:     "unencodable payload",
			req:      Request{Tool: "infinite"},
			kind:     registry.InternalError,
			contains: "encoding result",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Dispatch(context.Background(), tt.req)
			if !res.IsError() {
				t.Fatalf("expected failure, got %v", res.Payload)
			}
			if res.Failure.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", res.Failure.Kind, tt.kind)
			}
			if !strings.Contains(res.Failure.Message, tt.contains) {
				t.Errorf("message %q does not contain %q", res.Failure.Message, tt.contains)
			}

			data, err := json.Marshal(res)
			if err != nil {
				t.Fatalf("failure does not encode: %v", err)
			}
			var doc map[string]any
			if err := json.Unmarshal(data, &doc); err != nil {
				t.Fatalf("failure is not a JSON object: %v", err)
			}
			if _, ok := doc["error"]; !ok {
				t.Errorf("failure document has no error field: %s", data)
			}
		})
	}
}

func TestDispatchUnknownToolSupported(t *testing.T) {
	d := testDispatcher(t)
	doc := d.Dispatch(context.Background(), Request{Tool: "nope"}).Document()
	supported, ok := doc["supported"].([]string)
	if !ok || len(supported) != d.Registry().Len() {
		t.Errorf("unexpected supported list: %v", doc["supported"])
	}
}

func TestDispatchFailureDetails(t *testing.T) {
	d := testDispatcher(t)
	doc := d.Dispatch(context.Background(), Request{Tool: "domain"}).Document()
	if doc["operation"] != "divide" || doc["kind"] != "division_by_zero" || doc["tool"] != "domain" {
		t.Errorf("unexpected failure document: %v", doc)
	}
	if _, ok := doc["result"]; ok {
		t.Errorf("failure document must not carry a result: %v", doc)
	}
}

func TestDispatchKeepsHandlerToolField(t *testing.T) {
	d := testDispatcher(t)
	doc := d.Dispatch(context.Background(), Request{Tool: "shadow"}).Document()
	if doc["tool"] != "custom" {
		t.Errorf("handler field overwritten: %v", doc)
	}
}

func TestDispatchRejectsErrorFieldInPayload(t *testing.T) {
	d := testDispatcher(t)
	res := d.Dispatch(context.Background(), Request{Tool: "ambiguous"})
	if !res.IsError() || res.Failure.Kind != registry.InternalError {
		t.Fatalf("expected an internal_error failure, got %+v", res)
	}
	doc := res.Document()
	if doc["error"] == "looks bad" {
		t.Errorf("handler error field leaked into the document: %v", doc)
	}
	if _, ok := doc["result"]; ok {
		t.Errorf("failure document must not carry the handler payload: %v", doc)
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		kind    registry.Kind
		want    any
		wantErr bool
	}{
		{"string", "abc", registry.KindString, "abc", false},
		{"number as string", float64(10), registry.KindString, "10", false},
		{"bool as string", true, registry.KindString, "true", false},
		{"object as string", map[string]any{}, registry.KindString, nil, true},
		{"float", 2.5, registry.KindNumber, 2.5, false},
		{"int", 7, registry.KindNumber, float64(7), false},
		{"json number", json.Number("12.5"), registry.KindNumber, 12.5, false},
		{"numeric string", " 42 ", registry.KindNumber, float64(42), false},
		{"non numeric string", "abc", registry.KindNumber, nil, true},
		{"empty string", "", registry.KindNumber, nil, true},
		{"nan string", "NaN", registry.KindNumber, nil, true},
		{"bool as number", true, registry.KindNumber, nil, true},
		{"bool", false, registry.KindBoolean, false, false},
		{"bool string", "true", registry.KindBoolean, true, false},
		{"bool digit", "0", registry.KindBoolean, false, false},
		{"bool number", float64(1), registry.KindBoolean, true, false},
		{"bool junk", "maybe", registry.KindBoolean, nil, true},
		{"slice", []any{1}, registry.KindBoolean, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Coerce(tt.raw, tt.kind)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", v)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Kind() != tt.kind {
				t.Errorf("kind = %s, want %s", v.Kind(), tt.kind)
			}
			if v.Any() != tt.want {
				t.Errorf("value = %#v, want %#v", v.Any(), tt.want)
			}
		})
	}
}
