package dispatch

import (
	"encoding/json"

	"github.com/y0ug/mcptools/internal/registry"
)

// Request is one tool invocation. ID is only used to correlate log lines.
type Request struct {
	ID        string
	Tool      string
	Arguments map[string]any
}

// Result is either a success payload or a failure, never both.
type Result struct {
	Tool    string
	Payload registry.Payload
	Failure *registry.Failure
}

func (r Result) IsError() bool { return r.Failure != nil }

// Document returns the JSON-compatible form of the result. Failures carry an
// "error" field; successes never do.
func (r Result) Document() map[string]any {
	if r.Failure == nil {
		doc := make(map[string]any, len(r.Payload)+1)
		for k, v := range r.Payload {
			doc[k] = v
		}
		if _, ok := doc["tool"]; !ok && r.Tool != "" {
			doc["tool"] = r.Tool
		}
		return doc
	}

	f := r.Failure
	doc := make(map[string]any, len(f.Details)+4)
	for k, v := range f.Details {
		doc[k] = v
	}
	doc["error"] = f.Message
	doc["kind"] = string(f.Kind)
	if r.Tool != "" {
		doc["tool"] = r.Tool
	}
	if len(f.Supported) > 0 {
		doc["supported"] = f.Supported
	}
	return doc
}

// MarshalJSON encodes Document.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Document())
}
