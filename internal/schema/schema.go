// Package schema holds the MCP message types exchanged by the server and
// the client.
package schema

import "encoding/json"

const ProtocolVersion = "2024-11-05"

type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ClientCapabilities struct {
	Experimental map[string]any `json:"experimental,omitempty"`
	Roots        *struct {
		ListChanged *bool `json:"listChanged,omitempty"`
	} `json:"roots,omitempty"`
	Sampling map[string]any `json:"sampling,omitempty"`
}

type InitializeRequestParams struct {
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      Implementation     `json:"clientInfo"`
	ProtocolVersion string             `json:"protocolVersion"`
}

type ServerCapabilitiesTools struct {
	ListChanged *bool `json:"listChanged,omitempty"`
}

type ServerCapabilitiesResources struct {
	ListChanged *bool `json:"listChanged,omitempty"`
	Subscribe   *bool `json:"subscribe,omitempty"`
}

type ServerCapabilities struct {
	Experimental map[string]any               `json:"experimental,omitempty"`
	Logging      map[string]any               `json:"logging,omitempty"`
	Resources    *ServerCapabilitiesResources `json:"resources,omitempty"`
	Tools        *ServerCapabilitiesTools     `json:"tools,omitempty"`
}

type InitializeResult struct {
	Capabilities    ServerCapabilities `json:"capabilities"`
	Instructions    *string            `json:"instructions,omitempty"`
	ProtocolVersion string             `json:"protocolVersion"`
	ServerInfo      Implementation     `json:"serverInfo"`
}

type ToolInputSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties,omitempty"`
	Required   []string                  `json:"required,omitempty"`
}

type PropertySchema struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
}

type Tool struct {
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	InputSchema ToolInputSchema `json:"inputSchema"`
}

type ListToolsRequestParams struct {
	Cursor *string `json:"cursor,omitempty"`
}

type ListToolsResult struct {
	Tools      []Tool  `json:"tools"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

type CallToolRequestParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Content items are kept loosely typed on the client side so unknown content
// types from other servers still decode.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type CallToolResult struct {
	Content           []any          `json:"content"`
	StructuredContent map[string]any `json:"structuredContent,omitempty"`
	IsError           *bool          `json:"isError,omitempty"`
}

// Text returns the text of the first text content item.
func (r *CallToolResult) Text() (string, bool) {
	for _, c := range r.Content {
		switch v := c.(type) {
		case TextContent:
			return v.Text, true
		case map[string]any:
			if v["type"] == "text" {
				s, ok := v["text"].(string)
				return s, ok
			}
		}
	}
	return "", false
}

type Resource struct {
	URI         string  `json:"uri"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	MimeType    *string `json:"mimeType,omitempty"`
}

type ListResourcesRequestParams struct {
	Cursor *string `json:"cursor,omitempty"`
}

type ListResourcesResult struct {
	Resources  []Resource `json:"resources"`
	NextCursor *string    `json:"nextCursor,omitempty"`
}

type ReadResourceRequestParams struct {
	Uri string `json:"uri"`
}

type TextResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
}

type ReadResourceResult struct {
	Contents []any `json:"contents"`
}

// DecodeParams unmarshals request params, treating empty params as zero.
func DecodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}
