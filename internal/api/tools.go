package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alpstack/mcpgate/internal/contracts"
)

// Tool represents one federated tool, named with its server's namespace alias.
type Tool struct {
	// Name of the tool, including the namespace prefix (e.g. "journey.findTrips").
	Name string `doc:"Namespaced name of the tool" json:"name"`

	// Description is a human-readable description of the tool.
	Description string `doc:"Description of what the tool does" json:"description,omitempty"`

	// InputSchema is JSONSchema defining the expected parameters for the tool.
	InputSchema *JSONSchema `doc:"Input parameters schema" json:"inputSchema,omitempty"`
}

// JSONSchema defines the structure for a JSON schema object.
type JSONSchema struct {
	// Type defines the type for this schema, e.g. "object".
	Type string `json:"type"`

	// Properties represents a property name and associated object definition.
	Properties map[string]any `json:"properties,omitempty"`

	// Required lists the (keys of) Properties that are required.
	Required []string `json:"required,omitempty"`
}

// ToolsResponse represents the wrapped API response for the federated tool collection.
type ToolsResponse struct {
	Body struct {
		Tools []Tool `doc:"Tools aggregated across all routable servers" json:"tools"`
	}
}

// ToolCallRequest represents the incoming API request to call a namespaced tool.
type ToolCallRequest struct {
	Name string         `doc:"Namespaced name of the tool to call" example:"journey.findTrips" path:"name"`
	Body map[string]any `doc:"Arguments for the tool call"`
}

// ToolCallResponse represents the wrapped API response for calling a tool.
type ToolCallResponse struct {
	Body json.RawMessage
}

// domainTool wraps mcp.Tool for conversion to Tool via ToAPIType.
type domainTool mcp.Tool

// ToAPIType converts a wrapped domain type to Tool.
func (d domainTool) ToAPIType() (Tool, error) {
	var inputSchema *JSONSchema
	if d.InputSchema.Type != "" || len(d.InputSchema.Properties) > 0 {
		inputSchema = &JSONSchema{
			Type:       d.InputSchema.Type,
			Properties: d.InputSchema.Properties,
			Required:   d.InputSchema.Required,
		}
	}

	return Tool{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: inputSchema,
	}, nil
}

// RegisterToolRoutes sets up tool discovery and invocation endpoint routes.
func RegisterToolRoutes(routerAPI huma.API, gateway contracts.Router, apiPathPrefix string) {
	toolsAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Tools"}

	// Add route at the root of the group (no path specified).
	huma.Register(
		toolsAPI,
		huma.Operation{
			OperationID: "listTools",
			Method:      http.MethodGet,
			Summary:     "List tools across all servers",
			Description: "Aggregates tools from every routable server, renamed with their namespace aliases",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ToolsResponse, error) {
			return handleListTools(ctx, gateway)
		},
	)

	huma.Register(
		toolsAPI,
		huma.Operation{
			OperationID: "callTool",
			Method:      http.MethodPost,
			Path:        "/{name}",
			Summary:     "Call a namespaced tool",
			Tags:        tags,
		},
		func(ctx context.Context, input *ToolCallRequest) (*ToolCallResponse, error) {
			return handleToolCall(ctx, gateway, input.Name, input.Body)
		},
	)
}

// handleListTools returns the federated tool collection.
func handleListTools(ctx context.Context, gateway contracts.Router) (*ToolsResponse, error) {
	tools := gateway.ListAllTools(ctx)

	apiTools := make([]Tool, 0, len(tools))
	for _, tool := range tools {
		data, err := domainTool(tool).ToAPIType()
		if err != nil {
			return nil, err
		}
		apiTools = append(apiTools, data)
	}

	resp := &ToolsResponse{}
	resp.Body.Tools = apiTools

	return resp, nil
}

// handleToolCall routes a namespaced tool call through the gateway.
func handleToolCall(ctx context.Context, gateway contracts.Router, name string, args map[string]any) (*ToolCallResponse, error) {
	raw, err := gateway.CallTool(ctx, name, args)
	if err != nil {
		return nil, err
	}

	return &ToolCallResponse{Body: raw}, nil
}
