package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alpstack/mcpgate/internal/contracts"
)

// Prompt represents one federated prompt, named with its server's namespace alias.
type Prompt struct {
	// Name of the prompt, including the namespace prefix (e.g. "journey.tripSummary").
	Name string `doc:"Namespaced name of the prompt" json:"name"`

	// Description is a human-readable description of the prompt.
	Description string `doc:"Description of the prompt" json:"description,omitempty"`

	// Arguments lists the arguments the prompt accepts.
	Arguments []PromptArgument `doc:"Arguments accepted by the prompt" json:"arguments,omitempty"`
}

// PromptArgument describes one argument a prompt accepts.
type PromptArgument struct {
	Name        string `doc:"Name of the argument" json:"name"`
	Description string `doc:"Description of the argument" json:"description,omitempty"`
	Required    bool   `doc:"Whether the argument must be provided" json:"required,omitempty"`
}

// PromptsResponse represents the wrapped API response for the federated prompt collection.
type PromptsResponse struct {
	Body struct {
		Prompts []Prompt `doc:"Prompts aggregated across all routable servers" json:"prompts"`
	}
}

// PromptGetRequest represents the incoming API request to fetch a namespaced prompt.
type PromptGetRequest struct {
	Name string         `doc:"Namespaced name of the prompt to fetch" example:"journey.tripSummary" path:"name"`
	Body map[string]any `doc:"Arguments for the prompt"`
}

// PromptGetResponse represents the wrapped API response for fetching a prompt.
type PromptGetResponse struct {
	Body json.RawMessage
}

// domainPrompt wraps mcp.Prompt for conversion to Prompt via ToAPIType.
type domainPrompt mcp.Prompt

// ToAPIType converts a wrapped domain type to Prompt.
func (d domainPrompt) ToAPIType() (Prompt, error) {
	args := make([]PromptArgument, 0, len(d.Arguments))
	for _, a := range d.Arguments {
		args = append(args, PromptArgument{
			Name:        a.Name,
			Description: a.Description,
			Required:    a.Required,
		})
	}
	if len(args) == 0 {
		args = nil
	}

	return Prompt{
		Name:        d.Name,
		Description: d.Description,
		Arguments:   args,
	}, nil
}

// RegisterPromptRoutes sets up prompt discovery and fetch endpoint routes.
func RegisterPromptRoutes(routerAPI huma.API, gateway contracts.Router, apiPathPrefix string) {
	promptsAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Prompts"}

	huma.Register(
		promptsAPI,
		huma.Operation{
			OperationID: "listPrompts",
			Method:      http.MethodGet,
			Summary:     "List prompts across all servers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*PromptsResponse, error) {
			return handleListPrompts(ctx, gateway)
		},
	)

	huma.Register(
		promptsAPI,
		huma.Operation{
			OperationID: "getPrompt",
			Method:      http.MethodPost,
			Path:        "/{name}",
			Summary:     "Fetch a namespaced prompt",
			Tags:        tags,
		},
		func(ctx context.Context, input *PromptGetRequest) (*PromptGetResponse, error) {
			return handlePromptGet(ctx, gateway, input.Name, input.Body)
		},
	)
}

// handleListPrompts returns the federated prompt collection.
func handleListPrompts(ctx context.Context, gateway contracts.Router) (*PromptsResponse, error) {
	prompts := gateway.ListAllPrompts(ctx)

	apiPrompts := make([]Prompt, 0, len(prompts))
	for _, prompt := range prompts {
		data, err := domainPrompt(prompt).ToAPIType()
		if err != nil {
			return nil, err
		}
		apiPrompts = append(apiPrompts, data)
	}

	resp := &PromptsResponse{}
	resp.Body.Prompts = apiPrompts

	return resp, nil
}

// handlePromptGet routes a namespaced prompt fetch through the gateway.
func handlePromptGet(ctx context.Context, gateway contracts.Router, name string, args map[string]any) (*PromptGetResponse, error) {
	raw, err := gateway.GetPrompt(ctx, name, args)
	if err != nil {
		return nil, err
	}

	return &PromptGetResponse{Body: raw}, nil
}
