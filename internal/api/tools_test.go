package api

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	errs "github.com/alpstack/mcpgate/internal/errors"
)

// fakeRouter stubs the gateway routing surface for handler tests.
type fakeRouter struct {
	callTool     func(fullName string, args map[string]any) (json.RawMessage, error)
	readResource func(server, uri string) (json.RawMessage, error)
	getPrompt    func(fullName string, args map[string]any) (json.RawMessage, error)
	tools        []mcp.Tool
	resources    []mcp.Resource
	prompts      []mcp.Prompt
}

func (f *fakeRouter) CallTool(_ context.Context, fullName string, args map[string]any) (json.RawMessage, error) {
	return f.callTool(fullName, args)
}

func (f *fakeRouter) ReadResource(_ context.Context, server, uri string) (json.RawMessage, error) {
	return f.readResource(server, uri)
}

func (f *fakeRouter) GetPrompt(_ context.Context, fullName string, args map[string]any) (json.RawMessage, error) {
	return f.getPrompt(fullName, args)
}

func (f *fakeRouter) ListAllTools(_ context.Context) []mcp.Tool          { return f.tools }
func (f *fakeRouter) ListAllResources(_ context.Context) []mcp.Resource { return f.resources }
func (f *fakeRouter) ListAllPrompts(_ context.Context) []mcp.Prompt     { return f.prompts }

func TestDomainTool_ToAPIType(t *testing.T) {
	t.Parallel()

	tool := mcp.Tool{
		Name:        "journey.findTrips",
		Description: "Find trips between two stations",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"from": map[string]any{"type": "string"},
			},
			Required: []string{"from"},
		},
	}

	got, err := domainTool(tool).ToAPIType()
	require.NoError(t, err)

	require.Equal(t, "journey.findTrips", got.Name)
	require.Equal(t, "Find trips between two stations", got.Description)
	require.NotNil(t, got.InputSchema)
	require.Equal(t, "object", got.InputSchema.Type)
	require.Equal(t, []string{"from"}, got.InputSchema.Required)
}

func TestDomainTool_ToAPIType_NoSchemaOmitted(t *testing.T) {
	t.Parallel()

	got, err := domainTool(mcp.Tool{Name: "meteo.ping"}).ToAPIType()
	require.NoError(t, err)
	require.Nil(t, got.InputSchema)
}

func TestHandleListTools(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{tools: []mcp.Tool{
		{Name: "journey.findTrips"},
		{Name: "meteo.getForecast"},
	}}

	resp, err := handleListTools(context.Background(), router)
	require.NoError(t, err)
	require.Len(t, resp.Body.Tools, 2)
	require.Equal(t, "journey.findTrips", resp.Body.Tools[0].Name)
}

func TestHandleToolCall(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{
		callTool: func(fullName string, args map[string]any) (json.RawMessage, error) {
			require.Equal(t, "journey.findTrips", fullName)
			require.Equal(t, map[string]any{"from": "Bern"}, args)
			return json.RawMessage(`{"trips":[]}`), nil
		},
	}

	resp, err := handleToolCall(context.Background(), router, "journey.findTrips", map[string]any{"from": "Bern"})
	require.NoError(t, err)
	require.JSONEq(t, `{"trips":[]}`, string(resp.Body))
}

func TestHandleToolCall_ErrorPropagates(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{
		callTool: func(_ string, _ map[string]any) (json.RawMessage, error) {
			return nil, fmt.Errorf("%w: journey.findTrips", errs.ErrToolCallFailed)
		},
	}

	_, err := handleToolCall(context.Background(), router, "journey.findTrips", nil)
	require.ErrorIs(t, err, errs.ErrToolCallFailed)
}
