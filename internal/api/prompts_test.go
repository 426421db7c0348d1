package api

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func TestDomainPrompt_ToAPIType(t *testing.T) {
	t.Parallel()

	prompt := mcp.Prompt{
		Name:        "journey.tripSummary",
		Description: "Summarize a planned trip",
		Arguments: []mcp.PromptArgument{
			{Name: "tripId", Description: "Id of the trip", Required: true},
		},
	}

	got, err := domainPrompt(prompt).ToAPIType()
	require.NoError(t, err)

	require.Equal(t, "journey.tripSummary", got.Name)
	require.Equal(t, "Summarize a planned trip", got.Description)
	require.Len(t, got.Arguments, 1)
	require.Equal(t, "tripId", got.Arguments[0].Name)
	require.True(t, got.Arguments[0].Required)
}

func TestDomainPrompt_ToAPIType_NoArgumentsOmitted(t *testing.T) {
	t.Parallel()

	got, err := domainPrompt(mcp.Prompt{Name: "meteo.forecastBrief"}).ToAPIType()
	require.NoError(t, err)
	require.Nil(t, got.Arguments)
}

func TestHandlePromptGet(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{
		getPrompt: func(fullName string, args map[string]any) (json.RawMessage, error) {
			require.Equal(t, "journey.tripSummary", fullName)
			require.Equal(t, map[string]any{"tripId": "t-1"}, args)
			return json.RawMessage(`{"messages":[]}`), nil
		},
	}

	resp, err := handlePromptGet(context.Background(), router, "journey.tripSummary", map[string]any{"tripId": "t-1"})
	require.NoError(t, err)
	require.JSONEq(t, `{"messages":[]}`, string(resp.Body))
}

func TestHandleListPrompts(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{prompts: []mcp.Prompt{{Name: "journey.tripSummary"}}}

	resp, err := handleListPrompts(context.Background(), router)
	require.NoError(t, err)
	require.Len(t, resp.Body.Prompts, 1)
	require.Equal(t, "journey.tripSummary", resp.Body.Prompts[0].Name)
}
