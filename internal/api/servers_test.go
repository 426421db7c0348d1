package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alpstack/mcpgate/internal/domain"
	errs "github.com/alpstack/mcpgate/internal/errors"
	"github.com/alpstack/mcpgate/internal/gateway"
)

func TestDomainServer_ToAPIType(t *testing.T) {
	t.Parallel()

	registered := time.Now()
	reg := domain.ServerRegistration{
		ID:        "journey-service-mcp",
		Name:      "Journey Service",
		Endpoint:  "http://localhost:9001",
		Transport: domain.TransportHTTP,
		Priority:  10,
		Capabilities: domain.ServerCapabilities{
			Tools:   []string{"findTrips"},
			Prompts: []string{"tripSummary"},
		},
		Health:       domain.ServerHealth{Status: domain.HealthStatusHealthy},
		RegisteredAt: registered,
	}

	got, err := domainServer(reg).ToAPIType()
	require.NoError(t, err)

	require.Equal(t, "journey-service-mcp", got.ID)
	require.Equal(t, "Journey Service", got.Name)
	require.Equal(t, "http://localhost:9001", got.Endpoint)
	require.Equal(t, "http", got.Transport)
	require.Equal(t, 10, got.Priority)
	require.Equal(t, HealthStatusHealthy, got.Status)
	require.Equal(t, []string{"findTrips"}, got.Tools)
	require.Equal(t, []string{"tripSummary"}, got.Prompts)
	require.NotNil(t, got.RegisteredAt)
	require.Equal(t, registered, *got.RegisteredAt)
}

func TestHandleServers_SortedByID(t *testing.T) {
	t.Parallel()

	registry := gateway.NewServerRegistry()
	for _, id := range []string{"open-meteo-mcp", "aareguru-mcp"} {
		require.NoError(t, registry.Add(domain.ServerRegistration{ID: id, Transport: domain.TransportHTTP}))
	}

	resp, err := handleServers(registry)
	require.NoError(t, err)
	require.Len(t, resp.Body.Servers, 2)
	require.Equal(t, "aareguru-mcp", resp.Body.Servers[0].ID)
	require.Equal(t, "open-meteo-mcp", resp.Body.Servers[1].ID)
}

func TestHandleServer_NotFound(t *testing.T) {
	t.Parallel()

	registry := gateway.NewServerRegistry()

	_, err := handleServer(registry, "ghost")
	require.ErrorIs(t, err, errs.ErrServerNotFound)
}
