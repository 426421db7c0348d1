package api

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alpstack/mcpgate/internal/domain"
	errs "github.com/alpstack/mcpgate/internal/errors"
	"github.com/alpstack/mcpgate/internal/gateway"
)

func TestParseHealthStatus_ValidCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    domain.HealthStatus
		expected HealthStatus
	}{
		{
			"healthy",
			domain.HealthStatusHealthy,
			HealthStatusHealthy,
		},
		{
			"degraded",
			domain.HealthStatusDegraded,
			HealthStatusDegraded,
		},
		{
			"down",
			domain.HealthStatusDown,
			HealthStatusDown,
		},
		{
			"unknown",
			domain.HealthStatusUnknown,
			HealthStatusUnknown,
		},
		{
			"empty maps to unknown",
			domain.HealthStatus(""),
			HealthStatusUnknown,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseHealthStatus(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestParseHealthStatus_InvalidCase(t *testing.T) {
	t.Parallel()

	input := domain.HealthStatus("invalid-status")
	_, err := parseHealthStatus(input)
	require.Error(t, err)
	require.EqualError(t, err, fmt.Sprintf("unknown health status: %s", input))
}

func TestDomainServerHealth_ToAPIType(t *testing.T) {
	t.Parallel()

	checked := time.Now()
	health := domain.ServerHealth{
		Status:              domain.HealthStatusDegraded,
		LastCheck:           checked,
		Latency:             42 * time.Millisecond,
		ErrorMessage:        "timeout",
		ConsecutiveFailures: 2,
	}

	got, err := DomainServerHealth(health).ToAPIType("journey-service-mcp")
	require.NoError(t, err)

	require.Equal(t, "journey-service-mcp", got.ID)
	require.Equal(t, HealthStatusDegraded, got.Status)
	require.NotNil(t, got.Latency)
	require.Equal(t, "42ms", *got.Latency)
	require.NotNil(t, got.LastCheck)
	require.Equal(t, checked, *got.LastCheck)
	require.Equal(t, "timeout", got.ErrorMessage)
	require.Equal(t, 2, got.ConsecutiveFailures)
}

func TestDomainServerHealth_ToAPIType_ZeroValuesOmitted(t *testing.T) {
	t.Parallel()

	got, err := DomainServerHealth(domain.ServerHealth{Status: domain.HealthStatusUnknown}).ToAPIType("x")
	require.NoError(t, err)

	require.Nil(t, got.Latency, "a server never probed has no latency")
	require.Nil(t, got.LastCheck)
}

func TestHandleHealthServers_SortedByID(t *testing.T) {
	t.Parallel()

	registry := gateway.NewServerRegistry()
	for _, id := range []string{"swiss-mobility-mcp", "aareguru-mcp", "journey-service-mcp"} {
		require.NoError(t, registry.Add(domain.ServerRegistration{ID: id}))
	}

	resp, err := handleHealthServers(registry)
	require.NoError(t, err)

	ids := make([]string, 0, len(resp.Body.Servers))
	for _, s := range resp.Body.Servers {
		ids = append(ids, s.ID)
	}
	require.Equal(t, []string{"aareguru-mcp", "journey-service-mcp", "swiss-mobility-mcp"}, ids)
}

func TestHandleHealthServer_NotFound(t *testing.T) {
	t.Parallel()

	registry := gateway.NewServerRegistry()

	_, err := handleHealthServer(registry, "ghost")
	require.ErrorIs(t, err, errs.ErrServerNotFound)
}
