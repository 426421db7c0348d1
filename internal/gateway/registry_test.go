package gateway

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alpstack/mcpgate/internal/domain"
	errs "github.com/alpstack/mcpgate/internal/errors"
)

func TestServerRegistry_AddAndGet(t *testing.T) {
	t.Parallel()

	reg := NewServerRegistry()
	err := reg.Add(domain.ServerRegistration{
		ID:       "journey-service-mcp",
		Name:     "Journey Service",
		Endpoint: "http://localhost:9001",
	})
	require.NoError(t, err)

	got, ok := reg.Get("journey-service-mcp")
	require.True(t, ok)
	require.Equal(t, "Journey Service", got.Name)
	require.Equal(t, domain.HealthStatusUnknown, got.Health.Status, "health starts unknown until the first probe")

	_, ok = reg.Get("nope")
	require.False(t, ok)
}

func TestServerRegistry_AddRejectsDuplicatesAndBlankIDs(t *testing.T) {
	t.Parallel()

	reg := NewServerRegistry()
	require.NoError(t, reg.Add(domain.ServerRegistration{ID: "a"}))

	err := reg.Add(domain.ServerRegistration{ID: "a"})
	require.ErrorIs(t, err, errs.ErrDuplicateServer)

	err = reg.Add(domain.ServerRegistration{ID: "   "})
	require.Error(t, err)
}

func TestServerRegistry_GetReturnsSnapshot(t *testing.T) {
	t.Parallel()

	reg := NewServerRegistry()
	require.NoError(t, reg.Add(domain.ServerRegistration{ID: "a", Priority: 1}))

	snap, ok := reg.Get("a")
	require.True(t, ok)
	snap.Priority = 99

	again, _ := reg.Get("a")
	require.Equal(t, 1, again.Priority, "mutating a snapshot must not leak into the registry")
}

func TestServerRegistry_SetCapabilities(t *testing.T) {
	t.Parallel()

	reg := NewServerRegistry()
	require.NoError(t, reg.Add(domain.ServerRegistration{ID: "a"}))

	caps := domain.ServerCapabilities{Tools: []string{"findTrips"}}
	require.NoError(t, reg.SetCapabilities("a", caps))

	got, _ := reg.Get("a")
	require.Equal(t, []string{"findTrips"}, got.Capabilities.Tools)

	err := reg.SetCapabilities("missing", caps)
	require.ErrorIs(t, err, errs.ErrServerNotFound)
}

func TestServerRegistry_UpdateHealthMissingServer(t *testing.T) {
	t.Parallel()

	reg := NewServerRegistry()
	err := reg.UpdateHealth("ghost", func(h domain.ServerHealth) domain.ServerHealth { return h })
	require.ErrorIs(t, err, errs.ErrHealthNotTracked)
}

func TestServerRegistry_UpdateHealthNeverLosesIncrements(t *testing.T) {
	t.Parallel()

	reg := NewServerRegistry()
	require.NoError(t, reg.Add(domain.ServerRegistration{ID: "a"}))

	const writers = 100

	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_ = reg.UpdateHealth("a", func(h domain.ServerHealth) domain.ServerHealth {
				h.ConsecutiveFailures++
				return h
			})
		}()
	}
	wg.Wait()

	got, _ := reg.Get("a")
	require.Equal(t, writers, got.Health.ConsecutiveFailures)
}
