package aggregate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/alpstack/mcpgate/internal/domain"
)

func servers(ids ...string) []domain.ServerRegistration {
	regs := make([]domain.ServerRegistration, 0, len(ids))
	for _, id := range ids {
		regs = append(regs, domain.ServerRegistration{ID: id})
	}
	return regs
}

func TestCollect_MergesAllServers(t *testing.T) {
	t.Parallel()

	fetch := func(_ context.Context, srv domain.ServerRegistration) ([]string, error) {
		switch srv.ID {
		case "journey-service-mcp":
			return []string{"findTrips"}, nil
		case "swiss-mobility-mcp":
			return []string{"getStations"}, nil
		default:
			return nil, nil
		}
	}

	got := Collect(
		context.Background(),
		hclog.NewNullLogger(),
		servers("journey-service-mcp", "swiss-mobility-mcp"),
		fetch,
		"tools",
	)

	// Cross-server order is unspecified, so compare as a set.
	require.ElementsMatch(t, []string{"findTrips", "getStations"}, got)
}

func TestCollect_FailedFetchIsDiscarded(t *testing.T) {
	t.Parallel()

	fetch := func(_ context.Context, srv domain.ServerRegistration) ([]int, error) {
		switch srv.ID {
		case "a":
			return []int{1, 2}, nil
		case "b":
			return nil, fmt.Errorf("connection refused")
		case "c":
			return []int{3}, nil
		default:
			return nil, nil
		}
	}

	got := Collect(context.Background(), hclog.NewNullLogger(), servers("a", "b", "c"), fetch, "items")

	// The union of the surviving servers, nothing from the failed one.
	require.Len(t, got, 3)
	require.ElementsMatch(t, []int{1, 2, 3}, got)
}

func TestCollect_IntraServerOrderPreserved(t *testing.T) {
	t.Parallel()

	fetch := func(_ context.Context, srv domain.ServerRegistration) ([]string, error) {
		if srv.ID == "a" {
			return []string{"a1", "a2", "a3"}, nil
		}
		return nil, fmt.Errorf("down")
	}

	got := Collect(context.Background(), hclog.NewNullLogger(), servers("b", "a"), fetch, "items")
	require.Equal(t, []string{"a1", "a2", "a3"}, got)
}

func TestCollect_EmptyInputDoesNotInvokeFetch(t *testing.T) {
	t.Parallel()

	var invoked atomic.Bool
	fetch := func(_ context.Context, _ domain.ServerRegistration) ([]string, error) {
		invoked.Store(true)
		return nil, nil
	}

	got := Collect(context.Background(), hclog.NewNullLogger(), nil, fetch, "items")
	require.Empty(t, got)
	require.False(t, invoked.Load())
}

func TestCollect_FetchesRunConcurrently(t *testing.T) {
	t.Parallel()

	const n = 8

	// Every fetch blocks until all n are in flight; the test deadlocks at the
	// barrier unless all invocations are issued before any is awaited.
	var wg sync.WaitGroup
	wg.Add(n)

	fetch := func(_ context.Context, srv domain.ServerRegistration) ([]string, error) {
		wg.Done()
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return []string{srv.ID}, nil
		case <-time.After(5 * time.Second):
			return nil, fmt.Errorf("barrier timeout: fetches were serialized")
		}
	}

	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("server-%d", i)
	}

	got := Collect(context.Background(), hclog.NewNullLogger(), servers(ids...), fetch, "items")
	require.Len(t, got, n)
}
