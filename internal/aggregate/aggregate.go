// Package aggregate implements the fan-out/fan-in used for capability
// discovery: invoke a fetch against every backend concurrently, drop the
// failures, and flatten the successes into one collection.
package aggregate

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/alpstack/mcpgate/internal/domain"
)

// Fetch retrieves one backend's contribution to an aggregated collection.
type Fetch[T any] func(ctx context.Context, srv domain.ServerRegistration) ([]T, error)

// Collect invokes fetch for every server concurrently and concatenates the
// successful results. A failed fetch is logged and contributes nothing; it
// never prevents collection of the other servers' results. Intra-server order
// is preserved. itemLabel only tags log lines.
func Collect[T any](
	ctx context.Context,
	logger hclog.Logger,
	servers []domain.ServerRegistration,
	fetch Fetch[T],
	itemLabel string,
) []T {
	if len(servers) == 0 {
		return nil
	}

	results := make([][]T, len(servers))

	g, gctx := errgroup.WithContext(ctx)
	for i, srv := range servers {
		g.Go(func() error {
			items, err := fetch(gctx, srv)
			if err != nil {
				logger.Warn("Discarding failed fetch", "server", srv.ID, "items", itemLabel, "error", err)
				return nil
			}
			results[i] = items
			return nil
		})
	}

	// Fetch errors are swallowed above, so Wait only joins the goroutines.
	_ = g.Wait()

	total := 0
	for _, items := range results {
		total += len(items)
	}

	flat := make([]T, 0, total)
	for _, items := range results {
		flat = append(flat, items...)
	}

	return flat
}
