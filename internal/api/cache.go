package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/alpstack/mcpgate/internal/contracts"
)

// CacheStats reports response cache introspection data.
type CacheStats struct {
	// VolatileEntries is the current volatile-tier entry count.
	VolatileEntries int `doc:"Entries currently held in the volatile tier" json:"volatileEntries"`
}

// CacheStatsResponse represents the wrapped API response for cache statistics.
type CacheStatsResponse struct {
	Body CacheStats
}

// CacheFlushRequest represents the incoming API request to flush the cache.
// An empty pattern clears the volatile tier wholesale.
type CacheFlushRequest struct {
	Pattern string `doc:"Remove only entries whose key contains this substring" query:"pattern"`
}

// CacheFlushResponse represents the wrapped API response for a cache flush.
type CacheFlushResponse struct {
	Body struct {
		Cleared bool `doc:"Whether the whole volatile tier was cleared" json:"cleared"`
		Removed int  `doc:"Entries removed by pattern invalidation" json:"removed"`
	}
}

// RegisterCacheRoutes sets up cache introspection and flush endpoint routes.
func RegisterCacheRoutes(routerAPI huma.API, cacheCtl contracts.CacheController, apiPathPrefix string) {
	cacheAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Cache"}

	huma.Register(
		cacheAPI,
		huma.Operation{
			OperationID: "getCacheStats",
			Method:      http.MethodGet,
			Path:        "/stats",
			Summary:     "Get response cache statistics",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*CacheStatsResponse, error) {
			return handleCacheStats(cacheCtl)
		},
	)

	huma.Register(
		cacheAPI,
		huma.Operation{
			OperationID: "flushCache",
			Method:      http.MethodDelete,
			Summary:     "Flush the response cache",
			Description: "Clears the volatile tier, or removes only entries matching ?pattern= when given",
			Tags:        tags,
		},
		func(ctx context.Context, input *CacheFlushRequest) (*CacheFlushResponse, error) {
			return handleCacheFlush(cacheCtl, input.Pattern)
		},
	)
}

// handleCacheStats reports current cache statistics.
func handleCacheStats(cacheCtl contracts.CacheController) (*CacheStatsResponse, error) {
	stats := cacheCtl.Stats()

	resp := &CacheStatsResponse{}
	resp.Body = CacheStats{VolatileEntries: stats.VolatileEntries}

	return resp, nil
}

// handleCacheFlush clears or selectively invalidates the volatile tier.
func handleCacheFlush(cacheCtl contracts.CacheController, pattern string) (*CacheFlushResponse, error) {
	resp := &CacheFlushResponse{}

	if pattern == "" {
		cacheCtl.Clear()
		resp.Body.Cleared = true
		return resp, nil
	}

	resp.Body.Removed = cacheCtl.Invalidate(pattern)

	return resp, nil
}
