package api

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/alpstack/mcpgate/internal/contracts"
)

// APIVersion is the version used in the OpenAPI spec and URL paths.
const APIVersion = "v1"

// RegisterRoutes registers all API routes on the provided Huma router.
// This is the single source of truth for the API route structure.
// Returns the API path prefix (e.g., "/api/v1") under which the routes are created.
func RegisterRoutes(
	router huma.API,
	gateway contracts.Router,
	directory contracts.ServerDirectory,
	cacheCtl contracts.CacheController,
) (string, error) {
	if router == nil || reflect.ValueOf(router).IsNil() {
		return "", fmt.Errorf("router cannot be nil")
	}
	if gateway == nil || reflect.ValueOf(gateway).IsNil() {
		return "", fmt.Errorf("gateway cannot be nil")
	}
	if directory == nil || reflect.ValueOf(directory).IsNil() {
		return "", fmt.Errorf("server directory cannot be nil")
	}
	if cacheCtl == nil || reflect.ValueOf(cacheCtl).IsNil() {
		return "", fmt.Errorf("cache controller cannot be nil")
	}

	// Extract API version from the router's OpenAPI spec.
	apiVersionID := router.OpenAPI().Info.Version

	// Safe way to ensure /api/{version}.
	apiPathPrefix, err := url.JoinPath("/api", apiVersionID)
	if err != nil {
		return "", fmt.Errorf("failed to construct API path prefix: %w", err)
	}

	// Group all routes under the /api/{version} prefix.
	versionedGroup := huma.NewGroup(router, apiPathPrefix)
	RegisterServerRoutes(versionedGroup, directory, "/servers")
	RegisterHealthRoutes(versionedGroup, directory, "/health")
	RegisterToolRoutes(versionedGroup, gateway, "/tools")
	RegisterResourceRoutes(versionedGroup, gateway, "/resources")
	RegisterPromptRoutes(versionedGroup, gateway, "/prompts")
	RegisterCacheRoutes(versionedGroup, cacheCtl, "/cache")

	return apiPathPrefix, nil
}
