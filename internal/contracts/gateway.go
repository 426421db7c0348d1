// Package contracts declares the interfaces that stitch the gateway core
// together. Consumers depend on these seams rather than concrete types so the
// routing logic, backend client and registry can be exercised independently.
package contracts

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alpstack/mcpgate/internal/cache"
	"github.com/alpstack/mcpgate/internal/domain"
)

// HealthProber is the probe seam consumed by the health monitor.
type HealthProber interface {
	// CheckHealth probes the backend and derives a health observation from the
	// outcome. It only ever emits healthy or down; degraded is a policy
	// decision made by the health monitor.
	CheckHealth(ctx context.Context, srv domain.ServerRegistration) domain.ServerHealth
}

// BackendCaller issues single logical operations against one backend server.
type BackendCaller interface {
	HealthProber

	// CallTool invokes a tool by its local name, retrying per policy.
	// Retry-exhausted failures propagate.
	CallTool(ctx context.Context, srv domain.ServerRegistration, name string, args map[string]any) (json.RawMessage, error)

	// ReadResource reads a resource by URI, retrying per policy.
	ReadResource(ctx context.Context, srv domain.ServerRegistration, uri string) (json.RawMessage, error)

	// GetPrompt fetches a prompt by its local name, retrying per policy.
	GetPrompt(ctx context.Context, srv domain.ServerRegistration, name string, args map[string]any) (json.RawMessage, error)

	// ListTools returns the backend's tools, or an empty slice on any failure.
	ListTools(ctx context.Context, srv domain.ServerRegistration) []mcp.Tool

	// ListResources returns the backend's resources, or an empty slice on any failure.
	ListResources(ctx context.Context, srv domain.ServerRegistration) []mcp.Resource

	// ListPrompts returns the backend's prompts, or an empty slice on any failure.
	ListPrompts(ctx context.Context, srv domain.ServerRegistration) []mcp.Prompt
}

// ServerDirectory provides access to the registered backend servers and their
// mutable live state.
type ServerDirectory interface {
	// Add registers a server. Ids must be unique across the gateway.
	Add(reg domain.ServerRegistration) error

	// Get returns a snapshot of the registration for the given id.
	Get(id string) (domain.ServerRegistration, bool)

	// List returns snapshots of all registrations.
	List() []domain.ServerRegistration

	// SetCapabilities replaces a server's capability snapshot wholesale.
	SetCapabilities(id string, caps domain.ServerCapabilities) error

	// UpdateHealth applies update to the server's health under exclusion,
	// so concurrent read-modify-write cycles never lose an increment.
	UpdateHealth(id string, update func(domain.ServerHealth) domain.ServerHealth) error
}

// Router is the gateway routing surface exposed to the HTTP API.
type Router interface {
	// CallTool routes a namespaced tool call to its backend.
	CallTool(ctx context.Context, fullName string, args map[string]any) (json.RawMessage, error)

	// ReadResource routes a resource read to the named backend.
	ReadResource(ctx context.Context, server, uri string) (json.RawMessage, error)

	// GetPrompt routes a namespaced prompt fetch to its backend.
	GetPrompt(ctx context.Context, fullName string, args map[string]any) (json.RawMessage, error)

	// ListAllTools aggregates tools across all routable backends,
	// re-namespaced with their server aliases.
	ListAllTools(ctx context.Context) []mcp.Tool

	// ListAllResources aggregates resources across all routable backends.
	ListAllResources(ctx context.Context) []mcp.Resource

	// ListAllPrompts aggregates prompts across all routable backends,
	// re-namespaced with their server aliases.
	ListAllPrompts(ctx context.Context) []mcp.Prompt
}

// CacheController exposes response cache introspection to the HTTP API.
type CacheController interface {
	// Stats reports current cache statistics.
	Stats() cache.Stats

	// Clear empties the volatile tier.
	Clear()

	// Invalidate removes volatile entries whose key contains pattern.
	Invalidate(pattern string) int
}
