// Package gateway composes the routing core: namespace resolution, the
// response cache, the backend client, and discovery aggregation across all
// registered backends.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/xeipuuv/gojsonschema"

	"github.com/alpstack/mcpgate/internal/aggregate"
	"github.com/alpstack/mcpgate/internal/cache"
	"github.com/alpstack/mcpgate/internal/contracts"
	"github.com/alpstack/mcpgate/internal/domain"
	errs "github.com/alpstack/mcpgate/internal/errors"
	"github.com/alpstack/mcpgate/internal/namespace"
)

var _ contracts.Router = (*Gateway)(nil)

// Gateway routes namespaced capability calls to backend servers.
// NewGateway should be used to create instances of Gateway.
type Gateway struct {
	logger   hclog.Logger
	registry contracts.ServerDirectory
	caller   contracts.BackendCaller
	cache    *cache.ResponseCache

	// schemas indexes advertised tool input schemas by server id and local
	// tool name, refreshed together with the capability snapshots.
	mu      sync.RWMutex
	schemas map[string]map[string]json.RawMessage
}

// NewGateway creates a gateway over the given registry, backend caller and
// response cache.
func NewGateway(
	logger hclog.Logger,
	registry contracts.ServerDirectory,
	caller contracts.BackendCaller,
	responseCache *cache.ResponseCache,
) (*Gateway, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if caller == nil {
		return nil, fmt.Errorf("backend caller cannot be nil")
	}
	if responseCache == nil {
		return nil, fmt.Errorf("response cache cannot be nil")
	}

	return &Gateway{
		logger:   logger.Named("gateway"),
		registry: registry,
		caller:   caller,
		cache:    responseCache,
		schemas:  make(map[string]map[string]json.RawMessage),
	}, nil
}

// CallTool routes a namespaced tool call ("journey.findTrips") to its backend.
// Idempotent responses are served from the cache when present; a miss
// dispatches to the backend under the retry policy and populates the cache.
func (g *Gateway) CallTool(ctx context.Context, fullName string, args map[string]any) (json.RawMessage, error) {
	serverID := namespace.ExtractServerID(fullName)
	localName := namespace.StripNamespace(fullName)

	srv, ok := g.registry.Get(serverID)
	if !ok {
		return nil, fmt.Errorf("%w: %s (from '%s')", errs.ErrServerNotFound, serverID, fullName)
	}

	if err := g.validateArgs(serverID, localName, args); err != nil {
		return nil, err
	}

	key := cache.GenerateKey(fullName, args)
	if value, hit := g.cache.Get(ctx, key); hit {
		g.logger.Debug("Cache hit", "tool", fullName, "key", key)
		return value, nil
	}

	raw, err := g.caller.CallTool(ctx, srv, localName, args)
	if err != nil {
		g.recordFailure(serverID, err)
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrToolCallFailed, fullName, err)
	}
	g.recordSuccess(serverID)

	g.cache.Set(ctx, key, raw, 0)

	return raw, nil
}

// ReadResource routes a resource read to the backend identified by server,
// which may be a namespace alias ("journey") or a registration id.
func (g *Gateway) ReadResource(ctx context.Context, server, uri string) (json.RawMessage, error) {
	srv, err := g.resolveServer(server)
	if err != nil {
		return nil, err
	}

	key := cache.GenerateKey(uri, map[string]any{"server": srv.ID})
	if value, hit := g.cache.Get(ctx, key); hit {
		g.logger.Debug("Cache hit", "uri", uri, "key", key)
		return value, nil
	}

	raw, err := g.caller.ReadResource(ctx, srv, uri)
	if err != nil {
		g.recordFailure(srv.ID, err)
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrResourceReadFailed, uri, err)
	}
	g.recordSuccess(srv.ID)

	g.cache.Set(ctx, key, raw, 0)

	return raw, nil
}

// GetPrompt routes a namespaced prompt fetch ("journey.tripSummary") to its backend.
func (g *Gateway) GetPrompt(ctx context.Context, fullName string, args map[string]any) (json.RawMessage, error) {
	serverID := namespace.ExtractServerID(fullName)
	localName := namespace.StripNamespace(fullName)

	srv, ok := g.registry.Get(serverID)
	if !ok {
		return nil, fmt.Errorf("%w: %s (from '%s')", errs.ErrServerNotFound, serverID, fullName)
	}

	key := cache.GenerateKey(fullName, args)
	if value, hit := g.cache.Get(ctx, key); hit {
		g.logger.Debug("Cache hit", "prompt", fullName, "key", key)
		return value, nil
	}

	raw, err := g.caller.GetPrompt(ctx, srv, localName, args)
	if err != nil {
		g.recordFailure(serverID, err)
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrPromptGetFailed, fullName, err)
	}
	g.recordSuccess(serverID)

	g.cache.Set(ctx, key, raw, 0)

	return raw, nil
}

// ListAllTools aggregates tools across all routable backends, renaming each
// tool with its server's namespace alias.
func (g *Gateway) ListAllTools(ctx context.Context) []mcp.Tool {
	return aggregate.Collect(ctx, g.logger, g.routable(),
		func(ctx context.Context, srv domain.ServerRegistration) ([]mcp.Tool, error) {
			tools := g.caller.ListTools(ctx, srv)
			for i := range tools {
				tools[i].Name = namespace.AddNamespace(srv.ID, tools[i].Name)
			}
			return tools, nil
		},
		"tools",
	)
}

// ListAllResources aggregates resources across all routable backends.
// Resource URIs are globally meaningful and are passed through untouched.
func (g *Gateway) ListAllResources(ctx context.Context) []mcp.Resource {
	return aggregate.Collect(ctx, g.logger, g.routable(),
		func(ctx context.Context, srv domain.ServerRegistration) ([]mcp.Resource, error) {
			return g.caller.ListResources(ctx, srv), nil
		},
		"resources",
	)
}

// ListAllPrompts aggregates prompts across all routable backends, renaming
// each prompt with its server's namespace alias.
func (g *Gateway) ListAllPrompts(ctx context.Context) []mcp.Prompt {
	return aggregate.Collect(ctx, g.logger, g.routable(),
		func(ctx context.Context, srv domain.ServerRegistration) ([]mcp.Prompt, error) {
			prompts := g.caller.ListPrompts(ctx, srv)
			for i := range prompts {
				prompts[i].Name = namespace.AddNamespace(srv.ID, prompts[i].Name)
			}
			return prompts, nil
		},
		"prompts",
	)
}

// RefreshCapabilities re-discovers one backend's advertised surface and
// replaces its capability snapshot wholesale, along with the tool schema index
// used for argument validation.
func (g *Gateway) RefreshCapabilities(ctx context.Context, serverID string) error {
	srv, ok := g.registry.Get(serverID)
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrServerNotFound, serverID)
	}

	tools := g.caller.ListTools(ctx, srv)
	resources := g.caller.ListResources(ctx, srv)
	prompts := g.caller.ListPrompts(ctx, srv)

	caps := domain.ServerCapabilities{
		Tools:     make([]string, 0, len(tools)),
		Resources: make([]domain.ResourceInfo, 0, len(resources)),
		Prompts:   make([]string, 0, len(prompts)),
	}

	schemas := make(map[string]json.RawMessage, len(tools))
	for _, tool := range tools {
		caps.Tools = append(caps.Tools, tool.Name)

		if tool.InputSchema.Type == "" && len(tool.InputSchema.Properties) == 0 {
			continue
		}
		if encoded, err := json.Marshal(tool.InputSchema); err == nil {
			schemas[tool.Name] = encoded
		}
	}

	for _, res := range resources {
		if strings.TrimSpace(res.URI) == "" {
			continue
		}
		caps.Resources = append(caps.Resources, domain.ResourceInfo{
			URIPrefix:   res.URI,
			Description: res.Description,
		})
	}

	for _, prompt := range prompts {
		caps.Prompts = append(caps.Prompts, prompt.Name)
	}

	if err := g.registry.SetCapabilities(serverID, caps); err != nil {
		return err
	}

	g.mu.Lock()
	g.schemas[serverID] = schemas
	g.mu.Unlock()

	g.logger.Info(
		"Refreshed server capabilities",
		"server", serverID,
		"tools", len(caps.Tools),
		"resources", len(caps.Resources),
		"prompts", len(caps.Prompts),
	)

	return nil
}

// routable returns all registered servers that are not known to be down.
// Unknown servers are included so a backend is reachable before its first probe.
func (g *Gateway) routable() []domain.ServerRegistration {
	all := g.registry.List()
	servers := make([]domain.ServerRegistration, 0, len(all))
	for _, srv := range all {
		if srv.Health.Status == domain.HealthStatusDown {
			continue
		}
		servers = append(servers, srv)
	}

	return servers
}

// resolveServer accepts either a registration id or a namespace alias.
func (g *Gateway) resolveServer(ref string) (domain.ServerRegistration, error) {
	if srv, ok := g.registry.Get(ref); ok {
		return srv, nil
	}
	if srv, ok := g.registry.Get(namespace.ExtractServerID(ref)); ok {
		return srv, nil
	}

	return domain.ServerRegistration{}, fmt.Errorf("%w: %s", errs.ErrServerNotFound, ref)
}

// validateArgs checks the call arguments against the tool's advertised input
// schema when one is known. Tools without a schema skip validation, and an
// unusable schema is skipped rather than blocking the call.
func (g *Gateway) validateArgs(serverID, localName string, args map[string]any) error {
	g.mu.RLock()
	schema, ok := g.schemas[serverID][localName]
	g.mu.RUnlock()
	if !ok {
		return nil
	}

	document := args
	if document == nil {
		document = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		g.logger.Warn("Tool schema could not be evaluated, skipping validation",
			"server", serverID, "tool", localName, "error", err)
		return nil
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("%w: invalid arguments for '%s': %s",
			errs.ErrBadRequest, localName, strings.Join(details, "; "))
	}

	return nil
}

// recordSuccess is the incidental health update from a successful user-facing
// call: the status transitions to healthy and the failure run resets.
func (g *Gateway) recordSuccess(serverID string) {
	err := g.registry.UpdateHealth(serverID, func(h domain.ServerHealth) domain.ServerHealth {
		h.Status = domain.HealthStatusHealthy
		h.LastCheck = time.Now()
		h.ErrorMessage = ""
		h.ConsecutiveFailures = 0
		return h
	})
	if err != nil {
		g.logger.Debug("Failed to record call success", "server", serverID, "error", err)
	}
}

// recordFailure increments the failure run without deciding a status; status
// escalation belongs to the health monitor policy.
func (g *Gateway) recordFailure(serverID string, cause error) {
	err := g.registry.UpdateHealth(serverID, func(h domain.ServerHealth) domain.ServerHealth {
		h.LastCheck = time.Now()
		h.ErrorMessage = cause.Error()
		h.ConsecutiveFailures++
		return h
	})
	if err != nil {
		g.logger.Debug("Failed to record call failure", "server", serverID, "error", err)
	}
}
