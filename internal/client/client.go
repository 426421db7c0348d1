// Package client implements the backend call client: one method per protocol
// operation, bounded retry with exponential backoff for user-facing calls,
// best-effort listing for discovery, and health observations derived from
// probe outcomes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alpstack/mcpgate/internal/config"
	"github.com/alpstack/mcpgate/internal/contracts"
	"github.com/alpstack/mcpgate/internal/domain"
)

// Fixed operation paths relative to a backend's endpoint.
const (
	pathToolsCall     = "/tools/call"
	pathToolsList     = "/tools/list"
	pathResourcesRead = "/resources/read"
	pathResourcesList = "/resources/list"
	pathPromptsGet    = "/prompts/get"
	pathPromptsList   = "/prompts/list"
	pathHealth        = "/health"
)

var _ contracts.BackendCaller = (*Client)(nil)

// Client issues protocol operations against backend servers.
// NewClient should be used to create instances of Client.
type Client struct {
	logger hclog.Logger
	http   Doer
	retry  config.RetryConfig
}

// NewClient creates a backend client using the given transport and retry policy.
func NewClient(logger hclog.Logger, transport Doer, retry config.RetryConfig) (*Client, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport cannot be nil")
	}
	if retry.MaxAttempts < 1 {
		return nil, fmt.Errorf("retry max attempts must be at least 1, got %d", retry.MaxAttempts)
	}

	return &Client{
		logger: logger.Named("client"),
		http:   transport,
		retry:  retry,
	}, nil
}

// callRequest is the wire body for tool calls and prompt fetches.
type callRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// readRequest is the wire body for resource reads.
type readRequest struct {
	URI string `json:"uri"`
}

// CallTool invokes the named tool on the backend. The call runs under the
// retry policy; an exhausted retry budget propagates the last failure.
func (c *Client) CallTool(ctx context.Context, srv domain.ServerRegistration, name string, args map[string]any) (json.RawMessage, error) {
	return c.callWithRetry(ctx, srv, pathToolsCall, callRequest{Name: name, Arguments: args})
}

// ReadResource reads the resource at uri from the backend under the retry policy.
func (c *Client) ReadResource(ctx context.Context, srv domain.ServerRegistration, uri string) (json.RawMessage, error) {
	return c.callWithRetry(ctx, srv, pathResourcesRead, readRequest{URI: uri})
}

// GetPrompt fetches the named prompt from the backend under the retry policy.
func (c *Client) GetPrompt(ctx context.Context, srv domain.ServerRegistration, name string, args map[string]any) (json.RawMessage, error) {
	return c.callWithRetry(ctx, srv, pathPromptsGet, callRequest{Name: name, Arguments: args})
}

// ListTools returns the backend's advertised tools. Listing is best-effort
// discovery: any failure yields an empty result instead of an error.
func (c *Client) ListTools(ctx context.Context, srv domain.ServerRegistration) []mcp.Tool {
	var payload struct {
		Tools []mcp.Tool `json:"tools"`
	}
	if !c.list(ctx, srv, pathToolsList, "tools", &payload) {
		return nil
	}
	return payload.Tools
}

// ListResources returns the backend's advertised resources, or an empty result
// on any failure.
func (c *Client) ListResources(ctx context.Context, srv domain.ServerRegistration) []mcp.Resource {
	var payload struct {
		Resources []mcp.Resource `json:"resources"`
	}
	if !c.list(ctx, srv, pathResourcesList, "resources", &payload) {
		return nil
	}
	return payload.Resources
}

// ListPrompts returns the backend's advertised prompts, or an empty result on
// any failure.
func (c *Client) ListPrompts(ctx context.Context, srv domain.ServerRegistration) []mcp.Prompt {
	var payload struct {
		Prompts []mcp.Prompt `json:"prompts"`
	}
	if !c.list(ctx, srv, pathPromptsList, "prompts", &payload) {
		return nil
	}
	return payload.Prompts
}

// CheckHealth issues a single probe against the backend's health path and
// derives an observation from the outcome. It never returns an error: a failed
// probe is the expected signal for a down observation. The failure count is
// anchored to the previous count carried on the registration snapshot.
func (c *Client) CheckHealth(ctx context.Context, srv domain.ServerRegistration) domain.ServerHealth {
	start := time.Now()
	err := c.probe(ctx, srv)
	now := time.Now()

	if err != nil {
		c.logger.Debug("Health probe failed", "server", srv.ID, "error", err)

		return domain.ServerHealth{
			Status:              domain.HealthStatusDown,
			LastCheck:           now,
			ErrorMessage:        err.Error(),
			ConsecutiveFailures: srv.Health.ConsecutiveFailures + 1,
		}
	}

	return domain.ServerHealth{
		Status:    domain.HealthStatusHealthy,
		LastCheck: now,
		Latency:   now.Sub(start),
	}
}

func (c *Client) probe(ctx context.Context, srv domain.ServerRegistration) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinEndpoint(srv.Endpoint, pathHealth), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health probe returned status %d", resp.StatusCode)
	}

	return nil
}

// callWithRetry runs one user-facing operation under the retry policy:
// wait min(backoffDelay * multiplier^(attempt-1), maxDelay) between attempts,
// exactly maxAttempts attempts, then propagate the last failure.
func (c *Client) callWithRetry(ctx context.Context, srv domain.ServerRegistration, path string, payload any) (json.RawMessage, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		raw, err := c.post(ctx, srv.Endpoint, path, payload)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		if attempt == c.retry.MaxAttempts {
			break
		}

		wait := c.backoff(attempt)
		c.logger.Debug(
			"Backend call failed, retrying",
			"server", srv.ID,
			"path", path,
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w (cancelled during backoff: %w)", lastErr, ctx.Err())
		}
	}

	return nil, fmt.Errorf("backend '%s' failed after %d attempts: %w", srv.ID, c.retry.MaxAttempts, lastErr)
}

// backoff computes the wait before the (attempt+1)-th attempt.
func (c *Client) backoff(attempt int) time.Duration {
	wait := c.retry.BackoffDelay.Std()
	for i := 1; i < attempt; i++ {
		wait = time.Duration(float64(wait) * c.retry.BackoffMultiplier)
		if wait >= c.retry.MaxDelay.Std() {
			return c.retry.MaxDelay.Std()
		}
	}
	if limit := c.retry.MaxDelay.Std(); wait > limit {
		return limit
	}
	return wait
}

// list performs one discovery request and decodes the response into out.
// Failures are logged and reported as false, never propagated.
func (c *Client) list(ctx context.Context, srv domain.ServerRegistration, path, label string, out any) bool {
	raw, err := c.post(ctx, srv.Endpoint, path, struct{}{})
	if err != nil {
		c.logger.Warn("Discovery call failed, returning empty result", "server", srv.ID, "items", label, "error", err)
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("Discovery response malformed, returning empty result", "server", srv.ID, "items", label, "error", err)
		return false
	}

	return true
}

func (c *Client) post(ctx context.Context, endpoint, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinEndpoint(endpoint, path), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("backend returned status %d for %s", resp.StatusCode, path)
	}

	return raw, nil
}

func joinEndpoint(endpoint, path string) string {
	return strings.TrimRight(endpoint, "/") + path
}
