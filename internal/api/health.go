package api

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/alpstack/mcpgate/internal/contracts"
	"github.com/alpstack/mcpgate/internal/domain"
	errs "github.com/alpstack/mcpgate/internal/errors"
)

const (
	HealthStatusHealthy  HealthStatus = "healthy"
	HealthStatusDegraded HealthStatus = "degraded"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusUnknown  HealthStatus = "unknown"
)

// DomainServerHealth is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainServerHealth domain.ServerHealth

// HealthStatus represents the tracked status of a backend server.
type HealthStatus string

// ServerHealth reports the live health of one backend server.
type ServerHealth struct {
	ID                  string       `json:"id"`
	Status              HealthStatus `json:"status"`
	Latency             *string      `json:"latency,omitempty"`
	LastCheck           *time.Time   `json:"lastCheck,omitempty"`
	ErrorMessage        string       `json:"errorMessage,omitempty"`
	ConsecutiveFailures int          `json:"consecutiveFailures"`
}

// ServersHealthResponse is the response for GET /health/servers.
type ServersHealthResponse struct {
	Body struct {
		Servers []ServerHealth `doc:"Tracked backend server health statuses" json:"servers"`
	}
}

// ServerHealthRequest represents the incoming request for obtaining one server's health.
type ServerHealthRequest struct {
	ID string `doc:"Id of the server to check" example:"journey-service-mcp" path:"id"`
}

// ServerHealthResponse represents the wrapped API response for a ServerHealth.
type ServerHealthResponse struct {
	Body ServerHealth
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainServerHealth) ToAPIType(id string) (ServerHealth, error) {
	status, err := parseHealthStatus(d.Status)
	if err != nil {
		return ServerHealth{}, err
	}

	var latency *string
	if d.Latency > 0 {
		s := d.Latency.String()
		latency = &s
	}

	var lastCheck *time.Time
	if !d.LastCheck.IsZero() {
		t := d.LastCheck
		lastCheck = &t
	}

	return ServerHealth{
		ID:                  id,
		Status:              status,
		Latency:             latency,
		LastCheck:           lastCheck,
		ErrorMessage:        d.ErrorMessage,
		ConsecutiveFailures: d.ConsecutiveFailures,
	}, nil
}

// RegisterHealthRoutes sets up health-related API endpoint routes.
func RegisterHealthRoutes(routerAPI huma.API, directory contracts.ServerDirectory, apiPathPrefix string) {
	healthAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Health"}

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "listServersHealth",
			Method:      http.MethodGet,
			Path:        "/servers",
			Summary:     "List the health statuses for all servers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ServersHealthResponse, error) {
			return handleHealthServers(directory)
		},
	)

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "getServerHealth",
			Method:      http.MethodGet,
			Path:        "/servers/{id}",
			Summary:     "Get the health status of a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerHealthRequest) (*ServerHealthResponse, error) {
			return handleHealthServer(directory, input.ID)
		},
	)
}

// handleHealthServers is the handler for retrieving the current health for all registered backend servers.
func handleHealthServers(directory contracts.ServerDirectory) (*ServersHealthResponse, error) {
	servers := directory.List()

	slices.SortFunc(servers, func(a, b domain.ServerRegistration) int {
		return strings.Compare(a.ID, b.ID)
	})

	apiServers := make([]ServerHealth, 0, len(servers))
	for _, s := range servers {
		data, err := DomainServerHealth(s.Health).ToAPIType(s.ID)
		if err != nil {
			return nil, err
		}
		apiServers = append(apiServers, data)
	}

	resp := &ServersHealthResponse{}
	resp.Body.Servers = apiServers

	return resp, nil
}

// handleHealthServer is the handler for retrieving the current health of the specified backend server.
func handleHealthServer(directory contracts.ServerDirectory, id string) (*ServerHealthResponse, error) {
	srv, ok := directory.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrServerNotFound, id)
	}

	data, err := DomainServerHealth(srv.Health).ToAPIType(srv.ID)
	if err != nil {
		return nil, err
	}

	response := ServerHealthResponse{}
	response.Body = data

	return &response, nil
}

func parseHealthStatus(status domain.HealthStatus) (HealthStatus, error) {
	switch status {
	case domain.HealthStatusHealthy:
		return HealthStatusHealthy, nil
	case domain.HealthStatusDegraded:
		return HealthStatusDegraded, nil
	case domain.HealthStatusDown:
		return HealthStatusDown, nil
	case domain.HealthStatusUnknown, "":
		return HealthStatusUnknown, nil
	default:
		return "", fmt.Errorf("unknown health status: %s", status)
	}
}
