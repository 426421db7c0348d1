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

// Server represents one registered backend server.
type Server struct {
	ID           string       `doc:"Unique id of the server" json:"id"`
	Name         string       `doc:"Display name of the server" json:"name,omitempty"`
	Endpoint     string       `doc:"Endpoint the gateway dispatches to" json:"endpoint"`
	Transport    string       `doc:"Transport used to reach the server" json:"transport"`
	Priority     int          `doc:"Routing priority" json:"priority,omitempty"`
	Status       HealthStatus `doc:"Current tracked health status" json:"status"`
	Tools        []string     `doc:"Advertised tool names" json:"tools,omitempty"`
	Prompts      []string     `doc:"Advertised prompt names" json:"prompts,omitempty"`
	RegisteredAt *time.Time   `doc:"When the server was registered" json:"registeredAt,omitempty"`
}

// ServersResponse represents the wrapped API response for the server list.
type ServersResponse struct {
	Body struct {
		Servers []Server `doc:"All registered backend servers" json:"servers"`
	}
}

// ServerRequest represents the incoming request for one server registration.
type ServerRequest struct {
	ID string `doc:"Id of the server to look up" example:"journey-service-mcp" path:"id"`
}

// ServerResponse represents the wrapped API response for one server.
type ServerResponse struct {
	Body Server
}

// domainServer wraps domain.ServerRegistration for conversion to Server via ToAPIType.
type domainServer domain.ServerRegistration

// ToAPIType converts a wrapped domain type to Server.
func (d domainServer) ToAPIType() (Server, error) {
	status, err := parseHealthStatus(d.Health.Status)
	if err != nil {
		return Server{}, err
	}

	var registeredAt *time.Time
	if !d.RegisteredAt.IsZero() {
		t := d.RegisteredAt
		registeredAt = &t
	}

	return Server{
		ID:           d.ID,
		Name:         d.Name,
		Endpoint:     d.Endpoint,
		Transport:    string(d.Transport),
		Priority:     d.Priority,
		Status:       status,
		Tools:        d.Capabilities.Tools,
		Prompts:      d.Capabilities.Prompts,
		RegisteredAt: registeredAt,
	}, nil
}

// RegisterServerRoutes sets up server registration listing endpoint routes.
func RegisterServerRoutes(routerAPI huma.API, directory contracts.ServerDirectory, apiPathPrefix string) {
	serversAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Servers"}

	// Add route at the root of the group (no path specified).
	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "listServers",
			Method:      http.MethodGet,
			Summary:     "List all registered servers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ServersResponse, error) {
			return handleServers(directory)
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "getServer",
			Method:      http.MethodGet,
			Path:        "/{id}",
			Summary:     "Get one registered server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerRequest) (*ServerResponse, error) {
			return handleServer(directory, input.ID)
		},
	)
}

// handleServers returns all registered backend servers.
func handleServers(directory contracts.ServerDirectory) (*ServersResponse, error) {
	servers := directory.List()

	slices.SortFunc(servers, func(a, b domain.ServerRegistration) int {
		return strings.Compare(a.ID, b.ID)
	})

	apiServers := make([]Server, 0, len(servers))
	for _, s := range servers {
		data, err := domainServer(s).ToAPIType()
		if err != nil {
			return nil, err
		}
		apiServers = append(apiServers, data)
	}

	resp := &ServersResponse{}
	resp.Body.Servers = apiServers

	return resp, nil
}

// handleServer returns one registered backend server.
func handleServer(directory contracts.ServerDirectory, id string) (*ServerResponse, error) {
	srv, ok := directory.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrServerNotFound, id)
	}

	data, err := domainServer(srv).ToAPIType()
	if err != nil {
		return nil, err
	}

	return &ServerResponse{Body: data}, nil
}
