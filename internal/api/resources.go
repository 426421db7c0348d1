package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alpstack/mcpgate/internal/contracts"
)

// Resource represents one federated resource. URIs are globally meaningful and
// are not namespaced.
type Resource struct {
	URI         string `doc:"URI of the resource" json:"uri"`
	Name        string `doc:"Name of the resource" json:"name,omitempty"`
	Description string `doc:"Description of the resource" json:"description,omitempty"`
	MIMEType    string `doc:"MIME type of the resource contents" json:"mimeType,omitempty"`
}

// ResourcesResponse represents the wrapped API response for the federated resource collection.
type ResourcesResponse struct {
	Body struct {
		Resources []Resource `doc:"Resources aggregated across all routable servers" json:"resources"`
	}
}

// ResourceReadRequest represents the incoming API request to read a resource
// from a named server.
type ResourceReadRequest struct {
	Body struct {
		Server string `doc:"Server id or namespace alias" example:"journey" json:"server"`
		URI    string `doc:"URI of the resource to read" example:"trips://recent" json:"uri"`
	}
}

// ResourceReadResponse represents the wrapped API response for reading a resource.
type ResourceReadResponse struct {
	Body json.RawMessage
}

// domainResource wraps mcp.Resource for conversion to Resource via ToAPIType.
type domainResource mcp.Resource

// ToAPIType converts a wrapped domain type to Resource.
func (d domainResource) ToAPIType() (Resource, error) {
	return Resource{
		URI:         d.URI,
		Name:        d.Name,
		Description: d.Description,
		MIMEType:    d.MIMEType,
	}, nil
}

// RegisterResourceRoutes sets up resource discovery and read endpoint routes.
func RegisterResourceRoutes(routerAPI huma.API, gateway contracts.Router, apiPathPrefix string) {
	resourcesAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Resources"}

	huma.Register(
		resourcesAPI,
		huma.Operation{
			OperationID: "listResources",
			Method:      http.MethodGet,
			Summary:     "List resources across all servers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ResourcesResponse, error) {
			return handleListResources(ctx, gateway)
		},
	)

	huma.Register(
		resourcesAPI,
		huma.Operation{
			OperationID: "readResource",
			Method:      http.MethodPost,
			Path:        "/read",
			Summary:     "Read a resource from a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ResourceReadRequest) (*ResourceReadResponse, error) {
			return handleResourceRead(ctx, gateway, input.Body.Server, input.Body.URI)
		},
	)
}

// handleListResources returns the federated resource collection.
func handleListResources(ctx context.Context, gateway contracts.Router) (*ResourcesResponse, error) {
	resources := gateway.ListAllResources(ctx)

	apiResources := make([]Resource, 0, len(resources))
	for _, res := range resources {
		data, err := domainResource(res).ToAPIType()
		if err != nil {
			return nil, err
		}
		apiResources = append(apiResources, data)
	}

	resp := &ResourcesResponse{}
	resp.Body.Resources = apiResources

	return resp, nil
}

// handleResourceRead routes a resource read through the gateway.
func handleResourceRead(ctx context.Context, gateway contracts.Router, server, uri string) (*ResourceReadResponse, error) {
	raw, err := gateway.ReadResource(ctx, server, uri)
	if err != nil {
		return nil, err
	}

	return &ResourceReadResponse{Body: raw}, nil
}
