package daemon

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/alpstack/mcpgate/internal/contracts"
)

// APIDependencies contains the required external dependencies for the API server.
// NewAPIDependencies should be used to create instances of APIDependencies.
type APIDependencies struct {
	// Addr specifies the network address to bind (e.g., "0.0.0.0:8090").
	Addr string

	// Gateway routes namespaced capability calls to backends.
	Gateway contracts.Router

	// Directory provides access to registered servers and their health.
	Directory contracts.ServerDirectory

	// Cache exposes response cache introspection.
	Cache contracts.CacheController

	// Logger for API server operations.
	Logger hclog.Logger
}

// NewAPIDependencies creates and validates APIDependencies.
func NewAPIDependencies(
	logger hclog.Logger,
	gateway contracts.Router,
	directory contracts.ServerDirectory,
	cacheCtl contracts.CacheController,
	addr string,
) (APIDependencies, error) {
	deps := APIDependencies{
		Addr:      addr,
		Gateway:   gateway,
		Directory: directory,
		Cache:     cacheCtl,
		Logger:    logger,
	}

	if err := deps.Validate(); err != nil {
		return APIDependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d APIDependencies) Validate() error {
	if err := validateAddr(d.Addr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.Addr, err)
	}
	if d.Gateway == nil || reflect.ValueOf(d.Gateway).IsNil() {
		return fmt.Errorf("gateway cannot be nil")
	}
	if d.Directory == nil || reflect.ValueOf(d.Directory).IsNil() {
		return fmt.Errorf("server directory cannot be nil")
	}
	if d.Cache == nil || reflect.ValueOf(d.Cache).IsNil() {
		return fmt.Errorf("cache controller cannot be nil")
	}
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}
	return nil
}
