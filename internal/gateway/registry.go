package gateway

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alpstack/mcpgate/internal/contracts"
	"github.com/alpstack/mcpgate/internal/domain"
	errs "github.com/alpstack/mcpgate/internal/errors"
)

var _ contracts.ServerDirectory = (*ServerRegistry)(nil)

// ServerRegistry holds the backend server registrations and their live state.
// Reads return value snapshots; all health mutations go through UpdateHealth so
// concurrent read-modify-write cycles never lose a ConsecutiveFailures update.
// It is safe for concurrent use by multiple goroutines.
type ServerRegistry struct {
	mu      sync.RWMutex
	servers map[string]*domain.ServerRegistration
}

// NewServerRegistry creates an empty, concurrency-safe registry.
func NewServerRegistry() *ServerRegistry {
	return &ServerRegistry{
		servers: make(map[string]*domain.ServerRegistration),
	}
}

// Add registers a server. The id is the join key for all routing decisions and
// must be unique.
func (r *ServerRegistry) Add(reg domain.ServerRegistration) error {
	id := strings.TrimSpace(reg.ID)
	if id == "" {
		return fmt.Errorf("server id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.servers[id]; exists {
		return fmt.Errorf("%w: %s", errs.ErrDuplicateServer, id)
	}

	reg.ID = id
	if reg.Health.Status == "" {
		reg.Health.Status = domain.HealthStatusUnknown
	}
	r.servers[id] = &reg

	return nil
}

// Get returns a snapshot of the registration for the given id.
func (r *ServerRegistry) Get(id string) (domain.ServerRegistration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.servers[id]
	if !ok {
		return domain.ServerRegistration{}, false
	}

	return *reg, true
}

// List returns snapshots of all registrations.
func (r *ServerRegistry) List() []domain.ServerRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := make([]domain.ServerRegistration, 0, len(r.servers))
	for _, reg := range r.servers {
		regs = append(regs, *reg)
	}

	return regs
}

// SetCapabilities replaces the server's capability snapshot wholesale.
func (r *ServerRegistry) SetCapabilities(id string, caps domain.ServerCapabilities) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.servers[id]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrServerNotFound, id)
	}
	reg.Capabilities = caps

	return nil
}

// UpdateHealth applies update to the server's current health under exclusion.
func (r *ServerRegistry) UpdateHealth(id string, update func(domain.ServerHealth) domain.ServerHealth) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.servers[id]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrHealthNotTracked, id)
	}
	reg.Health = update(reg.Health)

	return nil
}
