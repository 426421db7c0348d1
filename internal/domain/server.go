package domain

import "time"

const (
	// HealthStatusHealthy indicates the most recent probe or call against the server succeeded.
	HealthStatusHealthy HealthStatus = "healthy"

	// HealthStatusDegraded indicates a run of failures below the configured unhealthy threshold.
	// It is only ever assigned by the health monitor policy, never by a single probe.
	HealthStatusDegraded HealthStatus = "degraded"

	// HealthStatusDown indicates the server is considered unreachable.
	HealthStatusDown HealthStatus = "down"

	// HealthStatusUnknown is the state of a server before its first probe.
	HealthStatusUnknown HealthStatus = "unknown"
)

const (
	// TransportHTTP is a backend reached over HTTP at its configured endpoint.
	TransportHTTP Transport = "http"

	// TransportStdio is a backend launched as a subprocess speaking the same protocol over stdio.
	TransportStdio Transport = "stdio"
)

// HealthStatus represents the availability of a registered backend server.
type HealthStatus string

// Transport identifies how a backend server is reached.
type Transport string

// ServerHealth is the live health observation for a registered backend.
//
// ConsecutiveFailures resets to zero exactly when Status transitions to
// HealthStatusHealthy, and increments by one on any failed probe or call
// outcome regardless of the prior count.
type ServerHealth struct {
	Status              HealthStatus
	LastCheck           time.Time
	Latency             time.Duration
	ErrorMessage        string
	ConsecutiveFailures int
}

// ResourceInfo describes one resource advertised by a backend.
type ResourceInfo struct {
	URIPrefix   string
	Description string
}

// ServerCapabilities is an immutable snapshot of the surface advertised by a backend.
// It is replaced wholesale on re-discovery, never merged field by field.
type ServerCapabilities struct {
	Tools     []string
	Resources []ResourceInfo
	Prompts   []string
}

// ServerRegistration is one backend's identity and live state.
// ID is unique across all registrations and is the join key used by routing.
type ServerRegistration struct {
	ID           string
	Name         string
	Endpoint     string
	Transport    Transport
	Priority     int
	Capabilities ServerCapabilities
	Health       ServerHealth
	RegisteredAt time.Time
}
