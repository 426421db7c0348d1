// Package errors defines domain-level errors used throughout the gateway.
// These errors represent routing and backend failures and are mapped to
// appropriate HTTP status codes at the API boundary.
//
// Unmapped errors default to HTTP 500 Internal Server Error, so when adding
// a new error here remember to add a case to mapError (internal/daemon/api_server.go)
// and a matching test case to TestMapError (internal/daemon/api_server_test.go).
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the client provided invalid input, for example
	// tool arguments that fail validation against the advertised input schema.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrServerNotFound indicates that the namespace of a capability name resolved
	// to a backend that is not registered with the gateway.
	// Recommended to map to HTTP 404 Not Found.
	ErrServerNotFound = errors.New("server not found")

	// ErrToolCallFailed indicates that calling a tool on a backend failed after
	// the retry budget was exhausted. It wraps the last underlying error.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrToolCallFailed = errors.New("tool call failed")

	// ErrResourceReadFailed indicates that reading a resource from a backend failed
	// after the retry budget was exhausted.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrResourceReadFailed = errors.New("resource read failed")

	// ErrPromptGetFailed indicates that fetching a prompt from a backend failed
	// after the retry budget was exhausted.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrPromptGetFailed = errors.New("prompt get failed")

	// ErrHealthNotTracked indicates that health is not being tracked for the
	// requested server, typically because the server id is unknown.
	// Recommended to map to HTTP 404 Not Found.
	ErrHealthNotTracked = errors.New("server health is not being tracked")

	// ErrDuplicateServer indicates an attempt to register a server under an id
	// that is already taken. Server ids are the join key for routing and must
	// be unique across the gateway.
	ErrDuplicateServer = errors.New("server already registered")

	// ErrConfigLoadFailed indicates the gateway configuration file could not be
	// loaded or failed validation.
	ErrConfigLoadFailed = errors.New("config load failed")
)
