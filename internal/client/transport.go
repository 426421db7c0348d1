package client

import (
	"net"
	"net/http"

	"github.com/alpstack/mcpgate/internal/config"
)

var _ Doer = (*http.Client)(nil)

// Doer executes a single HTTP round trip. The connection pool, connect timeout
// and read timeout all live behind this boundary; the client's retry loop does
// not manage its own timers beyond the inter-attempt backoff.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient builds the default transport used to reach backends, applying
// the configured connect and read timeouts.
func NewHTTPClient(cfg config.TimeoutConfig) *http.Client {
	dialer := &net.Dialer{Timeout: cfg.Connect.Std()}

	return &http.Client{
		Timeout: cfg.Read.Std(),
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			MaxIdleConnsPerHost: 4,
		},
	}
}
