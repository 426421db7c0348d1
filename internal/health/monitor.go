// Package health runs the periodic probe loop and owns the status escalation
// policy that decides when a backend counts as degraded or down.
package health

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/alpstack/mcpgate/internal/config"
	"github.com/alpstack/mcpgate/internal/contracts"
	"github.com/alpstack/mcpgate/internal/domain"
)

// Policy maps a probe observation and the resulting failure run onto a status.
// The prober itself only ever observes healthy or down; degraded exists solely
// as a policy outcome for servers that are failing but not yet past threshold.
type Policy func(observed domain.HealthStatus, consecutiveFailures int) domain.HealthStatus

// DefaultPolicy keeps a failing server degraded until its failure run reaches
// threshold, at which point it is marked down and excluded from discovery.
func DefaultPolicy(threshold int) Policy {
	return func(observed domain.HealthStatus, consecutiveFailures int) domain.HealthStatus {
		if observed == domain.HealthStatusHealthy {
			return domain.HealthStatusHealthy
		}
		if consecutiveFailures >= threshold {
			return domain.HealthStatusDown
		}
		return domain.HealthStatusDegraded
	}
}

// Monitor probes every registered backend on a fixed interval and records the
// outcome in the registry. NewMonitor should be used to create instances of Monitor.
type Monitor struct {
	logger   hclog.Logger
	registry contracts.ServerDirectory
	prober   contracts.HealthProber
	interval time.Duration
	policy   Policy
}

// NewMonitor creates a health monitor using the default escalation policy
// derived from cfg.
func NewMonitor(
	logger hclog.Logger,
	registry contracts.ServerDirectory,
	prober contracts.HealthProber,
	cfg config.HealthConfig,
) (*Monitor, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if prober == nil {
		return nil, fmt.Errorf("prober cannot be nil")
	}
	if cfg.CheckInterval <= 0 {
		return nil, fmt.Errorf("check interval must be positive, got %v", cfg.CheckInterval.Std())
	}
	if cfg.UnhealthyThreshold < 1 {
		return nil, fmt.Errorf("unhealthy threshold must be at least 1, got %d", cfg.UnhealthyThreshold)
	}

	return &Monitor{
		logger:   logger.Named("health"),
		registry: registry,
		prober:   prober,
		interval: cfg.CheckInterval.Std(),
		policy:   DefaultPolicy(cfg.UnhealthyThreshold),
	}, nil
}

// Start runs the probe loop until ctx is cancelled. Every registered server is
// probed once immediately, then again on each tick.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info("Health monitor started", "interval", m.interval)

	m.sweep(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Health monitor stopped")
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

// sweep probes all servers concurrently and returns once every outcome has
// been recorded.
func (m *Monitor) sweep(ctx context.Context) {
	servers := m.registry.List()

	var wg sync.WaitGroup
	wg.Add(len(servers))
	for _, srv := range servers {
		go func() {
			defer wg.Done()
			m.checkServer(ctx, srv)
		}()
	}
	wg.Wait()
}

// checkServer probes one backend and folds the observation into the registry.
// The failure run is recomputed inside the update so a user-facing call
// recorded between snapshot and update is never lost.
func (m *Monitor) checkServer(ctx context.Context, srv domain.ServerRegistration) {
	obs := m.prober.CheckHealth(ctx, srv)

	err := m.registry.UpdateHealth(srv.ID, func(h domain.ServerHealth) domain.ServerHealth {
		next := h
		next.LastCheck = obs.LastCheck
		next.Latency = obs.Latency
		next.ErrorMessage = obs.ErrorMessage

		if obs.Status == domain.HealthStatusHealthy {
			next.ConsecutiveFailures = 0
		} else {
			next.ConsecutiveFailures = h.ConsecutiveFailures + 1
		}
		next.Status = m.policy(obs.Status, next.ConsecutiveFailures)

		if next.Status != h.Status {
			m.logger.Info("Server health changed",
				"server", srv.ID, "from", h.Status, "to", next.Status,
				"consecutiveFailures", next.ConsecutiveFailures)
		}

		return next
	})
	if err != nil {
		m.logger.Debug("Skipping health update for unregistered server", "server", srv.ID, "error", err)
	}
}
