// Package daemon wires the gateway together: configuration, the backend
// client, the response cache, the health monitor and the HTTP API.
package daemon

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"

	"github.com/alpstack/mcpgate/internal/cache"
	"github.com/alpstack/mcpgate/internal/client"
	"github.com/alpstack/mcpgate/internal/config"
	"github.com/alpstack/mcpgate/internal/domain"
	"github.com/alpstack/mcpgate/internal/flags"
	"github.com/alpstack/mcpgate/internal/gateway"
	"github.com/alpstack/mcpgate/internal/health"
)

// redisPingTimeout bounds the startup probe of the durable cache tier.
const redisPingTimeout = 5 * time.Second

// Daemon runs the gateway process.
// NewDaemon should be used to create instances of Daemon.
type Daemon struct {
	logger    hclog.Logger
	cfgLoader config.Loader
	apiAddr   string
	apiOpts   []APIOption
}

// NewDaemon creates a gateway daemon listening on apiAddr.
func NewDaemon(logger hclog.Logger, cfgLoader config.Loader, apiAddr string, apiOpts ...APIOption) (*Daemon, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfgLoader == nil || reflect.ValueOf(cfgLoader).IsNil() {
		return nil, fmt.Errorf("config loader cannot be nil")
	}
	if err := validateAddr(apiAddr); err != nil {
		return nil, fmt.Errorf("invalid api address '%s': %w", apiAddr, err)
	}

	return &Daemon{
		logger:    logger.Named("daemon"),
		cfgLoader: cfgLoader,
		apiAddr:   apiAddr,
		apiOpts:   apiOpts,
	}, nil
}

// StartAndManage assembles the gateway from configuration and blocks serving
// the API until ctx is canceled or the server fails.
func (d *Daemon) StartAndManage(ctx context.Context) error {
	cfg, err := d.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}
	d.logger.Info("Loaded configuration", "servers", len(cfg.Servers))

	registry := gateway.NewServerRegistry()
	if err := seedRegistry(registry, cfg); err != nil {
		return err
	}

	backend, err := client.NewClient(d.logger, client.NewHTTPClient(cfg.Timeout), cfg.Retry)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	responseCache, err := d.buildCache(ctx, cfg)
	if err != nil {
		return err
	}

	gw, err := gateway.NewGateway(d.logger, registry, backend, responseCache)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	d.discoverCapabilities(ctx, gw, registry)

	monitor, err := health.NewMonitor(d.logger, registry, backend, cfg.Health)
	if err != nil {
		return fmt.Errorf("failed to create health monitor: %w", err)
	}
	go monitor.Start(ctx)

	deps, err := NewAPIDependencies(d.logger, gw, registry, responseCache, d.apiAddr)
	if err != nil {
		return err
	}
	apiServer, err := NewAPIServer(deps, d.apiOpts...)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	return apiServer.Start(ctx)
}

// buildCache creates the response cache, attaching the durable Redis tier when
// one is configured and reachable. An unreachable Redis downgrades the gateway
// to volatile-only operation instead of failing startup.
func (d *Daemon) buildCache(ctx context.Context, cfg *config.Config) (*cache.ResponseCache, error) {
	opts := []cache.Option{cache.WithDefaultTTL(cfg.Cache.DefaultTTL.Std())}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()

		if err := rdb.Ping(pingCtx).Err(); err != nil {
			d.logger.Warn("Durable cache tier unreachable, running volatile-only",
				"addr", cfg.Redis.Addr, "error", err)
		} else {
			d.logger.Info("Durable cache tier attached", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
			opts = append(opts, cache.WithDurable(cache.NewRedisStore(rdb)))
		}
	}

	responseCache, err := cache.NewResponseCache(d.logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}

	return responseCache, nil
}

// discoverCapabilities runs the initial capability discovery for every
// configured server. Failures are logged; a server that cannot be reached at
// startup is still registered and will be picked up by the health monitor.
func (d *Daemon) discoverCapabilities(ctx context.Context, gw *gateway.Gateway, registry *gateway.ServerRegistry) {
	servers := registry.List()

	var wg sync.WaitGroup
	wg.Add(len(servers))
	for _, srv := range servers {
		go func() {
			defer wg.Done()
			if err := gw.RefreshCapabilities(ctx, srv.ID); err != nil {
				d.logger.Warn("Initial capability discovery failed", "server", srv.ID, "error", err)
			}
		}()
	}
	wg.Wait()
}

// seedRegistry registers every configured backend server.
func seedRegistry(registry *gateway.ServerRegistry, cfg *config.Config) error {
	for _, s := range cfg.ListServers() {
		reg := domain.ServerRegistration{
			ID:           s.ID,
			Name:         s.Name,
			Endpoint:     s.Endpoint,
			Transport:    domain.Transport(s.Transport),
			Priority:     s.Priority,
			Health:       domain.ServerHealth{Status: domain.HealthStatusUnknown},
			RegisteredAt: time.Now(),
		}
		if err := registry.Add(reg); err != nil {
			return fmt.Errorf("failed to register server '%s': %w", s.ID, err)
		}
	}

	return nil
}
