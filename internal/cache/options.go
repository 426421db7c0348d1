package cache

import (
	"fmt"
	"time"
)

// Option defines a functional option for configuring ResponseCache.
type Option func(*Options) error

// Options contains optional configuration for the response cache.
type Options struct {
	// defaultTTL applies to writes that do not specify a TTL.
	defaultTTL time.Duration

	// durable is the optional second tier. Nil means volatile-only operation.
	durable Store
}

// NewOptions applies the defaults followed by the given options.
func NewOptions(opts ...Option) (Options, error) {
	o := Options{
		defaultTTL: 5 * time.Minute,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}

	return o, nil
}

// WithDefaultTTL sets the TTL used when Set is called without one.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *Options) error {
		if ttl <= 0 {
			return fmt.Errorf("default TTL must be positive, got %v", ttl)
		}
		o.defaultTTL = ttl
		return nil
	}
}

// WithDurable configures the durable second tier.
func WithDurable(store Store) Option {
	return func(o *Options) error {
		o.durable = store
		return nil
	}
}
