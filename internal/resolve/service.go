// Package resolve turns the discovery keys in the cache into endpoint lists
// through a two-stage DNS lookup: a service (SRV) lookup per key, then an
// address lookup per target.
//
// All keys of one cycle resolve concurrently with a settle-all join: each
// key's outcome is captured independently and a failing key never aborts or
// delays its siblings. Failures inside one key are strict, though. If any
// target of a key cannot be resolved to an address, the whole key counts as
// unresolved rather than producing a partial endpoint list.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"srvsync/internal/discovery"
	"srvsync/pkg/logging"
)

// ErrNoAddresses is returned when an address lookup succeeds but yields an
// empty answer.
var ErrNoAddresses = errors.New("no addresses resolved")

// FailurePolicy controls what happens to a key's cached value when its
// resolution fails.
type FailurePolicy string

const (
	// PolicyClear resets the key to unresolved, dropping the backend from
	// the rendered configuration until resolution succeeds again.
	PolicyClear FailurePolicy = "clear"

	// PolicyRetain keeps the last successfully resolved endpoint list, so a
	// transient DNS blip does not remove a backend from the configuration.
	PolicyRetain FailurePolicy = "retain"
)

// Config configures a ServiceResolver.
type Config struct {
	// Resolver performs the actual DNS lookups. Defaults to the standard
	// net.Resolver adapter.
	Resolver Resolver

	// Timeout bounds the resolution of a single key, covering its service
	// lookup and all of its address lookups. Defaults to 3s.
	Timeout time.Duration

	// MaxConcurrent bounds the resolver fan-out. Defaults to 8.
	MaxConcurrent int

	// OnFailure selects the failure policy. Defaults to PolicyClear.
	OnFailure FailurePolicy
}

// ServiceResolver resolves every key in a discovery cache.
type ServiceResolver struct {
	resolver      Resolver
	timeout       time.Duration
	maxConcurrent int
	onFailure     FailurePolicy
}

// NewServiceResolver creates a ServiceResolver, applying defaults for unset
// config fields.
func NewServiceResolver(config Config) *ServiceResolver {
	if config.Resolver == nil {
		config.Resolver = NewNetResolver()
	}
	if config.Timeout == 0 {
		config.Timeout = 3 * time.Second
	}
	if config.MaxConcurrent == 0 {
		config.MaxConcurrent = 8
	}
	if config.OnFailure == "" {
		config.OnFailure = PolicyClear
	}

	return &ServiceResolver{
		resolver:      config.Resolver,
		timeout:       config.Timeout,
		maxConcurrent: config.MaxConcurrent,
		onFailure:     config.OnFailure,
	}
}

// ResolveAll refreshes every key currently in the cache. It never returns an
// error: per-key failures are recorded in the cache according to the failure
// policy and surfaced through logging only.
func (s *ServiceResolver) ResolveAll(ctx context.Context, cache *discovery.Cache) {
	var group errgroup.Group
	group.SetLimit(s.maxConcurrent)

	for _, key := range cache.Keys() {
		key := key
		group.Go(func() error {
			endpoints, err := s.resolveKey(ctx, key)
			if err != nil {
				if s.onFailure == PolicyRetain {
					logging.Warn("Resolver", "resolution of %q failed, retaining previous endpoints: %v", key, err)
				} else {
					logging.Warn("Resolver", "resolution of %q failed, clearing endpoints: %v", key, err)
					cache.SetUnresolved(key)
				}
				// Settle-all: a failed key never aborts its siblings.
				return nil
			}

			logging.Debug("Resolver", "resolved %q to %d endpoints", key, len(endpoints))
			cache.SetResolved(key, endpoints)
			return nil
		})
	}

	// Every goroutine returns nil; the join only synchronizes completion.
	_ = group.Wait()
}

// resolveKey performs the two-stage lookup for one key under the configured
// timeout.
func (s *ServiceResolver) resolveKey(ctx context.Context, key string) ([]discovery.Endpoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.resolver.LookupService(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("service lookup for %q failed: %w", key, err)
	}

	endpoints := make([]discovery.Endpoint, 0, len(records))
	for _, record := range records {
		name := strings.TrimSuffix(record.Target, ".")
		endpoint := discovery.Endpoint{
			Name:     name,
			Port:     record.Port,
			Priority: record.Priority,
			Weight:   record.Weight,
		}

		if net.ParseIP(name) != nil {
			// Literal address targets skip the address lookup entirely.
			endpoint.IP = name
		} else {
			addrs, err := s.resolver.LookupAddress(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("address lookup for %q failed: %w", name, err)
			}
			if len(addrs) == 0 {
				return nil, fmt.Errorf("address lookup for %q: %w", name, ErrNoAddresses)
			}
			endpoint.IP = addrs[0]
		}

		endpoints = append(endpoints, endpoint)
	}

	return endpoints, nil
}
