package reconciler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"srvsync/internal/diff"
	"srvsync/internal/discovery"
	"srvsync/internal/haproxy"
	"srvsync/pkg/logging"
	pkgstrings "srvsync/pkg/strings"
)

// Resolver refreshes every key in the discovery cache. It never fails as a
// whole; per-key failures are absorbed inside the resolver.
type Resolver interface {
	ResolveAll(ctx context.Context, cache *discovery.Cache)
}

// Renderer renders the configuration template against the cache.
type Renderer interface {
	Render(cache *discovery.Cache) (string, error)
}

// ServiceController is the managed-service side of the cycle.
type ServiceController interface {
	Verify(ctx context.Context) error
	Start(ctx context.Context) error
	Reload(ctx context.Context) (string, error)
	State() haproxy.State
}

// Cycle runs one reconciliation pass: resolve all discovery keys, render the
// template, compare against the persisted configuration, and on a material
// change persist the new configuration and reload the managed service if it
// is running.
type Cycle struct {
	cache      *discovery.Cache
	resolver   Resolver
	renderer   Renderer
	controller ServiceController
	configPath string
}

// NewCycle wires a reconciliation cycle.
func NewCycle(cache *discovery.Cache, resolver Resolver, renderer Renderer, controller ServiceController, configPath string) *Cycle {
	return &Cycle{
		cache:      cache,
		resolver:   resolver,
		renderer:   renderer,
		controller: controller,
		configPath: configPath,
	}
}

// VerifyStartup runs the one-time preconditions before the first cycle: the
// configuration directory must exist and be writable, and if a configuration
// file is already present its syntax must be acceptable to the managed
// service.
func (c *Cycle) VerifyStartup(ctx context.Context) error {
	dir := filepath.Dir(c.configPath)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("configuration directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("configuration directory %s is not a directory", dir)
	}

	// A directory that cannot be written would otherwise only surface at the
	// first persist, as a fatal cycle error.
	probe, err := os.CreateTemp(dir, ".srvsync-*")
	if err != nil {
		return fmt.Errorf("configuration directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	if _, err := os.Stat(c.configPath); err == nil {
		if err := c.controller.Verify(ctx); err != nil {
			return fmt.Errorf("existing configuration rejected: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("configuration file %s: %w", c.configPath, err)
	}

	return nil
}

// Run executes one reconciliation. Resolution failures stay inside the
// resolver; any error Run returns is fatal to the process (render, persist,
// or reload failure).
func (c *Cycle) Run(ctx context.Context) error {
	id := uuid.NewString()
	logging.Debug("Reconciler", "cycle %s started", id)

	c.resolver.ResolveAll(ctx, c.cache)

	rendered, err := c.renderer.Render(c.cache)
	if err != nil {
		return fmt.Errorf("cycle %s: %w", id, err)
	}

	current, err := c.readCurrent()
	if err != nil {
		return fmt.Errorf("cycle %s: %w", id, err)
	}

	if !diff.Changed(current, rendered) {
		logging.Debug("Reconciler", "cycle %s completed, no material change", id)
		return nil
	}

	logging.Info("Reconciler", "cycle %s detected configuration change:\n%s", id,
		pkgstrings.Truncate(diff.Unified(current, rendered), pkgstrings.DefaultDiffPreviewLen))

	if err := os.WriteFile(c.configPath, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("cycle %s: cannot write configuration %s: %w", id, c.configPath, err)
	}
	logging.Info("Reconciler", "cycle %s wrote %s (%d bytes)", id, c.configPath, len(rendered))

	if c.controller.State() != haproxy.StateRunning {
		// First-boot race: the configuration can legitimately be written
		// before the managed service exists.
		logging.Debug("Reconciler", "cycle %s completed without reload, managed service not running", id)
		return nil
	}

	command, err := c.controller.Reload(ctx)
	if err != nil {
		return fmt.Errorf("cycle %s: reload after configuration change failed: %w", id, err)
	}
	logging.Debug("Reconciler", "cycle %s completed with reload: %s", id, command)
	return nil
}

// readCurrent returns the persisted configuration, or "" if none exists yet.
func (c *Cycle) readCurrent() (string, error) {
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("cannot read configuration %s: %w", c.configPath, err)
	}
	return string(data), nil
}
