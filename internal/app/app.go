// Package app bootstraps srvsync: it loads configuration, wires the
// discovery cache, resolver, template engine, HAProxy controller and
// reconciler together, and runs the sync loop.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"srvsync/internal/config"
	"srvsync/internal/discovery"
	"srvsync/internal/haproxy"
	"srvsync/internal/reconciler"
	"srvsync/internal/resolve"
	"srvsync/internal/template"
	"srvsync/pkg/logging"
)

// Application is the wired-up sync daemon.
type Application struct {
	settings   config.Config
	cache      *discovery.Cache
	engine     *template.Engine
	controller *haproxy.Controller
	cycle      *reconciler.Cycle
	scheduler  *reconciler.Scheduler
}

// NewApplication performs the bootstrap sequence: logging, configuration,
// template scan, and component wiring. Failures here abort startup.
func NewApplication(cfg *Config) (*Application, error) {
	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	// Logs go to stderr; stdout is reserved for command output (the rendered
	// configuration of check, the stats table).
	logging.Init(level, os.Stderr)

	settings, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cfg.Template != "" {
		settings.Template = cfg.Template
	}
	if cfg.Interval > 0 {
		settings.Discovery.Interval = config.Duration(cfg.Interval)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	source, err := os.ReadFile(settings.Template)
	if err != nil {
		return nil, fmt.Errorf("cannot read template %s: %w", settings.Template, err)
	}
	engine, err := template.NewEngine(string(source))
	if err != nil {
		return nil, err
	}

	cache := discovery.NewCache()
	if err := engine.Scan(cache); err != nil {
		return nil, err
	}
	logging.Info("Bootstrap", "template %s references %d discovery keys: %v",
		settings.Template, cache.Len(), cache.Keys())

	controller := haproxy.NewController(haproxy.Config{
		Binary:     settings.HAProxy.Binary,
		ConfigPath: settings.HAProxy.Config,
		PIDFile:    settings.HAProxy.PIDFile,
		Socket:     settings.HAProxy.Socket,
	})

	resolver := resolve.NewServiceResolver(resolve.Config{
		Timeout:       settings.Discovery.Timeout.Std(),
		MaxConcurrent: settings.Discovery.MaxConcurrent,
		OnFailure:     resolve.FailurePolicy(settings.Discovery.OnFailure),
	})

	cycle := reconciler.NewCycle(cache, resolver, engine, controller, settings.HAProxy.Config)
	scheduler := reconciler.NewScheduler(cycle, settings.Discovery.Interval.Std(), controller)

	return &Application{
		settings:   settings,
		cache:      cache,
		engine:     engine,
		controller: controller,
		cycle:      cycle,
		scheduler:  scheduler,
	}, nil
}

// Run executes the daemon until the context is cancelled, a termination
// signal arrives, or a cycle fails fatally.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.cycle.VerifyStartup(ctx); err != nil {
		return fmt.Errorf("startup verification failed: %w", err)
	}

	// The first cycle runs before the managed service starts, so the very
	// first configuration is in place when it boots.
	if err := a.cycle.Run(ctx); err != nil {
		return err
	}

	if err := a.startManagedService(ctx); err != nil {
		return err
	}

	if a.settings.WatchTemplate {
		watcher := reconciler.NewTemplateWatcher(a.settings.Template, a.onTemplateChange)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logging.Warn("Bootstrap", "template watcher unavailable: %v", err)
			}
		}()
	}

	return a.scheduler.Run(ctx)
}

// startManagedService verifies the freshly written configuration and starts
// HAProxy. If no configuration exists yet (every key unresolved and nothing
// rendered), the start is deferred; later cycles write the file but reloads
// stay suppressed until a restart with resolvable keys.
func (a *Application) startManagedService(ctx context.Context) error {
	if _, err := os.Stat(a.settings.HAProxy.Config); err != nil {
		logging.Warn("Bootstrap", "no configuration at %s yet, not starting the managed service", a.settings.HAProxy.Config)
		return nil
	}

	if err := a.controller.Verify(ctx); err != nil {
		return fmt.Errorf("startup verification failed: %w", err)
	}
	if err := a.controller.Start(ctx); err != nil {
		return fmt.Errorf("cannot start managed service: %w", err)
	}
	return nil
}

// onTemplateChange reloads the template source and requests an immediate
// reconcile. The discovery key set stays frozen; keys that appear in the
// edited template but were not scanned at startup are reported and need a
// restart to become active.
func (a *Application) onTemplateChange() {
	source, err := os.ReadFile(a.settings.Template)
	if err != nil {
		logging.Warn("Bootstrap", "cannot re-read template %s: %v", a.settings.Template, err)
		return
	}
	if err := a.engine.Reload(string(source)); err != nil {
		logging.Warn("Bootstrap", "edited template rejected, keeping previous version: %v", err)
		return
	}

	fresh := discovery.NewCache()
	if err := a.engine.Scan(fresh); err != nil {
		logging.Warn("Bootstrap", "cannot scan edited template: %v", err)
		return
	}
	for _, key := range fresh.Keys() {
		if !a.cache.Has(key) {
			logging.Warn("Bootstrap", "template now references key %q; restart required to discover it", key)
		}
	}

	a.scheduler.Trigger()
}

// Check runs the operator preflight: startup verification plus one
// resolve-and-render pass, writing the rendered configuration to out
// without persisting anything.
func (a *Application) Check(ctx context.Context, out io.Writer) error {
	if err := a.cycle.VerifyStartup(ctx); err != nil {
		return fmt.Errorf("startup verification failed: %w", err)
	}

	resolver := resolve.NewServiceResolver(resolve.Config{
		Timeout:       a.settings.Discovery.Timeout.Std(),
		MaxConcurrent: a.settings.Discovery.MaxConcurrent,
		OnFailure:     resolve.FailurePolicy(a.settings.Discovery.OnFailure),
	})
	resolver.ResolveAll(ctx, a.cache)

	rendered, err := a.engine.Render(a.cache)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, rendered)
	return err
}

// Stats queries the managed service's statistics socket.
func (a *Application) Stats(ctx context.Context) (*haproxy.Stats, error) {
	return a.controller.QueryStats(ctx)
}
