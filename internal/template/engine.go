// Package template renders the managed service's configuration template.
//
// The template language is Go's text/template extended with the sprig
// function map and one domain function, lookup, which yields the endpoint
// list of a discovery key:
//
//	{{range lookup "cache.svc"}}
//	server {{.Name}} {{.IP}}:{{.Port}} weight {{.Weight}}
//	{{end}}
//
// The engine runs the template in two modes. The scan pass binds lookup to a
// recording stub that registers each referenced key in the discovery cache
// and yields no endpoints; it performs no I/O and never needs resolved data.
// The render pass binds lookup to the cache, yielding the resolved endpoints
// of a key, or nothing while the key is unresolved or empty.
package template

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"srvsync/internal/discovery"
)

const templateName = "config"

// Engine holds a configuration template source and renders it against a
// discovery cache. The source can be swapped at runtime with Reload, which
// the template watcher uses to pick up edits without a restart.
type Engine struct {
	mu     sync.RWMutex
	source string
}

// NewEngine creates an engine for the given template source. The source is
// parsed once up front so that syntax errors fail at startup rather than in
// a later cycle.
func NewEngine(source string) (*Engine, error) {
	engine := &Engine{source: source}
	if _, err := engine.parse(func(string) []discovery.Endpoint { return nil }); err != nil {
		return nil, fmt.Errorf("invalid configuration template: %w", err)
	}
	return engine, nil
}

// Reload replaces the template source. A source that does not parse is
// rejected and the previous source stays active.
func (e *Engine) Reload(source string) error {
	funcs := sprig.TxtFuncMap()
	funcs["lookup"] = func(string) []discovery.Endpoint { return nil }
	if _, err := template.New(templateName).Funcs(funcs).Parse(source); err != nil {
		return fmt.Errorf("invalid configuration template: %w", err)
	}

	e.mu.Lock()
	e.source = source
	e.mu.Unlock()
	return nil
}

// parse builds a fresh template with the given lookup binding. Functions
// must be bound before parsing, so each pass parses its own copy.
func (e *Engine) parse(lookup func(string) []discovery.Endpoint) (*template.Template, error) {
	e.mu.RLock()
	source := e.source
	e.mu.RUnlock()

	funcs := sprig.TxtFuncMap()
	funcs["lookup"] = lookup
	return template.New(templateName).Funcs(funcs).Parse(source)
}

// Scan executes the template in discovery mode, recording every referenced
// discovery key into the cache as unresolved. Scanning is idempotent; the
// cache ignores duplicate keys.
func (e *Engine) Scan(cache *discovery.Cache) error {
	tmpl, err := e.parse(func(key string) []discovery.Endpoint {
		cache.Add(key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalid configuration template: %w", err)
	}

	if err := tmpl.Execute(io.Discard, nil); err != nil {
		return fmt.Errorf("template scan failed: %w", err)
	}
	return nil
}

// Render executes the template in productive mode against the cache's
// current values. It performs no I/O and no lookups beyond the cache.
func (e *Engine) Render(cache *discovery.Cache) (string, error) {
	tmpl, err := e.parse(func(key string) []discovery.Endpoint {
		endpoints, resolved := cache.Lookup(key)
		if !resolved {
			return nil
		}
		return endpoints
	})
	if err != nil {
		return "", fmt.Errorf("invalid configuration template: %w", err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, nil); err != nil {
		return "", fmt.Errorf("template render failed: %w", err)
	}
	return out.String(), nil
}
