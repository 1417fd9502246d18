package registry

import (
	"context"
	"sync"
	"time"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
	"github.com/control-plane/schema-registry-mcp/pkg/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// defaultFanoutConcurrency bounds test_all()'s concurrent health probes.
const defaultFanoutConcurrency = 8

// Manager owns the set of configured registries for the lifetime of the
// process (spec.md §3 "the Registry Manager exclusively owns the set of
// Registry records"). It is built once at startup and never mutated.
type Manager struct {
	order   []string
	clients map[string]*Client
	infos   map[string]Info
}

// NewManager builds a Manager from the parsed registry configs, in slot
// order. The first configured registry (legacy "default" or numbered slot
// 1) becomes the Default().
func NewManager(configs []Config) (*Manager, error) {
	m := &Manager{
		clients: make(map[string]*Client, len(configs)),
		infos:   make(map[string]Info, len(configs)),
	}
	for _, cfg := range configs {
		client, err := NewClient(cfg)
		if err != nil {
			return nil, err
		}
		m.order = append(m.order, cfg.Name)
		m.clients[cfg.Name] = client
		m.infos[cfg.Name] = Info{Name: cfg.Name, URL: cfg.BaseURL, ViewOnly: cfg.ViewOnly}
		logging.Info("RegistryManager", "configured registry %q at %s (viewonly=%v)", cfg.Name, cfg.BaseURL, cfg.ViewOnly)
	}
	return m, nil
}

// List returns the configured registries in slot order.
func (m *Manager) List() []Info {
	out := make([]Info, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.infos[name])
	}
	return out
}

// Get returns the named registry's client, or REGISTRY_NOT_FOUND.
func (m *Manager) Get(name string) (*Client, error) {
	c, ok := m.clients[name]
	if !ok {
		return nil, apierrors.New(apierrors.CodeRegistryNotFound, "no registry named %q", name).WithDetail("registry", name)
	}
	return c, nil
}

// Default returns the first configured registry.
func (m *Manager) Default() (*Client, error) {
	if len(m.order) == 0 {
		return nil, apierrors.New(apierrors.CodeRegistryNotFound, "no registries configured")
	}
	return m.clients[m.order[0]], nil
}

// Names returns the configured registry names in slot order.
func (m *Manager) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// RegistryMode reports "single" when exactly one registry is configured,
// else "multi" (spec.md §4.8, §6, §8 invariant 7 — every response carries
// this alongside mcp_protocol_version).
func (m *Manager) RegistryMode() string {
	if len(m.order) == 1 {
		return "single"
	}
	return "multi"
}

// TestConnection probes name with a single bounded-timeout request.
func (m *Manager) TestConnection(ctx context.Context, name string) (ConnectionResult, error) {
	client, err := m.Get(name)
	if err != nil {
		return ConnectionResult{}, err
	}
	return m.probe(ctx, client), nil
}

func (m *Manager) probe(ctx context.Context, client *Client) ConnectionResult {
	start := time.Now()
	err := client.Ping(ctx)
	latency := time.Since(start)
	result := ConnectionResult{
		Name:      client.Name(),
		Healthy:   err == nil,
		LatencyMS: latency.Milliseconds(),
		Latency:   latency,
		CheckedAt: start,
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

// TestAll probes every configured registry concurrently, bounded by
// defaultFanoutConcurrency, and returns a result per registry name. A
// single registry's failure never aborts the others (partial-result
// semantics per spec.md §8).
func (m *Manager) TestAll(ctx context.Context) map[string]ConnectionResult {
	results := make(map[string]ConnectionResult, len(m.order))
	var mu sync.Mutex
	sem := semaphore.NewWeighted(defaultFanoutConcurrency)
	g, gctx := errgroup.WithContext(ctx)

	for _, name := range m.order {
		name := name
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			client := m.clients[name]
			result := m.probe(gctx, client)

			mu.Lock()
			results[name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
