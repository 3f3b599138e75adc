package network

import (
	"strings"
	"sync"

	"github.com/0xmhha/explorer-search/internal/config"
	"go.uber.org/zap"
)

// Registry keeps the configured networks in registration order.
type Registry struct {
	networks map[string]*Network
	order    []string
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewRegistry creates an empty network registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		networks: make(map[string]*Network),
		logger:   logger.Named("networks"),
	}
}

// NewRegistryFromConfig registers every configured network.
func NewRegistryFromConfig(cfg *config.Config, logger *zap.Logger) (*Registry, error) {
	r := NewRegistry(logger)
	for _, nc := range cfg.Networks {
		if err := r.Register(FromConfig(nc, cfg.Squid)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a network to the registry.
func (r *Registry) Register(n *Network) error {
	if n == nil || n.Name == "" {
		return ErrInvalidNetwork
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.networks[n.Name]; exists {
		return ErrNetworkAlreadyExists
	}

	r.networks[n.Name] = n
	r.order = append(r.order, n.Name)
	r.logger.Info("network registered",
		zap.String("name", n.Name),
		zap.String("source", n.Source),
		zap.Bool("selectable", n.Selectable),
	)

	return nil
}

// Resolve returns the network with the given name.
func (r *Registry) Resolve(name string) (*Network, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.networks[strings.TrimSpace(name)]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// ResolveAll maps names to networks in the given order. Unknown names and
// duplicates are dropped, mirroring how links with stale network names are
// handled.
func (r *Registry) ResolveAll(names []string) []*Network {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(names))
	out := make([]*Network, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		n, ok := r.networks[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, n)
	}
	return out
}

// ListSelectable returns the selectable networks in registration order.
func (r *Registry) ListSelectable() []*Network {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Network, 0, len(r.order))
	for _, name := range r.order {
		if n := r.networks[name]; n.Selectable {
			out = append(out, n)
		}
	}
	return out
}

// List returns every registered network in registration order.
func (r *Registry) List() []*Network {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Network, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.networks[name])
	}
	return out
}

// Count returns the number of registered networks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.networks)
}

// Names returns the names of the given networks.
func Names(networks []*Network) []string {
	names := make([]string, len(networks))
	for i, n := range networks {
		names[i] = n.Name
	}
	return names
}
