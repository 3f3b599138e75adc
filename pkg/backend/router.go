// Package backend routes entity queries to the source serving each network:
// hosted squids for remote networks and the local store for the rest.
package backend

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/pkg/network"
	"github.com/0xmhha/explorer-search/pkg/search"
	"github.com/0xmhha/explorer-search/pkg/types"
)

// ErrNoLocalStore is returned for local networks when no store is configured
var ErrNoLocalStore = errors.New("no local store configured")

// Router implements search.ClientFactory over several sources
type Router struct {
	registry *network.Registry
	remote   search.ClientFactory
	local    search.ClientFactory
	logger   *zap.Logger
}

// NewRouter creates a router. local may be nil when no network is local.
func NewRouter(registry *network.Registry, remote, local search.ClientFactory, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		registry: registry,
		remote:   remote,
		local:    local,
		logger:   logger.Named("backend"),
	}
}

// Client implements search.ClientFactory
func (r *Router) Client(kind types.Kind, name string) (search.EntityClient, error) {
	n, err := r.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	source := r.remote
	if n.IsLocal() {
		if r.local == nil {
			return nil, fmt.Errorf("network %s: %w", n.Name, ErrNoLocalStore)
		}
		source = r.local
	}

	client, err := source.Client(kind, n.Name)
	if err != nil {
		r.logger.Debug("no client for network",
			zap.String("network", n.Name),
			zap.Stringer("kind", kind),
			zap.Error(err),
		)
		return nil, err
	}
	return client, nil
}
