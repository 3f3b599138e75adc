package testutil

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/pkg/network"
	"github.com/0xmhha/explorer-search/pkg/search"
)

// NewRegistry registers the given networks as selectable squid networks
func NewRegistry(t *testing.T, names ...string) *network.Registry {
	t.Helper()
	registry := network.NewRegistry(zap.NewNop())
	for _, name := range names {
		require.NoError(t, registry.Register(&network.Network{Name: name, DisplayName: name, Source: "squid", Selectable: true}))
	}
	return registry
}

// Stack is a search engine with a session store over a fake backend
type Stack struct {
	Backend  *FakeBackend
	Registry *network.Registry
	Engine   *search.Engine
	Sessions *search.Store
	Metrics  *search.Metrics
	Gatherer *prometheus.Registry
}

// NewStack builds a search stack over networks. Sessions have no minimum
// display time so waits return as soon as every kind settles.
func NewStack(t *testing.T, networks ...string) *Stack {
	t.Helper()

	gatherer := prometheus.NewRegistry()
	metrics := search.NewMetrics(gatherer, "test")
	backend := NewFakeBackend()
	registry := NewRegistry(t, networks...)

	engine, err := search.NewEngine(backend,
		search.WithWorkers(16),
		search.WithLogger(NewTestLogger(t)),
		search.WithMetrics(metrics),
	)
	require.NoError(t, err)

	sessions := search.NewStore(engine, registry, search.StoreConfig{
		Session: search.SessionConfig{PageSize: 10},
	})
	t.Cleanup(func() {
		sessions.Close()
		engine.Close()
	})

	return &Stack{
		Backend:  backend,
		Registry: registry,
		Engine:   engine,
		Sessions: sessions,
		Metrics:  metrics,
		Gatherer: gatherer,
	}
}
