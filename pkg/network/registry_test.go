package network

import (
	"errors"
	"testing"

	"github.com/0xmhha/explorer-search/internal/config"
	"go.uber.org/zap"
)

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	if registry == nil {
		t.Fatal("expected registry to not be nil")
	}
	if registry.Count() != 0 {
		t.Errorf("expected count 0, got %d", registry.Count())
	}
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	if err := registry.Register(&Network{Name: "kusama", Selectable: true}); err != nil {
		t.Fatalf("failed to register network: %v", err)
	}

	got, err := registry.Resolve("kusama")
	if err != nil {
		t.Fatalf("failed to resolve network: %v", err)
	}
	if got.Name != "kusama" {
		t.Errorf("expected kusama, got %s", got.Name)
	}

	if _, err := registry.Resolve("westend"); !errors.Is(err, ErrNetworkNotFound) {
		t.Errorf("expected ErrNetworkNotFound, got %v", err)
	}
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	if err := registry.Register(&Network{Name: "kusama"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if err := registry.Register(&Network{Name: "kusama"}); err != ErrNetworkAlreadyExists {
		t.Errorf("expected ErrNetworkAlreadyExists, got %v", err)
	}
	if err := registry.Register(&Network{}); err != ErrInvalidNetwork {
		t.Errorf("expected ErrInvalidNetwork, got %v", err)
	}
}

func TestRegistryResolveAll(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	for _, name := range []string{"kusama", "polkadot", "westend"} {
		if err := registry.Register(&Network{Name: name, Selectable: true}); err != nil {
			t.Fatalf("register %s failed: %v", name, err)
		}
	}

	got := Names(registry.ResolveAll([]string{"westend", "unknown", "kusama", "westend"}))
	want := []string{"westend", "kusama"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestRegistryListSelectable(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	_ = registry.Register(&Network{Name: "kusama", Selectable: true})
	_ = registry.Register(&Network{Name: "hidden", Selectable: false})
	_ = registry.Register(&Network{Name: "polkadot", Selectable: true})

	selectable := Names(registry.ListSelectable())
	if len(selectable) != 2 || selectable[0] != "kusama" || selectable[1] != "polkadot" {
		t.Errorf("unexpected selectable networks: %v", selectable)
	}
	if len(registry.List()) != 3 {
		t.Errorf("expected 3 networks, got %d", len(registry.List()))
	}
}

func TestNewRegistryFromConfig(t *testing.T) {
	cfg := &config.Config{
		Networks: []config.NetworkConfig{
			{Name: "kusama"},
			{Name: "polkadot", Squids: map[string]string{config.SquidMain: "http://localhost:4350/graphql"}},
			{Name: "devnet", Source: config.SourceLocal, Disabled: true},
		},
	}
	cfg.SetDefaults()

	registry, err := NewRegistryFromConfig(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRegistryFromConfig() error = %v", err)
	}

	kusama, _ := registry.Resolve("kusama")
	url, err := kusama.SquidURL(config.SquidExplorer)
	if err != nil {
		t.Fatalf("SquidURL() error = %v", err)
	}
	if url != "https://squid.subsquid.io/gs-explorer-kusama/graphql" {
		t.Errorf("unexpected explorer url %s", url)
	}
	stats, _ := kusama.SquidURL(config.SquidStats)
	if stats != "https://squid.subsquid.io/chain-analytics-squid/v/kusama-multi-parallel-2-0/graphql" {
		t.Errorf("expected forced stats url, got %s", stats)
	}
	if _, err := kusama.SquidURL(config.SquidArchive); !errors.Is(err, ErrSquidNotConfigured) {
		t.Errorf("expected ErrSquidNotConfigured, got %v", err)
	}

	polkadot, _ := registry.Resolve("polkadot")
	if main, _ := polkadot.SquidURL(config.SquidMain); main != "http://localhost:4350/graphql" {
		t.Errorf("expected override main url, got %s", main)
	}

	devnet, _ := registry.Resolve("devnet")
	if !devnet.IsLocal() || devnet.Selectable {
		t.Errorf("expected devnet to be local and hidden: %+v", devnet)
	}
}
