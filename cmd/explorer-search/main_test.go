package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/internal/config"
	"github.com/0xmhha/explorer-search/pkg/types"
)

func TestLoadConfigAppliesFlags(t *testing.T) {
	t.Setenv("EXPLORER_LOG_LEVEL", "warn")

	cfg, err := loadConfig("", func(cfg *config.Config) {
		applyFlags(cfg, "kusama, polkadot", "", "", "console")
		applyAPIFlags(cfg, "0.0.0.0", 9000, true, false)
	})
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "0.0.0.0", cfg.API.Host)
	assert.Equal(t, 9000, cfg.API.Port)
	assert.True(t, cfg.API.EnableGraphQL)
	require.Len(t, cfg.Networks, 2)
	assert.Equal(t, "polkadot", cfg.Networks[1].Name)
	assert.Equal(t, config.SourceSquid, cfg.Networks[1].Source)
}

func TestLoadConfigRequiresNetworks(t *testing.T) {
	_, err := loadConfig("", func(*config.Config) {})
	assert.Error(t, err)
}

func TestOpenStorageSkipsRemoteOnly(t *testing.T) {
	cfg := config.NewConfig()
	cfg.AddNetworks([]string{"kusama"})

	store, err := openStorage(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestOpenStorageLoadsFixtures(t *testing.T) {
	dir := t.TempDir()
	fixtures := filepath.Join(dir, "devnet.json")
	require.NoError(t, os.WriteFile(fixtures, []byte(`{
		"accounts": [{"id": "alice", "address": "alice"}],
		"blocks": [{"id": "0000000001", "height": 1, "hash": "0x01", "timestamp": "2024-01-01T00:00:00Z"}]
	}`), 0o644))

	cfg := config.NewConfig()
	cfg.Storage.Path = filepath.Join(dir, "db")
	cfg.Networks = []config.NetworkConfig{{Name: "devnet", Source: config.SourceLocal, Fixtures: fixtures}}

	store, err := openStorage(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	n, err := store.Count(context.Background(), "devnet", types.KindBlock)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpenStorageBadFixtures(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Storage.Path = filepath.Join(dir, "db")
	cfg.Networks = []config.NetworkConfig{{Name: "devnet", Source: config.SourceLocal, Fixtures: filepath.Join(dir, "missing.json")}}

	_, err := openStorage(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
