package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/pkg/search"
	"github.com/0xmhha/explorer-search/pkg/types"
)

// EntityClient searches one kind of one local network.
type EntityClient struct {
	store   *PebbleStore
	kind    types.Kind
	network string
}

// Query implements search.EntityClient
func (c *EntityClient) Query(ctx context.Context, text string, page search.PageRequest) (search.Page, error) {
	page = page.Normalize()
	items, total, err := c.store.Search(ctx, c.network, c.kind, text, page.Offset(), page.PageSize)
	if err != nil {
		return search.Page{}, err
	}
	return search.Page{Items: items, TotalCount: total}, nil
}

// Factory hands out entity clients backed by the store.
type Factory struct {
	store  *PebbleStore
	logger *zap.Logger
}

// NewFactory creates a local client factory
func NewFactory(store *PebbleStore, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{store: store, logger: logger.Named("local")}
}

// Client implements search.ClientFactory
func (f *Factory) Client(kind types.Kind, network string) (search.EntityClient, error) {
	kind, err := types.ParseKind(string(kind))
	if err != nil {
		return nil, err
	}
	return &EntityClient{store: f.store, kind: kind, network: network}, nil
}
