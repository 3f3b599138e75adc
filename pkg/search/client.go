package search

import (
	"context"

	"github.com/0xmhha/explorer-search/pkg/types"
)

// Page is what an entity client returns for one network: the leading items
// of its result list and the exact total match count on that network.
type Page struct {
	Items      []types.Entity
	TotalCount int
}

// EntityClient searches one kind on one network. Implementations must be
// safe for concurrent use and return a stable item order for a given text.
type EntityClient interface {
	Query(ctx context.Context, text string, page PageRequest) (Page, error)
}

// ClientFactory hands out the entity client for a (kind, network) pair.
type ClientFactory interface {
	Client(kind types.Kind, network string) (EntityClient, error)
}

// ClientFactoryFunc adapts a function to ClientFactory.
type ClientFactoryFunc func(kind types.Kind, network string) (EntityClient, error)

// Client implements ClientFactory
func (f ClientFactoryFunc) Client(kind types.Kind, network string) (EntityClient, error) {
	return f(kind, network)
}

// EntityClientFunc adapts a function to EntityClient.
type EntityClientFunc func(ctx context.Context, text string, page PageRequest) (Page, error)

// Query implements EntityClient
func (f EntityClientFunc) Query(ctx context.Context, text string, page PageRequest) (Page, error) {
	return f(ctx, text, page)
}
