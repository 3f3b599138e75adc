package squid

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/pkg/network"
	"github.com/0xmhha/explorer-search/pkg/search"
	"github.com/0xmhha/explorer-search/pkg/types"
)

// EntityClient searches one kind on one squid endpoint.
type EntityClient struct {
	client  *Client
	doc     *document
	network string
	url     string
}

// NewEntityClient creates an entity client for kind backed by the squid at url.
func NewEntityClient(client *Client, kind types.Kind, networkName, url string) (*EntityClient, error) {
	doc, err := documentFor(kind)
	if err != nil {
		return nil, err
	}
	return &EntityClient{client: client, doc: doc, network: networkName, url: url}, nil
}

// Query implements search.EntityClient. Texts that cannot match the kind
// return an empty page without a request.
func (e *EntityClient) Query(ctx context.Context, text string, page search.PageRequest) (search.Page, error) {
	filter := where(e.doc.Kind, Classify(text))
	if filter == nil {
		return search.Page{Items: []types.Entity{}}, nil
	}

	page = page.Normalize()
	vars := map[string]interface{}{
		"first": page.PageSize,
		"where": filter,
	}
	// squid connection cursors are stringified offsets
	if offset := page.Offset(); offset > 0 {
		vars["after"] = strconv.Itoa(offset)
	}

	raw, err := e.client.Query(ctx, e.url, e.doc.Query, vars, e.doc.Field)
	if err != nil {
		return search.Page{}, err
	}

	items, total, err := decodeEntities(e.doc.Kind, raw)
	if err != nil {
		return search.Page{}, fmt.Errorf("%s %s: %w", e.network, e.doc.Operation, err)
	}
	return search.Page{Items: items, TotalCount: total}, nil
}

// Factory hands out squid entity clients for registered networks.
type Factory struct {
	client   *Client
	registry *network.Registry
	logger   *zap.Logger
}

// NewFactory creates a squid client factory
func NewFactory(client *Client, registry *network.Registry, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{client: client, registry: registry, logger: logger.Named("squid")}
}

// Client implements search.ClientFactory
func (f *Factory) Client(kind types.Kind, networkName string) (search.EntityClient, error) {
	n, err := f.registry.Resolve(networkName)
	if err != nil {
		return nil, err
	}
	squidType, err := SquidTypeFor(kind)
	if err != nil {
		return nil, err
	}
	url, err := n.SquidURL(squidType)
	if err != nil {
		return nil, err
	}
	return NewEntityClient(f.client, kind, n.Name, url)
}
