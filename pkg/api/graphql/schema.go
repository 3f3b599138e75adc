package graphql

import (
	"context"
	"errors"
	"time"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/internal/constants"
	"github.com/0xmhha/explorer-search/pkg/navigation"
	"github.com/0xmhha/explorer-search/pkg/network"
	"github.com/0xmhha/explorer-search/pkg/search"
	"github.com/0xmhha/explorer-search/pkg/types"
)

// Sessions hands out search sessions by id. *search.Store satisfies it.
type Sessions interface {
	GetOrCreate(id string) (*search.Session, bool)
}

// Schema holds the GraphQL schema
type Schema struct {
	schema      graphql.Schema
	sessions    Sessions
	networks    *network.Registry
	waitTimeout time.Duration
	searchPath  string
	logger      *zap.Logger
}

// Options configures the schema
type Options struct {
	// WaitTimeout bounds how long a waiting search blocks
	WaitTimeout time.Duration
	// SearchPath is the base of shareable search URLs
	SearchPath string
}

// NewSchema builds the search schema
func NewSchema(sessions Sessions, networks *network.Registry, logger *zap.Logger, opts Options) (*Schema, error) {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = constants.DefaultWaitTimeout
	}
	if opts.SearchPath == "" {
		opts.SearchPath = constants.DefaultSearchPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Schema{
		sessions:    sessions,
		networks:    networks,
		waitTimeout: opts.WaitTimeout,
		searchPath:  opts.SearchPath,
		logger:      logger,
	}

	queries := graphql.Fields{
		"search": &graphql.Field{
			Type: graphql.NewNonNull(searchViewType),
			Args: graphql.FieldConfigArgument{
				"query": &graphql.ArgumentConfig{
					Type:        graphql.NewNonNull(graphql.String),
					Description: "Account, block number or hash, extrinsic hash, or Pallet.name",
				},
				"networks": &graphql.ArgumentConfig{
					Type:        graphql.NewList(graphql.NewNonNull(graphql.String)),
					Description: "Networks to search; all selectable networks when omitted",
				},
				"tab": &graphql.ArgumentConfig{
					Type:         graphql.String,
					DefaultValue: string(navigation.DefaultTab),
				},
				"page": &graphql.ArgumentConfig{
					Type:         graphql.Int,
					DefaultValue: 1,
				},
				"session": &graphql.ArgumentConfig{
					Type:        graphql.String,
					Description: "Session to continue; a new one is created when empty or expired",
				},
				"wait": &graphql.ArgumentConfig{
					Type:         graphql.Boolean,
					DefaultValue: true,
					Description:  "Block until every kind has settled",
				},
			},
			Description: "Search every entity kind across networks",
			Resolve:     s.resolveSearch,
		},
		"networks": &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(networkType))),
			Args: graphql.FieldConfigArgument{
				"all": &graphql.ArgumentConfig{
					Type:         graphql.Boolean,
					DefaultValue: false,
					Description:  "Include networks hidden from selection",
				},
			},
			Description: "Searchable networks",
			Resolve:     s.resolveNetworks,
		},
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: queries,
		}),
	})
	if err != nil {
		return nil, err
	}
	s.schema = schema
	return s, nil
}

func (s *Schema) resolveSearch(p graphql.ResolveParams) (interface{}, error) {
	st := navigation.State{Page: 1, Tab: navigation.DefaultTab}
	st.Query, _ = p.Args["query"].(string)
	if raw, ok := p.Args["networks"].([]interface{}); ok {
		for _, n := range raw {
			if name, ok := n.(string); ok {
				st.Networks = append(st.Networks, name)
			}
		}
	}
	if tab, ok := p.Args["tab"].(string); ok && tab != "" {
		kind, err := types.ParseKind(tab)
		if err != nil {
			return nil, err
		}
		st.Tab = kind
	}
	if page, ok := p.Args["page"].(int); ok {
		if page < 1 {
			return nil, navigation.ErrInvalidPage
		}
		st.Page = page
	}

	id, _ := p.Args["session"].(string)
	sess, _ := s.sessions.GetOrCreate(id)

	view, err := sess.Update(st)
	if err != nil {
		return nil, err
	}

	if wait, _ := p.Args["wait"].(bool); wait {
		ctx := p.Context
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, s.waitTimeout)
		defer cancel()

		view, err = sess.Wait(ctx)
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		// an expired wait returns whatever has settled so far
	}

	return mapView(view, s.searchPath), nil
}

func (s *Schema) resolveNetworks(p graphql.ResolveParams) (interface{}, error) {
	list := s.networks.ListSelectable()
	if all, _ := p.Args["all"].(bool); all {
		list = s.networks.List()
	}

	result := make([]interface{}, 0, len(list))
	for _, n := range list {
		result = append(result, mapNetwork(n))
	}
	return result, nil
}
