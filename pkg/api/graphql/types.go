package graphql

import (
	"github.com/graphql-go/graphql"
)

var (
	// Network type
	networkType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "Network",
		Description: "A searchable network",
		Fields: graphql.Fields{
			"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"displayName": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"source": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "squid or local",
			},
			"selectable": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})

	// SearchItem type
	searchItemType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "SearchItem",
		Description: "One match tagged with its network",
		Fields: graphql.Fields{
			"network": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"kind":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"id":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"data": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Entity as JSON string",
			},
		},
	})

	// NetworkFailure type
	networkFailureType = graphql.NewObject(graphql.ObjectConfig{
		Name: "NetworkFailure",
		Fields: graphql.Fields{
			"network": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"error":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	// PageResult type
	pageResultType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "PageResult",
		Description: "Merged page of one entity kind across networks",
		Fields: graphql.Fields{
			"kind":           &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"page":           &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"pageSize":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"items":          &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(searchItemType)))},
			"totalCount":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"loading":        &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"error":          &graphql.Field{Type: graphql.String},
			"failedNetworks": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(networkFailureType)))},
		},
	})

	// SearchResult type
	searchResultType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "SearchResult",
		Description: "Combined result of all entity kinds",
		Fields: graphql.Fields{
			"query":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"networks":   &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
			"accounts":   &graphql.Field{Type: graphql.NewNonNull(pageResultType)},
			"blocks":     &graphql.Field{Type: graphql.NewNonNull(pageResultType)},
			"extrinsics": &graphql.Field{Type: graphql.NewNonNull(pageResultType)},
			"events":     &graphql.Field{Type: graphql.NewNonNull(pageResultType)},
			"totalCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"notFound":   &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"loading":    &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"error":      &graphql.Field{Type: graphql.String},
		},
	})

	// Redirect type
	redirectType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "Redirect",
		Description: "Detail page of the single match",
		Fields: graphql.Fields{
			"kind":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"network": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"id":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"path":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	// SearchView type
	searchViewType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "SearchView",
		Description: "What the search screen shows",
		Fields: graphql.Fields{
			"session":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"tab":              &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"page":             &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"url":              &graphql.Field{Type: graphql.NewNonNull(graphql.String), Description: "Shareable search path"},
			"displayedLoading": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"redirect":         &graphql.Field{Type: redirectType},
			"result":           &graphql.Field{Type: graphql.NewNonNull(searchResultType)},
		},
	})
)
