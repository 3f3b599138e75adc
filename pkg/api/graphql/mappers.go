package graphql

import (
	"encoding/json"

	"github.com/0xmhha/explorer-search/pkg/network"
	"github.com/0xmhha/explorer-search/pkg/search"
)

func mapNetwork(n *network.Network) map[string]interface{} {
	return map[string]interface{}{
		"name":        n.Name,
		"displayName": n.DisplayName,
		"source":      n.Source,
		"selectable":  n.Selectable,
	}
}

func mapItem(item search.Item) map[string]interface{} {
	data, err := json.Marshal(item.Data)
	if err != nil {
		data = []byte("null")
	}
	return map[string]interface{}{
		"network": item.Network,
		"kind":    string(item.Kind),
		"id":      item.ID(),
		"data":    string(data),
	}
}

func mapPageResult(pr search.PageResult) map[string]interface{} {
	items := make([]interface{}, 0, len(pr.Items))
	for _, item := range pr.Items {
		items = append(items, mapItem(item))
	}
	failures := make([]interface{}, 0, len(pr.FailedNetworks))
	for _, f := range pr.FailedNetworks {
		failures = append(failures, map[string]interface{}{
			"network": f.Network,
			"error":   errorOrNil(f.Err),
		})
	}
	return map[string]interface{}{
		"kind":           string(pr.Kind),
		"page":           pr.Page.Page,
		"pageSize":       pr.Page.PageSize,
		"items":          items,
		"totalCount":     pr.TotalCount,
		"loading":        pr.Loading,
		"error":          errorOrNil(pr.Err),
		"failedNetworks": failures,
	}
}

func mapResult(r search.Result) map[string]interface{} {
	networks := r.Query.Networks
	if networks == nil {
		networks = []string{}
	}
	return map[string]interface{}{
		"query":      r.Query.Text,
		"networks":   networks,
		"accounts":   mapPageResult(r.Accounts),
		"blocks":     mapPageResult(r.Blocks),
		"extrinsics": mapPageResult(r.Extrinsics),
		"events":     mapPageResult(r.Events),
		"totalCount": r.TotalCount,
		"notFound":   r.NotFound,
		"loading":    r.Loading,
		"error":      errorOrNil(r.Err),
	}
}

func mapView(v search.View, searchPath string) map[string]interface{} {
	m := map[string]interface{}{
		"session":          v.Session,
		"tab":              string(v.State.Tab),
		"page":             v.State.Page,
		"url":              v.State.Path(searchPath),
		"displayedLoading": v.DisplayedLoading,
		"redirect":         nil,
		"result":           mapResult(v.Result),
	}
	if v.Redirect != nil {
		m["redirect"] = map[string]interface{}{
			"kind":    string(v.Redirect.Kind),
			"network": v.Redirect.Network,
			"id":      v.Redirect.ID,
			"path":    v.Redirect.Path(),
		}
	}
	return m
}

// errorOrNil keeps absent errors null in responses
func errorOrNil(err error) interface{} {
	if err == nil {
		return nil
	}
	return err.Error()
}
