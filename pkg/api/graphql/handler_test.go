package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/explorer-search/internal/testutil"
	"github.com/0xmhha/explorer-search/pkg/network"
	"github.com/0xmhha/explorer-search/pkg/types"
)

func setupHandler(t *testing.T) (*Handler, *testutil.Stack) {
	t.Helper()
	stack := testutil.NewStack(t, "kusama", "polkadot")
	require.NoError(t, stack.Registry.Register(&network.Network{Name: "devnet", DisplayName: "Devnet", Source: "local"}))

	h, err := NewHandler(stack.Sessions, stack.Registry, testutil.NewTestLogger(t), Options{})
	require.NoError(t, err)
	return h, stack
}

func execute(t *testing.T, h *Handler, query string, vars map[string]interface{}) map[string]interface{} {
	t.Helper()
	result := h.ExecuteQuery(context.Background(), query, vars)
	require.Empty(t, result.Errors, "unexpected errors: %v", result.Errors)
	data, ok := result.Data.(map[string]interface{})
	require.True(t, ok)
	return data
}

const searchQuery = `query($q: String!, $networks: [String!], $tab: String, $page: Int, $session: String) {
	search(query: $q, networks: $networks, tab: $tab, page: $page, session: $session) {
		session
		tab
		page
		url
		displayedLoading
		redirect { kind network id path }
		result {
			query
			networks
			totalCount
			notFound
			loading
			error
			blocks { page pageSize totalCount loading items { network kind id data } failedNetworks { network error } }
			extrinsics { totalCount failedNetworks { network error } }
		}
	}
}`

func TestSearchSingleMatchRedirects(t *testing.T) {
	h, stack := setupHandler(t)
	stack.Backend.Add(types.KindBlock, "kusama", "42", testutil.NewBlock(42))

	data := execute(t, h, searchQuery, map[string]interface{}{"q": "42"})
	view := data["search"].(map[string]interface{})

	assert.NotEmpty(t, view["session"])
	assert.Equal(t, false, view["displayedLoading"])
	assert.Equal(t, "/search?network=kusama&network=polkadot&query=42", view["url"])

	redirect := view["redirect"].(map[string]interface{})
	assert.Equal(t, "/kusama/block/0000000042", redirect["path"])

	result := view["result"].(map[string]interface{})
	assert.Equal(t, []interface{}{"kusama", "polkadot"}, result["networks"])
	assert.Equal(t, 1, result["totalCount"])
	assert.Equal(t, false, result["loading"])
	assert.Nil(t, result["error"])

	blocks := result["blocks"].(map[string]interface{})
	items := blocks["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "kusama", item["network"])

	var block types.Block
	require.NoError(t, json.Unmarshal([]byte(item["data"].(string)), &block))
	assert.Equal(t, uint64(42), block.Height)
}

func TestSearchPartialFailure(t *testing.T) {
	h, stack := setupHandler(t)
	stack.Backend.Add(types.KindExtrinsic, "kusama", "Balances.transfer", testutil.NewExtrinsic("1-1", "0x01"), testutil.NewExtrinsic("2-1", "0x02"))
	stack.Backend.Fail(types.KindExtrinsic, "polkadot", errors.New("squid down"))

	data := execute(t, h, searchQuery, map[string]interface{}{"q": "Balances.transfer", "tab": "extrinsics"})
	view := data["search"].(map[string]interface{})
	assert.Nil(t, view["redirect"])
	assert.Equal(t, "extrinsics", view["tab"])

	extrinsics := view["result"].(map[string]interface{})["extrinsics"].(map[string]interface{})
	assert.Equal(t, 2, extrinsics["totalCount"])
	failures := extrinsics["failedNetworks"].([]interface{})
	require.Len(t, failures, 1)
	failure := failures[0].(map[string]interface{})
	assert.Equal(t, "polkadot", failure["network"])
	assert.Contains(t, failure["error"], "squid down")
}

func TestSearchNotFoundAndSessionReuse(t *testing.T) {
	h, _ := setupHandler(t)

	data := execute(t, h, searchQuery, map[string]interface{}{"q": "nothing", "networks": []interface{}{"kusama"}})
	view := data["search"].(map[string]interface{})
	result := view["result"].(map[string]interface{})
	assert.Equal(t, true, result["notFound"])
	assert.Equal(t, 0, result["totalCount"])

	session := view["session"].(string)
	data = execute(t, h, searchQuery, map[string]interface{}{"q": "nothing", "networks": []interface{}{"kusama"}, "session": session, "page": 2, "tab": "blocks"})
	view = data["search"].(map[string]interface{})
	assert.Equal(t, session, view["session"])
	assert.Equal(t, 2, view["page"])
	blocks := view["result"].(map[string]interface{})["blocks"].(map[string]interface{})
	assert.Equal(t, 2, blocks["page"])
}

func TestSearchRejectsInput(t *testing.T) {
	h, _ := setupHandler(t)

	tests := []struct {
		name string
		vars map[string]interface{}
	}{
		{name: "empty query", vars: map[string]interface{}{"q": "   "}},
		{name: "invalid tab", vars: map[string]interface{}{"q": "x", "tab": "transfers"}},
		{name: "invalid page", vars: map[string]interface{}{"q": "x", "page": 0}},
		{name: "unknown networks", vars: map[string]interface{}{"q": "x", "networks": []interface{}{"atlantis"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := h.ExecuteQuery(context.Background(), searchQuery, tt.vars)
			assert.NotEmpty(t, result.Errors)
		})
	}
}

func TestNetworksQuery(t *testing.T) {
	h, _ := setupHandler(t)

	data := execute(t, h, `{ networks { name selectable } }`, nil)
	assert.Len(t, data["networks"], 2)

	data = execute(t, h, `{ networks(all: true) { name source } }`, nil)
	assert.Len(t, data["networks"], 3)
}

func TestHandlerServeHTTP(t *testing.T) {
	h, stack := setupHandler(t)
	stack.Backend.Add(types.KindAccount, "polkadot", "alice", testutil.NewAccount("alice"))

	body := `{"query":"{ search(query: \"alice\") { redirect { path } } }"}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/polkadot/account/alice")
}

func TestPlaygroundHandler(t *testing.T) {
	h, _ := setupHandler(t)

	w := httptest.NewRecorder()
	h.PlaygroundHandler("/graphql")(w, httptest.NewRequest(http.MethodGet, "/playground", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "endpoint: '/graphql'")
}
