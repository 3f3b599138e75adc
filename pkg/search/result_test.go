package search

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/explorer-search/pkg/types"
)

func settledPages() map[types.Kind]PageResult {
	pages := make(map[types.Kind]PageResult)
	for _, k := range types.Kinds {
		pages[k] = PageResult{Kind: k}
	}
	return pages
}

func TestComposeNotFound(t *testing.T) {
	res := compose(Query{Text: "x"}, settledPages())

	assert.True(t, res.NotFound)
	assert.False(t, res.Loading)
	assert.NoError(t, res.Err)
}

func TestComposeLoadingIsNotNotFound(t *testing.T) {
	pages := settledPages()
	pages[types.KindEvent] = PageResult{Kind: types.KindEvent, Loading: true}

	res := compose(Query{Text: "x"}, pages)

	assert.False(t, res.NotFound)
	assert.True(t, res.Loading)
}

func TestComposeErroredIsNotNotFound(t *testing.T) {
	pages := settledPages()
	pages[types.KindBlock] = PageResult{Kind: types.KindBlock, Err: ErrAllNetworksFailed}

	res := compose(Query{Text: "x"}, pages)

	assert.False(t, res.NotFound)
	assert.NoError(t, res.Err, "one failed kind is not a search failure")
}

func TestComposeAllKindsFailed(t *testing.T) {
	pages := make(map[types.Kind]PageResult)
	for _, k := range types.Kinds {
		pages[k] = PageResult{Kind: k, Err: ErrAllNetworksFailed}
	}

	res := compose(Query{Text: "x"}, pages)

	assert.ErrorIs(t, res.Err, ErrAllNetworksFailed)
}

func TestRedirectTarget(t *testing.T) {
	pages := settledPages()
	pages[types.KindBlock] = PageResult{
		Kind:       types.KindBlock,
		TotalCount: 1,
		Items:      []Item{{Network: "kusama", Kind: types.KindBlock, Data: &types.Block{ID: "0000000042", Height: 42}}},
	}
	res := compose(Query{Text: "42"}, pages)

	target, ok := res.RedirectTarget()
	require.True(t, ok)
	assert.Equal(t, Target{Kind: types.KindBlock, Network: "kusama", ID: "0000000042"}, target)
	assert.Equal(t, "/kusama/block/0000000042", target.Path())
}

func TestRedirectTargetNeverWhileLoading(t *testing.T) {
	pages := settledPages()
	pages[types.KindExtrinsic] = PageResult{
		Kind:       types.KindExtrinsic,
		TotalCount: 1,
		Items:      []Item{{Network: "kusama", Kind: types.KindExtrinsic, Data: &types.Extrinsic{ID: "1-1"}}},
	}
	pages[types.KindAccount] = PageResult{Kind: types.KindAccount, Loading: true}

	res := compose(Query{Text: "x"}, pages)

	_, ok := res.RedirectTarget()
	assert.False(t, ok)
}

func TestRedirectTargetNeedsExactlyOne(t *testing.T) {
	pages := settledPages()
	pages[types.KindEvent] = PageResult{
		Kind:       types.KindEvent,
		TotalCount: 2,
		Items: []Item{
			{Network: "kusama", Kind: types.KindEvent, Data: &types.Event{ID: "1-1"}},
			{Network: "kusama", Kind: types.KindEvent, Data: &types.Event{ID: "1-2"}},
		},
	}

	res := compose(Query{Text: "x"}, pages)

	_, ok := res.RedirectTarget()
	assert.False(t, ok)
}

func TestResultJSON(t *testing.T) {
	pages := settledPages()
	pages[types.KindBlock] = PageResult{
		Kind:           types.KindBlock,
		Err:            errors.New("blocks: all networks failed"),
		FailedNetworks: []NetworkFailure{{Network: "kusama", Err: errors.New("timeout")}},
	}
	res := compose(Query{Text: "x", Networks: []string{"kusama"}}, pages)

	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	blocks := decoded["blocks"].(map[string]interface{})
	assert.Equal(t, "blocks: all networks failed", blocks["error"])
	assert.Equal(t, []interface{}{}, decoded["accounts"].(map[string]interface{})["items"])
	failed := blocks["failedNetworks"].([]interface{})
	assert.Equal(t, "timeout", failed[0].(map[string]interface{})["error"])
}
