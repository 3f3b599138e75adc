package search

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/explorer-search/pkg/types"
)

func blocks(prefix string, n int) []types.Entity {
	out := make([]types.Entity, n)
	for i := range out {
		out[i] = &types.Block{ID: fmt.Sprintf("%s-%02d", prefix, i), Height: uint64(i)}
	}
	return out
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Network + "/" + it.ID()
	}
	return out
}

func TestMergePagination(t *testing.T) {
	outcomes := []outcome{
		{network: "a", page: Page{Items: blocks("a", 7), TotalCount: 7}, done: true},
		{network: "b", page: Page{Items: blocks("b", 5), TotalCount: 5}, done: true},
	}

	first := merge(types.KindBlock, "x", outcomes, PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, first.err)
	assert.Equal(t, 12, first.total)
	require.Len(t, first.items, 10)
	for i := 0; i < 7; i++ {
		assert.Equal(t, "a", first.items[i].Network)
	}
	for i := 7; i < 10; i++ {
		assert.Equal(t, "b", first.items[i].Network)
	}

	second := merge(types.KindBlock, "x", outcomes, PageRequest{Page: 2, PageSize: 10})
	assert.Equal(t, []string{"b/b-03", "b/b-04"}, ids(second.items))
	assert.Equal(t, 12, second.total)

	third := merge(types.KindBlock, "x", outcomes, PageRequest{Page: 3, PageSize: 10})
	assert.Empty(t, third.items)
	assert.NotNil(t, third.items)
}

func TestMergeExactMatchFirst(t *testing.T) {
	hash := "0x" + fmt.Sprintf("%064x", 7)
	exact := &types.Block{ID: "b-exact", Height: 7, Hash: hash}
	outcomes := []outcome{
		{network: "a", page: Page{Items: blocks("a", 3), TotalCount: 3}, done: true},
		{network: "b", page: Page{Items: []types.Entity{exact}, TotalCount: 1}, done: true},
	}

	m := merge(types.KindBlock, hash, outcomes, PageRequest{Page: 1, PageSize: 10})

	require.Len(t, m.items, 4)
	assert.Equal(t, "b/b-exact", ids(m.items)[0])
	assert.Equal(t, []string{"a/a-00", "a/a-01", "a/a-02"}, ids(m.items)[1:])
}

func TestMergeExactMatchIsCaseInsensitive(t *testing.T) {
	acc := &types.Account{ID: "0xABCDEF", Address: "0xabcdef"}
	outcomes := []outcome{
		{network: "a", page: Page{Items: []types.Entity{&types.Account{ID: "other"}, acc}, TotalCount: 2}, done: true},
	}

	m := merge(types.KindAccount, "0xabcdef", outcomes, PageRequest{Page: 1, PageSize: 10})

	assert.Equal(t, []string{"a/0xABCDEF", "a/other"}, ids(m.items))
}

func TestMergeDeduplicatesWithinNetwork(t *testing.T) {
	dup := blocks("a", 2)
	outcomes := []outcome{
		{network: "a", page: Page{Items: append(dup, dup[0]), TotalCount: 2}, done: true},
		{network: "b", page: Page{Items: blocks("a", 1), TotalCount: 1}, done: true},
	}

	m := merge(types.KindBlock, "x", outcomes, PageRequest{Page: 1, PageSize: 10})

	// the same id on another network is a different item
	assert.Equal(t, []string{"a/a-00", "a/a-01", "b/a-00"}, ids(m.items))
}

func TestMergePartialFailure(t *testing.T) {
	boom := errors.New("connection refused")
	outcomes := []outcome{
		{network: "a", page: Page{Items: blocks("a", 2), TotalCount: 2}, done: true},
		{network: "b", err: NewNetworkError("b", types.KindBlock, boom), done: true},
	}

	m := merge(types.KindBlock, "x", outcomes, PageRequest{Page: 1, PageSize: 10})

	require.NoError(t, m.err)
	assert.Equal(t, 2, m.total)
	require.Len(t, m.failures, 1)
	assert.Equal(t, "b", m.failures[0].Network)
	assert.ErrorIs(t, m.failures[0].Err, ErrNetworkUnavailable)
	assert.ErrorIs(t, m.failures[0].Err, boom)
}

func TestMergeAllFailed(t *testing.T) {
	outcomes := []outcome{
		{network: "a", err: NewNetworkError("a", types.KindEvent, errors.New("timeout")), done: true},
		{network: "b", err: NewNetworkError("b", types.KindEvent, errors.New("502")), done: true},
	}

	m := merge(types.KindEvent, "x", outcomes, PageRequest{Page: 1, PageSize: 10})

	require.Error(t, m.err)
	assert.ErrorIs(t, m.err, ErrAllNetworksFailed)
	assert.ErrorIs(t, m.err, ErrNetworkUnavailable)
	assert.Zero(t, m.total)
	assert.Empty(t, m.items)
	assert.Contains(t, m.err.Error(), "a, b")
}

func TestMergeNoNetworks(t *testing.T) {
	m := merge(types.KindEvent, "x", nil, PageRequest{Page: 1, PageSize: 10})

	assert.NoError(t, m.err)
	assert.Empty(t, m.items)
}

// windows returns what each network answers for page: its first
// page*pageSize items and its full count.
func windows(page, pageSize int, networks map[string][]types.Entity, order ...string) []outcome {
	window := PageRequest{Page: page, PageSize: pageSize}.Window()
	out := make([]outcome, 0, len(order))
	for _, name := range order {
		all := networks[name]
		n := window
		if n > len(all) {
			n = len(all)
		}
		out = append(out, outcome{network: name, page: Page{Items: all[:n], TotalCount: len(all)}, done: true})
	}
	return out
}

func TestMergePagesPartitionTheList(t *testing.T) {
	networks := map[string][]types.Entity{
		"a": blocks("a", 5),
		"b": blocks("b", 30),
	}

	tests := []struct {
		name string
		text string
		head string
	}{
		{name: "no exact match", text: "x", head: "a/a-00"},
		{name: "exact match on first page", text: "b-03", head: "b/b-03"},
		{name: "exact match past first page", text: "b-12", head: "a/a-00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const pageSize = 10
			seen := make(map[string]int)
			for page := 1; page <= 4; page++ {
				m := merge(types.KindBlock, tt.text, windows(page, pageSize, networks, "a", "b"), PageRequest{Page: page, PageSize: pageSize})
				require.NoError(t, m.err)
				assert.Equal(t, 35, m.total)
				require.NotNil(t, m.first)
				assert.Equal(t, tt.head, m.first.Network+"/"+m.first.ID(), "page %d", page)
				if page == 1 {
					assert.Equal(t, tt.head, ids(m.items)[0])
				}
				for _, id := range ids(m.items) {
					seen[id]++
				}
			}

			assert.Len(t, seen, 35)
			for id, n := range seen {
				assert.Equal(t, 1, n, "%s shown %d times", id, n)
			}
		})
	}
}

func TestSlicePageBounds(t *testing.T) {
	items := make([]Item, 3)
	for i := range items {
		items[i] = Item{Network: "a", Data: &types.Block{ID: fmt.Sprintf("%d", i)}}
	}

	tests := []struct {
		name string
		req  PageRequest
		want int
	}{
		{name: "first page", req: PageRequest{Page: 1, PageSize: 2}, want: 2},
		{name: "last partial page", req: PageRequest{Page: 2, PageSize: 2}, want: 1},
		{name: "past the end", req: PageRequest{Page: 3, PageSize: 2}, want: 0},
		{name: "overflowing offset", req: PageRequest{Page: 922337203685477582, PageSize: 10}, want: 0},
		{name: "overflowing end", req: PageRequest{Page: 1, PageSize: int(^uint(0) >> 1)}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Len(t, slicePage(items, tt.req), tt.want)
			})
		})
	}
}
