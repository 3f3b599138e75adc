package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/0xmhha/explorer-search/internal/constants"
	"github.com/0xmhha/explorer-search/pkg/types"
)

func TestNewQuery(t *testing.T) {
	q := NewQuery("  0xabc ", []string{"kusama", " ", "polkadot", "kusama"})

	assert.Equal(t, "0xabc", q.Text)
	assert.Equal(t, []string{"kusama", "polkadot"}, q.Networks)
	assert.False(t, q.Empty())
	assert.True(t, NewQuery(" \t", nil).Empty())
}

func TestQueryEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Query
		want bool
	}{
		{"same", Query{"x", []string{"a", "b"}}, Query{"x", []string{"a", "b"}}, true},
		{"network order ignored", Query{"x", []string{"a", "b"}}, Query{"x", []string{"b", "a"}}, true},
		{"text differs", Query{"x", []string{"a"}}, Query{"y", []string{"a"}}, false},
		{"network added", Query{"x", []string{"a"}}, Query{"x", []string{"a", "b"}}, false},
		{"network swapped", Query{"x", []string{"a"}}, Query{"x", []string{"b"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestPageRequest(t *testing.T) {
	p := PageRequest{Page: 3, PageSize: 10}
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 30, p.Window())

	assert.Equal(t, PageRequest{Page: 1, PageSize: 10}, PageRequest{}.Normalize())
	assert.Equal(t, PageRequest{Page: 2, PageSize: 100}, PageRequest{Page: 2, PageSize: 500}.Normalize())

	huge := PageRequest{Page: 922337203685477582, PageSize: 10}.Normalize()
	assert.Equal(t, constants.MaxPage, huge.Page)
	assert.Positive(t, huge.Window())
	assert.Positive(t, huge.Offset())
}

func TestInputPageFor(t *testing.T) {
	in := Input{Pagination: map[types.Kind]PageRequest{types.KindBlock: {Page: 2, PageSize: 5}}}

	assert.Equal(t, PageRequest{Page: 2, PageSize: 5}, in.PageFor(types.KindBlock))
	assert.Equal(t, PageRequest{Page: 1, PageSize: 10}, in.PageFor(types.KindEvent))
}
