package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/0xmhha/explorer-search/pkg/types"
)

func TestNetworkError(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := NewNetworkError("kusama", types.KindBlock, cause)

	assert.ErrorIs(t, err, ErrNetworkUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "network kusama: blocks: network unavailable: dial tcp: i/o timeout", err.Error())

	var netErr *NetworkError
	assert.True(t, errors.As(error(err), &netErr))
	assert.Equal(t, "kusama", netErr.Network)
}

func TestKindError(t *testing.T) {
	cause := errors.New("502")
	err := NewKindError(types.KindEvent, []NetworkFailure{
		{Network: "kusama", Err: NewNetworkError("kusama", types.KindEvent, cause)},
	})

	assert.ErrorIs(t, err, ErrAllNetworksFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrMalformedQuery)
}
