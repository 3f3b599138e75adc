package search_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/0xmhha/explorer-search/internal/testutil"
	"github.com/0xmhha/explorer-search/pkg/search"
)

func TestGateHoldsLoadingForMinimumTime(t *testing.T) {
	clock := testutil.NewFakeClock()
	gate := search.NewGate(time.Second, clock)

	assert.False(t, gate.Displayed(false), "idle gate forces nothing")

	assert.True(t, gate.Observe("0xabc"))
	assert.True(t, gate.Displayed(false), "fast answer still shows loading")

	clock.Advance(999 * time.Millisecond)
	assert.True(t, gate.Displayed(false))
	assert.Equal(t, time.Millisecond, gate.Remaining())

	clock.Advance(time.Millisecond)
	assert.False(t, gate.Displayed(false))
	assert.True(t, gate.Displayed(true), "real loading always shows")
}

func TestGateResetsOnlyOnTextChange(t *testing.T) {
	clock := testutil.NewFakeClock()
	gate := search.NewGate(time.Second, clock)

	gate.Observe("x")
	deadline := gate.Deadline()
	clock.Advance(600 * time.Millisecond)

	assert.False(t, gate.Observe("x"), "same text keeps the timer")
	assert.Equal(t, deadline, gate.Deadline())

	assert.True(t, gate.Observe("y"))
	assert.Equal(t, clock.Now().Add(time.Second), gate.Deadline())
}

func TestGateZeroMinimum(t *testing.T) {
	gate := search.NewGate(0, nil)

	gate.Observe("x")

	assert.False(t, gate.Active())
}

func TestGateDeadlineBeforeObserve(t *testing.T) {
	clock := testutil.NewFakeClock()
	gate := search.NewGate(time.Second, clock)

	assert.True(t, gate.Deadline().IsZero(), "unarmed gate has no deadline")

	gate.Observe("x")
	assert.Equal(t, clock.Now().Add(time.Second), gate.Deadline())
}
