package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/explorer-search/internal/testutil"
	"github.com/0xmhha/explorer-search/pkg/navigation"
	"github.com/0xmhha/explorer-search/pkg/search"
)

func TestStoreCreateAndGet(t *testing.T) {
	engine, _ := newEngine(t, testutil.NewFakeBackend())
	store := search.NewStore(engine, newRegistry(t), search.StoreConfig{})
	defer store.Close()

	sess := store.Create()
	require.NotEmpty(t, sess.ID())

	got, err := store.Get(sess.ID())
	require.NoError(t, err)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, store.Len())

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, search.ErrSessionNotFound)
}

func TestStoreGetOrCreate(t *testing.T) {
	engine, _ := newEngine(t, testutil.NewFakeBackend())
	store := search.NewStore(engine, newRegistry(t), search.StoreConfig{})
	defer store.Close()

	first, created := store.GetOrCreate("")
	assert.True(t, created)

	same, created := store.GetOrCreate(first.ID())
	assert.False(t, created)
	assert.Same(t, first, same)

	other, created := store.GetOrCreate("expired-or-forged")
	assert.True(t, created)
	assert.NotEqual(t, first.ID(), other.ID())
}

func TestStoreEvictionClosesSession(t *testing.T) {
	backend := testutil.NewFakeBackend()
	release := backend.HoldAll("kusama", "x")
	defer release()
	engine, _ := newEngine(t, backend)
	store := search.NewStore(engine, newRegistry(t), search.StoreConfig{MaxSessions: 1})
	defer store.Close()

	oldest := store.Create()
	_, err := oldest.Update(navigation.State{Query: "x", Networks: []string{"kusama"}})
	require.NoError(t, err)

	store.Create()

	assert.Equal(t, 1, store.Len())
	_, err = store.Get(oldest.ID())
	assert.ErrorIs(t, err, search.ErrSessionNotFound)

	view := oldest.View()
	assert.False(t, view.Result.Loading, "closed session stops loading")
	assert.ErrorIs(t, view.Result.Err, search.ErrClosed)
}

func TestStoreDelete(t *testing.T) {
	engine, _ := newEngine(t, testutil.NewFakeBackend())
	store := search.NewStore(engine, newRegistry(t), search.StoreConfig{})
	defer store.Close()

	sess := store.Create()
	store.Delete(sess.ID())

	assert.Zero(t, store.Len())
}

func TestStoreCloseClosesSessions(t *testing.T) {
	backend := testutil.NewFakeBackend()
	release := backend.HoldAll("kusama", "x")
	defer release()
	engine, _ := newEngine(t, backend)
	store := search.NewStore(engine, newRegistry(t), search.StoreConfig{})

	sess := store.Create()
	_, err := sess.Update(navigation.State{Query: "x", Networks: []string{"kusama"}})
	require.NoError(t, err)

	store.Close()

	assert.Zero(t, store.Len())
	assert.ErrorIs(t, sess.View().Result.Err, search.ErrClosed)
}
