package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/0xmhha/explorer-search/pkg/search"
	"github.com/0xmhha/explorer-search/pkg/types"
)

// NewTestLogger creates a logger that writes through t.Log
func NewTestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
}

// NewAccount creates an account whose id is also its address
func NewAccount(id string) *types.Account {
	return &types.Account{ID: id, Address: id}
}

// NewBlock creates a block with a derived id and hash
func NewBlock(height uint64) *types.Block {
	return &types.Block{
		ID:        fmt.Sprintf("%010d", height),
		Height:    height,
		Hash:      fmt.Sprintf("0x%064x", height),
		Timestamp: time.Unix(1_700_000_000+int64(height)*6, 0).UTC(),
	}
}

// NewExtrinsic creates an extrinsic with the given id and hash
func NewExtrinsic(id, hash string) *types.Extrinsic {
	return &types.Extrinsic{
		ID:         id,
		Hash:       hash,
		PalletName: "Balances",
		CallName:   "transfer",
		Success:    true,
	}
}

// NewEvent creates an event with the given id
func NewEvent(id string) *types.Event {
	return &types.Event{ID: id, PalletName: "Balances", EventName: "Transfer"}
}

// NewBlocks creates n consecutive blocks starting at height from
func NewBlocks(from uint64, n int) []types.Entity {
	out := make([]types.Entity, n)
	for i := 0; i < n; i++ {
		out[i] = NewBlock(from + uint64(i))
	}
	return out
}

// Call records one entity client invocation
type Call struct {
	Kind    types.Kind
	Network string
	Text    string
	Page    search.PageRequest
}

// FakeBackend serves canned entity lists per (kind, network, text) and
// satisfies search.ClientFactory. Unknown triples return an empty page.
type FakeBackend struct {
	mu      sync.Mutex
	data    map[string][]types.Entity
	totals  map[string]int
	errs    map[string]error
	holds   map[string]chan struct{}
	unknown map[string]bool
	calls   []Call
}

// NewFakeBackend creates an empty backend
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		data:    make(map[string][]types.Entity),
		totals:  make(map[string]int),
		errs:    make(map[string]error),
		holds:   make(map[string]chan struct{}),
		unknown: make(map[string]bool),
	}
}

func key(parts ...string) string {
	return strings.Join(parts, "|")
}

// Add registers the ordered matches of text on (kind, network)
func (b *FakeBackend) Add(kind types.Kind, network, text string, entities ...types.Entity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := key(string(kind), network, text)
	b.data[k] = append(b.data[k], entities...)
}

// SetTotal overrides the reported total count for text on (kind, network)
func (b *FakeBackend) SetTotal(kind types.Kind, network, text string, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.totals[key(string(kind), network, text)] = total
}

// Fail makes every call for (kind, network) return err
func (b *FakeBackend) Fail(kind types.Kind, network string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errs[key(string(kind), network)] = err
}

// FailAll makes every kind of network return err
func (b *FakeBackend) FailAll(network string, err error) {
	for _, kind := range types.Kinds {
		b.Fail(kind, network, err)
	}
}

// Unknown makes Client refuse the network
func (b *FakeBackend) Unknown(network string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unknown[network] = true
}

// Hold blocks calls for text on (kind, network) until release is called
func (b *FakeBackend) Hold(kind types.Kind, network, text string) (release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{})
	b.holds[key(string(kind), network, text)] = ch
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// HoldAll blocks every kind for text on network
func (b *FakeBackend) HoldAll(network, text string) (release func()) {
	releases := make([]func(), 0, len(types.Kinds))
	for _, kind := range types.Kinds {
		releases = append(releases, b.Hold(kind, network, text))
	}
	return func() {
		for _, r := range releases {
			r()
		}
	}
}

// Calls returns a copy of the recorded calls
func (b *FakeBackend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallCount returns the number of recorded calls
func (b *FakeBackend) CallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

// CallsFor returns the recorded calls of one kind
func (b *FakeBackend) CallsFor(kind types.Kind) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.calls {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Client implements search.ClientFactory
func (b *FakeBackend) Client(kind types.Kind, network string) (search.EntityClient, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unknown[network] {
		return nil, fmt.Errorf("no client for network %q", network)
	}
	return search.EntityClientFunc(func(ctx context.Context, text string, page search.PageRequest) (search.Page, error) {
		return b.query(ctx, kind, network, text, page)
	}), nil
}

func (b *FakeBackend) query(ctx context.Context, kind types.Kind, network, text string, page search.PageRequest) (search.Page, error) {
	b.mu.Lock()
	b.calls = append(b.calls, Call{Kind: kind, Network: network, Text: text, Page: page})
	hold := b.holds[key(string(kind), network, text)]
	b.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return search.Page{}, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.errs[key(string(kind), network)]; err != nil {
		return search.Page{}, err
	}

	k := key(string(kind), network, text)
	all := b.data[k]
	total, ok := b.totals[k]
	if !ok {
		total = len(all)
	}

	start := (page.Page - 1) * page.PageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + page.PageSize
	if end > len(all) {
		end = len(all)
	}
	return search.Page{Items: append([]types.Entity(nil), all[start:end]...), TotalCount: total}, nil
}

// FakeClock is a manually advanced clock
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock set to a fixed instant
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Unix(1_700_000_000, 0)}
}

// Now implements search.Clock
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SyncDispatcher runs tasks on a fresh goroutine without pooling
type SyncDispatcher struct{}

// Submit implements search.Dispatcher
func (SyncDispatcher) Submit(task func()) error {
	go task()
	return nil
}
