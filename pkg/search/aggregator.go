package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/pkg/cache"
	"github.com/0xmhha/explorer-search/pkg/types"
)

// Dispatcher runs entity client calls. *ants.Pool satisfies it.
type Dispatcher interface {
	Submit(task func()) error
}

type cacheKey struct {
	kind    types.Kind
	network string
	text    string
	window  int
}

// responseCache holds network windows shared by every aggregator of an engine.
type responseCache = cache.Cache[cacheKey, Page]

type request struct {
	query Query
	page  PageRequest
}

// Aggregator runs one kind of search across every selected network and
// keeps the merged page for the latest request. Each request bumps a
// generation number; network answers from older generations are dropped.
type Aggregator struct {
	kind    types.Kind
	clients ClientFactory
	pool    Dispatcher
	cache   *responseCache
	metrics *Metrics
	logger  *zap.Logger
	ctx     context.Context
	now     func() time.Time
	notify  func()

	mu       sync.Mutex
	gen      uint64
	current  *request
	state    PageResult
	outcomes []outcome
	pending  int
	started  time.Time
	settled  chan struct{}
	isClosed bool
}

func newAggregator(e *Engine, kind types.Kind, notify func()) *Aggregator {
	settled := make(chan struct{})
	close(settled)
	return &Aggregator{
		kind:    kind,
		clients: e.clients,
		pool:    e.pool,
		cache:   e.cache,
		metrics: e.metrics,
		logger:  e.logger.Named(string(kind)),
		ctx:     e.ctx,
		now:     e.now,
		notify:  notify,
		state:   PageResult{Kind: kind},
		settled: settled,
	}
}

// Kind returns the entity kind this aggregator searches.
func (a *Aggregator) Kind() types.Kind {
	return a.kind
}

type job struct {
	idx     int
	network string
}

// Search starts a search for q and returns the current snapshot without
// waiting for any network. Repeating the current request is a no-op. With
// keepPrevious the previously merged page stays visible while loading.
func (a *Aggregator) Search(q Query, page PageRequest, keepPrevious bool) PageResult {
	page = page.Normalize()

	snapshot, gen, jobs, started := a.begin(q, page, keepPrevious)
	if !started {
		return snapshot
	}

	a.logger.Debug("search dispatched",
		zap.Uint64("generation", gen),
		zap.String("query", q.Text),
		zap.Strings("networks", q.Networks),
		zap.Int("page", page.Page),
		zap.Int("page_size", page.PageSize),
		zap.Int("calls", len(jobs)),
	)

	if len(jobs) > 0 {
		// Submission may block on a saturated pool; the caller never waits on it.
		go func() {
			for _, j := range jobs {
				idx, network := j.idx, j.network
				err := a.pool.Submit(func() {
					a.fetch(gen, idx, network, q.Text, page.Window())
				})
				if err != nil {
					a.apply(gen, idx, outcome{
						network: network,
						err:     NewNetworkError(network, a.kind, fmt.Errorf("%w: %v", ErrDispatchRejected, err)),
					})
				}
			}
		}()
	} else {
		a.changed()
	}

	return snapshot
}

// begin opens a new generation for (q, page) and answers what it can from
// the cache. started is false when the request is already current.
func (a *Aggregator) begin(q Query, page PageRequest, keepPrevious bool) (snapshot PageResult, gen uint64, jobs []job, started bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.isClosed {
		return PageResult{Kind: a.kind, Page: page, Err: ErrClosed}, 0, nil, false
	}
	if a.current != nil && a.current.query.Equal(q) && a.current.page == page {
		return a.state, a.gen, nil, false
	}

	a.gen++
	a.current = &request{query: q, page: page}
	a.outcomes = make([]outcome, len(q.Networks))
	a.pending = len(q.Networks)
	a.started = a.now()
	a.closeSettledLocked()
	a.settled = make(chan struct{})

	prev := a.state
	a.state = PageResult{Kind: a.kind, Page: page, Loading: true}
	if keepPrevious {
		a.state.Items = prev.Items
		a.state.TotalCount = prev.TotalCount
		a.state.FailedNetworks = prev.FailedNetworks
	}

	a.metrics.RecordSearch(a.kind)

	for i, network := range q.Networks {
		key := cacheKey{kind: a.kind, network: network, text: q.Text, window: page.Window()}
		if a.cache != nil {
			if cached, ok := a.cache.Get(key); ok {
				a.outcomes[i] = outcome{network: network, page: cached, done: true}
				a.pending--
				a.metrics.RecordNetworkRequest(a.kind, network, OutcomeCached, 0)
				continue
			}
		}
		jobs = append(jobs, job{idx: i, network: network})
	}
	if a.pending == 0 {
		a.settleLocked()
	}
	return a.state, a.gen, jobs, true
}

// Snapshot returns the current state.
func (a *Aggregator) Snapshot() PageResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Generation returns the number of requests started so far.
func (a *Aggregator) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen
}

// Wait blocks until the current request has settled or ctx is done.
// A request superseded while waiting is followed to its successor.
func (a *Aggregator) Wait(ctx context.Context) (PageResult, error) {
	for {
		a.mu.Lock()
		if !a.state.Loading || a.isClosed {
			snapshot := a.state
			a.mu.Unlock()
			return snapshot, nil
		}
		ch := a.settled
		a.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return a.Snapshot(), ctx.Err()
		}
	}
}

// Close stops applying answers and releases waiters.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.isClosed {
		return
	}
	a.isClosed = true
	if a.state.Loading {
		a.state.Loading = false
		a.state.Err = ErrClosed
	}
	a.closeSettledLocked()
}

func (a *Aggregator) fetch(gen uint64, idx int, network, text string, window int) {
	start := a.now()
	a.metrics.AddInflight(a.kind, 1)
	page, err := a.query(network, text, window)
	a.metrics.AddInflight(a.kind, -1)
	elapsed := a.now().Sub(start)

	if err != nil {
		a.metrics.RecordNetworkRequest(a.kind, network, OutcomeFailure, elapsed)
		a.logger.Warn("network query failed",
			zap.String("network", network),
			zap.String("query", text),
			zap.Error(err),
		)
		a.apply(gen, idx, outcome{network: network, err: NewNetworkError(network, a.kind, err)})
		return
	}

	a.metrics.RecordNetworkRequest(a.kind, network, OutcomeSuccess, elapsed)
	if a.cache != nil {
		a.cache.Set(cacheKey{kind: a.kind, network: network, text: text, window: window}, page)
	}
	a.apply(gen, idx, outcome{network: network, page: page})
}

func (a *Aggregator) query(network, text string, window int) (page Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("entity client panic: %v", r)
		}
	}()

	client, err := a.clients.Client(a.kind, network)
	if err != nil {
		return Page{}, err
	}
	return client.Query(a.ctx, text, FirstPage(window))
}

func (a *Aggregator) apply(gen uint64, idx int, o outcome) {
	if a.record(gen, idx, o) {
		a.changed()
	}
}

// record stores one network answer and reports whether it settled the
// current generation.
func (a *Aggregator) record(gen uint64, idx int, o outcome) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen || a.isClosed {
		a.metrics.RecordStale(a.kind)
		a.logger.Debug("stale response dropped",
			zap.String("network", o.network),
			zap.Uint64("generation", gen),
			zap.Uint64("current", a.gen),
		)
		return false
	}
	if a.outcomes[idx].done {
		return false
	}
	o.done = true
	a.outcomes[idx] = o
	a.pending--
	if a.pending > 0 {
		return false
	}
	a.settleLocked()
	return true
}

// settleLocked must be called with lock held
func (a *Aggregator) settleLocked() {
	m := merge(a.kind, a.current.query.Text, a.outcomes, a.current.page)
	a.state = PageResult{
		Kind:           a.kind,
		Page:           a.current.page,
		Items:          m.items,
		TotalCount:     m.total,
		Err:            m.err,
		FailedNetworks: m.failures,
		first:          m.first,
	}

	result := SettledOK
	switch {
	case m.err != nil:
		result = SettledFailed
	case len(m.failures) > 0:
		result = SettledPartial
	}
	a.metrics.RecordSettled(a.kind, result, a.now().Sub(a.started))
	a.closeSettledLocked()
}

// closeSettledLocked must be called with lock held
func (a *Aggregator) closeSettledLocked() {
	select {
	case <-a.settled:
	default:
		close(a.settled)
	}
}

func (a *Aggregator) changed() {
	if a.notify != nil {
		a.notify()
	}
}
