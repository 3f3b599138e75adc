package search

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/internal/logger"
	"github.com/0xmhha/explorer-search/pkg/types"
)

// Orchestrator fans one query out to the four kind aggregators and folds
// their snapshots into a Result.
type Orchestrator struct {
	aggregators map[types.Kind]*Aggregator
	logger      *zap.Logger
	notifier    notifier

	// searchMu keeps one Search dispatching to all kinds at a time
	searchMu sync.Mutex

	mu    sync.Mutex
	query Query
}

func newOrchestrator(e *Engine) *Orchestrator {
	o := &Orchestrator{
		aggregators: make(map[types.Kind]*Aggregator, len(types.Kinds)),
		logger:      e.logger,
	}
	for _, kind := range types.Kinds {
		o.aggregators[kind] = newAggregator(e, kind, o.notifier.broadcast)
	}
	return o
}

// Search starts or refreshes the search described by in and returns the
// current combined snapshot. Unchanged input issues no network calls.
func (o *Orchestrator) Search(in Input) Result {
	q := NewQuery(in.Query.Text, in.Query.Networks)
	if q.Empty() {
		return Result{Query: q, Err: ErrMalformedQuery}
	}
	if len(q.Networks) == 0 {
		return Result{Query: q, Err: ErrNoNetworks}
	}

	o.searchMu.Lock()
	defer o.searchMu.Unlock()

	o.mu.Lock()
	if !o.query.Equal(q) {
		o.logger.Info("search", logger.SearchFields(q.Text, q.Networks)...)
	}
	o.query = q
	o.mu.Unlock()

	pages := make(map[types.Kind]PageResult, len(types.Kinds))
	for _, kind := range types.Kinds {
		pages[kind] = o.aggregators[kind].Search(q, in.PageFor(kind), in.KeepPreviousData)
	}
	return compose(q, pages)
}

// Snapshot returns the combined state of the latest search.
func (o *Orchestrator) Snapshot() Result {
	o.mu.Lock()
	q := o.query
	o.mu.Unlock()

	pages := make(map[types.Kind]PageResult, len(types.Kinds))
	for _, kind := range types.Kinds {
		pages[kind] = o.aggregators[kind].Snapshot()
	}
	return compose(q, pages)
}

// Wait blocks until every kind of the latest search has settled.
func (o *Orchestrator) Wait(ctx context.Context) (Result, error) {
	for {
		for _, kind := range types.Kinds {
			if _, err := o.aggregators[kind].Wait(ctx); err != nil {
				return o.Snapshot(), err
			}
		}
		// a kind may have restarted while another was awaited
		if res := o.Snapshot(); !res.Loading {
			return res, nil
		}
	}
}

// Aggregator returns the aggregator of one kind.
func (o *Orchestrator) Aggregator(kind types.Kind) *Aggregator {
	return o.aggregators[kind]
}

// Updates returns a channel signalled whenever a kind settles, and a
// function that stops the subscription.
func (o *Orchestrator) Updates() (<-chan struct{}, func()) {
	return o.notifier.subscribe()
}

// Close stops all aggregators.
func (o *Orchestrator) Close() {
	for _, agg := range o.aggregators {
		agg.Close()
	}
	o.notifier.broadcast()
}
