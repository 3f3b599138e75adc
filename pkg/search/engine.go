package search

import (
	"context"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/internal/constants"
	"github.com/0xmhha/explorer-search/pkg/cache"
)

// Engine holds what every orchestrator shares: the entity clients, the
// dispatch pool and the response cache.
type Engine struct {
	clients  ClientFactory
	pool     Dispatcher
	ownPool  *ants.Pool
	cache    *responseCache
	metrics  *Metrics
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	now      func() time.Time
	workers  int
	cacheCfg *cache.Config
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithDispatcher replaces the built-in worker pool
func WithDispatcher(d Dispatcher) Option {
	return func(e *Engine) { e.pool = d }
}

// WithWorkers sets the size of the built-in worker pool
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithResponseCache sizes the per-network response cache. A zero size
// disables it.
func WithResponseCache(size int, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cacheCfg = &cache.Config{MaxSize: size, TTL: ttl, CleanupInterval: time.Minute}
	}
}

// WithClock overrides the time source used for durations
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a search engine over clients.
func NewEngine(clients ClientFactory, opts ...Option) (*Engine, error) {
	if clients == nil {
		return nil, fmt.Errorf("client factory is required")
	}

	e := &Engine{
		clients: clients,
		logger:  zap.NewNop(),
		now:     time.Now,
		workers: constants.DefaultDispatchWorkers,
		cacheCfg: &cache.Config{
			MaxSize:         constants.DefaultResponseCacheSize,
			TTL:             constants.DefaultResponseCacheTTL,
			CleanupInterval: time.Minute,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("search")

	if e.pool == nil {
		if e.workers <= 0 {
			return nil, fmt.Errorf("worker pool size must be positive, got %d", e.workers)
		}
		logger := e.logger
		pool, err := ants.NewPool(e.workers, ants.WithPanicHandler(func(p interface{}) {
			logger.Error("dispatch task panicked", zap.Any("panic", p))
		}))
		if err != nil {
			return nil, fmt.Errorf("failed to create dispatch pool: %w", err)
		}
		e.pool = pool
		e.ownPool = pool
	}

	if e.cacheCfg != nil && e.cacheCfg.MaxSize > 0 {
		e.cache = cache.New[cacheKey, Page](*e.cacheCfg)
	}

	e.ctx, e.cancel = context.WithCancel(context.Background())
	return e, nil
}

// NewOrchestrator creates an orchestrator with its own four aggregators.
func (e *Engine) NewOrchestrator() *Orchestrator {
	return newOrchestrator(e)
}

// Metrics returns the metrics sink, possibly nil.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Running returns the number of dispatch workers currently busy.
func (e *Engine) Running() int {
	if e.ownPool == nil {
		return 0
	}
	return e.ownPool.Running()
}

// Close cancels in-flight calls and releases the worker pool.
func (e *Engine) Close() {
	e.cancel()
	if e.ownPool != nil {
		e.ownPool.Release()
	}
	if e.cache != nil {
		e.cache.Close()
	}
}
