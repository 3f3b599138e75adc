package search

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/internal/constants"
	"github.com/0xmhha/explorer-search/pkg/navigation"
	"github.com/0xmhha/explorer-search/pkg/network"
	"github.com/0xmhha/explorer-search/pkg/types"
)

// NetworkResolver turns network names into registered networks.
// *network.Registry satisfies it.
type NetworkResolver interface {
	ResolveAll(names []string) []*network.Network
	ListSelectable() []*network.Network
}

// SessionConfig configures sessions
type SessionConfig struct {
	// PageSize applies to every kind
	PageSize int
	// MinDisplayTime is how long loading stays visible after the text changes
	MinDisplayTime time.Duration
	// Clock drives the minimum display gate
	Clock Clock
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.PageSize <= 0 {
		c.PageSize = constants.DefaultPageSize
	}
	if c.Clock == nil {
		c.Clock = SystemClock
	}
	return c
}

// View is what the search screen renders.
type View struct {
	Session          string           `json:"session"`
	State            navigation.State `json:"state"`
	Result           Result           `json:"result"`
	DisplayedLoading bool             `json:"displayedLoading"`
	Redirect         *Target          `json:"redirect,omitempty"`
}

// Session is one user's search screen. It decides which pages each kind
// shows and whether previous data stays visible, holds the minimum display
// gate and reports the single-match redirect.
type Session struct {
	id       string
	orch     *Orchestrator
	gate     *Gate
	networks NetworkResolver
	pageSize int
	metrics  *Metrics
	logger   *zap.Logger

	// updateMu orders Update calls so state and search move together
	updateMu sync.Mutex

	mu            sync.Mutex
	state         navigation.State
	prevQuery     string
	prevNetworks  []string
	hasPrev       bool
	redirectedFor string
	timer         *time.Timer

	notifier    notifier
	stopUpdates func()
	done        chan struct{}
	closeOnce   sync.Once
}

// NewSession creates a session driving orch.
func NewSession(id string, orch *Orchestrator, networks NetworkResolver, cfg SessionConfig, logger *zap.Logger, metrics *Metrics) *Session {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		id:       id,
		orch:     orch,
		gate:     NewGate(cfg.MinDisplayTime, cfg.Clock),
		networks: networks,
		pageSize: cfg.PageSize,
		metrics:  metrics,
		logger:   logger.Named("session").With(zap.String("session", id)),
		done:     make(chan struct{}),
	}

	updates, stop := orch.Updates()
	s.stopUpdates = stop
	go s.forward(updates)

	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Update applies a new navigation state and starts the matching search.
// An empty query is refused and leaves the current search untouched.
func (s *Session) Update(st navigation.State) (View, error) {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	st = st.Normalize()
	if st.Query == "" {
		return s.View(), ErrMalformedQuery
	}

	names := s.resolve(st.Networks)
	if len(names) == 0 {
		return s.View(), ErrNoNetworks
	}
	st.Networks = names

	s.mu.Lock()
	s.state = st
	keep := s.hasPrev && s.prevQuery == st.Query && sameNetworks(s.prevNetworks, names)
	if s.gate.Observe(st.Query) {
		s.armTimerLocked()
	}
	s.mu.Unlock()

	res := s.orch.Search(Input{
		Query:            Query{Text: st.Query, Networks: names},
		Pagination:       s.pagination(st),
		KeepPreviousData: keep,
	})
	s.settled(res)

	return s.view(res), res.Err
}

// View returns the current view without starting anything.
func (s *Session) View() View {
	return s.view(s.orch.Snapshot())
}

// Wait blocks until the search has settled and the minimum display time has
// passed, then returns the view.
func (s *Session) Wait(ctx context.Context) (View, error) {
	res, err := s.orch.Wait(ctx)
	if err != nil {
		return s.view(res), err
	}
	s.settled(res)

	if left := s.gate.Remaining(); left > 0 {
		timer := time.NewTimer(left)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return s.View(), ctx.Err()
		}
	}
	return s.View(), nil
}

// Updates returns a channel signalled whenever the view may have changed:
// a kind settled or the minimum display time ran out.
func (s *Session) Updates() (<-chan struct{}, func()) {
	return s.notifier.subscribe()
}

// Close stops the session and its orchestrator.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.stopUpdates()

		s.mu.Lock()
		if s.timer != nil {
			s.timer.Stop()
		}
		s.mu.Unlock()

		s.orch.Close()
		s.logger.Debug("session closed")
	})
}

func (s *Session) forward(updates <-chan struct{}) {
	for {
		select {
		case <-updates:
			s.settled(s.orch.Snapshot())
			s.notifier.broadcast()
		case <-s.done:
			return
		}
	}
}

// settled remembers the query and networks of a settled result; the next
// search with the same pair keeps showing its data while loading.
func (s *Session) settled(res Result) {
	if res.Loading || res.Query.Empty() {
		return
	}
	s.mu.Lock()
	s.prevQuery = res.Query.Text
	s.prevNetworks = append([]string(nil), res.Query.Networks...)
	s.hasPrev = true
	s.mu.Unlock()
}

func (s *Session) view(res Result) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Session:          s.id,
		State:            s.state,
		Result:           res,
		DisplayedLoading: s.gate.Displayed(res.Loading),
	}
	if v.DisplayedLoading {
		return v
	}
	if target, ok := res.RedirectTarget(); ok {
		v.Redirect = &target
		if s.redirectedFor != target.Path() {
			s.redirectedFor = target.Path()
			s.metrics.RecordRedirect()
			s.logger.Info("single match", zap.String("target", target.Path()))
		}
	}
	return v
}

func (s *Session) pagination(st navigation.State) map[types.Kind]PageRequest {
	pages := make(map[types.Kind]PageRequest, len(types.Kinds))
	for _, kind := range types.Kinds {
		pages[kind] = PageRequest{Page: st.PageFor(kind), PageSize: s.pageSize}
	}
	return pages
}

func (s *Session) resolve(names []string) []string {
	if s.networks == nil {
		return names
	}
	if len(names) == 0 {
		return network.Names(s.networks.ListSelectable())
	}
	return network.Names(s.networks.ResolveAll(names))
}

// armTimerLocked must be called with lock held
func (s *Session) armTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	left := s.gate.Remaining()
	if left <= 0 {
		return
	}
	s.timer = time.AfterFunc(left, s.notifier.broadcast)
}

func sameNetworks(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
