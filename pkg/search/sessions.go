package search

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/internal/constants"
	"github.com/0xmhha/explorer-search/pkg/cache"
)

// StoreConfig configures a session store
type StoreConfig struct {
	Session     SessionConfig
	MaxSessions int
	TTL         time.Duration
}

// Store keeps live sessions by id. Idle sessions expire after the TTL and
// the least recently used one is closed when the store is full.
type Store struct {
	engine   *Engine
	networks NetworkResolver
	cfg      StoreConfig
	sessions *cache.Cache[string, *Session]
	logger   *zap.Logger
}

// NewStore creates a session store backed by engine.
func NewStore(engine *Engine, networks NetworkResolver, cfg StoreConfig) *Store {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = constants.DefaultMaxSessions
	}
	if cfg.TTL <= 0 {
		cfg.TTL = constants.DefaultSessionTTL
	}

	s := &Store{
		engine:   engine,
		networks: networks,
		cfg:      cfg,
		logger:   engine.logger.Named("sessions"),
	}
	s.sessions = cache.New[string, *Session](
		cache.Config{MaxSize: cfg.MaxSessions, TTL: cfg.TTL, CleanupInterval: time.Minute},
		cache.WithOnEvict(func(id string, sess *Session) {
			sess.Close()
			s.engine.metrics.UpdateActiveSessions(s.sessions.Size())
		}),
	)
	return s
}

// Create starts a new session with a random id.
func (s *Store) Create() *Session {
	id := uuid.NewString()
	sess := NewSession(id, s.engine.NewOrchestrator(), s.networks, s.cfg.Session, s.engine.logger, s.engine.metrics)
	s.sessions.Set(id, sess)
	s.engine.metrics.UpdateActiveSessions(s.sessions.Size())
	s.logger.Debug("session created", zap.String("session", id))
	return sess
}

// Get returns a live session and extends its lifetime.
func (s *Store) Get(id string) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.sessions.Set(id, sess)
	return sess, nil
}

// GetOrCreate returns the session for id, or a new one when id is empty or
// unknown. The boolean reports whether a session was created.
func (s *Store) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if sess, err := s.Get(id); err == nil {
			return sess, false
		}
	}
	return s.Create(), true
}

// Delete closes and removes a session.
func (s *Store) Delete(id string) {
	s.sessions.Delete(id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.sessions.Size()
}

// Close closes every session and stops the expiry sweep.
func (s *Store) Close() {
	s.sessions.Close()
	s.sessions.Purge()
}
