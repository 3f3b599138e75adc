package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/pkg/types"
)

// PebbleStore keeps entities of local networks in PebbleDB
type PebbleStore struct {
	db     *pebble.DB
	config *Config
	logger *zap.Logger
	closed atomic.Bool
}

// NewPebbleStore opens the database described by cfg
func NewPebbleStore(cfg *Config) (*PebbleStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cache := pebble.NewCache(int64(cfg.Cache) << 20) // MB to bytes
	defer cache.Unref()

	opts := &pebble.Options{
		Cache:        cache,
		MaxOpenFiles: cfg.MaxOpenFiles,
		ReadOnly:     cfg.ReadOnly,
	}
	if cfg.FS != nil {
		opts.FS = cfg.FS
	}

	db, err := pebble.Open(cfg.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &PebbleStore{
		db:     db,
		config: cfg,
		logger: zap.NewNop(),
	}, nil
}

// SetLogger sets the logger for the store
func (s *PebbleStore) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger.Named("storage")
	}
}

// ensureNotClosed checks if storage is closed
func (s *PebbleStore) ensureNotClosed() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

// ensureNotReadOnly checks if storage is read-only
func (s *PebbleStore) ensureNotReadOnly() error {
	if s.config.ReadOnly {
		return ErrReadOnly
	}
	return nil
}

// Put stores entities of one network in a single batch and indexes them by
// identifier and, for extrinsics and events, by pallet and name.
// Replacing an entity drops the index entries of the previous version.
func (s *PebbleStore) Put(ctx context.Context, network string, entities ...types.Entity) error {
	if err := s.ensureNotClosed(); err != nil {
		return err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return err
	}
	if network == "" {
		return fmt.Errorf("%w: network is required", ErrInvalidEntity)
	}

	// indexed so entities repeated within one call see each other
	batch := s.db.NewIndexedBatch()
	defer batch.Close()

	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e == nil || e.EntityID() == "" {
			return fmt.Errorf("%w: id is required", ErrInvalidEntity)
		}

		previous, err := get(batch, network, e.EntityKind(), e.EntityID())
		switch {
		case err == nil:
			for _, key := range indexKeys(network, previous) {
				if err := batch.Delete(key, nil); err != nil {
					return fmt.Errorf("failed to delete index: %w", err)
				}
			}
		case !errors.Is(err, ErrNotFound):
			return err
		}

		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s: %w", e.EntityKind(), e.EntityID(), err)
		}
		if err := batch.Set(DataKey(network, e.EntityKind(), e.EntityID()), data, nil); err != nil {
			return fmt.Errorf("failed to set entity: %w", err)
		}
		for _, key := range indexKeys(network, e) {
			if err := batch.Set(key, nil, nil); err != nil {
				return fmt.Errorf("failed to set index: %w", err)
			}
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	s.logger.Debug("stored entities",
		zap.String("network", network),
		zap.Int("count", len(entities)),
	)
	return nil
}

// Get returns one entity
func (s *PebbleStore) Get(ctx context.Context, network string, kind types.Kind, id string) (types.Entity, error) {
	if err := s.ensureNotClosed(); err != nil {
		return nil, err
	}

	return get(s.db, network, kind, id)
}

func get(r pebble.Reader, network string, kind types.Kind, id string) (types.Entity, error) {
	value, closer, err := r.Get(DataKey(network, kind, id))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s %s: %w", kind, id, err)
	}
	defer closer.Close()

	return decodeEntity(kind, value)
}

// Count returns the number of stored entities of a kind
func (s *PebbleStore) Count(ctx context.Context, network string, kind types.Kind) (int, error) {
	if err := s.ensureNotClosed(); err != nil {
		return 0, err
	}

	prefix := DataPrefix(network, kind)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: incrementPrefix(prefix),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	count := 0
	for iter.First(); iter.Valid(); iter.Next() {
		if count%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		count++
	}
	return count, iter.Error()
}

// Close closes the storage and releases resources
func (s *PebbleStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

func indexKeys(network string, e types.Entity) [][]byte {
	kind, id := e.EntityKind(), e.EntityID()

	keys := make([][]byte, 0, 4)
	for _, ident := range e.Identifiers() {
		keys = append(keys, IdentKey(network, kind, ident, id))
	}
	if pallet, name, ok := names(e); ok {
		keys = append(keys, NameKey(network, kind, pallet, name, id))
	}
	return keys
}

func decodeEntity(kind types.Kind, data []byte) (types.Entity, error) {
	var e types.Entity
	switch kind {
	case types.KindAccount:
		e = &types.Account{}
	case types.KindBlock:
		e = &types.Block{}
	case types.KindExtrinsic:
		e = &types.Extrinsic{}
	case types.KindEvent:
		e = &types.Event{}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidData, kind)
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return e, nil
}
