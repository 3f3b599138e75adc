package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/pebble"

	"github.com/0xmhha/explorer-search/pkg/squid"
	"github.com/0xmhha/explorer-search/pkg/types"
)

// Search returns the entities of one kind matching text, skipping offset
// matches and returning at most limit, together with the total match count.
//
// Exact identifier matches come first in key order. For extrinsics and
// events a "Pallet" or "Pallet.name" text then matches by name, newest id
// first.
func (s *PebbleStore) Search(ctx context.Context, network string, kind types.Kind, text string, offset, limit int) ([]types.Entity, int, error) {
	if err := s.ensureNotClosed(); err != nil {
		return nil, 0, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return []types.Entity{}, 0, nil
	}
	if offset < 0 {
		offset = 0
	}

	ids, err := s.scan(IdentPrefix(network, kind, text), false)
	if err != nil {
		return nil, 0, err
	}

	if kind == types.KindExtrinsic || kind == types.KindEvent {
		if c := squid.Classify(text); c.Pallet != "" {
			named, err := s.scan(NamePrefix(network, kind, c.Pallet, c.Name), true)
			if err != nil {
				return nil, 0, err
			}
			ids = appendUnique(ids, named)
		}
	}

	total := len(ids)
	if offset >= total || limit <= 0 {
		return []types.Entity{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	items := make([]types.Entity, 0, end-offset)
	for _, id := range ids[offset:end] {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		e, err := s.Get(ctx, network, kind, id)
		if err != nil {
			return nil, 0, fmt.Errorf("index points at missing %s %s: %w", kind, id, err)
		}
		items = append(items, e)
	}
	return items, total, nil
}

// scan collects the ids of index keys under prefix
func (s *PebbleStore) scan(prefix []byte, reverse bool) ([]string, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: incrementPrefix(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	var ids []string
	if reverse {
		for iter.Last(); iter.Valid(); iter.Prev() {
			ids = append(ids, idFromKey(iter.Key()))
		}
	} else {
		for iter.First(); iter.Valid(); iter.Next() {
			ids = append(ids, idFromKey(iter.Key()))
		}
	}
	return ids, iter.Error()
}

func appendUnique(ids, more []string) []string {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	for _, id := range more {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
