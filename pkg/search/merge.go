package search

import (
	"strings"

	"github.com/0xmhha/explorer-search/pkg/types"
)

// outcome is the answer of one network for the current generation.
type outcome struct {
	network string
	page    Page
	err     error
	done    bool
}

// merged is the result of folding every network outcome of a kind.
type merged struct {
	items    []Item
	first    *Item
	total    int
	failures []NetworkFailure
	err      error
}

// merge concatenates the network windows in network order and cuts the
// requested page. Exact identifier matches are hoisted to the front only
// from each network's first page, which every window contains, so all
// pages are slices of the same list. Failed networks contribute nothing.
// The kind fails only when every network did.
func merge(kind types.Kind, text string, outcomes []outcome, req PageRequest) merged {
	var m merged
	exact := make([]Item, 0)
	rest := make([]Item, 0)
	seen := make(map[string]struct{})

	for _, o := range outcomes {
		if o.err != nil {
			m.failures = append(m.failures, NetworkFailure{Network: o.network, Err: o.err})
			continue
		}
		m.total += o.page.TotalCount
		for i, entity := range o.page.Items {
			if entity == nil {
				continue
			}
			key := o.network + "\x00" + entity.EntityID()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			item := Item{Network: o.network, Kind: kind, Data: entity}
			if i < req.PageSize && matchesExactly(entity, text) {
				exact = append(exact, item)
			} else {
				rest = append(rest, item)
			}
		}
	}

	if len(outcomes) > 0 && len(m.failures) == len(outcomes) {
		m.err = NewKindError(kind, m.failures)
		m.total = 0
		return m
	}

	all := append(exact, rest...)
	if len(all) > 0 {
		first := all[0]
		m.first = &first
	}
	m.items = slicePage(all, req)
	return m
}

// slicePage cuts [offset, offset+pageSize) out of items, clamped to bounds.
// Pages past the end are empty.
func slicePage(items []Item, req PageRequest) []Item {
	start := req.Offset()
	// a negative offset only comes from an overflowing page
	if start < 0 || start >= len(items) {
		return []Item{}
	}
	end := start + req.PageSize
	if end > len(items) || end < start {
		end = len(items)
	}
	out := make([]Item, end-start)
	copy(out, items[start:end])
	return out
}

func matchesExactly(entity types.Entity, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, id := range entity.Identifiers() {
		if strings.EqualFold(id, text) {
			return true
		}
	}
	return false
}
