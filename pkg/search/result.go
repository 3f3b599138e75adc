package search

import (
	"encoding/json"
	"fmt"

	"github.com/0xmhha/explorer-search/pkg/types"
)

// Item is one match tagged with the network it came from.
type Item struct {
	Network string       `json:"network"`
	Kind    types.Kind   `json:"kind"`
	Data    types.Entity `json:"data"`
}

// ID returns the entity id.
func (i Item) ID() string {
	return i.Data.EntityID()
}

// NetworkFailure records a network that failed for one kind.
type NetworkFailure struct {
	Network string
	Err     error
}

// MarshalJSON renders the error as a string
func (f NetworkFailure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Network string `json:"network"`
		Error   string `json:"error"`
	}{f.Network, errString(f.Err)})
}

// PageResult is the merged state of one kind.
type PageResult struct {
	Kind           types.Kind
	Page           PageRequest
	Items          []Item
	TotalCount     int
	Loading        bool
	Err            error
	FailedNetworks []NetworkFailure

	// first is the head of the merged list whatever page is shown
	first *Item
}

// Settled reports whether the kind is no longer loading.
func (r PageResult) Settled() bool {
	return !r.Loading
}

// MarshalJSON renders the error as a string
func (r PageResult) MarshalJSON() ([]byte, error) {
	items := r.Items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(struct {
		Kind           types.Kind       `json:"kind"`
		Page           PageRequest      `json:"page"`
		Items          []Item           `json:"items"`
		TotalCount     int              `json:"totalCount"`
		Loading        bool             `json:"loading"`
		Error          string           `json:"error,omitempty"`
		FailedNetworks []NetworkFailure `json:"failedNetworks,omitempty"`
	}{r.Kind, r.Page, items, r.TotalCount, r.Loading, errString(r.Err), r.FailedNetworks})
}

// Result is the combined view of all four kinds.
type Result struct {
	Query      Query
	Accounts   PageResult
	Blocks     PageResult
	Extrinsics PageResult
	Events     PageResult

	TotalCount int
	NotFound   bool
	Loading    bool
	// Err is set for rejected input or when every kind failed.
	Err error
}

// Kind returns the page result for a kind.
func (r *Result) Kind(kind types.Kind) *PageResult {
	switch kind {
	case types.KindAccount:
		return &r.Accounts
	case types.KindBlock:
		return &r.Blocks
	case types.KindExtrinsic:
		return &r.Extrinsics
	case types.KindEvent:
		return &r.Events
	}
	return nil
}

// redirectOrder is the order kinds are checked for the single match.
var redirectOrder = []types.Kind{
	types.KindExtrinsic,
	types.KindBlock,
	types.KindAccount,
	types.KindEvent,
}

// Target is the detail page of the only match of a search.
type Target struct {
	Kind    types.Kind `json:"kind"`
	Network string     `json:"network"`
	ID      string     `json:"id"`
}

// Path renders the detail view path, e.g. "/kusama/block/0001".
func (t Target) Path() string {
	return fmt.Sprintf("/%s/%s/%s", t.Network, t.Kind.Singular(), t.ID)
}

// MarshalJSON adds the rendered path
func (t Target) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    types.Kind `json:"kind"`
		Network string     `json:"network"`
		ID      string     `json:"id"`
		Path    string     `json:"path"`
	}{t.Kind, t.Network, t.ID, t.Path()})
}

// RedirectTarget returns the single match across all kinds and networks,
// read from the head of each merged list so a later open page still finds
// it. It never fires while any kind is still loading.
func (r *Result) RedirectTarget() (Target, bool) {
	if r.Loading || r.Err != nil || r.TotalCount != 1 {
		return Target{}, false
	}
	for _, kind := range redirectOrder {
		pr := r.Kind(kind)
		item := pr.first
		if item == nil && len(pr.Items) > 0 {
			item = &pr.Items[0]
		}
		if item != nil {
			return Target{Kind: kind, Network: item.Network, ID: item.ID()}, true
		}
	}
	return Target{}, false
}

// MarshalJSON renders the error as a string
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Query      Query      `json:"query"`
		Accounts   PageResult `json:"accounts"`
		Blocks     PageResult `json:"blocks"`
		Extrinsics PageResult `json:"extrinsics"`
		Events     PageResult `json:"events"`
		TotalCount int        `json:"totalCount"`
		NotFound   bool       `json:"notFound"`
		Loading    bool       `json:"loading"`
		Error      string     `json:"error,omitempty"`
	}{r.Query, r.Accounts, r.Blocks, r.Extrinsics, r.Events, r.TotalCount, r.NotFound, r.Loading, errString(r.Err)})
}

// compose derives the combined fields from the four kind snapshots.
func compose(q Query, pages map[types.Kind]PageResult) Result {
	res := Result{Query: q}
	errored := 0
	var firstErr error
	for _, kind := range types.Kinds {
		pr := pages[kind]
		*res.Kind(kind) = pr
		res.TotalCount += pr.TotalCount
		if pr.Loading {
			res.Loading = true
		}
		if pr.Err != nil {
			errored++
			if firstErr == nil {
				firstErr = pr.Err
			}
		}
	}
	res.NotFound = res.TotalCount == 0 && !res.Loading && errored == 0
	if errored == len(types.Kinds) {
		res.Err = firstErr
	}
	return res
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
