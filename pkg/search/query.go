package search

import (
	"sort"
	"strings"

	"github.com/0xmhha/explorer-search/internal/constants"
	"github.com/0xmhha/explorer-search/pkg/types"
)

// Query is one search attempt: the text typed by the user and the ordered
// list of networks to search. Network order decides merge order.
type Query struct {
	Text     string   `json:"query"`
	Networks []string `json:"networks"`
}

// NewQuery trims the text and drops empty or repeated network names.
func NewQuery(text string, networks []string) Query {
	seen := make(map[string]struct{}, len(networks))
	names := make([]string, 0, len(networks))
	for _, n := range networks {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	return Query{Text: strings.TrimSpace(text), Networks: names}
}

// Empty reports whether the query has no searchable text.
func (q Query) Empty() bool {
	return strings.TrimSpace(q.Text) == ""
}

// Equal compares text exactly and networks as a set.
func (q Query) Equal(other Query) bool {
	if q.Text != other.Text || len(q.Networks) != len(other.Networks) {
		return false
	}
	a := sortedCopy(q.Networks)
	b := sortedCopy(other.Networks)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

// PageRequest selects one page of one kind.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// FirstPage returns page 1 with the given size.
func FirstPage(pageSize int) PageRequest {
	return PageRequest{Page: 1, PageSize: pageSize}
}

// Normalize clamps the request into a valid range.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > constants.MaxPage {
		p.Page = constants.MaxPage
	}
	if p.PageSize <= 0 {
		p.PageSize = constants.DefaultPageSize
	}
	if p.PageSize > constants.MaxPageSize {
		p.PageSize = constants.MaxPageSize
	}
	return p
}

// Offset is the index of the first item on the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Window is the number of leading items each network must return so that
// the requested page can be cut from the concatenation.
func (p PageRequest) Window() int {
	return p.Page * p.PageSize
}

// Input is everything the orchestrator needs for one search.
type Input struct {
	Query            Query
	Pagination       map[types.Kind]PageRequest
	KeepPreviousData bool
}

// PageFor returns the normalized page request for a kind.
func (in Input) PageFor(kind types.Kind) PageRequest {
	if p, ok := in.Pagination[kind]; ok {
		return p.Normalize()
	}
	return FirstPage(constants.DefaultPageSize)
}
