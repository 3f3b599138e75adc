// Package navigation maps the search screen state to and from URL query
// parameters so a search can be bookmarked, shared and paged.
package navigation

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/0xmhha/explorer-search/internal/constants"
	"github.com/0xmhha/explorer-search/pkg/types"
)

// URL query parameter names
const (
	ParamQuery   = "query"
	ParamNetwork = "network"
	ParamTab     = "tab"
	ParamPage    = "page"
)

// DefaultTab is the tab shown when the URL names none.
const DefaultTab = types.KindAccount

var (
	ErrInvalidTab  = errors.New("invalid tab")
	ErrInvalidPage = errors.New("invalid page")
)

// State is the navigable part of a search: what was typed, where to look,
// which tab is open and which page of it.
type State struct {
	Query    string     `json:"query"`
	Networks []string   `json:"networks"`
	Tab      types.Kind `json:"tab"`
	Page     int        `json:"page"`
}

// Parse reads a State from URL query values. Missing tab and page take
// their defaults; present but invalid ones are errors, as is a page past
// constants.MaxPage.
func Parse(values url.Values) (State, error) {
	st := State{
		Query: strings.TrimSpace(values.Get(ParamQuery)),
		Tab:   DefaultTab,
		Page:  1,
	}

	for _, raw := range values[ParamNetwork] {
		// accept both repeated and comma separated forms
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				st.Networks = append(st.Networks, name)
			}
		}
	}

	if tab := values.Get(ParamTab); tab != "" {
		kind, err := types.ParseKind(tab)
		if err != nil {
			return State{}, fmt.Errorf("%w: %q", ErrInvalidTab, tab)
		}
		st.Tab = kind
	}

	if page := values.Get(ParamPage); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 || n > constants.MaxPage {
			return State{}, fmt.Errorf("%w: %q", ErrInvalidPage, page)
		}
		st.Page = n
	}

	return st.Normalize(), nil
}

// ParseQuery parses the raw query string of a URL.
func ParseQuery(rawQuery string) (State, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return State{}, err
	}
	return Parse(values)
}

// Normalize fills defaults, clamps the page and drops repeated networks.
func (s State) Normalize() State {
	s.Query = strings.TrimSpace(s.Query)
	if s.Tab == "" {
		s.Tab = DefaultTab
	}
	if s.Page < 1 {
		s.Page = 1
	}
	if s.Page > constants.MaxPage {
		s.Page = constants.MaxPage
	}
	if len(s.Networks) > 0 {
		seen := make(map[string]struct{}, len(s.Networks))
		names := make([]string, 0, len(s.Networks))
		for _, n := range s.Networks {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			names = append(names, n)
		}
		s.Networks = names
	}
	return s
}

// Values encodes the state. Default tab and page are omitted.
func (s State) Values() url.Values {
	s = s.Normalize()
	values := url.Values{}
	values.Set(ParamQuery, s.Query)
	for _, n := range s.Networks {
		values.Add(ParamNetwork, n)
	}
	if s.Tab != DefaultTab {
		values.Set(ParamTab, string(s.Tab))
	}
	if s.Page != 1 {
		values.Set(ParamPage, strconv.Itoa(s.Page))
	}
	return values
}

// Encode returns the URL-encoded query string.
func (s State) Encode() string {
	return s.Values().Encode()
}

// Path returns the search location, e.g. "/search?query=foo&network=kusama".
func (s State) Path(base string) string {
	return base + "?" + s.Encode()
}

// WithTab switches the tab and goes back to the first page.
func (s State) WithTab(tab types.Kind) State {
	s.Tab = tab
	s.Page = 1
	return s
}

// WithPage moves the current tab to page.
func (s State) WithPage(page int) State {
	if page < 1 {
		page = 1
	}
	s.Page = page
	return s
}

// WithQuery starts a new search: tab and page go back to their defaults.
func (s State) WithQuery(query string, networks []string) State {
	return State{Query: query, Networks: networks}.Normalize()
}

// PageFor returns the page shown for kind: the current page for the open
// tab and the first page for the others.
func (s State) PageFor(kind types.Kind) int {
	if kind == s.Tab && s.Page > 0 {
		return s.Page
	}
	return 1
}
