// Package network resolves user-facing network names to the endpoints that
// answer entity queries for them.
package network

import (
	"fmt"
	"strings"

	"github.com/0xmhha/explorer-search/internal/config"
)

// Network is one independently hosted data source the user can search.
type Network struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"displayName"`
	Source      string            `json:"source"`
	Squids      map[string]string `json:"squids,omitempty"`
	Selectable  bool              `json:"selectable"`
}

// SquidURL returns the GraphQL endpoint of the given squid type.
func (n *Network) SquidURL(squidType string) (string, error) {
	url, ok := n.Squids[squidType]
	if !ok || url == "" {
		return "", fmt.Errorf("%w: %s/%s", ErrSquidNotConfigured, n.Name, squidType)
	}
	return url, nil
}

// IsLocal reports whether the network is served from the local store.
func (n *Network) IsLocal() bool {
	return n.Source == config.SourceLocal
}

// SquidURLs builds the squid endpoints of a network. Explicit per-network
// overrides win over forced URLs, which win over templates.
func SquidURLs(name string, templates map[string]string, force map[string]map[string]string, overrides map[string]string) map[string]string {
	urls := make(map[string]string, len(config.SquidTypes))
	for _, squidType := range config.SquidTypes {
		if tmpl, ok := templates[squidType]; ok && tmpl != "" {
			urls[squidType] = strings.ReplaceAll(tmpl, "{network}", name)
		}
		if forced, ok := force[name][squidType]; ok && forced != "" {
			urls[squidType] = forced
		}
		if override, ok := overrides[squidType]; ok && override != "" {
			urls[squidType] = override
		}
	}
	return urls
}

// FromConfig converts a network configuration entry into a Network.
func FromConfig(nc config.NetworkConfig, squid config.SquidConfig) *Network {
	n := &Network{
		Name:        nc.Name,
		DisplayName: nc.DisplayName,
		Source:      nc.Source,
		Selectable:  !nc.Disabled,
	}
	if n.DisplayName == "" {
		n.DisplayName = nc.Name
	}
	if n.Source == "" {
		n.Source = config.SourceSquid
	}
	if n.Source == config.SourceSquid {
		n.Squids = SquidURLs(nc.Name, squid.URLTemplates, squid.ForceURLs, nc.Squids)
	}
	return n
}
