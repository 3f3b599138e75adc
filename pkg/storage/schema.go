package storage

import (
	"strings"

	"github.com/0xmhha/explorer-search/pkg/types"
)

// Key layout. Network and kind scope every key so several local networks
// can share one database.
//
//	/data/{network}/{kind}/{id}                        entity JSON
//	/index/{network}/{kind}/ident/{identifier}/{id}    exact lookup (lowercased)
//	/index/{network}/{kind}/name/{pallet}/{name}/{id}  call and event names
const (
	prefixData  = "/data/"
	prefixIndex = "/index/"

	segIdent = "ident"
	segName  = "name"
)

// DataKey returns the key of one entity
func DataKey(network string, kind types.Kind, id string) []byte {
	return []byte(prefixData + network + "/" + string(kind) + "/" + id)
}

// DataPrefix returns the prefix of every entity of a kind
func DataPrefix(network string, kind types.Kind) []byte {
	return []byte(prefixData + network + "/" + string(kind) + "/")
}

// IdentKey returns the exact identifier index key
func IdentKey(network string, kind types.Kind, identifier, id string) []byte {
	return append(IdentPrefix(network, kind, identifier), id...)
}

// IdentPrefix returns the prefix of entities with one identifier
func IdentPrefix(network string, kind types.Kind, identifier string) []byte {
	return []byte(prefixIndex + network + "/" + string(kind) + "/" + segIdent + "/" + strings.ToLower(identifier) + "/")
}

// NameKey returns the pallet and name index key
func NameKey(network string, kind types.Kind, pallet, name, id string) []byte {
	return append(NamePrefix(network, kind, pallet, name), id...)
}

// NamePrefix returns the prefix of entities of a pallet, narrowed to one
// call or event name when name is set
func NamePrefix(network string, kind types.Kind, pallet, name string) []byte {
	p := prefixIndex + network + "/" + string(kind) + "/" + segName + "/" + pallet + "/"
	if name != "" {
		p += name + "/"
	}
	return []byte(p)
}

// idFromKey returns the last path segment
func idFromKey(key []byte) string {
	s := string(key)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// incrementPrefix returns the smallest key greater than every key with prefix
func incrementPrefix(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	result := make([]byte, len(prefix))
	copy(result, prefix)
	for i := len(result) - 1; i >= 0; i-- {
		if result[i] < 0xff {
			result[i]++
			return result[:i+1]
		}
	}
	return nil
}

// names returns the pallet and name an entity is indexed under
func names(e types.Entity) (pallet, name string, ok bool) {
	switch v := e.(type) {
	case *types.Extrinsic:
		return v.PalletName, v.CallName, v.PalletName != ""
	case *types.Event:
		return v.PalletName, v.EventName, v.PalletName != ""
	}
	return "", "", false
}
