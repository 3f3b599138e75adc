// Package types holds the searchable entity kinds and their data shapes.
package types

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Kind identifies a category of searchable object.
type Kind string

const (
	KindAccount   Kind = "accounts"
	KindBlock     Kind = "blocks"
	KindExtrinsic Kind = "extrinsics"
	KindEvent     Kind = "events"
)

// Kinds lists every entity kind in display order.
var Kinds = []Kind{KindAccount, KindBlock, KindExtrinsic, KindEvent}

// ParseKind converts a tab or path value into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindAccount, "account":
		return KindAccount, nil
	case KindBlock, "block":
		return KindBlock, nil
	case KindExtrinsic, "extrinsic":
		return KindExtrinsic, nil
	case KindEvent, "event":
		return KindEvent, nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// Singular returns the path segment used by detail views, e.g. "block".
func (k Kind) Singular() string {
	return strings.TrimSuffix(string(k), "s")
}

// String implements fmt.Stringer
func (k Kind) String() string {
	return string(k)
}

// Entity is a single match returned by an entity query client.
type Entity interface {
	// EntityID returns the identifier unique within one network.
	EntityID() string
	// EntityKind returns the kind the entity belongs to.
	EntityKind() Kind
	// Identifiers returns every value a user may type to look the entity up exactly.
	Identifiers() []string
}

// Account is an on-chain account.
type Account struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	PublicKey string `json:"publicKey,omitempty"`
	Identity  string `json:"identity,omitempty"`
}

func (a *Account) EntityID() string { return a.ID }
func (a *Account) EntityKind() Kind { return KindAccount }
func (a *Account) Identifiers() []string {
	return nonEmpty(a.ID, a.Address, a.PublicKey)
}

// Block is a chain block header summary.
type Block struct {
	ID              string    `json:"id"`
	Height          uint64    `json:"height"`
	Hash            string    `json:"hash"`
	ParentHash      string    `json:"parentHash,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	SpecVersion     int       `json:"specVersion"`
	ValidatorID     string    `json:"validatorId,omitempty"`
	ExtrinsicsCount int       `json:"extrinsicsCount"`
	EventsCount     int       `json:"eventsCount"`
}

func (b *Block) EntityID() string { return b.ID }
func (b *Block) EntityKind() Kind { return KindBlock }
func (b *Block) Identifiers() []string {
	return nonEmpty(b.ID, b.Hash, fmt.Sprintf("%d", b.Height))
}

// DecodedCall is the metadata description of a decoded extrinsic call.
type DecodedCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
	Docs string          `json:"docs,omitempty"`
}

// ExtrinsicMetadata carries decoded runtime metadata for an extrinsic.
type ExtrinsicMetadata struct {
	Call *DecodedCall `json:"call,omitempty"`
}

// Extrinsic is a signed or unsigned call included in a block.
type Extrinsic struct {
	ID           string            `json:"id"`
	Network      string            `json:"network,omitempty"`
	Hash         string            `json:"hash"`
	BlockID      string            `json:"blockId"`
	BlockHeight  uint64            `json:"blockHeight"`
	CallName     string            `json:"callName"`
	PalletName   string            `json:"palletName"`
	Args         json.RawMessage   `json:"args,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
	Signer       *string           `json:"signer"`
	Signature    *string           `json:"signature"`
	IndexInBlock int               `json:"indexInBlock"`
	Success      bool              `json:"success"`
	Tip          *big.Int          `json:"tip"`
	Fee          *big.Int          `json:"fee"`
	Error        json.RawMessage   `json:"error,omitempty"`
	Version      int               `json:"version"`
	SpecVersion  int               `json:"specVersion"`
	Metadata     ExtrinsicMetadata `json:"metadata"`
}

func (e *Extrinsic) EntityID() string { return e.ID }
func (e *Extrinsic) EntityKind() Kind { return KindExtrinsic }
func (e *Extrinsic) Identifiers() []string {
	return nonEmpty(e.ID, e.Hash)
}

// QualifiedName returns "Pallet.call".
func (e *Extrinsic) QualifiedName() string {
	return e.PalletName + "." + e.CallName
}

// Event is a runtime event emitted in a block.
type Event struct {
	ID           string          `json:"id"`
	BlockID      string          `json:"blockId"`
	BlockHeight  uint64          `json:"blockHeight"`
	ExtrinsicID  string          `json:"extrinsicId,omitempty"`
	IndexInBlock int             `json:"indexInBlock"`
	PalletName   string          `json:"palletName"`
	EventName    string          `json:"eventName"`
	Args         json.RawMessage `json:"args,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

func (e *Event) EntityID() string { return e.ID }
func (e *Event) EntityKind() Kind { return KindEvent }
func (e *Event) Identifiers() []string {
	return nonEmpty(e.ID)
}

// QualifiedName returns "Pallet.Event".
func (e *Event) QualifiedName() string {
	return e.PalletName + "." + e.EventName
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
