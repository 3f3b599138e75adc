package squid

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/0xmhha/explorer-search/pkg/types"
)

type connection[T any] struct {
	TotalCount int `json:"totalCount"`
	Edges      []struct {
		Node T `json:"node"`
	} `json:"edges"`
}

func decodeConnection[T any](raw json.RawMessage) ([]T, int, error) {
	var conn connection[T]
	if err := json.Unmarshal(raw, &conn); err != nil {
		return nil, 0, fmt.Errorf("decode connection: %w", err)
	}
	nodes := make([]T, len(conn.Edges))
	for i, e := range conn.Edges {
		nodes[i] = e.Node
	}
	return nodes, conn.TotalCount, nil
}

type blockRef struct {
	ID          string    `json:"id"`
	Height      uint64    `json:"height"`
	Timestamp   time.Time `json:"timestamp"`
	SpecVersion int       `json:"specVersion"`
}

type accountNode struct {
	ID        string `json:"id"`
	PublicKey string `json:"publicKey"`
	Identity  *struct {
		Display string `json:"display"`
	} `json:"identity"`
}

func (n accountNode) entity() types.Entity {
	acc := &types.Account{ID: n.ID, Address: n.ID, PublicKey: n.PublicKey}
	if n.Identity != nil {
		acc.Identity = n.Identity.Display
	}
	return acc
}

type blockNode struct {
	ID              string    `json:"id"`
	Height          uint64    `json:"height"`
	Hash            string    `json:"hash"`
	ParentHash      string    `json:"parentHash"`
	Timestamp       time.Time `json:"timestamp"`
	SpecVersion     int       `json:"specVersion"`
	Validator       *string   `json:"validator"`
	ExtrinsicsCount int       `json:"extrinsicsCount"`
	EventsCount     int       `json:"eventsCount"`
}

func (n blockNode) entity() types.Entity {
	b := &types.Block{
		ID:              n.ID,
		Height:          n.Height,
		Hash:            n.Hash,
		ParentHash:      n.ParentHash,
		Timestamp:       n.Timestamp,
		SpecVersion:     n.SpecVersion,
		ExtrinsicsCount: n.ExtrinsicsCount,
		EventsCount:     n.EventsCount,
	}
	if n.Validator != nil {
		b.ValidatorID = *n.Validator
	}
	return b
}

type extrinsicNode struct {
	ID       string   `json:"id"`
	Hash     string   `json:"hash"`
	Block    blockRef `json:"block"`
	MainCall struct {
		CallName   string          `json:"callName"`
		PalletName string          `json:"palletName"`
		Args       json.RawMessage `json:"args"`
	} `json:"mainCall"`
	Signer       *string         `json:"signer"`
	Signature    *string         `json:"signature"`
	IndexInBlock int             `json:"indexInBlock"`
	Success      bool            `json:"success"`
	Tip          *string         `json:"tip"`
	Fee          *string         `json:"fee"`
	Error        json.RawMessage `json:"error"`
	Version      int             `json:"version"`
}

func (n extrinsicNode) entity() types.Entity {
	return &types.Extrinsic{
		ID:           n.ID,
		Hash:         n.Hash,
		BlockID:      n.Block.ID,
		BlockHeight:  n.Block.Height,
		CallName:     n.MainCall.CallName,
		PalletName:   n.MainCall.PalletName,
		Args:         n.MainCall.Args,
		Timestamp:    n.Block.Timestamp,
		Signer:       n.Signer,
		Signature:    n.Signature,
		IndexInBlock: n.IndexInBlock,
		Success:      n.Success,
		Tip:          parseBig(n.Tip),
		Fee:          parseBig(n.Fee),
		Error:        nullable(n.Error),
		Version:      n.Version,
		SpecVersion:  n.Block.SpecVersion,
	}
}

type eventNode struct {
	ID        string   `json:"id"`
	Block     blockRef `json:"block"`
	Extrinsic *struct {
		ID string `json:"id"`
	} `json:"extrinsic"`
	IndexInBlock int             `json:"indexInBlock"`
	PalletName   string          `json:"palletName"`
	EventName    string          `json:"eventName"`
	Args         json.RawMessage `json:"args"`
}

func (n eventNode) entity() types.Entity {
	ev := &types.Event{
		ID:           n.ID,
		BlockID:      n.Block.ID,
		BlockHeight:  n.Block.Height,
		IndexInBlock: n.IndexInBlock,
		PalletName:   n.PalletName,
		EventName:    n.EventName,
		Args:         nullable(n.Args),
		Timestamp:    n.Block.Timestamp,
	}
	if n.Extrinsic != nil {
		ev.ExtrinsicID = n.Extrinsic.ID
	}
	return ev
}

type node interface {
	entity() types.Entity
}

func toEntities[T node](nodes []T) []types.Entity {
	out := make([]types.Entity, len(nodes))
	for i, n := range nodes {
		out[i] = n.entity()
	}
	return out
}

// decodeEntities turns a connection of a kind into entities.
func decodeEntities(kind types.Kind, raw json.RawMessage) ([]types.Entity, int, error) {
	switch kind {
	case types.KindAccount:
		nodes, total, err := decodeConnection[accountNode](raw)
		return toEntities(nodes), total, err
	case types.KindBlock:
		nodes, total, err := decodeConnection[blockNode](raw)
		return toEntities(nodes), total, err
	case types.KindExtrinsic:
		nodes, total, err := decodeConnection[extrinsicNode](raw)
		return toEntities(nodes), total, err
	case types.KindEvent:
		nodes, total, err := decodeConnection[eventNode](raw)
		return toEntities(nodes), total, err
	}
	return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
}

// parseBig reads decimal or 0x-prefixed big integers.
func parseBig(s *string) *big.Int {
	if s == nil {
		return nil
	}
	v, ok := math.ParseBig256(*s)
	if !ok {
		return nil
	}
	return v
}

func nullable(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}
