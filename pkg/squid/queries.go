package squid

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/0xmhha/explorer-search/internal/config"
	"github.com/0xmhha/explorer-search/pkg/types"
)

// document is a parsed squid query together with the connection field the
// data lives under.
type document struct {
	Kind      types.Kind
	SquidType string
	Operation string
	Field     string
	Query     string
}

const accountsQuery = `
query SearchAccounts($first: Int!, $after: String, $where: AccountWhereInput) {
  accountsConnection(first: $first, after: $after, orderBy: id_ASC, where: $where) {
    totalCount
    edges {
      node {
        id
        publicKey
        identity { display }
      }
    }
  }
}`

const blocksQuery = `
query SearchBlocks($first: Int!, $after: String, $where: BlockWhereInput) {
  blocksConnection(first: $first, after: $after, orderBy: height_DESC, where: $where) {
    totalCount
    edges {
      node {
        id
        height
        hash
        parentHash
        timestamp
        specVersion
        validator
        extrinsicsCount
        eventsCount
      }
    }
  }
}`

const extrinsicsQuery = `
query SearchExtrinsics($first: Int!, $after: String, $where: ExtrinsicWhereInput) {
  extrinsicsConnection(first: $first, after: $after, orderBy: id_DESC, where: $where) {
    totalCount
    edges {
      node {
        id
        hash
        block { id height timestamp specVersion }
        mainCall { callName palletName args }
        signer
        signature
        indexInBlock
        success
        tip
        fee
        error
        version
      }
    }
  }
}`

const eventsQuery = `
query SearchEvents($first: Int!, $after: String, $where: EventWhereInput) {
  eventsConnection(first: $first, after: $after, orderBy: id_DESC, where: $where) {
    totalCount
    edges {
      node {
        id
        block { id height timestamp }
        extrinsic { id }
        indexInBlock
        palletName
        eventName
        args
      }
    }
  }
}`

var documents = map[types.Kind]*document{
	types.KindAccount:   mustDocument(types.KindAccount, config.SquidBalances, accountsQuery),
	types.KindBlock:     mustDocument(types.KindBlock, config.SquidExplorer, blocksQuery),
	types.KindExtrinsic: mustDocument(types.KindExtrinsic, config.SquidExplorer, extrinsicsQuery),
	types.KindEvent:     mustDocument(types.KindEvent, config.SquidExplorer, eventsQuery),
}

// documentFor returns the query document of a kind.
func documentFor(kind types.Kind) (*document, error) {
	doc, ok := documents[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	return doc, nil
}

// SquidTypeFor returns which squid serves a kind.
func SquidTypeFor(kind types.Kind) (string, error) {
	doc, err := documentFor(kind)
	if err != nil {
		return "", err
	}
	return doc.SquidType, nil
}

// mustDocument parses query and records its operation and root field.
func mustDocument(kind types.Kind, squidType, query string) *document {
	parsed, err := parser.ParseQuery(&ast.Source{Name: string(kind), Input: query})
	if err != nil {
		panic(fmt.Sprintf("squid: invalid %s query: %v", kind, err))
	}
	if len(parsed.Operations) != 1 {
		panic(fmt.Sprintf("squid: %s query must have exactly one operation", kind))
	}
	op := parsed.Operations[0]
	if len(op.SelectionSet) != 1 {
		panic(fmt.Sprintf("squid: %s query must select exactly one field", kind))
	}
	field, ok := op.SelectionSet[0].(*ast.Field)
	if !ok {
		panic(fmt.Sprintf("squid: %s query root selection is not a field", kind))
	}

	return &document{
		Kind:      kind,
		SquidType: squidType,
		Operation: op.Name,
		Field:     field.Name,
		Query:     query,
	}
}

// where builds the filter of a kind for a classified text. A nil filter
// means the text cannot match anything of that kind.
func where(kind types.Kind, c Classification) map[string]interface{} {
	switch kind {
	case types.KindAccount:
		switch {
		case c.Address != "":
			return map[string]interface{}{"id_eq": c.Address}
		case c.Hash != "":
			return map[string]interface{}{"publicKey_eq": c.Hash}
		}
	case types.KindBlock:
		switch {
		case c.Hash != "":
			return map[string]interface{}{"hash_eq": c.Hash}
		case c.Height != nil:
			return map[string]interface{}{"height_eq": *c.Height}
		}
	case types.KindExtrinsic:
		switch {
		case c.Hash != "":
			return map[string]interface{}{"hash_eq": c.Hash}
		case c.Pallet != "":
			call := map[string]interface{}{"palletName_eq": c.Pallet}
			if c.Name != "" {
				call["callName_eq"] = c.Name
			}
			return map[string]interface{}{"mainCall": call}
		}
	case types.KindEvent:
		if c.Pallet != "" {
			filter := map[string]interface{}{"palletName_eq": c.Pallet}
			if c.Name != "" {
				filter["eventName_eq"] = c.Name
			}
			return filter
		}
	}
	return nil
}
