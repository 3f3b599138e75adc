package squid

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// "Balances" or "Balances.transfer"
	namePattern = regexp.MustCompile(`^([A-Z][A-Za-z0-9]*)(?:\.([A-Za-z_][A-Za-z0-9_]*))?$`)
	// SS58 addresses are base58 and 46 to 48 characters long
	ss58Pattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{46,48}$`)
)

// Classification describes what a search text can stand for.
type Classification struct {
	// Hash is the normalized 32-byte hex value, if the text is one.
	Hash string
	// Height is set when the text is a block number.
	Height *uint64
	// Address is set for SS58 encoded account addresses.
	Address string
	// Pallet and Name are set for "Pallet" or "Pallet.name" texts.
	Pallet string
	Name   string
}

// Classify inspects a search text.
func Classify(text string) Classification {
	text = strings.TrimSpace(text)
	var c Classification

	if isHash(text) {
		c.Hash = strings.ToLower(common.HexToHash(text).Hex())
		return c
	}

	if h, err := strconv.ParseUint(text, 10, 64); err == nil {
		c.Height = &h
		return c
	}

	if ss58Pattern.MatchString(text) {
		c.Address = text
		return c
	}

	if m := namePattern.FindStringSubmatch(text); m != nil {
		c.Pallet = m[1]
		c.Name = m[2]
	}
	return c
}

// Empty reports whether the text matched no known shape.
func (c Classification) Empty() bool {
	return c.Hash == "" && c.Height == nil && c.Address == "" && c.Pallet == ""
}

func isHash(text string) bool {
	if !strings.HasPrefix(text, "0x") && !strings.HasPrefix(text, "0X") {
		return false
	}
	b, err := hexutil.Decode("0x" + text[2:])
	return err == nil && len(b) == common.HashLength
}
