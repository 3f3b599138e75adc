package squid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/explorer-search/pkg/types"
)

const testHash = "0xE3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855"

func TestClassify(t *testing.T) {
	hash := Classify(testHash)
	assert.Equal(t, "0xe3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", hash.Hash)

	height := Classify(" 12345 ")
	require.NotNil(t, height.Height)
	assert.Equal(t, uint64(12345), *height.Height)

	addr := Classify("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY")
	assert.Equal(t, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", addr.Address)

	call := Classify("Balances.transfer_keep_alive")
	assert.Equal(t, "Balances", call.Pallet)
	assert.Equal(t, "transfer_keep_alive", call.Name)

	pallet := Classify("Staking")
	assert.Equal(t, "Staking", pallet.Pallet)
	assert.Empty(t, pallet.Name)

	assert.True(t, Classify("hello world").Empty())
	assert.True(t, Classify("0x1234").Empty(), "short hex is not a hash")
}

func TestWhere(t *testing.T) {
	tests := []struct {
		name string
		kind types.Kind
		text string
		want map[string]interface{}
	}{
		{"block by hash", types.KindBlock, testHash, map[string]interface{}{"hash_eq": Classify(testHash).Hash}},
		{"block by height", types.KindBlock, "42", map[string]interface{}{"height_eq": uint64(42)}},
		{"block by name", types.KindBlock, "Balances.transfer", nil},
		{"extrinsic by hash", types.KindExtrinsic, testHash, map[string]interface{}{"hash_eq": Classify(testHash).Hash}},
		{"extrinsic by call", types.KindExtrinsic, "Balances.transfer", map[string]interface{}{
			"mainCall": map[string]interface{}{"palletName_eq": "Balances", "callName_eq": "transfer"},
		}},
		{"extrinsic by height", types.KindExtrinsic, "42", nil},
		{"event by name", types.KindEvent, "Balances.Transfer", map[string]interface{}{"palletName_eq": "Balances", "eventName_eq": "Transfer"}},
		{"event by pallet", types.KindEvent, "System", map[string]interface{}{"palletName_eq": "System"}},
		{"event by hash", types.KindEvent, testHash, nil},
		{"account by address", types.KindAccount, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", map[string]interface{}{"id_eq": "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"}},
		{"account by public key", types.KindAccount, testHash, map[string]interface{}{"publicKey_eq": Classify(testHash).Hash}},
		{"account by name", types.KindAccount, "Balances", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := where(tt.kind, Classify(tt.text))
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocuments(t *testing.T) {
	for _, kind := range types.Kinds {
		doc, err := documentFor(kind)
		require.NoError(t, err)
		assert.Equal(t, string(kind)+"Connection", doc.Field)
		assert.NotEmpty(t, doc.Operation)
	}

	squidType, err := SquidTypeFor(types.KindAccount)
	require.NoError(t, err)
	assert.Equal(t, "balances", squidType)

	_, err = documentFor("transfers")
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}
