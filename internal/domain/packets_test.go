package domain_test

import (
	"testing"
	"time"

	"github.com/fuel-streams/streams/internal/codec"
	"github.com/fuel-streams/streams/internal/domain"
	"github.com/stretchr/testify/require"
)

func testPayload(t *testing.T) domain.MsgPayload {
	t.Helper()
	inputIdx := 1
	return domain.MsgPayload{
		Block: domain.Block{Height: 10, ID: "0xblock", Producer: "0xproducer", TxIDs: []string{"0xtx"}},
		Metadata: domain.Metadata{
			ChainID: "0", BaseAssetID: "0xbase", Producer: "0xproducer",
			Height: 10, Consensus: "poa", Timestamp: time.Unix(1000, 0),
		},
		Transactions: []domain.Transaction{
			{
				ID: "0xtx", Index: 0, Status: "success", Kind: "script",
				Inputs: []domain.Input{
					{Kind: "coin", Owner: "0xowner", AssetID: "0xasset"},
					{Kind: "contract", ContractID: "0xcontract"},
				},
				Outputs: []domain.Output{
					{Kind: "coin", To: "0xto", AssetID: "0xasset"},
					{Kind: "contract", InputIndex: &inputIdx},
				},
				Receipts: []domain.Receipt{
					{Kind: "call", FromContractID: "0xfrom", ToContractID: "0xto", AssetID: "0xasset"},
					{Kind: "return", ContractID: "0xcontract"},
				},
			},
		},
	}
}

func testCodec(t *testing.T) codec.Codec {
	t.Helper()
	c, err := codec.New("zstd+json")
	require.NoError(t, err)
	return c
}

func TestBuildAllPacketsOrdersBlockThenPerTransactionGroups(t *testing.T) {
	packets, err := domain.BuildAllPackets(testPayload(t), testCodec(t))
	require.NoError(t, err)

	require.Equal(t, "block", packets[0].Entity)
	require.Equal(t, "transaction", packets[1].Entity)

	var entities []string
	for _, p := range packets {
		entities = append(entities, p.Entity)
	}
	require.Contains(t, entities, "input")
	require.Contains(t, entities, "output")
	require.Contains(t, entities, "receipt")
	require.Contains(t, entities, "utxo")
}

func TestBuildOutputContractResolvesContractIDFromInput(t *testing.T) {
	packets, err := domain.BuildAllPackets(testPayload(t), testCodec(t))
	require.NoError(t, err)

	var found bool
	for _, p := range packets {
		if p.Entity == "output" && p.SubjectID == "outputs_contract" {
			found = true
			require.Equal(t, "0xcontract", p.SubjectParams["contract"])
		}
	}
	require.True(t, found, "expected one outputs_contract packet")
}

func TestBuildOutputContractOutOfRangeIndexLeavesContractIDUnset(t *testing.T) {
	payload := testPayload(t)
	badIdx := 99
	payload.Transactions[0].Outputs[1].InputIndex = &badIdx

	packets, err := domain.BuildAllPackets(payload, testCodec(t))
	require.NoError(t, err)

	for _, p := range packets {
		if p.Entity == "output" && p.SubjectID == "outputs_contract" {
			require.Empty(t, p.SubjectParams["contract"])
		}
	}
}

func TestBuildAllPacketsAssignsStablePointers(t *testing.T) {
	packets, err := domain.BuildAllPackets(testPayload(t), testCodec(t))
	require.NoError(t, err)

	for _, p := range packets {
		require.EqualValues(t, 10, p.BlockHeight)
		if p.Entity != "block" && p.Entity != "utxo" {
			require.NotNil(t, p.TxIndex)
			require.EqualValues(t, 0, *p.TxIndex)
		}
	}
}
