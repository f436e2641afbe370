package blockchain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleTx() *Transaction {
	return &Transaction{
		Version: 1,
		Flags:   []string{"1"},
		Inputs: []TransactionInput{
			{PreviousOutput: Outpoint{Hash: Hash{1}, Index: 0}, Script: []byte{1, 2}},
		},
		Outputs: []TransactionOutput{
			{Value: 50, Script: []byte{3, 4}},
		},
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	tx := sampleTx()
	var buf bytes.Buffer
	require.NoError(t, tx.Encode(&buf))

	raw := buf.Bytes()
	got, err := DecodeTransaction(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, tx, got)

	var reencoded bytes.Buffer
	require.NoError(t, got.Encode(&reencoded))
	require.Equal(t, raw, reencoded.Bytes())
}

func TestTransactionSanity(t *testing.T) {
	tx := sampleTx()
	require.NoError(t, tx.Sanity())

	empty := &Transaction{Outputs: tx.Outputs}
	require.Error(t, empty.Sanity())

	noOutputs := &Transaction{Inputs: tx.Inputs}
	require.Error(t, noOutputs.Sanity())

	zeroOut := sampleTx()
	zeroOut.Outputs[0].Value = 0
	require.Error(t, zeroOut.Sanity())
}

func TestMerkleRootSingleElement(t *testing.T) {
	tx := sampleTx()
	h := tx.Hash()
	got := MerkleRoot([]Hash{h})
	want := DoubleSHA256(append(append([]byte{}, h[:]...), h[:]...))
	require.Equal(t, want, got)
}

func TestBlockSanity(t *testing.T) {
	target := Hash{}
	target[0] = 0xFF // loose target so a zero-nonce header usually passes

	coinbase := &Transaction{
		Version: 1,
		Flags:   []string{"1"},
		Inputs:  []TransactionInput{{PreviousOutput: Outpoint{}, Script: nil}},
		Outputs: []TransactionOutput{{Value: 50, Script: []byte{1}}},
	}
	header := BlockHeader{
		Version:    1,
		PrevBlock:  ZeroHash,
		MerkleRoot: MerkleRoot(TransactionHashes([]*Transaction{coinbase})),
		Height:     1,
		Target:     target,
	}
	block := &Block{Header: header, Txs: []*Transaction{coinbase}}

	for nonce := uint64(0); nonce < 10000; nonce++ {
		block.Header.Nonce = nonce
		if MeetsTarget(block.Hash(), target) {
			require.NoError(t, block.Sanity())
			return
		}
	}
	t.Fatal("failed to find a nonce meeting the loose test target")
}

func TestBlockRoundTrip(t *testing.T) {
	tx := sampleTx()
	block := &Block{
		Header: BlockHeader{Version: 1, Height: 1, Flags: []string{"x"}},
		Txs:    []*Transaction{tx},
	}
	var buf bytes.Buffer
	require.NoError(t, block.Encode(&buf))

	got, err := DecodeBlock(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, block.Header, got.Header)
	require.Equal(t, block.Txs, got.Txs)
}
