package script

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/require"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
)

func push(data []byte) []byte {
	return append([]byte{byte(len(data))}, data...)
}

func TestExecuteTrivialTrue(t *testing.T) {
	require.NoError(t, Execute([]byte{OpTrue}, blockchain.Hash{}))
}

func TestExecuteDupEqualVerifyTrue(t *testing.T) {
	prog := append(push([]byte{7}), OpDup, OpEqual, OpVerify, OpTrue)
	require.NoError(t, Execute(prog, blockchain.Hash{}))
}

func TestExecuteUnknownOpcode(t *testing.T) {
	require.ErrorIs(t, Execute([]byte{255}, blockchain.Hash{}), ErrUnknownOpcode)
}

func TestExecuteFinalStateMustBeSingletonTrue(t *testing.T) {
	require.ErrorIs(t, Execute([]byte{OpFalse}, blockchain.Hash{}), ErrFinalState)
	require.Error(t, Execute(nil, blockchain.Hash{}))
}

func TestExecuteHash160(t *testing.T) {
	prog := append(push([]byte("ensicoin")), OpHash160)
	// HASH160 alone leaves a 20-byte value on the stack, not [1]: not a
	// valid final state by itself.
	require.Error(t, Execute(prog, blockchain.Hash{}))
}

func TestExecuteCheckSig(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	pub := priv.PubKey()

	shash := blockchain.Hash{1, 2, 3}
	sig := ecdsa.Sign(priv, shash[:])
	der := sig.Serialize()

	prog := append(push(der), append(push(pub.SerializeCompressed()), OpCheckSig)...)
	require.NoError(t, Execute(prog, shash))

	wrongHash := blockchain.Hash{9, 9, 9}
	require.Error(t, Execute(prog, wrongHash))
}

func TestSigHashDeterministic(t *testing.T) {
	tx := &blockchain.Transaction{
		Version: 1,
		Inputs: []blockchain.TransactionInput{
			{PreviousOutput: blockchain.Outpoint{Hash: blockchain.Hash{1}, Index: 0}},
		},
		Outputs: []blockchain.TransactionOutput{{Value: 10, Script: []byte{1}}},
	}
	h1, err := SigHash(tx, 0, 50)
	require.NoError(t, err)
	h2, err := SigHash(tx, 0, 50)
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	h3, err := SigHash(tx, 0, 51)
	require.NoError(t, err)
	require.NotEqual(t, h1, h3)
}
