package mempool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/script"
	"github.com/EnsicoinDevs/arcd-sub000/storage/database"
	"github.com/EnsicoinDevs/arcd-sub000/utxo"
)

// trivialScript is an output script that any (even empty) input script
// satisfies: the combined program is just OpTrue.
var trivialScript = []byte{script.OpTrue}

func seedUTXO(t *testing.T, us *utxo.Store, value uint64) blockchain.Outpoint {
	t.Helper()
	seed := &blockchain.Transaction{
		Version: 1,
		Flags:   []string{"0"},
		Inputs:  []blockchain.TransactionInput{{PreviousOutput: blockchain.Outpoint{}}},
		Outputs: []blockchain.TransactionOutput{{Value: value, Script: trivialScript}},
	}
	require.NoError(t, us.RegisterOutputs(seed, true, 0))
	return blockchain.Outpoint{Hash: seed.Hash(), Index: 0}
}

func spendTx(from blockchain.Outpoint, value uint64, tag byte) *blockchain.Transaction {
	return &blockchain.Transaction{
		Version: 1,
		Inputs:  []blockchain.TransactionInput{{PreviousOutput: from}},
		Outputs: []blockchain.TransactionOutput{{Value: value, Script: []byte{1, tag, script.OpDup, script.OpEqual}}},
	}
}

func TestInsertLinkedAgainstUtxoSucceeds(t *testing.T) {
	us := utxo.New(database.NewMemDatabase())
	op := seedUTXO(t, us, 100)

	p := New(us)
	tx := spendTx(op, 90, 1)
	require.NoError(t, p.Insert(tx))

	got, ok := p.GetByHash(tx.Hash())
	require.True(t, ok)
	require.Equal(t, tx, got)
}

func TestInsertInsufficientFeeParkedAsOrphan(t *testing.T) {
	us := utxo.New(database.NewMemDatabase())
	op := seedUTXO(t, us, 100)

	p := New(us)
	tx := spendTx(op, 200, 1) // spends more than available: fee would be negative
	require.NoError(t, p.Insert(tx))

	_, ok := p.GetByHash(tx.Hash())
	require.False(t, ok)
	_, isOrphan := p.orph[tx.Hash()]
	require.True(t, isOrphan, "an over-spend is 'linked but invalid', which the pool parks as orphan")
}

func TestMempoolOrphanPromotion(t *testing.T) {
	us := utxo.New(database.NewMemDatabase())
	op := seedUTXO(t, us, 100)

	p := New(us)
	t1 := spendTx(op, 90, 1)
	t1Out := blockchain.Outpoint{Hash: t1.Hash(), Index: 0}
	t2 := spendTx(t1Out, 80, 2)

	// T2 arrives first, consuming T1's not-yet-existing output.
	require.NoError(t, p.Insert(t2))
	_, ok := p.GetByHash(t2.Hash())
	require.False(t, ok)
	require.Contains(t, p.deps, t1.Hash())

	// T1 arrives: it completes and validates immediately, then promotes T2.
	require.NoError(t, p.Insert(t1))

	_, ok = p.GetByHash(t1.Hash())
	require.True(t, ok)
	_, ok = p.GetByHash(t2.Hash())
	require.True(t, ok)
	require.NotContains(t, p.orph, t2.Hash())
	require.Empty(t, p.deps)
}

func TestRemoveOnBlockLeavesOrphans(t *testing.T) {
	us := utxo.New(database.NewMemDatabase())
	op := seedUTXO(t, us, 100)

	p := New(us)
	t1 := spendTx(op, 90, 1)
	require.NoError(t, p.Insert(t1))

	orphanTx := spendTx(blockchain.Outpoint{Hash: blockchain.Hash{0xAB}}, 10, 9)
	require.NoError(t, p.Insert(orphanTx))

	block := &blockchain.Block{Txs: []*blockchain.Transaction{t1}}
	p.RemoveOnBlock(block)

	_, ok := p.GetByHash(t1.Hash())
	require.False(t, ok)
	_, isOrphan := p.orph[orphanTx.Hash()]
	require.True(t, isOrphan)
}
