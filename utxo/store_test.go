package utxo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/internal/xerrors"
	"github.com/EnsicoinDevs/arcd-sub000/storage/database"
)

func sampleBlock() *blockchain.Block {
	coinbase := &blockchain.Transaction{
		Version: 1,
		Flags:   []string{"1"},
		Inputs:  []blockchain.TransactionInput{{PreviousOutput: blockchain.Outpoint{}, Script: nil}},
		Outputs: []blockchain.TransactionOutput{{Value: 50, Script: []byte{1}}},
	}
	return &blockchain.Block{
		Header: blockchain.BlockHeader{Version: 1, Height: 1},
		Txs:    []*blockchain.Transaction{coinbase},
	}
}

func TestRegisterOutputsAndGet(t *testing.T) {
	s := New(database.NewMemDatabase())
	tx := &blockchain.Transaction{
		Version: 1,
		Inputs:  []blockchain.TransactionInput{{PreviousOutput: blockchain.Outpoint{Hash: blockchain.Hash{9}}}},
		Outputs: []blockchain.TransactionOutput{{Value: 50, Script: []byte{1, 2}}},
	}
	require.NoError(t, s.RegisterOutputs(tx, true, 7))

	op := blockchain.Outpoint{Hash: tx.Hash(), Index: 0}
	rec, err := s.Get(op)
	require.NoError(t, err)
	require.Equal(t, Record{Script: []byte{1, 2}, Value: 50, BlockHeight: 7, CoinBase: true}, rec)
}

func TestGetMissingIsNotFound(t *testing.T) {
	s := New(database.NewMemDatabase())
	_, err := s.Get(blockchain.Outpoint{Hash: blockchain.Hash{1}})
	require.True(t, xerrors.Is(err, xerrors.KindNotFound))
}

func TestApplyBlockThenRestoreIsIdentity(t *testing.T) {
	s := New(database.NewMemDatabase())

	// Seed one spendable output at height 1.
	gen := sampleBlock()
	spentFirst, err := s.ApplyBlock(gen, 1)
	require.NoError(t, err)
	require.Empty(t, spentFirst)

	coinbaseOut := blockchain.Outpoint{Hash: gen.Txs[0].Hash(), Index: 0}
	before, err := s.Get(coinbaseOut)
	require.NoError(t, err)

	spender := &blockchain.Transaction{
		Version: 1,
		Inputs:  []blockchain.TransactionInput{{PreviousOutput: coinbaseOut, Script: []byte{1}}},
		Outputs: []blockchain.TransactionOutput{{Value: 10, Script: []byte{2}}},
	}
	nextCoinbase := &blockchain.Transaction{
		Version: 1,
		Flags:   []string{"2"},
		Inputs:  []blockchain.TransactionInput{{PreviousOutput: blockchain.Outpoint{}}},
		Outputs: []blockchain.TransactionOutput{{Value: 50, Script: []byte{3}}},
	}
	block := &blockchain.Block{
		Header: blockchain.BlockHeader{Version: 1, Height: 2},
		Txs:    []*blockchain.Transaction{nextCoinbase, spender},
	}

	spent, err := s.ApplyBlock(block, 2)
	require.NoError(t, err)
	require.Len(t, spent, 1)
	require.Equal(t, coinbaseOut, spent[0].Outpoint)
	require.Equal(t, before, spent[0].Record)

	// The spent coinbase output is gone; the spender's and next coinbase's
	// outputs now exist.
	_, err = s.Get(coinbaseOut)
	require.True(t, xerrors.Is(err, xerrors.KindNotFound))
	_, err = s.Get(blockchain.Outpoint{Hash: spender.Hash(), Index: 0})
	require.NoError(t, err)

	require.NoError(t, s.Restore(block, spent))

	// Reversal restores the spent coinbase output and removes the block's
	// own outputs, leaving the store bit-identical to its pre-apply state.
	after, err := s.Get(coinbaseOut)
	require.NoError(t, err)
	require.Equal(t, before, after)

	_, err = s.Get(blockchain.Outpoint{Hash: spender.Hash(), Index: 0})
	require.True(t, xerrors.Is(err, xerrors.KindNotFound))
	_, err = s.Get(blockchain.Outpoint{Hash: nextCoinbase.Hash(), Index: 0})
	require.True(t, xerrors.Is(err, xerrors.KindNotFound))
}

func TestLink(t *testing.T) {
	s := New(database.NewMemDatabase())
	gen := sampleBlock()
	_, err := s.ApplyBlock(gen, 1)
	require.NoError(t, err)

	known := blockchain.Outpoint{Hash: gen.Txs[0].Hash(), Index: 0}
	unknown := blockchain.Outpoint{Hash: blockchain.Hash{0xAA}, Index: 3}

	tx := &blockchain.Transaction{
		Inputs: []blockchain.TransactionInput{{PreviousOutput: known}, {PreviousOutput: unknown}},
	}
	deps := make(map[blockchain.Outpoint]Record)
	complete := s.Link(tx, deps)

	require.False(t, complete)
	require.Len(t, deps, 1)
	_, ok := deps[known]
	require.True(t, ok)
	_, ok = deps[unknown]
	require.False(t, ok)
}

func TestPairedUtxoListRoundTrip(t *testing.T) {
	list := []PairedUtxo{
		{Outpoint: blockchain.Outpoint{Hash: blockchain.Hash{1}, Index: 0}, Record: Record{Script: []byte{1}, Value: 5, BlockHeight: 1}},
		{Outpoint: blockchain.Outpoint{Hash: blockchain.Hash{2}, Index: 1}, Record: Record{Script: []byte{2}, Value: 6, BlockHeight: 2, CoinBase: true}},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodePairedUtxoList(&buf, list))
	got, err := DecodePairedUtxoList(&buf)
	require.NoError(t, err)
	require.Equal(t, list, got)
}
