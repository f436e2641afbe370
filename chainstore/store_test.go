package chainstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/storage/database"
	"github.com/EnsicoinDevs/arcd-sub000/utxo"
)

var looseTarget = blockchain.Hash{0xFF}

func mine(header blockchain.BlockHeader, target blockchain.Hash) blockchain.BlockHeader {
	for nonce := uint64(0); nonce < 1_000_000; nonce++ {
		header.Nonce = nonce
		if blockchain.MeetsTarget(header.Hash(), target) {
			return header
		}
	}
	panic("failed to mine a test block")
}

func coinbaseTx(height uint32, tag byte) *blockchain.Transaction {
	return &blockchain.Transaction{
		Version: 1,
		Flags: []string{itoa(height)},
		Inputs: []blockchain.TransactionInput{{PreviousOutput: blockchain.Outpoint{}}},
		Outputs: []blockchain.TransactionOutput{{Value: 50, Script: []byte{tag}}},
	}
}

func itoa(n uint32) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func childBlock(prev *blockchain.Block, height uint32, tag byte) *blockchain.Block {
	cb := coinbaseTx(height, tag)
	header := blockchain.BlockHeader{
		Version: 1,
		PrevBlock: prev.Hash(),
		MerkleRoot: blockchain.MerkleRoot(blockchain.TransactionHashes([]*blockchain.Transaction{cb})),
		Height: height,
		Target: looseTarget,
	}
	header = mine(header, looseTarget)
	return &blockchain.Block{Header: header, Txs: []*blockchain.Transaction{cb}}
}

func newTestStore(t *testing.T) (*Store, *utxo.Store, *blockchain.Block) {
	db := database.NewMemDatabase()
	cs := New(db)
	us := utxo.New(database.NewMemDatabase())

	genesis := blockchain.Genesis(looseTarget)
	require.NoError(t, cs.Bootstrap(genesis))
	return cs, us, genesis
}

func TestGenesisBootstrapAndIdle(t *testing.T) {
	cs, _, genesis := newTestStore(t)

	best, err := cs.BestHash()
	require.NoError(t, err)
	require.Equal(t, genesis.Hash(), best)

	lastTen, err := cs.LastTen()
	require.NoError(t, err)
	require.Equal(t, []blockchain.Hash{genesis.Hash()}, lastTen)

	work, err := cs.GetWork(genesis.Hash())
	require.NoError(t, err)
	require.Equal(t, 0, work.Sign())
}

func TestBlockExtension(t *testing.T) {
	cs, us, genesis := newTestStore(t)
	b1 := childBlock(genesis, 1, 1)

	result, err := cs.AddBlock(b1, func(height uint32) ([]utxo.PairedUtxo, error) {
			return us.ApplyBlock(b1, height)
	})
	require.NoError(t, err)
	require.Equal(t, ResultBestBlock, result)

	best, err := cs.BestHash()
	require.NoError(t, err)
	require.Equal(t, b1.Hash(), best)

	_, err = us.Get(blockchain.Outpoint{Hash: b1.Txs[0].Hash(), Index: 0})
	require.NoError(t, err)

	lastTen, err := cs.LastTen()
	require.NoError(t, err)
	require.Equal(t, []blockchain.Hash{genesis.Hash(), b1.Hash()}, lastTen)
}

func TestForkLowerWorkIgnored(t *testing.T) {
	cs, us, genesis := newTestStore(t)
	b1 := childBlock(genesis, 1, 1)
	_, err := cs.AddBlock(b1, func(height uint32) ([]utxo.PairedUtxo, error) { return us.ApplyBlock(b1, height) })
	require.NoError(t, err)

	b1prime := childBlock(genesis, 1, 2)
	result, err := cs.AddBlock(b1prime, func(height uint32) ([]utxo.PairedUtxo, error) {
			t.Fatal("side-chain block must not touch the UTXO store")
			return nil, nil
	})
	require.NoError(t, err)
	require.Equal(t, ResultNothing, result)

	best, err := cs.BestHash()
	require.NoError(t, err)
	require.Equal(t, b1.Hash(), best)

	require.True(t, cs.HasBlock(b1prime.Hash()))
}

func TestReorg(t *testing.T) {
	cs, us, genesis := newTestStore(t)

	b1 := childBlock(genesis, 1, 1)
	_, err := cs.AddBlock(b1, func(height uint32) ([]utxo.PairedUtxo, error) { return us.ApplyBlock(b1, height) })
	require.NoError(t, err)

	b1prime := childBlock(genesis, 1, 2)
	result, err := cs.AddBlock(b1prime, func(height uint32) ([]utxo.PairedUtxo, error) { return nil, nil })
	require.NoError(t, err)
	require.Equal(t, ResultNothing, result)

	// b2prime extends b1prime and (being mined against the same loose
	// target one block deeper) carries strictly greater cumulative work
	// than b1 alone, triggering a fork signal.
	b2prime := childBlock(b1prime, 2, 3)
	result, err = cs.AddBlock(b2prime, func(height uint32) ([]utxo.PairedUtxo, error) { return nil, nil })
	require.NoError(t, err)
	require.Equal(t, ResultFork, result)

	common, err := cs.FindCommonAncestor(b1.Hash(), b2prime.Hash())
	require.NoError(t, err)
	require.Equal(t, genesis.Hash(), common)

	popped, err := cs.PopToAncestor(common)
	require.NoError(t, err)
	require.Len(t, popped, 1)
	require.Equal(t, b1.Hash(), popped[0].Block.Hash())

	for _, ctx := range popped {
		require.NoError(t, us.Restore(ctx.Block, ctx.Restore))
	}

	path, err := cs.PathFromAncestor(common, b2prime.Hash())
	require.NoError(t, err)
	require.Len(t, path, 2)
	require.Equal(t, b1prime.Hash(), path[0].Hash())
	require.Equal(t, b2prime.Hash(), path[1].Hash())

	for _, block := range path {
		spent, err := us.ApplyBlock(block, block.Header.Height)
		require.NoError(t, err)
		require.NoError(t, cs.ExtendBranch(block, spent))
	}

	best, err := cs.BestHash()
	require.NoError(t, err)
	require.Equal(t, b2prime.Hash(), best)

	_, err = us.Get(blockchain.Outpoint{Hash: b1prime.Txs[0].Hash(), Index: 0})
	require.NoError(t, err)
	_, err = us.Get(blockchain.Outpoint{Hash: b2prime.Txs[0].Hash(), Index: 0})
	require.NoError(t, err)
}

func TestGenerateGetBlocksAndInv(t *testing.T) {
	cs, us, genesis := newTestStore(t)
	prev := genesis
	var blocks []*blockchain.Block
	for h := uint32(1); h <= 3; h++ {
		b := childBlock(prev, h, byte(h))
		_, err := cs.AddBlock(b, func(height uint32) ([]utxo.PairedUtxo, error) { return us.ApplyBlock(b, height) })
		require.NoError(t, err)
		blocks = append(blocks, b)
		prev = b
	}

	locator, err := cs.GenerateGetBlocks()
	require.NoError(t, err)
	require.Equal(t, prev.Hash(), locator[0])

	// A locator entirely known locally matches at its very first (newest)
	// entry, the tip itself, so there is nothing beyond it to send.
	var zero blockchain.Hash
	inv, err := cs.GenerateInv(locator, zero)
	require.NoError(t, err)
	require.Len(t, inv, 0)

	// A requester stuck at b1 sends a locator whose newest known entry is
	// b1; generate_inv must stop at that first match rather than walking
	// past it to genesis, then forward-fill from there to the tip.
	staleLocator := []blockchain.Hash{blocks[0].Hash(), genesis.Hash()}
	inv, err = cs.GenerateInv(staleLocator, zero)
	require.NoError(t, err)
	require.Len(t, inv, 2)
	require.Equal(t, blocks[1].Hash(), inv[0])
	require.Equal(t, blocks[2].Hash(), inv[1])
}
