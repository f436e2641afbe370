package orphanblock

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
)

func blockWithPrev(prev blockchain.Hash, nonce uint64) *blockchain.Block {
	return &blockchain.Block{Header: blockchain.BlockHeader{PrevBlock: prev, Nonce: nonce}}
}

func TestOrphanAdoption(t *testing.T) {
	b := New()

	b1Hash := blockchain.Hash{1}
	b2 := blockWithPrev(b1Hash, 2)

	require.True(t, b.Add("peer-1", b2))
	require.Equal(t, 1, b.Len())

	// Applying b1 means its hash (b1Hash) is now known; draining yields b2.
	chain := b.RetrieveChain(b1Hash)
	require.Len(t, chain, 1)
	require.Equal(t, b2, chain[0].Block)
	require.Equal(t, "peer-1", chain[0].Source)
	require.Equal(t, 0, b.Len())
}

func TestRetrieveChainFollowsMultipleGenerations(t *testing.T) {
	b := New()

	genesis := blockchain.Hash{0}
	b1 := blockWithPrev(genesis, 1)
	b2 := blockWithPrev(b1.Hash(), 2)
	b3 := blockWithPrev(b2.Hash(), 3)

	require.True(t, b.Add("p", b3))
	require.True(t, b.Add("p", b2))

	chain := b.RetrieveChain(b1.Hash())
	require.Len(t, chain, 2)
	require.Equal(t, b2, chain[0].Block)
	require.Equal(t, b3, chain[1].Block)
	require.Equal(t, 0, b.Len())
}

func TestRetrieveChainEmptyWhenNoParentMatch(t *testing.T) {
	b := New()
	require.Empty(t, b.RetrieveChain(blockchain.Hash{9}))
}

func TestAddRejectsDuplicateParent(t *testing.T) {
	b := New()
	parent := blockchain.Hash{1}
	require.True(t, b.Add("p", blockWithPrev(parent, 1)))
	require.False(t, b.Add("p", blockWithPrev(parent, 2)))
}
