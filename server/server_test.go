package server

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/EnsicoinDevs/arcd-sub000/addrbook"
	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/chainstore"
	"github.com/EnsicoinDevs/arcd-sub000/config"
	"github.com/EnsicoinDevs/arcd-sub000/mempool"
	"github.com/EnsicoinDevs/arcd-sub000/orphanblock"
	"github.com/EnsicoinDevs/arcd-sub000/p2p"
	"github.com/EnsicoinDevs/arcd-sub000/storage/database"
	"github.com/EnsicoinDevs/arcd-sub000/utxo"
	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

var looseTarget = blockchain.Hash{0xFF}

func mine(header blockchain.BlockHeader) blockchain.BlockHeader {
	for nonce := uint64(0); nonce < 1_000_000; nonce++ {
		header.Nonce = nonce
		if blockchain.MeetsTarget(header.Hash(), looseTarget) {
			return header
		}
	}
	panic("failed to mine a test block")
}

func coinbaseTx(height uint32, tag byte) *blockchain.Transaction {
	return &blockchain.Transaction{
		Version: 1,
		Flags:   []string{strconv.Itoa(int(height))},
		Inputs:  []blockchain.TransactionInput{{PreviousOutput: blockchain.Outpoint{}}},
		Outputs: []blockchain.TransactionOutput{{Value: 50, Script: []byte{tag}}},
	}
}

func childBlock(prev *blockchain.Block, height uint32, tag byte) *blockchain.Block {
	cb := coinbaseTx(height, tag)
	header := blockchain.BlockHeader{
		Version:    1,
		PrevBlock:  prev.Hash(),
		MerkleRoot: blockchain.MerkleRoot(blockchain.TransactionHashes([]*blockchain.Transaction{cb})),
		Height:     height,
		Target:     looseTarget,
	}
	header = mine(header)
	return &blockchain.Block{Header: header, Txs: []*blockchain.Transaction{cb}}
}

func newTestServer(t *testing.T) (*Server, *blockchain.Block) {
	t.Helper()
	cs := chainstore.New(database.NewMemDatabase())
	us := utxo.New(database.NewMemDatabase())
	genesis := blockchain.Genesis(looseTarget)
	require.NoError(t, cs.Bootstrap(genesis))

	pool := mempool.New(us)
	addrs := addrbook.New(database.NewMemDatabase(), 3, time.Hour)
	orphans := orphanblock.New()

	cfg := config.Default()
	cfg.InitialSyncPeers = 1
	cfg.ReFillThreshold = 0

	s := New(cfg, cs, us, pool, addrs, orphans)
	return s, genesis
}

func TestHandleRegisterAdmitsPeerAndSendsInitialSync(t *testing.T) {
	s, _ := newTestServer(t)

	sender := make(chan p2p.ServerMessage, 8)
	s.handleRegister(p2p.RegisterContent{
		Sender: sender,
		Identity: p2p.RemoteIdentity{
			ID:   7,
			Peer: addrbook.Peer{IP: [16]byte{0: 127, 15: 1}, Port: 1234},
		},
	})

	require.Contains(t, s.connections, uint64(7))
	require.Equal(t, 1, s.connectionCount)
	require.Equal(t, 0, s.syncCounter)

	select {
	case msg := <-sender:
			send, ok := msg.(p2p.SendMessage)
			require.True(t, ok)
			_, ok = send.Message.(*wire.GetBlocks)
			require.True(t, ok, "expected GetBlocks, got %T", send.Message)
	default:
			t.Fatal("expected a GetBlocks message")
	}

	select {
	case msg := <-sender:
			send, ok := msg.(p2p.SendMessage)
			require.True(t, ok)
			_, ok = send.Message.(*wire.GetMempool)
			require.True(t, ok, "expected GetMempool, got %T", send.Message)
	default:
			t.Fatal("expected a GetMempool message")
	}
}

func TestHandleRegisterRejectsOverMaxPeers(t *testing.T) {
	s, _ := newTestServer(t)
	s.cfg.MaxPeers = 0

	sender := make(chan p2p.ServerMessage, 8)
	s.handleRegister(p2p.RegisterContent{
		Sender:   sender,
		Identity: p2p.RemoteIdentity{ID: 1},
	})

	require.Empty(t, s.connections)
	select {
	case msg := <-sender:
			term, ok := msg.(p2p.TerminateMessage)
			require.True(t, ok)
			require.Equal(t, p2p.ReasonTooManyConnections, term.Reason)
	default:
			t.Fatal("expected a Terminate message")
	}
}

func TestHandleNewBlockExtendsBestChain(t *testing.T) {
	s, genesis := newTestServer(t)
	b1 := childBlock(genesis, 1, 1)

	require.NoError(t, s.handleNewBlock(b1, p2p.ServerSource))

	best, err := s.chain.BestHash()
	require.NoError(t, err)
	require.Equal(t, b1.Hash(), best)
}

func TestHandleNewBlockParksOrphan(t *testing.T) {
	s, genesis := newTestServer(t)
	b1 := childBlock(genesis, 1, 1)
	b2 := childBlock(b1, 2, 2)

	// b2 arrives before its parent b1: it must be parked, not rejected,
	// and then adopted automatically once b1 lands.
	require.NoError(t, s.handleNewBlock(b2, p2p.ServerSource))
	best, err := s.chain.BestHash()
	require.NoError(t, err)
	require.Equal(t, genesis.Hash(), best)

	require.NoError(t, s.handleNewBlock(b1, p2p.ServerSource))
	best, err = s.chain.BestHash()
	require.NoError(t, err)
	require.Equal(t, b2.Hash(), best)
}

func TestHandleNewBlockReorg(t *testing.T) {
	s, genesis := newTestServer(t)

	b1 := childBlock(genesis, 1, 1)
	require.NoError(t, s.handleNewBlock(b1, p2p.ServerSource))

	b1prime := childBlock(genesis, 1, 2)
	require.NoError(t, s.handleNewBlock(b1prime, p2p.ServerSource))
	best, err := s.chain.BestHash()
	require.NoError(t, err)
	require.Equal(t, b1.Hash(), best, "side chain must not yet be adopted")

	b2prime := childBlock(b1prime, 2, 3)
	require.NoError(t, s.handleNewBlock(b2prime, p2p.ServerSource))

	best, err = s.chain.BestHash()
	require.NoError(t, err)
	require.Equal(t, b2prime.Hash(), best, "heavier fork must become best after reorg")

	_, err = s.utxoSet.Get(blockchain.Outpoint{Hash: b2prime.Txs[0].Hash(), Index: 0})
	require.NoError(t, err, "winning branch's coinbase must be spendable after reorg")

	_, err = s.utxoSet.Get(blockchain.Outpoint{Hash: b1.Txs[0].Hash(), Index: 0})
	require.Error(t, err, "losing branch's coinbase must be restored away after reorg")
}

func TestBlockTemplate(t *testing.T) {
	s, genesis := newTestServer(t)

	script := []byte{9, 9}
	tmpl, err := s.BlockTemplate(script, time.Unix(int64(genesis.Header.Timestamp)+1, 0))
	require.NoError(t, err)

	require.Equal(t, genesis.Header.Height+1, tmpl.Header.Height)
	require.Len(t, tmpl.Txs, 1)
	coinbase := tmpl.Txs[0]
	require.True(t, blockchain.IsCoinbaseHeightFlag(coinbase.Flags, tmpl.Header.Height),
		"coinbase flags must encode the template's height")
	require.Equal(t, script, coinbase.Outputs[0].Script)
	require.Equal(t, blockchain.MerkleRoot(blockchain.TransactionHashes(tmpl.Txs)), tmpl.Header.MerkleRoot)

	// A template mined to meet its target and resubmitted must be
	// acceptable to the very node that issued it.
	for nonce := uint64(0); nonce < 1_000_000; nonce++ {
		tmpl.Header.Nonce = nonce
		if blockchain.MeetsTarget(tmpl.Header.Hash(), tmpl.Header.Target) {
			require.NoError(t, s.handleNewBlock(tmpl, p2p.ServerSource))
			best, err := s.chain.BestHash()
			require.NoError(t, err)
			require.Equal(t, tmpl.Header.Hash(), best)
			return
		}
	}
	t.Fatal("failed to find a nonce meeting the template's target")
}
