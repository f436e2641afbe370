package server

import (
	"strconv"
	"time"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/internal/xerrors"
	"github.com/EnsicoinDevs/arcd-sub000/p2p"
	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

// Info is the snapshot GetInfo call reports.
type Info struct {
	Implementation string
	ProtocolVersion uint32
	BestBlockHash blockchain.Hash
	BestBlockHeight uint32
	ConnectionCount int
}

// Info answers the rpc package's GetInfo call. It must be invoked from
// the coordinator goroutine (every exported method here is), so no
// locking beyond what the stores already do internally is needed.
func (s *Server) Info() (Info, error) {
	best, err := s.chain.BestHash()
	if err != nil {
		return Info{}, err
	}
	block, err := s.chain.GetBlock(best)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Implementation: s.cfg.ImplementationName,
		ProtocolVersion: s.cfg.ProtocolVersion,
		BestBlockHash: best,
		BestBlockHeight: block.Header.Height,
		ConnectionCount: s.connectionCount,
	}, nil
}

// SubmitTransaction feeds an externally-received (RPC-submitted) raw
// transaction through the same mempool admission a NewTransactionContent
// arriving from a peer goes through, then gossips its hash to every
// connected peer (the peer path does not gossip).
func (s *Server) SubmitTransaction(tx *blockchain.Transaction) error {
	if err := s.mempool.Insert(tx); err != nil {
		return err
	}
	s.broadcastInv([]wire.InvItem{{Kind: wire.ResourceTransaction, Hash: tx.Hash()}})
	return nil
}

// SubmitBlock feeds an externally-received raw block through the normal
// acceptance pipeline.
func (s *Server) SubmitBlock(block *blockchain.Block) error {
	return s.handleNewBlock(block, p2p.ServerSource)
}

// ConnectToAddress dials a manually-specified peer.
func (s *Server) ConnectToAddress(addr wire.Address) {
	s.handleConnect(addr)
}

// DisconnectPeer terminates a connection by id.
func (s *Server) DisconnectPeer(id uint64) error {
	ch, ok := s.connections[id]
	if !ok {
		return xerrors.NotFound("connection")
	}
	select {
	case ch <- p2p.TerminateMessage{Reason: p2p.ReasonRequestedTermination}:
	default:
	}
	return nil
}

// BestBlocks returns up to n of the most recently connected block hashes,
// tip first.
func (s *Server) BestBlocks(n int) ([]blockchain.Hash, error) {
	lastTen, err := s.chain.LastTen()
	if err != nil {
		return nil, err
	}
	reversed := make([]blockchain.Hash, len(lastTen))
	for i, h := range lastTen {
		reversed[len(lastTen)-1-i] = h
	}
	if n > 0 && n < len(reversed) {
		reversed = reversed[:n]
	}
	return reversed, nil
}

// BlockTemplate assembles the unmined candidate a miner should build on:
// the next height, the retargeted target expectation, and every
// transaction currently sitting in the mempool. The caller supplies the
// coinbase output script and fills in the nonce.
func (s *Server) BlockTemplate(coinbaseScript []byte, now time.Time) (*blockchain.Block, error) {
	best, err := s.chain.BestHash()
	if err != nil {
		return nil, err
	}
	prev, err := s.chain.GetBlock(best)
	if err != nil {
		return nil, err
	}
	height := prev.Header.Height + 1
	timestamp := uint64(now.Unix())
	target, err := s.chain.Retarget(best, height, timestamp, s.cfg.IdealBlockTime, s.cfg.RetargetInterval)
	if err != nil {
		return nil, err
	}

	coinbase := &blockchain.Transaction{
		Version: s.cfg.BlockVersion,
		Flags: []string{strconv.Itoa(int(height))},
		Inputs: []blockchain.TransactionInput{{PreviousOutput: blockchain.Outpoint{}}},
		Outputs: []blockchain.TransactionOutput{{Value: 0, Script: coinbaseScript}},
	}
	txs := append([]*blockchain.Transaction{coinbase}, s.mempool.GetTx()...)

	header := blockchain.BlockHeader{
		Version: s.cfg.BlockVersion,
		PrevBlock: best,
		MerkleRoot: blockchain.MerkleRoot(blockchain.TransactionHashes(txs)),
		Timestamp: timestamp,
		Height: height,
		Target: target,
	}
	return &blockchain.Block{Header: header, Txs: txs}, nil
}

// GetBlockByHash looks a block up by hash.
func (s *Server) GetBlockByHash(hash blockchain.Hash) (*blockchain.Block, error) {
	return s.chain.GetBlock(hash)
}

// GetTxByHash looks a transaction up in the mempool. Confirmed transactions are not indexed by this node —
// only their containing block is.
func (s *Server) GetTxByHash(hash blockchain.Hash) (*blockchain.Transaction, bool) {
	return s.mempool.GetByHash(hash)
}
