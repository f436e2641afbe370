package server

import (
	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/chainstore"
	"github.com/EnsicoinDevs/arcd-sub000/p2p"
	"github.com/EnsicoinDevs/arcd-sub000/utxo"
	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

// handleNewBlock runs handle_new_block: validate against the
// chain, broadcast its inventory regardless of where it lands, commit it,
// and react to whichever of extend/fork/side-chain the store reports.
// Orphans are parked rather than rejected, and adopting a block replays
// every orphan chain that was waiting on it.
func (s *Server) handleNewBlock(block *blockchain.Block, source p2p.Source) error {
	hash := block.Hash()
	if s.chain.HasBlock(hash) {
		return nil
	}

	prevBlock, err := s.chain.GetBlock(block.Header.PrevBlock)
	if err != nil {
		s.orphans.Add(source, block)
		if !source.FromServer {
			locator, lerr := s.chain.GenerateGetBlocks()
			if lerr == nil {
				s.send(source.Identity.ID, p2p.SendMessage{Message: &wire.GetBlocks{Locator: locator}})
			}
		}
		return nil
	}

	expectedTarget, err := s.chain.Retarget(
		block.Header.PrevBlock,
		block.Header.Height,
		block.Header.Timestamp,
		s.cfg.IdealBlockTime,
		s.cfg.RetargetInterval,
	)
	if err != nil {
		return err
	}
	if err := validateBlock(block, prevBlock, expectedTarget); err != nil {
		s.log.Warn("rejecting invalid block", "hash", hash, "err", err)
		return nil
	}

	s.broadcastInv([]wire.InvItem{{Kind: wire.ResourceBlock, Hash: hash}})

	result, err := s.chain.AddBlock(block, func(height uint32) ([]utxo.PairedUtxo, error) {
			return s.utxoSet.ApplyBlock(block, height)
	})
	if err != nil {
		return err
	}

	switch result {
	case chainstore.ResultBestBlock:
		s.mempool.RemoveOnBlock(block)
	case chainstore.ResultFork:
		if err := s.handleReorg(hash); err != nil {
			return err
		}
	case chainstore.ResultNothing:
		s.log.Info("extended a side chain", "hash", hash)
	}

	s.drainOrphans(hash)
	return nil
}

// handleReorg implements reorganization: pop the old best
// chain back to the fork point, restoring spent utxos and returning
// non-coinbase transactions to the mempool, then replay the winning
// branch forward, applying each block to the utxo set in turn.
func (s *Server) handleReorg(newTip blockchain.Hash) error {
	// AddBlock's Fork branch stores newTip's block and work but never
	// moves best, so this is still the losing side's tip.
	best, err := s.chain.BestHash()
	if err != nil {
		return err
	}

	common, err := s.chain.FindCommonAncestor(best, newTip)
	if err != nil {
		return err
	}

	popped, err := s.chain.PopToAncestor(common)
	if err != nil {
		return err
	}
	for _, ctx := range popped {
		if err := s.utxoSet.Restore(ctx.Block, ctx.Restore); err != nil {
			return err
		}
		s.mempool.Return(ctx.MempoolTxs)
	}

	path, err := s.chain.PathFromAncestor(common, newTip)
	if err != nil {
		return err
	}
	for _, block := range path {
		spent, err := s.utxoSet.ApplyBlock(block, block.Header.Height)
		if err != nil {
			return err
		}
		if err := s.chain.ExtendBranch(block, spent); err != nil {
			return err
		}
		s.mempool.RemoveOnBlock(block)
	}

	s.log.Info("reorganized chain", "from", best, "to", newTip, "common", common)
	return nil
}

func (s *Server) drainOrphans(parent blockchain.Hash) {
	entries := s.orphans.RetrieveChain(parent)
	for _, entry := range entries {
		source, _ := entry.Source.(p2p.Source)
		if err := s.handleNewBlock(entry.Block, source); err != nil {
			s.log.Warn("could not adopt orphan", "err", err)
		}
	}
}
