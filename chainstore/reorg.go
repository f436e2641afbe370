package chainstore

import (
	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/internal/xerrors"
	"github.com/EnsicoinDevs/arcd-sub000/utxo"
)

// FindCommonAncestor walks both chains back to their first shared block
//. It fails if either side is itself an orphan (a prev_block
// not present in the store).
func (s *Store) FindCommonAncestor(a, b blockchain.Hash) (blockchain.Hash, error) {
	blockA, err := s.GetBlock(a)
	if err != nil {
		return blockchain.Hash{}, xerrors.NotFound("common-ancestor")
	}
	blockB, err := s.GetBlock(b)
	if err != nil {
		return blockchain.Hash{}, xerrors.NotFound("common-ancestor")
	}

	for blockA.Header.Height > blockB.Header.Height {
		a = blockA.Header.PrevBlock
		blockA, err = s.GetBlock(a)
		if err != nil {
			return blockchain.Hash{}, xerrors.NotFound("common-ancestor")
		}
	}
	for blockB.Header.Height > blockA.Header.Height {
		b = blockB.Header.PrevBlock
		blockB, err = s.GetBlock(b)
		if err != nil {
			return blockchain.Hash{}, xerrors.NotFound("common-ancestor")
		}
	}

	for a != b {
		a = blockA.Header.PrevBlock
		b = blockB.Header.PrevBlock
		blockA, err = s.GetBlock(a)
		if err != nil {
			return blockchain.Hash{}, xerrors.NotFound("common-ancestor")
		}
		blockB, err = s.GetBlock(b)
		if err != nil {
			return blockchain.Hash{}, xerrors.NotFound("common-ancestor")
		}
	}
	return a, nil
}

// PopContext is the bookkeeping generated for one popped block during
// reorganization: the utxos to restore (already filtered to
// those whose block_height is at most the common ancestor's height) and
// the non-coinbase transactions to return to the mempool.
type PopContext struct {
	Block *blockchain.Block
	Restore []utxo.PairedUtxo
	MempoolTxs []*blockchain.Transaction
}

// PopToAncestor walks the current best chain back to common, producing one
// PopContext per popped block (tip-first) and leaving best_block set to
// common. It does not touch the UTXO store itself — the caller applies
// each PopContext's Restore set via utxo.Store.Restore.
func (s *Store) PopToAncestor(common blockchain.Hash) ([]PopContext, error) {
	commonBlock, err := s.GetBlock(common)
	if err != nil {
		return nil, xerrors.NotFound("common-ancestor")
	}
	commonHeight := commonBlock.Header.Height

	cur, err := s.BestHash()
	if err != nil {
		return nil, err
	}

	var ctxs []PopContext
	for cur != common {
		block, err := s.GetBlock(cur)
		if err != nil {
			return nil, xerrors.NotFound("block")
		}
		spent, err := s.GetSpentSnapshot(cur)
		if err != nil {
			spent = nil
		}
		var filtered []utxo.PairedUtxo
		for _, p := range spent {
			if p.Record.BlockHeight <= commonHeight {
				filtered = append(filtered, p)
			}
		}
		var mempoolTxs []*blockchain.Transaction
		if len(block.Txs) > 1 {
			mempoolTxs = block.Txs[1:]
		}
		ctxs = append(ctxs, PopContext{Block: block, Restore: filtered, MempoolTxs: mempoolTxs})

		cur = block.Header.PrevBlock
	}

	if err := s.setBest(common); err != nil {
		return nil, err
	}
	return ctxs, nil
}

// PathFromAncestor returns the blocks strictly after common up to and
// including target, in ascending (parent-to-child) order — the branch a
// reorganization applies after popping to common.
func (s *Store) PathFromAncestor(common, target blockchain.Hash) ([]*blockchain.Block, error) {
	var reversed []*blockchain.Block
	cur := target
	for cur != common {
		block, err := s.GetBlock(cur)
		if err != nil {
			return nil, xerrors.NotFound("block")
		}
		reversed = append(reversed, block)
		cur = block.Header.PrevBlock
	}
	path := make([]*blockchain.Block, len(reversed))
	for i, b := range reversed {
		path[len(reversed)-1-i] = b
	}
	return path, nil
}

// ExtendBranch commits one block of a reorganization's new branch to the
// spine, identical in effect to the extend path of AddBlock but used once
// the fork block is already stored (its BLOCK/WORK were written when it
// first arrived as a fork candidate).
func (s *Store) ExtendBranch(block *blockchain.Block, spent []utxo.PairedUtxo) error {
	hash := block.Hash()
	work, err := s.GetWork(hash)
	if err != nil {
		return err
	}
	return s.commitExtend(hash, block, work, spent)
}
