package server

import (
	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/internal/xerrors"
)

// validateBlock checks the chain-context invariants block.Sanity cannot
// check on its own: the declared target
// matches the retargeted expectation, the height is exactly one past its
// parent, and the merkle root commits to the declared transaction list.
func validateBlock(block *blockchain.Block, prevBlock *blockchain.Block, expectedTarget blockchain.Hash) error {
	if err := block.Sanity(); err != nil {
		return err
	}
	if block.Header.Target != expectedTarget {
		return xerrors.New(xerrors.KindInvalidBlock)
	}
	if block.Header.Height != prevBlock.Header.Height+1 {
		return xerrors.New(xerrors.KindInvalidBlock)
	}
	root := blockchain.MerkleRoot(blockchain.TransactionHashes(block.Txs))
	if root != block.Header.MerkleRoot {
		return xerrors.New(xerrors.KindInvalidBlock)
	}
	return nil
}
