package chainstore

import (
	"math/big"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/utxo"
)

// applyFunc applies a block's transactions to the UTXO store (normally
// utxo.Store.ApplyBlock) and reports the records it consumed. AddBlock only
// calls it when the block extends the best chain: side-chain and
// already-seen-fork blocks never touch the UTXO store.
type applyFunc func(height uint32) ([]utxo.PairedUtxo, error)

// AddBlock runs block-acceptance algorithm. The caller must
// already have verified block.Header.PrevBlock is known to this store
// (callers route orphans — unknown parents — to the orphan buffer before
// ever reaching here).
func (s *Store) AddBlock(block *blockchain.Block, apply applyFunc) (Result, error) {
	hash := block.Hash()
	prevWork, err := s.GetWork(block.Header.PrevBlock)
	if err != nil {
		return ResultNothing, err
	}
	work := new(big.Int).Add(prevWork, blockchain.Work(block.Header.Target))

	best, err := s.BestHash()
	if err != nil {
		return ResultNothing, err
	}
	bestWork, err := s.GetWork(best)
	if err != nil {
		return ResultNothing, err
	}

	switch {
	case block.Header.PrevBlock == best:
		spent, err := apply(block.Header.Height)
		if err != nil {
			return ResultNothing, err
		}
		if err := s.commitExtend(hash, block, work, spent); err != nil {
			return ResultNothing, err
		}
		return ResultBestBlock, nil

	case work.Cmp(bestWork) > 0:
		if err := s.putBlock(hash, block); err != nil {
			return ResultNothing, err
		}
		if err := s.putWork(hash, work); err != nil {
			return ResultNothing, err
		}
		return ResultFork, nil

	default:
		if err := s.putBlock(hash, block); err != nil {
			return ResultNothing, err
		}
		if err := s.putWork(hash, work); err != nil {
			return ResultNothing, err
		}
		return ResultNothing, nil
	}
}

// commitExtend performs the "extend" branch of acceptance
// algorithm: persist the block, advance NEXT/best/SPENT_SNAPSHOT/WORK, and
// maintain the PAST2016 pointer.
func (s *Store) commitExtend(hash blockchain.Hash, block *blockchain.Block, work *big.Int, spent []utxo.PairedUtxo) error {
	if err := s.putBlock(hash, block); err != nil {
		return err
	}
	if err := s.putNext(block.Header.PrevBlock, hash); err != nil {
		return err
	}
	if err := s.putSpentSnapshot(hash, spent); err != nil {
		return err
	}
	if err := s.putWork(hash, work); err != nil {
		return err
	}
	if err := s.setBest(hash); err != nil {
		return err
	}
	if err := s.pushLastTen(hash); err != nil {
		return err
	}
	return s.updatePast2016(hash, block.Header)
}

func (s *Store) updatePast2016(hash blockchain.Hash, header blockchain.BlockHeader) error {
	if header.Height < 2015 {
		return nil
	}
	genesis, err := s.GenesisHash()
	if err != nil {
		return err
	}
	if header.Height == 2015 {
		return s.putPast2016(hash, genesis)
	}
	prevPast, err := s.GetPast2016(header.PrevBlock)
	if err != nil {
		// The spine was bootstrapped past height 2015 without ever
		// recording this pointer (e.g. restored from a snapshot); fall
		// back to genesis rather than fail the whole acceptance.
		return s.putPast2016(hash, genesis)
	}
	ancestor, err := s.GetNext(prevPast)
	if err != nil {
		return s.putPast2016(hash, genesis)
	}
	return s.putPast2016(hash, ancestor)
}
