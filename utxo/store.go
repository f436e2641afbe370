package utxo

import (
	"bytes"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/internal/elog"
	"github.com/EnsicoinDevs/arcd-sub000/internal/xerrors"
	"github.com/EnsicoinDevs/arcd-sub000/storage/database"
)

// Store is the UTXO namespace: a disk-backed map from outpoint to
// Record, grounded on database.Database.
type Store struct {
	db database.Database
	log *elog.Logger
}

func New(db database.Database) *Store {
	return &Store{db: db, log: elog.New("utxo")}
}

func outpointKey(op blockchain.Outpoint) []byte {
	var buf bytes.Buffer
	_ = op.Encode(&buf)
	return buf.Bytes()
}

// Get returns the record for op, or a KindNotFound *xerrors.Error if op is
// already spent or unknown.
func (s *Store) Get(op blockchain.Outpoint) (Record, error) {
	raw, err := s.db.Get(outpointKey(op))
	if err != nil {
		return Record{}, xerrors.NotFound("utxo")
	}
	rec, err := DecodeRecord(bytes.NewReader(raw))
	if err != nil {
		return Record{}, xerrors.Wrap(xerrors.KindDatabaseError, "utxo", err)
	}
	return rec, nil
}

// Put registers a single output (internal helper behind RegisterOutputs and
// Restore).
func (s *Store) Put(op blockchain.Outpoint, rec Record) error {
	if err := s.db.Put(outpointKey(op), rec.Bytes()); err != nil {
		return xerrors.Wrap(xerrors.KindDatabaseError, "utxo", err)
	}
	return nil
}

// Delete removes op from the set. Deleting an absent outpoint is not an
// error: treats delete as idempotent (a block's own coinbase
// cannot be spent within the same block, so double-deletes never legally
// occur, but reorg bookkeeping prefers not to special-case it).
func (s *Store) Delete(op blockchain.Outpoint) error {
	if err := s.db.Delete(outpointKey(op)); err != nil {
		return xerrors.Wrap(xerrors.KindDatabaseError, "utxo", err)
	}
	return nil
}

// RegisterOutputs writes one Record per output of tx, at the given block
// height, marked coinbase if isCoinbase.
func (s *Store) RegisterOutputs(tx *blockchain.Transaction, isCoinbase bool, height uint32) error {
	hash := tx.Hash()
	for i, out := range tx.Outputs {
		op := blockchain.Outpoint{Hash: hash, Index: uint32(i)}
		rec := Record{Script: out.Script, Value: out.Value, BlockHeight: height, CoinBase: isCoinbase}
		if err := s.Put(op, rec); err != nil {
			return err
		}
	}
	return nil
}

// ApplyBlock registers block's outputs (its first transaction as coinbase,
// the rest as ordinary) and deletes every outpoint its non-coinbase
// transactions spend, per apply_block. It returns the records
// it deleted, paired with their outpoints, so the caller (chainstore) can
// persist them as a SPENT_SNAPSHOT for later reversal.
func (s *Store) ApplyBlock(block *blockchain.Block, height uint32) ([]PairedUtxo, error) {
	if len(block.Txs) == 0 {
		return nil, xerrors.New(xerrors.KindInvalidBlock)
	}

	if err := s.RegisterOutputs(block.Txs[0], true, height); err != nil {
		return nil, err
	}
	for _, tx := range block.Txs[1:] {
		if err := s.RegisterOutputs(tx, false, height); err != nil {
			return nil, err
		}
	}

	var spent []PairedUtxo
	for _, tx := range block.Txs[1:] {
		for _, in := range tx.Inputs {
			rec, err := s.Get(in.PreviousOutput)
			if err != nil {
				s.log.Warn("spending unknown outpoint", "outpoint", in.PreviousOutput)
				continue
			}
			spent = append(spent, PairedUtxo{Outpoint: in.PreviousOutput, Record: rec})
			if err := s.Delete(in.PreviousOutput); err != nil {
				return nil, err
			}
		}
	}
	return spent, nil
}

// Restore reinstates a set of previously spent outpoints (their pre-spend
// records), and deletes the outputs a block created — the inverse of
// ApplyBlock, used by the server's reorganization when it pops a block
// off the best chain.
func (s *Store) Restore(block *blockchain.Block, spent []PairedUtxo) error {
	for _, tx := range block.Txs {
		hash := tx.Hash()
		for i := range tx.Outputs {
			if err := s.Delete(blockchain.Outpoint{Hash: hash, Index: uint32(i)}); err != nil {
				return err
			}
		}
	}
	for _, p := range spent {
		if err := s.Put(p.Outpoint, p.Record); err != nil {
			return err
		}
	}
	return nil
}

// Link resolves tx's unknown previous_outputs against the store, writing
// each hit into deps. Misses are silently skipped — the
// caller (mempool) decides what an incomplete dependency table means for
// its own orphan handling. It reports whether every input is now resolved.
func (s *Store) Link(tx *blockchain.Transaction, deps map[blockchain.Outpoint]Record) bool {
	complete := true
	for _, in := range tx.Inputs {
		if _, ok := deps[in.PreviousOutput]; ok {
			continue
		}
		rec, err := s.Get(in.PreviousOutput)
		if err != nil {
			complete = false
			continue
		}
		deps[in.PreviousOutput] = rec
	}
	return complete
}
