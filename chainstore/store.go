// Package chainstore implements the persisted block DAG, the best-chain
// spine, cumulative-work accounting, the retarget ancestor pointer, fork
// detection, and reorganization.
package chainstore

import (
	"bytes"
	"math/big"

	lru "github.com/hashicorp/golang-lru"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/internal/elog"
	"github.com/EnsicoinDevs/arcd-sub000/internal/xerrors"
	"github.com/EnsicoinDevs/arcd-sub000/storage/database"
	"github.com/EnsicoinDevs/arcd-sub000/utxo"
)

// blockCacheSize bounds the in-process LRU fronting BLOCK reads.
const blockCacheSize = 512

// Result is the outcome of AddBlock.
type Result int

const (
	ResultNothing Result = iota
	ResultBestBlock
	ResultFork
)

func (r Result) String() string {
	switch r {
	case ResultBestBlock:
		return "best-block"
	case ResultFork:
		return "fork"
	default:
		return "nothing"
	}
}

// Store is the chain store.
type Store struct {
	db    database.Database
	cache *lru.Cache
	log   *elog.Logger
}

func New(db database.Database) *Store {
	cache, _ := lru.New(blockCacheSize)
	return &Store{db: db, cache: cache, log: elog.New("chainstore")}
}

// Bootstrap writes the genesis block and initializes STATS/WORK. It is a
// no-op if a genesis block is already recorded.
func (s *Store) Bootstrap(genesis *blockchain.Block) error {
	if _, err := s.GenesisHash(); err == nil {
		return nil
	}
	hash := genesis.Hash()
	if err := s.putBlock(hash, genesis); err != nil {
		return err
	}
	if err := s.putWork(hash, big.NewInt(0)); err != nil {
		return err
	}
	if err := s.db.Put(statsKey(statsGenesis), hash[:]); err != nil {
		return xerrors.Wrap(xerrors.KindDatabaseError, "chainstore", err)
	}
	if err := s.db.Put(statsKey(statsBest), hash[:]); err != nil {
		return xerrors.Wrap(xerrors.KindDatabaseError, "chainstore", err)
	}
	return s.putLastTen([]blockchain.Hash{hash})
}

func (s *Store) putBlock(hash blockchain.Hash, block *blockchain.Block) error {
	if err := s.db.Put(blockKey(hash), block.Bytes()); err != nil {
		return xerrors.Wrap(xerrors.KindDatabaseError, "chainstore", err)
	}
	s.cache.Add(hash, block)
	return nil
}

// GetBlock returns the stored block for hash, or a KindNotFound error.
func (s *Store) GetBlock(hash blockchain.Hash) (*blockchain.Block, error) {
	if v, ok := s.cache.Get(hash); ok {
		return v.(*blockchain.Block), nil
	}
	raw, err := s.db.Get(blockKey(hash))
	if err != nil {
		return nil, xerrors.NotFound("block")
	}
	block, err := blockchain.DecodeBlock(bytes.NewReader(raw))
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindDatabaseError, "chainstore", err)
	}
	s.cache.Add(hash, block)
	return block, nil
}

func (s *Store) HasBlock(hash blockchain.Hash) bool {
	ok, _ := s.db.Has(blockKey(hash))
	return ok
}

func (s *Store) putWork(hash blockchain.Hash, w *big.Int) error {
	if err := s.db.Put(workKey(hash), encodeWork(w)); err != nil {
		return xerrors.Wrap(xerrors.KindDatabaseError, "chainstore", err)
	}
	return nil
}

// GetWork returns the cumulative work recorded for hash.
func (s *Store) GetWork(hash blockchain.Hash) (*big.Int, error) {
	raw, err := s.db.Get(workKey(hash))
	if err != nil {
		return nil, xerrors.NotFound("work")
	}
	return decodeWork(raw), nil
}

func (s *Store) putNext(prev, child blockchain.Hash) error {
	if err := s.db.Put(nextKey(prev), child[:]); err != nil {
		return xerrors.Wrap(xerrors.KindDatabaseError, "chainstore", err)
	}
	return nil
}

// GetNext returns the best-chain child of hash, or KindNotFound if hash is
// the current tip (or unknown).
func (s *Store) GetNext(hash blockchain.Hash) (blockchain.Hash, error) {
	raw, err := s.db.Get(nextKey(hash))
	if err != nil {
		return blockchain.Hash{}, xerrors.NotFound("next")
	}
	var h blockchain.Hash
	copy(h[:], raw)
	return h, nil
}

func (s *Store) putSpentSnapshot(hash blockchain.Hash, spent []utxo.PairedUtxo) error {
	var buf bytes.Buffer
	if err := utxo.EncodePairedUtxoList(&buf, spent); err != nil {
		return err
	}
	if err := s.db.Put(spentKey(hash), buf.Bytes()); err != nil {
		return xerrors.Wrap(xerrors.KindDatabaseError, "chainstore", err)
	}
	return nil
}

// GetSpentSnapshot returns the PairedUtxo list a block consumed, as
// recorded when it extended the best chain.
func (s *Store) GetSpentSnapshot(hash blockchain.Hash) ([]utxo.PairedUtxo, error) {
	raw, err := s.db.Get(spentKey(hash))
	if err != nil {
		return nil, xerrors.NotFound("spent-snapshot")
	}
	return utxo.DecodePairedUtxoList(bytes.NewReader(raw))
}

func (s *Store) putPast2016(hash, ancestor blockchain.Hash) error {
	if err := s.db.Put(past2016Key(hash), ancestor[:]); err != nil {
		return xerrors.Wrap(xerrors.KindDatabaseError, "chainstore", err)
	}
	return nil
}

// GetPast2016 returns the hash of the block 2016 positions before hash on
// its chain, if recorded.
func (s *Store) GetPast2016(hash blockchain.Hash) (blockchain.Hash, error) {
	raw, err := s.db.Get(past2016Key(hash))
	if err != nil {
		return blockchain.Hash{}, xerrors.NotFound("past2016")
	}
	var h blockchain.Hash
	copy(h[:], raw)
	return h, nil
}

// GenesisHash returns the bootstrap block's hash.
func (s *Store) GenesisHash() (blockchain.Hash, error) {
	raw, err := s.db.Get(statsKey(statsGenesis))
	if err != nil {
		return blockchain.Hash{}, xerrors.NotFound("genesis")
	}
	var h blockchain.Hash
	copy(h[:], raw)
	return h, nil
}

// BestHash returns the current best-chain tip.
func (s *Store) BestHash() (blockchain.Hash, error) {
	raw, err := s.db.Get(statsKey(statsBest))
	if err != nil {
		return blockchain.Hash{}, xerrors.NotFound("best")
	}
	var h blockchain.Hash
	copy(h[:], raw)
	return h, nil
}

func (s *Store) setBest(hash blockchain.Hash) error {
	if err := s.db.Put(statsKey(statsBest), hash[:]); err != nil {
		return xerrors.Wrap(xerrors.KindDatabaseError, "chainstore", err)
	}
	return nil
}

func (s *Store) putLastTen(list []blockchain.Hash) error {
	var buf bytes.Buffer
	for _, h := range list {
		if err := s.writeHash(&buf, h); err != nil {
			return err
		}
	}
	if err := s.db.Put(statsKey(statsLastTen), buf.Bytes()); err != nil {
		return xerrors.Wrap(xerrors.KindDatabaseError, "chainstore", err)
	}
	return nil
}

func (s *Store) writeHash(buf *bytes.Buffer, h blockchain.Hash) error {
	_, err := buf.Write(h[:])
	return err
}

// LastTen returns the stored ≤10 most recent best-chain tip hashes, oldest
// first.
func (s *Store) LastTen() ([]blockchain.Hash, error) {
	raw, err := s.db.Get(statsKey(statsLastTen))
	if err != nil {
		return nil, nil
	}
	n := len(raw) / 32
	out := make([]blockchain.Hash, n)
	for i := 0; i < n; i++ {
		copy(out[i][:], raw[i*32:(i+1)*32])
	}
	return out, nil
}

func (s *Store) pushLastTen(hash blockchain.Hash) error {
	list, err := s.LastTen()
	if err != nil {
		return err
	}
	list = append(list, hash)
	if len(list) > 10 {
		list = list[len(list)-10:]
	}
	return s.putLastTen(list)
}
