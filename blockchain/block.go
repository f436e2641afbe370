package blockchain

import (
	"bytes"
	"io"
	"math/big"

	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

// BlockHeader carries everything needed to verify proof of work and link
// the block into the chain.
type BlockHeader struct {
	Version uint32
	Flags []string
	PrevBlock Hash
	MerkleRoot Hash
	Timestamp uint64
	Height uint32
	Target Hash
	Nonce uint64
}

func (h *BlockHeader) Encode(w io.Writer) error {
	if err := wire.WriteUint32(w, h.Version); err != nil {
		return err
	}
	if err := wire.WriteStringList(w, h.Flags); err != nil {
		return err
	}
	if err := wire.WriteHash(w, h.PrevBlock); err != nil {
		return err
	}
	if err := wire.WriteHash(w, h.MerkleRoot); err != nil {
		return err
	}
	if err := wire.WriteUint64(w, h.Timestamp); err != nil {
		return err
	}
	if err := wire.WriteUint32(w, h.Height); err != nil {
		return err
	}
	if err := wire.WriteHash(w, h.Target); err != nil {
		return err
	}
	return wire.WriteUint64(w, h.Nonce)
}

func DecodeBlockHeader(r io.Reader) (*BlockHeader, error) {
	h := &BlockHeader{}
	var err error
	if h.Version, err = wire.ReadUint32(r); err != nil {
		return nil, err
	}
	if h.Flags, err = wire.ReadStringList(r); err != nil {
		return nil, err
	}
	if h.PrevBlock, err = wire.ReadHash(r); err != nil {
		return nil, err
	}
	if h.MerkleRoot, err = wire.ReadHash(r); err != nil {
		return nil, err
	}
	if h.Timestamp, err = wire.ReadUint64(r); err != nil {
		return nil, err
	}
	if h.Height, err = wire.ReadUint32(r); err != nil {
		return nil, err
	}
	if h.Target, err = wire.ReadHash(r); err != nil {
		return nil, err
	}
	if h.Nonce, err = wire.ReadUint64(r); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *BlockHeader) Bytes() []byte {
	var buf bytes.Buffer
	_ = h.Encode(&buf)
	return buf.Bytes()
}

// Hash is double-SHA-256 of the serialized header.
func (h *BlockHeader) Hash() Hash {
	return DoubleSHA256(h.Bytes())
}

// Block is a header plus its transaction list, the first of which is
// the coinbase.
type Block struct {
	Header BlockHeader
	Txs []*Transaction
}

func (b *Block) Encode(w io.Writer) error {
	if err := b.Header.Encode(w); err != nil {
		return err
	}
	if err := wire.WriteVarUint(w, uint64(len(b.Txs))); err != nil {
		return err
	}
	for _, tx := range b.Txs {
		if err := tx.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

func DecodeBlock(r io.Reader) (*Block, error) {
	header, err := DecodeBlockHeader(r)
	if err != nil {
		return nil, err
	}
	n, err := wire.ReadVarUint(r)
	if err != nil {
		return nil, err
	}
	txs := make([]*Transaction, 0, n)
	for i := uint64(0); i < n; i++ {
		tx, err := DecodeTransaction(r)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return &Block{Header: *header, Txs: txs}, nil
}

func (b *Block) Bytes() []byte {
	var buf bytes.Buffer
	_ = b.Encode(&buf)
	return buf.Bytes()
}

// Hash is the block header's hash; transactions do not affect it directly
// (they are committed to via MerkleRoot).
func (b *Block) Hash() Hash { return b.Header.Hash() }

// Coinbase is the first transaction of the block.
func (b *Block) Coinbase() *Transaction {
	if len(b.Txs) == 0 {
		return nil
	}
	return b.Txs[0]
}

// Sanity checks block-level invariants: non-empty tx list,
// coinbase height flag, and PoW target met. It does not check per-tx
// sanity, merkle root, or height linkage against a parent — those require
// chain context and are checked by chainstore/server.
func (b *Block) Sanity() error {
	if len(b.Txs) == 0 {
		return errEmptyTxList
	}
	if !IsCoinbaseHeightFlag(b.Coinbase().Flags, b.Header.Height) {
		return errBadCoinbaseHeight
	}
	if !MeetsTarget(b.Hash(), b.Header.Target) {
		return errTargetNotMet
	}
	return nil
}

// MeetsTarget reports whether hash, read as a big-endian unsigned integer,
// is strictly less than target.
func MeetsTarget(hash, target Hash) bool {
	return new(big.Int).SetBytes(hash[:]).Cmp(new(big.Int).SetBytes(target[:])) < 0
}

// Work is a block's individual contribution to cumulative work: (2^256-1)
// minus the target, interpreted as unsigned integers.
func Work(target Hash) *big.Int {
	maxWork := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	return new(big.Int).Sub(maxWork, new(big.Int).SetBytes(target[:]))
}
