// Package utxo implements the UTXO store: a disk-backed mapping from
// outpoint to utxo record, with block-granular apply/restore operations
// and the linking primitive used to resolve a transaction's parent
// outputs for script validation.
package utxo

import (
	"bytes"
	"io"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

// Record is a spendable output as stored in the UTXO set: its script,
// value, and the provenance needed for coinbase maturity checks.
type Record struct {
	Script []byte
	Value uint64
	BlockHeight uint32
	CoinBase bool
}

func (r Record) Encode(w io.Writer) error {
	if err := wire.WriteBytes(w, r.Script); err != nil {
		return err
	}
	if err := wire.WriteUint64(w, r.Value); err != nil {
		return err
	}
	if err := wire.WriteUint32(w, r.BlockHeight); err != nil {
		return err
	}
	var cb byte
	if r.CoinBase {
		cb = 1
	}
	_, err := w.Write([]byte{cb})
	return err
}

func DecodeRecord(r io.Reader) (Record, error) {
	script, err := wire.ReadBytes(r)
	if err != nil {
		return Record{}, err
	}
	value, err := wire.ReadUint64(r)
	if err != nil {
		return Record{}, err
	}
	height, err := wire.ReadUint32(r)
	if err != nil {
		return Record{}, err
	}
	var cb [1]byte
	if _, err := io.ReadFull(r, cb[:]); err != nil {
		return Record{}, err
	}
	return Record{Script: script, Value: value, BlockHeight: height, CoinBase: cb[0] == 1}, nil
}

func (r Record) Bytes() []byte {
	var buf bytes.Buffer
	_ = r.Encode(&buf)
	return buf.Bytes()
}

// PairedUtxo pairs an outpoint with its record, used in spent-utxo
// snapshots for block reversal.
type PairedUtxo struct {
	Outpoint blockchain.Outpoint
	Record Record
}

func (p PairedUtxo) Encode(w io.Writer) error {
	if err := p.Outpoint.Encode(w); err != nil {
		return err
	}
	return p.Record.Encode(w)
}

func DecodePairedUtxo(r io.Reader) (PairedUtxo, error) {
	op, err := blockchain.DecodeOutpoint(r)
	if err != nil {
		return PairedUtxo{}, err
	}
	rec, err := DecodeRecord(r)
	if err != nil {
		return PairedUtxo{}, err
	}
	return PairedUtxo{Outpoint: op, Record: rec}, nil
}

// EncodePairedUtxoList/DecodePairedUtxoList (de)serialize the
// SPENT_SNAPSHOT value: a varuint-prefixed list of PairedUtxo.
func EncodePairedUtxoList(w io.Writer, list []PairedUtxo) error {
	if err := wire.WriteVarUint(w, uint64(len(list))); err != nil {
		return err
	}
	for _, p := range list {
		if err := p.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

func DecodePairedUtxoList(r io.Reader) ([]PairedUtxo, error) {
	n, err := wire.ReadVarUint(r)
	if err != nil {
		return nil, err
	}
	out := make([]PairedUtxo, 0, n)
	for i := uint64(0); i < n; i++ {
		p, err := DecodePairedUtxo(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
