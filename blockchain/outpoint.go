package blockchain

import (
	"io"

	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

// Outpoint identifies one output of one transaction.
type Outpoint struct {
	Hash Hash
	Index uint32
}

func (o Outpoint) Encode(w io.Writer) error {
	if err := wire.WriteHash(w, o.Hash); err != nil {
		return err
	}
	return wire.WriteUint32(w, o.Index)
}

func DecodeOutpoint(r io.Reader) (Outpoint, error) {
	h, err := wire.ReadHash(r)
	if err != nil {
		return Outpoint{}, err
	}
	idx, err := wire.ReadUint32(r)
	if err != nil {
		return Outpoint{}, err
	}
	return Outpoint{Hash: h, Index: idx}, nil
}
