// Package wire implements the bit-exact wire/storage codec: big-endian
// fixed-width integers, marker-byte varuints, length-prefixed strings and
// lists, raw 32-byte hashes, and the magic+type+length frame used on the
// network. A hand-rolled encoding/binary-based codec, not a pulled-in
// serialization framework — see DESIGN.md.
package wire

import (
	"encoding/binary"
	"io"
)

// WriteVarUint encodes n using a marker-byte scheme:
// [0,252] one byte; 0xFD + u16; 0xFE + u32; 0xFF + u64.
func WriteVarUint(w io.Writer, n uint64) error {
	switch {
	case n <= 252:
		_, err := w.Write([]byte{byte(n)})
		return err
	case n <= 0xFFFF:
		buf := make([]byte, 3)
		buf[0] = 0xFD
		binary.BigEndian.PutUint16(buf[1:], uint16(n))
		_, err := w.Write(buf)
		return err
	case n <= 0xFFFFFFFF:
		buf := make([]byte, 5)
		buf[0] = 0xFE
		binary.BigEndian.PutUint32(buf[1:], uint32(n))
		_, err := w.Write(buf)
		return err
	default:
		buf := make([]byte, 9)
		buf[0] = 0xFF
		binary.BigEndian.PutUint64(buf[1:], n)
		_, err := w.Write(buf)
		return err
	}
}

// ReadVarUint decodes a varuint written by WriteVarUint.
func ReadVarUint(r io.Reader) (uint64, error) {
	var marker [1]byte
	if _, err := io.ReadFull(r, marker[:]); err != nil {
		return 0, err
	}
	switch marker[0] {
	case 0xFD:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint16(buf[:])), nil
	case 0xFE:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint32(buf[:])), nil
	case 0xFF:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint64(buf[:]), nil
	default:
		return uint64(marker[0]), nil
	}
}

// VarUintLen returns the number of bytes WriteVarUint would emit for n,
// used by frame builders that need to precompute a payload length.
func VarUintLen(n uint64) int {
	switch {
	case n <= 252:
		return 1
	case n <= 0xFFFF:
		return 3
	case n <= 0xFFFFFFFF:
		return 5
	default:
		return 9
	}
}
