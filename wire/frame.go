package wire

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/EnsicoinDevs/arcd-sub000/internal/xerrors"
)

// HeaderSize is magic(4) + type(12) + payload_len(8): 24 header bytes
// precede any payload.
const HeaderSize = 4 + 12 + 8

// TypeTagSize is the fixed, zero-padded ASCII message-type tag width.
const TypeTagSize = 12

// Frame is the wire unit: magic || type || payload_len || payload.
type Frame struct {
	Type string
	Payload []byte
}

func typeTag(s string) [TypeTagSize]byte {
	var tag [TypeTagSize]byte
	copy(tag[:], s)
	return tag
}

func tagString(tag [TypeTagSize]byte) string {
	i := bytes.IndexByte(tag[:], 0)
	if i < 0 {
		i = TypeTagSize
	}
	return string(tag[:i])
}

// WriteFrame serializes and writes one frame.
func WriteFrame(w io.Writer, magic uint32, f Frame) error {
	tag := typeTag(f.Type)

	header := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(header[0:4], magic)
	copy(header[4:16], tag[:])
	binary.BigEndian.PutUint64(header[16:24], uint64(len(f.Payload)))

	if _, err := w.Write(header); err != nil {
		return xerrors.Wrap(xerrors.KindIoError, "frame header", err)
	}
	if len(f.Payload) > 0 {
		if _, err := w.Write(f.Payload); err != nil {
			return xerrors.Wrap(xerrors.KindIoError, "frame payload", err)
		}
	}
	return nil
}

// ReadFrame blocks until a full frame (header, then payload once its
// length is known) has arrived: it accepts a frame only once all 24
// header bytes are available, then waits until the full payload is
// buffered.
func ReadFrame(r *bufio.Reader, expectedMagic uint32) (Frame, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return Frame{}, xerrors.Wrap(xerrors.KindIoError, "frame header", err)
	}

	magic := binary.BigEndian.Uint32(header[0:4])
	if magic != expectedMagic {
		return Frame{}, xerrors.New(xerrors.KindInvalidMagic)
	}

	var tag [TypeTagSize]byte
	copy(tag[:], header[4:16])

	payloadLen := binary.BigEndian.Uint64(header[16:24])
	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, xerrors.Wrap(xerrors.KindIoError, "frame payload", err)
		}
	}

	return Frame{Type: tagString(tag), Payload: payload}, nil
}
