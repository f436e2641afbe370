package wire

import (
	"bytes"
	"io"
)

// Message-type tags, (literal bytes, zero-padded to 12).
const (
	TypeWhoami = "whoami"
	TypeWhoamiAck = "whoamiack"
	TypeGetAddr = "getaddr"
	TypeAddr = "addr"
	TypeGetBlocks = "getblocks"
	TypeGetMempool = "getmempool"
	TypeInv = "inv"
	TypeGetData = "getdata"
	TypeNotFound = "notfound"
	TypePing = "2plus2is4"
	TypePong = "minus1thats3"
	TypeBlock = "block"
	TypeTx = "tx"
)

// ResourceKind is the inventory vector's resource-type field.
type ResourceKind uint32

const (
	ResourceTransaction ResourceKind = 0
	ResourceBlock ResourceKind = 1
)

// Message is any payload that can be framed and sent over the wire.
type Message interface {
	Type() string
	Encode(w io.Writer) error
}

// Decode reconstructs a typed Message from a raw Frame. Block/Tx payloads
// are returned as opaque bytes (RawBlock/RawTx): decoding them into
// blockchain.Block/blockchain.Transaction is left to the caller, to avoid a
// wire<->blockchain import cycle (blockchain.Block.Encode/Decode itself
// uses this package's primitives).
func Decode(f Frame) (Message, error) {
	r := bytes.NewReader(f.Payload)
	switch f.Type {
	case TypeWhoami:
		return decodeWhoami(r)
	case TypeWhoamiAck:
		return &WhoamiAck{}, nil
	case TypeGetAddr:
		return &GetAddr{}, nil
	case TypeAddr:
		return decodeAddr(r)
	case TypeGetBlocks:
		return decodeGetBlocks(r)
	case TypeGetMempool:
		return &GetMempool{}, nil
	case TypeInv:
		items, err := decodeInvItems(r)
		return &Inv{Items: items}, err
	case TypeGetData:
		items, err := decodeInvItems(r)
		return &GetData{Items: items}, err
	case TypeNotFound:
		items, err := decodeInvItems(r)
		return &NotFound{Items: items}, err
	case TypePing:
		return &Ping{}, nil
	case TypePong:
		return &Pong{}, nil
	case TypeBlock:
		return &RawBlock{Payload: f.Payload}, nil
	case TypeTx:
		return &RawTx{Payload: f.Payload}, nil
	default:
		return &Unknown{RawType: f.Type, Payload: f.Payload}, nil
	}
}

// Address is Peer identity plus the address book's last-seen
// timestamp, carried over the wire in Addr/Whoami messages: a 64-bit
// timestamp, a 16-byte IPv6-mapped address, and a port.
type Address struct {
	Timestamp uint64
	IP [16]byte
	Port uint16
}

func writeAddress(w io.Writer, a Address) error {
	if err := WriteUint64(w, a.Timestamp); err != nil {
		return err
	}
	if _, err := w.Write(a.IP[:]); err != nil {
		return err
	}
	return WriteUint16(w, a.Port)
}

func readAddress(r io.Reader) (Address, error) {
	var a Address
	ts, err := ReadUint64(r)
	if err != nil {
		return a, err
	}
	a.Timestamp = ts
	if _, err := io.ReadFull(r, a.IP[:]); err != nil {
		return a, err
	}
	port, err := ReadUint16(r)
	a.Port = port
	return a, err
}

// Whoami is the handshake greeting: the sender's own address
// and protocol version.
type Whoami struct {
	Version uint32
	Address Address
}

func (m *Whoami) Type() string { return TypeWhoami }
func (m *Whoami) Encode(w io.Writer) error {
	if err := WriteUint32(w, m.Version); err != nil {
		return err
	}
	return writeAddress(w, m.Address)
}

func decodeWhoami(r io.Reader) (*Whoami, error) {
	version, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	addr, err := readAddress(r)
	if err != nil {
		return nil, err
	}
	return &Whoami{Version: version, Address: addr}, nil
}

// WhoamiAck closes the handshake.
type WhoamiAck struct{}

func (m *WhoamiAck) Type() string { return TypeWhoamiAck }
func (m *WhoamiAck) Encode(w io.Writer) error { return nil }

// GetAddr requests the peer's address book snapshot.
type GetAddr struct{}

func (m *GetAddr) Type() string { return TypeGetAddr }
func (m *GetAddr) Encode(w io.Writer) error { return nil }

// Addr carries a batch of peer addresses.
type Addr struct {
	Addresses []Address
}

func (m *Addr) Type() string { return TypeAddr }
func (m *Addr) Encode(w io.Writer) error {
	if err := WriteVarUint(w, uint64(len(m.Addresses))); err != nil {
		return err
	}
	for _, a := range m.Addresses {
		if err := writeAddress(w, a); err != nil {
			return err
		}
	}
	return nil
}

func decodeAddr(r io.Reader) (*Addr, error) {
	n, err := ReadVarUint(r)
	if err != nil {
		return nil, err
	}
	addrs := make([]Address, 0, n)
	for i := uint64(0); i < n; i++ {
		a, err := readAddress(r)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, a)
	}
	return &Addr{Addresses: addrs}, nil
}

// GetBlocks is a block locator request:
// the sender's recent-tip list, newest first, plus a stop hash (all-zero
// meaning "up to the responder's best tip").
type GetBlocks struct {
	Locator []Hash
	StopHash Hash
}

func (m *GetBlocks) Type() string { return TypeGetBlocks }
func (m *GetBlocks) Encode(w io.Writer) error {
	if err := WriteVarUint(w, uint64(len(m.Locator))); err != nil {
		return err
	}
	for _, h := range m.Locator {
		if err := WriteHash(w, h); err != nil {
			return err
		}
	}
	return WriteHash(w, m.StopHash)
}

func decodeGetBlocks(r io.Reader) (*GetBlocks, error) {
	n, err := ReadVarUint(r)
	if err != nil {
		return nil, err
	}
	locator := make([]Hash, 0, n)
	for i := uint64(0); i < n; i++ {
		h, err := ReadHash(r)
		if err != nil {
			return nil, err
		}
		locator = append(locator, h)
	}
	stop, err := ReadHash(r)
	if err != nil {
		return nil, err
	}
	return &GetBlocks{Locator: locator, StopHash: stop}, nil
}

// GetMempool is reserved; the node currently ignores it on receipt.
type GetMempool struct{}

func (m *GetMempool) Type() string { return TypeGetMempool }
func (m *GetMempool) Encode(w io.Writer) error { return nil }

// InvItem is one inventory vector entry (resource-type + hash).
type InvItem struct {
	Kind ResourceKind
	Hash Hash
}

func writeInvItems(w io.Writer, items []InvItem) error {
	if err := WriteVarUint(w, uint64(len(items))); err != nil {
		return err
	}
	for _, it := range items {
		if err := WriteUint32(w, uint32(it.Kind)); err != nil {
			return err
		}
		if err := WriteHash(w, it.Hash); err != nil {
			return err
		}
	}
	return nil
}

func decodeInvItems(r io.Reader) ([]InvItem, error) {
	n, err := ReadVarUint(r)
	if err != nil {
		return nil, err
	}
	items := make([]InvItem, 0, n)
	for i := uint64(0); i < n; i++ {
		kind, err := ReadUint32(r)
		if err != nil {
			return nil, err
		}
		h, err := ReadHash(r)
		if err != nil {
			return nil, err
		}
		items = append(items, InvItem{Kind: ResourceKind(kind), Hash: h})
	}
	return items, nil
}

// Inv advertises available resources.
type Inv struct{ Items []InvItem }

func (m *Inv) Type() string { return TypeInv }
func (m *Inv) Encode(w io.Writer) error { return writeInvItems(w, m.Items) }

// GetData requests resources previously advertised via Inv.
type GetData struct{ Items []InvItem }

func (m *GetData) Type() string { return TypeGetData }
func (m *GetData) Encode(w io.Writer) error { return writeInvItems(w, m.Items) }

// NotFound is reserved; the node currently only decodes it.
type NotFound struct{ Items []InvItem }

func (m *NotFound) Type() string { return TypeNotFound }
func (m *NotFound) Encode(w io.Writer) error { return writeInvItems(w, m.Items) }

// Ping/Pong implement the keepalive exchange.
type Ping struct{}

func (m *Ping) Type() string { return TypePing }
func (m *Ping) Encode(w io.Writer) error { return nil }

type Pong struct{}

func (m *Pong) Type() string { return TypePong }
func (m *Pong) Encode(w io.Writer) error { return nil }

// RawBlock/RawTx carry a block/transaction in their canonical serialized
// form; decoding into blockchain.Block/blockchain.Transaction happens one
// layer up (see package doc on Decode).
type RawBlock struct{ Payload []byte }

func (m *RawBlock) Type() string { return TypeBlock }
func (m *RawBlock) Encode(w io.Writer) error { _, err := w.Write(m.Payload); return err }

type RawTx struct{ Payload []byte }

func (m *RawTx) Type() string { return TypeTx }
func (m *RawTx) Encode(w io.Writer) error { _, err := w.Write(m.Payload); return err }

// Unknown is any frame whose type tag is not in the known set;
// says to log and drop it.
type Unknown struct {
	RawType string
	Payload []byte
}

func (m *Unknown) Type() string { return m.RawType }
func (m *Unknown) Encode(w io.Writer) error { _, err := w.Write(m.Payload); return err }

// Encode serializes msg into a Frame ready for WriteFrame.
func Encode(msg Message) (Frame, error) {
	var buf bytes.Buffer
	if err := msg.Encode(&buf); err != nil {
		return Frame{}, err
	}
	return Frame{Type: msg.Type(), Payload: buf.Bytes()}, nil
}
