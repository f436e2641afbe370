// Package addrbook implements the address book: a persistent map from
// peer identity to quality-tracking data, used to seed outbound dials
// and answer GetAddr requests.
package addrbook

import (
	"encoding/binary"
	"net"

	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

// Peer is an IPv6-mapped address and port, the address book's key.
type Peer struct {
	IP [16]byte
	Port uint16
}

func (p Peer) key() []byte {
	buf := make([]byte, 18)
	copy(buf, p.IP[:])
	binary.BigEndian.PutUint16(buf[16:], p.Port)
	return buf
}

func peerFromKey(k []byte) Peer {
	var p Peer
	copy(p.IP[:], k[:16])
	p.Port = binary.BigEndian.Uint16(k[16:18])
	return p
}

// IsUnspecified reports whether p's address is the unspecified address
//.
func (p Peer) IsUnspecified() bool {
	return net.IP(p.IP[:]).IsUnspecified()
}

// PeerData is the quality counters tracked per peer.
type PeerData struct {
	Given bool
	NotResponded uint8
	Timestamp uint64
}

func (d PeerData) bytes() []byte {
	buf := make([]byte, 10)
	if d.Given {
		buf[0] = 1
	}
	buf[1] = d.NotResponded
	binary.BigEndian.PutUint64(buf[2:], d.Timestamp)
	return buf
}

func decodePeerData(b []byte) PeerData {
	return PeerData{
		Given: b[0] == 1,
		NotResponded: b[1],
		Timestamp: binary.BigEndian.Uint64(b[2:]),
	}
}

func toWireAddress(p Peer, d PeerData) wire.Address {
	return wire.Address{Timestamp: d.Timestamp, IP: p.IP, Port: p.Port}
}
