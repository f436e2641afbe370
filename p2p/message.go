// Package p2p implements the per-peer connection: handshake state
// machine, framed read/write loop, keepalive, and the internal message
// types the connection exchanges with the coordinating server.
package p2p

import (
	"net"

	"github.com/EnsicoinDevs/arcd-sub000/addrbook"
	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

// RemoteIdentity names a connected peer: the id the server allocated it,
// its network address, and the raw address string used for logging.
type RemoteIdentity struct {
	ID uint64
	Peer addrbook.Peer
	TCPAddress string
}

// Source is either the server itself (a locally originated event, e.g. a
// freshly accepted socket) or a specific connection.
type Source struct {
	FromServer bool
	Identity RemoteIdentity
}

// ServerSource is the Source value used for server-originated messages.
var ServerSource = Source{FromServer: true}

// ConnectionSource builds the Source value for a message originated by a
// specific connection.
func ConnectionSource(identity RemoteIdentity) Source {
	return Source{Identity: identity}
}

// ConnectionMessage is what a Connection (or the server's own accept/quit
// goroutines) sends into the coordinator's inbound channel.
type ConnectionMessage struct {
	Source Source
	Content ConnectionMessageContent
}

// ConnectionMessageContent is the coordinator's inbound event sum type
//; each concrete type below is one variant.
type ConnectionMessageContent interface {
	isConnectionMessageContent()
}

type NewConnectionContent struct{ Conn net.Conn }
type ConnectionFailedContent struct{ Peer addrbook.Peer }
type QuitContent struct{}
type RetrieveAddrContent struct{}
type NewAddrContent struct{ Addresses []wire.Address }
type VerifiedAddrContent struct{ Address wire.Address }
type RegisterContent struct {
	Sender chan<- ServerMessage
	Identity RemoteIdentity
}
type CleanContent struct{ ID uint64 }
type DisconnectContent struct {
	Err error
	ID uint64
}
type CheckInvContent struct{ Inv wire.Inv }
type RetrieveContent struct{ GetData wire.GetData }
type SyncBlocksContent struct{ GetBlocks wire.GetBlocks }
type ConnectContent struct{ Address wire.Address }
type NewTransactionContent struct{ Tx *blockchain.Transaction }
type NewBlockContent struct{ Block *blockchain.Block }

func (NewConnectionContent) isConnectionMessageContent() {}
func (ConnectionFailedContent) isConnectionMessageContent() {}
func (QuitContent) isConnectionMessageContent() {}
func (RetrieveAddrContent) isConnectionMessageContent() {}
func (NewAddrContent) isConnectionMessageContent() {}
func (VerifiedAddrContent) isConnectionMessageContent() {}
func (RegisterContent) isConnectionMessageContent() {}
func (CleanContent) isConnectionMessageContent() {}
func (DisconnectContent) isConnectionMessageContent() {}
func (CheckInvContent) isConnectionMessageContent() {}
func (RetrieveContent) isConnectionMessageContent() {}
func (SyncBlocksContent) isConnectionMessageContent() {}
func (ConnectContent) isConnectionMessageContent() {}
func (NewTransactionContent) isConnectionMessageContent() {}
func (NewBlockContent) isConnectionMessageContent() {}

// TerminationReason is why the server asked a connection to close.
type TerminationReason int

const (
	ReasonQuit TerminationReason = iota
	ReasonTooManyConnections
	ReasonRequestedTermination
	ReasonNoResponse
)

func (r TerminationReason) String() string {
	switch r {
	case ReasonQuit:
		return "quit"
	case ReasonTooManyConnections:
		return "too many connections"
	case ReasonRequestedTermination:
		return "requested termination"
	case ReasonNoResponse:
		return "no response"
	default:
		return "unknown"
	}
}

// ServerMessage is what the coordinator sends to one Connection.
type ServerMessage interface {
	isServerMessage()
}

type TerminateMessage struct{ Reason TerminationReason }
type SendMessage struct{ Message wire.Message }

func (TerminateMessage) isServerMessage() {}
func (SendMessage) isServerMessage() {}
