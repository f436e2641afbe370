package p2p

import (
	"bufio"
	"bytes"
	"net"
	"sync"
	"time"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/internal/elog"
	"github.com/EnsicoinDevs/arcd-sub000/internal/xerrors"
	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

// outboundCapacity bounds the per-connection write queue: a
// slow peer backs up its own queue rather than blocking the rest of the
// node.
const outboundCapacity = 2048

// keepaliveInterval is the 42-second Ping cadence.
const keepaliveInterval = 42 * time.Second

const dialTimeout = 2 * time.Second

// State is the handshake state machine.
type State int

const (
	StateIdle State = iota
	StateInitiated
	StateReplied
	StateConfirm
	StateAck
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitiated:
		return "initiated"
	case StateReplied:
		return "replied"
	case StateConfirm:
		return "confirm"
	case StateAck:
		return "ack"
	default:
		return "unknown"
	}
}

// Connection owns one peer's TCP stream: a dedicated writer goroutine
// drains its outbound queue, a reader goroutine decodes inbound frames
// and dispatches them, and a control loop relays server-issued
// ServerMessages and drives the keepalive.
type Connection struct {
	conn net.Conn
	reader *bufio.Reader

	magic uint32
	version uint32

	state State
	identity RemoteIdentity
	originPort uint16
	waitingPing bool

	outbound chan wire.Message
	inbound chan ServerMessage
	toServer chan<- ConnectionMessage

	done chan struct{}
	closeOnce sync.Once
	log *elog.Logger
}

func (c *Connection) closeDone() {
	c.closeOnce.Do(func() { close(c.done) })
}

func createSelfAddress(originPort uint16) wire.Address {
	return wire.Address{Timestamp: uint64(time.Now().Unix()), Port: originPort}
}

func newConnection(conn net.Conn, id uint64, toServer chan<- ConnectionMessage, originPort uint16, version, magic uint32) *Connection {
	remote := conn.RemoteAddr().String()
	c := &Connection{
		conn: conn,
		reader: bufio.NewReader(conn),
		magic: magic,
		version: version,
		state: StateIdle,
		identity: RemoteIdentity{ID: id, TCPAddress: remote},
		originPort: originPort,
		outbound: make(chan wire.Message, outboundCapacity),
		inbound: make(chan ServerMessage, outboundCapacity),
		toServer: toServer,
		done: make(chan struct{}),
		log: elog.New("p2p", "remote", remote, "id", id),
	}
	return c
}

// Accept wraps an already-connected inbound socket and starts its
// goroutines, leaving the handshake in State Idle.
func Accept(conn net.Conn, id uint64, toServer chan<- ConnectionMessage, originPort uint16, version, magic uint32) *Connection {
	c := newConnection(conn, id, toServer, originPort, version, magic)
	c.log.Info("accepted connection")
	c.start()
	return c
}

// Dial opens an outbound connection and immediately sends a Whoami,
// entering State Initiated.
func Dial(addr string, id uint64, toServer chan<- ConnectionMessage, originPort uint16, version, magic uint32) (*Connection, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindIoError, "dial "+addr, err)
	}
	c := newConnection(conn, id, toServer, originPort, version, magic)
	c.state = StateInitiated
	c.log.Info("connected")

	whoami := &wire.Whoami{Version: c.version, Address: createSelfAddress(originPort)}
	if err := c.writeFrame(whoami); err != nil {
		conn.Close()
		return nil, xerrors.Wrap(xerrors.KindInvalidConnectionState, "handshake", err)
	}

	c.start()
	return c, nil
}

func (c *Connection) start() {
	go c.readLoop()
	go c.writeLoop()
	go c.controlLoop()
}

// Inbound returns the channel the server uses to post ServerMessages to
// this connection (paired with RegisterContent.Sender).
func (c *Connection) Inbound() chan<- ServerMessage { return c.inbound }

func (c *Connection) source() Source { return ConnectionSource(c.identity) }

func (c *Connection) notifyServer(content ConnectionMessageContent) {
	select {
	case c.toServer <- ConnectionMessage{Source: c.source(), Content: content}:
	case <-c.done:
	}
}

func (c *Connection) writeFrame(msg wire.Message) error {
	f, err := wire.Encode(msg)
	if err != nil {
		return err
	}
	return wire.WriteFrame(c.conn, c.magic, f)
}

// send is the gate of send(): only a handshake message, or
// any message once the handshake reached State Ack, may leave the queue.
func (c *Connection) send(msg wire.Message) {
	if c.state != StateAck && msg.Type() != wire.TypeWhoami && msg.Type() != wire.TypeWhoamiAck {
		c.log.Warn("dropping message, connection not ready", "state", c.state, "type", msg.Type())
		return
	}
	select {
	case c.outbound <- msg:
	default:
		c.log.Warn("outbound queue full, terminating connection", "type", msg.Type())
		c.terminate(xerrors.Wrap(xerrors.KindChannelError, "outbound queue full", nil))
	}
}

func (c *Connection) writeLoop() {
	for {
		select {
		case msg := <-c.outbound:
			if err := c.writeFrame(msg); err != nil {
				c.log.Warn("write failed", "err", err)
				c.terminate(err)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Connection) readLoop() {
	for {
		f, err := wire.ReadFrame(c.reader, c.magic)
		if err != nil {
			c.terminate(err)
			return
		}
		msg, err := wire.Decode(f)
		if err != nil {
			c.log.Warn("could not decode frame", "type", f.Type, "err", err)
			continue
		}
		if err := c.handleMessage(msg); err != nil {
			c.terminate(err)
			return
		}
	}
}

func (c *Connection) controlLoop() {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case sm := <-c.inbound:
			switch m := sm.(type) {
			case TerminateMessage:
				c.log.Info("terminated by server", "reason", m.Reason)
				c.conn.Close()
				c.closeDone()
				return
			case SendMessage:
				c.send(m.Message)
			}
		case <-ticker.C:
			if c.waitingPing {
				c.terminate(xerrors.New(xerrors.KindNoResponse))
				return
			}
			c.waitingPing = true
			c.send(&wire.Ping{})
		case <-c.done:
			return
		}
	}
}

func (c *Connection) terminate(cause error) {
	c.log.Warn("connection terminated", "err", cause)
	c.conn.Close()
	c.notifyServer(CleanContent{ID: c.identity.ID})
	c.closeDone()
}

// handleMessage implements per-state dispatch, mirrored
// directly from the handshake table: Whoami/WhoamiAck drive the state
// machine locally, every other message type is translated into a
// ConnectionMessageContent and forwarded to the server.
func (c *Connection) handleMessage(msg wire.Message) error {
	switch m := msg.(type) {
	case *wire.Whoami:
		return c.handleWhoami(m)
	case *wire.WhoamiAck:
		return c.handleWhoamiAck()
	case *wire.Ping:
		c.send(&wire.Pong{})
	case *wire.Pong:
		c.waitingPing = false
	case *wire.GetAddr:
		c.notifyServer(RetrieveAddrContent{})
	case *wire.Addr:
		c.notifyServer(NewAddrContent{Addresses: m.Addresses})
	case *wire.Inv:
		c.notifyServer(CheckInvContent{Inv: *m})
	case *wire.GetData:
		c.notifyServer(RetrieveContent{GetData: *m})
	case *wire.GetBlocks:
		c.notifyServer(SyncBlocksContent{GetBlocks: *m})
	case *wire.RawBlock:
		block, err := blockchain.DecodeBlock(bytes.NewReader(m.Payload))
		if err != nil {
			c.log.Warn("could not decode block", "err", err)
			return nil
		}
		c.notifyServer(NewBlockContent{Block: block})
	case *wire.RawTx:
		tx, err := blockchain.DecodeTransaction(bytes.NewReader(m.Payload))
		if err != nil {
			c.log.Warn("could not decode transaction", "err", err)
			return nil
		}
		c.notifyServer(NewTransactionContent{Tx: tx})
	case *wire.NotFound, *wire.GetMempool:
		// reserved, acknowledged but otherwise ignored.
	default:
		c.log.Warn("unknown message type", "type", msg.Type())
	}
	return nil
}

func (c *Connection) handleWhoami(m *wire.Whoami) error {
	switch c.state {
	case StateIdle:
		c.send(&wire.Whoami{Version: c.version, Address: createSelfAddress(c.originPort)})
		c.send(&wire.WhoamiAck{})
		c.identity.Peer.IP = m.Address.IP
		c.identity.Peer.Port = m.Address.Port
		if m.Version < c.version {
			c.version = m.Version
		}
		c.state = StateConfirm
	case StateInitiated:
		c.identity.Peer.IP = m.Address.IP
		c.identity.Peer.Port = m.Address.Port
		if m.Version < c.version {
			c.version = m.Version
		}
		c.state = StateReplied
	default:
		c.log.Warn("whoami received in unexpected state", "state", c.state)
	}
	return nil
}

func (c *Connection) handleWhoamiAck() error {
	switch c.state {
	case StateConfirm:
		c.state = StateAck
		c.notifyServer(RegisterContent{Sender: c.inbound, Identity: c.identity})
	case StateReplied:
		c.state = StateAck
		c.notifyServer(RegisterContent{Sender: c.inbound, Identity: c.identity})
		c.send(&wire.WhoamiAck{})
	default:
		c.log.Warn("whoamiack received in unexpected state", "state", c.state)
	}
	return nil
}
