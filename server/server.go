// Package server implements the single coordinator loop: one goroutine
// owns the chain store, UTXO store, mempool, address book, and orphan
// buffer, serializing every mutation behind one inbound channel of
// ConnectionMessages so the lock order (chain before mempool before
// utxo) is enforced by construction rather than by discipline.
package server

import (
	"net"
	"strconv"
	"sync/atomic"

	"github.com/EnsicoinDevs/arcd-sub000/addrbook"
	"github.com/EnsicoinDevs/arcd-sub000/chainstore"
	"github.com/EnsicoinDevs/arcd-sub000/config"
	"github.com/EnsicoinDevs/arcd-sub000/internal/elog"
	"github.com/EnsicoinDevs/arcd-sub000/mempool"
	"github.com/EnsicoinDevs/arcd-sub000/orphanblock"
	"github.com/EnsicoinDevs/arcd-sub000/p2p"
	"github.com/EnsicoinDevs/arcd-sub000/utxo"
	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

// Server is the coordinator.
type Server struct {
	cfg config.Config
	log *elog.Logger

	chain *chainstore.Store
	utxoSet *utxo.Store
	mempool *mempool.Pool
	addrs *addrbook.Book
	orphans *orphanblock.Buffer
	listener net.Listener

	inbound chan p2p.ConnectionMessage

	connections map[uint64]chan<- p2p.ServerMessage
	connectionCount int
	syncCounter int
	nextPeerID uint64
}

// New wires together the already-constructed stores into a coordinator;
// it does not start the accept loop until Run is called.
func New(cfg config.Config, chain *chainstore.Store, utxoSet *utxo.Store, pool *mempool.Pool, addrs *addrbook.Book, orphans *orphanblock.Buffer) *Server {
	return &Server{
		cfg: cfg,
		log: elog.New("server"),
		chain: chain,
		utxoSet: utxoSet,
		mempool: pool,
		addrs: addrs,
		orphans: orphans,
		inbound: make(chan p2p.ConnectionMessage, cfg.ServerChannelSize),
		connections: make(map[uint64]chan<- p2p.ServerMessage),
		syncCounter: cfg.InitialSyncPeers,
	}
}

func (s *Server) allocatePeerID() uint64 {
	return atomic.AddUint64(&s.nextPeerID, 1)
}

// Run binds the listening socket, starts the accept loop, and processes
// ConnectionMessages until a Quit is handled or ctxDone fires.
func (s *Server) Run(ctxDone <-chan struct{}) error {
	ln, err := net.Listen("tcp", net.JoinHostPort("0.0.0.0", portString(s.cfg.DefaultPort)))
	if err != nil {
		return err
	}
	s.listener = ln
	s.log.Info("listening", "addr", ln.Addr().String())

	go s.acceptLoop()

	for {
		select {
		case msg := <-s.inbound:
			cont, err := s.handleMessage(msg)
			if err != nil {
				s.log.Error("handling connection message failed", "err", err)
			}
			if !cont {
				return nil
			}
		case <-ctxDone:
			s.enqueueLocal(p2p.QuitContent{})
		}
	}
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.log.Warn("accept failed", "err", err)
			return
		}
		s.enqueueLocal(p2p.NewConnectionContent{Conn: conn})
	}
}

func (s *Server) enqueueLocal(content p2p.ConnectionMessageContent) {
	s.inbound <- p2p.ConnectionMessage{Source: p2p.ServerSource, Content: content}
}

// Quit posts a graceful QuitContent onto the inbound channel; it is the
// hook an external signal handler (cmd/ensicoind) calls.
func (s *Server) Quit() {
	s.enqueueLocal(p2p.QuitContent{})
}

func (s *Server) send(id uint64, msg p2p.ServerMessage) {
	ch, ok := s.connections[id]
	if !ok {
		s.log.Warn("could not send to unknown connection", "id", id)
		return
	}
	select {
	case ch <- msg:
	default:
		s.log.Warn("connection inbound queue full", "id", id)
	}
}

func (s *Server) broadcast(msg p2p.ServerMessage) {
	for id := range s.connections {
		s.send(id, msg)
	}
}

func (s *Server) broadcastInv(items []wire.InvItem) {
	if len(items) == 0 {
		return
	}
	s.broadcast(p2p.SendMessage{Message: &wire.Inv{Items: items}})
}

// findNewPeers dials up to n peers sampled from the address book.
func (s *Server) findNewPeers(n int) {
	peers, err := s.addrs.Sample(n)
	if err != nil {
		s.log.Warn("could not sample address book", "err", err)
		return
	}
	for _, peer := range peers {
		s.dial(peer)
	}
}

func (s *Server) dial(peer addrbook.Peer) {
	id := s.allocatePeerID()
	addr := net.JoinHostPort(net.IP(peer.IP[:]).String(), portString(peer.Port))
	conn, err := p2p.Dial(addr, id, s.inbound, s.cfg.DefaultPort, s.cfg.ProtocolVersion, s.cfg.Magic)
	if err != nil {
		s.log.Warn("could not dial peer", "addr", addr, "err", err)
		return
	}
	_ = conn
}

func portString(p uint16) string {
	return strconv.Itoa(int(p))
}

func addrToPeer(addr wire.Address) addrbook.Peer {
	return addrbook.Peer{IP: addr.IP, Port: addr.Port}
}
