package server

import (
	"net"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/p2p"
	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

// handleMessage is per-content dispatch. The returned bool
// tells Run whether to keep processing (false only on Quit).
func (s *Server) handleMessage(msg p2p.ConnectionMessage) (bool, error) {
	if !msg.Source.FromServer {
		if err := s.addrs.OnMessage(msg.Source.Identity.Peer); err != nil {
			s.log.Warn("could not refresh address book entry", "err", err)
		}
	}

	switch content := msg.Content.(type) {
	case p2p.NewConnectionContent:
		s.handleNewConnection(content.Conn)
	case p2p.RegisterContent:
		s.handleRegister(content)
	case p2p.CleanContent:
		s.handleClean(content.ID)
	case p2p.ConnectionFailedContent:
		if err := s.addrs.OnNoResponse(content.Peer); err != nil {
			s.log.Warn("could not record no-response", "err", err)
		}
		s.maybeFindNewPeers()
	case p2p.DisconnectContent:
		// Reserved; nothing currently acts on it.
	case p2p.RetrieveAddrContent:
		s.handleRetrieveAddr(msg.Source)
	case p2p.NewAddrContent:
		s.handleNewAddr(content.Addresses)
	case p2p.VerifiedAddrContent:
		if err := s.addrs.Add(content.Address); err != nil {
			s.log.Warn("could not add verified address", "err", err)
		}
	case p2p.CheckInvContent:
		s.handleCheckInv(msg.Source, content.Inv)
	case p2p.RetrieveContent:
		s.handleRetrieve(msg.Source, content.GetData)
	case p2p.SyncBlocksContent:
		s.handleSyncBlocks(msg.Source, content.GetBlocks)
	case p2p.ConnectContent:
		s.handleConnect(content.Address)
	case p2p.NewTransactionContent:
		s.handleNewTransaction(content.Tx)
	case p2p.NewBlockContent:
		if err := s.handleNewBlock(content.Block, msg.Source); err != nil {
			return true, err
		}
	case p2p.QuitContent:
		s.handleQuit()
		return false, nil
	}
	return true, nil
}

func (s *Server) handleNewConnection(conn net.Conn) {
	if s.connectionCount >= s.cfg.MaxPeers {
		conn.Close()
		return
	}
	id := s.allocatePeerID()
	p2p.Accept(conn, id, s.inbound, s.cfg.DefaultPort, s.cfg.ProtocolVersion, s.cfg.Magic)
}

func (s *Server) handleRegister(content p2p.RegisterContent) {
	if s.connectionCount >= s.cfg.MaxPeers {
		s.log.Warn("too many connections, rejecting", "id", content.Identity.ID)
		select {
		case content.Sender <- p2p.TerminateMessage{Reason: p2p.ReasonTooManyConnections}:
		default:
		}
		return
	}

	s.connections[content.Identity.ID] = content.Sender
	s.connectionCount++
	if err := s.addrs.Register(content.Identity.Peer, true); err != nil {
		s.log.Warn("could not register peer in address book", "err", err)
	}

	if s.syncCounter > 0 {
		s.syncCounter--
		locator, err := s.chain.GenerateGetBlocks()
		if err != nil {
			s.log.Warn("could not generate block locator", "err", err)
			return
		}
		s.send(content.Identity.ID, p2p.SendMessage{Message: &wire.GetBlocks{Locator: locator}})
		s.send(content.Identity.ID, p2p.SendMessage{Message: &wire.GetMempool{}})
	}
}

func (s *Server) handleClean(id uint64) {
	if _, ok := s.connections[id]; ok {
		delete(s.connections, id)
		s.connectionCount--
	}
	s.maybeFindNewPeers()
}

func (s *Server) maybeFindNewPeers() {
	if s.connectionCount < s.cfg.ReFillThreshold {
		s.findNewPeers(s.cfg.ReFillThreshold)
	}
}

func (s *Server) handleRetrieveAddr(source p2p.Source) {
	if source.FromServer {
		return
	}
	addrs, err := s.addrs.GetAddr()
	if err != nil {
		s.log.Warn("could not build address list", "err", err)
		return
	}
	s.send(source.Identity.ID, p2p.SendMessage{Message: &wire.Addr{Addresses: addrs}})
}

// handleNewAddr does not trust gossiped addresses directly: each is
// handed to probeAddr, which only reports back as VerifiedAddrContent
// once a TCP dial to it succeeds within cfg.ProbeTimeout.
func (s *Server) handleNewAddr(addrs []wire.Address) {
	for _, addr := range addrs {
		go s.probeAddr(addr)
	}
}

// probeAddr dials addr with a bounded timeout and, only on success,
// posts it back to the coordinator as a verified address. It never
// blocks the coordinator goroutine itself.
func (s *Server) probeAddr(addr wire.Address) {
	target := net.JoinHostPort(net.IP(addr.IP[:]).String(), portString(addr.Port))
	conn, err := net.DialTimeout("tcp", target, s.cfg.ProbeTimeout)
	if err != nil {
		return
	}
	conn.Close()
	s.enqueueLocal(p2p.VerifiedAddrContent{Address: addr})
}

func (s *Server) handleCheckInv(source p2p.Source, inv wire.Inv) {
	if source.FromServer {
		return
	}
	blockItems, txHashes := splitInv(inv.Items)
	unknownBlocks := s.unknownBlocks(blockItems)
	unknownTxs := s.mempool.GetUnknown(txHashes)

	unknown := append(unknownBlocks, unknownTxs...)
	if len(unknown) == 0 {
		return
	}
	s.send(source.Identity.ID, p2p.SendMessage{Message: &wire.GetData{Items: unknown}})
}

func splitInv(items []wire.InvItem) (blocks []wire.InvItem, txs []wire.InvItem) {
	for _, it := range items {
		if it.Kind == wire.ResourceBlock {
			blocks = append(blocks, it)
		} else {
			txs = append(txs, it)
		}
	}
	return blocks, txs
}

func (s *Server) unknownBlocks(items []wire.InvItem) []wire.InvItem {
	var unknown []wire.InvItem
	for _, it := range items {
		if !s.chain.HasBlock(it.Hash) {
			unknown = append(unknown, it)
		}
	}
	return unknown
}

func (s *Server) handleRetrieve(source p2p.Source, getData wire.GetData) {
	if source.FromServer {
		return
	}
	var remaining []wire.InvItem
	for _, item := range getData.Items {
		if item.Kind != wire.ResourceBlock {
			remaining = append(remaining, item)
			continue
		}
		block, err := s.chain.GetBlock(item.Hash)
		if err != nil {
			continue
		}
		s.send(source.Identity.ID, p2p.SendMessage{Message: &wire.RawBlock{Payload: block.Bytes()}})
	}

	for _, tx := range s.mempool.GetData(remaining) {
		s.send(source.Identity.ID, p2p.SendMessage{Message: &wire.RawTx{Payload: tx.Bytes()}})
	}
}

func (s *Server) handleSyncBlocks(source p2p.Source, getBlocks wire.GetBlocks) {
	if source.FromServer {
		return
	}
	inv, err := s.chain.GenerateInv(getBlocks.Locator, getBlocks.StopHash)
	if err != nil {
		s.log.Warn("could not generate inv", "err", err)
		return
	}
	if len(inv) == 0 {
		return
	}
	items := make([]wire.InvItem, len(inv))
	for i, h := range inv {
		items[i] = wire.InvItem{Kind: wire.ResourceBlock, Hash: h}
	}
	s.send(source.Identity.ID, p2p.SendMessage{Message: &wire.Inv{Items: items}})
}

func (s *Server) handleConnect(addr wire.Address) {
	peer := addrToPeer(addr)
	if err := s.addrs.Register(peer, true); err != nil {
		s.log.Warn("could not register dial target", "err", err)
	}
	s.dial(peer)
}

func (s *Server) handleNewTransaction(tx *blockchain.Transaction) {
	if err := s.mempool.Insert(tx); err != nil {
		s.log.Warn("could not insert transaction", "err", err)
	}
}

func (s *Server) handleQuit() {
	s.log.Info("shutting down")
	s.broadcast(p2p.TerminateMessage{Reason: p2p.ReasonQuit})
	if err := s.addrs.ResetGiven(); err != nil {
		s.log.Warn("could not reset address book state", "err", err)
	}
	if s.listener != nil {
		s.listener.Close()
	}
}
