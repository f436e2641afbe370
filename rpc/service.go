package rpc

import (
	"bytes"
	"context"
	"errors"
	"net"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/internal/elog"
	"github.com/EnsicoinDevs/arcd-sub000/internal/xerrors"
	"github.com/EnsicoinDevs/arcd-sub000/server"
	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

// node is the set of Server operations the RPC surface calls into. The
// coordinator is the only writer of chain/mempool/addrbook state, so every
// one of these must ultimately be served from its goroutine; Service
// enqueues rather than touching the stores directly.
type node interface {
	Info() (server.Info, error)
	SubmitTransaction(tx *blockchain.Transaction) error
	SubmitBlock(block *blockchain.Block) error
	ConnectToAddress(addr wire.Address)
	DisconnectPeer(id uint64) error
	BestBlocks(n int) ([]blockchain.Hash, error)
	BlockTemplate(coinbaseScript []byte, now time.Time) (*blockchain.Block, error)
	GetBlockByHash(hash blockchain.Hash) (*blockchain.Block, error)
	GetTxByHash(hash blockchain.Hash) (*blockchain.Transaction, bool)
}

// Service implements the hand-wired Node gRPC service (see ServiceDesc in
// grpc.go) against a running server.Server.
type Service struct {
	node node
	log *elog.Logger
}

func NewService(n *server.Server) *Service {
	return &Service{node: n, log: elog.New("rpc")}
}

func statusFromErr(err error) error {
	if err == nil {
		return nil
	}
	var xerr *xerrors.Error
	if errors.As(err, &xerr) {
		switch xerr.Kind {
		case xerrors.KindNotFound:
			return status.Error(codes.NotFound, err.Error())
		case xerrors.KindInvalidBlock, xerrors.KindParseError, xerrors.KindInvalidMagic:
			return status.Error(codes.InvalidArgument, err.Error())
		default:
			return status.Error(codes.Internal, err.Error())
		}
	}
	return status.Error(codes.Internal, err.Error())
}

func hashFromBytes(b []byte) (blockchain.Hash, error) {
	var h blockchain.Hash
	if len(b) != len(h) {
		return h, status.Errorf(codes.InvalidArgument, "hash must be %d bytes, got %d", len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

func (s *Service) GetInfo(ctx context.Context, req *GetInfoRequest) (*GetInfoReply, error) {
	info, err := s.node.Info()
	if err != nil {
		return nil, statusFromErr(err)
	}
	return &GetInfoReply{
		Implementation: info.Implementation,
		ProtocolVersion: info.ProtocolVersion,
		BestBlockHash: info.BestBlockHash[:],
		BestBlockHeight: info.BestBlockHeight,
		ConnectionCount: info.ConnectionCount,
	}, nil
}

func (s *Service) PublishRawTx(ctx context.Context, req *PublishRawTxRequest) (*PublishRawTxReply, error) {
	tx, err := blockchain.DecodeTransaction(bytes.NewReader(req.Tx))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.node.SubmitTransaction(tx); err != nil {
		return nil, statusFromErr(err)
	}
	return &PublishRawTxReply{}, nil
}

func (s *Service) PublishRawBlock(ctx context.Context, req *PublishRawBlockRequest) (*PublishRawBlockReply, error) {
	block, err := blockchain.DecodeBlock(bytes.NewReader(req.Block))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.node.SubmitBlock(block); err != nil {
		return nil, statusFromErr(err)
	}
	return &PublishRawBlockReply{}, nil
}

// GetBestBlocks streams most-recent-block list, tip first.
func (s *Service) GetBestBlocks(req *GetBestBlocksRequest, stream NodeGetBestBlocksServer) error {
	hashes, err := s.node.BestBlocks(int(req.Count))
	if err != nil {
		return statusFromErr(err)
	}
	for _, h := range hashes {
		block, err := s.node.GetBlockByHash(h)
		if err != nil {
			return statusFromErr(err)
		}
		if err := stream.Send(&GetBestBlocksReply{Hash: h[:], Height: block.Header.Height}); err != nil {
			return err
		}
	}
	return nil
}

// GetBlockTemplate streams a fresh candidate template immediately and then
// every 5 seconds, whether or not the mempool or best block changed,
// closing when the stream's context is cancelled or a send fails. It is a long-lived subscription a miner keeps open rather
// than a single request/reply.
func (s *Service) GetBlockTemplate(req *GetBlockTemplateRequest, stream NodeGetBlockTemplateServer) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	send := func() error {
		block, err := s.node.BlockTemplate(req.CoinbaseScript, time.Now())
		if err != nil {
			return statusFromErr(err)
		}
		txs := make([][]byte, len(block.Txs))
		for i, tx := range block.Txs {
			txs[i] = tx.Bytes()
		}
		return stream.Send(&GetBlockTemplateReply{Header: block.Header.Bytes(), Txs: txs})
	}

	if err := send(); err != nil {
		return err
	}
	for {
		select {
		case <-stream.Context().Done():
			return nil
		case <-ticker.C:
			if err := send(); err != nil {
				return err
			}
		}
	}
}

func (s *Service) ConnectPeer(ctx context.Context, req *ConnectPeerRequest) (*ConnectPeerReply, error) {
	host, portStr, err := net.SplitHostPort(req.Address)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid ip %q", host)
	}
	port, err := parsePort(portStr)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var addr wire.Address
	copy(addr.IP[:], ip.To16())
	addr.Port = port
	s.node.ConnectToAddress(addr)
	return &ConnectPeerReply{}, nil
}

func (s *Service) DisconnectPeer(ctx context.Context, req *DisconnectPeerRequest) (*DisconnectPeerReply, error) {
	if err := s.node.DisconnectPeer(req.PeerID); err != nil {
		return nil, statusFromErr(err)
	}
	return &DisconnectPeerReply{}, nil
}

func (s *Service) GetBlockByHash(ctx context.Context, req *GetBlockByHashRequest) (*GetBlockByHashReply, error) {
	hash, err := hashFromBytes(req.Hash)
	if err != nil {
		return nil, err
	}
	block, err := s.node.GetBlockByHash(hash)
	if err != nil {
		return nil, statusFromErr(err)
	}
	return &GetBlockByHashReply{Block: block.Bytes()}, nil
}

func (s *Service) GetBlockHeaderByHash(ctx context.Context, req *GetBlockHeaderByHashRequest) (*GetBlockHeaderByHashReply, error) {
	hash, err := hashFromBytes(req.Hash)
	if err != nil {
		return nil, err
	}
	block, err := s.node.GetBlockByHash(hash)
	if err != nil {
		return nil, statusFromErr(err)
	}
	return &GetBlockHeaderByHashReply{Header: block.Header.Bytes()}, nil
}

func (s *Service) GetTxByHash(ctx context.Context, req *GetTxByHashRequest) (*GetTxByHashReply, error) {
	hash, err := hashFromBytes(req.Hash)
	if err != nil {
		return nil, err
	}
	tx, found := s.node.GetTxByHash(hash)
	if !found {
		return &GetTxByHashReply{Found: false}, nil
	}
	return &GetTxByHashReply{Tx: tx.Bytes(), Found: true}, nil
}

func parsePort(s string) (uint16, error) {
	var p uint16
	var v int
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, status.Errorf(codes.InvalidArgument, "invalid port %q", s)
		}
		v = v*10 + int(r-'0')
		if v > 65535 {
			return 0, status.Errorf(codes.InvalidArgument, "port out of range %q", s)
		}
	}
	p = uint16(v)
	return p, nil
}
