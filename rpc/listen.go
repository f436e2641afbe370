package rpc

import (
	"net"

	"google.golang.org/grpc"

	"github.com/EnsicoinDevs/arcd-sub000/internal/elog"
)

// Listen binds addr and starts serving svc over gRPC in the background,
// returning the grpc.Server so the caller can GracefulStop it on
// shutdown.
func Listen(addr string, svc *Service) (*grpc.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	grpcServer := grpc.NewServer()
	Register(grpcServer, svc)

	log := elog.New("rpc")
	go func() {
		log.Info("rpc listening", "addr", ln.Addr().String())
		if err := grpcServer.Serve(ln); err != nil {
			log.Warn("rpc server stopped", "err", err)
		}
	}()
	return grpcServer, nil
}
