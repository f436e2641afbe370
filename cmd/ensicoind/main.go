// Command ensicoind runs a full ensicoin node: the peer-to-peer server,
// its local stores, and the gRPC/HTTP control surfaces — mirroring the
// teacher's cmd/kcn entrypoint's flag-parse/configure/run shape.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/EnsicoinDevs/arcd-sub000/addrbook"
	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/chainstore"
	"github.com/EnsicoinDevs/arcd-sub000/config"
	"github.com/EnsicoinDevs/arcd-sub000/internal/elog"
	"github.com/EnsicoinDevs/arcd-sub000/mempool"
	"github.com/EnsicoinDevs/arcd-sub000/orphanblock"
	"github.com/EnsicoinDevs/arcd-sub000/rpc"
	"github.com/EnsicoinDevs/arcd-sub000/rpc/httpgw"
	"github.com/EnsicoinDevs/arcd-sub000/server"
	"github.com/EnsicoinDevs/arcd-sub000/storage/database"
	"github.com/EnsicoinDevs/arcd-sub000/utxo"
)

var configFileFlag = cli.StringFlag{
	Name:  "config",
	Usage: "TOML configuration file; defaults are used for anything it omits",
}

func main() {
	app := cli.NewApp()
	app.Name = "ensicoind"
	app.Usage = "a full ensicoin node"
	app.Flags = []cli.Flag{configFileFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ensicoind:", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	log := elog.New("main")

	cfg := config.Default()
	if path := ctx.String(configFileFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	db, err := database.Open(string(cfg.DBType), cfg.DataDir+"/chain", cfg.DBCache, cfg.DBHandles)
	if err != nil {
		return fmt.Errorf("opening chain store: %w", err)
	}
	utxoDB, err := database.Open(string(cfg.DBType), cfg.DataDir+"/utxo", cfg.DBCache, cfg.DBHandles)
	if err != nil {
		return fmt.Errorf("opening utxo store: %w", err)
	}
	addrDB, err := database.Open(string(cfg.DBType), cfg.DataDir+"/addr", cfg.DBCache, cfg.DBHandles)
	if err != nil {
		return fmt.Errorf("opening address book: %w", err)
	}

	chain := chainstore.New(db)
	utxoSet := utxo.New(utxoDB)

	if _, err := chain.BestHash(); err != nil {
		genesis := blockchain.Genesis(cfg.GenesisTarget)
		if err := chain.Bootstrap(genesis); err != nil {
			return fmt.Errorf("bootstrapping genesis: %w", err)
		}
		log.Info("bootstrapped genesis block", "hash", genesis.Hash())
	}

	pool := mempool.New(utxoSet)
	addrs := addrbook.New(addrDB, cfg.AddrNotRespondedLimit, cfg.AddrRetention)
	orphans := orphanblock.New()

	srv := server.New(cfg, chain, utxoSet, pool, addrs, orphans)

	svc := rpc.NewService(srv)
	grpcServer, err := rpc.Listen(cfg.RPCListenAddr, svc)
	if err != nil {
		return fmt.Errorf("starting rpc listener: %w", err)
	}
	defer grpcServer.GracefulStop()

	gw := httpgw.New(svc)
	httpServer := httpgw.Listen(cfg.HTTPGatewayAddr, gw)
	defer httpServer.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("received shutdown signal")
		srv.Quit()
	}()

	// never-firing: Quit is routed through srv.Quit() above, not this
	// channel, which exists only to satisfy Run's external-cancel hook.
	never := make(chan struct{})
	return srv.Run(never)
}
