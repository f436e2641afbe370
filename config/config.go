// Package config holds the single immutable configuration struct threaded
// through construction of every component: network magic, implementation
// string, default port etc. are configuration constants, not mutable
// globals, and are never read from module scope.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/naoina/toml"
)

// DBBackend selects the storage/database backend (leveldb/badger).
type DBBackend string

const (
	DBLevelDB DBBackend = "leveldb"
	DBBadger  DBBackend = "badger"
)

// Config is passed by value/pointer at construction time and never mutated
// afterwards.
type Config struct {
	// Identity and wire constants.
	Magic           uint32
	ImplementationName string
	ProtocolVersion uint32
	DefaultPort     uint16

	// Persistence.
	DataDir  string
	DBType   DBBackend
	DBCache  int
	DBHandles int

	// Peer limits.
	MaxPeers          int
	InitialSyncPeers  int
	ReFillThreshold   int
	PeerChannelSize   int
	ServerChannelSize int

	// Timeouts.
	DialTimeout     time.Duration
	ProbeTimeout    time.Duration
	KeepaliveEvery  time.Duration

	// Address book.
	AddrNotRespondedLimit uint8
	AddrRetention         time.Duration

	// Chain constants.
	IdealBlockTime   time.Duration
	RetargetInterval uint32
	PastAncestorSpan uint32
	GenesisTarget    [32]byte
	BlockVersion     uint32

	// Orphan buffer bound. orphanblock.Buffer does not read it; the buffer
	// is bounded by its own MaxBlocks constant.
	MaxOrphanBlocks int

	// Local RPC surface.
	RPCListenAddr  string
	HTTPGatewayAddr string
}

// Default returns the baseline configuration: a fully-populated value that
// the caller may selectively override before constructing the server.
func Default() Config {
	return Config{
		Magic:              0xE781ACD1,
		ImplementationName: "ensicoind",
		ProtocolVersion:    1,
		DefaultPort:        4224,

		DataDir:   defaultDataDir(),
		DBType:    DBLevelDB,
		DBCache:   128,
		DBHandles: 256,

		MaxPeers:          64,
		InitialSyncPeers:  4,
		ReFillThreshold:   8,
		PeerChannelSize:   2048,
		ServerChannelSize: 4096,

		DialTimeout:    2 * time.Second,
		ProbeTimeout:   500 * time.Millisecond,
		KeepaliveEvery: 42 * time.Second,

		AddrNotRespondedLimit: 3,
		AddrRetention:         3 * time.Hour,

		IdealBlockTime:   10 * time.Minute,
		RetargetInterval: 2016,
		PastAncestorSpan: 2016,
		GenesisTarget:    genesisTarget(),
		BlockVersion:     0,

		MaxOrphanBlocks: 256,

		RPCListenAddr:   "localhost:4225",
		HTTPGatewayAddr: "localhost:4226",
	}
}

// genesisTarget builds the genesis target: big-endian
// [0,0,15,0,...,0].
func genesisTarget() [32]byte {
	var t [32]byte
	t[2] = 15
	return t
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", ".ensicoind")
	}
	return filepath.Join(home, ".ensicoind")
}

// Load decodes a TOML configuration file over a base Default() value,
// layering the file's settings over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ResolvePath resolves a path relative to the configured data directory,
// mirroring node/service.go's ServiceContext.resolvePath.
func (c Config) ResolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}
