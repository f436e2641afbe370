// Package blockchain defines the core data model: hashes, outpoints,
// transactions and blocks, their canonical serialization, and the
// merkle-root and genesis constants used to bootstrap a chain.
package blockchain

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

// Hash is a 32-byte double-SHA-256 digest.
type Hash = wire.Hash

// DoubleSHA256 hashes data twice with SHA-256, the digest used throughout
// for transaction/block/signature hashes.
func DoubleSHA256(data []byte) Hash {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second
}

// SingleSHA256 is used only where a single round is required (the
// outpoints/outputs commitments folded into the signature hash).
func SingleSHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ZeroHash is the all-zero hash used as genesis.prev_block and as the
// "up to best tip" sentinel stop-hash.
var ZeroHash Hash

// HashString renders a hash as hex, most-significant byte first.
func HashString(h Hash) string { return hex.EncodeToString(h[:]) }

// HashLess compares two hashes as big-endian unsigned integers (used by PoW
// target comparison: a header hash interpreted as a big-endian integer
// must be strictly less than the target).
func HashLess(a, b Hash) bool {
	return bytesToBigInt(a[:]).Cmp(bytesToBigInt(b[:])) < 0
}

func bytesToBigInt(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}
