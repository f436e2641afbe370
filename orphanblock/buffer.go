// Package orphanblock implements a holding area for blocks whose parent
// hasn't arrived yet, keyed by that missing parent hash so they can be
// replayed the moment it does.
package orphanblock

import (
	"sync"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/internal/elog"
)

// Entry pairs a parked block with the identity of the peer (or RPC client)
// it arrived from, so the server can re-feed it through the normal
// new-block handler once its parent is applied.
type Entry struct {
	Source interface{}
	Block *blockchain.Block
}

// MaxBlocks bounds the buffer (a supplement beyond the source narrative:
// an unbounded orphan map is an easy memory-exhaustion vector for any peer
// that free-floods disconnected blocks).
const MaxBlocks = 256

// Buffer is the orphan block map, keyed by parent_hash.
type Buffer struct {
	mu sync.Mutex
	entries map[blockchain.Hash]Entry
	log *elog.Logger
}

func New() *Buffer {
	return &Buffer{entries: make(map[blockchain.Hash]Entry), log: elog.New("orphanblock")}
}

// Add parks block under its own prev_block hash. If the buffer is already
// at MaxBlocks, the oldest-inserted entry's slot is not guaranteed stable
// Go map iteration order, so instead the insert is simply refused — the
// block is re-requested on the next locator exchange rather than evicting
// an arbitrary, possibly-closer-to-completion, entry.
func (b *Buffer) Add(source interface{}, block *blockchain.Block) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	parent := block.Header.PrevBlock
	if _, exists := b.entries[parent]; exists {
		return false
	}
	if len(b.entries) >= MaxBlocks {
		b.log.Warn("orphan block buffer full, dropping", "parent", parent)
		return false
	}
	b.entries[parent] = Entry{Source: source, Block: block}
	return true
}

// RetrieveChain drains the chain of orphans rooted at h: repeatedly looks
// up and removes the entry keyed by the current hash, advances to that
// block's own hash, and returns the resulting sequence in application
// order.
func (b *Buffer) RetrieveChain(h blockchain.Hash) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	var chain []Entry
	cur := h
	for {
		entry, ok := b.entries[cur]
		if !ok {
			break
		}
		delete(b.entries, cur)
		chain = append(chain, entry)
		cur = entry.Block.Hash()
	}
	return chain
}

// Len reports the number of parked blocks.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
