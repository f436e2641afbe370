package mempool

import (
	"sync"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/internal/elog"
	"github.com/EnsicoinDevs/arcd-sub000/utxo"
	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

type waitingOrphan struct {
	orphanHash blockchain.Hash
	outpoint blockchain.Outpoint
}

// Pool is the mempool: a validated pool, an orphan holding area, and
// the reverse dependency index between them.
type Pool struct {
	mu sync.Mutex
	pool map[blockchain.Hash]*LinkedTransaction
	orph map[blockchain.Hash]*LinkedTransaction
	deps map[blockchain.Hash][]waitingOrphan

	utxo *utxo.Store
	log *elog.Logger
}

func New(store *utxo.Store) *Pool {
	return &Pool{
		pool: make(map[blockchain.Hash]*LinkedTransaction),
		orph: make(map[blockchain.Hash]*LinkedTransaction),
		deps: make(map[blockchain.Hash][]waitingOrphan),
		utxo: store,
		log: elog.New("mempool"),
	}
}

// Insert runs admission pipeline for a freshly received
// transaction.
func (p *Pool) Insert(tx *blockchain.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.insertLocked(NewLinked(tx))
}

func (p *Pool) insertLocked(lt *LinkedTransaction) error {
	hash := lt.Tx.Hash()
	if _, ok := p.pool[hash]; ok {
		return nil
	}

	p.utxo.Link(lt.Tx, lt.Deps)

	for _, missingOp := range lt.MissingInputs() {
		if parent, ok := p.pool[missingOp.Hash]; ok {
			for i, out := range parent.Tx.Outputs {
				if uint32(i) == missingOp.Index {
					lt.Deps[missingOp] = utxo.Record{Script: out.Script, Value: out.Value}
				}
			}
			continue
		}
		p.deps[missingOp.Hash] = append(p.deps[missingOp.Hash], waitingOrphan{orphanHash: hash, outpoint: missingOp})
	}

	if lt.Complete() && lt.Validate() == nil {
		p.pool[hash] = lt
		delete(p.orph, hash)
		p.promote(hash)
		return nil
	}

	p.orph[hash] = lt
	return nil
}

// promote re-attempts every orphan waiting on parentHash, recursively
// promoting their own dependents in turn.
func (p *Pool) promote(parentHash blockchain.Hash) {
	waiting := p.deps[parentHash]
	delete(p.deps, parentHash)

	for _, w := range waiting {
		lt, ok := p.orph[w.orphanHash]
		if !ok {
			continue
		}
		if err := p.insertLocked(lt); err != nil {
			p.log.Warn("orphan promotion failed", "tx", w.orphanHash, "error", err)
		}
	}
}

// RemoveOnBlock drops every confirmed transaction from the pool (orphans
// are left: notes they may still be valid against the new tip).
func (p *Pool) RemoveOnBlock(block *blockchain.Block) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, tx := range block.Txs {
		delete(p.pool, tx.Hash())
	}
}

// Return reinserts transactions popped off the best chain during a reorg
//. Failures (e.g. now
// double-spent by the new branch) are logged, not propagated: a dropped
// reorg-orphaned tx is not itself an error condition.
func (p *Pool) Return(txs []*blockchain.Transaction) {
	for _, tx := range txs {
		if err := p.Insert(tx); err != nil {
			p.log.Warn("reorg-returned transaction rejected", "tx", tx.Hash(), "error", err)
		}
	}
}

// GetTx returns a snapshot of every transaction currently in the pool.
func (p *Pool) GetTx() []*blockchain.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*blockchain.Transaction, 0, len(p.pool))
	for _, lt := range p.pool {
		out = append(out, lt.Tx)
	}
	return out
}

// GetByHash returns the pooled transaction with the given hash, if any.
func (p *Pool) GetByHash(h blockchain.Hash) (*blockchain.Transaction, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	lt, ok := p.pool[h]
	if !ok {
		return nil, false
	}
	return lt.Tx, true
}

// GetUnknown partitions inv into transaction entries absent from the pool
// and non-transaction entries, for use by
// CheckInv's "what should I ask for" decision.
func (p *Pool) GetUnknown(inv []wire.InvItem) []wire.InvItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	var unknown []wire.InvItem
	for _, item := range inv {
		if item.Kind != wire.ResourceTransaction {
			unknown = append(unknown, item)
			continue
		}
		if _, ok := p.pool[blockchain.Hash(item.Hash)]; !ok {
			unknown = append(unknown, item)
		}
	}
	return unknown
}

// GetData resolves every transaction entry in inv present in the pool
//, symmetrical to GetUnknown.
func (p *Pool) GetData(inv []wire.InvItem) []*blockchain.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*blockchain.Transaction
	for _, item := range inv {
		if item.Kind != wire.ResourceTransaction {
			continue
		}
		if lt, ok := p.pool[blockchain.Hash(item.Hash)]; ok {
			out = append(out, lt.Tx)
		}
	}
	return out
}
