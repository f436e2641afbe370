// Package mempool implements the transaction pool: an admission pipeline
// linking each candidate transaction's inputs against the UTXO store and
// the pool itself, parking incomplete transactions as orphans, and
// evicting pool entries once their block is confirmed.
package mempool

import (
	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/utxo"
)

// LinkedTransaction augments a transaction with resolved records for each
// input it could find — by copy, never by pointer into the UTXO store.
type LinkedTransaction struct {
	Tx *blockchain.Transaction
	Deps map[blockchain.Outpoint]utxo.Record
}

// NewLinked wraps tx with an empty dependency table.
func NewLinked(tx *blockchain.Transaction) *LinkedTransaction {
	return &LinkedTransaction{Tx: tx, Deps: make(map[blockchain.Outpoint]utxo.Record)}
}

// Complete reports whether every input of Tx has a resolved dependency.
func (lt *LinkedTransaction) Complete() bool {
	for _, in := range lt.Tx.Inputs {
		if _, ok := lt.Deps[in.PreviousOutput]; !ok {
			return false
		}
	}
	return true
}

// MissingInputs returns the previous_outputs still unresolved.
func (lt *LinkedTransaction) MissingInputs() []blockchain.Outpoint {
	var missing []blockchain.Outpoint
	for _, in := range lt.Tx.Inputs {
		if _, ok := lt.Deps[in.PreviousOutput]; !ok {
			missing = append(missing, in.PreviousOutput)
		}
	}
	return missing
}
