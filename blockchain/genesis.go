package blockchain

// Genesis constructs the bootstrap block: version 0, a single flag, an
// all-zero parent/merkle root, the fixed 2019-05-22 timestamp, nonce 42,
// height 0, and a loose bring-up target, with no transactions.
func Genesis(target Hash) *Block {
	header := BlockHeader{
		Version: 0,
		Flags: []string{"ici cest limag"},
		PrevBlock: ZeroHash,
		MerkleRoot: ZeroHash,
		Timestamp: 1558540052,
		Height: 0,
		Target: target,
		Nonce: 42,
	}
	return &Block{Header: header, Txs: nil}
}
