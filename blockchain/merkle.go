package blockchain

// MerkleRoot computes the merkle root of a transaction-hash list:
// iteratively hash pairs; duplicate the last element of an odd-count
// level; duplicate a single element if the list has exactly one.
func MerkleRoot(hashes []Hash) Hash {
	if len(hashes) == 0 {
		return ZeroHash
	}
	level := make([]Hash, len(hashes))
	copy(level, hashes)

	if len(level) == 1 {
		return DoubleSHA256(append(append([]byte{}, level[0][:]...), level[0][:]...))
	}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			buf := make([]byte, 0, HashSizeBytes*2)
			buf = append(buf, level[i][:]...)
			buf = append(buf, level[i+1][:]...)
			next = append(next, DoubleSHA256(buf))
		}
		level = next
	}
	return level[0]
}

const HashSizeBytes = 32

// TransactionHashes extracts the hash list MerkleRoot expects.
func TransactionHashes(txs []*Transaction) []Hash {
	hashes := make([]Hash, len(txs))
	for i, tx := range txs {
		hashes[i] = tx.Hash()
	}
	return hashes
}
