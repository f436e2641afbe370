package chainstore

import "github.com/EnsicoinDevs/arcd-sub000/blockchain"

// GenerateGetBlocks builds the block locator sent to peers to probe for
// fork divergence: the stored last-ten list reversed (newest
// first), with the genesis hash appended when the list is full.
func (s *Store) GenerateGetBlocks() ([]blockchain.Hash, error) {
	lastTen, err := s.LastTen()
	if err != nil {
		return nil, err
	}
	locator := make([]blockchain.Hash, len(lastTen))
	for i, h := range lastTen {
		locator[len(lastTen)-1-i] = h
	}
	if len(lastTen) == 10 {
		genesis, err := s.GenesisHash()
		if err != nil {
			return nil, err
		}
		locator = append(locator, genesis)
	}
	return locator, nil
}

// GenerateInv answers a peer's locator: find the last locator
// entry known locally, then walk forward on the best chain from there up
// to stop (if known locally) or best_block (if stop is unset or unknown).
func (s *Store) GenerateInv(locator []blockchain.Hash, stop blockchain.Hash) ([]blockchain.Hash, error) {
	var (
		found blockchain.Hash
		foundOk bool
	)
	for _, h := range locator {
		if s.HasBlock(h) {
			found = h
			foundOk = true
			break
		}
	}
	if !foundOk {
		return nil, nil
	}

	limit, err := s.BestHash()
	if err != nil {
		return nil, err
	}
	var zero blockchain.Hash
	if stop != zero && s.HasBlock(stop) {
		limit = stop
	}

	var out []blockchain.Hash
	cur := found
	for {
		next, err := s.GetNext(cur)
		if err != nil {
			break
		}
		out = append(out, next)
		if next == limit {
			break
		}
		cur = next
	}
	return out, nil
}
