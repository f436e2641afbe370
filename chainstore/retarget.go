package chainstore

import (
	"math/big"
	"time"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/internal/xerrors"
)

var maxTarget = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Retarget computes the target a candidate block at candidateHeight,
// extending prevHash, must meet. Below height retargetInterval the target
// is constant (the chain's genesis target, inherited via the parent
// block's own target). At every nonzero multiple of retargetInterval
// (2016, 4032, ... with the default interval) the target is recomputed
// from the interval elapsed since the block 2016 positions back; at all
// other heights the parent's target is inherited.
//
// time_diff is measured against the candidate block's own declared
// timestamp, not the wall clock — see DESIGN.md's resolution of the
// corresponding open question.
func (s *Store) Retarget(prevHash blockchain.Hash, candidateHeight uint32, candidateTimestamp uint64, idealBlockTime time.Duration, retargetInterval uint32) (blockchain.Hash, error) {
	prevBlock, err := s.GetBlock(prevHash)
	if err != nil {
		return blockchain.Hash{}, xerrors.NotFound("prev-block")
	}
	if retargetInterval == 0 || candidateHeight < retargetInterval-1 || candidateHeight%retargetInterval != 0 {
		return prevBlock.Header.Target, nil
	}

	ancestorHash, err := s.GetPast2016(prevHash)
	if err != nil {
		genesis, gerr := s.GenesisHash()
		if gerr != nil {
			return blockchain.Hash{}, gerr
		}
		ancestorHash = genesis
	}
	ancestor, err := s.GetBlock(ancestorHash)
	if err != nil {
		return blockchain.Hash{}, xerrors.NotFound("retarget-ancestor")
	}

	ideal := int64(idealBlockTime / time.Second)
	if ideal <= 0 {
		ideal = 1
	}
	timeDiff := int64(candidateTimestamp) - int64(ancestor.Header.Timestamp)
	min, max := ideal/4, ideal*4
	if timeDiff < min {
		timeDiff = min
	}
	if timeDiff > max {
		timeDiff = max
	}

	oldTarget := new(big.Int).SetBytes(prevBlock.Header.Target[:])
	newTarget := new(big.Int).Mul(oldTarget, big.NewInt(timeDiff))
	newTarget.Div(newTarget, big.NewInt(ideal))
	if newTarget.Cmp(maxTarget) > 0 {
		newTarget = maxTarget
	}

	var out blockchain.Hash
	raw := newTarget.Bytes()
	copy(out[len(out)-len(raw):], raw)
	return out, nil
}
