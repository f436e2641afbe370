package chainstore

import "github.com/EnsicoinDevs/arcd-sub000/blockchain"

// Key prefixes give the single underlying KV namespace its logical roles
// (BLOCK, NEXT, SPENT_SNAPSHOT, WORK, PAST2016, STATS) over one database
// handle rather than one handle per role.
const (
	prefixBlock     = 'b'
	prefixNext      = 'n'
	prefixSpent     = 's'
	prefixWork      = 'w'
	prefixPast2016  = 'p'
	prefixStatsKind = 't'
)

func blockKey(h blockchain.Hash) []byte    { return append([]byte{prefixBlock}, h[:]...) }
func nextKey(h blockchain.Hash) []byte     { return append([]byte{prefixNext}, h[:]...) }
func spentKey(h blockchain.Hash) []byte    { return append([]byte{prefixSpent}, h[:]...) }
func workKey(h blockchain.Hash) []byte     { return append([]byte{prefixWork}, h[:]...) }
func past2016Key(h blockchain.Hash) []byte { return append([]byte{prefixPast2016}, h[:]...) }

const (
	statsGenesis = "genesis_block"
	statsBest    = "best_block"
	statsLastTen = "10_last"
)

func statsKey(name string) []byte { return append([]byte{prefixStatsKind}, []byte(name)...) }
