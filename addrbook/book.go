package addrbook

import (
	"math/rand"
	"sync"
	"time"

	"github.com/EnsicoinDevs/arcd-sub000/internal/elog"
	"github.com/EnsicoinDevs/arcd-sub000/internal/xerrors"
	"github.com/EnsicoinDevs/arcd-sub000/storage/database"
	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

// Book is the address book, tracking peer quality and connection history
// so the server can prefer reliable peers when filling out its connection
// slots.
type Book struct {
	mu sync.Mutex
	db database.Database

	noResponseLimit uint8
	retention time.Duration
	givenCount int

	log *elog.Logger
}

func New(db database.Database, noResponseLimit uint8, retention time.Duration) *Book {
	return &Book{db: db, noResponseLimit: noResponseLimit, retention: retention, log: elog.New("addrbook")}
}

func (b *Book) get(peer Peer) (PeerData, bool) {
	raw, err := b.db.Get(peer.key())
	if err != nil {
		return PeerData{}, false
	}
	return decodePeerData(raw), true
}

func (b *Book) set(peer Peer, data PeerData) error {
	if err := b.db.Put(peer.key(), data.bytes()); err != nil {
		return xerrors.Wrap(xerrors.KindDatabaseError, "addrbook", err)
	}
	return nil
}

func (b *Book) remove(peer Peer) error {
	if err := b.db.Delete(peer.key()); err != nil {
		return xerrors.Wrap(xerrors.KindDatabaseError, "addrbook", err)
	}
	return nil
}

// Register overwrites peer's entry, marking it given if isConnected.
// Peers at the unspecified address are ignored.
func (b *Book) Register(peer Peer, isConnected bool) error {
	if peer.IsUnspecified() {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.set(peer, PeerData{Given: isConnected, Timestamp: uint64(time.Now().Unix())})
}

// OnMessage refreshes peer's last-seen timestamp if it is a tracked,
// connected peer.
func (b *Book) OnMessage(peer Peer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.get(peer)
	if !ok {
		return nil
	}
	data.Timestamp = uint64(time.Now().Unix())
	return b.set(peer, data)
}

// OnNoResponse records a keepalive/dial failure:
// decrement the given counter, increment not_responded, clear given, and
// evict once the configured limit is reached.
func (b *Book) OnNoResponse(peer Peer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.get(peer)
	if !ok {
		b.log.Warn("no-response for unlisted peer", "peer", peer)
		return nil
	}
	b.givenCount--
	data.NotResponded++
	data.Given = false

	if data.NotResponded >= b.noResponseLimit {
		return b.remove(peer)
	}
	return b.set(peer, data)
}

// Add inserts or overwrites addr if it is unknown, or known with an older
// timestamp.
func (b *Book) Add(addr wire.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	peer := Peer{IP: addr.IP, Port: addr.Port}
	if existing, ok := b.get(peer); ok && existing.Timestamp >= addr.Timestamp {
		return nil
	}
	return b.set(peer, PeerData{Timestamp: addr.Timestamp})
}

// GetAddr returns every entry not past its retention window, evicting
// those that are.
func (b *Book) GetAddr() ([]wire.Address, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := uint64(time.Now().Unix())
	retentionSecs := uint64(b.retention / time.Second)

	it := b.db.NewIterator()
	defer it.Release()

	var out []wire.Address
	var stale []Peer
	for it.Next() {
		peer := peerFromKey(it.Key())
		data := decodePeerData(it.Value())
		if data.Timestamp+retentionSecs < now {
			stale = append(stale, peer)
			continue
		}
		out = append(out, toWireAddress(peer, data))
	}
	if err := it.Error(); err != nil {
		return nil, xerrors.Wrap(xerrors.KindDatabaseError, "addrbook", err)
	}

	for _, peer := range stale {
		if err := b.remove(peer); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Sample chooses up to n random not-yet-given, not-exhausted peers,
// marking each given for the caller to dial.
func (b *Book) Sample(n int) ([]Peer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	it := b.db.NewIterator()
	defer it.Release()

	var candidates []Peer
	total := 0
	for it.Next() {
		total++
		data := decodePeerData(it.Value())
		if data.Given || data.NotResponded >= b.noResponseLimit {
			continue
		}
		candidates = append(candidates, peerFromKey(it.Key()))
	}
	if err := it.Error(); err != nil {
		return nil, xerrors.Wrap(xerrors.KindDatabaseError, "addrbook", err)
	}

	if b.givenCount >= total {
		return nil, nil
	}

	rand.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	if n > len(candidates) {
		n = len(candidates)
	}
	chosen := candidates[:n]

	for _, peer := range chosen {
		data, ok := b.get(peer)
		if !ok {
			continue
		}
		data.Given = true
		if err := b.set(peer, data); err != nil {
			return nil, err
		}
		b.givenCount++
	}
	return chosen, nil
}

// ResetGiven clears the given flag on every entry.
func (b *Book) ResetGiven() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	it := b.db.NewIterator()
	defer it.Release()

	type kv struct {
		peer Peer
		data PeerData
	}
	var all []kv
	for it.Next() {
		data := decodePeerData(it.Value())
		if data.Given {
			all = append(all, kv{peer: peerFromKey(it.Key()), data: data})
		}
	}
	if err := it.Error(); err != nil {
		return xerrors.Wrap(xerrors.KindDatabaseError, "addrbook", err)
	}
	it.Release()

	for _, e := range all {
		e.data.Given = false
		if err := b.set(e.peer, e.data); err != nil {
			return err
		}
	}
	b.givenCount = 0
	return nil
}
