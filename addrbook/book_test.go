package addrbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/EnsicoinDevs/arcd-sub000/storage/database"
	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

func peer(b byte, port uint16) Peer {
	var p Peer
	p.IP[15] = b
	p.Port = port
	return p
}

func TestRegisterIgnoresUnspecified(t *testing.T) {
	book := New(database.NewMemDatabase(), 3, time.Hour)
	require.NoError(t, book.Register(Peer{}, true))

	addrs, err := book.GetAddr()
	require.NoError(t, err)
	require.Empty(t, addrs)
}

func TestRegisterThenGetAddr(t *testing.T) {
	book := New(database.NewMemDatabase(), 3, time.Hour)
	p := peer(1, 8080)
	require.NoError(t, book.Register(p, false))

	addrs, err := book.GetAddr()
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	require.Equal(t, p.Port, addrs[0].Port)
}

func TestOnNoResponseEvictsAfterLimit(t *testing.T) {
	book := New(database.NewMemDatabase(), 2, time.Hour)
	p := peer(2, 9000)
	require.NoError(t, book.Register(p, true))

	require.NoError(t, book.OnNoResponse(p))
	addrs, err := book.GetAddr()
	require.NoError(t, err)
	require.Len(t, addrs, 1)

	require.NoError(t, book.OnNoResponse(p))
	addrs, err = book.GetAddr()
	require.NoError(t, err)
	require.Empty(t, addrs)
}

func TestAddKeepsNewerTimestamp(t *testing.T) {
	book := New(database.NewMemDatabase(), 3, time.Hour)
	p := peer(3, 7000)

	require.NoError(t, book.Add(wire.Address{IP: p.IP, Port: p.Port, Timestamp: 100}))
	require.NoError(t, book.Add(wire.Address{IP: p.IP, Port: p.Port, Timestamp: 50}))

	data, ok := book.get(p)
	require.True(t, ok)
	require.Equal(t, uint64(100), data.Timestamp)

	require.NoError(t, book.Add(wire.Address{IP: p.IP, Port: p.Port, Timestamp: 200}))
	data, ok = book.get(p)
	require.True(t, ok)
	require.Equal(t, uint64(200), data.Timestamp)
}

func TestGetAddrEvictsStaleEntries(t *testing.T) {
	book := New(database.NewMemDatabase(), 3, time.Minute)
	p := peer(4, 6000)
	require.NoError(t, book.set(p, PeerData{Timestamp: uint64(time.Now().Add(-time.Hour).Unix())}))

	addrs, err := book.GetAddr()
	require.NoError(t, err)
	require.Empty(t, addrs)

	_, ok := book.get(p)
	require.False(t, ok, "stale entry should have been evicted")
}

func TestSampleMarksGivenAndRespectsExhaustion(t *testing.T) {
	book := New(database.NewMemDatabase(), 1, time.Hour)
	a, b := peer(5, 1000), peer(6, 1001)
	require.NoError(t, book.Register(a, false))
	require.NoError(t, book.Register(b, false))

	chosen, err := book.Sample(10)
	require.NoError(t, err)
	require.Len(t, chosen, 2)
	require.Equal(t, 2, book.givenCount)

	// All peers are now given, so a further sample yields nothing.
	chosen, err = book.Sample(10)
	require.NoError(t, err)
	require.Empty(t, chosen)
}

func TestResetGivenClearsFlags(t *testing.T) {
	book := New(database.NewMemDatabase(), 3, time.Hour)
	p := peer(7, 2000)
	require.NoError(t, book.Register(p, true))

	require.NoError(t, book.ResetGiven())
	data, ok := book.get(p)
	require.True(t, ok)
	require.False(t, data.Given)
	require.Equal(t, 0, book.givenCount)
}
