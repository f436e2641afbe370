package p2p

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

const testMagic = 0xE781ACD1

func readMessage(t *testing.T, r *bufio.Reader) wire.Message {
	t.Helper()
	f, err := wire.ReadFrame(r, testMagic)
	require.NoError(t, err)
	msg, err := wire.Decode(f)
	require.NoError(t, err)
	return msg
}

func writeMessage(t *testing.T, w net.Conn, msg wire.Message) {
	t.Helper()
	f, err := wire.Encode(msg)
	require.NoError(t, err)
	require.NoError(t, wire.WriteFrame(w, testMagic, f))
}

// TestAcceptSideHandshake drives the Idle-side of the handshake: the
// remote speaks first with Whoami, we must reply Whoami+WhoamiAck, then
// receive its WhoamiAck and register with the server.
func TestAcceptSideHandshake(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()

	toServer := make(chan ConnectionMessage, 8)
	conn := Accept(local, 1, toServer, 9999, 1, testMagic)
	defer conn.conn.Close()

	remoteReader := bufio.NewReader(remote)

	writeMessage(t, remote, &wire.Whoami{Version: 1, Address: wire.Address{Port: 1234}})

	msg := readMessage(t, remoteReader)
	_, ok := msg.(*wire.Whoami)
	require.True(t, ok, "expected Whoami reply, got %T", msg)

	msg = readMessage(t, remoteReader)
	_, ok = msg.(*wire.WhoamiAck)
	require.True(t, ok, "expected WhoamiAck, got %T", msg)

	writeMessage(t, remote, &wire.WhoamiAck{})

	select {
	case cm := <-toServer:
		reg, ok := cm.Content.(RegisterContent)
		require.True(t, ok, "expected RegisterContent, got %T", cm.Content)
		require.Equal(t, uint64(1), reg.Identity.ID)
		require.Equal(t, uint16(1234), reg.Identity.Peer.Port)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Register")
	}
}

// TestDialSideHandshake drives the Initiated-side: we speak first, the
// remote replies Whoami then WhoamiAck, and we must answer with our own
// WhoamiAck and register.
func TestDialSideHandshake(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	acceptedCh := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		require.NoError(t, err)
		acceptedCh <- c
	}()

	toServer := make(chan ConnectionMessage, 8)
	conn, err := Dial(ln.Addr().String(), 2, toServer, 5555, 1, testMagic)
	require.NoError(t, err)
	defer conn.conn.Close()

	remote := <-acceptedCh
	defer remote.Close()
	remoteReader := bufio.NewReader(remote)

	msg := readMessage(t, remoteReader)
	_, ok := msg.(*wire.Whoami)
	require.True(t, ok, "expected initial Whoami, got %T", msg)

	writeMessage(t, remote, &wire.Whoami{Version: 1, Address: wire.Address{Port: 4321}})
	writeMessage(t, remote, &wire.WhoamiAck{})

	msg = readMessage(t, remoteReader)
	_, ok = msg.(*wire.WhoamiAck)
	require.True(t, ok, "expected WhoamiAck reply, got %T", msg)

	select {
	case cm := <-toServer:
		reg, ok := cm.Content.(RegisterContent)
		require.True(t, ok, "expected RegisterContent, got %T", cm.Content)
		require.Equal(t, uint64(2), reg.Identity.ID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Register")
	}
}

func TestSendBeforeHandshakeIsDropped(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	toServer := make(chan ConnectionMessage, 8)
	conn := Accept(local, 3, toServer, 9999, 1, testMagic)

	conn.send(&wire.Ping{})
	require.Empty(t, conn.outbound)
}

func TestCleanSentOnFrameError(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()

	toServer := make(chan ConnectionMessage, 8)
	conn := Accept(local, 4, toServer, 9999, 1, testMagic)
	_ = conn

	// Writing garbage that doesn't match the magic forces ReadFrame to
	// error, which must drive a Clean notification to the server.
	_, err := remote.Write([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)

	select {
	case cm := <-toServer:
		clean, ok := cm.Content.(CleanContent)
		require.True(t, ok, "expected CleanContent, got %T", cm.Content)
		require.Equal(t, uint64(4), clean.ID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Clean")
	}
}
