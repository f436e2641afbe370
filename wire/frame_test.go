package wire

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

const testMagic = 0xE781ACD1

func TestFrameRoundTrip(t *testing.T) {
	msg := &Whoami{Version: 1, Address: Address{Port: 4224}}
	frame, err := Encode(msg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, testMagic, frame))

	got, err := ReadFrame(bufio.NewReader(&buf), testMagic)
	require.NoError(t, err)
	require.Equal(t, frame, got)

	decoded, err := Decode(got)
	require.NoError(t, err)
	require.Equal(t, msg, decoded)
}

func TestFrameInvalidMagic(t *testing.T) {
	msg := &Ping{}
	frame, err := Encode(msg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, testMagic, frame))

	_, err = ReadFrame(bufio.NewReader(&buf), testMagic+1)
	require.Error(t, err)
}

func TestFrameWaitsForFullPayload(t *testing.T) {
	msg := &GetBlocks{Locator: []Hash{{1}, {2}}, StopHash: Hash{3}}
	frame, err := Encode(msg)
	require.NoError(t, err)

	var full bytes.Buffer
	require.NoError(t, WriteFrame(&full, testMagic, frame))

	// Feed the header plus a partial payload and then end the stream;
	// ReadFrame keeps reading for the full payload_len bytes and, when they
	// never arrive, returns an error rather than a truncated frame.
	partial := full.Bytes()[:HeaderSize+2]
	r := bufio.NewReader(bytes.NewReader(partial))
	_, err = ReadFrame(r, testMagic)
	require.Error(t, err)
}
