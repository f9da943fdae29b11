package fcom

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paralmehmet/swanky/channel"
)

func TestFrameRoundTrip(t *testing.T) {
	buf := new(bytes.Buffer)
	ch := channel.New(buf)

	msg := initMessage{Version: protocolVersion, FieldLen: 8, Setup: 1 << 10, Extend: 1 << 12}
	require.NoError(t, writeFrame(ch, msg))
	require.NoError(t, ch.Flush())

	got, err := readFrame(ch)
	require.NoError(t, err)
	require.Equal(t, msg, got)
}

// The frame length is read before any validation, so an oversized header must
// be rejected without allocating what it claims.
func TestReadFrameRejectsOversizedHeader(t *testing.T) {
	buf := new(bytes.Buffer)
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], 1<<31)
	buf.Write(hdr[:])

	_, err := readFrame(channel.New(buf))
	require.ErrorContains(t, err, "byte limit")
}
