package tls13

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterCursorUintRoundTrip(t *testing.T) {
	w := newWriter()
	w.writeUint8(0x42)
	w.writeUint16(0xBEEF)
	w.writeUint24(0x0A0B0C)

	c := newCursor(w.bytes())
	u8, err := c.readUint8()
	require.NoError(t, err)
	require.Equal(t, uint8(0x42), u8)

	u16, err := c.readUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0xBEEF), u16)

	u24, err := c.readUint24()
	require.NoError(t, err)
	require.Equal(t, uint32(0x0A0B0C), u24)
	require.True(t, c.done())
}

func TestWriterCursorOpaqueRoundTrip(t *testing.T) {
	w := newWriter()
	w.writeOpaque8([]byte("short"))
	w.writeOpaque16([]byte("medium length value"))
	w.writeOpaque24(make([]byte, 300))

	c := newCursor(w.bytes())
	v8, err := c.readOpaque8()
	require.NoError(t, err)
	require.Equal(t, []byte("short"), v8)

	v16, err := c.readOpaque16()
	require.NoError(t, err)
	require.Equal(t, []byte("medium length value"), v16)

	v24, err := c.readOpaque24()
	require.NoError(t, err)
	require.Len(t, v24, 300)
	require.True(t, c.done())
}

func TestCursorReadPastEndFails(t *testing.T) {
	c := newCursor([]byte{0x01, 0x02})
	_, err := c.readBytes(3)
	require.Error(t, err)
	require.Equal(t, Alert{Level: alertLevelFatal, Description: AlertDecodeError}, err)
}
