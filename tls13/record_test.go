package tls13

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteTLSPlaintextReadRecordRoundTrip(t *testing.T) {
	fragment := []byte("a plaintext handshake fragment")
	rec := writeTLSPlaintext(contentTypeHandshake, fragment)

	ct, got, err := readRecord(bytes.NewReader(rec))
	require.NoError(t, err)
	require.Equal(t, contentTypeHandshake, ct)
	require.Equal(t, fragment, got)
}

func TestReadRecordRejectsOversizedFragment(t *testing.T) {
	header := []byte{byte(contentTypeHandshake), 0x03, 0x03, 0xFF, 0xFF} // declares 65535 bytes
	_, _, err := readRecord(bytes.NewReader(header))
	require.Error(t, err)
	require.Equal(t, Alert{Level: alertLevelFatal, Description: AlertDecodeError}, err)
}

func TestSealRecordOpenRecordRoundTrip(t *testing.T) {
	suite := testSuite128()
	key := make([]byte, suite.keyLen)
	iv := make([]byte, suite.nonceLen)
	sealer := newTrafficKey(suite, key, iv)
	opener := newTrafficKey(suite, key, iv)

	plaintext := []byte("application data")
	rec, err := sealRecord(sealer, contentTypeApplicationData, plaintext)
	require.NoError(t, err)

	outerType, fragment, err := readRecord(bytes.NewReader(rec))
	require.NoError(t, err)
	require.Equal(t, contentTypeApplicationData, outerType)

	innerType, got, err := openRecord(opener, outerType, fragment)
	require.NoError(t, err)
	require.Equal(t, contentTypeApplicationData, innerType)
	require.Equal(t, plaintext, got)
}

func TestOpenRecordRejectsNonApplicationDataOuterType(t *testing.T) {
	suite := testSuite128()
	tk := newTrafficKey(suite, make([]byte, suite.keyLen), make([]byte, suite.nonceLen))
	_, _, err := openRecord(tk, contentTypeHandshake, []byte("anything"))
	require.Error(t, err)
}
