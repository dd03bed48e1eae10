package chacha20poly1305

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

// RFC 8439 §2.8.2 test vector.
func TestSealKnownAnswer(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = byte(0x80 + i)
	}
	var nonce [12]byte
	copy(nonce[:], hexBytes(t, "070000004041424344454647"))
	aad := hexBytes(t, "50515253c0c1c2c3c4c5c6c7")
	pt := []byte("Ladies and Gentlemen of the class of '99: If I could offer you only one tip for the future, sunscreen would be it.")

	got := Seal(key, nonce, pt, aad)
	want := "d31a8d34648e60db7b86afbc53ef7ec2a4aded51296e08fea9e2b5a736ee62d" +
		"63dbea45e8ca9671282fafb69da92728b1a71de0a9e060b2905d6a5b67ecd3b3" +
		"692ddbd7f2d778b8c9803aee328091b58fab324e4fad675945585808b4831d7" +
		"bc3ff4def08e4b7a9de576d26586cec64b6116" +
		"1ae10b594f09e26a7e902ecbd0600691"
	if hex.EncodeToString(got) != want {
		t.Fatalf("Seal = %x, want %s", got, want)
	}
}

func TestOpenRoundTrip(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = byte(i)
	}
	var nonce [12]byte
	copy(nonce[:], hexBytes(t, "000000000102030405060708"))
	aad := []byte("header")
	pt := []byte("the quick brown fox jumps over the lazy dog")

	sealed := Seal(key, nonce, pt, aad)
	got, err := Open(key, nonce, sealed, aad)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(got, pt) {
		t.Fatalf("round-trip mismatch: got %q want %q", got, pt)
	}
}

func TestOpenRejectsTamperedTag(t *testing.T) {
	var key [32]byte
	var nonce [12]byte
	pt := []byte("message")

	sealed := Seal(key, nonce, pt, nil)
	sealed[len(sealed)-1] ^= 0xFF

	if _, err := Open(key, nonce, sealed, nil); err != ErrAuthFailed {
		t.Fatalf("Open error = %v, want ErrAuthFailed", err)
	}
}
