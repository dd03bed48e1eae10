package gcm

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/silverreef/tls13lab/primitives/aes"
)

func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func newCipher(t *testing.T, key []byte) *aes.Cipher {
	t.Helper()
	c, err := aes.New(key)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// NIST SP 800-38D / McGrew-Viega published test vectors.
func TestSealKnownAnswer(t *testing.T) {
	key := make([]byte, 16)
	iv := make([]byte, 12)

	t.Run("empty plaintext and aad", func(t *testing.T) {
		c := newCipher(t, key)
		out := Seal(c, iv, nil, nil)
		wantTag := "58e2fccefa7e3061367f1d57a4e7455a"
		if hex.EncodeToString(out) != wantTag {
			t.Fatalf("Seal tag = %x, want %s", out, wantTag)
		}
	})

	t.Run("one zero block", func(t *testing.T) {
		c := newCipher(t, key)
		pt := make([]byte, 16)
		out := Seal(c, iv, pt, nil)
		want := "0388dace60b6a392f328c2b971b2fe78ab6e47d42cec13bdf53a67b21257bddf"
		if hex.EncodeToString(out) != want {
			t.Fatalf("Seal = %x, want %s", out, want)
		}
	})
}

func TestOpenRoundTrip(t *testing.T) {
	key := hexBytes(t, "000102030405060708090a0b0c0d0e0f")
	iv := hexBytes(t, "0102030405060708090a0b0c")
	aad := []byte("additional data")
	pt := []byte("the quick brown fox jumps over the lazy dog, twice over")

	sealer := newCipher(t, key)
	sealed := Seal(sealer, iv, pt, aad)

	opener := newCipher(t, key)
	got, err := Open(opener, iv, sealed, aad)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(got, pt) {
		t.Fatalf("Open round-trip mismatch: got %q want %q", got, pt)
	}
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	key := hexBytes(t, "000102030405060708090a0b0c0d0e0f")
	iv := hexBytes(t, "0102030405060708090a0b0c")
	pt := []byte("authenticate me")

	c := newCipher(t, key)
	sealed := Seal(c, iv, pt, nil)
	sealed[0] ^= 0xFF

	c2 := newCipher(t, key)
	if _, err := Open(c2, iv, sealed, nil); err != ErrAuthFailed {
		t.Fatalf("Open error = %v, want ErrAuthFailed", err)
	}
}

func TestOpenRejectsTamperedAAD(t *testing.T) {
	key := hexBytes(t, "000102030405060708090a0b0c0d0e0f")
	iv := hexBytes(t, "0102030405060708090a0b0c")
	pt := []byte("payload")

	c := newCipher(t, key)
	sealed := Seal(c, iv, pt, []byte("aad-v1"))

	c2 := newCipher(t, key)
	if _, err := Open(c2, iv, sealed, []byte("aad-v2")); err != ErrAuthFailed {
		t.Fatalf("Open error = %v, want ErrAuthFailed", err)
	}
}
