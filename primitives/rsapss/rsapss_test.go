package rsapss

import (
	"crypto/rand"
	"crypto/rsa"
	"math/big"
	"testing"

	"github.com/silverreef/tls13lab/primitives/hashfunc"
)

// A 2048-bit-class key pair is overkill for a unit test; generate a small
// 1024-bit key per test, which still fits SHA-256 PSS with a hash-length
// salt (emLen >= 2*32+2 bytes) and is quick to make. Never use a key this
// small for anything real.
func testKey(t *testing.T) *PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if k.N.BitLen() != 1024 {
		t.Fatalf("modulus is %d bits, want 1024", k.N.BitLen())
	}
	return &PrivateKey{PublicKey: PublicKey{N: k.N, E: big.NewInt(int64(k.E))}, D: k.D}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	priv := testKey(t)
	msg := []byte("tls13 CertificateVerify transcript hash placeholder")

	sig, err := Sign(priv, hashfunc.SHA256, msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := Verify(&priv.PublicKey, hashfunc.SHA256, msg, sig, hashfunc.SHA256.Size); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	priv := testKey(t)
	msg := []byte("original message")
	tampered := []byte("original Message")

	sig, err := Sign(priv, hashfunc.SHA256, msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := Verify(&priv.PublicKey, hashfunc.SHA256, tampered, sig, hashfunc.SHA256.Size); err == nil {
		t.Fatal("Verify unexpectedly succeeded on tampered message")
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	priv := testKey(t)
	msg := []byte("a message to sign")

	sig, err := Sign(priv, hashfunc.SHA256, msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	sig[len(sig)-1] ^= 0xFF

	if err := Verify(&priv.PublicKey, hashfunc.SHA256, msg, sig, hashfunc.SHA256.Size); err == nil {
		t.Fatal("Verify unexpectedly succeeded on tampered signature")
	}
}
