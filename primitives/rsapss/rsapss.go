// Package rsapss implements RSASSA-PSS signing and verification (RFC 8017
// §8.1, §9.1) for CertificateVerify. Modular exponentiation is delegated to
// math/big, the same external-primitive treatment given to all big-integer
// arithmetic in this repo; the EMSA-PSS encoding, MGF1 mask generation and
// I2OSP/OS2IP conversions are hand-written per the RFC.
package rsapss

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/silverreef/tls13lab/primitives/hashfunc"
)

// ErrVerification is returned by Verify when a signature does not match.
var ErrVerification = errors.New("rsapss: verification failed")

// PublicKey is an RSA public key (n, e).
type PublicKey struct {
	N *big.Int
	E *big.Int
}

// PrivateKey is an RSA private key. Only the fields needed for the textbook
// signing primitive and its public half (n, e, d) are kept; CRT parameters
// are not used.
type PrivateKey struct {
	PublicKey
	D *big.Int
}

// i2osp converts a nonnegative integer to an octet string of length xLen.
func i2osp(x *big.Int, xLen int) ([]byte, error) {
	b := x.Bytes()
	if len(b) > xLen {
		return nil, errors.New("rsapss: integer too large")
	}
	out := make([]byte, xLen)
	copy(out[xLen-len(b):], b)
	return out, nil
}

// os2ip converts an octet string to a nonnegative integer.
func os2ip(x []byte) *big.Int {
	return new(big.Int).SetBytes(x)
}

// mgf1 is the MGF1 mask generation function (RFC 8017 appendix B.2.1) using
// the given hash.
func mgf1(h hashfunc.HashFunc, seed []byte, maskLen int) []byte {
	out := make([]byte, 0, maskLen+h.Size)
	for counter := uint32(0); len(out) < maskLen; counter++ {
		var c [4]byte
		c[0] = byte(counter >> 24)
		c[1] = byte(counter >> 16)
		c[2] = byte(counter >> 8)
		c[3] = byte(counter)
		out = append(out, h.Sum(append(append([]byte{}, seed...), c[:]...))...)
	}
	return out[:maskLen]
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// emsaPSSEncode implements RFC 8017 §9.1.1 with MGF1 as the mask generation
// function and hLen-length salt.
func emsaPSSEncode(h hashfunc.HashFunc, message []byte, emBits int, salt []byte) ([]byte, error) {
	emLen := (emBits + 7) / 8
	mHash := h.Sum(message)
	hLen := h.Size
	sLen := len(salt)

	if emLen < hLen+sLen+2 {
		return nil, errors.New("rsapss: encoding error, modulus too short")
	}

	mPrime := make([]byte, 0, 8+hLen+sLen)
	mPrime = append(mPrime, make([]byte, 8)...)
	mPrime = append(mPrime, mHash...)
	mPrime = append(mPrime, salt...)

	h2 := h.Sum(mPrime)

	psLen := emLen - sLen - hLen - 2
	db := make([]byte, 0, psLen+1+sLen)
	db = append(db, make([]byte, psLen)...)
	db = append(db, 0x01)
	db = append(db, salt...)

	dbMask := mgf1(h, h2, len(db))
	maskedDB := xorBytes(db, dbMask)

	// Clear the top bits of the leftmost byte that exceed emBits.
	numZeroBits := 8*emLen - emBits
	if numZeroBits > 0 {
		maskedDB[0] &= 0xFF >> uint(numZeroBits)
	}

	em := make([]byte, 0, len(maskedDB)+hLen+1)
	em = append(em, maskedDB...)
	em = append(em, h2...)
	em = append(em, 0xBC)
	return em, nil
}

// emsaPSSVerify implements RFC 8017 §9.1.2.
func emsaPSSVerify(h hashfunc.HashFunc, message, em []byte, emBits int, sLen int) error {
	emLen := (emBits + 7) / 8
	hLen := h.Size
	mHash := h.Sum(message)

	if emLen < hLen+sLen+2 {
		return ErrVerification
	}
	if len(em) == 0 || em[len(em)-1] != 0xBC {
		return ErrVerification
	}

	maskedDB := em[:emLen-hLen-1]
	h2 := em[emLen-hLen-1 : emLen-1]

	numZeroBits := 8*emLen - emBits
	if numZeroBits > 0 {
		mask := byte(0xFF << uint(8-numZeroBits))
		if maskedDB[0]&mask != 0 {
			return ErrVerification
		}
	}

	dbMask := mgf1(h, h2, len(maskedDB))
	db := xorBytes(maskedDB, dbMask)
	if numZeroBits > 0 {
		db[0] &= 0xFF >> uint(numZeroBits)
	}

	psLen := emLen - hLen - sLen - 2
	for i := 0; i < psLen; i++ {
		if db[i] != 0 {
			return ErrVerification
		}
	}
	if db[psLen] != 0x01 {
		return ErrVerification
	}
	salt := db[psLen+1:]

	mPrime := make([]byte, 0, 8+hLen+sLen)
	mPrime = append(mPrime, make([]byte, 8)...)
	mPrime = append(mPrime, mHash...)
	mPrime = append(mPrime, salt...)
	h2Prime := h.Sum(mPrime)

	if !bytesEqual(h2, h2Prime) {
		return ErrVerification
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func modBits(n *big.Int) int { return n.BitLen() }

// Sign computes an RSASSA-PSS signature over message using the given hash,
// with a hLen-byte random salt per RFC 8017 §8.1.1.
func Sign(priv *PrivateKey, h hashfunc.HashFunc, message []byte) ([]byte, error) {
	salt := make([]byte, h.Size)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	modBitsLen := modBits(priv.N)
	em, err := emsaPSSEncode(h, message, modBitsLen-1, salt)
	if err != nil {
		return nil, err
	}

	m := os2ip(em)
	if m.Cmp(priv.N) >= 0 {
		return nil, errors.New("rsapss: message representative out of range")
	}

	s := new(big.Int).Exp(m, priv.D, priv.N)
	k := (priv.N.BitLen() + 7) / 8
	return i2osp(s, k)
}

// Verify checks an RSASSA-PSS signature over message, with sLen the expected
// salt length (conventionally the hash's digest size).
func Verify(pub *PublicKey, h hashfunc.HashFunc, message, signature []byte, sLen int) error {
	k := (pub.N.BitLen() + 7) / 8
	if len(signature) != k {
		return ErrVerification
	}

	s := os2ip(signature)
	if s.Cmp(pub.N) >= 0 {
		return ErrVerification
	}

	m := new(big.Int).Exp(s, pub.E, pub.N)
	modBitsLen := modBits(pub.N)
	emLen := (modBitsLen - 1 + 7) / 8
	em, err := i2osp(m, emLen)
	if err != nil {
		return ErrVerification
	}

	return emsaPSSVerify(h, message, em, modBitsLen-1, sLen)
}
