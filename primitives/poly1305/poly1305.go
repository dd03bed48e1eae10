// Package poly1305 implements the Poly1305 one-time MAC (RFC 8439 §2.5).
//
// The accumulator arithmetic is modular arithmetic over the 130-bit prime
// 2^130-5; this repo uses math/big for it rather than hand-rolled 26-bit
// limbs, the same big-integer-as-external-primitive treatment RSA's modexp
// gets (see DESIGN.md).
package poly1305

import (
	"math/big"
)

// Size is the Poly1305 tag size in bytes.
const Size = 16

var p1305 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 130), big.NewInt(5))
var twoPow128 = new(big.Int).Lsh(big.NewInt(1), 128)

func clamp(r []byte) []byte {
	clamped := make([]byte, 16)
	copy(clamped, r)
	clamped[3] &= 15
	clamped[7] &= 15
	clamped[11] &= 15
	clamped[15] &= 15
	clamped[4] &= 252
	clamped[8] &= 252
	clamped[12] &= 252
	return clamped
}

func leToInt(b []byte) *big.Int {
	rev := make([]byte, len(b))
	for i, c := range b {
		rev[len(b)-1-i] = c
	}
	return new(big.Int).SetBytes(rev)
}

// Sum computes the Poly1305 tag of msg under the given 32-byte one-time key.
func Sum(key [32]byte, msg []byte) [Size]byte {
	r := leToInt(clamp(key[:16]))
	s := leToInt(key[16:32])

	acc := new(big.Int)

	for off := 0; off < len(msg); off += 16 {
		end := off + 16
		if end > len(msg) {
			end = len(msg)
		}
		block := msg[off:end]

		padded := make([]byte, len(block)+1)
		copy(padded, block)
		padded[len(block)] = 1

		n := leToInt(padded)
		acc.Add(acc, n)
		acc.Mul(acc, r)
		acc.Mod(acc, p1305)
	}

	acc.Add(acc, s)
	acc.Mod(acc, twoPow128)

	var out [Size]byte
	b := acc.Bytes() // big-endian, possibly shorter than 16 bytes
	for i := 0; i < len(b); i++ {
		out[len(b)-1-i] = b[i]
	}
	return out
}
