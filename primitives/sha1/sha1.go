// Package sha1 implements the SHA-1 one-shot hash from FIPS 180-4,
// built from the block schedule up rather than delegating to crypto/sha1.
package sha1

import (
	"encoding/binary"
	"math/bits"
)

const (
	// BlockSize is the SHA-1 block size in bytes.
	BlockSize = 64
	// Size is the SHA-1 digest size in bytes.
	Size = 20
)

const (
	h0 uint32 = 0x67452301
	h1 uint32 = 0xEFCDAB89
	h2 uint32 = 0x98BADCFE
	h3 uint32 = 0x10325476
	h4 uint32 = 0xC3D2E1F0
)

// pad appends the FIPS 180-4 padding (0x80, zeros, 64-bit bit length) to msg.
func pad(msg []byte) []byte {
	bitLen := uint64(len(msg)) * 8

	padded := make([]byte, len(msg), len(msg)+BlockSize*2)
	copy(padded, msg)
	padded = append(padded, 0x80)
	for len(padded)%BlockSize != BlockSize-8 {
		padded = append(padded, 0)
	}
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], bitLen)
	return append(padded, lenBuf[:]...)
}

// Sum returns the SHA-1 digest of data.
func Sum(data []byte) [Size]byte {
	h := [5]uint32{h0, h1, h2, h3, h4}

	blocks := pad(data)
	var w [80]uint32

	for b := 0; b < len(blocks); b += BlockSize {
		block := blocks[b : b+BlockSize]

		for i := 0; i < 16; i++ {
			w[i] = binary.BigEndian.Uint32(block[i*4 : i*4+4])
		}
		for i := 16; i < 80; i++ {
			w[i] = bits.RotateLeft32(w[i-3]^w[i-8]^w[i-14]^w[i-16], 1)
		}

		a, bb, c, d, e := h[0], h[1], h[2], h[3], h[4]

		for i := 0; i < 80; i++ {
			var f, k uint32
			switch {
			case i < 20:
				f = (bb & c) | (^bb & d)
				k = 0x5A827999
			case i < 40:
				f = bb ^ c ^ d
				k = 0x6ED9EBA1
			case i < 60:
				f = (bb & c) | (bb & d) | (c & d)
				k = 0x8F1BBCDC
			default:
				f = bb ^ c ^ d
				k = 0xCA62C1D6
			}

			temp := bits.RotateLeft32(a, 5) + f + e + k + w[i]
			e = d
			d = c
			c = bits.RotateLeft32(bb, 30)
			bb = a
			a = temp
		}

		h[0] += a
		h[1] += bb
		h[2] += c
		h[3] += d
		h[4] += e
	}

	var out [Size]byte
	binary.BigEndian.PutUint32(out[0:4], h[0])
	binary.BigEndian.PutUint32(out[4:8], h[1])
	binary.BigEndian.PutUint32(out[8:12], h[2])
	binary.BigEndian.PutUint32(out[12:16], h[3])
	binary.BigEndian.PutUint32(out[16:20], h[4])
	return out
}
