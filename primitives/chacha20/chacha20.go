// Package chacha20 implements the ChaCha20 stream cipher (RFC 8439) from
// the quarter-round up.
package chacha20

import "encoding/binary"

const sigma0, sigma1, sigma2, sigma3 = 0x61707865, 0x3320646e, 0x79622d32, 0x6b206574

func rotl32(x uint32, n uint) uint32 {
	return (x << n) | (x >> (32 - n))
}

func quarterRound(state *[16]uint32, a, b, c, d int) {
	state[a] += state[b]
	state[d] ^= state[a]
	state[d] = rotl32(state[d], 16)

	state[c] += state[d]
	state[b] ^= state[c]
	state[b] = rotl32(state[b], 12)

	state[a] += state[b]
	state[d] ^= state[a]
	state[d] = rotl32(state[d], 8)

	state[c] += state[d]
	state[b] ^= state[c]
	state[b] = rotl32(state[b], 7)
}

// Block computes one 64-byte ChaCha20 keystream block for the given
// 32-byte key, 32-bit counter and 12-byte nonce (RFC 8439 §2.3).
func Block(key [32]byte, counter uint32, nonce [12]byte) [64]byte {
	var state [16]uint32
	state[0], state[1], state[2], state[3] = sigma0, sigma1, sigma2, sigma3
	for i := 0; i < 8; i++ {
		state[4+i] = binary.LittleEndian.Uint32(key[i*4 : i*4+4])
	}
	state[12] = counter
	state[13] = binary.LittleEndian.Uint32(nonce[0:4])
	state[14] = binary.LittleEndian.Uint32(nonce[4:8])
	state[15] = binary.LittleEndian.Uint32(nonce[8:12])

	working := state
	for round := 0; round < 10; round++ {
		quarterRound(&working, 0, 4, 8, 12)
		quarterRound(&working, 1, 5, 9, 13)
		quarterRound(&working, 2, 6, 10, 14)
		quarterRound(&working, 3, 7, 11, 15)

		quarterRound(&working, 0, 5, 10, 15)
		quarterRound(&working, 1, 6, 11, 12)
		quarterRound(&working, 2, 7, 8, 13)
		quarterRound(&working, 3, 4, 9, 14)
	}

	var out [64]byte
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(out[i*4:i*4+4], working[i]+state[i])
	}
	return out
}

// XOR encrypts (or decrypts) src into dst, starting at the given initial
// counter. len(dst) must be >= len(src).
func XOR(key [32]byte, initialCounter uint32, nonce [12]byte, dst, src []byte) {
	counter := initialCounter
	for off := 0; off < len(src); off += 64 {
		ks := Block(key, counter, nonce)
		end := off + 64
		if end > len(src) {
			end = len(src)
		}
		for i := off; i < end; i++ {
			dst[i] = src[i] ^ ks[i-off]
		}
		counter++
	}
}
