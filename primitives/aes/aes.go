// Package aes implements the AES-128/256 block cipher (FIPS 197) from the
// S-box and round function up — key schedule plus single-block encryption,
// which is all GCM mode (in primitives/gcm) needs as its block primitive.
package aes

import "fmt"

// BlockSize is the AES block size in bytes, fixed regardless of key size.
const BlockSize = 16

var sbox = [256]byte{
	0x63, 0x7c, 0x77, 0x7b, 0xf2, 0x6b, 0x6f, 0xc5, 0x30, 0x01, 0x67, 0x2b, 0xfe, 0xd7, 0xab, 0x76,
	0xca, 0x82, 0xc9, 0x7d, 0xfa, 0x59, 0x47, 0xf0, 0xad, 0xd4, 0xa2, 0xaf, 0x9c, 0xa4, 0x72, 0xc0,
	0xb7, 0xfd, 0x93, 0x26, 0x36, 0x3f, 0xf7, 0xcc, 0x34, 0xa5, 0xe5, 0xf1, 0x71, 0xd8, 0x31, 0x15,
	0x04, 0xc7, 0x23, 0xc3, 0x18, 0x96, 0x05, 0x9a, 0x07, 0x12, 0x80, 0xe2, 0xeb, 0x27, 0xb2, 0x75,
	0x09, 0x83, 0x2c, 0x1a, 0x1b, 0x6e, 0x5a, 0xa0, 0x52, 0x3b, 0xd6, 0xb3, 0x29, 0xe3, 0x2f, 0x84,
	0x53, 0xd1, 0x00, 0xed, 0x20, 0xfc, 0xb1, 0x5b, 0x6a, 0xcb, 0xbe, 0x39, 0x4a, 0x4c, 0x58, 0xcf,
	0xd0, 0xef, 0xaa, 0xfb, 0x43, 0x4d, 0x33, 0x85, 0x45, 0xf9, 0x02, 0x7f, 0x50, 0x3c, 0x9f, 0xa8,
	0x51, 0xa3, 0x40, 0x8f, 0x92, 0x9d, 0x38, 0xf5, 0xbc, 0xb6, 0xda, 0x21, 0x10, 0xff, 0xf3, 0xd2,
	0xcd, 0x0c, 0x13, 0xec, 0x5f, 0x97, 0x44, 0x17, 0xc4, 0xa7, 0x7e, 0x3d, 0x64, 0x5d, 0x19, 0x73,
	0x60, 0x81, 0x4f, 0xdc, 0x22, 0x2a, 0x90, 0x88, 0x46, 0xee, 0xb8, 0x14, 0xde, 0x5e, 0x0b, 0xdb,
	0xe0, 0x32, 0x3a, 0x0a, 0x49, 0x06, 0x24, 0x5c, 0xc2, 0xd3, 0xac, 0x62, 0x91, 0x95, 0xe4, 0x79,
	0xe7, 0xc8, 0x37, 0x6d, 0x8d, 0xd5, 0x4e, 0xa9, 0x6c, 0x56, 0xf4, 0xea, 0x65, 0x7a, 0xae, 0x08,
	0xba, 0x78, 0x25, 0x2e, 0x1c, 0xa6, 0xb4, 0xc6, 0xe8, 0xdd, 0x74, 0x1f, 0x4b, 0xbd, 0x8b, 0x8a,
	0x70, 0x3e, 0xb5, 0x66, 0x48, 0x03, 0xf6, 0x0e, 0x61, 0x35, 0x57, 0xb9, 0x86, 0xc1, 0x1d, 0x9e,
	0xe1, 0xf8, 0x98, 0x11, 0x69, 0xd9, 0x8e, 0x94, 0x9b, 0x1e, 0x87, 0xe9, 0xce, 0x55, 0x28, 0xdf,
	0x8c, 0xa1, 0x89, 0x0d, 0xbf, 0xe6, 0x42, 0x68, 0x41, 0x99, 0x2d, 0x0f, 0xb0, 0x54, 0xbb, 0x16,
}

var rcon = [11]byte{0x00, 0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1b, 0x36}

func xtime(b byte) byte {
	if b&0x80 != 0 {
		return (b << 1) ^ 0x1b
	}
	return b << 1
}

func mul(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		a = xtime(a)
		b >>= 1
	}
	return p
}

// Cipher is an expanded AES key, either AES-128 (Nr=10) or AES-256 (Nr=14).
type Cipher struct {
	roundKeys [][4]byte // Nr+1 round keys, 4 words (16 bytes) each, flattened below
	nr        int
}

// New expands a 16-byte (AES-128) or 32-byte (AES-256) key.
func New(key []byte) (*Cipher, error) {
	var nk, nr int
	switch len(key) {
	case 16:
		nk, nr = 4, 10
	case 32:
		nk, nr = 8, 14
	default:
		return nil, fmt.Errorf("aes: invalid key size %d", len(key))
	}

	nb := 4
	totalWords := nb * (nr + 1)
	w := make([][4]byte, totalWords)

	for i := 0; i < nk; i++ {
		copy(w[i][:], key[4*i:4*i+4])
	}

	for i := nk; i < totalWords; i++ {
		temp := w[i-1]
		if i%nk == 0 {
			temp = rotWord(temp)
			temp = subWord(temp)
			temp[0] ^= rcon[i/nk]
		} else if nk > 6 && i%nk == 4 {
			temp = subWord(temp)
		}
		for j := 0; j < 4; j++ {
			w[i][j] = w[i-nk][j] ^ temp[j]
		}
	}

	return &Cipher{roundKeys: w, nr: nr}, nil
}

func rotWord(w [4]byte) [4]byte {
	return [4]byte{w[1], w[2], w[3], w[0]}
}

func subWord(w [4]byte) [4]byte {
	return [4]byte{sbox[w[0]], sbox[w[1]], sbox[w[2]], sbox[w[3]]}
}

// roundKey returns round r's 16-byte key, r in [0, Nr].
func (c *Cipher) roundKey(r int) [16]byte {
	var rk [16]byte
	for col := 0; col < 4; col++ {
		w := c.roundKeys[r*4+col]
		copy(rk[col*4:col*4+4], w[:])
	}
	return rk
}

func addRoundKey(state *[16]byte, rk [16]byte) {
	for i := range state {
		state[i] ^= rk[i]
	}
}

func subBytes(state *[16]byte) {
	for i := range state {
		state[i] = sbox[state[i]]
	}
}

// shiftRows operates on the state in column-major order (state[r+4*c] is
// row r, column c), per FIPS 197.
func shiftRows(state *[16]byte) {
	get := func(r, c int) byte { return state[r+4*c] }
	var out [16]byte
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[r+4*c] = get(r, (c+r)%4)
		}
	}
	*state = out
}

func mixColumns(state *[16]byte) {
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := state[4*c], state[4*c+1], state[4*c+2], state[4*c+3]
		state[4*c+0] = mul(a0, 2) ^ mul(a1, 3) ^ a2 ^ a3
		state[4*c+1] = a0 ^ mul(a1, 2) ^ mul(a2, 3) ^ a3
		state[4*c+2] = a0 ^ a1 ^ mul(a2, 2) ^ mul(a3, 3)
		state[4*c+3] = mul(a0, 3) ^ a1 ^ a2 ^ mul(a3, 2)
	}
}

// EncryptBlock encrypts exactly one 16-byte block.
func (c *Cipher) EncryptBlock(dst, src []byte) {
	var state [16]byte
	copy(state[:], src[:16])

	addRoundKey(&state, c.roundKey(0))

	for r := 1; r < c.nr; r++ {
		subBytes(&state)
		shiftRows(&state)
		mixColumns(&state)
		addRoundKey(&state, c.roundKey(r))
	}

	subBytes(&state)
	shiftRows(&state)
	addRoundKey(&state, c.roundKey(c.nr))

	copy(dst[:16], state[:])
}

// Encrypt returns the encryption of one 16-byte block.
func (c *Cipher) Encrypt(src []byte) [16]byte {
	var out [16]byte
	c.EncryptBlock(out[:], src)
	return out
}
