// Package gcm implements AES-GCM (NIST SP 800-38D) from GHASH/GCTR up, on
// top of this repo's from-scratch primitives/aes block cipher.
package gcm

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"
)

// TagSize is the GCM authentication tag size in bytes.
const TagSize = 16

// BlockCipher is the single-block encryption primitive GCM is built on.
// *aes.Cipher satisfies this.
type BlockCipher interface {
	Encrypt(src []byte) [16]byte
}

// ErrAuthFailed is returned by Open when the authentication tag does not
// match; callers MUST NOT use the returned plaintext when this error is
// non-nil (Open returns no plaintext in that case).
var ErrAuthFailed = errors.New("gcm: message authentication failed")

func xor16(a, b [16]byte) [16]byte {
	var out [16]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// toU128 interprets a 16-byte big-endian buffer as (hi, lo) 64-bit halves.
func toU128(b [16]byte) (hi, lo uint64) {
	hi = binary.BigEndian.Uint64(b[0:8])
	lo = binary.BigEndian.Uint64(b[8:16])
	return
}

func fromU128(hi, lo uint64) [16]byte {
	var out [16]byte
	binary.BigEndian.PutUint64(out[0:8], hi)
	binary.BigEndian.PutUint64(out[8:16], lo)
	return out
}

// mul multiplies two elements of GF(2^128) under the reduction polynomial
// x^128 + x^7 + x^2 + x + 1 (R = 0xE1 << 120 in the big-endian bit
// convention of NIST SP 800-38D), MSB-first — the same convention
// original_source/crates/crypt/src/aead/gcm.rs uses.
func mul(x, y [16]byte) [16]byte {
	xhi, xlo := toU128(x)
	vhi, vlo := toU128(y)

	var phi, plo uint64
	const rHi = 0xE1 << 56

	for i := 0; i < 128; i++ {
		bitPos := 127 - i
		var bit uint64
		if bitPos >= 64 {
			bit = (xhi >> (bitPos - 64)) & 1
		} else {
			bit = (xlo >> bitPos) & 1
		}
		if bit == 1 {
			phi ^= vhi
			plo ^= vlo
		}

		lsb := vlo & 1
		vlo = (vlo >> 1) | ((vhi & 1) << 63)
		vhi >>= 1
		if lsb == 1 {
			vhi ^= rHi
		}
	}

	return fromU128(phi, plo)
}

// ghash requires value to be a multiple of the block size.
func ghash(hashKey [16]byte, value []byte) [16]byte {
	var hash [16]byte
	for i := 0; i+16 <= len(value); i += 16 {
		var block [16]byte
		copy(block[:], value[i:i+16])
		hash = mul(xor16(hash, block), hashKey)
	}
	return hash
}

func inc32(y [16]byte) [16]byte {
	ctr := binary.BigEndian.Uint32(y[12:16])
	ctr++
	out := y
	binary.BigEndian.PutUint32(out[12:16], ctr)
	return out
}

func gctr(bc BlockCipher, counter [16]byte, input []byte) []byte {
	if len(input) == 0 {
		return []byte{}
	}

	out := make([]byte, len(input))
	full := len(input) / 16
	for i := 0; i < full; i++ {
		ks := bc.Encrypt(counter[:])
		for j := 0; j < 16; j++ {
			out[i*16+j] = input[i*16+j] ^ ks[j]
		}
		counter = inc32(counter)
	}

	rem := input[full*16:]
	if len(rem) > 0 {
		ks := bc.Encrypt(counter[:])
		for j := range rem {
			out[full*16+j] = rem[j] ^ ks[j]
		}
	}
	return out
}

func padTo16(data []byte) []byte {
	pad := (16 - len(data)%16) % 16
	return append(append([]byte{}, data...), make([]byte, pad)...)
}

// ghashTag computes GHASH_H(A || 0^v || C || 0^u || be64(|A| bits) || be64(|C| bits)).
func ghashTag(hashKey [16]byte, aad, ciphertext []byte) [16]byte {
	buf := make([]byte, 0, len(padTo16(aad))+len(padTo16(ciphertext))+16)
	buf = append(buf, padTo16(aad)...)
	buf = append(buf, padTo16(ciphertext)...)

	var lenBlock [16]byte
	binary.BigEndian.PutUint64(lenBlock[0:8], uint64(len(aad))*8)
	binary.BigEndian.PutUint64(lenBlock[8:16], uint64(len(ciphertext))*8)
	buf = append(buf, lenBlock[:]...)

	return ghash(hashKey, buf)
}

// j0 derives the initial counter block for the given IV, per NIST SP 800-38D
// §7.1.1: a 96-bit IV is padded directly; any other length is hashed.
func j0(hashKey [16]byte, iv []byte) [16]byte {
	if len(iv) == 12 {
		var out [16]byte
		copy(out[:12], iv)
		out[15] = 1
		return out
	}

	padded := padTo16(iv)
	buf := make([]byte, 0, len(padded)+16)
	buf = append(buf, padded...)
	buf = append(buf, make([]byte, 8)...)
	var ivLenBits [8]byte
	binary.BigEndian.PutUint64(ivLenBits[:], uint64(len(iv))*8)
	buf = append(buf, ivLenBits[:]...)
	return ghash(hashKey, buf)
}

// Seal encrypts plaintext under key/iv, authenticating additionalData, and
// returns ciphertext || 16-byte tag.
func Seal(bc BlockCipher, iv, plaintext, additionalData []byte) []byte {
	hashKey := bc.Encrypt(make([]byte, 16))

	counter0 := j0(hashKey, iv)
	ciphertext := gctr(bc, inc32(counter0), plaintext)

	tagBlock := ghashTag(hashKey, additionalData, ciphertext)
	tag := gctr(bc, counter0, tagBlock[:])

	out := make([]byte, 0, len(ciphertext)+TagSize)
	out = append(out, ciphertext...)
	out = append(out, tag...)
	return out
}

// Open verifies and decrypts ciphertext||tag under key/iv/additionalData. It
// returns ErrAuthFailed (and no plaintext) if the tag does not match.
func Open(bc BlockCipher, iv, sealed, additionalData []byte) ([]byte, error) {
	if len(sealed) < TagSize {
		return nil, ErrAuthFailed
	}
	ciphertext := sealed[:len(sealed)-TagSize]
	receivedTag := sealed[len(sealed)-TagSize:]

	hashKey := bc.Encrypt(make([]byte, 16))
	counter0 := j0(hashKey, iv)

	tagBlock := ghashTag(hashKey, additionalData, ciphertext)
	expectedTag := gctr(bc, counter0, tagBlock[:])

	if subtle.ConstantTimeCompare(expectedTag, receivedTag) != 1 {
		return nil, ErrAuthFailed
	}

	return gctr(bc, inc32(counter0), ciphertext), nil
}
