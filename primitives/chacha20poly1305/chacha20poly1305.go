// Package chacha20poly1305 composes primitives/chacha20 and
// primitives/poly1305 into the AEAD construction of RFC 8439 §2.8.
package chacha20poly1305

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"

	"github.com/silverreef/tls13lab/primitives/chacha20"
	"github.com/silverreef/tls13lab/primitives/poly1305"
)

// TagSize is the authentication tag size in bytes.
const TagSize = 16

// ErrAuthFailed is returned by Open on a tag mismatch; no plaintext is
// returned in that case.
var ErrAuthFailed = errors.New("chacha20poly1305: message authentication failed")

func pad16(data []byte) []byte {
	n := (16 - len(data)%16) % 16
	return make([]byte, n)
}

func macData(aad, ciphertext []byte) []byte {
	buf := make([]byte, 0, len(aad)+len(pad16(aad))+len(ciphertext)+len(pad16(ciphertext))+16)
	buf = append(buf, aad...)
	buf = append(buf, pad16(aad)...)
	buf = append(buf, ciphertext...)
	buf = append(buf, pad16(ciphertext)...)

	var lens [16]byte
	binary.LittleEndian.PutUint64(lens[0:8], uint64(len(aad)))
	binary.LittleEndian.PutUint64(lens[8:16], uint64(len(ciphertext)))
	return append(buf, lens[:]...)
}

func oneTimeKey(key [32]byte, nonce [12]byte) [32]byte {
	block := chacha20.Block(key, 0, nonce)
	var otk [32]byte
	copy(otk[:], block[:32])
	return otk
}

// Seal encrypts plaintext under key/nonce, authenticating additionalData,
// and returns ciphertext || 16-byte tag.
func Seal(key [32]byte, nonce [12]byte, plaintext, additionalData []byte) []byte {
	ciphertext := make([]byte, len(plaintext))
	chacha20.XOR(key, 1, nonce, ciphertext, plaintext)

	tag := poly1305.Sum(oneTimeKey(key, nonce), macData(additionalData, ciphertext))

	out := make([]byte, 0, len(ciphertext)+TagSize)
	out = append(out, ciphertext...)
	out = append(out, tag[:]...)
	return out
}

// Open verifies and decrypts ciphertext||tag under key/nonce/additionalData.
func Open(key [32]byte, nonce [12]byte, sealed, additionalData []byte) ([]byte, error) {
	if len(sealed) < TagSize {
		return nil, ErrAuthFailed
	}
	ciphertext := sealed[:len(sealed)-TagSize]
	receivedTag := sealed[len(sealed)-TagSize:]

	expectedTag := poly1305.Sum(oneTimeKey(key, nonce), macData(additionalData, ciphertext))
	if subtle.ConstantTimeCompare(expectedTag[:], receivedTag) != 1 {
		return nil, ErrAuthFailed
	}

	plaintext := make([]byte, len(ciphertext))
	chacha20.XOR(key, 1, nonce, plaintext, ciphertext)
	return plaintext, nil
}
