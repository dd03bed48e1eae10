// Package hmac implements RFC 2104 HMAC generically over any
// hashfunc.HashFunc descriptor.
package hmac

import "github.com/silverreef/tls13lab/primitives/hashfunc"

// Sum computes HMAC-H(key, text) for the given hash descriptor.
//
// Keys longer than the hash's BLOCK_SIZE are first hashed down to
// DIGEST_SIZE, per RFC 2104; HKDF-Extract is routinely called with IKM/salt
// longer than the block size, so this path always has to work correctly.
func Sum(h hashfunc.HashFunc, key, text []byte) []byte {
	if len(key) > h.BlockSize {
		key = h.Sum(key)
	}

	ipad := make([]byte, h.BlockSize)
	opad := make([]byte, h.BlockSize)
	copy(ipad, key)
	copy(opad, key)
	for i := range ipad {
		ipad[i] ^= 0x36
		opad[i] ^= 0x5c
	}

	inner := h.Sum(append(ipad, text...))
	return h.Sum(append(opad, inner...))
}
