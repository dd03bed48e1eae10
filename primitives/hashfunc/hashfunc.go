// Package hashfunc advertises BLOCK_SIZE/DIGEST_SIZE alongside a one-shot
// Sum function for each hash primitive, so HMAC/HKDF/the TLS key schedule
// can stay generic over "whichever hash the cipher suite pins" instead of
// hardcoding one.
package hashfunc

import (
	"github.com/silverreef/tls13lab/primitives/sha1"
	"github.com/silverreef/tls13lab/primitives/sha256"
	"github.com/silverreef/tls13lab/primitives/sha384"
	"github.com/silverreef/tls13lab/primitives/sha512"
)

// HashFunc describes one hash primitive's parameters and one-shot function.
type HashFunc struct {
	Name      string
	Size      int
	BlockSize int
	Sum       func(data []byte) []byte
}

func wrap(name string, size, blockSize int, sum func([]byte) []byte) HashFunc {
	return HashFunc{Name: name, Size: size, BlockSize: blockSize, Sum: sum}
}

// SHA1 is the SHA-1 descriptor.
var SHA1 = wrap("SHA-1", sha1.Size, sha1.BlockSize, func(d []byte) []byte {
	s := sha1.Sum(d)
	return s[:]
})

// SHA256 is the SHA-256 descriptor.
var SHA256 = wrap("SHA-256", sha256.Size, sha256.BlockSize, func(d []byte) []byte {
	s := sha256.Sum(d)
	return s[:]
})

// SHA384 is the SHA-384 descriptor.
var SHA384 = wrap("SHA-384", sha384.Size, sha384.BlockSize, func(d []byte) []byte {
	s := sha384.Sum(d)
	return s[:]
})

// SHA512 is the SHA-512 descriptor.
var SHA512 = wrap("SHA-512", sha512.Size, sha512.BlockSize, func(d []byte) []byte {
	s := sha512.Sum(d)
	return s[:]
})
