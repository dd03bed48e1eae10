// Package sha384 implements SHA-384 from FIPS 180-4: the SHA-512
// compression function under a distinct IV, truncated to 48 bytes.
package sha384

import (
	"encoding/binary"

	"github.com/silverreef/tls13lab/primitives/sha512"
)

const (
	// BlockSize is the SHA-384 block size in bytes.
	BlockSize = sha512.BlockSize
	// Size is the SHA-384 digest size in bytes.
	Size = 48
)

// iv384 is the SHA-384 initial hash value (FIPS 180-4 §5.3.4), distinct from
// SHA-512's — it is not simply a truncation of IV512.
var iv384 = [8]uint64{
	0xcbbb9d5dc1059ed8, 0x629a292a367cd507, 0x9159015a3070dd17, 0x152fecd8f70e5939,
	0x67332667ffc00b31, 0x8eb44a8768581511, 0xdb0c2e0d64f98fa7, 0x47b5481dbefa4fa4,
}

// Sum returns the SHA-384 digest of data: the first six 64-bit words of the
// SHA-512 compression function run under the SHA-384 IV.
func Sum(data []byte) [Size]byte {
	h := sha512.Core(data, iv384)

	var out [Size]byte
	for i := 0; i < 6; i++ {
		binary.BigEndian.PutUint64(out[i*8:i*8+8], h[i])
	}
	return out
}
