package tls13

import "errors"

// errSequenceOverflow guards RFC 8446 §5.3: the sequence counter strictly
// increases and MUST NOT wrap.
var errSequenceOverflow = errors.New("tls13: traffic key sequence counter exhausted")

// trafficKey is {write_key, write_iv, sequence_counter} (RFC 8446 §5.3). The
// counter lives with the key, not with the connection, so that swapping
// the whole struct at a key change resets it to zero — mirroring the
// teacher's xorNonceAEAD, whose nonceMask is XORed with the sequence
// number on every call rather than rebuilt from scratch.
type trafficKey struct {
	suite  *cipherSuiteTLS13
	key    []byte
	iv     []byte // 12 bytes
	seq    uint64
}

func newTrafficKey(suite *cipherSuiteTLS13, key, iv []byte) *trafficKey {
	return &trafficKey{suite: suite, key: key, iv: iv}
}

// nonce computes iv XOR be64_pad(sequence_counter): the sequence number,
// big-endian, right-aligned into a same-length-as-iv buffer, XORed with
// the static IV (RFC 8446 §5.3).
func (k *trafficKey) nonce() []byte {
	out := make([]byte, len(k.iv))
	copy(out, k.iv)
	for i := 0; i < 8; i++ {
		out[len(out)-1-i] ^= byte(k.seq >> (8 * i))
	}
	return out
}

// seal encrypts plaintext, authenticating additionalData, advances the
// sequence counter by exactly one, and returns the AEAD ciphertext||tag.
func (k *trafficKey) seal(plaintext, additionalData []byte) ([]byte, error) {
	if k.seq == ^uint64(0) {
		return nil, errSequenceOverflow
	}
	out := k.suite.aead.Seal(k.key, k.nonce(), plaintext, additionalData)
	k.seq++
	return out, nil
}

// open decrypts ciphertext||tag, advances the sequence counter by exactly
// one regardless of success or failure (a dropped/rejected record still
// consumes a sequence number on the wire), and returns the plaintext.
func (k *trafficKey) open(sealed, additionalData []byte) ([]byte, error) {
	if k.seq == ^uint64(0) {
		return nil, errSequenceOverflow
	}
	pt, err := k.suite.aead.Open(k.key, k.nonce(), sealed, additionalData)
	k.seq++
	if err != nil {
		return nil, fatal(AlertBadRecordMAC)
	}
	return pt, nil
}
