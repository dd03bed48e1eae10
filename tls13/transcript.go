package tls13

import "github.com/silverreef/tls13lab/primitives/hashfunc"

// transcript is the growing byte buffer of every handshake message body
// (header included, outer record header excluded), in emission/reception
// order (RFC 8446 §4.4.1). Bytes are never revisited or reordered once
// appended.
type transcript struct {
	buf []byte
}

func newTranscript() *transcript {
	return &transcript{}
}

// append adds a fully-headered handshake message body to the transcript.
func (t *transcript) append(headeredBody []byte) {
	t.buf = append(t.buf, headeredBody...)
}

// hash returns H(transcript) for the given cipher suite's pinned hash.
func (t *transcript) hash(h hashfunc.HashFunc) []byte {
	return h.Sum(t.buf)
}
