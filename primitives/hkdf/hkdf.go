// Package hkdf implements RFC 5869 HKDF-Extract/Expand plus the TLS 1.3
// HKDF-Expand-Label / Derive-Secret specialization from RFC 8446 §7.1.
package hkdf

import (
	"encoding/binary"

	"github.com/silverreef/tls13lab/primitives/hashfunc"
	"github.com/silverreef/tls13lab/primitives/hmac"
)

// Extract computes HKDF-Extract(salt, ikm) = HMAC(salt, ikm).
func Extract(h hashfunc.HashFunc, salt, ikm []byte) []byte {
	return hmac.Sum(h, salt, ikm)
}

// Expand computes HKDF-Expand(prk, info, length).
func Expand(h hashfunc.HashFunc, prk, info []byte, length int) []byte {
	n := (length + h.Size - 1) / h.Size

	out := make([]byte, 0, n*h.Size)
	var prev []byte
	for i := 1; i <= n; i++ {
		block := make([]byte, 0, len(prev)+len(info)+1)
		block = append(block, prev...)
		block = append(block, info...)
		block = append(block, byte(i))

		prev = hmac.Sum(h, prk, block)
		out = append(out, prev...)
	}

	return out[:length]
}

// opaque8 length-prefixes data with a single byte, per TLS's
// opaque<0..255> vector encoding.
func opaque8(data []byte) []byte {
	out := make([]byte, 0, 1+len(data))
	out = append(out, byte(len(data)))
	return append(out, data...)
}

// ExpandLabel computes TLS 1.3's HKDF-Expand-Label(secret, label, context, length):
//
//	HkdfLabel = u16(length) || opaque8("tls13 " + label) || opaque8(context)
//
// This is the conforming RFC 8446 §7.1 wire form, with all three length
// prefixes present (the bare u16, and both opaque-vector length bytes) —
// omitting any of them cannot interoperate with a real TLS 1.3 peer (see
// DESIGN.md).
func ExpandLabel(h hashfunc.HashFunc, secret []byte, label string, context []byte, length int) []byte {
	fullLabel := append([]byte("tls13 "), label...)

	hkdfLabel := make([]byte, 0, 2+1+len(fullLabel)+1+len(context))
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(length))
	hkdfLabel = append(hkdfLabel, lenBuf[:]...)
	hkdfLabel = append(hkdfLabel, opaque8(fullLabel)...)
	hkdfLabel = append(hkdfLabel, opaque8(context)...)

	return Expand(h, secret, hkdfLabel, length)
}

// DeriveSecret computes Derive-Secret(secret, label, messages) =
// HKDF-Expand-Label(secret, label, Hash(messages), Hash.length).
func DeriveSecret(h hashfunc.HashFunc, secret []byte, label string, messages []byte) []byte {
	context := h.Sum(messages)
	return ExpandLabel(h, secret, label, context, h.Size)
}
