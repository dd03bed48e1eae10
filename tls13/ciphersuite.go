// Package tls13 implements the server side of a TLS 1.3 handshake and
// record layer on top of this repository's from-scratch cryptographic
// primitives.
package tls13

import (
	"github.com/silverreef/tls13lab/primitives/chacha20poly1305"
	"github.com/silverreef/tls13lab/primitives/gcm"
	"github.com/silverreef/tls13lab/primitives/hashfunc"

	ownaes "github.com/silverreef/tls13lab/primitives/aes"
)

// CipherSuite identifiers, RFC 8446 Appendix B.4.
const (
	TLS_AES_128_GCM_SHA256 uint16 = 0x1301
	TLS_AES_256_GCM_SHA384 uint16 = 0x1302
)

// NamedGroup identifiers, RFC 8446 Appendix B.3.1.4. Only x25519 is
// negotiable; the others are recognised on the wire but never selected.
const (
	NamedGroupSecp256r1 uint16 = 0x0017
	NamedGroupSecp384r1 uint16 = 0x0018
	NamedGroupSecp521r1 uint16 = 0x0019
	NamedGroupX25519    uint16 = 0x001D
	NamedGroupX448      uint16 = 0x001E
	NamedGroupFFDHE2048 uint16 = 0x0100
	NamedGroupFFDHE3072 uint16 = 0x0101
)

// SignatureScheme identifiers, RFC 8446 Appendix B.3.1.3.
const (
	SignatureSchemeRSAPKCS1SHA256    uint16 = 0x0401
	SignatureSchemeRSAPKCS1SHA384    uint16 = 0x0501
	SignatureSchemeRSAPKCS1SHA512    uint16 = 0x0601
	SignatureSchemeRSAPSSRSAESHA256  uint16 = 0x0804
	SignatureSchemeRSAPSSRSAESHA384  uint16 = 0x0805
	SignatureSchemeRSAPSSRSAESHA512 uint16 = 0x0806
	SignatureSchemeRSAPSSPSSSHA256   uint16 = 0x0809
	SignatureSchemeRSAPSSPSSSHA384   uint16 = 0x080A
	SignatureSchemeRSAPSSPSSSHA512   uint16 = 0x080B
)

// aeadEngine is the sealer/opener contract each suite's AEAD satisfies,
// shaped after the teacher's own `aead` interface (cipher_suites.go) but
// backed by this repo's hand-rolled gcm/chacha20poly1305 packages instead
// of crypto/cipher.
type aeadEngine interface {
	Seal(key, nonce, plaintext, additionalData []byte) []byte
	Open(key, nonce, sealed, additionalData []byte) ([]byte, error)
}

type aesGCMEngine struct{}

func (aesGCMEngine) Seal(key, nonce, plaintext, additionalData []byte) []byte {
	bc, err := ownaes.New(key)
	if err != nil {
		panic(err) // key length is pinned by the cipher suite table below
	}
	return gcm.Seal(bc, nonce, plaintext, additionalData)
}

func (aesGCMEngine) Open(key, nonce, sealed, additionalData []byte) ([]byte, error) {
	bc, err := ownaes.New(key)
	if err != nil {
		panic(err)
	}
	return gcm.Open(bc, nonce, sealed, additionalData)
}

type chacha20Poly1305Engine struct{}

func (chacha20Poly1305Engine) Seal(key, nonce, plaintext, additionalData []byte) []byte {
	var k [32]byte
	var n [12]byte
	copy(k[:], key)
	copy(n[:], nonce)
	return chacha20poly1305.Seal(k, n, plaintext, additionalData)
}

func (chacha20Poly1305Engine) Open(key, nonce, sealed, additionalData []byte) ([]byte, error) {
	var k [32]byte
	var n [12]byte
	copy(k[:], key)
	copy(n[:], nonce)
	return chacha20poly1305.Open(k, n, sealed, additionalData)
}

// cipherSuiteTLS13 pairs an AEAD algorithm with the hash used throughout
// the key schedule, mirroring the teacher's cipherSuiteTLS13 struct shape
// (cipher_suites.go) generalized from crypto.Hash to our own hashfunc
// descriptor.
type cipherSuiteTLS13 struct {
	id     uint16
	keyLen int
	nonceLen int
	aead   aeadEngine
	hash   hashfunc.HashFunc
}

// Ordered by server preference: TLS_AES_256_GCM_SHA384 before
// TLS_AES_128_GCM_SHA256, per spec §4.8 step 2.
var cipherSuitesTLS13 = []*cipherSuiteTLS13{
	{TLS_AES_256_GCM_SHA384, 32, 12, aesGCMEngine{}, hashfunc.SHA384},
	{TLS_AES_128_GCM_SHA256, 16, 12, aesGCMEngine{}, hashfunc.SHA256},
}

// _ keeps chacha20Poly1305Engine referenced even though no currently
// recognised TLS_AES_* suite selects it; a future suite addition (e.g.
// TLS_CHACHA20_POLY1305_SHA256) only needs a table entry, not new plumbing.
var _ aeadEngine = chacha20Poly1305Engine{}

// mutualCipherSuiteTLS13 intersects the client's offered suite list with
// the server's fixed preference order, named after the teacher's
// mutualCipherSuiteTLS13 helper.
func mutualCipherSuiteTLS13(offered []uint16) *cipherSuiteTLS13 {
	for _, pref := range cipherSuitesTLS13 {
		for _, id := range offered {
			if id == pref.id {
				return pref
			}
		}
	}
	return nil
}

func cipherSuiteTLS13ByID(id uint16) *cipherSuiteTLS13 {
	for _, cs := range cipherSuitesTLS13 {
		if cs.id == id {
			return cs
		}
	}
	return nil
}
