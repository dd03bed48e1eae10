package tls13

import (
	"crypto/rand"

	"github.com/silverreef/tls13lab/primitives/hashfunc"
	"github.com/silverreef/tls13lab/primitives/hmac"
	"github.com/silverreef/tls13lab/primitives/rsapss"
	"github.com/silverreef/tls13lab/primitives/x25519"
)

// fillRandom fills b with cryptographically secure random bytes, the one
// place this engine reaches for crypto/rand directly: ClientHello/ServerHello
// random is not a derived value any from-scratch primitive covers.
func fillRandom(b []byte) (int, error) {
	return rand.Read(b)
}

// generateKeyShare produces a fresh X25519 key pair for group, returning the
// private scalar and the 32-byte public key to place in ServerHello's
// key_share. Only x25519 is negotiable; negotiate() never selects any other
// group.
func generateKeyShare(group uint16) (priv [x25519.Size]byte, pub []byte, err error) {
	priv, err = x25519.GeneratePrivateKey()
	if err != nil {
		return priv, nil, fatal(AlertInternalError)
	}
	p, err := x25519.PublicKey(priv)
	if err != nil {
		return priv, nil, fatal(AlertInternalError)
	}
	return priv, p[:], nil
}

// x25519SharedSecret computes the DHE shared secret from the server's
// ephemeral private scalar and the client's key_share public value. It
// returns a fatal illegal_parameter alert if the client's key_share is a
// low-order point that drives the shared secret to all-zero — the
// classic small-subgroup/invalid-point attack input (RFC 7748 §6.1).
func x25519SharedSecret(priv [x25519.Size]byte, clientPub []byte) ([]byte, error) {
	var peer [x25519.Size]byte
	copy(peer[:], clientPub)
	secret, err := x25519.SharedSecret(priv, peer)
	if err != nil {
		return nil, fatal(AlertIllegalParameter)
	}
	return secret[:], nil
}

// finishedVerifyData computes Finished.verify_data = HMAC(finishedKey,
// transcriptHash), RFC 8446 §4.4.4.
func finishedVerifyData(suite *cipherSuiteTLS13, finishedKey, transcriptHash []byte) []byte {
	return hmac.Sum(suite.hash, finishedKey, transcriptHash)
}

// signCertificateVerify signs ctx with the certificate's RSA private key
// under RSASSA-PSS, using the hash named by the certificate's own signature
// scheme rather than the cipher suite's hash — CertificateVerify signs with
// the certificate's algorithm, independent of the negotiated AEAD (RFC 8446
// §4.4.3).
func signCertificateVerify(cert *Certificate, _ hashfunc.HashFunc, ctx []byte) ([]byte, error) {
	h := hashForSignatureScheme(cert.sigScheme)
	priv := &rsapss.PrivateKey{
		PublicKey: rsapss.PublicKey{N: cert.PrivateKey.N, E: cert.PrivateKey.E},
		D:         cert.PrivateKey.D,
	}
	return rsapss.Sign(priv, h, ctx)
}

// hashForSignatureScheme maps a SignatureScheme to the hash it names, for
// the two rsa_pss_*_sha256 schemes this engine selects (cert.go's
// signatureSchemeForOID).
func hashForSignatureScheme(scheme uint16) hashfunc.HashFunc {
	switch scheme {
	case SignatureSchemeRSAPSSRSAESHA384, SignatureSchemeRSAPSSPSSSHA384:
		return hashfunc.SHA384
	case SignatureSchemeRSAPSSRSAESHA512, SignatureSchemeRSAPSSPSSSHA512:
		return hashfunc.SHA512
	default:
		return hashfunc.SHA256
	}
}
