package tls13

import (
	"github.com/silverreef/tls13lab/primitives/hkdf"
)

// keySchedule carries the Early ⇒ Handshake ⇒ Main secrets through a
// single handshake (RFC 8446 §7.1). Derivation proceeds in strict order,
// substituting an all-zero buffer for any input absent from the protocol
// path — here, the PSK that this engine never offers.
type keySchedule struct {
	suite     *cipherSuiteTLS13
	handshake []byte // Handshake secret
	main      []byte // Main secret
}

// deriveHandshakeSecrets runs the Early ⇒ Handshake stage of the key
// schedule given the negotiated (EC)DHE shared secret and the transcript
// hash through ServerHello, and returns the key schedule together with the
// client/server handshake traffic secrets (key/iv pairs are expanded
// separately by trafficKeysFromSecret). transcriptHash is already
// H(ClientHello..ServerHello), so it is used directly as the
// HKDF-Expand-Label context rather than hashed again.
func deriveHandshakeSecrets(suite *cipherSuiteTLS13, dheSharedSecret []byte, transcriptHash []byte) (*keySchedule, clientServerSecrets) {
	h := suite.hash
	zeros := make([]byte, h.Size)

	early := hkdf.Extract(h, zeros, zeros)
	derived := hkdf.DeriveSecret(h, early, "derived", nil)
	handshake := hkdf.Extract(h, derived, dheSharedSecret)

	cHSSecret := hkdf.ExpandLabel(h, handshake, "c hs traffic", transcriptHash, h.Size)
	sHSSecret := hkdf.ExpandLabel(h, handshake, "s hs traffic", transcriptHash, h.Size)

	ks := &keySchedule{suite: suite, handshake: handshake}
	return ks, clientServerSecrets{
		clientSecret: cHSSecret,
		serverSecret: sHSSecret,
	}
}

// deriveMainSecret completes the Handshake ⇒ Main transition (RFC 8446
// §7.1): `main_derived = Derive-Secret(handshake, "derived", "")`,
// `main = HKDF-Extract(main_derived, 0)`.
func (ks *keySchedule) deriveMainSecret() {
	h := ks.suite.hash
	zeros := make([]byte, h.Size)
	mainDerived := hkdf.DeriveSecret(h, ks.handshake, "derived", nil)
	ks.main = hkdf.Extract(h, mainDerived, zeros)
}

// deriveApplicationSecrets computes the client/server application traffic
// secrets from the Main secret and the transcript hash as it stands at the
// client's Finished message (RFC 8446 §7.1). Like deriveHandshakeSecrets,
// it takes the hash itself and does not hash it again.
func (ks *keySchedule) deriveApplicationSecrets(transcriptHash []byte) clientServerSecrets {
	h := ks.suite.hash
	return clientServerSecrets{
		clientSecret: hkdf.ExpandLabel(h, ks.main, "c ap traffic", transcriptHash, h.Size),
		serverSecret: hkdf.ExpandLabel(h, ks.main, "s ap traffic", transcriptHash, h.Size),
	}
}

type clientServerSecrets struct {
	clientSecret []byte
	serverSecret []byte
}

// trafficKeysFromSecret expands a traffic secret into its {key, iv} pair
// and wraps them as a fresh trafficKey with its sequence counter at zero —
// every key rotation resets the counter.
func trafficKeysFromSecret(suite *cipherSuiteTLS13, secret []byte) *trafficKey {
	h := suite.hash
	key := hkdf.ExpandLabel(h, secret, "key", nil, suite.keyLen)
	iv := hkdf.ExpandLabel(h, secret, "iv", nil, suite.nonceLen)
	return newTrafficKey(suite, key, iv)
}

// finishedKey derives the Finished-message HMAC key from a handshake
// traffic secret, per RFC 8446 §4.4.4.
func finishedKey(suite *cipherSuiteTLS13, trafficSecret []byte) []byte {
	h := suite.hash
	return hkdf.ExpandLabel(h, trafficSecret, "finished", nil, h.Size)
}
