package tls13

// HandshakeType is the one-byte message-type tag of the 4-byte handshake
// header {type:1, length:3-be, body[length]}, RFC 8446 §4.
type HandshakeType uint8

const (
	HandshakeClientHello        HandshakeType = 1
	HandshakeServerHello        HandshakeType = 2
	HandshakeNewSessionTicket   HandshakeType = 4
	HandshakeEndOfEarlyData     HandshakeType = 5
	HandshakeEncryptedExtensions HandshakeType = 8
	HandshakeCertificate        HandshakeType = 11
	HandshakeCertificateRequest HandshakeType = 13
	HandshakeCertificateVerify  HandshakeType = 15
	HandshakeFinished           HandshakeType = 20
	HandshakeKeyUpdate          HandshakeType = 24
	HandshakeMessageHash        HandshakeType = 254
)

// wrapHandshake prepends the 4-byte handshake header to body.
func wrapHandshake(typ HandshakeType, body []byte) []byte {
	w := newWriter()
	w.writeUint8(uint8(typ))
	w.writeUint24(uint32(len(body)))
	w.writeBytes(body)
	return w.bytes()
}

// readHandshakeHeader splits a single handshake message (header + body)
// out of a byte stream, returning the type, the body, and the total bytes
// consumed (header included) — used by the record layer to find message
// boundaries inside a reassembled plaintext stream.
func readHandshakeHeader(data []byte) (HandshakeType, []byte, int, error) {
	c := newCursor(data)
	typ, err := c.readUint8()
	if err != nil {
		return 0, nil, 0, err
	}
	length, err := c.readUint24()
	if err != nil {
		return 0, nil, 0, err
	}
	body, err := c.readBytes(int(length))
	if err != nil {
		return 0, nil, 0, err
	}
	return HandshakeType(typ), body, 4 + int(length), nil
}

// clientHelloMsg is the decoded ClientHello body (RFC 8446 §4.1.2), after
// the outer 4-byte handshake header.
type clientHelloMsg struct {
	legacyVersion           uint16
	random                  [32]byte
	legacySessionID         []byte
	cipherSuites            []uint16
	legacyCompressionMethods []byte
	extensions              clientHelloExtensions
}

func decodeClientHello(body []byte) (*clientHelloMsg, error) {
	c := newCursor(body)

	version, err := c.readUint16()
	if err != nil {
		return nil, err
	}
	randomBytes, err := c.readBytes(32)
	if err != nil {
		return nil, err
	}
	sessionID, err := c.readOpaque8()
	if err != nil {
		return nil, err
	}
	cipherSuitesRaw, err := c.readOpaque16()
	if err != nil {
		return nil, err
	}
	if len(cipherSuitesRaw)%2 != 0 {
		return nil, fatal(AlertDecodeError)
	}
	compression, err := c.readOpaque8()
	if err != nil {
		return nil, err
	}
	extData, err := c.readOpaque16()
	if err != nil {
		return nil, err
	}
	if !c.done() {
		return nil, fatal(AlertDecodeError)
	}

	if version != 0x0303 {
		return nil, fatal(AlertProtocolVersion)
	}

	var suites []uint16
	suiteCur := newCursor(cipherSuitesRaw)
	for !suiteCur.done() {
		s, err := suiteCur.readUint16()
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}

	exts, err := parseClientHelloExtensions(extData)
	if err != nil {
		return nil, err
	}

	msg := &clientHelloMsg{
		legacyVersion:            version,
		legacySessionID:          append([]byte{}, sessionID...),
		cipherSuites:             suites,
		legacyCompressionMethods: append([]byte{}, compression...),
		extensions:               exts,
	}
	copy(msg.random[:], randomBytes)
	return msg, nil
}

// serverHelloMsg is the ServerHello body this engine emits (RFC 8446 §4.1.3).
type serverHelloMsg struct {
	random          [32]byte
	sessionIDEcho   []byte
	cipherSuite     uint16
	chosenGroup     uint16
	serverKeyShare  []byte
}

func (m *serverHelloMsg) encode() []byte {
	w := newWriter()
	w.writeUint16(0x0303)
	w.writeBytes(m.random[:])
	w.writeOpaque8(m.sessionIDEcho)
	w.writeUint16(m.cipherSuite)
	w.writeUint8(0) // legacy_compression_method
	w.writeOpaque16(encodeServerHelloExtensions(m.chosenGroup, m.serverKeyShare))
	return w.bytes()
}

// encryptedExtensionsMsg carries an empty-or-small extension block
// (RFC 8446 §4.3.1); this engine always emits it empty.
type encryptedExtensionsMsg struct{}

func (encryptedExtensionsMsg) encode() []byte {
	w := newWriter()
	w.writeOpaque16(encodeEncryptedExtensions())
	return w.bytes()
}

// certificateEntry is one entry of the Certificate message's cert_list
// (RFC 8446 §4.4.2): raw X.509 DER plus a per-certificate extensions block
// (always empty here).
type certificateEntry struct {
	certData   []byte
	extensions []byte
}

type certificateMsg struct {
	requestContext []byte
	entries        []certificateEntry
}

func (m *certificateMsg) encode() []byte {
	w := newWriter()
	w.writeOpaque8(m.requestContext)

	list := newWriter()
	for _, e := range m.entries {
		list.writeOpaque24(e.certData)
		list.writeOpaque16(e.extensions)
	}
	w.writeOpaque24(list.bytes())
	return w.bytes()
}

// certificateVerifyMsg carries the signature over the transcript context
// string (RFC 8446 §4.4.3).
type certificateVerifyMsg struct {
	algorithm uint16
	signature []byte
}

func (m *certificateVerifyMsg) encode() []byte {
	w := newWriter()
	w.writeUint16(m.algorithm)
	w.writeOpaque16(m.signature)
	return w.bytes()
}

// finishedMsg carries verify_data, sized to the cipher suite's hash
// (RFC 8446 §4.4.4).
type finishedMsg struct {
	verifyData []byte
}

func (m *finishedMsg) encode() []byte {
	w := newWriter()
	w.writeBytes(m.verifyData)
	return w.bytes()
}

func decodeFinished(body []byte, hashLen int) (*finishedMsg, error) {
	if len(body) != hashLen {
		return nil, fatal(AlertDecodeError)
	}
	return &finishedMsg{verifyData: append([]byte{}, body...)}, nil
}

// certificateVerifyContext builds the fixed prefix + context-string +
// transcript-hash blob that CertificateVerify signs (RFC 8446 §4.4.3).
func certificateVerifyContext(transcriptHash []byte) []byte {
	w := newWriter()
	for i := 0; i < 64; i++ {
		w.writeByte(0x20)
	}
	w.writeBytes([]byte("TLS 1.3, server CertificateVerify"))
	w.writeByte(0x00)
	w.writeBytes(transcriptHash)
	return w.bytes()
}

// newSessionTicketMsg and keyUpdateMsg are modeled for wire-format
// completeness but this engine's driver never emits or expects them —
// session tickets, 0-RTT and post-handshake KeyUpdate are out of scope.
type newSessionTicketMsg struct {
	ticketLifetime uint32
	ticketAgeAdd   uint32
	ticketNonce    []byte
	ticket         []byte
	extensions     []byte
}

type keyUpdateMsg struct {
	requestUpdate uint8
}

// certificateRequestMsg is modeled for wire-format completeness (RFC 8446
// §4.3.2) but never sent: client authentication is out of scope.
type certificateRequestMsg struct {
	requestContext []byte
	extensions     []byte
}
