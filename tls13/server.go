package tls13

import (
	"io"
	"net"

	"go.uber.org/zap"
)

// Server holds the long-lived state shared by every connection it drives:
// the certificate/key pair presented in the Certificate message, and the
// structured logger threaded into each handshake.
type Server struct {
	cert   *Certificate
	logger *zap.SugaredLogger
}

// ServerOption configures a Server at construction time.
type ServerOption func(*Server)

// WithLogger overrides the default no-op logger with one built by the
// caller, mirroring the teacher's pack-mate keploy-keploy's
// logger-as-constructor-arg convention.
func WithLogger(l *zap.SugaredLogger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer builds a Server from a DER-encoded X.509 certificate and a
// PKCS#8-encoded RSA private key; the engine never reads the filesystem
// itself — the caller, cmd/tls13lab, does that.
func NewServer(certDER, pkcs8Key []byte, opts ...ServerOption) (*Server, error) {
	cert, err := LoadCertificate(certDER, pkcs8Key)
	if err != nil {
		return nil, err
	}
	s := &Server{cert: cert, logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Conn is an established post-handshake connection: bidirectional AEAD
// record I/O over the negotiated application traffic secrets.
type Conn struct {
	raw      net.Conn
	suite    *cipherSuiteTLS13
	readKey  *trafficKey
	writeKey *trafficKey
	logger   *zap.SugaredLogger

	readBuf []byte // plaintext bytes decoded but not yet consumed by Read
}

// Handshake runs the server side of a TLS 1.3 handshake to completion over
// raw, driving the following state machine:
//
//	WAIT_CH -> NEGOTIATE -> SEND_SH -> DERIVE_HS -> SEND_EE -> SEND_CERT ->
//	SEND_CV -> SEND_FIN -> WAIT_C_FIN -> DERIVE_AP -> CONNECTED
//
// It returns a *Conn ready for application data I/O, or an error — in the
// failure case, Handshake has already written a fatal Alert record to raw
// before returning.
func (s *Server) Handshake(raw net.Conn) (*Conn, error) {
	log := s.logger
	tr := newTranscript()

	ch, err := s.waitClientHello(raw, tr)
	if err != nil {
		s.abort(raw, err)
		return nil, err
	}
	log.Debugw("received ClientHello", "cipher_suites", len(ch.cipherSuites))

	suite, clientShare, err := negotiate(ch)
	if err != nil {
		s.abort(raw, err)
		return nil, err
	}
	log.Debugw("negotiated parameters", "suite", suite.id, "group", clientShare.Group)

	serverPriv, serverShare, err := generateKeyShare(clientShare.Group)
	if err != nil {
		s.abort(raw, err)
		return nil, err
	}
	dheSecret, err := x25519SharedSecret(serverPriv, clientShare.KeyExchange)
	if err != nil {
		s.abort(raw, err)
		return nil, err
	}

	sh := &serverHelloMsg{
		sessionIDEcho:  ch.legacySessionID,
		cipherSuite:    suite.id,
		chosenGroup:    clientShare.Group,
		serverKeyShare: serverShare,
	}
	if _, err := fillRandom(sh.random[:]); err != nil {
		s.abort(raw, fatal(AlertInternalError))
		return nil, err
	}

	shBytes := wrapHandshake(HandshakeServerHello, sh.encode())
	tr.append(shBytes)
	if _, err := raw.Write(writeTLSPlaintext(contentTypeHandshake, shBytes)); err != nil {
		return nil, err
	}

	ks, secrets := deriveHandshakeSecrets(suite, dheSecret, tr.hash(suite.hash))
	serverHSKey := trafficKeysFromSecret(suite, secrets.serverSecret)
	clientHSKey := trafficKeysFromSecret(suite, secrets.clientSecret)

	if err := s.sendEncryptedExtensions(raw, tr, suite, serverHSKey); err != nil {
		s.abort(raw, err)
		return nil, err
	}
	if err := s.sendCertificate(raw, tr, suite, serverHSKey); err != nil {
		s.abort(raw, err)
		return nil, err
	}
	if err := s.sendCertificateVerify(raw, tr, suite, serverHSKey); err != nil {
		s.abort(raw, err)
		return nil, err
	}
	if _, err := s.sendFinished(raw, tr, suite, secrets.serverSecret, serverHSKey); err != nil {
		s.abort(raw, err)
		return nil, err
	}

	if err := s.waitClientFinished(raw, tr, suite, secrets.clientSecret, clientHSKey); err != nil {
		s.abort(raw, err)
		return nil, err
	}

	ks.deriveMainSecret()
	appSecrets := ks.deriveApplicationSecrets(tr.hash(suite.hash))

	conn := &Conn{
		raw:      raw,
		suite:    suite,
		readKey:  trafficKeysFromSecret(suite, appSecrets.clientSecret),
		writeKey: trafficKeysFromSecret(suite, appSecrets.serverSecret),
		logger:   log,
	}
	log.Debugw("handshake complete", "suite", suite.id)
	return conn, nil
}

// waitClientHello implements the WAIT_CH state: read exactly one
// TLSPlaintext record and decode its fragment as a ClientHello.
func (s *Server) waitClientHello(raw net.Conn, tr *transcript) (*clientHelloMsg, error) {
	ct, fragment, err := readRecord(raw)
	if err != nil {
		return nil, err
	}
	if ct != contentTypeHandshake {
		return nil, fatal(AlertUnexpectedMessage)
	}

	typ, body, consumed, err := readHandshakeHeader(fragment)
	if err != nil {
		return nil, err
	}
	if typ != HandshakeClientHello || consumed != len(fragment) {
		return nil, fatal(AlertUnexpectedMessage)
	}

	tr.append(fragment)
	return decodeClientHello(body)
}

// negotiate implements the NEGOTIATE state: check legacy_version and
// supported_versions for TLS 1.3, pick the highest
// server-preference cipher suite the client also offered, and pick the
// client's x25519 key_share entry — the only group this engine negotiates.
func negotiate(ch *clientHelloMsg) (*cipherSuiteTLS13, KeyShareEntry, error) {
	if ch.legacyVersion != 0x0303 {
		return nil, KeyShareEntry{}, fatal(AlertProtocolVersion)
	}

	has13 := false
	for _, v := range ch.extensions.SupportedVersions {
		if v == 0x0304 {
			has13 = true
		}
	}
	if !has13 {
		return nil, KeyShareEntry{}, fatal(AlertProtocolVersion)
	}

	suite := mutualCipherSuiteTLS13(ch.cipherSuites)
	if suite == nil {
		return nil, KeyShareEntry{}, fatal(AlertHandshakeFailure)
	}

	for _, share := range ch.extensions.KeyShares {
		if share.Group == NamedGroupX25519 {
			return suite, share, nil
		}
	}
	// No usable key_share for a mutually supported group: this engine does
	// not implement HelloRetryRequest, so the handshake fails outright
	// rather than asking the client to retry.
	return nil, KeyShareEntry{}, fatal(AlertHandshakeFailure)
}

// sendEncryptedExtensions implements SEND_EE.
func (s *Server) sendEncryptedExtensions(raw net.Conn, tr *transcript, suite *cipherSuiteTLS13, key *trafficKey) error {
	body := wrapHandshake(HandshakeEncryptedExtensions, (encryptedExtensionsMsg{}).encode())
	tr.append(body)
	rec, err := sealRecord(key, contentTypeHandshake, body)
	if err != nil {
		return err
	}
	_, err = raw.Write(rec)
	return err
}

// sendCertificate implements SEND_CERT.
func (s *Server) sendCertificate(raw net.Conn, tr *transcript, suite *cipherSuiteTLS13, key *trafficKey) error {
	msg := &certificateMsg{
		entries: []certificateEntry{{certData: s.cert.DER}},
	}
	body := wrapHandshake(HandshakeCertificate, msg.encode())
	tr.append(body)
	rec, err := sealRecord(key, contentTypeHandshake, body)
	if err != nil {
		return err
	}
	_, err = raw.Write(rec)
	return err
}

// sendCertificateVerify implements SEND_CV: sign the transcript context
// string (RFC 8446 §4.4.3) with the certificate's private key under the
// signature scheme derived from the certificate's own signing algorithm.
func (s *Server) sendCertificateVerify(raw net.Conn, tr *transcript, suite *cipherSuiteTLS13, key *trafficKey) error {
	ctx := certificateVerifyContext(tr.hash(suite.hash))
	sig, err := signCertificateVerify(s.cert, suite.hash, ctx)
	if err != nil {
		return fatal(AlertInternalError)
	}

	msg := &certificateVerifyMsg{algorithm: s.cert.sigScheme, signature: sig}
	body := wrapHandshake(HandshakeCertificateVerify, msg.encode())
	tr.append(body)
	rec, err := sealRecord(key, contentTypeHandshake, body)
	if err != nil {
		return err
	}
	_, err = raw.Write(rec)
	return err
}

// sendFinished implements SEND_FIN: compute verify_data as
// HMAC(finished_key, transcript_hash) (RFC 8446 §4.4.4) and send it.
func (s *Server) sendFinished(raw net.Conn, tr *transcript, suite *cipherSuiteTLS13, trafficSecret []byte, key *trafficKey) ([]byte, error) {
	fk := finishedKey(suite, trafficSecret)
	verifyData := finishedVerifyData(suite, fk, tr.hash(suite.hash))

	msg := &finishedMsg{verifyData: verifyData}
	body := wrapHandshake(HandshakeFinished, msg.encode())
	tr.append(body)
	rec, err := sealRecord(key, contentTypeHandshake, body)
	if err != nil {
		return nil, err
	}
	if _, err := raw.Write(rec); err != nil {
		return nil, err
	}
	return verifyData, nil
}

// waitClientFinished implements WAIT_C_FIN: tolerate and discard any
// plaintext ChangeCipherSpec records a middlebox-compatibility client sends
// between ClientHello and its encrypted flight (RFC 8446 §D.4), then read
// one AEAD-sealed record, decode a Finished message, and verify its
// verify_data against the transcript hash taken just before this message
// was appended.
func (s *Server) waitClientFinished(raw net.Conn, tr *transcript, suite *cipherSuiteTLS13, trafficSecret []byte, key *trafficKey) error {
	var outerType contentType
	var fragment []byte
	for {
		var err error
		outerType, fragment, err = readRecord(raw)
		if err != nil {
			return err
		}
		if outerType == contentTypeChangeCipherSpec {
			continue
		}
		break
	}
	innerType, plaintext, err := openRecord(key, outerType, fragment)
	if err != nil {
		return err
	}
	if innerType != contentTypeHandshake {
		return fatal(AlertUnexpectedMessage)
	}

	typ, body, consumed, err := readHandshakeHeader(plaintext)
	if err != nil {
		return err
	}
	if typ != HandshakeFinished || consumed != len(plaintext) {
		return fatal(AlertUnexpectedMessage)
	}

	expectedHash := tr.hash(suite.hash)
	finished, err := decodeFinished(body, suite.hash.Size)
	if err != nil {
		return err
	}

	fk := finishedKey(suite, trafficSecret)
	want := finishedVerifyData(suite, fk, expectedHash)
	if !constantTimeEqual(want, finished.verifyData) {
		return fatal(AlertDecryptError)
	}

	tr.append(plaintext[:consumed])
	return nil
}

// abort writes a fatal Alert record for err (if it is one of ours) before
// the caller closes the connection (RFC 8446 §6).
func (s *Server) abort(raw net.Conn, err error) {
	alert, ok := err.(Alert)
	if !ok {
		alert = Alert{Level: alertLevelFatal, Description: AlertInternalError}
	}
	s.logger.Warnw("handshake aborted", "alert", alert.Error())
	_, _ = raw.Write(writeTLSPlaintext(contentTypeAlert, alert.Bytes()))
}

// Read returns decrypted application data from the connection, unwrapping
// TLSCiphertext records as needed.
func (c *Conn) Read(p []byte) (int, error) {
	for len(c.readBuf) == 0 {
		outerType, fragment, err := readRecord(c.raw)
		if err != nil {
			return 0, err
		}
		innerType, plaintext, err := openRecord(c.readKey, outerType, fragment)
		if err != nil {
			return 0, err
		}
		switch innerType {
		case contentTypeApplicationData:
			c.readBuf = plaintext
		case contentTypeAlert:
			if len(plaintext) >= 2 && plaintext[0] == byte(alertLevelFatal) {
				return 0, io.EOF
			}
		case contentTypeHandshake:
			// Post-handshake NewSessionTicket/KeyUpdate messages are out
			// of scope; ignore rather than implement.
		default:
			return 0, fatal(AlertUnexpectedMessage)
		}
	}
	n := copy(p, c.readBuf)
	c.readBuf = c.readBuf[n:]
	return n, nil
}

// Write encrypts p as one or more application-data records and sends them.
func (c *Conn) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		n := len(p)
		if n > 1<<14 {
			n = 1 << 14
		}
		rec, err := sealRecord(c.writeKey, contentTypeApplicationData, p[:n])
		if err != nil {
			return total, err
		}
		if _, err := c.raw.Write(rec); err != nil {
			return total, err
		}
		total += n
		p = p[n:]
	}
	return total, nil
}

// Close sends a close_notify alert and closes the underlying connection.
func (c *Conn) Close() error {
	rec, err := sealRecord(c.writeKey, contentTypeAlert, Alert{Level: alertLevelWarning, Description: AlertCloseNotify}.Bytes())
	if err == nil {
		_, _ = c.raw.Write(rec)
	}
	return c.raw.Close()
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
