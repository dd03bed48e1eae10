package tls13

import (
	"crypto/rand"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/silverreef/tls13lab/primitives/hashfunc"
	"github.com/silverreef/tls13lab/primitives/rsapss"
	"github.com/silverreef/tls13lab/primitives/x25519"
)

// The handshake driver has no counterpart client in this repository (the
// engine is server-side only), so this end-to-end test plays the client
// role by hand, using the same primitive/keyschedule/record building
// blocks the server uses internally.

func buildTestClientHello(cipherSuites []uint16, clientPub [32]byte) []byte {
	w := newWriter()
	w.writeUint16(0x0303)
	random := make([]byte, 32)
	_, _ = rand.Read(random)
	w.writeBytes(random)
	w.writeOpaque8(nil) // legacy_session_id

	csw := newWriter()
	for _, id := range cipherSuites {
		csw.writeUint16(id)
	}
	w.writeOpaque16(csw.bytes())
	w.writeOpaque8([]byte{0x00}) // legacy_compression_methods

	ext := newWriter()

	sv := newWriter()
	sv.writeUint16(0x0304)
	svOuter := newWriter()
	svOuter.writeOpaque8(sv.bytes())
	ext.writeUint16(extSupportedVersions)
	ext.writeOpaque16(svOuter.bytes())

	ks := newWriter()
	ks.writeUint16(NamedGroupX25519)
	ks.writeOpaque16(clientPub[:])
	ksOuter := newWriter()
	ksOuter.writeOpaque16(ks.bytes())
	ext.writeUint16(extKeyShare)
	ext.writeOpaque16(ksOuter.bytes())

	w.writeOpaque16(ext.bytes())

	return wrapHandshake(HandshakeClientHello, w.bytes())
}

// decodeServerHelloForTest parses the wire form encoded by
// serverHelloMsg.encode(): this engine never needs to decode its own
// ServerHello in production, so the decoder lives here, test-only.
func decodeServerHelloForTest(t *testing.T, body []byte) (cipherSuite, chosenGroup uint16, serverShare []byte) {
	c := newCursor(body)
	_, err := c.readUint16() // legacy_version
	require.NoError(t, err)
	_, err = c.readBytes(32) // random
	require.NoError(t, err)
	_, err = c.readOpaque8() // session_id_echo
	require.NoError(t, err)
	cipherSuite, err = c.readUint16()
	require.NoError(t, err)
	_, err = c.readUint8() // legacy_compression_method
	require.NoError(t, err)
	extData, err := c.readOpaque16()
	require.NoError(t, err)

	raw, err := parseExtensionBlock(extData)
	require.NoError(t, err)
	for _, e := range raw {
		if e.Type == extKeyShare {
			kc := newCursor(e.Data)
			chosenGroup, err = kc.readUint16()
			require.NoError(t, err)
			serverShare, err = kc.readOpaque16()
			require.NoError(t, err)
		}
	}
	return
}

func TestHandshakeEndToEnd(t *testing.T) {
	n, e, d := testCertParams()
	certDER := buildTestCertificateDER(n, e, oidSHA256WithRSAEncryption)
	keyDER := buildTestPKCS8DER(n, e, d)

	srv, err := NewServer(certDER, keyDER)
	require.NoError(t, err)

	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	type handshakeResult struct {
		conn *Conn
		err  error
	}
	resultCh := make(chan handshakeResult, 1)
	go func() {
		conn, err := srv.Handshake(serverConn)
		resultCh <- handshakeResult{conn, err}
	}()

	clientPriv, err := x25519.GeneratePrivateKey()
	require.NoError(t, err)
	clientPub, err := x25519.PublicKey(clientPriv)
	require.NoError(t, err)

	clientHello := buildTestClientHello([]uint16{TLS_AES_128_GCM_SHA256, TLS_AES_256_GCM_SHA384}, clientPub)
	_, err = clientConn.Write(writeTLSPlaintext(contentTypeHandshake, clientHello))
	require.NoError(t, err)

	tr := newTranscript()
	tr.append(clientHello)

	ct, shFragment, err := readRecord(clientConn)
	require.NoError(t, err)
	require.Equal(t, contentTypeHandshake, ct)
	tr.append(shFragment)

	typ, shBody, consumed, err := readHandshakeHeader(shFragment)
	require.NoError(t, err)
	require.Equal(t, HandshakeServerHello, typ)
	require.Equal(t, len(shFragment), consumed)

	cipherSuiteID, chosenGroup, serverShare := decodeServerHelloForTest(t, shBody)
	require.Equal(t, TLS_AES_256_GCM_SHA384, cipherSuiteID)
	require.Equal(t, uint16(NamedGroupX25519), chosenGroup)

	suite := cipherSuiteTLS13ByID(cipherSuiteID)
	require.NotNil(t, suite)

	var serverPub [32]byte
	copy(serverPub[:], serverShare)
	dheSecret, err := x25519.SharedSecret(clientPriv, serverPub)
	require.NoError(t, err)

	ks, hsSecrets := deriveHandshakeSecrets(suite, dheSecret[:], tr.hash(suite.hash))
	serverHSKey := trafficKeysFromSecret(suite, hsSecrets.serverSecret)
	clientHSKey := trafficKeysFromSecret(suite, hsSecrets.clientSecret)

	readServerHandshakeMessage := func() (HandshakeType, []byte) {
		outerType, fragment, err := readRecord(clientConn)
		require.NoError(t, err)
		innerType, plaintext, err := openRecord(serverHSKey, outerType, fragment)
		require.NoError(t, err)
		require.Equal(t, contentTypeHandshake, innerType)

		typ, body, consumed, err := readHandshakeHeader(plaintext)
		require.NoError(t, err)
		require.Equal(t, len(plaintext), consumed)
		tr.append(plaintext)
		return typ, body
	}

	eeType, _ := readServerHandshakeMessage()
	require.Equal(t, HandshakeEncryptedExtensions, eeType)

	certType, _ := readServerHandshakeMessage()
	require.Equal(t, HandshakeCertificate, certType)

	// CertificateVerify signs the transcript hash taken right before the
	// CertificateVerify message itself is appended (server.go's
	// sendCertificateVerify), so it must be captured here, not after.
	expectedCVTranscriptHash := tr.hash(suite.hash)

	cvType, cvBody := readServerHandshakeMessage()
	require.Equal(t, HandshakeCertificateVerify, cvType)

	cvCursor := newCursor(cvBody)
	cvScheme, err := cvCursor.readUint16()
	require.NoError(t, err)
	cvSignature, err := cvCursor.readOpaque16()
	require.NoError(t, err)
	require.Equal(t, SignatureSchemeRSAPSSRSAESHA256, cvScheme)

	cvContext := certificateVerifyContext(expectedCVTranscriptHash)
	pub := &rsapss.PublicKey{N: n, E: e}
	require.NoError(t, rsapss.Verify(pub, hashfunc.SHA256, cvContext, cvSignature, hashfunc.SHA256.Size))

	expectedServerFinished := finishedVerifyData(suite, finishedKey(suite, hsSecrets.serverSecret), tr.hash(suite.hash))
	finType, finBody := readServerHandshakeMessage()
	require.Equal(t, HandshakeFinished, finType)
	require.Equal(t, expectedServerFinished, finBody)

	// A standards-conforming client sends a middlebox-compatibility
	// ChangeCipherSpec record (plaintext, content_type=20) before its
	// encrypted flight; the server must tolerate and discard it rather
	// than treat it as the Finished message.
	_, err = clientConn.Write(writeTLSPlaintext(contentTypeChangeCipherSpec, []byte{0x01}))
	require.NoError(t, err)

	clientFinishedVerifyData := finishedVerifyData(suite, finishedKey(suite, hsSecrets.clientSecret), tr.hash(suite.hash))
	clientFinished := wrapHandshake(HandshakeFinished, clientFinishedVerifyData)
	tr.append(clientFinished)

	rec, err := sealRecord(clientHSKey, contentTypeHandshake, clientFinished)
	require.NoError(t, err)
	_, err = clientConn.Write(rec)
	require.NoError(t, err)

	ks.deriveMainSecret()
	appSecrets := ks.deriveApplicationSecrets(tr.hash(suite.hash))
	clientAppReadKey := trafficKeysFromSecret(suite, appSecrets.serverSecret)
	clientAppWriteKey := trafficKeysFromSecret(suite, appSecrets.clientSecret)

	select {
	case result := <-resultCh:
		require.NoError(t, result.err)
		require.NotNil(t, result.conn)

		// net.Pipe is unbuffered: each Write blocks until the other end
		// reads, so every write runs on its own goroutine while this one
		// reads.
		serverWriteErr := make(chan error, 1)
		go func() {
			_, err := result.conn.Write([]byte("hello from server"))
			serverWriteErr <- err
		}()

		outerType, fragment, err := readRecord(clientConn)
		require.NoError(t, err)
		require.NoError(t, <-serverWriteErr)
		innerType, appData, err := openRecord(clientAppReadKey, outerType, fragment)
		require.NoError(t, err)
		require.Equal(t, contentTypeApplicationData, innerType)
		require.Equal(t, "hello from server", string(appData))

		clientRec, err := sealRecord(clientAppWriteKey, contentTypeApplicationData, []byte("hello from client"))
		require.NoError(t, err)
		clientWriteErr := make(chan error, 1)
		go func() {
			_, err := clientConn.Write(clientRec)
			clientWriteErr <- err
		}()

		buf := make([]byte, 64)
		n, err := result.conn.Read(buf)
		require.NoError(t, err)
		require.NoError(t, <-clientWriteErr)
		require.Equal(t, "hello from client", string(buf[:n]))

	case <-time.After(5 * time.Second):
		t.Fatal("handshake did not complete in time")
	}
}
