package tls13

import (
	"encoding/binary"
	"io"
)

// contentType is the outer (and, after decryption, inner) record type
// byte, RFC 8446 §5.1.
type contentType uint8

const (
	contentTypeInvalid          contentType = 0
	contentTypeChangeCipherSpec contentType = 20
	contentTypeAlert            contentType = 21
	contentTypeHandshake        contentType = 22
	contentTypeApplicationData  contentType = 23
)

const legacyRecordVersion uint16 = 0x0303

// maxRecordFragment bounds a single record's fragment to 2^14+256 bytes
// (RFC 8446 §5.1/§5.2).
const maxRecordFragment = 1<<14 + 256

// writeTLSPlaintext frames fragment as a TLSPlaintext record: this engine
// only uses it for the very first flight in each direction (RFC 8446 §5.1).
func writeTLSPlaintext(ct contentType, fragment []byte) []byte {
	out := make([]byte, 5+len(fragment))
	out[0] = byte(ct)
	binary.BigEndian.PutUint16(out[1:3], legacyRecordVersion)
	binary.BigEndian.PutUint16(out[3:5], uint16(len(fragment)))
	copy(out[5:], fragment)
	return out
}

// readRecord reads one 5-byte-headered record off r and returns its
// outer content type and fragment bytes, without attempting to interpret
// or decrypt it — the caller decides whether the fragment is plaintext or
// an AEAD-sealed TLSCiphertext payload.
func readRecord(r io.Reader) (contentType, []byte, error) {
	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, err
	}

	ct := contentType(header[0])
	length := binary.BigEndian.Uint16(header[3:5])
	if int(length) > maxRecordFragment {
		return 0, nil, fatal(AlertDecodeError)
	}

	fragment := make([]byte, length)
	if _, err := io.ReadFull(r, fragment); err != nil {
		return 0, nil, err
	}
	return ct, fragment, nil
}

// sealRecord wraps plaintext (whose true content type is realType) as a
// TLSCiphertext record under the given traffic key: the AEAD input is
// plaintext || realType (no padding is added by this engine, since it
// never pads outgoing records); the additional data is the 5-byte
// TLSCiphertext header, computed from the sealed length (RFC 8446 §5.2).
func sealRecord(tk *trafficKey, realType contentType, plaintext []byte) ([]byte, error) {
	inner := make([]byte, 0, len(plaintext)+1)
	inner = append(inner, plaintext...)
	inner = append(inner, byte(realType))

	sealedLen := len(inner) + tagOverhead(tk)
	header := make([]byte, 5)
	header[0] = byte(contentTypeApplicationData)
	binary.BigEndian.PutUint16(header[1:3], legacyRecordVersion)
	binary.BigEndian.PutUint16(header[3:5], uint16(sealedLen))

	sealed, err := tk.seal(inner, header)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 5+len(sealed))
	out = append(out, header...)
	out = append(out, sealed...)
	return out, nil
}

// tagOverhead reports the AEAD tag length added by Seal, used only to
// pre-compute the TLSCiphertext length field's value before sealing.
func tagOverhead(tk *trafficKey) int {
	const gcmOrPoly1305TagSize = 16
	return gcmOrPoly1305TagSize
}

// openRecord decrypts a TLSCiphertext record's fragment under the given
// traffic key, recovers the true content type from the trailing non-zero
// byte, and strips the zero padding (RFC 8446 §5.2).
func openRecord(tk *trafficKey, outerType contentType, fragment []byte) (contentType, []byte, error) {
	if outerType != contentTypeApplicationData {
		return 0, nil, fatal(AlertUnexpectedMessage)
	}

	header := make([]byte, 5)
	header[0] = byte(outerType)
	binary.BigEndian.PutUint16(header[1:3], legacyRecordVersion)
	binary.BigEndian.PutUint16(header[3:5], uint16(len(fragment)))

	inner, err := tk.open(fragment, header)
	if err != nil {
		return 0, nil, err
	}

	i := len(inner) - 1
	for i >= 0 && inner[i] == 0 {
		i--
	}
	if i < 0 {
		return 0, nil, fatal(AlertUnexpectedMessage)
	}
	return contentType(inner[i]), inner[:i], nil
}
