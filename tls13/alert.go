package tls13

import "fmt"

// alertLevel mirrors the single wire byte preceding an alert description.
type alertLevel byte

const (
	alertLevelWarning alertLevel = 1
	alertLevelFatal    alertLevel = 2
)

// AlertDescription is the second byte of an Alert record (RFC 8446 §6).
type AlertDescription byte

const (
	AlertCloseNotify          AlertDescription = 0
	AlertUnexpectedMessage    AlertDescription = 10
	AlertBadRecordMAC         AlertDescription = 20
	AlertDecryptionFailed     AlertDescription = 21
	AlertHandshakeFailure     AlertDescription = 40
	AlertIllegalParameter     AlertDescription = 47
	AlertDecodeError          AlertDescription = 50
	AlertDecryptError         AlertDescription = 51
	AlertProtocolVersion      AlertDescription = 70
	AlertInternalError        AlertDescription = 80
	AlertMissingExtension     AlertDescription = 109
	AlertUnsupportedExtension AlertDescription = 110
	AlertNoApplicationProtocol AlertDescription = 120
)

var alertNames = map[AlertDescription]string{
	AlertCloseNotify:           "close_notify",
	AlertUnexpectedMessage:     "unexpected_message",
	AlertBadRecordMAC:          "bad_record_mac",
	AlertDecryptionFailed:      "decryption_failed",
	AlertHandshakeFailure:      "handshake_failure",
	AlertIllegalParameter:      "illegal_parameter",
	AlertDecodeError:           "decode_error",
	AlertDecryptError:          "decrypt_error",
	AlertProtocolVersion:       "protocol_version",
	AlertInternalError:         "internal_error",
	AlertMissingExtension:      "missing_extension",
	AlertUnsupportedExtension:  "unsupported_extension",
	AlertNoApplicationProtocol: "no_application_protocol",
}

// Alert is a fatal TLS alert (RFC 8446 §6), modeled as an error: every
// parse/crypto/negotiation failure in this package surfaces as one of
// these rather than a bare error string.
type Alert struct {
	Level       alertLevel
	Description AlertDescription
}

func (a Alert) Error() string {
	name, ok := alertNames[a.Description]
	if !ok {
		name = fmt.Sprintf("alert(%d)", a.Description)
	}
	return "tls13: " + name
}

// fatal builds a fatal-level Alert for the given description; every error
// alert this engine emits is fatal — the only warning-level alert it sends
// is the close_notify written by Conn.Close.
func fatal(desc AlertDescription) error {
	return Alert{Level: alertLevelFatal, Description: desc}
}

// Bytes encodes the two-byte wire form {level, description}.
func (a Alert) Bytes() []byte {
	return []byte{byte(a.Level), byte(a.Description)}
}
