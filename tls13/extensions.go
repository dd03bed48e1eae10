package tls13

// Extension type codes, RFC 8446 §4.2. The same code names a different
// payload shape depending on which handshake message carries it, so this
// package never collapses those shapes into one type — each parent gets
// its own extension struct.
const (
	extServerName           uint16 = 0
	extSupportedGroups       uint16 = 10
	extSignatureAlgorithms   uint16 = 13
	extRenegotiationInfo     uint16 = 0xff01
	extPreSharedKey          uint16 = 41
	extPSKKeyExchangeModes   uint16 = 45
	extSupportedVersions     uint16 = 43
	extKeyShare              uint16 = 51
)

// KeyShareEntry is a single (group, public key) offer, RFC 8446 §4.2.8.
type KeyShareEntry struct {
	Group       uint16
	KeyExchange []byte
}

// clientHelloExtensions holds the subset of ClientHello extensions this
// engine acts on. Extensions not named here are parsed generically and
// discarded.
type clientHelloExtensions struct {
	SupportedGroups      []uint16
	SignatureAlgorithms  []uint16
	SupportedVersions    []uint16
	KeyShares            []KeyShareEntry
	PSKKeyExchangeModes  []uint8
	HasPreSharedKey      bool
	HasRenegotiationInfo bool
}

func parseExtensionBlock(data []byte) ([]rawExtension, error) {
	c := newCursor(data)
	var exts []rawExtension
	for !c.done() {
		typ, err := c.readUint16()
		if err != nil {
			return nil, err
		}
		body, err := c.readOpaque16()
		if err != nil {
			return nil, err
		}
		exts = append(exts, rawExtension{Type: typ, Data: body})
	}
	return exts, nil
}

type rawExtension struct {
	Type uint16
	Data []byte
}

// parseClientHelloExtensions decodes every extension this engine cares
// about from the raw block; extensions it does not recognise are simply
// skipped, per RFC 8446 §4.1.2.
func parseClientHelloExtensions(data []byte) (clientHelloExtensions, error) {
	var out clientHelloExtensions

	raw, err := parseExtensionBlock(data)
	if err != nil {
		return out, err
	}

	for _, ext := range raw {
		switch ext.Type {
		case extSupportedGroups:
			groups, err := parseUint16List(ext.Data)
			if err != nil {
				return out, err
			}
			out.SupportedGroups = groups

		case extSignatureAlgorithms:
			schemes, err := parseUint16List(ext.Data)
			if err != nil {
				return out, err
			}
			out.SignatureAlgorithms = schemes

		case extSupportedVersions:
			versions, err := parseSupportedVersionsCH(ext.Data)
			if err != nil {
				return out, err
			}
			out.SupportedVersions = versions

		case extKeyShare:
			shares, err := parseKeyShareClientHello(ext.Data)
			if err != nil {
				return out, err
			}
			out.KeyShares = shares

		case extPSKKeyExchangeModes:
			modes, err := parsePSKModes(ext.Data)
			if err != nil {
				return out, err
			}
			out.PSKKeyExchangeModes = modes

		case extPreSharedKey:
			out.HasPreSharedKey = true // 0-RTT/PSK resumption is not implemented; presence is recorded, not acted on

		case extRenegotiationInfo:
			out.HasRenegotiationInfo = true

		case extServerName:
			// Semantically ignored; presence is enough.

		default:
			// Unknown extension: the caller already consumed exactly
			// ext.Data's declared length via parseExtensionBlock, so no
			// further skipping logic is needed here.
		}
	}

	return out, nil
}

// parseUint16List reads a u16-length-prefixed vector of u16 entries, used
// by supported_groups and signature_algorithms.
func parseUint16List(data []byte) ([]uint16, error) {
	c := newCursor(data)
	body, err := c.readOpaque16()
	if err != nil {
		return nil, err
	}
	if !c.done() {
		return nil, fatal(AlertDecodeError)
	}

	bc := newCursor(body)
	var out []uint16
	for !bc.done() {
		v, err := bc.readUint16()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// parseSupportedVersionsCH reads the ClientHello form: opaque8 of u16 entries.
func parseSupportedVersionsCH(data []byte) ([]uint16, error) {
	c := newCursor(data)
	body, err := c.readOpaque8()
	if err != nil {
		return nil, err
	}
	if !c.done() {
		return nil, fatal(AlertDecodeError)
	}
	bc := newCursor(body)
	var out []uint16
	for !bc.done() {
		v, err := bc.readUint16()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// parseKeyShareClientHello reads the ClientHello form of key_share: a
// u16-length-prefixed list of KeyShareEntry{group:u16, opaque16 key}.
func parseKeyShareClientHello(data []byte) ([]KeyShareEntry, error) {
	c := newCursor(data)
	body, err := c.readOpaque16()
	if err != nil {
		return nil, err
	}
	if !c.done() {
		return nil, fatal(AlertDecodeError)
	}

	bc := newCursor(body)
	var out []KeyShareEntry
	for !bc.done() {
		group, err := bc.readUint16()
		if err != nil {
			return nil, err
		}
		key, err := bc.readOpaque16()
		if err != nil {
			return nil, err
		}
		out = append(out, KeyShareEntry{Group: group, KeyExchange: append([]byte{}, key...)})
	}
	return out, nil
}

func parsePSKModes(data []byte) ([]uint8, error) {
	c := newCursor(data)
	body, err := c.readOpaque8()
	if err != nil {
		return nil, err
	}
	if !c.done() {
		return nil, fatal(AlertDecodeError)
	}
	return append([]byte{}, body...), nil
}

// encodeServerHelloExtensions builds the ServerHello form: supported_versions
// carries a bare u16 (not a list), key_share carries a single entry (not a
// list) — both distinct from their ClientHello shapes (RFC 8446 §4.2.1,
// §4.2.8).
func encodeServerHelloExtensions(chosenGroup uint16, serverShare []byte) []byte {
	body := newWriter()

	sv := newWriter()
	sv.writeUint16(0x0304)
	body.writeUint16(extSupportedVersions)
	body.writeOpaque16(sv.bytes())

	ks := newWriter()
	ks.writeUint16(chosenGroup)
	ks.writeOpaque16(serverShare)
	body.writeUint16(extKeyShare)
	body.writeOpaque16(ks.bytes())

	return body.bytes()
}

// encodeEncryptedExtensions builds an empty-or-small EncryptedExtensions
// extension block (RFC 8446 §4.3.1).
func encodeEncryptedExtensions() []byte {
	return []byte{}
}
