package asn1

import (
	"errors"
	"math/big"
)

// RSAPublicKey is the (modulus, exponent) pair extracted from a
// SubjectPublicKeyInfo or RSAPrivateKey structure.
type RSAPublicKey struct {
	N *big.Int
	E *big.Int
}

// RSAPrivateKey is the subset of PKCS#1 RSAPrivateKey fields this repo's
// textbook RSASSA-PSS signer needs: n, e, d. CRT parameters are parsed but
// discarded since primitives/rsapss signs with the plain private exponent.
type RSAPrivateKey struct {
	RSAPublicKey
	D *big.Int
}

const contextTag0 = 0

// ExtractCertificatePublicKey walks a DER-encoded X.509 Certificate
// (RFC 5280 §4.1) down to its SubjectPublicKeyInfo and decodes the RSA key
// inside the BIT STRING.
func ExtractCertificatePublicKey(der []byte) (*RSAPublicKey, error) {
	cert, err := ParseDER(der)
	if err != nil {
		return nil, err
	}
	certFields, err := cert.AsSequence()
	if err != nil || len(certFields) < 1 {
		return nil, errors.New("asn1: malformed Certificate")
	}

	tbs := certFields[0]
	tbsFields, err := tbs.AsSequence()
	if err != nil {
		return nil, errors.New("asn1: malformed TBSCertificate")
	}

	idx := 0
	if idx < len(tbsFields) && tbsFields[idx].Class == 2 && tbsFields[idx].Tag == contextTag0 {
		idx++ // skip explicit [0] version
	}
	// serialNumber, signature AlgorithmIdentifier, issuer, validity, subject
	idx += 5
	if idx >= len(tbsFields) {
		return nil, errors.New("asn1: TBSCertificate missing subjectPublicKeyInfo")
	}
	spki := tbsFields[idx]

	return decodeSubjectPublicKeyInfo(spki)
}

func decodeSubjectPublicKeyInfo(spki Element) (*RSAPublicKey, error) {
	spkiFields, err := spki.AsSequence()
	if err != nil || len(spkiFields) != 2 {
		return nil, errors.New("asn1: malformed SubjectPublicKeyInfo")
	}

	bitString, err := spkiFields[1].AsBitString()
	if err != nil {
		return nil, err
	}

	keyEl, err := ParseDER(bitString)
	if err != nil {
		return nil, err
	}
	return decodeRSAPublicKey(keyEl)
}

func decodeRSAPublicKey(el Element) (*RSAPublicKey, error) {
	fields, err := el.AsSequence()
	if err != nil || len(fields) != 2 {
		return nil, errors.New("asn1: malformed RSAPublicKey")
	}
	n, err := fields[0].AsInteger()
	if err != nil {
		return nil, err
	}
	e, err := fields[1].AsInteger()
	if err != nil {
		return nil, err
	}
	return &RSAPublicKey{N: n, E: e}, nil
}

// ExtractCertificateSignatureOID returns the top-level Certificate
// signatureAlgorithm OID (RFC 5280 §4.1.1.2), the arc sequence used by
// the handshake driver to pick a CertificateVerify signature scheme.
func ExtractCertificateSignatureOID(der []byte) ([]int, error) {
	cert, err := ParseDER(der)
	if err != nil {
		return nil, err
	}
	certFields, err := cert.AsSequence()
	if err != nil || len(certFields) < 2 {
		return nil, errors.New("asn1: malformed Certificate")
	}

	algIDFields, err := certFields[1].AsSequence()
	if err != nil || len(algIDFields) < 1 {
		return nil, errors.New("asn1: malformed AlgorithmIdentifier")
	}
	return algIDFields[0].AsObjectID()
}

// ExtractPKCS8RSAPrivateKey unwraps a PKCS#8 PrivateKeyInfo (RFC 5958) and
// decodes the PKCS#1 RSAPrivateKey (RFC 8017 appendix A.1.2) inside it.
func ExtractPKCS8RSAPrivateKey(der []byte) (*RSAPrivateKey, error) {
	top, err := ParseDER(der)
	if err != nil {
		return nil, err
	}
	fields, err := top.AsSequence()
	if err != nil || len(fields) < 3 {
		return nil, errors.New("asn1: malformed PrivateKeyInfo")
	}

	keyBytes, err := fields[2].AsOctetString()
	if err != nil {
		return nil, err
	}

	keyEl, err := ParseDER(keyBytes)
	if err != nil {
		return nil, err
	}
	keyFields, err := keyEl.AsSequence()
	if err != nil || len(keyFields) < 4 {
		return nil, errors.New("asn1: malformed RSAPrivateKey")
	}

	n, err := keyFields[1].AsInteger()
	if err != nil {
		return nil, err
	}
	e, err := keyFields[2].AsInteger()
	if err != nil {
		return nil, err
	}
	d, err := keyFields[3].AsInteger()
	if err != nil {
		return nil, err
	}

	return &RSAPrivateKey{RSAPublicKey: RSAPublicKey{N: n, E: e}, D: d}, nil
}
