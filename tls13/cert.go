package tls13

import (
	"errors"

	"github.com/silverreef/tls13lab/primitives/asn1"
)

// sha256WithRSAEncryption and rsassaPss are the two X.509 signature
// algorithm OIDs this engine recognises on a server certificate.
var (
	oidSHA256WithRSAEncryption = []int{1, 2, 840, 113549, 1, 1, 11}
	oidRSASSAPSS               = []int{1, 2, 840, 113549, 1, 1, 10}
)

// Certificate bundles the DER-encoded leaf certificate this engine
// presents and the RSA private key used to sign CertificateVerify.
type Certificate struct {
	DER        []byte
	PrivateKey *asn1.RSAPrivateKey
	PublicKey  *asn1.RSAPublicKey
	sigScheme  uint16
}

// LoadCertificate parses a DER-encoded X.509 certificate and a
// PKCS#8-encoded RSA private key — both supplied as byte slices; on-disk
// file acquisition is the caller's responsibility, not this package's.
func LoadCertificate(certDER, pkcs8Key []byte) (*Certificate, error) {
	pub, err := asn1.ExtractCertificatePublicKey(certDER)
	if err != nil {
		return nil, err
	}
	priv, err := asn1.ExtractPKCS8RSAPrivateKey(pkcs8Key)
	if err != nil {
		return nil, err
	}

	oid, err := asn1.ExtractCertificateSignatureOID(certDER)
	if err != nil {
		return nil, err
	}
	scheme, err := signatureSchemeForOID(oid)
	if err != nil {
		return nil, err
	}

	return &Certificate{
		DER:        certDER,
		PrivateKey: priv,
		PublicKey:  pub,
		sigScheme:  scheme,
	}, nil
}

func oidEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// signatureSchemeForOID maps the certificate's own signature algorithm
// OID to a CertificateVerify SignatureScheme: sha256WithRSAEncryption ⇒
// rsa_pss_rsae_sha256, rsassaPss ⇒ rsa_pss_pss_sha256.
func signatureSchemeForOID(oid []int) (uint16, error) {
	switch {
	case oidEqual(oid, oidSHA256WithRSAEncryption):
		return SignatureSchemeRSAPSSRSAESHA256, nil
	case oidEqual(oid, oidRSASSAPSS):
		return SignatureSchemeRSAPSSPSSSHA256, nil
	default:
		return 0, errors.New("tls13: unsupported certificate signature algorithm")
	}
}
