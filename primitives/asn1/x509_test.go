package asn1

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// --- minimal DER builders, test-only: this package only ever decodes DER,
// so fixtures for the decoder's own tests have to assemble it by hand. ---

func derLen(n int) []byte {
	if n < 128 {
		return []byte{byte(n)}
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte(n & 0xFF)}, b...)
		n >>= 8
	}
	return append([]byte{byte(0x80 | len(b))}, b...)
}

func tlv(tag byte, content []byte) []byte {
	return append([]byte{tag}, append(derLen(len(content)), content...)...)
}

func derInt(v *big.Int) []byte {
	b := v.Bytes()
	if len(b) == 0 {
		b = []byte{0}
	}
	if b[0]&0x80 != 0 {
		b = append([]byte{0}, b...)
	}
	return tlv(0x02, b)
}

func derSeq(parts ...[]byte) []byte {
	var content []byte
	for _, p := range parts {
		content = append(content, p...)
	}
	return tlv(0x30, content)
}

func derNull() []byte { return tlv(0x05, nil) }

func derOID(arcs []int) []byte {
	var content []byte
	content = append(content, byte(arcs[0]*40+arcs[1]))
	for _, arc := range arcs[2:] {
		content = append(content, encodeBase128(arc)...)
	}
	return tlv(0x06, content)
}

func encodeBase128(v int) []byte {
	if v == 0 {
		return []byte{0}
	}
	var groups []byte
	for v > 0 {
		groups = append([]byte{byte(v & 0x7F)}, groups...)
		v >>= 7
	}
	for i := 0; i < len(groups)-1; i++ {
		groups[i] |= 0x80
	}
	return groups
}

func derBitString(content []byte) []byte {
	return tlv(0x03, append([]byte{0x00}, content...))
}

func derOctetString(content []byte) []byte {
	return tlv(0x04, content)
}

var oidRSAEncryption = []int{1, 2, 840, 113549, 1, 1, 1}
var oidSHA256WithRSA = []int{1, 2, 840, 113549, 1, 1, 11}

func buildRSAPublicKeyDER(n, e *big.Int) []byte {
	return derSeq(derInt(n), derInt(e))
}

func buildSubjectPublicKeyInfoDER(n, e *big.Int) []byte {
	alg := derSeq(derOID(oidRSAEncryption), derNull())
	return derSeq(alg, derBitString(buildRSAPublicKeyDER(n, e)))
}

func buildCertificateDER(n, e *big.Int) []byte {
	serial := derInt(big.NewInt(1))
	tbsSigAlg := derSeq(derOID(oidSHA256WithRSA), derNull())
	issuer := derSeq()
	validity := derSeq()
	subject := derSeq()
	spki := buildSubjectPublicKeyInfoDER(n, e)

	tbs := derSeq(serial, tbsSigAlg, issuer, validity, subject, spki)
	outerSigAlg := derSeq(derOID(oidSHA256WithRSA), derNull())
	signatureValue := derBitString([]byte{0x01, 0x02, 0x03})

	return derSeq(tbs, outerSigAlg, signatureValue)
}

func buildPKCS8RSAPrivateKeyDER(n, e, d *big.Int) []byte {
	rsaPriv := derSeq(derInt(big.NewInt(0)), derInt(n), derInt(e), derInt(d))
	alg := derSeq(derOID(oidRSAEncryption), derNull())
	return derSeq(derInt(big.NewInt(0)), alg, derOctetString(rsaPriv))
}

func testRSAParams() (n, e, d *big.Int) {
	n, _ = new(big.Int).SetString("100000000000000000000000000000000000000000000000000000000000f43d800000000000000000000000000000000000000000000000000000002e7a9fad7", 16)
	e = big.NewInt(65537)
	d, _ = new(big.Int).SetString("bb9f4460bb9f4460bb9f4460bb9f4460bb9f4460bb9f4460bb9f4460bbaa746d4352bcad4352bcad4352bcad4352bcad4352bcad4352bcad4352bcaf644f601", 16)
	return
}

func TestExtractCertificatePublicKey(t *testing.T) {
	n, e, _ := testRSAParams()
	der := buildCertificateDER(n, e)

	pub, err := ExtractCertificatePublicKey(der)
	require.NoError(t, err)
	require.Equal(t, 0, n.Cmp(pub.N))
	require.Equal(t, 0, e.Cmp(pub.E))
}

func TestExtractCertificateSignatureOID(t *testing.T) {
	n, e, _ := testRSAParams()
	der := buildCertificateDER(n, e)

	oid, err := ExtractCertificateSignatureOID(der)
	require.NoError(t, err)
	require.Equal(t, oidSHA256WithRSA, oid)
}

func TestExtractPKCS8RSAPrivateKey(t *testing.T) {
	n, e, d := testRSAParams()
	der := buildPKCS8RSAPrivateKeyDER(n, e, d)

	priv, err := ExtractPKCS8RSAPrivateKey(der)
	require.NoError(t, err)
	require.Equal(t, 0, n.Cmp(priv.N))
	require.Equal(t, 0, e.Cmp(priv.E))
	require.Equal(t, 0, d.Cmp(priv.D))
}

func TestExtractCertificatePublicKeyRejectsTruncatedInput(t *testing.T) {
	n, e, _ := testRSAParams()
	der := buildCertificateDER(n, e)
	_, err := ExtractCertificatePublicKey(der[:len(der)-5])
	require.Error(t, err)
}
