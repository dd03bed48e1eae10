// Package x25519 implements X25519 (RFC 7748) over Curve25519 via the
// Montgomery ladder, with the field arithmetic expressed over math/big
// rather than hand-unrolled 32-bit limbs — big-integer arithmetic is treated
// as an external primitive, and math/big.Int.Exp is the idiomatic Go
// stand-in the rest of the pack reaches for when it needs this class of
// modular arithmetic (see DESIGN.md).
package x25519

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// Size is the length in bytes of a scalar, a u-coordinate, and the shared
// output — all fixed at 32 for Curve25519.
const Size = 32

// ErrZeroInput is returned when a field element inversion is attempted on
// zero, which has no multiplicative inverse — this must fail loudly rather
// than silently return zero.
var ErrZeroInput = errors.New("x25519: cannot invert zero")

var p = func() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 255)
	return p.Sub(p, big.NewInt(19))
}()

var a24 = big.NewInt(121665)

func add(a, b *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Add(a, b), p) }
func sub(a, b *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Sub(a, b), p) }
func mul(a, b *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Mul(a, b), p) }
func sq(a *big.Int) *big.Int     { return mul(a, a) }

// invert computes a^-1 mod p via Fermat's little theorem (a^(p-2) mod p).
func invert(a *big.Int) (*big.Int, error) {
	if a.Sign() == 0 {
		return nil, ErrZeroInput
	}
	exp := new(big.Int).Sub(p, big.NewInt(2))
	return new(big.Int).Exp(a, exp, p), nil
}

// decodeScalar clamps a 32-byte private key per RFC 7748 §5: clear the
// low 3 bits of byte 0, clear the high bit of byte 31, set bit 6 of byte 31.
func decodeScalar(k [Size]byte) *big.Int {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
	return leBytesToInt(k[:])
}

// decodeUCoordinate clears the high bit of the top byte before interpreting
// the buffer as a little-endian integer, per RFC 7748 §5.
func decodeUCoordinate(u [Size]byte) *big.Int {
	u[31] &= 127
	return leBytesToInt(u[:])
}

func leBytesToInt(b []byte) *big.Int {
	rev := make([]byte, len(b))
	for i, c := range b {
		rev[len(b)-1-i] = c
	}
	return new(big.Int).SetBytes(rev)
}

func intToLEBytes(x *big.Int) [Size]byte {
	var out [Size]byte
	b := new(big.Int).Mod(x, p).Bytes() // big-endian, shorter than Size if leading zeros
	for i := 0; i < len(b); i++ {
		out[len(b)-1-i] = b[i]
	}
	return out
}

// ladder runs the Montgomery ladder for the clamped scalar k against the
// decoded u-coordinate point, per RFC 7748 §5.
func ladder(k *big.Int, point *big.Int) (*big.Int, error) {
	x1 := point
	x2, z2 := big.NewInt(1), big.NewInt(0)
	x3, z3 := new(big.Int).Set(point), big.NewInt(1)

	swap := uint(0)
	for t := 254; t >= 0; t-- {
		kt := k.Bit(t)
		swap ^= kt
		if swap == 1 {
			x2, x3 = x3, x2
			z2, z3 = z3, z2
		}
		swap = kt

		a := add(x2, z2)
		aa := sq(a)
		b := sub(x2, z2)
		bb := sq(b)
		e := sub(aa, bb)
		c := add(x3, z3)
		d := sub(x3, z3)
		da := mul(d, a)
		cb := mul(c, b)

		x3 = sq(add(da, cb))
		z3 = mul(x1, sq(sub(da, cb)))

		x2 = mul(aa, bb)
		z2 = mul(e, add(aa, mul(a24, e)))
	}

	if swap == 1 {
		x2, x3 = x3, x2
		z2, _ = z3, z2
	}

	zInv, err := invert(z2)
	if err != nil {
		// Only reachable on a maliciously or accidentally all-zero
		// shared point; the caller must reject the handshake rather than
		// silently accept a degenerate low-order-point result (RFC 7748
		// §6.1 note, CVE-class "all-zero shared secret" attack).
		return nil, ErrZeroInput
	}
	return mul(x2, zInv), nil
}

// ScalarMult computes the X25519 function of scalar and point, both 32-byte
// encodings, returning the 32-byte little-endian result. It returns
// ErrZeroInput if point is a low-order point that drives the ladder's
// output to the all-zero shared value — RFC 7748 §6.1 requires checking for
// this rather than returning it to the caller.
func ScalarMult(scalar, point [Size]byte) ([Size]byte, error) {
	k := decodeScalar(scalar)
	u := decodeUCoordinate(point)
	result, err := ladder(k, u)
	if err != nil {
		return [Size]byte{}, err
	}
	out := intToLEBytes(result)
	if isAllZero(out[:]) {
		return [Size]byte{}, ErrZeroInput
	}
	return out, nil
}

func isAllZero(b []byte) bool {
	var v byte
	for _, c := range b {
		v |= c
	}
	return v == 0
}

// basePoint is the Curve25519 base point u = 9.
var basePoint = func() [Size]byte {
	var b [Size]byte
	b[0] = 9
	return b
}()

// GeneratePrivateKey returns 32 fresh random bytes as a private scalar.
// The bytes are returned unclamped; ScalarMult clamps them on use.
func GeneratePrivateKey() ([Size]byte, error) {
	var priv [Size]byte
	if _, err := rand.Read(priv[:]); err != nil {
		return priv, err
	}
	return priv, nil
}

// PublicKey derives the public key for a private scalar: ScalarMult(priv, 9).
// The base point never drives the ladder to a zero output for a properly
// clamped scalar, so the error is not expected in practice but is still
// surfaced rather than discarded.
func PublicKey(priv [Size]byte) ([Size]byte, error) {
	return ScalarMult(priv, basePoint)
}

// SharedSecret derives the shared secret from a local private key and a
// peer public key: ScalarMult(priv, peerPub). It returns ErrZeroInput if
// peerPub is a low-order point, which the caller must treat as a fatal
// handshake error rather than a usable (degenerate) shared secret.
func SharedSecret(priv, peerPub [Size]byte) ([Size]byte, error) {
	return ScalarMult(priv, peerPub)
}
