// Package field defines the finite-field contract the authenticated
// gate-evaluation engine is written against.
//
// A field is described by two element types: E, the full field, which carries
// authentication tags, and C, the embedded prime subfield, which carries clear
// values. For a prime field the two coincide and [Field.Lift] is the identity.
// Concrete implementations live in the subpackages; see [f61p], [gf2e128] and
// [bn254].
package field

import (
	"errors"
	"fmt"
	"io"
)

// ErrInvalidEncoding is returned when a byte buffer cannot be decoded into a
// field element because its significant length exceeds the field's canonical
// representation.
var ErrInvalidEncoding = errors.New("invalid field element encoding")

// Field is the set of operations the engine needs from a finite field E with
// embedded prime subfield C. Implementations must be stateless value types,
// cheap to copy and safe for concurrent use.
//
// The byte encoding is fixed-width little-endian; [Field.FromBytes] expects
// exactly [Field.ByteLen] bytes and rejects non-canonical values. Use
// [FromBytesLE] to tolerate zero padding.
type Field[E, C comparable] interface {
	Zero() E
	One() E
	Add(a, b E) E
	Sub(a, b E) E
	Mul(a, b E) E
	Neg(a E) E

	// Sample draws a uniform full-field element from r. It is deterministic
	// given the byte stream, so two parties reading the same stream derive
	// the same element.
	Sample(r io.Reader) (E, error)

	// ByteLen is the canonical encoded length of a full-field element.
	ByteLen() int
	AppendBytes(buf []byte, a E) []byte
	FromBytes(buf []byte) (E, error)

	ClearZero() C
	ClearOne() C
	ClearAdd(a, b C) C
	ClearMul(a, b C) C
	ClearNeg(a C) C
	SampleClear(r io.Reader) (C, error)

	// Lift embeds a clear value into the full field.
	Lift(v C) E
}

// FromBytesLE decodes a little-endian byte buffer into a full-field element,
// tolerating any number of trailing zero bytes beyond the field's canonical
// encoded length. If the significant length (after stripping trailing zeros)
// still exceeds [Field.ByteLen], it fails with [ErrInvalidEncoding].
func FromBytesLE[E, C comparable](f Field[E, C], buf []byte) (E, error) {
	for len(buf) > 0 && buf[len(buf)-1] == 0 {
		buf = buf[:len(buf)-1]
	}
	if len(buf) > f.ByteLen() {
		var zero E
		return zero, fmt.Errorf("%w: %d significant bytes, field encodes %d", ErrInvalidEncoding, len(buf), f.ByteLen())
	}
	padded := make([]byte, f.ByteLen())
	copy(padded, buf)
	return f.FromBytes(padded)
}
