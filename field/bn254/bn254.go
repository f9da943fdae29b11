// Package bn254 adapts the BN254 scalar field from gnark-crypto to the
// [field.Field] contract. The field is prime, so clear values and tags share
// the element type. Elements are encoded as 32 little-endian bytes of the
// canonical (regular form) representation.
package bn254

import (
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/paralmehmet/swanky/field"
)

// Element is a BN254 scalar field element.
type Element = fr.Element

// Field implements [field.Field] for the BN254 scalar field.
type Field struct{}

func (Field) Zero() Element { return Element{} }

func (Field) One() Element {
	var e Element
	e.SetOne()
	return e
}

func (Field) Add(a, b Element) Element {
	var z Element
	z.Add(&a, &b)
	return z
}

func (Field) Sub(a, b Element) Element {
	var z Element
	z.Sub(&a, &b)
	return z
}

func (Field) Mul(a, b Element) Element {
	var z Element
	z.Mul(&a, &b)
	return z
}

func (Field) Neg(a Element) Element {
	var z Element
	z.Neg(&a)
	return z
}

// Sample reduces 32 bytes from r modulo the field order. The bias is
// negligible for a ~254-bit modulus.
func (Field) Sample(r io.Reader) (Element, error) {
	var buf [fr.Bytes]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Element{}, err
	}
	var e Element
	e.SetBytes(buf[:])
	return e, nil
}

func (Field) ByteLen() int { return fr.Bytes }

func (Field) AppendBytes(buf []byte, a Element) []byte {
	b := a.Bytes()
	for i := len(b) - 1; i >= 0; i-- {
		buf = append(buf, b[i])
	}
	return buf
}

func (Field) FromBytes(buf []byte) (Element, error) {
	if len(buf) != fr.Bytes {
		return Element{}, fmt.Errorf("%w: expected %d bytes, got %d", field.ErrInvalidEncoding, fr.Bytes, len(buf))
	}
	var be [fr.Bytes]byte
	for i := range be {
		be[i] = buf[fr.Bytes-1-i]
	}
	var e Element
	if err := e.SetBytesCanonical(be[:]); err != nil {
		return Element{}, fmt.Errorf("%w: %v", field.ErrInvalidEncoding, err)
	}
	return e, nil
}

func (Field) ClearZero() Element              { return Element{} }
func (f Field) ClearOne() Element             { return f.One() }
func (f Field) ClearAdd(a, b Element) Element { return f.Add(a, b) }
func (f Field) ClearMul(a, b Element) Element { return f.Mul(a, b) }
func (f Field) ClearNeg(a Element) Element    { return f.Neg(a) }

func (f Field) SampleClear(r io.Reader) (Element, error) { return f.Sample(r) }

func (Field) Lift(v Element) Element { return v }

var _ field.Field[Element, Element] = Field{}
