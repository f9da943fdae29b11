// Package f61p implements the prime field F(2^61-1).
//
// Being prime, the field is its own prime subfield: clear values and
// authentication tags share the [Element] type and Lift is the identity.
// Elements are encoded as 8 little-endian bytes.
package f61p

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"github.com/paralmehmet/swanky/field"
)

// Modulus is the Mersenne prime 2^61 - 1.
const Modulus uint64 = (1 << 61) - 1

// Element is a field element in the range [0, Modulus).
type Element uint64

// Field implements [field.Field] for F(2^61-1).
type Field struct{}

func (Field) Zero() Element { return 0 }
func (Field) One() Element  { return 1 }

func (Field) Add(a, b Element) Element {
	s := uint64(a) + uint64(b)
	if s >= Modulus {
		s -= Modulus
	}
	return Element(s)
}

func (f Field) Sub(a, b Element) Element {
	return f.Add(a, f.Neg(b))
}

func (Field) Mul(a, b Element) Element {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	// 2^64 = 2^3 mod p, so fold the high limb back in.
	s := (lo & Modulus) + (lo >> 61) + hi<<3
	s = (s & Modulus) + (s >> 61)
	if s >= Modulus {
		s -= Modulus
	}
	return Element(s)
}

func (Field) Neg(a Element) Element {
	if a == 0 {
		return 0
	}
	return Element(Modulus - uint64(a))
}

// Sample draws a uniform element by rejection over 61-bit candidates.
func (Field) Sample(r io.Reader) (Element, error) {
	var buf [8]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		v := binary.LittleEndian.Uint64(buf[:]) & Modulus
		if v < Modulus {
			return Element(v), nil
		}
	}
}

func (Field) ByteLen() int { return 8 }

func (Field) AppendBytes(buf []byte, a Element) []byte {
	return binary.LittleEndian.AppendUint64(buf, uint64(a))
}

func (Field) FromBytes(buf []byte) (Element, error) {
	if len(buf) != 8 {
		return 0, fmt.Errorf("%w: expected 8 bytes, got %d", field.ErrInvalidEncoding, len(buf))
	}
	v := binary.LittleEndian.Uint64(buf)
	if v >= Modulus {
		return 0, fmt.Errorf("%w: value exceeds modulus", field.ErrInvalidEncoding)
	}
	return Element(v), nil
}

func (Field) ClearZero() Element              { return 0 }
func (Field) ClearOne() Element               { return 1 }
func (f Field) ClearAdd(a, b Element) Element { return f.Add(a, b) }
func (f Field) ClearMul(a, b Element) Element { return f.Mul(a, b) }
func (f Field) ClearNeg(a Element) Element    { return f.Neg(a) }

func (f Field) SampleClear(r io.Reader) (Element, error) { return f.Sample(r) }

func (Field) Lift(v Element) Element { return v }

// FromUint64 reduces v modulo the field order.
func FromUint64(v uint64) Element {
	v = (v & Modulus) + (v >> 61)
	if v >= Modulus {
		v -= Modulus
	}
	return Element(v)
}

var _ field.Field[Element, Element] = Field{}
