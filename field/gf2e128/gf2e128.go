// Package gf2e128 implements the binary extension field GF(2^128) reduced
// over x^128 + x^7 + x^2 + x + 1, with prime subfield F2.
//
// Elements are encoded as 16 little-endian bytes; every 128-bit string is a
// canonical element, so decoding a full-length buffer never fails.
// Multiplication uses a software carry-less multiply over 64-bit halves.
package gf2e128

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/paralmehmet/swanky/field"
)

// Element is a GF(2^128) element; index 0 holds the low 64 coefficient bits.
type Element [2]uint64

// F2 is an element of the prime subfield, either 0 or 1.
type F2 uint8

// Field implements [field.Field] for GF(2^128) over F2.
type Field struct{}

func (Field) Zero() Element { return Element{} }
func (Field) One() Element  { return Element{1, 0} }

// Add is coefficient-wise xor; in characteristic 2 it is also Sub.
func (Field) Add(a, b Element) Element {
	return Element{a[0] ^ b[0], a[1] ^ b[1]}
}

func (f Field) Sub(a, b Element) Element { return f.Add(a, b) }
func (Field) Neg(a Element) Element      { return a }

// clmul64 is a 64x64 -> 128 bit carry-less multiply.
func clmul64(a, b uint64) (hi, lo uint64) {
	for b != 0 {
		i := bits.TrailingZeros64(b)
		lo ^= a << i
		if i != 0 {
			hi ^= a >> (64 - i)
		}
		b &= b - 1
	}
	return hi, lo
}

// mulWide returns the 256-bit unreduced polynomial product of a and b as
// four 64-bit limbs, least significant first.
func mulWide(a, b Element) (r0, r1, r2, r3 uint64) {
	c1, c0 := clmul64(a[1], b[1])
	d1, d0 := clmul64(a[0], b[0])
	e1, e0 := clmul64(a[0]^a[1], b[0]^b[1])
	r0 = d0
	r1 = d1 ^ d0 ^ c0 ^ e0
	r2 = c0 ^ c1 ^ d1 ^ e1
	r3 = c1
	return
}

// reduce folds a 256-bit polynomial back over x^128 + x^7 + x^2 + x + 1.
func reduce(x0, x1, x2, x3 uint64) Element {
	a := x3 >> 63
	b := x3 >> 62
	c := x3 >> 57
	d := x2 ^ a ^ b ^ c
	e1, e0 := x3<<1|d>>63, d<<1
	f1, f0 := x3<<2|d>>62, d<<2
	g1, g0 := x3<<7|d>>57, d<<7
	h1 := x3 ^ e1 ^ f1 ^ g1
	h0 := d ^ e0 ^ f0 ^ g0
	return Element{x0 ^ h0, x1 ^ h1}
}

func (Field) Mul(a, b Element) Element {
	r0, r1, r2, r3 := mulWide(a, b)
	return reduce(r0, r1, r2, r3)
}

func (Field) Sample(r io.Reader) (Element, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Element{}, err
	}
	return fromBytes(buf[:]), nil
}

func (Field) ByteLen() int { return 16 }

func (Field) AppendBytes(buf []byte, a Element) []byte {
	for limb := 0; limb < 2; limb++ {
		v := a[limb]
		for i := 0; i < 8; i++ {
			buf = append(buf, byte(v>>(8*i)))
		}
	}
	return buf
}

func fromBytes(buf []byte) Element {
	var e Element
	for limb := 0; limb < 2; limb++ {
		for i := 0; i < 8; i++ {
			e[limb] |= uint64(buf[8*limb+i]) << (8 * i)
		}
	}
	return e
}

func (Field) FromBytes(buf []byte) (Element, error) {
	if len(buf) != 16 {
		return Element{}, fmt.Errorf("%w: expected 16 bytes, got %d", field.ErrInvalidEncoding, len(buf))
	}
	return fromBytes(buf), nil
}

func (Field) ClearZero() F2       { return 0 }
func (Field) ClearOne() F2        { return 1 }
func (Field) ClearAdd(a, b F2) F2 { return (a ^ b) & 1 }
func (Field) ClearMul(a, b F2) F2 { return a & b }
func (Field) ClearNeg(a F2) F2    { return a & 1 }

func (Field) SampleClear(r io.Reader) (F2, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return F2(buf[0] & 1), nil
}

func (f Field) Lift(v F2) Element {
	if v&1 == 1 {
		return f.One()
	}
	return Element{}
}

var _ field.Field[Element, F2] = Field{}
