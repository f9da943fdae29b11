package gf2e128

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

// xtimes multiplies by x, folding the overflow bit over
// x^128 + x^7 + x^2 + x + 1 (low byte 0x87).
func xtimes(a Element) Element {
	carry := a[1] >> 63
	out := Element{a[0] << 1, a[1]<<1 | a[0]>>63}
	if carry == 1 {
		out[0] ^= 0x87
	}
	return out
}

// refMul is an independent shift-and-add reference multiplier.
func refMul(a, b Element) Element {
	var res Element
	for limb := 0; limb < 2; limb++ {
		for i := 0; i < 64; i++ {
			if b[limb]>>i&1 == 1 {
				res = Element{res[0] ^ a[0], res[1] ^ a[1]}
			}
			a = xtimes(a)
		}
	}
	return res
}

func TestMulAgainstReference(t *testing.T) {
	f := Field{}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)
	properties.Property("clmul+reduce matches shift-and-add", prop.ForAll(
		func(a0, a1, b0, b1 uint64) bool {
			a, b := Element{a0, a1}, Element{b0, b1}
			return f.Mul(a, b) == refMul(a, b)
		},
		gen.UInt64(), gen.UInt64(), gen.UInt64(), gen.UInt64(),
	))
	properties.Property("mul is commutative", prop.ForAll(
		func(a0, a1, b0, b1 uint64) bool {
			a, b := Element{a0, a1}, Element{b0, b1}
			return f.Mul(a, b) == f.Mul(b, a)
		},
		gen.UInt64(), gen.UInt64(), gen.UInt64(), gen.UInt64(),
	))
	properties.Property("mul distributes over add", prop.ForAll(
		func(a0, a1, b0, b1, c0, c1 uint64) bool {
			a, b, c := Element{a0, a1}, Element{b0, b1}, Element{c0, c1}
			return f.Mul(a, f.Add(b, c)) == f.Add(f.Mul(a, b), f.Mul(a, c))
		},
		gen.UInt64(), gen.UInt64(), gen.UInt64(), gen.UInt64(), gen.UInt64(), gen.UInt64(),
	))
	properties.TestingRun(t)
}

func TestIdentities(t *testing.T) {
	f := Field{}
	x := Element{0xdeadbeef, 0xcafe}
	require.Equal(t, x, f.Mul(x, f.One()))
	require.Equal(t, Element{}, f.Mul(x, f.Zero()))
	require.Equal(t, Element{}, f.Add(x, x)) // characteristic 2
	require.Equal(t, x, f.Neg(x))
}

func TestClearSubfield(t *testing.T) {
	f := Field{}
	require.Equal(t, f.One(), f.Lift(1))
	require.Equal(t, f.Zero(), f.Lift(0))
	require.Equal(t, F2(0), f.ClearAdd(1, 1))
	require.Equal(t, F2(1), f.ClearMul(1, 1))
	require.Equal(t, F2(0), f.ClearMul(1, 0))
}

func TestBytesRoundTrip(t *testing.T) {
	f := Field{}
	x := Element{0x0123456789abcdef, 0xfedcba9876543210}
	buf := f.AppendBytes(nil, x)
	require.Len(t, buf, 16)
	got, err := f.FromBytes(buf)
	require.NoError(t, err)
	require.Equal(t, x, got)
}
