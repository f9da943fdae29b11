package f61p

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/paralmehmet/swanky/rng"
)

func TestArithmeticAgainstBigInt(t *testing.T) {
	f := Field{}
	p := new(big.Int).SetUint64(Modulus)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	ref := func(op func(z, x, y *big.Int) *big.Int, a, b Element) Element {
		z := op(new(big.Int), new(big.Int).SetUint64(uint64(a)), new(big.Int).SetUint64(uint64(b)))
		return Element(z.Mod(z, p).Uint64())
	}

	properties := gopter.NewProperties(parameters)
	properties.Property("add matches big.Int", prop.ForAll(
		func(x, y uint64) bool {
			a, b := FromUint64(x), FromUint64(y)
			return f.Add(a, b) == ref((*big.Int).Add, a, b)
		},
		gen.UInt64(), gen.UInt64(),
	))
	properties.Property("mul matches big.Int", prop.ForAll(
		func(x, y uint64) bool {
			a, b := FromUint64(x), FromUint64(y)
			return f.Mul(a, b) == ref((*big.Int).Mul, a, b)
		},
		gen.UInt64(), gen.UInt64(),
	))
	properties.Property("sub then add roundtrips", prop.ForAll(
		func(x, y uint64) bool {
			a, b := FromUint64(x), FromUint64(y)
			return f.Add(f.Sub(a, b), b) == a
		},
		gen.UInt64(), gen.UInt64(),
	))
	properties.TestingRun(t)
}

func TestNeg(t *testing.T) {
	f := Field{}
	require.Equal(t, Element(0), f.Neg(0))
	require.Equal(t, Element(Modulus-1), f.Neg(1))
	require.Equal(t, Element(0), f.Add(f.Neg(42), 42))
}

func TestFromBytesRejectsNonCanonical(t *testing.T) {
	f := Field{}
	buf := f.AppendBytes(nil, Element(Modulus-1))
	_, err := f.FromBytes(buf)
	require.NoError(t, err)

	buf = make([]byte, 8)
	for i := range buf {
		buf[i] = 0xff
	}
	_, err = f.FromBytes(buf)
	require.Error(t, err)
}

func TestSampleIsDeterministic(t *testing.T) {
	f := Field{}
	r1 := rng.New([]byte("seed"))
	r2 := rng.New([]byte("seed"))
	for i := 0; i < 100; i++ {
		a, err := f.Sample(r1)
		require.NoError(t, err)
		b, err := f.Sample(r2)
		require.NoError(t, err)
		require.Equal(t, a, b)
		require.Less(t, uint64(a), Modulus)
	}
}
