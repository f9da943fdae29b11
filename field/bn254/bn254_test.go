package bn254

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/paralmehmet/swanky/field"
	"github.com/paralmehmet/swanky/rng"
)

func TestBytesRoundTrip(t *testing.T) {
	f := Field{}
	r := rng.New([]byte("bn254 roundtrip"))
	for i := 0; i < 50; i++ {
		e, err := f.Sample(r)
		require.NoError(t, err)
		buf := f.AppendBytes(nil, e)
		require.Len(t, buf, fr.Bytes)
		got, err := f.FromBytes(buf)
		require.NoError(t, err)
		require.Equal(t, e, got)
	}
}

func TestPaddedDecode(t *testing.T) {
	f := Field{}

	var small Element
	small.SetUint64(7)
	// 7 fits in one significant byte; the helper must accept any padding.
	got, err := field.FromBytesLE[Element, Element](f, []byte{7, 0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, small, got)
}

func TestNonCanonicalRejected(t *testing.T) {
	f := Field{}
	// q-1 is canonical, 2^256-1 is not.
	buf := make([]byte, fr.Bytes)
	for i := range buf {
		buf[i] = 0xff
	}
	_, err := f.FromBytes(buf)
	require.ErrorIs(t, err, field.ErrInvalidEncoding)
}

func TestArithmeticMatchesFr(t *testing.T) {
	f := Field{}
	r := rng.New([]byte("bn254 arith"))
	for i := 0; i < 50; i++ {
		a, err := f.Sample(r)
		require.NoError(t, err)
		b, err := f.Sample(r)
		require.NoError(t, err)

		var want fr.Element
		want.Mul(&a, &b)
		require.Equal(t, want, f.Mul(a, b))
		want.Add(&a, &b)
		require.Equal(t, want, f.Add(a, b))
		want.Sub(&a, &b)
		require.Equal(t, want, f.Sub(a, b))
	}
}
