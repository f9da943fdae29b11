package field_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/paralmehmet/swanky/field"
	"github.com/paralmehmet/swanky/field/f61p"
	"github.com/paralmehmet/swanky/field/gf2e128"
)

func TestPaddedDecodeF61p(t *testing.T) {
	f := f61p.Field{}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	properties.Property("decode(pad(encode(e))) == e", prop.ForAll(
		func(v uint64, pad int) bool {
			e := f61p.FromUint64(v)
			buf := f.AppendBytes(nil, e)
			buf = append(buf, make([]byte, pad)...)
			got, err := field.FromBytesLE[f61p.Element, f61p.Element](f, buf)
			return err == nil && got == e
		},
		gen.UInt64(),
		gen.IntRange(0, 32),
	))
	properties.Property("decode of minimal prefix matches padded decode", prop.ForAll(
		func(v uint64, pad int) bool {
			e := f61p.FromUint64(v)
			buf := f.AppendBytes(nil, e)
			minimal := buf
			for len(minimal) > 0 && minimal[len(minimal)-1] == 0 {
				minimal = minimal[:len(minimal)-1]
			}
			a, errA := field.FromBytesLE[f61p.Element, f61p.Element](f, minimal)
			b, errB := field.FromBytesLE[f61p.Element, f61p.Element](f, append(buf, make([]byte, pad)...))
			return errA == nil && errB == nil && a == b
		},
		gen.UInt64(),
		gen.IntRange(0, 32),
	))
	properties.TestingRun(t)
}

func TestPaddedDecodeGf2e128(t *testing.T) {
	f := gf2e128.Field{}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	properties.Property("decode(pad(encode(e))) == e", prop.ForAll(
		func(lo, hi uint64, pad int) bool {
			e := gf2e128.Element{lo, hi}
			buf := f.AppendBytes(nil, e)
			buf = append(buf, make([]byte, pad)...)
			got, err := field.FromBytesLE[gf2e128.Element, gf2e128.F2](f, buf)
			return err == nil && got == e
		},
		gen.UInt64(),
		gen.UInt64(),
		gen.IntRange(0, 32),
	))
	properties.TestingRun(t)
}

func TestOversizedDecodeFails(t *testing.T) {
	f := f61p.Field{}

	buf := make([]byte, f.ByteLen()+3)
	buf[len(buf)-1] = 1
	_, err := field.FromBytesLE[f61p.Element, f61p.Element](f, buf)
	require.ErrorIs(t, err, field.ErrInvalidEncoding)

	// Trailing zeros beyond the canonical length are fine.
	buf[len(buf)-1] = 0
	_, err = field.FromBytesLE[f61p.Element, f61p.Element](f, buf)
	require.NoError(t, err)
}

func TestEmptyDecodeIsZero(t *testing.T) {
	f := f61p.Field{}
	e, err := field.FromBytesLE[f61p.Element, f61p.Element](f, nil)
	require.NoError(t, err)
	require.Equal(t, f.Zero(), e)
}
