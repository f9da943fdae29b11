package fcom

import (
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/rs/zerolog"

	"github.com/paralmehmet/swanky/channel"
	"github.com/paralmehmet/swanky/field"
	"github.com/paralmehmet/swanky/logger"
)

// Verifier is the verifier-side commitment functionality. Like [Prover], an
// instance may be shared by several evaluators under a sequential-access
// discipline.
type Verifier[E, C comparable] struct {
	f     field.Field[E, C]
	delta E
	keys  keyStream[E, C]
	log   zerolog.Logger
}

// NewVerifier runs the init handshake, samples the long-lived key Delta and
// the correlation seed from rnd, and deals both to the prover.
func NewVerifier[E, C comparable](f field.Field[E, C], ch channel.Channel, rnd io.Reader, lpnSetup, lpnExtend LpnParams) (*Verifier[E, C], error) {
	if err := checkLpnParams(lpnSetup, lpnExtend); err != nil {
		return nil, err
	}
	ours := initMessage{Version: protocolVersion, FieldLen: f.ByteLen(), Setup: lpnSetup.NumVoles, Extend: lpnExtend.NumVoles}
	theirs, err := readFrame(ch)
	if err != nil {
		return nil, fmt.Errorf("%w: init: %v", ErrProtocol, err)
	}
	// Answer with our own parameters before validating, so that on a
	// mismatch both parties fail instead of leaving the peer blocked.
	if err := writeFrame(ch, ours); err != nil {
		return nil, fmt.Errorf("%w: init: %v", ErrProtocol, err)
	}
	if err := ch.Flush(); err != nil {
		return nil, fmt.Errorf("%w: init: %v", ErrProtocol, err)
	}
	if err := checkHandshake(ours, theirs); err != nil {
		return nil, err
	}

	seed := make([]byte, seedLen)
	if _, err := io.ReadFull(rnd, seed); err != nil {
		return nil, fmt.Errorf("%w: init: %v", ErrProtocol, err)
	}
	delta, err := f.Sample(rnd)
	if err != nil {
		return nil, fmt.Errorf("%w: init: %v", ErrProtocol, err)
	}
	if _, err := ch.Write(seed); err != nil {
		return nil, fmt.Errorf("%w: init: %v", ErrProtocol, err)
	}
	if err := writeElement(f, ch, delta); err != nil {
		return nil, fmt.Errorf("%w: init: %v", ErrProtocol, err)
	}
	if err := ch.Flush(); err != nil {
		return nil, fmt.Errorf("%w: init: %v", ErrProtocol, err)
	}
	keys, err := newKeyStream(f, seed, lpnSetup, lpnExtend)
	if err != nil {
		return nil, err
	}
	return &Verifier[E, C]{f: f, delta: delta, keys: keys, log: logger.Logger()}, nil
}

// Field returns the field the functionality operates over.
func (v *Verifier[E, C]) Field() field.Field[E, C] { return v.f }

// Delta returns the long-lived authentication key, required to derive
// public-value keys locally.
func (v *Verifier[E, C]) Delta() E { return v.delta }

// Input1 authenticates one new value of the prover's choosing, returning the
// verifier's key for it.
func (v *Verifier[E, C]) Input1(ch channel.Channel, rnd io.Reader) (E, error) {
	_, _ = ch, rnd
	return v.keys.nextKey()
}

// Add returns the sum of two authenticated values. Local, never fails.
func (v *Verifier[E, C]) Add(a, b MacVerifier[E]) MacVerifier[E] {
	return MacVerifier[E]{Key: v.f.Add(a.Key, b.Key)}
}

// AffineAddCst adds a public constant: the key shifts by the public value's
// key -Lift(cst)*Delta.
func (v *Verifier[E, C]) AffineAddCst(cst C, a MacVerifier[E]) MacVerifier[E] {
	return MacVerifier[E]{Key: v.f.Sub(a.Key, v.f.Mul(v.f.Lift(cst), v.delta))}
}

// AffineMultCst multiplies an authenticated value by a public constant.
func (v *Verifier[E, C]) AffineMultCst(cst C, a MacVerifier[E]) MacVerifier[E] {
	return MacVerifier[E]{Key: v.f.Mul(v.f.Lift(cst), a.Key)}
}

// CheckZero verifies one batch of zero assertions: for a true zero the
// prover's tag equals the verifier's key. Mismatching indices are collected
// in a bitset for diagnostics before the batch is rejected as a whole.
func (v *Verifier[E, C]) CheckZero(ch channel.Channel, rnd io.Reader, keys []MacVerifier[E]) error {
	_ = rnd
	n, err := readUint64(ch)
	if err != nil {
		return fmt.Errorf("%w: check_zero: %v", ErrProtocol, err)
	}
	if n != uint64(len(keys)) {
		return fmt.Errorf("%w: check_zero: batch size mismatch: prover sent %d, expected %d", ErrProtocol, n, len(keys))
	}
	failed := bitset.New(uint(len(keys)))
	for i, k := range keys {
		m, err := readElement(v.f, ch)
		if err != nil {
			return fmt.Errorf("%w: check_zero: %v", ErrProtocol, err)
		}
		if m != k.Key {
			failed.Set(uint(i))
		}
	}
	if c := failed.Count(); c > 0 {
		first, _ := failed.NextSet(0)
		v.log.Warn().Uint("count", c).Uint("first", first).Msg("check_zero: tag mismatches")
		return fmt.Errorf("%w: check_zero: %d of %d assertions failed", ErrProtocol, c, len(keys))
	}
	return nil
}

// Challenge samples a random authenticated value and sends it to the prover;
// both parties' tags are bit-identical.
func (v *Verifier[E, C]) Challenge(ch channel.Channel, rnd io.Reader) (MacVerifier[E], error) {
	x, err := v.f.Sample(rnd)
	if err != nil {
		return MacVerifier[E]{}, fmt.Errorf("%w: challenge: %v", ErrProtocol, err)
	}
	if err := writeElement(v.f, ch, x); err != nil {
		return MacVerifier[E]{}, fmt.Errorf("%w: challenge: %v", ErrProtocol, err)
	}
	if err := ch.Flush(); err != nil {
		return MacVerifier[E]{}, fmt.Errorf("%w: challenge: %v", ErrProtocol, err)
	}
	return MacVerifier[E]{Key: x}, nil
}

// MultCheckVerifier is the verifier's running QuickSilver accumulator: the
// chi-weighted sum of the per-triple terms B = k_a*k_b + Delta*k_c, which
// equals A0 - A1*Delta exactly when every c = a*b.
type MultCheckVerifier[E comparable] struct {
	chi      E
	chiPower E
	sumB     E
	count    int
}

// NewMultCheck samples the accumulator challenge chi, deals it to the
// prover, and returns a fresh accumulator.
func (v *Verifier[E, C]) NewMultCheck(ch channel.Channel, rnd io.Reader) (*MultCheckVerifier[E], error) {
	chi, err := v.f.Sample(rnd)
	if err != nil {
		return nil, fmt.Errorf("%w: mult_check init: %v", ErrProtocol, err)
	}
	if err := writeElement(v.f, ch, chi); err != nil {
		return nil, fmt.Errorf("%w: mult_check init: %v", ErrProtocol, err)
	}
	if err := ch.Flush(); err != nil {
		return nil, fmt.Errorf("%w: mult_check init: %v", ErrProtocol, err)
	}
	return &MultCheckVerifier[E]{chi: chi, chiPower: chi}, nil
}

// QuicksilverPush appends one multiplication triple to the accumulator.
// Local, no communication.
func (v *Verifier[E, C]) QuicksilverPush(st *MultCheckVerifier[E], a, b, c MacVerifier[E]) error {
	f := v.f
	b0 := f.Add(f.Mul(a.Key, b.Key), f.Mul(v.delta, c.Key))
	st.sumB = f.Add(st.sumB, f.Mul(st.chiPower, b0))
	st.chiPower = f.Mul(st.chiPower, st.chi)
	st.count++
	return nil
}

// QuicksilverFinalize checks the accumulated triples against the prover's
// chi-weighted sums and reports the verdict back, returning the number of
// triples checked. The accumulator is reinitialized regardless of outcome.
func (v *Verifier[E, C]) QuicksilverFinalize(ch channel.Channel, rnd io.Reader, st *MultCheckVerifier[E]) (int, error) {
	_ = rnd
	proverCount, err := readUint64(ch)
	if err != nil {
		return 0, fmt.Errorf("%w: mult_check: %v", ErrProtocol, err)
	}
	u, err := readElement(v.f, ch)
	if err != nil {
		return 0, fmt.Errorf("%w: mult_check: %v", ErrProtocol, err)
	}
	w, err := readElement(v.f, ch)
	if err != nil {
		return 0, fmt.Errorf("%w: mult_check: %v", ErrProtocol, err)
	}
	ok := proverCount == uint64(st.count) && v.f.Sub(u, v.f.Mul(w, v.delta)) == st.sumB
	verdict := byte(verdictReject)
	if ok {
		verdict = verdictAccept
	}
	if _, err := ch.Write([]byte{verdict}); err != nil {
		return 0, fmt.Errorf("%w: mult_check: %v", ErrProtocol, err)
	}
	if err := ch.Flush(); err != nil {
		return 0, fmt.Errorf("%w: mult_check: %v", ErrProtocol, err)
	}
	n := st.count
	v.Reset(st)
	if !ok {
		return 0, fmt.Errorf("%w: mult_check failed (prover count %d, local count %d)", ErrProtocol, proverCount, n)
	}
	return n, nil
}

// Reset reinitializes the multiplication accumulator for a fresh epoch. The
// challenge chi is kept.
func (v *Verifier[E, C]) Reset(st *MultCheckVerifier[E]) {
	st.sumB = v.f.Zero()
	st.chiPower = st.chi
	st.count = 0
}
