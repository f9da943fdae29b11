package fcom

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/paralmehmet/swanky/channel"
	"github.com/paralmehmet/swanky/field"
	"github.com/paralmehmet/swanky/logger"
)

// Prover is the prover-side commitment functionality. A single instance may
// be shared by several evaluators that must agree on one authentication
// context; access must then be sequential (single-threaded discipline, not
// enforced by a lock).
type Prover[E, C comparable] struct {
	f     field.Field[E, C]
	delta E
	keys  keyStream[E, C]
	log   zerolog.Logger
}

// NewProver runs the init handshake and receives the dealer correlation
// (seed and Delta) from the verifier. The rnd argument is part of the
// contract for correlation generators that consume prover randomness at
// init; the dealer realization does not.
func NewProver[E, C comparable](f field.Field[E, C], ch channel.Channel, rnd io.Reader, lpnSetup, lpnExtend LpnParams) (*Prover[E, C], error) {
	_ = rnd
	if err := checkLpnParams(lpnSetup, lpnExtend); err != nil {
		return nil, err
	}
	ours := initMessage{Version: protocolVersion, FieldLen: f.ByteLen(), Setup: lpnSetup.NumVoles, Extend: lpnExtend.NumVoles}
	if err := writeFrame(ch, ours); err != nil {
		return nil, fmt.Errorf("%w: init: %v", ErrProtocol, err)
	}
	if err := ch.Flush(); err != nil {
		return nil, fmt.Errorf("%w: init: %v", ErrProtocol, err)
	}
	theirs, err := readFrame(ch)
	if err != nil {
		return nil, fmt.Errorf("%w: init: %v", ErrProtocol, err)
	}
	if err := checkHandshake(ours, theirs); err != nil {
		return nil, err
	}

	seed := make([]byte, seedLen)
	if _, err := io.ReadFull(ch, seed); err != nil {
		return nil, fmt.Errorf("%w: init: %v", ErrProtocol, err)
	}
	delta, err := readElement(f, ch)
	if err != nil {
		return nil, fmt.Errorf("%w: init: %v", ErrProtocol, err)
	}
	keys, err := newKeyStream(f, seed, lpnSetup, lpnExtend)
	if err != nil {
		return nil, err
	}
	return &Prover[E, C]{f: f, delta: delta, keys: keys, log: logger.Logger()}, nil
}

// Field returns the field the functionality operates over.
func (p *Prover[E, C]) Field() field.Field[E, C] { return p.f }

// Input1 authenticates one new value, returning its tag. The channel and
// rnd arguments are part of the contract; the dealer realization
// authenticates locally.
func (p *Prover[E, C]) Input1(ch channel.Channel, rnd io.Reader, v C) (E, error) {
	_, _ = ch, rnd
	k, err := p.keys.nextKey()
	if err != nil {
		var zero E
		return zero, err
	}
	return p.f.Add(p.f.Mul(p.f.Lift(v), p.delta), k), nil
}

// Add returns the sum of two authenticated values. Local, never fails.
func (p *Prover[E, C]) Add(a, b MacProver[E, C]) MacProver[E, C] {
	return MacProver[E, C]{
		Value: p.f.ClearAdd(a.Value, b.Value),
		Mac:   p.f.Add(a.Mac, b.Mac),
	}
}

// AffineAddCst adds a public constant to an authenticated value. The tag is
// unchanged: the prover's tag for a public value is zero.
func (p *Prover[E, C]) AffineAddCst(cst C, a MacProver[E, C]) MacProver[E, C] {
	return MacProver[E, C]{
		Value: p.f.ClearAdd(cst, a.Value),
		Mac:   a.Mac,
	}
}

// AffineMultCst multiplies an authenticated value by a public constant.
func (p *Prover[E, C]) AffineMultCst(cst C, a MacProver[E, C]) MacProver[E, C] {
	return MacProver[E, C]{
		Value: p.f.ClearMul(cst, a.Value),
		Mac:   p.f.Mul(p.f.Lift(cst), a.Mac),
	}
}

// CheckZero proves in one batch that every value in macs is an authenticated
// zero. The prover sends the tags, then self-checks the clear values; an
// honest prover that queued a non-zero assertion fails here, mirroring the
// verifier's key comparison on the other side.
func (p *Prover[E, C]) CheckZero(ch channel.Channel, macs []MacProver[E, C]) error {
	if err := writeUint64(ch, uint64(len(macs))); err != nil {
		return fmt.Errorf("%w: check_zero: %v", ErrProtocol, err)
	}
	for _, m := range macs {
		if err := writeElement(p.f, ch, m.Mac); err != nil {
			return fmt.Errorf("%w: check_zero: %v", ErrProtocol, err)
		}
	}
	if err := ch.Flush(); err != nil {
		return fmt.Errorf("%w: check_zero: %v", ErrProtocol, err)
	}
	bad := 0
	for _, m := range macs {
		if m.Value != p.f.ClearZero() {
			bad++
		}
	}
	if bad > 0 {
		return fmt.Errorf("%w: check_zero: %d of %d asserted values are non-zero", ErrProtocol, bad, len(macs))
	}
	return nil
}

// Challenge returns a jointly sampled random authenticated value. Both
// parties' tags are bit-identical, which is what layered Fiat-Shamir style
// sub-protocols rely on; the clear part carries no information.
func (p *Prover[E, C]) Challenge(ch channel.Channel, rnd io.Reader) (MacProver[E, C], error) {
	_ = rnd
	x, err := readElement(p.f, ch)
	if err != nil {
		return MacProver[E, C]{}, fmt.Errorf("%w: challenge: %v", ErrProtocol, err)
	}
	return MacProver[E, C]{Value: p.f.ClearZero(), Mac: x}, nil
}

// MultCheckProver is the prover's running QuickSilver accumulator: the
// chi-weighted sums of the per-triple coefficients A0 = m_a*m_b and
// A1 = a*m_b + b*m_a - m_c.
type MultCheckProver[E comparable] struct {
	chi      E
	chiPower E
	sumA0    E
	sumA1    E
	count    int
}

// NewMultCheck receives the accumulator challenge chi from the verifier and
// returns a fresh accumulator.
func (p *Prover[E, C]) NewMultCheck(ch channel.Channel) (*MultCheckProver[E], error) {
	chi, err := readElement(p.f, ch)
	if err != nil {
		return nil, fmt.Errorf("%w: mult_check init: %v", ErrProtocol, err)
	}
	return &MultCheckProver[E]{chi: chi, chiPower: chi}, nil
}

// QuicksilverPush appends one multiplication triple to the accumulator.
// Local, no communication.
func (p *Prover[E, C]) QuicksilverPush(st *MultCheckProver[E], a, b, c MacProver[E, C]) error {
	f := p.f
	a0 := f.Mul(a.Mac, b.Mac)
	a1 := f.Sub(f.Add(f.Mul(f.Lift(a.Value), b.Mac), f.Mul(f.Lift(b.Value), a.Mac)), c.Mac)
	st.sumA0 = f.Add(st.sumA0, f.Mul(st.chiPower, a0))
	st.sumA1 = f.Add(st.sumA1, f.Mul(st.chiPower, a1))
	st.chiPower = f.Mul(st.chiPower, st.chi)
	st.count++
	return nil
}

// QuicksilverFinalize proves in one interactive round that every accumulated
// triple satisfies c = a*b, returning the number of triples checked. The
// accumulator is reinitialized regardless of outcome.
func (p *Prover[E, C]) QuicksilverFinalize(ch channel.Channel, rnd io.Reader, st *MultCheckProver[E]) (int, error) {
	_ = rnd
	if err := writeUint64(ch, uint64(st.count)); err != nil {
		return 0, fmt.Errorf("%w: mult_check: %v", ErrProtocol, err)
	}
	if err := writeElement(p.f, ch, st.sumA0); err != nil {
		return 0, fmt.Errorf("%w: mult_check: %v", ErrProtocol, err)
	}
	if err := writeElement(p.f, ch, st.sumA1); err != nil {
		return 0, fmt.Errorf("%w: mult_check: %v", ErrProtocol, err)
	}
	if err := ch.Flush(); err != nil {
		return 0, fmt.Errorf("%w: mult_check: %v", ErrProtocol, err)
	}
	var verdict [1]byte
	if _, err := io.ReadFull(ch, verdict[:]); err != nil {
		return 0, fmt.Errorf("%w: mult_check: %v", ErrProtocol, err)
	}
	n := st.count
	p.Reset(st)
	if verdict[0] != verdictAccept {
		return 0, fmt.Errorf("%w: mult_check rejected by verifier (%d triples)", ErrProtocol, n)
	}
	return n, nil
}

// Reset reinitializes the multiplication accumulator for a fresh epoch. The
// challenge chi is kept.
func (p *Prover[E, C]) Reset(st *MultCheckProver[E]) {
	st.sumA0 = p.f.Zero()
	st.sumA1 = p.f.Zero()
	st.chiPower = st.chi
	st.count = 0
}
