package dietmac

import (
	"fmt"
	"io"

	"github.com/paralmehmet/swanky/channel"
	"github.com/paralmehmet/swanky/fcom"
	"github.com/paralmehmet/swanky/field"
)

// Verifier evaluates circuit gates over the verifier's view of authenticated
// values: local keys only, never a clear value.
type Verifier[E, C comparable] struct {
	f          field.Field[E, C]
	fc         *fcom.Verifier[E, C]
	ch         channel.Channel
	rng        io.Reader
	ok         bool
	zeroList   []fcom.MacVerifier[E]
	multCheck  *fcom.MultCheckVerifier[E]
	mon        monitor
	noBatching bool
	queueCap   int
}

// NewVerifier initializes a verifier owning a fresh commitment
// functionality, given a channel, a random generator and the LPN parameter
// pair forwarded to the correlation generator.
func NewVerifier[E, C comparable](f field.Field[E, C], ch channel.Channel, rnd io.Reader, lpnSetup, lpnExtend fcom.LpnParams, opts ...Option) (*Verifier[E, C], error) {
	fc, err := fcom.NewVerifier(f, ch, rnd, lpnSetup, lpnExtend)
	if err != nil {
		return nil, err
	}
	return NewVerifierWithFCom(fc, ch, rnd, opts...)
}

// NewVerifierWithFCom initializes a verifier attached to an existing shared
// commitment functionality. Access to the shared functionality must be
// sequential.
func NewVerifierWithFCom[E, C comparable](fc *fcom.Verifier[E, C], ch channel.Channel, rnd io.Reader, opts ...Option) (*Verifier[E, C], error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	st, err := fc.NewMultCheck(ch, rnd)
	if err != nil {
		return nil, err
	}
	return &Verifier[E, C]{
		f:          fc.Field(),
		fc:         fc,
		ch:         ch,
		rng:        rnd,
		ok:         true,
		multCheck:  st,
		mon:        monitor{log: cfg.log},
		noBatching: cfg.noBatching,
		queueCap:   cfg.queueCapacity,
	}, nil
}

// FCom returns the underlying commitment functionality, so further
// evaluators can attach to the same authentication context.
func (v *Verifier[E, C]) FCom() *fcom.Verifier[E, C] { return v.fc }

func (v *Verifier[E, C]) checkOK() error {
	if !v.ok {
		return ErrPoisoned
	}
	return nil
}

func (v *Verifier[E, C]) input() (fcom.MacVerifier[E], error) {
	key, err := v.fc.Input1(v.ch, v.rng)
	if err != nil {
		v.ok = false
		return fcom.MacVerifier[E]{}, err
	}
	return fcom.MacVerifier[E]{Key: key}, nil
}

// InputPublic authenticates a value known to both parties. No communication;
// the key is derived locally as -Lift(v)*Delta.
func (v *Verifier[E, C]) InputPublic(val C) fcom.MacVerifier[E] {
	v.mon.incrPublic()
	return fcom.MacVerifier[E]{Key: v.f.Neg(v.f.Mul(v.f.Lift(val), v.fc.Delta()))}
}

// InputPrivate authenticates a secret value of the prover's choosing.
func (v *Verifier[E, C]) InputPrivate() (fcom.MacVerifier[E], error) {
	if err := v.checkOK(); err != nil {
		return fcom.MacVerifier[E]{}, err
	}
	v.mon.incrPrivate()
	return v.input()
}

// Add returns the sum of two authenticated values. Local, zero
// communication.
func (v *Verifier[E, C]) Add(a, b fcom.MacVerifier[E]) (fcom.MacVerifier[E], error) {
	if err := v.checkOK(); err != nil {
		return fcom.MacVerifier[E]{}, err
	}
	v.mon.incrAdd()
	return v.fc.Add(a, b), nil
}

// AddConst returns a + k for a public constant k.
func (v *Verifier[E, C]) AddConst(a fcom.MacVerifier[E], k C) (fcom.MacVerifier[E], error) {
	if err := v.checkOK(); err != nil {
		return fcom.MacVerifier[E]{}, err
	}
	v.mon.incrAddConst()
	return v.fc.AffineAddCst(k, a), nil
}

// MulConst returns a * k for a public constant k.
func (v *Verifier[E, C]) MulConst(a fcom.MacVerifier[E], k C) (fcom.MacVerifier[E], error) {
	if err := v.checkOK(); err != nil {
		return fcom.MacVerifier[E]{}, err
	}
	v.mon.incrMulConst()
	return v.fc.AffineMultCst(k, a), nil
}

// Mul multiplies two authenticated values: one authentication to receive the
// product's key, and one push into the multiplication accumulator.
func (v *Verifier[E, C]) Mul(a, b fcom.MacVerifier[E]) (fcom.MacVerifier[E], error) {
	if err := v.checkOK(); err != nil {
		return fcom.MacVerifier[E]{}, err
	}
	v.mon.incrMul()
	out, err := v.input()
	if err != nil {
		return fcom.MacVerifier[E]{}, err
	}
	if err := v.fc.QuicksilverPush(v.multCheck, a, b, out); err != nil {
		v.ok = false
		return fcom.MacVerifier[E]{}, err
	}
	return out, nil
}

// AssertZero queues a zero assertion. The queue is flushed when it reaches
// capacity, when batching is disabled, or at Finalize.
func (v *Verifier[E, C]) AssertZero(a fcom.MacVerifier[E]) error {
	if err := v.checkOK(); err != nil {
		return err
	}
	v.mon.incrAssertZero()
	v.zeroList = append(v.zeroList, a)
	if len(v.zeroList) >= v.queueCap || v.noBatching {
		return v.doCheckZero()
	}
	return nil
}

// Challenge returns a jointly sampled random authenticated value whose tag
// both parties hold bit-identically.
func (v *Verifier[E, C]) Challenge() (fcom.MacVerifier[E], error) {
	if err := v.checkOK(); err != nil {
		return fcom.MacVerifier[E]{}, err
	}
	if err := v.flush(); err != nil {
		return fcom.MacVerifier[E]{}, err
	}
	c, err := v.fc.Challenge(v.ch, v.rng)
	if err != nil {
		v.ok = false
		return fcom.MacVerifier[E]{}, err
	}
	return c, nil
}

func (v *Verifier[E, C]) flush() error {
	if err := v.ch.Flush(); err != nil {
		v.ok = false
		return fmt.Errorf("%w: flush: %v", fcom.ErrProtocol, err)
	}
	return nil
}

// doCheckZero flushes the channel, then verifies the whole pending list in
// one batch. The list is cleared unconditionally, even on failure.
func (v *Verifier[E, C]) doCheckZero() error {
	if err := v.flush(); err != nil {
		return err
	}
	err := v.fc.CheckZero(v.ch, v.rng, v.zeroList)
	v.mon.incrZKCheckZero(len(v.zeroList))
	v.zeroList = v.zeroList[:0]
	if err != nil {
		v.mon.log.Warn().Msg("check_zero failed")
		v.ok = false
	}
	return err
}

func (v *Verifier[E, C]) doMultCheck() (int, error) {
	if err := v.flush(); err != nil {
		return 0, err
	}
	cnt, err := v.fc.QuicksilverFinalize(v.ch, v.rng, v.multCheck)
	if err != nil {
		v.ok = false
		return 0, err
	}
	v.mon.incrZKMultCheck(cnt)
	return cnt, nil
}

// Finalize executes the queued zero checks and the multiplication check,
// then logs the summary counters. It succeeds only if both sub-steps
// succeed, and is idempotent once the queues are empty.
func (v *Verifier[E, C]) Finalize() error {
	if err := v.checkOK(); err != nil {
		return err
	}
	if err := v.flush(); err != nil {
		return err
	}
	if err := v.doCheckZero(); err != nil {
		return err
	}
	if _, err := v.doMultCheck(); err != nil {
		return err
	}
	v.mon.logFinal()
	return nil
}

// Reset clears the poisoned state and reinitializes the multiplication
// accumulator so the same authentication context can serve independent proof
// segments. The zero-check queue is deliberately left untouched: queued
// assertions span the reset boundary.
func (v *Verifier[E, C]) Reset() {
	v.fc.Reset(v.multCheck)
	v.ok = true
}

// Close is the explicit teardown step. Closing a healthy evaluator with a
// non-empty zero-check queue means Finalize was never called; that is
// diagnosed with a log entry, not an error.
func (v *Verifier[E, C]) Close() {
	if v.ok && len(v.zeroList) > 0 {
		v.mon.log.Warn().Int("pending", len(v.zeroList)).Msg("closed in unexpected state: Finalize was not called or an earlier error occurred")
	}
}

// Stats returns a snapshot of the operation counters.
func (v *Verifier[E, C]) Stats() Stats { return v.mon.s }
