package dietmac

import (
	"errors"
	"fmt"
	"io"

	"github.com/paralmehmet/swanky/channel"
	"github.com/paralmehmet/swanky/fcom"
	"github.com/paralmehmet/swanky/field"
)

// ErrPoisoned reports an operation attempted on a poisoned evaluator. It is
// returned without any communication; only Reset recovers from it.
var ErrPoisoned = errors.New("evaluator is poisoned: an earlier operation failed, Reset is required")

// Prover evaluates circuit gates over the prover's view of authenticated
// values: clear value plus tag.
type Prover[E, C comparable] struct {
	f          field.Field[E, C]
	fc         *fcom.Prover[E, C]
	ch         channel.Channel
	rng        io.Reader
	ok         bool
	zeroList   []fcom.MacProver[E, C]
	multCheck  *fcom.MultCheckProver[E]
	mon        monitor
	noBatching bool
	queueCap   int
}

// NewProver initializes a prover owning a fresh commitment functionality,
// given a channel, a random generator and the LPN parameter pair forwarded
// to the correlation generator.
func NewProver[E, C comparable](f field.Field[E, C], ch channel.Channel, rnd io.Reader, lpnSetup, lpnExtend fcom.LpnParams, opts ...Option) (*Prover[E, C], error) {
	fc, err := fcom.NewProver(f, ch, rnd, lpnSetup, lpnExtend)
	if err != nil {
		return nil, err
	}
	return NewProverWithFCom(fc, ch, rnd, opts...)
}

// NewProverWithFCom initializes a prover attached to an existing shared
// commitment functionality, for multi-segment proofs using one
// authentication context. Access to the shared functionality must be
// sequential.
func NewProverWithFCom[E, C comparable](fc *fcom.Prover[E, C], ch channel.Channel, rnd io.Reader, opts ...Option) (*Prover[E, C], error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	st, err := fc.NewMultCheck(ch)
	if err != nil {
		return nil, err
	}
	return &Prover[E, C]{
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
func (p *Prover[E, C]) FCom() *fcom.Prover[E, C] { return p.fc }

func (p *Prover[E, C]) checkOK() error {
	if !p.ok {
		return ErrPoisoned
	}
	return nil
}

func (p *Prover[E, C]) input(v C) (fcom.MacProver[E, C], error) {
	tag, err := p.fc.Input1(p.ch, p.rng, v)
	if err != nil {
		p.ok = false
		return fcom.MacProver[E, C]{}, err
	}
	return fcom.MacProver[E, C]{Value: v, Mac: tag}, nil
}

// InputPublic authenticates a value known to both parties. No communication;
// the prover's tag for a public value is zero.
func (p *Prover[E, C]) InputPublic(v C) fcom.MacProver[E, C] {
	p.mon.incrPublic()
	return fcom.MacProver[E, C]{Value: v, Mac: p.f.Zero()}
}

// InputPrivate authenticates a secret value.
func (p *Prover[E, C]) InputPrivate(v C) (fcom.MacProver[E, C], error) {
	if err := p.checkOK(); err != nil {
		return fcom.MacProver[E, C]{}, err
	}
	p.mon.incrPrivate()
	return p.input(v)
}

// Add returns the sum of two authenticated values. Local, zero
// communication.
func (p *Prover[E, C]) Add(a, b fcom.MacProver[E, C]) (fcom.MacProver[E, C], error) {
	if err := p.checkOK(); err != nil {
		return fcom.MacProver[E, C]{}, err
	}
	p.mon.incrAdd()
	return p.fc.Add(a, b), nil
}

// AddConst returns a + k for a public constant k.
func (p *Prover[E, C]) AddConst(a fcom.MacProver[E, C], k C) (fcom.MacProver[E, C], error) {
	if err := p.checkOK(); err != nil {
		return fcom.MacProver[E, C]{}, err
	}
	p.mon.incrAddConst()
	return p.fc.AffineAddCst(k, a), nil
}

// MulConst returns a * k for a public constant k.
func (p *Prover[E, C]) MulConst(a fcom.MacProver[E, C], k C) (fcom.MacProver[E, C], error) {
	if err := p.checkOK(); err != nil {
		return fcom.MacProver[E, C]{}, err
	}
	p.mon.incrMulConst()
	return p.fc.AffineMultCst(k, a), nil
}

// Mul multiplies two authenticated values. The engine computes the clear
// product, authenticates it as a fresh private input, and pushes the triple
// into the multiplication accumulator for the deferred QuickSilver check.
func (p *Prover[E, C]) Mul(a, b fcom.MacProver[E, C]) (fcom.MacProver[E, C], error) {
	if err := p.checkOK(); err != nil {
		return fcom.MacProver[E, C]{}, err
	}
	p.mon.incrMul()
	out, err := p.input(p.f.ClearMul(a.Value, b.Value))
	if err != nil {
		return fcom.MacProver[E, C]{}, err
	}
	if err := p.fc.QuicksilverPush(p.multCheck, a, b, out); err != nil {
		p.ok = false
		return fcom.MacProver[E, C]{}, err
	}
	return out, nil
}

// AssertZero queues a zero assertion. The queue is flushed when it reaches
// capacity, when batching is disabled, or at Finalize.
func (p *Prover[E, C]) AssertZero(a fcom.MacProver[E, C]) error {
	if err := p.checkOK(); err != nil {
		return err
	}
	p.mon.incrAssertZero()
	p.zeroList = append(p.zeroList, a)
	if len(p.zeroList) >= p.queueCap || p.noBatching {
		return p.doCheckZero()
	}
	return nil
}

// Challenge returns a jointly sampled random authenticated value whose tag
// both parties hold bit-identically.
func (p *Prover[E, C]) Challenge() (fcom.MacProver[E, C], error) {
	if err := p.checkOK(); err != nil {
		return fcom.MacProver[E, C]{}, err
	}
	if err := p.flush(); err != nil {
		return fcom.MacProver[E, C]{}, err
	}
	c, err := p.fc.Challenge(p.ch, p.rng)
	if err != nil {
		p.ok = false
		return fcom.MacProver[E, C]{}, err
	}
	return c, nil
}

func (p *Prover[E, C]) flush() error {
	if err := p.ch.Flush(); err != nil {
		p.ok = false
		return fmt.Errorf("%w: flush: %v", fcom.ErrProtocol, err)
	}
	return nil
}

// doCheckZero flushes the channel, then proves the whole pending list in one
// batch. The list is cleared unconditionally, even on failure, to bound
// memory and avoid reprocessing on a later flush.
func (p *Prover[E, C]) doCheckZero() error {
	if err := p.flush(); err != nil {
		return err
	}
	err := p.fc.CheckZero(p.ch, p.zeroList)
	p.mon.incrZKCheckZero(len(p.zeroList))
	p.zeroList = p.zeroList[:0]
	if err != nil {
		p.mon.log.Warn().Msg("check_zero failed")
		p.ok = false
	}
	return err
}

func (p *Prover[E, C]) doMultCheck() (int, error) {
	if err := p.flush(); err != nil {
		return 0, err
	}
	cnt, err := p.fc.QuicksilverFinalize(p.ch, p.rng, p.multCheck)
	if err != nil {
		p.ok = false
		return 0, err
	}
	p.mon.incrZKMultCheck(cnt)
	return cnt, nil
}

// Finalize executes the queued zero checks and the multiplication check,
// then logs the summary counters. It succeeds only if both sub-steps
// succeed, and is idempotent once the queues are empty.
func (p *Prover[E, C]) Finalize() error {
	if err := p.checkOK(); err != nil {
		return err
	}
	if err := p.flush(); err != nil {
		return err
	}
	if err := p.doCheckZero(); err != nil {
		return err
	}
	if _, err := p.doMultCheck(); err != nil {
		return err
	}
	p.mon.logFinal()
	return nil
}

// Reset clears the poisoned state and reinitializes the multiplication
// accumulator so the same authentication context can serve independent proof
// segments. The zero-check queue is deliberately left untouched: queued
// assertions span the reset boundary.
func (p *Prover[E, C]) Reset() {
	p.fc.Reset(p.multCheck)
	p.ok = true
}

// Close is the explicit teardown step. Closing a healthy evaluator with a
// non-empty zero-check queue means Finalize was never called; that is
// diagnosed with a log entry, not an error, since teardown cannot propagate
// failures.
func (p *Prover[E, C]) Close() {
	if p.ok && len(p.zeroList) > 0 {
		p.mon.log.Warn().Int("pending", len(p.zeroList)).Msg("closed in unexpected state: Finalize was not called or an earlier error occurred")
	}
}

// Stats returns a snapshot of the operation counters.
func (p *Prover[E, C]) Stats() Stats { return p.mon.s }
