package dietmac

import "github.com/rs/zerolog"

// tickInterval is the fixed operation-count cadence at which a progress
// summary is emitted.
const tickInterval = 5_000_000

// Stats is a snapshot of an evaluator's operation counters.
type Stats struct {
	Public      uint64
	Private     uint64
	Add         uint64
	AddConst    uint64
	Mul         uint64
	MulConst    uint64
	AssertZero  uint64
	ZKCheckZero uint64
	ZKMultCheck uint64
}

type monitor struct {
	log  zerolog.Logger
	tick uint64
	s    Stats
}

func (m *monitor) tickOnce() {
	m.tick++
	if m.tick >= tickInterval {
		m.tick %= tickInterval
		m.logProgress()
	}
}

func (m *monitor) incrPublic()     { m.s.Public++ }
func (m *monitor) incrPrivate()    { m.s.Private++ }
func (m *monitor) incrAdd()        { m.tickOnce(); m.s.Add++ }
func (m *monitor) incrAddConst()   { m.tickOnce(); m.s.AddConst++ }
func (m *monitor) incrMul()        { m.tickOnce(); m.s.Mul++ }
func (m *monitor) incrMulConst()   { m.tickOnce(); m.s.MulConst++ }
func (m *monitor) incrAssertZero() { m.s.AssertZero++ }

func (m *monitor) incrZKCheckZero(n int) { m.s.ZKCheckZero += uint64(n) }
func (m *monitor) incrZKMultCheck(n int) { m.s.ZKMultCheck += uint64(n) }

func (m *monitor) logProgress() {
	m.log.Info().
		Uint64("public", m.s.Public).
		Uint64("private", m.s.Private).
		Uint64("mul", m.s.Mul).
		Uint64("assert_zero", m.s.AssertZero).
		Msg("gate progress")
}

func (m *monitor) logFinal() {
	if m.s.Mul != m.s.ZKMultCheck {
		// Legitimate partial-finalize sequences can diverge, so this is a
		// sanity warning, not a protocol failure.
		m.log.Warn().
			Uint64("mul_gates", m.s.Mul).
			Uint64("mult_checks", m.s.ZKMultCheck).
			Msg("multiplication gate/check count mismatch")
	}
	m.log.Info().
		Uint64("public", m.s.Public).
		Uint64("private", m.s.Private).
		Uint64("add", m.s.Add).
		Uint64("addc", m.s.AddConst).
		Uint64("mul", m.s.Mul).
		Uint64("mulc", m.s.MulConst).
		Uint64("assert_zero", m.s.AssertZero).
		Uint64("zk_check_zero", m.s.ZKCheckZero).
		Uint64("zk_mult_check", m.s.ZKMultCheck).
		Msg("gate counters")
}
