// Package fcom implements the homomorphic-commitment functionality consumed
// by the gate-evaluation engine: authentication of new values (Input1), local
// affine operations on authenticated values, a batched zero-assertion
// sub-protocol (CheckZero) and a QuickSilver multiplication-check accumulator.
//
// Authenticated values satisfy m = Lift(v)*Delta + k, where the prover holds
// (v, m), the verifier holds k, and Delta is the verifier's long-lived key.
//
// The correlated randomness underlying Input1 is produced by a dealer-style
// key stream: at init the verifier samples Delta and a correlation seed and
// sends both to the prover, and each side stretches the seed into per-index
// keys with a blake2b XOF. This realizes the calling contract and state
// machine of an LPN-based sVOLE generator with the honest-protocol soundness
// behavior the engine relies on, but it is NOT secure against a malicious
// prover; production deployments substitute a real correlation generator
// behind the same interface. LpnParams keep their role as batch-size knobs
// for the key stretch.
package fcom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/paralmehmet/swanky/channel"
	"github.com/paralmehmet/swanky/field"
	"github.com/paralmehmet/swanky/rng"
)

// ErrProtocol reports an interactive sub-protocol failure: either a transport
// fault or cryptographic evidence that the peer violated the proof's
// soundness conditions. Callers must poison themselves on it.
var ErrProtocol = errors.New("commitment protocol failure")

const (
	protocolVersion = 1
	seedLen         = 32

	// maxFrameLen bounds the init frame payload. The frame length is
	// peer-controlled and read before any validation, so it must not be
	// trusted as an allocation size.
	maxFrameLen = 1 << 10

	verdictReject = 0
	verdictAccept = 1
)

// LpnParams sizes one extension of the correlation generator. The engine
// treats the values as opaque; both parties must agree on them, which the
// init handshake enforces.
type LpnParams struct {
	// NumVoles is the number of authenticated correlations produced per
	// extension.
	NumVoles int
}

// Parameter presets mirroring the correlation generator's setup/extend split:
// setup produces the small batch used to bootstrap, extend the steady-state
// batches.
var (
	LpnSetupSmall   = LpnParams{NumVoles: 1 << 10}
	LpnExtendSmall  = LpnParams{NumVoles: 1 << 12}
	LpnSetupMedium  = LpnParams{NumVoles: 1 << 14}
	LpnExtendMedium = LpnParams{NumVoles: 1 << 16}
	LpnSetupLarge   = LpnParams{NumVoles: 1 << 16}
	LpnExtendLarge  = LpnParams{NumVoles: 1 << 18}
)

func checkLpnParams(setup, extend LpnParams) error {
	if setup.NumVoles <= 0 || extend.NumVoles <= 0 {
		return fmt.Errorf("lpn parameters: num_voles must be positive (setup %d, extend %d)", setup.NumVoles, extend.NumVoles)
	}
	return nil
}

// initMessage is exchanged by both parties at init so that field and
// correlation parameters provably match before any authenticated value
// exists.
type initMessage struct {
	Version  uint32 `cbor:"v"`
	FieldLen int    `cbor:"field"`
	Setup    int    `cbor:"setup"`
	Extend   int    `cbor:"extend"`
}

func writeFrame(ch channel.Channel, msg initMessage) error {
	payload, err := cbor.Marshal(msg)
	if err != nil {
		return err
	}
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := ch.Write(hdr[:]); err != nil {
		return err
	}
	_, err = ch.Write(payload)
	return err
}

func readFrame(ch channel.Channel) (initMessage, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(ch, hdr[:]); err != nil {
		return initMessage{}, err
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if n > maxFrameLen {
		return initMessage{}, fmt.Errorf("init frame of %d bytes exceeds the %d byte limit", n, maxFrameLen)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(ch, payload); err != nil {
		return initMessage{}, err
	}
	var msg initMessage
	if err := cbor.Unmarshal(payload, &msg); err != nil {
		return initMessage{}, err
	}
	return msg, nil
}

func checkHandshake(ours, theirs initMessage) error {
	if ours != theirs {
		return fmt.Errorf("%w: handshake mismatch: local %+v, peer %+v", ErrProtocol, ours, theirs)
	}
	return nil
}

func writeElement[E, C comparable](f field.Field[E, C], ch channel.Channel, e E) error {
	buf := f.AppendBytes(make([]byte, 0, f.ByteLen()), e)
	_, err := ch.Write(buf)
	return err
}

func readElement[E, C comparable](f field.Field[E, C], ch channel.Channel) (E, error) {
	buf := make([]byte, f.ByteLen())
	if _, err := io.ReadFull(ch, buf); err != nil {
		var zero E
		return zero, err
	}
	return f.FromBytes(buf)
}

func writeUint64(ch channel.Channel, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := ch.Write(buf[:])
	return err
}

func readUint64(ch channel.Channel) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(ch, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// keyStream derives the per-index correlation keys k_i from the shared seed.
// Both parties consume keys in the same order, one per Input1.
type keyStream[E, C comparable] struct {
	f      field.Field[E, C]
	src    io.Reader
	pool   []E
	next   int
	extend int
}

func newKeyStream[E, C comparable](f field.Field[E, C], seed []byte, setup, extend LpnParams) (keyStream[E, C], error) {
	ks := keyStream[E, C]{f: f, src: rng.New(seed), extend: extend.NumVoles}
	if err := ks.refill(setup.NumVoles); err != nil {
		return keyStream[E, C]{}, err
	}
	return ks, nil
}

func (ks *keyStream[E, C]) refill(n int) error {
	ks.pool = ks.pool[:0]
	for i := 0; i < n; i++ {
		e, err := ks.f.Sample(ks.src)
		if err != nil {
			return fmt.Errorf("%w: correlation stretch: %v", ErrProtocol, err)
		}
		ks.pool = append(ks.pool, e)
	}
	ks.next = 0
	return nil
}

func (ks *keyStream[E, C]) nextKey() (E, error) {
	if ks.next >= len(ks.pool) {
		if err := ks.refill(ks.extend); err != nil {
			var zero E
			return zero, err
		}
	}
	k := ks.pool[ks.next]
	ks.next++
	return k, nil
}
